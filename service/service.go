package service

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/client"
	"github.com/fulldump/btrievedb/database"
	"github.com/fulldump/btrievedb/lock"
)

// ServiceAgentIdentifier tags the sessions opened on behalf of HTTP
// requests in lock owner information.
const ServiceAgentIdentifier = 0x4854

type Service struct {
	db       *database.Database
	requests atomic.Uint32

	// agent keeps continuous operations alive between requests
	mutex      sync.Mutex
	agent      *client.Client
	continuous map[string]*client.File
}

func NewService(db *database.Database) *Service {
	return &Service{
		db:         db,
		continuous: map[string]*client.File{},
	}
}

// FileSummary is one entry of ListFiles. Files that cannot be opened
// carry the status that prevented it.
type FileSummary struct {
	Name    string             `json:"name"`
	Records int                `json:"records"`
	Indexes int                `json:"indexes"`
	Handles int                `json:"handles"`
	Status  btrieve.StatusCode `json:"status,omitempty"`
}

type CreateFile struct {
	Name    string
	Mode    btrieve.CreateMode
	File    btrieve.FileAttributes
	Indexes []btrieve.IndexAttributes
}

// Query positions a cursor and reads Limit records from there on. No
// comparison means the first record of the index, or the last one when
// Last is set; reading goes backward in that case.
type Query struct {
	Index      btrieve.Index      `json:"index"`
	Comparison btrieve.Comparison `json:"comparison"`
	Key        []byte             `json:"key"`
	Last       bool               `json:"last"`
	Limit      int                `json:"limit"`
	KeysOnly   bool               `json:"keys_only"`
}

// Scan positions a cursor like Query and runs a bulk retrieve from it.
type Scan struct {
	Index      btrieve.Index                  `json:"index"`
	Comparison btrieve.Comparison             `json:"comparison"`
	Key        []byte                         `json:"key"`
	Backward   bool                           `json:"backward"`
	Attributes btrieve.BulkRetrieveAttributes `json:"attributes"`
}

// session runs f in a session that is stopped afterwards.
func (s *Service) session(f func(c *client.Client) error) error {
	id := uuid.New().String()
	c := client.New(s.db, ServiceAgentIdentifier, int(s.requests.Add(1)&0xffff))
	defer c.Stop()

	err := f(c)
	if err != nil {
		glog.V(2).Infof("session %s: %s", id, err)
	}
	return err
}

// open runs f over the named file in a session of its own.
func (s *Service) open(name, owner string, mode btrieve.OpenMode, f func(file *client.File) error) error {
	return s.session(func(c *client.Client) error {
		file, err := c.FileOpen(name, owner, mode)
		if err != nil {
			return err
		}
		return f(file)
	})
}

func (s *Service) GetVersion() (version *btrieve.Version, err error) {
	err = s.session(func(c *client.Client) error {
		version, err = c.GetVersion(nil)
		return err
	})
	return
}

func (s *Service) ListFiles() ([]*FileSummary, error) {

	names, err := s.db.Files()
	if err != nil {
		return nil, err
	}

	result := []*FileSummary{}
	for _, name := range names {
		summary := &FileSummary{
			Name: name,
		}
		err := s.open(name, "", btrieve.OpenModeReadOnly, func(file *client.File) error {
			info, err := file.GetInformation()
			if err != nil {
				return err
			}
			summary.Records = info.RecordCount
			summary.Indexes = info.IndexCount
			summary.Handles = info.HandleCount - 1
			return nil
		})
		summary.Status = btrieve.StatusOf(err)
		result = append(result, summary)
	}

	return result, nil
}

func (s *Service) CreateFile(input *CreateFile) (*btrieve.FileInformation, error) {
	err := s.session(func(c *client.Client) error {
		return c.FileCreate(input.File, input.Indexes, input.Name, input.Mode)
	})
	if err != nil {
		return nil, err
	}
	return s.GetFile(input.Name, "")
}

func (s *Service) GetFile(name, owner string) (info *btrieve.FileInformation, err error) {
	err = s.open(name, owner, btrieve.OpenModeReadOnly, func(file *client.File) error {
		info, err = file.GetInformation()
		return err
	})
	if info != nil {
		info.HandleCount--
	}
	return
}

func (s *Service) DeleteFile(name, owner string) error {
	return s.session(func(c *client.Client) error {
		return c.FileDelete(name, owner)
	})
}

func (s *Service) RenameFile(name, newName string) error {
	return s.session(func(c *client.Client) error {
		return c.FileRename(name, newName)
	})
}

func (s *Service) CreateIndex(name, owner string, attributes btrieve.IndexAttributes) (index btrieve.Index, err error) {
	index = btrieve.IndexNone
	err = s.open(name, owner, btrieve.OpenModeNormal, func(file *client.File) error {
		index, err = file.IndexCreate(attributes)
		return err
	})
	return
}

func (s *Service) DropIndex(name, owner string, index btrieve.Index) error {
	return s.open(name, owner, btrieve.OpenModeNormal, func(file *client.File) error {
		return file.IndexDrop(index)
	})
}

func (s *Service) Insert(name, owner string, records [][]byte) (result *btrieve.BulkCreateResult, err error) {
	err = s.open(name, owner, btrieve.OpenModeNormal, func(file *client.File) error {
		result, err = file.BulkCreate(records)
		return err
	})
	return
}

// position establishes the cursor of file for a query or a scan.
func position(file *client.File, index btrieve.Index, comparison btrieve.Comparison, key []byte, last, keysOnly bool) ([]byte, error) {
	switch {
	case comparison != btrieve.ComparisonNone && keysOnly:
		return file.KeyRetrieve(comparison, index, key)
	case comparison != btrieve.ComparisonNone:
		return file.RecordRetrieve(comparison, index, key, btrieve.LockModeNone)
	case last && keysOnly:
		return file.KeyRetrieveLast(index)
	case last:
		return file.RecordRetrieveLast(index, btrieve.LockModeNone)
	case keysOnly:
		return file.KeyRetrieveFirst(index)
	}
	return file.RecordRetrieveFirst(index, btrieve.LockModeNone)
}

func (s *Service) Retrieve(name, owner string, query *Query) (result *btrieve.BulkRetrieveResult, err error) {

	limit := query.Limit
	if limit <= 0 {
		limit = 1
	}

	err = s.open(name, owner, btrieve.OpenModeReadOnly, func(file *client.File) error {

		next := func() ([]byte, error) {
			switch {
			case query.KeysOnly && query.Last:
				return file.KeyRetrievePrevious()
			case query.KeysOnly:
				return file.KeyRetrieveNext()
			case query.Last:
				return file.RecordRetrievePrevious(btrieve.LockModeNone)
			}
			return file.RecordRetrieveNext(btrieve.LockModeNone)
		}

		data, err := position(file, query.Index, query.Comparison, query.Key, query.Last, query.KeysOnly)
		if err != nil {
			return err
		}

		result = &btrieve.BulkRetrieveResult{
			Records: []btrieve.BulkRecord{},
		}
		for {
			p, err := file.GetCursorPosition()
			if err != nil {
				return err
			}
			result.Records = append(result.Records, btrieve.BulkRecord{
				Position: p,
				Data:     data,
			})
			if len(result.Records) >= limit {
				return nil
			}
			data, err = next()
			if err != nil {
				result.Status = btrieve.StatusOf(err)
				return nil
			}
		}
	})
	return
}

func (s *Service) Scan(name, owner string, scan *Scan) (result *btrieve.BulkRetrieveResult, err error) {
	err = s.open(name, owner, btrieve.OpenModeReadOnly, func(file *client.File) error {

		_, err := position(file, scan.Index, scan.Comparison, scan.Key, scan.Backward, false)
		if err != nil {
			status := btrieve.StatusOf(err)
			if status.Class() != btrieve.ClassNotFound {
				return err
			}
			result = &btrieve.BulkRetrieveResult{
				Records: []btrieve.BulkRecord{},
				Status:  status,
			}
			return nil
		}

		if scan.Backward {
			result, err = file.BulkRetrievePrevious(&scan.Attributes, btrieve.LockModeNone)
		} else {
			result, err = file.BulkRetrieveNext(&scan.Attributes, btrieve.LockModeNone)
		}
		return err
	})
	return
}

func (s *Service) Percentage(name, owner string, index btrieve.Index, key []byte) (percentage int, err error) {
	err = s.open(name, owner, btrieve.OpenModeReadOnly, func(file *client.File) error {
		percentage, err = file.GetPercentage(index, key)
		return err
	})
	return
}

func (s *Service) ContinuousBegin(name, owner string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name = database.Name(name)
	if _, ok := s.continuous[name]; ok {
		return fmt.Errorf("continuous operation on '%s' already started: %w", name, btrieve.StatusIncompatibleModeError)
	}

	if s.agent == nil {
		s.agent = client.New(s.db, ServiceAgentIdentifier, 0)
	}

	file, err := s.agent.FileOpen(name, owner, btrieve.OpenModeNormal)
	if err != nil {
		return err
	}
	err = s.agent.ContinuousOperationBegin(name)
	if err != nil {
		s.agent.FileClose(file)
		return err
	}
	s.continuous[name] = file

	return nil
}

func (s *Service) ContinuousEnd(name string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	name = database.Name(name)
	file, ok := s.continuous[name]
	if !ok {
		return fmt.Errorf("no continuous operation on '%s': %w", name, btrieve.StatusIncompatibleModeError)
	}
	delete(s.continuous, name)

	err := s.agent.ContinuousOperationEnd(name)
	if closeErr := s.agent.FileClose(file); err == nil {
		err = closeErr
	}
	return err
}

func (s *Service) ListLocks() []lock.Lock {
	return s.db.Locks.Locks()
}

// Close ends every continuous operation started through the service.
func (s *Service) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.agent == nil {
		return nil
	}
	s.continuous = map[string]*client.File{}
	return s.agent.Stop()
}
