package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/lock"
	"github.com/fulldump/btrievedb/store"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

// Template describes a file created at load time when it does not exist.
type Template struct {
	Name    string                    `json:"name"`
	File    btrieve.FileAttributes    `json:"file"`
	Indexes []btrieve.IndexAttributes `json:"indexes"`
}

type Config struct {
	Dir         string
	Name        string
	Codec       store.Codec
	CacheSize   int64
	LockTimeout time.Duration
	SyncWrites  bool
	Templates   []Template
	Users       map[string]string
}

// Shared is an open file and the bookkeeping of every handle on it.
type Shared struct {
	Name   string
	Store  *store.Store
	Opened time.Time

	handles    int
	exclusive  bool
	continuous uint64
}

type Database struct {
	Config  *Config
	Locks   *lock.Manager
	status  atomic.Value
	mutex   sync.Mutex
	open    map[string]*Shared
	cache   *ristretto.Cache[uint64, []byte]
	clients atomic.Uint64
	exit    chan struct{}
}

func NewDatabase(config *Config) *Database {
	db := &Database{
		Config: config,
		Locks:  lock.New(config.LockTimeout),
		open:   map[string]*Shared{},
		exit:   make(chan struct{}),
	}
	db.status.Store(StatusOpening)

	return db
}

func (db *Database) GetStatus() string {
	return db.status.Load().(string)
}

// NextClient returns a new session identifier.
func (db *Database) NextClient() uint64 {
	return db.clients.Add(1)
}

func (db *Database) options() store.Options {
	return store.Options{
		Codec:      db.Config.Codec,
		Cache:      db.cache,
		SyncWrites: db.Config.SyncWrites,
	}
}

// Name cleans a file name into the form used as key of the open table:
// slash separated, relative to the data directory, never escaping it.
func Name(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	return strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+name)), "/")
}

// Path returns the file system path of a file name.
func (db *Database) Path(name string) string {
	return filepath.Join(db.Config.Dir, filepath.FromSlash(Name(name)))
}

func (db *Database) operating() error {
	if db.GetStatus() != StatusOperating {
		return fmt.Errorf("database is %s: %w", db.GetStatus(), btrieve.StatusRecordManagerInactive)
	}
	return nil
}

func exists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// Open returns the shared state of a file, opening its store if no handle
// has it open yet.
func (db *Database) Open(name string, mode btrieve.OpenMode, owner string) (*Shared, error) {
	if err := db.operating(); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("open mode %d: %w", mode, btrieve.StatusInvalidOption)
	}

	name = Name(name)
	readOnly := mode == btrieve.OpenModeReadOnly

	db.mutex.Lock()
	defer db.mutex.Unlock()

	shared, ok := db.open[name]
	if ok {
		if shared.exclusive || mode == btrieve.OpenModeExclusive {
			return nil, fmt.Errorf("open '%s': %w", name, btrieve.StatusFileInUse)
		}
		if err := shared.Store.CheckOwner(owner, readOnly); err != nil {
			return nil, err
		}
		shared.handles++
		return shared, nil
	}

	t0 := time.Now()
	s, err := store.Open(db.Path(name), db.options())
	if err != nil {
		return nil, err
	}
	if err := s.CheckOwner(owner, readOnly); err != nil {
		s.Close()
		return nil, err
	}
	glog.Infof("open '%s': %d records in %v", name, s.Count(), time.Since(t0))

	shared = &Shared{
		Name:      name,
		Store:     s,
		Opened:    time.Now(),
		handles:   1,
		exclusive: mode == btrieve.OpenModeExclusive,
	}
	db.open[name] = shared

	return shared, nil
}

// Close releases one handle. The store is closed with the last one.
func (db *Database) Close(shared *Shared) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if db.open[shared.Name] != shared || shared.handles == 0 {
		return fmt.Errorf("close '%s': %w", shared.Name, btrieve.StatusFileNotOpen)
	}

	shared.handles--
	if shared.handles > 0 {
		return nil
	}

	delete(db.open, shared.Name)
	glog.Infof("close '%s'", shared.Name)
	if err := shared.Store.Close(); err != nil {
		glog.Errorf("close '%s': %s", shared.Name, err)
		return fmt.Errorf("close '%s': %w", shared.Name, btrieve.StatusCloseError)
	}
	return nil
}

// Handles returns how many handles have the file open.
func (db *Database) Handles(shared *Shared) int {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return shared.handles
}

// Create creates a file. It is not left open.
func (db *Database) Create(name string, attributes btrieve.FileAttributes, indexes []btrieve.IndexAttributes, mode btrieve.CreateMode) error {
	if err := db.operating(); err != nil {
		return err
	}
	return db.create(Name(name), attributes, indexes, mode)
}

func (db *Database) create(name string, attributes btrieve.FileAttributes, indexes []btrieve.IndexAttributes, mode btrieve.CreateMode) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if name == "" {
		return fmt.Errorf("create: empty file name: %w", btrieve.StatusFilenameBad)
	}

	filename := db.Path(name)
	if exists(filename) {
		if mode == btrieve.CreateModeNoOverwrite {
			return fmt.Errorf("create '%s': %w", name, btrieve.StatusFileAlreadyExists)
		}
		if _, open := db.open[name]; open {
			return fmt.Errorf("create '%s': %w", name, btrieve.StatusFileInUse)
		}
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("create '%s': %s: %w", name, err, btrieve.StatusCreateIoError)
	}

	s, err := store.Create(filename, attributes, indexes, db.options())
	if err != nil {
		return err
	}
	glog.Infof("created '%s' with %d indexes", name, len(indexes))

	return s.Close()
}

// Delete removes a file that no handle has open.
func (db *Database) Delete(name, owner string) error {
	if err := db.operating(); err != nil {
		return err
	}

	name = Name(name)

	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, open := db.open[name]; open {
		return fmt.Errorf("delete '%s': %w", name, btrieve.StatusFileInUse)
	}

	filename := db.Path(name)
	s, err := store.Open(filename, db.options())
	if err != nil {
		return err
	}
	err = s.CheckOwner(owner, false)
	s.Close()
	if err != nil {
		return err
	}

	if err := os.Remove(filename); err != nil {
		return fmt.Errorf("delete '%s': %s: %w", name, err, btrieve.StatusIOError)
	}
	glog.Infof("deleted '%s'", name)

	return nil
}

// Rename moves a file that no handle has open.
func (db *Database) Rename(existing, name string) error {
	if err := db.operating(); err != nil {
		return err
	}

	existing, name = Name(existing), Name(name)

	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, open := db.open[existing]; open {
		return fmt.Errorf("rename '%s': %w", existing, btrieve.StatusFileInUse)
	}
	if !exists(db.Path(existing)) {
		return fmt.Errorf("rename '%s': %w", existing, btrieve.StatusFileNotFound)
	}
	if name == "" {
		return fmt.Errorf("rename '%s': empty file name: %w", existing, btrieve.StatusFilenameBad)
	}
	if exists(db.Path(name)) {
		return fmt.Errorf("rename '%s' to '%s': %w", existing, name, btrieve.StatusFileAlreadyExists)
	}

	if err := os.MkdirAll(filepath.Dir(db.Path(name)), 0755); err != nil {
		return fmt.Errorf("rename '%s': %s: %w", existing, err, btrieve.StatusIOError)
	}
	if err := os.Rename(db.Path(existing), db.Path(name)); err != nil {
		return fmt.Errorf("rename '%s': %s: %w", existing, err, btrieve.StatusIOError)
	}
	glog.Infof("renamed '%s' to '%s'", existing, name)

	return nil
}

// ContinuousBegin puts a file in continuous operation on behalf of client.
func (db *Database) ContinuousBegin(shared *Shared, client uint64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if shared.continuous != 0 {
		return fmt.Errorf("continuous operation on '%s' already started: %w", shared.Name, btrieve.StatusIncompatibleModeError)
	}
	if err := shared.Store.SetContinuous(true); err != nil {
		return err
	}
	shared.continuous = client
	glog.Infof("continuous operation on '%s' started by client %d", shared.Name, client)
	return nil
}

// ContinuousEnd ends the continuous operation started by client.
func (db *Database) ContinuousEnd(shared *Shared, client uint64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if shared.continuous == 0 || shared.continuous != client {
		return fmt.Errorf("no continuous operation on '%s': %w", shared.Name, btrieve.StatusIncompatibleModeError)
	}
	shared.continuous = 0
	glog.Infof("continuous operation on '%s' ended", shared.Name)
	return shared.Store.SetContinuous(false)
}

// Continuous returns the client running continuous operation on the file,
// zero if none.
func (db *Database) Continuous(shared *Shared) uint64 {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return shared.continuous
}

// Files lists the names of every file in the data directory.
func (db *Database) Files() ([]string, error) {
	names := []string{}
	err := filepath.WalkDir(db.Config.Dir, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(filename, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(db.Config.Dir, filename)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(names)
	return names, err
}

// Authenticate checks a login against the configured users. Any login is
// accepted when no users are configured.
func (db *Database) Authenticate(user, password, database string) error {
	if database != "" && db.Config.Name != "" && database != db.Config.Name {
		return fmt.Errorf("database '%s': %w", database, btrieve.StatusLoginFailedBadDatabase)
	}
	if len(db.Config.Users) == 0 {
		return nil
	}
	expected, ok := db.Config.Users[user]
	if !ok {
		return fmt.Errorf("user '%s': %w", user, btrieve.StatusLoginFailedBadUsername)
	}
	if expected != password {
		return fmt.Errorf("user '%s': %w", user, btrieve.StatusLoginFailedBadPassword)
	}
	return nil
}

func (db *Database) Load() error {

	glog.Infof("Loading database %s...", db.Config.Dir)
	err := os.MkdirAll(db.Config.Dir, 0755)
	if err != nil {
		db.status.Store(StatusClosing)
		return err
	}

	if db.Config.CacheSize > 0 {
		db.cache, err = store.NewCache(db.Config.CacheSize)
		if err != nil {
			db.status.Store(StatusClosing)
			return err
		}
	}

	for _, template := range db.Config.Templates {
		err := db.create(Name(template.Name), template.File, template.Indexes, btrieve.CreateModeNoOverwrite)
		if errors.Is(err, btrieve.StatusFileAlreadyExists) {
			continue
		}
		if err != nil {
			glog.Errorf("create template '%s': %s", template.Name, err)
			db.status.Store(StatusClosing)
			return err
		}
	}

	names, err := db.Files()
	if err != nil {
		db.status.Store(StatusClosing)
		return err
	}
	glog.Infof("%d files in %s", len(names), db.Config.Dir)

	db.status.Store(StatusOperating)

	return nil
}

func (db *Database) Start() error {

	go db.Load()

	<-db.exit

	return nil
}

func (db *Database) Stop() error {

	defer close(db.exit)

	db.status.Store(StatusClosing)
	db.Locks.Close()

	db.mutex.Lock()
	defer db.mutex.Unlock()

	var lastErr error
	for name, shared := range db.open {
		glog.Infof("Closing '%s'...", name)
		if shared.continuous != 0 {
			shared.Store.SetContinuous(false)
		}
		err := shared.Store.Close()
		if err != nil {
			glog.Errorf("close(%s): %s", name, err.Error())
			lastErr = err
		}
		delete(db.open, name)
	}

	if db.cache != nil {
		db.cache.Close()
	}
	glog.Flush()

	return lastErr
}
