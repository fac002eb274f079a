package service

import (
	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/lock"
)

// Servicer is what the HTTP front-end needs from the engine. Every call
// runs in a session of its own unless noted otherwise.
type Servicer interface {
	GetVersion() (*btrieve.Version, error)

	ListFiles() ([]*FileSummary, error)
	CreateFile(input *CreateFile) (*btrieve.FileInformation, error)
	GetFile(name, owner string) (*btrieve.FileInformation, error)
	DeleteFile(name, owner string) error
	RenameFile(name, newName string) error

	CreateIndex(name, owner string, attributes btrieve.IndexAttributes) (btrieve.Index, error)
	DropIndex(name, owner string, index btrieve.Index) error

	Insert(name, owner string, records [][]byte) (*btrieve.BulkCreateResult, error)
	Retrieve(name, owner string, query *Query) (*btrieve.BulkRetrieveResult, error)
	Scan(name, owner string, scan *Scan) (*btrieve.BulkRetrieveResult, error)
	Percentage(name, owner string, index btrieve.Index, key []byte) (int, error)

	// ContinuousBegin and ContinuousEnd share one long lived session, so
	// continuous operation outlives the request that started it.
	ContinuousBegin(name, owner string) error
	ContinuousEnd(name string) error

	ListLocks() []lock.Lock
}
