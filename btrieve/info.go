package btrieve

import (
	"time"
)

type BulkRecord struct {
	Position int64  `json:"position"`
	Data     []byte `json:"data"`
}

// BulkRetrieveResult holds the records accepted by a bulk retrieve. Status
// is the condition that ended the scan, StatusNoError when the maximum
// record count was reached.
type BulkRetrieveResult struct {
	Records []BulkRecord `json:"records"`
	Status  StatusCode   `json:"status"`
}

func (r *BulkRetrieveResult) RecordCount() int {
	return len(r.Records)
}

// BulkCreateResult reports every record of a bulk create. Status is the last
// non zero status, StatusNoError when every record was created.
type BulkCreateResult struct {
	Positions []int64      `json:"positions"`
	Statuses  []StatusCode `json:"statuses"`
	Status    StatusCode   `json:"status"`
}

// RecordCount is the number of records actually created.
func (r *BulkCreateResult) RecordCount() int {
	n := 0
	for _, s := range r.Statuses {
		if s == StatusNoError {
			n++
		}
	}
	return n
}

// LockOwner describes the session holding the lock that made an operation
// fail with StatusRecordInUse or StatusFileInUse.
type LockOwner struct {
	ServiceAgentIdentifier int          `json:"service_agent_identifier"`
	ClientIdentifier       int          `json:"client_identifier"`
	TransactionLevel       int          `json:"transaction_level"`
	SameProcess            bool         `json:"same_process"`
	RecordLock             bool         `json:"record_lock"`
	FileLock               bool         `json:"file_lock"`
	WriteNoWait            bool         `json:"write_no_wait"`
	ExplicitLockMode       LockMode     `json:"explicit_lock_mode"`
	PageLockType           PageLockType `json:"page_lock_type"`
	Index                  Index        `json:"index"`
	Name                   string       `json:"name,omitempty"`
}

type IndexInformation struct {
	Attributes       IndexAttributes `json:"attributes"`
	UniqueValueCount int             `json:"unique_value_count"`
}

type FileInformation struct {
	FileName            string             `json:"file_name"`
	Attributes          FileAttributes     `json:"attributes"`
	RecordCount         int                `json:"record_count"`
	IndexCount          int                `json:"index_count"`
	KeySegmentCount     int                `json:"key_segment_count"`
	Indexes             []IndexInformation `json:"indexes"`
	HandleCount         int                `json:"handle_count"`
	ContinuousOperation bool               `json:"continuous_operation"`
	ReadOnly            bool               `json:"read_only"`
	OpenMode            OpenMode           `json:"open_mode"`
	OwnerMode           OwnerMode          `json:"owner_mode"`
	OpenTimestamp       time.Time          `json:"open_timestamp"`
	ExplicitLocks       int                `json:"explicit_locks"`
	LockOwner           *LockOwner         `json:"lock_owner,omitempty"`
}

// KeySegment returns the n-th segment counting across all indexes in
// index order.
func (f *FileInformation) KeySegment(n int) (KeySegment, Index, error) {
	for _, index := range f.Indexes {
		if n < len(index.Attributes.Segments) {
			return index.Attributes.Segments[n], index.Attributes.Index, nil
		}
		n -= len(index.Attributes.Segments)
	}
	return KeySegment{}, IndexNone, StatusInvalidOption
}

type Version struct {
	ClientVersionType VersionType `json:"client_version_type"`
	ClientVersion     int         `json:"client_version"`
	ClientRevision    int         `json:"client_revision"`
	LocalVersionType  VersionType `json:"local_version_type"`
	LocalVersion      int         `json:"local_version"`
	LocalRevision     int         `json:"local_revision"`
	RemoteVersionType VersionType `json:"remote_version_type"`
	RemoteVersion     int         `json:"remote_version"`
	RemoteRevision    int         `json:"remote_revision"`
}
