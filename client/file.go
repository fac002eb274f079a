package client

import (
	"fmt"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
	"github.com/fulldump/btrievedb/lock"
	"github.com/fulldump/btrievedb/store"
)

const noOffset = -1

// File is an open handle on a file. It carries the cursor: the index and
// place of the last positioning call, the current record and the current
// chunk offset inside it. edge is 1 once Next ran past the last entry and
// -1 once Previous ran past the first one.
type File struct {
	client     *Client
	shared     *database.Shared
	store      *store.Store
	mode       btrieve.OpenMode
	index      btrieve.Index
	mark       store.Mark
	edge       int
	positioned bool
	current    int64
	version    uint64
	offset     int
	single     int64
	continuous bool
	closed     bool
	lockOwner  *btrieve.LockOwner
}

func (f *File) Name() string {
	return f.shared.Name
}

func (f *File) usable() error {
	if err := f.client.valid(); err != nil {
		return err
	}
	if f.closed {
		return btrieve.StatusFileNotOpen
	}
	return nil
}

func (f *File) writable() error {
	if err := f.usable(); err != nil {
		return err
	}
	if f.mode == btrieve.OpenModeReadOnly {
		return fmt.Errorf("'%s' is open read only: %w", f.shared.Name, btrieve.StatusAccessToFileDenied)
	}
	return nil
}

// fail keeps the owner of the lock that made an operation fail, for
// GetInformation.
func (f *File) fail(err error) error {
	if owner, ok := lock.OwnerOf(err); ok {
		f.lockOwner = owner
	}
	return err
}

// enter registers the file in the running transaction. Exclusive
// transactions lock the whole file.
func (f *File) enter() error {
	t := f.client.transaction
	if t == nil {
		return nil
	}
	if t.mode == btrieve.TransactionModeExclusive {
		err := f.client.db.Locks.Acquire(lock.Holder{
			Owner:       f.client.owner,
			Transaction: true,
		}, lock.File(f.shared.Name), true)
		if err != nil {
			return f.fail(err)
		}
	}
	t.files[f.shared] = true
	return nil
}

func (f *File) lockMode(mode btrieve.LockMode) (btrieve.LockMode, error) {
	if !mode.Valid() {
		return mode, fmt.Errorf("lock mode %d: %w", mode, btrieve.StatusInvalidOption)
	}
	if mode == btrieve.LockModeNone && f.client.transaction != nil {
		mode = f.client.transaction.lockMode
	}
	if mode == btrieve.LockModeNone {
		return mode, nil
	}
	if mode.Single() && f.single == 0 && f.client.db.Locks.Count(f.client.owner.ID, f.shared.Name) > 0 {
		return mode, fmt.Errorf("multiple record locks are held: %w", btrieve.StatusIncompatibleLockType)
	}
	if mode.Multiple() && f.single != 0 {
		return mode, fmt.Errorf("a single record lock is held: %w", btrieve.StatusIncompatibleLockType)
	}
	return mode, nil
}

// readLock locks the record at position as asked by a retrieve.
func (f *File) readLock(position int64, mode btrieve.LockMode) error {
	if mode == btrieve.LockModeNone {
		return nil
	}

	locks := f.client.db.Locks
	err := locks.Acquire(lock.Holder{
		Owner:       f.client.owner,
		Explicit:    mode,
		Transaction: f.client.transaction != nil,
	}, lock.Record(f.shared.Name, position), mode.Wait())
	if err != nil {
		return f.fail(err)
	}

	if mode.Single() {
		if f.single != 0 && f.single != position {
			locks.Unlock(f.client.owner.ID, lock.Record(f.shared.Name, f.single))
		}
		f.single = position
	}
	return nil
}

// writeLock makes sure the session may write the record at position.
// Concurrent transactions keep the record locked until they end, writes
// outside a transaction only check nobody else holds it.
func (f *File) writeLock(position int64) error {
	locks := f.client.db.Locks
	resource := lock.Record(f.shared.Name, position)

	t := f.client.transaction
	if t == nil {
		return f.fail(locks.Check(f.client.owner.ID, resource))
	}
	if t.mode == btrieve.TransactionModeExclusive {
		return nil
	}
	err := locks.Acquire(lock.Holder{
		Owner:       f.client.owner,
		Transaction: true,
		WriteNoWait: t.mode == btrieve.TransactionModeConcurrentNoWriteWait,
	}, resource, t.mode == btrieve.TransactionModeConcurrentWriteWait)
	return f.fail(err)
}

// releaseSingle drops the single record lock once its record was written
// outside a transaction.
func (f *File) releaseSingle(position int64) {
	if f.single != position || f.client.transaction != nil {
		return
	}
	f.client.db.Locks.Unlock(f.client.owner.ID, lock.Record(f.shared.Name, position))
	f.single = 0
}

// viewer is the store owner whose view the handle reads: the session sees
// its own pending changes and what others committed.
func (f *File) viewer() uint64 {
	return f.client.owner.ID
}

// writer is the store owner of changes made through the handle. Outside a
// transaction they are committed right away.
func (f *File) writer() uint64 {
	if f.client.transaction == nil {
		return store.Committed
	}
	return f.client.owner.ID
}

// refresh reloads the version of the current record after changes made
// behind the cursor, dropping the cursor if the record is gone.
func (f *File) refresh() {
	if f.current == 0 {
		return
	}
	version, err := f.store.Version(f.viewer(), f.current)
	if err != nil {
		f.current = 0
		f.positioned = false
		f.version = 0
		return
	}
	f.version = version
}

func (f *File) GetCursorPosition() (int64, error) {
	if err := f.usable(); err != nil {
		return 0, err
	}
	if f.current == 0 {
		return 0, btrieve.StatusPositionNotSet
	}
	return f.current, nil
}

// RecordUnlock releases the single record lock of the handle, or every
// multiple record lock of the session on the file.
func (f *File) RecordUnlock(mode btrieve.UnlockMode) error {
	if err := f.usable(); err != nil {
		return err
	}
	locks := f.client.db.Locks
	switch mode {
	case btrieve.UnlockModeSingle:
		if f.single != 0 {
			locks.Unlock(f.client.owner.ID, lock.Record(f.shared.Name, f.single))
			f.single = 0
		}
	case btrieve.UnlockModeMultiple:
		locks.UnlockAll(f.client.owner.ID, f.shared.Name)
		f.single = 0
	default:
		return fmt.Errorf("unlock mode %d: %w", mode, btrieve.StatusInvalidOption)
	}
	return nil
}

// UnlockCursorPosition releases the multiple record lock on one position.
func (f *File) UnlockCursorPosition(position int64) error {
	if err := f.usable(); err != nil {
		return err
	}
	if !f.client.db.Locks.Unlock(f.client.owner.ID, lock.Record(f.shared.Name, position)) {
		return fmt.Errorf("position %d is not locked: %w", position, btrieve.StatusLockError)
	}
	if f.single == position {
		f.single = 0
	}
	return nil
}

func (f *File) GetInformation() (*btrieve.FileInformation, error) {
	if err := f.usable(); err != nil {
		return nil, err
	}
	db := f.client.db
	info := f.store.Information(f.viewer())
	info.FileName = f.shared.Name
	info.HandleCount = db.Handles(f.shared)
	info.ContinuousOperation = db.Continuous(f.shared) != 0
	info.ReadOnly = f.mode == btrieve.OpenModeReadOnly
	info.OpenMode = f.mode
	info.OpenTimestamp = f.shared.Opened
	info.ExplicitLocks = db.Locks.Count(f.client.owner.ID, f.shared.Name)
	info.LockOwner = f.lockOwner
	return info, nil
}

// SetOwner protects the file with an owner name. The name is given twice
// as a confirmation. OwnerModeNone clears it.
func (f *File) SetOwner(mode btrieve.OwnerMode, name, nameAgain string) error {
	if err := f.writable(); err != nil {
		return err
	}
	if name != nameAgain {
		return fmt.Errorf("owner names differ: %w", btrieve.StatusInvalidOwner)
	}
	return f.store.SetOwner(mode, name)
}

// IndexCreate adds an index over every record of the file and returns its
// number.
func (f *File) IndexCreate(attributes btrieve.IndexAttributes) (btrieve.Index, error) {
	if err := f.writable(); err != nil {
		return btrieve.IndexNone, err
	}
	if f.client.transaction != nil {
		return btrieve.IndexNone, fmt.Errorf("create index: %w", btrieve.StatusOperationNotAllowed)
	}
	return f.store.CreateIndex(attributes)
}

// IndexDrop removes an index. A cursor on it is destroyed.
func (f *File) IndexDrop(index btrieve.Index) error {
	if err := f.writable(); err != nil {
		return err
	}
	if f.client.transaction != nil {
		return fmt.Errorf("drop index: %w", btrieve.StatusOperationNotAllowed)
	}
	err := f.store.DropIndex(index)
	if err != nil {
		return err
	}
	if f.positioned && f.mark.Index == index {
		f.positioned = false
		f.current = 0
		f.offset = noOffset
	}
	return nil
}
