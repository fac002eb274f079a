package lock

import (
	"testing"
	"time"

	. "github.com/fulldump/biff"

	"github.com/fulldump/btrievedb/btrieve"
)

func holder(id uint64, mode btrieve.LockMode) Holder {
	return Holder{
		Owner:    Owner{ID: id, ClientIdentifier: int(id)},
		Explicit: mode,
	}
}

func waitFor(m *Manager, n int) {
	for m.waiting() != n {
		time.Sleep(time.Millisecond)
	}
}

func TestManager_RecordConflict(t *testing.T) {

	m := New(0)
	AssertNil(m.Acquire(holder(1, btrieve.LockModeSingleNoWait), Record("squares", 7), false))

	err := m.Acquire(holder(2, btrieve.LockModeSingleNoWait), Record("squares", 7), false)
	AssertEqual(btrieve.StatusOf(err), btrieve.StatusRecordInUse)

	owner, ok := OwnerOf(err)
	AssertTrue(ok)
	AssertEqual(owner.ClientIdentifier, 1)
	AssertTrue(owner.RecordLock)
	AssertEqual(owner.ExplicitLockMode, btrieve.LockModeSingleNoWait)

	// other records and other files are free
	AssertNil(m.Acquire(holder(2, btrieve.LockModeSingleNoWait), Record("squares", 8), false))
	AssertNil(m.Acquire(holder(2, btrieve.LockModeSingleNoWait), Record("roots", 7), false))

	// same owner locks again
	AssertNil(m.Acquire(holder(1, btrieve.LockModeMultipleNoWait), Record("squares", 7), false))
	AssertEqual(m.explicit(1, "squares"), map[int64]btrieve.LockMode{7: btrieve.LockModeMultipleNoWait})
}

func TestManager_FileLocks(t *testing.T) {

	m := New(0)
	AssertNil(m.Acquire(holder(1, btrieve.LockModeSingleNoWait), Record("squares", 7), false))

	err := m.Acquire(Holder{Owner: Owner{ID: 2}, Transaction: true}, File("squares"), false)
	AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileInUse)

	AssertTrue(m.Unlock(1, Record("squares", 7)))
	AssertNil(m.Acquire(Holder{Owner: Owner{ID: 2}, Transaction: true}, File("squares"), false))

	err = m.Acquire(holder(1, btrieve.LockModeSingleNoWait), Record("squares", 7), false)
	AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileInUse)
	owner, _ := OwnerOf(err)
	AssertTrue(owner.FileLock)
	AssertEqual(owner.TransactionLevel, 1)

	AssertNil(m.Check(2, Record("squares", 7)))
	AssertEqual(btrieve.StatusOf(m.Check(1, Record("squares", 7))), btrieve.StatusFileInUse)

	AssertEqual(m.EndTransaction(2), 1)
	AssertNil(m.Check(1, Record("squares", 7)))
}

func TestManager_WaitIsGrantedOnRelease(t *testing.T) {

	m := New(0)
	AssertNil(m.Acquire(holder(1, btrieve.LockModeSingleWait), Record("squares", 7), true))

	done := make(chan error)
	go func() {
		done <- m.Acquire(holder(2, btrieve.LockModeSingleWait), Record("squares", 7), true)
	}()
	waitFor(m, 1)

	AssertEqual(m.Locks()[0].Waiters, 1)
	AssertEqual(m.ReleaseAll(1), 1)
	AssertNil(<-done)
	AssertTrue(m.holds(2, Record("squares", 7)))
	AssertFalse(m.holds(1, Record("squares", 7)))
}

func TestManager_Deadlock(t *testing.T) {

	m := New(0)
	AssertNil(m.Acquire(holder(1, btrieve.LockModeMultipleWait), Record("squares", 1), true))
	AssertNil(m.Acquire(holder(2, btrieve.LockModeMultipleWait), Record("squares", 2), true))

	done := make(chan error)
	go func() {
		done <- m.Acquire(holder(2, btrieve.LockModeMultipleWait), Record("squares", 1), true)
	}()
	waitFor(m, 1)

	err := m.Acquire(holder(1, btrieve.LockModeMultipleWait), Record("squares", 2), true)
	AssertEqual(btrieve.StatusOf(err), btrieve.StatusDeadLock)
	AssertEqual(m.waiting(), 1)

	// the victim gives up its locks and the other session proceeds
	m.ReleaseAll(1)
	AssertNil(<-done)
	AssertEqual(m.Count(2, "squares"), 2)
}

func TestManager_Timeout(t *testing.T) {

	m := New(20 * time.Millisecond)
	AssertNil(m.Acquire(holder(1, btrieve.LockModeSingleWait), Record("squares", 7), true))

	err := m.Acquire(holder(2, btrieve.LockModeSingleWait), Record("squares", 7), true)
	AssertEqual(btrieve.StatusOf(err), btrieve.StatusRecordInUse)
	AssertEqual(m.waiting(), 0)
}

func TestManager_TransactionKeepsUnlockedRecord(t *testing.T) {

	m := New(0)
	h := holder(1, btrieve.LockModeMultipleNoWait)
	h.Transaction = true
	AssertNil(m.Acquire(h, Record("squares", 7), false))
	AssertNil(m.Acquire(holder(1, btrieve.LockModeMultipleNoWait), Record("squares", 8), false))

	AssertEqual(m.UnlockAll(1, "squares"), 2)
	AssertTrue(m.holds(1, Record("squares", 7)))
	AssertFalse(m.holds(1, Record("squares", 8)))
	AssertEqual(m.Count(1, "squares"), 0)

	AssertEqual(m.EndTransaction(1), 1)
	AssertFalse(m.holds(1, Record("squares", 7)))
	AssertEqual(len(m.Locks()), 0)
}

func TestManager_ReleaseFile(t *testing.T) {

	m := New(0)
	m.Acquire(holder(1, btrieve.LockModeMultipleNoWait), Record("squares", 1), false)
	m.Acquire(holder(1, btrieve.LockModeMultipleNoWait), Record("squares", 2), false)
	m.Acquire(holder(1, btrieve.LockModeMultipleNoWait), Record("roots", 1), false)

	AssertEqual(m.ReleaseFile(1, "squares"), 2)
	locks := m.Locks()
	AssertEqual(len(locks), 1)
	AssertEqual(locks[0].File, "roots")
}

func TestManager_Close(t *testing.T) {

	m := New(0)
	AssertNil(m.Acquire(holder(1, btrieve.LockModeSingleWait), Record("squares", 7), true))

	done := make(chan error)
	go func() {
		done <- m.Acquire(holder(2, btrieve.LockModeSingleWait), Record("squares", 7), true)
	}()
	waitFor(m, 1)

	m.Close()
	AssertEqual(btrieve.StatusOf(<-done), btrieve.StatusMKDEShuttingDown)
	AssertEqual(btrieve.StatusOf(m.Acquire(holder(3, btrieve.LockModeNone), Record("squares", 1), false)), btrieve.StatusMKDEShuttingDown)
}
