package client

import (
	"testing"
	"time"

	. "github.com/fulldump/biff"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
)

// snapshot lists the records of f in the order of index.
func snapshot(f *File, index btrieve.Index) [][]byte {
	result := [][]byte{}
	record, err := f.RecordRetrieveFirst(index, btrieve.LockModeNone)
	for err == nil {
		result = append(result, record)
		record, err = f.RecordRetrieveNext(btrieve.LockModeNone)
	}
	return result
}

// waitFor waits until n requests queue behind granted locks.
func waitFor(db *database.Database, n int) {
	waiting := func() int {
		total := 0
		for _, l := range db.Locks.Locks() {
			total += l.Waiters
		}
		return total
	}
	for i := 0; i < 500 && waiting() != n; i++ {
		time.Sleep(2 * time.Millisecond)
	}
}

func TestClient_Transaction(t *testing.T) {
	Alternative("Client Transaction", func(a *A) {
		Environment(func(db *database.Database, c *Client) {

			f := squares(c)

			AssertEqual(btrieve.StatusOf(c.TransactionEnd()), btrieve.StatusEndTransactionError)
			AssertEqual(btrieve.StatusOf(c.TransactionAbort()), btrieve.StatusEndTransactionError)

			a.Alternative("Nested begin", func(a *A) {
				AssertNil(c.TransactionBegin(btrieve.TransactionModeExclusive, btrieve.LockModeNone))
				err := c.TransactionBegin(btrieve.TransactionModeExclusive, btrieve.LockModeNone)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusTransactionIsActive)
				AssertNil(c.TransactionEnd())
			})

			a.Alternative("Abort restores everything", func(a *A) {
				before := snapshot(f, 0)

				AssertNil(c.TransactionBegin(btrieve.TransactionModeConcurrentWriteWait, btrieve.LockModeNone))

				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
				AssertNil(f.RecordDelete())
				_, err := f.RecordCreate(square(16))
				AssertNil(err)

				record, _ := f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{100}, btrieve.LockModeNone)
				record[1] = 7
				AssertNil(f.RecordUpdate(record))
				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{101}, btrieve.LockModeNone)
				AssertNil(f.RecordDelete())

				AssertEqual(btrieve.StatusOf(c.FileClose(f)), btrieve.StatusTransactionIsActive)

				AssertNil(c.TransactionAbort())
				AssertEqual(snapshot(f, 0), before)
				AssertEqual(snapshot(f, btrieve.IndexNone), before)
				AssertEqual(count(f), 256)
			})

			a.Alternative("End keeps changes", func(a *A) {
				AssertNil(c.TransactionBegin(btrieve.TransactionModeExclusive, btrieve.LockModeNone))
				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{50}, btrieve.LockModeNone)
				AssertNil(f.RecordDelete())
				AssertNil(c.TransactionEnd())

				AssertEqual(count(f), 255)
				AssertEqual(btrieve.StatusOf(c.TransactionAbort()), btrieve.StatusEndTransactionError)
			})
		})
	})
}

func TestClient_TransactionIsolation(t *testing.T) {
	Alternative("Client TransactionIsolation", func(a *A) {
		Environment(func(db *database.Database, c *Client) {

			f := squares(c)
			other := New(db, 1, 2)
			defer other.Stop()
			g, _ := other.FileOpen("squares.btr", "", btrieve.OpenModeNormal)

			AssertNil(c.TransactionBegin(btrieve.TransactionModeConcurrentWriteWait, btrieve.LockModeNone))
			_, err := f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
			AssertNil(err)
			AssertNil(f.RecordDelete())
			changed := square(100)
			changed[1] = 7
			f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{100}, btrieve.LockModeNone)
			AssertNil(f.RecordUpdate(changed))

			// the transaction sees its own changes
			_, err = f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
			AssertEqual(btrieve.StatusOf(err), btrieve.StatusKeyValueNotFound)
			AssertEqual(count(f), 255)

			// other sessions read committed records only
			record, err := g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
			AssertNil(err)
			AssertEqual(record, square(16))
			record, _ = g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{100}, btrieve.LockModeNone)
			AssertEqual(record, square(100))
			AssertEqual(count(g), 256)
			AssertEqual(len(snapshot(g, 0)), 256)
			AssertEqual(btrieve.StatusOf(g.RecordUpdate(square(100))), btrieve.StatusRecordInUse)

			a.Alternative("End", func(a *A) {
				AssertNil(c.TransactionEnd())

				_, err := g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusKeyValueNotFound)
				record, _ := g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{100}, btrieve.LockModeNone)
				AssertEqual(record, changed)
				AssertEqual(count(g), 255)
			})

			a.Alternative("Abort", func(a *A) {
				AssertNil(c.TransactionAbort())

				record, err := g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
				AssertNil(err)
				AssertEqual(record, square(16))
				record, _ = f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{100}, btrieve.LockModeNone)
				AssertEqual(record, square(100))
				AssertEqual(count(f), 256)
			})
		})
	})
}

func TestClient_ExclusiveTransaction(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)
		other := New(db, 1, 2)
		defer other.Stop()
		g, _ := other.FileOpen("squares.btr", "", btrieve.OpenModeNormal)

		AssertNil(c.TransactionBegin(btrieve.TransactionModeExclusive, btrieve.LockModeNone))
		f.RecordRetrieveFirst(0, btrieve.LockModeNone)

		// reads without lock still work, writes and locks do not
		_, err := g.RecordRetrieveFirst(0, btrieve.LockModeNone)
		AssertNil(err)
		_, err = g.RecordRetrieveFirst(0, btrieve.LockModeSingleNoWait)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileInUse)
		AssertEqual(btrieve.StatusOf(g.RecordDelete()), btrieve.StatusFileInUse)

		info, _ := g.GetInformation()
		AssertNotNil(info.LockOwner)
		AssertEqual(info.LockOwner.ClientIdentifier, 1)
		AssertTrue(info.LockOwner.FileLock)

		AssertNil(c.TransactionEnd())
		AssertNil(g.RecordDelete())
	})
}

func TestClient_ConcurrentTransaction(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)
		other := New(db, 1, 2)
		defer other.Stop()
		g, _ := other.FileOpen("squares.btr", "", btrieve.OpenModeNormal)

		AssertNil(other.TransactionBegin(btrieve.TransactionModeConcurrentNoWriteWait, btrieve.LockModeNone))
		g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
		record := square(16)
		record[1] = 9
		AssertNil(g.RecordUpdate(record))

		// the written record stays locked until the transaction ends
		f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{17}, btrieve.LockModeNone)
		AssertNil(f.RecordUpdate(square(17)))
		f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
		AssertEqual(btrieve.StatusOf(f.RecordUpdate(square(16))), btrieve.StatusRecordInUse)

		AssertNil(other.TransactionEnd())
		f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
		AssertNil(f.RecordUpdate(square(16)))
	})
}

func TestClient_Locks(t *testing.T) {
	Alternative("Client Locks", func(a *A) {
		Environment(func(db *database.Database, c *Client) {

			f := squares(c)
			other := New(db, 1, 2)
			defer other.Stop()
			g, _ := other.FileOpen("squares.btr", "", btrieve.OpenModeNormal)

			_, err := f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeSingleNoWait)
			AssertNil(err)

			a.Alternative("Record in use", func(a *A) {
				_, err := g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeSingleNoWait)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusRecordInUse)
				info, _ := g.GetInformation()
				AssertEqual(info.LockOwner.ClientIdentifier, 1)
				AssertEqual(info.LockOwner.ExplicitLockMode, btrieve.LockModeSingleNoWait)
				AssertTrue(info.LockOwner.RecordLock)

				_, err = g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
				AssertNil(err)
				AssertEqual(btrieve.StatusOf(g.RecordUpdate(square(16))), btrieve.StatusRecordInUse)

				AssertNil(f.RecordUnlock(btrieve.UnlockModeSingle))
				_, err = g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeSingleNoWait)
				AssertNil(err)
				AssertNil(g.RecordUnlock(btrieve.UnlockModeSingle))
			})

			a.Alternative("Single lock moves", func(a *A) {
				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeSingleNoWait)
				f.RecordRetrieveNext(btrieve.LockModeSingleNoWait)
				_, err := g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeSingleNoWait)
				AssertNil(err)
				g.RecordUnlock(btrieve.UnlockModeSingle)
				f.RecordUnlock(btrieve.UnlockModeSingle)
			})

			a.Alternative("Incompatible lock types", func(a *A) {
				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeSingleNoWait)
				_, err := f.RecordRetrieveNext(btrieve.LockModeMultipleNoWait)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusIncompatibleLockType)
				f.RecordUnlock(btrieve.UnlockModeSingle)

				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{20}, btrieve.LockModeMultipleNoWait)
				f.RecordRetrieveNext(btrieve.LockModeMultipleNoWait)
				info, _ := f.GetInformation()
				AssertEqual(info.ExplicitLocks, 2)
				_, err = f.RecordRetrieveNext(btrieve.LockModeSingleNoWait)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusIncompatibleLockType)

				AssertNil(f.UnlockCursorPosition(21))
				AssertEqual(btrieve.StatusOf(f.UnlockCursorPosition(21)), btrieve.StatusLockError)
				AssertNil(f.RecordUnlock(btrieve.UnlockModeMultiple))
				info, _ = f.GetInformation()
				AssertEqual(info.ExplicitLocks, 0)
			})

			a.Alternative("Wait is granted on unlock", func(a *A) {
				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeSingleNoWait)
				done := make(chan error)
				go func() {
					_, err := g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeSingleWait)
					done <- err
				}()
				waitFor(db, 1)
				AssertNil(f.RecordUnlock(btrieve.UnlockModeSingle))
				AssertNil(<-done)
				g.RecordUnlock(btrieve.UnlockModeSingle)
			})
		})
	})
}

func TestClient_Deadlock(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)
		other := New(db, 1, 2)
		defer other.Stop()
		g, _ := other.FileOpen("squares.btr", "", btrieve.OpenModeNormal)

		_, err := f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{1}, btrieve.LockModeMultipleWait)
		AssertNil(err)
		_, err = g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{2}, btrieve.LockModeMultipleWait)
		AssertNil(err)

		done := make(chan error)
		go func() {
			_, err := f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{2}, btrieve.LockModeMultipleWait)
			done <- err
		}()
		waitFor(db, 1)

		_, err = g.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{1}, btrieve.LockModeMultipleWait)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusDeadLock)
		AssertEqual(btrieve.StatusOf(err).Class(), btrieve.ClassConcurrency)

		AssertNil(g.RecordUnlock(btrieve.UnlockModeMultiple))
		AssertNil(<-done)
	})
}
