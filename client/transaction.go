package client

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
)

// transaction tracks the files written since TransactionBegin. Their
// stores keep the changes pending under the session owner until the end.
type transaction struct {
	mode     btrieve.TransactionMode
	lockMode btrieve.LockMode
	files    map[*database.Shared]bool
}

func (t *transaction) touches(shared *database.Shared) bool {
	return t.files[shared]
}

// TransactionBegin starts a transaction. Exclusive transactions lock every
// file they touch, concurrent ones lock the records they write. lockMode is
// applied to reads that ask for no lock.
func (c *Client) TransactionBegin(mode btrieve.TransactionMode, lockMode btrieve.LockMode) error {
	if err := c.valid(); err != nil {
		return err
	}
	if c.transaction != nil {
		return btrieve.StatusTransactionIsActive
	}
	if mode.String() == "UNKNOWN" || !lockMode.Valid() {
		return fmt.Errorf("transaction mode %d lock mode %d: %w", mode, lockMode, btrieve.StatusInvalidOption)
	}

	c.transaction = &transaction{
		mode:     mode,
		lockMode: lockMode,
		files:    map[*database.Shared]bool{},
	}
	glog.V(2).Infof("client %d begins %s transaction", c.owner.ClientIdentifier, mode)
	return nil
}

// TransactionEnd commits the transaction and releases its locks. Other
// sessions see its changes from here on.
func (c *Client) TransactionEnd() error {
	if err := c.valid(); err != nil {
		return err
	}
	t := c.transaction
	if t == nil {
		return btrieve.StatusEndTransactionError
	}
	c.transaction = nil
	defer c.db.Locks.EndTransaction(c.owner.ID)

	var lastErr error
	for shared := range t.files {
		err := shared.Store.Commit(c.owner.ID)
		if err != nil {
			glog.Errorf("commit '%s': %s", shared.Name, err)
			lastErr = fmt.Errorf("commit '%s': %w", shared.Name, err)
		}
	}
	glog.V(2).Infof("client %d committed a transaction on %d files", c.owner.ClientIdentifier, len(t.files))

	return lastErr
}

// TransactionAbort discards every change of the transaction and releases
// its locks.
func (c *Client) TransactionAbort() error {
	if err := c.valid(); err != nil {
		return err
	}
	t := c.transaction
	if t == nil {
		return btrieve.StatusEndTransactionError
	}
	c.transaction = nil
	defer c.db.Locks.EndTransaction(c.owner.ID)

	for shared := range t.files {
		shared.Store.Rollback(c.owner.ID)
	}
	glog.V(2).Infof("client %d aborted a transaction on %d files", c.owner.ClientIdentifier, len(t.files))

	for _, f := range c.files {
		if t.files[f.shared] {
			f.refresh()
		}
	}

	return nil
}
