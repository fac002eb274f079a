package store

import (
	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/btrieve"
)

// pending marks a row changed by a running transaction. Other owners keep
// reading the committed image until Commit; a nil image means the row was
// inserted by the transaction.
type pending struct {
	owner uint64
	image *image
	gone  bool
}

type image struct {
	stored  []byte
	version uint64
	entries map[btrieve.Index]*entry
}

// journaled is a row command waiting for the commit of its transaction.
type journaled struct {
	name    string
	payload *rowPayload
}

func (r *Row) owner() uint64 {
	if r.pending == nil {
		return Committed
	}
	return r.pending.owner
}

func (r *Row) visible(owner uint64) bool {
	p := r.pending
	if p == nil {
		return true
	}
	if p.owner == owner {
		return !p.gone
	}
	return p.image != nil
}

// seen returns the stored form, version and keys of the row for owner.
func (r *Row) seen(owner uint64) ([]byte, uint64, map[btrieve.Index]*entry) {
	p := r.pending
	if p == nil || p.owner == owner || p.image == nil {
		return r.stored, r.version, r.entries
	}
	return p.image.stored, p.image.version, p.image.entries
}

func (e *entry) visible(owner uint64) bool {
	p := e.row.pending
	if p == nil || p.owner == owner {
		return e.current
	}
	return e.committed
}

// claim fails when row has changes of another running transaction.
func (s *Store) claim(row *Row, owner uint64) error {
	if p := row.pending; p != nil && p.owner != owner {
		return btrieve.StatusRecordInUse
	}
	return nil
}

// hold keeps the committed image of row before owner changes it.
func (s *Store) hold(row *Row, owner uint64) {
	if owner == Committed || row.pending != nil {
		return
	}
	entries := make(map[btrieve.Index]*entry, len(row.entries))
	for n, e := range row.entries {
		entries[n] = e
	}
	row.pending = &pending{
		owner: owner,
		image: &image{
			stored:  row.stored,
			version: row.version,
			entries: entries,
		},
	}
	s.pending[row.Position] = row
}

// retire takes e out of the current keys of its row. Committed keys of a
// pending row stay in the index for the other owners.
func (s *Store) retire(index *Index, e *entry) {
	if e.row.pending != nil && e.committed {
		e.current = false
		return
	}
	index.tree.Delete(e)
}

// log writes a row command, or journals it when row belongs to a running
// transaction.
func (s *Store) log(row *Row, name string, payload *rowPayload) error {
	if row.pending == nil {
		return s.persist(name, payload)
	}
	owner := row.pending.owner
	s.journal[owner] = append(s.journal[owner], journaled{name: name, payload: payload})
	return nil
}

func (s *Store) owned(owner uint64) []*Row {
	rows := []*Row{}
	for _, row := range s.pending {
		if row.pending.owner == owner {
			rows = append(rows, row)
		}
	}
	return rows
}

// Commit writes the journal of owner to the log, in the order the changes
// were made, and makes them visible to everybody.
func (s *Store) Commit(owner uint64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var lastErr error
	for _, j := range s.journal[owner] {
		err := s.persist(j.name, j.payload)
		if err != nil {
			glog.Errorf("store '%s': commit %s at %d: %s", s.filename, j.name, j.payload.Position, err.Error())
			lastErr = err
			break
		}
		switch j.name {
		case commandUpdate:
			s.dead++
		case commandDelete:
			s.dead += 2
		}
	}
	delete(s.journal, owner)

	for _, row := range s.owned(owner) {
		p := row.pending
		if p.gone {
			s.removeRow(row)
			continue
		}
		if p.image != nil {
			for n, e := range p.image.entries {
				if !e.current {
					s.indexes[n].tree.Delete(e)
				}
			}
			if s.options.Cache != nil && p.image.version != row.version {
				s.options.Cache.Del(p.image.version)
			}
		}
		for _, e := range row.entries {
			e.committed = true
		}
		row.pending = nil
		delete(s.pending, row.Position)
	}

	return lastErr
}

// Rollback discards the changes of owner, bringing back the committed
// images.
func (s *Store) Rollback(owner uint64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.journal, owner)

	for _, row := range s.owned(owner) {
		p := row.pending
		if p.image == nil {
			s.removeRow(row)
			continue
		}
		for n, e := range row.entries {
			if !e.committed {
				s.indexes[n].tree.Delete(e)
			}
		}
		for _, e := range p.image.entries {
			e.current = true
		}
		if s.options.Cache != nil && p.image.version != row.version {
			s.options.Cache.Del(row.version)
		}
		row.stored = p.image.stored
		row.version = p.image.version
		row.entries = p.image.entries
		row.pending = nil
		delete(s.pending, row.Position)
	}
}
