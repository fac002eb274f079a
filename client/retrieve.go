package client

import (
	"fmt"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/store"
)

// prepare runs before every operation that reads through the cursor and
// returns the lock mode that applies.
func (f *File) prepare(mode btrieve.LockMode) (btrieve.LockMode, error) {
	if err := f.usable(); err != nil {
		return mode, err
	}
	if err := f.enter(); err != nil {
		return mode, err
	}
	return f.lockMode(mode)
}

// place moves the cursor to m. The chunk offset is destroyed.
func (f *File) place(m store.Mark, version uint64) {
	f.mark = m
	f.edge = 0
	f.positioned = true
	f.current = m.Position
	f.version = version
	f.index = m.Index
	f.offset = noOffset
}

func (f *File) establish(m store.Mark, mode btrieve.LockMode) ([]byte, error) {
	err := f.readLock(m.Position, mode)
	if err != nil {
		return nil, err
	}
	data, version, err := f.store.Read(f.viewer(), m.Position)
	if err != nil {
		return nil, err
	}
	f.place(m, version)
	return data, nil
}

func (f *File) retrieve(mode btrieve.LockMode, find func() (store.Mark, error)) ([]byte, error) {
	mode, err := f.prepare(mode)
	if err != nil {
		return nil, err
	}
	m, err := find()
	if err != nil {
		return nil, err
	}
	return f.establish(m, mode)
}

// step is one relative move from m. A cursor that ran past one end comes
// back on the entry at that end.
func (f *File) step(m store.Mark, edge int, forward bool) (store.Mark, error) {
	switch {
	case forward && edge > 0, !forward && edge < 0:
		return store.Mark{}, btrieve.StatusEndOfFile
	case forward && edge < 0:
		return f.store.First(f.viewer(), m.Index)
	case !forward && edge > 0:
		return f.store.Last(f.viewer(), m.Index)
	case forward:
		return f.store.Next(f.viewer(), m)
	}
	return f.store.Previous(f.viewer(), m)
}

// move is a relative move of the cursor. Running off an end keeps the
// cursor where it was and answers StatusEndOfFile every time.
func (f *File) move(forward bool) (store.Mark, error) {
	if !f.positioned {
		return store.Mark{}, btrieve.StatusPositionNotSet
	}
	m, err := f.step(f.mark, f.edge, forward)
	if btrieve.StatusOf(err) == btrieve.StatusEndOfFile {
		if forward {
			f.edge = 1
		} else {
			f.edge = -1
		}
	}
	return m, err
}

// RecordRetrieve finds the first record whose key in index satisfies
// comparison against key. NOT_EQUAL and LIKE cannot position a cursor.
func (f *File) RecordRetrieve(comparison btrieve.Comparison, index btrieve.Index, key []byte, mode btrieve.LockMode) ([]byte, error) {
	return f.retrieve(mode, func() (store.Mark, error) {
		return f.store.Seek(f.viewer(), index, comparison, key)
	})
}

func (f *File) RecordRetrieveFirst(index btrieve.Index, mode btrieve.LockMode) ([]byte, error) {
	return f.retrieve(mode, func() (store.Mark, error) {
		return f.store.First(f.viewer(), index)
	})
}

func (f *File) RecordRetrieveLast(index btrieve.Index, mode btrieve.LockMode) ([]byte, error) {
	return f.retrieve(mode, func() (store.Mark, error) {
		return f.store.Last(f.viewer(), index)
	})
}

func (f *File) RecordRetrieveNext(mode btrieve.LockMode) ([]byte, error) {
	return f.retrieve(mode, func() (store.Mark, error) {
		return f.move(true)
	})
}

func (f *File) RecordRetrievePrevious(mode btrieve.LockMode) ([]byte, error) {
	return f.retrieve(mode, func() (store.Mark, error) {
		return f.move(false)
	})
}

// RecordRetrieveByCursorPosition reads the record at position and binds the
// cursor to index on it.
func (f *File) RecordRetrieveByCursorPosition(index btrieve.Index, position int64, mode btrieve.LockMode) ([]byte, error) {
	return f.retrieve(mode, func() (store.Mark, error) {
		return f.store.MarkOf(f.viewer(), index, position)
	})
}

// RecordRetrieveByPercentage reads the record found at percentage (0 to
// 10000) of index.
func (f *File) RecordRetrieveByPercentage(index btrieve.Index, percentage int, mode btrieve.LockMode) ([]byte, error) {
	return f.retrieve(mode, func() (store.Mark, error) {
		return f.store.ByPercentage(f.viewer(), index, percentage)
	})
}

func (f *File) RecordRetrieveByFraction(index btrieve.Index, numerator, denominator int, mode btrieve.LockMode) ([]byte, error) {
	return f.retrieve(mode, func() (store.Mark, error) {
		return f.store.ByFraction(f.viewer(), index, numerator, denominator)
	})
}

// keyRetrieve positions the cursor like a record retrieve but returns the
// key of the record. No record is read or locked.
func (f *File) keyRetrieve(find func() (store.Mark, error)) ([]byte, error) {
	if err := f.usable(); err != nil {
		return nil, err
	}
	if err := f.enter(); err != nil {
		return nil, err
	}
	m, err := find()
	if err != nil {
		return nil, err
	}
	if m.Index == btrieve.IndexNone {
		return nil, fmt.Errorf("physical order has no key: %w", btrieve.StatusInvalidIndexNumber)
	}
	version, err := f.store.Version(f.viewer(), m.Position)
	if err != nil {
		return nil, err
	}
	f.place(m, version)
	return append([]byte{}, m.Key...), nil
}

func (f *File) KeyRetrieve(comparison btrieve.Comparison, index btrieve.Index, key []byte) ([]byte, error) {
	return f.keyRetrieve(func() (store.Mark, error) {
		return f.store.Seek(f.viewer(), index, comparison, key)
	})
}

func (f *File) KeyRetrieveFirst(index btrieve.Index) ([]byte, error) {
	return f.keyRetrieve(func() (store.Mark, error) {
		return f.store.First(f.viewer(), index)
	})
}

func (f *File) KeyRetrieveLast(index btrieve.Index) ([]byte, error) {
	return f.keyRetrieve(func() (store.Mark, error) {
		return f.store.Last(f.viewer(), index)
	})
}

func (f *File) KeyRetrieveNext() ([]byte, error) {
	return f.keyRetrieve(func() (store.Mark, error) {
		return f.move(true)
	})
}

func (f *File) KeyRetrievePrevious() ([]byte, error) {
	return f.keyRetrieve(func() (store.Mark, error) {
		return f.move(false)
	})
}

// GetNumerator estimates where key falls in index as a fraction of
// denominator. A key past the last entry answers denominator.
func (f *File) GetNumerator(index btrieve.Index, key []byte, denominator int) (int, error) {
	if err := f.usable(); err != nil {
		return 0, err
	}
	if denominator < 1 {
		return 0, fmt.Errorf("denominator %d: %w", denominator, btrieve.StatusInvalidOption)
	}
	m, err := f.store.Seek(f.viewer(), index, btrieve.ComparisonGreaterThanOrEqual, key)
	if btrieve.StatusOf(err) == btrieve.StatusEndOfFile {
		return denominator, nil
	}
	if err != nil {
		return 0, err
	}
	return f.store.Numerator(f.viewer(), m, denominator)
}

// GetPercentage is GetNumerator over 10000.
func (f *File) GetPercentage(index btrieve.Index, key []byte) (int, error) {
	return f.GetNumerator(index, key, 10000)
}

// GetNumeratorByCursorPosition estimates where the record at position falls
// in the index of the cursor.
func (f *File) GetNumeratorByCursorPosition(position int64, denominator int) (int, error) {
	if err := f.usable(); err != nil {
		return 0, err
	}
	m, err := f.store.MarkOf(f.viewer(), f.index, position)
	if err != nil {
		return 0, err
	}
	return f.store.Numerator(f.viewer(), m, denominator)
}

func (f *File) GetPercentageByCursorPosition(position int64) (int, error) {
	return f.GetNumeratorByCursorPosition(position, 10000)
}
