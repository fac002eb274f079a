package store

import (
	"encoding/binary"
	"fmt"

	"github.com/fulldump/btrievedb/btrieve"
)

// Mark is the place of a cursor in one index. It keeps the key and
// sequence of the entry so relative moves still work after the record is
// deleted.
type Mark struct {
	Index      btrieve.Index
	Position   int64
	Key        []byte
	Seq        uint64
	generation uint64
}

// positional reports whether n walks records in position order. The system
// index is the position itself, 8 bytes little endian.
func (s *Store) positional(n btrieve.Index) (bool, error) {
	switch n {
	case btrieve.IndexNone:
		return true, nil
	case btrieve.IndexSystem:
		if s.attributes.SystemDataMode == btrieve.SystemDataModeNo {
			return true, fmt.Errorf("file has no system data: %w", btrieve.StatusInvalidIndexNumber)
		}
		return true, nil
	}
	return false, nil
}

func (s *Store) rowMark(n btrieve.Index, row *Row) Mark {
	m := Mark{
		Index:      n,
		Position:   row.Position,
		generation: s.generation,
	}
	if n == btrieve.IndexSystem {
		m.Key = SystemKey(row.Position)
	}
	return m
}

func (s *Store) entryMark(n btrieve.Index, e *entry) Mark {
	return Mark{
		Index:      n,
		Position:   e.row.Position,
		Key:        append([]byte{}, e.key...),
		Seq:        e.seq,
		generation: s.generation,
	}
}

func SystemKey(position int64) []byte {
	key := make([]byte, 8)
	binary.LittleEndian.PutUint64(key, uint64(position))
	return key
}

// sized checks a search key against the key length of the index.
func sized(key []byte, length int) ([]byte, error) {
	if len(key) < length {
		return nil, fmt.Errorf("key of %d bytes, index needs %d: %w", len(key), length, btrieve.StatusKeyBufferTooShort)
	}
	return key[:length], nil
}

// rowTaker and entryTaker stop a tree walk at the first item owner sees.
func rowTaker(owner uint64, found **Row) func(*Row) bool {
	return func(row *Row) bool {
		if !row.visible(owner) {
			return true
		}
		*found = row
		return false
	}
}

func entryTaker(owner uint64, found **entry) func(*entry) bool {
	return func(e *entry) bool {
		if !e.visible(owner) {
			return true
		}
		*found = e
		return false
	}
}

func (s *Store) First(owner uint64, n btrieve.Index) (Mark, error) {
	return s.edge(owner, n, true)
}

func (s *Store) Last(owner uint64, n btrieve.Index) (Mark, error) {
	return s.edge(owner, n, false)
}

func (s *Store) edge(owner uint64, n btrieve.Index, first bool) (Mark, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	positional, err := s.positional(n)
	if err != nil {
		return Mark{}, err
	}
	if positional {
		var found *Row
		if first {
			s.physical.Ascend(rowTaker(owner, &found))
		} else {
			s.physical.Descend(rowTaker(owner, &found))
		}
		if found == nil {
			return Mark{}, btrieve.StatusEndOfFile
		}
		return s.rowMark(n, found), nil
	}

	index, err := s.index(n)
	if err != nil {
		return Mark{}, err
	}
	var found *entry
	if first {
		index.tree.Ascend(entryTaker(owner, &found))
	} else {
		index.tree.Descend(entryTaker(owner, &found))
	}
	if found == nil {
		return Mark{}, btrieve.StatusEndOfFile
	}
	return s.entryMark(n, found), nil
}

// Seek finds the first entry of index n satisfying comparison against key.
// An EQUAL miss is StatusKeyValueNotFound, any other miss StatusEndOfFile.
func (s *Store) Seek(owner uint64, n btrieve.Index, comparison btrieve.Comparison, key []byte) (Mark, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	switch comparison {
	case btrieve.ComparisonEqual,
		btrieve.ComparisonGreaterThan, btrieve.ComparisonGreaterThanOrEqual,
		btrieve.ComparisonLessThan, btrieve.ComparisonLessThanOrEqual:
	default:
		return Mark{}, fmt.Errorf("comparison %s cannot position a cursor: %w", comparison, btrieve.StatusInvalidGetExpression)
	}

	positional, err := s.positional(n)
	if err != nil {
		return Mark{}, err
	}
	if n == btrieve.IndexNone {
		return Mark{}, fmt.Errorf("physical order has no key: %w", btrieve.StatusInvalidIndexNumber)
	}
	if positional {
		key, err := sized(key, 8)
		if err != nil {
			return Mark{}, err
		}
		return s.seekSystem(owner, comparison, int64(binary.LittleEndian.Uint64(key)))
	}

	index, err := s.index(n)
	if err != nil {
		return Mark{}, err
	}
	key, err = sized(key, index.attributes.KeyLength())
	if err != nil {
		return Mark{}, err
	}

	var found *entry
	take := entryTaker(owner, &found)
	switch comparison {
	case btrieve.ComparisonEqual, btrieve.ComparisonGreaterThanOrEqual:
		index.tree.AscendGreaterOrEqual(lowest(key), take)
	case btrieve.ComparisonGreaterThan:
		index.tree.AscendGreaterOrEqual(highest(key), take)
	case btrieve.ComparisonLessThan:
		index.tree.DescendLessOrEqual(lowest(key), take)
	case btrieve.ComparisonLessThanOrEqual:
		index.tree.DescendLessOrEqual(highest(key), take)
	}

	if comparison == btrieve.ComparisonEqual {
		if found == nil || index.compare(found.key, key) != 0 {
			return Mark{}, btrieve.StatusKeyValueNotFound
		}
	}
	if found == nil {
		return Mark{}, btrieve.StatusEndOfFile
	}

	return s.entryMark(n, found), nil
}

func (s *Store) seekSystem(owner uint64, comparison btrieve.Comparison, position int64) (Mark, error) {

	var found *Row
	take := rowTaker(owner, &found)
	switch comparison {
	case btrieve.ComparisonEqual, btrieve.ComparisonGreaterThanOrEqual:
		s.physical.AscendGreaterOrEqual(&Row{Position: position}, take)
	case btrieve.ComparisonGreaterThan:
		s.physical.AscendGreaterOrEqual(&Row{Position: position + 1}, take)
	case btrieve.ComparisonLessThan:
		s.physical.DescendLessOrEqual(&Row{Position: position - 1}, take)
	case btrieve.ComparisonLessThanOrEqual:
		s.physical.DescendLessOrEqual(&Row{Position: position}, take)
	}

	if comparison == btrieve.ComparisonEqual && (found == nil || found.Position != position) {
		return Mark{}, btrieve.StatusKeyValueNotFound
	}
	if found == nil {
		return Mark{}, btrieve.StatusEndOfFile
	}
	return s.rowMark(btrieve.IndexSystem, found), nil
}

// Next moves one entry forward from m. The entry m points to may have been
// deleted meanwhile.
func (s *Store) Next(owner uint64, m Mark) (Mark, error) {
	return s.step(owner, m, true)
}

func (s *Store) Previous(owner uint64, m Mark) (Mark, error) {
	return s.step(owner, m, false)
}

func (s *Store) step(owner uint64, m Mark, forward bool) (Mark, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	positional, err := s.positional(m.Index)
	if err != nil {
		return Mark{}, err
	}
	if positional {
		var found *Row
		take := rowTaker(owner, &found)
		if forward {
			s.physical.AscendGreaterOrEqual(&Row{Position: m.Position + 1}, take)
		} else {
			s.physical.DescendLessOrEqual(&Row{Position: m.Position - 1}, take)
		}
		if found == nil {
			return Mark{}, btrieve.StatusEndOfFile
		}
		return s.rowMark(m.Index, found), nil
	}

	if m.generation != s.generation {
		return Mark{}, fmt.Errorf("indexes were renumbered: %w", btrieve.StatusLostPosition)
	}
	index, err := s.index(m.Index)
	if err != nil {
		return Mark{}, err
	}

	pivot := &entry{key: m.Key, seq: m.Seq}
	var found *entry
	take := func(e *entry) bool {
		if !index.less(pivot, e) && !index.less(e, pivot) {
			return true
		}
		if !e.visible(owner) {
			return true
		}
		found = e
		return false
	}
	if forward {
		index.tree.AscendGreaterOrEqual(pivot, take)
	} else {
		index.tree.DescendLessOrEqual(pivot, take)
	}
	if found == nil {
		return Mark{}, btrieve.StatusEndOfFile
	}
	return s.entryMark(m.Index, found), nil
}

// MarkOf places a cursor of index n on the record at position.
func (s *Store) MarkOf(owner uint64, n btrieve.Index, position int64) (Mark, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	row, err := s.visibleRow(position, owner)
	if err != nil {
		return Mark{}, err
	}

	positional, err := s.positional(n)
	if err != nil {
		return Mark{}, err
	}
	if positional {
		return s.rowMark(n, row), nil
	}

	if _, err := s.index(n); err != nil {
		return Mark{}, err
	}
	_, _, entries := row.seen(owner)
	e, ok := entries[n]
	if !ok {
		return Mark{}, fmt.Errorf("position %d has a null key in index %s: %w", position, n, btrieve.StatusKeyValueNotFound)
	}
	return s.entryMark(n, e), nil
}

// rank counts the entries of the index of m that sort before m, and all of
// them, as owner sees them.
func (s *Store) rank(owner uint64, m Mark) (int, int, error) {

	positional, err := s.positional(m.Index)
	if err != nil {
		return 0, 0, err
	}
	r, total := 0, 0
	if positional && len(s.pending) == 0 {
		s.physical.AscendLessThan(&Row{Position: m.Position}, func(*Row) bool {
			r++
			return true
		})
		return r, s.physical.Len(), nil
	}
	if positional {
		s.physical.Ascend(func(row *Row) bool {
			if !row.visible(owner) {
				return true
			}
			if row.Position < m.Position {
				r++
			}
			total++
			return true
		})
		return r, total, nil
	}

	index, err := s.index(m.Index)
	if err != nil {
		return 0, 0, err
	}
	pivot := &entry{key: m.Key, seq: m.Seq}
	if len(s.pending) == 0 {
		index.tree.AscendLessThan(pivot, func(*entry) bool {
			r++
			return true
		})
		return r, index.tree.Len(), nil
	}
	index.tree.Ascend(func(e *entry) bool {
		if !e.visible(owner) {
			return true
		}
		if index.less(e, pivot) {
			r++
		}
		total++
		return true
	})
	return r, total, nil
}

// nth returns the entry of rank r of index n.
func (s *Store) nth(owner uint64, n btrieve.Index, r int) (Mark, error) {

	positional, err := s.positional(n)
	if err != nil {
		return Mark{}, err
	}

	var m Mark
	found := false
	i := 0
	if positional {
		s.physical.Ascend(func(row *Row) bool {
			if !row.visible(owner) {
				return true
			}
			if i == r {
				m, found = s.rowMark(n, row), true
				return false
			}
			i++
			return true
		})
	} else {
		index, err := s.index(n)
		if err != nil {
			return Mark{}, err
		}
		index.tree.Ascend(func(e *entry) bool {
			if !e.visible(owner) {
				return true
			}
			if i == r {
				m, found = s.entryMark(n, e), true
				return false
			}
			i++
			return true
		})
	}
	if !found {
		return Mark{}, btrieve.StatusEndOfFile
	}
	return m, nil
}

// Numerator estimates the place of m as a fraction of denominator: the rank
// of m among the entries of its index, scaled so the first entry is 0 and
// the last one is denominator.
func (s *Store) Numerator(owner uint64, m Mark, denominator int) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if denominator < 1 {
		return 0, fmt.Errorf("denominator %d: %w", denominator, btrieve.StatusInvalidOption)
	}
	r, total, err := s.rank(owner, m)
	if err != nil {
		return 0, err
	}
	if total < 2 {
		return 0, nil
	}
	return min(r, total-1) * denominator / (total - 1), nil
}

// Percentage is Numerator over 10000 (100.00%).
func (s *Store) Percentage(owner uint64, m Mark) (int, error) {
	return s.Numerator(owner, m, 10000)
}

// ByFraction is the inverse of Numerator, rounding to the closest entry.
func (s *Store) ByFraction(owner uint64, n btrieve.Index, numerator, denominator int) (Mark, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if denominator < 1 || numerator < 0 || numerator > denominator {
		return Mark{}, fmt.Errorf("fraction %d/%d: %w", numerator, denominator, btrieve.StatusInvalidOption)
	}

	positional, err := s.positional(n)
	if err != nil {
		return Mark{}, err
	}
	total := s.count(owner)
	if !positional {
		index, err := s.index(n)
		if err != nil {
			return Mark{}, err
		}
		total = 0
		index.tree.Ascend(func(e *entry) bool {
			if e.visible(owner) {
				total++
			}
			return true
		})
	}
	if total == 0 {
		return Mark{}, btrieve.StatusEndOfFile
	}

	r := (numerator*(total-1) + denominator/2) / denominator
	return s.nth(owner, n, r)
}

func (s *Store) ByPercentage(owner uint64, n btrieve.Index, percentage int) (Mark, error) {
	return s.ByFraction(owner, n, percentage, 10000)
}
