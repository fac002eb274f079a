package client

import (
	"fmt"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/store"
)

// BulkRetrieveNext scans forward from the cursor and collects the records
// accepted by the filters of attributes.
func (f *File) BulkRetrieveNext(attributes *btrieve.BulkRetrieveAttributes, mode btrieve.LockMode) (*btrieve.BulkRetrieveResult, error) {
	return f.bulkRetrieve(attributes, mode, true)
}

// BulkRetrievePrevious scans backward from the cursor.
func (f *File) BulkRetrievePrevious(attributes *btrieve.BulkRetrieveAttributes, mode btrieve.LockMode) (*btrieve.BulkRetrieveResult, error) {
	return f.bulkRetrieve(attributes, mode, false)
}

// bulkRetrieve examines the current record, unless asked to skip it, and
// then moves one record at a time. The scan stops once the maximum record
// count is collected, the reject limit is reached, or the index ends; the
// condition is reported in the result status. The cursor is left on the
// last record examined.
func (f *File) bulkRetrieve(attributes *btrieve.BulkRetrieveAttributes, mode btrieve.LockMode, forward bool) (*btrieve.BulkRetrieveResult, error) {
	mode, err := f.prepare(mode)
	if err != nil {
		return nil, err
	}
	if mode.Single() {
		return nil, fmt.Errorf("bulk retrieve with %s: %w", mode, btrieve.StatusIncompatibleLockType)
	}
	if !f.positioned {
		return nil, btrieve.StatusPositionNotSet
	}
	err = attributes.Validate()
	if err != nil {
		return nil, err
	}

	result := &btrieve.BulkRetrieveResult{
		Records: []btrieve.BulkRecord{},
	}

	m := f.mark
	if attributes.SkipCurrentRecord || f.edge != 0 {
		m, err = f.step(m, f.edge, forward)
	}

	var last *store.Mark
	var version uint64
	rejects := 0
	limit := attributes.RejectLimit()
	for err == nil {
		data, v, readErr := f.store.Read(f.viewer(), m.Position)
		if readErr != nil {
			// deleted behind the cursor
			m, err = f.step(m, 0, forward)
			continue
		}
		examined := m
		last, version = &examined, v

		if !btrieve.MatchFilters(attributes.Filters, data) {
			rejects++
			if rejects >= limit {
				result.Status = btrieve.StatusRejectCountReached
				break
			}
			m, err = f.step(m, 0, forward)
			continue
		}

		if lockErr := f.readLock(m.Position, mode); lockErr != nil {
			result.Status = btrieve.StatusOf(lockErr)
			break
		}
		result.Records = append(result.Records, btrieve.BulkRecord{
			Position: m.Position,
			Data:     attributes.Extract(data),
		})
		if len(result.Records) >= attributes.MaximumRecordCount {
			break
		}
		m, err = f.step(m, 0, forward)
	}
	if err != nil {
		result.Status = btrieve.StatusOf(err)
	}

	if last != nil {
		f.place(*last, version)
	} else if result.Status == btrieve.StatusEndOfFile {
		if forward {
			f.edge = 1
		} else {
			f.edge = -1
		}
	}

	return result, nil
}
