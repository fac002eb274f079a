package client

import (
	"fmt"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/lock"
)

func (f *File) create(record []byte) (int64, []byte, error) {
	position, stored, err := f.store.Insert(f.writer(), record)
	if err != nil {
		return 0, nil, err
	}
	err = f.writeLock(position)
	if err != nil {
		f.store.Delete(f.writer(), position, 0)
		return 0, nil, err
	}
	return position, stored, nil
}

// RecordCreate inserts record and returns its position. Autoincrement
// fields left at zero are filled in record too. The cursor and the chunk
// offset are not affected.
func (f *File) RecordCreate(record []byte) (int64, error) {
	if err := f.writable(); err != nil {
		return 0, err
	}
	if err := f.enter(); err != nil {
		return 0, err
	}
	position, stored, err := f.create(record)
	if err != nil {
		return 0, err
	}
	copy(record, stored)
	return position, nil
}

// BulkCreate inserts every record independently. A record that fails does
// not stop the others: the result reports a status and a position for each.
func (f *File) BulkCreate(records [][]byte) (*btrieve.BulkCreateResult, error) {
	if err := f.writable(); err != nil {
		return nil, err
	}
	if err := f.enter(); err != nil {
		return nil, err
	}

	result := &btrieve.BulkCreateResult{
		Positions: make([]int64, 0, len(records)),
		Statuses:  make([]btrieve.StatusCode, 0, len(records)),
	}
	for _, record := range records {
		position, _, err := f.create(record)
		status := btrieve.StatusOf(err)
		result.Positions = append(result.Positions, position)
		result.Statuses = append(result.Statuses, status)
		if status != btrieve.StatusNoError {
			result.Status = status
		}
	}
	return result, nil
}

// rewrite replaces the current record with data. Records edited by chunk
// may grow past the limit of a single update.
func (f *File) rewrite(data []byte, chunked bool) error {
	if f.current == 0 {
		return btrieve.StatusPositionNotSet
	}
	err := f.writeLock(f.current)
	if err != nil {
		return err
	}
	if chunked {
		err = f.store.Rewrite(f.writer(), f.current, data, f.version)
	} else {
		err = f.store.Update(f.writer(), f.current, data, f.version)
	}
	if err != nil {
		return err
	}

	f.refresh()
	if f.positioned && f.edge == 0 {
		if m, err := f.store.MarkOf(f.viewer(), f.mark.Index, f.current); err == nil {
			f.mark = m
		}
	}
	return nil
}

// RecordUpdate replaces the current record. The cursor must be established
// and stays on the record, following its new key. A single record lock on
// it is released.
func (f *File) RecordUpdate(record []byte) error {
	if err := f.writable(); err != nil {
		return err
	}
	if err := f.enter(); err != nil {
		return err
	}
	err := f.rewrite(record, false)
	if err != nil {
		return err
	}
	f.releaseSingle(f.current)
	return nil
}

// RecordDelete removes the current record. The cursor becomes unpositioned.
func (f *File) RecordDelete() error {
	if err := f.writable(); err != nil {
		return err
	}
	if err := f.enter(); err != nil {
		return err
	}
	position := f.current
	if position == 0 {
		return btrieve.StatusPositionNotSet
	}
	err := f.writeLock(position)
	if err != nil {
		return err
	}
	err = f.store.Delete(f.writer(), position, f.version)
	if err != nil {
		return err
	}

	if f.client.transaction == nil {
		f.client.db.Locks.Unlock(f.client.owner.ID, lock.Record(f.shared.Name, position))
		if f.single == position {
			f.single = 0
		}
	}
	f.positioned = false
	f.current = 0
	f.version = 0
	f.offset = noOffset
	return nil
}

// chunk reads the current record for a chunk operation.
func (f *File) chunk(mode btrieve.LockMode) ([]byte, error) {
	if f.current == 0 {
		return nil, btrieve.StatusPositionNotSet
	}
	err := f.readLock(f.current, mode)
	if err != nil {
		return nil, err
	}
	data, _, err := f.store.Read(f.viewer(), f.current)
	return data, err
}

func (f *File) nextOffset() (int, error) {
	if f.offset == noOffset {
		return 0, fmt.Errorf("no chunk offset: %w", btrieve.StatusChunkCannotGetNext)
	}
	return f.offset, nil
}

// RecordRetrieveChunk reads up to length bytes of the current record from
// offset. The chunk offset moves to the end of the chunk.
func (f *File) RecordRetrieveChunk(offset, length int, mode btrieve.LockMode) ([]byte, error) {
	mode, err := f.prepare(mode)
	if err != nil {
		return nil, err
	}
	if offset < 0 || length < 0 {
		return nil, fmt.Errorf("chunk %d+%d: %w", offset, length, btrieve.StatusInvalidOption)
	}
	data, err := f.chunk(mode)
	if err != nil {
		return nil, err
	}
	if offset > len(data) {
		return nil, fmt.Errorf("offset %d of a %d byte record: %w", offset, len(data), btrieve.StatusChunkOffsetTooLong)
	}
	end := min(len(data), offset+length)
	f.offset = end
	return data[offset:end], nil
}

// RecordRetrieveNextChunk reads from the chunk offset left by the previous
// chunk operation.
func (f *File) RecordRetrieveNextChunk(length int, mode btrieve.LockMode) ([]byte, error) {
	if err := f.usable(); err != nil {
		return nil, err
	}
	offset, err := f.nextOffset()
	if err != nil {
		return nil, err
	}
	return f.RecordRetrieveChunk(offset, length, mode)
}

// editChunk applies edit to the current record and stores the result.
// edit returns the new record and the new chunk offset.
func (f *File) editChunk(edit func(data []byte) ([]byte, int, error)) error {
	if err := f.writable(); err != nil {
		return err
	}
	if err := f.enter(); err != nil {
		return err
	}
	data, err := f.chunk(btrieve.LockModeNone)
	if err != nil {
		return err
	}
	data, offset, err := edit(data)
	if err != nil {
		return err
	}
	err = f.rewrite(data, true)
	if err != nil {
		return err
	}
	f.offset = offset
	return nil
}

// RecordAppendChunk adds chunk at the end of the current record.
func (f *File) RecordAppendChunk(chunk []byte) error {
	return f.editChunk(func(data []byte) ([]byte, int, error) {
		data = append(data, chunk...)
		return data, len(data), nil
	})
}

// RecordUpdateChunk overwrites the current record from offset, growing it
// when chunk goes past its end.
func (f *File) RecordUpdateChunk(offset int, chunk []byte) error {
	return f.editChunk(func(data []byte) ([]byte, int, error) {
		if offset < 0 || offset > len(data) {
			return nil, 0, fmt.Errorf("offset %d of a %d byte record: %w", offset, len(data), btrieve.StatusChunkOffsetTooLong)
		}
		end := offset + len(chunk)
		if end > len(data) {
			data = append(data, make([]byte, end-len(data))...)
		}
		copy(data[offset:], chunk)
		return data, end, nil
	})
}

func (f *File) RecordUpdateNextChunk(chunk []byte) error {
	if err := f.usable(); err != nil {
		return err
	}
	offset, err := f.nextOffset()
	if err != nil {
		return err
	}
	return f.RecordUpdateChunk(offset, chunk)
}

// RecordTruncate shortens the current record to offset bytes. The chunk
// offset moves to the new end of the record.
func (f *File) RecordTruncate(offset int) error {
	return f.editChunk(func(data []byte) ([]byte, int, error) {
		if offset < 0 || offset > len(data) {
			return nil, 0, fmt.Errorf("offset %d of a %d byte record: %w", offset, len(data), btrieve.StatusChunkOffsetTooLong)
		}
		return data[:offset], offset, nil
	})
}

// RecordTruncateAtOffset truncates the current record at the chunk offset.
func (f *File) RecordTruncateAtOffset() error {
	if err := f.usable(); err != nil {
		return err
	}
	offset, err := f.nextOffset()
	if err != nil {
		return err
	}
	return f.RecordTruncate(offset)
}
