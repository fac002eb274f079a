package store

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fulldump/btrievedb/btrieve"
)

// compressRecord turns a record into its stored form. Blank truncation
// keeps the original length in a 4 byte header and drops trailing spaces.
// Run length encoding stores (count, byte) pairs.
func compressRecord(mode btrieve.RecordCompressionMode, data []byte) []byte {
	switch mode {
	case btrieve.RecordCompressionModeBlankTruncation:
		trimmed := bytes.TrimRight(data, " ")
		stored := make([]byte, 4, 4+len(trimmed))
		binary.LittleEndian.PutUint32(stored, uint32(len(data)))
		return append(stored, trimmed...)
	case btrieve.RecordCompressionModeRunLengthEncoding:
		stored := make([]byte, 0, len(data)/2)
		for i := 0; i < len(data); {
			j := i + 1
			for j < len(data) && j-i < 255 && data[j] == data[i] {
				j++
			}
			stored = append(stored, byte(j-i), data[i])
			i = j
		}
		return stored
	}
	return append([]byte{}, data...)
}

func decompressRecord(mode btrieve.RecordCompressionMode, stored []byte) ([]byte, error) {
	switch mode {
	case btrieve.RecordCompressionModeBlankTruncation:
		if len(stored) < 4 {
			return nil, fmt.Errorf("truncated record header: %w", btrieve.StatusUnrecoverableError)
		}
		n := int(binary.LittleEndian.Uint32(stored))
		data := make([]byte, n)
		copied := copy(data, stored[4:])
		for i := copied; i < n; i++ {
			data[i] = ' '
		}
		return data, nil
	case btrieve.RecordCompressionModeRunLengthEncoding:
		if len(stored)%2 != 0 {
			return nil, fmt.Errorf("odd run length record: %w", btrieve.StatusUnrecoverableError)
		}
		data := []byte{}
		for i := 0; i < len(stored); i += 2 {
			data = append(data, bytes.Repeat([]byte{stored[i+1]}, int(stored[i]))...)
		}
		return data, nil
	}
	return append([]byte{}, stored...), nil
}
