package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fulldump/btrievedb/btrieve"
)

func Environment(f func(filename string)) {
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("store-%v", time.Now().UnixNano()))
	defer os.Remove(filename)
	defer os.Remove(filename + ".tmp")

	f(filename)
}

// square is the 11 byte record x, x*x, sqrt(x).
func square(x int) []byte {
	record := make([]byte, 11)
	record[0] = byte(x)
	binary.LittleEndian.PutUint16(record[1:], uint16(x*x))
	binary.LittleEndian.PutUint64(record[3:], math.Float64bits(math.Sqrt(float64(x))))
	return record
}

func squaresAttributes() (btrieve.FileAttributes, btrieve.IndexAttributes) {
	file := btrieve.DefaultFileAttributes()
	file.FixedRecordLength = 11

	index := btrieve.DefaultIndexAttributes()
	index.Segments = []btrieve.KeySegment{
		{Offset: 0, Length: 1, DataType: btrieve.DataTypeUnsignedBinary},
	}

	return file, index
}

func createSquares(filename string, options Options) *Store {
	file, index := squaresAttributes()
	s, err := Create(filename, file, []btrieve.IndexAttributes{index}, options)
	if err != nil {
		panic(err)
	}
	for x := 0; x < 256; x++ {
		_, _, err := s.Insert(Committed, square(x))
		if err != nil {
			panic(err)
		}
	}
	return s
}

// read returns the committed record at position.
func (s *Store) read(position int64) ([]byte, error) {
	data, _, err := s.Read(Committed, position)
	return data, err
}
