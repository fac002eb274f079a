package client

import (
	"encoding/binary"
	"math"
	"os"
	"time"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
)

func Environment(f func(db *database.Database, c *Client)) {
	dir, err := os.MkdirTemp("", "btrievedb-client-")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	db := database.NewDatabase(&database.Config{
		Dir:         dir,
		Name:        "demodata",
		LockTimeout: 5 * time.Second,
		Users:       map[string]string{"admin": "secret"},
	})
	if err := db.Load(); err != nil {
		panic(err)
	}
	defer db.Stop()

	c := New(db, 1, 1)
	defer c.Reset()

	f(db, c)
}

// square is the 11 byte record x, x*x, sqrt(x).
func square(x int) []byte {
	record := make([]byte, 11)
	record[0] = byte(x)
	binary.LittleEndian.PutUint16(record[1:], uint16(x*x))
	binary.LittleEndian.PutUint64(record[3:], math.Float64bits(math.Sqrt(float64(x))))
	return record
}

func createSquaresFile(c *Client, name string) {
	file := btrieve.DefaultFileAttributes()
	file.FixedRecordLength = 11

	index := btrieve.DefaultIndexAttributes()
	index.Segments = []btrieve.KeySegment{
		{Offset: 0, Length: 1, DataType: btrieve.DataTypeUnsignedBinary},
	}

	err := c.FileCreate(file, []btrieve.IndexAttributes{index}, name, btrieve.CreateModeOverwrite)
	if err != nil {
		panic(err)
	}
}

// squares creates squares.btr with the 256 records of x = 0..255 and opens
// it.
func squares(c *Client) *File {
	createSquaresFile(c, "squares.btr")
	f, err := c.FileOpen("squares.btr", "", btrieve.OpenModeNormal)
	if err != nil {
		panic(err)
	}
	for x := 0; x < 256; x++ {
		if _, err := f.RecordCreate(square(x)); err != nil {
			panic(err)
		}
	}
	return f
}

// notes creates and opens a variable length file without indexes.
func notes(c *Client) *File {
	file := btrieve.DefaultFileAttributes()
	file.VariableLengthRecords = btrieve.VariableLengthRecordsModeYes

	err := c.FileCreate(file, nil, "notes.btr", btrieve.CreateModeOverwrite)
	if err != nil {
		panic(err)
	}
	f, err := c.FileOpen("notes.btr", "", btrieve.OpenModeNormal)
	if err != nil {
		panic(err)
	}
	return f
}

func count(f *File) int {
	info, err := f.GetInformation()
	if err != nil {
		panic(err)
	}
	return info.RecordCount
}
