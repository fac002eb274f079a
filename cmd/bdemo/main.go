package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/fulldump/goconfig"
	"github.com/golang/glog"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/client"
	"github.com/fulldump/btrievedb/database"
)

const fileName = "squaresAndSquareRoots.btr"

// record is x, x squared and the square root of x in 11 packed bytes.
type record struct {
	X           uint8
	XSquared    uint16
	XSquareRoot float64
}

func (r record) encode() []byte {
	data := make([]byte, 11)
	data[0] = r.X
	binary.LittleEndian.PutUint16(data[1:], r.XSquared)
	binary.LittleEndian.PutUint64(data[3:], math.Float64bits(r.XSquareRoot))
	return data
}

func decode(data []byte) record {
	return record{
		X:           data[0],
		XSquared:    binary.LittleEndian.Uint16(data[1:]),
		XSquareRoot: math.Float64frombits(binary.LittleEndian.Uint64(data[3:])),
	}
}

type Config struct {
	Dir string `usage:"data directory, a temporary one when empty"`
	X   int    `usage:"value between 0 and 255 to look up"`
}

func main() {

	c := Config{
		X: 16,
	}
	goconfig.Read(&c)

	if c.X < 0 || c.X > 255 {
		fmt.Printf("Usage: %s -x uint8_value, where uint8_value is between 0 and 255 inclusive\n", os.Args[0])
		os.Exit(1)
	}

	if c.Dir == "" {
		dir, err := os.MkdirTemp("", "bdemo-")
		if err != nil {
			glog.Exitf("temp dir: %s", err)
		}
		defer os.RemoveAll(dir)
		c.Dir = dir
	}

	db := database.NewDatabase(&database.Config{
		Dir: c.Dir,
	})
	if err := db.Load(); err != nil {
		glog.Exitf("load: %s", err)
	}
	defer db.Stop()

	err := run(os.Stdout, db, uint8(c.X))
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(int(btrieve.StatusOf(err)))
	}
}

// run builds the lookup table, indexes it, looks x up and removes the
// file again.
func run(w io.Writer, db *database.Database, x uint8) error {

	c := client.New(db, 0, 0)
	defer c.Stop()

	file := btrieve.DefaultFileAttributes()
	file.FixedRecordLength = 11
	fmt.Fprintf(w, "createFile: FixedRecordLength = %d\n", file.FixedRecordLength)
	err := c.FileCreate(file, nil, fileName, btrieve.CreateModeOverwrite)
	if err != nil {
		return fmt.Errorf("file create: %w", err)
	}

	f, err := c.FileOpen(fileName, "", btrieve.OpenModeNormal)
	if err != nil {
		return fmt.Errorf("file open: %w", err)
	}

	fmt.Fprintf(w, "loadFile: building lookup table of squares and square roots\n")
	for i := 0; i <= 255; i++ {
		r := record{
			X:           uint8(i),
			XSquared:    uint16(i * i),
			XSquareRoot: math.Sqrt(float64(i)),
		}
		_, err := f.RecordCreate(r.encode())
		if err != nil {
			return fmt.Errorf("record create %d: %w", i, err)
		}
	}
	fmt.Fprintf(w, "loadFile: %d records loaded\n", 256)

	index := btrieve.DefaultIndexAttributes()
	index.Segments = []btrieve.KeySegment{
		{Offset: 0, Length: 1, DataType: btrieve.DataTypeUnsignedBinary},
	}
	_, err = f.IndexCreate(index)
	if err != nil {
		return fmt.Errorf("index create: %w", err)
	}
	fmt.Fprintf(w, "createIndex: done\n")

	data, err := f.RecordRetrieve(btrieve.ComparisonEqual, btrieve.IndexFirst, []byte{x}, btrieve.LockModeNone)
	if err != nil {
		return fmt.Errorf("record retrieve %d: %w", x, err)
	}
	r := decode(data)
	fmt.Fprintf(w, "retrieveRecord: x = %d, x squared = %d, square root of x = %f\n", r.X, r.XSquared, r.XSquareRoot)

	err = c.FileClose(f)
	if err != nil {
		return fmt.Errorf("file close: %w", err)
	}
	err = c.FileDelete(fileName, "")
	if err != nil {
		return fmt.Errorf("file delete: %w", err)
	}
	fmt.Fprintf(w, "deleteFile: done\n")

	return nil
}
