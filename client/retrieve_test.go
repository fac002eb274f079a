package client

import (
	"encoding/binary"
	"math"
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/btrievedb/btrieve"
	"github.com/fulldump/btrievedb/database"
	"github.com/fulldump/btrievedb/store"
)

func TestSquares(t *testing.T) {
	Alternative("Squares", func(a *A) {
		Environment(func(db *database.Database, c *Client) {

			f := squares(c)
			AssertEqual(count(f), 256)

			a.Alternative("Retrieve equal", func(a *A) {
				record, err := f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
				AssertNil(err)
				AssertEqual(int(record[0]), 16)
				AssertEqual(binary.LittleEndian.Uint16(record[1:]), uint16(256))
				AssertTrue(math.Abs(math.Float64frombits(binary.LittleEndian.Uint64(record[3:]))-4.0) < 1e-9)
			})

			a.Alternative("Traverse in order", func(a *A) {
				record, err := f.RecordRetrieveFirst(0, btrieve.LockModeNone)
				AssertNil(err)
				AssertEqual(int(record[0]), 0)
				for x := 1; x < 256; x++ {
					record, err := f.RecordRetrieveNext(btrieve.LockModeNone)
					AssertNil(err)
					AssertEqual(record, square(x))
				}
				_, err = f.RecordRetrieveNext(btrieve.LockModeNone)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusEndOfFile)
			})

			a.Alternative("Duplicate key", func(a *A) {
				_, err := f.RecordCreate(square(16))
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusDuplicateKeyValue)
				AssertEqual(btrieve.StatusOf(err).Class(), btrieve.ClassValidation)
				AssertEqual(count(f), 256)
			})
		})
	})
}

func TestFile_CursorBoundary(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)

		_, err := f.RecordRetrieveNext(btrieve.LockModeNone)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusPositionNotSet)

		_, err = f.RecordRetrieveLast(0, btrieve.LockModeNone)
		AssertNil(err)
		for i := 0; i < 3; i++ {
			_, err = f.RecordRetrieveNext(btrieve.LockModeNone)
			AssertEqual(btrieve.StatusOf(err), btrieve.StatusEndOfFile)
		}
		record, err := f.RecordRetrievePrevious(btrieve.LockModeNone)
		AssertNil(err)
		AssertEqual(record, square(255))

		_, err = f.RecordRetrieveFirst(0, btrieve.LockModeNone)
		AssertNil(err)
		_, err = f.RecordRetrievePrevious(btrieve.LockModeNone)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusEndOfFile)
		record, err = f.RecordRetrieveNext(btrieve.LockModeNone)
		AssertNil(err)
		AssertEqual(record, square(0))
	})
}

func TestFile_RecordRetrieve(t *testing.T) {
	Alternative("File RecordRetrieve", func(a *A) {
		Environment(func(db *database.Database, c *Client) {

			f := squares(c)

			a.Alternative("Not equal cannot position", func(a *A) {
				_, err := f.RecordRetrieve(btrieve.ComparisonNotEqual, 0, []byte{16}, btrieve.LockModeNone)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidGetExpression)
			})

			a.Alternative("Comparisons", func(a *A) {
				record, _ := f.RecordRetrieve(btrieve.ComparisonGreaterThan, 0, []byte{16}, btrieve.LockModeNone)
				AssertEqual(record, square(17))
				record, _ = f.RecordRetrieve(btrieve.ComparisonLessThan, 0, []byte{16}, btrieve.LockModeNone)
				AssertEqual(record, square(15))
				record, _ = f.RecordRetrieve(btrieve.ComparisonLessThanOrEqual, 0, []byte{16}, btrieve.LockModeNone)
				AssertEqual(record, square(16))
				_, err := f.RecordRetrieve(btrieve.ComparisonGreaterThan, 0, []byte{255}, btrieve.LockModeNone)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusEndOfFile)
			})

			a.Alternative("Missing key", func(a *A) {
				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
				f.RecordDelete()
				_, err := f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{16}, btrieve.LockModeNone)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusKeyValueNotFound)
			})

			a.Alternative("Invalid index", func(a *A) {
				_, err := f.RecordRetrieveFirst(7, btrieve.LockModeNone)
				AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidIndexNumber)
			})

			a.Alternative("By cursor position", func(a *A) {
				f.RecordRetrieve(btrieve.ComparisonEqual, 0, []byte{40}, btrieve.LockModeNone)
				position, err := f.GetCursorPosition()
				AssertNil(err)
				AssertEqual(position, int64(41))

				f.RecordRetrieveFirst(0, btrieve.LockModeNone)
				record, err := f.RecordRetrieveByCursorPosition(0, position, btrieve.LockModeNone)
				AssertNil(err)
				AssertEqual(record, square(40))
				record, _ = f.RecordRetrieveNext(btrieve.LockModeNone)
				AssertEqual(record, square(41))
			})

			a.Alternative("Physical order", func(a *A) {
				record, err := f.RecordRetrieveLast(btrieve.IndexNone, btrieve.LockModeNone)
				AssertNil(err)
				AssertEqual(record, square(255))
				record, _ = f.RecordRetrievePrevious(btrieve.LockModeNone)
				AssertEqual(record, square(254))
			})

			a.Alternative("System index", func(a *A) {
				record, err := f.RecordRetrieve(btrieve.ComparisonEqual, btrieve.IndexSystem, store.SystemKey(3), btrieve.LockModeNone)
				AssertNil(err)
				AssertEqual(record, square(2))
			})
		})
	})
}

func TestFile_KeyRetrieve(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)

		key, err := f.KeyRetrieveFirst(0)
		AssertNil(err)
		AssertEqual(key, []byte{0})
		key, _ = f.KeyRetrieveNext()
		AssertEqual(key, []byte{1})

		key, err = f.KeyRetrieve(btrieve.ComparisonGreaterThan, 0, []byte{253})
		AssertNil(err)
		AssertEqual(key, []byte{254})
		key, _ = f.KeyRetrieveLast(0)
		AssertEqual(key, []byte{255})
		_, err = f.KeyRetrieveNext()
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusEndOfFile)
		key, _ = f.KeyRetrievePrevious()
		AssertEqual(key, []byte{255})

		// the cursor is established for record retrieves too
		record, _ := f.RecordRetrievePrevious(btrieve.LockModeNone)
		AssertEqual(record, square(254))

		_, err = f.KeyRetrieveFirst(btrieve.IndexNone)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidIndexNumber)
	})
}

func TestFile_Percentage(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)

		p, err := f.GetPercentage(0, []byte{0})
		AssertNil(err)
		AssertEqual(p, 0)
		p, _ = f.GetPercentage(0, []byte{255})
		AssertEqual(p, 10000)

		previous := -1
		for x := 0; x < 256; x++ {
			p, err := f.GetPercentage(0, []byte{byte(x)})
			AssertNil(err)
			AssertTrue(p >= previous)
			previous = p
		}

		record, err := f.RecordRetrieveByPercentage(0, 5000, btrieve.LockModeNone)
		AssertNil(err)
		AssertEqual(record, square(128))
		record, _ = f.RecordRetrieveByFraction(0, 1, 2, btrieve.LockModeNone)
		AssertEqual(record, square(128))
		record, _ = f.RecordRetrieveNext(btrieve.LockModeNone)
		AssertEqual(record, square(129))

		n, err := f.GetNumeratorByCursorPosition(256, 255)
		AssertNil(err)
		AssertEqual(n, 255)
		p, _ = f.GetPercentageByCursorPosition(1)
		AssertEqual(p, 0)

		_, err = f.RecordRetrieveByFraction(0, 3, 2, btrieve.LockModeNone)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidOption)
	})
}

func TestFile_IndexCreateDrop(t *testing.T) {
	Environment(func(db *database.Database, c *Client) {

		f := squares(c)

		attributes := btrieve.DefaultIndexAttributes()
		attributes.DuplicateMode = btrieve.DuplicateModeAllowedNonrepeating
		attributes.Segments = []btrieve.KeySegment{
			{Offset: 1, Length: 2, DataType: btrieve.DataTypeUnsignedBinary, Descending: true},
		}
		index, err := f.IndexCreate(attributes)
		AssertNil(err)
		AssertEqual(index, btrieve.Index(1))

		record, _ := f.RecordRetrieveFirst(index, btrieve.LockModeNone)
		AssertEqual(record, square(255))

		AssertNil(f.IndexDrop(index))
		_, err = f.RecordRetrieveNext(btrieve.LockModeNone)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusPositionNotSet)

		AssertNil(c.TransactionBegin(btrieve.TransactionModeExclusive, btrieve.LockModeNone))
		_, err = f.IndexCreate(attributes)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusOperationNotAllowed)
		AssertNil(c.TransactionEnd())
	})
}
