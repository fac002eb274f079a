package store

import (
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/btrievedb/btrieve"
)

func TestStore_PendingDelete(t *testing.T) {
	Environment(func(filename string) {

		s := createSquares(filename, Options{})

		AssertNil(s.Delete(7, 17, 0))

		// other owners keep the committed image
		m, err := s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{16})
		AssertNil(err)
		AssertEqual(m.Position, int64(17))
		data, _, err := s.Read(8, 17)
		AssertNil(err)
		AssertEqual(data, square(16))
		AssertEqual(s.Count(), 256)
		AssertEqual(s.Information(8).RecordCount, 256)

		_, err = s.Seek(7, 0, btrieve.ComparisonEqual, []byte{16})
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusKeyValueNotFound)
		AssertEqual(s.Information(7).RecordCount, 255)

		err = s.Update(8, 17, square(16), 0)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusRecordInUse)

		lines := countLines(filename)
		AssertNil(s.Commit(7))
		AssertEqual(countLines(filename), lines+1)

		_, err = s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{16})
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusKeyValueNotFound)
		AssertEqual(s.Count(), 255)

		AssertNil(s.Close())
		s, err = Open(filename, Options{})
		AssertNil(err)
		defer s.Close()
		AssertEqual(s.Count(), 255)
	})
}

func TestStore_PendingUpdate(t *testing.T) {
	Environment(func(filename string) {

		s := createSquares(filename, Options{})
		defer s.Close()

		changed := square(16)
		changed[1] = 0xFF
		AssertNil(s.Update(7, 17, changed, 0))

		data, _ := s.read(17)
		AssertEqual(data, square(16))
		data, _, _ = s.Read(7, 17)
		AssertEqual(data, changed)

		committed, _ := s.Version(Committed, 17)
		own, _ := s.Version(7, 17)
		AssertNotEqual(committed, own)

		s.Rollback(7)
		data, _ = s.read(17)
		AssertEqual(data, square(16))
		version, _ := s.Version(7, 17)
		AssertEqual(version, committed)
	})
}

func TestStore_PendingInsert(t *testing.T) {
	Environment(func(filename string) {

		file, index := squaresAttributes()
		s, err := Create(filename, file, []btrieve.IndexAttributes{index}, Options{})
		AssertNil(err)
		defer s.Close()
		for _, x := range []int{10, 20, 30} {
			s.Insert(Committed, square(x))
		}

		lines := countLines(filename)
		position, _, err := s.Insert(7, square(25))
		AssertNil(err)
		AssertEqual(countLines(filename), lines)

		m, err := s.Seek(Committed, 0, btrieve.ComparisonGreaterThan, []byte{20})
		AssertNil(err)
		AssertEqual(m.Key, []byte{30})
		m, err = s.Seek(7, 0, btrieve.ComparisonGreaterThan, []byte{20})
		AssertNil(err)
		AssertEqual(m.Key, []byte{25})

		_, _, err = s.Read(Committed, position)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusPositionNotSet)

		// pending keys are taken for everybody
		_, _, err = s.Insert(Committed, square(25))
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusDuplicateKeyValue)

		s.Rollback(7)
		_, _, err = s.Read(7, position)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusPositionNotSet)
		AssertEqual(s.Count(), 3)
		AssertEqual(countLines(filename), lines)
	})
}

func TestStore_PendingKeysMovedAway(t *testing.T) {
	Environment(func(filename string) {

		file, index := squaresAttributes()
		s, err := Create(filename, file, []btrieve.IndexAttributes{index}, Options{})
		AssertNil(err)
		for _, x := range []int{10, 20, 30} {
			s.Insert(Committed, square(x))
		}

		AssertNil(s.Update(7, 1, square(15), 0))

		// the committed key is still held for others
		_, _, err = s.Insert(Committed, square(10))
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusDuplicateKeyValue)

		position, _, err := s.Insert(7, square(10))
		AssertNil(err)

		AssertEqual(s.Information(Committed).Indexes[0].UniqueValueCount, 3)
		AssertEqual(s.Information(7).Indexes[0].UniqueValueCount, 4)

		// changes replay in the order they were made
		AssertNil(s.Commit(7))
		AssertNil(s.Close())
		s, err = Open(filename, Options{})
		AssertNil(err)
		defer s.Close()

		m, err := s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{10})
		AssertNil(err)
		AssertEqual(m.Position, position)
		m, err = s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{15})
		AssertNil(err)
		AssertEqual(m.Position, int64(1))
	})
}

func TestStore_PendingNavigation(t *testing.T) {
	Environment(func(filename string) {

		s := createSquares(filename, Options{})
		defer s.Close()

		m, _ := s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{15})
		AssertNil(s.Delete(7, 17, 0))

		next, err := s.Next(7, m)
		AssertNil(err)
		AssertEqual(next.Key, []byte{17})
		next, err = s.Next(Committed, m)
		AssertNil(err)
		AssertEqual(next.Key, []byte{16})

		_, err = s.MarkOf(7, 0, 17)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusPositionNotSet)

		first, err := s.First(7, btrieve.IndexNone)
		AssertNil(err)
		AssertEqual(first.Position, int64(1))

		m, _ = s.Last(7, 0)
		p, err := s.Percentage(7, m)
		AssertNil(err)
		AssertEqual(p, 10000)
	})
}

func TestStore_PendingBlocksIndexChanges(t *testing.T) {
	Environment(func(filename string) {

		s := createSquares(filename, Options{})
		defer s.Close()

		AssertNil(s.Delete(7, 1, 0))

		index := btrieve.DefaultIndexAttributes()
		index.DuplicateMode = btrieve.DuplicateModeAllowedNonrepeating
		index.Segments = []btrieve.KeySegment{
			{Offset: 2, Length: 1, DataType: btrieve.DataTypeUnsignedBinary},
		}
		_, err := s.CreateIndex(index)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusFileInUse)
		AssertEqual(btrieve.StatusOf(s.DropIndex(0)), btrieve.StatusFileInUse)

		s.Rollback(7)
		_, err = s.CreateIndex(index)
		AssertNil(err)
	})
}
