package store

import (
	"testing"

	. "github.com/fulldump/biff"

	"github.com/fulldump/btrievedb/btrieve"
)

func TestStore_Traverse(t *testing.T) {
	Environment(func(filename string) {

		s := createSquares(filename, Options{})
		defer s.Close()

		m, err := s.First(Committed, 0)
		AssertNil(err)
		AssertEqual(m.Key, []byte{0})
		for x := 1; x < 256; x++ {
			m, err = s.Next(Committed, m)
			AssertNil(err)
			AssertEqual(m.Key, []byte{byte(x)})
		}

		for i := 0; i < 3; i++ {
			_, err := s.Next(Committed, m)
			AssertEqual(btrieve.StatusOf(err), btrieve.StatusEndOfFile)
		}

		m, err = s.Previous(Committed, m)
		AssertNil(err)
		AssertEqual(m.Key, []byte{254})
	})
}

func TestStore_Seek(t *testing.T) {
	Environment(func(filename string) {

		file, index := squaresAttributes()
		s, _ := Create(filename, file, []btrieve.IndexAttributes{index}, Options{})
		defer s.Close()
		for _, x := range []int{10, 20, 30} {
			s.Insert(Committed, square(x))
		}

		found := func(comparison btrieve.Comparison, key byte) byte {
			m, err := s.Seek(Committed, 0, comparison, []byte{key})
			if err != nil {
				return 0
			}
			return m.Key[0]
		}
		status := func(comparison btrieve.Comparison, key byte) btrieve.StatusCode {
			_, err := s.Seek(Committed, 0, comparison, []byte{key})
			return btrieve.StatusOf(err)
		}

		AssertEqual(found(btrieve.ComparisonEqual, 20), byte(20))
		AssertEqual(status(btrieve.ComparisonEqual, 21), btrieve.StatusKeyValueNotFound)
		AssertEqual(found(btrieve.ComparisonGreaterThan, 20), byte(30))
		AssertEqual(found(btrieve.ComparisonGreaterThanOrEqual, 20), byte(20))
		AssertEqual(found(btrieve.ComparisonGreaterThanOrEqual, 21), byte(30))
		AssertEqual(found(btrieve.ComparisonLessThan, 20), byte(10))
		AssertEqual(found(btrieve.ComparisonLessThanOrEqual, 20), byte(20))
		AssertEqual(found(btrieve.ComparisonLessThanOrEqual, 19), byte(10))
		AssertEqual(status(btrieve.ComparisonGreaterThan, 30), btrieve.StatusEndOfFile)
		AssertEqual(status(btrieve.ComparisonLessThan, 10), btrieve.StatusEndOfFile)
		AssertEqual(status(btrieve.ComparisonNotEqual, 20), btrieve.StatusInvalidGetExpression)
		AssertEqual(status(btrieve.ComparisonLike, 20), btrieve.StatusInvalidGetExpression)

		_, err := s.Seek(Committed, 0, btrieve.ComparisonEqual, nil)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusKeyBufferTooShort)
		_, err = s.Seek(Committed, 3, btrieve.ComparisonEqual, []byte{1})
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidIndexNumber)
	})
}

func TestStore_Descending(t *testing.T) {
	Environment(func(filename string) {

		file, index := squaresAttributes()
		index.Segments[0].Descending = true
		s, _ := Create(filename, file, []btrieve.IndexAttributes{index}, Options{})
		defer s.Close()
		for _, x := range []int{10, 20, 30} {
			s.Insert(Committed, square(x))
		}

		m, _ := s.First(Committed, 0)
		AssertEqual(m.Key, []byte{30})
		m, _ = s.Seek(Committed, 0, btrieve.ComparisonGreaterThan, []byte{20})
		AssertEqual(m.Key, []byte{10})
	})
}

func TestStore_DuplicatesKeepInsertionOrder(t *testing.T) {
	Environment(func(filename string) {

		file := btrieve.DefaultFileAttributes()
		file.FixedRecordLength = 2
		index := btrieve.DefaultIndexAttributes()
		index.DuplicateMode = btrieve.DuplicateModeAllowedNonrepeating
		index.Segments = []btrieve.KeySegment{{Offset: 0, Length: 1, DataType: btrieve.DataTypeUnsignedBinary}}
		s, err := Create(filename, file, []btrieve.IndexAttributes{index}, Options{})
		AssertNil(err)

		s.Insert(Committed, []byte{1, 'a'})
		s.Insert(Committed, []byte{1, 'b'})
		s.Insert(Committed, []byte{0, 'c'})

		seen := func(owner uint64) string {
			result := ""
			m, err := s.First(owner, 0)
			for err == nil {
				data, _, _ := s.Read(owner, m.Position)
				result += string(data[1:])
				m, err = s.Next(owner, m)
			}
			return result
		}
		order := func() string {
			return seen(Committed)
		}

		AssertEqual(order(), "cab")

		// a changed key goes after its new duplicates
		s.Update(Committed, 1, []byte{2, 'a'}, 0)
		s.Update(Committed, 1, []byte{1, 'a'}, 0)
		AssertEqual(order(), "cba")

		AssertNil(s.Delete(7, 3, 0))
		AssertEqual(seen(7), "ba")
		AssertEqual(order(), "cba")
		s.Rollback(7)
		AssertEqual(order(), "cba")

		// the order survives a replay and a compaction
		AssertNil(s.Close())
		s, err = Open(filename, Options{})
		AssertNil(err)
		AssertEqual(order(), "cba")
		AssertNil(s.compact())
		AssertNil(s.Close())
		s, err = Open(filename, Options{})
		AssertNil(err)
		defer s.Close()
		AssertEqual(order(), "cba")
	})
}

func TestStore_RollbackUndoesUpdate(t *testing.T) {
	Environment(func(filename string) {

		s := createSquares(filename, Options{})
		defer s.Close()

		changed := square(0)
		changed[0] = 200
		err := s.Update(7, 1, changed, 0)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusDuplicateKeyValue)

		AssertNil(s.Delete(7, 201, 0))
		AssertNil(s.Update(7, 1, changed, 0))
		_, err = s.Seek(7, 0, btrieve.ComparisonEqual, []byte{0})
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusKeyValueNotFound)

		s.Rollback(7)

		m, err := s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{200})
		AssertNil(err)
		AssertEqual(m.Position, int64(201))
		m, err = s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{0})
		AssertNil(err)
		AssertEqual(m.Position, int64(1))
		AssertEqual(s.Count(), 256)
		data, _ := s.read(1)
		AssertEqual(data, square(0))
	})
}

func TestStore_NextAfterDelete(t *testing.T) {
	Environment(func(filename string) {

		s := createSquares(filename, Options{})
		defer s.Close()

		m, _ := s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{16})
		s.Delete(Committed, m.Position, 0)

		next, err := s.Next(Committed, m)
		AssertNil(err)
		AssertEqual(next.Key, []byte{17})
		previous, err := s.Previous(Committed, m)
		AssertNil(err)
		AssertEqual(previous.Key, []byte{15})
	})
}

func TestStore_PhysicalAndSystemOrder(t *testing.T) {
	Environment(func(filename string) {

		file, index := squaresAttributes()
		s, _ := Create(filename, file, []btrieve.IndexAttributes{index}, Options{})
		defer s.Close()
		for _, x := range []int{30, 10, 20} {
			s.Insert(Committed, square(x))
		}

		m, err := s.First(Committed, btrieve.IndexNone)
		AssertNil(err)
		AssertEqual(m.Position, int64(1))
		m, _ = s.Next(Committed, m)
		AssertEqual(m.Position, int64(2))

		m, err = s.Seek(Committed, btrieve.IndexSystem, btrieve.ComparisonGreaterThan, SystemKey(1))
		AssertNil(err)
		AssertEqual(m.Position, int64(2))
		AssertEqual(m.Key, SystemKey(2))

		_, err = s.Seek(Committed, btrieve.IndexNone, btrieve.ComparisonEqual, SystemKey(1))
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidIndexNumber)
	})
}

func TestStore_Percentage(t *testing.T) {
	Environment(func(filename string) {

		s := createSquares(filename, Options{})
		defer s.Close()

		m, _ := s.First(Committed, 0)
		p, err := s.Percentage(Committed, m)
		AssertNil(err)
		AssertEqual(p, 0)

		m, _ = s.Last(Committed, 0)
		p, _ = s.Percentage(Committed, m)
		AssertEqual(p, 10000)

		m, err = s.ByPercentage(Committed, 0, 5000)
		AssertNil(err)
		AssertEqual(m.Key, []byte{128})

		// monotone
		last := -1
		for percentage := 0; percentage <= 10000; percentage += 250 {
			m, err := s.ByPercentage(Committed, 0, percentage)
			AssertNil(err)
			AssertTrue(int(m.Key[0]) >= last)
			last = int(m.Key[0])
		}

		m, _ = s.Seek(Committed, 0, btrieve.ComparisonEqual, []byte{51})
		n, err := s.Numerator(Committed, m, 5)
		AssertNil(err)
		AssertEqual(n, 1)
		m, err = s.ByFraction(Committed, 0, 1, 5)
		AssertNil(err)
		AssertEqual(m.Key, []byte{51})

		_, err = s.ByFraction(Committed, 0, 6, 5)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusInvalidOption)
	})
}

func TestStore_PercentageEmpty(t *testing.T) {
	Environment(func(filename string) {

		file, index := squaresAttributes()
		s, _ := Create(filename, file, []btrieve.IndexAttributes{index}, Options{})
		defer s.Close()

		_, err := s.ByPercentage(Committed, 0, 5000)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusEndOfFile)
		_, err = s.First(Committed, 0)
		AssertEqual(btrieve.StatusOf(err), btrieve.StatusEndOfFile)
	})
}
