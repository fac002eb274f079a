package btrieve

import (
	"testing"

	. "github.com/fulldump/biff"
)

func squaresFile() FileAttributes {
	a := DefaultFileAttributes()
	a.FixedRecordLength = 11
	return a
}

func TestFileAttributes_Validate(t *testing.T) {

	AssertNil(squaresFile().Validate())

	a := DefaultFileAttributes()
	AssertEqual(StatusOf(a.Validate()), StatusInvalidRecordLength)

	a = squaresFile()
	a.FixedRecordLength = MaximumRecordLength + 1
	AssertEqual(StatusOf(a.Validate()), StatusInvalidRecordLength)

	a = squaresFile()
	a.PageCompression = true
	a.FileVersion = FileVersion9_0
	AssertEqual(StatusOf(a.Validate()), StatusInvalidOption)

	a.FileVersion = FileVersion9_5
	AssertNil(a.Validate())

	a = squaresFile()
	a.PageSize = PageSize(42)
	AssertEqual(StatusOf(a.Validate()), StatusPageSizeError)

	a = DefaultFileAttributes()
	a.VariableLengthRecords = VariableLengthRecordsModeYes
	AssertNil(a.Validate())
	AssertEqual(a.PageBytes(), 4096)
	AssertEqual(a.FreeSpacePercent(), 20)
}

func TestIndexAttributes_Validate(t *testing.T) {

	file := squaresFile()

	index := DefaultIndexAttributes()
	index.Segments = []KeySegment{
		{Offset: 0, Length: 1, DataType: DataTypeUnsignedBinary},
	}
	AssertNil(index.Validate(file))

	index.Segments[0].Offset = 11
	AssertEqual(StatusOf(index.Validate(file)), StatusInvalidKeyPosition)

	index.Segments = nil
	AssertEqual(StatusOf(index.Validate(file)), StatusInvalidKeyLength)

	index.Segments = []KeySegment{
		{Offset: 0, Length: 1, DataType: DataTypeUnsignedBinary, NullKeyMode: NullKeyModeAnySegments},
		{Offset: 1, Length: 1, DataType: DataTypeUnsignedBinary, NullKeyMode: NullKeyModeAllSegments},
	}
	AssertEqual(StatusOf(index.Validate(file)), StatusInconsistentKeyFlags)

	index.Segments = []KeySegment{
		{Offset: 0, Length: 4, DataType: DataTypeAutoincrement},
	}
	index.DuplicateMode = DuplicateModeAllowedRepeating
	AssertEqual(StatusOf(index.Validate(file)), StatusAutoincrementError)

	index = DefaultIndexAttributes()
	index.Segments = []KeySegment{{Offset: 0, Length: 4, DataType: DataTypeChar}}
	index.ACSMode = ACSModeNamed
	index.ACSName = "does-not-exist"
	AssertEqual(StatusOf(index.Validate(file)), StatusACSNotFound)

	index.Index = Index(119)
	AssertEqual(StatusOf(index.Validate(file)), StatusInvalidIndexNumber)
}

func TestEnumText(t *testing.T) {

	var dt DataType
	AssertNil(dt.UnmarshalText([]byte("unsigned_binary")))
	AssertEqual(dt, DataTypeUnsignedBinary)

	var c Comparison
	AssertNil(c.UnmarshalText([]byte("3")))
	AssertEqual(c, ComparisonLessThan)
	AssertEqual(StatusOf(c.UnmarshalText([]byte("BIGGER"))), StatusInvalidOption)

	var i Index
	AssertNil(i.UnmarshalText([]byte("INDEX_1")))
	AssertEqual(i, IndexFirst)
	AssertEqual(IndexSystem.String(), "SYSTEM")
	AssertEqual(Index(4).String(), "INDEX_5")

	text, _ := PageSize4096.MarshalText()
	AssertEqual(string(text), "4096")
}
