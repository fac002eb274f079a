package btrieve

import (
	"testing"

	. "github.com/fulldump/biff"
)

func TestDecode(t *testing.T) {

	input := map[string]interface{}{
		"index":          "INDEX_1",
		"duplicate_mode": "ALLOWED_NONREPEATING",
		"modifiable":     false,
		"segments": []interface{}{
			map[string]interface{}{
				"offset":     float64(3),
				"length":     2,
				"data_type":  "INTEGER",
				"descending": true,
			},
		},
	}

	index := DefaultIndexAttributes()
	err := Decode(input, &index)
	AssertNil(err)

	AssertEqual(index.Index, IndexFirst)
	AssertEqual(index.DuplicateMode, DuplicateModeAllowedNonrepeating)
	AssertEqual(index.Modifiable, false)
	AssertEqual(index.Segments, []KeySegment{
		{Offset: 3, Length: 2, DataType: DataTypeInteger, Descending: true},
	})
}

func TestDecode_InvalidEnum(t *testing.T) {
	file := DefaultFileAttributes()
	err := Decode(map[string]interface{}{"page_size": "4097"}, &file)
	AssertNotNil(err)
}
