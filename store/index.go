package store

import (
	"math"

	"github.com/google/btree"

	"github.com/fulldump/btrievedb/btrieve"
)

// entry is one key of an index. Entries with equal keys keep insertion
// order through seq. current entries belong to the latest image of the
// row, committed ones to the image every owner sees.
type entry struct {
	key       []byte
	seq       uint64
	row       *Row
	current   bool
	committed bool
}

type Index struct {
	attributes btrieve.IndexAttributes
	acs        *btrieve.Collation
	tree       *btree.BTreeG[*entry]
}

func newIndex(attributes btrieve.IndexAttributes) (*Index, error) {

	acs, err := btrieve.ResolveCollation(attributes.ACSMode, attributes.ACSName, attributes.ACSNumber, attributes.ACSMap)
	if err != nil {
		return nil, err
	}

	index := &Index{
		attributes: attributes,
		acs:        acs,
	}
	index.tree = btree.NewG(32, index.less)

	return index, nil
}

func (i *Index) compare(a, b []byte) int {
	return i.attributes.CompareKeys(a, b, i.acs)
}

func (i *Index) less(a, b *entry) bool {
	c := i.compare(a.key, b.key)
	if c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

// conflict returns the entry holding key in a unique index, skipping
// the row being updated and keys owner already moved away from.
func (i *Index) conflict(key []byte, self *Row, owner uint64) *entry {
	if !i.attributes.Unique() {
		return nil
	}
	var found *entry
	i.tree.AscendGreaterOrEqual(&entry{key: key}, func(e *entry) bool {
		if i.compare(e.key, key) != 0 {
			return false
		}
		if e.row == self {
			return true
		}
		if p := e.row.pending; p != nil && p.owner == owner && !e.current {
			return true
		}
		found = e
		return false
	})
	return found
}

// maxAutoincrement is the highest value of the autoincrement segment, or
// zero for an empty index.
func (i *Index) maxAutoincrement() int64 {
	e, ok := i.tree.Max()
	if i.attributes.Segments[0].Descending {
		e, ok = i.tree.Min()
	}
	if !ok {
		return 0
	}
	return btrieve.ReadInt(e.key)
}

// uniqueValues counts distinct keys owner sees.
func (i *Index) uniqueValues(owner uint64) int {
	n := 0
	var last []byte
	i.tree.Ascend(func(e *entry) bool {
		if !e.visible(owner) {
			return true
		}
		if last == nil || i.compare(last, e.key) != 0 {
			n++
		}
		last = e.key
		return true
	})
	return n
}

func lowest(key []byte) *entry {
	return &entry{key: key, seq: 0}
}

func highest(key []byte) *entry {
	return &entry{key: key, seq: math.MaxUint64}
}
