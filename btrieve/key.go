package btrieve

// Key builds the composite key of record: the segment fields concatenated
// in declared order.
func (a IndexAttributes) Key(record []byte) []byte {
	key := make([]byte, 0, a.KeyLength())
	for _, s := range a.Segments {
		key = append(key, FieldBytes(record, s.Offset, s.Length)...)
	}
	return key
}

// CompareKeys orders two composite keys. The first segment that differs
// decides, honoring its data type and sort direction.
func (a IndexAttributes) CompareKeys(x, y []byte, acs *Collation) int {
	offset := 0
	for _, s := range a.Segments {
		end := offset + s.Length
		c := CompareField(s.DataType, x[offset:end], y[offset:end], acs)
		if c != 0 {
			if s.Descending {
				return -c
			}
			return c
		}
		offset = end
	}
	return 0
}

// NullKey reports whether a record with this key is left out of the index.
func (a IndexAttributes) NullKey(key []byte) bool {

	mode := a.NullMode()
	if mode == NullKeyModeNone {
		return false
	}

	offset := 0
	anyNull, allNull := false, true
	for _, s := range a.Segments {
		field := key[offset : offset+s.Length]
		offset += s.Length
		if s.NullKeyMode == NullKeyModeNone {
			continue
		}
		if s.IsNull(field) {
			anyNull = true
		} else {
			allNull = false
		}
	}

	if mode == NullKeyModeAnySegments {
		return anyNull
	}
	return allNull
}

// SetKey writes key back into the segment fields of record.
func (a IndexAttributes) SetKey(record, key []byte) {
	offset := 0
	for _, s := range a.Segments {
		if s.Offset < len(record) {
			copy(record[s.Offset:min(len(record), s.Offset+s.Length)], key[offset:offset+s.Length])
		}
		offset += s.Length
	}
}
