package btrieve

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ValidateFieldLength checks that a key segment or filter field of type dt
// can be length bytes long.
func ValidateFieldLength(dt DataType, length int) error {

	if length < 1 || length > MaximumKeyLength {
		return fmt.Errorf("%s length %d: %w", dt, length, StatusInvalidKeyLength)
	}

	ok := true
	switch dt {
	case DataTypeInteger:
		ok = length == 1 || length == 2 || length == 4 || length == 8
	case DataTypeLogical:
		ok = length == 1 || length == 2
	case DataTypeAutoincrement:
		ok = length == 2 || length == 4 || length == 8
	case DataTypeFloat, DataTypeBfloat:
		ok = length == 4 || length == 8
	case DataTypeDate, DataTypeTime:
		ok = length == 4
	case DataTypeCurrency, DataTypeTimestamp:
		ok = length == 8
	case DataTypeGuid:
		ok = length == 16
	case DataTypeNullIndicatorSegment:
		ok = length == 1
	case DataTypeWstring, DataTypeWzstring:
		ok = length%2 == 0
	case DataTypeLstring:
		ok = length >= 2
	}
	if !ok {
		return fmt.Errorf("%s length %d: %w", dt, length, StatusInvalidKeyLength)
	}

	return nil
}

// CompareField orders two values of the same field. acs only applies to
// the string types.
func CompareField(dt DataType, a, b []byte, acs *Collation) int {
	switch dt {
	case DataTypeInteger, DataTypeAutoincrement:
		return compareInt64(ReadInt(a), ReadInt(b))
	case DataTypeUnsignedBinary, DataTypeLogical, DataTypeTimestamp, DataTypeNullIndicatorSegment:
		return compareUnsigned(a, b)
	case DataTypeFloat, DataTypeBfloat:
		return compareFloat(a, b)
	case DataTypeCurrency:
		return compareInt64(ReadInt(a), ReadInt(b))
	case DataTypeDate:
		// day, month, year (2 bytes)
		if len(a) < 4 || len(b) < 4 {
			return bytes.Compare(a, b)
		}
		c := compareUnsigned(a[2:4], b[2:4])
		if c != 0 {
			return c
		}
		return compareBytesAt(a, b, 1, 0)
	case DataTypeTime:
		// hundredths, seconds, minutes, hours
		return compareBytesAt(a, b, 3, 2, 1, 0)
	case DataTypeDecimal, DataTypeMoney:
		return compareDecimal(readPacked(a), readPacked(b))
	case DataTypeNumeric, DataTypeNumericsts, DataTypeNumericsa:
		return compareNumeric(a, b)
	case DataTypeZstring:
		return acs.Compare(untilZero(a), untilZero(b))
	case DataTypeLstring:
		return acs.Compare(lstring(a), lstring(b))
	case DataTypeWzstring:
		return compareWide(untilWideZero(a), untilWideZero(b))
	case DataTypeWstring:
		return compareWide(a, b)
	case DataTypeChar, DataTypeLegacyString:
		return acs.Compare(a, b)
	}
	return bytes.Compare(a, b)
}

func compareBytesAt(a, b []byte, order ...int) int {
	for _, i := range order {
		if i >= len(a) || i >= len(b) {
			break
		}
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compareFloat orders floats of 4 or 8 bytes. NaNs sort after +Inf, among
// themselves by their bits.
func compareFloat(a, b []byte) int {
	x, y := readFloat(a), readFloat(b)
	xNaN, yNaN := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xNaN && yNaN:
		return compareUnsigned(a, b)
	case xNaN:
		return 1
	case yNaN:
		return -1
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// decimal is a number kept as its digits, integer part without leading
// zeros and fraction without trailing ones, so any precision compares
// exactly.
type decimal struct {
	negative bool
	integer  []byte
	fraction []byte
}

func newDecimal(negative bool, integer, fraction []byte) decimal {
	d := decimal{
		negative: negative,
		integer:  bytes.TrimLeft(integer, "\x00"),
		fraction: bytes.TrimRight(fraction, "\x00"),
	}
	if len(d.integer) == 0 && len(d.fraction) == 0 {
		d.negative = false
	}
	return d
}

func compareDecimal(a, b decimal) int {
	if a.negative != b.negative {
		if a.negative {
			return -1
		}
		return 1
	}
	c := compareInt64(int64(len(a.integer)), int64(len(b.integer)))
	if c == 0 {
		c = bytes.Compare(a.integer, b.integer)
	}
	if c == 0 {
		c = bytes.Compare(a.fraction, b.fraction)
	}
	if a.negative {
		return -c
	}
	return c
}

// compareNumeric orders numeric strings. Strings that are not numbers sort
// first, by their bytes.
func compareNumeric(a, b []byte) int {
	x, xOk := readNumeric(a)
	y, yOk := readNumeric(b)
	switch {
	case !xOk && !yOk:
		return bytes.Compare(a, b)
	case !xOk:
		return -1
	case !yOk:
		return 1
	}
	return compareDecimal(x, y)
}

// compareUnsigned orders little-endian unsigned integers of any length.
func compareUnsigned(a, b []byte) int {
	n := max(len(a), len(b))
	for i := n - 1; i >= 0; i-- {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func compareWide(a, b []byte) int {
	n := min(len(a), len(b)) / 2
	for i := 0; i < n; i++ {
		x := binary.LittleEndian.Uint16(a[2*i:])
		y := binary.LittleEndian.Uint16(b[2*i:])
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

// ReadInt decodes a little-endian signed integer of 1, 2, 4 or 8 bytes.
func ReadInt(b []byte) int64 {
	switch len(b) {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case 8:
		return int64(binary.LittleEndian.Uint64(b))
	}
	var v int64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | int64(b[i])
	}
	return v
}

// PutInt encodes v little-endian into all of b.
func PutInt(b []byte, v int64) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}

func readFloat(b []byte) float64 {
	switch len(b) {
	case 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
	return 0
}

// readPacked decodes packed BCD with the sign in the last nibble
// (0xD or 0xB negative). Digits are kept as nibble values.
func readPacked(b []byte) decimal {
	if len(b) == 0 {
		return decimal{}
	}
	digits := make([]byte, 0, 2*len(b)-1)
	for _, c := range b {
		digits = append(digits, c>>4, c&0x0F)
	}
	sign := digits[len(digits)-1]
	return newDecimal(sign == 0x0D || sign == 0x0B, digits[:len(digits)-1], nil)
}

// readNumeric decodes ASCII digits with an optional decimal point and a
// sign: leading, trailing or overpunched on the last digit.
func readNumeric(b []byte) (decimal, bool) {
	s := bytes.Trim(b, " \x00")
	if len(s) == 0 {
		return decimal{}, true
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	digits := append([]byte{}, s...)
	if n := len(digits); n > 0 {
		c := digits[n-1]
		switch {
		case c == '-':
			negative = true
			digits = digits[:n-1]
		case c == '+':
			digits = digits[:n-1]
		case c == '{':
			digits[n-1] = '0'
		case c == '}':
			negative = true
			digits[n-1] = '0'
		case c >= 'A' && c <= 'I':
			digits[n-1] = '1' + c - 'A'
		case c >= 'J' && c <= 'R':
			negative = true
			digits[n-1] = '1' + c - 'J'
		case c >= 'p' && c <= 'y':
			negative = true
			digits[n-1] = '0' + c - 'p'
		}
	}

	integer, fraction, _ := bytes.Cut(digits, []byte{'.'})
	if len(integer)+len(fraction) == 0 {
		return decimal{}, false
	}
	for _, part := range [][]byte{integer, fraction} {
		for i, c := range part {
			if c < '0' || c > '9' {
				return decimal{}, false
			}
			part[i] = c - '0'
		}
	}

	return newDecimal(negative, integer, fraction), true
}

func untilZero(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

func untilWideZero(b []byte) []byte {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return b[:i]
		}
	}
	return b
}

func lstring(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	n := int(b[0])
	if n > len(b)-1 {
		n = len(b) - 1
	}
	return b[1 : 1+n]
}
