package btrieve

import (
	"fmt"
	"strings"
	"sync"
)

// Collation maps every byte to its sort weight.
type Collation struct {
	Name    string
	Weights [256]byte
}

func (c *Collation) Compare(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		wa, wb := c.weight(a[i]), c.weight(b[i])
		if wa != wb {
			if wa < wb {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func (c *Collation) weight(b byte) byte {
	if c == nil {
		return b
	}
	return c.Weights[b]
}

func newCollation(name string, fold func(b byte) byte) *Collation {
	c := &Collation{Name: name}
	for i := 0; i < 256; i++ {
		c.Weights[i] = fold(byte(i))
	}
	return c
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

var CaseInsensitive = newCollation("UPPER", upper)

var (
	collationsMutex = &sync.RWMutex{}
	namedCollations = map[string]*Collation{
		"UPPER": CaseInsensitive,
	}
	numberedCollations = map[int]*Collation{
		0: CaseInsensitive,
	}
)

// RegisterCollation makes a named collation available to indexes and
// filters created with ACSModeNamed.
func RegisterCollation(name string, weights []byte) error {
	c, err := ParseCollationMap(name, weights)
	if err != nil {
		return err
	}
	collationsMutex.Lock()
	namedCollations[strings.ToUpper(name)] = c
	collationsMutex.Unlock()
	return nil
}

func RegisterNumberedCollation(number int, c *Collation) {
	collationsMutex.Lock()
	numberedCollations[number] = c
	collationsMutex.Unlock()
}

// ParseCollationMap accepts a bare 256 byte table or the engine layout of a
// 0xAC signature, an 8 byte name and the table.
func ParseCollationMap(name string, weights []byte) (*Collation, error) {
	switch {
	case len(weights) == 256:
	case len(weights) == 265 && weights[0] == 0xAC:
		if name == "" {
			name = strings.TrimRight(string(weights[1:9]), " \x00")
		}
		weights = weights[9:]
	default:
		return nil, fmt.Errorf("alternate collating sequence of %d bytes: %w", len(weights), StatusInvalidAltSequenceDef)
	}
	c := &Collation{Name: name}
	copy(c.Weights[:], weights)
	return c, nil
}

// ResolveCollation returns nil for byte-wise ordering.
func ResolveCollation(mode ACSMode, name string, number int, weights []byte) (*Collation, error) {
	switch mode {
	case ACSModeNone, ACSModeDefault:
		return nil, nil
	case ACSModeCaseInsensitive:
		return CaseInsensitive, nil
	case ACSModeNamed:
		if len(weights) > 0 {
			return ParseCollationMap(name, weights)
		}
		collationsMutex.RLock()
		c, ok := namedCollations[strings.ToUpper(name)]
		collationsMutex.RUnlock()
		if !ok {
			return nil, fmt.Errorf("collation '%s': %w", name, StatusACSNotFound)
		}
		return c, nil
	case ACSModeNumbered:
		collationsMutex.RLock()
		c, ok := numberedCollations[number]
		collationsMutex.RUnlock()
		if !ok {
			return nil, fmt.Errorf("collation %d: %w", number, StatusACSNotFound)
		}
		return c, nil
	}
	return nil, fmt.Errorf("acs mode %d: %w", mode, StatusInvalidOption)
}
