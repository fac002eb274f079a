package btrieve

import (
	"bytes"
	"fmt"
)

// Filter is one predicate of a bulk retrieve. A filter compares a record
// field against Constant, or against the field at ComparisonOffset when
// ComparisonField is set.
type Filter struct {
	Offset           int        `json:"offset"`
	Length           int        `json:"length"`
	DataType         DataType   `json:"data_type"`
	Comparison       Comparison `json:"comparison"`
	Constant         []byte     `json:"constant,omitempty"`
	ComparisonField  bool       `json:"comparison_field,omitempty"`
	ComparisonOffset int        `json:"comparison_offset,omitempty"`
	Connector        Connector  `json:"connector"`
	ACSMode          ACSMode    `json:"acs_mode,omitempty"`
	ACSName          string     `json:"acs_name,omitempty"`
	ACSMap           []byte     `json:"acs_map,omitempty"`
	LikeCodePageName string     `json:"like_code_page_name,omitempty"`

	acs *Collation
}

func (f *Filter) prepare(last bool) error {

	if f.Offset < 0 || f.Offset+f.Length > MaximumRecordLength {
		return fmt.Errorf("offset %d: %w", f.Offset, StatusInvalidGetExpression)
	}
	if _, ok := dataTypeNames[f.DataType]; !ok {
		return fmt.Errorf("data type %d: %w", f.DataType, StatusInvalidGetExpression)
	}
	if err := ValidateFieldLength(f.DataType, f.Length); err != nil {
		return fmt.Errorf("%s: %w", err.Error(), StatusInvalidGetExpression)
	}

	switch f.Comparison {
	case ComparisonEqual, ComparisonNotEqual,
		ComparisonGreaterThan, ComparisonGreaterThanOrEqual,
		ComparisonLessThan, ComparisonLessThanOrEqual:
	case ComparisonLike, ComparisonNotLike:
		if f.ComparisonField {
			return fmt.Errorf("%s needs a constant: %w", f.Comparison, StatusInvalidGetExpression)
		}
	default:
		return fmt.Errorf("comparison %s: %w", f.Comparison, StatusInvalidGetExpression)
	}

	if len(f.Constant) > MaximumKeyLength {
		return fmt.Errorf("constant of %d bytes exceeds %d: %w", len(f.Constant), MaximumKeyLength, StatusInvalidGetExpression)
	}
	if f.ComparisonField {
		if f.ComparisonOffset < 0 || f.ComparisonOffset+f.Length > MaximumRecordLength {
			return fmt.Errorf("comparison offset %d: %w", f.ComparisonOffset, StatusInvalidGetExpression)
		}
	} else if !f.like() && len(f.Constant) != f.Length {
		return fmt.Errorf("constant of %d bytes for a field of %d: %w", len(f.Constant), f.Length, StatusInvalidGetExpression)
	}

	if last != (f.Connector == ConnectorLast) {
		return fmt.Errorf("connector %s: %w", f.Connector, StatusInvalidGetExpression)
	}

	acs, err := ResolveCollation(f.ACSMode, f.ACSName, 0, f.ACSMap)
	if err != nil {
		return err
	}
	f.acs = acs

	return nil
}

func (f *Filter) like() bool {
	return f.Comparison == ComparisonLike || f.Comparison == ComparisonNotLike
}

// Match evaluates the filter on one record.
func (f *Filter) Match(record []byte) bool {

	field := FieldBytes(record, f.Offset, f.Length)

	if f.like() {
		matched := like(f.acs, trimPadding(field), f.Constant)
		return matched == (f.Comparison == ComparisonLike)
	}

	other := f.Constant
	if f.ComparisonField {
		other = FieldBytes(record, f.ComparisonOffset, f.Length)
	}
	c := CompareField(f.DataType, field, other, f.acs)

	switch f.Comparison {
	case ComparisonEqual:
		return c == 0
	case ComparisonNotEqual:
		return c != 0
	case ComparisonGreaterThan:
		return c > 0
	case ComparisonGreaterThanOrEqual:
		return c >= 0
	case ComparisonLessThan:
		return c < 0
	case ComparisonLessThanOrEqual:
		return c <= 0
	}
	return false
}

// MatchFilters folds the filters left to right: each connector combines
// the result so far with the next filter. There is no operator precedence.
func MatchFilters(filters []Filter, record []byte) bool {
	if len(filters) == 0 {
		return true
	}
	result := filters[0].Match(record)
	for i := 1; i < len(filters); i++ {
		switch filters[i-1].Connector {
		case ConnectorAnd:
			result = result && filters[i].Match(record)
		case ConnectorOr:
			result = result || filters[i].Match(record)
		}
	}
	return result
}

func trimPadding(b []byte) []byte {
	return bytes.TrimRight(untilZero(b), " ")
}

// like matches value against a pattern where % is any run of bytes and _ is
// exactly one byte.
func like(acs *Collation, value, pattern []byte) bool {
	v, p := 0, 0
	starV, starP := -1, -1
	for v < len(value) {
		switch {
		case p < len(pattern) && pattern[p] == '%':
			starP, starV = p, v
			p++
		case p < len(pattern) && (pattern[p] == '_' || acs.weight(pattern[p]) == acs.weight(value[v])):
			p++
			v++
		case starP >= 0:
			starV++
			v = starV
			p = starP + 1
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '%' {
		p++
	}
	return p == len(pattern)
}
