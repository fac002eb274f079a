package btrieve

import (
	"fmt"
)

const (
	MaximumRecordLength        = 60 * 1024
	MaximumChunkedRecordLength = 64 * 1024 * 1024
	MaximumKeyLength           = 255
	MaximumKeySegments         = 119
	MaximumPreallocatedPages   = 65535
	DefaultRejectCount         = 65535
	RejectCountLimit           = 65535
)

// FileAttributes describes a file at creation time. They are immutable
// afterwards.
type FileAttributes struct {
	FixedRecordLength             int                       `json:"fixed_record_length"`
	PageSize                      PageSize                  `json:"page_size"`
	PageCompression               bool                      `json:"page_compression"`
	VariableLengthRecords         VariableLengthRecordsMode `json:"variable_length_records"`
	FreeSpaceThreshold            FreeSpaceThreshold        `json:"free_space_threshold"`
	RecordCompression             RecordCompressionMode     `json:"record_compression"`
	SystemDataMode                SystemDataMode            `json:"system_data_mode"`
	KeyOnly                       bool                      `json:"key_only"`
	PreallocatedPageCount         int                       `json:"preallocated_page_count"`
	BalancedIndexes               bool                      `json:"balanced_indexes"`
	FileVersion                   FileVersion               `json:"file_version"`
	ReservedDuplicatePointerCount int                       `json:"reserved_duplicate_pointer_count"`
}

func DefaultFileAttributes() FileAttributes {
	return FileAttributes{
		PageSize:              PageSizeDefault,
		VariableLengthRecords: VariableLengthRecordsModeNo,
		FreeSpaceThreshold:    FreeSpaceThresholdDefault,
		RecordCompression:     RecordCompressionModeNone,
		SystemDataMode:        SystemDataModeDefault,
		FileVersion:           FileVersionDefault,
	}
}

// Variable reports whether records may differ in length.
func (a FileAttributes) Variable() bool {
	return a.VariableLengthRecords != VariableLengthRecordsModeNo
}

// KeyLimit is the number of leading record bytes keys can be built from.
func (a FileAttributes) KeyLimit() int {
	if a.FixedRecordLength > 0 {
		return a.FixedRecordLength
	}
	return MaximumRecordLength
}

func (a FileAttributes) PageBytes() int {
	switch a.PageSize {
	case PageSize512:
		return 512
	case PageSize1024:
		return 1024
	case PageSize1536:
		return 1536
	case PageSize2048:
		return 2048
	case PageSize3072:
		return 3072
	case PageSize3584:
		return 3584
	case PageSize8192:
		return 8192
	case PageSize16384:
		return 16384
	}
	return 4096
}

// FreeSpacePercent is the share of dead log entries tolerated before the
// log is compacted.
func (a FileAttributes) FreeSpacePercent() int {
	switch a.FreeSpaceThreshold {
	case FreeSpaceThreshold10Percent:
		return 10
	case FreeSpaceThreshold30Percent:
		return 30
	}
	return 20
}

func (v FileVersion) AtLeast(other FileVersion) bool {
	return v.rank() >= other.rank()
}

// rank orders versions chronologically, FileVersionDefault being the
// newest format before 13.0.
func (v FileVersion) rank() int {
	switch v {
	case FileVersionDefault:
		return int(FileVersion9_5) + 1
	case FileVersion13_0:
		return int(FileVersion9_5) + 2
	}
	return int(v)
}

func (a FileAttributes) Validate() error {

	if a.FixedRecordLength < 0 || a.FixedRecordLength > MaximumRecordLength {
		return fmt.Errorf("fixed record length %d: %w", a.FixedRecordLength, StatusInvalidRecordLength)
	}
	if a.FixedRecordLength == 0 && !a.Variable() {
		return fmt.Errorf("fixed record length is required for fixed-length records: %w", StatusInvalidRecordLength)
	}

	if _, ok := pageSizeNames[a.PageSize]; !ok {
		return fmt.Errorf("page size %d: %w", a.PageSize, StatusPageSizeError)
	}
	if _, ok := variableLengthRecordsModeNames[a.VariableLengthRecords]; !ok {
		return fmt.Errorf("variable length records mode %d: %w", a.VariableLengthRecords, StatusInvalidOption)
	}
	if _, ok := freeSpaceThresholdNames[a.FreeSpaceThreshold]; !ok {
		return fmt.Errorf("free space threshold %d: %w", a.FreeSpaceThreshold, StatusInvalidOption)
	}
	if _, ok := recordCompressionModeNames[a.RecordCompression]; !ok {
		return fmt.Errorf("record compression mode %d: %w", a.RecordCompression, StatusInvalidOption)
	}
	if _, ok := systemDataModeNames[a.SystemDataMode]; !ok {
		return fmt.Errorf("system data mode %d: %w", a.SystemDataMode, StatusInvalidOption)
	}
	if _, ok := fileVersionNames[a.FileVersion]; !ok {
		return fmt.Errorf("file version %d: %w", a.FileVersion, StatusInvalidOption)
	}

	if a.PageCompression && !a.FileVersion.AtLeast(FileVersion9_5) {
		return fmt.Errorf("page compression requires file version 9.5 or later: %w", StatusInvalidOption)
	}
	if a.KeyOnly && a.Variable() {
		return fmt.Errorf("key only files cannot hold variable length records: %w", StatusInvalidOption)
	}
	if a.KeyOnly && a.RecordCompression != RecordCompressionModeNone {
		return fmt.Errorf("key only files cannot compress records: %w", StatusInvalidOption)
	}
	if a.PreallocatedPageCount < 0 || a.PreallocatedPageCount > MaximumPreallocatedPages {
		return fmt.Errorf("preallocated page count %d: %w", a.PreallocatedPageCount, StatusInvalidOption)
	}
	if a.ReservedDuplicatePointerCount < 0 || a.ReservedDuplicatePointerCount > MaximumKeySegments {
		return fmt.Errorf("reserved duplicate pointer count %d: %w", a.ReservedDuplicatePointerCount, StatusInvalidOption)
	}

	return nil
}

// KeySegment is one field of a composite key.
type KeySegment struct {
	Offset      int         `json:"offset"`
	Length      int         `json:"length"`
	DataType    DataType    `json:"data_type"`
	Descending  bool        `json:"descending"`
	NullKeyMode NullKeyMode `json:"null_key_mode"`
	NullValue   byte        `json:"null_value"`
}

// IsNull is true when every byte of the segment field equals NullValue.
func (s KeySegment) IsNull(field []byte) bool {
	for _, b := range field {
		if b != s.NullValue {
			return false
		}
	}
	return true
}

// IndexAttributes describes an index. Index set to IndexNone picks the
// lowest free index number on creation.
type IndexAttributes struct {
	Index         Index         `json:"index"`
	Segments      []KeySegment  `json:"segments"`
	DuplicateMode DuplicateMode `json:"duplicate_mode"`
	Modifiable    bool          `json:"modifiable"`
	ACSMode       ACSMode       `json:"acs_mode"`
	ACSName       string        `json:"acs_name,omitempty"`
	ACSNumber     int           `json:"acs_number,omitempty"`
	ACSMap        []byte        `json:"acs_map,omitempty"`
}

func DefaultIndexAttributes() IndexAttributes {
	return IndexAttributes{
		Index:         IndexNone,
		DuplicateMode: DuplicateModeNotAllowed,
		Modifiable:    true,
		ACSMode:       ACSModeNone,
	}
}

// KeyLength is the length of the composite key.
func (a IndexAttributes) KeyLength() int {
	n := 0
	for _, s := range a.Segments {
		n += s.Length
	}
	return n
}

func (a IndexAttributes) Unique() bool {
	return a.DuplicateMode == DuplicateModeNotAllowed
}

// Autoincrement returns the position of the autoincrement segment or -1.
func (a IndexAttributes) Autoincrement() int {
	for i, s := range a.Segments {
		if s.DataType == DataTypeAutoincrement {
			return i
		}
	}
	return -1
}

// NullMode is the null key mode of the index as a whole.
func (a IndexAttributes) NullMode() NullKeyMode {
	mode := NullKeyModeNone
	for _, s := range a.Segments {
		if s.NullKeyMode != NullKeyModeNone {
			mode = s.NullKeyMode
		}
	}
	return mode
}

// Validate checks the index against the file it is created on.
func (a IndexAttributes) Validate(file FileAttributes) error {

	if a.Index != IndexNone && !a.Index.Valid() {
		return fmt.Errorf("index %d: %w", a.Index, StatusInvalidIndexNumber)
	}
	if len(a.Segments) == 0 || len(a.Segments) > MaximumKeySegments {
		return fmt.Errorf("index needs between 1 and %d segments: %w", MaximumKeySegments, StatusInvalidKeyLength)
	}
	if _, ok := duplicateModeNames[a.DuplicateMode]; !ok {
		return fmt.Errorf("duplicate mode %d: %w", a.DuplicateMode, StatusInvalidOption)
	}
	if a.KeyLength() > MaximumKeyLength {
		return fmt.Errorf("key length %d exceeds %d: %w", a.KeyLength(), MaximumKeyLength, StatusInvalidKeyLength)
	}

	limit := file.KeyLimit()
	nullMode := NullKeyModeNone
	for i, s := range a.Segments {
		if _, ok := dataTypeNames[s.DataType]; !ok {
			return fmt.Errorf("segment %d data type %d: %w", i, s.DataType, StatusKeyTypeError)
		}
		if s.Offset < 0 || s.Offset+s.Length > limit {
			return fmt.Errorf("segment %d offset %d: %w", i, s.Offset, StatusInvalidKeyPosition)
		}
		err := ValidateFieldLength(s.DataType, s.Length)
		if err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		if _, ok := nullKeyModeNames[s.NullKeyMode]; !ok {
			return fmt.Errorf("segment %d null key mode %d: %w", i, s.NullKeyMode, StatusInvalidOption)
		}
		if s.NullKeyMode != NullKeyModeNone {
			if nullMode != NullKeyModeNone && nullMode != s.NullKeyMode {
				return fmt.Errorf("segment %d mixes null key modes: %w", i, StatusInconsistentKeyFlags)
			}
			nullMode = s.NullKeyMode
		}
		if s.DataType == DataTypeAutoincrement {
			if a.DuplicateMode != DuplicateModeNotAllowed {
				return fmt.Errorf("autoincrement keys cannot allow duplicates: %w", StatusAutoincrementError)
			}
			if len(a.Segments) > 1 {
				return fmt.Errorf("autoincrement keys cannot be segmented: %w", StatusAutoincrementError)
			}
		}
	}

	_, err := ResolveCollation(a.ACSMode, a.ACSName, a.ACSNumber, a.ACSMap)
	return err
}

// Field is a slice of a record extracted by bulk retrieves.
type Field struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// BulkRetrieveAttributes parameterizes BulkRetrieveNext and
// BulkRetrievePrevious.
type BulkRetrieveAttributes struct {
	Fields             []Field  `json:"fields"`
	Filters            []Filter `json:"filters"`
	MaximumRecordCount int      `json:"maximum_record_count"`
	MaximumRejectCount int      `json:"maximum_reject_count"`
	SkipCurrentRecord  bool     `json:"skip_current_record"`
}

func (a *BulkRetrieveAttributes) RejectLimit() int {
	if a.MaximumRejectCount == 0 {
		return DefaultRejectCount
	}
	return a.MaximumRejectCount
}

// Validate checks the attributes and prepares the filters for evaluation.
func (a *BulkRetrieveAttributes) Validate() error {

	if a.MaximumRecordCount < 1 {
		return fmt.Errorf("maximum record count %d: %w", a.MaximumRecordCount, StatusInvalidOption)
	}
	if a.MaximumRejectCount < 0 || a.MaximumRejectCount > RejectCountLimit {
		return fmt.Errorf("maximum reject count %d: %w", a.MaximumRejectCount, StatusInvalidOption)
	}

	for i, f := range a.Fields {
		if f.Offset < 0 || f.Length < 1 || f.Offset+f.Length > MaximumRecordLength {
			return fmt.Errorf("field %d: %w", i, StatusInvalidGetExpression)
		}
	}

	for i := range a.Filters {
		last := i == len(a.Filters)-1
		err := a.Filters[i].prepare(last)
		if err != nil {
			return fmt.Errorf("filter %d: %w", i, err)
		}
	}

	return nil
}

// Extract applies the field list to a record. No fields means the whole
// record.
func (a *BulkRetrieveAttributes) Extract(record []byte) []byte {
	if len(a.Fields) == 0 {
		return append([]byte{}, record...)
	}
	result := []byte{}
	for _, f := range a.Fields {
		result = append(result, FieldBytes(record, f.Offset, f.Length)...)
	}
	return result
}

// FieldBytes returns record[offset:offset+length]. Bytes past the end of the
// record read as zero.
func FieldBytes(record []byte, offset, length int) []byte {
	field := make([]byte, length)
	if offset < len(record) {
		copy(field, record[offset:])
	}
	return field
}
