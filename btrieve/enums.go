package btrieve

import (
	"fmt"
	"strconv"
	"strings"
)

func enumName[T ~int](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return "UNKNOWN"
}

// parseEnum accepts the upper-case engine name (case-insensitive) or the
// numeric value.
func parseEnum[T ~int](names map[T]string, kind string, b []byte, out *T) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	for v, name := range names {
		if name == s {
			*out = v
			return nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := names[T(n)]; ok {
			*out = T(n)
			return nil
		}
	}
	return fmt.Errorf("invalid %s '%s': %w", kind, string(b), StatusInvalidOption)
}

// Index identifies an index of a file. Indexes are numbered from zero.
type Index int

const (
	IndexNone    Index = -1
	IndexFirst   Index = 0
	IndexMaximum Index = 118
	IndexSystem  Index = 125
)

func (i Index) Valid() bool {
	return (i >= IndexFirst && i <= IndexMaximum) || i == IndexSystem
}

func (i Index) String() string {
	switch {
	case i == IndexNone:
		return "NONE"
	case i == IndexSystem:
		return "SYSTEM"
	case i >= IndexFirst && i <= IndexMaximum:
		return "INDEX_" + strconv.Itoa(int(i)+1)
	}
	return "UNKNOWN"
}

func (i Index) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *Index) UnmarshalText(b []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	switch {
	case s == "NONE":
		*i = IndexNone
		return nil
	case s == "SYSTEM":
		*i = IndexSystem
		return nil
	case strings.HasPrefix(s, "INDEX_"):
		n, err := strconv.Atoi(strings.TrimPrefix(s, "INDEX_"))
		if err == nil && Index(n-1).Valid() {
			*i = Index(n - 1)
			return nil
		}
	default:
		n, err := strconv.Atoi(s)
		if err == nil && (Index(n).Valid() || Index(n) == IndexNone) {
			*i = Index(n)
			return nil
		}
	}
	return fmt.Errorf("invalid Index '%s': %w", string(b), StatusInvalidIndexNumber)
}

// Comparison selects how a key or a filter field is compared against a value.
type Comparison int

const (
	ComparisonNone Comparison = iota
	ComparisonEqual
	ComparisonGreaterThan
	ComparisonLessThan
	ComparisonNotEqual
	ComparisonGreaterThanOrEqual
	ComparisonLessThanOrEqual
	ComparisonLike
	ComparisonNotLike
)

var comparisonNames = map[Comparison]string{
	ComparisonNone:               "NONE",
	ComparisonEqual:              "EQUAL",
	ComparisonGreaterThan:        "GREATER_THAN",
	ComparisonLessThan:           "LESS_THAN",
	ComparisonNotEqual:           "NOT_EQUAL",
	ComparisonGreaterThanOrEqual: "GREATER_THAN_OR_EQUAL",
	ComparisonLessThanOrEqual:    "LESS_THAN_OR_EQUAL",
	ComparisonLike:               "LIKE",
	ComparisonNotLike:            "NOT_LIKE",
}

func (c Comparison) String() string { return enumName(comparisonNames, c) }

func (c Comparison) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Comparison) UnmarshalText(b []byte) error { return parseEnum(comparisonNames, "Comparison", b, c) }

// Connector chains a filter with the next one. The last filter uses ConnectorLast.
type Connector int

const (
	ConnectorLast Connector = iota
	ConnectorAnd
	ConnectorOr
)

var connectorNames = map[Connector]string{
	ConnectorLast: "LAST",
	ConnectorAnd:  "AND",
	ConnectorOr:   "OR",
}

func (c Connector) String() string { return enumName(connectorNames, c) }

func (c Connector) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Connector) UnmarshalText(b []byte) error { return parseEnum(connectorNames, "Connector", b, c) }

type DiskDrive int

const (
	DiskDriveA DiskDrive = iota
	DiskDriveB
	DiskDriveC
	DiskDriveD
	DiskDriveE
	DiskDriveF
	DiskDriveG
	DiskDriveH
	DiskDriveI
	DiskDriveJ
	DiskDriveK
	DiskDriveL
	DiskDriveM
	DiskDriveN
	DiskDriveO
	DiskDriveP
	DiskDriveQ
	DiskDriveR
	DiskDriveS
	DiskDriveT
	DiskDriveU
	DiskDriveV
	DiskDriveW
	DiskDriveX
	DiskDriveY
	DiskDriveZ
	DiskDriveDefault
)

var diskDriveNames = map[DiskDrive]string{
	DiskDriveA:       "A",
	DiskDriveB:       "B",
	DiskDriveC:       "C",
	DiskDriveD:       "D",
	DiskDriveE:       "E",
	DiskDriveF:       "F",
	DiskDriveG:       "G",
	DiskDriveH:       "H",
	DiskDriveI:       "I",
	DiskDriveJ:       "J",
	DiskDriveK:       "K",
	DiskDriveL:       "L",
	DiskDriveM:       "M",
	DiskDriveN:       "N",
	DiskDriveO:       "O",
	DiskDriveP:       "P",
	DiskDriveQ:       "Q",
	DiskDriveR:       "R",
	DiskDriveS:       "S",
	DiskDriveT:       "T",
	DiskDriveU:       "U",
	DiskDriveV:       "V",
	DiskDriveW:       "W",
	DiskDriveX:       "X",
	DiskDriveY:       "Y",
	DiskDriveZ:       "Z",
	DiskDriveDefault: "DEFAULT",
}

func (d DiskDrive) String() string { return enumName(diskDriveNames, d) }

func (d DiskDrive) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DiskDrive) UnmarshalText(b []byte) error { return parseEnum(diskDriveNames, "DiskDrive", b, d) }

type CreateMode int

const (
	CreateModeOverwrite CreateMode = iota
	CreateModeNoOverwrite
)

var createModeNames = map[CreateMode]string{
	CreateModeOverwrite:   "OVERWRITE",
	CreateModeNoOverwrite: "NO_OVERWRITE",
}

func (c CreateMode) String() string { return enumName(createModeNames, c) }

func (c CreateMode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CreateMode) UnmarshalText(b []byte) error { return parseEnum(createModeNames, "CreateMode", b, c) }

// LockMode parameterizes retrieve calls. Single locks hold one record per
// handle, multiple locks accumulate until RecordUnlock.
type LockMode int

const (
	LockModeNone LockMode = iota
	LockModeSingleWait
	LockModeSingleNoWait
	LockModeMultipleWait
	LockModeMultipleNoWait
)

var lockModeNames = map[LockMode]string{
	LockModeNone:           "NONE",
	LockModeSingleWait:     "SINGLE_WAIT",
	LockModeSingleNoWait:   "SINGLE_NO_WAIT",
	LockModeMultipleWait:   "MULTIPLE_WAIT",
	LockModeMultipleNoWait: "MULTIPLE_NO_WAIT",
}

func (l LockMode) String() string { return enumName(lockModeNames, l) }

func (l LockMode) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *LockMode) UnmarshalText(b []byte) error { return parseEnum(lockModeNames, "LockMode", b, l) }

func (l LockMode) Valid() bool {
	_, ok := lockModeNames[l]
	return ok
}

func (l LockMode) Single() bool {
	return l == LockModeSingleWait || l == LockModeSingleNoWait
}

func (l LockMode) Multiple() bool {
	return l == LockModeMultipleWait || l == LockModeMultipleNoWait
}

func (l LockMode) Wait() bool {
	return l == LockModeSingleWait || l == LockModeMultipleWait
}

type OpenMode int

const (
	OpenModeNormal OpenMode = iota
	OpenModeAccelerated
	OpenModeReadOnly
	OpenModeExclusive
)

var openModeNames = map[OpenMode]string{
	OpenModeNormal:      "NORMAL",
	OpenModeAccelerated: "ACCELERATED",
	OpenModeReadOnly:    "READ_ONLY",
	OpenModeExclusive:   "EXCLUSIVE",
}

func (o OpenMode) String() string { return enumName(openModeNames, o) }

func (o OpenMode) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *OpenMode) UnmarshalText(b []byte) error { return parseEnum(openModeNames, "OpenMode", b, o) }

func (o OpenMode) Valid() bool {
	_, ok := openModeNames[o]
	return ok
}

type OwnerMode int

const (
	OwnerModeNone OwnerMode = iota
	OwnerModeNoEncryptionNoReadAllowed
	OwnerModeNoEncryptionReadAllowed
	OwnerModeEncryptionNoReadAllowed
	OwnerModeEncryptionReadAllowed
)

var ownerModeNames = map[OwnerMode]string{
	OwnerModeNone:                      "NONE",
	OwnerModeNoEncryptionNoReadAllowed: "NO_ENCRYPTION_NO_READ_ALLOWED",
	OwnerModeNoEncryptionReadAllowed:   "NO_ENCRYPTION_READ_ALLOWED",
	OwnerModeEncryptionNoReadAllowed:   "ENCRYPTION_NO_READ_ALLOWED",
	OwnerModeEncryptionReadAllowed:     "ENCRYPTION_READ_ALLOWED",
}

func (o OwnerMode) String() string { return enumName(ownerModeNames, o) }

func (o OwnerMode) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *OwnerMode) UnmarshalText(b []byte) error { return parseEnum(ownerModeNames, "OwnerMode", b, o) }

func (o OwnerMode) Valid() bool {
	_, ok := ownerModeNames[o]
	return ok
}

// ReadAllowed reports whether the mode lets read-only opens skip the owner
// name.
func (o OwnerMode) ReadAllowed() bool {
	return o == OwnerModeNoEncryptionReadAllowed || o == OwnerModeEncryptionReadAllowed
}

type TransactionMode int

const (
	TransactionModeExclusive TransactionMode = iota
	TransactionModeConcurrentWriteWait
	TransactionModeConcurrentNoWriteWait
)

var transactionModeNames = map[TransactionMode]string{
	TransactionModeExclusive:             "EXCLUSIVE",
	TransactionModeConcurrentWriteWait:   "CONCURRENT_WRITE_WAIT",
	TransactionModeConcurrentNoWriteWait: "CONCURRENT_NO_WRITE_WAIT",
}

func (t TransactionMode) String() string { return enumName(transactionModeNames, t) }

func (t TransactionMode) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TransactionMode) UnmarshalText(b []byte) error { return parseEnum(transactionModeNames, "TransactionMode", b, t) }

type UnlockMode int

const (
	UnlockModeSingle UnlockMode = iota
	UnlockModeMultiple
)

var unlockModeNames = map[UnlockMode]string{
	UnlockModeSingle:   "SINGLE",
	UnlockModeMultiple: "MULTIPLE",
}

func (u UnlockMode) String() string { return enumName(unlockModeNames, u) }

func (u UnlockMode) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *UnlockMode) UnmarshalText(b []byte) error { return parseEnum(unlockModeNames, "UnlockMode", b, u) }

// DataType drives key comparison and filter evaluation for a field.
type DataType int

const (
	DataTypeChar DataType = iota
	DataTypeZstring
	DataTypeInteger
	DataTypeUnsignedBinary
	DataTypeFloat
	DataTypeAutoincrement
	DataTypeDate
	DataTypeNumericsts
	DataTypeTime
	DataTypeNumericsa
	DataTypeDecimal
	DataTypeCurrency
	DataTypeMoney
	DataTypeTimestamp
	DataTypeLogical
	DataTypeWstring
	DataTypeNumeric
	DataTypeWzstring
	DataTypeBfloat
	DataTypeGuid
	DataTypeLstring
	DataTypeNullIndicatorSegment
	DataTypeLegacyString
	DataTypeLegacyBinary
)

var dataTypeNames = map[DataType]string{
	DataTypeChar:                 "CHAR",
	DataTypeZstring:              "ZSTRING",
	DataTypeInteger:              "INTEGER",
	DataTypeUnsignedBinary:       "UNSIGNED_BINARY",
	DataTypeFloat:                "FLOAT",
	DataTypeAutoincrement:        "AUTOINCREMENT",
	DataTypeDate:                 "DATE",
	DataTypeNumericsts:           "NUMERICSTS",
	DataTypeTime:                 "TIME",
	DataTypeNumericsa:            "NUMERICSA",
	DataTypeDecimal:              "DECIMAL",
	DataTypeCurrency:             "CURRENCY",
	DataTypeMoney:                "MONEY",
	DataTypeTimestamp:            "TIMESTAMP",
	DataTypeLogical:              "LOGICAL",
	DataTypeWstring:              "WSTRING",
	DataTypeNumeric:              "NUMERIC",
	DataTypeWzstring:             "WZSTRING",
	DataTypeBfloat:               "BFLOAT",
	DataTypeGuid:                 "GUID",
	DataTypeLstring:              "LSTRING",
	DataTypeNullIndicatorSegment: "NULL_INDICATOR_SEGMENT",
	DataTypeLegacyString:         "LEGACY_STRING",
	DataTypeLegacyBinary:         "LEGACY_BINARY",
}

func (d DataType) String() string { return enumName(dataTypeNames, d) }

func (d DataType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DataType) UnmarshalText(b []byte) error { return parseEnum(dataTypeNames, "DataType", b, d) }

type FileVersion int

const (
	FileVersion6_0 FileVersion = iota
	FileVersion6_1
	FileVersion7_0
	FileVersion8_0
	FileVersion9_0
	FileVersion9_5
	FileVersionDefault
	FileVersion13_0
)

var fileVersionNames = map[FileVersion]string{
	FileVersion6_0:     "6_0",
	FileVersion6_1:     "6_1",
	FileVersion7_0:     "7_0",
	FileVersion8_0:     "8_0",
	FileVersion9_0:     "9_0",
	FileVersion9_5:     "9_5",
	FileVersionDefault: "DEFAULT",
	FileVersion13_0:    "13_0",
}

func (f FileVersion) String() string { return enumName(fileVersionNames, f) }

func (f FileVersion) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FileVersion) UnmarshalText(b []byte) error { return parseEnum(fileVersionNames, "FileVersion", b, f) }

type FreeSpaceThreshold int

const (
	FreeSpaceThreshold10Percent FreeSpaceThreshold = iota
	FreeSpaceThreshold20Percent
	FreeSpaceThreshold30Percent
	FreeSpaceThresholdDefault
)

var freeSpaceThresholdNames = map[FreeSpaceThreshold]string{
	FreeSpaceThreshold10Percent: "10_PERCENT",
	FreeSpaceThreshold20Percent: "20_PERCENT",
	FreeSpaceThreshold30Percent: "30_PERCENT",
	FreeSpaceThresholdDefault:   "DEFAULT",
}

func (f FreeSpaceThreshold) String() string { return enumName(freeSpaceThresholdNames, f) }

func (f FreeSpaceThreshold) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FreeSpaceThreshold) UnmarshalText(b []byte) error { return parseEnum(freeSpaceThresholdNames, "FreeSpaceThreshold", b, f) }

type NullKeyMode int

// The zero value leaves null keys indexed, unlike the engine numbering where
// zero is ALL_SEGMENTS.
const (
	NullKeyModeNone NullKeyMode = iota
	NullKeyModeAllSegments
	NullKeyModeAnySegments
)

var nullKeyModeNames = map[NullKeyMode]string{
	NullKeyModeNone:        "NONE",
	NullKeyModeAllSegments: "ALL_SEGMENTS",
	NullKeyModeAnySegments: "ANY_SEGMENTS",
}

func (n NullKeyMode) String() string { return enumName(nullKeyModeNames, n) }

func (n NullKeyMode) MarshalText() ([]byte, error) { return []byte(n.String()), nil }

func (n *NullKeyMode) UnmarshalText(b []byte) error { return parseEnum(nullKeyModeNames, "NullKeyMode", b, n) }

type PageLockType int

const (
	PageLockTypeNone PageLockType = iota
	PageLockTypeDataPage
	PageLockTypeIndexPage
	PageLockTypeVariablePage
)

var pageLockTypeNames = map[PageLockType]string{
	PageLockTypeNone:         "NONE",
	PageLockTypeDataPage:     "DATA_PAGE",
	PageLockTypeIndexPage:    "INDEX_PAGE",
	PageLockTypeVariablePage: "VARIABLE_PAGE",
}

func (p PageLockType) String() string { return enumName(pageLockTypeNames, p) }

func (p PageLockType) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PageLockType) UnmarshalText(b []byte) error { return parseEnum(pageLockTypeNames, "PageLockType", b, p) }

type PageSize int

const (
	PageSize512 PageSize = iota
	PageSize1024
	PageSize1536
	PageSize2048
	PageSize3072
	PageSize3584
	PageSize4096
	PageSize8192
	PageSize16384
	PageSizeDefault
)

var pageSizeNames = map[PageSize]string{
	PageSize512:     "512",
	PageSize1024:    "1024",
	PageSize1536:    "1536",
	PageSize2048:    "2048",
	PageSize3072:    "3072",
	PageSize3584:    "3584",
	PageSize4096:    "4096",
	PageSize8192:    "8192",
	PageSize16384:   "16384",
	PageSizeDefault: "DEFAULT",
}

func (p PageSize) String() string { return enumName(pageSizeNames, p) }

func (p PageSize) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PageSize) UnmarshalText(b []byte) error { return parseEnum(pageSizeNames, "PageSize", b, p) }

type SystemDataMode int

const (
	SystemDataModeYes SystemDataMode = iota
	SystemDataModeNo
	SystemDataModeDefault
)

var systemDataModeNames = map[SystemDataMode]string{
	SystemDataModeYes:     "YES",
	SystemDataModeNo:      "NO",
	SystemDataModeDefault: "DEFAULT",
}

func (s SystemDataMode) String() string { return enumName(systemDataModeNames, s) }

func (s SystemDataMode) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SystemDataMode) UnmarshalText(b []byte) error { return parseEnum(systemDataModeNames, "SystemDataMode", b, s) }

type VariableLengthRecordsMode int

const (
	VariableLengthRecordsModeNo VariableLengthRecordsMode = iota
	VariableLengthRecordsModeYes
	VariableLengthRecordsModeYesVariableAllocationTails
)

var variableLengthRecordsModeNames = map[VariableLengthRecordsMode]string{
	VariableLengthRecordsModeNo:                         "NO",
	VariableLengthRecordsModeYes:                        "YES",
	VariableLengthRecordsModeYesVariableAllocationTails: "YES_VARIABLE_ALLOCATION_TAILS",
}

func (v VariableLengthRecordsMode) String() string { return enumName(variableLengthRecordsModeNames, v) }

func (v VariableLengthRecordsMode) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *VariableLengthRecordsMode) UnmarshalText(b []byte) error { return parseEnum(variableLengthRecordsModeNames, "VariableLengthRecordsMode", b, v) }

type ACSMode int

const (
	ACSModeNone ACSMode = iota
	ACSModeNamed
	ACSModeNumbered
	ACSModeCaseInsensitive
	ACSModeDefault
)

var acsModeNames = map[ACSMode]string{
	ACSModeNone:            "NONE",
	ACSModeNamed:           "NAMED",
	ACSModeNumbered:        "NUMBERED",
	ACSModeCaseInsensitive: "CASE_INSENSITIVE",
	ACSModeDefault:         "DEFAULT",
}

func (a ACSMode) String() string { return enumName(acsModeNames, a) }

func (a ACSMode) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *ACSMode) UnmarshalText(b []byte) error { return parseEnum(acsModeNames, "ACSMode", b, a) }

type RecordCompressionMode int

const (
	RecordCompressionModeNone RecordCompressionMode = iota
	RecordCompressionModeBlankTruncation
	RecordCompressionModeRunLengthEncoding
)

var recordCompressionModeNames = map[RecordCompressionMode]string{
	RecordCompressionModeNone:              "NONE",
	RecordCompressionModeBlankTruncation:   "BLANK_TRUNCATION",
	RecordCompressionModeRunLengthEncoding: "RUN_LENGTH_ENCODING",
}

func (r RecordCompressionMode) String() string { return enumName(recordCompressionModeNames, r) }

func (r RecordCompressionMode) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *RecordCompressionMode) UnmarshalText(b []byte) error { return parseEnum(recordCompressionModeNames, "RecordCompressionMode", b, r) }

type DuplicateMode int

const (
	DuplicateModeNotAllowed DuplicateMode = iota
	DuplicateModeAllowedNonrepeating
	DuplicateModeAllowedRepeating
)

var duplicateModeNames = map[DuplicateMode]string{
	DuplicateModeNotAllowed:          "NOT_ALLOWED",
	DuplicateModeAllowedNonrepeating: "ALLOWED_NONREPEATING",
	DuplicateModeAllowedRepeating:    "ALLOWED_REPEATING",
}

func (d DuplicateMode) String() string { return enumName(duplicateModeNames, d) }

func (d DuplicateMode) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DuplicateMode) UnmarshalText(b []byte) error { return parseEnum(duplicateModeNames, "DuplicateMode", b, d) }

type VersionType int

const (
	VersionTypeNone VersionType = iota
	VersionTypeBtrieveEngine
	VersionTypeWorkgroupEngine
	VersionTypeDosWorkstation
	VersionTypeClientRequestor
	VersionTypeWindowsServerEngine
	VersionTypeUnix
	VersionTypeClientEngine
)

var versionTypeNames = map[VersionType]string{
	VersionTypeNone:                "NONE",
	VersionTypeBtrieveEngine:       "BTRIEVE_ENGINE",
	VersionTypeWorkgroupEngine:     "WORKGROUP_ENGINE",
	VersionTypeDosWorkstation:      "DOS_WORKSTATION",
	VersionTypeClientRequestor:     "CLIENT_REQUESTOR",
	VersionTypeWindowsServerEngine: "WINDOWS_SERVER_ENGINE",
	VersionTypeUnix:                "UNIX",
	VersionTypeClientEngine:        "CLIENT_ENGINE",
}

func (v VersionType) String() string { return enumName(versionTypeNames, v) }

func (v VersionType) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *VersionType) UnmarshalText(b []byte) error { return parseEnum(versionTypeNames, "VersionType", b, v) }

