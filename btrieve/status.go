package btrieve

import (
	"errors"
	"strconv"
)

// StatusCode is the result of every engine operation. StatusNoError means
// success, any other value is an error and can be returned as one.
type StatusCode int

const (
	StatusNoError                      StatusCode = 0
	StatusInvalidFunction              StatusCode = 1
	StatusIOError                      StatusCode = 2
	StatusFileNotOpen                  StatusCode = 3
	StatusKeyValueNotFound             StatusCode = 4
	StatusDuplicateKeyValue            StatusCode = 5
	StatusInvalidIndexNumber           StatusCode = 6
	StatusDifferentIndexNumber         StatusCode = 7
	StatusPositionNotSet               StatusCode = 8
	StatusEndOfFile                    StatusCode = 9
	StatusModifiableKeyValueError      StatusCode = 10
	StatusFilenameBad                  StatusCode = 11
	StatusFileNotFound                 StatusCode = 12
	StatusExtendedFileError            StatusCode = 13
	StatusPreimageOpenError            StatusCode = 14
	StatusPreimageIoError              StatusCode = 15
	StatusExpansionError               StatusCode = 16
	StatusCloseError                   StatusCode = 17
	StatusDiskFull                     StatusCode = 18
	StatusUnrecoverableError           StatusCode = 19
	StatusRecordManagerInactive        StatusCode = 20
	StatusKeyBufferTooShort            StatusCode = 21
	StatusDataLengthError              StatusCode = 22
	StatusPositionBlockLength          StatusCode = 23
	StatusPageSizeError                StatusCode = 24
	StatusCreateIoError                StatusCode = 25
	StatusNumberOfIndexes              StatusCode = 26
	StatusInvalidKeyPosition           StatusCode = 27
	StatusInvalidRecordLength          StatusCode = 28
	StatusInvalidKeyLength             StatusCode = 29
	StatusNotABtrieveFile              StatusCode = 30
	StatusFileAlreadyExtended          StatusCode = 31
	StatusExtendIoError                StatusCode = 32
	StatusBtrCannotUnload              StatusCode = 33
	StatusInvalidExtensionName         StatusCode = 34
	StatusDirectoryError               StatusCode = 35
	StatusTransactionError             StatusCode = 36
	StatusTransactionIsActive          StatusCode = 37
	StatusTransactionFileIoError       StatusCode = 38
	StatusEndTransactionError          StatusCode = 39
	StatusTransactionMaxFiles          StatusCode = 40
	StatusOperationNotAllowed          StatusCode = 41
	StatusIncompleteAccelAccess        StatusCode = 42
	StatusInvalidRecordAddress         StatusCode = 43
	StatusNullKeypath                  StatusCode = 44
	StatusInconsistentKeyFlags         StatusCode = 45
	StatusAccessToFileDenied           StatusCode = 46
	StatusMaximumOpenFiles             StatusCode = 47
	StatusInvalidAltSequenceDef        StatusCode = 48
	StatusKeyTypeError                 StatusCode = 49
	StatusOwnerAlreadySet              StatusCode = 50
	StatusInvalidOwner                 StatusCode = 51
	StatusErrorWritingCache            StatusCode = 52
	StatusInvalidInterface             StatusCode = 53
	StatusVariablePageError            StatusCode = 54
	StatusAutoincrementError           StatusCode = 55
	StatusIncompleteIndex              StatusCode = 56
	StatusExpandedMemError             StatusCode = 57
	StatusCompressBufferTooShort       StatusCode = 58
	StatusFileAlreadyExists            StatusCode = 59
	StatusRejectCountReached           StatusCode = 60
	StatusSmallExGetBufferError        StatusCode = 61
	StatusInvalidGetExpression         StatusCode = 62
	StatusInvalidExtInsertBuff         StatusCode = 63
	StatusOptimizeLimitReached         StatusCode = 64
	StatusInvalidExtractor             StatusCode = 65
	StatusRITooManyDatabases           StatusCode = 66
	StatusRIDDFCannotOpen              StatusCode = 67
	StatusRICascadeTooDeep             StatusCode = 68
	StatusRICascadeError               StatusCode = 69
	StatusRIViolation                  StatusCode = 71
	StatusRIReferencedFileCannotOpen   StatusCode = 72
	StatusRIOutOfSync                  StatusCode = 73
	StatusEndChangedToAbort            StatusCode = 74
	StatusRIConflict                   StatusCode = 76
	StatusCantLoopInServer             StatusCode = 77
	StatusDeadLock                     StatusCode = 78
	StatusProgrammingError             StatusCode = 79
	StatusConflict                     StatusCode = 80
	StatusLockError                    StatusCode = 81
	StatusLostPosition                 StatusCode = 82
	StatusReadOutsideTransaction       StatusCode = 83
	StatusRecordInUse                  StatusCode = 84
	StatusFileInUse                    StatusCode = 85
	StatusFileTableFull                StatusCode = 86
	StatusNoHandlesAvailable           StatusCode = 87
	StatusIncompatibleModeError        StatusCode = 88
	StatusDeviceTableFull              StatusCode = 90
	StatusServerError                  StatusCode = 91
	StatusTransactionTableFull         StatusCode = 92
	StatusIncompatibleLockType         StatusCode = 93
	StatusPermissionError              StatusCode = 94
	StatusSessionNoLongerValid         StatusCode = 95
	StatusCommunicationsError          StatusCode = 96
	StatusDataMessageTooSmall          StatusCode = 97
	StatusInternalTransactionError     StatusCode = 98
	StatusRequesterCantAccessRuntime   StatusCode = 99
	StatusNoCacheBuffersAvail          StatusCode = 100
	StatusNoOsMemoryAvail              StatusCode = 101
	StatusNoStackAvail                 StatusCode = 102
	StatusChunkOffsetTooLong           StatusCode = 103
	StatusLocaleError                  StatusCode = 104
	StatusCannotCreateWithVAT          StatusCode = 105
	StatusChunkCannotGetNext           StatusCode = 106
	StatusChunkIncompatibleFile        StatusCode = 107
	StatusTransactionTooComplex        StatusCode = 109
	StatusArchBlogOpenError            StatusCode = 110
	StatusArchFileNotLogged            StatusCode = 111
	StatusArchFileInUse                StatusCode = 112
	StatusArchLogFileNotFound          StatusCode = 113
	StatusArchLogFileInvalid           StatusCode = 114
	StatusArchDumpFileAccessError      StatusCode = 115
	StatusLocatorFileIndicator         StatusCode = 116
	StatusNoSystemLocksAvailable       StatusCode = 130
	StatusFileFull                     StatusCode = 132
	StatusMoreThan5ConcurrentUsers     StatusCode = 133
	StatusISRNotFound                  StatusCode = 134
	StatusISRInvalid                   StatusCode = 135
	StatusACSNotFound                  StatusCode = 136
	StatusCannotConvertRP              StatusCode = 137
	StatusInvalidNullIndicator         StatusCode = 138
	StatusInvalidKeyOption             StatusCode = 139
	StatusIncompatibleClose            StatusCode = 140
	StatusInvalidUsername              StatusCode = 141
	StatusInvalidDatabase              StatusCode = 142
	StatusNoSSQLRights                 StatusCode = 143
	StatusAlreadyLoggedIn              StatusCode = 144
	StatusNoDatabaseServices           StatusCode = 145
	StatusDuplicateSystemKey           StatusCode = 146
	StatusLogSegmentMissing            StatusCode = 147
	StatusRollForwardError             StatusCode = 148
	StatusSystemKeyInternal            StatusCode = 149
	StatusDBSInternalError             StatusCode = 150
	StatusNestingDepthError            StatusCode = 151
	StatusInvalidParameterToMKDE       StatusCode = 160
	StatusUserCountLimitExceeded       StatusCode = 161
	StatusClientTableFull              StatusCode = 162
	StatusLastSegmentError             StatusCode = 163
	StatusLoginFailedBadUsername       StatusCode = 170
	StatusLoginFailedBadPassword       StatusCode = 171
	StatusLoginFailedBadDatabase       StatusCode = 172
	StatusLoginAlreadyLoggedIn         StatusCode = 173
	StatusLoginLogoutFailed            StatusCode = 174
	StatusLoginWrongUriFormat          StatusCode = 175
	StatusLoginFileAndTableNotFound    StatusCode = 176
	StatusLoginTableNotInDatabase      StatusCode = 177
	StatusLoginDirectoryNotInDatabase  StatusCode = 178
	StatusLockParmOutOfRange           StatusCode = 1001
	StatusMemAllocationError           StatusCode = 1002
	StatusMemParmTooSmall              StatusCode = 1003
	StatusPageSizeParmOutOfRange       StatusCode = 1004
	StatusInvalidPreimageParm          StatusCode = 1005
	StatusPreimageBufParmOutOfRange    StatusCode = 1006
	StatusFilesParmOutOfRange          StatusCode = 1007
	StatusInvalidInitParm              StatusCode = 1008
	StatusInvalidTransParm             StatusCode = 1009
	StatusErrorAccTransControlFile     StatusCode = 1010
	StatusCompressionBufParmOutOfRange StatusCode = 1011
	StatusInvalidNOption               StatusCode = 1012
	StatusTaskListFull                 StatusCode = 1013
	StatusStopWarning                  StatusCode = 1014
	StatusPointerParmInvalid           StatusCode = 1015
	StatusAlreadyInitialized           StatusCode = 1016
	StatusReqCantFindResDLL            StatusCode = 1017
	StatusAlreadyInsideBtrFunction     StatusCode = 1018
	StatusCallbackAbort                StatusCode = 1019
	StatusIntfCommError                StatusCode = 1020
	StatusFailedToInitialize           StatusCode = 1021
	StatusMKDEShuttingDown             StatusCode = 1022
	StatusInternalError                StatusCode = 2000
	StatusInsufficientMemAlloc         StatusCode = 2001
	StatusInvalidOption                StatusCode = 2002
	StatusNoLocalAccessAllowed         StatusCode = 2003
	StatusSPXNotInstalled              StatusCode = 2004
	StatusIncorrectSPXVersion          StatusCode = 2005
	StatusNoAvailSPXConnection         StatusCode = 2006
	StatusInvalidPtrParm               StatusCode = 2007
	StatusCantConnectTo615             StatusCode = 2008
	StatusCantLoadMKDERouter           StatusCode = 2009
	StatusUTThunkNotLoaded             StatusCode = 2010
	StatusNoResourceDLL                StatusCode = 2011
	StatusOSError                      StatusCode = 2012
	StatusUnknown                      StatusCode = -7
)

var statusNames = map[StatusCode]string{
	StatusNoError:                      "NO_ERROR",
	StatusInvalidFunction:              "INVALID_FUNCTION",
	StatusIOError:                      "IO_ERROR",
	StatusFileNotOpen:                  "FILE_NOT_OPEN",
	StatusKeyValueNotFound:             "KEY_VALUE_NOT_FOUND",
	StatusDuplicateKeyValue:            "DUPLICATE_KEY_VALUE",
	StatusInvalidIndexNumber:           "INVALID_INDEX_NUMBER",
	StatusDifferentIndexNumber:         "DIFFERENT_INDEX_NUMBER",
	StatusPositionNotSet:               "POSITION_NOT_SET",
	StatusEndOfFile:                    "END_OF_FILE",
	StatusModifiableKeyValueError:      "MODIFIABLE_KEYVALUE_ERROR",
	StatusFilenameBad:                  "FILENAME_BAD",
	StatusFileNotFound:                 "FILE_NOT_FOUND",
	StatusExtendedFileError:            "EXTENDED_FILE_ERROR",
	StatusPreimageOpenError:            "PREIMAGE_OPEN_ERROR",
	StatusPreimageIoError:              "PREIMAGE_IO_ERROR",
	StatusExpansionError:               "EXPANSION_ERROR",
	StatusCloseError:                   "CLOSE_ERROR",
	StatusDiskFull:                     "DISKFULL",
	StatusUnrecoverableError:           "UNRECOVERABLE_ERROR",
	StatusRecordManagerInactive:        "RECORD_MANAGER_INACTIVE",
	StatusKeyBufferTooShort:            "KEYBUFFER_TOO_SHORT",
	StatusDataLengthError:              "DATALENGTH_ERROR",
	StatusPositionBlockLength:          "POSITIONBLOCK_LENGTH",
	StatusPageSizeError:                "PAGE_SIZE_ERROR",
	StatusCreateIoError:                "CREATE_IO_ERROR",
	StatusNumberOfIndexes:              "NUMBER_OF_INDEXES",
	StatusInvalidKeyPosition:           "INVALID_KEY_POSITION",
	StatusInvalidRecordLength:          "INVALID_RECORD_LENGTH",
	StatusInvalidKeyLength:             "INVALID_KEYLENGTH",
	StatusNotABtrieveFile:              "NOT_A_BTRIEVE_FILE",
	StatusFileAlreadyExtended:          "FILE_ALREADY_EXTENDED",
	StatusExtendIoError:                "EXTEND_IO_ERROR",
	StatusBtrCannotUnload:              "BTR_CANNOT_UNLOAD",
	StatusInvalidExtensionName:         "INVALID_EXTENSION_NAME",
	StatusDirectoryError:               "DIRECTORY_ERROR",
	StatusTransactionError:             "TRANSACTION_ERROR",
	StatusTransactionIsActive:          "TRANSACTION_IS_ACTIVE",
	StatusTransactionFileIoError:       "TRANSACTION_FILE_IO_ERROR",
	StatusEndTransactionError:          "END_TRANSACTION_ERROR",
	StatusTransactionMaxFiles:          "TRANSACTION_MAX_FILES",
	StatusOperationNotAllowed:          "OPERATION_NOT_ALLOWED",
	StatusIncompleteAccelAccess:        "INCOMPLETE_ACCEL_ACCESS",
	StatusInvalidRecordAddress:         "INVALID_RECORD_ADDRESS",
	StatusNullKeypath:                  "NULL_KEYPATH",
	StatusInconsistentKeyFlags:         "INCONSISTENT_KEY_FLAGS",
	StatusAccessToFileDenied:           "ACCESS_TO_FILE_DENIED",
	StatusMaximumOpenFiles:             "MAXIMUM_OPEN_FILES",
	StatusInvalidAltSequenceDef:        "INVALID_ALT_SEQUENCE_DEF",
	StatusKeyTypeError:                 "KEY_TYPE_ERROR",
	StatusOwnerAlreadySet:              "OWNER_ALREADY_SET",
	StatusInvalidOwner:                 "INVALID_OWNER",
	StatusErrorWritingCache:            "ERROR_WRITING_CACHE",
	StatusInvalidInterface:             "INVALID_INTERFACE",
	StatusVariablePageError:            "VARIABLE_PAGE_ERROR",
	StatusAutoincrementError:           "AUTOINCREMENT_ERROR",
	StatusIncompleteIndex:              "INCOMPLETE_INDEX",
	StatusExpandedMemError:             "EXPANED_MEM_ERROR",
	StatusCompressBufferTooShort:       "COMPRESS_BUFFER_TOO_SHORT",
	StatusFileAlreadyExists:            "FILE_ALREADY_EXISTS",
	StatusRejectCountReached:           "REJECT_COUNT_REACHED",
	StatusSmallExGetBufferError:        "SMALL_EX_GET_BUFFER_ERROR",
	StatusInvalidGetExpression:         "INVALID_GET_EXPRESSION",
	StatusInvalidExtInsertBuff:         "INVALID_EXT_INSERT_BUFF",
	StatusOptimizeLimitReached:         "OPTIMIZE_LIMIT_REACHED",
	StatusInvalidExtractor:             "INVALID_EXTRACTOR",
	StatusRITooManyDatabases:           "RI_TOO_MANY_DATABASES",
	StatusRIDDFCannotOpen:              "RIDDF_CANNOT_OPEN",
	StatusRICascadeTooDeep:             "RI_CASCADE_TOO_DEEP",
	StatusRICascadeError:               "RI_CASCADE_ERROR",
	StatusRIViolation:                  "RI_VIOLATION",
	StatusRIReferencedFileCannotOpen:   "RI_REFERENCED_FILE_CANNOT_OPEN",
	StatusRIOutOfSync:                  "RI_OUT_OF_SYNC",
	StatusEndChangedToAbort:            "END_CHANGED_TO_ABORT",
	StatusRIConflict:                   "RI_CONFLICT",
	StatusCantLoopInServer:             "CANT_LOOP_IN_SERVER",
	StatusDeadLock:                     "DEAD_LOCK",
	StatusProgrammingError:             "PROGRAMMING_ERROR",
	StatusConflict:                     "CONFLICT",
	StatusLockError:                    "LOCKERROR",
	StatusLostPosition:                 "LOST_POSITION",
	StatusReadOutsideTransaction:       "READ_OUTSIDE_TRANSACTION",
	StatusRecordInUse:                  "RECORD_INUSE",
	StatusFileInUse:                    "FILE_INUSE",
	StatusFileTableFull:                "FILE_TABLE_FULL",
	StatusNoHandlesAvailable:           "NOHANDLES_AVAILABLE",
	StatusIncompatibleModeError:        "INCOMPATIBLE_MODE_ERROR",
	StatusDeviceTableFull:              "DEVICE_TABLE_FULL",
	StatusServerError:                  "SERVER_ERROR",
	StatusTransactionTableFull:         "TRANSACTION_TABLE_FULL",
	StatusIncompatibleLockType:         "INCOMPATIBLE_LOCK_TYPE",
	StatusPermissionError:              "PERMISSION_ERROR",
	StatusSessionNoLongerValid:         "SESSION_NO_LONGER_VALID",
	StatusCommunicationsError:          "COMMUNICATIONS_ERROR",
	StatusDataMessageTooSmall:          "DATA_MESSAGE_TOO_SMALL",
	StatusInternalTransactionError:     "INTERNAL_TRANSACTION_ERROR",
	StatusRequesterCantAccessRuntime:   "REQUESTER_CANT_ACCESS_RUNTIME",
	StatusNoCacheBuffersAvail:          "NO_CACHE_BUFFERS_AVAIL",
	StatusNoOsMemoryAvail:              "NO_OS_MEMORY_AVAIL",
	StatusNoStackAvail:                 "NO_STACK_AVAIL",
	StatusChunkOffsetTooLong:           "CHUNK_OFFSET_TOO_LONG",
	StatusLocaleError:                  "LOCALE_ERROR",
	StatusCannotCreateWithVAT:          "CANNOT_CREATE_WITH_VAT",
	StatusChunkCannotGetNext:           "CHUNK_CANNOT_GET_NEXT",
	StatusChunkIncompatibleFile:        "CHUNK_INCOMPATIBLE_FILE",
	StatusTransactionTooComplex:        "TRANSACTION_TOO_COMPLEX",
	StatusArchBlogOpenError:            "ARCH_BLOG_OPEN_ERROR",
	StatusArchFileNotLogged:            "ARCH_FILE_NOT_LOGGED",
	StatusArchFileInUse:                "ARCH_FILE_IN_USE",
	StatusArchLogFileNotFound:          "ARCH_LOGFILE_NOT_FOUND",
	StatusArchLogFileInvalid:           "ARCH_LOGFILE_INVALID",
	StatusArchDumpFileAccessError:      "ARCH_DUMPFILE_ACCESS_ERROR",
	StatusLocatorFileIndicator:         "LOCATOR_FILE_INDICATOR",
	StatusNoSystemLocksAvailable:       "NO_SYSTEM_LOCKS_AVAILABLE",
	StatusFileFull:                     "FILE_FULL",
	StatusMoreThan5ConcurrentUsers:     "MORE_THAN_5_CONCURRENT_USERS",
	StatusISRNotFound:                  "ISR_NOT_FOUND",
	StatusISRInvalid:                   "ISR_INVALID",
	StatusACSNotFound:                  "ACS_NOT_FOUND",
	StatusCannotConvertRP:              "CANNOT_CONVERT_RP",
	StatusInvalidNullIndicator:         "INVALID_NULL_INDICATOR",
	StatusInvalidKeyOption:             "INVALID_KEY_OPTION",
	StatusIncompatibleClose:            "INCOMPATIBLE_CLOSE",
	StatusInvalidUsername:              "INVALID_USERNAME",
	StatusInvalidDatabase:              "INVALID_DATABASE",
	StatusNoSSQLRights:                 "NO_SSQL_RIGHTS",
	StatusAlreadyLoggedIn:              "ALREADY_LOGGED_IN",
	StatusNoDatabaseServices:           "NO_DATABASE_SERVICES",
	StatusDuplicateSystemKey:           "DUPLICATE_SYSTEM_KEY",
	StatusLogSegmentMissing:            "LOG_SEGMENT_MISSING",
	StatusRollForwardError:             "ROLL_FORWARD_ERROR",
	StatusSystemKeyInternal:            "SYSTEM_KEY_INTERNAL",
	StatusDBSInternalError:             "DBS_INTERNAL_ERROR",
	StatusNestingDepthError:            "NESTING_DEPTH_ERROR",
	StatusInvalidParameterToMKDE:       "INVALID_PARAMETER_TO_MKDE",
	StatusUserCountLimitExceeded:       "USER_COUNT_LIMIT_EXCEEDED",
	StatusClientTableFull:              "CLIENT_TABLE_FULL",
	StatusLastSegmentError:             "LAST_SEGMENT_ERROR",
	StatusLoginFailedBadUsername:       "LOGIN_FAILED_BAD_USERNAME",
	StatusLoginFailedBadPassword:       "LOGIN_FAILED_BAD_PASSWORD",
	StatusLoginFailedBadDatabase:       "LOGIN_FAILED_BAD_DATABASE",
	StatusLoginAlreadyLoggedIn:         "LOGIN_ALREADY_LOGGED_IN",
	StatusLoginLogoutFailed:            "LOGIN_LOGOUT_FAILED",
	StatusLoginWrongUriFormat:          "LOGIN_WRONG_URI_FORMAT",
	StatusLoginFileAndTableNotFound:    "LOGIN_FILE_AND_TABLE_NOT_FOUND",
	StatusLoginTableNotInDatabase:      "LOGIN_TABLE_NOT_IN_DATABASE",
	StatusLoginDirectoryNotInDatabase:  "LOGIN_DIRECTORY_NOT_IN_DATABASE",
	StatusLockParmOutOfRange:           "LOCK_PARM_OUTOFRANGE",
	StatusMemAllocationError:           "MEM_ALLOCATION_ERR",
	StatusMemParmTooSmall:              "MEM_PARM_TOO_SMALL",
	StatusPageSizeParmOutOfRange:       "PAGE_SIZE_PARM_OUTOFRANGE",
	StatusInvalidPreimageParm:          "INVALID_PREIMAGE_PARM",
	StatusPreimageBufParmOutOfRange:    "PREIMAGE_BUF_PARM_OUTOFRANGE",
	StatusFilesParmOutOfRange:          "FILES_PARM_OUTOFRANGE",
	StatusInvalidInitParm:              "INVALID_INIT_PARM",
	StatusInvalidTransParm:             "INVALID_TRANS_PARM",
	StatusErrorAccTransControlFile:     "ERROR_ACC_TRANS_CONTROL_FILE",
	StatusCompressionBufParmOutOfRange: "COMPRESSION_BUF_PARM_OUTOFRANGE",
	StatusInvalidNOption:               "INV_N_OPTION",
	StatusTaskListFull:                 "TASK_LIST_FULL",
	StatusStopWarning:                  "STOP_WARNING",
	StatusPointerParmInvalid:           "POINTER_PARM_INVALID",
	StatusAlreadyInitialized:           "ALREADY_INITIALIZED",
	StatusReqCantFindResDLL:            "REQ_CANT_FIND_RES_DLL",
	StatusAlreadyInsideBtrFunction:     "ALREADY_INSIDE_BTR_FUNCTION",
	StatusCallbackAbort:                "CALLBACK_ABORT",
	StatusIntfCommError:                "INTF_COMM_ERROR",
	StatusFailedToInitialize:           "FAILED_TO_INITIALIZE",
	StatusMKDEShuttingDown:             "MKDE_SHUTTING_DOWN",
	StatusInternalError:                "INTERNAL_ERROR",
	StatusInsufficientMemAlloc:         "INSUFFICIENT_MEM_ALLOC",
	StatusInvalidOption:                "INVALID_OPTION",
	StatusNoLocalAccessAllowed:         "NO_LOCAL_ACCESS_ALLOWED",
	StatusSPXNotInstalled:              "SPX_NOT_INSTALLED",
	StatusIncorrectSPXVersion:          "INCORRECT_SPX_VERSION",
	StatusNoAvailSPXConnection:         "NO_AVAIL_SPX_CONNECTION",
	StatusInvalidPtrParm:               "INVALID_PTR_PARM",
	StatusCantConnectTo615:             "CANT_CONNECT_TO_615",
	StatusCantLoadMKDERouter:           "CANT_LOAD_MKDE_ROUTER",
	StatusUTThunkNotLoaded:             "UT_THUNK_NOT_LOADED",
	StatusNoResourceDLL:                "NO_RESOURCE_DLL",
	StatusOSError:                      "OS_ERROR",
	StatusUnknown:                      "UNKNOWN",
}

func (s StatusCode) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "STATUS_" + strconv.Itoa(int(s))
}

func (s StatusCode) Error() string {
	return s.String() + " (" + strconv.Itoa(int(s)) + ")"
}

func (s StatusCode) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusOf extracts the status carried by err. Errors that do not wrap a
// StatusCode are reported as StatusInternalError.
func StatusOf(err error) StatusCode {
	if err == nil {
		return StatusNoError
	}
	var s StatusCode
	if errors.As(err, &s) {
		return s
	}
	return StatusInternalError
}

// Class groups status codes by how a caller is expected to react to them.
type Class int

const (
	ClassNone Class = iota
	ClassNotFound
	ClassValidation
	ClassConcurrency
	ClassResource
	ClassIntegrity
	ClassSession
	ClassFatal
)

var classNames = []string{
	"none",
	"not_found",
	"validation",
	"concurrency",
	"resource",
	"integrity",
	"session",
	"fatal",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "class_" + strconv.Itoa(int(c))
	}
	return classNames[c]
}

func (c Class) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

var statusClasses = map[StatusCode]Class{}

func classify(c Class, codes ...StatusCode) {
	for _, code := range codes {
		statusClasses[code] = c
	}
}

func init() {
	classify(ClassNotFound,
		StatusKeyValueNotFound,
		StatusPositionNotSet,
		StatusEndOfFile,
		StatusFileNotFound,
		StatusRejectCountReached,
		StatusLostPosition,
	)
	classify(ClassConcurrency,
		StatusTransactionError,
		StatusTransactionIsActive,
		StatusEndTransactionError,
		StatusEndChangedToAbort,
		StatusDeadLock,
		StatusConflict,
		StatusLockError,
		StatusReadOutsideTransaction,
		StatusRecordInUse,
		StatusFileInUse,
		StatusIncompatibleModeError,
		StatusIncompatibleLockType,
	)
	classify(ClassResource,
		StatusDiskFull,
		StatusTransactionMaxFiles,
		StatusMaximumOpenFiles,
		StatusFileTableFull,
		StatusNoHandlesAvailable,
		StatusDeviceTableFull,
		StatusTransactionTableFull,
		StatusNoCacheBuffersAvail,
		StatusNoOsMemoryAvail,
		StatusNoStackAvail,
		StatusTransactionTooComplex,
		StatusNoSystemLocksAvailable,
		StatusFileFull,
		StatusMoreThan5ConcurrentUsers,
		StatusUserCountLimitExceeded,
		StatusClientTableFull,
		StatusTaskListFull,
	)
	classify(ClassIntegrity,
		StatusIOError,
		StatusExtendedFileError,
		StatusPreimageOpenError,
		StatusPreimageIoError,
		StatusExpansionError,
		StatusCloseError,
		StatusUnrecoverableError,
		StatusCreateIoError,
		StatusNotABtrieveFile,
		StatusFileAlreadyExtended,
		StatusExtendIoError,
		StatusTransactionFileIoError,
		StatusVariablePageError,
		StatusIncompleteIndex,
		StatusRITooManyDatabases,
		StatusRIDDFCannotOpen,
		StatusRICascadeTooDeep,
		StatusRICascadeError,
		StatusRIViolation,
		StatusRIReferencedFileCannotOpen,
		StatusRIOutOfSync,
		StatusRIConflict,
		StatusArchBlogOpenError,
		StatusArchFileNotLogged,
		StatusArchFileInUse,
		StatusArchLogFileNotFound,
		StatusArchLogFileInvalid,
		StatusArchDumpFileAccessError,
		StatusLocatorFileIndicator,
		StatusISRNotFound,
		StatusISRInvalid,
		StatusDuplicateSystemKey,
		StatusLogSegmentMissing,
		StatusRollForwardError,
		StatusSystemKeyInternal,
	)
	classify(ClassSession,
		StatusAccessToFileDenied,
		StatusOwnerAlreadySet,
		StatusInvalidOwner,
		StatusPermissionError,
		StatusSessionNoLongerValid,
		StatusInvalidUsername,
		StatusInvalidDatabase,
		StatusNoSSQLRights,
		StatusAlreadyLoggedIn,
		StatusNoDatabaseServices,
		StatusLoginFailedBadUsername,
		StatusLoginFailedBadPassword,
		StatusLoginFailedBadDatabase,
		StatusLoginAlreadyLoggedIn,
		StatusLoginLogoutFailed,
		StatusLoginWrongUriFormat,
		StatusLoginFileAndTableNotFound,
		StatusLoginTableNotInDatabase,
		StatusLoginDirectoryNotInDatabase,
	)
	classify(ClassFatal,
		StatusRecordManagerInactive,
		StatusProgrammingError,
		StatusServerError,
		StatusCommunicationsError,
		StatusDataMessageTooSmall,
		StatusInternalTransactionError,
		StatusRequesterCantAccessRuntime,
		StatusDBSInternalError,
		StatusStopWarning,
		StatusAlreadyInitialized,
		StatusReqCantFindResDLL,
		StatusAlreadyInsideBtrFunction,
		StatusCallbackAbort,
		StatusIntfCommError,
		StatusFailedToInitialize,
		StatusMKDEShuttingDown,
		StatusInternalError,
		StatusNoLocalAccessAllowed,
		StatusSPXNotInstalled,
		StatusIncorrectSPXVersion,
		StatusNoAvailSPXConnection,
		StatusInvalidPtrParm,
		StatusCantConnectTo615,
		StatusCantLoadMKDERouter,
		StatusUTThunkNotLoaded,
		StatusNoResourceDLL,
		StatusOSError,
		StatusUnknown,
	)
}

// Class reports the taxonomy class of s. Codes outside the known table are
// treated as fatal.
func (s StatusCode) Class() Class {
	if s == StatusNoError {
		return ClassNone
	}
	if c, ok := statusClasses[s]; ok {
		return c
	}
	if _, known := statusNames[s]; !known {
		return ClassFatal
	}
	return ClassValidation
}

// Fatal is true for codes the caller cannot recover from by retrying,
// correcting parameters or aborting a transaction.
func (s StatusCode) Fatal() bool {
	return s.Class() == ClassFatal
}
