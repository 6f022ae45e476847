package types

import "fmt"

// Status is the 32-bit error field of an SMB1 response header.
//
// When the server sets Flags2NTStatus the field is an NT_STATUS code:
//   - Severity (bits 30-31): 00=Success, 01=Informational, 10=Warning, 11=Error
//   - Facility (bits 16-28) and Code (bits 0-15)
//
// Otherwise it is a DOS error: ErrorClass (byte 0), reserved (byte 1) and
// ErrorCode (bytes 2-3). See DOSError.
//
// [MS-ERREF] Section 2.3, [MS-CIFS] Section 2.2.3.1
type Status uint32

const (
	StatusSuccess     Status = 0x00000000
	StatusMoreEntries Status = 0x00000105

	// StatusBufferOverflow is returned when the response was truncated to
	// MaxDataCount; the partial data is still usable.
	StatusBufferOverflow Status = 0x80000005

	// StatusNoMoreFiles ends an enumeration. FIND_NEXT2 may return it
	// instead of setting EndOfSearch.
	StatusNoMoreFiles Status = 0x80000006

	StatusInvalidInfoClass      Status = 0xC0000003
	StatusInvalidHandle         Status = 0xC0000008
	StatusInvalidParameter      Status = 0xC000000D
	StatusNoSuchFile            Status = 0xC000000F
	StatusInvalidDeviceRequest  Status = 0xC0000010
	StatusAccessDenied          Status = 0xC0000022
	StatusBufferTooSmall        Status = 0xC0000023
	StatusObjectNameInvalid     Status = 0xC0000033
	StatusObjectNameNotFound    Status = 0xC0000034
	StatusObjectPathNotFound    Status = 0xC000003A
	StatusSharingViolation      Status = 0xC0000043
	StatusInsufficientResources Status = 0xC000009A
	StatusNotSupported          Status = 0xC00000BB
	StatusBadNetworkName        Status = 0xC00000CC
	StatusNotADirectory         Status = 0xC0000103
	StatusNetworkNameDeleted    Status = 0xC00000C9
	StatusUserSessionDeleted    Status = 0xC0000203
)

// String returns a human-readable name for the status code.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "STATUS_SUCCESS"
	case StatusMoreEntries:
		return "STATUS_MORE_ENTRIES"
	case StatusBufferOverflow:
		return "STATUS_BUFFER_OVERFLOW"
	case StatusNoMoreFiles:
		return "STATUS_NO_MORE_FILES"
	case StatusInvalidInfoClass:
		return "STATUS_INVALID_INFO_CLASS"
	case StatusInvalidHandle:
		return "STATUS_INVALID_HANDLE"
	case StatusInvalidParameter:
		return "STATUS_INVALID_PARAMETER"
	case StatusNoSuchFile:
		return "STATUS_NO_SUCH_FILE"
	case StatusInvalidDeviceRequest:
		return "STATUS_INVALID_DEVICE_REQUEST"
	case StatusAccessDenied:
		return "STATUS_ACCESS_DENIED"
	case StatusBufferTooSmall:
		return "STATUS_BUFFER_TOO_SMALL"
	case StatusObjectNameInvalid:
		return "STATUS_OBJECT_NAME_INVALID"
	case StatusObjectNameNotFound:
		return "STATUS_OBJECT_NAME_NOT_FOUND"
	case StatusObjectPathNotFound:
		return "STATUS_OBJECT_PATH_NOT_FOUND"
	case StatusSharingViolation:
		return "STATUS_SHARING_VIOLATION"
	case StatusInsufficientResources:
		return "STATUS_INSUFFICIENT_RESOURCES"
	case StatusNotSupported:
		return "STATUS_NOT_SUPPORTED"
	case StatusBadNetworkName:
		return "STATUS_BAD_NETWORK_NAME"
	case StatusNotADirectory:
		return "STATUS_NOT_A_DIRECTORY"
	case StatusNetworkNameDeleted:
		return "STATUS_NETWORK_NAME_DELETED"
	case StatusUserSessionDeleted:
		return "STATUS_USER_SESSION_DELETED"
	default:
		return fmt.Sprintf("STATUS_0x%08X", uint32(s))
	}
}

// IsSuccess returns true if the status indicates success.
// NT_STATUS success codes have severity 00 (bits 30-31 are 0).
func (s Status) IsSuccess() bool {
	return (uint32(s) & 0x80000000) == 0
}

// IsError returns true if the status indicates an error.
// NT_STATUS error codes have severity 11 (bits 30-31 are both set).
func (s Status) IsError() bool {
	return (uint32(s) & 0xC0000000) == 0xC0000000
}

// IsWarning returns true if the status indicates a warning.
func (s Status) IsWarning() bool {
	return (uint32(s) & 0xC0000000) == 0x80000000
}

// Severity returns the severity level (0-3) of the status.
func (s Status) Severity() int {
	return int((uint32(s) >> 30) & 0x3)
}

// DOSError is the ErrorClass/ErrorCode pair used by servers that did not
// negotiate NT status codes.
type DOSError struct {
	Class uint8
	Code  uint16
}

// DOS error classes [MS-CIFS] 2.2.2.4.
const (
	DOSClassSuccess uint8 = 0x00
	DOSClassDOS     uint8 = 0x01
	DOSClassServer  uint8 = 0x02
	DOSClassHard    uint8 = 0x03
)

// DOSErrorFromStatus splits the raw header field into class and code.
func DOSErrorFromStatus(s Status) DOSError {
	return DOSError{
		Class: uint8(s & 0xFF),
		Code:  uint16(s >> 16),
	}
}

// IsError reports whether the class denotes a failure.
func (e DOSError) IsError() bool {
	return e.Class != DOSClassSuccess
}

func (e DOSError) String() string {
	if e.Class == DOSClassSuccess {
		return "SUCCESS"
	}
	return fmt.Sprintf("DOS_ERROR(class=0x%02X, code=0x%04X)", e.Class, e.Code)
}
