package types

import "fmt"

// SMB1ProtocolID is the protocol magic 0xFF 'S' 'M' 'B' read as a little-endian uint32.
const SMB1ProtocolID uint32 = 0x424D53FF

// Command is an SMB1 command code [MS-CIFS] 2.2.2.1.
type Command uint8

const (
	// CommandQueryInformation is SMB_COM_QUERY_INFORMATION, the pre-NT
	// single round trip metadata query.
	CommandQueryInformation Command = 0x08

	// CommandTransaction2 is SMB_COM_TRANSACTION2.
	CommandTransaction2 Command = 0x32

	// CommandTransaction2Secondary carries continuation request frames.
	CommandTransaction2Secondary Command = 0x33
)

// String returns the [MS-CIFS] name of the command.
func (c Command) String() string {
	switch c {
	case CommandQueryInformation:
		return "QUERY_INFORMATION"
	case CommandTransaction2:
		return "TRANSACTION2"
	case CommandTransaction2Secondary:
		return "TRANSACTION2_SECONDARY"
	default:
		return fmt.Sprintf("COMMAND_0x%02X", uint8(c))
	}
}

// Trans2Subcommand selects the TRANS2 operation carried in Setup[0] [MS-CIFS] 2.2.6.
type Trans2Subcommand uint16

const (
	Trans2FindFirst2           Trans2Subcommand = 0x0001
	Trans2FindNext2            Trans2Subcommand = 0x0002
	Trans2QueryPathInformation Trans2Subcommand = 0x0005
)

// String returns the [MS-CIFS] name of the subcommand.
func (s Trans2Subcommand) String() string {
	switch s {
	case Trans2FindFirst2:
		return "FIND_FIRST2"
	case Trans2FindNext2:
		return "FIND_NEXT2"
	case Trans2QueryPathInformation:
		return "QUERY_PATH_INFORMATION"
	default:
		return fmt.Sprintf("TRANS2_0x%04X", uint16(s))
	}
}

// HeaderFlags is the 8-bit Flags field of the SMB1 header.
type HeaderFlags uint8

const (
	FlagCaseInsensitive HeaderFlags = 0x08
	FlagCanonicalPaths  HeaderFlags = 0x10
	FlagReply           HeaderFlags = 0x80
)

// HeaderFlags2 is the 16-bit Flags2 field of the SMB1 header.
type HeaderFlags2 uint16

const (
	Flags2LongNames     HeaderFlags2 = 0x0001
	Flags2ExtendedAttrs HeaderFlags2 = 0x0002
	Flags2LongNamesUsed HeaderFlags2 = 0x0040
	Flags2ExtendedSec   HeaderFlags2 = 0x0800
	Flags2NTStatus      HeaderFlags2 = 0x4000
	Flags2Unicode       HeaderFlags2 = 0x8000
)

// FindFlags controls FIND_FIRST2/FIND_NEXT2 behaviour [MS-CIFS] 2.2.6.2.1.
type FindFlags uint16

const (
	FindCloseAfterRequest FindFlags = 0x0001
	FindCloseAtEOS        FindFlags = 0x0002
	FindReturnResumeKeys  FindFlags = 0x0004
	FindContinueFromLast  FindFlags = 0x0008
	FindWithBackupIntent  FindFlags = 0x0010
)

// InfoLevel selects the information structure returned by a TRANS2 query.
type InfoLevel uint16

const (
	// InfoFindFileBothDirectoryInfo is SMB_FIND_FILE_BOTH_DIRECTORY_INFO:
	// long and 8.3 names plus timestamps, sizes and attributes.
	InfoFindFileBothDirectoryInfo InfoLevel = 0x0104

	// InfoQueryFileBasicInfo is SMB_QUERY_FILE_BASIC_INFO.
	InfoQueryFileBasicInfo InfoLevel = 0x0101

	// InfoQueryFileStandardInfo is SMB_QUERY_FILE_STANDARD_INFO.
	InfoQueryFileStandardInfo InfoLevel = 0x0102
)

// String returns the [MS-CIFS] name of the information level.
func (l InfoLevel) String() string {
	switch l {
	case InfoFindFileBothDirectoryInfo:
		return "SMB_FIND_FILE_BOTH_DIRECTORY_INFO"
	case InfoQueryFileBasicInfo:
		return "SMB_QUERY_FILE_BASIC_INFO"
	case InfoQueryFileStandardInfo:
		return "SMB_QUERY_FILE_STANDARD_INFO"
	default:
		return fmt.Sprintf("INFO_LEVEL_0x%04X", uint16(l))
	}
}

// BufferFormatASCII tags a string in SMB_COM_QUERY_INFORMATION's data block.
// The value is 4 regardless of whether the string itself is Unicode.
const BufferFormatASCII uint8 = 0x04
