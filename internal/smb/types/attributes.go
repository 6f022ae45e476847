package types

import "strings"

// FileAttributes is the SMB extended file attribute bitmask [MS-FSCC] 2.6.
// The legacy QUERY_INFORMATION response carries the low 16 bits only.
type FileAttributes uint32

const (
	FileAttributeReadonly  FileAttributes = 0x00000001
	FileAttributeHidden    FileAttributes = 0x00000002
	FileAttributeSystem    FileAttributes = 0x00000004
	FileAttributeVolume    FileAttributes = 0x00000008
	FileAttributeDirectory FileAttributes = 0x00000010
	FileAttributeArchive   FileAttributes = 0x00000020
	FileAttributeNormal    FileAttributes = 0x00000080
)

// SearchAttributesDefault is the FIND_FIRST2 search attribute mask: include
// hidden, system and directory entries in addition to normal files.
const SearchAttributesDefault = uint16(FileAttributeHidden | FileAttributeSystem | FileAttributeDirectory)

// IsDirectory reports whether the directory bit is set.
func (a FileAttributes) IsDirectory() bool {
	return a&FileAttributeDirectory != 0
}

// String renders the attribute set in the DOS "RHSVDA" style, with '-' for
// cleared bits.
func (a FileAttributes) String() string {
	var b strings.Builder
	for _, f := range []struct {
		bit FileAttributes
		c   byte
	}{
		{FileAttributeReadonly, 'R'},
		{FileAttributeHidden, 'H'},
		{FileAttributeSystem, 'S'},
		{FileAttributeVolume, 'V'},
		{FileAttributeDirectory, 'D'},
		{FileAttributeArchive, 'A'},
	} {
		if a&f.bit != 0 {
			b.WriteByte(f.c)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}
