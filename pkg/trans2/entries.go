package trans2

import (
	"errors"
	"fmt"

	"github.com/marmos91/dittocifs/internal/smb/smbenc"
	"github.com/marmos91/dittocifs/internal/smb/types"
	"github.com/marmos91/dittocifs/internal/smb/utf16le"
)

// bothDirectoryInfoSize is the fixed part of SMB_FIND_FILE_BOTH_DIRECTORY_INFO
// [MS-CIFS] 2.2.8.1.7, before the variable-length FileName.
//
//	Offset  Size  Field
//	0       4     NextEntryOffset
//	4       4     FileIndex
//	8       8     CreationTime
//	16      8     LastAccessTime
//	24      8     LastWriteTime
//	32      8     LastChangeTime
//	40      8     EndOfFile
//	48      8     AllocationSize
//	56      4     ExtFileAttributes
//	60      4     FileNameLength
//	64      4     EaSize
//	68      1     ShortNameLength
//	69      1     Reserved
//	70      24    ShortName
//	94      var   FileName
const bothDirectoryInfoSize = 94

// ErrCorruptEntry reports why an entry chain walk stopped before the
// declared count. Records decoded before the corrupt entry remain valid.
var ErrCorruptEntry = errors.New("corrupt directory entry")

// DecodeEntries walks a chain of BOTH_DIRECTORY_INFO records in data,
// starting at start. It stops after declared records, when NextEntryOffset
// is zero, or when the chain reaches the end of data, whichever comes first.
// No byte at or past len(data) is ever read.
//
// A record whose fixed part or name does not fit, or whose name decodes to
// nothing, aborts the walk: the records before it are returned together
// with an error wrapping ErrCorruptEntry.
func DecodeEntries(data []byte, start, declared int) ([]FileRecord, error) {
	records := make([]FileRecord, 0, min(max(declared, 0), len(data)/bothDirectoryInfoSize+1))
	pos := start

	for i := 0; i < declared && pos < len(data); i++ {
		rec, next, err := decodeEntry(data, pos)
		if err != nil {
			return records, fmt.Errorf("%w: entry %d at offset %d: %v", ErrCorruptEntry, i, pos, err)
		}
		records = append(records, rec)

		if next == 0 {
			break
		}
		pos += int(next)
	}

	return records, nil
}

// decodeEntry decodes the record at pos and returns its NextEntryOffset.
func decodeEntry(data []byte, pos int) (FileRecord, uint32, error) {
	r := smbenc.NewReader(data)
	r.Seek(pos)
	r.EnsureRemaining(bothDirectoryInfoSize)
	if err := r.Err(); err != nil {
		return FileRecord{}, 0, err
	}

	next := r.ReadUint32()
	r.Skip(4) // FileIndex
	rec := FileRecord{
		Created:  r.ReadUint64(),
		Accessed: r.ReadUint64(),
		Written:  r.ReadUint64(),
		Changed:  r.ReadUint64(),
	}
	rec.Size = r.ReadUint64()
	rec.AllocSize = r.ReadUint64()
	rec.Attrs = types.FileAttributes(r.ReadUint32())
	nameLen := r.ReadUint32()
	r.Skip(4)  // EaSize
	r.Skip(26) // ShortNameLength, Reserved, ShortName

	if nameLen > uint32(r.Remaining()) {
		return FileRecord{}, 0, fmt.Errorf("name length %d exceeds %d remaining bytes", nameLen, r.Remaining())
	}
	nameBytes := r.Window(int(nameLen))
	if err := r.Err(); err != nil {
		return FileRecord{}, 0, err
	}

	name, err := utf16le.Decode(nameBytes)
	if err != nil {
		return FileRecord{}, 0, fmt.Errorf("name: %w", err)
	}
	rec.Name = name
	rec.IsDir = rec.Attrs.IsDirectory()
	rec.TimeEncoding = TimeFiletime

	return rec, next, nil
}
