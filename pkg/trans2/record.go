package trans2

import (
	"time"

	"github.com/marmos91/dittocifs/internal/smb/types"
)

// TimeEncoding describes how the raw timestamp fields of a FileRecord are
// expressed on the wire.
type TimeEncoding uint8

const (
	// TimeFiletime marks 100ns intervals since 1601-01-01 UTC (NT responses).
	TimeFiletime TimeEncoding = iota

	// TimeUnixSeconds marks seconds since 1970-01-01 UTC, already adjusted by
	// the server time zone (legacy QUERY_INFORMATION).
	TimeUnixSeconds
)

// FileRecord is one remote filesystem entry.
//
// Timestamps are kept verbatim as received. Legacy records carry only
// Written, Attributes, IsDir and Size; AllocSize equals Size for them.
type FileRecord struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Created  uint64 `json:"created" yaml:"created"`
	Accessed uint64 `json:"accessed" yaml:"accessed"`
	Written  uint64 `json:"written" yaml:"written"`
	Changed  uint64 `json:"changed" yaml:"changed"`

	Size      uint64               `json:"size" yaml:"size"`
	AllocSize uint64               `json:"alloc_size" yaml:"alloc_size"`
	Attrs     types.FileAttributes `json:"attributes" yaml:"attributes"`
	IsDir     bool                 `json:"is_dir" yaml:"is_dir"`

	TimeEncoding TimeEncoding `json:"time_encoding" yaml:"time_encoding"`
}

func (r *FileRecord) toTime(v uint64) time.Time {
	if r.TimeEncoding == TimeUnixSeconds {
		return types.UnixSecondsToTime(v)
	}
	return types.FiletimeToTime(v)
}

// CreatedTime returns the creation time, or the zero time if unset.
func (r *FileRecord) CreatedTime() time.Time { return r.toTime(r.Created) }

// AccessedTime returns the last access time, or the zero time if unset.
func (r *FileRecord) AccessedTime() time.Time { return r.toTime(r.Accessed) }

// WrittenTime returns the last write time, or the zero time if unset.
func (r *FileRecord) WrittenTime() time.Time { return r.toTime(r.Written) }

// ChangedTime returns the last change time, or the zero time if unset.
func (r *FileRecord) ChangedTime() time.Time { return r.toTime(r.Changed) }
