package logger

import (
	"fmt"
	"log/slog"
)

// Field keys for structured logging. Use them consistently so logs from
// the TRANS2 core, the session transport and the CLI can be queried together.
const (
	KeyTraceID     = "trace_id"
	KeySpanID      = "span_id"
	KeyOperationID = "op_id"

	KeyCommand    = "command"     // SMB1 command or TRANS2 subcommand
	KeyInfoLevel  = "info_level"  // TRANS2 information level
	KeyStatus     = "status"      // NT_STATUS or DOS error
	KeyTreeID     = "tid"         // Tree id
	KeyUserID     = "uid"         // Session user id
	KeyMID        = "mid"         // Multiplex id
	KeyServer     = "server"      // Remote address
	KeyPattern    = "pattern"     // FIND search pattern
	KeyPath       = "path"        // Queried path
	KeySID        = "sid"         // FIND search handle
	KeyResumeKey  = "resume_key"  // FIND resume key
	KeyEntries    = "entries"     // Records decoded
	KeyDeclared   = "declared"    // Records declared by the server
	KeyPage       = "page"        // Page number within an enumeration
	KeyEOS        = "eos"         // End of search
	KeyErrOffset  = "ea_err"      // EA error offset
	KeyRoundTrips = "round_trips" // Request/response exchanges
	KeyFrames     = "frames"      // Physical frames in one transaction
	KeyOffset     = "offset"      // Byte offset inside a buffer
	KeyCount      = "count"       // Byte count
	KeyTotal      = "total"       // Declared transaction total
	KeySize       = "size"

	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyErrorCode  = "error_code"
	KeySource     = "source" // wire, cache
)

func Command(name string) slog.Attr { return slog.String(KeyCommand, name) }

func Pattern(p string) slog.Attr { return slog.String(KeyPattern, p) }

func Path(p string) slog.Attr { return slog.String(KeyPath, p) }

func Entries(n int) slog.Attr { return slog.Int(KeyEntries, n) }

func RoundTrips(n int) slog.Attr { return slog.Int(KeyRoundTrips, n) }

func Page(n int) slog.Attr { return slog.Int(KeyPage, n) }

func EOS(eos bool) slog.Attr { return slog.Bool(KeyEOS, eos) }

func Offset(off int) slog.Attr { return slog.Int(KeyOffset, off) }

func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }

func Total(n int) slog.Attr { return slog.Int(KeyTotal, n) }

// SID formats a search handle as hex, the way packet captures show it.
func SID(sid uint16) slog.Attr { return slog.String(KeySID, fmt.Sprintf("0x%04x", sid)) }

// ResumeKey formats a resume key as hex.
func ResumeKey(k uint32) slog.Attr { return slog.String(KeyResumeKey, fmt.Sprintf("0x%08x", k)) }

// Status carries a rendered NT_STATUS or DOS error.
func Status(s string) slog.Attr { return slog.String(KeyStatus, s) }

// TreeID returns an attribute for the tree id.
func TreeID(tid uint16) slog.Attr { return slog.Int(KeyTreeID, int(tid)) }

// Err returns an attribute for an error; nil errors produce an empty Attr
// which handlers skip.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

func Source(s string) slog.Attr { return slog.String(KeySource, s) }
