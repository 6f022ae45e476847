package trans2

import (
	"fmt"
	"strings"
	"time"
)

// ReassemblyMode selects how continuation frames are placed in the
// transaction buffer.
type ReassemblyMode int

const (
	// ReassembleByDisplacement writes each frame's data at its declared
	// DataDisplacement, so out-of-order frames are tolerated.
	ReassembleByDisplacement ReassemblyMode = iota

	// ReassembleSequential appends frames in arrival order and ignores the
	// displacement except for termination.
	ReassembleSequential
)

func (m ReassemblyMode) String() string {
	switch m {
	case ReassembleByDisplacement:
		return "displacement"
	case ReassembleSequential:
		return "sequential"
	default:
		return fmt.Sprintf("ReassemblyMode(%d)", int(m))
	}
}

// ParseReassemblyMode parses "displacement" or "sequential".
func ParseReassemblyMode(s string) (ReassemblyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "displacement":
		return ReassembleByDisplacement, nil
	case "sequential":
		return ReassembleSequential, nil
	default:
		return 0, fmt.Errorf("invalid reassembly mode %q (valid: displacement, sequential)", s)
	}
}

// Defaults for Options.
const (
	DefaultFindFirstCount     = 1366
	DefaultFindNextCount      = 255
	DefaultMaxTransactionSize = 16 << 20
)

// Options tunes a Client. Zero values select the defaults.
type Options struct {
	// FindFirstCount is the SearchCount sent in FIND_FIRST2.
	FindFirstCount uint16

	// FindNextCount is the SearchCount sent in FIND_NEXT2.
	FindNextCount uint16

	// MaxTransactionSize bounds the TotalDataCount a response may declare.
	MaxTransactionSize int

	Reassembly ReassemblyMode

	// Metrics receives client instrumentation. Nil disables it.
	Metrics Metrics
}

func (o Options) withDefaults() Options {
	if o.FindFirstCount == 0 {
		o.FindFirstCount = DefaultFindFirstCount
	}
	if o.FindNextCount == 0 {
		o.FindNextCount = DefaultFindNextCount
	}
	if o.MaxTransactionSize <= 0 {
		o.MaxTransactionSize = DefaultMaxTransactionSize
	}
	return o
}

// Metrics receives TRANS2 client instrumentation.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// ObserveOperation records one client operation (FIND, QUERY_PATH_INFORMATION,
	// QUERY_INFORMATION, FSTAT) and its outcome; code is "" on success.
	ObserveOperation(op string, duration time.Duration, code string)

	// ObserveTransaction records one reassembled response.
	ObserveTransaction(subcommand string, frames int, bytes int)

	// ObservePage records the entries decoded from one FIND page.
	ObservePage(entries int)

	// RecordEnumerationEnd records why an enumeration stopped: "eos",
	// "ea_error" or "stalled".
	RecordEnumerationEnd(reason string)
}

func (c *Client) observeOperation(op string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	code := ""
	if err != nil {
		code = codeOf(err).String()
	}
	c.metrics.ObserveOperation(op, time.Since(start), code)
}

func (c *Client) observeTransaction(subcommand string, frames, bytes int) {
	if c.metrics != nil {
		c.metrics.ObserveTransaction(subcommand, frames, bytes)
	}
}

func (c *Client) observePage(entries int) {
	if c.metrics != nil {
		c.metrics.ObservePage(entries)
	}
}

func (c *Client) recordEnumerationEnd(reason string) {
	if c.metrics != nil {
		c.metrics.RecordEnumerationEnd(reason)
	}
}
