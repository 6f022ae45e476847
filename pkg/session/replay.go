package session

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marmos91/dittocifs/pkg/trans2"
)

// Capture is the on-disk form of a recorded exchange.
//
//	nt_smb: true
//	time_zone: -1h
//	frames:
//	  - comment: FIND_FIRST2 reply
//	    hex: ff534d4232...
type Capture struct {
	NTSMB    bool          `yaml:"nt_smb"`
	TimeZone time.Duration `yaml:"time_zone,omitempty"`
	Frames   []Frame       `yaml:"frames"`
}

// Frame is one response message, header included, as hex. Whitespace in
// Hex is ignored.
type Frame struct {
	Comment string `yaml:"comment,omitempty"`
	Hex     string `yaml:"hex"`
}

// Replay is a trans2.Session answering every Recv with the next recorded
// frame. Sent requests are kept for inspection.
type Replay struct {
	mu       sync.Mutex
	frames   [][]byte
	next     int
	sent     []*trans2.Message
	ntSMB    bool
	timeZone time.Duration
}

var _ trans2.Session = (*Replay)(nil)

// NewReplay decodes the frames of c.
func NewReplay(c *Capture) (*Replay, error) {
	r := &Replay{ntSMB: c.NTSMB, timeZone: c.TimeZone}
	for i, f := range c.Frames {
		raw, err := hex.DecodeString(strings.Join(strings.Fields(f.Hex), ""))
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if _, err := trans2.ParseMessage(raw); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		r.frames = append(r.frames, raw)
	}
	return r, nil
}

// ReadCapture decodes a YAML capture.
func ReadCapture(rd io.Reader) (*Capture, error) {
	var c Capture
	if err := yaml.NewDecoder(rd).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return &c, nil
}

// LoadReplay reads a capture file and returns a Replay over it.
func LoadReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer func() { _ = f.Close() }()

	c, err := ReadCapture(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewReplay(c)
}

// WriteCapture encodes c as YAML.
func WriteCapture(w io.Writer, c *Capture) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	return enc.Close()
}

// Send records msg.
func (r *Replay) Send(ctx context.Context, msg *trans2.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

// Recv returns the next recorded frame, or io.ErrUnexpectedEOF once the
// capture is exhausted.
func (r *Replay) Recv(ctx context.Context) (*trans2.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.frames) {
		return nil, fmt.Errorf("capture exhausted after %d frames: %w", len(r.frames), io.ErrUnexpectedEOF)
	}
	raw := r.frames[r.next]
	r.next++
	return trans2.ParseMessage(append([]byte(nil), raw...))
}

// Sent returns the requests sent so far.
func (r *Replay) Sent() []*trans2.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*trans2.Message(nil), r.sent...)
}

// Remaining reports how many recorded frames have not been served.
func (r *Replay) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames) - r.next
}

// SupportsNTSMB implements trans2.Session.
func (r *Replay) SupportsNTSMB() bool { return r.ntSMB }

// ServerTimeZone implements trans2.Session.
func (r *Replay) ServerTimeZone() time.Duration { return r.timeZone }
