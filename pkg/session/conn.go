package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/marmos91/dittocifs/internal/smb/header"
	"github.com/marmos91/dittocifs/pkg/trans2"
)

// DefaultMaxMessageSize bounds incoming frames when Config leaves it unset.
const DefaultMaxMessageSize = 128 << 10

// ErrClosed is returned by operations on a closed Conn.
var ErrClosed = errors.New("session closed")

// Config carries the state negotiated before a Conn takes over.
type Config struct {
	// UserID is the UID returned by SESSION_SETUP_ANDX.
	UserID uint16

	// ProcessID is split into PIDLow/PIDHigh on every request. Zero uses
	// the local process id.
	ProcessID uint32

	// NTSMB reports whether the server advertised the NT SMBs capability.
	NTSMB bool

	// TimeZone is the offset added to server-local UTIME values.
	TimeZone time.Duration

	// MaxMessageSize bounds the NetBIOS length of incoming frames.
	MaxMessageSize int

	// ReadTimeout and WriteTimeout apply per frame; zero disables them.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Conn is a trans2.Session over an SMB1 connection with NetBIOS session
// framing. Send and Recv may be called from different goroutines, but one
// transaction must complete before the next begins.
type Conn struct {
	conn net.Conn
	cfg  Config

	writeMu sync.Mutex
	readMu  sync.Mutex

	mu     sync.Mutex
	mid    uint16
	closed bool
}

var _ trans2.Session = (*Conn)(nil)

// NewConn wraps conn. The connection must already be negotiated and
// authenticated.
func NewConn(conn net.Conn, cfg Config) *Conn {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = DefaultMaxMessageSize
	}
	if cfg.ProcessID == 0 {
		cfg.ProcessID = uint32(os.Getpid())
	}
	return &Conn{conn: conn, cfg: cfg}
}

// nextMID returns a multiplex id, skipping 0xFFFF which servers reserve
// for oplock breaks.
func (c *Conn) nextMID() (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	c.mid++
	if c.mid == 0xFFFF {
		c.mid = 1
	}
	return c.mid, nil
}

// Send stamps the session ids on msg and writes it.
func (c *Conn) Send(ctx context.Context, msg *trans2.Message) error {
	mid, err := c.nextMID()
	if err != nil {
		return err
	}
	msg.Header.UserID = c.cfg.UserID
	msg.Header.MultiplexID = mid
	msg.Header.PIDLow = uint16(c.cfg.ProcessID)
	msg.Header.PIDHigh = uint16(c.cfg.ProcessID >> 16)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(deadlineFor(ctx, c.cfg.WriteTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetWriteDeadline(time.Unix(1, 0)) })
	defer stop()

	if err := writeFrame(c.conn, msg.Bytes()); err != nil {
		return c.ctxErr(ctx, err)
	}

	logger.DebugCtx(ctx, "SMB1 request",
		logger.Command(msg.Header.Command.String()),
		logger.KeyMID, mid,
		logger.TreeID(msg.Header.TreeID),
		logger.KeySize, len(msg.Body)+header.HeaderSize)
	return nil
}

// Recv reads the next response frame.
func (c *Conn) Recv(ctx context.Context) (*trans2.Message, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	c.readMu.Lock()
	defer c.readMu.Unlock()

	if err := c.conn.SetReadDeadline(deadlineFor(ctx, c.cfg.ReadTimeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = c.conn.SetReadDeadline(time.Unix(1, 0)) })
	defer stop()

	raw, err := readFrame(ctx, c.conn, c.cfg.MaxMessageSize, header.HeaderSize)
	if err != nil {
		return nil, c.ctxErr(ctx, err)
	}
	msg, err := trans2.ParseMessage(raw)
	if err != nil {
		return nil, fmt.Errorf("parse SMB1 header: %w", err)
	}
	if !msg.Header.IsReply() {
		return nil, fmt.Errorf("received SMB1 %s without the reply flag", msg.Header.Command)
	}

	logger.DebugCtx(ctx, "SMB1 response",
		logger.Command(msg.Header.Command.String()),
		logger.KeyMID, msg.Header.MultiplexID,
		logger.Status(msg.Header.StatusString()),
		logger.KeySize, len(raw))
	return msg, nil
}

// ctxErr prefers the context's error when cancellation caused err.
func (c *Conn) ctxErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %v", ctxErr, err)
	}
	return err
}

// SupportsNTSMB implements trans2.Session.
func (c *Conn) SupportsNTSMB() bool { return c.cfg.NTSMB }

// ServerTimeZone implements trans2.Session.
func (c *Conn) ServerTimeZone() time.Duration { return c.cfg.TimeZone }

// Close closes the underlying connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}
