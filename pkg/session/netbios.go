package session

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/marmos91/dittocifs/internal/bufpool"
)

// NetBIOS session service message types [RFC 1002] 4.3.1.
const (
	nbSessionMessage   = 0x00
	nbSessionKeepAlive = 0x85

	nbHeaderSize = 4

	// nbMaxLength is the largest length a 3-byte NetBIOS length can carry.
	nbMaxLength = 1<<24 - 1
)

// readFrame reads one NetBIOS session message from conn, skipping
// keepalives. The returned payload is freshly allocated and owned by the
// caller.
func readFrame(ctx context.Context, conn net.Conn, maxSize int, minSize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hdr [nbHeaderSize]byte
	var msgLen int
	for {
		if _, err := io.ReadFull(conn, hdr[:]); err != nil {
			return nil, err
		}

		switch hdr[0] {
		case nbSessionMessage:
			msgLen = int(hdr[1])<<16 | int(hdr[2])<<8 | int(hdr[3])
		case nbSessionKeepAlive:
			continue
		default:
			return nil, fmt.Errorf("unsupported NetBIOS message type: 0x%02x", hdr[0])
		}
		break
	}

	if msgLen > maxSize {
		return nil, fmt.Errorf("SMB message too large: %d bytes (max %d)", msgLen, maxSize)
	}
	if msgLen < minSize {
		return nil, fmt.Errorf("SMB message too small: %d bytes (need %d)", msgLen, minSize)
	}

	message := make([]byte, msgLen)
	if _, err := io.ReadFull(conn, message); err != nil {
		return nil, fmt.Errorf("read SMB message: %w", err)
	}
	return message, nil
}

// writeFrame wraps payload in a NetBIOS session header and writes it in a
// single call. The caller serializes writes.
func writeFrame(conn net.Conn, payload []byte) error {
	msgLen := len(payload)
	if msgLen > nbMaxLength {
		return fmt.Errorf("SMB message too large for NetBIOS framing: %d bytes", msgLen)
	}

	frame := bufpool.Get(nbHeaderSize + msgLen)
	defer bufpool.Put(frame)

	frame[0] = nbSessionMessage
	frame[1] = byte(msgLen >> 16)
	frame[2] = byte(msgLen >> 8)
	frame[3] = byte(msgLen)
	copy(frame[nbHeaderSize:], payload)

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("write SMB message: %w", err)
	}
	return nil
}

// deadlineFor picks the earlier of the context deadline and now+timeout.
// A zero result means no deadline.
func deadlineFor(ctx context.Context, timeout time.Duration) time.Time {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	return deadline
}
