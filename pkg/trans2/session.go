package trans2

import (
	"context"
	"time"

	"github.com/marmos91/dittocifs/internal/smb/header"
)

// Message is one SMB1 message: the header and everything after it.
// Offsets carried inside TRANS2 responses are relative to the start of the
// header, i.e. body offset = wire offset - header.HeaderSize.
type Message struct {
	Header *header.SMB1Header
	Body   []byte
}

// Bytes serializes the message.
func (m *Message) Bytes() []byte {
	out := make([]byte, 0, header.HeaderSize+len(m.Body))
	out = append(out, m.Header.Encode()...)
	return append(out, m.Body...)
}

// ParseMessage splits a raw SMB1 message into header and body. The body
// aliases raw.
func ParseMessage(raw []byte) (*Message, error) {
	h, err := header.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &Message{Header: h, Body: raw[header.HeaderSize:]}, nil
}

// Session is the transport collaborator used by Client.
//
// Send transmits one request; the session fills in UserID, MultiplexID and
// process id. Recv returns the next response frame. Both honour ctx
// cancellation. A Session serializes nothing itself: callers must not issue
// concurrent operations on one Session.
type Session interface {
	Send(ctx context.Context, msg *Message) error
	Recv(ctx context.Context) (*Message, error)

	// SupportsNTSMB reports whether the NT feature set was negotiated.
	SupportsNTSMB() bool

	// ServerTimeZone is the offset to add to server-local UTIME values to
	// obtain UTC.
	ServerTimeZone() time.Duration
}
