package header

import (
	"encoding/binary"
	"errors"

	"github.com/marmos91/dittocifs/internal/smb/types"
)

// HeaderSize is the fixed size of an SMB1 header.
const HeaderSize = 32

// Parsing errors
var (
	// ErrInvalidProtocolID indicates the message doesn't start with 0xFF 'S' 'M' 'B'.
	ErrInvalidProtocolID = errors.New("invalid SMB1 protocol ID")

	// ErrMessageTooShort indicates the message is shorter than HeaderSize.
	ErrMessageTooShort = errors.New("message too short for SMB1 header")
)

// SMB1Header is a decoded SMB1 message header.
type SMB1Header struct {
	Command          types.Command
	Status           types.Status
	Flags            types.HeaderFlags
	Flags2           types.HeaderFlags2
	PIDHigh          uint16
	SecurityFeatures [8]byte
	TreeID           uint16
	PIDLow           uint16
	UserID           uint16
	MultiplexID      uint16
}

// IsReply reports whether the server reply flag is set.
func (h *SMB1Header) IsReply() bool {
	return h.Flags&types.FlagReply != 0
}

// UsesNTStatus reports whether Status carries an NT_STATUS code rather than
// a DOS error class/code pair.
func (h *SMB1Header) UsesNTStatus() bool {
	return h.Flags2&types.Flags2NTStatus != 0
}

// IsError reports whether the header signals a failed request, interpreting
// Status according to Flags2.
func (h *SMB1Header) IsError() bool {
	if h.UsesNTStatus() {
		return h.Status.IsError()
	}
	return types.DOSErrorFromStatus(h.Status).IsError()
}

// StatusString renders Status in the format selected by Flags2.
func (h *SMB1Header) StatusString() string {
	if h.UsesNTStatus() {
		return h.Status.String()
	}
	return types.DOSErrorFromStatus(h.Status).String()
}

// Parse extracts an SMB1Header from wire format.
//
// The input must be at least HeaderSize bytes and start with the SMB1
// protocol ID. Bytes past the header are ignored.
func Parse(data []byte) (*SMB1Header, error) {
	if len(data) < HeaderSize {
		return nil, ErrMessageTooShort
	}
	if !IsSMB1Message(data) {
		return nil, ErrInvalidProtocolID
	}

	h := &SMB1Header{
		Command:     types.Command(data[4]),
		Status:      types.Status(binary.LittleEndian.Uint32(data[5:9])),
		Flags:       types.HeaderFlags(data[9]),
		Flags2:      types.HeaderFlags2(binary.LittleEndian.Uint16(data[10:12])),
		PIDHigh:     binary.LittleEndian.Uint16(data[12:14]),
		TreeID:      binary.LittleEndian.Uint16(data[24:26]),
		PIDLow:      binary.LittleEndian.Uint16(data[26:28]),
		UserID:      binary.LittleEndian.Uint16(data[28:30]),
		MultiplexID: binary.LittleEndian.Uint16(data[30:32]),
	}
	copy(h.SecurityFeatures[:], data[14:22])

	return h, nil
}

// Encode serializes the header into a new HeaderSize-byte slice.
func (h *SMB1Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], types.SMB1ProtocolID)
	buf[4] = byte(h.Command)
	binary.LittleEndian.PutUint32(buf[5:9], uint32(h.Status))
	buf[9] = byte(h.Flags)
	binary.LittleEndian.PutUint16(buf[10:12], uint16(h.Flags2))
	binary.LittleEndian.PutUint16(buf[12:14], h.PIDHigh)
	copy(buf[14:22], h.SecurityFeatures[:])
	binary.LittleEndian.PutUint16(buf[24:26], h.TreeID)
	binary.LittleEndian.PutUint16(buf[26:28], h.PIDLow)
	binary.LittleEndian.PutUint16(buf[28:30], h.UserID)
	binary.LittleEndian.PutUint16(buf[30:32], h.MultiplexID)
	return buf
}

// IsSMB1Message checks if the data starts with a valid SMB1 protocol ID.
func IsSMB1Message(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return binary.LittleEndian.Uint32(data[0:4]) == types.SMB1ProtocolID
}
