package trans2

import (
	"fmt"

	"github.com/marmos91/dittocifs/internal/smb/header"
	"github.com/marmos91/dittocifs/internal/smb/smbenc"
	"github.com/marmos91/dittocifs/internal/smb/types"
)

// Request layout (word count 15) [MS-CIFS] 2.2.4.46.1:
//
//	Offset  Field (relative to the SMB header)
//	32      WordCount = 15
//	33      TotalParameterCount, TotalDataCount, MaxParameterCount, MaxDataCount
//	41      MaxSetupCount, Reserved, Flags, Timeout, Reserved2
//	51      ParameterCount, ParameterOffset, DataCount, DataOffset
//	59      SetupCount, Reserved3, Setup[0] (subcommand)
//	63      ByteCount
//	65      Bytes
const (
	requestWordCount = 15

	// requestBytesOffset is where the byte block of a one-setup-word TRANS2
	// request starts, relative to the SMB header.
	requestBytesOffset = header.HeaderSize + 1 + requestWordCount*2 + 2
)

// trans2Request describes one single-frame TRANS2 request.
type trans2Request struct {
	subcommand    types.Trans2Subcommand
	maxParamCount uint16
	maxDataCount  uint16
	paramOffset   uint16
	dataOffset    uint16
	leadingPad    int // bytes between ByteCount and the parameters
	params        []byte
}

// encode builds the request body (everything after the SMB header). The
// message is zero-padded to a four-byte boundary and ByteCount is patched
// in once the byte block is complete.
func (r *trans2Request) encode() ([]byte, error) {
	w := smbenc.NewWriter(64 + len(r.params))

	w.WriteUint8(requestWordCount)
	w.WriteUint16(uint16(len(r.params))) // TotalParameterCount
	w.WriteUint16(0)                     // TotalDataCount
	w.WriteUint16(r.maxParamCount)
	w.WriteUint16(r.maxDataCount)
	w.WriteUint8(0)  // MaxSetupCount
	w.WriteUint8(0)  // Reserved
	w.WriteUint16(0) // Flags
	w.WriteUint32(0) // Timeout
	w.WriteUint16(0) // Reserved2
	w.WriteUint16(uint16(len(r.params)))
	w.WriteUint16(r.paramOffset)
	w.WriteUint16(0) // DataCount
	w.WriteUint16(r.dataOffset)
	w.WriteUint8(1) // SetupCount
	w.WriteUint8(0) // Reserved3
	w.WriteUint16(uint16(r.subcommand))
	byteCountAt := w.Len()
	w.WriteUint16(0) // ByteCount
	w.WriteZeros(r.leadingPad)
	w.WriteBytes(r.params)
	// The body follows a 32-byte header, so aligning it aligns the message.
	w.Pad(4)
	w.PutUint16At(byteCountAt, uint16(w.Len()-byteCountAt-2))

	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// response is the decoded fixed part of one TRANS2 response frame
// [MS-CIFS] 2.2.4.46.2. Params and Data alias the frame body.
type response struct {
	TotalParamCount   uint16
	TotalDataCount    uint16
	ParamCount        uint16
	ParamOffset       uint16
	ParamDisplacement uint16
	DataCount         uint16
	DataOffset        uint16
	DataDisplacement  uint16
	Setup             []uint16

	// bytesStart is the body offset of the byte block.
	bytesStart int

	Params []byte
	Data   []byte
}

// parseResponse decodes a TRANS2 response body. A zero word count (an
// error-only reply) is malformed here; status checking happens earlier.
func parseResponse(body []byte) (*response, error) {
	r := smbenc.NewReader(body)

	wct := r.ReadUint8()
	if r.Err() == nil && wct < 10 {
		return nil, fmt.Errorf("word count %d, need at least 10", wct)
	}

	resp := &response{}
	resp.TotalParamCount = r.ReadUint16()
	resp.TotalDataCount = r.ReadUint16()
	r.Skip(2) // Reserved
	resp.ParamCount = r.ReadUint16()
	resp.ParamOffset = r.ReadUint16()
	resp.ParamDisplacement = r.ReadUint16()
	resp.DataCount = r.ReadUint16()
	resp.DataOffset = r.ReadUint16()
	resp.DataDisplacement = r.ReadUint16()
	setupCount := int(r.ReadUint8())
	r.Skip(1) // Reserved
	for range setupCount {
		resp.Setup = append(resp.Setup, r.ReadUint16())
	}
	r.Skip(2) // ByteCount
	resp.bytesStart = r.Position()
	if err := r.Err(); err != nil {
		return nil, err
	}

	var err error
	if resp.Params, err = window(body, resp.ParamOffset, resp.ParamCount); err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	if resp.Data, err = window(body, resp.DataOffset, resp.DataCount); err != nil {
		return nil, fmt.Errorf("data: %w", err)
	}
	return resp, nil
}

// window returns count bytes at a header-relative offset of body. A zero
// offset means the server did not place the block.
func window(body []byte, offset, count uint16) ([]byte, error) {
	if count == 0 || offset == 0 {
		return nil, nil
	}
	start := int(offset) - header.HeaderSize
	if start < 0 {
		return nil, fmt.Errorf("offset %d inside SMB header", offset)
	}
	r := smbenc.NewReader(body)
	r.Seek(start)
	b := r.Window(int(count))
	if err := r.Err(); err != nil {
		return nil, err
	}
	return b, nil
}
