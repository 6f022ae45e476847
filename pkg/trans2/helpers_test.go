package trans2

import (
	"context"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/marmos91/dittocifs/internal/smb/header"
	"github.com/marmos91/dittocifs/internal/smb/types"
	"github.com/marmos91/dittocifs/internal/smb/utf16le"
)

// fakeSession replays scripted frames and records every request.
type fakeSession struct {
	mu       sync.Mutex
	sent     []*Message
	replies  []reply
	nt       bool
	timeZone time.Duration
	sendErr  error
}

type reply struct {
	msg *Message
	err error
}

var errNoReply = errors.New("no scripted reply")

func newFakeSession(replies ...*Message) *fakeSession {
	s := &fakeSession{nt: true}
	for _, r := range replies {
		s.replies = append(s.replies, reply{msg: r})
	}
	return s
}

func (s *fakeSession) push(msg *Message) { s.replies = append(s.replies, reply{msg: msg}) }

func (s *fakeSession) pushErr(err error) { s.replies = append(s.replies, reply{err: err}) }

func (s *fakeSession) Send(_ context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *fakeSession) Recv(_ context.Context) (*Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		return nil, errNoReply
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.msg, r.err
}

func (s *fakeSession) SupportsNTSMB() bool { return s.nt }

func (s *fakeSession) ServerTimeZone() time.Duration { return s.timeZone }

func (s *fakeSession) requests() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Message(nil), s.sent...)
}

func replyHeader(cmd types.Command, status types.Status) *header.SMB1Header {
	return &header.SMB1Header{
		Command: cmd,
		Status:  status,
		Flags:   types.FlagReply,
		Flags2:  types.Flags2NTStatus | types.Flags2Unicode,
	}
}

// responseBytesStart is the body offset of the byte block of a TRANS2
// response without setup words.
const responseBytesStart = 23

// frame describes one TRANS2 response frame.
type frame struct {
	totalParams int
	totalData   int
	params      []byte
	paramDisp   int
	data        []byte
	dataDisp    int
}

// trans2Frame encodes f with the parameters at the start of the byte block
// and the data immediately after.
func trans2Frame(f frame) *Message {
	paramStart := responseBytesStart
	dataStart := paramStart + len(f.params)

	body := make([]byte, dataStart+len(f.data))
	body[0] = 10
	le := binary.LittleEndian
	le.PutUint16(body[1:], uint16(f.totalParams))
	le.PutUint16(body[3:], uint16(f.totalData))
	le.PutUint16(body[7:], uint16(len(f.params)))
	if len(f.params) > 0 {
		le.PutUint16(body[9:], uint16(paramStart+header.HeaderSize))
	}
	le.PutUint16(body[11:], uint16(f.paramDisp))
	le.PutUint16(body[13:], uint16(len(f.data)))
	if len(f.data) > 0 {
		le.PutUint16(body[15:], uint16(dataStart+header.HeaderSize))
	}
	le.PutUint16(body[17:], uint16(f.dataDisp))
	le.PutUint16(body[21:], uint16(len(body)-responseBytesStart))
	copy(body[paramStart:], f.params)
	copy(body[dataStart:], f.data)

	return &Message{Header: replyHeader(types.CommandTransaction2, types.StatusSuccess), Body: body}
}

// singleFrame is a complete one-frame transaction.
func singleFrame(params, data []byte) *Message {
	return trans2Frame(frame{
		totalParams: len(params),
		totalData:   len(data),
		params:      params,
		data:        data,
	})
}

func errorReply(cmd types.Command, status types.Status) *Message {
	return &Message{Header: replyHeader(cmd, status), Body: []byte{0, 0, 0}}
}

func findFirstParams(sid, count uint16, eos bool, eaErr, lastName uint16) []byte {
	p := make([]byte, 10)
	binary.LittleEndian.PutUint16(p[0:], sid)
	binary.LittleEndian.PutUint16(p[2:], count)
	if eos {
		binary.LittleEndian.PutUint16(p[4:], 1)
	}
	binary.LittleEndian.PutUint16(p[6:], eaErr)
	binary.LittleEndian.PutUint16(p[8:], lastName)
	return p
}

func findNextParams(count uint16, eos bool, eaErr, lastName uint16) []byte {
	return findFirstParams(0, count, eos, eaErr, lastName)[2:]
}

// testEntry describes one BOTH_DIRECTORY_INFO record.
type testEntry struct {
	name    string
	attrs   types.FileAttributes
	size    uint64
	written uint64
}

// encodeEntries builds a NextEntryOffset chain; the last record has a zero
// offset.
func encodeEntries(entries ...testEntry) []byte {
	var out []byte
	for i, e := range entries {
		name, _ := utf16le.Encode(e.name)
		rec := make([]byte, bothDirectoryInfoSize+len(name))
		le := binary.LittleEndian
		if i < len(entries)-1 {
			le.PutUint32(rec[0:], uint32(len(rec)))
		}
		le.PutUint64(rec[8:], e.written)
		le.PutUint64(rec[16:], e.written)
		le.PutUint64(rec[24:], e.written)
		le.PutUint64(rec[32:], e.written)
		le.PutUint64(rec[40:], e.size)
		le.PutUint64(rec[48:], e.size)
		le.PutUint32(rec[56:], uint32(e.attrs))
		le.PutUint32(rec[60:], uint32(len(name)))
		copy(rec[bothDirectoryInfoSize:], name)
		out = append(out, rec...)
	}
	return out
}

func names(records []FileRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

// recordingMetrics captures Metrics calls.
type recordingMetrics struct {
	mu           sync.Mutex
	operations   map[string]string
	transactions []int
	pages        []int
	endReasons   []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{operations: make(map[string]string)}
}

func (m *recordingMetrics) ObserveOperation(op string, _ time.Duration, code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[op] = code
}

func (m *recordingMetrics) ObserveTransaction(_ string, frames int, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, frames)
}

func (m *recordingMetrics) ObservePage(entries int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages = append(m.pages, entries)
}

func (m *recordingMetrics) RecordEnumerationEnd(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endReasons = append(m.endReasons, reason)
}
