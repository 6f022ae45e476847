package trans2

import (
	"context"
	"fmt"
	"time"

	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/marmos91/dittocifs/internal/smb/smbenc"
	"github.com/marmos91/dittocifs/internal/smb/types"
	"github.com/marmos91/dittocifs/internal/smb/utf16le"
	"github.com/marmos91/dittocifs/internal/telemetry"
)

const (
	opFindFirst2 = "FIND_FIRST2"
	opFindNext2  = "FIND_NEXT2"

	findMaxParamCount = 10
	findMaxDataCount  = 0xFFFF

	// findLeadingPad is the name byte plus alignment between ByteCount and
	// the FIND parameters, which start at offset 68.
	findLeadingPad = 3
	findDataOffset = 88

	findFirstParamsSize = 10
	findNextParamsSize  = 8
)

// buildFindFirst2 builds a FIND_FIRST2 request for an encoded, terminated
// pattern [MS-CIFS] 2.2.6.2.1.
func buildFindFirst2(pattern []byte, count uint16) (*trans2Request, error) {
	w := smbenc.NewWriter(12 + len(pattern))
	w.WriteUint16(types.SearchAttributesDefault)
	w.WriteUint16(count)
	w.WriteUint16(uint16(types.FindCloseAtEOS | types.FindReturnResumeKeys))
	w.WriteUint16(uint16(types.InfoFindFileBothDirectoryInfo))
	w.WriteUint32(0) // SearchStorageType
	w.WriteBytes(pattern)
	return findRequest(types.Trans2FindFirst2, w.Bytes())
}

// buildFindNext2 builds a FIND_NEXT2 request continuing search sid
// [MS-CIFS] 2.2.6.3.1. Servers require the pattern to be resent.
func buildFindNext2(sid uint16, resumeKey uint32, pattern []byte, count uint16) (*trans2Request, error) {
	w := smbenc.NewWriter(12 + len(pattern))
	w.WriteUint16(sid)
	w.WriteUint16(count)
	w.WriteUint16(uint16(types.InfoFindFileBothDirectoryInfo))
	w.WriteUint32(resumeKey)
	w.WriteUint16(uint16(types.FindCloseAtEOS | types.FindContinueFromLast))
	w.WriteBytes(pattern)
	return findRequest(types.Trans2FindNext2, w.Bytes())
}

// findRequest wraps FIND parameters. ByteCount covers the leading pad, the
// parameters and a zero tail; padding the message to four bytes leaves
// ByteCount % 4 == 3.
func findRequest(sub types.Trans2Subcommand, params []byte) (*trans2Request, error) {
	bct := len(params) + findLeadingPad
	pad := 0
	for (bct+pad)%4 != 3 {
		pad++
	}
	if bct+pad > 0xFFFF {
		return nil, fmt.Errorf("pattern too long: byte count %d", bct+pad)
	}
	return &trans2Request{
		subcommand:    sub,
		maxParamCount: findMaxParamCount,
		maxDataCount:  findMaxDataCount,
		paramOffset:   requestBytesOffset + findLeadingPad,
		dataOffset:    findDataOffset,
		leadingPad:    findLeadingPad,
		params:        params,
	}, nil
}

// findPage is the parameter block of a FIND_FIRST2 or FIND_NEXT2 response.
type findPage struct {
	sid            uint16
	count          uint16
	eos            bool
	eaErrorOffset  uint16
	lastNameOffset uint16
}

func parseFindFirstParams(p []byte) (findPage, error) {
	if len(p) < findFirstParamsSize {
		return findPage{}, fmt.Errorf("FIND_FIRST2 parameters: %d bytes, need %d", len(p), findFirstParamsSize)
	}
	r := smbenc.NewReader(p)
	return findPage{
		sid:            r.ReadUint16(),
		count:          r.ReadUint16(),
		eos:            r.ReadUint16() != 0,
		eaErrorOffset:  r.ReadUint16(),
		lastNameOffset: r.ReadUint16(),
	}, nil
}

func parseFindNextParams(p []byte) (findPage, error) {
	if len(p) < findNextParamsSize {
		return findPage{}, fmt.Errorf("FIND_NEXT2 parameters: %d bytes, need %d", len(p), findNextParamsSize)
	}
	r := smbenc.NewReader(p)
	return findPage{
		count:          r.ReadUint16(),
		eos:            r.ReadUint16() != 0,
		eaErrorOffset:  r.ReadUint16(),
		lastNameOffset: r.ReadUint16(),
	}, nil
}

// enumerationState threads the server cursor between pages.
type enumerationState struct {
	sid         uint16
	resumeKey   uint32
	endOfSearch bool
	errorOffset uint16
	pages       int
	roundTrips  int
}

func (s *enumerationState) update(p findPage) {
	s.resumeKey = uint32(p.lastNameOffset)
	s.endOfSearch = p.eos
	s.errorOffset = p.eaErrorOffset
	s.pages++
	s.roundTrips++
}

// Find enumerates the directory entries matching pattern (for example
// `\docs\*`) and returns them in server order.
//
// FIND_FIRST2 opens the search; FIND_NEXT2 pages follow while the server
// reports neither end of search nor an EA error offset. Any transport,
// status or parameter-block failure discards the partial listing. A page
// whose entry chain is corrupt keeps the entries before the corruption.
func (c *Client) Find(ctx context.Context, pattern string) (records []FileRecord, err error) {
	start := time.Now()
	ctx, end := c.startOperation(ctx, telemetry.SpanFind, "FIND", pattern)
	defer end()
	defer func() { c.observeOperation("FIND", start, err) }()

	records, err = c.find(ctx, pattern)
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	return records, nil
}

func (c *Client) find(ctx context.Context, pattern string) ([]FileRecord, error) {
	encoded, err := utf16le.EncodeTerminated(pattern)
	if err != nil {
		return nil, newTextDecodeError(opFindFirst2, pattern, err)
	}

	req, err := buildFindFirst2(encoded, c.opts.FindFirstCount)
	if err != nil {
		return nil, newTextDecodeError(opFindFirst2, pattern, err)
	}
	tx, err := c.roundTripTrans2(ctx, req, opFindFirst2, pattern)
	if err != nil {
		return nil, err
	}

	first, err := parseFindFirstParams(tx.params)
	if err != nil {
		return nil, newError(ErrMalformed, opFindFirst2, pattern, err)
	}

	state := &enumerationState{sid: first.sid}
	state.update(first)
	records := c.decodePage(ctx, tx, first, state, make([]FileRecord, 0))

	for !state.endOfSearch && state.errorOffset == 0 {
		req, err := buildFindNext2(state.sid, state.resumeKey, encoded, c.opts.FindNextCount)
		if err != nil {
			return nil, newTextDecodeError(opFindNext2, pattern, err)
		}
		tx, err := c.roundTripTrans2(ctx, req, opFindNext2, pattern)
		if err != nil {
			return nil, err
		}

		page, err := parseFindNextParams(tx.params)
		if err != nil {
			return nil, newError(ErrMalformed, opFindNext2, pattern, err)
		}

		previousKey := state.resumeKey
		before := len(records)
		state.update(page)
		records = c.decodePage(ctx, tx, page, state, records)

		// A page that adds nothing and does not move the cursor would repeat
		// forever against a server that never sets end of search.
		if len(records) == before && state.resumeKey == previousKey && !state.endOfSearch {
			logger.WarnCtx(ctx, "FIND_NEXT2 made no progress, ending enumeration",
				logger.Pattern(pattern),
				logger.SID(state.sid),
				logger.ResumeKey(state.resumeKey),
				logger.Page(state.pages))
			c.recordEnumerationEnd("stalled")
			return records, nil
		}
	}

	reason := "eos"
	if !state.endOfSearch {
		reason = "ea_error"
		logger.InfoCtx(ctx, "enumeration ended by server EA error offset",
			logger.Pattern(pattern),
			logger.KeyErrOffset, state.errorOffset)
	}
	c.recordEnumerationEnd(reason)

	logger.DebugCtx(ctx, "enumeration complete",
		logger.Pattern(pattern),
		logger.Entries(len(records)),
		logger.RoundTrips(state.roundTrips))
	return records, nil
}

// roundTripTrans2 sends one TRANS2 request and reassembles its response.
func (c *Client) roundTripTrans2(ctx context.Context, req *trans2Request, op, path string) (*transaction, error) {
	if err := c.sendTrans2(ctx, req, op, path); err != nil {
		return nil, err
	}
	return c.receiveTransaction(ctx, op, path)
}

// decodePage appends the entries of one page to records.
func (c *Client) decodePage(ctx context.Context, tx *transaction, page findPage, state *enumerationState, records []FileRecord) []FileRecord {
	entries, err := DecodeEntries(tx.data, 0, int(page.count))
	if err != nil {
		logger.WarnCtx(ctx, "directory entry chain truncated",
			logger.SID(state.sid),
			logger.Page(state.pages),
			logger.KeyDeclared, int(page.count),
			logger.Entries(len(entries)),
			logger.Err(err))
	}

	telemetry.AddEvent(ctx, telemetry.EventPage,
		telemetry.Page(state.pages),
		telemetry.Entries(len(entries)),
		telemetry.EOS(state.endOfSearch),
		telemetry.SearchID(state.sid))
	c.observePage(len(entries))

	logger.DebugCtx(ctx, "find page",
		logger.SID(state.sid),
		logger.Page(state.pages),
		logger.KeyDeclared, int(page.count),
		logger.Entries(len(entries)),
		logger.EOS(state.endOfSearch))

	return append(records, entries...)
}
