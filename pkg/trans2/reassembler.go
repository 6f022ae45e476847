package trans2

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/marmos91/dittocifs/internal/telemetry"
)

// errTooLarge marks a declared total above Options.MaxTransactionSize.
var errTooLarge = errors.New("transaction too large")

// transaction is one reassembled TRANS2 response.
type transaction struct {
	// first is the first frame; non-transaction fields (setup words, the
	// byte block) are read from it.
	first  *response
	body   []byte
	params []byte
	data   []byte
	frames int
}

// reassembler accumulates the frames of one logical transaction.
//
// Invariant: received + the contribution of any frame never exceeds the
// total declared by the first frame, and in displacement mode no byte is
// written twice. Reassembly completes exactly when received reaches total,
// so every byte of the result came from the wire.
type reassembler struct {
	mode    ReassemblyMode
	maxSize int

	totalParams int
	totalData   int
	params      []byte
	data        []byte
	gotParams   int
	gotData     int
	paramCov    coverage
	dataCov     coverage
	frames      int
	first       *response
	firstBody   []byte
}

func newReassembler(mode ReassemblyMode, maxSize int) *reassembler {
	return &reassembler{mode: mode, maxSize: maxSize}
}

// add places one frame and reports whether the transaction is complete.
func (ra *reassembler) add(resp *response) (done bool, err error) {
	if len(resp.Params) != int(resp.ParamCount) || len(resp.Data) != int(resp.DataCount) {
		return false, errors.New("segment count without offset")
	}
	if ra.frames == 0 {
		if int(resp.TotalDataCount) > ra.maxSize {
			return false, fmt.Errorf("%w: declared total %d exceeds limit %d",
				errTooLarge, resp.TotalDataCount, ra.maxSize)
		}
		ra.first = resp
		ra.totalParams = int(resp.TotalParamCount)
		ra.totalData = int(resp.TotalDataCount)
		ra.params = make([]byte, ra.totalParams)
		ra.data = make([]byte, ra.totalData)
	}
	ra.frames++

	var dataEnd int
	ra.gotParams, _, err = ra.place(ra.params, &ra.paramCov, ra.gotParams, resp.Params, int(resp.ParamDisplacement), "parameter")
	if err != nil {
		return false, err
	}
	ra.gotData, dataEnd, err = ra.place(ra.data, &ra.dataCov, ra.gotData, resp.Data, int(resp.DataDisplacement), "data")
	if err != nil {
		return false, err
	}

	if ra.mode == ReassembleSequential {
		// Terminate on the frame's own displacement and count, the way
		// in-order servers describe progress.
		return ra.gotParams >= ra.totalParams && dataEnd >= ra.totalData, nil
	}
	return ra.gotParams == ra.totalParams && ra.gotData == ra.totalData, nil
}

// place copies one segment into buf and returns the new received count and
// the end of the segment as declared by the frame.
func (ra *reassembler) place(buf []byte, cov *coverage, received int, seg []byte, disp int, what string) (int, int, error) {
	declaredEnd := disp + len(seg)
	if len(seg) == 0 {
		return received, declaredEnd, nil
	}

	at := disp
	if ra.mode == ReassembleSequential {
		at = received
	}
	if at+len(seg) > len(buf) || received+len(seg) > len(buf) {
		return received, declaredEnd, fmt.Errorf("%s segment [%d,+%d) overruns total %d (received %d)",
			what, at, len(seg), len(buf), received)
	}
	if ra.mode != ReassembleSequential && !cov.claim(at, at+len(seg)) {
		return received, declaredEnd, fmt.Errorf("%s segment [%d,+%d) overlaps data already received",
			what, at, len(seg))
	}
	copy(buf[at:], seg)
	return received + len(seg), declaredEnd, nil
}

// span is a half-open byte range [start, end).
type span struct{ start, end int }

// coverage is the sorted, merged set of ranges written into a buffer.
type coverage []span

// claim records [start, end) and reports false, recording nothing, when the
// range overlaps one already written.
func (cv *coverage) claim(start, end int) bool {
	s := *cv
	i := sort.Search(len(s), func(i int) bool { return s[i].end > start })
	if i < len(s) && s[i].start < end {
		return false
	}
	s = slices.Insert(s, i, span{start, end})
	if i+1 < len(s) && s[i+1].start == end {
		s[i].end = s[i+1].end
		s = slices.Delete(s, i+1, i+2)
	}
	if i > 0 && s[i-1].end == start {
		s[i-1].end = s[i].end
		s = slices.Delete(s, i, i+1)
	}
	*cv = s
	return true
}

func (ra *reassembler) result() *transaction {
	return &transaction{
		first:  ra.first,
		params: ra.params,
		data:   ra.data,
		frames: ra.frames,
	}
}

// receiveTransaction reads frames until one TRANS2 response is complete.
// No partial buffer is ever returned.
func (c *Client) receiveTransaction(ctx context.Context, op, path string) (*transaction, error) {
	ra := newReassembler(c.opts.Reassembly, c.opts.MaxTransactionSize)

	for {
		msg, err := c.session.Recv(ctx)
		if err != nil {
			return nil, newTransportError(op, path, err)
		}
		if err := c.checkStatus(ctx, msg, op, path); err != nil {
			return nil, err
		}

		resp, err := parseResponse(msg.Body)
		if err != nil {
			return nil, newMalformedError(op, path, "frame %d: %v", ra.frames+1, err)
		}

		done, err := ra.add(resp)
		if err != nil {
			if errors.Is(err, errTooLarge) {
				return nil, newError(ErrAllocation, op, path, err)
			}
			return nil, newMalformedError(op, path, "frame %d: %v", ra.frames, err)
		}

		logger.DebugCtx(ctx, "trans2 frame",
			logger.Command(op),
			logger.KeyFrames, ra.frames,
			logger.Offset(int(resp.DataDisplacement)),
			logger.Count(int(resp.DataCount)),
			logger.Total(ra.totalData))

		if ra.frames == 1 {
			// Keep the first body for fields outside the parameter and data
			// blocks.
			ra.firstBody = msg.Body
		}
		if done {
			break
		}
	}

	tx := ra.result()
	tx.body = ra.firstBody
	telemetry.AddEvent(ctx, telemetry.EventReassembled,
		telemetry.Frames(tx.frames), telemetry.Bytes(len(tx.data)))
	c.observeTransaction(op, tx.frames, len(tx.data))
	return tx, nil
}

// checkStatus converts a failing header status into ErrStatus.
func (c *Client) checkStatus(ctx context.Context, msg *Message, op, path string) error {
	if msg.Header == nil {
		return newMalformedError(op, path, "missing SMB header")
	}
	if !msg.Header.IsError() {
		return nil
	}
	logger.WarnCtx(ctx, "server returned error status",
		logger.Command(op),
		logger.Path(path),
		logger.Status(msg.Header.StatusString()))
	return newStatusError(op, path, msg.Header.Status)
}
