package trans2

import (
	"context"
	"errors"

	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/marmos91/dittocifs/internal/smb/header"
	"github.com/marmos91/dittocifs/internal/smb/types"
	"github.com/marmos91/dittocifs/internal/telemetry"
)

// Client issues TRANS2 operations on one tree of a Session.
type Client struct {
	session Session
	tid     uint16
	opts    Options
	metrics Metrics
}

// NewClient creates a Client for tree tid. Zero-valued options select the
// defaults.
func NewClient(session Session, tid uint16, opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{
		session: session,
		tid:     tid,
		opts:    opts,
		metrics: opts.Metrics,
	}
}

// TreeID returns the tree id requests are sent on.
func (c *Client) TreeID() uint16 {
	return c.tid
}

// Session returns the underlying session.
func (c *Client) Session() Session {
	return c.session
}

// Options returns the effective options.
func (c *Client) Options() Options {
	return c.opts
}

const (
	requestFlags  = types.FlagCaseInsensitive | types.FlagCanonicalPaths
	requestFlags2 = types.Flags2LongNames | types.Flags2ExtendedAttrs | types.Flags2LongNamesUsed |
		types.Flags2NTStatus | types.Flags2Unicode
)

// send transmits one request on the client's tree.
func (c *Client) send(ctx context.Context, cmd types.Command, body []byte, op, path string) error {
	msg := &Message{
		Header: &header.SMB1Header{
			Command: cmd,
			Flags:   requestFlags,
			Flags2:  requestFlags2,
			TreeID:  c.tid,
		},
		Body: body,
	}
	if err := c.session.Send(ctx, msg); err != nil {
		return newTransportError(op, path, err)
	}
	return nil
}

// sendTrans2 encodes and sends a TRANS2 request.
func (c *Client) sendTrans2(ctx context.Context, req *trans2Request, op, path string) error {
	body, err := req.encode()
	if err != nil {
		return newError(ErrAllocation, op, path, err)
	}
	return c.send(ctx, types.CommandTransaction2, body, op, path)
}

// receiveOne reads a single response frame and checks its status.
func (c *Client) receiveOne(ctx context.Context, op, path string) (*Message, error) {
	msg, err := c.session.Recv(ctx)
	if err != nil {
		return nil, newTransportError(op, path, err)
	}
	if err := c.checkStatus(ctx, msg, op, path); err != nil {
		return nil, err
	}
	return msg, nil
}

// startOperation opens a span and attaches a LogContext carrying its ids.
func (c *Client) startOperation(ctx context.Context, spanName, command string, target string) (context.Context, func()) {
	ctx, span := telemetry.StartTrans2Span(ctx, spanName, c.tid, telemetry.Path(target))
	if logger.FromContext(ctx) == nil {
		lc := logger.NewLogContext(command, c.tid).WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
		ctx = logger.WithContext(ctx, lc)
	}
	return ctx, func() { span.End() }
}

// fail reports err to the log and the active span, then returns it.
func (c *Client) fail(ctx context.Context, err error) error {
	var e *Error
	if errors.As(err, &e) {
		logger.ErrorCtx(ctx, "trans2 operation failed",
			logger.Command(e.Op),
			logger.Path(e.Path),
			logger.KeyErrorCode, e.Code.String(),
			logger.Err(err))
	} else {
		logger.ErrorCtx(ctx, "trans2 operation failed", logger.Err(err))
	}
	telemetry.RecordError(ctx, err)
	return err
}
