package trans2

import (
	"context"
	"time"

	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/marmos91/dittocifs/internal/telemetry"
)

// Fstat returns the merged metadata of path.
//
// Without the NT feature set it is a single legacy query. Otherwise it
// issues a Basic query, whose failure is fatal, then a Standard query, whose
// failure only leaves Size and AllocSize at zero: some servers do not
// implement the standard information level.
func (c *Client) Fstat(ctx context.Context, path string) (rec *FileRecord, err error) {
	start := time.Now()
	ctx, end := c.startOperation(ctx, telemetry.SpanFstat, "FSTAT", path)
	defer end()
	defer func() { c.observeOperation("FSTAT", start, err) }()

	if !c.session.SupportsNTSMB() {
		logger.DebugCtx(ctx, "session lacks NT SMB, using legacy query", logger.Path(path))
		return c.QueryPathInfo(ctx, path, VariantLegacy)
	}

	basic, err := c.QueryPathInfo(ctx, path, VariantBasic)
	if err != nil {
		return nil, err
	}

	rec = basic
	// Tolerated: no error log, span status or operation metric.
	standard, err := c.queryPathInfo(ctx, path, VariantStandard)
	if err != nil {
		logger.WarnCtx(ctx, "standard info unavailable, sizes left unset",
			logger.Path(path),
			logger.Err(err))
		telemetry.AddEvent(ctx, telemetry.EventStandardSkipped)
		return rec, nil
	}

	rec.Size = standard.Size
	rec.AllocSize = standard.AllocSize
	return rec, nil
}
