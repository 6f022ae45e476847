package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for TRANS2 client spans.
const (
	AttrSubcommand = "smb.trans2.subcommand"
	AttrInfoLevel  = "smb.trans2.info_level"
	AttrTreeID     = "smb.tree_id"
	AttrStatus     = "smb.status"
	AttrSearchID   = "smb.find.sid"
	AttrPattern    = "fs.pattern"
	AttrPath       = "fs.path"
	AttrEntries    = "fs.entries"
	AttrPage       = "smb.find.page"
	AttrEOS        = "smb.find.eos"
	AttrFrames     = "smb.trans2.frames"
	AttrBytes      = "smb.trans2.bytes"
	AttrCacheHit   = "cache.hit"
)

// Span names. Format: <component>.<operation>
const (
	SpanFind          = "trans2.FIND"
	SpanQueryPathInfo = "trans2.QUERY_PATH_INFORMATION"
	SpanQueryInfo     = "smb.QUERY_INFORMATION"
	SpanFstat         = "trans2.FSTAT"
	SpanCacheLookup   = "statcache.lookup"

	EventPage        = "find.page"
	EventReassembled = "trans2.reassembled"

	EventStandardSkipped = "fstat.standard_skipped"
)

func Subcommand(name string) attribute.KeyValue { return attribute.String(AttrSubcommand, name) }
func InfoLevel(name string) attribute.KeyValue { return attribute.String(AttrInfoLevel, name) }
func Pattern(p string) attribute.KeyValue { return attribute.String(AttrPattern, p) }
func Path(p string) attribute.KeyValue { return attribute.String(AttrPath, p) }
func Entries(n int) attribute.KeyValue { return attribute.Int(AttrEntries, n) }
func Page(n int) attribute.KeyValue { return attribute.Int(AttrPage, n) }
func EOS(eos bool) attribute.KeyValue { return attribute.Bool(AttrEOS, eos) }
func Frames(n int) attribute.KeyValue { return attribute.Int(AttrFrames, n) }
func Bytes(n int) attribute.KeyValue { return attribute.Int(AttrBytes, n) }
func CacheHit(hit bool) attribute.KeyValue { return attribute.Bool(AttrCacheHit, hit) }

// TreeID returns the tree id attribute.
func TreeID(tid uint16) attribute.KeyValue {
	return attribute.Int(AttrTreeID, int(tid))
}

// SearchID returns the FIND search handle attribute.
func SearchID(sid uint16) attribute.KeyValue {
	return attribute.Int(AttrSearchID, int(sid))
}

// Status renders an NT_STATUS value as hex.
func Status(code uint32) attribute.KeyValue {
	return attribute.String(AttrStatus, fmt.Sprintf("0x%08X", code))
}

// StartTrans2Span starts a client span for a TRANS2-level operation on a tree.
func StartTrans2Span(ctx context.Context, name string, tid uint16, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, TreeID(tid))
	all = append(all, attrs...)
	return StartSpan(ctx, name, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(all...))
}

// StartCacheSpan starts a span for a cache operation.
func StartCacheSpan(ctx context.Context, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanCacheLookup, trace.WithAttributes(attrs...))
}
