package trans2

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/marmos91/dittocifs/internal/logger"
	"github.com/marmos91/dittocifs/internal/smb/smbenc"
	"github.com/marmos91/dittocifs/internal/smb/types"
	"github.com/marmos91/dittocifs/internal/smb/utf16le"
	"github.com/marmos91/dittocifs/internal/telemetry"
)

// Variant selects the wire format of a single-path metadata query.
type Variant int

const (
	// VariantBasic is QUERY_PATH_INFORMATION at SMB_QUERY_FILE_BASIC_INFO:
	// timestamps and attributes.
	VariantBasic Variant = iota + 1

	// VariantStandard is QUERY_PATH_INFORMATION at
	// SMB_QUERY_FILE_STANDARD_INFO: sizes and the directory flag.
	VariantStandard

	// VariantLegacy is SMB_COM_QUERY_INFORMATION: attributes, last write
	// time in server-local seconds, and a 32-bit size.
	VariantLegacy
)

func (v Variant) String() string {
	switch v {
	case VariantBasic:
		return "basic"
	case VariantStandard:
		return "standard"
	case VariantLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant parses "basic", "standard" or "legacy".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "basic":
		return VariantBasic, nil
	case "standard":
		return VariantStandard, nil
	case "legacy":
		return VariantLegacy, nil
	default:
		return 0, fmt.Errorf("invalid query variant %q (valid: basic, standard, legacy)", s)
	}
}

const (
	opQueryPathInfo = "QUERY_PATH_INFORMATION"
	opQueryInfo     = "QUERY_INFORMATION"

	queryMaxParamCount = 2
	queryMaxDataCount  = 40

	// queryReserved is the byte between ByteCount and the parameters, which
	// start at offset 66.
	queryReserved = 1

	// infoPadding separates the two-byte EaErrorOffset parameter from the
	// info block when a server leaves DataOffset unset.
	infoPadding = 4

	basicInfoSize    = 40
	standardInfoSize = 22

	// legacyResponseSize is WordCount, FileAttributes, LastWriteTime,
	// FileSize, Reserved[5] and ByteCount.
	legacyResponseSize = 23
	legacyWordCount    = 10
)

// infoLevel maps an NT variant to its TRANS2 information level.
func (v Variant) infoLevel() types.InfoLevel {
	if v == VariantStandard {
		return types.InfoQueryFileStandardInfo
	}
	return types.InfoQueryFileBasicInfo
}

// infoSize is the fixed size of the information block for an NT variant.
func (v Variant) infoSize() int {
	if v == VariantStandard {
		return standardInfoSize
	}
	return basicInfoSize
}

// buildQueryPathInfo builds a QUERY_PATH_INFORMATION request
// [MS-CIFS] 2.2.6.6.1. The whole message is padded to four bytes.
func buildQueryPathInfo(level types.InfoLevel, path []byte) (*trans2Request, error) {
	w := smbenc.NewWriter(6 + len(path))
	w.WriteUint16(uint16(level))
	w.WriteUint32(0) // Reserved
	w.WriteBytes(path)
	params := w.Bytes()

	msgLen := requestBytesOffset + queryReserved + len(params)
	pad := (4 - msgLen%4) % 4
	bct := len(params) + pad + queryReserved
	if bct > 0xFFFF {
		return nil, fmt.Errorf("path too long: byte count %d", bct)
	}

	return &trans2Request{
		subcommand:    types.Trans2QueryPathInformation,
		maxParamCount: queryMaxParamCount,
		maxDataCount:  queryMaxDataCount,
		paramOffset:   requestBytesOffset + queryReserved,
		dataOffset:    0,
		leadingPad:    queryReserved,
		params:        params,
	}, nil
}

// buildQueryInformation builds the legacy SMB_COM_QUERY_INFORMATION body
// [MS-CIFS] 2.2.4.9.1.
func buildQueryInformation(path []byte) []byte {
	w := smbenc.NewWriter(4 + len(path))
	w.WriteUint8(0) // WordCount
	w.WriteUint16(uint16(len(path) + 1))
	w.WriteUint8(types.BufferFormatASCII)
	w.WriteBytes(path)
	return w.Bytes()
}

// QueryPathInfo retrieves metadata for one path using the given variant.
//
// Basic and Standard require a session with the NT feature set and fail
// with ErrNotSupported otherwise. Their responses are expected in a single
// frame.
func (c *Client) QueryPathInfo(ctx context.Context, path string, variant Variant) (rec *FileRecord, err error) {
	start := time.Now()
	spanName := telemetry.SpanQueryPathInfo
	op := opQueryPathInfo
	if variant == VariantLegacy {
		spanName = telemetry.SpanQueryInfo
		op = opQueryInfo
	}

	ctx, end := c.startOperation(ctx, spanName, op, path)
	defer end()
	telemetry.SetAttributes(ctx, telemetry.InfoLevel(variant.String()))
	defer func() { c.observeOperation(op, start, err) }()

	rec, err = c.queryPathInfo(ctx, path, variant)
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	return rec, nil
}

func (c *Client) queryPathInfo(ctx context.Context, path string, variant Variant) (*FileRecord, error) {
	switch variant {
	case VariantBasic, VariantStandard:
		return c.queryNT(ctx, path, variant)
	case VariantLegacy:
		return c.queryLegacy(ctx, path)
	default:
		return nil, newError(ErrNotSupported, opQueryPathInfo, path, fmt.Errorf("unknown variant %d", int(variant)))
	}
}

func (c *Client) queryNT(ctx context.Context, path string, variant Variant) (*FileRecord, error) {
	if !c.session.SupportsNTSMB() {
		return nil, newNotSupportedError(opQueryPathInfo, path)
	}

	encoded, err := utf16le.EncodeTerminated(path)
	if err != nil {
		return nil, newTextDecodeError(opQueryPathInfo, path, err)
	}
	req, err := buildQueryPathInfo(variant.infoLevel(), encoded)
	if err != nil {
		return nil, newTextDecodeError(opQueryPathInfo, path, err)
	}
	if err := c.sendTrans2(ctx, req, opQueryPathInfo, path); err != nil {
		return nil, err
	}

	msg, err := c.receiveOne(ctx, opQueryPathInfo, path)
	if err != nil {
		return nil, err
	}
	resp, err := parseResponse(msg.Body)
	if err != nil {
		return nil, newError(ErrMalformed, opQueryPathInfo, path, err)
	}

	info := infoBlock(msg.Body, resp)
	if len(info) < variant.infoSize() {
		return nil, newMalformedError(opQueryPathInfo, path,
			"%s info: %d bytes, need %d", variant, len(info), variant.infoSize())
	}

	rec := &FileRecord{Name: baseName(path), TimeEncoding: TimeFiletime}
	r := smbenc.NewReader(info)
	switch variant {
	case VariantBasic:
		rec.Created = r.ReadUint64()
		rec.Accessed = r.ReadUint64()
		rec.Written = r.ReadUint64()
		rec.Changed = r.ReadUint64()
		rec.Attrs = types.FileAttributes(r.ReadUint32())
		rec.IsDir = rec.Attrs.IsDirectory()
	case VariantStandard:
		rec.AllocSize = r.ReadUint64()
		rec.Size = r.ReadUint64()
		r.Skip(4) // NumberOfLinks
		r.Skip(1) // DeletePending
		rec.IsDir = r.ReadUint8() != 0
	}
	if err := r.Err(); err != nil {
		return nil, newError(ErrMalformed, opQueryPathInfo, path, err)
	}

	logger.DebugCtx(ctx, "path info",
		logger.Path(path),
		logger.KeyInfoLevel, variant.infoLevel().String(),
		logger.KeySize, rec.Size)
	return rec, nil
}

// infoBlock locates the information block of a QUERY_PATH_INFORMATION
// response: at DataOffset when the server set it, otherwise after the
// EaErrorOffset parameter and its padding.
func infoBlock(body []byte, resp *response) []byte {
	if resp.DataCount > 0 && resp.DataOffset != 0 {
		return resp.Data
	}
	start := resp.bytesStart + infoPadding
	if start > len(body) {
		return nil
	}
	return body[start:]
}

func (c *Client) queryLegacy(ctx context.Context, path string) (*FileRecord, error) {
	encoded, err := utf16le.EncodeTerminated(path)
	if err != nil {
		return nil, newTextDecodeError(opQueryInfo, path, err)
	}
	if len(encoded)+1 > 0xFFFF {
		return nil, newTextDecodeError(opQueryInfo, path, fmt.Errorf("path too long: %d bytes", len(encoded)))
	}
	if err := c.send(ctx, types.CommandQueryInformation, buildQueryInformation(encoded), opQueryInfo, path); err != nil {
		return nil, err
	}

	msg, err := c.receiveOne(ctx, opQueryInfo, path)
	if err != nil {
		return nil, err
	}
	if len(msg.Body) < legacyResponseSize {
		return nil, newMalformedError(opQueryInfo, path,
			"response: %d bytes, need %d", len(msg.Body), legacyResponseSize)
	}

	r := smbenc.NewReader(msg.Body)
	wct := r.ReadUint8()
	if wct == 0 {
		return nil, newMalformedError(opQueryInfo, path, "word count 0")
	}
	attrs := types.FileAttributes(r.ReadUint16())
	utime := r.ReadUint32()
	size := uint64(r.ReadUint32())
	if err := r.Err(); err != nil {
		return nil, newError(ErrMalformed, opQueryInfo, path, err)
	}

	rec := &FileRecord{
		Name:         baseName(path),
		Written:      types.AdjustUTime(utime, c.session.ServerTimeZone()),
		Attrs:        attrs,
		IsDir:        attrs.IsDirectory(),
		Size:         size,
		AllocSize:    size,
		TimeEncoding: TimeUnixSeconds,
	}

	logger.DebugCtx(ctx, "legacy path info",
		logger.Path(path),
		logger.KeySize, rec.Size)
	return rec, nil
}

// baseName returns the last component of a backslash or slash separated path.
func baseName(path string) string {
	trimmed := strings.TrimRight(path, `\/`)
	if i := strings.LastIndexAny(trimmed, `\/`); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	if trimmed == "" {
		return `\`
	}
	return trimmed
}
