package session

import (
	"bytes"
	"context"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittocifs/internal/smb/header"
	"github.com/marmos91/dittocifs/internal/smb/types"
	"github.com/marmos91/dittocifs/pkg/trans2"
)

func legacyReplyHex(utime uint32) string {
	body := make([]byte, 23)
	body[0] = 10
	body[3] = byte(utime)
	body[4] = byte(utime >> 8)
	body[5] = byte(utime >> 16)
	body[6] = byte(utime >> 24)
	return hex.EncodeToString(reply(types.CommandQueryInformation, body))
}

func TestReadCapture(t *testing.T) {
	raw := legacyReplyHex(100)
	doc := "nt_smb: false\ntime_zone: 1h\nframes:\n  - comment: legacy reply\n    hex: |\n      " +
		raw[:20] + "\n      " + raw[20:] + "\n"

	c, err := ReadCapture(strings.NewReader(doc))
	require.NoError(t, err)
	assert.False(t, c.NTSMB)
	assert.Equal(t, time.Hour, c.TimeZone)
	require.Len(t, c.Frames, 1)

	r, err := NewReplay(c)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Remaining())
	assert.Equal(t, time.Hour, r.ServerTimeZone())
	assert.False(t, r.SupportsNTSMB())
}

func TestReplayDrivesFstat(t *testing.T) {
	r, err := NewReplay(&Capture{
		TimeZone: 10 * time.Second,
		Frames:   []Frame{{Hex: legacyReplyHex(100)}},
	})
	require.NoError(t, err)

	rec, err := trans2.NewClient(r, 3, trans2.Options{}).Fstat(context.Background(), `\a\b`)
	require.NoError(t, err)
	assert.Equal(t, "b", rec.Name)
	assert.Equal(t, uint64(110), rec.Written)

	sent := r.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, types.CommandQueryInformation, sent[0].Header.Command)
	assert.Equal(t, uint16(3), sent[0].Header.TreeID)
	assert.Zero(t, r.Remaining())
}

func TestReplayExhausted(t *testing.T) {
	r, err := NewReplay(&Capture{})
	require.NoError(t, err)

	_, err = r.Recv(context.Background())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReplayRejectsBadFrames(t *testing.T) {
	_, err := NewReplay(&Capture{Frames: []Frame{{Hex: "zz"}}})
	assert.Error(t, err)

	_, err = NewReplay(&Capture{Frames: []Frame{{Hex: "00112233"}}})
	assert.ErrorIs(t, err, header.ErrMessageTooShort)
}

func TestReplayHonoursCancellation(t *testing.T) {
	r, err := NewReplay(&Capture{Frames: []Frame{{Hex: legacyReplyHex(1)}}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Recv(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, r.Remaining())
}

func TestCaptureRoundTripThroughFile(t *testing.T) {
	c := &Capture{NTSMB: true, TimeZone: -30 * time.Minute, Frames: []Frame{{Comment: "x", Hex: legacyReplyHex(5)}}}

	var buf bytes.Buffer
	require.NoError(t, WriteCapture(&buf, c))

	path := filepath.Join(t.TempDir(), "capture.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	r, err := LoadReplay(path)
	require.NoError(t, err)
	assert.True(t, r.SupportsNTSMB())
	assert.Equal(t, -30*time.Minute, r.ServerTimeZone())
	assert.Equal(t, 1, r.Remaining())

	_, err = LoadReplay(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
