package trans2

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittocifs/internal/smb/types"
)

func TestFstatMergesBasicAndStandard(t *testing.T) {
	s := newFakeSession(
		infoFrameAtOffset(basicInfo(10, 20, 30, 40, types.FileAttributeDirectory)),
		infoFrameNoOffset(standardInfo(4096, 1234, true)),
	)
	m := newRecordingMetrics()
	c := NewClient(s, 1, Options{Metrics: m})

	rec, err := c.Fstat(context.Background(), `\share\sub`)
	require.NoError(t, err)

	assert.Equal(t, "sub", rec.Name)
	assert.Equal(t, uint64(10), rec.Created)
	assert.Equal(t, uint64(20), rec.Accessed)
	assert.Equal(t, uint64(30), rec.Written)
	assert.Equal(t, uint64(40), rec.Changed)
	assert.Equal(t, uint64(1234), rec.Size)
	assert.Equal(t, uint64(4096), rec.AllocSize)
	assert.True(t, rec.IsDir)
	assert.Equal(t, TimeFiletime, rec.TimeEncoding)

	reqs := s.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, uint16(types.InfoQueryFileBasicInfo), u16(reqs[0].Body, reqBytes+queryReserved))
	assert.Equal(t, uint16(types.InfoQueryFileStandardInfo), u16(reqs[1].Body, reqBytes+queryReserved))
	assert.Equal(t, "", m.operations["FSTAT"])
}

func TestFstatToleratesStandardFailure(t *testing.T) {
	s := newFakeSession(
		infoFrameAtOffset(basicInfo(10, 20, 30, 40, types.FileAttributeArchive)),
		errorReply(types.CommandTransaction2, types.StatusInvalidInfoClass),
	)
	m := newRecordingMetrics()
	c := NewClient(s, 1, Options{Metrics: m})

	rec, err := c.Fstat(context.Background(), `\f.txt`)
	require.NoError(t, err)
	assert.Equal(t, "", m.operations["FSTAT"])
	assert.Equal(t, "", m.operations[opQueryPathInfo], "standard failure is not reported as a failed query")
	assert.Equal(t, uint64(30), rec.Written)
	assert.Zero(t, rec.Size)
	assert.Zero(t, rec.AllocSize)
	assert.False(t, rec.IsDir)
}

func TestFstatBasicFailureIsFatal(t *testing.T) {
	s := newFakeSession(
		errorReply(types.CommandTransaction2, types.StatusAccessDenied),
		infoFrameAtOffset(standardInfo(1, 1, false)),
	)
	m := newRecordingMetrics()
	c := NewClient(s, 1, Options{Metrics: m})

	rec, err := c.Fstat(context.Background(), `\f.txt`)
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, IsStatus(err))
	assert.Len(t, s.requests(), 1)
	assert.Equal(t, "Status", m.operations["FSTAT"])
}

func TestFstatLegacySession(t *testing.T) {
	s := newFakeSession(legacyReply(10, types.FileAttributeDirectory, 500, 0))
	s.nt = false
	s.timeZone = -2 * time.Hour
	c := NewClient(s, 1, Options{})

	rec, err := c.Fstat(context.Background(), `\old\dir`)
	require.NoError(t, err)
	assert.Equal(t, "dir", rec.Name)
	assert.True(t, rec.IsDir)
	assert.Zero(t, rec.Written, "clamped at zero")
	assert.Equal(t, TimeUnixSeconds, rec.TimeEncoding)

	reqs := s.requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, types.CommandQueryInformation, reqs[0].Header.Command)
}
