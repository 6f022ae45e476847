package statcache

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittocifs/internal/smb/header"
	"github.com/marmos91/dittocifs/internal/smb/types"
	"github.com/marmos91/dittocifs/pkg/trans2"
)

// countingSession answers FIND_FIRST2 with an empty final page and
// QUERY_INFORMATION with a fixed legacy record.
type countingSession struct {
	mu      sync.Mutex
	sends   int
	pending []types.Command
	fail    bool
}

func (s *countingSession) Send(_ context.Context, msg *trans2.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends++
	s.pending = append(s.pending, msg.Header.Command)
	return nil
}

func (s *countingSession) Recv(_ context.Context) (*trans2.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cmd := s.pending[0]
	s.pending = s.pending[1:]

	h := &header.SMB1Header{Command: cmd, Flags: types.FlagReply, Flags2: types.Flags2NTStatus}
	if s.fail {
		h.Status = types.StatusAccessDenied
		return &trans2.Message{Header: h, Body: []byte{0, 0, 0}}, nil
	}

	if cmd == types.CommandQueryInformation {
		body := make([]byte, 23)
		body[0] = 10
		binary.LittleEndian.PutUint16(body[1:], uint16(types.FileAttributeArchive))
		binary.LittleEndian.PutUint32(body[3:], 1000)
		binary.LittleEndian.PutUint32(body[7:], 42)
		return &trans2.Message{Header: h, Body: body}, nil
	}

	params := []byte{1, 0, 0, 0, 1, 0, 0, 0, 0, 0}
	body := make([]byte, 23, 33)
	body[0] = 10
	binary.LittleEndian.PutUint16(body[1:], uint16(len(params)))
	binary.LittleEndian.PutUint16(body[7:], uint16(len(params)))
	binary.LittleEndian.PutUint16(body[9:], uint16(header.HeaderSize+23))
	binary.LittleEndian.PutUint16(body[21:], uint16(len(params)))
	return &trans2.Message{Header: h, Body: append(body, params...)}, nil
}

func (s *countingSession) SupportsNTSMB() bool { return false }

func (s *countingSession) ServerTimeZone() time.Duration { return 0 }

func (s *countingSession) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sends
}

type countingMetrics struct {
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
	stores map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{hits: map[string]int{}, misses: map[string]int{}, stores: map[string]int{}}
}

func (m *countingMetrics) RecordHit(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[kind]++
}

func (m *countingMetrics) RecordMiss(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses[kind]++
}

func (m *countingMetrics) RecordStore(kind string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores[kind]++
}

func newTestClient(t *testing.T, tid uint16) (*Client, *Cache, *countingSession, *countingMetrics) {
	t.Helper()
	m := newCountingMetrics()
	cache, err := Open(Config{TTL: time.Minute, Metrics: m})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	s := &countingSession{}
	return NewClient(cache, trans2.NewClient(s, tid, trans2.Options{})), cache, s, m
}

func TestFstatIsCached(t *testing.T) {
	c, _, s, m := newTestClient(t, 1)
	ctx := context.Background()

	first, err := c.Fstat(ctx, `\a.txt`)
	require.NoError(t, err)
	second, err := c.Fstat(ctx, `\a.txt`)
	require.NoError(t, err)

	assert.Equal(t, 1, s.count())
	assert.Equal(t, first, second)
	assert.Equal(t, uint64(42), second.Size)
	assert.Equal(t, trans2.TimeUnixSeconds, second.TimeEncoding)
	assert.Equal(t, 1, m.hits[KindStat])
	assert.Equal(t, 1, m.misses[KindStat])
	assert.Equal(t, 1, m.stores[KindStat])
}

func TestFindIsCached(t *testing.T) {
	c, _, s, m := newTestClient(t, 1)
	ctx := context.Background()

	for range 3 {
		records, err := c.Find(ctx, `\*`)
		require.NoError(t, err)
		assert.NotNil(t, records)
		assert.Empty(t, records)
	}
	assert.Equal(t, 1, s.count())
	assert.Equal(t, 2, m.hits[KindFind])
}

func TestKeysIncludeTreeID(t *testing.T) {
	assert.NotEqual(t, keyStat(1, `\a`), keyStat(2, `\a`))
	assert.NotEqual(t, keyFind(1, `\a`), keyStat(1, `\a`))
	assert.Equal(t, "find:7:\\*", string(keyFind(7, `\*`)))
}

func TestFailuresAreNotCached(t *testing.T) {
	c, _, s, m := newTestClient(t, 1)
	s.fail = true
	ctx := context.Background()

	_, err := c.Fstat(ctx, `\denied`)
	require.Error(t, err)
	assert.True(t, trans2.IsStatus(err))

	s.fail = false
	rec, err := c.Fstat(ctx, `\denied`)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), rec.Size)
	assert.Equal(t, 2, s.count())
	assert.Zero(t, m.hits[KindStat])
}

func TestInvalidateAndPurge(t *testing.T) {
	c, cache, s, _ := newTestClient(t, 4)
	ctx := context.Background()

	_, err := c.Fstat(ctx, `\f`)
	require.NoError(t, err)
	_, err = c.Find(ctx, `\*`)
	require.NoError(t, err)
	require.Equal(t, 2, s.count())

	require.NoError(t, cache.Invalidate(4, `\f`))
	_, err = c.Fstat(ctx, `\f`)
	require.NoError(t, err)
	_, err = c.Find(ctx, `\*`)
	require.NoError(t, err)
	assert.Equal(t, 4, s.count())

	require.NoError(t, cache.Purge())
	_, err = c.Fstat(ctx, `\f`)
	require.NoError(t, err)
	assert.Equal(t, 5, s.count())

	assert.NoError(t, cache.Invalidate(4, `\never-cached`))
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, cache.ttl)

	require.NoError(t, cache.put(KindStat, keyStat(1, `\x`), trans2.FileRecord{Name: "x"}))
	require.NoError(t, cache.Close())

	reopened, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	var rec trans2.FileRecord
	hit, err := reopened.get(KindStat, keyStat(1, `\x`), &rec)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "x", rec.Name)
}

func TestGetDecodeError(t *testing.T) {
	cache, err := Open(Config{})
	require.NoError(t, err)
	defer func() { _ = cache.Close() }()

	require.NoError(t, cache.put(KindStat, keyStat(1, `\x`), "not a record"))

	var rec trans2.FileRecord
	_, err = cache.get(KindStat, keyStat(1, `\x`), &rec)
	assert.Error(t, err)
}
