package trans2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patternBytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

// splitFrames cuts data into k frames carrying params in the first one.
func splitFrames(params, data []byte, k int) []frame {
	frames := make([]frame, 0, k)
	chunk := (len(data) + k - 1) / k
	for i := 0; i < k; i++ {
		lo := min(i*chunk, len(data))
		hi := min(lo+chunk, len(data))
		f := frame{
			totalParams: len(params),
			totalData:   len(data),
			data:        data[lo:hi],
			dataDisp:    lo,
		}
		if i == 0 {
			f.params = params
		}
		frames = append(frames, f)
	}
	return frames
}

func TestReceiveTransactionReassemblesFrames(t *testing.T) {
	params := []byte{1, 2, 3, 4}
	data := patternBytes(3000)

	for _, k := range []int{1, 2, 3, 7} {
		for _, mode := range []ReassemblyMode{ReassembleByDisplacement, ReassembleSequential} {
			t.Run(fmt.Sprintf("%d frames %s", k, mode), func(t *testing.T) {
				s := newFakeSession()
				for _, f := range splitFrames(params, data, k) {
					s.push(trans2Frame(f))
				}
				m := newRecordingMetrics()
				c := NewClient(s, 1, Options{Reassembly: mode, Metrics: m})

				tx, err := c.receiveTransaction(context.Background(), opFindFirst2, `\*`)
				require.NoError(t, err)
				assert.Equal(t, params, tx.params)
				assert.True(t, bytes.Equal(data, tx.data))
				assert.Equal(t, k, tx.frames)
				assert.Equal(t, []int{k}, m.transactions)
				assert.Empty(t, s.replies, "all frames consumed")
			})
		}
	}
}

func TestReceiveTransactionOutOfOrderFrames(t *testing.T) {
	data := patternBytes(900)
	frames := splitFrames([]byte{9, 9}, data, 3)
	frames[0], frames[2] = frames[2], frames[0]

	s := newFakeSession()
	for _, f := range frames {
		s.push(trans2Frame(f))
	}
	c := NewClient(s, 1, Options{})

	tx, err := c.receiveTransaction(context.Background(), opFindNext2, "")
	require.NoError(t, err)
	assert.Equal(t, data, tx.data)
	assert.Equal(t, []byte{9, 9}, tx.params)
}

func TestReceiveTransactionOverrun(t *testing.T) {
	for _, mode := range []ReassemblyMode{ReassembleByDisplacement, ReassembleSequential} {
		t.Run(mode.String(), func(t *testing.T) {
			s := newFakeSession(
				trans2Frame(frame{totalData: 100, data: patternBytes(60)}),
				trans2Frame(frame{totalData: 100, data: patternBytes(60), dataDisp: 60}),
			)
			c := NewClient(s, 1, Options{Reassembly: mode})

			tx, err := c.receiveTransaction(context.Background(), opFindFirst2, "")
			require.Error(t, err)
			assert.Nil(t, tx)
			assert.True(t, IsMalformed(err))
		})
	}
}

func TestReceiveTransactionTooLarge(t *testing.T) {
	s := newFakeSession(trans2Frame(frame{totalData: 4096, data: patternBytes(100)}))
	c := NewClient(s, 1, Options{MaxTransactionSize: 1024})

	_, err := c.receiveTransaction(context.Background(), opFindFirst2, "")
	require.Error(t, err)
	assert.True(t, IsAllocation(err))
}

func TestReceiveTransactionTransportFailureMidStream(t *testing.T) {
	data := patternBytes(600)
	frames := splitFrames(nil, data, 3)

	s := newFakeSession(trans2Frame(frames[0]))
	s.pushErr(errors.New("connection reset"))
	c := NewClient(s, 1, Options{})

	tx, err := c.receiveTransaction(context.Background(), opFindFirst2, "")
	require.Error(t, err)
	assert.Nil(t, tx)
	assert.True(t, IsTransport(err))
}

func TestReceiveTransactionStatusError(t *testing.T) {
	s := newFakeSession(errorReply(0x32, 0xC0000022))
	c := NewClient(s, 1, Options{})

	_, err := c.receiveTransaction(context.Background(), opFindFirst2, `\secret\*`)
	require.Error(t, err)
	require.True(t, IsStatus(err))
	status, ok := StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, "STATUS_ACCESS_DENIED", status.String())
}

func TestReceiveTransactionShortFrame(t *testing.T) {
	msg := singleFrame([]byte{1, 2}, nil)
	msg.Body = msg.Body[:10]
	s := newFakeSession(msg)
	c := NewClient(s, 1, Options{})

	_, err := c.receiveTransaction(context.Background(), opFindFirst2, "")
	require.Error(t, err)
	assert.True(t, IsMalformed(err))
}

func TestReceiveTransactionOverlappingFrames(t *testing.T) {
	tests := []struct {
		name   string
		frames []frame
	}{
		{
			name: "overlap",
			frames: []frame{
				{totalData: 100, data: patternBytes(60), dataDisp: 0},
				{totalData: 100, data: patternBytes(40), dataDisp: 40},
			},
		},
		{
			name: "repeated frame",
			frames: []frame{
				{totalData: 100, data: patternBytes(50), dataDisp: 0},
				{totalData: 100, data: patternBytes(50), dataDisp: 0},
			},
		},
		{
			name: "repeated parameters",
			frames: []frame{
				{totalParams: 2, params: []byte{1, 2}, totalData: 4, data: []byte{1, 2}},
				{totalParams: 2, params: []byte{1, 2}, totalData: 4, data: []byte{3, 4}, dataDisp: 2},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeSession()
			for _, f := range tt.frames {
				s.push(trans2Frame(f))
			}
			c := NewClient(s, 1, Options{})

			tx, err := c.receiveTransaction(context.Background(), opFindFirst2, `\*`)
			require.Error(t, err)
			assert.Nil(t, tx)
			assert.True(t, IsMalformed(err))
		})
	}
}

func TestCoverageClaim(t *testing.T) {
	var cv coverage
	assert.True(t, cv.claim(40, 60))
	assert.True(t, cv.claim(0, 20))
	assert.True(t, cv.claim(20, 40))
	assert.Equal(t, coverage{{0, 60}}, cv)

	assert.False(t, cv.claim(59, 61))
	assert.False(t, cv.claim(0, 1))
	assert.True(t, cv.claim(80, 100))
	assert.True(t, cv.claim(60, 80))
	assert.Equal(t, coverage{{0, 100}}, cv)
}

func TestReassemblerSequentialIgnoresDisplacement(t *testing.T) {
	// Arrival order differs from the declared displacements.
	frames := []frame{
		{totalData: 6, data: []byte{1, 2}, dataDisp: 2},
		{totalData: 6, data: []byte{3, 4}, dataDisp: 0},
		{totalData: 6, data: []byte{5, 6}, dataDisp: 4},
	}
	feed := func(mode ReassemblyMode) []byte {
		ra := newReassembler(mode, DefaultMaxTransactionSize)
		for i, f := range frames {
			resp, err := parseResponse(trans2Frame(f).Body)
			require.NoError(t, err)
			done, err := ra.add(resp)
			require.NoError(t, err)
			assert.Equal(t, i == len(frames)-1, done, "frame %d", i)
		}
		return ra.result().data
	}

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, feed(ReassembleSequential))
	assert.Equal(t, []byte{3, 4, 1, 2, 5, 6}, feed(ReassembleByDisplacement))
}

func TestReassemblerCountWithoutOffset(t *testing.T) {
	resp := &response{TotalDataCount: 4, DataCount: 4}
	_, err := newReassembler(ReassembleByDisplacement, 100).add(resp)
	assert.Error(t, err)
}
