package utf16le

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	out, err := Encode("a.b")
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 0, '.', 0, 'b', 0}, out)

	_, err = Encode("")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestEncodeTerminated(t *testing.T) {
	out, err := EncodeTerminated(`\*`)
	require.NoError(t, err)
	assert.Equal(t, []byte{'\\', 0, '*', 0, 0, 0}, out)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"ascii", []byte{'f', 0, 'o', 0, 'o', 0}, "foo"},
		{"trailing nul", []byte{'x', 0, 0, 0}, "x"},
		{"odd byte ignored", []byte{'x', 0, 'y'}, "x"},
		{"non-ascii", []byte{0xE9, 0x00, 0x3A, 0x26}, "é☺"},
		{"surrogate pair", []byte{0x3D, 0xD8, 0x00, 0xDE}, "😀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	for _, in := range [][]byte{nil, {}, {0}, {0, 0}, {0, 0, 0, 0}} {
		_, err := Decode(in)
		assert.ErrorIs(t, err, ErrEmpty, "input % X", in)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"report.docx", "Ünïcødé", "目录", `\dir\*`} {
		enc, err := EncodeTerminated(s)
		require.NoError(t, err)
		got, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}
