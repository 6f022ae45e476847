// Package utf16le converts between Go strings and the UTF-16LE text used for
// names, patterns and paths on the SMB wire.
package utf16le

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrEmpty is returned when an encode or decode produces no characters.
var ErrEmpty = errors.New("utf16le: empty result")

var codec encoding.Encoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Encode converts s to UTF-16LE without a terminator.
func Encode(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrEmpty
	}
	out, err := codec.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeTerminated converts s to UTF-16LE followed by a two-byte NUL, the
// form SMB1 expects for search patterns and paths.
func EncodeTerminated(s string) ([]byte, error) {
	out, err := Encode(s)
	if err != nil {
		return nil, err
	}
	return append(out, 0, 0), nil
}

// Decode converts UTF-16LE bytes to a Go string. Trailing NUL characters are
// stripped; an odd trailing byte is ignored. Unpaired surrogates decode to
// U+FFFD. ErrEmpty is returned when nothing remains.
func Decode(b []byte) (string, error) {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	if len(b) == 0 {
		return "", ErrEmpty
	}
	out, err := codec.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	s := strings.TrimRight(string(out), "\x00")
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}
