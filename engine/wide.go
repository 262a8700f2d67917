package engine

import (
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeWide converts s to the NUL-terminated UTF-16LE byte layout the
// native engine expects for wide-string parameters.
func EncodeWide(s string) []byte {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		// The encoder replaces unrepresentable runes rather than fail;
		// an error here means a broken input string. Send the empty
		// wide string instead of a truncated one.
		b = nil
	}
	return append(b, 0, 0)
}

// DecodeWide converts a UTF-16LE byte buffer from the native engine to
// a string, dropping the trailing NUL terminator if present.
func DecodeWide(b []byte) string {
	if len(b) >= 2 && b[len(b)-1] == 0 && b[len(b)-2] == 0 {
		b = b[:len(b)-2]
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return string(out)
}
