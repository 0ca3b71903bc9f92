// Package hexfmt converts between user-typed hex payloads and raw bytes.
package hexfmt

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrEmpty = errors.New("empty input")

// Parse accepts "48656C6C6F", "48 65 6C 6C 6F" and "0x48 0x65" forms.
func Parse(s string) ([]byte, error) {
	clean := strings.NewReplacer(" ", "", "\t", "", "0x", "", "0X", "", ",", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return nil, ErrEmpty
	}
	for _, c := range clean {
		if !isHexDigit(c) {
			return nil, fmt.Errorf("invalid hex character '%c'", c)
		}
	}
	if len(clean)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even number of digits (got %d)", len(clean))
	}
	return hex.DecodeString(clean)
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Dump renders data as space separated upper case pairs.
func Dump(data []byte) string {
	return fmt.Sprintf("% X", data)
}

// Printable replaces everything outside printable ASCII with '.'.
func Printable(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// Preview is Printable cut to at most n bytes with a trailing ellipsis.
func Preview(data []byte, n int) string {
	if len(data) <= n {
		return Printable(data)
	}
	return Printable(data[:n]) + "..."
}
