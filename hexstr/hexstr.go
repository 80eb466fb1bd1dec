// Package hexstr converts text to and from the hex forms the radio module
// uses for SMS addresses and bodies.
package hexstr

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// ErrInvalid is returned for hex text that cannot be decoded.
var ErrInvalid = errors.New("hexstr: invalid hex text")

var ucs2 = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// EncodeUCS2 renders s as uppercase hex, four digits per UTF-16 code unit.
func EncodeUCS2(s string) string {
	// Invalid UTF-8 is replaced with U+FFFD, the encoder never fails.
	b, _ := ucs2.NewEncoder().Bytes([]byte(s))
	return strings.ToUpper(hex.EncodeToString(b))
}

// DecodeUCS2 reverses EncodeUCS2.
func DecodeUCS2(h string) (string, error) {
	if len(h)%4 != 0 {
		return "", fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalid, len(h))
	}
	b, err := hex.DecodeString(h)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	s, err := ucs2.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return string(s), nil
}
