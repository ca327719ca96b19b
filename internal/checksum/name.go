package checksum

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalName flattens an entry's relative name into the form used for
// both recording and verification. The same function must be applied on
// both sides of the round trip or lookups silently miss.
//
// Rules: NFC normalisation, backslashes become forward slashes, leading
// "./" and "/" are stripped. Names remain case-sensitive.
func CanonicalName(name string) string {
	s := norm.NFC.String(name)
	s = strings.ReplaceAll(s, `\`, "/")
	for strings.HasPrefix(s, "./") {
		s = s[2:]
	}
	return strings.TrimPrefix(s, "/")
}
