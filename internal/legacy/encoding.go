// Package legacy speaks the fixed-column text dialect served to decades-old
// desktop forum readers: SETTING.TXT, subject.txt, the per-thread .dat dump
// and the bbs.cgi form surface, all in the legacy 8-bit Japanese charset.
package legacy

import (
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ContentTypeText and ContentTypeHTML are the explicit legacy content types.
const (
	ContentTypeText = "text/plain; charset=shift_jis"
	ContentTypeHTML = "text/html; charset=shift_jis"
)

// EncodePolicy decides what happens to runes with no Shift_JIS mapping.
type EncodePolicy int

const (
	PolicyReplace EncodePolicy = iota // substitute the encoder replacement char
	PolicyIgnore                      // drop the rune
)

func ParsePolicy(s string) EncodePolicy {
	if s == "ignore" {
		return PolicyIgnore
	}
	return PolicyReplace
}

// Encode converts s to legacy bytes. It never fails: unmappable runes are
// replaced with '?' or dropped per the policy.
func Encode(s string, policy EncodePolicy) []byte {
	enc := japanese.ShiftJIS.NewEncoder()
	out, _, err := transform.Bytes(enc, []byte(s))
	if err == nil {
		return out
	}

	b := make([]byte, 0, len(s))
	for _, r := range s {
		encoded, _, err := transform.Bytes(enc, []byte(string(r)))
		if err != nil {
			if policy == PolicyReplace {
				b = append(b, '?')
			}
			continue
		}
		b = append(b, encoded...)
	}
	return b
}

// Decode converts legacy bytes back to UTF-8. Broken byte sequences decode to
// replacement characters rather than failing.
func Decode(b []byte) string {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
