// Package tripcode reproduces the legacy trip-code scheme: a deterministic
// short signature derived from a secret, letting an anonymous poster prove
// continuity of identity without revealing the secret.
package tripcode

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Marker prefixes every generated trip.
const Marker = "◆"

var longHexPattern = regexp.MustCompile(`^#([0-9a-fA-F]{16})([\./0-9A-Za-z]{0,2})$`)

// Generate derives the trip for a secret. The first character of tripstr is
// the marker the poster typed (# or $); everything after it is the key.
// Identical input always yields an identical trip.
func Generate(tripstr string) string {
	if tripstr == "" {
		return Marker
	}

	var trip string
	mark := tripstr[0]
	key := tripstr[1:]

	switch {
	case len([]rune(key)) >= 12 && (mark == '#' || mark == '$'):
		// 16 hex digits as the raw crypt key, trailing 0-2 chars as salt
		m := longHexPattern.FindStringSubmatch(tripstr)
		if m == nil {
			trip = "???"
			break
		}
		rawKey, _ := hex.DecodeString(m[1])
		salt := []byte(m[2] + "..")
		hash := Crypt(rawKey, [2]byte{salt[0], salt[1]})
		trip = hash[len(hash)-10:]

	case len([]rune(key)) >= 12:
		// SHA-1 variant for long secrets without the strict-hex form
		sum := sha1.Sum(legacyBytes(tripstr))
		encoded := base64.StdEncoding.EncodeToString(sum[:])[:12]
		trip = strings.ReplaceAll(encoded, "+", ".")

	default:
		tripkey := legacyBytes(key)
		salt := deriveSalt(tripkey)
		hash := Crypt(tripkey, salt)
		trip = hash[len(hash)-10:]
	}

	return Marker + trip
}

// deriveSalt takes the classic salt: bytes 2-3 of key+"H.", squashed into the
// salt alphabet by a fixed character-class substitution.
func deriveSalt(key []byte) [2]byte {
	padded := append(append([]byte{}, key...), 'H', '.')
	salt := [2]byte{padded[1], padded[2]}
	for i, c := range salt {
		salt[i] = substituteSaltChar(c)
	}
	return salt
}

func substituteSaltChar(c byte) byte {
	if c < '.' || c > 'z' {
		return '.'
	}
	const from = ":;<=>?@[\\]^_`"
	const to = "ABCDEFGabcdef"
	if i := strings.IndexByte(from, c); i >= 0 {
		return to[i]
	}
	return c
}

// legacyBytes interprets the secret in the legacy 8-bit Japanese encoding.
// Runes Shift_JIS cannot carry degrade to the substitute byte so every
// secret still maps to a stable byte sequence.
func legacyBytes(s string) []byte {
	enc := encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	out, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
