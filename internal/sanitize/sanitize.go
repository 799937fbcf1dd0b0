// Package sanitize normalizes untrusted post text for an HTML-rendering
// target that must also round-trip through the legacy Shift_JIS wire format.
package sanitize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/enescakir/emoji"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// trim set: space, full-width space, tab, newline variants
const cutset = " 　\t\r\n"

// Content canonicalizes emoji shortcodes, normalizes newlines, trims edge
// whitespace, escapes HTML metacharacters and re-escapes runes the legacy
// charset cannot carry. Escaping is idempotent: '&' is left alone, so already
// produced entities survive a second pass.
func Content(text string) string {
	text = emoji.Parse(text)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.Trim(text, cutset)

	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	text = strings.ReplaceAll(text, `"`, "&quot;")

	return escapeUnencodable(text)
}

// Title is single-line: beyond Content, raw newlines are dropped and any
// numeric reference encoding a newline is removed.
func Title(text string) string {
	text = Content(text)
	text = strings.ReplaceAll(text, "\n", "")
	text = strings.ReplaceAll(text, "&#10;", "")
	text = strings.ReplaceAll(text, "&#xA;", "")
	text = strings.ReplaceAll(text, "&#xa;", "")
	return text
}

// Name additionally neutralizes the glyphs reserved for trusted identities:
// the trip marker diamond and the cap star are swapped for their hollow
// counterparts so untrusted posters cannot impersonate either.
func Name(text string) string {
	text = Content(text)
	text = strings.ReplaceAll(text, "◆", "◇")
	text = strings.ReplaceAll(text, "★", "☆")
	return text
}

// escapeUnencodable rewrites runes with no Shift_JIS mapping as numeric
// character references so the legacy renderer can always encode the result.
func escapeUnencodable(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	enc := japanese.ShiftJIS.NewEncoder()
	for _, r := range text {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if _, _, err := transform.String(enc, string(r)); err != nil {
			fmt.Fprintf(&b, "&#%d;", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// StripNumericReferences removes well-formed numeric character references
// (&#digits; and &#xHEX;). Sequences without a terminating ';' are literal
// text, not references, and stay untouched: the escaping step can produce
// such partial matches and they must not be mangled further.
func StripNumericReferences(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		if end, ok := referenceEnd(text, i); ok {
			i = end
			continue
		}
		b.WriteByte(text[i])
		i++
	}
	return b.String()
}

// DisplayLength counts displayable characters: each well-formed numeric
// reference renders as a single character.
func DisplayLength(text string) int {
	n := 0
	for i := 0; i < len(text); {
		if end, ok := referenceEnd(text, i); ok {
			n++
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		n++
		i += size
	}
	return n
}

// referenceEnd reports whether a well-formed numeric reference starts at i,
// returning the index just past its ';'.
func referenceEnd(text string, i int) (int, bool) {
	if i+2 >= len(text) || text[i] != '&' || text[i+1] != '#' {
		return 0, false
	}
	j := i + 2
	hex := false
	if j < len(text) && (text[j] == 'x' || text[j] == 'X') {
		hex = true
		j++
	}
	start := j
	for j < len(text) && isRefDigit(text[j], hex) {
		j++
	}
	if j == start || j >= len(text) || text[j] != ';' {
		return 0, false
	}
	return j + 1, true
}

func isRefDigit(c byte, hex bool) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if !hex {
		return false
	}
	return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
