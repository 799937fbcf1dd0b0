// Package emoji decides whether a reaction glyph is usable as-is, usable
// after emoji-presentation normalization, or not an emoji at all.
package emoji

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/forPelevin/gomoji"
)

//go:embed variation-sequences.txt
var variationSequences string

const (
	textSelector  = '︎'
	emojiSelector = '️'
)

// Validity is the three-way outcome of Check. The ordering of the checks is
// part of the contract: a text-style base character is reported as TextStyle
// even though the fully-qualified form would also pass the plain emoji check.
type Validity int

const (
	Invalid Validity = iota
	Valid
	TextStyle
)

// Check classifies s. For TextStyle the returned string is the normalized
// emoji-presentation form (base character + U+FE0F); for Valid it is s
// itself; for Invalid it is empty.
func Check(s string) (Validity, string) {
	runes := []rune(s)
	if len(runes) == 0 {
		return Invalid, ""
	}

	base := runes[0]
	if isEmoji(string(base)) && strings.Contains(variationSequences, fmt.Sprintf("%X FE0E", base)) {
		return TextStyle, string(base) + string(emojiSelector)
	}
	if isEmoji(s) {
		return Valid, s
	}
	return Invalid, ""
}

// isEmoji reports whether s as a whole is a known emoji. The gomoji table
// stores fully-qualified forms, so bare base characters are retried with the
// presentation selector appended and vice versa.
func isEmoji(s string) bool {
	if s == "" {
		return false
	}
	if _, err := gomoji.GetInfo(s); err == nil {
		return true
	}
	if stripped := strings.TrimRight(s, string(emojiSelector)+string(textSelector)); stripped != s {
		if _, err := gomoji.GetInfo(stripped); err == nil {
			return true
		}
	} else if _, err := gomoji.GetInfo(s + string(emojiSelector)); err == nil {
		return true
	}
	return false
}
