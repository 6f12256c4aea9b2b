// Package emoji finds emoji in message text. Each user-perceived character
// (grapheme cluster) counts once, so skin tones, ZWJ families, flags and
// keycaps are not split into parts.
package emoji

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

const (
	variationSelector = "\uFE0F"
	keycap            = "\u20E3"
)

// List returns every emoji in s in order of appearance.
func List(s string) []string {
	var out []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		cluster := gr.Str()
		if IsEmoji(cluster) {
			out = append(out, cluster)
		}
	}
	return out
}

// Count returns the number of emoji in s.
func Count(s string) int {
	n := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		if IsEmoji(gr.Str()) {
			n++
		}
	}
	return n
}

// IsEmoji reports whether a single grapheme cluster is an emoji. Clusters
// missing from the emoji table, such as text-style symbols written without
// VS16 or modifier sequences, are judged by their base character.
func IsEmoji(cluster string) bool {
	if cluster == "" {
		return false
	}
	if known(cluster) || strings.HasSuffix(cluster, keycap) {
		return true
	}
	first, size := utf8.DecodeRuneInString(cluster)
	if first == utf8.RuneError || first <= unicode.MaxASCII {
		return false
	}
	base := cluster[:size]
	return known(base) || known(base+variationSelector)
}

func known(s string) bool {
	return len(gomoji.FindAll(s)) > 0
}
