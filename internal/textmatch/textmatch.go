// Package textmatch does the accent- and case-insensitive keyword matching used to classify
// free-text inventory descriptions.
package textmatch

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold upper-cases s and strips diacritics, so "Iluminação" becomes "ILUMINACAO".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

// Words splits folded text on anything that is not a letter or digit.
func Words(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Matcher matches text against substrings and whole words. Short keywords that would hit too
// much as substrings ("AR" inside "LUMINARIA") belong in Words.
type Matcher struct {
	Substrings []string
	Words      []string
}

func (m Matcher) Match(text string) bool {
	folded := Fold(text)
	if folded == "" {
		return false
	}
	for _, k := range m.Substrings {
		if k = Fold(k); k != "" && strings.Contains(folded, k) {
			return true
		}
	}
	if len(m.Words) == 0 {
		return false
	}
	words := Words(folded)
	for _, k := range m.Words {
		k = Fold(k)
		for _, w := range words {
			if w == k {
				return true
			}
		}
	}
	return false
}

// ContainsAny reports whether the folded text contains any folded keyword.
func ContainsAny(text string, keywords []string) bool {
	return Matcher{Substrings: keywords}.Match(text)
}
