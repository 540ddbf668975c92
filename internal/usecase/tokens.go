package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// nameSeparator joins words in canonical product names ("Sony_Cyber-shot_DSC-W310").
const nameSeparator = "_"

// accessoryKeyword marks the models that follow it as compatibility targets.
// It must be a whole token and matches in any case ("For", "FOR"). The
// reference program matched a lowercase "for" anywhere, including inside
// words such as "Comfort", and so rejected listings this one accepts.
const accessoryKeyword = "for"

// token is a whitespace-delimited word with its byte span in the source text.
type token struct {
	text       string
	start, end int
}

// tokenizedTitle is a listing title split on whitespace.
type tokenizedTitle struct {
	tokens []token
	length int
}

// tokenizeTitle NFC-normalizes a title and splits it on Unicode whitespace.
func tokenizeTitle(title string) tokenizedTitle {
	s := norm.NFC.String(title)
	var tokens []token
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, token{text: s[start:i], start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: s[start:], start: start, end: len(s)})
	}
	return tokenizedTitle{tokens: tokens, length: len(s)}
}

// phrase splits a product value into the words that must appear in a title.
func phrase(value string) []string {
	return strings.Fields(norm.NFC.String(value))
}

// occurrences returns the token indexes at which words appear in the title
// with whitespace on both sides. A phrase touching the start or end of the
// title is not bounded and does not count.
func (t tokenizedTitle) occurrences(words []string) []int {
	n := len(words)
	if n == 0 || n > len(t.tokens) {
		return nil
	}
	var out []int
	for i := 0; i+n <= len(t.tokens); i++ {
		if !t.equalAt(i, words) {
			continue
		}
		first, last := t.tokens[i], t.tokens[i+n-1]
		if first.start == 0 || last.end == t.length {
			continue
		}
		out = append(out, i)
	}
	return out
}

// contains reports whether words has a bounded occurrence in the title.
func (t tokenizedTitle) contains(words []string) bool {
	return len(t.occurrences(words)) > 0
}

func (t tokenizedTitle) equalAt(i int, words []string) bool {
	for j, w := range words {
		if t.tokens[i+j].text != w {
			return false
		}
	}
	return true
}

// firstKeyword returns the index of the first token equal to kw ignoring
// case, or -1.
func (t tokenizedTitle) firstKeyword(kw string) int {
	for i, tok := range t.tokens {
		if strings.EqualFold(tok.text, kw) {
			return i
		}
	}
	return -1
}

// spacedName converts a canonical name into the words it is written with in titles.
func spacedName(name string) []string {
	return phrase(strings.ReplaceAll(name, nameSeparator, " "))
}

// nameLength is the character count of a canonical name.
func nameLength(name string) int {
	return utf8.RuneCountInString(name)
}
