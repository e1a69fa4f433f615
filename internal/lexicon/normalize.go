package lexicon

import (
	"regexp"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+#.\-]*`)

// Token is a raw word taken from a text together with its byte span.
type Token struct {
	Text  string
	Start int
	End   int
}

// Tokenize splits text into raw word tokens. Trailing dots and hyphens are
// trimmed so "Kubernetes." and "Kubernetes" produce the same token, while
// inner punctuation ("node.js", "c++", "ci-cd") is kept.
func Tokenize(text string) []Token {
	spans := tokenPattern.FindAllStringIndex(text, -1)
	tokens := make([]Token, 0, len(spans))
	for _, span := range spans {
		word := strings.TrimRight(text[span[0]:span[1]], ".-")
		if word == "" {
			continue
		}
		tokens = append(tokens, Token{Text: word, Start: span[0], End: span[0] + len(word)})
	}
	return tokens
}

// Lemma reduces an already lower-cased word to a light stem. Tokens of three
// letters or fewer and tokens containing anything but letters are returned
// unchanged. The rules are deliberately small: they only need to make the
// same word in different inflections land on one form, e.g. manage,
// manages, managed and managing all become "manag".
func Lemma(word string) string {
	if len(word) <= 3 || !isLetters(word) {
		return word
	}

	w := word
	switch {
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		w = w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"):
		w = w[:len(w)-2]
	case hasAnySuffix(w, "ches", "shes", "xes", "zes"):
		w = w[:len(w)-2]
	case strings.HasSuffix(w, "s") && !hasAnySuffix(w, "ss", "us", "is"):
		w = w[:len(w)-1]
	case strings.HasSuffix(w, "ing") && len(w) > 5 && hasVowel(w[:len(w)-3]):
		w = undouble(w[:len(w)-3])
	case strings.HasSuffix(w, "ed") && len(w) > 4 && hasVowel(w[:len(w)-2]):
		w = undouble(w[:len(w)-2])
	}

	if len(w) > 4 && strings.HasSuffix(w, "e") {
		w = w[:len(w)-1]
	}
	return w
}

func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

func hasVowel(s string) bool {
	return strings.ContainsAny(s, "aeiouy")
}

// undouble turns "plann" into "plan" and "debugg" into "debug", keeping the
// doubled letters English normally keeps ("install", "process", "buzz").
func undouble(s string) string {
	n := len(s)
	if n < 3 || s[n-1] != s[n-2] {
		return s
	}
	switch s[n-1] {
	case 'l', 's', 'z':
		return s
	}
	if strings.IndexByte("aeiou", s[n-1]) >= 0 {
		return s
	}
	return s[:n-1]
}
