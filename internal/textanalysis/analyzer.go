// Package textanalysis turns a piece of resume or job-description text into
// a bundle of features the scorers read.
package textanalysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"atscore/internal/lexicon"
)

var (
	quantifiedPattern = regexp.MustCompile(`[$€£¥]\s?\d|\d[\d,.]*\s?(?:%|percent\b|[kKmMbB]\b|x\b|\+)?`)
	passivePattern    = regexp.MustCompile(`(?i)\b(?:was|were|been|being|is|are)\s+\w+ed\b`)
	sentenceBreak     = regexp.MustCompile(`[.!?]+(?:\s+|$)|\n+`)
)

// Features describes one text. The zero value is what an empty text yields.
type Features struct {
	WordCount     int
	SentenceCount int
	CharCount     int

	// Terms are the normalized lexicon terms in order of appearance.
	Terms []lexicon.Term

	LeadingVerb          string
	StartsWithActionVerb bool
	Quantified           bool
	FillerPhrases        []string
	Passive              bool
	FirstPerson          bool
}

// Analyzer extracts Features using one lexicon. It keeps no state between
// calls.
type Analyzer struct {
	store *lexicon.Store
}

func New(store *lexicon.Store) *Analyzer {
	return &Analyzer{store: store}
}

// Analyze never fails; blank text returns the zero Features.
func (a *Analyzer) Analyze(text string) Features {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Features{}
	}

	f := Features{
		WordCount:     len(strings.Fields(trimmed)),
		SentenceCount: len(SplitSentences(trimmed)),
		CharCount:     utf8.RuneCountInString(trimmed),
		Terms:         a.store.Terms(trimmed),
		Quantified:    quantifiedPattern.MatchString(trimmed),
		Passive:       passivePattern.MatchString(trimmed),
	}

	if len(f.Terms) > 0 {
		f.LeadingVerb = f.Terms[0].Text
		f.StartsWithActionVerb = a.store.IsActionVerb(f.LeadingVerb)
	}

	for _, term := range f.Terms {
		if a.store.IsFiller(term.Text) {
			f.FillerPhrases = append(f.FillerPhrases, term.Text)
		}
		if a.store.IsPronoun(term.Text) {
			f.FirstPerson = true
		}
	}
	return f
}

// SplitSentences splits text on sentence punctuation followed by whitespace
// and on line breaks, so dotted names like "Node.js" stay intact.
func SplitSentences(text string) []string {
	var sentences []string
	for _, part := range sentenceBreak.Split(text, -1) {
		if s := strings.TrimSpace(part); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
