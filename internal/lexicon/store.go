// Package lexicon holds the versioned keyword tables the scoring engine
// reads: technical and soft-skill terms, action verbs, filler phrases, stop
// words, synonyms and requirement markers.
//
// A Store is immutable once built. Share one Store between any number of
// goroutines; load a new one to change the tables.
package lexicon

import (
	"slices"
	"strings"
)

// Requirement is how strongly a job-description sentence asks for something.
type Requirement int

const (
	RequirementNone Requirement = iota
	RequirementPreferred
	RequirementMandatory
)

// Term is a normalized word or multi-word phrase found in a text.
type Term struct {
	// Text is the normalized form; words of a phrase are joined by one space.
	Text string
	// Surface is the spelling used in the source text.
	Surface string
	// Position is the index of the first raw token of the term.
	Position int
}

// Store is an immutable, normalized view of one lexicon document.
type Store struct {
	version string

	technical      map[string]struct{}
	soft           map[string]struct{}
	filler         map[string]struct{}
	stopwords      map[string]struct{}
	noise          map[string]struct{}
	pronouns       map[string]struct{}
	mandatory      map[string]struct{}
	preferred      map[string]struct{}
	actionVerbs    map[string]string
	synonyms       map[string][]string
	phrases        map[string]struct{}
	maxPhraseWords int

	commonKeywords []string
	labels         map[string]string
}

// Version identifies the tables; it is copied into every report.
func (s *Store) Version() string { return s.version }

// Normalize maps one raw token to its normalized words. A synonym alias can
// expand to several words ("ml" becomes "machin learn").
func (s *Store) Normalize(raw string) []string {
	w := strings.ToLower(strings.TrimRight(raw, ".-"))
	if w == "" {
		return nil
	}
	if canonical, ok := s.synonyms[w]; ok {
		return canonical
	}
	return []string{Lemma(w)}
}

// NormalizePhrase normalizes a free-form term such as a table entry or a
// skill item into the same form Terms produces.
func (s *Store) NormalizePhrase(phrase string) string {
	var words []string
	for _, tok := range Tokenize(phrase) {
		words = append(words, s.Normalize(tok.Text)...)
	}
	return strings.Join(words, " ")
}

type piece struct {
	word  string
	token int
}

// Terms tokenizes text and returns its normalized terms in order. Known
// multi-word phrases are merged greedily, longest first.
func (s *Store) Terms(text string) []Term {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	pieces := make([]piece, 0, len(tokens))
	for i, tok := range tokens {
		for _, w := range s.Normalize(tok.Text) {
			pieces = append(pieces, piece{word: w, token: i})
		}
	}

	terms := make([]Term, 0, len(pieces))
	for i := 0; i < len(pieces); {
		n := 1
		for size := min(s.maxPhraseWords, len(pieces)-i); size >= 2; size-- {
			if _, ok := s.phrases[joinWords(pieces[i:i+size])]; ok {
				n = size
				break
			}
		}

		first, last := tokens[pieces[i].token], tokens[pieces[i+n-1].token]
		terms = append(terms, Term{
			Text:     joinWords(pieces[i : i+n]),
			Surface:  strings.Join(strings.Fields(text[first.Start:last.End]), " "),
			Position: pieces[i].token,
		})
		i += n
	}
	return terms
}

func joinWords(pieces []piece) string {
	if len(pieces) == 1 {
		return pieces[0].word
	}
	words := make([]string, len(pieces))
	for i, p := range pieces {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

func (s *Store) IsTechnical(term string) bool { return has(s.technical, term) }
func (s *Store) IsSoft(term string) bool      { return has(s.soft, term) }
func (s *Store) IsFiller(term string) bool    { return has(s.filler, term) }
func (s *Store) IsStopword(term string) bool  { return has(s.stopwords, term) }
func (s *Store) IsNoise(term string) bool     { return has(s.noise, term) }
func (s *Store) IsPronoun(term string) bool   { return has(s.pronouns, term) }

// IsMarker reports whether term is a requirement marker such as "must" or
// "nice to have". Markers never count as keywords.
func (s *Store) IsMarker(term string) bool {
	return has(s.mandatory, term) || has(s.preferred, term)
}

// ActionVerbCategory returns the category of an action verb.
func (s *Store) ActionVerbCategory(term string) (string, bool) {
	category, ok := s.actionVerbs[term]
	return category, ok
}

func (s *Store) IsActionVerb(term string) bool {
	_, ok := s.actionVerbs[term]
	return ok
}

// RequirementLevel returns the strongest requirement marker among terms.
func (s *Store) RequirementLevel(terms []Term) Requirement {
	level := RequirementNone
	for _, t := range terms {
		if has(s.mandatory, t.Text) {
			return RequirementMandatory
		}
		if has(s.preferred, t.Text) {
			level = RequirementPreferred
		}
	}
	return level
}

// CommonKeywords returns the normalized general keywords most resumes are
// expected to mention.
func (s *Store) CommonKeywords() []string { return slices.Clone(s.commonKeywords) }

// Label returns the spelling a term had in the lexicon document, or the
// normalized term itself when it is not a table entry.
func (s *Store) Label(term string) string {
	if label, ok := s.labels[term]; ok {
		return label
	}
	return term
}

// Stats reports table sizes.
func (s *Store) Stats() map[string]int {
	return map[string]int{
		"technical":   len(s.technical),
		"soft":        len(s.soft),
		"actionVerbs": len(s.actionVerbs),
		"filler":      len(s.filler),
		"stopwords":   len(s.stopwords),
		"noise":       len(s.noise),
		"synonyms":    len(s.synonyms),
		"phrases":     len(s.phrases),
	}
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
