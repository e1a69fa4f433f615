package lexicon

import (
	"bytes"
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"atscore/internal/errors"

	"github.com/spf13/viper"
)

//go:embed default.yaml
var defaultDocument []byte

type synonymEntry struct {
	Alias     string `mapstructure:"alias"`
	Canonical string `mapstructure:"canonical"`
}

type requirementMarkers struct {
	Mandatory []string `mapstructure:"mandatory"`
	Preferred []string `mapstructure:"preferred"`
}

// document is the on-disk shape of a lexicon file.
type document struct {
	Version        string              `mapstructure:"version"`
	Technical      []string            `mapstructure:"technical"`
	Soft           []string            `mapstructure:"soft"`
	ActionVerbs    map[string][]string `mapstructure:"actionVerbs"`
	Filler         []string            `mapstructure:"filler"`
	Stopwords      []string            `mapstructure:"stopwords"`
	Noise          []string            `mapstructure:"noise"`
	Pronouns       []string            `mapstructure:"pronouns"`
	Phrases        []string            `mapstructure:"phrases"`
	CommonKeywords []string            `mapstructure:"commonKeywords"`
	Synonyms       []synonymEntry      `mapstructure:"synonyms"`
	Requirements   requirementMarkers  `mapstructure:"requirements"`
}

// Default returns the store built from the embedded tables.
func Default() (*Store, error) {
	return Parse(defaultDocument)
}

// DefaultDocument returns a copy of the embedded YAML, e.g. as a starting
// point for an override file.
func DefaultDocument() []byte {
	return bytes.Clone(defaultDocument)
}

// LoadFile builds a store from a YAML lexicon file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read lexicon file", err).
			WithContext("path", path)
	}
	store, err := Parse(data)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return store, nil
}

// Parse decodes a YAML lexicon document and builds a normalized store.
func Parse(data []byte) (*Store, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeLexiconLoad, "failed to parse lexicon document", err)
	}

	var doc document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeLexiconLoad, "failed to decode lexicon document", err)
	}

	if err := doc.validate(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeLexiconLoad, "invalid lexicon document", err)
	}
	return build(&doc), nil
}

func (d *document) validate() error {
	if strings.TrimSpace(d.Version) == "" {
		return fmt.Errorf("version is required")
	}
	if len(d.Technical) == 0 {
		return fmt.Errorf("technical terms are required")
	}
	if len(d.ActionVerbs) == 0 {
		return fmt.Errorf("at least one action verb category is required")
	}
	for i, syn := range d.Synonyms {
		if strings.TrimSpace(syn.Alias) == "" || strings.TrimSpace(syn.Canonical) == "" {
			return fmt.Errorf("synonym %d needs both alias and canonical", i)
		}
	}
	return nil
}

func build(doc *document) *Store {
	s := &Store{
		version:     strings.TrimSpace(doc.Version),
		synonyms:    make(map[string][]string, len(doc.Synonyms)),
		phrases:     make(map[string]struct{}),
		actionVerbs: make(map[string]string),
		labels:      make(map[string]string),
	}

	// Synonyms go first: every other table is normalized through them.
	for _, syn := range doc.Synonyms {
		var words []string
		for _, tok := range Tokenize(syn.Canonical) {
			words = append(words, Lemma(strings.ToLower(tok.Text)))
		}
		if len(words) == 0 {
			continue
		}
		s.synonyms[strings.ToLower(strings.TrimSpace(syn.Alias))] = words
		s.addPhrase(words)
	}

	s.technical, _ = s.table(doc.Technical)
	s.soft, _ = s.table(doc.Soft)
	s.filler, _ = s.table(doc.Filler)
	s.stopwords, _ = s.table(doc.Stopwords)
	s.noise, _ = s.table(doc.Noise)
	s.pronouns, _ = s.table(doc.Pronouns)
	s.mandatory, _ = s.table(doc.Requirements.Mandatory)
	s.preferred, _ = s.table(doc.Requirements.Preferred)
	s.table(doc.Phrases)
	_, s.commonKeywords = s.table(doc.CommonKeywords)

	// Sorted so a verb listed under two categories always lands in the same one.
	for _, category := range slices.Sorted(maps.Keys(doc.ActionVerbs)) {
		for _, verb := range doc.ActionVerbs[category] {
			if norm := s.normalizeEntry(verb); norm != "" {
				s.actionVerbs[norm] = strings.ToLower(category)
				if _, ok := s.labels[norm]; !ok {
					s.labels[norm] = strings.TrimSpace(verb)
				}
			}
		}
	}
	return s
}

// table normalizes entries into a set, registering multi-word entries as
// phrases. It also returns the distinct normalized entries in input order.
func (s *Store) table(entries []string) (map[string]struct{}, []string) {
	set := make(map[string]struct{}, len(entries))
	order := make([]string, 0, len(entries))
	for _, entry := range entries {
		norm := s.normalizeEntry(entry)
		if norm == "" {
			continue
		}
		if _, dup := set[norm]; dup {
			continue
		}
		set[norm] = struct{}{}
		order = append(order, norm)
		if _, ok := s.labels[norm]; !ok {
			s.labels[norm] = strings.TrimSpace(entry)
		}
	}
	return set, order
}

func (s *Store) normalizeEntry(entry string) string {
	var words []string
	for _, tok := range Tokenize(entry) {
		words = append(words, s.Normalize(tok.Text)...)
	}
	s.addPhrase(words)
	return strings.Join(words, " ")
}

func (s *Store) addPhrase(words []string) {
	if len(words) < 2 {
		return
	}
	s.phrases[strings.Join(words, " ")] = struct{}{}
	if len(words) > s.maxPhraseWords {
		s.maxPhraseWords = len(words)
	}
}
