package scoring

import (
	"fmt"
	"math"
	"strings"

	"atscore/internal/textanalysis"
	"atscore/internal/types"
)

// SectionScorer rates one section of an analyzed resume on a 0..100 scale.
// ok is false when the section is optional and absent, in which case it is
// left out of the report and of the weighted average.
type SectionScorer interface {
	Kind() types.SectionKind
	Score(doc *Document) (score types.SectionScore, ok bool)
}

// Bullet is one non-blank line of text with its features.
type Bullet struct {
	Text     string
	Features textanalysis.Features
}

// Document is a resume with its text already analyzed, shared by every
// scorer of one Score call.
type Document struct {
	Resume     *types.Resume
	Summary    textanalysis.Features
	Experience [][]Bullet // bullets per experience entry
	Projects   [][]Bullet // description sentences per project
}

func analyzeDocument(a *textanalysis.Analyzer, r *types.Resume) *Document {
	doc := &Document{
		Resume:     r,
		Summary:    a.Analyze(r.Summary),
		Experience: make([][]Bullet, len(r.Experience)),
		Projects:   make([][]Bullet, len(r.Projects)),
	}
	for i, exp := range r.Experience {
		doc.Experience[i] = analyzeLines(a, exp.Description)
	}
	for i, p := range r.Projects {
		doc.Projects[i] = analyzeLines(a, textanalysis.SplitSentences(p.Description))
	}
	return doc
}

func analyzeLines(a *textanalysis.Analyzer, lines []string) []Bullet {
	var bullets []Bullet
	for _, line := range lines {
		if text := strings.TrimSpace(line); text != "" {
			bullets = append(bullets, Bullet{Text: text, Features: a.Analyze(text)})
		}
	}
	return bullets
}

// AllBullets returns every experience bullet in resume order.
func (d *Document) AllBullets() []Bullet {
	var all []Bullet
	for _, entry := range d.Experience {
		all = append(all, entry...)
	}
	return all
}

// sheet accumulates points and findings for one section.
type sheet struct {
	kind        types.SectionKind
	points      float64
	issues      []types.Finding
	suggestions []types.Finding
	strengths   []string
}

func newSheet(kind types.SectionKind) *sheet {
	return &sheet{
		kind:        kind,
		issues:      []types.Finding{},
		suggestions: []types.Finding{},
		strengths:   []string{},
	}
}

func (s *sheet) add(points float64) { s.points += points }

func (s *sheet) issue(sev types.Severity, format string, args ...any) {
	s.issues = append(s.issues, types.Finding{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

func (s *sheet) suggest(sev types.Severity, format string, args ...any) {
	s.suggestions = append(s.suggestions, types.Finding{Severity: sev, Message: fmt.Sprintf(format, args...)})
}

func (s *sheet) strength(format string, args ...any) {
	s.strengths = append(s.strengths, fmt.Sprintf(format, args...))
}

// result clamps the points and drops strengths unless the section reached
// the commendable threshold.
func (s *sheet) result(weight, commendable float64) types.SectionScore {
	score := round1(clamp(s.points, 0, 100))
	strengths := s.strengths
	if score < commendable {
		strengths = []string{}
	}
	return types.SectionScore{
		Section:     s.kind,
		Name:        s.kind.Title(),
		Score:       score,
		MaxScore:    100,
		Weight:      weight,
		Issues:      s.issues,
		Suggestions: s.suggestions,
		Strengths:   strengths,
	}
}

// resultOf scores a section whose points were computed elsewhere, such as a
// weighted mean over entries.
func (s *sheet) resultOf(points, weight, commendable float64) types.SectionScore {
	s.points = points
	return s.result(weight, commendable)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// diminishingMean averages entry scores, counting the first `after` entries
// fully and halving the weight of each entry past them.
func diminishingMean(scores []float64, after int) float64 {
	var sum, total float64
	for i, s := range scores {
		w := 1.0
		if i >= after {
			w = math.Pow(0.5, float64(i-after+1))
		}
		sum += w * s
		total += w
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

func percent(r float64) int {
	return int(math.Round(r * 100))
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// entryLabel names an entry in findings, e.g. "Backend Engineer at Acme".
func entryLabel(primary, secondary string, index int, noun string) string {
	primary, secondary = strings.TrimSpace(primary), strings.TrimSpace(secondary)
	switch {
	case primary != "" && secondary != "":
		return primary + " at " + secondary
	case primary != "":
		return primary
	case secondary != "":
		return secondary
	default:
		return fmt.Sprintf("%s #%d", noun, index+1)
	}
}
