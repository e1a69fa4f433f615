package scoring

import (
	"atscore/internal/lexicon"
	"atscore/internal/types"
)

type summaryScorer struct {
	store       *lexicon.Store
	weight      float64
	commendable float64
}

func (summaryScorer) Kind() types.SectionKind { return types.SectionSummary }

func (sc summaryScorer) Score(doc *Document) (types.SectionScore, bool) {
	s := newSheet(types.SectionSummary)
	f := doc.Summary

	if f.WordCount == 0 {
		s.issue(types.SeverityMajor, "Missing professional summary")
		s.suggest(types.SeverityMajor, "Add a 2-4 sentence summary of your experience and focus")
		return s.result(sc.weight, sc.commendable), true
	}

	words := f.WordCount
	switch {
	case words >= 30 && words <= 75:
		s.add(40)
		s.strength("Summary length is concise and informative")
	case (words >= 20 && words < 30) || (words > 75 && words <= 100):
		s.add(30)
		if words < 30 {
			s.suggest(types.SeverityMinor, "Expand the summary slightly (%d words; aim for 30-75)", words)
		} else {
			s.suggest(types.SeverityMinor, "Tighten the summary (%d words; aim for 30-75)", words)
		}
	case words < 20:
		s.add(15)
		s.issue(types.SeverityMinor, "Summary is too short (%d words)", words)
		s.suggest(types.SeverityMinor, "Describe your experience, focus and strongest skills in the summary")
	default:
		s.add(20)
		s.issue(types.SeverityMinor, "Summary is too long (%d words)", words)
		s.suggest(types.SeverityMinor, "Cut the summary to its strongest 2-4 sentences")
	}

	hits := make(map[string]struct{})
	for _, term := range f.Terms {
		if sc.store.IsTechnical(term.Text) || sc.store.IsSoft(term.Text) {
			hits[term.Text] = struct{}{}
		}
	}
	switch {
	case len(hits) >= 3:
		s.add(20)
		s.strength("Summary is rich in relevant keywords")
	case len(hits) >= 1:
		s.add(12)
		s.suggest(types.SeverityMinor, "Mention a few more of your core skills in the summary")
	default:
		s.suggest(types.SeverityMajor, "Include core technical or professional skills in the summary")
	}

	if f.FirstPerson {
		s.add(5)
		s.issue(types.SeverityMinor, "Summary uses first-person pronouns")
		s.suggest(types.SeverityMinor, "Write the summary without 'I', 'me' or 'my'")
	} else {
		s.add(20)
	}

	if f.Quantified {
		s.add(20)
		s.strength("Summary includes a quantified claim")
	} else {
		s.suggest(types.SeverityMinor, "Add a concrete number to the summary, such as years of experience or impact")
	}

	return s.result(sc.weight, sc.commendable), true
}
