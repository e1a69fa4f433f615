package scoring

import (
	"atscore/internal/types"
)

type experienceScorer struct {
	weight        float64
	commendable   float64
	diminishAfter int
}

func (experienceScorer) Kind() types.SectionKind { return types.SectionExperience }

// bulletStats summarizes the bullets of one entry or of a whole section.
type bulletStats struct {
	count      int
	action     int
	quantified int
	weak       int // filler or passive phrasing
	filler     int
	passive    int
}

func statsOf(bullets []Bullet) bulletStats {
	st := bulletStats{count: len(bullets)}
	for _, b := range bullets {
		f := b.Features
		if f.StartsWithActionVerb {
			st.action++
		}
		if f.Quantified {
			st.quantified++
		}
		if len(f.FillerPhrases) > 0 {
			st.filler++
		}
		if f.Passive {
			st.passive++
		}
		if len(f.FillerPhrases) > 0 || f.Passive {
			st.weak++
		}
	}
	return st
}

func (st bulletStats) add(o bulletStats) bulletStats {
	return bulletStats{
		count:      st.count + o.count,
		action:     st.action + o.action,
		quantified: st.quantified + o.quantified,
		weak:       st.weak + o.weak,
		filler:     st.filler + o.filler,
		passive:    st.passive + o.passive,
	}
}

func (e experienceScorer) Score(doc *Document) (types.SectionScore, bool) {
	s := newSheet(types.SectionExperience)
	entries := doc.Resume.Experience

	if len(entries) == 0 {
		s.issue(types.SeverityCritical, "Missing experience section")
		s.suggest(types.SeverityCritical, "Add your work experience with achievement-focused bullets")
		return s.result(e.weight, e.commendable), true
	}

	scores := make([]float64, len(entries))
	var total bulletStats
	for i, exp := range entries {
		label := entryLabel(exp.Position, exp.Company, i, "Experience entry")
		st := statsOf(doc.Experience[i])
		total = total.add(st)

		var points float64
		if st.count > 0 {
			points += ratio(st.action, st.count) * 30
			points += ratio(st.quantified, st.count) * 30
			points += (1 - ratio(st.weak, st.count)) * 10
		}

		if !blank(exp.StartDate) {
			points += 10
		} else {
			s.issue(types.SeverityMajor, "%s has no start date", label)
		}
		if !blank(exp.Company) {
			points += 5
		} else {
			s.issue(types.SeverityMajor, "Experience entry #%d is missing the company name", i+1)
		}
		if !blank(exp.Position) {
			points += 5
		} else {
			s.issue(types.SeverityMajor, "Experience entry #%d is missing the job title", i+1)
		}

		switch {
		case st.count >= 2 && st.count <= 6:
			points += 10
		case st.count == 1:
			points += 5
			s.suggest(types.SeverityMinor, "Add more bullets to %s (2-6 works best)", label)
		case st.count > 6:
			points += 7
			s.suggest(types.SeverityMinor, "Trim %s to its 4-6 strongest bullets", label)
		default:
			s.issue(types.SeverityMajor, "%s has no bullet points", label)
		}

		scores[i] = points
	}

	if total.count > 0 {
		actionRate := ratio(total.action, total.count)
		quantRate := ratio(total.quantified, total.count)

		if actionRate < 0.5 {
			s.issue(types.SeverityMajor, "Only %d%% of bullets start with an action verb", percent(actionRate))
			s.suggest(types.SeverityMinor, "Start bullets with verbs such as Led, Built, Improved or Delivered")
		} else if actionRate >= 0.8 {
			s.strength("Strong action verbs lead %d%% of bullets", percent(actionRate))
		}

		if quantRate < 0.3 {
			s.issue(types.SeverityMajor, "Only %d of %d bullets include a measurable result", total.quantified, total.count)
			s.suggest(types.SeverityMajor, "Quantify achievements with numbers, percentages or amounts")
		} else if quantRate >= 0.6 {
			s.strength("%d%% of achievements are quantified", percent(quantRate))
		}

		if total.filler > 0 {
			s.issue(types.SeverityMinor, "Weak phrases such as 'responsible for' appear in %d bullets", total.filler)
			s.suggest(types.SeverityMinor, "Replace duty descriptions with the outcome you delivered")
		}
		if total.passive > 0 {
			s.suggest(types.SeverityMinor, "Rewrite %d passive-voice bullets in active voice", total.passive)
		}
	}

	if len(entries) > e.diminishAfter {
		s.suggest(types.SeverityMinor, "Consider condensing roles older than your most recent %d", e.diminishAfter)
	}
	if len(entries) > 1 {
		s.strength("%d roles show career progression", len(entries))
	}

	return s.resultOf(diminishingMean(scores, e.diminishAfter), e.weight, e.commendable), true
}
