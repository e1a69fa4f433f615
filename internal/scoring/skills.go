package scoring

import (
	"atscore/internal/lexicon"
	"atscore/internal/types"
)

type skillsScorer struct {
	store       *lexicon.Store
	weight      float64
	commendable float64
}

func (skillsScorer) Kind() types.SectionKind { return types.SectionSkills }

func (sc skillsScorer) Score(doc *Document) (types.SectionScore, bool) {
	s := newSheet(types.SectionSkills)

	var items []string
	categories := 0
	for _, group := range doc.Resume.Skills {
		groupItems := nonBlank(group.Items)
		if len(groupItems) > 0 && !blank(group.Category) {
			categories++
		}
		items = append(items, groupItems...)
	}

	if len(items) == 0 {
		s.issue(types.SeverityCritical, "Missing skills section")
		s.suggest(types.SeverityCritical, "Add a skills section grouped into categories")
		return s.result(sc.weight, sc.commendable), true
	}

	switch {
	case categories >= 2:
		s.add(20)
		s.strength("Skills are organized into %d categories", categories)
	case categories == 1:
		s.add(10)
		s.suggest(types.SeverityMinor, "Group skills into categories such as Languages, Frameworks and Tools")
	default:
		s.suggest(types.SeverityMinor, "Give your skill groups category names")
	}

	unique := make(map[string]struct{}, len(items))
	matched, technical, soft := 0, false, false
	for _, item := range items {
		norm := sc.store.NormalizePhrase(item)
		if norm == "" {
			norm = item
		}
		if _, dup := unique[norm]; dup {
			continue
		}
		unique[norm] = struct{}{}

		isTech, isSoft := sc.classify(item)
		if isTech || isSoft {
			matched++
		}
		technical = technical || isTech
		soft = soft || isSoft
	}
	count := len(unique)

	switch {
	case count == 1:
		s.add(5)
		s.issue(types.SeverityMajor, "Only one skill listed")
	case count <= 3:
		s.add(10)
		s.suggest(types.SeverityMajor, "List more of your relevant skills (8-30 works best)")
	case count <= 7:
		s.add(18)
		s.suggest(types.SeverityMinor, "Add a few more relevant skills (8-30 works best)")
	case count <= 30:
		s.add(25)
		s.strength("%d distinct skills listed", count)
	default:
		s.add(18)
		s.issue(types.SeverityMinor, "Skills list is very long (%d items)", count)
		s.suggest(types.SeverityMinor, "Keep the 20-30 skills most relevant to your target role")
	}

	dupes := len(items) - count
	s.add(15 * (1 - ratio(dupes, len(items))))
	if dupes > 0 {
		s.suggest(types.SeverityMinor, "Remove %d duplicated skill entries", dupes)
	}

	matchRate := ratio(matched, count)
	switch {
	case matchRate >= 0.5:
		s.add(25)
	case matchRate >= 0.25:
		s.add(15)
		s.suggest(types.SeverityMinor, "Use standard names for skills so ATS filters recognize them")
	case matchRate > 0:
		s.add(8)
		s.suggest(types.SeverityMajor, "Few skills use names ATS systems recognize; prefer standard terms")
	default:
		s.issue(types.SeverityMajor, "No listed skill matches commonly searched terms")
	}

	switch {
	case technical && soft:
		s.add(15)
		s.strength("Good mix of technical and interpersonal skills")
	case technical || soft:
		s.add(8)
		if technical {
			s.suggest(types.SeverityMinor, "Add soft skills such as leadership or communication")
		} else {
			s.suggest(types.SeverityMinor, "Add the technical tools and platforms you work with")
		}
	}

	return s.result(sc.weight, sc.commendable), true
}

// classify reports whether a skill item names a technical or soft-skill
// lexicon term, checking the whole item and each of its terms so
// "Python (Django)" still counts as technical.
func (sc skillsScorer) classify(item string) (technical, soft bool) {
	whole := sc.store.NormalizePhrase(item)
	technical = sc.store.IsTechnical(whole)
	soft = sc.store.IsSoft(whole)
	for _, term := range sc.store.Terms(item) {
		technical = technical || sc.store.IsTechnical(term.Text)
		soft = soft || sc.store.IsSoft(term.Text)
	}
	return technical, soft
}
