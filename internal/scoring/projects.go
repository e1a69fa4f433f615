package scoring

import (
	"atscore/internal/types"
)

type projectsScorer struct {
	weight        float64
	commendable   float64
	diminishAfter int
}

func (projectsScorer) Kind() types.SectionKind { return types.SectionProjects }

// Score leaves the section out entirely when the resume lists no projects.
func (p projectsScorer) Score(doc *Document) (types.SectionScore, bool) {
	projects := doc.Resume.Projects
	if len(projects) == 0 {
		return types.SectionScore{}, false
	}

	s := newSheet(types.SectionProjects)
	scores := make([]float64, len(projects))
	var withLinks, withTech int
	for i, proj := range projects {
		label := entryLabel(proj.Name, "", i, "Project")
		sentences := doc.Projects[i]
		var points float64

		if !blank(proj.Name) {
			points += 10
		} else {
			s.issue(types.SeverityMajor, "Project #%d has no name", i+1)
		}

		if len(sentences) > 0 {
			points += 15
			st := statsOf(sentences)
			points += ratio(st.action, st.count) * 20
			points += ratio(st.quantified, st.count) * 20
		} else {
			s.issue(types.SeverityMinor, "%s has no description", label)
			s.suggest(types.SeverityMinor, "Describe the purpose of %s and your role in it", label)
		}

		if len(nonBlank(proj.Technologies)) > 0 {
			points += 20
			withTech++
		} else {
			s.suggest(types.SeverityMinor, "List the technologies used in %s", label)
		}

		if !blank(proj.Link) {
			points += 15
			withLinks++
		} else {
			s.suggest(types.SeverityMinor, "Add a link to %s (repository or live demo)", label)
		}

		scores[i] = points
	}

	if withTech == len(projects) {
		s.strength("Technologies clearly listed for every project")
	}
	if withLinks*2 >= len(projects) {
		s.strength("Project links provided for verification")
	}

	return s.resultOf(diminishingMean(scores, p.diminishAfter), p.weight, p.commendable), true
}
