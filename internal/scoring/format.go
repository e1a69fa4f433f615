package scoring

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"atscore/internal/types"
)

const wordsPerPage = 450

// dateFamily groups date spellings that read as one consistent style.
type dateFamily int

const (
	dateYearOnly dateFamily = iota // compatible with every other family
	dateNumeric                    // 2021-03, 2021-03-15
	dateSlash                      // 03/2021
	dateShortMonth                 // Mar 2021
	dateLongMonth                  // March 2021
	datePresent
	dateUnknown
)

var (
	yearOnlyDate = regexp.MustCompile(`^\d{4}$`)
	numericDate  = regexp.MustCompile(`^\d{4}-\d{2}(?:-\d{2})?$`)
	slashDate    = regexp.MustCompile(`^\d{1,2}/\d{4}$`)
	shortMonth   = regexp.MustCompile(`(?i)^(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)\.?\s+\d{4}$`)
	longMonth    = regexp.MustCompile(`(?i)^(?:january|february|march|april|june|july|august|september|october|november|december)\s+\d{4}$`)
)

func classifyDate(raw string) dateFamily {
	d := strings.TrimSpace(raw)
	switch {
	case strings.EqualFold(d, "present") || strings.EqualFold(d, "current"):
		return datePresent
	case yearOnlyDate.MatchString(d):
		return dateYearOnly
	case numericDate.MatchString(d):
		return dateNumeric
	case slashDate.MatchString(d):
		return dateSlash
	case longMonth.MatchString(d):
		return dateLongMonth
	case shortMonth.MatchString(d):
		return dateShortMonth
	default:
		return dateUnknown
	}
}

type formatAnalyzer struct {
	cfg Config
}

type formatResult struct {
	analysis  types.FormatAnalysis
	strengths []string
}

var requiredSections = []struct {
	kind    types.SectionKind
	present func(*types.Resume) bool
}{
	{types.SectionPersonalInfo, func(r *types.Resume) bool { return !blank(r.PersonalInfo.Name) }},
	{types.SectionExperience, func(r *types.Resume) bool { return len(r.Experience) > 0 }},
	{types.SectionEducation, func(r *types.Resume) bool { return len(r.Education) > 0 }},
	{types.SectionSkills, func(r *types.Resume) bool { return hasSkillItems(r.Skills) }},
}

func hasSkillItems(skills []types.Skill) bool {
	for _, group := range skills {
		if len(nonBlank(group.Items)) > 0 {
			return true
		}
	}
	return false
}

func (fa formatAnalyzer) analyze(doc *Document) formatResult {
	r := doc.Resume
	a := types.FormatAnalysis{
		Issues:      []types.Finding{},
		Suggestions: []types.Finding{},
	}
	score := 100.0
	deduct := func(points float64, sev types.Severity, format string, args ...any) {
		score -= points
		a.Issues = append(a.Issues, types.Finding{Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	present := 0
	for _, req := range requiredSections {
		if req.present(r) {
			present++
			continue
		}
		deduct(15, types.SeverityMajor, "Missing required %s section", strings.ToLower(req.kind.Title()))
	}
	if !blank(r.Summary) {
		present++
	}
	a.HasClearSections = present >= 4

	a.SectionOrderFollowed = followsCanonicalOrder(r.SectionOrder)
	if !a.SectionOrderFollowed {
		deduct(5, types.SeverityMinor, "Section order differs from the conventional order")
		a.Suggestions = append(a.Suggestions, types.Finding{
			Severity: types.SeverityMinor,
			Message:  "Order sections as summary, experience, education, skills, then projects",
		})
	}

	pages := float64(wordCount(r)) / wordsPerPage
	a.EstimatedPages = round1(pages)
	a.LengthAppropriate = pages >= 0.8 && pages <= 2.2
	switch {
	case pages < 0.6:
		deduct(20, types.SeverityMajor, "Resume appears too short (about %.1f pages)", pages)
	case pages < 0.8:
		deduct(10, types.SeverityMinor, "Resume is on the short side (about %.1f pages)", pages)
	case pages > 2.5:
		deduct(20, types.SeverityMajor, "Resume is too long (about %.1f pages); aim for 1-2", pages)
	case pages > 2.2:
		deduct(10, types.SeverityMinor, "Resume is slightly long (about %.1f pages)", pages)
	}

	a.BulletPointConsistency = 100
	if lengths := bulletLengths(doc); len(lengths) > 0 {
		mean, variance := meanVariance(lengths)
		a.BulletPointConsistency = round1(clamp(100-variance/100, 0, 100))
		switch {
		case mean < 30:
			deduct(5, types.SeverityMinor, "Bullet points are too short; add more detail")
		case mean > 200:
			deduct(5, types.SeverityMinor, "Bullet points are too long; be more concise")
		}
	}

	// One flat deduction whatever the cause, so filling an undated entry
	// never costs more format points than leaving it blank.
	families, unknown, undated := dateFamilies(r)
	a.DateFormatsConsistent = len(families) <= 1 && len(unknown) == 0 && undated == 0
	if !a.DateFormatsConsistent {
		switch {
		case len(unknown) > 0:
			deduct(10, types.SeverityMinor, "Unrecognized date format: %s", strings.Join(unknown, ", "))
		case len(families) > 1:
			deduct(10, types.SeverityMinor, "Dates use mixed formats")
		default:
			deduct(10, types.SeverityMinor, "%d %s no dates", undated, plural(undated, "entry has", "entries have"))
		}
		a.Suggestions = append(a.Suggestions, types.Finding{
			Severity: types.SeverityMinor,
			Message:  "Write every date the same way, e.g. 'Jan 2021' or '2021-01'",
		})
	}

	a.Score = round1(clamp(score, 0, 100))

	var res formatResult
	if a.Score >= fa.cfg.CommendableThreshold {
		if a.HasClearSections && a.SectionOrderFollowed {
			res.strengths = append(res.strengths, "Clear, conventionally ordered sections")
		}
		if a.LengthAppropriate {
			res.strengths = append(res.strengths, fmt.Sprintf("Appropriate length (about %.1f pages)", a.EstimatedPages))
		}
	}
	res.analysis = a
	return res
}

// followsCanonicalOrder reports whether the known sections of order appear
// in canonical relative order. Unknown names are ignored.
func followsCanonicalOrder(order []string) bool {
	last := types.SectionKind(-1)
	for _, name := range order {
		kind, ok := types.ParseSectionKind(name)
		if !ok {
			continue
		}
		if kind < last {
			return false
		}
		last = kind
	}
	return true
}

func wordCount(r *types.Resume) int {
	n := 0
	count := func(texts ...string) {
		for _, t := range texts {
			n += len(strings.Fields(t))
		}
	}
	p := r.PersonalInfo
	count(p.Name, p.Title, p.Location, r.Summary)
	for _, e := range r.Experience {
		count(e.Company, e.Position, e.Location)
		count(e.Description...)
	}
	for _, e := range r.Education {
		count(e.Institution, e.Degree, e.Field)
		count(e.Highlights...)
	}
	for _, s := range r.Skills {
		count(s.Category)
		count(s.Items...)
	}
	for _, pr := range r.Projects {
		count(pr.Name, pr.Description)
		count(pr.Technologies...)
	}
	return n
}

func bulletLengths(doc *Document) []float64 {
	var lengths []float64
	for _, b := range doc.AllBullets() {
		lengths = append(lengths, float64(utf8.RuneCountInString(b.Text)))
	}
	return lengths
}

func meanVariance(values []float64) (mean, variance float64) {
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, variance / float64(len(values))
}

// dateFamilies returns the distinct non-year-only styles in use, the dates
// that match no known style and the number of entries missing a required
// date: an experience start date, or any education date.
func dateFamilies(r *types.Resume) (map[dateFamily]struct{}, []string, int) {
	families := make(map[dateFamily]struct{})
	var unknown []string
	check := func(dates ...string) {
		for _, d := range dates {
			if blank(d) {
				continue
			}
			switch f := classifyDate(d); f {
			case dateYearOnly, datePresent:
			case dateUnknown:
				unknown = append(unknown, fmt.Sprintf("%q", strings.TrimSpace(d)))
			default:
				families[f] = struct{}{}
			}
		}
	}
	undated := 0
	for _, e := range r.Experience {
		if blank(e.StartDate) {
			undated++
		}
		check(e.StartDate, e.EndDate)
	}
	for _, e := range r.Education {
		if blank(e.StartDate) && blank(e.EndDate) {
			undated++
		}
		check(e.StartDate, e.EndDate)
	}
	for _, p := range r.Projects {
		check(p.StartDate, p.EndDate)
	}
	return families, unknown, undated
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
