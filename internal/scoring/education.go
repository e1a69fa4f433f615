package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"atscore/internal/types"
)

var (
	yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	gpaPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:/\s*(\d+(?:\.\d+)?))?`)
)

type educationScorer struct {
	weight         float64
	commendable    float64
	referenceYear  int
	maxFutureYears int
}

func (educationScorer) Kind() types.SectionKind { return types.SectionEducation }

func (e educationScorer) Score(doc *Document) (types.SectionScore, bool) {
	s := newSheet(types.SectionEducation)
	entries := doc.Resume.Education

	if len(entries) == 0 {
		s.issue(types.SeverityCritical, "Missing education section")
		s.suggest(types.SeverityMajor, "Add your highest degree, institution and graduation year")
		return s.result(e.weight, e.commendable), true
	}

	var sum float64
	for i, edu := range entries {
		label := entryLabel(edu.Degree, edu.Institution, i, "Education entry")
		var points float64

		if !blank(edu.Institution) {
			points += 30
		} else {
			s.issue(types.SeverityMajor, "Education entry #%d is missing the institution", i+1)
		}
		if !blank(edu.Degree) {
			points += 30
		} else {
			s.issue(types.SeverityMajor, "Education entry #%d is missing the degree", i+1)
		}
		if !blank(edu.Field) {
			points += 10
		} else {
			s.suggest(types.SeverityMinor, "Add the field of study for %s", label)
		}

		points += e.datePoints(s, edu, label)

		switch gpa, ok := parseGPA(edu.GPA); {
		case ok && gpa >= 3.5:
			points += 10
			s.strength("Strong GPA (%s) listed", strings.TrimSpace(edu.GPA))
		case len(nonBlank(edu.Highlights)) > 0:
			points += 10
		default:
			s.suggest(types.SeverityMinor, "Add honors, coursework or activities to %s", label)
		}

		sum += points
	}

	return s.resultOf(sum/float64(len(entries)), e.weight, e.commendable), true
}

func (e educationScorer) datePoints(s *sheet, edu types.Education, label string) float64 {
	date := strings.TrimSpace(edu.EndDate)
	if date == "" {
		date = strings.TrimSpace(edu.StartDate)
	}
	if date == "" {
		s.issue(types.SeverityMinor, "%s has no graduation date", label)
		return 0
	}
	if strings.EqualFold(date, "present") {
		return 20
	}

	years := yearPattern.FindAllString(date, -1)
	if len(years) == 0 {
		s.issue(types.SeverityMinor, "%s has an unrecognized date %q", label, date)
		return 0
	}
	year, _ := strconv.Atoi(years[len(years)-1])
	if year > e.referenceYear+e.maxFutureYears {
		s.issue(types.SeverityMajor, "%s has an implausible graduation year %d", label, year)
		return 0
	}
	return 20
}

// parseGPA reads "3.8", "3.8/4.0" or "9.1 / 10" and returns the value on a
// 4.0 scale.
func parseGPA(raw string) (float64, bool) {
	m := gpaPattern.FindStringSubmatch(raw)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if m[2] != "" {
		scale, err := strconv.ParseFloat(m[2], 64)
		if err != nil || scale == 0 {
			return 0, false
		}
		return value / scale * 4, true
	}
	if value > 4.0 {
		return 0, false
	}
	return value, true
}

func nonBlank(lines []string) []string {
	var out []string
	for _, l := range lines {
		if !blank(l) {
			out = append(out, l)
		}
	}
	return out
}
