package types

import (
	"fmt"
	"strings"
)

// SectionKind is the closed set of resume sections. Declaration order is
// the canonical section order, used for ranking and order checks.
type SectionKind int

const (
	SectionPersonalInfo SectionKind = iota
	SectionSummary
	SectionExperience
	SectionEducation
	SectionSkills
	SectionProjects
	// Pseudo-sections: they rank after every real section.
	SectionKeywords
	SectionFormat
)

var sectionKeys = [...]string{"personalInfo", "summary", "experience", "education", "skills", "projects", "keywords", "format"}

var sectionTitles = [...]string{"Personal Info", "Summary", "Experience", "Education", "Skills", "Projects", "Keywords", "Format"}

// ResumeSections lists the real sections in canonical order.
func ResumeSections() []SectionKind {
	return []SectionKind{SectionPersonalInfo, SectionSummary, SectionExperience, SectionEducation, SectionSkills, SectionProjects}
}

func (k SectionKind) valid() bool { return k >= SectionPersonalInfo && k <= SectionFormat }

// Key is the camelCase identifier used in JSON and in sectionOrder.
func (k SectionKind) Key() string {
	if !k.valid() {
		return fmt.Sprintf("section(%d)", int(k))
	}
	return sectionKeys[k]
}

// Title is the human readable name.
func (k SectionKind) Title() string {
	if !k.valid() {
		return k.Key()
	}
	return sectionTitles[k]
}

func (k SectionKind) String() string { return k.Key() }

func (k SectionKind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("unknown section kind %d", int(k))
	}
	return []byte(k.Key()), nil
}

func (k *SectionKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseSectionKind(string(text))
	if !ok {
		return fmt.Errorf("unknown section %q", string(text))
	}
	*k = parsed
	return nil
}

// ParseSectionKind accepts the camelCase key, snake_case or the title,
// case-insensitively.
func ParseSectionKind(s string) (SectionKind, bool) {
	norm := strings.ToLower(strings.NewReplacer("_", "", " ", "", "-", "").Replace(strings.TrimSpace(s)))
	for i, key := range sectionKeys {
		if strings.ToLower(key) == norm {
			return SectionKind(i), true
		}
	}
	return 0, false
}

// Severity orders findings: critical before major before minor.
type Severity int

const (
	SeverityMinor Severity = iota + 1
	SeverityMajor
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityMajor:
		return "major"
	case SeverityMinor:
		return "minor"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

func (s Severity) MarshalText() ([]byte, error) {
	switch s {
	case SeverityCritical, SeverityMajor, SeverityMinor:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown severity %d", int(s))
}

func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "critical":
		*s = SeverityCritical
	case "major":
		*s = SeverityMajor
	case "minor":
		*s = SeverityMinor
	default:
		return fmt.Errorf("unknown severity %q", string(text))
	}
	return nil
}

// Finding represents one issue or suggestion
type Finding struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// SectionScore represents the breakdown for one resume section
type SectionScore struct {
	Section     SectionKind `json:"section"`
	Name        string      `json:"name"`
	Score       float64     `json:"score"`    // 0..MaxScore
	MaxScore    float64     `json:"maxScore"` // Always 100
	Weight      float64     `json:"weight"`
	Issues      []Finding   `json:"issues"`
	Suggestions []Finding   `json:"suggestions"`
	Strengths   []string    `json:"strengths"`
}

// CategoryBreakdown counts distinct lexicon terms per category
type CategoryBreakdown struct {
	Technical  int `json:"technical"`
	Soft       int `json:"soft"`
	ActionVerb int `json:"actionVerb"`
	Filler     int `json:"filler"`
}

// KeywordAnalysis represents keyword coverage, with job matching when a job
// description was supplied
type KeywordAnalysis struct {
	TotalKeywords         int               `json:"totalKeywords"`
	CategoryBreakdown     CategoryBreakdown `json:"categoryBreakdown"`
	TechnicalKeywords     []string          `json:"technicalKeywords"`
	SoftSkillKeywords     []string          `json:"softSkillKeywords"`
	ActionVerbsUsed       []string          `json:"actionVerbsUsed"`
	MissingCommonKeywords []string          `json:"missingCommonKeywords"`
	KeywordDensity        float64           `json:"keywordDensity"`

	JobKeywords     []string `json:"jobKeywords,omitempty"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	JobMatchScore   *float64 `json:"jobMatchScore,omitempty"`

	Issues      []Finding `json:"issues"`
	Suggestions []Finding `json:"suggestions"`
}

// FormatAnalysis represents structural checks over the whole resume
type FormatAnalysis struct {
	Score                  float64   `json:"score"`
	HasClearSections       bool      `json:"hasClearSections"`
	SectionOrderFollowed   bool      `json:"sectionOrderFollowed"`
	EstimatedPages         float64   `json:"estimatedPages"`
	LengthAppropriate      bool      `json:"lengthAppropriate"`
	BulletPointConsistency float64   `json:"bulletPointConsistency"` // 0-100
	DateFormatsConsistent  bool      `json:"dateFormatsConsistent"`
	Issues                 []Finding `json:"issues"`
	Suggestions            []Finding `json:"suggestions"`
}

// ContentQuality represents bullet-level writing metrics over experience
type ContentQuality struct {
	BulletCount           int     `json:"bulletCount"`
	QuantifiedBullets     int     `json:"quantifiedBullets"`
	QuantifiedBulletRatio float64 `json:"quantifiedBulletRatio"` // 0..1
	AvgBulletLength       float64 `json:"avgBulletLength"`       // words
	ActionVerbRatio       float64 `json:"actionVerbRatio"`       // 0..1
	FillerCount           int     `json:"fillerCount"`
	PassiveCount          int     `json:"passiveCount"`
}

// RankedFinding represents a finding after report-wide ranking
type RankedFinding struct {
	Section  SectionKind `json:"section"`
	Severity Severity    `json:"severity"`
	Message  string      `json:"message"`
}

// Report represents the full scoring result. It carries no timestamps, so
// equal input always produces an equal report.
type Report struct {
	OverallScore    int             `json:"overallScore"` // 0-100
	Grade           string          `json:"grade"`
	SectionScores   []SectionScore  `json:"sectionScores"`
	KeywordAnalysis KeywordAnalysis `json:"keywordAnalysis"`
	FormatAnalysis  FormatAnalysis  `json:"formatAnalysis"`
	ContentQuality  ContentQuality  `json:"contentQuality"`
	TopIssues       []RankedFinding `json:"topIssues"`
	TopSuggestions  []RankedFinding `json:"topSuggestions"`
	Strengths       []string        `json:"strengths"`
	LexiconVersion  string          `json:"lexiconVersion"`
}

// Section returns the score for kind, if the report has one.
func (r *Report) Section(kind SectionKind) (SectionScore, bool) {
	for _, s := range r.SectionScores {
		if s.Section == kind {
			return s, true
		}
	}
	return SectionScore{}, false
}
