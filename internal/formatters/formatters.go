package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"atscore/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Report", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "Report", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "ValidationResult", &ValidationTextFormatter{})
	registry.RegisterFormatter("markdown", "ValidationResult", &ValidationMarkdownFormatter{})
	registry.RegisterFormatter("text", "BatchResult", &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", "BatchResult", &BatchMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter. Pointers to the
// known result types are formatted like the values they point to.
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func deref(data any) any {
	switch v := data.(type) {
	case *types.Report:
		if v != nil {
			return *v
		}
	case *types.ValidationResult:
		if v != nil {
			return *v
		}
	case *types.BatchResult:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.Report:
		return "Report"
	case types.ValidationResult:
		return "ValidationResult"
	case types.BatchResult:
		return "BatchResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ReportTextFormatter renders a score report for terminals
type ReportTextFormatter struct{}

func (f *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(types.Report)
	if !ok {
		return "", fmt.Errorf("expected Report, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "=== ATS SCORE: %d/100 (%s) ===\n\n", report.OverallScore, report.Grade)

	out.WriteString("=== SECTIONS ===\n")
	for _, s := range report.SectionScores {
		fmt.Fprintf(&out, "%-22s %5.1f  %s\n", s.Name, s.Score, bar(s.Score))
	}
	fmt.Fprintf(&out, "%-22s %5.1f  %s\n\n", "Format", report.FormatAnalysis.Score, bar(report.FormatAnalysis.Score))

	ka := report.KeywordAnalysis
	out.WriteString("=== KEYWORDS ===\n")
	if ka.JobMatchScore != nil {
		fmt.Fprintf(&out, "Job match: %.1f%%\n", *ka.JobMatchScore)
		writeList(&out, "Matched: ", ka.MatchedKeywords)
		writeList(&out, "Missing: ", ka.MissingKeywords)
	}
	writeList(&out, "Technical: ", ka.TechnicalKeywords)
	writeList(&out, "Soft skills: ", ka.SoftSkillKeywords)
	writeList(&out, "Action verbs: ", ka.ActionVerbsUsed)
	fmt.Fprintf(&out, "Keyword density: %.2f%%\n\n", ka.KeywordDensity)

	cq := report.ContentQuality
	out.WriteString("=== CONTENT ===\n")
	fmt.Fprintf(&out, "Bullets: %d, quantified: %.0f%%, action verbs: %.0f%%, avg length: %.1f words\n\n",
		cq.BulletCount, cq.QuantifiedBulletRatio*100, cq.ActionVerbRatio*100, cq.AvgBulletLength)

	writeRanked(&out, "=== TOP ISSUES ===\n", report.TopIssues)
	writeRanked(&out, "=== TOP SUGGESTIONS ===\n", report.TopSuggestions)

	if len(report.Strengths) > 0 {
		out.WriteString("=== STRENGTHS ===\n")
		for _, s := range report.Strengths {
			fmt.Fprintf(&out, "+ %s\n", s)
		}
	}
	return out.String(), nil
}

func (f *ReportTextFormatter) SupportedType() string {
	return "Report"
}

// ReportMarkdownFormatter renders a score report as markdown
type ReportMarkdownFormatter struct{}

func (f *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(types.Report)
	if !ok {
		return "", fmt.Errorf("expected Report, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# ATS Score: %d/100 (%s)\n\n", report.OverallScore, report.Grade)

	out.WriteString("## Section Scores\n\n| Section | Score | Weight |\n|---|---:|---:|\n")
	for _, s := range report.SectionScores {
		fmt.Fprintf(&out, "| %s | %.1f | %.2f |\n", s.Name, s.Score, s.Weight)
	}
	fmt.Fprintf(&out, "| Format | %.1f | |\n\n", report.FormatAnalysis.Score)

	ka := report.KeywordAnalysis
	out.WriteString("## Keywords\n\n")
	if ka.JobMatchScore != nil {
		fmt.Fprintf(&out, "**Job match:** %.1f%%\n\n", *ka.JobMatchScore)
		writeMarkdownList(&out, "Matched", ka.MatchedKeywords)
		writeMarkdownList(&out, "Missing", ka.MissingKeywords)
	}
	writeMarkdownList(&out, "Technical", ka.TechnicalKeywords)
	writeMarkdownList(&out, "Soft skills", ka.SoftSkillKeywords)
	out.WriteString("\n")

	writeMarkdownRanked(&out, "## Top Issues\n\n", report.TopIssues)
	writeMarkdownRanked(&out, "## Top Suggestions\n\n", report.TopSuggestions)

	if len(report.Strengths) > 0 {
		out.WriteString("## Strengths\n\n")
		for _, s := range report.Strengths {
			fmt.Fprintf(&out, "- %s\n", s)
		}
	}
	return out.String(), nil
}

func (f *ReportMarkdownFormatter) SupportedType() string {
	return "Report"
}

// ValidationTextFormatter renders a completeness check for terminals
type ValidationTextFormatter struct{}

func (f *ValidationTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ValidationResult)
	if !ok {
		return "", fmt.Errorf("expected ValidationResult, got %T", data)
	}

	var out strings.Builder
	if result.Valid {
		out.WriteString("Resume is valid\n")
	} else {
		out.WriteString("Resume is NOT valid\n")
	}
	for _, e := range result.Errors {
		fmt.Fprintf(&out, "  error:   %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(&out, "  warning: %s\n", w)
	}
	s := result.Summary
	fmt.Fprintf(&out, "Experience: %d, education: %d, skill groups: %d, projects: %d, summary: %t\n",
		s.ExperienceCount, s.EducationCount, s.SkillCategories, s.ProjectCount, s.HasSummary)
	return out.String(), nil
}

func (f *ValidationTextFormatter) SupportedType() string {
	return "ValidationResult"
}

// ValidationMarkdownFormatter renders a completeness check as markdown
type ValidationMarkdownFormatter struct{}

func (f *ValidationMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ValidationResult)
	if !ok {
		return "", fmt.Errorf("expected ValidationResult, got %T", data)
	}

	var out strings.Builder
	status := "valid"
	if !result.Valid {
		status = "not valid"
	}
	fmt.Fprintf(&out, "# Resume Validation: %s\n\n", status)
	writeMarkdownBullets(&out, "## Errors\n\n", result.Errors)
	writeMarkdownBullets(&out, "## Warnings\n\n", result.Warnings)
	return out.String(), nil
}

func (f *ValidationMarkdownFormatter) SupportedType() string {
	return "ValidationResult"
}

// BatchTextFormatter renders a batch run as a ranked table
type BatchTextFormatter struct{}

func (f *BatchTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchResult, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "Scored %d resumes, %d failed\n\n", result.Scored, result.Failed)
	for i, e := range result.Entries {
		if e.Report == nil {
			fmt.Fprintf(&out, "%3d. %-40s ERROR %s\n", i+1, e.File, e.Error)
			continue
		}
		fmt.Fprintf(&out, "%3d. %-40s %3d  %s\n", i+1, e.File, e.Report.OverallScore, e.Report.Grade)
	}
	return out.String(), nil
}

func (f *BatchTextFormatter) SupportedType() string {
	return "BatchResult"
}

// BatchMarkdownFormatter renders a batch run as a markdown table
type BatchMarkdownFormatter struct{}

func (f *BatchMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.BatchResult)
	if !ok {
		return "", fmt.Errorf("expected BatchResult, got %T", data)
	}

	var out strings.Builder
	out.WriteString("# Batch Results\n\n| Rank | File | Score | Grade | Job Match |\n|---:|---|---:|---|---:|\n")
	for i, e := range result.Entries {
		if e.Report == nil {
			fmt.Fprintf(&out, "| %d | %s | | error: %s | |\n", i+1, e.File, e.Error)
			continue
		}
		match := ""
		if m := e.Report.KeywordAnalysis.JobMatchScore; m != nil {
			match = fmt.Sprintf("%.1f%%", *m)
		}
		fmt.Fprintf(&out, "| %d | %s | %d | %s | %s |\n", i+1, e.File, e.Report.OverallScore, e.Report.Grade, match)
	}
	return out.String(), nil
}

func (f *BatchMarkdownFormatter) SupportedType() string {
	return "BatchResult"
}

// bar draws a 20-cell gauge for a 0..100 score
func bar(score float64) string {
	filled := int(score/5 + 0.5)
	filled = max(0, min(20, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 20-filled) + "]"
}

func writeList(out *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	out.WriteString(label)
	out.WriteString(strings.Join(items, ", "))
	out.WriteString("\n")
}

func writeRanked(out *strings.Builder, title string, findings []types.RankedFinding) {
	if len(findings) == 0 {
		return
	}
	out.WriteString(title)
	for i, f := range findings {
		fmt.Fprintf(out, "%2d. [%s] %s (%s)\n", i+1, strings.ToUpper(f.Severity.String()), f.Message, f.Section.Title())
	}
	out.WriteString("\n")
}

func writeMarkdownList(out *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(out, "- **%s:** %s\n", label, strings.Join(items, ", "))
}

func writeMarkdownRanked(out *strings.Builder, title string, findings []types.RankedFinding) {
	if len(findings) == 0 {
		return
	}
	out.WriteString(title)
	for _, f := range findings {
		fmt.Fprintf(out, "- **%s** (%s): %s\n", f.Severity, f.Section.Title(), f.Message)
	}
	out.WriteString("\n")
}

func writeMarkdownBullets(out *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	out.WriteString(title)
	for _, item := range items {
		fmt.Fprintf(out, "- %s\n", item)
	}
	out.WriteString("\n")
}

// GlobalRegistry is the shared registry the CLI formats output with
var GlobalRegistry = NewFormatterRegistry()
