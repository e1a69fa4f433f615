package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"atscore/internal/types"
)

func sampleReport() types.Report {
	match := 66.7
	return types.Report{
		OverallScore: 82,
		Grade:        "B+",
		SectionScores: []types.SectionScore{
			{Section: types.SectionExperience, Name: "Experience", Score: 90, MaxScore: 100, Weight: 0.35},
		},
		KeywordAnalysis: types.KeywordAnalysis{
			TechnicalKeywords: []string{"Go", "Kubernetes"},
			MatchedKeywords:   []string{"Go", "Kubernetes"},
			MissingKeywords:   []string{"Terraform"},
			JobMatchScore:     &match,
		},
		FormatAnalysis: types.FormatAnalysis{Score: 95},
		TopIssues: []types.RankedFinding{
			{Section: types.SectionPersonalInfo, Severity: types.SeverityCritical, Message: "Missing email address"},
		},
		Strengths: []string{"Strong action verbs lead 100% of bullets"},
	}
}

func TestFormatReport(t *testing.T) {
	registry := NewFormatterRegistry()
	report := sampleReport()

	tests := []struct {
		format string
		want   []string
	}{
		{"text", []string{"ATS SCORE: 82/100 (B+)", "Job match: 66.7%", "Missing: Terraform", "[CRITICAL] Missing email address (Personal Info)", "+ Strong action verbs"}},
		{"markdown", []string{"# ATS Score: 82/100 (B+)", "| Experience | 90.0 | 0.35 |", "**Job match:** 66.7%", "- **critical** (Personal Info): Missing email address"}},
		{"json", []string{`"overallScore": 82`, `"jobMatchScore": 66.7`, `"section": "personalInfo"`, `"severity": "critical"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			for _, data := range []any{report, &report} {
				out, err := registry.Format(data, tt.format)
				if err != nil {
					t.Fatalf("Format(%s) error: %v", tt.format, err)
				}
				for _, w := range tt.want {
					if !strings.Contains(out, w) {
						t.Errorf("Format(%s) output missing %q:\n%s", tt.format, w, out)
					}
				}
			}
		})
	}
}

func TestFormatReportWithoutJobDescription(t *testing.T) {
	report := sampleReport()
	report.KeywordAnalysis.JobMatchScore = nil

	out, err := NewFormatterRegistry().Format(report, "text")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "Job match") {
		t.Errorf("text output should not mention job match without a job description:\n%s", out)
	}
}

func TestFormatValidationResult(t *testing.T) {
	result := types.ValidationResult{
		Valid:    false,
		Errors:   []string{"Name is required"},
		Warnings: []string{"Email is recommended"},
	}

	out, err := NewFormatterRegistry().Format(result, "text")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"NOT valid", "error:   Name is required", "warning: Email is recommended"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatBatchResult(t *testing.T) {
	report := sampleReport()
	result := &types.BatchResult{
		Entries: []types.BatchEntry{
			{File: "alice.json", Report: &report},
			{File: "broken.json", Error: "resume must be a JSON object"},
		},
		Scored: 1,
		Failed: 1,
	}

	out, err := NewFormatterRegistry().Format(result, "markdown")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"| 1 | alice.json | 82 | B+ | 66.7% |", "| 2 | broken.json | | error: resume must be a JSON object | |"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestJSONFormatterFallback(t *testing.T) {
	out, err := NewFormatterRegistry().Format(map[string]int{"a": 1}, "json")
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]int
	if err := json.Unmarshal([]byte(out), &decoded); err != nil || decoded["a"] != 1 {
		t.Errorf("unexpected JSON output %q (%v)", out, err)
	}
}

func TestUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()
	if _, err := registry.Format(sampleReport(), "pdf"); err == nil {
		t.Error("expected an error for an unregistered format")
	}
	if _, err := registry.Format(map[string]int{}, "text"); err == nil {
		t.Error("expected an error for text output of an unknown type")
	}

	got := strings.Join(registry.GetSupportedFormats(), ",")
	if got != "json,markdown,text" {
		t.Errorf("GetSupportedFormats() = %s", got)
	}
}
