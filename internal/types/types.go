package types

import "encoding/json"

// AnalyzeRequest represents the body of an ATS analysis request
type AnalyzeRequest struct {
	ResumeData     json.RawMessage `json:"resumeData"`
	JobDescription *string         `json:"jobDescription,omitempty"`
	JobURL         string          `json:"jobUrl,omitempty"`
}

// AnalyzeResponse represents the result of an ATS analysis request
type AnalyzeResponse struct {
	Success        bool    `json:"success"`
	Report         *Report `json:"report"`
	AnalysisTimeMs float64 `json:"analysisTimeMs"`
	Cached         bool    `json:"cached"`
	RequestID      string  `json:"requestId,omitempty"`
}

// ExtractRequest represents plain resume text to be structured
type ExtractRequest struct {
	Text           string  `json:"text"`
	JobDescription *string `json:"jobDescription,omitempty"`
}

// ExtractResponse represents an extracted resume, scored when requested
type ExtractResponse struct {
	Resume *Resume `json:"resume"`
	Report *Report `json:"report,omitempty"`
}

// ValidationSummary represents section counts of a validated resume
type ValidationSummary struct {
	ExperienceCount int  `json:"experienceCount"`
	EducationCount  int  `json:"educationCount"`
	SkillCategories int  `json:"skillCategories"`
	ProjectCount    int  `json:"projectCount"`
	HasSummary      bool `json:"hasSummary"`
}

// ValidationResult represents the completeness check of a resume
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []string          `json:"errors"`
	Warnings []string          `json:"warnings"`
	Summary  ValidationSummary `json:"summary"`
}

// BatchEntry represents one scored file of a batch run
type BatchEntry struct {
	File   string  `json:"file"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// BatchResult represents the outcome of scoring several resumes
type BatchResult struct {
	Entries []BatchEntry `json:"entries"`
	Scored  int          `json:"scored"`
	Failed  int          `json:"failed"`
}
