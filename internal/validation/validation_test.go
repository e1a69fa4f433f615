package validation

import (
	"strings"
	"testing"

	"atscore/internal/errors"
	"atscore/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructure(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
		field   string
	}{
		{name: "minimal object", payload: `{"personalInfo":{"name":"Ada"}}`},
		{name: "empty object", payload: `{}`},
		{name: "nulls allowed", payload: `{"summary":null,"experience":null}`},
		{name: "array root", payload: `[1,2,3]`, wantErr: true, field: "(root)"},
		{name: "string root", payload: `"resume"`, wantErr: true, field: "(root)"},
		{name: "not json", payload: `{"personalInfo":`, wantErr: true},
		{name: "empty", payload: ``, wantErr: true},
		{name: "bullets not strings", payload: `{"experience":[{"company":"Acme","description":[1]}]}`, wantErr: true, field: "experience.0.description.0"},
		{name: "skills not array", payload: `{"skills":"Go, SQL"}`, wantErr: true, field: "skills"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Structure([]byte(tt.payload))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsInvalidInput(err), "expected InvalidInputError, got %v", err)
			if tt.field != "" {
				fields := FieldErrors(err)
				require.NotEmpty(t, fields)
				assert.Equal(t, tt.field, fields[0].Field)
			}
		})
	}
}

func TestCompletenessReportsRequiredFields(t *testing.T) {
	resume := &types.Resume{
		Experience: []types.Experience{{Position: "Engineer", Description: []string{"Built things"}}},
		Education:  []types.Education{{Institution: "MIT"}},
	}

	result := Completeness(resume)

	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "Name is required")
	assert.Contains(t, result.Errors, "Experience #1: company is required")
	assert.Contains(t, result.Errors, "Education #1: degree is required")
	assert.Contains(t, result.Warnings, "Email is recommended")
	assert.Contains(t, result.Warnings, "Skills section is recommended")
	assert.Equal(t, 1, result.Summary.ExperienceCount)
	assert.Equal(t, 1, result.Summary.EducationCount)
	assert.False(t, result.Summary.HasSummary)
}

func TestCompletenessValidResume(t *testing.T) {
	resume := &types.Resume{
		PersonalInfo: types.PersonalInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Summary:      "Engineer.",
		Experience:   []types.Experience{{Company: "Analytical Engines", Position: "Programmer", Description: []string{""}}},
		Skills:       []types.Skill{{Category: "Math", Items: []string{"Algorithms"}}},
		Projects:     []types.Project{{Name: "Note G"}},
	}

	result := Completeness(resume)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"Experience #1 has no bullet points"}, result.Warnings)
	assert.Equal(t, types.ValidationSummary{
		ExperienceCount: 1,
		SkillCategories: 1,
		ProjectCount:    1,
		HasSummary:      true,
	}, result.Summary)
}

func TestCompletenessNilResume(t *testing.T) {
	result := Completeness(nil)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		payload   string
		wantValid bool
		wantErr   bool
		errPrefix string
	}{
		{"complete", `{"personalInfo": {"name": "Ada", "email": "ada@example.com"}, "skills": [{"category": "Math", "items": ["Algorithms"]}]}`, true, false, ""},
		{"missing name", `{"personalInfo": {"email": "ada@example.com"}}`, false, false, "Name is required"},
		{"wrong type", `{"skills": "Go"}`, false, false, "skills: "},
		{"not json", `{"skills": `, false, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Validate([]byte(tt.payload))
			if tt.wantErr {
				assert.True(t, errors.IsInvalidInput(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.errPrefix != "" {
				require.NotEmpty(t, result.Errors)
				assert.True(t, strings.HasPrefix(result.Errors[0], tt.errPrefix), result.Errors[0])
			}
		})
	}
}
