package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"atscore/internal/types"

	"github.com/go-playground/validator/v10"
)

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
})

// Completeness reports required fields the resume leaves empty (errors) and
// gaps that weaken it without making it unusable (warnings).
func Completeness(resume *types.Resume) types.ValidationResult {
	result := types.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}
	if resume == nil {
		result.Errors = append(result.Errors, "Resume is empty")
		return result
	}

	if err := structValidator().Struct(resume); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				result.Errors = append(result.Errors, describe(fe))
			}
		} else {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	if strings.TrimSpace(resume.PersonalInfo.Email) == "" {
		result.Warnings = append(result.Warnings, "Email is recommended")
	}
	if len(resume.Experience) == 0 && len(resume.Education) == 0 && len(resume.Projects) == 0 {
		result.Warnings = append(result.Warnings, "Resume has no experience, education or projects")
	}
	for i, exp := range resume.Experience {
		if len(nonBlankLines(exp.Description)) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Experience #%d has no bullet points", i+1))
		}
	}
	skillCategories := 0
	for _, group := range resume.Skills {
		if len(nonBlankLines(group.Items)) > 0 {
			skillCategories++
		}
	}
	if skillCategories == 0 {
		result.Warnings = append(result.Warnings, "Skills section is recommended")
	}

	result.Valid = len(result.Errors) == 0
	result.Summary = types.ValidationSummary{
		ExperienceCount: len(resume.Experience),
		EducationCount:  len(resume.Education),
		SkillCategories: skillCategories,
		ProjectCount:    len(resume.Projects),
		HasSummary:      strings.TrimSpace(resume.Summary) != "",
	}
	return result
}

// describe turns "Resume.experience[0].company" into
// "Experience #1: company is required".
func describe(fe validator.FieldError) string {
	path := strings.TrimPrefix(fe.Namespace(), "Resume.")
	section, _, _ := strings.Cut(path, ".")
	label := fe.Field()

	if m := indexPattern.FindStringSubmatch(section); m != nil {
		var idx int
		_, _ = fmt.Sscanf(m[1], "%d", &idx)
		name := capitalize(indexPattern.ReplaceAllString(section, ""))
		return fmt.Sprintf("%s #%d: %s is %s", name, idx+1, label, rule(fe))
	}
	return fmt.Sprintf("%s is %s", capitalize(label), rule(fe))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func rule(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return "required"
	}
	return fmt.Sprintf("invalid (%s)", fe.Tag())
}

func nonBlankLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
