// Package validation checks resumes before and beside scoring: Structure
// rejects payloads that are not resume-shaped JSON, Completeness reports the
// fields a usable resume is expected to fill in.
package validation

import (
	_ "embed"
	"fmt"
	"strings"

	"atscore/internal/errors"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var resumeSchema []byte

// FieldError is one schema violation at a field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (fe FieldError) String() string {
	return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
}

var schemaLoader = gojsonschema.NewBytesLoader(resumeSchema)

// Structure validates payload against the resume schema. The schema only
// checks shape and types; missing content is scored, not rejected. Failures
// are InvalidInputErrors carrying the offending field paths as "fields".
func Structure(payload []byte) error {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return errors.NewInvalidInputError("resume payload is empty", nil)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return errors.NewInvalidInputError("resume payload is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}

	fields := make([]FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			field = "(root)"
		}
		fields = append(fields, FieldError{Field: field, Message: desc.Description()})
	}

	msg := "resume does not match the expected structure"
	if len(fields) == 1 && fields[0].Field == "(root)" {
		msg = "resume must be a JSON object"
	}
	return errors.NewInvalidInputError(msg, nil).WithContext("fields", fields)
}

// FieldErrors extracts the field violations attached by Structure.
func FieldErrors(err error) []FieldError {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		return nil
	}
	fields, _ := appErr.Context["fields"].([]FieldError)
	return fields
}
