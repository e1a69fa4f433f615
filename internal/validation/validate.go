package validation

import (
	"encoding/json"

	"atscore/internal/errors"
	"atscore/internal/types"
)

// Validate runs both checks on a raw payload. Schema violations are
// reported in the result like missing content; only a payload that is not
// JSON at all is returned as an InvalidInputError.
func Validate(payload []byte) (types.ValidationResult, error) {
	if err := Structure(payload); err != nil {
		fields := FieldErrors(err)
		if len(fields) == 0 {
			return types.ValidationResult{}, err
		}
		result := types.ValidationResult{
			Errors:   make([]string, 0, len(fields)),
			Warnings: []string{},
		}
		for _, fe := range fields {
			result.Errors = append(result.Errors, fe.String())
		}
		return result, nil
	}

	var resume types.Resume
	if err := json.Unmarshal(payload, &resume); err != nil {
		return types.ValidationResult{}, errors.NewInvalidInputError("resume could not be decoded", err)
	}
	return Completeness(&resume), nil
}
