package cli

import (
	"context"

	"atscore/internal/common"
	"atscore/internal/errors"
	"atscore/internal/types"
	"atscore/internal/validation"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <resume.json>",
	Short: "Check a resume's structure and completeness",
	Long: `Check that a JSON resume has the expected structure and report required
fields it leaves empty, without scoring it. The command fails when the
resume has errors; warnings alone do not fail it.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateOutput common.CommandConfig

func init() {
	outputFlags(validateCmd, &validateOutput)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	var result types.ValidationResult
	err := common.RunFileCommand(cmd.Context(), logger, validateOutput, cfg.App.MaxFileSize, args,
		func(_ context.Context, contents [][]byte) (any, error) {
			var err error
			result, err = validation.Validate(contents[0])
			if err != nil {
				return nil, err
			}
			return result, nil
		})
	if err != nil {
		return err
	}

	if !result.Valid {
		return errors.NewValidationError("RESUME_INCOMPLETE", "resume has validation errors", nil).
			WithContext("errors", len(result.Errors))
	}
	return nil
}
