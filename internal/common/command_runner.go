package common

import (
	"context"

	"atscore/internal/ai"
	"atscore/internal/errors"
)

// OperationFunc turns the contents of the command's input files into the
// value the command prints
type OperationFunc[Output any] func(ctx context.Context, contents [][]byte) (Output, error)

// RunFileCommand encapsulates the common logic for file-based CLI commands:
// read and size-check the inputs, run the operation, format the output.
func RunFileCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	maxFileSize int64,
	args []string,
	operation OperationFunc[Output],
) error {
	fileProcessor := NewFileProcessor(logger, maxFileSize)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ReadFiles(args...)
	if err != nil {
		return err
	}

	result, err := operation(ctx, contents)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}

// ReportTokenUsage logs what a model call consumed
func ReportTokenUsage(logger *errors.Logger, usage *ai.TokenUsage) {
	if usage == nil || logger == nil {
		return
	}
	logger.Info("AI token usage",
		"input_tokens", usage.InputTokens,
		"output_tokens", usage.OutputTokens,
		"total_tokens", usage.TotalTokens)
}
