package cli

import (
	"context"

	"atscore/internal/common"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <resume.json>",
	Short: "Score a resume",
	Long: `Score a structured JSON resume and print the report: the overall score and
grade, per-section scores with their issues and suggestions, keyword and
format analysis, and the most important issues to fix first.

Pass --job or --job-url to also match the resume against a job posting.`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

var (
	scoreOutput common.CommandConfig
	scoreJob    jobOptions
)

func init() {
	outputFlags(scoreCmd, &scoreOutput)
	scoreJob.register(scoreCmd, true)
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	fp := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	jobDescription, err := scoreJob.load(cmd.Context(), cfg, fp)
	if err != nil {
		return err
	}

	return common.RunFileCommand(cmd.Context(), logger, scoreOutput, cfg.App.MaxFileSize, args,
		func(_ context.Context, contents [][]byte) (any, error) {
			report, err := engine.ScoreJSON(contents[0], jobDescription)
			if err != nil {
				return nil, err
			}
			logger.Debug("Resume scored",
				"file", args[0],
				"score", report.OverallScore,
				"grade", report.Grade,
				"job_description", jobDescription != nil)
			return report, nil
		})
}
