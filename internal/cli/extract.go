package cli

import (
	"atscore/internal/ai"
	"atscore/internal/common"
	"atscore/internal/types"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <resume.txt>",
	Short: "Turn a plain text resume into structured JSON",
	Long: `Use the configured AI model to turn a plain text resume into the JSON
structure the other commands score. Pass --score to score the extracted
resume in the same run.

Requires an API key (ATSCORE_AI_APIKEY or GEMINI_API_KEY). The output is
always JSON so it can be fed back to score or batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var (
	extractOutputFile string
	extractScore      bool
	extractJob        jobOptions
)

func init() {
	extractCmd.Flags().StringVarP(&extractOutputFile, "output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().BoolVar(&extractScore, "score", false, "Also score the extracted resume")
	extractJob.register(extractCmd, false)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if err := cfg.RequireAIKey(); err != nil {
		return err
	}

	fp := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	text, err := fp.ReadText(args[0], ".txt", ".md", ".text")
	if err != nil {
		return err
	}
	jobDescription, err := extractJob.load(cmd.Context(), cfg, fp)
	if err != nil {
		return err
	}

	extractor, err := ai.NewExtractor(cfg.AI, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := extractor.Close(); err != nil {
			logger.Warn("Failed to close extractor", "error", err)
		}
	}()

	logger.Info("Starting resume extraction",
		"file", args[0],
		"resume_chars", len(text),
		"model", cfg.AI.Model)

	resume, usage, err := extractor.ExtractResume(cmd.Context(), text)
	if err != nil {
		return err
	}
	common.ReportTokenUsage(logger, usage)

	output := common.CommandConfig{OutputFile: extractOutputFile, OutputFormat: "json"}
	handler := common.NewOutputHandler(logger)
	if !extractScore && jobDescription == nil {
		return handler.HandleOutput(resume, output)
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	report, err := engine.Score(resume, jobDescription)
	if err != nil {
		return err
	}
	return handler.HandleOutput(types.ExtractResponse{Resume: resume, Report: report}, output)
}
