package cli

import (
	"context"
	"fmt"
	"strings"

	"atscore/internal/common"
	"atscore/internal/config"
	"atscore/internal/errors"
	"atscore/internal/jobfetch"
	"atscore/internal/lexicon"
	"atscore/internal/scoring"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "atscore",
	Short: "Score resumes the way applicant tracking systems read them",
	Long: `atscore rates a structured resume from 0 to 100, grades it and explains
the score section by section: contact details, summary, experience,
education, skills and projects, plus keyword coverage and formatting.

Given a job description, it also reports how well the resume matches the
posting's required and preferred keywords.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.ExecuteContext(ctx)
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// newEngine builds the scoring engine from the configured lexicon and
// scoring options
func newEngine(cfg *config.Config) (*scoring.Engine, error) {
	store, err := loadLexicon(cfg.Lexicon.File)
	if err != nil {
		return nil, err
	}
	scoringCfg, err := cfg.ToScoring()
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "invalid scoring configuration", err)
	}
	return scoring.New(store, scoringCfg)
}

// loadLexicon reads path, or the embedded tables when path is empty
func loadLexicon(path string) (*lexicon.Store, error) {
	if path == "" {
		return lexicon.Default()
	}
	store, err := lexicon.LoadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeLexiconLoad,
			fmt.Sprintf("cannot load lexicon %s", path), err)
	}
	return store, nil
}

func newFetcher(cfg *config.Config) *jobfetch.Fetcher {
	return jobfetch.New(jobfetch.Options{
		Timeout:     cfg.Fetch.Timeout,
		UserAgent:   cfg.Fetch.UserAgent,
		MaxBodySize: cfg.Fetch.MaxBodySize,
	})
}

// jobOptions are the flags selecting a job description
type jobOptions struct {
	File string
	URL  string
}

func (o *jobOptions) register(cmd *cobra.Command, withURL bool) {
	cmd.Flags().StringVar(&o.File, "job", "", "Job description file to match the resume against")
	if withURL {
		cmd.Flags().StringVar(&o.URL, "job-url", "", "URL of a job posting to match the resume against")
		cmd.MarkFlagsMutuallyExclusive("job", "job-url")
	}
}

// load returns the job description, or nil when none was requested
func (o *jobOptions) load(ctx context.Context, cfg *config.Config, fp *common.FileProcessor) (*string, error) {
	switch {
	case o.File != "":
		text, err := fp.ReadText(o.File, ".txt", ".md", ".text")
		if err != nil {
			return nil, err
		}
		return &text, nil
	case o.URL != "":
		posting, err := newFetcher(cfg).Fetch(ctx, o.URL)
		if err != nil {
			if jobfetch.IsInvalidURL(err) {
				return nil, errors.NewInvalidInputError("--job-url must be an absolute http or https URL", err)
			}
			return nil, errors.NewNetworkError(errors.ErrCodeFetchFailed, "failed to fetch job posting", err)
		}
		return &posting.Text, nil
	}
	return nil, nil
}

// outputFlags registers -o and --format and validates the format before
// the command runs
func outputFlags(cmd *cobra.Command, out *common.CommandConfig) {
	cmd.Flags().StringVarP(&out.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&out.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return common.NewOutputHandler(nil).GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if out.OutputFormat == "" {
			out.OutputFormat = cfg.App.DefaultFormat
		}
		if out.OutputFormat == "" {
			out.OutputFormat = "text"
		}
		out.OutputFormat = strings.TrimSpace(out.OutputFormat)
		return common.ValidateOutputFormat(out.OutputFormat, cfg.App.SupportedFormats)
	}
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(lexiconCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
