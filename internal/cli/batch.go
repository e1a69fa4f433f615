package cli

import (
	"context"
	"fmt"
	"time"

	"atscore/internal/common"
	"atscore/internal/export"
	"atscore/internal/scoring"
	"atscore/internal/types"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var batchCmd = &cobra.Command{
	Use:   "batch <resume.json>...",
	Short: "Score several resumes and rank them",
	Long: `Score several JSON resumes concurrently, optionally against one job
description, and print a summary ranked by score. A resume that cannot be
read or scored is reported as failed without stopping the others.

Use --xlsx to also write an Excel workbook with the ranking, every section
score and the top issues of each resume.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

var (
	batchOutput      common.CommandConfig
	batchJob         jobOptions
	batchXLSX        string
	batchConcurrency int
)

func init() {
	outputFlags(batchCmd, &batchOutput)
	batchJob.register(batchCmd, true)
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "Also write the results to an Excel workbook")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Resumes scored in parallel (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	fp := common.NewFileProcessor(logger, cfg.App.MaxFileSize)
	jobDescription, err := batchJob.load(cmd.Context(), cfg, fp)
	if err != nil {
		return err
	}

	workers := batchConcurrency
	if workers <= 0 {
		workers = cfg.App.BatchWorkers
	}

	start := time.Now()
	result := scoreBatch(cmd.Context(), engine, fp, args, jobDescription, workers)
	logger.Info("Batch scoring completed",
		"resumes", len(args),
		"scored", result.Scored,
		"failed", result.Failed,
		"workers", workers,
		"duration", time.Since(start).String())

	if batchXLSX != "" {
		if err := export.WriteWorkbook(batchXLSX, result.Entries); err != nil {
			return err
		}
		logger.Info("Workbook written", "file", batchXLSX)
	}

	if err := common.NewOutputHandler(logger).HandleOutput(result, batchOutput); err != nil {
		return err
	}
	if result.Scored == 0 {
		return fmt.Errorf("none of the %d resumes could be scored", len(args))
	}
	return nil
}

// scoreBatch scores files with at most workers in flight. Entries keep the
// order of files; a failed file records its error instead of a report.
func scoreBatch(ctx context.Context, engine *scoring.Engine, fp *common.FileProcessor, files []string, jobDescription *string, workers int) types.BatchResult {
	entries := make([]types.BatchEntry, len(files))

	var g errgroup.Group
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, file := range files {
		g.Go(func() error {
			entries[i].File = file
			if err := ctx.Err(); err != nil {
				entries[i].Error = err.Error()
				return nil
			}
			payload, err := fp.ReadFile(file)
			if err != nil {
				entries[i].Error = err.Error()
				return nil
			}
			report, err := engine.ScoreJSON(payload, jobDescription)
			if err != nil {
				entries[i].Error = err.Error()
				return nil
			}
			entries[i].Report = report
			return nil
		})
	}
	_ = g.Wait()

	result := types.BatchResult{Entries: entries}
	for _, entry := range entries {
		if entry.Report != nil {
			result.Scored++
		} else {
			result.Failed++
		}
	}
	return result
}
