package cli

import (
	"fmt"
	"slices"

	"atscore/internal/lexicon"

	"github.com/spf13/cobra"
)

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Show the keyword lexicon in use",
	Long: `Load the keyword lexicon (the embedded tables, or the file given by --file
or lexicon.file in the configuration) and print its version and the size of
each table. Use this to check a custom lexicon file before deploying it.

--dump prints the embedded lexicon YAML, a starting point for a custom file.`,
	Args: cobra.NoArgs,
	RunE: runLexicon,
}

var (
	lexiconFile string
	lexiconDump bool
)

func init() {
	lexiconCmd.Flags().StringVar(&lexiconFile, "file", "", "Lexicon YAML file (default: configured or embedded)")
	lexiconCmd.Flags().BoolVar(&lexiconDump, "dump", false, "Print the embedded lexicon YAML and exit")
}

func runLexicon(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	if lexiconDump {
		_, err := cmd.OutOrStdout().Write(lexicon.DefaultDocument())
		return err
	}

	path := lexiconFile
	if path == "" {
		path = cfg.Lexicon.File
	}
	store, err := loadLexicon(path)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "embedded"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Lexicon version: %s\n", store.Version())
	fmt.Fprintf(out, "Source: %s\n", source)

	stats := store.Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-20s %d\n", name, stats[name])
	}
	return nil
}
