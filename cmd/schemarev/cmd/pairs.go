package cmd

import (
	"context"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/schemarev/schemarev/internal/entity"
	"github.com/schemarev/schemarev/internal/library"
)

var pairsSave bool

var pairsCmd = &cobra.Command{
	Use:   "pairs [files...]",
	Short: "Detect vocabulary/instance table pairs",
	Long: `Pairs scans the given SQL files and reports tables that follow the
vocabulary/instance naming convention (a '_info' catalog table next to an
instance table referencing it), including any translation side-tables.

Example:
  schemarev pairs schema.sql
  schemarev pairs schema.sql --save`,
	RunE: runPairs,
}

func init() {
	pairsCmd.Flags().BoolVar(&pairsSave, "save", false,
		"Persist detected pairs to the pattern library")

	rootCmd.AddCommand(pairsCmd)
}

func runPairs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	inputs, err := readInputs(args)
	if err != nil {
		return err
	}

	// Threshold zero: pairing cares about structure, not confidence.
	engine := entity.NewEngine(log.SugaredLogger, entity.Options{
		MinConfidence:     0,
		MergeTranslations: false,
	})
	report, err := engine.ReverseFiles(inputs)
	if err != nil {
		return fmt.Errorf("pair detection failed: %w", err)
	}

	if len(report.Pairs) == 0 {
		color.Yellow.Println("No vocabulary/instance pairs detected")
		return nil
	}

	color.Green.Printf("Detected %d pairs\n", len(report.Pairs))
	for _, p := range report.Pairs {
		fmt.Printf("  %-30s %s <- %s", p.BaseEntityName, p.VocabularyTable, p.InstanceTable)
		if p.TranslationTable != "" {
			fmt.Printf(" (+%s)", p.TranslationTable)
		}
		fmt.Println()
	}

	if !pairsSave {
		return nil
	}
	if !cfg.Library.Enabled {
		return fmt.Errorf("--save requires the pattern library (set SCHEMAREV_LIBRARY_ENABLED and SCHEMAREV_LIBRARY_DSN)")
	}

	ctx := context.Background()
	repo, err := library.Connect(ctx, cfg.Library.DSN)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx, cfg.Library.EmbeddingDims); err != nil {
		return err
	}
	for _, p := range report.Pairs {
		if err := repo.SavePair(ctx, p); err != nil {
			return err
		}
	}
	color.Green.Printf("Saved %d pairs to pattern library\n", len(report.Pairs))
	return nil
}
