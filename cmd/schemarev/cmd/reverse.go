package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/schemarev/schemarev/internal/cache"
	"github.com/schemarev/schemarev/internal/config"
	"github.com/schemarev/schemarev/internal/enhance"
	"github.com/schemarev/schemarev/internal/entity"
	"github.com/schemarev/schemarev/internal/library"
)

var (
	reverseOutDir  string
	reversePreview bool
	reverseNoMerge bool
	reverseMetrics bool
	reverseSave    bool
)

var reverseCmd = &cobra.Command{
	Use:   "reverse [files...]",
	Short: "Reverse engineer SQL dumps into entity definitions",
	Long: `Reverse parses the given SQL files (or stdin when none are given),
scores every recovered table and writes one YAML entity definition per
accepted table.

Example:
  schemarev reverse schema.sql functions.sql -o entities/
  cat dump.sql | schemarev reverse -o entities/`,
	RunE: runReverse,
}

func init() {
	reverseCmd.Flags().StringVarP(&reverseOutDir, "output", "o", "entities",
		"Directory for generated YAML files")
	reverseCmd.Flags().BoolVar(&reversePreview, "preview", false,
		"Report what would be written without creating files")
	reverseCmd.Flags().BoolVar(&reverseNoMerge, "no-merge-translations", false,
		"Keep translation tables as standalone entities")
	reverseCmd.Flags().BoolVar(&reverseMetrics, "metrics", false,
		"Print parser success rates after the run")
	reverseCmd.Flags().BoolVar(&reverseSave, "save", false,
		"Persist pairs and construct profiles to the pattern library")

	rootCmd.AddCommand(reverseCmd)
}

func runReverse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if reverseNoMerge {
		cfg.Engine.MergeTranslations = false
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

	ctx := context.Background()

	// Content-addressed cache: unchanged inputs skip the whole parse.
	var c *cache.Cache
	var cacheKey string
	if cfg.Cache.Enabled {
		c, err = cache.New(cfg.Cache)
		if err != nil {
			log.Warnw("cache unavailable", "error", err)
		} else {
			defer c.Close()
			names := make([]string, 0, len(inputs))
			for name := range inputs {
				names = append(names, name)
			}
			sort.Strings(names)
			sources := make([]string, 0, len(names))
			for _, name := range names {
				sources = append(sources, inputs[name])
			}
			cacheKey = cache.Key(sources...)
		}
	}

	var report *entity.Report
	if c != nil {
		if raw, err := c.Get(ctx, cacheKey); err == nil {
			var cached entity.Report
			if err := json.Unmarshal(raw, &cached); err == nil {
				report = &cached
				log.Infow("loaded report from cache")
			}
		}
	}

	if report == nil {
		engine := entity.NewEngine(log.SugaredLogger, entity.Options{
			MinConfidence:     cfg.Engine.MinConfidence,
			MergeTranslations: cfg.Engine.MergeTranslations,
		})
		report, err = engine.ReverseFiles(inputs)
		if err != nil {
			return fmt.Errorf("reverse engineering failed: %w", err)
		}
		if c != nil {
			if raw, err := json.Marshal(report); err == nil {
				if err := c.Set(ctx, cacheKey, raw); err != nil {
					log.Warnw("cache write failed", "error", err)
				}
			}
		}
	}

	if cfg.Enhance.Enabled {
		client := enhance.NewClient(cfg.Enhance.APIKey, cfg.Enhance.Model, cfg.Enhance.Endpoint)
		enhancer := enhance.NewEnhancer(client, cfg.Engine.MinConfidence+0.10, log.SugaredLogger)
		report.Entities = enhancer.Describe(ctx, report.Entities)
	}

	runID := uuid.New()
	written, err := entity.WriteFiles(report.Entities, reverseOutDir, runID, reversePreview)
	if err != nil {
		return fmt.Errorf("write entities: %w", err)
	}

	if reverseSave {
		if err := saveRun(ctx, cfg, report); err != nil {
			return err
		}
	}

	printReverseSummary(report, written, reversePreview)
	if reverseMetrics && report.MetricsSummary != "" {
		fmt.Fprintln(os.Stdout, report.MetricsSummary)
	}
	return nil
}

// saveRun writes the run's pairs and construct profiles to the pattern
// library, embedding profiles when an embedding endpoint is configured.
func saveRun(ctx context.Context, cfg *config.Config, report *entity.Report) error {
	if !cfg.Library.Enabled {
		return fmt.Errorf("--save requires the pattern library (set SCHEMAREV_LIBRARY_ENABLED and SCHEMAREV_LIBRARY_DSN)")
	}
	repo, err := library.Connect(ctx, cfg.Library.DSN)
	if err != nil {
		return err
	}
	defer repo.Close()
	if err := repo.EnsureSchema(ctx, cfg.Library.EmbeddingDims); err != nil {
		return err
	}

	var embed *library.EmbedClient
	if cfg.Library.EmbeddingEndpoint != "" {
		embed, err = library.NewEmbedClient(cfg.Library)
		if err != nil {
			return err
		}
	}
	return library.NewService(repo, embed).SaveRun(ctx, report.Entities, report.Pairs)
}

// readInputs reads the named files, or stdin when no names are given.
func readInputs(args []string) (map[string]string, error) {
	inputs := make(map[string]string, len(args))
	if len(args) == 0 {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		inputs["stdin"] = string(raw)
		return inputs, nil
	}
	for _, name := range args {
		raw, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		inputs[name] = string(raw)
	}
	return inputs, nil
}

func printReverseSummary(report *entity.Report, written []string, preview bool) {
	verb := "Wrote"
	if preview {
		verb = "Would write"
	}
	color.Green.Printf("%s %d entities\n", verb, len(written))
	for _, name := range written {
		fmt.Printf("  %s\n", name)
	}
	if len(report.Pairs) > 0 {
		color.Cyan.Printf("Detected %d vocabulary/instance pairs\n", len(report.Pairs))
	}
	for _, d := range report.Dropped {
		color.Yellow.Printf("Dropped %s (confidence %.2f)\n", d.Table, d.Confidence)
	}
	if n := len(report.Skipped); n > 0 {
		color.Yellow.Printf("Skipped %d unparseable statements\n", n)
	}
}
