package entity

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/schemarev/schemarev/internal/construct"
	"github.com/schemarev/schemarev/internal/pattern"
	"github.com/schemarev/schemarev/internal/schema"
)

// Options tunes a reverse-engineering run.
type Options struct {
	MinConfidence     float64
	MergeTranslations bool
}

// Dropped records an entity excluded because its combined confidence fell
// below the threshold. Diagnostic, not an error.
type Dropped struct {
	Table      string
	Confidence float64
}

// Report is the per-run outcome next to the accepted entities.
type Report struct {
	Entities       []Entity
	Dropped        []Dropped
	Skipped        []schema.SkippedStatement
	Pairs          []pattern.Pair
	MetricsSummary string
}

// Engine runs the full reverse-engineering flow: baseline model, construct
// scoring, threshold filter, structural classification. The coordinator it
// owns is single-threaded, so the engine serializes every run and every
// metrics access; one engine can back concurrent callers.
type Engine struct {
	mu          sync.Mutex
	coordinator *construct.Coordinator
	logger      *zap.SugaredLogger
	opts        Options
}

func NewEngine(logger *zap.SugaredLogger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		coordinator: construct.NewCoordinator(logger),
		logger:      logger,
		opts:        opts,
	}
}

// Metrics returns a snapshot of the per-construct counters.
func (e *Engine) Metrics() map[construct.Construct]construct.Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coordinator.GetMetrics()
}

// SuccessRates returns successes/attempts per construct.
func (e *Engine) SuccessRates() map[construct.Construct]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.coordinator.GetSuccessRates()
}

// ResetMetrics zeroes all construct counters.
func (e *Engine) ResetMetrics() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.coordinator.ResetMetrics()
}

// Reverse turns one batch of SQL text into accepted canonical entities.
func (e *Engine) Reverse(sql string) (*Report, error) {
	parsed, err := schema.Parse(sql)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.build(parsed), nil
}

// ReverseFiles processes several already-read inputs as one logical batch so
// cross-table classification sees every table. Inputs are processed in key
// order for reproducible output.
func (e *Engine) ReverseFiles(inputs map[string]string) (*Report, error) {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	merged := &schema.ParseResult{}
	for _, name := range names {
		parsed, err := schema.Parse(inputs[name])
		if err != nil {
			return nil, err
		}
		merged.Tables = append(merged.Tables, parsed.Tables...)
		merged.Functions = append(merged.Functions, parsed.Functions...)
		merged.Skipped = append(merged.Skipped, parsed.Skipped...)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.build(merged), nil
}

func (e *Engine) build(parsed *schema.ParseResult) *Report {
	report := &Report{Skipped: parsed.Skipped}

	translationIndex := pattern.BuildTranslationIndex(parsed.Tables)
	translationTables := make(map[string]schema.Table)
	translationResults := make(map[string]pattern.TranslationResult)
	for _, t := range parsed.Tables {
		if r := pattern.DetectTranslation(t); r.IsTranslationTable {
			translationTables[t.Name] = t
			translationResults[t.Name] = r
		}
	}

	var entities []Entity
	for _, t := range parsed.Tables {
		if e.opts.MergeTranslations {
			if _, isTranslation := translationResults[t.Name]; isTranslation {
				// Merged into the parent below, not emitted standalone.
				continue
			}
		}

		ent := FromTable(t)
		ent.AttachConstructs(e.constructResults(t, parsed.Functions))

		if e.opts.MergeTranslations {
			if trName, ok := translationIndex[ent.Name]; ok {
				ent.MergeTranslation(translationTables[trName], translationResults[trName])
			}
		}

		if ent.Confidence < e.opts.MinConfidence {
			e.logger.Infow("entity below confidence threshold",
				"table", t.Name,
				"confidence", ent.Confidence,
				"threshold", e.opts.MinConfidence,
			)
			report.Dropped = append(report.Dropped, Dropped{Table: t.Name, Confidence: ent.Confidence})
			continue
		}
		entities = append(entities, ent)
	}

	// Second pass: cross-table structural classification over everything
	// that survived the threshold.
	detections := make(map[string]pattern.DetectionResult)
	var tableColumns []pattern.TableColumns
	for _, t := range parsed.Tables {
		detections[t.Name] = pattern.Classify(t.Name, t.ColumnNames())
		tableColumns = append(tableColumns, pattern.TableColumns{Name: t.Name, Columns: t.ColumnNames()})
	}
	report.Pairs = pattern.DetectPairs(tableColumns, translationIndex)
	for _, p := range report.Pairs {
		AttachPair(entities, p, detections)
	}

	report.Entities = entities
	report.MetricsSummary = e.coordinator.MetricsSummary()
	return report
}

// constructResults runs the coordinator over every function body that
// references the table. Functions that reference no parsed table contribute
// nothing; that procedural logic is beyond what the model claims.
func (e *Engine) constructResults(t schema.Table, functions []schema.Function) []*construct.Result {
	var results []*construct.Result
	for _, fn := range functions {
		if fn.Body == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(fn.Body), strings.ToLower(t.Name)) {
			continue
		}
		results = append(results, e.coordinator.ParseWithBestParsers(fn.Body)...)
	}
	return results
}
