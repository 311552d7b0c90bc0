package entity

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk form of one entity, with run provenance so a
// regenerated file can be traced to the run that produced it.
type Document struct {
	Kind        string    `yaml:"kind"`
	RunID       string    `yaml:"run_id"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Entity      Entity    `yaml:"entity"`
}

// Marshal renders one entity document.
func Marshal(e Entity, runID uuid.UUID, now time.Time) ([]byte, error) {
	doc := Document{
		Kind:        "entity",
		RunID:       runID.String(),
		GeneratedAt: now.UTC(),
		Entity:      e,
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal entity %s: %w", e.Name, err)
	}
	return out, nil
}

// WriteFiles emits one YAML file per entity under dir. Preview mode renders
// without writing and returns the would-be paths.
func WriteFiles(entities []Entity, dir string, runID uuid.UUID, preview bool) ([]string, error) {
	if !preview {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	now := time.Now()
	paths := make([]string, 0, len(entities))
	for _, e := range entities {
		out, err := Marshal(e, runID, now)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, e.Name+".yaml")
		if !preview {
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return nil, fmt.Errorf("write %s: %w", path, err)
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}
