package enhance

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/schemarev/schemarev/internal/entity"
)

const systemPrompt = `You are a database archaeologist. Given a table layout
recovered from a PostgreSQL dump, write a one-sentence description of what
the entity most likely represents in the business domain. Answer with the
sentence only, no preamble.`

// Completer abstracts the chat client so tests can stub it.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Enhancer fills in descriptions for entities whose confidence fell below
// the given threshold. Entities above it are left untouched.
type Enhancer struct {
	client    Completer
	threshold float64
	logger    *zap.SugaredLogger
}

func NewEnhancer(c Completer, threshold float64, logger *zap.SugaredLogger) *Enhancer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Enhancer{client: c, threshold: threshold, logger: logger}
}

// Describe updates the Description of each low-confidence entity in place.
// A failed completion logs a warning and leaves that entity as is; one bad
// response must not sink the whole run.
func (e *Enhancer) Describe(ctx context.Context, entities []entity.Entity) []entity.Entity {
	for i := range entities {
		ent := &entities[i]
		if ent.Confidence >= e.threshold || ent.Description != "" {
			continue
		}
		desc, err := e.client.Complete(ctx, []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: describePrompt(*ent)},
		})
		if err != nil {
			e.logger.Warnw("entity description failed",
				"entity", ent.Name,
				"error", err)
			continue
		}
		ent.Description = desc
	}
	return entities
}

func describePrompt(ent entity.Entity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table %s (recovered confidence %.2f)\nColumns:\n", ent.Table, ent.Confidence)
	for _, f := range ent.Fields {
		fmt.Fprintf(&b, "  %s %s\n", f.Name, f.Type)
	}
	for _, r := range ent.Refs {
		fmt.Fprintf(&b, "References: %s via %s\n", r.Target, r.Field)
	}
	return b.String()
}
