package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/schemarev/schemarev/internal/entity"
	"github.com/schemarev/schemarev/internal/pattern"
)

// Service couples the repository with the embedding client. embed may be
// nil; profiles are then stored without vectors and semantic search is
// unavailable.
type Service struct {
	repo  *Repository
	embed *EmbedClient
}

func NewService(repo *Repository, embed *EmbedClient) *Service {
	return &Service{repo: repo, embed: embed}
}

// SaveRun persists the pairs and construct profiles of one engine run.
func (s *Service) SaveRun(ctx context.Context, entities []entity.Entity, pairs []pattern.Pair) error {
	for _, p := range pairs {
		if err := s.repo.SavePair(ctx, p); err != nil {
			return err
		}
	}

	type slot struct {
		entity    int
		construct string
	}
	var texts []string
	var slots []slot
	for i, e := range entities {
		for _, cs := range e.Constructs {
			texts = append(texts, profileText(e, cs))
			slots = append(slots, slot{entity: i, construct: cs.Construct})
		}
	}

	vectors := make([]map[string]pgvector.Vector, len(entities))
	if s.embed != nil && len(texts) > 0 {
		embedded, err := s.embed.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed construct profiles: %w", err)
		}
		for i, sl := range slots {
			if vectors[sl.entity] == nil {
				vectors[sl.entity] = make(map[string]pgvector.Vector)
			}
			vectors[sl.entity][sl.construct] = pgvector.NewVector(embedded[i])
		}
	}

	for i, e := range entities {
		if len(e.Constructs) == 0 {
			continue
		}
		if err := s.repo.SaveConstructProfiles(ctx, e, vectors[i]); err != nil {
			return err
		}
	}
	return nil
}

// SearchSemantic embeds the query and ranks stored profiles by cosine
// similarity.
func (s *Service) SearchSemantic(ctx context.Context, query string, limit int) ([]PatternHit, error) {
	if s.embed == nil {
		return nil, fmt.Errorf("semantic search requires an embedding endpoint")
	}
	vecs, err := s.embed.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.repo.SearchSimilar(ctx, pgvector.NewVector(vecs[0]), limit)
}

func (s *Service) SearchPatterns(ctx context.Context, query string, limit int) ([]PatternHit, error) {
	return s.repo.SearchPatterns(ctx, query, limit)
}

func (s *Service) ListPairs(ctx context.Context) ([]pattern.Pair, error) {
	return s.repo.ListPairs(ctx)
}

// profileText is the document embedded for one construct profile.
func profileText(e entity.Entity, cs entity.ConstructSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "entity %s construct %s with %d steps (delta %+.2f)",
		e.Name, cs.Construct, cs.StepCount, cs.ConfidenceDelta)
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	return b.String()
}
