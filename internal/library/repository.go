// Package library persists detected schema patterns in Postgres so that
// future runs can look up how a table shape was classified before. Pattern
// descriptions are embedded with an OpenAI-compatible endpoint and stored as
// pgvector columns for similarity search.
package library

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/schemarev/schemarev/internal/entity"
	"github.com/schemarev/schemarev/internal/pattern"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func Connect(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect pattern library: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pattern library: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

func (r *Repository) Close() {
	r.pool.Close()
}

// EnsureSchema creates the library tables if they do not exist. The vector
// extension must already be installed in the target database.
func (r *Repository) EnsureSchema(ctx context.Context, dims int) error {
	ddl := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS pattern_pairs (
			id            uuid PRIMARY KEY,
			base_entity   text NOT NULL,
			vocab_table   text NOT NULL,
			instance_table text NOT NULL,
			translation_table text,
			created_at    timestamptz NOT NULL DEFAULT now(),
			UNIQUE (vocab_table, instance_table)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS construct_profiles (
			id          uuid PRIMARY KEY,
			entity_name text NOT NULL,
			construct   text NOT NULL,
			step_count  int NOT NULL,
			delta       double precision NOT NULL,
			description text NOT NULL DEFAULT '',
			embedding   vector(%d),
			created_at  timestamptz NOT NULL DEFAULT now()
		)`, dims),
		`CREATE INDEX IF NOT EXISTS idx_construct_profiles_entity
			ON construct_profiles (entity_name)`,
	}
	for _, stmt := range ddl {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure library schema: %w", err)
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, rolling back on error.
func (r *Repository) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SavePair upserts a vocabulary/instance pairing.
func (r *Repository) SavePair(ctx context.Context, p pattern.Pair) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pattern_pairs (id, base_entity, vocab_table, instance_table, translation_table)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 ON CONFLICT (vocab_table, instance_table) DO UPDATE
		 SET base_entity = EXCLUDED.base_entity,
		     translation_table = EXCLUDED.translation_table`,
		uuid.New(), p.BaseEntityName, p.VocabularyTable, p.InstanceTable, p.TranslationTable)
	if err != nil {
		return fmt.Errorf("save pair %s/%s: %w", p.VocabularyTable, p.InstanceTable, err)
	}
	return nil
}

// ConstructProfile is a stored record of construct parser output for an entity.
type ConstructProfile struct {
	ID          uuid.UUID
	EntityName  string
	Construct   string
	StepCount   int
	Delta       float64
	Description string
	CreatedAt   time.Time
}

// SaveConstructProfiles persists construct summaries for an entity, one row
// per construct, embedding an optional description vector.
func (r *Repository) SaveConstructProfiles(ctx context.Context, e entity.Entity, vectors map[string]pgvector.Vector) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		for _, cs := range e.Constructs {
			var vec any
			if v, ok := vectors[cs.Construct]; ok {
				vec = v
			}
			_, err := tx.Exec(ctx,
				`INSERT INTO construct_profiles (id, entity_name, construct, step_count, delta, description, embedding)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				uuid.New(), e.Name, cs.Construct, cs.StepCount, cs.ConfidenceDelta, e.Description, vec)
			if err != nil {
				return fmt.Errorf("save construct profile %s/%s: %w", e.Name, cs.Construct, err)
			}
		}
		return nil
	})
}

// PatternHit is a library search result.
type PatternHit struct {
	EntityName  string
	Construct   string
	StepCount   int
	Delta       float64
	Description string
	Score       float64
}

// SearchPatterns finds stored profiles whose entity name or description
// matches the query. Case-insensitive substring match.
func (r *Repository) SearchPatterns(ctx context.Context, query string, limit int) ([]PatternHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT entity_name, construct, step_count, delta, description
		 FROM construct_profiles
		 WHERE entity_name ILIKE '%' || $1 || '%'
		    OR description ILIKE '%' || $1 || '%'
		 ORDER BY created_at DESC
		 LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, fmt.Errorf("search patterns: %w", err)
	}
	defer rows.Close()

	var hits []PatternHit
	for rows.Next() {
		var h PatternHit
		if err := rows.Scan(&h.EntityName, &h.Construct, &h.StepCount, &h.Delta, &h.Description); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// SearchSimilar finds profiles nearest to the query vector by cosine distance.
func (r *Repository) SearchSimilar(ctx context.Context, vec pgvector.Vector, limit int) ([]PatternHit, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx,
		`SELECT entity_name, construct, step_count, delta, description,
		        1 - (embedding <=> $1) AS score
		 FROM construct_profiles
		 WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		vec, limit)
	if err != nil {
		return nil, fmt.Errorf("search similar patterns: %w", err)
	}
	defer rows.Close()

	var hits []PatternHit
	for rows.Next() {
		var h PatternHit
		if err := rows.Scan(&h.EntityName, &h.Construct, &h.StepCount, &h.Delta, &h.Description, &h.Score); err != nil {
			return nil, err
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// ListPairs returns all stored vocabulary/instance pairs.
func (r *Repository) ListPairs(ctx context.Context) ([]pattern.Pair, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT base_entity, vocab_table, instance_table, COALESCE(translation_table, '')
		 FROM pattern_pairs
		 ORDER BY base_entity`)
	if err != nil {
		return nil, fmt.Errorf("list pairs: %w", err)
	}
	defer rows.Close()

	var pairs []pattern.Pair
	for rows.Next() {
		var p pattern.Pair
		if err := rows.Scan(&p.BaseEntityName, &p.VocabularyTable, &p.InstanceTable, &p.TranslationTable); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}
