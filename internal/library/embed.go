package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schemarev/schemarev/internal/config"
)

const (
	embedBatchSize   = 100
	embedConcurrency = 4
	embedMaxRetries  = 3
	embedRetryDelay  = 2 * time.Second
)

// EmbedClient talks to an OpenAI-compatible /embeddings endpoint.
type EmbedClient struct {
	endpoint   string
	apiKey     string
	model      string
	dimensions int
	http       *http.Client
}

func NewEmbedClient(cfg config.LibraryConfig) (*EmbedClient, error) {
	if cfg.EmbeddingEndpoint == "" {
		return nil, fmt.Errorf("library.embedding_endpoint is required")
	}
	dims := cfg.EmbeddingDims
	if dims <= 0 {
		dims = 1024
	}
	return &EmbedClient{
		endpoint:   cfg.EmbeddingEndpoint,
		apiKey:     cfg.EmbeddingAPIKey,
		model:      cfg.EmbeddingModel,
		dimensions: dims,
		http:       &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *EmbedClient) Dimensions() int {
	return c.dimensions
}

type embedRequest struct {
	Model          string   `json:"model"`
	Input          []string `json:"input"`
	Dimensions     int      `json:"dimensions,omitempty"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// EmbedBatch embeds texts in chunks of embedBatchSize with bounded
// concurrency. Each chunk writes into its own pre-allocated slot, so result
// order matches input order without extra synchronisation.
func (c *EmbedClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	type chunk struct{ start, end int }
	var chunks []chunk
	for i := 0; i < len(texts); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		chunks = append(chunks, chunk{i, end})
	}

	chunkResults := make([][][]float32, len(chunks))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(embedConcurrency)

	for idx, ch := range chunks {
		idx, ch := idx, ch
		eg.Go(func() error {
			payload := embedRequest{
				Model:          c.model,
				Input:          texts[ch.start:ch.end],
				Dimensions:     c.dimensions,
				EncodingFormat: "float",
			}
			reqBody, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("marshal embed request (chunk %d): %w", idx, err)
			}

			var lastErr error
			for attempt := 0; attempt < embedMaxRetries; attempt++ {
				if attempt > 0 {
					select {
					case <-egCtx.Done():
						return egCtx.Err()
					case <-time.After(embedRetryDelay * time.Duration(attempt)):
					}
				}
				vecs, err := c.doEmbedRequest(egCtx, reqBody)
				if err == nil {
					chunkResults[idx] = vecs
					return nil
				}
				lastErr = err
			}
			return fmt.Errorf("chunk %d exhausted retries: %w", idx, lastErr)
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	all := make([][]float32, 0, len(texts))
	for _, r := range chunkResults {
		all = append(all, r...)
	}
	return all, nil
}

func (c *EmbedClient) doEmbedRequest(ctx context.Context, reqBody []byte) ([][]float32, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding API error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("embedding API returned empty response")
	}

	var result embedResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", result.Error.Message)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	// Providers may return data out of order; the index field is canonical.
	sort.Slice(result.Data, func(i, j int) bool {
		return result.Data[i].Index < result.Data[j].Index
	})
	vecs := make([][]float32, len(result.Data))
	for i, d := range result.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}
