package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/scholar/internal/errs"
)

// cohereMaxBatch is the largest number of texts Cohere accepts per embed call.
const cohereMaxBatch = 96

// Cohere input types.
const (
	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)

// CohereConfig configures the Cohere embeddings client.
type CohereConfig struct {
	APIKey     string
	BaseURL    string // default https://api.cohere.com
	Model      string // default embed-english-v3.0
	Dimensions int    // default 1024
	BatchSize  int    // capped at 96
	Timeout    time.Duration
}

// CohereEmbedder calls the Cohere /v1/embed endpoint.
type CohereEmbedder struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
	batchSize  int
	client     *http.Client
}

type cohereEmbedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
	Truncate  string   `json:"truncate,omitempty"`
}

type cohereEmbedResponse struct {
	ID         string      `json:"id"`
	Embeddings [][]float32 `json:"embeddings"`
}

type cohereErrorResponse struct {
	Message string `json:"message"`
}

// NewCohereEmbedder creates a Cohere client. An API key is required.
func NewCohereEmbedder(cfg CohereConfig) (*CohereEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("cohere: missing API key (set COHERE_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cohere.com"
	}
	if cfg.Model == "" {
		cfg.Model = "embed-english-v3.0"
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = 1024
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > cohereMaxBatch {
		cfg.BatchSize = cohereMaxBatch
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CohereEmbedder{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		batchSize:  cfg.BatchSize,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Embed embeds a search query.
func (e *CohereEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.call(ctx, "embed query", []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds documents, splitting texts into API-sized batches.
func (e *CohereEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		vecs, err := e.call(ctx, "embed documents", texts[start:end], inputTypeDocument)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *CohereEmbedder) call(ctx context.Context, op string, texts []string, inputType string) ([][]float32, error) {
	body, err := json.Marshal(cohereEmbedRequest{
		Texts:     texts,
		Model:     e.model,
		InputType: inputType,
		Truncate:  "END",
	})
	if err != nil {
		return nil, errs.NewEmbeddingError(op, fmt.Errorf("marshal request: %w", err), false)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/embed", bytes.NewReader(body))
	if err != nil {
		return nil, errs.NewEmbeddingError(op, fmt.Errorf("create request: %w", err), false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		// Cancellation by the caller is not worth retrying.
		return nil, errs.NewEmbeddingError(op, err, ctx.Err() == nil)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.NewEmbeddingError(op, fmt.Errorf("read response: %w", err), true)
	}
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(payload))
		var errResp cohereErrorResponse
		if json.Unmarshal(payload, &errResp) == nil && errResp.Message != "" {
			msg = errResp.Message
		}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, errs.NewEmbeddingError(op, fmt.Errorf("cohere returned %s: %s", resp.Status, msg), retryable)
	}

	var out cohereEmbedResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, errs.NewEmbeddingError(op, fmt.Errorf("decode response: %w", err), false)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, errs.NewEmbeddingError(op,
			fmt.Errorf("cohere returned %d embeddings for %d texts", len(out.Embeddings), len(texts)), false)
	}
	for i, v := range out.Embeddings {
		if len(v) != e.dimensions {
			return nil, errs.NewEmbeddingError(op,
				fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), e.dimensions), false)
		}
	}
	return out.Embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *CohereEmbedder) Dimensions() int { return e.dimensions }

// ModelName returns the Cohere model name.
func (e *CohereEmbedder) ModelName() string { return e.model }

// Close releases idle connections.
func (e *CohereEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
