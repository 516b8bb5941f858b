package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultEndpoint is the Mistral API host.
	DefaultEndpoint = "https://api.mistral.ai"

	defaultModel = "mistral-embed"

	// mistral-embed produces 1024-dimension vectors.
	mistralDimension = 1024
)

// MistralConfig holds Mistral client configuration
type MistralConfig struct {
	APIKey   string
	Endpoint string // DefaultEndpoint when empty
	Model    string // defaultModel when empty
	Timeout  time.Duration
}

// MistralClient implements Provider against the Mistral embeddings API.
type MistralClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

// NewMistralClient creates an embeddings client
func NewMistralClient(cfg MistralConfig) *MistralClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &MistralClient{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		model:      model,
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     *int      `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// EmbedBatch generates embeddings for texts in one API call. Entries tagged
// with an index are mapped by that index; untagged entries fall back to their
// position in the response. Positions the backend never fills stay nil.
func (c *MistralClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	payload, err := json.Marshal(embeddingsRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &EmbeddingError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	var parsed embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &EmbeddingError{Err: err}
	}

	out := make([][]float32, len(texts))
	for pos, d := range parsed.Data {
		idx := pos
		if d.Index != nil {
			idx = *d.Index
		}
		if idx < 0 || idx >= len(out) {
			continue
		}
		out[idx] = d.Embedding
	}
	return out, nil
}

// EmbedOne generates an embedding for a single text.
func (c *MistralClient) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || vectors[0] == nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("backend returned no vector")}
	}
	return vectors[0], nil
}

// ModelVersion returns the configured model identifier.
func (c *MistralClient) ModelVersion() string {
	return c.model
}

// Dimension returns the embedding dimension.
func (c *MistralClient) Dimension() int {
	return mistralDimension
}
