package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"amateurs/internal/models"
	"amateurs/internal/repository"

	"github.com/pgvector/pgvector-go"
)

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// HTTPEmbedder calls an embedding service that accepts
// {"input": text, "dimensions": n} and answers {"embedding": [...]}.
type HTTPEmbedder struct {
	endpoint   string
	dimensions int
	client     *http.Client
}

func NewHTTPEmbedder(endpoint string, dimensions int, timeout time.Duration) *HTTPEmbedder {
	return &HTTPEmbedder{
		endpoint:   endpoint,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Input: text, Dimensions: e.dimensions})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector")
	}
	if e.dimensions > 0 && len(out.Embedding) != e.dimensions {
		return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(out.Embedding), e.dimensions)
	}
	return out.Embedding, nil
}

// VectorIndexer embeds post text and stores the vector in post_embeddings.
type VectorIndexer struct {
	embedder Embedder
	repo     repository.EmbeddingRepository
}

func NewVectorIndexer(embedder Embedder, repo repository.EmbeddingRepository) *VectorIndexer {
	return &VectorIndexer{embedder: embedder, repo: repo}
}

func (v *VectorIndexer) Create(ctx context.Context, post models.Post) error {
	return v.index(ctx, post)
}

func (v *VectorIndexer) Update(ctx context.Context, post models.Post) error {
	return v.index(ctx, post)
}

func (v *VectorIndexer) DeleteByPostID(ctx context.Context, postID uint) error {
	return v.repo.DeleteByPostID(ctx, postID)
}

func (v *VectorIndexer) index(ctx context.Context, post models.Post) error {
	text := models.EmbeddingText(&post)
	vec, err := v.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	return v.repo.Upsert(ctx, &models.PostEmbedding{
		PostID:    post.ID,
		BoardType: post.BoardType,
		Content:   text,
		Embedding: pgvector.NewVector(vec),
	})
}
