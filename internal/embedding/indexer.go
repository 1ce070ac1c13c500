// Package embedding keeps the semantic index of posts in step with post writes.
package embedding

import (
	"context"

	"amateurs/internal/models"
)

// Indexer maintains the embedding entry of a post.
type Indexer interface {
	Create(ctx context.Context, post models.Post) error
	Update(ctx context.Context, post models.Post) error
	DeleteByPostID(ctx context.Context, postID uint) error
}

// NoopIndexer is used when embedding is disabled.
type NoopIndexer struct{}

func (NoopIndexer) Create(context.Context, models.Post) error { return nil }

func (NoopIndexer) Update(context.Context, models.Post) error { return nil }

func (NoopIndexer) DeleteByPostID(context.Context, uint) error { return nil }
