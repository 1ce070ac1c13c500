package repository

import (
	"context"
	"errors"

	"amateurs/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingRepository persists post vectors in post_embeddings.
type EmbeddingRepository interface {
	Upsert(ctx context.Context, embedding *models.PostEmbedding) error
	FindByPostID(ctx context.Context, postID uint) (*models.PostEmbedding, error)
	DeleteByPostID(ctx context.Context, postID uint) error
}

type embeddingRepository struct {
	db *gorm.DB
}

func NewEmbeddingRepository(db *gorm.DB) EmbeddingRepository {
	return &embeddingRepository{db: db}
}

func (r *embeddingRepository) Upsert(ctx context.Context, embedding *models.PostEmbedding) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"board_type", "content", "embedding", "updated_at"}),
	}).Create(embedding).Error
}

func (r *embeddingRepository) FindByPostID(ctx context.Context, postID uint) (*models.PostEmbedding, error) {
	var e models.PostEmbedding
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("PostEmbedding", postID)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *embeddingRepository) DeleteByPostID(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.PostEmbedding{}).Error
}
