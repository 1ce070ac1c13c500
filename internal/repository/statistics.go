package repository

import (
	"context"
	"errors"

	"amateurs/internal/models"
	"amateurs/internal/observability"

	"gorm.io/gorm"
)

// StatisticsRepository stores per-post view counters.
type StatisticsRepository interface {
	Create(ctx context.Context, postID uint) error
	GetViewCount(ctx context.Context, postID uint) (int64, error)
	IncrementViewCount(ctx context.Context, postID uint) error
	DeleteByPostID(ctx context.Context, postID uint) error
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) Create(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Create(&models.PostStatistics{PostID: postID}).Error
}

func (r *statisticsRepository) GetViewCount(ctx context.Context, postID uint) (int64, error) {
	var stats models.PostStatistics
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Take(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, models.NewNotFoundError("PostStatistics", postID)
	}
	if err != nil {
		return 0, err
	}
	return stats.ViewCount, nil
}

// IncrementViewCount adds one view in a single UPDATE so concurrent views are not lost.
func (r *statisticsRepository) IncrementViewCount(ctx context.Context, postID uint) error {
	defer observability.TrackQuery("increment", "post_statistics")()
	res := r.db.WithContext(ctx).Model(&models.PostStatistics{}).
		Where("post_id = ?", postID).
		Update("view_count", gorm.Expr("view_count + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("PostStatistics", postID)
	}
	return nil
}

func (r *statisticsRepository) DeleteByPostID(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.PostStatistics{}).Error
}
