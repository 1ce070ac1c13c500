package repository

import (
	"context"
	"errors"

	"amateurs/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// EngagementRepository counts and cleans up the per-post engagement rows.
type EngagementRepository interface {
	CountComments(ctx context.Context, postID uint) (int64, error)
	CountBookmarks(ctx context.Context, postID uint) (int64, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
	IsLiked(ctx context.Context, postID, userID uint) (bool, error)
	IsBookmarked(ctx context.Context, postID, userID uint) (bool, error)

	AddLike(ctx context.Context, postID, userID uint) (bool, error)
	RemoveLike(ctx context.Context, postID, userID uint) (bool, error)

	DeleteBookmarksByPostID(ctx context.Context, postID uint) error
	DeleteLikesByPostID(ctx context.Context, postID uint) error
	DeleteReportsByPostID(ctx context.Context, postID uint) error
	DeleteCommentsByPostID(ctx context.Context, postID uint) error
}

type engagementRepository struct {
	db *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// CountComments ignores soft-deleted comments.
func (r *engagementRepository) CountComments(ctx context.Context, postID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND is_deleted = ?", postID, false).
		Count(&n).Error
	return n, err
}

func (r *engagementRepository) CountBookmarks(ctx context.Context, postID uint) (int64, error) {
	return r.count(ctx, &models.Bookmark{}, postID)
}

func (r *engagementRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return r.count(ctx, &models.Like{}, postID)
}

func (r *engagementRepository) count(ctx context.Context, model interface{}, postID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(model).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

func (r *engagementRepository) IsLiked(ctx context.Context, postID, userID uint) (bool, error) {
	return r.exists(ctx, &models.Like{}, postID, userID)
}

func (r *engagementRepository) IsBookmarked(ctx context.Context, postID, userID uint) (bool, error) {
	return r.exists(ctx, &models.Bookmark{}, postID, userID)
}

func (r *engagementRepository) exists(ctx context.Context, model interface{}, postID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(model).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// AddLike inserts the like row. It reports false when the like already exists.
func (r *engagementRepository) AddLike(ctx context.Context, postID, userID uint) (bool, error) {
	err := r.db.WithContext(ctx).Create(&models.Like{PostID: postID, UserID: userID}).Error
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoveLike deletes the like row. It reports false when there was none.
func (r *engagementRepository) RemoveLike(ctx context.Context, postID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *engagementRepository) DeleteBookmarksByPostID(ctx context.Context, postID uint) error {
	return r.deleteByPostID(ctx, &models.Bookmark{}, postID)
}

func (r *engagementRepository) DeleteLikesByPostID(ctx context.Context, postID uint) error {
	return r.deleteByPostID(ctx, &models.Like{}, postID)
}

func (r *engagementRepository) DeleteReportsByPostID(ctx context.Context, postID uint) error {
	return r.deleteByPostID(ctx, &models.Report{}, postID)
}

// DeleteCommentsByPostID hard-deletes every comment, soft-deleted ones included.
func (r *engagementRepository) DeleteCommentsByPostID(ctx context.Context, postID uint) error {
	return r.deleteByPostID(ctx, &models.Comment{}, postID)
}

func (r *engagementRepository) deleteByPostID(ctx context.Context, model interface{}, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(model).Error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
