package repository

import (
	"context"

	"amateurs/internal/models"

	"gorm.io/gorm"
)

// PostImageRepository stores the image urls referenced by a post's content.
type PostImageRepository interface {
	SaveAll(ctx context.Context, postID uint, urls []string) error
	FindByPostID(ctx context.Context, postID uint) ([]models.PostImage, error)
	DeleteByPostID(ctx context.Context, postID uint) error
}

type postImageRepository struct {
	db *gorm.DB
}

func NewPostImageRepository(db *gorm.DB) PostImageRepository {
	return &postImageRepository{db: db}
}

func (r *postImageRepository) SaveAll(ctx context.Context, postID uint, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	images := make([]models.PostImage, len(urls))
	for i, u := range urls {
		images[i] = models.PostImage{PostID: postID, ImageURL: u}
	}
	return r.db.WithContext(ctx).Create(&images).Error
}

func (r *postImageRepository) FindByPostID(ctx context.Context, postID uint) ([]models.PostImage, error) {
	var images []models.PostImage
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id").Find(&images).Error
	return images, err
}

func (r *postImageRepository) DeleteByPostID(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.PostImage{}).Error
}
