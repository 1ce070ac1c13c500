// Package seed provides helpers to create demo data for the board database.
// These helpers are intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"amateurs/internal/models"
	"amateurs/internal/repository"
	"amateurs/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

var devcourseTracks = []string{"BACKEND", "FRONTEND", "MOBILE", "DATA", "CLOUD"}

// Factory builds board entities and persists them through the repository store.
type Factory struct {
	db    *gorm.DB
	store repository.Store
	fake  *gofakeit.Faker
	opts  Options
}

// NewFactory creates a Factory bound to db. A zero opts.RandomSeed seeds from
// the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		db:    db,
		store: repository.NewStore(db),
		fake:  gofakeit.New(seed),
		opts:  opts,
	}
}

// CreateUser persists a sample user. Overrides run before the insert.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email:          f.fake.Email(),
		Nickname:       f.fake.Username() + strconv.Itoa(f.fake.Number(100, 999)),
		ImageURL:       fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.fake.UUID()),
		DevcourseName:  devcourseTracks[f.fake.Number(0, len(devcourseTracks)-1)],
		DevcourseBatch: strconv.Itoa(f.fake.Number(1, 6)),
		Role:           models.RoleUser,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// BuildPost constructs an unsaved post owned by user with a created_at spread
// over the last MaxDays days.
func (f *Factory) BuildPost(user *models.User, boardType models.BoardType, overrides ...func(*models.Post)) *models.Post {
	tags := make([]string, f.fake.Number(0, 3))
	for i := range tags {
		tags[i] = f.fake.HackerNoun()
	}

	content := f.fake.Paragraph(1, 3, 8, "\n\n")
	if f.fake.Bool() {
		content += fmt.Sprintf("\n\n![%s](https://picsum.photos/seed/%s/800/600)", f.fake.Word(), f.fake.UUID())
	}

	post := models.NewPost(models.PostRequest{
		Title:   f.fake.HackerPhrase(),
		Content: content,
		Tags:    tags,
	}, user.ID, boardType)

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.fake.Number(0, maxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().Add(-back)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost persists a built post with its statistics row and image rows in
// one transaction.
func (f *Factory) CreatePost(ctx context.Context, user *models.User, boardType models.BoardType, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, boardType, overrides...)
	err := f.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		if err := tx.Statistics().Create(ctx, post.ID); err != nil {
			return err
		}
		return tx.Images().SaveAll(ctx, post.ID, service.ExtractImageURLs(post.Content))
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// CreateComment adds a comment by user on post.
func (f *Factory) CreateComment(ctx context.Context, user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: f.fake.Sentence(f.fake.Number(4, 16)),
	}
	if err := f.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Like records user's like on post and bumps the post's like count. Repeated
// likes are no-ops.
func (f *Factory) Like(ctx context.Context, user *models.User, post *models.Post) error {
	return f.store.Transaction(ctx, func(tx repository.Store) error {
		locked, err := tx.Posts().FindByIDForUpdate(ctx, post.ID)
		if err != nil {
			return err
		}
		created, err := tx.Engagement().AddLike(ctx, post.ID, user.ID)
		if err != nil || !created {
			return err
		}
		locked.IncrementLikeCount()
		if err := tx.Posts().Save(ctx, locked); err != nil {
			return err
		}
		post.LikeCount = locked.LikeCount
		return nil
	})
}

// Bookmark records user's bookmark on post.
func (f *Factory) Bookmark(ctx context.Context, user *models.User, post *models.Post) error {
	return f.db.WithContext(ctx).
		Where(models.Bookmark{PostID: post.ID, UserID: user.ID}).
		FirstOrCreate(&models.Bookmark{}).Error
}

// View bumps the post's view count n times.
func (f *Factory) View(ctx context.Context, post *models.Post, n int) error {
	for range n {
		if err := f.store.Statistics().IncrementViewCount(ctx, post.ID); err != nil {
			return err
		}
	}
	return nil
}
