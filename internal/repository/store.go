package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that post lifecycle operations touch together
// and runs them in one transaction.
type Store interface {
	Posts() PostRepository
	Statistics() StatisticsRepository
	Engagement() EngagementRepository
	Images() PostImageRepository
	// Transaction runs fn with a Store bound to a single database transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db         *gorm.DB
	posts      PostRepository
	statistics StatisticsRepository
	engagement EngagementRepository
	images     PostImageRepository
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:         db,
		posts:      NewPostRepository(db),
		statistics: NewStatisticsRepository(db),
		engagement: NewEngagementRepository(db),
		images:     NewPostImageRepository(db),
	}
}

func (s *gormStore) Posts() PostRepository { return s.posts }
func (s *gormStore) Statistics() StatisticsRepository { return s.statistics }
func (s *gormStore) Engagement() EngagementRepository { return s.engagement }
func (s *gormStore) Images() PostImageRepository { return s.images }

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
