package seed

import (
	"context"
	"fmt"
	"log"

	"amateurs/internal/models"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// MaxDays bounds how far back post timestamps are spread.
	MaxDays int
	// RandomSeed makes runs reproducible when non-zero.
	RandomSeed int64
	// DemoAdmin adds an ADMIN account with a fixed email.
	DemoAdmin bool
}

// DemoAdminEmail is the account created when Options.DemoAdmin is set.
const DemoAdminEmail = "admin@amateurs.local"

var seedBoards = []models.BoardType{
	models.BoardFree,
	models.BoardQnA,
	models.BoardRetrospect,
	models.BoardMarket,
	models.BoardGathering,
	models.BoardMatching,
	models.BoardProject,
	models.BoardInfo,
	models.BoardReview,
}

// Result summarizes what a run created.
type Result struct {
	Users     int
	Posts     int
	Comments  int
	Likes     int
	Bookmarks int
}

// Seeder populates the board tables with fake data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// Factory exposes the seeder's entity factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// clearOrder lists tables children first so foreign keys never block a delete.
var clearOrder = []string{
	"post_embeddings",
	"post_images",
	"reports",
	"likes",
	"bookmarks",
	"comments",
	"post_statistics",
	"market_items",
	"gathering_posts",
	"matching_posts",
	"projects",
	"popular_posts",
	"recommended_posts",
	"posts",
	"users",
}

// ClearAll deletes every row from the board tables.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range clearOrder {
			if !tx.Migrator().HasTable(table) {
				continue
			}
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}

// Run creates users, spreads posts across them and every board, then adds
// comments, likes, bookmarks and views from other users.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	log.Printf("🌱 Seeding %d users and %d posts...", s.opts.NumUsers, s.opts.NumPosts)

	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
		log.Println("✓ existing board data cleared")
	}

	res := &Result{}
	users := make([]*models.User, 0, s.opts.NumUsers+1)
	for range s.opts.NumUsers {
		u, err := s.factory.CreateUser(ctx)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if s.opts.DemoAdmin {
		admin, err := s.factory.CreateUser(ctx, func(u *models.User) {
			u.Email = DemoAdminEmail
			u.Nickname = "admin"
			u.Role = models.RoleAdmin
		})
		if err != nil {
			return nil, err
		}
		users = append(users, admin)
	}
	res.Users = len(users)
	log.Printf("✓ %d users created", res.Users)

	if len(users) == 0 {
		return res, nil
	}

	fake := s.factory.fake
	for i := range s.opts.NumPosts {
		author := users[i%len(users)]
		post, err := s.factory.CreatePost(ctx, author, seedBoards[i%len(seedBoards)])
		if err != nil {
			return nil, err
		}
		res.Posts++

		for _, u := range users {
			if u.ID == author.ID {
				continue
			}
			// roughly one in four users engages with each interaction
			if fake.Number(0, 3) == 0 {
				if _, err := s.factory.CreateComment(ctx, u, post); err != nil {
					return nil, err
				}
				res.Comments++
			}
			if fake.Number(0, 3) == 0 {
				if err := s.factory.Like(ctx, u, post); err != nil {
					return nil, fmt.Errorf("like post %d: %w", post.ID, err)
				}
				res.Likes++
			}
			if fake.Number(0, 5) == 0 {
				if err := s.factory.Bookmark(ctx, u, post); err != nil {
					return nil, fmt.Errorf("bookmark post %d: %w", post.ID, err)
				}
				res.Bookmarks++
			}
		}

		if err := s.factory.View(ctx, post, fake.Number(0, 50)); err != nil {
			return nil, fmt.Errorf("view post %d: %w", post.ID, err)
		}
	}
	log.Printf("✓ %d posts, %d comments, %d likes, %d bookmarks created",
		res.Posts, res.Comments, res.Likes, res.Bookmarks)

	return res, nil
}
