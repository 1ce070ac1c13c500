// Package repository provides data access layer implementations for the board.
package repository

import (
	"context"
	"errors"
	"time"

	"amateurs/internal/models"
	"amateurs/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines post persistence and the projection queries.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	UpdateBlinded(ctx context.Context, id uint, blinded bool) error
	FindProjectionForViewer(ctx context.Context, postID, viewerID uint) (*models.PostProjection, error)
	SearchProjections(ctx context.Context, boardType models.BoardType, param models.PostPaginationParam) (*models.Page[models.PostProjection], error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "board_type": post.BoardType})
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads the post under a row lock. It must run inside a transaction.
func (r *postRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Post, error) {
	return r.find(ctx, r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *postRepository) find(ctx context.Context, q *gorm.DB, id uint) (*models.Post, error) {
	defer observability.TrackQuery("find", "posts")()
	var post models.Post
	err := q.Where("is_deleted = ?", false).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error; err != nil {
		r.log.LogError(ctx, err, "update")
		return err
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"post_id": post.ID})
	return nil
}

// postOwnedTables hold rows that exist only for one post and go away with it.
var postOwnedTables = []string{
	"market_items",
	"gathering_posts",
	"matching_posts",
	"projects",
	"popular_posts",
	"recommended_posts",
}

// Delete removes extension and marker rows and then the post itself.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	db := r.db.WithContext(ctx)
	for _, table := range postOwnedTables {
		if err := db.Exec("DELETE FROM "+table+" WHERE post_id = ?", id).Error; err != nil {
			r.log.LogError(ctx, err, "delete "+table)
			return err
		}
	}
	res := db.Delete(&models.Post{}, id)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

func (r *postRepository) UpdateBlinded(ctx context.Context, id uint, blinded bool) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_blinded", blinded)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"post_id": id, "is_blinded": blinded})
	return nil
}

// projectionRow is the flat scan target for projection queries.
type projectionRow struct {
	ID             uint
	Title          string
	Content        string
	Nickname       string
	ImageURL       string
	DevcourseName  string
	DevcourseBatch string
	BoardType      models.BoardType
	IsBlinded      bool
	ViewCount      int64
	LikeCount      int
	CommentCount   int64
	BookmarkCount  int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Tags           string
	Liked          bool
	Bookmarked     bool
}

func (row projectionRow) toProjection() models.PostProjection {
	return models.PostProjection{
		ID:                 row.ID,
		Title:              row.Title,
		Content:            row.Content,
		Nickname:           row.Nickname,
		ImageURL:           row.ImageURL,
		DevcourseName:      row.DevcourseName,
		DevcourseBatch:     row.DevcourseBatch,
		BoardType:          row.BoardType,
		IsBlinded:          row.IsBlinded,
		ViewCount:          row.ViewCount,
		LikeCount:          row.LikeCount,
		CommentCount:       int(row.CommentCount),
		BookmarkCount:      int(row.BookmarkCount),
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
		Tags:               models.TagsFromString(row.Tags),
		LikedByViewer:      row.Liked,
		BookmarkedByViewer: row.Bookmarked,
	}
}

const projectionColumns = "posts.id, posts.title, posts.content, " +
	"COALESCE(users.nickname, '') AS nickname, COALESCE(users.image_url, '') AS image_url, " +
	"COALESCE(users.devcourse_name, '') AS devcourse_name, COALESCE(users.devcourse_batch, '') AS devcourse_batch, " +
	"posts.board_type, posts.is_blinded, post_statistics.view_count, posts.like_count, " +
	"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.is_deleted = ?) AS comment_count, " +
	"(SELECT COUNT(*) FROM bookmarks WHERE bookmarks.post_id = posts.id) AS bookmark_count, " +
	"posts.created_at, posts.updated_at, COALESCE(posts.tag, '') AS tags"

// projectionBase joins a post with its owner and statistics. Posts without a
// statistics row are not visible through projections.
func (r *postRepository) projectionBase(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("posts").
		Joins("JOIN post_statistics ON post_statistics.post_id = posts.id").
		Joins("JOIN users ON users.id = posts.user_id").
		Where("posts.is_deleted = ?", false)
}

// FindProjectionForViewer returns the detail projection with the viewer's like
// and bookmark flags. viewerID 0 yields false for both.
func (r *postRepository) FindProjectionForViewer(ctx context.Context, postID, viewerID uint) (*models.PostProjection, error) {
	defer observability.TrackQuery("find_projection", "posts")()
	var row projectionRow
	res := r.projectionBase(ctx).
		Select(projectionColumns+", "+
			"EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked, "+
			"EXISTS(SELECT 1 FROM bookmarks WHERE bookmarks.post_id = posts.id AND bookmarks.user_id = ?) AS bookmarked",
			false, viewerID, viewerID).
		Where("posts.id = ?", postID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Post", postID)
	}
	p := row.toProjection()
	return &p, nil
}

// SearchProjections lists one board's posts. Listing rows never carry viewer flags.
func (r *postRepository) SearchProjections(ctx context.Context, boardType models.BoardType, param models.PostPaginationParam) (*models.Page[models.PostProjection], error) {
	defer observability.TrackQuery("search_projection", "posts")()

	var total int64
	if err := r.filtered(ctx, boardType, param.Keyword).Count(&total).Error; err != nil {
		return nil, err
	}

	q := r.filtered(ctx, boardType, param.Keyword).
		Select(projectionColumns+", false AS liked, false AS bookmarked", false)
	if param.Field == models.SortPostMostView {
		q = orderByMostViewed(q)
	} else {
		q = orderByRecency(q, param.Direction)
	}

	var rows []projectionRow
	if err := q.Offset(param.Offset()).Limit(param.Size).Scan(&rows).Error; err != nil {
		return nil, err
	}

	content := make([]models.PostProjection, len(rows))
	for i, row := range rows {
		content[i] = row.toProjection()
	}
	return models.NewPage(content, param, total), nil
}

func (r *postRepository) filtered(ctx context.Context, boardType models.BoardType, keyword string) *gorm.DB {
	q := r.projectionBase(ctx).Where("posts.board_type = ?", boardType)
	if keyword == "" {
		return q
	}
	return q.Where(substringMatch(r.db.Dialector.Name()), keyword, keyword)
}

// substringMatch is a case-sensitive contains on title or content. The
// position functions avoid LIKE so keywords need no wildcard escaping.
func substringMatch(dialect string) string {
	if dialect == "sqlite" {
		return "(instr(posts.title, ?) > 0 OR instr(posts.content, ?) > 0)"
	}
	return "(strpos(posts.title, ?) > 0 OR strpos(posts.content, ?) > 0)"
}

func orderByRecency(q *gorm.DB, dir models.SortDirection) *gorm.DB {
	desc := dir != models.SortAsc
	return q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: "posts", Name: "created_at"}, Desc: desc},
		{Column: clause.Column{Table: "posts", Name: "id"}, Desc: desc},
	}})
}

// orderByMostViewed ignores the requested direction.
func orderByMostViewed(q *gorm.DB) *gorm.DB {
	return q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Table: "post_statistics", Name: "view_count"}, Desc: true},
		{Column: clause.Column{Table: "posts", Name: "id"}, Desc: true},
	}})
}
