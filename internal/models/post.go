// Package models contains data structures for the board domain.
package models

import (
	"strings"
	"time"
)

// BoardType is the fixed partition a post belongs to.
type BoardType string

const (
	BoardFree       BoardType = "FREE"
	BoardQnA        BoardType = "QNA"
	BoardRetrospect BoardType = "RETROSPECT"
	BoardMarket     BoardType = "MARKET"
	BoardGathering  BoardType = "GATHER"
	BoardMatching   BoardType = "MATCH"
	BoardProject    BoardType = "PROJECT"
	BoardInfo       BoardType = "INFO"
	BoardReview     BoardType = "REVIEW"
)

var boardTypes = map[BoardType]struct{}{
	BoardFree:       {},
	BoardQnA:        {},
	BoardRetrospect: {},
	BoardMarket:     {},
	BoardGathering:  {},
	BoardMatching:   {},
	BoardProject:    {},
	BoardInfo:       {},
	BoardReview:     {},
}

// ParseBoardType accepts board names case-insensitively.
func ParseBoardType(raw string) (BoardType, error) {
	bt := BoardType(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := boardTypes[bt]; !ok {
		return "", NewValidationError("Invalid board type")
	}
	return bt, nil
}

// PostRequest is the create/update payload.
type PostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

const (
	maxTitleLen   = 300
	maxContentLen = 100000
)

// Validate checks the payload before it reaches the persistence layer.
func (r PostRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return NewValidationError("Title is required")
	}
	if len(r.Title) > maxTitleLen {
		return NewValidationError("Title too long (max 300 characters)")
	}
	if len(r.Content) > maxContentLen {
		return NewValidationError("Content too long (max 100000 characters)")
	}
	for _, tag := range r.Tags {
		if strings.Contains(tag, ",") {
			return NewValidationError("Tags must not contain commas")
		}
	}
	return nil
}

// Post is a board post. Owner and board type never change after creation.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_post_user_id" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	BoardType BoardType `gorm:"type:varchar(32);not null;index:idx_post_board_type;index:idx_post_board_created,priority:1" json:"board_type"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	LikeCount int       `gorm:"not null;default:0" json:"like_count"`
	IsDeleted bool      `gorm:"not null;default:false;index:idx_post_deleted_blinded,priority:1" json:"is_deleted"`
	IsBlinded bool      `gorm:"not null;default:false;index:idx_post_deleted_blinded,priority:2" json:"is_blinded"`
	Tags      string    `gorm:"column:tag" json:"tags"`
	CreatedAt time.Time `gorm:"index:idx_post_board_created,priority:2" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Bookmarks        []Bookmark        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PostImages       []PostImage       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PopularPosts     []PopularPost     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RecommendedPosts []RecommendedPost `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MarketItem       *MarketItem       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	GatheringPost    *GatheringPost    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MatchingPost     *MatchingPost     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Project          *Project          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// NewPost builds an unsaved post owned by ownerID.
func NewPost(req PostRequest, ownerID uint, boardType BoardType) *Post {
	return &Post{
		UserID:    ownerID,
		BoardType: boardType,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      TagsToString(req.Tags),
	}
}

// Update overwrites the mutable fields.
func (p *Post) Update(req PostRequest) {
	p.Title = req.Title
	p.Content = req.Content
	p.Tags = TagsToString(req.Tags)
}

func (p *Post) IncrementLikeCount() {
	p.LikeCount++
}

// DecrementLikeCount never takes the count below zero.
func (p *Post) DecrementLikeCount() {
	if p.LikeCount > 0 {
		p.LikeCount--
	}
}

func (p *Post) UpdateBlinded(blinded bool) {
	p.IsBlinded = blinded
}

// TagList returns the stored tags as a list.
func (p *Post) TagList() []string {
	return TagsFromString(p.Tags)
}

const tagSeparator = ", "

// TagsToString trims every tag, drops blanks and joins the rest.
func TagsToString(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, tagSeparator)
}

// TagsFromString is the inverse of TagsToString. Blank segments are dropped.
func TagsFromString(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PostStatistics holds per-post view state. One row per post.
type PostStatistics struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	ViewCount int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name.
func (PostStatistics) TableName() string {
	return "post_statistics"
}

// NewPostStatistics returns the zero-view companion row for post.
func NewPostStatistics(post *Post) *PostStatistics {
	return &PostStatistics{PostID: post.ID}
}
