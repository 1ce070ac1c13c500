package models

import "time"

// Comment is only read for counts and removed on post deletion.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsDeleted bool      `gorm:"not null;default:false" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Bookmark struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_bookmark_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmark_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_like_post_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Report struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Reason    string    `gorm:"type:text" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// PostImage associates an image URL embedded in post content with the post.
type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// PopularPost marks a post picked for the popular feed on a given day.
type PopularPost struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"not null;index" json:"post_id"`
	Score      float64   `json:"score"`
	ListedDate time.Time `json:"listed_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecommendedPost marks a post recommended to a user.
type RecommendedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// MarketItem is the extension record for MARKET posts.
type MarketItem struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"not null;uniqueIndex" json:"post_id"`
	Price  int    `json:"price"`
	Place  string `json:"place"`
	Status string `gorm:"type:varchar(16)" json:"status"`
}

// GatheringPost is the extension record for GATHER posts.
type GatheringPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex" json:"post_id"`
	Headcount int       `json:"headcount"`
	Place     string    `json:"place"`
	Period    string    `json:"period"`
	Schedule  time.Time `json:"schedule"`
	Status    string    `gorm:"type:varchar(16)" json:"status"`
}

// MatchingPost is the extension record for MATCH posts.
type MatchingPost struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PostID    uint   `gorm:"not null;uniqueIndex" json:"post_id"`
	Mode      string `gorm:"type:varchar(16)" json:"mode"`
	Expertise string `json:"expertise"`
	Status    string `gorm:"type:varchar(16)" json:"status"`
}

// Project is the extension record for PROJECT posts.
type Project struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PostID    uint   `gorm:"not null;uniqueIndex" json:"post_id"`
	GithubURL string `json:"github_url"`
	DemoURL   string `json:"demo_url"`
	Period    string `json:"period"`
	Members   string `json:"members"`
}
