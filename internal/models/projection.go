package models

import "time"

// BlindedPlaceholder replaces the title and content of blinded posts.
const BlindedPlaceholder = "This post has been blinded by moderation."

// PostProjection is the denormalized post returned to clients.
type PostProjection struct {
	ID                 uint      `json:"id"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	Nickname           string    `json:"nickname"`
	ImageURL           string    `json:"imageUrl"`
	DevcourseName      string    `json:"devcourseName"`
	DevcourseBatch     string    `json:"devcourseBatch"`
	BoardType          BoardType `json:"boardType"`
	IsBlinded          bool      `json:"isBlinded"`
	ViewCount          int64     `json:"viewCount"`
	LikeCount          int       `json:"likeCount"`
	CommentCount       int       `json:"commentCount"`
	BookmarkCount      int       `json:"bookmarkCount"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	Tags               []string  `json:"tags"`
	LikedByViewer      bool      `json:"hasLiked"`
	BookmarkedByViewer bool      `json:"hasBookmarked"`
}

// ApplyBlindFilter hides title and content of blinded posts. Other fields pass through.
func (p PostProjection) ApplyBlindFilter() PostProjection {
	if !p.IsBlinded {
		return p
	}
	p.Title = BlindedPlaceholder
	p.Content = BlindedPlaceholder
	return p
}

// NewPostProjection builds a projection for a post that has no statistics or engagement yet.
func NewPostProjection(post *Post, owner *User, liked, bookmarked bool) PostProjection {
	p := PostProjection{
		ID:                 post.ID,
		Title:              post.Title,
		Content:            post.Content,
		BoardType:          post.BoardType,
		IsBlinded:          post.IsBlinded,
		LikeCount:          post.LikeCount,
		CreatedAt:          post.CreatedAt,
		UpdatedAt:          post.UpdatedAt,
		Tags:               post.TagList(),
		LikedByViewer:      liked,
		BookmarkedByViewer: bookmarked,
	}
	if owner != nil {
		p.Nickname = owner.Nickname
		p.ImageURL = owner.ImageURL
		p.DevcourseName = owner.DevcourseName
		p.DevcourseBatch = owner.DevcourseBatch
	}
	return p
}
