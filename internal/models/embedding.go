package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// PostEmbedding is the semantic index entry for one post. It is written only
// by the embedding indexer and is never read on the post request path.
type PostEmbedding struct {
	PostID    uint            `gorm:"primaryKey;autoIncrement:false" json:"postId"`
	BoardType BoardType       `gorm:"size:20;index" json:"boardType"`
	Content   string          `gorm:"type:text" json:"-"`
	Embedding pgvector.Vector `gorm:"type:vector" json:"-"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (PostEmbedding) TableName() string {
	return "post_embeddings"
}

// EmbeddingText is the text submitted to the embedding model for a post.
func EmbeddingText(p *Post) string {
	text := p.Title + "\n\n" + p.Content
	if tags := p.TagList(); len(tags) > 0 {
		text += "\n\n" + TagsToString(tags)
	}
	return text
}
