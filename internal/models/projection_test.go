package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleProjection(blinded bool) PostProjection {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return PostProjection{
		ID:                 42,
		Title:              "Hello World",
		Content:            "body",
		Nickname:           "nick",
		ImageURL:           "http://img/avatar.png",
		DevcourseName:      "BE",
		DevcourseBatch:     "5",
		BoardType:          BoardFree,
		IsBlinded:          blinded,
		ViewCount:          11,
		LikeCount:          3,
		CommentCount:       2,
		BookmarkCount:      1,
		CreatedAt:          now,
		UpdatedAt:          now.Add(time.Hour),
		Tags:               []string{"go"},
		LikedByViewer:      true,
		BookmarkedByViewer: true,
	}
}

func TestApplyBlindFilter_Blinded(t *testing.T) {
	t.Parallel()

	in := sampleProjection(true)
	out := in.ApplyBlindFilter()

	assert.Equal(t, BlindedPlaceholder, out.Title)
	assert.Equal(t, BlindedPlaceholder, out.Content)

	expected := in
	expected.Title = BlindedPlaceholder
	expected.Content = BlindedPlaceholder
	assert.Equal(t, expected, out)

	assert.Equal(t, "Hello World", in.Title, "input must not be mutated")
}

func TestApplyBlindFilter_NotBlindedIsIdentity(t *testing.T) {
	t.Parallel()

	in := sampleProjection(false)
	assert.Equal(t, in, in.ApplyBlindFilter())
}

func TestNewPostProjection(t *testing.T) {
	t.Parallel()

	post := &Post{ID: 5, Title: "T", Content: "C", BoardType: BoardQnA, Tags: "a, b", LikeCount: 0}
	owner := &User{Nickname: "n", ImageURL: "u", DevcourseName: "dn", DevcourseBatch: "db"}

	p := NewPostProjection(post, owner, false, false)
	assert.Equal(t, uint(5), p.ID)
	assert.Equal(t, "n", p.Nickname)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.False(t, p.LikedByViewer)
	assert.False(t, p.BookmarkedByViewer)
	assert.Zero(t, p.ViewCount)
}
