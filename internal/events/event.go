// Package events carries post view events from the read path to the view counter.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostViewedEvent is published once per successful post detail read.
type PostViewedEvent struct {
	EventID    string    `json:"eventId"`
	PostID     uint      `json:"postId"`
	ViewerID   uint      `json:"viewerId,omitempty"`
	IPAddress  string    `json:"ipAddress"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewPostViewedEvent stamps a new event with a fresh id and the current time.
func NewPostViewedEvent(postID, viewerID uint, ipAddress string) PostViewedEvent {
	return PostViewedEvent{
		EventID:    uuid.NewString(),
		PostID:     postID,
		ViewerID:   viewerID,
		IPAddress:  ipAddress,
		OccurredAt: time.Now().UTC(),
	}
}

// Origin identifies who viewed the post for deduplication. Signed-in viewers
// are keyed by user id so one person on several networks counts once.
func (e PostViewedEvent) Origin() string {
	if e.ViewerID != 0 {
		return fmt.Sprintf("user:%d", e.ViewerID)
	}
	return "ip:" + e.IPAddress
}

// Publisher hands view events to whatever counts them.
type Publisher interface {
	PublishPostViewed(ctx context.Context, evt PostViewedEvent) error
}

// Recorder consumes view events.
type Recorder interface {
	Record(ctx context.Context, evt PostViewedEvent) error
}
