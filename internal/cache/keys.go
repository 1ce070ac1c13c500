package cache

import (
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	ViewDedupeKeyPrefix = "post:%d:viewed:%s"
)

const (
	UserTTL = 5 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

// ViewDedupeKey identifies one viewer (user id or IP) having viewed a post.
func ViewDedupeKey(postID uint, viewer string) string {
	return fmt.Sprintf(ViewDedupeKeyPrefix, postID, viewer)
}
