package service

import (
	"context"
	"log/slog"

	"amateurs/internal/events"
	"amateurs/internal/models"
	"amateurs/internal/observability"
	"amateurs/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const communityService = "CommunityService"

// EmbeddingDispatcher schedules index maintenance for posts. Implementations
// must not block and must not report failures back.
type EmbeddingDispatcher interface {
	DispatchCreate(ctx context.Context, post models.Post)
	DispatchUpdate(ctx context.Context, post models.Post)
	DispatchDelete(ctx context.Context, postID uint)
}

// CommunityService owns the post lifecycle: reads with visibility filtering,
// and mutations with their statistics, cleanup and indexing side effects.
type CommunityService struct {
	store      repository.Store
	users      repository.UserRepository
	dispatcher EmbeddingDispatcher
	publisher  events.Publisher
}

// LikeResult is the post's like state after a toggle.
type LikeResult struct {
	PostID    uint `json:"postId"`
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

func NewCommunityService(
	store repository.Store,
	users repository.UserRepository,
	dispatcher EmbeddingDispatcher,
	publisher events.Publisher,
) *CommunityService {
	return &CommunityService{
		store:      store,
		users:      users,
		dispatcher: dispatcher,
		publisher:  publisher,
	}
}

// SearchPosts returns one page of a board. Every element goes through the blind filter.
func (s *CommunityService) SearchPosts(ctx context.Context, boardType models.BoardType, param models.PostPaginationParam) (*models.Page[models.PostProjection], error) {
	param, err := param.Normalize()
	if err != nil {
		return nil, err
	}
	ctx, span := observability.StartServiceSpan(ctx, communityService, "SearchPosts",
		attribute.String("board.type", string(boardType)),
		attribute.String("sort.field", string(param.Field)),
	)
	page, err := s.store.Posts().SearchProjections(ctx, boardType, param)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	return models.MapPage(page, models.PostProjection.ApplyBlindFilter), nil
}

// GetPost returns the viewer's projection of a post and raises one view event.
// The view counter itself is advanced by whoever consumes the event.
func (s *CommunityService) GetPost(ctx context.Context, postID uint, viewer models.Viewer, ipAddress string) (*models.PostProjection, error) {
	ctx, span := observability.StartServiceSpan(ctx, communityService, "GetPost",
		attribute.Int64("post.id", int64(postID)),
	)
	projection, err := s.store.Posts().FindProjectionForViewer(ctx, postID, viewer.ID)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	evt := events.NewPostViewedEvent(postID, viewer.ID, ipAddress)
	if err := s.publisher.PublishPostViewed(ctx, evt); err != nil {
		observability.PostViewEventsTotal.WithLabelValues("service", "publish_failed").Inc()
		observability.GlobalLogger.WarnContext(ctx, "failed to publish post viewed event",
			slog.Uint64("post_id", uint64(postID)),
			slog.String("event_id", evt.EventID),
			slog.String("error", err.Error()),
		)
	}

	filtered := projection.ApplyBlindFilter()
	return &filtered, nil
}

// CreatePost stores a post, its statistics row and its image references in one
// transaction, then schedules indexing.
func (s *CommunityService) CreatePost(ctx context.Context, req models.PostRequest, boardType models.BoardType, viewer models.Viewer) (projection *models.PostProjection, err error) {
	defer func() { observability.ObservePostLifecycle("create", err) }()

	if viewer.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Sign in to write a post")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := observability.StartServiceSpan(ctx, communityService, "CreatePost",
		attribute.String("board.type", string(boardType)),
	)
	defer func() { observability.EndSpan(span, err) }()

	owner, err := s.users.GetByID(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}

	post := models.NewPost(req, owner.ID, boardType)
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		if err := tx.Statistics().Create(ctx, post.ID); err != nil {
			return err
		}
		return tx.Images().SaveAll(ctx, post.ID, ExtractImageURLs(post.Content))
	})
	if err != nil {
		return nil, err
	}

	observability.LogServiceCall(ctx, communityService, "CreatePost", map[string]interface{}{
		"post_id":    post.ID,
		"board_type": boardType,
		"user_id":    owner.ID,
	})
	s.dispatcher.DispatchCreate(ctx, *post)

	created := models.NewPostProjection(post, owner, false, false)
	return &created, nil
}

// UpdatePost overwrites title, content and tags of a post the viewer may edit.
func (s *CommunityService) UpdatePost(ctx context.Context, req models.PostRequest, postID uint, viewer models.Viewer) (err error) {
	defer func() { observability.ObservePostLifecycle("update", err) }()

	ctx, span := observability.StartServiceSpan(ctx, communityService, "UpdatePost",
		attribute.Int64("post.id", int64(postID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	var updated models.Post
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().FindByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if err := canEditOrDelete(post, viewer); err != nil {
			return err
		}
		if err := req.Validate(); err != nil {
			return err
		}
		if post.IsBlinded {
			return models.NewModerationConflictError("Blinded posts cannot be edited")
		}
		post.Update(req)
		if err := tx.Posts().Save(ctx, post); err != nil {
			return err
		}
		updated = *post
		return nil
	})
	if err != nil {
		return err
	}

	observability.LogServiceCall(ctx, communityService, "UpdatePost", map[string]interface{}{
		"post_id": postID,
		"user_id": viewer.ID,
	})
	s.dispatcher.DispatchUpdate(ctx, updated)
	return nil
}

// DeletePost removes a post and everything that hangs off it. The index
// entry is dropped asynchronously and its outcome does not affect the delete.
func (s *CommunityService) DeletePost(ctx context.Context, postID uint, viewer models.Viewer) (err error) {
	defer func() { observability.ObservePostLifecycle("delete", err) }()

	ctx, span := observability.StartServiceSpan(ctx, communityService, "DeletePost",
		attribute.Int64("post.id", int64(postID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.store.Posts().FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := canEditOrDelete(post, viewer); err != nil {
		return err
	}

	s.dispatcher.DispatchDelete(ctx, postID)

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		steps := []func(context.Context, uint) error{
			tx.Statistics().DeleteByPostID,
			tx.Engagement().DeleteBookmarksByPostID,
			tx.Engagement().DeleteLikesByPostID,
			tx.Engagement().DeleteReportsByPostID,
			tx.Engagement().DeleteCommentsByPostID,
			tx.Images().DeleteByPostID,
			// last: the earlier steps reference the post id
			tx.Posts().Delete,
		}
		for _, step := range steps {
			if err := step(ctx, postID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	observability.LogServiceCall(ctx, communityService, "DeletePost", map[string]interface{}{
		"post_id": postID,
		"user_id": viewer.ID,
	})
	return nil
}

// BlindPost sets or clears the moderation flag. Only elevated roles may call it.
func (s *CommunityService) BlindPost(ctx context.Context, postID uint, blinded bool, viewer models.Viewer) (err error) {
	defer func() { observability.ObservePostLifecycle("blind", err) }()

	if !viewer.Role.IsElevated() {
		return models.NewAccessDeniedError("Only administrators can blind posts")
	}
	if err := s.store.Posts().UpdateBlinded(ctx, postID, blinded); err != nil {
		return err
	}

	observability.LogServiceCall(ctx, communityService, "BlindPost", map[string]interface{}{
		"post_id":    postID,
		"is_blinded": blinded,
		"user_id":    viewer.ID,
	})
	return nil
}

// ToggleLike likes the post for the viewer, or removes the like if present.
// The like row and the post's like count move together under the post's row lock.
func (s *CommunityService) ToggleLike(ctx context.Context, postID uint, viewer models.Viewer) (*LikeResult, error) {
	if viewer.IsAnonymous() {
		return nil, models.NewUnauthorizedError("Sign in to like a post")
	}

	var result LikeResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().FindByIDForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		liked, err := tx.Engagement().IsLiked(ctx, postID, viewer.ID)
		if err != nil {
			return err
		}

		if liked {
			removed, err := tx.Engagement().RemoveLike(ctx, postID, viewer.ID)
			if err != nil {
				return err
			}
			if removed {
				post.DecrementLikeCount()
			}
		} else {
			added, err := tx.Engagement().AddLike(ctx, postID, viewer.ID)
			if err != nil {
				return err
			}
			if added {
				post.IncrementLikeCount()
			}
		}
		if err := tx.Posts().Save(ctx, post); err != nil {
			return err
		}
		result = LikeResult{PostID: postID, Liked: !liked, LikeCount: post.LikeCount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// canEditOrDelete allows the owner and elevated roles.
func canEditOrDelete(post *models.Post, viewer models.Viewer) error {
	if viewer.IsAnonymous() {
		return models.NewAccessDeniedError("You do not have permission to modify this post")
	}
	if post.UserID == viewer.ID || viewer.Role.IsElevated() {
		return nil
	}
	return models.NewAccessDeniedError("You do not have permission to modify this post")
}
