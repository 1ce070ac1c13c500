package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"amateurs/internal/models"
	"amateurs/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCommunityService is a mock of the CommunityService interface
type MockCommunityService struct {
	mock.Mock
}

func (m *MockCommunityService) SearchPosts(ctx context.Context, boardType models.BoardType, param models.PostPaginationParam) (*models.Page[models.PostProjection], error) {
	args := m.Called(ctx, boardType, param)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Page[models.PostProjection]), args.Error(1)
}

func (m *MockCommunityService) GetPost(ctx context.Context, postID uint, viewer models.Viewer, ipAddress string) (*models.PostProjection, error) {
	args := m.Called(ctx, postID, viewer, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostProjection), args.Error(1)
}

func (m *MockCommunityService) CreatePost(ctx context.Context, req models.PostRequest, boardType models.BoardType, viewer models.Viewer) (*models.PostProjection, error) {
	args := m.Called(ctx, req, boardType, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostProjection), args.Error(1)
}

func (m *MockCommunityService) UpdatePost(ctx context.Context, req models.PostRequest, postID uint, viewer models.Viewer) error {
	args := m.Called(ctx, req, postID, viewer)
	return args.Error(0)
}

func (m *MockCommunityService) DeletePost(ctx context.Context, postID uint, viewer models.Viewer) error {
	args := m.Called(ctx, postID, viewer)
	return args.Error(0)
}

func (m *MockCommunityService) BlindPost(ctx context.Context, postID uint, blinded bool, viewer models.Viewer) error {
	args := m.Called(ctx, postID, blinded, viewer)
	return args.Error(0)
}

func (m *MockCommunityService) ToggleLike(ctx context.Context, postID uint, viewer models.Viewer) (*service.LikeResult, error) {
	args := m.Called(ctx, postID, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LikeResult), args.Error(1)
}

// anonymousServer routes handlers without auth so only status mapping is exercised.
func anonymousServer(svc CommunityService) *fiber.App {
	s := &Server{community: svc}
	app := fiber.New()
	app.Get("/community/:boardType/posts", s.SearchPosts)
	app.Post("/community/:boardType/posts", s.CreatePost)
	app.Get("/community/posts/:id", s.GetPost)
	app.Put("/community/posts/:id", s.UpdatePost)
	app.Delete("/community/posts/:id", s.DeletePost)
	return app
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSearchPostsHandler(t *testing.T) {
	svc := new(MockCommunityService)
	page := &models.Page[models.PostProjection]{
		Content:    []models.PostProjection{{ID: 1, Title: "first"}},
		PageNumber: 1,
		PageSize:   5,
	}
	svc.On("SearchPosts", mock.Anything, models.BoardQnA, models.PostPaginationParam{
		Keyword:   "go",
		Field:     models.SortPostMostView,
		Direction: "",
		Page:      1,
		Size:      5,
	}).Return(page, nil)

	app := anonymousServer(svc)
	req := httptest.NewRequest(http.MethodGet, "/community/qna/posts?keyword=go&field=POST_MOST_VIEW&page=1&size=5", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var got models.Page[models.PostProjection]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Content, 1)
	assert.Equal(t, "first", got.Content[0].Title)
	svc.AssertExpectations(t)
}

func TestSearchPostsHandler_UnknownBoard(t *testing.T) {
	svc := new(MockCommunityService)
	app := anonymousServer(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/community/nope/posts", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeValidation, decodeError(t, resp).Code)
	svc.AssertNotCalled(t, "SearchPosts", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPostHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", models.NewNotFoundError("Post", 7), http.StatusNotFound, models.CodeNotFound},
		{"internal", errors.New("db down"), http.StatusInternalServerError, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockCommunityService)
			svc.On("GetPost", mock.Anything, uint(7), models.Viewer{}, mock.AnythingOfType("string")).Return(nil, tc.err)
			app := anonymousServer(svc)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/community/posts/7", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestUpdatePostHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusNoContent},
		{"access denied", models.NewAccessDeniedError("no"), http.StatusForbidden},
		{"blinded", models.NewModerationConflictError("blinded"), http.StatusConflict},
		{"validation", models.NewValidationError("Title is required"), http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockCommunityService)
			req := models.PostRequest{Title: "t", Content: "c", Tags: []string{"a"}}
			svc.On("UpdatePost", mock.Anything, req, uint(3), models.Viewer{}).Return(tc.err)
			app := anonymousServer(svc)

			body, _ := json.Marshal(req)
			httpReq := httptest.NewRequest(http.MethodPut, "/community/posts/3", bytes.NewReader(body))
			httpReq.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(httpReq)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tc.status, resp.StatusCode)
			svc.AssertExpectations(t)
		})
	}
}

func TestCreatePostHandler_InvalidBody(t *testing.T) {
	svc := new(MockCommunityService)
	app := anonymousServer(svc)

	req := httptest.NewRequest(http.MethodPost, "/community/free/posts", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", decodeError(t, resp).Error)
	svc.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePostHandler_InvalidID(t *testing.T) {
	svc := new(MockCommunityService)
	app := anonymousServer(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/community/posts/abc", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "DeletePost", mock.Anything, mock.Anything, mock.Anything)
}
