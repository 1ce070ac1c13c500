package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"amateurs/internal/middleware"
	"amateurs/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// parsePostPagination reads keyword, field, direction, page and size.
// Range checks happen in PostPaginationParam.Normalize.
func parsePostPagination(c *fiber.Ctx) models.PostPaginationParam {
	return models.PostPaginationParam{
		Keyword:   c.Query("keyword"),
		Field:     models.SortField(c.Query("field")),
		Direction: models.SortDirection(c.Query("direction")),
		Page:      c.QueryInt("page", 0),
		Size:      c.QueryInt("size", models.DefaultPageSize),
	}
}

// viewer resolves the caller. Requests without an authenticated user id are
// anonymous; otherwise the role comes from the user's profile.
func (s *Server) viewer(c *fiber.Ctx) (models.Viewer, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return models.Viewer{}, nil
	}
	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.Viewer{}, models.NewUnauthorizedError("Unknown user")
		}
		return models.Viewer{}, err
	}
	return models.Viewer{ID: user.ID, Role: user.Role}, nil
}

// requestContext returns the request's user context stamped with the viewer id
// for logging.
func requestContext(c *fiber.Ctx, viewer models.Viewer) context.Context {
	ctx := c.UserContext()
	if !viewer.IsAnonymous() {
		ctx = context.WithValue(ctx, middleware.UserIDKey, viewer.ID)
	}
	return ctx
}

// respondError writes err with the status its code maps to.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}
