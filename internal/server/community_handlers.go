package server

import (
	"amateurs/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SearchPosts handles GET /api/community/:boardType/posts
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	boardType, err := models.ParseBoardType(c.Params("boardType"))
	if err != nil {
		return respondError(c, err)
	}

	page, err := s.community.SearchPosts(c.UserContext(), boardType, parsePostPagination(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/community/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.viewer(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.community.GetPost(requestContext(c, viewer), id, viewer, c.IP())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/community/:boardType/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	boardType, err := models.ParseBoardType(c.Params("boardType"))
	if err != nil {
		return respondError(c, err)
	}

	var req models.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	viewer, err := s.viewer(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.community.CreatePost(requestContext(c, viewer), req, boardType, viewer)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/community/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.PostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	viewer, err := s.viewer(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.community.UpdatePost(requestContext(c, viewer), req, id, viewer); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePost handles DELETE /api/community/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.viewer(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.community.DeletePost(requestContext(c, viewer), id, viewer); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/community/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.viewer(c)
	if err != nil {
		return respondError(c, err)
	}

	result, err := s.community.ToggleLike(requestContext(c, viewer), id, viewer)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// BlindPost handles PUT /api/admin/posts/:id/blind
func (s *Server) BlindPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Blinded *bool `json:"blinded"`
	}
	if err := c.BodyParser(&req); err != nil || req.Blinded == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("blinded is required"))
	}

	viewer, err := s.viewer(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := s.community.BlindPost(requestContext(c, viewer), id, *req.Blinded, viewer); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"id": id, "blinded": *req.Blinded})
}
