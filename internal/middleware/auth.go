// Package middleware provides authentication, logging, tracing and rate limiting for the HTTP API.
package middleware

import (
	"errors"
	"strconv"
	"strings"

	"amateurs/internal/config"
	"amateurs/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

var (
	errMissingHeader = errors.New("authorization header required")
	errHeaderFormat  = errors.New("invalid authorization header format")
	errInvalidToken  = errors.New("invalid or expired token")
	errSubject       = errors.New("invalid token subject")
)

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired rejects requests without a valid bearer token and stores the
// authenticated user id in c.Locals("userID").
func AuthRequired(c *fiber.Ctx) error {
	userID, err := userIDFromHeader(c.Get("Authorization"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(err.Error()))
	}
	c.Locals("userID", userID)
	return c.Next()
}

// OptionalAuth sets c.Locals("userID") when a valid bearer token is present
// and otherwise lets the request through as anonymous.
func OptionalAuth(c *fiber.Ctx) error {
	if userID, err := userIDFromHeader(c.Get("Authorization")); err == nil {
		c.Locals("userID", userID)
	}
	return c.Next()
}

func userIDFromHeader(header string) (uint, error) {
	if header == "" {
		return 0, errMissingHeader
	}
	scheme, tokenString, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || tokenString == "" {
		return 0, errHeaderFormat
	}
	return parseSubject(tokenString)
}

func parseSubject(tokenString string) (uint, error) {
	if cfg == nil {
		return 0, errInvalidToken
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, errSubject
	}
	id, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || id == 0 {
		return 0, errSubject
	}
	return uint(id), nil
}
