package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ibrahimkeyboad/gostore/internal/core/domain"
)

// statusFor maps an error kind onto the HTTP status clients rely on.
func statusFor(e *domain.Error) int {
	if e.Code == domain.ErrCartEmpty.Code {
		return http.StatusBadRequest
	}
	switch e.Kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidInput:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		status := statusFor(de)
		if status >= http.StatusInternalServerError {
			slog.Error("Request failed", "error", err, "path", c.Path())
		}
		return c.Status(status).JSON(fiber.Map{"error": de.Message, "code": de.Code})
	}
	slog.Error("Unhandled error", "error", err, "path", c.Path())
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error", "code": "internal"})
}

func invalidBody(c *fiber.Ctx, err error) error {
	slog.Warn("Invalid request body", "error", err, "path", c.Path())
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body", "code": "invalid_body"})
}

// paramID parses the :id route param. Anything unparsable is 0.
func paramID(c *fiber.Ctx) int64 {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// ErrorHandler renders fiber's own errors (unknown route, bad method) in
// the same shape as domain errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("Unhandled error", "error", err, "path", c.Path())
		return c.Status(code).JSON(fiber.Map{"error": "Internal server error", "code": "internal"})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error(), "code": "http_" + strconv.Itoa(code)})
}
