package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Every endpoint answers with the same envelope:
// {"status":"success"|"error","message":...,"data"?:...,"errors"?:...}

func success(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"status":  "success",
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// ValidationError carries per-field input errors into the envelope.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrorHandler renders any handler error as the error envelope. It is wired
// as the fiber app's central error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		body := fiber.Map{
			"status":  "error",
			"message": validationErr.Message,
		}
		if len(validationErr.Fields) > 0 {
			body["errors"] = validationErr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"status":  "error",
			"message": fiberErr.Message,
		})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": "internal server error",
	})
}
