// error_utils.go
package utils

import (
	"Backend-Attendly-101/src/models"

	"github.com/gofiber/fiber/v2"
)

func HandleError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
	})
}

// HandleTypedError carries the failure kind so scanner clients can branch on
// it (e.g. show "QR expired, ask staff for a new code").
func HandleTypedError(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
		Kind:    kind,
	})
}
