package controllers

import (
	"Backend-Attendly-101/src/services/attendance"
	"Backend-Attendly-101/src/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// statusForKind maps typed service failures to HTTP status codes.
func statusForKind(kind string) int {
	switch kind {
	case "UnknownInvitation", "UnknownRegistration", "UnknownEvent", "UnknownCheckpoint":
		return fiber.StatusNotFound
	case "ExpiredInvitation":
		return fiber.StatusUnauthorized
	case "InvalidCheckpointForScope":
		return fiber.StatusForbidden
	case "ActiveInvitationExists", "DuplicateMark":
		return fiber.StatusConflict
	case "CheckpointClosed":
		return fiber.StatusUnprocessableEntity
	case "MissingCheckpoint", "EngagementScoreOutOfRange", "InvalidChannel",
		"InvitationDurationRequired", "InvitationScopeRequired":
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError translates a service error into the standard error
// payload. Validation failures always surface as explicit typed errors, never
// as silent no-op successes.
func respondServiceError(c *fiber.Ctx, err error) error {
	kind := attendance.KindOf(err)
	return utils.HandleTypedError(c, statusForKind(kind), kind, err.Error())
}
