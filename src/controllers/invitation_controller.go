package controllers

import (
	"time"

	"Backend-Attendly-101/src/services/invitations"
	"Backend-Attendly-101/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueInvitation godoc
// @Summary      Issue a scanner invitation
// @Description  Creates a scope-restricted, short-lived invitation code for volunteer scanners. Fails with ActiveInvitationExists unless forceNew is set.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /invitations [post]
func IssueInvitation(c *fiber.Ctx) error {
	var body struct {
		EventID         string `json:"eventId" validate:"required"`
		CheckpointID    string `json:"checkpointId"`
		DurationMinutes int    `json:"durationMinutes"`
		ForceNew        bool   `json:"forceNew"`
	}

	if err := c.BodyParser(&body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validate.Struct(body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	eventID, err := primitive.ObjectIDFromHex(body.EventID)
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid eventId format")
	}

	var checkpointID *primitive.ObjectID
	if body.CheckpointID != "" {
		id, err := primitive.ObjectIDFromHex(body.CheckpointID)
		if err != nil {
			return utils.HandleError(c, fiber.StatusBadRequest, "Invalid checkpointId format")
		}
		checkpointID = &id
	}

	inv, err := invitations.Issue(c.Context(), eventID, checkpointID,
		time.Duration(body.DurationMinutes)*time.Minute, body.ForceNew)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"code":      inv.Code,
		"expiresAt": inv.ExpiresAt,
	})
}

// ValidateInvitation godoc
// @Summary      Validate a scanner invitation
// @Description  Checks a code and returns its scope and remaining lifetime. Evaluated fresh on every call.
// @Tags         invitations
// @Produce      json
// @Param        code path string true "Invitation code"
// @Success      200  {object}  models.SuccessResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /invitations/validate/{code} [get]
func ValidateInvitation(c *fiber.Ctx) error {
	inv, err := invitations.Validate(c.Context(), c.Params("code"))
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := fiber.Map{
		"eventId":   inv.EventID.Hex(),
		"expiresAt": inv.ExpiresAt,
		"remaining": time.Until(inv.ExpiresAt).Round(time.Second).Seconds(),
	}
	if inv.CheckpointID != nil {
		resp["checkpointId"] = inv.CheckpointID.Hex()
	}
	return c.JSON(resp)
}

// RevokeInvitation godoc
// @Summary      Revoke a scanner invitation
// @Description  Deactivates a code. Revoking twice is not an error.
// @Tags         invitations
// @Produce      json
// @Param        code path string true "Invitation code"
// @Success      200  {object}  models.SuccessResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /invitations/{code} [delete]
func RevokeInvitation(c *fiber.Ctx) error {
	if err := invitations.Revoke(c.Context(), c.Params("code")); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Invitation revoked"})
}

// InvitationStats godoc
// @Summary      Invitation stats for an event
// @Description  Reports whether a live invitation exists plus aggregate scan counts. Pass includeCode=true to re-reveal the code.
// @Tags         invitations
// @Produce      json
// @Param        eventId path string true "Event ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /invitations/event/{eventId}/stats [get]
func InvitationStats(c *fiber.Ctx) error {
	eventID, err := primitive.ObjectIDFromHex(c.Params("eventId"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid eventId format")
	}

	stats, err := invitations.GetStats(c.Context(), eventID, c.QueryBool("includeCode"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(stats)
}
