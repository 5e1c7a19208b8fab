package controllers

import (
	"Backend-Attendly-101/src/services/analytics"
	"Backend-Attendly-101/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetEventAnalytics godoc
// @Summary      Event-wide attendance analytics
// @Description  Registered/present/partial/absent counts and the attendance rate, served from the cached snapshot when fresh
// @Tags         analytics
// @Produce      json
// @Param        eventId path string true "Event ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /attendance/event/{eventId}/analytics [get]
func GetEventAnalytics(c *fiber.Ctx) error {
	eventID, err := primitive.ObjectIDFromHex(c.Params("eventId"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid eventId format")
	}

	summary, err := analytics.GetEventAnalytics(c.Context(), eventID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

// GetTeamStatus godoc
// @Summary      Team attendance status
// @Description  Member statuses rolled up under the event's configured team policy
// @Tags         analytics
// @Produce      json
// @Param        eventId path string true "Event ID"
// @Param        teamId  path string true "Team ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /attendance/event/{eventId}/teams/{teamId} [get]
func GetTeamStatus(c *fiber.Ctx) error {
	eventID, err := primitive.ObjectIDFromHex(c.Params("eventId"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid eventId format")
	}
	teamID, err := primitive.ObjectIDFromHex(c.Params("teamId"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid teamId format")
	}

	status, err := analytics.GetTeamStatus(c.Context(), eventID, teamID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(status)
}
