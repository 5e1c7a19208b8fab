package controllers

import (
	"Backend-Attendly-101/src/models"
	"Backend-Attendly-101/src/services/attendance"
	"Backend-Attendly-101/src/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type markBody struct {
	RegistrationID  string   `json:"registrationId" validate:"required"`
	CheckpointID    string   `json:"checkpointId"`
	Channel         string   `json:"channel"`
	Status          string   `json:"status"`
	Notes           string   `json:"notes"`
	EngagementScore *float64 `json:"engagementScore"`
}

func (b markBody) toRequest() (attendance.MarkRequest, error) {
	regID, err := primitive.ObjectIDFromHex(b.RegistrationID)
	if err != nil {
		return attendance.MarkRequest{}, err
	}
	req := attendance.MarkRequest{
		RegistrationID:  regID,
		Channel:         b.Channel,
		Status:          models.AttendanceStatus(b.Status),
		Notes:           b.Notes,
		EngagementScore: b.EngagementScore,
	}
	if b.CheckpointID != "" {
		cpID, err := primitive.ObjectIDFromHex(b.CheckpointID)
		if err != nil {
			return attendance.MarkRequest{}, err
		}
		req.CheckpointID = &cpID
	}
	return req, nil
}

// RecordMark godoc
// @Summary      Record one attendance mark (admin)
// @Description  Appends a mark event and returns the registration's recomputed status
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /attendance/marks [post]
func RecordMark(c *fiber.Ctx) error {
	var body markBody
	if err := c.BodyParser(&body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validate.Struct(body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	req, err := body.toRequest()
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid id format")
	}

	adminID, _ := c.Locals("adminId").(string)
	result, err := attendance.RecordMark(c.Context(), req, attendance.Actor{AdminID: adminID})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// RecordScan godoc
// @Summary      Record one attendance mark via scanner invitation
// @Description  Volunteer scan path: the invitation code authorizes exactly one kind of action, marking presence inside its scope
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.SuccessResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /attendance/scan [post]
func RecordScan(c *fiber.Ctx) error {
	var body struct {
		markBody
		InvitationCode  string `json:"invitationCode" validate:"required"`
		OperatorName    string `json:"operatorName" validate:"required"`
		OperatorContact string `json:"operatorContact"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validate.Struct(body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	req, err := body.toRequest()
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid id format")
	}

	result, err := attendance.RecordMark(c.Context(), req, attendance.Actor{
		InvitationCode:  body.InvitationCode,
		OperatorName:    body.OperatorName,
		OperatorContact: body.OperatorContact,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// RecordBulkMark godoc
// @Summary      Record marks for many registrations
// @Description  Applies one mark per id; failures are reported per id and never abort the batch
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /attendance/marks/bulk [post]
func RecordBulkMark(c *fiber.Ctx) error {
	var body struct {
		RegistrationIDs []string `json:"registrationIds" validate:"required,min=1"`
		CheckpointID    string   `json:"checkpointId"`
		Status          string   `json:"status"`
		Notes           string   `json:"notes"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validate.Struct(body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	var checkpointID *primitive.ObjectID
	if body.CheckpointID != "" {
		id, err := primitive.ObjectIDFromHex(body.CheckpointID)
		if err != nil {
			return utils.HandleError(c, fiber.StatusBadRequest, "Invalid checkpointId format")
		}
		checkpointID = &id
	}

	adminID, _ := c.Locals("adminId").(string)
	result := attendance.RecordBulkMark(c.Context(), body.RegistrationIDs, checkpointID,
		models.AttendanceStatus(body.Status), body.Notes, attendance.Actor{AdminID: adminID})
	return c.JSON(result)
}

// GetStatus godoc
// @Summary      Attendance status for a registration
// @Description  Derives status and completion percentage from the ledger; zero marks is a valid absent state
// @Tags         attendance
// @Produce      json
// @Param        registrationId path string true "Registration ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /attendance/status/{registrationId} [get]
func GetStatus(c *fiber.Ctx) error {
	regID, err := primitive.ObjectIDFromHex(c.Params("registrationId"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid registrationId format")
	}

	status, err := attendance.GetStatus(c.Context(), regID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(status)
}

// GetScanHistory godoc
// @Summary      Scan history for an event
// @Description  Scanner-recorded marks plus volunteer sessions, optionally filtered by invitation code
// @Tags         attendance
// @Produce      json
// @Param        eventId path string true "Event ID"
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Router       /attendance/event/{eventId}/scans [get]
func GetScanHistory(c *fiber.Ctx) error {
	eventID, err := primitive.ObjectIDFromHex(c.Params("eventId"))
	if err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid eventId format")
	}

	history, err := attendance.GetScanHistory(c.Context(), eventID, c.Query("invitationCode"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(history)
}
