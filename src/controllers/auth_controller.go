package controllers

import (
	"Backend-Attendly-101/src/services"
	"Backend-Attendly-101/src/utils"

	"github.com/gofiber/fiber/v2"
)

// Login godoc
// @Summary      Admin login
// @Description  Authenticates an administrator and returns a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  models.SuccessResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /auth/login [post]
func Login(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.BodyParser(&body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, "Invalid input format")
	}
	if err := validate.Struct(body); err != nil {
		return utils.HandleError(c, fiber.StatusBadRequest, err.Error())
	}

	admin, err := services.AuthenticateAdmin(body.Email, body.Password)
	if err != nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, err.Error())
	}

	token, err := utils.GenerateJWT(admin.ID.Hex(), admin.Email)
	if err != nil {
		return utils.HandleError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"admin": admin,
	})
}
