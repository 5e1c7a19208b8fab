package routes

import (
	"Backend-Attendly-101/src/controllers"
	"Backend-Attendly-101/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func invitationRoutes(router fiber.Router) {
	inv := router.Group("/invitations")

	// Volunteer scanners hit validate with only the code; no JWT.
	inv.Get("/validate/:code", controllers.ValidateInvitation)

	inv.Post("/", middleware.AuthJWT, controllers.IssueInvitation)
	inv.Delete("/:code", middleware.AuthJWT, controllers.RevokeInvitation)
	inv.Get("/event/:eventId/stats", middleware.AuthJWT, controllers.InvitationStats)
}
