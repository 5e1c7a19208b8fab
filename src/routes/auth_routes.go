package routes

import (
	"Backend-Attendly-101/src/controllers"

	"github.com/gofiber/fiber/v2"
)

func authRoutes(router fiber.Router) {
	auth := router.Group("/auth")
	auth.Post("/login", controllers.Login)
}
