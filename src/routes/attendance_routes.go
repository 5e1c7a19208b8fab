package routes

import (
	"Backend-Attendly-101/src/controllers"
	"Backend-Attendly-101/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func attendanceRoutes(router fiber.Router) {
	att := router.Group("/attendance")

	// Scanner path is guarded by the invitation code in the body, not JWT.
	att.Post("/scan", controllers.RecordScan)

	att.Post("/marks", middleware.AuthJWT, controllers.RecordMark)
	att.Post("/marks/bulk", middleware.AuthJWT, controllers.RecordBulkMark)
	att.Get("/status/:registrationId", controllers.GetStatus)
	att.Get("/event/:eventId/analytics", controllers.GetEventAnalytics)
	att.Get("/event/:eventId/teams/:teamId", controllers.GetTeamStatus)
	att.Get("/event/:eventId/scans", middleware.AuthJWT, controllers.GetScanHistory)
}
