package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"rentapi/internal/scheduler"
	"rentapi/internal/service"
)

// Services bundles the collaborators the HTTP surface delegates to.
type Services struct {
	Documents     service.DocumentService
	Notifications service.NotificationService
	Activity      service.ActivityService
	Scheduler     *scheduler.Scheduler
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// validate input and delegate; no business logic lives here.
func RegisterRoutes(app *fiber.App, db *sql.DB, svcs Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/invoices", CreateInvoice(svcs.Documents))
	app.Post("/receipts", CreateReceipt(svcs.Documents))
	app.Get("/documents", ListDocuments(svcs.Documents))
	app.Get("/documents/:id", GetDocument(svcs.Documents))

	app.Get("/notifications", ListNotifications(svcs.Notifications))
	app.Patch("/notifications/:id/read", MarkNotificationRead(svcs.Notifications))
	app.Post("/notifications/read-all", MarkAllNotificationsRead(svcs.Notifications))
	app.Delete("/notifications/:id", DeleteNotification(svcs.Notifications))

	app.Get("/activity", QueryActivity(svcs.Activity))
	app.Delete("/activity", PurgeActivity(svcs.Activity))

	app.Post("/scheduler/run", RunScheduler(svcs.Scheduler))
}

// HealthCheck verifies database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness check.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// userID extracts the authenticated caller set by the upstream auth layer.
func userID(c *fiber.Ctx) string {
	return c.Get("X-User-ID")
}
