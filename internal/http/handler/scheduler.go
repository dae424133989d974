package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rentapi/internal/scheduler"
)

// RunScheduler manually triggers one scheduler invocation. The optional
// action query selects a partial run (reminders, cleanup, monthly-report);
// the default is the full sweep.
func RunScheduler(sched *scheduler.Scheduler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		action, err := scheduler.ParseAction(c.Query("action"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ACTION", "action must be reminders, cleanup or monthly-report")
		}

		sum, err := sched.Run(c.UserContext(), time.Now().UTC(), action)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "scheduler run failed")
		}
		return c.JSON(sum)
	}
}
