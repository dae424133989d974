package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rentapi/internal/repository"
	"rentapi/internal/service"
)

// QueryActivity returns filtered, paginated audit events.
func QueryActivity(svc service.ActivityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := repository.ActivityFilter{
			ActorUserID: c.Query("actor"),
			EntityKind:  c.Query("entity_kind"),
			Action:      c.Query("action"),
		}
		if v := c.Query("from"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FROM", "invalid from timestamp")
			}
			f.From = &t
		}
		if v := c.Query("to"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_TO", "invalid to timestamp")
			}
			f.To = &t
		}

		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)

		res, err := svc.Query(c.UserContext(), f, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// PurgeActivity hard-deletes audit events older than the given horizon.
// Restricted to privileged callers; role enforcement is performed by the
// upstream auth layer which sets X-Role.
func PurgeActivity(svc service.ActivityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("X-Role") != "admin" {
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "admin role required")
		}

		days := c.QueryInt("older_than_days", 0)
		if days < 1 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_HORIZON", "older_than_days must be at least 1")
		}

		deleted, err := svc.Purge(c.UserContext(), time.Now().UTC(), days)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"deleted": deleted})
	}
}
