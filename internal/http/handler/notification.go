package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"rentapi/internal/service"
)

// ListNotifications returns the caller's notifications plus unread count.
func ListNotifications(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipient := userID(c)
		if recipient == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing user identity")
		}

		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)

		res, err := svc.List(c.UserContext(), recipient, limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// MarkNotificationRead flags one notification as read.
func MarkNotificationRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipient := userID(c)
		if recipient == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing user identity")
		}
		if err := svc.MarkRead(c.UserContext(), c.Params("id"), recipient); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "notification not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// MarkAllNotificationsRead flags every unread notification as read.
func MarkAllNotificationsRead(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipient := userID(c)
		if recipient == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing user identity")
		}
		updated, err := svc.MarkAllRead(c.UserContext(), recipient)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"updated": updated})
	}
}

// DeleteNotification removes one of the caller's notifications.
func DeleteNotification(svc service.NotificationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		recipient := userID(c)
		if recipient == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "missing user identity")
		}
		if err := svc.Delete(c.UserContext(), c.Params("id"), recipient); err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
