package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/atelier-api/internal/dto"
	apierrors "github.com/atelierhq/atelier-api/internal/errors"
	"github.com/atelierhq/atelier-api/internal/middleware"
	"github.com/atelierhq/atelier-api/internal/services"
)

// NotificationHandler coordinates notification feed HTTP handlers.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List returns the caller's notification feed, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	notifications, err := h.notificationService.List(actor)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	notificationDTOs := make([]dto.NotificationDTO, len(notifications))
	for i, notification := range notifications {
		notificationDTOs[i] = dto.ToNotificationDTO(notification)
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notificationDTOs,
	})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(actor, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification marked as read",
	})
}

// MarkAllRead marks the caller's entire feed as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	count, err := h.notificationService.MarkAllRead(actor)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"updated": count,
	})
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.Delete(actor, id); err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Notification deleted",
	})
}
