package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"omnimind-backend/middleware"
	"omnimind-backend/models"
	"omnimind-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NotificationStore is the persistence surface the notification handler
// depends on
type NotificationStore interface {
	List(ctx context.Context, userID uuid.UUID, filter repository.NotificationFilter) ([]*models.Notification, int, error)
	Create(ctx context.Context, n *models.Notification) error
	MarkRead(ctx context.Context, id, userID uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

// PreferencesStore is the persistence surface for notification preferences
type PreferencesStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserPreferences, error)
	Upsert(ctx context.Context, userID uuid.UUID, settings *models.NotificationSettings, ai *models.AIPreferences, theme *string) (*models.UserPreferences, error)
}

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	notifications NotificationStore
	preferences   PreferencesStore
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications NotificationStore, preferences PreferencesStore) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		preferences:   preferences,
	}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	filter := repository.NotificationFilter{}

	if v := c.Query("read"); v != "" {
		read, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "read must be true or false"})
			return
		}
		filter.Read = &read
	}
	if v := c.Query("type"); v != "" {
		t := models.NotificationType(v)
		if !models.ValidNotificationType(t) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification type"})
			return
		}
		filter.Type = &t
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, unread, err := h.notifications.List(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		log.Printf("Notification list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// CreateNotificationRequest represents the request body for creating a
// notification
type CreateNotificationRequest struct {
	Type         string     `json:"type"`
	Title        string     `json:"title" binding:"required,max=500"`
	Message      string     `json:"message" binding:"required"`
	Priority     string     `json:"priority"`
	ActionURL    *string        `json:"action_url"`
	ScheduledFor *time.Time     `json:"scheduled_for"`
	Metadata     models.JSONMap `json:"metadata"`
}

// Create handles POST /api/v1/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and message are required"})
		return
	}

	nType := models.NotificationTypeInfo
	if req.Type != "" {
		nType = models.NotificationType(req.Type)
		if !models.ValidNotificationType(nType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification type"})
			return
		}
	}
	priority := models.TaskPriorityMedium
	if req.Priority != "" {
		priority = models.TaskPriority(req.Priority)
		if !models.ValidTaskPriority(priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
	}

	notification := &models.Notification{
		UserID:       middleware.UserID(c),
		Type:         nType,
		Title:        req.Title,
		Message:      req.Message,
		Priority:     priority,
		ActionURL:    req.ActionURL,
		ScheduledFor: req.ScheduledFor,
		Metadata:     req.Metadata,
	}

	if err := h.notifications.Create(c.Request.Context(), notification); err != nil {
		log.Printf("Notification create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create notification"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"notification": notification,
	})
}

// MarkRead handles PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	notification, err := h.notifications.MarkRead(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		log.Printf("Notification mark read failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"notification": notification,
	})
}

// MarkAllRead handles PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), middleware.UserID(c)); err != nil {
		log.Printf("Mark all read failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications marked as read",
	})
}

// Delete handles DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	affected, err := h.notifications.Delete(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		log.Printf("Notification delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Notification deleted",
	})
}

// Clear handles DELETE /api/v1/notifications
func (h *NotificationHandler) Clear(c *gin.Context) {
	if err := h.notifications.DeleteAll(c.Request.Context(), middleware.UserID(c)); err != nil {
		log.Printf("Notification clear failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "All notifications cleared",
	})
}

// GetPreferences handles GET /api/v1/notifications/preferences
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferences.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No row yet means defaults
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"preferences": gin.H{
					"notification_settings": models.DefaultNotificationSettings(),
					"ai_preferences":        models.DefaultAIPreferences(),
					"theme":                 "light",
				},
			})
			return
		}
		log.Printf("Preferences fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"preferences": prefs,
	})
}

// UpdatePreferencesRequest represents the request body for updating
// preferences. Nil sections are left unchanged.
type UpdatePreferencesRequest struct {
	NotificationSettings *models.NotificationSettings `json:"notification_settings"`
	AIPreferences        *models.AIPreferences        `json:"ai_preferences"`
	Theme                *string                      `json:"theme"`
}

// UpdatePreferences handles PUT /api/v1/notifications/preferences
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.NotificationSettings == nil && req.AIPreferences == nil && req.Theme == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if req.Theme != nil && *req.Theme != "light" && *req.Theme != "dark" && *req.Theme != "system" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Theme must be light, dark or system"})
		return
	}

	prefs, err := h.preferences.Upsert(c.Request.Context(), middleware.UserID(c), req.NotificationSettings, req.AIPreferences, req.Theme)
	if err != nil {
		log.Printf("Preferences update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"preferences": prefs,
	})
}

// SendTest handles POST /api/v1/notifications/test
func (h *NotificationHandler) SendTest(c *gin.Context) {
	notification := &models.Notification{
		UserID:   middleware.UserID(c),
		Type:     models.NotificationTypeTest,
		Title:    "Test Notification",
		Message:  "This is a test notification. If you can read this, notifications are working.",
		Priority: models.TaskPriorityLow,
	}

	if err := h.notifications.Create(c.Request.Context(), notification); err != nil {
		log.Printf("Test notification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send test notification"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"notification": notification,
	})
}
