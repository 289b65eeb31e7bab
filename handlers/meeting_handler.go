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
	"omnimind-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MeetingStore is the persistence surface the meeting handler depends on
type MeetingStore interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Meeting, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Meeting, error)
	Update(ctx context.Context, id, userID uuid.UUID, update models.MeetingUpdate) (*models.Meeting, error)
	SetSummary(ctx context.Context, id, userID uuid.UUID, summary string, items models.ActionItems) error
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
}

// MeetingSummarizer produces a structured summary from a transcript
type MeetingSummarizer interface {
	SummarizeMeeting(ctx context.Context, transcript string, durationMinutes int, participants []string) (*service.MeetingSummary, error)
}

// MeetingHandler handles HTTP requests for meetings
type MeetingHandler struct {
	meetings   MeetingStore
	summarizer MeetingSummarizer
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetings MeetingStore, summarizer MeetingSummarizer) *MeetingHandler {
	return &MeetingHandler{
		meetings:   meetings,
		summarizer: summarizer,
	}
}

// List handles GET /api/v1/meetings
func (h *MeetingHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	meetings, err := h.meetings.ListByUserID(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		log.Printf("Meeting list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"meetings": meetings,
	})
}

// Get handles GET /api/v1/meetings/:id
func (h *MeetingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meeting ID"})
		return
	}

	meeting, err := h.meetings.GetByID(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
			return
		}
		log.Printf("Meeting fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"meeting": meeting,
	})
}

// CreateMeetingRequest represents the request body for creating a meeting
type CreateMeetingRequest struct {
	Title        string    `json:"title" binding:"required,max=500"`
	Description  *string   `json:"description"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	EndTime      time.Time `json:"end_time" binding:"required"`
	Transcript   *string   `json:"transcript"`
	Participants []string  `json:"participants"`
	Location     *string   `json:"location"`
}

// Create handles POST /api/v1/meetings
func (h *MeetingHandler) Create(c *gin.Context) {
	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title, start_time and end_time are required"})
		return
	}
	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End time must be after start time"})
		return
	}

	meeting := &models.Meeting{
		UserID:       middleware.UserID(c),
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Transcript:   req.Transcript,
		Participants: req.Participants,
		Location:     req.Location,
	}

	if err := h.meetings.Create(c.Request.Context(), meeting); err != nil {
		log.Printf("Meeting create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meeting"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"meeting": meeting,
	})
}

// Update handles PUT /api/v1/meetings/:id
func (h *MeetingHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meeting ID"})
		return
	}

	var update models.MeetingUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if update.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if update.Title != nil && (len(*update.Title) == 0 || len(*update.Title) > 500) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be between 1 and 500 characters"})
		return
	}
	if update.StartTime != nil && update.EndTime != nil && !update.EndTime.After(*update.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End time must be after start time"})
		return
	}

	meeting, err := h.meetings.Update(c.Request.Context(), id, middleware.UserID(c), update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
			return
		}
		log.Printf("Meeting update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"meeting": meeting,
	})
}

// Summarize handles POST /api/v1/meetings/:id/summarize
func (h *MeetingHandler) Summarize(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meeting ID"})
		return
	}

	userID := middleware.UserID(c)
	meeting, err := h.meetings.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
			return
		}
		log.Printf("Meeting fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meeting"})
		return
	}

	if meeting.Transcript == nil || len(*meeting.Transcript) < 50 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Meeting has no transcript to summarize (minimum 50 characters)"})
		return
	}

	duration := int(meeting.EndTime.Sub(meeting.StartTime).Minutes())
	summary, err := h.summarizer.SummarizeMeeting(c.Request.Context(), *meeting.Transcript, duration, meeting.Participants)
	if err != nil {
		log.Printf("Meeting summarization failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to summarize meeting"})
		return
	}

	if err := h.meetings.SetSummary(c.Request.Context(), id, userID, summary.Summary, summary.ActionItems); err != nil {
		log.Printf("Failed to store meeting summary: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}

// Delete handles DELETE /api/v1/meetings/:id
func (h *MeetingHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meeting ID"})
		return
	}

	affected, err := h.meetings.Delete(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		log.Printf("Meeting delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meeting"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Meeting deleted",
	})
}
