package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"omnimind-backend/middleware"
	"omnimind-backend/models"
	"omnimind-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AIHandler handles HTTP requests for AI operations
type AIHandler struct {
	ai *service.AIService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(ai *service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// ExtractTasksRequest represents the request body for task extraction
type ExtractTasksRequest struct {
	Text    string `json:"text" binding:"required,min=10,max=10000"`
	Context struct {
		Source   string `json:"source"`
		Timezone string `json:"timezone"`
	} `json:"context"`
}

// ExtractTasks handles POST /api/v1/ai/extract-tasks. The call blocks on the
// LLM and returns the extracted tasks directly.
func (h *AIHandler) ExtractTasks(c *gin.Context) {
	var req ExtractTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Text is required and must be between 10 and 10000 characters"})
		return
	}

	tasks, err := h.ai.ExtractTasks(c.Request.Context(), req.Text, service.ExtractionContext{
		Source:   req.Context.Source,
		Timezone: req.Context.Timezone,
	})
	if err != nil {
		log.Printf("Task extraction failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to extract tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
	})
}

// SummarizeMeetingRequest represents the request body for meeting
// summarization
type SummarizeMeetingRequest struct {
	Transcript   string   `json:"transcript" binding:"required,min=50,max=50000"`
	Duration     int      `json:"duration" binding:"required,min=1,max=480"`
	Participants []string `json:"participants"`
}

// SummarizeMeeting handles POST /api/v1/ai/summarize-meeting. Like
// ExtractTasks this blocks on the LLM rather than going through the queue.
func (h *AIHandler) SummarizeMeeting(c *gin.Context) {
	var req SummarizeMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transcript (50-50000 chars) and duration (1-480 minutes) are required"})
		return
	}

	summary, err := h.ai.SummarizeMeeting(c.Request.Context(), req.Transcript, req.Duration, req.Participants)
	if err != nil {
		log.Printf("Meeting summarization failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to summarize meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
	})
}

// OptimizeScheduleRequest represents the request body for schedule
// optimization
type OptimizeScheduleRequest struct {
	Tasks       []map[string]interface{}    `json:"tasks" binding:"required"`
	Constraints service.ScheduleConstraints `json:"constraints"`
}

// OptimizeSchedule handles POST /api/v1/ai/optimize-schedule
func (h *AIHandler) OptimizeSchedule(c *gin.Context) {
	var req OptimizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tasks are required"})
		return
	}
	if len(req.Tasks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one task is required"})
		return
	}

	input := models.JSONMap{
		"tasks":       req.Tasks,
		"constraints": req.Constraints,
	}

	job, err := h.ai.QueueJob(c.Request.Context(), middleware.UserID(c), models.AIJobTypeOptimizeSchedule, input)
	if err != nil {
		log.Printf("Failed to queue optimization: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to queue schedule optimization"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"job_id":  job.ID,
		"status":  job.Status,
		"message": "Schedule optimization queued. Poll /api/v1/ai/jobs/:id for the result.",
	})
}

// GetJob handles GET /api/v1/ai/jobs/:id
func (h *AIHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID"})
		return
	}

	job, err := h.ai.GetJobForUser(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, service.ErrAIJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		log.Printf("Job fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"job":     job,
	})
}

// ProductivityInsights handles GET /api/v1/ai/productivity-insights
func (h *AIHandler) ProductivityInsights(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}

	insights, err := h.ai.AnalyzeProductivity(c.Request.Context(), middleware.UserID(c), days)
	if err != nil {
		log.Printf("Productivity analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to analyze productivity patterns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"insights": insights,
	})
}

// DetectConflicts handles GET /api/v1/ai/detect-conflicts
func (h *AIHandler) DetectConflicts(c *gin.Context) {
	result, err := h.ai.DetectConflicts(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		log.Printf("Conflict detection failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to detect conflicts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"analysis": result,
	})
}
