package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"omnimind-backend/middleware"
	"omnimind-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProjectStore is the persistence surface the project handler depends on
type ProjectStore interface {
	ListByUserID(ctx context.Context, userID uuid.UUID, status *models.ProjectStatus, sort, order string) ([]*models.Project, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Project, error)
	GetTaskSummaries(ctx context.Context, projectID, userID uuid.UUID) ([]models.ProjectTaskSummary, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id, userID uuid.UUID, update models.ProjectUpdate) (*models.Project, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
	Stats(ctx context.Context, userID uuid.UUID) ([]models.ProjectStat, error)
}

// ProjectHandler handles HTTP requests for projects
type ProjectHandler struct {
	projects ProjectStore
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects ProjectStore) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	var status *models.ProjectStatus
	if v := c.Query("status"); v != "" {
		s := models.ProjectStatus(v)
		if !models.ValidProjectStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		status = &s
	}

	projects, err := h.projects.ListByUserID(c.Request.Context(), middleware.UserID(c),
		status, c.DefaultQuery("sort", "created_at"), c.DefaultQuery("order", "desc"))
	if err != nil {
		log.Printf("Project list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"projects": projects,
	})
}

// Stats handles GET /api/v1/projects/stats
func (h *ProjectHandler) Stats(c *gin.Context) {
	stats, err := h.projects.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		log.Printf("Project stats failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}

// Get handles GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	userID := middleware.UserID(c)
	project, err := h.projects.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		log.Printf("Project fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		return
	}

	tasks, err := h.projects.GetTaskSummaries(c.Request.Context(), id, userID)
	if err != nil {
		log.Printf("Project task summaries failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
		"tasks":   tasks,
	})
}

// CreateProjectRequest represents the request body for creating a project
type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Color       string     `json:"color"`
	Icon        string     `json:"icon"`
	DueDate     *time.Time `json:"due_date"`
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required and must be at most 255 characters"})
		return
	}

	status := models.ProjectStatusActive
	if req.Status != "" {
		status = models.ProjectStatus(req.Status)
		if !models.ValidProjectStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
	}
	color := req.Color
	if color == "" {
		color = "#3B82F6"
	} else if !hexColorPattern.MatchString(color) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Color must be a hex value like #3B82F6"})
		return
	}
	icon := req.Icon
	if icon == "" {
		icon = "📋"
	}

	var description *string
	if req.Description != "" {
		description = &req.Description
	}

	project := &models.Project{
		UserID:      middleware.UserID(c),
		Name:        req.Name,
		Description: description,
		Status:      status,
		Color:       color,
		Icon:        icon,
		DueDate:     req.DueDate,
	}

	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		log.Printf("Project create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"project": project,
	})
}

// Update handles PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	var update models.ProjectUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if update.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if update.Status != nil && !models.ValidProjectStatus(*update.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if update.Color != nil && !hexColorPattern.MatchString(*update.Color) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Color must be a hex value like #3B82F6"})
		return
	}
	if update.Name != nil && (len(*update.Name) == 0 || len(*update.Name) > 255) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name must be between 1 and 255 characters"})
		return
	}

	project, err := h.projects.Update(c.Request.Context(), id, middleware.UserID(c), update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return
		}
		log.Printf("Project update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"project": project,
	})
}

// Delete handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
		return
	}

	affected, err := h.projects.Delete(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		log.Printf("Project delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project deleted",
	})
}
