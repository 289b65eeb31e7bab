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

// TaskStore is the persistence surface the task handler depends on
type TaskStore interface {
	List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter) ([]*models.Task, int, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	Upcoming(ctx context.Context, userID uuid.UUID, days int) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	Update(ctx context.Context, id, userID uuid.UUID, update models.TaskUpdate) (*models.Task, error)
	Complete(ctx context.Context, id, userID uuid.UUID) (*models.Task, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (int64, error)
}

// TaskProjectStore resolves project ownership for task writes
type TaskProjectStore interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Project, error)
}

// TaskHandler handles HTTP requests for tasks
type TaskHandler struct {
	tasks    TaskStore
	projects TaskProjectStore
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks TaskStore, projects TaskProjectStore) *TaskHandler {
	return &TaskHandler{tasks: tasks, projects: projects}
}

// projectOwned checks the project exists and belongs to the requesting
// user, writing the error response itself when it does not.
func (h *TaskHandler) projectOwned(c *gin.Context, projectID uuid.UUID) bool {
	if _, err := h.projects.GetByID(c.Request.Context(), projectID, middleware.UserID(c)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			return false
		}
		log.Printf("Project lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify project"})
		return false
	}
	return true
}

// List handles GET /api/v1/tasks
func (h *TaskHandler) List(c *gin.Context) {
	filter := repository.TaskFilter{
		Sort:  c.DefaultQuery("sort", "created_at"),
		Order: c.DefaultQuery("order", "desc"),
	}

	if v := c.Query("project_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
			return
		}
		filter.ProjectID = &id
	}
	if v := c.Query("status"); v != "" {
		status := models.TaskStatus(v)
		if !models.ValidTaskStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := models.TaskPriority(v)
		if !models.ValidTaskPriority(priority) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
			return
		}
		filter.Priority = &priority
	}
	if v := c.Query("due_date_from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date_from date"})
			return
		}
		filter.DueDateFrom = &t
	}
	if v := c.Query("due_date_to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid due_date_to date"})
			return
		}
		filter.DueDateTo = &t
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))

	tasks, total, err := h.tasks.List(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		log.Printf("Task list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
		"total":   total,
		"page":    filter.Page,
	})
}

// Upcoming handles GET /api/v1/tasks/upcoming
func (h *TaskHandler) Upcoming(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days < 1 || days > 90 {
		days = 7
	}

	tasks, err := h.tasks.Upcoming(c.Request.Context(), middleware.UserID(c), days)
	if err != nil {
		log.Printf("Upcoming tasks failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch upcoming tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   tasks,
	})
}

// Get handles GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		log.Printf("Task fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	ProjectID         *uuid.UUID `json:"project_id"`
	Title             string     `json:"title" binding:"required,max=500"`
	Description       string     `json:"description"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	DueDate           *time.Time `json:"due_date"`
	EstimatedDuration *int       `json:"estimated_duration"`
	Tags              []string   `json:"tags"`
}

// Create handles POST /api/v1/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required and must be at most 500 characters"})
		return
	}

	status := models.TaskStatusTodo
	if req.Status != "" {
		status = models.TaskStatus(req.Status)
		if !models.ValidTaskStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
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
	if req.EstimatedDuration != nil && (*req.EstimatedDuration < 1 || *req.EstimatedDuration > 480) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Estimated duration must be between 1 and 480 minutes"})
		return
	}
	if req.ProjectID != nil && !h.projectOwned(c, *req.ProjectID) {
		return
	}

	var description *string
	if req.Description != "" {
		description = &req.Description
	}

	task := &models.Task{
		UserID:            middleware.UserID(c),
		ProjectID:         req.ProjectID,
		Title:             req.Title,
		Description:       description,
		Status:            status,
		Priority:          priority,
		DueDate:           req.DueDate,
		EstimatedDuration: req.EstimatedDuration,
		Tags:              req.Tags,
	}

	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		log.Printf("Task create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"task":    task,
	})
}

// Update handles PUT /api/v1/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	var update models.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if update.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}
	if update.Status != nil && !models.ValidTaskStatus(*update.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}
	if update.Priority != nil && !models.ValidTaskPriority(*update.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid priority"})
		return
	}
	if update.Title != nil && (len(*update.Title) == 0 || len(*update.Title) > 500) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be between 1 and 500 characters"})
		return
	}
	if update.ProjectID != nil && !h.projectOwned(c, *update.ProjectID) {
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), id, middleware.UserID(c), update)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		log.Printf("Task update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

// Complete handles POST /api/v1/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	task, err := h.tasks.Complete(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		log.Printf("Task complete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"task":    task,
	})
}

// Delete handles DELETE /api/v1/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return
	}

	affected, err := h.tasks.Delete(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		log.Printf("Task delete failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted",
	})
}
