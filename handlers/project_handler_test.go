package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"omnimind-backend/middleware"
	"omnimind-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProjectStore keeps projects in memory with owner scoping
type fakeProjectStore struct {
	projects map[uuid.UUID]*models.Project
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[uuid.UUID]*models.Project)}
}

func (f *fakeProjectStore) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.ProjectStatus, sort, order string) ([]*models.Project, error) {
	var out []*models.Project
	for _, p := range f.projects {
		if p.UserID != userID {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjectStore) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeProjectStore) GetTaskSummaries(ctx context.Context, projectID, userID uuid.UUID) ([]models.ProjectTaskSummary, error) {
	return []models.ProjectTaskSummary{}, nil
}

func (f *fakeProjectStore) Create(ctx context.Context, project *models.Project) error {
	project.ID = uuid.New()
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectStore) Update(ctx context.Context, id, userID uuid.UUID, update models.ProjectUpdate) (*models.Project, error) {
	p, err := f.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.Color != nil {
		p.Color = *update.Color
	}
	return p, nil
}

func (f *fakeProjectStore) Delete(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	if _, err := f.GetByID(ctx, id, userID); err != nil {
		return 0, nil
	}
	delete(f.projects, id)
	return 1, nil
}

func (f *fakeProjectStore) Stats(ctx context.Context, userID uuid.UUID) ([]models.ProjectStat, error) {
	counts := map[models.ProjectStatus]int{}
	for _, p := range f.projects {
		if p.UserID == userID {
			counts[p.Status]++
		}
	}
	var out []models.ProjectStat
	for status, count := range counts {
		out = append(out, models.ProjectStat{Status: status, Count: count})
	}
	return out, nil
}

func newProjectRouter(store *fakeProjectStore, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProjectHandler(store)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	r.GET("/projects", h.List)
	r.GET("/projects/stats", h.Stats)
	r.GET("/projects/:id", h.Get)
	r.POST("/projects", h.Create)
	r.PUT("/projects/:id", h.Update)
	r.DELETE("/projects/:id", h.Delete)
	return r
}

func TestCreateProjectAppliesDefaults(t *testing.T) {
	store := newFakeProjectStore()
	r := newProjectRouter(store, uuid.New())

	w := doJSON(t, r, http.MethodPost, "/projects", gin.H{"name": "Website redesign"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Project models.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ProjectStatusActive, resp.Project.Status)
	assert.Equal(t, "#3B82F6", resp.Project.Color)
	assert.Equal(t, "📋", resp.Project.Icon)
}

func TestCreateProjectRejectsBadColor(t *testing.T) {
	r := newProjectRouter(newFakeProjectStore(), uuid.New())

	w := doJSON(t, r, http.MethodPost, "/projects", gin.H{
		"name":  "Website redesign",
		"color": "blue",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "hex value")
}

func TestProjectListFiltersByStatus(t *testing.T) {
	store := newFakeProjectStore()
	userID := uuid.New()
	r := newProjectRouter(store, userID)

	for _, status := range []models.ProjectStatus{models.ProjectStatusActive, models.ProjectStatusArchived} {
		require.NoError(t, store.Create(context.Background(), &models.Project{
			UserID: userID, Name: "P " + string(status), Status: status,
		}))
	}

	w := doJSON(t, r, http.MethodGet, "/projects?status=archived", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Projects []models.Project `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Projects, 1)
	assert.Equal(t, models.ProjectStatusArchived, resp.Projects[0].Status)

	w = doJSON(t, r, http.MethodGet, "/projects?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProjectNotOwned(t *testing.T) {
	store := newFakeProjectStore()
	other := &models.Project{UserID: uuid.New(), Name: "Secret"}
	require.NoError(t, store.Create(context.Background(), other))

	r := newProjectRouter(store, uuid.New())

	w := doJSON(t, r, http.MethodGet, "/projects/"+other.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectStats(t *testing.T) {
	store := newFakeProjectStore()
	userID := uuid.New()
	r := newProjectRouter(store, userID)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Create(context.Background(), &models.Project{
			UserID: userID, Name: "Active", Status: models.ProjectStatusActive,
		}))
	}

	w := doJSON(t, r, http.MethodGet, "/projects/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Stats []models.ProjectStat `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Stats, 1)
	assert.Equal(t, 2, resp.Stats[0].Count)
}
