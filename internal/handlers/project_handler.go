package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/talentogt/hr-api/internal/database"
	"github.com/talentogt/hr-api/internal/models"
)

// ProjectStore is the persistence surface the project handler needs
type ProjectStore interface {
	Create(p *models.Project) error
	GetByID(id uuid.UUID) (*models.Project, error)
	GetRef(id uuid.UUID) (*models.ProjectRef, error)
	List(filter database.ProjectFilter) ([]*models.Project, error)
	UpdateFields(id uuid.UUID, fields map[string]interface{}) (*models.Project, error)
	Delete(id uuid.UUID) error
	ListAssignments(projectID uuid.UUID) ([]models.Assignment, error)
}

type ProjectHandler struct {
	projects    ProjectStore
	assignments AssignmentCoordinator
	codes       CodeGenerator
	logger      *logrus.Logger
}

func NewProjectHandler(
	projects ProjectStore,
	assignments AssignmentCoordinator,
	codes CodeGenerator,
	logger *logrus.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projects:    projects,
		assignments: assignments,
		codes:       codes,
		logger:      logger,
	}
}

// GetProjects handles GET /api/v1/projects
func (h *ProjectHandler) GetProjects(c *gin.Context) {
	filter := database.ProjectFilter{
		ProjectCode: c.Query("project_code"),
		Status:      c.Query("status"),
		Category:    c.Query("category"),
	}

	projects, err := h.projects.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, p := range projects {
		p.Derive(time.Now())
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(projects),
		"projects": projects,
	})
}

// GetActiveProjects handles GET /api/v1/projects/active, listing
// projects currently in progress.
func (h *ProjectHandler) GetActiveProjects(c *gin.Context) {
	projects, err := h.projects.List(database.ProjectFilter{
		Status: string(models.ProjectEnProgreso),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	for _, p := range projects {
		p.Derive(time.Now())
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(projects),
		"projects": projects,
	})
}

// GetProject handles GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	project.Derive(time.Now())

	c.JSON(http.StatusOK, project)
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var input models.ProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	project, err := input.ToProject()
	if err != nil {
		respondError(c, err)
		return
	}
	if project.ProjectCode == "" {
		project.ProjectCode = h.codes.NextProjectCode()
	}

	if err := h.projects.Create(project); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"project_id":   project.ID,
		"project_code": project.ProjectCode,
	}).Info("Project created")

	project.Derive(time.Now())
	c.JSON(http.StatusCreated, project)
}

// UpdateProject handles PUT /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var update models.ProjectUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	existing, err := h.projects.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	fields, err := update.Fields(existing)
	if err != nil {
		respondError(c, err)
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "no fields to update",
		})
		return
	}

	project, err := h.projects.UpdateFields(id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	project.Derive(time.Now())

	c.JSON(http.StatusOK, project)
}

type progressRequest struct {
	CompletionPercent *float64 `json:"completion_percent" binding:"required"`
}

// UpdateProgress handles PATCH /api/v1/projects/:id/progress. Besides
// completion it applies the status transitions derived from it: 100%
// completes the project, any progress moves a planned project forward.
func (h *ProjectHandler) UpdateProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	existing, err := h.projects.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	update := models.ProjectUpdate{CompletionPercent: req.CompletionPercent}
	fields, err := update.Fields(existing)
	if err != nil {
		respondError(c, err)
		return
	}

	project, err := h.projects.UpdateFields(id, fields)
	if err != nil {
		respondError(c, err)
		return
	}
	project.Derive(time.Now())

	c.JSON(http.StatusOK, gin.H{
		"message": "Progress updated successfully",
		"project": project,
	})
}

// DeleteProject handles DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithField("project_id", id).Info("Project deleted")

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// GetProjectEmployees handles GET /api/v1/projects/:id/employees,
// returning every assignment entry, historical (inactive) ones included,
// with employee projections.
func (h *ProjectHandler) GetProjectEmployees(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.projects.GetRef(id); err != nil {
		respondError(c, err)
		return
	}

	assignments, err := h.projects.ListAssignments(id)
	if err != nil {
		respondError(c, err)
		return
	}
	if assignments == nil {
		assignments = []models.Assignment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(assignments),
		"employees": assignments,
	})
}

type addEmployeeRequest struct {
	EmployeeID     string `json:"employee_id" binding:"required"`
	Role           string `json:"role"`
	AllocatedHours int    `json:"allocated_hours"`
}

// AddEmployee handles POST /api/v1/projects/:id/employees
func (h *ProjectHandler) AddEmployee(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req addEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_id",
			"message": "invalid identifier format",
		})
		return
	}

	project, err := h.assignments.Add(id, employeeID, req.Role, req.AllocatedHours)
	if err != nil {
		respondError(c, err)
		return
	}
	project.Derive(time.Now())

	c.JSON(http.StatusOK, gin.H{
		"message": "Employee added to project successfully",
		"project": project,
	})
}

// RemoveEmployee handles DELETE /api/v1/projects/:id/employees/:employee_id
func (h *ProjectHandler) RemoveEmployee(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	employeeID, ok := parseID(c, "employee_id")
	if !ok {
		return
	}

	project, err := h.assignments.Remove(id, employeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	project.Derive(time.Now())

	c.JSON(http.StatusOK, gin.H{
		"message": "Employee removed from project successfully",
		"project": project,
	})
}
