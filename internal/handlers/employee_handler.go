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

// EmployeeStore is the persistence surface the employee handler needs
type EmployeeStore interface {
	Create(e *models.Employee) error
	GetByID(id uuid.UUID) (*models.Employee, error)
	List(filter database.EmployeeFilter) ([]*models.Employee, error)
	UpdateFields(id uuid.UUID, fields map[string]interface{}) (*models.Employee, error)
	Delete(id uuid.UUID) error
	Stats() (*models.EmployeeStats, error)
}

// ProjectRefStore resolves the project projection embedded in employee
// responses
type ProjectRefStore interface {
	GetRef(id uuid.UUID) (*models.ProjectRef, error)
}

// AssignmentCoordinator runs the dual-write operations that keep the
// employee and project sides of an assignment in step
type AssignmentCoordinator interface {
	Assign(employeeID, projectID uuid.UUID) (*models.Employee, error)
	Release(employeeID uuid.UUID) (*models.Employee, error)
	Add(projectID, employeeID uuid.UUID, role string, allocatedHours int) (*models.Project, error)
	Remove(projectID, employeeID uuid.UUID) (*models.Project, error)
}

// CodeGenerator issues sequential human-readable codes for new records
type CodeGenerator interface {
	NextEmployeeCode() string
	NextProjectCode() string
}

type EmployeeHandler struct {
	employees   EmployeeStore
	projectRefs ProjectRefStore
	assignments AssignmentCoordinator
	codes       CodeGenerator
	logger      *logrus.Logger
}

func NewEmployeeHandler(
	employees EmployeeStore,
	projectRefs ProjectRefStore,
	assignments AssignmentCoordinator,
	codes CodeGenerator,
	logger *logrus.Logger,
) *EmployeeHandler {
	return &EmployeeHandler{
		employees:   employees,
		projectRefs: projectRefs,
		assignments: assignments,
		codes:       codes,
		logger:      logger,
	}
}

// present computes derived fields and resolves the current-project
// projection. A dangling project reference leaves the projection empty
// rather than failing the request.
func (h *EmployeeHandler) present(e *models.Employee) *models.Employee {
	e.Derive(time.Now())
	if e.CurrentProjectID != nil {
		ref, err := h.projectRefs.GetRef(*e.CurrentProjectID)
		if err == nil {
			e.CurrentProject = ref
		} else if _, ok := err.(*models.NotFoundError); !ok {
			h.logger.WithError(err).WithField("employee_id", e.ID).
				Warn("Failed to resolve current project projection")
		}
	}
	return e
}

// GetEmployees handles GET /api/v1/employees
func (h *EmployeeHandler) GetEmployees(c *gin.Context) {
	filter := database.EmployeeFilter{
		Email:          c.Query("email"),
		DocumentNumber: c.Query("document_number"),
		EmployeeCode:   c.Query("employee_code"),
		Department:     c.Query("department"),
		Status:         c.Query("status"),
	}

	employees, err := h.employees.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, e := range employees {
		h.present(e)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(employees),
		"employees": employees,
	})
}

// GetAvailableEmployees handles GET /api/v1/employees/available. An
// employee is available when active and not assigned to any project.
func (h *EmployeeHandler) GetAvailableEmployees(c *gin.Context) {
	employees, err := h.employees.List(database.EmployeeFilter{Available: true})
	if err != nil {
		respondError(c, err)
		return
	}
	for _, e := range employees {
		e.Derive(time.Now())
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(employees),
		"employees": employees,
	})
}

// GetEmployeeStats handles GET /api/v1/employees/stats
func (h *EmployeeHandler) GetEmployeeStats(c *gin.Context) {
	stats, err := h.employees.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetEmployee handles GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	employee, err := h.employees.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.present(employee))
}

// CreateEmployee handles POST /api/v1/employees
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var input models.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	employee, err := input.ToEmployee(time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	if employee.EmployeeCode == "" {
		employee.EmployeeCode = h.codes.NextEmployeeCode()
	}

	if err := h.employees.Create(employee); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"employee_id":   employee.ID,
		"employee_code": employee.EmployeeCode,
	}).Info("Employee created")

	c.JSON(http.StatusCreated, h.present(employee))
}

// UpdateEmployee handles PUT /api/v1/employees/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var update models.EmployeeUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}

	fields, err := update.Fields()
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

	employee, err := h.employees.UpdateFields(id, fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.present(employee))
}

// DeleteEmployee handles DELETE /api/v1/employees/:id
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.employees.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	h.logger.WithField("employee_id", id).Info("Employee deleted")

	c.JSON(http.StatusOK, gin.H{
		"message": "Employee deleted successfully",
	})
}

type assignProjectRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
}

// AssignProject handles POST /api/v1/employees/:id/assign-project
func (h *EmployeeHandler) AssignProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req assignProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
		return
	}
	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_id",
			"message": "invalid identifier format",
		})
		return
	}

	employee, err := h.assignments.Assign(id, projectID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Project assigned successfully",
		"employee": h.present(employee),
	})
}

// ReleaseProject handles POST /api/v1/employees/:id/release-project
func (h *EmployeeHandler) ReleaseProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	employee, err := h.assignments.Release(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Project released successfully",
		"employee": h.present(employee),
	})
}
