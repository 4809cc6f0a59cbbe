package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentogt/hr-api/internal/database"
	"github.com/talentogt/hr-api/internal/models"
)

// fakeEmployees is an in-memory EmployeeStore
type fakeEmployees struct {
	employees    map[uuid.UUID]*models.Employee
	stats        *models.EmployeeStats
	err          error
	updateFields map[string]interface{}
	lastFilter   database.EmployeeFilter
}

func newFakeEmployees(employees ...*models.Employee) *fakeEmployees {
	f := &fakeEmployees{employees: map[uuid.UUID]*models.Employee{}}
	for _, e := range employees {
		f.employees[e.ID] = e
	}
	return f
}

func (f *fakeEmployees) Create(e *models.Employee) error {
	if f.err != nil {
		return f.err
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.employees[e.ID] = e
	return nil
}

func (f *fakeEmployees) GetByID(id uuid.UUID) (*models.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "employee", ID: id.String()}
	}
	return e, nil
}

func (f *fakeEmployees) List(filter database.EmployeeFilter) ([]*models.Employee, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastFilter = filter
	out := []*models.Employee{}
	for _, e := range f.employees {
		if filter.Available && (e.Status != models.EmployeeActivo || e.CurrentProjectID != nil) {
			continue
		}
		if filter.Department != "" && string(e.Department) != filter.Department {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEmployees) UpdateFields(id uuid.UUID, fields map[string]interface{}) (*models.Employee, error) {
	f.updateFields = fields
	return f.GetByID(id)
}

func (f *fakeEmployees) Delete(id uuid.UUID) error {
	if _, ok := f.employees[id]; !ok {
		return &models.NotFoundError{Resource: "employee", ID: id.String()}
	}
	delete(f.employees, id)
	return nil
}

func (f *fakeEmployees) Stats() (*models.EmployeeStats, error) {
	if f.stats == nil {
		return &models.EmployeeStats{}, nil
	}
	return f.stats, nil
}

// fakeProjects is an in-memory ProjectStore (and ProjectRefStore)
type fakeProjects struct {
	projects     map[uuid.UUID]*models.Project
	assignments  map[uuid.UUID][]models.Assignment
	updateFields map[string]interface{}
	lastFilter   database.ProjectFilter
}

func newFakeProjects(projects ...*models.Project) *fakeProjects {
	f := &fakeProjects{
		projects:    map[uuid.UUID]*models.Project{},
		assignments: map[uuid.UUID][]models.Assignment{},
	}
	for _, p := range projects {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Create(p *models.Project) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjects) GetByID(id uuid.UUID) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "project", ID: id.String()}
	}
	return p, nil
}

func (f *fakeProjects) GetRef(id uuid.UUID) (*models.ProjectRef, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "project", ID: id.String()}
	}
	return &models.ProjectRef{ID: p.ID, Name: p.Name, ProjectCode: p.ProjectCode, Status: p.Status}, nil
}

func (f *fakeProjects) List(filter database.ProjectFilter) ([]*models.Project, error) {
	f.lastFilter = filter
	out := []*models.Project{}
	for _, p := range f.projects {
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjects) UpdateFields(id uuid.UUID, fields map[string]interface{}) (*models.Project, error) {
	f.updateFields = fields
	return f.GetByID(id)
}

func (f *fakeProjects) Delete(id uuid.UUID) error {
	if _, ok := f.projects[id]; !ok {
		return &models.NotFoundError{Resource: "project", ID: id.String()}
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjects) ListAssignments(projectID uuid.UUID) ([]models.Assignment, error) {
	return f.assignments[projectID], nil
}

// fakeCoordinator records calls and returns canned results
type fakeCoordinator struct {
	employee *models.Employee
	project  *models.Project
	err      error

	lastRole  string
	lastHours int
}

func (f *fakeCoordinator) Assign(employeeID, projectID uuid.UUID) (*models.Employee, error) {
	return f.employee, f.err
}

func (f *fakeCoordinator) Release(employeeID uuid.UUID) (*models.Employee, error) {
	return f.employee, f.err
}

func (f *fakeCoordinator) Add(projectID, employeeID uuid.UUID, role string, allocatedHours int) (*models.Project, error) {
	f.lastRole = role
	f.lastHours = allocatedHours
	return f.project, f.err
}

func (f *fakeCoordinator) Remove(projectID, employeeID uuid.UUID) (*models.Project, error) {
	return f.project, f.err
}

type fakeCodes struct {
	employeeCode string
	projectCode  string
}

func (f *fakeCodes) NextEmployeeCode() string { return f.employeeCode }
func (f *fakeCodes) NextProjectCode() string  { return f.projectCode }

func setupEmployeeRouter(h *EmployeeHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	employees := router.Group("/api/v1/employees")
	{
		employees.GET("", h.GetEmployees)
		employees.GET("/available", h.GetAvailableEmployees)
		employees.GET("/stats", h.GetEmployeeStats)
		employees.POST("", h.CreateEmployee)
		employees.GET("/:id", h.GetEmployee)
		employees.PUT("/:id", h.UpdateEmployee)
		employees.DELETE("/:id", h.DeleteEmployee)
		employees.POST("/:id/assign-project", h.AssignProject)
		employees.POST("/:id/release-project", h.ReleaseProject)
	}
	return router
}

func newEmployeeHandler(employees *fakeEmployees, projects *fakeProjects, coordinator *fakeCoordinator) *EmployeeHandler {
	logger, _ := logrustest.NewNullLogger()
	if projects == nil {
		projects = newFakeProjects()
	}
	if coordinator == nil {
		coordinator = &fakeCoordinator{}
	}
	return NewEmployeeHandler(employees, projects, coordinator, &fakeCodes{employeeCode: "EMP0001"}, logger)
}

func storedEmployee() *models.Employee {
	return &models.Employee{
		ID:           uuid.New(),
		FirstNames:   "Ana María",
		LastNames:    "López García",
		Email:        "ana.lopez@example.com",
		EmployeeCode: "EMP0001",
		Department:   models.DeptDesarrollo,
		Status:       models.EmployeeActivo,
	}
}

func validCreateEmployeeBody() map[string]interface{} {
	return map[string]interface{}{
		"first_names":                "Ana María",
		"last_names":                 "López García",
		"email":                      "ana.lopez@example.com",
		"phone":                      "+502 5555-1234",
		"birth_date":                 "1995-03-20",
		"document_type":              "DPI",
		"document_number":            "2547891230101",
		"street":                     "4a Avenida 12-34 Zona 10",
		"city":                       "Guatemala",
		"state":                      "Guatemala",
		"position":                   "Desarrolladora Backend",
		"department":                 "Desarrollo",
		"salary":                     8500.0,
		"contract_type":              "Indefinido",
		"education_level":            "Universidad",
		"emergency_contact_name":     "Carlos López",
		"emergency_contact_phone":    "+502 5555-9876",
		"emergency_contact_relation": "Padre",
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetEmployees(t *testing.T) {
	employee := storedEmployee()
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, nil))

	w := doJSON(t, router, http.MethodGet, "/api/v1/employees", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])

	list := body["employees"].([]interface{})
	first := list[0].(map[string]interface{})
	assert.Equal(t, "Ana María López García", first["full_name"])
}

func TestGetEmployee_ResolvesProjectRef(t *testing.T) {
	project := &models.Project{
		ID:          uuid.New(),
		Name:        "Portal de Clientes",
		ProjectCode: "PROJ0001",
		Status:      models.ProjectEnProgreso,
	}
	now := time.Now()
	employee := storedEmployee()
	employee.CurrentProjectID = &project.ID
	employee.ProjectAssignedAt = &now

	router := setupEmployeeRouter(newEmployeeHandler(
		newFakeEmployees(employee), newFakeProjects(project), nil))

	w := doJSON(t, router, http.MethodGet, "/api/v1/employees/"+employee.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	ref := body["current_project"].(map[string]interface{})
	assert.Equal(t, "PROJ0001", ref["project_code"])
}

func TestGetEmployee_DanglingProjectRef(t *testing.T) {
	// The referenced project is gone: the record is still served, without
	// the projection
	gone := uuid.New()
	now := time.Now()
	employee := storedEmployee()
	employee.CurrentProjectID = &gone
	employee.ProjectAssignedAt = &now

	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, nil))

	w := doJSON(t, router, http.MethodGet, "/api/v1/employees/"+employee.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.NotContains(t, body, "current_project")
}

func TestGetEmployee_InvalidID(t *testing.T) {
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(), nil, nil))

	w := doJSON(t, router, http.MethodGet, "/api/v1/employees/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_id", decodeBody(t, w)["error"])
}

func TestGetEmployee_NotFound(t *testing.T) {
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(), nil, nil))

	w := doJSON(t, router, http.MethodGet, "/api/v1/employees/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeBody(t, w)["error"])
}

func TestGetAvailableEmployees(t *testing.T) {
	available := storedEmployee()
	assigned := storedEmployee()
	projectID := uuid.New()
	now := time.Now()
	assigned.CurrentProjectID = &projectID
	assigned.ProjectAssignedAt = &now

	store := newFakeEmployees(available, assigned)
	router := setupEmployeeRouter(newEmployeeHandler(store, nil, nil))

	w := doJSON(t, router, http.MethodGet, "/api/v1/employees/available", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	assert.True(t, store.lastFilter.Available)
}

func TestGetEmployeeStats(t *testing.T) {
	store := newFakeEmployees()
	store.stats = &models.EmployeeStats{Total: 10, Active: 7, Inactive: 3}
	router := setupEmployeeRouter(newEmployeeHandler(store, nil, nil))

	w := doJSON(t, router, http.MethodGet, "/api/v1/employees/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, float64(10), body["total"])
	assert.Equal(t, float64(7), body["active"])
}

func TestCreateEmployee(t *testing.T) {
	store := newFakeEmployees()
	router := setupEmployeeRouter(newEmployeeHandler(store, nil, nil))

	w := doJSON(t, router, http.MethodPost, "/api/v1/employees", validCreateEmployeeBody())
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "EMP0001", body["employee_code"])
	assert.Equal(t, "Guatemala", body["country"])
	assert.Equal(t, "Activo", body["status"])
	assert.Len(t, store.employees, 1)
}

func TestCreateEmployee_MissingRequiredField(t *testing.T) {
	body := validCreateEmployeeBody()
	delete(body, "email")
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(), nil, nil))

	w := doJSON(t, router, http.MethodPost, "/api/v1/employees", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeBody(t, w)["error"])
}

func TestCreateEmployee_InvalidCatalogueValue(t *testing.T) {
	body := validCreateEmployeeBody()
	body["department"] = "Cocina"
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(), nil, nil))

	w := doJSON(t, router, http.MethodPost, "/api/v1/employees", body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody(t, w)
	fields := resp["fields"].(map[string]interface{})
	assert.Contains(t, fields, "department")
}

func TestCreateEmployee_KeepsSuppliedCode(t *testing.T) {
	body := validCreateEmployeeBody()
	body["employee_code"] = "EMP9000"
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(), nil, nil))

	w := doJSON(t, router, http.MethodPost, "/api/v1/employees", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "EMP9000", decodeBody(t, w)["employee_code"])
}

func TestUpdateEmployee(t *testing.T) {
	employee := storedEmployee()
	store := newFakeEmployees(employee)
	router := setupEmployeeRouter(newEmployeeHandler(store, nil, nil))

	w := doJSON(t, router, http.MethodPut, "/api/v1/employees/"+employee.ID.String(),
		map[string]interface{}{"position": "Tech Lead", "salary": 12000.0})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Tech Lead", store.updateFields["position"])
	assert.Equal(t, 12000.0, store.updateFields["salary"])
}

func TestUpdateEmployee_NoFields(t *testing.T) {
	employee := storedEmployee()
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, nil))

	w := doJSON(t, router, http.MethodPut, "/api/v1/employees/"+employee.ID.String(),
		map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteEmployee(t *testing.T) {
	employee := storedEmployee()
	store := newFakeEmployees(employee)
	router := setupEmployeeRouter(newEmployeeHandler(store, nil, nil))

	w := doJSON(t, router, http.MethodDelete, "/api/v1/employees/"+employee.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.employees)
}

func TestAssignProject(t *testing.T) {
	employee := storedEmployee()
	projectID := uuid.New()
	now := time.Now()
	employee.CurrentProjectID = &projectID
	employee.ProjectAssignedAt = &now

	coordinator := &fakeCoordinator{employee: employee}
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, coordinator))

	w := doJSON(t, router, http.MethodPost,
		"/api/v1/employees/"+employee.ID.String()+"/assign-project",
		map[string]interface{}{"project_id": projectID.String()})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Project assigned successfully", body["message"])
	assert.Contains(t, body, "employee")
}

func TestAssignProject_Conflict(t *testing.T) {
	employee := storedEmployee()
	coordinator := &fakeCoordinator{err: &models.ConflictError{Message: "employee is already assigned to a project"}}
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, coordinator))

	w := doJSON(t, router, http.MethodPost,
		"/api/v1/employees/"+employee.ID.String()+"/assign-project",
		map[string]interface{}{"project_id": uuid.NewString()})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "conflict", decodeBody(t, w)["error"])
}

func TestAssignProject_InvalidProjectID(t *testing.T) {
	employee := storedEmployee()
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, nil))

	w := doJSON(t, router, http.MethodPost,
		"/api/v1/employees/"+employee.ID.String()+"/assign-project",
		map[string]interface{}{"project_id": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_id", decodeBody(t, w)["error"])
}

func TestAssignProject_PartialState(t *testing.T) {
	employee := storedEmployee()
	coordinator := &fakeCoordinator{err: &models.PartialStateError{
		EmployeeID: employee.ID.String(),
		ProjectID:  uuid.NewString(),
		Committed:  "employee",
		Err:        fmt.Errorf("connection reset"),
	}}
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, coordinator))

	w := doJSON(t, router, http.MethodPost,
		"/api/v1/employees/"+employee.ID.String()+"/assign-project",
		map[string]interface{}{"project_id": uuid.NewString()})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "partial_state", decodeBody(t, w)["error"])
}

func TestReleaseProject(t *testing.T) {
	employee := storedEmployee()
	coordinator := &fakeCoordinator{employee: employee}
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, coordinator))

	w := doJSON(t, router, http.MethodPost,
		"/api/v1/employees/"+employee.ID.String()+"/release-project", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Project released successfully", decodeBody(t, w)["message"])
}

func TestReleaseProject_NotAssigned(t *testing.T) {
	employee := storedEmployee()
	coordinator := &fakeCoordinator{err: &models.ConflictError{Message: "employee is not assigned to any project"}}
	router := setupEmployeeRouter(newEmployeeHandler(newFakeEmployees(employee), nil, coordinator))

	w := doJSON(t, router, http.MethodPost,
		"/api/v1/employees/"+employee.ID.String()+"/release-project", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "conflict", decodeBody(t, w)["error"])
}
