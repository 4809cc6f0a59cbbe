package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/talentogt/hr-api/internal/models"
)

// projectColumns is the full column list selected for project records
const projectColumns = `
	id, name, description, project_code, start_date, end_date,
	status, completion_percent, priority, category, budget, currency,
	client_name, client_email, client_phone, client_company,
	technologies, repository_url, demo_url, notes, created_by, updated_by,
	created_at, updated_at`

// ProjectFilter selects projects by equality on indexed fields
type ProjectFilter struct {
	ProjectCode string
	Status      string
	Category    string
}

// ProjectRepository handles database operations for the projects and
// project_assignments tables
type ProjectRepository struct {
	db DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Project, error) {
	p := &models.Project{}
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Description, &p.ProjectCode, &p.StartDate, &p.EndDate,
		&p.Status, &p.CompletionPercent, &p.Priority, &p.Category, &p.Budget, &p.Currency,
		&p.ClientName, &p.ClientEmail, &p.ClientPhone, &p.ClientCompany,
		&p.Technologies, &p.RepositoryURL, &p.DemoURL, &p.Notes, &p.CreatedBy, &p.UpdatedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new project and fills the generated columns
func (r *ProjectRepository) Create(p *models.Project) error {
	query := `
		INSERT INTO projects (
			name, description, project_code, start_date, end_date,
			status, completion_percent, priority, category, budget, currency,
			client_name, client_email, client_phone, client_company,
			technologies, repository_url, demo_url, notes, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20
		)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		p.Name, p.Description, p.ProjectCode, p.StartDate, p.EndDate,
		p.Status, p.CompletionPercent, p.Priority, p.Category, p.Budget, p.Currency,
		p.ClientName, p.ClientEmail, p.ClientPhone, p.ClientCompany,
		p.Technologies, p.RepositoryURL, p.DemoURL, p.Notes, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

// GetByID retrieves a project with its assignment list
func (r *ProjectRepository) GetByID(id uuid.UUID) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "project", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to fetch project: %w", err)
	}

	p.Assignments, err = r.ListAssignments(id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetRef retrieves the display projection of a project
func (r *ProjectRepository) GetRef(id uuid.UUID) (*models.ProjectRef, error) {
	query := `SELECT id, name, project_code, status FROM projects WHERE id = $1`

	ref := &models.ProjectRef{}
	err := r.db.QueryRow(query, id).Scan(&ref.ID, &ref.Name, &ref.ProjectCode, &ref.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "project", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to fetch project ref: %w", err)
	}
	return ref, nil
}

// List retrieves projects matching the filter, newest first, each with its
// assignment list
func (r *ProjectRepository) List(filter ProjectFilter) ([]*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	args := []interface{}{}
	where := ""

	addClause := func(column string, value interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		args = append(args, value)
		where += fmt.Sprintf("%s = $%d", column, len(args))
	}

	if filter.ProjectCode != "" {
		addClause("project_code", filter.ProjectCode)
	}
	if filter.Status != "" {
		addClause("status", filter.Status)
	}
	if filter.Category != "" {
		addClause("category", filter.Category)
	}

	query += where + " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []*models.Project{}
	ids := []uuid.UUID{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		p.Assignments = []models.Assignment{}
		projects = append(projects, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return projects, nil
	}

	// Single query for all assignment lists instead of one per project
	assignments, err := r.listAssignmentsForProjects(ids)
	if err != nil {
		return nil, err
	}
	byProject := map[uuid.UUID][]models.Assignment{}
	for _, a := range assignments {
		byProject[a.ProjectID] = append(byProject[a.ProjectID], a)
	}
	for _, p := range projects {
		if list, ok := byProject[p.ID]; ok {
			p.Assignments = list
		}
	}
	return projects, nil
}

const assignmentSelect = `
	SELECT
		a.id, a.project_id, a.employee_id, a.role, a.assigned_at,
		a.allocated_hours, a.active,
		e.id, e.first_names, e.last_names, e.employee_code, e.department, e.status
	FROM project_assignments a
	LEFT JOIN employees e ON e.id = a.employee_id
`

func scanAssignmentRows(rows *sql.Rows) ([]models.Assignment, error) {
	assignments := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		var empID *uuid.UUID
		var firstNames, lastNames, code *string
		var department *models.Department
		var status *models.EmployeeStatus

		err := rows.Scan(
			&a.ID, &a.ProjectID, &a.EmployeeID, &a.Role, &a.AssignedAt,
			&a.AllocatedHours, &a.Active,
			&empID, &firstNames, &lastNames, &code, &department, &status,
		)
		if err != nil {
			return nil, err
		}

		// Deleted employees leave stale entries behind; the projection is
		// simply absent for those
		if empID != nil {
			a.Employee = &models.EmployeeRef{
				ID:           *empID,
				FirstNames:   *firstNames,
				LastNames:    *lastNames,
				EmployeeCode: *code,
				Department:   *department,
				Status:       *status,
			}
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListAssignments retrieves a project's assignment entries with employee
// projections, oldest first
func (r *ProjectRepository) ListAssignments(projectID uuid.UUID) ([]models.Assignment, error) {
	rows, err := r.db.Query(assignmentSelect+` WHERE a.project_id = $1 ORDER BY a.assigned_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()
	return scanAssignmentRows(rows)
}

func (r *ProjectRepository) listAssignmentsForProjects(ids []uuid.UUID) ([]models.Assignment, error) {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	rows, err := r.db.Query(assignmentSelect+` WHERE a.project_id = ANY($1) ORDER BY a.assigned_at`, pq.Array(strIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()
	return scanAssignmentRows(rows)
}

// AddAssignment appends an entry to a project's assignment list. The
// partial unique index rejects a second active entry for the same employee.
func (r *ProjectRepository) AddAssignment(a *models.Assignment) error {
	query := `
		INSERT INTO project_assignments (
			project_id, employee_id, role, assigned_at, allocated_hours, active
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	assignedAt := a.AssignedAt
	if assignedAt.IsZero() {
		assignedAt = time.Now()
		a.AssignedAt = assignedAt
	}

	err := r.db.QueryRow(
		query,
		a.ProjectID, a.EmployeeID, a.Role, assignedAt, a.AllocatedHours, a.Active,
	).Scan(&a.ID)

	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

// HasAssignment reports whether any entry (active or not) links the
// employee to the project
func (r *ProjectRepository) HasAssignment(projectID, employeeID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_assignments
			WHERE project_id = $1 AND employee_id = $2
		)
	`

	var exists bool
	err := r.db.QueryRow(query, projectID, employeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return exists, nil
}

// RemoveAssignments deletes every entry linking the employee to the
// project and returns how many were removed
func (r *ProjectRepository) RemoveAssignments(projectID, employeeID uuid.UUID) (int64, error) {
	query := `DELETE FROM project_assignments WHERE project_id = $1 AND employee_id = $2`

	result, err := r.db.Exec(query, projectID, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove assignments: %w", err)
	}
	return result.RowsAffected()
}

// UpdateFields applies a partial update and returns the merged record
func (r *ProjectRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) (*models.Project, error) {
	if len(fields) == 0 {
		return r.GetByID(id)
	}

	query := "UPDATE projects SET "
	args := []interface{}{}
	argPos := 1

	for field, value := range fields {
		if argPos > 1 {
			query += ", "
		}
		query += fmt.Sprintf("%s = $%d", field, argPos)
		args = append(args, value)
		argPos++
	}

	query += fmt.Sprintf(", updated_at = $%d", argPos)
	args = append(args, time.Now())
	argPos++

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return nil, translateUniqueViolation(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, &models.NotFoundError{Resource: "project", ID: id.String()}
	}

	return r.GetByID(id)
}

// Delete removes a project and its assignment entries
func (r *ProjectRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &models.NotFoundError{Resource: "project", ID: id.String()}
	}
	return nil
}

// ListActiveAssignmentRefs returns every active assignment entry, for the
// consistency sweep
func (r *ProjectRepository) ListActiveAssignmentRefs() ([]models.ActiveAssignmentRef, error) {
	query := `
		SELECT a.project_id, p.project_code, a.employee_id
		FROM project_assignments a
		JOIN projects p ON p.id = a.project_id
		WHERE a.active = TRUE
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active assignments: %w", err)
	}
	defer rows.Close()

	refs := []models.ActiveAssignmentRef{}
	for rows.Next() {
		var ref models.ActiveAssignmentRef
		if err := rows.Scan(&ref.ProjectID, &ref.ProjectCode, &ref.EmployeeID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
