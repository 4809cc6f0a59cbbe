package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/talentogt/hr-api/internal/models"
)

// employeeColumns is the full column list selected for employee records
const employeeColumns = `
	id, first_names, last_names, email, phone, birth_date,
	document_type, document_number, street, city, state, postal_code, country,
	employee_code, position, department, hire_date, salary, contract_type, status,
	education_level, skills, experience_years,
	emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
	blood_type, allergies, notes, created_by,
	current_project_id, project_assigned_at, created_at, updated_at`

// EmployeeFilter selects employees by equality on indexed fields
type EmployeeFilter struct {
	Email            string
	DocumentNumber   string
	EmployeeCode     string
	Department       string
	Status           string
	CurrentProjectID *uuid.UUID
	Available        bool // status = Activo AND current_project_id IS NULL
}

// EmployeeRepository handles database operations for the employees table
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository creates a new EmployeeRepository
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func scanEmployee(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Employee, error) {
	e := &models.Employee{}
	err := scanner.Scan(
		&e.ID, &e.FirstNames, &e.LastNames, &e.Email, &e.Phone, &e.BirthDate,
		&e.DocumentType, &e.DocumentNumber, &e.Street, &e.City, &e.State,
		&e.PostalCode, &e.Country,
		&e.EmployeeCode, &e.Position, &e.Department, &e.HireDate, &e.Salary,
		&e.ContractType, &e.Status,
		&e.EducationLevel, &e.Skills, &e.ExperienceYears,
		&e.EmergencyName, &e.EmergencyPhone, &e.EmergencyRelation,
		&e.BloodType, &e.Allergies, &e.Notes, &e.CreatedBy,
		&e.CurrentProjectID, &e.ProjectAssignedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new employee and fills the generated columns
func (r *EmployeeRepository) Create(e *models.Employee) error {
	query := `
		INSERT INTO employees (
			first_names, last_names, email, phone, birth_date,
			document_type, document_number, street, city, state, postal_code, country,
			employee_code, position, department, hire_date, salary, contract_type, status,
			education_level, skills, experience_years,
			emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
			blood_type, allergies, notes, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
		)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		e.FirstNames, e.LastNames, e.Email, e.Phone, e.BirthDate,
		e.DocumentType, e.DocumentNumber, e.Street, e.City, e.State, e.PostalCode, e.Country,
		e.EmployeeCode, e.Position, e.Department, e.HireDate, e.Salary, e.ContractType, e.Status,
		e.EducationLevel, e.Skills, e.ExperienceYears,
		e.EmergencyName, e.EmergencyPhone, e.EmergencyRelation,
		e.BloodType, e.Allergies, e.Notes, e.CreatedBy,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)

	if err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

// GetByID retrieves an employee by id
func (r *EmployeeRepository) GetByID(id uuid.UUID) (*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	e, err := scanEmployee(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "employee", ID: id.String()}
		}
		return nil, fmt.Errorf("failed to fetch employee: %w", err)
	}
	return e, nil
}

// List retrieves employees matching the filter, newest first
func (r *EmployeeRepository) List(filter EmployeeFilter) ([]*models.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	args := []interface{}{}
	where := ""

	addClause := func(clause string, arg interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		if arg != nil {
			args = append(args, arg)
			where += fmt.Sprintf(clause, len(args))
		} else {
			where += clause
		}
	}

	if filter.Email != "" {
		addClause("email = $%d", filter.Email)
	}
	if filter.DocumentNumber != "" {
		addClause("document_number = $%d", filter.DocumentNumber)
	}
	if filter.EmployeeCode != "" {
		addClause("employee_code = $%d", filter.EmployeeCode)
	}
	if filter.Department != "" {
		addClause("department = $%d", filter.Department)
	}
	if filter.Status != "" {
		addClause("status = $%d", filter.Status)
	}
	if filter.CurrentProjectID != nil {
		addClause("current_project_id = $%d", *filter.CurrentProjectID)
	}
	if filter.Available {
		addClause("status = 'Activo' AND current_project_id IS NULL", nil)
	}

	query += where + " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := []*models.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// UpdateFields applies a partial update and returns the merged record
func (r *EmployeeRepository) UpdateFields(id uuid.UUID, fields map[string]interface{}) (*models.Employee, error) {
	if len(fields) == 0 {
		return r.GetByID(id)
	}

	query := "UPDATE employees SET "
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
		return nil, &models.NotFoundError{Resource: "employee", ID: id.String()}
	}

	return r.GetByID(id)
}

// SetCurrentProject writes the assignment back-reference. Both columns move
// together so the back-reference invariant holds on every write.
func (r *EmployeeRepository) SetCurrentProject(id uuid.UUID, projectID *uuid.UUID, assignedAt *time.Time) error {
	query := `
		UPDATE employees
		SET current_project_id = $2,
		    project_assigned_at = $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, id, projectID, assignedAt)
	if err != nil {
		return fmt.Errorf("failed to update employee assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &models.NotFoundError{Resource: "employee", ID: id.String()}
	}
	return nil
}

// Delete removes an employee record. Assignment entries in projects are
// intentionally left behind (no cascade), matching the documented
// stale-reference behavior.
func (r *EmployeeRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &models.NotFoundError{Resource: "employee", ID: id.String()}
	}
	return nil
}

// Stats returns the counts for the stats endpoint
func (r *EmployeeRepository) Stats() (*models.EmployeeStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Activo'),
			COUNT(*) FILTER (WHERE status = 'Inactivo')
		FROM employees
	`

	stats := &models.EmployeeStats{}
	err := r.db.QueryRow(query).Scan(&stats.Total, &stats.Active, &stats.Inactive)
	if err != nil {
		return nil, fmt.Errorf("failed to count employees: %w", err)
	}
	return stats, nil
}

// ListAssignedRefs returns the back-reference of every employee holding a
// current project, for the consistency sweep
func (r *EmployeeRepository) ListAssignedRefs() ([]models.EmployeeBackref, error) {
	query := `
		SELECT id, employee_code, current_project_id
		FROM employees
		WHERE current_project_id IS NOT NULL
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned employees: %w", err)
	}
	defer rows.Close()

	refs := []models.EmployeeBackref{}
	for rows.Next() {
		var ref models.EmployeeBackref
		if err := rows.Scan(&ref.EmployeeID, &ref.EmployeeCode, &ref.ProjectID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
