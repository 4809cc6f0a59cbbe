package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/talentogt/hr-api/internal/models"
)

// Defaults for the entry appended by Assign, which takes no role or hours
const (
	defaultAssignmentRole = models.RoleDesarrolladorJr
	defaultAllocatedHours = 1
)

// EmployeeStore is the employee-side persistence consumed by the
// assignment coordinator
type EmployeeStore interface {
	GetByID(id uuid.UUID) (*models.Employee, error)
	SetCurrentProject(id uuid.UUID, projectID *uuid.UUID, assignedAt *time.Time) error
}

// ProjectStore is the project-side persistence consumed by the assignment
// coordinator
type ProjectStore interface {
	GetByID(id uuid.UUID) (*models.Project, error)
	AddAssignment(a *models.Assignment) error
	HasAssignment(projectID, employeeID uuid.UUID) (bool, error)
	RemoveAssignments(projectID, employeeID uuid.UUID) (int64, error)
}

// AssignmentService coordinates the employee back-reference and the
// project assignment list across two independently stored aggregates.
//
// Every operation performs two sequential single-record writes with no
// cross-aggregate transaction and no rollback. When the second write fails
// after the first committed, the operation returns a PartialStateError and
// the aggregates stay inconsistent until the reconciler sweep surfaces
// them. Concurrent requests for the same employee can also race past the
// already-assigned check between read and write; there is no conditional
// write guarding it.
type AssignmentService struct {
	employees EmployeeStore
	projects  ProjectStore
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(employees EmployeeStore, projects ProjectStore) *AssignmentService {
	return &AssignmentService{employees: employees, projects: projects}
}

// Assign links an unassigned employee to a project: sets the employee's
// current project and appends a default-role entry to the project's list.
// Conflict when the employee already holds a current project.
// Write order: employee first, then project.
func (s *AssignmentService) Assign(employeeID, projectID uuid.UUID) (*models.Employee, error) {
	employee, err := s.employees.GetByID(employeeID)
	if err != nil {
		return nil, err
	}
	if employee.IsAssigned() {
		return nil, &models.ConflictError{Message: "employee is already assigned to a project"}
	}

	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.employees.SetCurrentProject(employeeID, &project.ID, &now); err != nil {
		return nil, err
	}

	entry := &models.Assignment{
		ProjectID:      project.ID,
		EmployeeID:     employeeID,
		Role:           defaultAssignmentRole,
		AssignedAt:     now,
		AllocatedHours: defaultAllocatedHours,
		Active:         true,
	}
	if err := s.projects.AddAssignment(entry); err != nil {
		return nil, &models.PartialStateError{
			EmployeeID: employeeID.String(),
			ProjectID:  projectID.String(),
			Committed:  "employee",
			Err:        err,
		}
	}

	return s.employees.GetByID(employeeID)
}

// Release unlinks an employee from their current project: removes the
// employee's entries from the project's list and clears the back-reference.
// Conflict when the employee holds no current project. A missing project is
// tolerated; the employee side is cleared regardless.
// Write order: project first, then employee.
func (s *AssignmentService) Release(employeeID uuid.UUID) (*models.Employee, error) {
	employee, err := s.employees.GetByID(employeeID)
	if err != nil {
		return nil, err
	}
	if !employee.IsAssigned() {
		return nil, &models.ConflictError{Message: "employee is not assigned to any project"}
	}

	projectID := *employee.CurrentProjectID
	projectWritten := false
	if _, err := s.projects.GetByID(projectID); err == nil {
		if _, err := s.projects.RemoveAssignments(projectID, employeeID); err != nil {
			return nil, err
		}
		projectWritten = true
	} else if _, ok := err.(*models.NotFoundError); !ok {
		return nil, err
	}

	if err := s.employees.SetCurrentProject(employeeID, nil, nil); err != nil {
		if projectWritten {
			return nil, &models.PartialStateError{
				EmployeeID: employeeID.String(),
				ProjectID:  projectID.String(),
				Committed:  "project",
				Err:        err,
			}
		}
		return nil, err
	}

	return s.employees.GetByID(employeeID)
}

// Add appends an employee to a project's list with an explicit role and
// hours. Idempotent on the entry list: an existing entry is kept as is. The
// employee's current project is overwritten unconditionally, even when it
// pointed at a different project; the old project keeps its entry.
func (s *AssignmentService) Add(projectID, employeeID uuid.UUID, role string, allocatedHours int) (*models.Project, error) {
	project, err := s.projects.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	employee, err := s.employees.GetByID(employeeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.projects.HasAssignment(projectID, employee.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	projectWritten := false
	if !exists {
		// Role and hours only matter when an entry is actually added
		verr := &models.ValidationError{}
		if !models.IsValidAssignmentRole(role) {
			verr.Add("role", "invalid role")
		}
		if allocatedHours < 1 {
			verr.Add("allocated_hours", "must be at least 1")
		}
		if verr.HasErrors() {
			return nil, verr
		}

		entry := &models.Assignment{
			ProjectID:      project.ID,
			EmployeeID:     employee.ID,
			Role:           models.AssignmentRole(role),
			AssignedAt:     now,
			AllocatedHours: allocatedHours,
			Active:         true,
		}
		if err := s.projects.AddAssignment(entry); err != nil {
			return nil, err
		}
		projectWritten = true
	}

	if err := s.employees.SetCurrentProject(employee.ID, &project.ID, &now); err != nil {
		if projectWritten {
			return nil, &models.PartialStateError{
				EmployeeID: employeeID.String(),
				ProjectID:  projectID.String(),
				Committed:  "project",
				Err:        err,
			}
		}
		return nil, err
	}

	return s.projects.GetByID(projectID)
}

// Remove deletes an employee's entries from a project's list. A missing
// entry is a no-op, not an error. The employee's current project is cleared
// unconditionally when the record exists, even when it points at a
// different project.
func (s *AssignmentService) Remove(projectID, employeeID uuid.UUID) (*models.Project, error) {
	if _, err := s.projects.GetByID(projectID); err != nil {
		return nil, err
	}

	removed, err := s.projects.RemoveAssignments(projectID, employeeID)
	if err != nil {
		return nil, err
	}

	employee, err := s.employees.GetByID(employeeID)
	if err != nil {
		if _, ok := err.(*models.NotFoundError); !ok {
			return nil, err
		}
		// Deleted employee: nothing to clear
	} else {
		if err := s.employees.SetCurrentProject(employee.ID, nil, nil); err != nil {
			if removed > 0 {
				return nil, &models.PartialStateError{
					EmployeeID: employeeID.String(),
					ProjectID:  projectID.String(),
					Committed:  "project",
					Err:        err,
				}
			}
			return nil, err
		}
	}

	return s.projects.GetByID(projectID)
}
