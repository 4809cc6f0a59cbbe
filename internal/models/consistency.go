package models

import "github.com/google/uuid"

// EmployeeBackref is the employee side of the assignment relationship as
// seen by the consistency sweep
type EmployeeBackref struct {
	EmployeeID   uuid.UUID
	EmployeeCode string
	ProjectID    uuid.UUID
}

// ActiveAssignmentRef is the project side of the assignment relationship as
// seen by the consistency sweep
type ActiveAssignmentRef struct {
	ProjectID   uuid.UUID
	ProjectCode string
	EmployeeID  uuid.UUID
}
