package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/talentogt/hr-api/pkg/validator"
)

// ProjectStatus represents the project lifecycle state
type ProjectStatus string

const (
	ProjectPlanificacion ProjectStatus = "Planificación"
	ProjectEnProgreso    ProjectStatus = "En Progreso"
	ProjectEnPausa       ProjectStatus = "En Pausa"
	ProjectCompletado    ProjectStatus = "Completado"
	ProjectCancelado     ProjectStatus = "Cancelado"
)

// Priority represents the project priority scale
type Priority string

const (
	PriorityBaja    Priority = "Baja"
	PriorityMedia   Priority = "Media"
	PriorityAlta    Priority = "Alta"
	PriorityCritica Priority = "Crítica"
)

// Currency represents the budget currency
type Currency string

const (
	CurrencyGTQ Currency = "GTQ"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// AssignmentRole represents the role an employee holds on a project
type AssignmentRole string

const (
	RoleProjectManager  AssignmentRole = "Project Manager"
	RoleDesarrolladorSr AssignmentRole = "Desarrollador Senior"
	RoleDesarrolladorJr AssignmentRole = "Desarrollador Junior"
	RoleDisenador       AssignmentRole = "Diseñador"
	RoleTester          AssignmentRole = "Tester"
	RoleDevOps          AssignmentRole = "DevOps"
	RoleAnalista        AssignmentRole = "Analista"
)

var (
	projectStatuses = []string{"Planificación", "En Progreso", "En Pausa", "Completado", "Cancelado"}
	priorities      = []string{"Baja", "Media", "Alta", "Crítica"}
	currencies      = []string{"GTQ", "USD", "EUR"}
	categories      = []string{
		"Desarrollo Web", "Aplicación Móvil", "API", "Base de Datos",
		"Infraestructura", "Diseño", "Marketing", "Otro",
	}
	assignmentRoles = []string{
		"Project Manager", "Desarrollador Senior", "Desarrollador Junior",
		"Diseñador", "Tester", "DevOps", "Analista",
	}
)

// Assignment is one entry in a project's assignment list
type Assignment struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	ProjectID      uuid.UUID      `json:"project_id" db:"project_id"`
	EmployeeID     uuid.UUID      `json:"employee_id" db:"employee_id"`
	Role           AssignmentRole `json:"role" db:"role"`
	AssignedAt     time.Time      `json:"assigned_at" db:"assigned_at"`
	AllocatedHours int            `json:"allocated_hours" db:"allocated_hours"`
	Active         bool           `json:"active" db:"active"`

	// Display projection of the employee, populated on reads
	Employee *EmployeeRef `json:"employee,omitempty" db:"-"`
}

// Project represents a project record with its assignment list
type Project struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ProjectCode string    `json:"project_code" db:"project_code"`

	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`

	Status            ProjectStatus `json:"status" db:"status"`
	CompletionPercent float64       `json:"completion_percent" db:"completion_percent"`
	Priority          Priority      `json:"priority" db:"priority"`
	Category          string        `json:"category" db:"category"`

	Budget   float64  `json:"budget" db:"budget"`
	Currency Currency `json:"currency" db:"currency"`

	ClientName    string `json:"client_name" db:"client_name"`
	ClientEmail   string `json:"client_email" db:"client_email"`
	ClientPhone   string `json:"client_phone,omitempty" db:"client_phone"`
	ClientCompany string `json:"client_company,omitempty" db:"client_company"`

	Technologies  StringArray `json:"technologies" db:"technologies"`
	RepositoryURL *string     `json:"repository_url,omitempty" db:"repository_url"`
	DemoURL       *string     `json:"demo_url,omitempty" db:"demo_url"`
	Notes         *string     `json:"notes,omitempty" db:"notes"`
	CreatedBy     string      `json:"created_by" db:"created_by"`
	UpdatedBy     *string     `json:"updated_by,omitempty" db:"updated_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Assignments []Assignment `json:"assignments" db:"-"`

	// Derived fields, computed by Derive and never stored
	DurationDays        int `json:"duration_days" db:"-"`
	DaysRemaining       int `json:"days_remaining" db:"-"`
	TotalAllocatedHours int `json:"total_allocated_hours" db:"-"`
}

// Derive computes the read-only attributes relative to now
func (p *Project) Derive(now time.Time) {
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() {
		p.DurationDays = int(p.EndDate.Sub(p.StartDate).Hours() / 24)
	}
	if !p.EndDate.IsZero() {
		remaining := int(math.Ceil(p.EndDate.Sub(now).Hours() / 24))
		if remaining < 0 {
			remaining = 0
		}
		p.DaysRemaining = remaining
	}
	p.TotalAllocatedHours = 0
	for _, a := range p.Assignments {
		if a.Active {
			p.TotalAllocatedHours += a.AllocatedHours
		}
	}
}

// ActiveAssignments returns the entries with the active flag set
func (p *Project) ActiveAssignments() []Assignment {
	active := make([]Assignment, 0, len(p.Assignments))
	for _, a := range p.Assignments {
		if a.Active {
			active = append(active, a)
		}
	}
	return active
}

// ApplyStatusTransitions enforces the completion-driven status changes:
// 100% completes the project, any progress moves it out of planning.
// Returns true when the status changed.
func (p *Project) ApplyStatusTransitions() bool {
	switch {
	case p.CompletionPercent == 100 && p.Status != ProjectCompletado:
		p.Status = ProjectCompletado
		return true
	case p.CompletionPercent > 0 && p.Status == ProjectPlanificacion:
		p.Status = ProjectEnProgreso
		return true
	}
	return false
}

// ValidateActiveUnique rejects a duplicate active entry for the same
// employee. Checked before every assignment append; the partial unique
// index enforces it at the storage layer as well.
func (p *Project) ValidateActiveUnique() error {
	seen := map[uuid.UUID]bool{}
	for _, a := range p.Assignments {
		if !a.Active {
			continue
		}
		if seen[a.EmployeeID] {
			return NewValidationError("assignments",
				"the same employee cannot be assigned to the project more than once")
		}
		seen[a.EmployeeID] = true
	}
	return nil
}

// ProjectRef is the projection of a project embedded in employee responses
type ProjectRef struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	ProjectCode string        `json:"project_code" db:"project_code"`
	Status      ProjectStatus `json:"status" db:"status"`
}

// ProjectInput represents the create-project request body
type ProjectInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	ProjectCode string `json:"project_code"`

	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`

	Status            string   `json:"status"`
	CompletionPercent *float64 `json:"completion_percent"`
	Priority          string   `json:"priority"`
	Category          string   `json:"category" binding:"required"`

	Budget   *float64 `json:"budget" binding:"required"`
	Currency string   `json:"currency"`

	ClientName    string `json:"client_name" binding:"required"`
	ClientEmail   string `json:"client_email" binding:"required"`
	ClientPhone   string `json:"client_phone"`
	ClientCompany string `json:"client_company"`

	Technologies  []string `json:"technologies"`
	RepositoryURL *string  `json:"repository_url"`
	DemoURL       *string  `json:"demo_url"`
	Notes         *string  `json:"notes"`
	CreatedBy     string   `json:"created_by"`
}

// ToProject validates the input and builds a Project ready to persist.
// The project code stays empty when absent; the caller generates one.
func (in *ProjectInput) ToProject() (*Project, error) {
	verr := &ValidationError{}

	if len(in.Name) > 200 {
		verr.Add("name", "must not exceed 200 characters")
	}
	if len(in.Description) > 1000 {
		verr.Add("description", "must not exceed 1000 characters")
	}

	startDate, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		verr.Add("start_date", "invalid date, expected YYYY-MM-DD")
	}
	endDate, err := time.Parse("2006-01-02", in.EndDate)
	if err != nil {
		verr.Add("end_date", "invalid date, expected YYYY-MM-DD")
	}
	if !startDate.IsZero() && !endDate.IsZero() && !endDate.After(startDate) {
		verr.Add("end_date", "must be after the start date")
	}

	status := in.Status
	if status == "" {
		status = string(ProjectPlanificacion)
	} else if !isOneOf(status, projectStatuses) {
		verr.Add("status", "invalid status")
	}

	percent := 0.0
	if in.CompletionPercent != nil {
		percent = *in.CompletionPercent
		if percent < 0 || percent > 100 {
			verr.Add("completion_percent", "must be between 0 and 100")
		}
	}

	priority := in.Priority
	if priority == "" {
		priority = string(PriorityMedia)
	} else if !isOneOf(priority, priorities) {
		verr.Add("priority", "invalid priority")
	}

	if !isOneOf(in.Category, categories) {
		verr.Add("category", "invalid category")
	}

	if in.Budget != nil && *in.Budget < 0 {
		verr.Add("budget", "must not be negative")
	}

	currency := in.Currency
	if currency == "" {
		currency = string(CurrencyGTQ)
	} else if !isOneOf(currency, currencies) {
		verr.Add("currency", "invalid currency")
	}

	if !validator.IsEmail(in.ClientEmail) {
		verr.Add("client_email", "invalid email format")
	}
	if in.RepositoryURL != nil && !validator.IsHTTPURL(*in.RepositoryURL) {
		verr.Add("repository_url", "invalid URL")
	}
	if in.DemoURL != nil && !validator.IsHTTPURL(*in.DemoURL) {
		verr.Add("demo_url", "invalid URL")
	}
	if in.Notes != nil && len(*in.Notes) > 1000 {
		verr.Add("notes", "must not exceed 1000 characters")
	}

	if verr.HasErrors() {
		return nil, verr
	}

	var budget float64
	if in.Budget != nil {
		budget = *in.Budget
	}
	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = "Sistema"
	}

	p := &Project{
		Name:              in.Name,
		Description:       in.Description,
		ProjectCode:       in.ProjectCode,
		StartDate:         startDate,
		EndDate:           endDate,
		Status:            ProjectStatus(status),
		CompletionPercent: percent,
		Priority:          Priority(priority),
		Category:          in.Category,
		Budget:            budget,
		Currency:          Currency(currency),
		ClientName:        in.ClientName,
		ClientEmail:       in.ClientEmail,
		ClientPhone:       in.ClientPhone,
		ClientCompany:     in.ClientCompany,
		Technologies:      StringArray(in.Technologies),
		RepositoryURL:     in.RepositoryURL,
		DemoURL:           in.DemoURL,
		Notes:             in.Notes,
		CreatedBy:         createdBy,
	}
	p.ApplyStatusTransitions()
	return p, nil
}

// ProjectUpdate represents a partial update; only supplied fields change
type ProjectUpdate struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
	Status            *string  `json:"status"`
	CompletionPercent *float64 `json:"completion_percent"`
	Priority          *string  `json:"priority"`
	Category          *string  `json:"category"`
	Budget            *float64 `json:"budget"`
	Currency          *string  `json:"currency"`
	ClientName        *string  `json:"client_name"`
	ClientEmail       *string  `json:"client_email"`
	ClientPhone       *string  `json:"client_phone"`
	ClientCompany     *string  `json:"client_company"`
	Technologies      []string `json:"technologies"`
	RepositoryURL     *string  `json:"repository_url"`
	DemoURL           *string  `json:"demo_url"`
	Notes             *string  `json:"notes"`
	UpdatedBy         *string  `json:"updated_by"`
}

// Fields validates the supplied fields against the existing record and
// returns the column map for a partial update. Date ordering is checked
// against the merged values, and the completion-driven status transitions
// are applied on top of the supplied fields.
func (u *ProjectUpdate) Fields(existing *Project) (map[string]interface{}, error) {
	verr := &ValidationError{}
	fields := map[string]interface{}{}

	if u.Name != nil {
		if len(*u.Name) > 200 {
			verr.Add("name", "must not exceed 200 characters")
		} else {
			fields["name"] = *u.Name
		}
	}
	if u.Description != nil {
		if len(*u.Description) > 1000 {
			verr.Add("description", "must not exceed 1000 characters")
		} else {
			fields["description"] = *u.Description
		}
	}

	startDate := existing.StartDate
	if u.StartDate != nil {
		parsed, err := time.Parse("2006-01-02", *u.StartDate)
		if err != nil {
			verr.Add("start_date", "invalid date, expected YYYY-MM-DD")
		} else {
			startDate = parsed
			fields["start_date"] = parsed
		}
	}
	endDate := existing.EndDate
	if u.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *u.EndDate)
		if err != nil {
			verr.Add("end_date", "invalid date, expected YYYY-MM-DD")
		} else {
			endDate = parsed
			fields["end_date"] = parsed
		}
	}
	if !endDate.After(startDate) {
		verr.Add("end_date", "must be after the start date")
	}

	status := existing.Status
	if u.Status != nil {
		if !isOneOf(*u.Status, projectStatuses) {
			verr.Add("status", "invalid status")
		} else {
			status = ProjectStatus(*u.Status)
			fields["status"] = *u.Status
		}
	}

	percent := existing.CompletionPercent
	if u.CompletionPercent != nil {
		if *u.CompletionPercent < 0 || *u.CompletionPercent > 100 {
			verr.Add("completion_percent", "must be between 0 and 100")
		} else {
			percent = *u.CompletionPercent
			fields["completion_percent"] = percent
		}
	}

	if u.Priority != nil {
		if !isOneOf(*u.Priority, priorities) {
			verr.Add("priority", "invalid priority")
		} else {
			fields["priority"] = *u.Priority
		}
	}
	if u.Category != nil {
		if !isOneOf(*u.Category, categories) {
			verr.Add("category", "invalid category")
		} else {
			fields["category"] = *u.Category
		}
	}
	if u.Budget != nil {
		if *u.Budget < 0 {
			verr.Add("budget", "must not be negative")
		} else {
			fields["budget"] = *u.Budget
		}
	}
	if u.Currency != nil {
		if !isOneOf(*u.Currency, currencies) {
			verr.Add("currency", "invalid currency")
		} else {
			fields["currency"] = *u.Currency
		}
	}
	if u.ClientEmail != nil {
		if !validator.IsEmail(*u.ClientEmail) {
			verr.Add("client_email", "invalid email format")
		} else {
			fields["client_email"] = *u.ClientEmail
		}
	}
	if u.RepositoryURL != nil {
		if !validator.IsHTTPURL(*u.RepositoryURL) {
			verr.Add("repository_url", "invalid URL")
		} else {
			fields["repository_url"] = *u.RepositoryURL
		}
	}
	if u.DemoURL != nil {
		if !validator.IsHTTPURL(*u.DemoURL) {
			verr.Add("demo_url", "invalid URL")
		} else {
			fields["demo_url"] = *u.DemoURL
		}
	}
	if u.Notes != nil {
		if len(*u.Notes) > 1000 {
			verr.Add("notes", "must not exceed 1000 characters")
		} else {
			fields["notes"] = *u.Notes
		}
	}
	if u.ClientName != nil {
		fields["client_name"] = *u.ClientName
	}
	if u.ClientPhone != nil {
		fields["client_phone"] = *u.ClientPhone
	}
	if u.ClientCompany != nil {
		fields["client_company"] = *u.ClientCompany
	}
	if u.Technologies != nil {
		fields["technologies"] = StringArray(u.Technologies)
	}
	if u.UpdatedBy != nil {
		fields["updated_by"] = *u.UpdatedBy
	}

	if verr.HasErrors() {
		return nil, verr
	}

	// Completion-driven transitions win over an explicitly supplied status
	merged := Project{Status: status, CompletionPercent: percent}
	if merged.ApplyStatusTransitions() {
		fields["status"] = string(merged.Status)
	}

	return fields, nil
}

// IsValidAssignmentRole reports whether the role belongs to the catalogue
func IsValidAssignmentRole(role string) bool {
	return isOneOf(role, assignmentRoles)
}
