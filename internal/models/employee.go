package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talentogt/hr-api/pkg/validator"
)

// DocumentType represents the identity document kind
type DocumentType string

const (
	DocumentDPI       DocumentType = "DPI"
	DocumentPasaporte DocumentType = "Pasaporte"
	DocumentLicencia  DocumentType = "Licencia"
)

// Department represents the fixed department catalogue
type Department string

const (
	DeptDesarrollo     Department = "Desarrollo"
	DeptRecursosHuman  Department = "Recursos Humanos"
	DeptVentas         Department = "Ventas"
	DeptMarketing      Department = "Marketing"
	DeptFinanzas       Department = "Finanzas"
	DeptAdministracion Department = "Administración"
	DeptSoporteTecnico Department = "Soporte Técnico"
)

// ContractType represents the employment contract kind
type ContractType string

const (
	ContractIndefinido ContractType = "Indefinido"
	ContractTemporal   ContractType = "Temporal"
	ContractPracticas  ContractType = "Prácticas"
	ContractFreelance  ContractType = "Freelance"
)

// EmployeeStatus represents the employment status
type EmployeeStatus string

const (
	EmployeeActivo     EmployeeStatus = "Activo"
	EmployeeInactivo   EmployeeStatus = "Inactivo"
	EmployeeSuspendido EmployeeStatus = "Suspendido"
	EmployeeVacaciones EmployeeStatus = "Vacaciones"
)

// EducationLevel represents the highest education level reached
type EducationLevel string

const (
	EducPrimaria    EducationLevel = "Primaria"
	EducSecundaria  EducationLevel = "Secundaria"
	EducUniversidad EducationLevel = "Universidad"
	EducMaestria    EducationLevel = "Maestría"
	EducDoctorado   EducationLevel = "Doctorado"
	EducTecnico     EducationLevel = "Técnico"
)

var (
	documentTypes = []string{"DPI", "Pasaporte", "Licencia"}
	departments   = []string{
		"Desarrollo", "Recursos Humanos", "Ventas", "Marketing",
		"Finanzas", "Administración", "Soporte Técnico",
	}
	contractTypes    = []string{"Indefinido", "Temporal", "Prácticas", "Freelance"}
	employeeStatuses = []string{"Activo", "Inactivo", "Suspendido", "Vacaciones"}
	educationLevels  = []string{"Primaria", "Secundaria", "Universidad", "Maestría", "Doctorado", "Técnico"}
	bloodTypes       = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
)

// Tenure is the time elapsed since the hire date, broken down the way the
// API reports it (whole years, 30-day months, total days)
type Tenure struct {
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`
}

// Employee represents an HR employee record
type Employee struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	FirstNames     string       `json:"first_names" db:"first_names"`
	LastNames      string       `json:"last_names" db:"last_names"`
	Email          string       `json:"email" db:"email"`
	Phone          string       `json:"phone" db:"phone"`
	BirthDate      time.Time    `json:"birth_date" db:"birth_date"`
	DocumentType   DocumentType `json:"document_type" db:"document_type"`
	DocumentNumber string       `json:"document_number" db:"document_number"`

	Street     string `json:"street" db:"street"`
	City       string `json:"city" db:"city"`
	State      string `json:"state" db:"state"`
	PostalCode string `json:"postal_code,omitempty" db:"postal_code"`
	Country    string `json:"country" db:"country"`

	EmployeeCode string         `json:"employee_code" db:"employee_code"`
	Position     string         `json:"position" db:"position"`
	Department   Department     `json:"department" db:"department"`
	HireDate     time.Time      `json:"hire_date" db:"hire_date"`
	Salary       float64        `json:"salary" db:"salary"`
	ContractType ContractType   `json:"contract_type" db:"contract_type"`
	Status       EmployeeStatus `json:"status" db:"status"`

	EducationLevel    EducationLevel `json:"education_level" db:"education_level"`
	Skills            StringArray    `json:"skills" db:"skills"`
	ExperienceYears   int            `json:"experience_years" db:"experience_years"`
	EmergencyName     string         `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyPhone    string         `json:"emergency_contact_phone" db:"emergency_contact_phone"`
	EmergencyRelation string         `json:"emergency_contact_relation" db:"emergency_contact_relation"`
	BloodType         *string        `json:"blood_type,omitempty" db:"blood_type"`
	Allergies         StringArray    `json:"allergies" db:"allergies"`
	Notes             *string        `json:"notes,omitempty" db:"notes"`
	CreatedBy         string         `json:"created_by" db:"created_by"`

	// Both are null or both are set; the assignment service is the only writer
	CurrentProjectID  *uuid.UUID `json:"current_project_id" db:"current_project_id"`
	ProjectAssignedAt *time.Time `json:"project_assigned_at" db:"project_assigned_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Derived fields, computed by Derive and never stored
	FullName string  `json:"full_name" db:"-"`
	Age      int     `json:"age" db:"-"`
	Tenure   *Tenure `json:"tenure,omitempty" db:"-"`

	// Display projection of the current project, populated on reads
	CurrentProject *ProjectRef `json:"current_project,omitempty" db:"-"`
}

// Derive computes the read-only attributes relative to now
func (e *Employee) Derive(now time.Time) {
	e.FullName = e.FirstNames + " " + e.LastNames

	if !e.BirthDate.IsZero() {
		e.Age = int(now.Sub(e.BirthDate).Hours() / 24 / 365.25)
	}

	if !e.HireDate.IsZero() {
		days := int(now.Sub(e.HireDate).Hours() / 24)
		if days < 0 {
			days = 0
		}
		e.Tenure = &Tenure{
			Years:  days / 365,
			Months: (days % 365) / 30,
			Days:   days,
		}
	}
}

// IsAssigned reports whether the employee holds a current project reference
func (e *Employee) IsAssigned() bool {
	return e.CurrentProjectID != nil
}

// EmployeeRef is the projection of an employee embedded in project responses
type EmployeeRef struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	FirstNames   string         `json:"first_names" db:"first_names"`
	LastNames    string         `json:"last_names" db:"last_names"`
	EmployeeCode string         `json:"employee_code" db:"employee_code"`
	Department   Department     `json:"department" db:"department"`
	Status       EmployeeStatus `json:"status" db:"status"`
}

// EmployeeInput represents the create-employee request body
type EmployeeInput struct {
	FirstNames     string `json:"first_names" binding:"required"`
	LastNames      string `json:"last_names" binding:"required"`
	Email          string `json:"email" binding:"required"`
	Phone          string `json:"phone" binding:"required"`
	BirthDate      string `json:"birth_date" binding:"required"`
	DocumentType   string `json:"document_type" binding:"required"`
	DocumentNumber string `json:"document_number" binding:"required"`

	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`

	EmployeeCode string   `json:"employee_code"`
	Position     string   `json:"position" binding:"required"`
	Department   string   `json:"department" binding:"required"`
	HireDate     string   `json:"hire_date"`
	Salary       *float64 `json:"salary" binding:"required"`
	ContractType string   `json:"contract_type" binding:"required"`
	Status       string   `json:"status"`

	EducationLevel    string   `json:"education_level" binding:"required"`
	Skills            []string `json:"skills"`
	ExperienceYears   int      `json:"experience_years"`
	EmergencyName     string   `json:"emergency_contact_name" binding:"required"`
	EmergencyPhone    string   `json:"emergency_contact_phone" binding:"required"`
	EmergencyRelation string   `json:"emergency_contact_relation" binding:"required"`
	BloodType         *string  `json:"blood_type"`
	Allergies         []string `json:"allergies"`
	Notes             *string  `json:"notes"`
	CreatedBy         string   `json:"created_by"`
}

// ToEmployee validates the input and builds an Employee ready to persist.
// The employee code stays empty when absent; the caller generates one.
func (in *EmployeeInput) ToEmployee(now time.Time) (*Employee, error) {
	verr := &ValidationError{}

	if len(in.FirstNames) > 100 {
		verr.Add("first_names", "must not exceed 100 characters")
	}
	if len(in.LastNames) > 100 {
		verr.Add("last_names", "must not exceed 100 characters")
	}
	if !validator.IsEmail(in.Email) {
		verr.Add("email", "invalid email format")
	}
	if !validator.IsPhone(in.Phone) {
		verr.Add("phone", "invalid phone number")
	}
	if !validator.IsPhone(in.EmergencyPhone) {
		verr.Add("emergency_contact_phone", "invalid phone number")
	}

	birthDate, err := time.Parse("2006-01-02", in.BirthDate)
	if err != nil {
		verr.Add("birth_date", "invalid date, expected YYYY-MM-DD")
	}

	if !isOneOf(in.DocumentType, documentTypes) {
		verr.Add("document_type", "invalid document type")
	}
	if !isOneOf(in.Department, departments) {
		verr.Add("department", "invalid department")
	}
	if !isOneOf(in.ContractType, contractTypes) {
		verr.Add("contract_type", "invalid contract type")
	}
	if !isOneOf(in.EducationLevel, educationLevels) {
		verr.Add("education_level", "invalid education level")
	}

	status := in.Status
	if status == "" {
		status = string(EmployeeActivo)
	} else if !isOneOf(status, employeeStatuses) {
		verr.Add("status", "invalid status")
	}

	if in.Salary != nil && *in.Salary < 0 {
		verr.Add("salary", "must not be negative")
	}
	if in.ExperienceYears < 0 {
		verr.Add("experience_years", "must not be negative")
	}
	if in.BloodType != nil && !isOneOf(*in.BloodType, bloodTypes) {
		verr.Add("blood_type", "invalid blood type")
	}
	if in.Notes != nil && len(*in.Notes) > 500 {
		verr.Add("notes", "must not exceed 500 characters")
	}

	hireDate := now
	if in.HireDate != "" {
		hireDate, err = time.Parse("2006-01-02", in.HireDate)
		if err != nil {
			verr.Add("hire_date", "invalid date, expected YYYY-MM-DD")
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}

	country := in.Country
	if country == "" {
		country = "Guatemala"
	}
	createdBy := in.CreatedBy
	if createdBy == "" {
		createdBy = "Sistema"
	}
	var salary float64
	if in.Salary != nil {
		salary = *in.Salary
	}

	return &Employee{
		FirstNames:        in.FirstNames,
		LastNames:         in.LastNames,
		Email:             strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:             validator.SanitizePhone(in.Phone),
		BirthDate:         birthDate,
		DocumentType:      DocumentType(in.DocumentType),
		DocumentNumber:    in.DocumentNumber,
		Street:            in.Street,
		City:              in.City,
		State:             in.State,
		PostalCode:        in.PostalCode,
		Country:           country,
		EmployeeCode:      in.EmployeeCode,
		Position:          in.Position,
		Department:        Department(in.Department),
		HireDate:          hireDate,
		Salary:            salary,
		ContractType:      ContractType(in.ContractType),
		Status:            EmployeeStatus(status),
		EducationLevel:    EducationLevel(in.EducationLevel),
		Skills:            StringArray(in.Skills),
		ExperienceYears:   in.ExperienceYears,
		EmergencyName:     in.EmergencyName,
		EmergencyPhone:    validator.SanitizePhone(in.EmergencyPhone),
		EmergencyRelation: in.EmergencyRelation,
		BloodType:         in.BloodType,
		Allergies:         StringArray(in.Allergies),
		Notes:             in.Notes,
		CreatedBy:         createdBy,
	}, nil
}

// EmployeeUpdate represents a partial update; only supplied fields change
type EmployeeUpdate struct {
	FirstNames        *string  `json:"first_names"`
	LastNames         *string  `json:"last_names"`
	Email             *string  `json:"email"`
	Phone             *string  `json:"phone"`
	BirthDate         *string  `json:"birth_date"`
	DocumentType      *string  `json:"document_type"`
	DocumentNumber    *string  `json:"document_number"`
	Street            *string  `json:"street"`
	City              *string  `json:"city"`
	State             *string  `json:"state"`
	PostalCode        *string  `json:"postal_code"`
	Country           *string  `json:"country"`
	Position          *string  `json:"position"`
	Department        *string  `json:"department"`
	HireDate          *string  `json:"hire_date"`
	Salary            *float64 `json:"salary"`
	ContractType      *string  `json:"contract_type"`
	Status            *string  `json:"status"`
	EducationLevel    *string  `json:"education_level"`
	Skills            []string `json:"skills"`
	ExperienceYears   *int     `json:"experience_years"`
	EmergencyName     *string  `json:"emergency_contact_name"`
	EmergencyPhone    *string  `json:"emergency_contact_phone"`
	EmergencyRelation *string  `json:"emergency_contact_relation"`
	BloodType         *string  `json:"blood_type"`
	Allergies         []string `json:"allergies"`
	Notes             *string  `json:"notes"`
}

// Fields validates the supplied fields and returns the column map for a
// partial update
func (u *EmployeeUpdate) Fields() (map[string]interface{}, error) {
	verr := &ValidationError{}
	fields := map[string]interface{}{}

	setString := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}

	if u.FirstNames != nil && len(*u.FirstNames) > 100 {
		verr.Add("first_names", "must not exceed 100 characters")
	}
	if u.LastNames != nil && len(*u.LastNames) > 100 {
		verr.Add("last_names", "must not exceed 100 characters")
	}
	if u.Email != nil && !validator.IsEmail(*u.Email) {
		verr.Add("email", "invalid email format")
	}
	if u.Phone != nil && !validator.IsPhone(*u.Phone) {
		verr.Add("phone", "invalid phone number")
	}
	if u.EmergencyPhone != nil && !validator.IsPhone(*u.EmergencyPhone) {
		verr.Add("emergency_contact_phone", "invalid phone number")
	}
	var birthDate, hireDate time.Time
	if u.BirthDate != nil {
		parsed, err := time.Parse("2006-01-02", *u.BirthDate)
		if err != nil {
			verr.Add("birth_date", "invalid date, expected YYYY-MM-DD")
		} else {
			birthDate = parsed
		}
	}
	if u.HireDate != nil {
		parsed, err := time.Parse("2006-01-02", *u.HireDate)
		if err != nil {
			verr.Add("hire_date", "invalid date, expected YYYY-MM-DD")
		} else {
			hireDate = parsed
		}
	}
	if u.DocumentType != nil && !isOneOf(*u.DocumentType, documentTypes) {
		verr.Add("document_type", "invalid document type")
	}
	if u.BloodType != nil && !isOneOf(*u.BloodType, bloodTypes) {
		verr.Add("blood_type", "invalid blood type")
	}
	if u.Department != nil && !isOneOf(*u.Department, departments) {
		verr.Add("department", "invalid department")
	}
	if u.ContractType != nil && !isOneOf(*u.ContractType, contractTypes) {
		verr.Add("contract_type", "invalid contract type")
	}
	if u.Status != nil && !isOneOf(*u.Status, employeeStatuses) {
		verr.Add("status", "invalid status")
	}
	if u.EducationLevel != nil && !isOneOf(*u.EducationLevel, educationLevels) {
		verr.Add("education_level", "invalid education level")
	}
	if u.Salary != nil && *u.Salary < 0 {
		verr.Add("salary", "must not be negative")
	}
	if u.ExperienceYears != nil && *u.ExperienceYears < 0 {
		verr.Add("experience_years", "must not be negative")
	}
	if u.Notes != nil && len(*u.Notes) > 500 {
		verr.Add("notes", "must not exceed 500 characters")
	}

	if verr.HasErrors() {
		return nil, verr
	}

	setString("first_names", u.FirstNames)
	setString("last_names", u.LastNames)
	if u.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*u.Email))
	}
	if u.Phone != nil {
		fields["phone"] = validator.SanitizePhone(*u.Phone)
	}
	if u.BirthDate != nil {
		fields["birth_date"] = birthDate
	}
	if u.HireDate != nil {
		fields["hire_date"] = hireDate
	}
	setString("document_type", u.DocumentType)
	setString("document_number", u.DocumentNumber)
	setString("emergency_contact_name", u.EmergencyName)
	if u.EmergencyPhone != nil {
		fields["emergency_contact_phone"] = validator.SanitizePhone(*u.EmergencyPhone)
	}
	setString("emergency_contact_relation", u.EmergencyRelation)
	setString("blood_type", u.BloodType)
	if u.Allergies != nil {
		fields["allergies"] = StringArray(u.Allergies)
	}
	setString("street", u.Street)
	setString("city", u.City)
	setString("state", u.State)
	setString("postal_code", u.PostalCode)
	setString("country", u.Country)
	setString("position", u.Position)
	setString("department", u.Department)
	setString("contract_type", u.ContractType)
	setString("status", u.Status)
	setString("education_level", u.EducationLevel)
	setString("notes", u.Notes)
	if u.Salary != nil {
		fields["salary"] = *u.Salary
	}
	if u.Skills != nil {
		fields["skills"] = StringArray(u.Skills)
	}
	if u.ExperienceYears != nil {
		fields["experience_years"] = *u.ExperienceYears
	}

	return fields, nil
}

// EmployeeStats is the aggregate returned by the stats endpoint
type EmployeeStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

func isOneOf(value string, options []string) bool {
	for _, opt := range options {
		if value == opt {
			return true
		}
	}
	return false
}
