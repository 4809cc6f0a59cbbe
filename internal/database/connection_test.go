package database

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentogt/hr-api/internal/config"
	"github.com/talentogt/hr-api/internal/models"
)

func TestTranslateUniqueViolation(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{"employees_email_key", "email"},
		{"employees_document_number_key", "document_number"},
		{"employees_employee_code_key", "employee_code"},
		{"projects_project_code_key", "project_code"},
		{"project_assignments_active_employee_idx", "assignments"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			err := translateUniqueViolation(&pq.Error{Code: "23505", Constraint: tt.constraint})
			verr, ok := err.(*models.ValidationError)
			require.True(t, ok)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestTranslateUniqueViolation_UnknownConstraint(t *testing.T) {
	err := translateUniqueViolation(&pq.Error{Code: "23505", Constraint: "something_else"})
	verr, ok := err.(*models.ValidationError)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "something_else")
}

func TestTranslateUniqueViolation_PassThrough(t *testing.T) {
	original := fmt.Errorf("connection reset")
	assert.Equal(t, original, translateUniqueViolation(original))

	notUnique := &pq.Error{Code: "23503"}
	assert.Equal(t, notUnique, translateUniqueViolation(notUnique))
}

func TestNewConnection_RequiresURL(t *testing.T) {
	_, err := NewConnection(config.DatabaseConfig{})
	assert.Error(t, err)
}
