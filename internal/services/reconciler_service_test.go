package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentogt/hr-api/internal/models"
)

type fakeBackrefStore struct {
	refs []models.EmployeeBackref
	err  error
}

func (f *fakeBackrefStore) ListAssignedRefs() ([]models.EmployeeBackref, error) {
	return f.refs, f.err
}

type fakeActiveAssignmentStore struct {
	refs []models.ActiveAssignmentRef
	err  error
}

func (f *fakeActiveAssignmentStore) ListActiveAssignmentRefs() ([]models.ActiveAssignmentRef, error) {
	return f.refs, f.err
}

func TestSweep_Consistent(t *testing.T) {
	employeeID := uuid.New()
	projectID := uuid.New()
	logger, _ := logrustest.NewNullLogger()

	service := NewReconcilerService(
		&fakeBackrefStore{refs: []models.EmployeeBackref{
			{EmployeeID: employeeID, EmployeeCode: "EMP0001", ProjectID: projectID},
		}},
		&fakeActiveAssignmentStore{refs: []models.ActiveAssignmentRef{
			{ProjectID: projectID, ProjectCode: "PROJ0001", EmployeeID: employeeID},
		}},
		logger,
		"0 0 * * * *",
	)

	report, err := service.Sweep()
	require.NoError(t, err)
	assert.True(t, report.Consistent())
	assert.Empty(t, report.MissingEntries)
	assert.Empty(t, report.MissingBackrefs)
}

func TestSweep_MissingEntry(t *testing.T) {
	// Employee points at a project, but no active entry exists: the
	// signature of a failed second write in Assign
	employeeID := uuid.New()
	projectID := uuid.New()
	logger, hook := logrustest.NewNullLogger()

	service := NewReconcilerService(
		&fakeBackrefStore{refs: []models.EmployeeBackref{
			{EmployeeID: employeeID, EmployeeCode: "EMP0001", ProjectID: projectID},
		}},
		&fakeActiveAssignmentStore{},
		logger,
		"0 0 * * * *",
	)

	report, err := service.Sweep()
	require.NoError(t, err)
	assert.False(t, report.Consistent())
	require.Len(t, report.MissingEntries, 1)
	assert.Equal(t, employeeID, report.MissingEntries[0].EmployeeID)
	assert.NotEmpty(t, hook.Entries)
}

func TestSweep_MissingBackref(t *testing.T) {
	employeeID := uuid.New()
	projectID := uuid.New()
	logger, _ := logrustest.NewNullLogger()

	service := NewReconcilerService(
		&fakeBackrefStore{},
		&fakeActiveAssignmentStore{refs: []models.ActiveAssignmentRef{
			{ProjectID: projectID, ProjectCode: "PROJ0001", EmployeeID: employeeID},
		}},
		logger,
		"0 0 * * * *",
	)

	report, err := service.Sweep()
	require.NoError(t, err)
	assert.False(t, report.Consistent())
	require.Len(t, report.MissingBackrefs, 1)
	assert.Equal(t, projectID, report.MissingBackrefs[0].ProjectID)
}

func TestSweep_CrossedReferences(t *testing.T) {
	// Both sides populated but pointing at different projects: each side
	// shows up as a divergence
	employeeID := uuid.New()
	logger, _ := logrustest.NewNullLogger()

	service := NewReconcilerService(
		&fakeBackrefStore{refs: []models.EmployeeBackref{
			{EmployeeID: employeeID, EmployeeCode: "EMP0001", ProjectID: uuid.New()},
		}},
		&fakeActiveAssignmentStore{refs: []models.ActiveAssignmentRef{
			{ProjectID: uuid.New(), ProjectCode: "PROJ0002", EmployeeID: employeeID},
		}},
		logger,
		"0 0 * * * *",
	)

	report, err := service.Sweep()
	require.NoError(t, err)
	assert.Len(t, report.MissingEntries, 1)
	assert.Len(t, report.MissingBackrefs, 1)
}

func TestSweep_StoreError(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	service := NewReconcilerService(
		&fakeBackrefStore{err: fmt.Errorf("connection refused")},
		&fakeActiveAssignmentStore{},
		logger,
		"0 0 * * * *",
	)

	_, err := service.Sweep()
	assert.Error(t, err)
}

func TestReconcilerStartStop(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	service := NewReconcilerService(
		&fakeBackrefStore{},
		&fakeActiveAssignmentStore{},
		logger,
		"0 0 * * * *",
	)

	require.NoError(t, service.Start())
	service.Stop()
}

func TestReconcilerStart_BadSchedule(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	service := NewReconcilerService(
		&fakeBackrefStore{},
		&fakeActiveAssignmentStore{},
		logger,
		"not a schedule",
	)

	assert.Error(t, service.Start())
}
