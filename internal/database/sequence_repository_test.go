package database

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceNext(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewSequenceRepository(db)

	mock.ExpectQuery("INSERT INTO sequences").
		WithArgs(SequenceEmployees).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(42))

	value, err := repo.Next(SequenceEmployees)
	require.NoError(t, err)
	assert.Equal(t, int64(42), value)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceNext_Error(t *testing.T) {
	db, mock := newMockDatabase(t)
	repo := NewSequenceRepository(db)

	mock.ExpectQuery("INSERT INTO sequences").
		WithArgs(SequenceProjects).
		WillReturnError(fmt.Errorf("connection refused"))

	_, err := repo.Next(SequenceProjects)
	assert.Error(t, err)
}
