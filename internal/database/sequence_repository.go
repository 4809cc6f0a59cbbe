package database

import (
	"fmt"
)

// Sequence names for the human-readable entity codes
const (
	SequenceEmployees = "employees"
	SequenceProjects  = "projects"
)

// SequenceRepository hands out monotonic values from the sequences table.
// The increment is a single conditional upsert, so concurrent callers never
// observe the same value.
type SequenceRepository struct {
	db DB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(db DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next atomically increments the named sequence and returns the new value
func (r *SequenceRepository) Next(name string) (int64, error) {
	query := `
		INSERT INTO sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := r.db.QueryRow(query, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", name, err)
	}
	return value, nil
}
