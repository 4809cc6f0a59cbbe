package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/talentogt/hr-api/internal/database"
)

// SequenceStore hands out monotonic sequence values
type SequenceStore interface {
	Next(name string) (int64, error)
}

// CodeService generates the human-readable entity codes (EMP####,
// PROJ####) from the sequence counter. When the counter is unreachable it
// degrades to a timestamp-derived code so creation never blocks on the
// sequence; the degraded path is logged.
type CodeService struct {
	sequences SequenceStore
	logger    *logrus.Logger
}

// NewCodeService creates a new CodeService
func NewCodeService(sequences SequenceStore, logger *logrus.Logger) *CodeService {
	return &CodeService{sequences: sequences, logger: logger}
}

// NextEmployeeCode returns the next EMP#### code
func (s *CodeService) NextEmployeeCode() string {
	return s.next("EMP", database.SequenceEmployees)
}

// NextProjectCode returns the next PROJ#### code
func (s *CodeService) NextProjectCode() string {
	return s.next("PROJ", database.SequenceProjects)
}

func (s *CodeService) next(prefix, sequence string) string {
	value, err := s.sequences.Next(sequence)
	if err != nil {
		code := fmt.Sprintf("%s%d", prefix, time.Now().UnixMilli())
		s.logger.WithFields(logrus.Fields{
			"sequence": sequence,
			"fallback": code,
		}).Warnf("Sequence counter unavailable, using timestamp-derived code: %v", err)
		return code
	}
	return fmt.Sprintf("%s%04d", prefix, value)
}
