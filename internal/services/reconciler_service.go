package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/talentogt/hr-api/internal/models"
)

// BackrefStore lists the employee side of the assignment relation
type BackrefStore interface {
	ListAssignedRefs() ([]models.EmployeeBackref, error)
}

// ActiveAssignmentStore lists the project side of the assignment relation
type ActiveAssignmentStore interface {
	ListActiveAssignmentRefs() ([]models.ActiveAssignmentRef, error)
}

// ConsistencyReport holds the divergences found by one sweep: employees
// whose back-reference has no matching active entry, and active entries
// whose employee does not point back
type ConsistencyReport struct {
	MissingEntries  []models.EmployeeBackref     `json:"missing_entries"`
	MissingBackrefs []models.ActiveAssignmentRef `json:"missing_backrefs"`
	CheckedAt       string                       `json:"checked_at,omitempty"`
}

// Consistent reports whether the sweep found no divergence
func (r *ConsistencyReport) Consistent() bool {
	return len(r.MissingEntries) == 0 && len(r.MissingBackrefs) == 0
}

// ReconcilerService periodically cross-checks the two halves of the
// assignment relationship. Dual writes are not transactional, so a failed
// second write leaves the aggregates diverged; this sweep is the documented
// discovery path. It only reports; repairs stay a manual decision.
type ReconcilerService struct {
	employees BackrefStore
	projects  ActiveAssignmentStore
	logger    *logrus.Logger
	cron      *cron.Cron
	schedule  string
	entryID   cron.EntryID
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(
	employees BackrefStore,
	projects ActiveAssignmentStore,
	logger *logrus.Logger,
	schedule string,
) *ReconcilerService {
	return &ReconcilerService{
		employees: employees,
		projects:  projects,
		logger:    logger,
		cron:      cron.New(cron.WithSeconds()),
		schedule:  schedule,
	}
}

// Start registers and starts the periodic sweep
func (s *ReconcilerService) Start() error {
	id, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(); err != nil {
			s.logger.Errorf("Consistency sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule consistency sweep: %w", err)
	}
	s.entryID = id
	s.cron.Start()
	s.logger.Infof("Consistency sweep scheduled: %s", s.schedule)
	return nil
}

// Stop stops the periodic sweep
func (s *ReconcilerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep cross-checks both sides of the assignment relation once and logs
// every divergence
func (s *ReconcilerService) Sweep() (*ConsistencyReport, error) {
	backrefs, err := s.employees.ListAssignedRefs()
	if err != nil {
		return nil, fmt.Errorf("failed to load employee back-references: %w", err)
	}
	entries, err := s.projects.ListActiveAssignmentRefs()
	if err != nil {
		return nil, fmt.Errorf("failed to load active assignments: %w", err)
	}

	type key struct {
		employee uuid.UUID
		project  uuid.UUID
	}
	entrySet := make(map[key]bool, len(entries))
	for _, e := range entries {
		entrySet[key{e.EmployeeID, e.ProjectID}] = true
	}
	backrefSet := make(map[key]bool, len(backrefs))
	for _, b := range backrefs {
		backrefSet[key{b.EmployeeID, b.ProjectID}] = true
	}

	report := &ConsistencyReport{
		MissingEntries:  []models.EmployeeBackref{},
		MissingBackrefs: []models.ActiveAssignmentRef{},
		CheckedAt:       time.Now().UTC().Format(time.RFC3339),
	}

	for _, b := range backrefs {
		if !entrySet[key{b.EmployeeID, b.ProjectID}] {
			report.MissingEntries = append(report.MissingEntries, b)
			s.logger.WithFields(logrus.Fields{
				"employee_id":   b.EmployeeID,
				"employee_code": b.EmployeeCode,
				"project_id":    b.ProjectID,
			}).Warn("Employee references a project with no matching active assignment entry")
		}
	}
	for _, e := range entries {
		if !backrefSet[key{e.EmployeeID, e.ProjectID}] {
			report.MissingBackrefs = append(report.MissingBackrefs, e)
			s.logger.WithFields(logrus.Fields{
				"employee_id":  e.EmployeeID,
				"project_id":   e.ProjectID,
				"project_code": e.ProjectCode,
			}).Warn("Active assignment entry without a matching employee back-reference")
		}
	}

	if report.Consistent() {
		s.logger.Debug("Consistency sweep found no divergence")
	} else {
		s.logger.Warnf("Consistency sweep found %d missing entries, %d missing back-references",
			len(report.MissingEntries), len(report.MissingBackrefs))
	}
	return report, nil
}
