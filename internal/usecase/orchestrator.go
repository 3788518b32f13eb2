package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"bytemomo/remora/internal/config"
	"bytemomo/remora/internal/domain"
	"bytemomo/remora/internal/scanner"
)

// Orchestrator defines the main audit orchestration interface
type Orchestrator interface {
	// RunAll runs every enabled category and produces the comprehensive report
	RunAll(ctx context.Context) (*domain.AuditReport, error)

	// RunSpecific runs a single category and persists its report
	RunSpecific(ctx context.Context, cat domain.Category) (domain.CategoryResult, error)

	// GetStatus returns the current orchestration status
	GetStatus() OrchestrationStatus
}

// OrchestrationStatus represents the current status of an audit run
type OrchestrationStatus struct {
	State       domain.RunState `json:"state"`
	RunID       string          `json:"run_id,omitempty"`
	StartTime   time.Time       `json:"start_time"`
	ElapsedTime time.Duration   `json:"elapsed_time"`
	Message     string          `json:"message,omitempty"`
}

// OrchestratorConfig contains orchestrator configuration
type OrchestratorConfig struct {
	MaxExecutionTime time.Duration `yaml:"max_execution_time" json:"max_execution_time"`
}

// DefaultOrchestratorConfig returns default orchestrator configuration
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		MaxExecutionTime: 30 * time.Minute,
	}
}

// ScannerFactory builds the scanner for one category. Injectable so tests
// can substitute failing or panicking scanners.
type ScannerFactory func(cat domain.Category, cfg *config.Audit, progress domain.ProgressSink) scanner.Scanner

// AuditOrchestrator coordinates the per-category scanners, isolates their
// failures and hands the aggregated report to the store. A category that
// fails or panics contributes a zero result; only persistence failures
// surface as errors.
type AuditOrchestrator struct {
	cfg        *config.Audit
	store      domain.ReportStore
	progress   domain.ProgressSink
	newScanner ScannerFactory
	config     OrchestratorConfig

	mu     sync.Mutex
	status OrchestrationStatus
}

// NewAuditOrchestrator creates a new audit orchestrator
func NewAuditOrchestrator(cfg *config.Audit, store domain.ReportStore, progress domain.ProgressSink, oc OrchestratorConfig) *AuditOrchestrator {
	return &AuditOrchestrator{
		cfg:        cfg,
		store:      store,
		progress:   progress,
		newScanner: scanner.New,
		config:     oc,
		status:     OrchestrationStatus{State: domain.RunIdle},
	}
}

// RunAll runs every enabled category concurrently and produces the
// comprehensive report. The returned report is complete even when some
// categories failed; the run state records the degradation.
func (o *AuditOrchestrator) RunAll(ctx context.Context) (*domain.AuditReport, error) {
	startTime := time.Now()
	runID := uuid.NewString()
	o.updateStatus(domain.RunRunning, runID, startTime, "Audit run started")

	if o.config.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.MaxExecutionTime)
		defer cancel()
	}

	categories := o.cfg.EnabledCategories()
	log.WithFields(log.Fields{"run_id": runID, "categories": len(categories)}).Info("Audit run starting")

	type categoryOutcome struct {
		cat    domain.Category
		result domain.CategoryResult
		failed bool
	}

	outcomes := make([]categoryOutcome, len(categories))
	var wg sync.WaitGroup
	for i, cat := range categories {
		wg.Add(1)
		go func(i int, cat domain.Category) {
			defer wg.Done()
			result, failed := o.runCategory(ctx, cat)
			outcomes[i] = categoryOutcome{cat: cat, result: result, failed: failed}
		}(i, cat)
	}
	wg.Wait()

	report := &domain.AuditReport{
		RunID:      runID,
		Timestamp:  startTime,
		Categories: make(map[domain.Category]domain.CategoryResult, len(categories)),
	}

	anyFailed := false
	for _, out := range outcomes {
		report.Categories[out.cat] = out.result
		report.Summary.Add(out.result)
		if out.failed {
			anyFailed = true
		}
		// A lost category file degrades the run; the category is still in
		// the comprehensive report, so this is not a run failure.
		if err := o.store.SaveCategory(out.cat, out.result, startTime); err != nil {
			log.WithFields(log.Fields{"category": out.cat, "error": err}).Warn("Failed to persist category report")
		}
	}

	report.Duration = time.Since(startTime)

	persistErr := o.store.SaveReport(report)

	state := domain.RunCompleted
	message := "Audit run completed"
	if anyFailed {
		state = domain.RunPartiallyCompleted
		message = "Audit run completed with failed categories"
	}
	o.updateStatus(state, runID, startTime, message)

	log.WithFields(log.Fields{
		"run_id":   runID,
		"total":    report.Summary.TotalIssues,
		"high":     report.Summary.HighSeverity,
		"duration": report.Duration,
		"state":    state,
	}).Info("Audit run finished")

	return report, persistErr
}

// RunSpecific runs one category under the same failure boundary and
// persists its report.
func (o *AuditOrchestrator) RunSpecific(ctx context.Context, cat domain.Category) (domain.CategoryResult, error) {
	found := false
	for _, c := range domain.AllCategories() {
		if c == cat {
			found = true
			break
		}
	}
	if !found {
		return domain.ZeroCategoryResult(), fmt.Errorf("unknown category %q", cat)
	}

	startTime := time.Now()
	runID := uuid.NewString()
	o.updateStatus(domain.RunRunning, runID, startTime, fmt.Sprintf("Running %s audit", cat))

	if o.config.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.config.MaxExecutionTime)
		defer cancel()
	}

	result, failed := o.runCategory(ctx, cat)

	state := domain.RunCompleted
	if failed {
		state = domain.RunPartiallyCompleted
	}
	o.updateStatus(state, runID, startTime, fmt.Sprintf("%s audit finished", cat))

	if err := o.store.SaveCategory(cat, result, startTime); err != nil {
		return result, err
	}
	return result, nil
}

// GetStatus returns the current orchestration status
func (o *AuditOrchestrator) GetStatus() OrchestrationStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.status
	if !s.StartTime.IsZero() {
		s.ElapsedTime = time.Since(s.StartTime)
	}
	return s
}

// runCategory executes one scanner behind the failure boundary. Errors and
// panics both degrade to an empty result so one category can never take
// down the run.
func (o *AuditOrchestrator) runCategory(ctx context.Context, cat domain.Category) (result domain.CategoryResult, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			failure := &domain.CategoryFailure{Category: cat, Reason: fmt.Sprintf("panic: %v", r)}
			log.WithField("category", cat).Error(failure.Error())
			result = domain.ZeroCategoryResult()
			failed = true
		}
	}()

	s := o.newScanner(cat, o.cfg, o.progress)
	res, err := s.Run(ctx)
	if err != nil {
		failure := &domain.CategoryFailure{Category: cat, Reason: err.Error()}
		log.WithField("category", cat).Error(failure.Error())
		return domain.ZeroCategoryResult(), true
	}
	return res, false
}

func (o *AuditOrchestrator) updateStatus(state domain.RunState, runID string, start time.Time, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = OrchestrationStatus{
		State:     state,
		RunID:     runID,
		StartTime: start,
		Message:   message,
	}
}

var _ Orchestrator = (*AuditOrchestrator)(nil)
