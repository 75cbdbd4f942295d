package jobs

import (
	"communityshare-backend/internal/config"
	"communityshare-backend/internal/logger"
	"communityshare-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	invoiceSvc service.InvoiceService
	config     *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(invoiceSvc service.InvoiceService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		invoiceSvc: invoiceSvc,
		config:     cfg,
	}
}

// Config exposes the configuration the scheduler registers jobs from
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.MarkOverdueInvoices()
}

// RunAllMonthlyJobs runs all monthly jobs (for manual execution)
func (jr *JobRunner) RunAllMonthlyJobs() {
	jr.GenerateMonthlyInvoices()
}
