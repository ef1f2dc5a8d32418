package services

import (
	"github.com/sjperalta/bufete-api/internal/config"
	"github.com/sjperalta/bufete-api/internal/jobs"
	"github.com/sjperalta/bufete-api/internal/policy"
	"github.com/sjperalta/bufete-api/internal/repository"
	"github.com/sjperalta/bufete-api/internal/storage"
	"github.com/sjperalta/bufete-api/pkg/logger"
)

// Services holds all service instances
type Services struct {
	Audit     *AuditService
	Expense   *ExpenseService
	TimeEntry *TimeEntryService
	Export    *ExportService
	Roles     *RoleService
	Job       *JobService
}

// NewServices creates all service instances. repos may be nil, in which case
// records live in memory only.
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config) *Services {
	opts := QueryOptions{PageSize: cfg.PageSize, Location: cfg.Location}

	auditReg := policy.NewAuditRegistry()
	expenseReg := policy.NewExpenseRegistry()
	timeReg := policy.NewTimeEntryRegistry()

	var (
		auditRepo   repository.AuditRepository
		expenseRepo repository.ExpenseRepository
		timeRepo    repository.TimeEntryRepository
	)
	if repos != nil {
		auditRepo, expenseRepo, timeRepo = repos.Audit, repos.Expense, repos.TimeEntry
	}

	auditSvc := NewAuditService(auditRepo, nil, auditReg, opts)
	expenseSvc := NewExpenseService(expenseRepo, nil, expenseReg, opts)
	timeSvc := NewTimeEntryService(timeRepo, nil, timeReg, opts)

	var archive ExportArchive
	if cfg.ExportDir != "" {
		local, err := storage.NewLocalStorage(cfg.ExportDir)
		if err != nil {
			logger.Error("Export archive disabled", "dir", cfg.ExportDir, "error", err)
		} else {
			archive = local
		}
	}

	return &Services{
		Audit:     auditSvc,
		Expense:   expenseSvc,
		TimeEntry: timeSvc,
		Export:    NewExportService(auditSvc, archive),
		Roles:     NewRoleService(auditReg, expenseReg, timeReg),
		Job: NewJobService(worker, map[string]Refreshable{
			policy.DomainAudit:       auditSvc,
			policy.DomainExpenses:    expenseSvc,
			policy.DomainTimeEntries: timeSvc,
		}),
	}
}
