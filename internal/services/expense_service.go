package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/policy"
	"github.com/sjperalta/bufete-api/internal/query"
	"github.com/sjperalta/bufete-api/internal/repository"
	"github.com/sjperalta/bufete-api/internal/store"
)

type ExpenseFilterInput struct {
	Query     string `form:"q" json:"q"`
	Category  string `form:"category" json:"category"`
	Status    string `form:"status" json:"status"`
	CaseRef   string `form:"case_ref" json:"case_ref"`
	StartDate string `form:"start_date" json:"start_date"`
	EndDate   string `form:"end_date" json:"end_date"`
}

type ExpenseFilter struct {
	Query    string
	Category *models.ExpenseCategory
	Status   *models.ExpenseStatus
	CaseRef  string
	Dates    DateRange
}

func ParseExpenseFilter(in ExpenseFilterInput, loc *time.Location) (ExpenseFilter, error) {
	var (
		f   ExpenseFilter
		err error
	)
	f.Query = normalizeText(in.Query)
	f.CaseRef = strings.TrimSpace(in.CaseRef)
	if f.Category, err = parseEnum("category", in.Category, models.ExpenseCategory.Valid); err != nil {
		return ExpenseFilter{}, err
	}
	if f.Status, err = parseEnum("status", in.Status, models.ExpenseStatus.Valid); err != nil {
		return ExpenseFilter{}, err
	}
	if f.Dates, err = parseDateRange(in.StartDate, in.EndDate, loc); err != nil {
		return ExpenseFilter{}, err
	}
	return f, nil
}

func (f ExpenseFilter) Predicates() []query.Predicate[models.Expense] {
	var preds []query.Predicate[models.Expense]

	if f.Query != "" {
		needle := f.Query
		preds = append(preds, func(e models.Expense) bool {
			return containsText(needle, e.Description, e.LawyerName, e.CaseRef, e.ID)
		})
	}
	if f.Category != nil {
		category := *f.Category
		preds = append(preds, func(e models.Expense) bool { return e.Category == category })
	}
	if f.Status != nil {
		status := *f.Status
		preds = append(preds, func(e models.Expense) bool { return e.Status == status })
	}
	if f.CaseRef != "" {
		ref := f.CaseRef
		preds = append(preds, func(e models.Expense) bool { return strings.EqualFold(e.CaseRef, ref) })
	}
	if f.Dates.Active() {
		dates := f.Dates
		preds = append(preds, func(e models.Expense) bool { return dates.Contains(e.Date) })
	}
	return preds
}

// ExpenseStats summarises a filtered expense set. Amounts are plain sums.
type ExpenseStats struct {
	Total            int                                `json:"total"`
	TotalAmount      float64                            `json:"total_amount"`
	CountByStatus    map[models.ExpenseStatus]int       `json:"count_by_status"`
	AmountByStatus   map[models.ExpenseStatus]float64   `json:"amount_by_status"`
	AmountByCategory map[models.ExpenseCategory]float64 `json:"amount_by_category"`
}

func ComputeExpenseStats(expenses []models.Expense) ExpenseStats {
	stats := ExpenseStats{
		Total:            len(expenses),
		CountByStatus:    make(map[models.ExpenseStatus]int, len(models.AllExpenseStatuses())),
		AmountByStatus:   make(map[models.ExpenseStatus]float64, len(models.AllExpenseStatuses())),
		AmountByCategory: make(map[models.ExpenseCategory]float64),
	}
	for _, s := range models.AllExpenseStatuses() {
		stats.CountByStatus[s] = 0
		stats.AmountByStatus[s] = 0
	}
	for _, e := range expenses {
		stats.TotalAmount += e.Amount
		stats.CountByStatus[e.Status]++
		stats.AmountByStatus[e.Status] += e.Amount
		stats.AmountByCategory[e.Category] += e.Amount
	}
	return stats
}

type ExpenseQueryResult = ScopedResult[models.Expense, ExpenseStats]

// ExpenseInput is an expense submitted by the lawyer who incurred it
type ExpenseInput struct {
	ID          string     `json:"id"`
	Date        *time.Time `json:"date"`
	CaseRef     string     `json:"case_ref"`
	Category    string     `json:"category" binding:"required"`
	Amount      float64    `json:"amount" binding:"required"`
	Description string     `json:"description"`
}

type ExpenseService struct {
	*recordKeeper[models.Expense]
}

func NewExpenseService(
	repo repository.ExpenseRepository,
	log *store.Log[models.Expense],
	registry *policy.Registry[models.Expense],
	opts QueryOptions,
) *ExpenseService {
	var r recordRepository[models.Expense]
	if repo != nil {
		r = repo
	}
	return &ExpenseService{recordKeeper: newRecordKeeper(r, log, registry, opts)}
}

func (s *ExpenseService) Query(ctx context.Context, actor models.Actor, filter ExpenseFilter, page int) (ExpenseQueryResult, error) {
	return runScoped(s.registry, s.log.Snapshot(), actor, filter.Predicates(), ComputeExpenseStats, page, s.opts.PageSize)
}

// Create records an expense on behalf of actor. New expenses start pending.
func (s *ExpenseService) Create(ctx context.Context, actor models.Actor, in ExpenseInput) (*models.Expense, error) {
	pol, err := s.registry.Resolve(actor.Role)
	if err != nil {
		return nil, err
	}
	if !pol.Capabilities.HasAccess {
		return nil, ErrUnauthorized
	}

	e := models.Expense{
		ID:          strings.TrimSpace(in.ID),
		LawyerID:    actor.ID,
		LawyerName:  actor.Name,
		LawyerRole:  actor.Role,
		CaseRef:     strings.TrimSpace(in.CaseRef),
		Category:    models.ExpenseCategory(in.Category),
		Status:      models.ExpenseStatusPending,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if in.Date != nil {
		e.Date = in.Date.UTC()
	} else {
		e.Date = s.opts.Now().UTC()
	}

	if err := s.persist(ctx, e); err != nil {
		return nil, err
	}
	return &e, nil
}
