package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/policy"
	"github.com/sjperalta/bufete-api/internal/query"
	"github.com/sjperalta/bufete-api/internal/repository"
	"github.com/sjperalta/bufete-api/internal/store"
)

type TimeEntryFilterInput struct {
	Query     string `form:"q" json:"q"`
	Billable  string `form:"billable" json:"billable"`
	CaseRef   string `form:"case_ref" json:"case_ref"`
	StartDate string `form:"start_date" json:"start_date"`
	EndDate   string `form:"end_date" json:"end_date"`
}

type TimeEntryFilter struct {
	Query    string
	Billable *bool
	CaseRef  string
	Dates    DateRange
}

func ParseTimeEntryFilter(in TimeEntryFilterInput, loc *time.Location) (TimeEntryFilter, error) {
	var (
		f   TimeEntryFilter
		err error
	)
	f.Query = normalizeText(in.Query)
	f.CaseRef = strings.TrimSpace(in.CaseRef)

	if raw := strings.TrimSpace(in.Billable); raw != "" && raw != models.FilterAll {
		b, perr := strconv.ParseBool(raw)
		if perr != nil {
			return TimeEntryFilter{}, &InvalidFilterValueError{Field: "billable", Value: in.Billable}
		}
		f.Billable = &b
	}
	if f.Dates, err = parseDateRange(in.StartDate, in.EndDate, loc); err != nil {
		return TimeEntryFilter{}, err
	}
	return f, nil
}

func (f TimeEntryFilter) Predicates() []query.Predicate[models.TimeEntry] {
	var preds []query.Predicate[models.TimeEntry]

	if f.Query != "" {
		needle := f.Query
		preds = append(preds, func(t models.TimeEntry) bool {
			return containsText(needle, t.Activity, t.LawyerName, t.CaseName, t.CaseRef, t.ID)
		})
	}
	if f.Billable != nil {
		billable := *f.Billable
		preds = append(preds, func(t models.TimeEntry) bool { return t.Billable == billable })
	}
	if f.CaseRef != "" {
		ref := f.CaseRef
		preds = append(preds, func(t models.TimeEntry) bool { return strings.EqualFold(t.CaseRef, ref) })
	}
	if f.Dates.Active() {
		dates := f.Dates
		preds = append(preds, func(t models.TimeEntry) bool { return dates.Contains(t.Date) })
	}
	return preds
}

type TimeEntryStats struct {
	Total          int                `json:"total"`
	Hours          float64            `json:"hours"`
	BillableHours  float64            `json:"billable_hours"`
	HoursByLawyer  map[string]float64 `json:"hours_by_lawyer"`
	HoursByCaseRef map[string]float64 `json:"hours_by_case_ref"`
}

func ComputeTimeEntryStats(entries []models.TimeEntry) TimeEntryStats {
	stats := TimeEntryStats{
		Total:          len(entries),
		HoursByLawyer:  make(map[string]float64),
		HoursByCaseRef: make(map[string]float64),
	}
	for _, t := range entries {
		stats.Hours += t.Hours
		if t.Billable {
			stats.BillableHours += t.Hours
		}
		stats.HoursByLawyer[t.LawyerName] += t.Hours
		if t.CaseRef != "" {
			stats.HoursByCaseRef[t.CaseRef] += t.Hours
		}
	}
	return stats
}

type TimeEntryQueryResult = ScopedResult[models.TimeEntry, TimeEntryStats]

// TimeEntryInput is a block of worked time logged by the actor
type TimeEntryInput struct {
	ID       string     `json:"id"`
	Date     *time.Time `json:"date"`
	CaseRef  string     `json:"case_ref"`
	CaseName string     `json:"case_name"`
	Activity string     `json:"activity" binding:"required"`
	Hours    float64    `json:"hours" binding:"required"`
	Billable *bool      `json:"billable"`
}

type TimeEntryService struct {
	*recordKeeper[models.TimeEntry]
}

func NewTimeEntryService(
	repo repository.TimeEntryRepository,
	log *store.Log[models.TimeEntry],
	registry *policy.Registry[models.TimeEntry],
	opts QueryOptions,
) *TimeEntryService {
	var r recordRepository[models.TimeEntry]
	if repo != nil {
		r = repo
	}
	return &TimeEntryService{recordKeeper: newRecordKeeper(r, log, registry, opts)}
}

func (s *TimeEntryService) Query(ctx context.Context, actor models.Actor, filter TimeEntryFilter, page int) (TimeEntryQueryResult, error) {
	return runScoped(s.registry, s.log.Snapshot(), actor, filter.Predicates(), ComputeTimeEntryStats, page, s.opts.PageSize)
}

// Create logs time for actor. Entries are billable unless stated otherwise.
func (s *TimeEntryService) Create(ctx context.Context, actor models.Actor, in TimeEntryInput) (*models.TimeEntry, error) {
	pol, err := s.registry.Resolve(actor.Role)
	if err != nil {
		return nil, err
	}
	if !pol.Capabilities.HasAccess {
		return nil, ErrUnauthorized
	}

	t := models.TimeEntry{
		ID:         strings.TrimSpace(in.ID),
		LawyerID:   actor.ID,
		LawyerName: actor.Name,
		LawyerRole: actor.Role,
		CaseRef:    strings.TrimSpace(in.CaseRef),
		CaseName:   strings.TrimSpace(in.CaseName),
		Activity:   strings.TrimSpace(in.Activity),
		Hours:      in.Hours,
		Billable:   true,
	}
	if in.Billable != nil {
		t.Billable = *in.Billable
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if in.Date != nil {
		t.Date = in.Date.UTC()
	} else {
		t.Date = s.opts.Now().UTC()
	}

	if err := s.persist(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}
