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

// AuditFilterInput is the raw filter as it arrives from a request
type AuditFilterInput struct {
	Query     string `form:"q" json:"q"`
	Action    string `form:"action" json:"action"`
	Module    string `form:"module" json:"module"`
	Severity  string `form:"severity" json:"severity"`
	StartDate string `form:"start_date" json:"start_date"`
	EndDate   string `form:"end_date" json:"end_date"`
}

// AuditFilter is a validated filter state. Nil fields match everything.
type AuditFilter struct {
	Query    string
	Action   *models.Action
	Module   *models.Module
	Severity *models.Severity
	Dates    DateRange
}

// ParseAuditFilter validates raw input at the boundary. Values outside their
// enumeration are rejected instead of being dropped.
func ParseAuditFilter(in AuditFilterInput, loc *time.Location) (AuditFilter, error) {
	var (
		f   AuditFilter
		err error
	)
	f.Query = normalizeText(in.Query)
	if f.Action, err = parseEnum("action", in.Action, models.Action.Valid); err != nil {
		return AuditFilter{}, err
	}
	if f.Module, err = parseEnum("module", in.Module, models.Module.Valid); err != nil {
		return AuditFilter{}, err
	}
	if f.Severity, err = parseEnum("severity", in.Severity, models.Severity.Valid); err != nil {
		return AuditFilter{}, err
	}
	if f.Dates, err = parseDateRange(in.StartDate, in.EndDate, loc); err != nil {
		return AuditFilter{}, err
	}
	return f, nil
}

// Predicates returns the active filter terms in their documented order:
// free text, action, module, severity, date range.
func (f AuditFilter) Predicates() []query.Predicate[models.AuditRecord] {
	var preds []query.Predicate[models.AuditRecord]

	if f.Query != "" {
		needle := f.Query
		preds = append(preds, func(r models.AuditRecord) bool {
			return containsText(needle, r.Description, r.ActorName, r.EntityName, r.ID)
		})
	}
	if f.Action != nil {
		action := *f.Action
		preds = append(preds, func(r models.AuditRecord) bool { return r.Action == action })
	}
	if f.Module != nil {
		module := *f.Module
		preds = append(preds, func(r models.AuditRecord) bool { return r.Module == module })
	}
	if f.Severity != nil {
		severity := *f.Severity
		preds = append(preds, func(r models.AuditRecord) bool { return r.Severity == severity })
	}
	if f.Dates.Active() {
		dates := f.Dates
		preds = append(preds, func(r models.AuditRecord) bool { return dates.Contains(r.Timestamp) })
	}
	return preds
}

// AuditStats summarises a filtered audit set
type AuditStats struct {
	Total      int                     `json:"total"`
	Today      int                     `json:"today"`
	BySeverity map[models.Severity]int `json:"by_severity"`
	ByModule   map[models.Module]int   `json:"by_module"`
	ByAction   map[models.Action]int   `json:"by_action"`
	ByDay      map[string]int          `json:"by_day"`
}

// ComputeAuditStats counts records. Today uses the calendar day of now in loc.
func ComputeAuditStats(records []models.AuditRecord, now time.Time, loc *time.Location) AuditStats {
	if loc == nil {
		loc = time.UTC
	}
	stats := AuditStats{
		Total:      len(records),
		BySeverity: make(map[models.Severity]int, len(models.AllSeverities())),
		ByModule:   make(map[models.Module]int),
		ByAction:   make(map[models.Action]int),
		ByDay:      make(map[string]int),
	}
	for _, s := range models.AllSeverities() {
		stats.BySeverity[s] = 0
	}
	for _, r := range records {
		if sameDay(r.Timestamp, now, loc) {
			stats.Today++
		}
		stats.BySeverity[r.Severity]++
		stats.ByModule[r.Module]++
		stats.ByAction[r.Action]++
		stats.ByDay[r.Timestamp.In(loc).Format(DateLayout)]++
	}
	return stats
}

// AuditQueryResult is the activity log listing for one actor
type AuditQueryResult = ScopedResult[models.AuditRecord, AuditStats]

// RunAuditQuery is the pure composed query: scope → filter → aggregate → paginate
func RunAuditQuery(
	reg *policy.Registry[models.AuditRecord],
	snapshot []models.AuditRecord,
	actor models.Actor,
	filter AuditFilter,
	page, size int,
	now time.Time,
	loc *time.Location,
) (AuditQueryResult, error) {
	aggregate := func(records []models.AuditRecord) AuditStats {
		return ComputeAuditStats(records, now, loc)
	}
	return runScoped(reg, snapshot, actor, filter.Predicates(), aggregate, page, size)
}

// AuditRecordInput is an activity record submitted by a collaborating module
type AuditRecordInput struct {
	ID          string     `json:"id"`
	Timestamp   *time.Time `json:"timestamp"`
	ActorID     string     `json:"actor_id"`
	ActorName   string     `json:"actor_name"`
	ActorRole   string     `json:"actor_role"`
	Action      string     `json:"action"`
	Module      string     `json:"module"`
	Severity    string     `json:"severity"`
	Description string     `json:"description"`
	EntityType  string     `json:"entity_type"`
	EntityName  string     `json:"entity_name"`
	OldValue    string     `json:"old_value"`
	NewValue    string     `json:"new_value"`
	IPAddress   string     `json:"ip_address"`
	Details     string     `json:"details"`
}

type AuditService struct {
	*recordKeeper[models.AuditRecord]
}

func NewAuditService(
	repo repository.AuditRepository,
	log *store.Log[models.AuditRecord],
	registry *policy.Registry[models.AuditRecord],
	opts QueryOptions,
) *AuditService {
	var r recordRepository[models.AuditRecord]
	if repo != nil {
		r = repo
	}
	return &AuditService{recordKeeper: newRecordKeeper(r, log, registry, opts)}
}

// Query lists the activity the actor may see, narrowed by filter
func (s *AuditService) Query(ctx context.Context, actor models.Actor, filter AuditFilter, page int) (AuditQueryResult, error) {
	return RunAuditQuery(s.registry, s.log.Snapshot(), actor, filter, page, s.opts.PageSize, s.opts.Now(), s.opts.Location)
}

// Append validates and stores a new record. Missing id and timestamp are assigned.
func (s *AuditService) Append(ctx context.Context, in AuditRecordInput) (*models.AuditRecord, error) {
	rec := models.AuditRecord{
		ID:          strings.TrimSpace(in.ID),
		ActorID:     strings.TrimSpace(in.ActorID),
		ActorName:   strings.TrimSpace(in.ActorName),
		ActorRole:   models.Role(in.ActorRole),
		Action:      models.Action(in.Action),
		Module:      models.Module(in.Module),
		Severity:    models.Severity(in.Severity),
		Description: strings.TrimSpace(in.Description),
		EntityType:  in.EntityType,
		EntityName:  in.EntityName,
		OldValue:    in.OldValue,
		NewValue:    in.NewValue,
		IPAddress:   in.IPAddress,
		Details:     in.Details,
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if in.Timestamp != nil {
		rec.Timestamp = in.Timestamp.UTC()
	} else {
		rec.Timestamp = s.opts.Now().UTC()
	}
	if rec.Severity == "" {
		rec.Severity = models.SeverityInfo
	}

	if err := s.persist(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
