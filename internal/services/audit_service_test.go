package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/policy"
	"github.com/sjperalta/bufete-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)

func testOptions() QueryOptions {
	return QueryOptions{PageSize: 20, Location: time.UTC, Now: func() time.Time { return testNow }}
}

func newTestAuditService(t *testing.T, repo repository.AuditRepository, records ...models.AuditRecord) *AuditService {
	t.Helper()
	svc := NewAuditService(repo, nil, policy.NewAuditRegistry(), testOptions())
	require.NoError(t, svc.Seed(records))
	return svc
}

func auditRecord(id string, at time.Time, actorID string, role models.Role) models.AuditRecord {
	return models.AuditRecord{
		ID:          id,
		Timestamp:   at,
		ActorID:     actorID,
		ActorName:   "Usuario " + actorID,
		ActorRole:   role,
		Action:      models.ActionUpdate,
		Module:      models.ModuleClients,
		Severity:    models.SeverityInfo,
		Description: "Actualizó datos de contacto",
	}
}

// mixedAuditRecords returns n records spread over roles, modules and severities,
// seven hours apart going back from testNow.
func mixedAuditRecords(n int) []models.AuditRecord {
	roles := models.AllRoles()
	modules := models.AllModules()
	severities := models.AllSeverities()
	actions := models.AllActions()
	out := make([]models.AuditRecord, n)
	for i := range out {
		role := roles[i%len(roles)]
		out[i] = models.AuditRecord{
			ID:          fmt.Sprintf("r-%03d", i),
			Timestamp:   testNow.Add(-time.Duration(i) * 7 * time.Hour),
			ActorID:     fmt.Sprintf("u-%d", i%5),
			ActorName:   fmt.Sprintf("Abogado %d", i%5),
			ActorRole:   role,
			Action:      actions[i%len(actions)],
			Module:      modules[i%len(modules)],
			Severity:    severities[i%len(severities)],
			Description: fmt.Sprintf("Evento %d en expediente", i),
		}
		if i%4 == 0 {
			out[i].EntityType = models.EntityCase
			out[i].EntityName = fmt.Sprintf("Exp. %d/2026", i)
		}
	}
	return out
}

func recordIDs(records []models.AuditRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func mustAuditFilter(t *testing.T, in AuditFilterInput) AuditFilter {
	t.Helper()
	f, err := ParseAuditFilter(in, time.UTC)
	require.NoError(t, err)
	return f
}

func TestAuditQuery_FullAccessFirstPage(t *testing.T) {
	records := make([]models.AuditRecord, 45)
	for i := range records {
		records[i] = auditRecord(fmt.Sprintf("r-%02d", i), testNow.Add(-time.Duration(i)*time.Hour), "u1", models.RolePartner)
	}
	svc := newTestAuditService(t, nil, records...)

	res, err := svc.Query(context.Background(), models.Actor{ID: "admin", Role: models.RoleAdmin}, AuditFilter{}, 1)
	require.NoError(t, err)

	assert.True(t, res.HasAccess)
	assert.Equal(t, 45, res.Stats.Total)
	assert.Equal(t, 3, res.Pagination.PageCount)
	require.Len(t, res.Records, 20)
	for i, r := range res.Records {
		assert.Equal(t, fmt.Sprintf("r-%02d", i), r.ID)
	}
}

func TestAuditQuery_PeerScopedSeesOwnAndSubordinates(t *testing.T) {
	var records []models.AuditRecord
	for i := 0; i < 3; i++ {
		records = append(records, auditRecord(fmt.Sprintf("own-%d", i), testNow.Add(-time.Duration(i)*time.Hour), "u2", models.RoleSeniorAssociate))
	}
	for i := 0; i < 2; i++ {
		records = append(records, auditRecord(fmt.Sprintf("jr-%d", i), testNow.Add(-time.Duration(10+i)*time.Hour), "u7", models.RoleJuniorAssociate))
	}
	for i := 0; i < 5; i++ {
		r := auditRecord(fmt.Sprintf("other-%d", i), testNow.Add(-time.Duration(20+i)*time.Hour), "u9", models.RolePartner)
		r.Description = "Revisión de honorarios confidencial"
		records = append(records, r)
	}
	svc := newTestAuditService(t, nil, records...)
	actor := models.Actor{ID: "u2", Role: models.RoleSeniorAssociate}

	res, err := svc.Query(context.Background(), actor, AuditFilter{}, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Stats.Total)
	assert.ElementsMatch(t, []string{"own-0", "own-1", "own-2", "jr-0", "jr-1"}, recordIDs(res.Records))

	res, err = svc.Query(context.Background(), actor, mustAuditFilter(t, AuditFilterInput{Query: "confidencial"}), 1)
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Total)
	assert.Empty(t, res.Records)
	assert.True(t, res.HasAccess)
}

func TestAuditQuery_SeverityFilter(t *testing.T) {
	var records []models.AuditRecord
	add := func(sev models.Severity, n int) {
		for i := 0; i < n; i++ {
			r := auditRecord(fmt.Sprintf("%s-%d", sev, i), testNow.Add(-time.Duration(len(records))*time.Hour), "u1", models.RoleAdmin)
			r.Severity = sev
			records = append(records, r)
		}
	}
	add(models.SeverityCritical, 2)
	add(models.SeverityError, 1)
	add(models.SeverityInfo, 7)
	svc := newTestAuditService(t, nil, records...)

	res, err := svc.Query(context.Background(), models.Actor{ID: "admin", Role: models.RoleAdmin},
		mustAuditFilter(t, AuditFilterInput{Severity: "critical"}), 1)
	require.NoError(t, err)

	assert.Len(t, res.Records, 2)
	assert.Equal(t, 2, res.Stats.Total)
	assert.Equal(t, 2, res.Stats.BySeverity[models.SeverityCritical])
	assert.Equal(t, 0, res.Stats.BySeverity[models.SeverityInfo])
}

func TestAuditQuery_DateRangeEndOfDayInclusive(t *testing.T) {
	inside := auditRecord("inside", time.Date(2026, 2, 1, 23, 59, 0, 0, time.UTC), "u1", models.RoleAdmin)
	after := auditRecord("after", time.Date(2026, 2, 2, 0, 0, 1, 0, time.UTC), "u1", models.RoleAdmin)
	before := auditRecord("before", time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC), "u1", models.RoleAdmin)
	svc := newTestAuditService(t, nil, inside, after, before)

	res, err := svc.Query(context.Background(), models.Actor{ID: "admin", Role: models.RoleAdmin},
		mustAuditFilter(t, AuditFilterInput{StartDate: "2026-02-01", EndDate: "2026-02-01"}), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"inside"}, recordIDs(res.Records))
}

func TestAuditQuery_DateRangeUsesFilterLocation(t *testing.T) {
	tegucigalpa, err := time.LoadLocation("America/Tegucigalpa")
	require.NoError(t, err)

	// 2026-02-02 03:00 UTC is still Feb 1st in UTC-6
	late := auditRecord("late", time.Date(2026, 2, 2, 3, 0, 0, 0, time.UTC), "u1", models.RoleAdmin)

	f, err := ParseAuditFilter(AuditFilterInput{StartDate: "2026-02-01", EndDate: "2026-02-01"}, tegucigalpa)
	require.NoError(t, err)
	assert.Len(t, applyAuditFilter(f, late), 1)

	f, err = ParseAuditFilter(AuditFilterInput{StartDate: "2026-02-01", EndDate: "2026-02-01"}, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, applyAuditFilter(f, late))
}

// applyAuditFilter runs f's predicates the way a query does after scoping
func applyAuditFilter(f AuditFilter, records ...models.AuditRecord) []models.AuditRecord {
	var out []models.AuditRecord
next:
	for _, r := range records {
		for _, p := range f.Predicates() {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

func TestAuditQuery_NoAccessRoleIsNotAnEmptyResult(t *testing.T) {
	svc := newTestAuditService(t, nil, mixedAuditRecords(30)...)
	ctx := context.Background()

	res, err := svc.Query(ctx, models.Actor{ID: "u-assistant", Role: models.RoleAssistant}, AuditFilter{}, 1)
	require.NoError(t, err)
	assert.False(t, res.HasAccess)
	assert.False(t, res.Capabilities.HasAccess)
	assert.NotEmpty(t, res.AccessMessage)
	assert.Zero(t, res.Stats.Total)
	assert.Empty(t, res.Records)

	// A filter that matches nothing keeps has_access
	res, err = svc.Query(ctx, models.Actor{ID: "admin", Role: models.RoleAdmin}, mustAuditFilter(t, AuditFilterInput{Query: "zzz-no-match"}), 1)
	require.NoError(t, err)
	assert.True(t, res.HasAccess)
	assert.Empty(t, res.AccessMessage)
	assert.Zero(t, res.Stats.Total)
}

func TestAuditQuery_PageIsClamped(t *testing.T) {
	svc := newTestAuditService(t, nil, mixedAuditRecords(30)...)

	res, err := svc.Query(context.Background(), models.Actor{ID: "admin", Role: models.RoleAdmin}, AuditFilter{}, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Page)
	assert.Equal(t, 2, res.Pagination.PageCount)
	assert.Len(t, res.Records, 10)

	res, err = svc.Query(context.Background(), models.Actor{ID: "admin", Role: models.RoleAdmin}, AuditFilter{}, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page)
}

func TestAuditQuery_UnknownRoleFails(t *testing.T) {
	svc := newTestAuditService(t, nil, mixedAuditRecords(5)...)

	_, err := svc.Query(context.Background(), models.Actor{ID: "x", Role: "intern"}, AuditFilter{}, 1)
	require.Error(t, err)
	assert.True(t, IsUnknownRole(err))
}

func TestAuditQuery_StatsDescribeWholeFilteredSet(t *testing.T) {
	records := mixedAuditRecords(120)
	svc := newTestAuditService(t, nil, records...)
	filters := []AuditFilterInput{
		{},
		{Severity: "warning"},
		{Module: "expedientes"},
		{Query: "expediente", Action: "update"},
		{StartDate: "2026-01-20", EndDate: "2026-02-05"},
	}

	for _, role := range models.AllRoles() {
		actor := models.Actor{ID: "u-1", Role: role}
		for _, in := range filters {
			f := mustAuditFilter(t, in)
			res, err := svc.Query(context.Background(), actor, f, 1)
			require.NoError(t, err)

			assert.Equal(t, len(res.Visible), res.Stats.Total, "%s %+v", role, in)
			assert.Equal(t, res.Stats.Total, res.Pagination.Total)

			var bySeverity int
			for _, n := range res.Stats.BySeverity {
				bySeverity += n
			}
			assert.Equal(t, res.Stats.Total, bySeverity)

			var all []models.AuditRecord
			for page := 1; page <= res.Pagination.PageCount; page++ {
				p, err := svc.Query(context.Background(), actor, f, page)
				require.NoError(t, err)
				all = append(all, p.Records...)
			}
			assert.Equal(t, recordIDs(res.Visible), recordIDs(all))
		}
	}
}

func TestAuditQuery_FiltersNeverWidenScope(t *testing.T) {
	records := mixedAuditRecords(80)
	svc := newTestAuditService(t, nil, records...)
	reg := policy.NewAuditRegistry()

	inputs := []AuditFilterInput{
		{},
		{Query: "evento"},
		{Module: "sistema"},
		{Module: "usuarios", Severity: "critical"},
		{Action: "login"},
		{StartDate: "2025-01-01", EndDate: "2027-01-01"},
	}
	for _, role := range models.AllRoles() {
		actor := models.Actor{ID: "u-3", Role: role}
		pol, err := reg.Resolve(role)
		require.NoError(t, err)
		inScope := pol.Bind(actor)

		for _, in := range inputs {
			res, err := svc.Query(context.Background(), actor, mustAuditFilter(t, in), 1)
			require.NoError(t, err)
			for _, r := range res.Visible {
				assert.True(t, inScope(r), "%s got %s through %+v", role, r.ID, in)
			}
		}
	}
}

func TestAuditFilter_OrderInvariantAndIdempotent(t *testing.T) {
	records := mixedAuditRecords(100)
	f := mustAuditFilter(t, AuditFilterInput{
		Query:     "evento",
		Module:    "expedientes",
		Severity:  "warning",
		StartDate: "2026-01-01",
		EndDate:   "2026-02-10",
	})
	preds := f.Predicates()
	require.Len(t, preds, 4)

	apply := func(in []models.AuditRecord, order []int) []models.AuditRecord {
		out := in
		for _, i := range order {
			var next []models.AuditRecord
			for _, r := range out {
				if preds[i](r) {
					next = append(next, r)
				}
			}
			out = next
		}
		return out
	}

	forward := apply(records, []int{0, 1, 2, 3})
	require.NotEmpty(t, forward)
	assert.Equal(t, recordIDs(forward), recordIDs(apply(records, []int{3, 2, 1, 0})))
	assert.Equal(t, recordIDs(forward), recordIDs(apply(records, []int{2, 0, 3, 1})))
	assert.Equal(t, recordIDs(forward), recordIDs(apply(forward, []int{0, 1, 2, 3})))
}

func TestParseAuditFilter(t *testing.T) {
	tests := []struct {
		name    string
		in      AuditFilterInput
		field   string
		wantErr bool
	}{
		{name: "empty", in: AuditFilterInput{}},
		{name: "all sentinels", in: AuditFilterInput{Action: "all", Module: "all", Severity: "all"}},
		{name: "valid enums", in: AuditFilterInput{Action: "export", Module: "reportes", Severity: "warning"}},
		{name: "unknown action", in: AuditFilterInput{Action: "hack"}, field: "action", wantErr: true},
		{name: "unknown module", in: AuditFilterInput{Module: "cases"}, field: "module", wantErr: true},
		{name: "unknown severity", in: AuditFilterInput{Severity: "fatal"}, field: "severity", wantErr: true},
		{name: "bad start date", in: AuditFilterInput{StartDate: "01/02/2026"}, field: "start_date", wantErr: true},
		{name: "bad end date", in: AuditFilterInput{EndDate: "2026-13-01"}, field: "end_date", wantErr: true},
		{name: "inverted range", in: AuditFilterInput{StartDate: "2026-02-02", EndDate: "2026-02-01"}, field: "date_range", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAuditFilter(tt.in, time.UTC)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var invalid *InvalidFilterValueError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}

	f := mustAuditFilter(t, AuditFilterInput{Query: "  Contrato  ", Action: "all"})
	assert.Equal(t, "contrato", f.Query)
	assert.Nil(t, f.Action)
	assert.Empty(t, f.Predicates()[1:])
}

func TestComputeAuditStats_Today(t *testing.T) {
	tegucigalpa, err := time.LoadLocation("America/Tegucigalpa")
	require.NoError(t, err)
	now := time.Date(2026, 2, 10, 20, 0, 0, 0, tegucigalpa)

	records := []models.AuditRecord{
		auditRecord("a", time.Date(2026, 2, 10, 6, 30, 0, 0, time.UTC), "u1", models.RoleAdmin), // Feb 10 00:30 local
		auditRecord("b", time.Date(2026, 2, 10, 5, 30, 0, 0, time.UTC), "u1", models.RoleAdmin), // Feb 9 23:30 local
		auditRecord("c", time.Date(2026, 2, 11, 1, 0, 0, 0, time.UTC), "u1", models.RoleAdmin),  // Feb 10 19:00 local
	}
	stats := ComputeAuditStats(records, now, tegucigalpa)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Today)
	assert.Equal(t, 2, stats.ByDay["2026-02-10"])
	assert.Equal(t, 1, stats.ByDay["2026-02-09"])
	assert.Equal(t, 3, stats.ByModule[models.ModuleClients])
	assert.Len(t, stats.BySeverity, len(models.AllSeverities()))
}

func TestAuditAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id, timestamp and severity", func(t *testing.T) {
		svc := newTestAuditService(t, nil)
		rec, err := svc.Append(ctx, AuditRecordInput{
			ActorID:     "u1",
			ActorName:   "Ana",
			ActorRole:   "partner",
			Action:      "approve",
			Module:      "gastos",
			Description: "Aprobó gasto exp-0001",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, testNow, rec.Timestamp)
		assert.Equal(t, models.SeverityInfo, rec.Severity)
		assert.Equal(t, 1, svc.Len())
	})

	t.Run("rejects values outside enumerations", func(t *testing.T) {
		svc := newTestAuditService(t, nil)
		_, err := svc.Append(ctx, AuditRecordInput{
			ActorID: "u1", ActorRole: "partner", Action: "hack", Module: "gastos", Description: "x",
		})
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.ErrorIs(t, err, models.ErrInvalidEnum)
		assert.Zero(t, svc.Len())
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		existing := auditRecord("dup", testNow, "u1", models.RoleAdmin)
		svc := newTestAuditService(t, nil, existing)
		_, err := svc.Append(ctx, AuditRecordInput{
			ID: "dup", ActorID: "u1", ActorRole: "admin", Action: "view", Module: "dashboard", Description: "x",
		})
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}

// Mock AuditRepository
type mockAuditRepository struct {
	repository.AuditRepository
	created  []models.AuditRecord
	listed   []models.AuditRecord
	createFn func(r *models.AuditRecord) error
	listErr  error
}

func (m *mockAuditRepository) Create(ctx context.Context, r *models.AuditRecord) error {
	if m.createFn != nil {
		if err := m.createFn(r); err != nil {
			return err
		}
	}
	m.created = append(m.created, *r)
	return nil
}

func (m *mockAuditRepository) List(ctx context.Context) ([]models.AuditRecord, error) {
	return m.listed, m.listErr
}

func TestAuditAppend_PersistsBeforePublishing(t *testing.T) {
	ctx := context.Background()
	in := AuditRecordInput{ActorID: "u1", ActorRole: "admin", Action: "view", Module: "dashboard", Description: "Abrió el panel"}

	repo := &mockAuditRepository{}
	svc := newTestAuditService(t, repo)
	_, err := svc.Append(ctx, in)
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)
	assert.Equal(t, 1, svc.Len())

	failing := &mockAuditRepository{createFn: func(*models.AuditRecord) error { return errors.New("connection reset") }}
	svc = newTestAuditService(t, failing)
	_, err = svc.Append(ctx, in)
	require.Error(t, err)
	assert.Zero(t, svc.Len())

	conflicting := &mockAuditRepository{createFn: func(r *models.AuditRecord) error {
		return fmt.Errorf("%w: %s", repository.ErrDuplicateKey, r.ID)
	}}
	svc = newTestAuditService(t, conflicting)
	_, err = svc.Append(ctx, in)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAuditAppend_RefreshBetweenCreateAndPublish(t *testing.T) {
	ctx := context.Background()
	repo := &mockAuditRepository{}
	svc := newTestAuditService(t, repo)
	repo.createFn = func(r *models.AuditRecord) error {
		repo.listed = append(repo.listed, *r)
		return svc.Refresh(ctx)
	}

	rec, err := svc.Append(ctx, AuditRecordInput{
		ID: "evt-1", ActorID: "u1", ActorRole: "admin", Action: "view", Module: "dashboard", Description: "Abrió el panel",
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "evt-1", rec.ID)
	assert.Equal(t, 1, svc.Len())

	_, err = svc.Append(ctx, AuditRecordInput{
		ID: "evt-1", ActorID: "u1", ActorRole: "admin", Action: "view", Module: "dashboard", Description: "Abrió el panel",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Len(t, repo.created, 1)
}

func TestAuditRefresh_MergesNewRows(t *testing.T) {
	seeded := auditRecord("a", testNow.Add(-time.Hour), "u1", models.RoleAdmin)
	repo := &mockAuditRepository{listed: []models.AuditRecord{
		seeded,
		auditRecord("b", testNow, "u2", models.RolePartner),
	}}
	svc := newTestAuditService(t, repo, seeded)

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 2, svc.Len())

	res, err := svc.Query(context.Background(), models.Actor{ID: "admin", Role: models.RoleAdmin}, AuditFilter{}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, recordIDs(res.Records))

	repo.listErr = errors.New("timeout")
	assert.Error(t, svc.Refresh(context.Background()))

	memOnly := newTestAuditService(t, nil)
	assert.NoError(t, memOnly.Refresh(context.Background()))
}

func TestAuditSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuditService(t, nil, mixedAuditRecords(60)...)
	session := svc.NewSession(models.Actor{ID: "admin", Role: models.RoleAdmin})
	assert.Equal(t, "idle", session.State())

	require.NoError(t, session.GoToPage(ctx, 3))
	res, err := session.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pagination.Page)
	assert.Equal(t, "paginated", session.State())

	require.NoError(t, session.ApplyFilter(ctx, AuditFilterInput{Severity: "critical"}))
	assert.Equal(t, "filtering", session.State())
	res, err = session.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page)
	assert.Equal(t, 15, res.Stats.Total)
	assert.Equal(t, "paginated", session.State())

	err = session.ApplyFilter(ctx, AuditFilterInput{Severity: "fatal"})
	assert.True(t, IsInvalidFilter(err))
	res, err = session.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Stats.Total)

	require.NoError(t, session.GoToPage(ctx, 40))
	res, err = session.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page)

	require.NoError(t, session.Reset(ctx))
	assert.Equal(t, "idle", session.State())
	res, err = session.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, res.Stats.Total)
	assert.Equal(t, "idle", session.State())
}
