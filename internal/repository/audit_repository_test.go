package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var auditCols = []string{
	"id", "timestamp", "actor_id", "actor_name", "actor_role", "action", "module",
	"severity", "description", "entity_type", "entity_name", "old_value", "new_value",
	"ip_address", "details",
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

func sampleAudit() *models.AuditRecord {
	return &models.AuditRecord{
		ID:          "aud-1",
		Timestamp:   time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		ActorID:     "u-1",
		ActorName:   "Lucía Ferrer",
		ActorRole:   models.RolePartner,
		Action:      models.ActionUpdate,
		Module:      models.ModuleCases,
		Severity:    models.SeverityInfo,
		Description: "Actualizó el expediente",
	}
}

func TestAuditRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "audit_records"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), sampleAudit()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_Create_DuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "audit_records"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "audit_records_pkey"})

	err := repo.Create(context.Background(), sampleAudit())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestAuditRepository_Create_OtherError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "audit_records"`)).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), sampleAudit())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDuplicateKey))
}

func TestAuditRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditRepository(db)

	ts := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(auditCols).
		AddRow("aud-2", ts.Add(time.Hour), "u-2", "Marcos Gil", "junior_associate", "create", "tiempos",
			"info", "Registró horas", "", "", "", "", "", "").
		AddRow("aud-1", ts, "u-1", "Lucía Ferrer", "partner", "update", "expedientes",
			"warning", "Actualizó el expediente", "expediente", "Exp. 12/2024", "", "", "10.0.0.1", "")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_records" ORDER BY timestamp DESC, id ASC`)).
		WillReturnRows(rows)

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "aud-2", records[0].ID)
	assert.Equal(t, models.RoleJuniorAssociate, records[0].ActorRole)
	assert.Equal(t, models.SeverityWarning, records[1].Severity)
	assert.Equal(t, "Exp. 12/2024", records[1].EntityName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpenseRepository_CreateAndList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpenseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "expenses"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "expenses" ORDER BY date DESC, id ASC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "lawyer_id", "lawyer_name", "lawyer_role", "category", "status", "amount"}).
			AddRow("exp-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "u-1", "Lucía Ferrer", "partner", "viajes", "pendiente", 120.5))

	err := repo.Create(context.Background(), &models.Expense{
		ID:         "exp-1",
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		LawyerID:   "u-1",
		LawyerName: "Lucía Ferrer",
		LawyerRole: models.RolePartner,
		Category:   models.ExpenseCategoryTravel,
		Status:     models.ExpenseStatusPending,
		Amount:     120.5,
	})
	require.NoError(t, err)

	expenses, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, 120.5, expenses[0].Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeEntryRepository_Create_DuplicateKey(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTimeEntryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "time_entries"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "time_entries_pkey"})

	err := repo.Create(context.Background(), &models.TimeEntry{ID: "te-1", Hours: 1})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}
