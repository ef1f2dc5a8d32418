package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicateKey is returned when a record id is already stored
var ErrDuplicateKey = errors.New("duplicate key")

// Repositories holds all repository instances
type Repositories struct {
	Audit     AuditRepository
	Expense   ExpenseRepository
	TimeEntry TimeEntryRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Audit:     NewAuditRepository(db),
		Expense:   NewExpenseRepository(db),
		TimeEntry: NewTimeEntryRepository(db),
	}
}

// isDuplicateKeyError matches a Postgres unique violation on constraintName.
// An empty constraintName matches any unique violation.
func isDuplicateKeyError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraintName == "" || pgErr.ConstraintName == constraintName)
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
