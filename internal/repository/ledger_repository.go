package repository

import (
	"context"
	"fmt"

	"github.com/sjperalta/bufete-api/internal/models"

	"gorm.io/gorm"
)

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	List(ctx context.Context) ([]models.Expense, error)
}

// TimeEntryRepository defines the interface for time entry data access
type TimeEntryRepository interface {
	Create(ctx context.Context, entry *models.TimeEntry) error
	List(ctx context.Context) ([]models.TimeEntry, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		if isDuplicateKeyError(err, "expenses_pkey") {
			return fmt.Errorf("%w: expense %s", ErrDuplicateKey, expense.ID)
		}
		return err
	}
	return nil
}

func (r *expenseRepository) List(ctx context.Context) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Order("date DESC, id ASC").
		Find(&expenses).Error
	return expenses, err
}

type timeEntryRepository struct {
	db *gorm.DB
}

// NewTimeEntryRepository creates a new time entry repository
func NewTimeEntryRepository(db *gorm.DB) TimeEntryRepository {
	return &timeEntryRepository{db: db}
}

func (r *timeEntryRepository) Create(ctx context.Context, entry *models.TimeEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isDuplicateKeyError(err, "time_entries_pkey") {
			return fmt.Errorf("%w: time entry %s", ErrDuplicateKey, entry.ID)
		}
		return err
	}
	return nil
}

func (r *timeEntryRepository) List(ctx context.Context) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	err := r.db.WithContext(ctx).
		Order("date DESC, id ASC").
		Find(&entries).Error
	return entries, err
}
