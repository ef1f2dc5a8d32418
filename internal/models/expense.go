package models

import (
	"fmt"
	"strings"
	"time"
)

// ExpenseCategory classifies what an expense was incurred for
type ExpenseCategory string

// Expense category constants
const (
	ExpenseCategoryTravel    ExpenseCategory = "viajes"
	ExpenseCategoryCourtFees ExpenseCategory = "tasas_judiciales"
	ExpenseCategoryExperts   ExpenseCategory = "peritajes"
	ExpenseCategoryCourier   ExpenseCategory = "mensajeria"
	ExpenseCategoryCopies    ExpenseCategory = "copias"
	ExpenseCategoryOther     ExpenseCategory = "otros"
)

// AllExpenseCategories returns the closed set of categories
func AllExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		ExpenseCategoryTravel, ExpenseCategoryCourtFees, ExpenseCategoryExperts,
		ExpenseCategoryCourier, ExpenseCategoryCopies, ExpenseCategoryOther,
	}
}

// Valid reports whether c is part of the closed set
func (c ExpenseCategory) Valid() bool { return isOneOf(c, AllExpenseCategories()) }

// ExpenseStatus is where an expense sits in the reimbursement flow
type ExpenseStatus string

// Expense status constants
const (
	ExpenseStatusPending    ExpenseStatus = "pendiente"
	ExpenseStatusApproved   ExpenseStatus = "aprobado"
	ExpenseStatusRejected   ExpenseStatus = "rechazado"
	ExpenseStatusReimbursed ExpenseStatus = "reembolsado"
)

// AllExpenseStatuses returns the closed set of statuses
func AllExpenseStatuses() []ExpenseStatus {
	return []ExpenseStatus{
		ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected, ExpenseStatusReimbursed,
	}
}

// Valid reports whether s is part of the closed set
func (s ExpenseStatus) Valid() bool { return isOneOf(s, AllExpenseStatuses()) }

// Expense is a cost a lawyer incurred on behalf of a case
type Expense struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Date        time.Time       `gorm:"not null;index" json:"date" yaml:"date"`
	LawyerID    string          `gorm:"size:64;not null;index" json:"lawyer_id" yaml:"lawyer_id"`
	LawyerName  string          `gorm:"size:255;not null" json:"lawyer_name" yaml:"lawyer_name"`
	LawyerRole  Role            `gorm:"size:32;not null" json:"lawyer_role" yaml:"lawyer_role"`
	CaseRef     string          `gorm:"size:64;index" json:"case_ref,omitempty" yaml:"case_ref,omitempty"`
	Category    ExpenseCategory `gorm:"size:32;not null;index" json:"category" yaml:"category"`
	Status      ExpenseStatus   `gorm:"size:16;not null;index" json:"status" yaml:"status"`
	Amount      float64         `gorm:"type:decimal(12,2);not null" json:"amount" yaml:"amount"`
	Description string          `gorm:"type:text" json:"description" yaml:"description"`
}

// TableName specifies the table name for Expense
func (Expense) TableName() string {
	return "expenses"
}

// RecordID implements Timestamped
func (e Expense) RecordID() string { return e.ID }

// OccurredAt implements Timestamped
func (e Expense) OccurredAt() time.Time { return e.Date }

// Validate checks the expense against its invariants
func (e Expense) Validate() error {
	switch {
	case strings.TrimSpace(e.ID) == "":
		return fmt.Errorf("%w: id vacío", ErrInvalidRecord)
	case e.Date.IsZero():
		return fmt.Errorf("%w: fecha vacía", ErrInvalidRecord)
	case strings.TrimSpace(e.LawyerID) == "":
		return fmt.Errorf("%w: lawyer_id vacío", ErrInvalidRecord)
	case e.Amount < 0:
		return fmt.Errorf("%w: monto negativo", ErrInvalidRecord)
	}
	if !e.LawyerRole.Valid() {
		return fmt.Errorf("%w: lawyer_role %q", ErrInvalidEnum, e.LawyerRole)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: category %q", ErrInvalidEnum, e.Category)
	}
	if !e.Status.Valid() {
		return fmt.Errorf("%w: status %q", ErrInvalidEnum, e.Status)
	}
	return nil
}
