package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeEntry is a block of hours a lawyer logged against a case
type TimeEntry struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Date       time.Time `gorm:"not null;index" json:"date" yaml:"date"`
	LawyerID   string    `gorm:"size:64;not null;index" json:"lawyer_id" yaml:"lawyer_id"`
	LawyerName string    `gorm:"size:255;not null" json:"lawyer_name" yaml:"lawyer_name"`
	LawyerRole Role      `gorm:"size:32;not null" json:"lawyer_role" yaml:"lawyer_role"`
	CaseRef    string    `gorm:"size:64;index" json:"case_ref,omitempty" yaml:"case_ref,omitempty"`
	CaseName   string    `gorm:"size:255" json:"case_name,omitempty" yaml:"case_name,omitempty"`
	Activity   string    `gorm:"type:text;not null" json:"activity" yaml:"activity"`
	Hours      float64   `gorm:"type:decimal(6,2);not null" json:"hours" yaml:"hours"`
	Billable   bool      `gorm:"not null;default:true" json:"billable" yaml:"billable"`
}

// TableName specifies the table name for TimeEntry
func (TimeEntry) TableName() string {
	return "time_entries"
}

// RecordID implements Timestamped
func (t TimeEntry) RecordID() string { return t.ID }

// OccurredAt implements Timestamped
func (t TimeEntry) OccurredAt() time.Time { return t.Date }

// Validate checks the entry against its invariants
func (t TimeEntry) Validate() error {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return fmt.Errorf("%w: id vacío", ErrInvalidRecord)
	case t.Date.IsZero():
		return fmt.Errorf("%w: fecha vacía", ErrInvalidRecord)
	case strings.TrimSpace(t.LawyerID) == "":
		return fmt.Errorf("%w: lawyer_id vacío", ErrInvalidRecord)
	case t.Hours <= 0 || t.Hours > 24:
		return fmt.Errorf("%w: horas fuera de rango", ErrInvalidRecord)
	}
	if !t.LawyerRole.Valid() {
		return fmt.Errorf("%w: lawyer_role %q", ErrInvalidEnum, t.LawyerRole)
	}
	return nil
}
