package models

import (
	"fmt"
	"strings"
	"time"
)

// Action is what an actor did
type Action string

// Action constants
const (
	ActionLogin    Action = "login"
	ActionLogout   Action = "logout"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionView     Action = "view"
	ActionExport   Action = "export"
	ActionDownload Action = "download"
	ActionUpload   Action = "upload"
	ActionImport   Action = "import"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
)

// AllActions returns the closed set of actions
func AllActions() []Action {
	return []Action{
		ActionLogin, ActionLogout, ActionCreate, ActionUpdate, ActionDelete, ActionView,
		ActionExport, ActionDownload, ActionUpload, ActionImport, ActionApprove, ActionReject,
	}
}

// Valid reports whether a is part of the closed set
func (a Action) Valid() bool { return isOneOf(a, AllActions()) }

// Module is the functional area of the application a record touches
type Module string

// Module constants
const (
	ModuleDashboard     Module = "dashboard"
	ModuleCases         Module = "expedientes"
	ModuleClients       Module = "clientes"
	ModuleBilling       Module = "facturacion"
	ModuleExpenses      Module = "gastos"
	ModuleTimeTracking  Module = "tiempos"
	ModuleReports       Module = "reportes"
	ModuleMessages      Module = "mensajes"
	ModuleLibrary       Module = "biblioteca"
	ModuleUsers         Module = "usuarios"
	ModuleConfiguration Module = "configuracion"
	ModuleSystem        Module = "sistema"
)

// AllModules returns the closed set of modules
func AllModules() []Module {
	return []Module{
		ModuleDashboard, ModuleCases, ModuleClients, ModuleBilling, ModuleExpenses, ModuleTimeTracking,
		ModuleReports, ModuleMessages, ModuleLibrary, ModuleUsers, ModuleConfiguration, ModuleSystem,
	}
}

// Valid reports whether m is part of the closed set
func (m Module) Valid() bool { return isOneOf(m, AllModules()) }

// Severity is ordered by ascending operational urgency
type Severity string

// Severity constants
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// AllSeverities returns the severities from least to most urgent
func AllSeverities() []Severity {
	return []Severity{SeverityInfo, SeverityWarning, SeverityError, SeverityCritical}
}

// Valid reports whether s is part of the closed set
func (s Severity) Valid() bool { return isOneOf(s, AllSeverities()) }

// Rank returns the position of s in the urgency order, -1 when unknown
func (s Severity) Rank() int {
	for i, known := range AllSeverities() {
		if s == known {
			return i
		}
	}
	return -1
}

// EntityCase is the entity type used for case files
const EntityCase = "expediente"

// AuditRecord is one immutable fact about something that happened in the system
type AuditRecord struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id" yaml:"id"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp" yaml:"timestamp"`
	ActorID     string    `gorm:"size:64;not null;index" json:"actor_id" yaml:"actor_id"`
	ActorName   string    `gorm:"size:255;not null" json:"actor_name" yaml:"actor_name"`
	ActorRole   Role      `gorm:"size:32;not null;index" json:"actor_role" yaml:"actor_role"`
	Action      Action    `gorm:"size:32;not null;index" json:"action" yaml:"action"`
	Module      Module    `gorm:"size:32;not null;index" json:"module" yaml:"module"`
	Severity    Severity  `gorm:"size:16;not null" json:"severity" yaml:"severity"`
	Description string    `gorm:"type:text;not null" json:"description" yaml:"description"`
	EntityType  string    `gorm:"size:64" json:"entity_type,omitempty" yaml:"entity_type,omitempty"`
	EntityName  string    `gorm:"size:255" json:"entity_name,omitempty" yaml:"entity_name,omitempty"`
	OldValue    string    `gorm:"type:text" json:"old_value,omitempty" yaml:"old_value,omitempty"`
	NewValue    string    `gorm:"type:text" json:"new_value,omitempty" yaml:"new_value,omitempty"`
	IPAddress   string    `gorm:"size:45" json:"ip_address,omitempty" yaml:"ip_address,omitempty"`
	Details     string    `gorm:"type:text" json:"details,omitempty" yaml:"details,omitempty"`
}

// TableName specifies the table name for AuditRecord
func (AuditRecord) TableName() string {
	return "audit_records"
}

// RecordID implements Timestamped
func (r AuditRecord) RecordID() string { return r.ID }

// OccurredAt implements Timestamped
func (r AuditRecord) OccurredAt() time.Time { return r.Timestamp }

// IsCaseActivity returns true for actions taken on a case file inside the cases module
func (r AuditRecord) IsCaseActivity() bool {
	return r.EntityType == EntityCase && r.Module == ModuleCases
}

// Validate checks the record against its invariants
func (r AuditRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: id vacío", ErrInvalidRecord)
	case r.Timestamp.IsZero():
		return fmt.Errorf("%w: timestamp vacío", ErrInvalidRecord)
	case strings.TrimSpace(r.ActorID) == "":
		return fmt.Errorf("%w: actor_id vacío", ErrInvalidRecord)
	case strings.TrimSpace(r.Description) == "":
		return fmt.Errorf("%w: descripción vacía", ErrInvalidRecord)
	}
	if !r.ActorRole.Valid() {
		return fmt.Errorf("%w: actor_role %q", ErrInvalidEnum, r.ActorRole)
	}
	if !r.Action.Valid() {
		return fmt.Errorf("%w: action %q", ErrInvalidEnum, r.Action)
	}
	if !r.Module.Valid() {
		return fmt.Errorf("%w: module %q", ErrInvalidEnum, r.Module)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w: severity %q", ErrInvalidEnum, r.Severity)
	}
	return nil
}
