package policy

import "github.com/sjperalta/bufete-api/internal/models"

// Domain names for the expense and time-tracking registries
const (
	DomainExpenses    = "expenses"
	DomainTimeEntries = "time_entries"
)

func expenseLawyer(e models.Expense) string          { return e.LawyerID }
func expenseLawyerRole(e models.Expense) models.Role { return e.LawyerRole }
func timeLawyer(t models.TimeEntry) string           { return t.LawyerID }
func timeLawyerRole(t models.TimeEntry) models.Role  { return t.LawyerRole }
func timeBillable(t models.TimeEntry) bool           { return t.Billable }

// ExpensePolicies is the role table for case expenses
func ExpensePolicies() []RolePolicy[models.Expense] {
	ownAndJuniors := AnyOf(
		OwnedBy(expenseLawyer),
		AuthoredByRole(expenseLawyerRole, models.RoleJuniorAssociate),
	)
	return []RolePolicy[models.Expense]{
		{
			Role:         models.RoleAdmin,
			Scope:        Everything[models.Expense],
			Capabilities: Capabilities{HasAccess: true, CanViewAll: true, CanViewOwn: true, CanExport: true, CanViewAdmin: true, CanApprove: true},
			Copy:         Copy{Title: "Gastos", Description: "Todos los gastos registrados en el despacho."},
		},
		{
			Role:         models.RolePartner,
			Scope:        Everything[models.Expense],
			Capabilities: Capabilities{HasAccess: true, CanViewAll: true, CanViewOwn: true, CanExport: true, CanApprove: true},
			Copy:         Copy{Title: "Gastos del despacho", Description: "Gastos de todos los abogados, pendientes de aprobación incluidos."},
		},
		{
			Role:         models.RoleSeniorAssociate,
			Scope:        ownAndJuniors,
			Capabilities: Capabilities{HasAccess: true, CanViewOwn: true},
			Copy:         Copy{Title: "Gastos de mi equipo", Description: "Tus gastos y los de los asociados junior."},
		},
		{
			Role:         models.RoleJuniorAssociate,
			Scope:        OwnedBy(expenseLawyer),
			Capabilities: Capabilities{HasAccess: true, CanViewOwn: true},
			Copy:         Copy{Title: "Mis gastos", Description: "Los gastos que has registrado."},
		},
		{
			Role:         models.RoleAccountant,
			Scope:        Everything[models.Expense],
			Capabilities: Capabilities{HasAccess: true, CanViewAll: true, CanExport: true, CanApprove: true},
			Copy:         Copy{Title: "Gastos por reembolsar", Description: "Todos los gastos para control y reembolso."},
		},
		{
			Role:  models.RoleAssistant,
			Scope: Nothing[models.Expense],
			Copy:  Copy{Title: "Gastos", NoAccess: "Tu rol no tiene acceso a los gastos del despacho."},
		},
		{
			Role:  models.RoleSystem,
			Scope: Nothing[models.Expense],
			Copy:  Copy{Title: "Gastos", NoAccess: "El actor interno del sistema no consulta gastos."},
		},
	}
}

// TimeEntryPolicies is the role table for time tracking
func TimeEntryPolicies() []RolePolicy[models.TimeEntry] {
	return []RolePolicy[models.TimeEntry]{
		{
			Role:         models.RoleAdmin,
			Scope:        Everything[models.TimeEntry],
			Capabilities: Capabilities{HasAccess: true, CanViewAll: true, CanViewOwn: true, CanExport: true, CanViewAdmin: true, CanApprove: true},
			Copy:         Copy{Title: "Control de tiempos", Description: "Horas registradas por todo el despacho."},
		},
		{
			Role:         models.RolePartner,
			Scope:        Everything[models.TimeEntry],
			Capabilities: Capabilities{HasAccess: true, CanViewAll: true, CanViewOwn: true, CanExport: true, CanApprove: true},
			Copy:         Copy{Title: "Horas del despacho", Description: "Horas facturables y no facturables de todo el equipo."},
		},
		{
			Role: models.RoleSeniorAssociate,
			Scope: AnyOf(
				OwnedBy(timeLawyer),
				AuthoredByRole(timeLawyerRole, models.RoleJuniorAssociate),
			),
			Capabilities: Capabilities{HasAccess: true, CanViewOwn: true},
			Copy:         Copy{Title: "Horas de mi equipo", Description: "Tus horas y las de los asociados junior."},
		},
		{
			Role:         models.RoleJuniorAssociate,
			Scope:        OwnedBy(timeLawyer),
			Capabilities: Capabilities{HasAccess: true, CanViewOwn: true},
			Copy:         Copy{Title: "Mis horas", Description: "Las horas que has registrado."},
		},
		{
			Role:         models.RoleAccountant,
			Scope:        FieldIn(timeBillable, true),
			Capabilities: Capabilities{HasAccess: true, CanViewAll: true, CanExport: true},
			Copy:         Copy{Title: "Horas facturables", Description: "Horas facturables pendientes de incluir en facturas."},
		},
		{
			Role:  models.RoleAssistant,
			Scope: Nothing[models.TimeEntry],
			Copy:  Copy{Title: "Control de tiempos", NoAccess: "Tu rol no tiene acceso al control de tiempos."},
		},
		{
			Role:  models.RoleSystem,
			Scope: Nothing[models.TimeEntry],
			Copy:  Copy{Title: "Control de tiempos", NoAccess: "El actor interno del sistema no consulta horas."},
		},
	}
}

// NewExpenseRegistry builds the validated expense registry
func NewExpenseRegistry() *Registry[models.Expense] {
	return MustRegistry(DomainExpenses, ExpensePolicies())
}

// NewTimeEntryRegistry builds the validated time-tracking registry
func NewTimeEntryRegistry() *Registry[models.TimeEntry] {
	return MustRegistry(DomainTimeEntries, TimeEntryPolicies())
}
