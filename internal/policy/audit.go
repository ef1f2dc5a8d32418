package policy

import "github.com/sjperalta/bufete-api/internal/models"

// DomainAudit names the activity log registry
const DomainAudit = "audit"

// Modules a partner supervises. Platform plumbing (users, configuration, system)
// stays with the administrator.
var partnerAuditModules = []models.Module{
	models.ModuleDashboard,
	models.ModuleCases,
	models.ModuleClients,
	models.ModuleBilling,
	models.ModuleExpenses,
	models.ModuleTimeTracking,
	models.ModuleReports,
	models.ModuleMessages,
	models.ModuleLibrary,
}

var accountantAuditModules = []models.Module{
	models.ModuleBilling,
	models.ModuleExpenses,
	models.ModuleReports,
}

func auditActorID(r models.AuditRecord) string        { return r.ActorID }
func auditActorRole(r models.AuditRecord) models.Role { return r.ActorRole }
func auditModule(r models.AuditRecord) models.Module  { return r.Module }

var auditCaseActivity ScopeFunc[models.AuditRecord] = func(r models.AuditRecord, _ models.Actor) bool {
	return r.IsCaseActivity()
}

const noAuditAccess = "Tu rol no tiene acceso al registro de actividad. Solicita permisos al administrador del despacho."

// AuditPolicies is the role table for the activity log
func AuditPolicies() []RolePolicy[models.AuditRecord] {
	return []RolePolicy[models.AuditRecord]{
		{
			Role:  models.RoleAdmin,
			Scope: Everything[models.AuditRecord],
			Capabilities: Capabilities{
				HasAccess: true, CanViewAll: true, CanViewOwn: true, CanExport: true, CanViewAdmin: true, CanApprove: true,
			},
			Copy: Copy{
				Title:       "Registro de actividad",
				Description: "Toda la actividad del despacho, incluidos los eventos del sistema.",
			},
		},
		{
			Role: models.RolePartner,
			Scope: AllOf(
				FieldIn(auditModule, partnerAuditModules...),
				Not(AuthoredByRole(auditActorRole, models.RoleSystem)),
			),
			Capabilities: Capabilities{HasAccess: true, CanViewAll: true, CanViewOwn: true, CanExport: true},
			Copy: Copy{
				Title:       "Actividad del despacho",
				Description: "Actividad de expedientes, clientes, facturación y equipo. Los eventos internos del sistema no se muestran.",
			},
		},
		{
			Role: models.RoleSeniorAssociate,
			Scope: AnyOf(
				OwnedBy(auditActorID),
				AuthoredByRole(auditActorRole, models.RoleJuniorAssociate),
				auditCaseActivity,
			),
			Capabilities: Capabilities{HasAccess: true, CanViewOwn: true},
			Copy: Copy{
				Title:       "Actividad de mi equipo",
				Description: "Tu actividad, la de los asociados junior y todos los movimientos de expedientes.",
			},
		},
		{
			Role:         models.RoleJuniorAssociate,
			Scope:        OwnedBy(auditActorID),
			Capabilities: Capabilities{HasAccess: true, CanViewOwn: true},
			Copy: Copy{
				Title:       "Mi actividad",
				Description: "Las acciones que has realizado en la plataforma.",
			},
		},
		{
			Role:         models.RoleAccountant,
			Scope:        FieldIn(auditModule, accountantAuditModules...),
			Capabilities: Capabilities{HasAccess: true, CanViewAll: true, CanExport: true},
			Copy: Copy{
				Title:       "Actividad financiera",
				Description: "Movimientos de facturación, gastos y reportes.",
			},
		},
		{
			Role:  models.RoleAssistant,
			Scope: Nothing[models.AuditRecord],
			Copy: Copy{
				Title:    "Registro de actividad",
				NoAccess: noAuditAccess,
			},
		},
		{
			Role:  models.RoleSystem,
			Scope: Nothing[models.AuditRecord],
			Copy: Copy{
				Title:    "Registro de actividad",
				NoAccess: "El actor interno del sistema no consulta el registro de actividad.",
			},
		},
	}
}

// NewAuditRegistry builds the validated activity log registry
func NewAuditRegistry() *Registry[models.AuditRecord] {
	return MustRegistry(DomainAudit, AuditPolicies())
}
