package services

import (
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/policy"
)

// DomainPolicy is what a role may do in one listing
type DomainPolicy struct {
	Capabilities policy.Capabilities `json:"capabilities"`
	Copy         policy.Copy         `json:"copy"`
}

// RolePolicies gathers a role's policies across every listing
type RolePolicies struct {
	Role    models.Role             `json:"role"`
	Domains map[string]DomainPolicy `json:"domains"`
}

// RoleService exposes the role tables to the UI shell
type RoleService struct {
	audit     *policy.Registry[models.AuditRecord]
	expense   *policy.Registry[models.Expense]
	timeEntry *policy.Registry[models.TimeEntry]
}

func NewRoleService(
	audit *policy.Registry[models.AuditRecord],
	expense *policy.Registry[models.Expense],
	timeEntry *policy.Registry[models.TimeEntry],
) *RoleService {
	return &RoleService{audit: audit, expense: expense, timeEntry: timeEntry}
}

// ListRoles returns the closed role set
func (s *RoleService) ListRoles() []models.Role {
	return models.AllRoles()
}

// GetPolicy returns role's capabilities and copy in every domain
func (s *RoleService) GetPolicy(role models.Role) (RolePolicies, error) {
	out := RolePolicies{Role: role, Domains: make(map[string]DomainPolicy, 3)}
	if err := describe(out.Domains, s.audit, role); err != nil {
		return RolePolicies{}, err
	}
	if err := describe(out.Domains, s.expense, role); err != nil {
		return RolePolicies{}, err
	}
	if err := describe(out.Domains, s.timeEntry, role); err != nil {
		return RolePolicies{}, err
	}
	return out, nil
}

// ListPolicies returns every role's policies in role order
func (s *RoleService) ListPolicies() ([]RolePolicies, error) {
	roles := s.ListRoles()
	out := make([]RolePolicies, 0, len(roles))
	for _, r := range roles {
		p, err := s.GetPolicy(r)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func describe[T any](into map[string]DomainPolicy, reg *policy.Registry[T], role models.Role) error {
	pol, err := reg.Resolve(role)
	if err != nil {
		return err
	}
	into[reg.Domain()] = DomainPolicy{Capabilities: pol.Capabilities, Copy: pol.Copy}
	return nil
}
