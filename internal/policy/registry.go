// Package policy maps every role to what it may see and do.
//
// Each domain (audit log, expenses, time entries) declares one table of RolePolicy
// entries. The table is validated once at startup: every role in models.AllRoles
// must appear exactly once with a non-nil scope. A role without access still has
// an entry whose scope is Nothing.
package policy

import (
	"fmt"

	"github.com/sjperalta/bufete-api/internal/models"
)

// ScopeFunc decides whether record is visible to actor
type ScopeFunc[T any] func(record T, actor models.Actor) bool

// Capabilities gate UI affordances. They never decide data visibility.
type Capabilities struct {
	HasAccess    bool `json:"has_access"`
	CanViewAll   bool `json:"can_view_all"`
	CanViewOwn   bool `json:"can_view_own"`
	CanExport    bool `json:"can_export"`
	CanViewAdmin bool `json:"can_view_admin"`
	CanApprove   bool `json:"can_approve"`
}

// Copy holds the per-role texts the UI shell renders around a listing
type Copy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	NoAccess    string `json:"no_access,omitempty"`
}

// RolePolicy is one row of a domain policy table
type RolePolicy[T any] struct {
	Role         models.Role
	Scope        ScopeFunc[T]
	Capabilities Capabilities
	Copy         Copy
}

// Bind fixes the actor so the scope can be used as a plain record predicate
func (p RolePolicy[T]) Bind(actor models.Actor) func(T) bool {
	scope := p.Scope
	return func(record T) bool { return scope(record, actor) }
}

// UnknownRoleError is returned when a role has no entry in a registry.
// It is never mapped to a default policy.
type UnknownRoleError struct {
	Domain string
	Role   models.Role
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("rol desconocido %q para %s", e.Role, e.Domain)
}

// Registry is a validated, read-only policy table for one domain
type Registry[T any] struct {
	domain   string
	policies map[models.Role]RolePolicy[T]
}

// NewRegistry validates entries and builds a registry
func NewRegistry[T any](domain string, entries []RolePolicy[T]) (*Registry[T], error) {
	policies := make(map[models.Role]RolePolicy[T], len(entries))
	for _, entry := range entries {
		if !entry.Role.Valid() {
			return nil, fmt.Errorf("policy %s: role %q is not defined", domain, entry.Role)
		}
		if _, dup := policies[entry.Role]; dup {
			return nil, fmt.Errorf("policy %s: role %q declared twice", domain, entry.Role)
		}
		if entry.Scope == nil {
			return nil, fmt.Errorf("policy %s: role %q has no scope", domain, entry.Role)
		}
		if !entry.Capabilities.HasAccess && (entry.Capabilities.CanViewAll || entry.Capabilities.CanViewOwn) {
			return nil, fmt.Errorf("policy %s: role %q grants view without access", domain, entry.Role)
		}
		policies[entry.Role] = entry
	}
	for _, role := range models.AllRoles() {
		if _, ok := policies[role]; !ok {
			return nil, fmt.Errorf("policy %s: role %q is missing", domain, role)
		}
	}
	return &Registry[T]{domain: domain, policies: policies}, nil
}

// MustRegistry is NewRegistry for static tables; a bad table is a programming error
func MustRegistry[T any](domain string, entries []RolePolicy[T]) *Registry[T] {
	r, err := NewRegistry(domain, entries)
	if err != nil {
		panic(err)
	}
	return r
}

// Domain returns the name the registry was built with
func (r *Registry[T]) Domain() string {
	return r.domain
}

// Roles returns the roles covered, in models.AllRoles order
func (r *Registry[T]) Roles() []models.Role {
	return models.AllRoles()
}

// Resolve returns the policy for role
func (r *Registry[T]) Resolve(role models.Role) (RolePolicy[T], error) {
	p, ok := r.policies[role]
	if !ok {
		return RolePolicy[T]{}, &UnknownRoleError{Domain: r.domain, Role: role}
	}
	return p, nil
}

// Exportable reports whether role may export listings of this domain
func (r *Registry[T]) Exportable(role models.Role) (bool, error) {
	p, err := r.Resolve(role)
	if err != nil {
		return false, err
	}
	return p.Capabilities.HasAccess && p.Capabilities.CanExport, nil
}
