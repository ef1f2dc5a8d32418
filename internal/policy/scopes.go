package policy

import "github.com/sjperalta/bufete-api/internal/models"

// Everything is the scope of a full-access role
func Everything[T any](T, models.Actor) bool { return true }

// Nothing is the scope of a role without access
func Nothing[T any](T, models.Actor) bool { return false }

// AnyOf is the union of scopes
func AnyOf[T any](scopes ...ScopeFunc[T]) ScopeFunc[T] {
	return func(record T, actor models.Actor) bool {
		for _, s := range scopes {
			if s(record, actor) {
				return true
			}
		}
		return false
	}
}

// AllOf is the intersection of scopes
func AllOf[T any](scopes ...ScopeFunc[T]) ScopeFunc[T] {
	return func(record T, actor models.Actor) bool {
		for _, s := range scopes {
			if !s(record, actor) {
				return false
			}
		}
		return true
	}
}

// Not negates a scope
func Not[T any](scope ScopeFunc[T]) ScopeFunc[T] {
	return func(record T, actor models.Actor) bool {
		return !scope(record, actor)
	}
}

// OwnedBy matches records whose owner id equals the actor id
func OwnedBy[T any](owner func(T) string) ScopeFunc[T] {
	return func(record T, actor models.Actor) bool {
		return actor.ID != "" && owner(record) == actor.ID
	}
}

// AuthoredByRole matches records whose author acted under role
func AuthoredByRole[T any](author func(T) models.Role, role models.Role) ScopeFunc[T] {
	return func(record T, _ models.Actor) bool {
		return author(record) == role
	}
}

// FieldIn matches records whose field value is in allowed
func FieldIn[T any, V comparable](field func(T) V, allowed ...V) ScopeFunc[T] {
	set := make(map[V]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}
	return func(record T, _ models.Actor) bool {
		_, ok := set[field(record)]
		return ok
	}
}
