package services

import (
	"errors"
	"fmt"

	"github.com/sjperalta/bufete-api/internal/policy"
)

// Common service errors
var (
	ErrNotFound     = errors.New("registro no encontrado")
	ErrDuplicate    = errors.New("registro duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrExportDenied = errors.New("tu rol no puede exportar este listado")
)

// UnknownRoleError is re-exported so handlers only depend on services
type UnknownRoleError = policy.UnknownRoleError

// InvalidFilterValueError rejects a filter term outside its enumeration. It is
// raised while parsing, before any record is looked at.
type InvalidFilterValueError struct {
	Field string
	Value string
}

func (e *InvalidFilterValueError) Error() string {
	return fmt.Sprintf("valor de filtro inválido para %s: %q", e.Field, e.Value)
}

// ValidationError wraps a record that broke one of its invariants
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// IsUnknownRole reports whether err is an UnknownRoleError
func IsUnknownRole(err error) bool {
	var target *UnknownRoleError
	return errors.As(err, &target)
}

// IsInvalidFilter reports whether err is an InvalidFilterValueError
func IsInvalidFilter(err error) bool {
	var target *InvalidFilterValueError
	return errors.As(err, &target)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
