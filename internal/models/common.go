package models

import (
	"errors"
	"slices"
	"strings"
	"time"
)

// Construction errors. A record that fails validation never reaches a store.
var (
	ErrInvalidEnum   = errors.New("valor fuera de la enumeración")
	ErrInvalidRecord = errors.New("registro inválido")
)

// Sentinel value accepted by every enum filter meaning "do not narrow"
const FilterAll = "all"

// Timestamped is implemented by every record type kept in an append-only log
type Timestamped interface {
	RecordID() string
	OccurredAt() time.Time
}

// NewestFirst orders records by descending timestamp, ties broken by ascending id
// so the order is total and independent of insertion order.
func NewestFirst[T Timestamped](a, b T) int {
	if c := b.OccurredAt().Compare(a.OccurredAt()); c != 0 {
		return c
	}
	return strings.Compare(a.RecordID(), b.RecordID())
}

// SortNewestFirst sorts records in place using NewestFirst
func SortNewestFirst[T Timestamped](records []T) {
	slices.SortStableFunc(records, NewestFirst[T])
}

func isOneOf[E ~string](v E, set []E) bool {
	return slices.Contains(set, v)
}
