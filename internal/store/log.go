// Package store holds the in-memory, append-only record logs queries read from.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/sjperalta/bufete-api/internal/models"
)

// ErrDuplicateID is returned when appending a record whose id is already stored
var ErrDuplicateID = errors.New("registro duplicado")

// Log is an append-only collection kept newest first.
//
// Snapshot returns a slice that is never written again: Append builds a new
// slice and swaps it in, so a reader holding a snapshot keeps a consistent view
// while writers publish newer ones.
type Log[T models.Timestamped] struct {
	mu       sync.RWMutex
	records  []T
	ids      map[string]struct{}
	validate func(T) error
}

// NewLog creates an empty log. validate, when set, runs on every appended record.
func NewLog[T models.Timestamped](validate func(T) error) *Log[T] {
	return &Log[T]{
		records:  []T{},
		ids:      make(map[string]struct{}),
		validate: validate,
	}
}

// Append adds records atomically: either all are stored or none is
func (l *Log[T]) Append(records ...T) error {
	if len(records) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	batch := make(map[string]struct{}, len(records))
	for _, r := range records {
		if l.validate != nil {
			if err := l.validate(r); err != nil {
				return err
			}
		}
		id := r.RecordID()
		if _, ok := l.ids[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		if _, ok := batch[id]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		batch[id] = struct{}{}
	}

	l.publish(records)
	for id := range batch {
		l.ids[id] = struct{}{}
	}
	return nil
}

// Merge appends the records whose ids are not stored yet and returns how many
// were added. It is used to catch up with the database without failing on rows
// this process already holds.
func (l *Log[T]) Merge(records []T) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := make([]T, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		id := r.RecordID()
		if _, ok := l.ids[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		if l.validate != nil {
			if err := l.validate(r); err != nil {
				return 0, fmt.Errorf("record %s: %w", id, err)
			}
		}
		seen[id] = struct{}{}
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	l.publish(fresh)
	for id := range seen {
		l.ids[id] = struct{}{}
	}
	return len(fresh), nil
}

// publish must be called with mu held
func (l *Log[T]) publish(fresh []T) {
	next := make([]T, 0, len(l.records)+len(fresh))
	next = append(next, l.records...)
	next = append(next, fresh...)
	models.SortNewestFirst(next)
	l.records = next
}

// Snapshot returns the current records, newest first. Callers must not modify it.
func (l *Log[T]) Snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.records
}

// Has reports whether a record with id is stored
func (l *Log[T]) Has(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// Get returns the record with id
func (l *Log[T]) Get(id string) (T, bool) {
	snap := l.Snapshot()
	i := slices.IndexFunc(snap, func(r T) bool { return r.RecordID() == id })
	if i < 0 {
		var zero T
		return zero, false
	}
	return snap[i], true
}

// Len returns the number of stored records
func (l *Log[T]) Len() int {
	return len(l.Snapshot())
}
