package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/bufete-api/internal/metrics"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/policy"
	"github.com/sjperalta/bufete-api/internal/query"
	"github.com/sjperalta/bufete-api/internal/repository"
	"github.com/sjperalta/bufete-api/internal/store"
	"github.com/sjperalta/bufete-api/pkg/logger"
)

// QueryOptions are the deployment-wide listing settings
type QueryOptions struct {
	PageSize int
	Location *time.Location
	Now      func() time.Time
}

func (o QueryOptions) withDefaults() QueryOptions {
	if o.PageSize <= 0 {
		o.PageSize = query.DefaultPageSize
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// record is what every listed domain stores
type record interface {
	models.Timestamped
	Validate() error
}

// recordRepository is the persistence every domain repository offers
type recordRepository[T any] interface {
	Create(ctx context.Context, rec *T) error
	List(ctx context.Context) ([]T, error)
}

// recordKeeper owns one domain's in-memory log, its policy table and its
// optional database mirror.
type recordKeeper[T record] struct {
	repo     recordRepository[T]
	log      *store.Log[T]
	registry *policy.Registry[T]
	opts     QueryOptions
}

func newRecordKeeper[T record](repo recordRepository[T], log *store.Log[T], registry *policy.Registry[T], opts QueryOptions) *recordKeeper[T] {
	if log == nil {
		log = store.NewLog(func(r T) error { return r.Validate() })
	}
	return &recordKeeper[T]{repo: repo, log: log, registry: registry, opts: opts.withDefaults()}
}

// Registry returns the domain's policy table
func (k *recordKeeper[T]) Registry() *policy.Registry[T] {
	return k.registry
}

// Location returns the time zone date filters are read in
func (k *recordKeeper[T]) Location() *time.Location {
	return k.opts.Location
}

// Exportable reports whether role may export this domain
func (k *recordKeeper[T]) Exportable(role models.Role) (bool, error) {
	return k.registry.Exportable(role)
}

// Len returns how many records are held in memory
func (k *recordKeeper[T]) Len() int {
	return k.log.Len()
}

// persist validates rec, persists it when a database is configured and then
// publishes it to readers.
func (k *recordKeeper[T]) persist(ctx context.Context, rec T) error {
	if err := rec.Validate(); err != nil {
		return &ValidationError{Err: err}
	}
	id := rec.RecordID()
	if k.log.Has(id) {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}

	if k.repo == nil {
		if err := k.log.Append(rec); err != nil {
			if errors.Is(err, store.ErrDuplicateID) {
				return fmt.Errorf("%w: %s", ErrDuplicate, id)
			}
			return err
		}
		metrics.SetStored(k.registry.Domain(), k.log.Len())
		return nil
	}

	if err := k.repo.Create(ctx, &rec); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return fmt.Errorf("%w: %s", ErrDuplicate, id)
		}
		return fmt.Errorf("failed to persist %s record: %w", k.registry.Domain(), err)
	}
	// The row is ours once Create succeeds. A concurrent Refresh may already
	// have published it from the database.
	if _, err := k.log.Merge([]T{rec}); err != nil {
		return err
	}
	metrics.SetStored(k.registry.Domain(), k.log.Len())
	return nil
}

// Seed loads records straight into memory without persisting them
func (k *recordKeeper[T]) Seed(records []T) error {
	if err := k.log.Append(records...); err != nil {
		return err
	}
	metrics.SetStored(k.registry.Domain(), k.log.Len())
	return nil
}

// Refresh catches the in-memory log up with the database
func (k *recordKeeper[T]) Refresh(ctx context.Context) error {
	if k.repo == nil {
		return nil
	}
	records, err := k.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s records: %w", k.registry.Domain(), err)
	}
	added, err := k.log.Merge(records)
	if err != nil {
		return err
	}
	if added > 0 {
		logger.Info("Records refreshed", "domain", k.registry.Domain(), "added", added, "total", k.log.Len())
	}
	metrics.SetStored(k.registry.Domain(), k.log.Len())
	return nil
}
