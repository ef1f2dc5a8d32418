package repository

import (
	"context"
	"fmt"

	"github.com/sjperalta/bufete-api/internal/models"

	"gorm.io/gorm"
)

// AuditRepository defines the interface for activity log data access.
// Records are never updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	List(ctx context.Context) ([]models.AuditRecord, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isDuplicateKeyError(err, "audit_records_pkey") {
			return fmt.Errorf("%w: audit record %s", ErrDuplicateKey, record.ID)
		}
		return err
	}
	return nil
}

// List returns every record, newest first
func (r *auditRepository) List(ctx context.Context) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id ASC").
		Find(&records).Error
	return records, err
}
