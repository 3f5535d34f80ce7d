package repository

import (
	"context"

	"tunedeck/model"

	"gorm.io/gorm"
)

// AuditRepository records catalog mutations for operator review.
type AuditRepository interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]*model.AuditEntry, error)
}

// gormAuditRepository is the GORM implementation.
type gormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a GORM audit repository.
func NewGormAuditRepository(db *gorm.DB) AuditRepository {
	return &gormAuditRepository{db: db}
}

// Record appends one audit entry.
func (r *gormAuditRepository) Record(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Recent returns the newest entries, most recent first.
func (r *gormAuditRepository) Recent(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	var entries []*model.AuditEntry
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
