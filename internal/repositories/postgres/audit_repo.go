package postgres

import (
	"context"

	"github.com/erindhoxha/mern-stack-site/internal/models"
	"gorm.io/gorm"
)

type AuditRepository interface {
	InsertMany(ctx context.Context, events []models.AuditEvent) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error)
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// clampLimit maps a missing limit to the default and caps the rest.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) InsertMany(ctx context.Context, events []models.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(events, 100).Error
}

func (r *auditRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.AuditEvent, error) {
	limit = clampLimit(limit)
	rows := []models.AuditEvent{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
