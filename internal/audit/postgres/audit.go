package postgres

import (
	"context"

	"github.com/frahmantamala/procurement-inventory/internal/audit"
	auditDatamodel "github.com/frahmantamala/procurement-inventory/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, e *audit.Entry) error {
	m := audit.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	return nil
}

func (r *AuditRepository) Search(ctx context.Context, f audit.Filter) ([]*audit.Entry, error) {
	q := r.db.WithContext(ctx).
		Table("audit_logs AS a").
		Select("a.*, u.name AS actor_name, u.email AS actor_email, u.role AS actor_role").
		Joins("LEFT JOIN users u ON u.id = a.actor_id")

	if f.UserID != 0 {
		q = q.Where("a.actor_id = ?", f.UserID)
	}
	if f.Action != "" {
		q = q.Where("a.action = ?", string(f.Action))
	}
	if f.EntityType != "" {
		q = q.Where("a.entity_type = ?", string(f.EntityType))
	}
	if !f.From.IsZero() {
		q = q.Where("a.created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("a.created_at <= ?", f.To)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []*auditDatamodel.AuditLogWithActor
	if err := q.Order("a.created_at DESC").Order("a.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*audit.Entry, len(rows))
	for i, row := range rows {
		entries[i] = audit.FromDataModel(row)
	}
	return entries, nil
}
