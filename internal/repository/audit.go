package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/roster-manager/backend/internal/domain"
)

// InsertAuditRecord 持久化一条审计记录，只有 audit worker 会调用。
func (r *Repository) InsertAuditRecord(record *domain.AuditRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO audit_records (actor_id, actor_email, actor_name, action, entity_type, entity_id, description, before_snapshot, after_snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	params := []any{
		record.ActorID,
		record.ActorEmail,
		record.ActorName,
		record.Action,
		record.EntityType,
		record.EntityID,
		record.Description,
		[]byte(record.Before),
		[]byte(record.After),
		record.CreatedAt,
	}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&record.ID); err != nil {
		return err
	}

	return nil
}
