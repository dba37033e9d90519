package auditrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	details := []byte(`{}`)
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("marshal audit details: %w", err)
		}
		details = raw
	}
	query := `
		INSERT INTO audit_log (actor_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, details).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		zap.L().Error("can't append audit entry", zap.String("action", entry.Action), zap.Error(err))
		return err
	}
	return nil
}
