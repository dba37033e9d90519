package notificationrepo

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

func (r *Repository) AppendNotification(ctx context.Context, n *domain.Notification) error {
	meta := []byte(`{}`)
	if n.Metadata != nil {
		raw, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("marshal notification metadata: %w", err)
		}
		meta = raw
	}
	query := `
		INSERT INTO notifications (user_id, type, title, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, n.UserID, n.Type, n.Title, n.Message, meta).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		zap.L().Error("can't append notification", zap.String("type", n.Type), zap.Error(err))
		return err
	}
	return nil
}
