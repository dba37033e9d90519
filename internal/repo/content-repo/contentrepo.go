package contentrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
)

const contentColumns = `id, project_id, kind, title, url, body, slug, usage_count, usage_limit, status`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetProject(ctx context.Context, projectID int) (*domain.Project, error) {
	var p domain.Project
	err := r.db.QueryRow(ctx, `SELECT id, user_id, name, created_at FROM projects WHERE id = $1`, projectID).
		Scan(&p.ID, &p.UserID, &p.Name, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get project", zap.Int("project_id", projectID), zap.Error(err))
		return nil, err
	}
	return &p, nil
}

func scanContent(row pgx.Row) (*domain.Content, error) {
	var (
		c      domain.Content
		kind   string
		status string
	)
	err := row.Scan(&c.ID, &c.ProjectID, &kind, &c.Title, &c.URL, &c.Body, &c.Slug, &c.UsageCount, &c.UsageLimit, &status)
	if err != nil {
		return nil, err
	}
	c.Kind = domain.PlacementType(kind)
	c.Status = domain.ContentStatus(status)
	return &c, nil
}

func (r *Repository) GetContent(ctx context.Context, contentID int) (*domain.Content, error) {
	c, err := scanContent(r.db.QueryRow(ctx, `SELECT `+contentColumns+` FROM project_contents WHERE id = $1`, contentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get content", zap.Int("content_id", contentID), zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *Repository) LockContent(ctx context.Context, contentID int) (*domain.Content, error) {
	c, err := scanContent(r.db.QueryRow(ctx, `SELECT `+contentColumns+` FROM project_contents WHERE id = $1 FOR UPDATE`, contentID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't lock content", zap.Int("content_id", contentID), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// AdjustUsage moves usage_count by delta (never below zero) and keeps status in
// step with the limit.
func (r *Repository) AdjustUsage(ctx context.Context, contentID int, delta int) error {
	query := `
		UPDATE project_contents
		SET usage_count = GREATEST(usage_count + $1, 0),
			status = CASE WHEN GREATEST(usage_count + $1, 0) >= usage_limit THEN 'exhausted' ELSE 'active' END
		WHERE id = $2
	`
	if _, err := r.db.Exec(ctx, query, delta, contentID); err != nil {
		zap.L().Error("can't adjust content usage", zap.Int("content_id", contentID), zap.Error(err))
		return err
	}
	return nil
}
