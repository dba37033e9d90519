package siterepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
)

const siteColumns = `id, owner_id, site_url, site_name, api_key, site_type, is_public, allow_articles,
	available_for_purchase, max_links, used_links, max_articles, used_articles, created_at`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanSite(row pgx.Row) (*domain.Site, error) {
	var s domain.Site
	err := row.Scan(&s.ID, &s.OwnerID, &s.URL, &s.Name, &s.APIKey, &s.SiteType, &s.IsPublic, &s.AllowArticles,
		&s.AvailableForPurchase, &s.MaxLinks, &s.UsedLinks, &s.MaxArticles, &s.UsedArticles, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) GetSite(ctx context.Context, siteID int) (*domain.Site, error) {
	site, err := scanSite(r.db.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, siteID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't get site", zap.Int("site_id", siteID), zap.Error(err))
		return nil, err
	}
	return site, nil
}

// LockSite serialises quota checks for the site until the transaction ends.
func (r *Repository) LockSite(ctx context.Context, siteID int) (*domain.Site, error) {
	site, err := scanSite(r.db.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1 FOR UPDATE`, siteID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't lock site", zap.Int("site_id", siteID), zap.Error(err))
		return nil, err
	}
	return site, nil
}

// AdjustQuota moves the used counter of the given type by delta, never below zero.
func (r *Repository) AdjustQuota(ctx context.Context, siteID int, t domain.PlacementType, delta int) error {
	var query string
	switch t {
	case domain.PlacementLink:
		query = `UPDATE sites SET used_links = GREATEST(used_links + $1, 0) WHERE id = $2`
	case domain.PlacementArticle:
		query = `UPDATE sites SET used_articles = GREATEST(used_articles + $1, 0) WHERE id = $2`
	default:
		return fmt.Errorf("unknown placement type %q", t)
	}
	if _, err := r.db.Exec(ctx, query, delta, siteID); err != nil {
		zap.L().Error("can't adjust site quota", zap.Int("site_id", siteID), zap.String("type", string(t)), zap.Error(err))
		return err
	}
	return nil
}
