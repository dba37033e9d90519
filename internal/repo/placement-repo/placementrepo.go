package placementrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
)

const placementColumns = `id, user_id, project_id, site_id, type, status, original_price, discount_applied, final_price,
	purchased_at, scheduled_publish_date, published_at, expires_at, auto_renewal, renewal_price, last_renewal_at,
	renewal_count, wordpress_post_id, rejection_reason, failure_reason, renewal_failed_for`

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanPlacement(row pgx.Row) (*domain.Placement, error) {
	var (
		p      domain.Placement
		typ    string
		status string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.ProjectID, &p.SiteID, &typ, &status, &p.OriginalPrice, &p.DiscountApplied,
		&p.FinalPrice, &p.PurchasedAt, &p.ScheduledPublishDate, &p.PublishedAt, &p.ExpiresAt, &p.AutoRenewal,
		&p.RenewalPrice, &p.LastRenewalAt, &p.RenewalCount, &p.WordPressPostID, &p.RejectionReason, &p.FailureReason,
		&p.RenewalFailedFor)
	if err != nil {
		return nil, err
	}
	p.Type = domain.PlacementType(typ)
	p.Status = domain.PlacementStatus(status)
	return &p, nil
}

func (r *Repository) contentIDs(ctx context.Context, placementID int) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT content_id FROM placement_contents WHERE placement_id = $1 ORDER BY content_id`, placementID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) findOne(ctx context.Context, query string, placementID int) (*domain.Placement, error) {
	p, err := scanPlacement(r.db.QueryRow(ctx, query, placementID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.ContentIDs, err = r.contentIDs(ctx, placementID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) GetPlacement(ctx context.Context, placementID int) (*domain.Placement, error) {
	p, err := r.findOne(ctx, `SELECT `+placementColumns+` FROM placements WHERE id = $1`, placementID)
	if err != nil {
		zap.L().Error("can't get placement", zap.Int("placement_id", placementID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// LockPlacement must be called after the owner's user row is locked.
func (r *Repository) LockPlacement(ctx context.Context, placementID int) (*domain.Placement, error) {
	p, err := r.findOne(ctx, `SELECT `+placementColumns+` FROM placements WHERE id = $1 FOR UPDATE`, placementID)
	if err != nil {
		zap.L().Error("can't lock placement", zap.Int("placement_id", placementID), zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *Repository) HasActivePlacement(ctx context.Context, projectID, siteID int, t domain.PlacementType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM placements
			WHERE project_id = $1 AND site_id = $2 AND type = $3
			AND status NOT IN ('cancelled', 'expired', 'rejected')
		)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, projectID, siteID, string(t)).Scan(&exists); err != nil {
		zap.L().Error("can't check active placement", zap.Int("site_id", siteID), zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) CreatePlacement(ctx context.Context, p *domain.Placement) error {
	query := `
		INSERT INTO placements (user_id, project_id, site_id, type, status, original_price, discount_applied, final_price,
			purchased_at, scheduled_publish_date, expires_at, auto_renewal, renewal_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		p.UserID, p.ProjectID, p.SiteID, string(p.Type), string(p.Status), p.OriginalPrice, p.DiscountApplied,
		p.FinalPrice, p.PurchasedAt, p.ScheduledPublishDate, p.ExpiresAt, p.AutoRenewal, p.RenewalPrice,
	).Scan(&p.ID)
	if err != nil {
		zap.L().Error("can't create placement", zap.Int("user_id", p.UserID), zap.Error(err))
		return err
	}
	for _, contentID := range p.ContentIDs {
		_, err := r.db.Exec(ctx, `INSERT INTO placement_contents (placement_id, content_id) VALUES ($1, $2)`, p.ID, contentID)
		if err != nil {
			zap.L().Error("can't link placement content", zap.Int("placement_id", p.ID), zap.Error(err))
			return err
		}
	}
	return nil
}

// UpdatePlacement writes the mutable lifecycle fields. Prices and ownership never change.
func (r *Repository) UpdatePlacement(ctx context.Context, p *domain.Placement) error {
	query := `
		UPDATE placements
		SET status = $1, scheduled_publish_date = $2, published_at = $3, expires_at = $4, auto_renewal = $5,
			renewal_price = $6, last_renewal_at = $7, renewal_count = $8, wordpress_post_id = $9,
			rejection_reason = $10, failure_reason = $11, renewal_failed_for = $12
		WHERE id = $13
	`
	_, err := r.db.Exec(ctx, query,
		string(p.Status), p.ScheduledPublishDate, p.PublishedAt, p.ExpiresAt, p.AutoRenewal,
		p.RenewalPrice, p.LastRenewalAt, p.RenewalCount, p.WordPressPostID,
		p.RejectionReason, p.FailureReason, p.RenewalFailedFor, p.ID,
	)
	if err != nil {
		zap.L().Error("failed to update placement", zap.Int("placement_id", p.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) DeletePlacement(ctx context.Context, placementID int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM placements WHERE id = $1`, placementID); err != nil {
		zap.L().Error("can't delete placement", zap.Int("placement_id", placementID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) AppendRenewal(ctx context.Context, renewal *domain.Renewal) error {
	query := `
		INSERT INTO renewal_history (placement_id, user_id, price, old_expires_at, new_expires_at, auto)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		renewal.PlacementID, renewal.UserID, renewal.Price, renewal.OldExpiresAt, renewal.NewExpiresAt, renewal.Auto,
	).Scan(&renewal.ID, &renewal.CreatedAt)
	if err != nil {
		zap.L().Error("can't append renewal", zap.Int("placement_id", renewal.PlacementID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Placement, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var placements []domain.Placement
	for rows.Next() {
		p, err := scanPlacement(rows)
		if err != nil {
			return nil, err
		}
		placements = append(placements, *p)
	}
	return placements, rows.Err()
}

// FindScheduledDue returns scheduled placements whose publish date has come, oldest first.
func (r *Repository) FindScheduledDue(ctx context.Context, now time.Time, limit int) ([]domain.Placement, error) {
	query := `SELECT ` + placementColumns + ` FROM placements
		WHERE status = 'scheduled' AND scheduled_publish_date <= $1
		ORDER BY scheduled_publish_date ASC
		LIMIT $2`
	placements, err := r.list(ctx, query, now, limit)
	if err != nil {
		zap.L().Error("can't get scheduled placements", zap.Error(err))
		return nil, err
	}
	return placements, nil
}

// FindExpiring returns placed links whose expiry is at or before the given time.
func (r *Repository) FindExpiring(ctx context.Context, before time.Time, limit int) ([]domain.Placement, error) {
	query := `SELECT ` + placementColumns + ` FROM placements
		WHERE status = 'placed' AND type = 'link' AND expires_at <= $1
		ORDER BY expires_at ASC
		LIMIT $2`
	placements, err := r.list(ctx, query, before, limit)
	if err != nil {
		zap.L().Error("can't get expiring placements", zap.Error(err))
		return nil, err
	}
	return placements, nil
}

func (r *Repository) ListSiteFeed(ctx context.Context, siteID int) ([]domain.FeedItem, error) {
	query := `
		SELECT p.id, p.type, c.title, c.url, c.body, c.slug, p.published_at
		FROM placements p
		JOIN placement_contents pc ON pc.placement_id = p.id
		JOIN project_contents c ON c.id = pc.content_id
		WHERE p.site_id = $1 AND p.status = 'placed'
		ORDER BY p.id
	`
	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		zap.L().Error("can't get site feed", zap.Int("site_id", siteID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.FeedItem, 0)
	for rows.Next() {
		var (
			item domain.FeedItem
			typ  string
		)
		if err := rows.Scan(&item.PlacementID, &typ, &item.Title, &item.URL, &item.Body, &item.Slug, &item.PublishedAt); err != nil {
			zap.L().Error("can't scan feed row", zap.Error(err))
			return nil, err
		}
		item.Type = domain.PlacementType(typ)
		items = append(items, item)
	}
	return items, rows.Err()
}
