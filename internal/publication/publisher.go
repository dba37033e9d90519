package publication

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/cache"
	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/service/placementservice"
)

type Placements interface {
	PublicationTask(ctx context.Context, placementID int) (*placementservice.PublicationTask, error)
	CompletePublication(ctx context.Context, placementID int, postID *int) (bool, error)
	FailPublication(ctx context.Context, placementID int, reason string) error
	UnpublishFailed(ctx context.Context, placementID, siteID, postID int, reason string) error
}

type Sites interface {
	GetSite(ctx context.Context, siteID int) (*domain.Site, error)
}

type Remote interface {
	Publish(ctx context.Context, siteURL, apiKey string, post Post) (int, error)
	Delete(ctx context.Context, siteURL, apiKey string, postID int) error
}

const (
	unpublishAttempts = 4
	unpublishBackoff  = 500 * time.Millisecond
)

type Publisher struct {
	placements Placements
	sites      Sites
	remote     Remote
	cache      cache.Invalidator
	backoff    time.Duration
}

func NewPublisher(placements Placements, sites Sites, remote Remote, invalidator cache.Invalidator) *Publisher {
	return &Publisher{
		placements: placements,
		sites:      sites,
		remote:     remote,
		cache:      invalidator,
		backoff:    unpublishBackoff,
	}
}

// Handle is the queue.Handler for publication jobs.
func (p *Publisher) Handle(ctx context.Context, job queue.Job) error {
	defer p.cache.InvalidateSite(ctx, job.SiteID)

	switch job.Kind {
	case queue.JobPublish:
		return p.publish(ctx, job)
	case queue.JobUnpublish:
		return p.unpublish(ctx, job)
	}
	return fmt.Errorf("unknown job kind %q", job.Kind)
}

func (p *Publisher) publish(ctx context.Context, job queue.Job) error {
	task, err := p.placements.PublicationTask(ctx, job.PlacementID)
	if domain.KindOf(err) == domain.KindNotFound {
		zap.L().Info("placement gone before publication", zap.Int("placement_id", job.PlacementID))
		return nil
	}
	if err != nil {
		return err
	}
	if task.Placement.Status != domain.StatusPending {
		return nil
	}

	// static sites pull their links from the feed
	if task.Site.SiteType == domain.SiteTypeStatic {
		_, err := p.placements.CompletePublication(ctx, job.PlacementID, nil)
		return err
	}

	postID, err := p.remote.Publish(ctx, task.Site.URL, task.Site.APIKey, buildPost(task))
	if err != nil {
		if ferr := p.placements.FailPublication(ctx, job.PlacementID, err.Error()); ferr != nil {
			zap.L().Error("can't mark placement failed", zap.Int("placement_id", job.PlacementID), zap.Error(ferr))
		}
		return domain.ExternalFailure(err, "publish placement %d", job.PlacementID)
	}

	placed, err := p.placements.CompletePublication(ctx, job.PlacementID, &postID)
	if err != nil {
		return err
	}
	if !placed {
		return p.remote.Delete(ctx, task.Site.URL, task.Site.APIKey, postID)
	}
	zap.L().Info("placement published", zap.Int("placement_id", job.PlacementID), zap.Int("post_id", postID))
	return nil
}

func (p *Publisher) unpublish(ctx context.Context, job queue.Job) error {
	site, err := p.sites.GetSite(ctx, job.SiteID)
	if err != nil {
		return fmt.Errorf("get site: %w", err)
	}
	if site == nil || site.SiteType == domain.SiteTypeStatic || job.PostID == 0 {
		return nil
	}

	b := retry.WithMaxRetries(unpublishAttempts-1, retry.NewExponential(p.backoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if err := p.remote.Delete(ctx, site.URL, site.APIKey, job.PostID); err != nil {
			zap.L().Warn("remote post delete failed", zap.Int("post_id", job.PostID), zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if ferr := p.placements.UnpublishFailed(ctx, job.PlacementID, job.SiteID, job.PostID, err.Error()); ferr != nil {
		zap.L().Error("can't report orphaned remote post", zap.Int("post_id", job.PostID), zap.Error(ferr))
	}
	return domain.ExternalFailure(err, "delete remote post %d", job.PostID)
}

func buildPost(task *placementservice.PublicationTask) Post {
	var post Post
	for _, c := range task.Contents {
		switch c.Kind {
		case domain.PlacementArticle:
			post = Post{Title: c.Title, Content: c.Body, Slug: c.Slug}
		default:
			post = Post{
				Title:   c.Title,
				Content: fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(c.URL), html.EscapeString(c.Title)),
				Slug:    c.Slug,
			}
		}
	}
	return post
}
