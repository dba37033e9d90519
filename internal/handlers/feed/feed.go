// Package feed serves the placed links and articles of a site to the site
// itself. Static sites render from this feed instead of receiving pushes.
package feed

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/pkg/utils"
)

const apiKeyHeader = "X-API-Key"

type Sites interface {
	GetSite(ctx context.Context, siteID int) (*domain.Site, error)
}

type Placements interface {
	ListSiteFeed(ctx context.Context, siteID int) ([]domain.FeedItem, error)
}

type Cache interface {
	Feed(ctx context.Context, siteID int, load func(ctx context.Context) ([]byte, error)) ([]byte, bool, error)
}

type FeedHandler struct {
	sites      Sites
	placements Placements
	cache      Cache
}

func New(sites Sites, placements Placements, cache Cache) *FeedHandler {
	return &FeedHandler{
		sites:      sites,
		placements: placements,
		cache:      cache,
	}
}

type Response struct {
	SiteID int               `json:"site_id"`
	Items  []domain.FeedItem `json:"items"`
}

// SiteFeed godoc
//
//	@Summary		Placed content of a site
//	@Description	Read-through cached. X-Cache tells whether the body came from the cache.
//	@Tags			Feed
//	@Produce		json
//	@Param			siteID		path		int		true	"Site ID"
//	@Param			X-API-Key	header		string	true	"Site API key"
//	@Success		200			{object}	Response
//	@Failure		401			{object}	utils.Response	"Bad API key"
//	@Failure		404			{object}	utils.Response	"Site not found"
//	@Router			/api/feed/{siteID} [get]
func (h *FeedHandler) SiteFeed(w http.ResponseWriter, r *http.Request) {
	siteID, err := strconv.Atoi(chi.URLParam(r, "siteID"))
	if err != nil || siteID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	site, err := h.sites.GetSite(r.Context(), siteID)
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}
	if site == nil {
		utils.RespondWithServiceError(w, domain.NotFound("site", siteID))
		return
	}
	key := r.Header.Get(apiKeyHeader)
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(site.APIKey)) != 1 {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	body, hit, err := h.cache.Feed(r.Context(), siteID, func(ctx context.Context) ([]byte, error) {
		items, err := h.placements.ListSiteFeed(ctx, siteID)
		if err != nil {
			return nil, fmt.Errorf("list site feed: %w", err)
		}
		if items == nil {
			items = []domain.FeedItem{}
		}
		return json.Marshal(Response{SiteID: siteID, Items: items})
	})
	if err != nil {
		utils.RespondWithServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		zap.L().Warn("can't write feed", zap.Int("site_id", siteID), zap.Error(err))
	}
}
