package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/linkmarket/docs"
	adminhandlers "github.com/GlebRadaev/linkmarket/internal/handlers/admin"
	billinghandlers "github.com/GlebRadaev/linkmarket/internal/handlers/billing"
	feedhandlers "github.com/GlebRadaev/linkmarket/internal/handlers/feed"
	paymenthandlers "github.com/GlebRadaev/linkmarket/internal/handlers/payments"
	placementhandlers "github.com/GlebRadaev/linkmarket/internal/handlers/placements"
	"github.com/GlebRadaev/linkmarket/internal/service"
	"github.com/GlebRadaev/linkmarket/pkg/auth"
)

type BillingHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Deposit(w http.ResponseWriter, r *http.Request)
	GetTransactions(w http.ResponseWriter, r *http.Request)
	GetPricing(w http.ResponseWriter, r *http.Request)
	CreateInvoice(w http.ResponseWriter, r *http.Request)
}

type PlacementHandler interface {
	Purchase(w http.ResponseWriter, r *http.Request)
	PurchaseBatch(w http.ResponseWriter, r *http.Request)
	Renew(w http.ResponseWriter, r *http.Request)
	ToggleAutoRenewal(w http.ResponseWriter, r *http.Request)
	Refund(w http.ResponseWriter, r *http.Request)
}

type AdminHandler interface {
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Retry(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	BatchDelete(w http.ResponseWriter, r *http.Request)
	Adjust(w http.ResponseWriter, r *http.Request)
	VerifyLedger(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	Webhook(w http.ResponseWriter, r *http.Request)
}

type FeedHandler interface {
	SiteFeed(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	BillingHandler   BillingHandler
	PlacementHandler PlacementHandler
	AdminHandler     AdminHandler
	PaymentHandler   PaymentHandler
	FeedHandler      FeedHandler
	JWT              auth.JWTServiceInterface
}

// Deps carries what the handlers need beyond the services.
type Deps struct {
	Sites         feedhandlers.Sites
	Feed          feedhandlers.Placements
	FeedCache     feedhandlers.Cache
	JWT           auth.JWTServiceInterface
	WebhookSecret string
}

func New(s *service.Services, deps Deps) *Handlers {
	return &Handlers{
		BillingHandler:   billinghandlers.New(s.Ledger, s.Placements),
		PlacementHandler: placementhandlers.New(s.Placements, s.Batch),
		AdminHandler:     adminhandlers.New(s.Placements, s.Batch, s.Ledger),
		PaymentHandler:   paymenthandlers.New(s.Ledger, deps.WebhookSecret),
		FeedHandler:      feedhandlers.New(deps.Sites, deps.Feed, deps.FeedCache),
		JWT:              deps.JWT,
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Get("/api/feed/{siteID}", h.FeedHandler.SiteFeed)
	r.Post("/api/payments/webhook", h.PaymentHandler.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(h.JWT))
		r.Route("/api/billing", func(r chi.Router) {
			r.Get("/balance", h.BillingHandler.GetBalance)
			r.Post("/deposit", h.BillingHandler.Deposit)
			r.Get("/transactions", h.BillingHandler.GetTransactions)
			r.Get("/pricing", h.BillingHandler.GetPricing)
			r.Post("/invoices", h.BillingHandler.CreateInvoice)
			r.Post("/purchase", h.PlacementHandler.Purchase)
			r.Post("/purchase/batch", h.PlacementHandler.PurchaseBatch)
			r.Route("/placements/{id}", func(r chi.Router) {
				r.Post("/renew", h.PlacementHandler.Renew)
				r.Patch("/auto-renewal", h.PlacementHandler.ToggleAutoRenewal)
				r.Delete("/", h.PlacementHandler.Refund)
			})
		})
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(auth.AdminOnly)
			r.Route("/placements", func(r chi.Router) {
				r.Post("/batch-delete", h.AdminHandler.BatchDelete)
				r.Post("/{id}/approve", h.AdminHandler.Approve)
				r.Post("/{id}/reject", h.AdminHandler.Reject)
				r.Post("/{id}/retry", h.AdminHandler.Retry)
				r.Delete("/{id}", h.AdminHandler.Delete)
			})
			r.Post("/users/{id}/adjust", h.AdminHandler.Adjust)
			r.Get("/users/{id}/ledger", h.AdminHandler.VerifyLedger)
		})
	})

	return r
}
