package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  string = "user"
	RoleAdmin string = "admin"
)

type User struct {
	ID              int             `db:"id"`
	Login           string          `db:"login"`
	Role            string          `db:"role"`
	Balance         decimal.Decimal `db:"balance"`
	TotalSpent      decimal.Decimal `db:"total_spent"`
	CurrentDiscount int             `db:"current_discount"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type TransactionKind string

const (
	TransactionDeposit         TransactionKind = "deposit"
	TransactionPurchase        TransactionKind = "purchase"
	TransactionRenewal         TransactionKind = "renewal"
	TransactionAutoRenewal     TransactionKind = "auto_renewal"
	TransactionRefund          TransactionKind = "refund"
	TransactionAdminAdjustment TransactionKind = "admin_adjustment"
)

// Transaction is an append-only ledger entry. Amount is signed: charges are negative.
type Transaction struct {
	ID            int64           `db:"id"`
	UserID        int             `db:"user_id"`
	Kind          TransactionKind `db:"kind"`
	Amount        decimal.Decimal `db:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after"`
	PlacementID   *int            `db:"placement_id"`
	Description   string          `db:"description"`
	Metadata      map[string]any  `db:"metadata"`
	CreatedAt     time.Time       `db:"created_at"`
}

type PlacementType string

const (
	PlacementLink    PlacementType = "link"
	PlacementArticle PlacementType = "article"
)

func (t PlacementType) Valid() bool {
	return t == PlacementLink || t == PlacementArticle
}

const (
	SiteTypeWordPress string = "wordpress"
	SiteTypeStatic    string = "static_php"
)

type Site struct {
	ID                   int       `db:"id"`
	OwnerID              int       `db:"owner_id"`
	URL                  string    `db:"site_url"`
	Name                 string    `db:"site_name"`
	APIKey               string    `db:"api_key"`
	SiteType             string    `db:"site_type"`
	IsPublic             bool      `db:"is_public"`
	AllowArticles        bool      `db:"allow_articles"`
	AvailableForPurchase bool      `db:"available_for_purchase"`
	MaxLinks             int       `db:"max_links"`
	UsedLinks            int       `db:"used_links"`
	MaxArticles          int       `db:"max_articles"`
	UsedArticles         int       `db:"used_articles"`
	CreatedAt            time.Time `db:"created_at"`
}

// Quota returns used and max counters for the given placement type.
func (s *Site) Quota(t PlacementType) (used, max int) {
	if t == PlacementArticle {
		return s.UsedArticles, s.MaxArticles
	}
	return s.UsedLinks, s.MaxLinks
}

// Sells reports whether the site accepts placements of type t at all.
func (s *Site) Sells(t PlacementType) bool {
	if t == PlacementArticle {
		return s.AllowArticles && s.SiteType != SiteTypeStatic
	}
	return true
}

type Project struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type ContentStatus string

const (
	ContentActive    ContentStatus = "active"
	ContentExhausted ContentStatus = "exhausted"
)

// Content is a project link or article that placements consume.
type Content struct {
	ID         int           `db:"id"`
	ProjectID  int           `db:"project_id"`
	Kind       PlacementType `db:"kind"`
	Title      string        `db:"title"`
	URL        string        `db:"url"`
	Body       string        `db:"body"`
	Slug       string        `db:"slug"`
	UsageCount int           `db:"usage_count"`
	UsageLimit int           `db:"usage_limit"`
	Status     ContentStatus `db:"status"`
}

func (c *Content) Exhausted() bool {
	return c.UsageCount >= c.UsageLimit
}

type PlacementStatus string

const (
	StatusPendingApproval PlacementStatus = "pending_approval"
	StatusScheduled       PlacementStatus = "scheduled"
	StatusPending         PlacementStatus = "pending"
	StatusPlaced          PlacementStatus = "placed"
	StatusFailed          PlacementStatus = "failed"
	StatusRejected        PlacementStatus = "rejected"
	StatusCancelled       PlacementStatus = "cancelled"
	StatusExpired         PlacementStatus = "expired"
)

// Active reports whether the status occupies the (project, site, type) slot.
func (s PlacementStatus) Active() bool {
	switch s {
	case StatusCancelled, StatusExpired, StatusRejected:
		return false
	}
	return true
}

// Refundable reports whether money can still be returned for the status.
func (s PlacementStatus) Refundable() bool {
	switch s {
	case StatusPendingApproval, StatusScheduled, StatusPending, StatusPlaced, StatusFailed:
		return true
	}
	return false
}

type Placement struct {
	ID                   int             `db:"id"`
	UserID               int             `db:"user_id"`
	ProjectID            int             `db:"project_id"`
	SiteID               int             `db:"site_id"`
	Type                 PlacementType   `db:"type"`
	Status               PlacementStatus `db:"status"`
	OriginalPrice        decimal.Decimal `db:"original_price"`
	DiscountApplied      int             `db:"discount_applied"`
	FinalPrice           decimal.Decimal `db:"final_price"`
	PurchasedAt          time.Time       `db:"purchased_at"`
	ScheduledPublishDate *time.Time      `db:"scheduled_publish_date"`
	PublishedAt          *time.Time      `db:"published_at"`
	ExpiresAt            *time.Time      `db:"expires_at"`
	AutoRenewal          bool            `db:"auto_renewal"`
	RenewalPrice         decimal.Decimal `db:"renewal_price"`
	LastRenewalAt        *time.Time      `db:"last_renewal_at"`
	RenewalCount         int             `db:"renewal_count"`
	WordPressPostID      *int            `db:"wordpress_post_id"`
	RejectionReason      string          `db:"rejection_reason"`
	FailureReason        string          `db:"failure_reason"`
	RenewalFailedFor     *time.Time      `db:"renewal_failed_for"`
	ContentIDs           []int           `db:"-"`
}

type Renewal struct {
	ID           int64           `db:"id"`
	PlacementID  int             `db:"placement_id"`
	UserID       int             `db:"user_id"`
	Price        decimal.Decimal `db:"price"`
	OldExpiresAt *time.Time      `db:"old_expires_at"`
	NewExpiresAt time.Time       `db:"new_expires_at"`
	Auto         bool            `db:"auto"`
	CreatedAt    time.Time       `db:"created_at"`
}

type AuditEntry struct {
	ID         int64          `db:"id"`
	ActorID    int            `db:"actor_id"`
	Action     string         `db:"action"`
	EntityType string         `db:"entity_type"`
	EntityID   int            `db:"entity_id"`
	Details    map[string]any `db:"details"`
	CreatedAt  time.Time      `db:"created_at"`
}

// Notification is a user-facing record; UserID nil means admin-facing.
type Notification struct {
	ID        int64          `db:"id"`
	UserID    *int           `db:"user_id"`
	Type      string         `db:"type"`
	Title     string         `db:"title"`
	Message   string         `db:"message"`
	Metadata  map[string]any `db:"metadata"`
	CreatedAt time.Time      `db:"created_at"`
}

const (
	InvoicePending string = "pending"
	InvoicePaid    string = "paid"
)

type Invoice struct {
	ID         int             `db:"id"`
	UserID     int             `db:"user_id"`
	ExternalID string          `db:"external_id"`
	Amount     decimal.Decimal `db:"amount"`
	Status     string          `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
	PaidAt     *time.Time      `db:"paid_at"`
}

// FeedItem is one placed link or article served to a static site.
type FeedItem struct {
	PlacementID int           `json:"placement_id"`
	Type        PlacementType `json:"type"`
	Title       string        `json:"title"`
	URL         string        `json:"url,omitempty"`
	Body        string        `json:"body,omitempty"`
	Slug        string        `json:"slug,omitempty"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
}
