// Package memstore is an in-memory implementation of every repository plus a
// transaction manager that runs transactions one at a time and rolls back on
// error. Tests use it to check engine invariants without PostgreSQL.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pg"
)

var (
	ErrCheckViolation  = errors.New("check constraint violation")
	ErrUniqueViolation = errors.New("unique constraint violation")
)

type state struct {
	users         map[int]domain.User
	transactions  []domain.Transaction
	sites         map[int]domain.Site
	projects      map[int]domain.Project
	contents      map[int]domain.Content
	placements    map[int]domain.Placement
	renewals      []domain.Renewal
	audit         []domain.AuditEntry
	notifications []domain.Notification
	invoices      map[int]domain.Invoice
	seq           int
}

func (s *state) clone() *state {
	c := &state{
		users:         make(map[int]domain.User, len(s.users)),
		transactions:  append([]domain.Transaction(nil), s.transactions...),
		sites:         make(map[int]domain.Site, len(s.sites)),
		projects:      make(map[int]domain.Project, len(s.projects)),
		contents:      make(map[int]domain.Content, len(s.contents)),
		placements:    make(map[int]domain.Placement, len(s.placements)),
		renewals:      append([]domain.Renewal(nil), s.renewals...),
		audit:         append([]domain.AuditEntry(nil), s.audit...),
		notifications: append([]domain.Notification(nil), s.notifications...),
		invoices:      make(map[int]domain.Invoice, len(s.invoices)),
		seq:           s.seq,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.sites {
		c.sites[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.contents {
		c.contents[k] = v
	}
	for k, v := range s.placements {
		v.ContentIDs = append([]int(nil), v.ContentIDs...)
		c.placements[k] = v
	}
	for k, v := range s.invoices {
		c.invoices[k] = v
	}
	return c
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *state
}

func New() *Store {
	return &Store{data: newState()}
}

func newState() *state {
	return &state{
		users:      map[int]domain.User{},
		sites:      map[int]domain.Site{},
		projects:   map[int]domain.Project{},
		contents:   map[int]domain.Content{},
		placements: map[int]domain.Placement{},
		invoices:   map[int]domain.Invoice{},
	}
}

func (s *Store) nextID() int {
	s.data.seq++
	return s.data.seq
}

type txKey struct{}

// Begin satisfies pg.TXManager. Nested calls join the running transaction.
func (s *Store) Begin(ctx context.Context, fn pg.TransactionalFn) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()
	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// Seeding and inspection helpers.

func (s *Store) AddUser(u domain.User) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextID()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	s.data.users[u.ID] = u
	if u.Balance.IsPositive() {
		// opening balance goes through the log so the ledger replays
		s.data.transactions = append(s.data.transactions, domain.Transaction{
			ID:           int64(len(s.data.transactions) + 1),
			UserID:       u.ID,
			Kind:         domain.TransactionDeposit,
			Amount:       u.Balance,
			BalanceAfter: u.Balance,
			Description:  "opening balance",
			CreatedAt:    time.Now(),
		})
	}
	return u.ID
}

func (s *Store) AddSite(site domain.Site) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if site.ID == 0 {
		site.ID = s.nextID()
	}
	s.data.sites[site.ID] = site
	return site.ID
}

func (s *Store) AddProject(p domain.Project) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID()
	}
	s.data.projects[p.ID] = p
	return p.ID
}

func (s *Store) AddContent(c domain.Content) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.nextID()
	}
	if c.UsageLimit == 0 {
		c.UsageLimit = 1
	}
	if c.Status == "" {
		c.Status = domain.ContentActive
	}
	s.data.contents[c.ID] = c
	return c.ID
}

func (s *Store) User(id int) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.users[id]
}

func (s *Store) Site(id int) domain.Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.sites[id]
}

func (s *Store) Content(id int) domain.Content {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.contents[id]
}

// Placement returns the stored placement and whether it exists.
func (s *Store) Placement(id int) (domain.Placement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.placements[id]
	return p, ok
}

func (s *Store) Placements() []domain.Placement {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Placement, 0, len(s.data.placements))
	for _, p := range s.data.placements {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Transactions(userID int) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.data.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.data.notifications...)
}

func (s *Store) Audit() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEntry(nil), s.data.audit...)
}

func (s *Store) Renewals() []domain.Renewal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Renewal(nil), s.data.renewals...)
}

// Users.

func (s *Store) GetUser(_ context.Context, userID int) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[userID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) LockUser(ctx context.Context, userID int) (*domain.User, error) {
	return s.GetUser(ctx, userID)
}

func (s *Store) ApplyDelta(_ context.Context, userID int, balanceDelta, spentDelta decimal.Decimal) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: no rows", userID)
	}
	u.Balance = u.Balance.Add(balanceDelta)
	if u.Balance.IsNegative() {
		return nil, fmt.Errorf("users.balance: %w", ErrCheckViolation)
	}
	u.TotalSpent = decimal.Max(u.TotalSpent.Add(spentDelta), decimal.Zero)
	s.data.users[userID] = u
	return &u, nil
}

func (s *Store) SetDiscount(_ context.Context, userID int, discount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.data.users[userID]
	u.CurrentDiscount = discount
	s.data.users[userID] = u
	return nil
}

// Transactions.

func (s *Store) AppendTransaction(_ context.Context, entry *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = int64(len(s.data.transactions) + 1)
	entry.CreatedAt = time.Now()
	s.data.transactions = append(s.data.transactions, *entry)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, userID, limit, offset int) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for i := len(s.data.transactions) - 1; i >= 0; i-- {
		if s.data.transactions[i].UserID == userID {
			out = append(out, s.data.transactions[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SumTransactions(_ context.Context, userID int) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum := decimal.Zero
	for _, t := range s.data.transactions {
		if t.UserID == userID {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

// Sites, projects and contents.

func (s *Store) GetSite(_ context.Context, siteID int) (*domain.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	site, ok := s.data.sites[siteID]
	if !ok {
		return nil, nil
	}
	return &site, nil
}

func (s *Store) LockSite(ctx context.Context, siteID int) (*domain.Site, error) {
	return s.GetSite(ctx, siteID)
}

func (s *Store) AdjustQuota(_ context.Context, siteID int, t domain.PlacementType, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	site, ok := s.data.sites[siteID]
	if !ok {
		return nil
	}
	used, max := &site.UsedLinks, site.MaxLinks
	if t == domain.PlacementArticle {
		used, max = &site.UsedArticles, site.MaxArticles
	}
	*used += delta
	if *used < 0 {
		*used = 0
	}
	if *used > max {
		return fmt.Errorf("sites quota: %w", ErrCheckViolation)
	}
	s.data.sites[siteID] = site
	return nil
}

func (s *Store) GetProject(_ context.Context, projectID int) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.projects[projectID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) GetContent(_ context.Context, contentID int) (*domain.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.contents[contentID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) LockContent(ctx context.Context, contentID int) (*domain.Content, error) {
	return s.GetContent(ctx, contentID)
}

func (s *Store) AdjustUsage(_ context.Context, contentID int, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.contents[contentID]
	if !ok {
		return nil
	}
	c.UsageCount += delta
	if c.UsageCount < 0 {
		c.UsageCount = 0
	}
	c.Status = domain.ContentActive
	if c.Exhausted() {
		c.Status = domain.ContentExhausted
	}
	s.data.contents[contentID] = c
	return nil
}

// Placements.

func (s *Store) GetPlacement(_ context.Context, placementID int) (*domain.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.placements[placementID]
	if !ok {
		return nil, nil
	}
	p.ContentIDs = append([]int(nil), p.ContentIDs...)
	return &p, nil
}

func (s *Store) LockPlacement(ctx context.Context, placementID int) (*domain.Placement, error) {
	return s.GetPlacement(ctx, placementID)
}

func (s *Store) hasActive(projectID, siteID int, t domain.PlacementType, skip int) bool {
	for _, p := range s.data.placements {
		if p.ID != skip && p.ProjectID == projectID && p.SiteID == siteID && p.Type == t && p.Status.Active() {
			return true
		}
	}
	return false
}

func (s *Store) HasActivePlacement(_ context.Context, projectID, siteID int, t domain.PlacementType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasActive(projectID, siteID, t, 0), nil
}

func (s *Store) CreatePlacement(_ context.Context, p *domain.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Status.Active() && s.hasActive(p.ProjectID, p.SiteID, p.Type, 0) {
		return fmt.Errorf("uniq_active_placement: %w", ErrUniqueViolation)
	}
	p.ID = s.nextID()
	stored := *p
	stored.ContentIDs = append([]int(nil), p.ContentIDs...)
	s.data.placements[p.ID] = stored
	return nil
}

func (s *Store) UpdatePlacement(_ context.Context, p *domain.Placement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.data.placements[p.ID]
	if !ok {
		return nil
	}
	if p.Status.Active() && s.hasActive(stored.ProjectID, stored.SiteID, stored.Type, p.ID) {
		return fmt.Errorf("uniq_active_placement: %w", ErrUniqueViolation)
	}
	stored.Status = p.Status
	stored.ScheduledPublishDate = p.ScheduledPublishDate
	stored.PublishedAt = p.PublishedAt
	stored.ExpiresAt = p.ExpiresAt
	stored.AutoRenewal = p.AutoRenewal
	stored.RenewalPrice = p.RenewalPrice
	stored.LastRenewalAt = p.LastRenewalAt
	stored.RenewalCount = p.RenewalCount
	stored.WordPressPostID = p.WordPressPostID
	stored.RejectionReason = p.RejectionReason
	stored.FailureReason = p.FailureReason
	stored.RenewalFailedFor = p.RenewalFailedFor
	s.data.placements[p.ID] = stored
	return nil
}

func (s *Store) DeletePlacement(_ context.Context, placementID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.placements, placementID)
	return nil
}

func (s *Store) AppendRenewal(_ context.Context, renewal *domain.Renewal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	renewal.ID = int64(len(s.data.renewals) + 1)
	renewal.CreatedAt = time.Now()
	s.data.renewals = append(s.data.renewals, *renewal)
	return nil
}

func (s *Store) filter(limit int, keep func(p domain.Placement) bool, less func(a, b domain.Placement) bool) []domain.Placement {
	var out []domain.Placement
	for _, p := range s.data.placements {
		if keep(p) {
			p.ContentIDs = nil
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) FindScheduledDue(_ context.Context, now time.Time, limit int) ([]domain.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(limit,
		func(p domain.Placement) bool {
			return p.Status == domain.StatusScheduled && p.ScheduledPublishDate != nil && !p.ScheduledPublishDate.After(now)
		},
		func(a, b domain.Placement) bool { return a.ScheduledPublishDate.Before(*b.ScheduledPublishDate) },
	), nil
}

func (s *Store) FindExpiring(_ context.Context, before time.Time, limit int) ([]domain.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(limit,
		func(p domain.Placement) bool {
			return p.Status == domain.StatusPlaced && p.Type == domain.PlacementLink &&
				p.ExpiresAt != nil && !p.ExpiresAt.After(before)
		},
		func(a, b domain.Placement) bool { return a.ExpiresAt.Before(*b.ExpiresAt) },
	), nil
}

func (s *Store) ListSiteFeed(_ context.Context, siteID int) ([]domain.FeedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]domain.FeedItem, 0)
	for _, p := range s.filter(len(s.data.placements),
		func(p domain.Placement) bool { return p.SiteID == siteID && p.Status == domain.StatusPlaced },
		func(a, b domain.Placement) bool { return a.ID < b.ID },
	) {
		for _, cid := range s.data.placements[p.ID].ContentIDs {
			c := s.data.contents[cid]
			items = append(items, domain.FeedItem{
				PlacementID: p.ID, Type: p.Type, Title: c.Title, URL: c.URL, Body: c.Body, Slug: c.Slug,
				PublishedAt: p.PublishedAt,
			})
		}
	}
	return items, nil
}

// Audit, notifications and invoices.

func (s *Store) AppendAudit(_ context.Context, entry *domain.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = int64(len(s.data.audit) + 1)
	entry.CreatedAt = time.Now()
	s.data.audit = append(s.data.audit, *entry)
	return nil
}

func (s *Store) AppendNotification(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = int64(len(s.data.notifications) + 1)
	n.CreatedAt = time.Now()
	s.data.notifications = append(s.data.notifications, *n)
	return nil
}

func (s *Store) CreateInvoice(_ context.Context, inv *domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.invoices {
		if existing.ExternalID == inv.ExternalID {
			return fmt.Errorf("invoices.external_id: %w", ErrUniqueViolation)
		}
	}
	inv.ID = s.nextID()
	inv.CreatedAt = time.Now()
	s.data.invoices[inv.ID] = *inv
	return nil
}

func (s *Store) LockInvoice(_ context.Context, externalID string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.data.invoices {
		if inv.ExternalID == externalID {
			return &inv, nil
		}
	}
	return nil, nil
}

func (s *Store) MarkInvoicePaid(_ context.Context, invoiceID int, paidAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.data.invoices[invoiceID]
	inv.Status = domain.InvoicePaid
	inv.PaidAt = &paidAt
	s.data.invoices[invoiceID] = inv
	return nil
}
