package placementservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/GlebRadaev/linkmarket/internal/domain"
	"github.com/GlebRadaev/linkmarket/internal/pricing"
	"github.com/GlebRadaev/linkmarket/internal/queue"
	"github.com/GlebRadaev/linkmarket/internal/service/ledgerservice"
	"github.com/GlebRadaev/linkmarket/internal/testutil/memstore"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	jobs []queue.Job
	err  error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, job queue.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	if job.ID == "" {
		return errors.New("job without id")
	}
	job.ID = ""
	d.jobs = append(d.jobs, job)
	return nil
}

func (d *recordingDispatcher) Jobs() []queue.Job {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]queue.Job(nil), d.jobs...)
}

func publishJob(placementID, siteID int) queue.Job {
	return queue.Job{Kind: queue.JobPublish, PlacementID: placementID, SiteID: siteID}
}

func unpublishJob(placementID, siteID, postID int) queue.Job {
	return queue.Job{Kind: queue.JobUnpublish, PlacementID: placementID, SiteID: siteID, PostID: postID}
}

type recordingCache struct {
	mu    sync.Mutex
	sites []int
}

func (c *recordingCache) InvalidateSite(_ context.Context, siteID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sites = append(c.sites, siteID)
}

type fixture struct {
	store      *memstore.Store
	ledger     *ledgerservice.Service
	svc        *Service
	dispatcher *recordingDispatcher
	cache      *recordingCache
	clock      time.Time

	adminID   int
	buyerID   int
	ownerID   int
	siteID    int
	projectID int
	linkID    int
	articleID int
}

func newFixture() *fixture {
	f := &fixture{
		store:      memstore.New(),
		dispatcher: &recordingDispatcher{},
		cache:      &recordingCache{},
		clock:      time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	cfg := pricing.Default()
	f.ledger = ledgerservice.New(f.store, f.store, f.store, f.store, f.store, f.store, cfg)
	f.svc = New(Repos{
		Users:         f.store,
		Sites:         f.store,
		Contents:      f.store,
		Placements:    f.store,
		Audit:         f.store,
		Notifications: f.store,
	}, f.ledger, f.store, cfg, f.dispatcher, f.cache)
	f.svc.now = func() time.Time { return f.clock }

	f.adminID = f.store.AddUser(domain.User{Role: domain.RoleAdmin, Balance: dec("1000")})
	f.buyerID = f.store.AddUser(domain.User{Balance: dec("30")})
	f.ownerID = f.store.AddUser(domain.User{Balance: dec("10")})
	f.siteID = f.store.AddSite(domain.Site{
		OwnerID:              f.ownerID,
		URL:                  "https://blog.example",
		SiteType:             domain.SiteTypeWordPress,
		IsPublic:             true,
		AllowArticles:        true,
		AvailableForPurchase: true,
		MaxLinks:             10,
		MaxArticles:          5,
	})
	f.projectID = f.store.AddProject(domain.Project{UserID: f.buyerID, Name: "shop"})
	f.linkID = f.store.AddContent(domain.Content{ProjectID: f.projectID, Kind: domain.PlacementLink, Title: "Shop", URL: "https://shop.example"})
	f.articleID = f.store.AddContent(domain.Content{ProjectID: f.projectID, Kind: domain.PlacementArticle, Title: "Review", Body: "<p>good</p>"})
	return f
}

func (f *fixture) linkRequest() PurchaseRequest {
	return PurchaseRequest{ProjectID: f.projectID, SiteID: f.siteID, Type: domain.PlacementLink, ContentIDs: []int{f.linkID}}
}

type ServiceSuite struct {
	suite.Suite
	f *fixture
}

func (s *ServiceSuite) SetupTest() {
	s.f = newFixture()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) assertLedgerConsistent(userIDs ...int) {
	for _, id := range userIDs {
		report, err := s.f.ledger.VerifyLedger(context.Background(), id)
		s.Require().NoError(err)
		s.True(report.Consistent, "user %d: balance %s, replayed %s", id, report.Balance, report.Replayed)
	}
}

func (s *ServiceSuite) TestPurchaseThenAdminDeleteRestoresBalance() {
	ctx := context.Background()

	res, err := s.f.svc.Purchase(ctx, s.f.buyerID, s.f.linkRequest())
	s.Require().NoError(err)
	s.True(dec("5").Equal(res.Balance))
	s.Equal(domain.StatusPendingApproval, res.Placement.Status)
	s.True(dec("25").Equal(res.Placement.FinalPrice))
	s.Require().NotNil(res.Placement.ExpiresAt)
	s.Equal(s.f.clock.Add(365*24*time.Hour), *res.Placement.ExpiresAt)
	s.True(dec("17.5").Equal(res.Placement.RenewalPrice))

	s.Equal(1, s.f.store.Site(s.f.siteID).UsedLinks)
	s.Equal(1, s.f.store.Content(s.f.linkID).UsageCount)
	s.Equal(domain.ContentExhausted, s.f.store.Content(s.f.linkID).Status)
	s.Empty(s.f.dispatcher.Jobs())
	s.Contains(s.f.cache.sites, s.f.siteID)

	notes := s.f.store.Notifications()
	s.Require().Len(notes, 1)
	s.Nil(notes[0].UserID)
	s.Equal("placement_pending_approval", notes[0].Type)

	removed, err := s.f.svc.DeleteAndRefund(ctx, s.f.adminID, res.Placement.ID)
	s.Require().NoError(err)
	s.True(removed.Refunded)
	s.Equal(s.f.buyerID, removed.UserID)
	s.True(dec("30").Equal(removed.Balance))

	buyer := s.f.store.User(s.f.buyerID)
	s.True(dec("30").Equal(buyer.Balance))
	s.True(buyer.TotalSpent.IsZero())
	s.True(dec("1000").Equal(s.f.store.User(s.f.adminID).Balance))
	s.Equal(0, s.f.store.Site(s.f.siteID).UsedLinks)
	s.Equal(0, s.f.store.Content(s.f.linkID).UsageCount)
	s.Equal(domain.ContentActive, s.f.store.Content(s.f.linkID).Status)

	_, exists := s.f.store.Placement(res.Placement.ID)
	s.False(exists)

	audit := s.f.store.Audit()
	s.Require().Len(audit, 1)
	s.Equal("placement_admin_delete", audit[0].Action)
	s.Equal(s.f.adminID, audit[0].ActorID)

	s.assertLedgerConsistent(s.f.buyerID, s.f.adminID)
}

func (s *ServiceSuite) TestPurchaseValidation() {
	past := s.f.clock.Add(-time.Hour)
	farAway := s.f.clock.Add(91 * 24 * time.Hour)

	otherID := s.f.store.AddUser(domain.User{Balance: dec("100")})
	otherProject := s.f.store.AddProject(domain.Project{UserID: otherID})
	privateSite := s.f.store.AddSite(domain.Site{OwnerID: s.f.ownerID, AvailableForPurchase: true, MaxLinks: 5})
	closedSite := s.f.store.AddSite(domain.Site{OwnerID: s.f.ownerID, IsPublic: true, MaxLinks: 5})
	staticSite := s.f.store.AddSite(domain.Site{OwnerID: s.f.ownerID, IsPublic: true, AvailableForPurchase: true,
		SiteType: domain.SiteTypeStatic, AllowArticles: true, MaxLinks: 5, MaxArticles: 5})
	fullSite := s.f.store.AddSite(domain.Site{OwnerID: s.f.ownerID, IsPublic: true, AvailableForPurchase: true, MaxLinks: 2, UsedLinks: 2})
	foreignContent := s.f.store.AddContent(domain.Content{ProjectID: otherProject, Kind: domain.PlacementLink})
	usedContent := s.f.store.AddContent(domain.Content{ProjectID: s.f.projectID, Kind: domain.PlacementLink, UsageCount: 1})
	poorID := s.f.store.AddUser(domain.User{Balance: dec("24.99")})
	poorProject := s.f.store.AddProject(domain.Project{UserID: poorID})
	poorContent := s.f.store.AddContent(domain.Content{ProjectID: poorProject, Kind: domain.PlacementLink})

	tests := []struct {
		name   string
		userID int
		mutate func(r *PurchaseRequest)
		kind   domain.Kind
	}{
		{"Unknown type", 0, func(r *PurchaseRequest) { r.Type = "banner" }, domain.KindValidation},
		{"No content", 0, func(r *PurchaseRequest) { r.ContentIDs = nil }, domain.KindValidation},
		{"Two contents", 0, func(r *PurchaseRequest) { r.ContentIDs = []int{s.f.linkID, usedContent} }, domain.KindValidation},
		{"Scheduled in the past", 0, func(r *PurchaseRequest) { r.ScheduledDate = &past }, domain.KindValidation},
		{"Scheduled too far", 0, func(r *PurchaseRequest) { r.ScheduledDate = &farAway }, domain.KindValidation},
		{"Unknown user", 4242, func(r *PurchaseRequest) {}, domain.KindNotFound},
		{"Unknown project", 0, func(r *PurchaseRequest) { r.ProjectID = 4242 }, domain.KindNotFound},
		{"Foreign project", 0, func(r *PurchaseRequest) { r.ProjectID = otherProject }, domain.KindUnauthorized},
		{"Unknown site", 0, func(r *PurchaseRequest) { r.SiteID = 4242 }, domain.KindNotFound},
		{"Private site", 0, func(r *PurchaseRequest) { r.SiteID = privateSite }, domain.KindUnauthorized},
		{"Closed site", 0, func(r *PurchaseRequest) { r.SiteID = closedSite }, domain.KindInvalidState},
		{"Article on static site", 0, func(r *PurchaseRequest) {
			r.SiteID, r.Type, r.ContentIDs = staticSite, domain.PlacementArticle, []int{s.f.articleID}
		}, domain.KindValidation},
		{"Site quota exhausted", 0, func(r *PurchaseRequest) { r.SiteID = fullSite }, domain.KindQuotaExceeded},
		{"Unknown content", 0, func(r *PurchaseRequest) { r.ContentIDs = []int{4242} }, domain.KindNotFound},
		{"Foreign content", 0, func(r *PurchaseRequest) { r.ContentIDs = []int{foreignContent} }, domain.KindValidation},
		{"Content of another kind", 0, func(r *PurchaseRequest) { r.ContentIDs = []int{s.f.articleID} }, domain.KindValidation},
		{"Content exhausted", 0, func(r *PurchaseRequest) { r.ContentIDs = []int{usedContent} }, domain.KindQuotaExceeded},
		{"Insufficient funds", poorID, func(r *PurchaseRequest) {
			r.ProjectID, r.ContentIDs = poorProject, []int{poorContent}
		}, domain.KindInsufficientFunds},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			userID := tt.userID
			if userID == 0 {
				userID = s.f.buyerID
			}
			req := s.f.linkRequest()
			tt.mutate(&req)

			_, err := s.f.svc.Purchase(context.Background(), userID, req)
			s.Require().Error(err)
			s.Equal(tt.kind, domain.KindOf(err), err.Error())
			s.True(dec("30").Equal(s.f.store.User(s.f.buyerID).Balance))
			s.Empty(s.f.store.Placements())
		})
	}
}

func (s *ServiceSuite) TestDuplicateActivePlacement() {
	ctx := context.Background()
	s.f.store.AddContent(domain.Content{ID: 900, ProjectID: s.f.projectID, Kind: domain.PlacementLink})

	_, err := s.f.svc.Purchase(ctx, s.f.buyerID, s.f.linkRequest())
	s.Require().NoError(err)

	req := s.f.linkRequest()
	req.ContentIDs = []int{900}
	_, err = s.f.svc.Purchase(ctx, s.f.buyerID, req)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.True(dec("5").Equal(s.f.store.User(s.f.buyerID).Balance))
}

func (s *ServiceSuite) TestPurchaseStatuses() {
	ctx := context.Background()
	ownerProject := s.f.store.AddProject(domain.Project{UserID: s.f.ownerID})
	ownerLink := s.f.store.AddContent(domain.Content{ProjectID: ownerProject, Kind: domain.PlacementLink})

	res, err := s.f.svc.Purchase(ctx, s.f.ownerID, PurchaseRequest{
		ProjectID: ownerProject, SiteID: s.f.siteID, Type: domain.PlacementLink, ContentIDs: []int{ownerLink},
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, res.Placement.Status)
	s.True(dec("0.10").Equal(res.Placement.FinalPrice))
	s.True(dec("0.10").Equal(res.Placement.RenewalPrice))
	s.True(dec("9.90").Equal(res.Balance))
	s.Equal([]queue.Job{publishJob(res.Placement.ID, s.f.siteID)}, s.f.dispatcher.Jobs())

	adminProject := s.f.store.AddProject(domain.Project{UserID: s.f.adminID})
	adminArticle := s.f.store.AddContent(domain.Content{ProjectID: adminProject, Kind: domain.PlacementArticle})
	when := s.f.clock.Add(48 * time.Hour)
	res, err = s.f.svc.Purchase(ctx, s.f.adminID, PurchaseRequest{
		ProjectID: adminProject, SiteID: s.f.siteID, Type: domain.PlacementArticle,
		ContentIDs: []int{adminArticle}, ScheduledDate: &when,
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusScheduled, res.Placement.Status)
	s.True(dec("15").Equal(res.Placement.FinalPrice))
	s.Nil(res.Placement.ExpiresAt)
	s.Len(s.f.dispatcher.Jobs(), 1)
}

func (s *ServiceSuite) TestQuotaRace() {
	ctx := context.Background()
	site := s.f.store.AddSite(domain.Site{OwnerID: s.f.ownerID, IsPublic: true, AvailableForPurchase: true, MaxLinks: 1})

	const buyers = 2
	reqs := make([]PurchaseRequest, buyers)
	ids := make([]int, buyers)
	for i := range reqs {
		ids[i] = s.f.store.AddUser(domain.User{Balance: dec("100")})
		project := s.f.store.AddProject(domain.Project{UserID: ids[i]})
		content := s.f.store.AddContent(domain.Content{ProjectID: project, Kind: domain.PlacementLink})
		reqs[i] = PurchaseRequest{ProjectID: project, SiteID: site, Type: domain.PlacementLink, ContentIDs: []int{content}}
	}

	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.f.svc.Purchase(ctx, ids[i], reqs[i])
		}(i)
	}
	wg.Wait()

	var ok, exceeded int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case domain.KindOf(err) == domain.KindQuotaExceeded:
			exceeded++
		}
	}
	s.Equal(1, ok)
	s.Equal(1, exceeded)
	s.Equal(1, s.f.store.Site(site).UsedLinks)

	total := decimal.Zero
	for _, id := range ids {
		total = total.Add(s.f.store.User(id).Balance)
	}
	s.True(dec("175").Equal(total))
	s.assertLedgerConsistent(ids...)
}

func (s *ServiceSuite) TestRefundIsReversible() {
	ctx := context.Background()
	buyerBefore := s.f.store.User(s.f.buyerID)
	siteBefore := s.f.store.Site(s.f.siteID)
	contentBefore := s.f.store.Content(s.f.articleID)

	res, err := s.f.svc.Purchase(ctx, s.f.buyerID, PurchaseRequest{
		ProjectID: s.f.projectID, SiteID: s.f.siteID, Type: domain.PlacementArticle, ContentIDs: []int{s.f.articleID},
	})
	s.Require().NoError(err)

	_, err = s.f.svc.Refund(ctx, s.f.ownerID, res.Placement.ID)
	s.ErrorIs(err, domain.ErrUnauthorized)

	refund, err := s.f.svc.Refund(ctx, s.f.buyerID, res.Placement.ID)
	s.Require().NoError(err)
	s.True(dec("15").Equal(refund.Amount))

	s.Equal(buyerBefore.Balance.String(), s.f.store.User(s.f.buyerID).Balance.String())
	s.True(buyerBefore.TotalSpent.Equal(s.f.store.User(s.f.buyerID).TotalSpent))
	s.Equal(buyerBefore.CurrentDiscount, s.f.store.User(s.f.buyerID).CurrentDiscount)
	s.Equal(siteBefore, s.f.store.Site(s.f.siteID))
	s.Equal(contentBefore, s.f.store.Content(s.f.articleID))
	s.Empty(s.f.store.Placements())

	_, err = s.f.svc.Refund(ctx, s.f.buyerID, res.Placement.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	s.assertLedgerConsistent(s.f.buyerID)
}

func (s *ServiceSuite) TestTierFollowsRefund() {
	ctx := context.Background()
	id := s.f.store.AddUser(domain.User{Balance: dec("100"), TotalSpent: dec("790")})
	project := s.f.store.AddProject(domain.Project{UserID: id})
	content := s.f.store.AddContent(domain.Content{ProjectID: project, Kind: domain.PlacementLink})

	res, err := s.f.svc.Purchase(ctx, id, PurchaseRequest{ProjectID: project, SiteID: s.f.siteID, Type: domain.PlacementLink, ContentIDs: []int{content}})
	s.Require().NoError(err)
	s.True(res.TierChanged)
	s.Equal(10, s.f.store.User(id).CurrentDiscount)

	refund, err := s.f.svc.Refund(ctx, id, res.Placement.ID)
	s.Require().NoError(err)
	s.True(refund.TierChanged)
	user := s.f.store.User(id)
	s.Equal(0, user.CurrentDiscount)
	s.True(dec("790").Equal(user.TotalSpent))
	s.True(dec("100").Equal(user.Balance))

	view, err := s.f.svc.GetPricingForUser(ctx, id)
	s.Require().NoError(err)
	s.Equal("Standard", view.Tier)
	s.Require().NotNil(view.NextTier)
	s.True(dec("10").Equal(view.NextTier.Remaining))
	s.True(dec("25").Equal(view.Link.Final))
	s.True(dec("17.5").Equal(view.Renewal.Final))
}

func (s *ServiceSuite) TestChargeMatchesQuoteWithStaleDiscount() {
	ctx := context.Background()
	id := s.f.store.AddUser(domain.User{Balance: dec("100"), TotalSpent: dec("900"), CurrentDiscount: 0})
	project := s.f.store.AddProject(domain.Project{UserID: id})
	content := s.f.store.AddContent(domain.Content{ProjectID: project, Kind: domain.PlacementLink})

	view, err := s.f.svc.GetPricingForUser(ctx, id)
	s.Require().NoError(err)
	s.Equal(10, view.Discount)

	res, err := s.f.svc.Purchase(ctx, id, PurchaseRequest{ProjectID: project, SiteID: s.f.siteID, Type: domain.PlacementLink, ContentIDs: []int{content}})
	s.Require().NoError(err)
	s.Equal(10, res.Placement.DiscountApplied)
	s.True(view.Link.Final.Equal(res.Placement.FinalPrice))
	s.True(view.Renewal.Final.Equal(res.Placement.RenewalPrice))
	s.True(dec("100").Sub(view.Link.Final).Equal(s.f.store.User(id).Balance))
	s.assertLedgerConsistent(id)
}

func (s *ServiceSuite) TestModeration() {
	ctx := context.Background()

	res, err := s.f.svc.Purchase(ctx, s.f.buyerID, s.f.linkRequest())
	s.Require().NoError(err)

	_, err = s.f.svc.Approve(ctx, s.f.buyerID, res.Placement.ID)
	s.ErrorIs(err, domain.ErrUnauthorized)

	approved, err := s.f.svc.Approve(ctx, s.f.adminID, res.Placement.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, approved.Status)
	s.Equal([]queue.Job{publishJob(res.Placement.ID, s.f.siteID)}, s.f.dispatcher.Jobs())

	_, err = s.f.svc.Reject(ctx, s.f.adminID, res.Placement.ID, "")
	s.ErrorIs(err, domain.ErrInvalidState)

	_, err = s.f.ledger.Deposit(ctx, s.f.buyerID, dec("20"), "top up")
	s.Require().NoError(err)
	article, err := s.f.svc.Purchase(ctx, s.f.buyerID, PurchaseRequest{
		ProjectID: s.f.projectID, SiteID: s.f.siteID, Type: domain.PlacementArticle, ContentIDs: []int{s.f.articleID},
	})
	s.Require().NoError(err)
	s.True(dec("10").Equal(article.Balance))

	rejected, err := s.f.svc.Reject(ctx, s.f.adminID, article.Placement.ID, "")
	s.Require().NoError(err)
	s.True(rejected.Refunded)

	p, ok := s.f.store.Placement(article.Placement.ID)
	s.Require().True(ok)
	s.Equal(domain.StatusRejected, p.Status)
	s.Equal("Rejected by moderator", p.RejectionReason)
	s.Equal(0, s.f.store.Site(s.f.siteID).UsedArticles)
	s.Equal(0, s.f.store.Content(s.f.articleID).UsageCount)
	s.True(dec("25").Equal(s.f.store.User(s.f.buyerID).Balance))

	_, err = s.f.svc.Refund(ctx, s.f.buyerID, article.Placement.ID)
	s.ErrorIs(err, domain.ErrInvalidState)

	again, err := s.f.svc.Purchase(ctx, s.f.buyerID, PurchaseRequest{
		ProjectID: s.f.projectID, SiteID: s.f.siteID, Type: domain.PlacementArticle, ContentIDs: []int{s.f.articleID},
	})
	s.Require().NoError(err)
	s.Equal(domain.StatusPendingApproval, again.Placement.Status)
	s.assertLedgerConsistent(s.f.buyerID)
}

func (s *ServiceSuite) TestApproveKeepsFutureSchedule() {
	ctx := context.Background()
	when := s.f.clock.Add(72 * time.Hour)
	req := s.f.linkRequest()
	req.ScheduledDate = &when

	res, err := s.f.svc.Purchase(ctx, s.f.buyerID, req)
	s.Require().NoError(err)

	approved, err := s.f.svc.Approve(ctx, s.f.adminID, res.Placement.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusScheduled, approved.Status)
	s.Empty(s.f.dispatcher.Jobs())

	s.f.clock = when.Add(time.Minute)
	tick, err := s.f.svc.Tick(ctx, 10)
	s.Require().NoError(err)
	s.Equal(1, tick.Published)

	p, _ := s.f.store.Placement(res.Placement.ID)
	s.Equal(domain.StatusPending, p.Status)
	s.Equal([]queue.Job{publishJob(p.ID, s.f.siteID)}, s.f.dispatcher.Jobs())
}

func (s *ServiceSuite) TestPublicationFailureAndRetry() {
	ctx := context.Background()
	s.f.dispatcher.err = context.DeadlineExceeded

	project := s.f.store.AddProject(domain.Project{UserID: s.f.adminID})
	content := s.f.store.AddContent(domain.Content{ProjectID: project, Kind: domain.PlacementLink})
	res, err := s.f.svc.Purchase(ctx, s.f.adminID, PurchaseRequest{
		ProjectID: project, SiteID: s.f.siteID, Type: domain.PlacementLink, ContentIDs: []int{content},
	})
	s.Require().NoError(err)

	p, _ := s.f.store.Placement(res.Placement.ID)
	s.Equal(domain.StatusFailed, p.Status)
	s.Contains(p.FailureReason, "handoff")
	s.True(dec("975").Equal(s.f.store.User(s.f.adminID).Balance))

	notes := s.f.store.Notifications()
	s.Require().NotEmpty(notes)
	s.Equal("publication_failed", notes[len(notes)-1].Type)
	s.Nil(notes[len(notes)-1].UserID)

	s.f.dispatcher.err = nil
	_, err = s.f.svc.RetryPublication(ctx, s.f.buyerID, p.ID)
	s.ErrorIs(err, domain.ErrUnauthorized)

	retried, err := s.f.svc.RetryPublication(ctx, s.f.adminID, p.ID)
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, retried.Status)
	s.Empty(retried.FailureReason)
	s.Equal([]queue.Job{publishJob(p.ID, s.f.siteID)}, s.f.dispatcher.Jobs())

	_, err = s.f.svc.RetryPublication(ctx, s.f.adminID, p.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
}

// placeLink buys a link as the site owner and marks it published.
func (s *ServiceSuite) placeLink(userID, projectID int, autoRenewal bool) domain.Placement {
	ctx := context.Background()
	content := s.f.store.AddContent(domain.Content{ProjectID: projectID, Kind: domain.PlacementLink})
	res, err := s.f.svc.Purchase(ctx, userID, PurchaseRequest{
		ProjectID: projectID, SiteID: s.f.siteID, Type: domain.PlacementLink, ContentIDs: []int{content}, AutoRenewal: autoRenewal,
	})
	s.Require().NoError(err)
	if res.Placement.Status == domain.StatusPendingApproval {
		_, err = s.f.svc.Approve(ctx, s.f.adminID, res.Placement.ID)
		s.Require().NoError(err)
	}
	postID := 77
	placed, err := s.f.svc.CompletePublication(ctx, res.Placement.ID, &postID)
	s.Require().NoError(err)
	s.Require().True(placed)

	p, _ := s.f.store.Placement(res.Placement.ID)
	s.Require().Equal(domain.StatusPlaced, p.Status)
	return p
}

func (s *ServiceSuite) TestRenewExtendsFromCurrentExpiry() {
	ctx := context.Background()
	_, err := s.f.ledger.Deposit(ctx, s.f.buyerID, dec("20"), "top up")
	s.Require().NoError(err)

	p := s.placeLink(s.f.buyerID, s.f.projectID, false)
	s.Equal(77, *p.WordPressPostID)
	oldExpiry := *p.ExpiresAt

	s.f.clock = s.f.clock.Add(100 * 24 * time.Hour)
	res, err := s.f.svc.Renew(ctx, s.f.buyerID, p.ID)
	s.Require().NoError(err)
	s.True(dec("17.5").Equal(res.Price))
	s.True(dec("7.5").Equal(res.Balance))
	s.Equal(oldExpiry.Add(365*24*time.Hour), *res.Placement.ExpiresAt)
	s.Equal(1, res.Placement.RenewalCount)

	renewals := s.f.store.Renewals()
	s.Require().Len(renewals, 1)
	s.False(renewals[0].Auto)
	s.Equal(oldExpiry, *renewals[0].OldExpiresAt)

	txs := s.f.store.Transactions(s.f.buyerID)
	s.Equal(domain.TransactionRenewal, txs[len(txs)-1].Kind)

	_, err = s.f.svc.Renew(ctx, s.f.buyerID, p.ID)
	s.ErrorIs(err, domain.ErrInsufficientFunds)
	s.Len(s.f.store.Renewals(), 1)

	_, err = s.f.svc.Renew(ctx, s.f.ownerID, p.ID)
	s.ErrorIs(err, domain.ErrUnauthorized)
	s.assertLedgerConsistent(s.f.buyerID)
}

func (s *ServiceSuite) TestRenewRejectsNonPlaced() {
	ctx := context.Background()
	res, err := s.f.svc.Purchase(ctx, s.f.buyerID, s.f.linkRequest())
	s.Require().NoError(err)

	_, err = s.f.svc.Renew(ctx, s.f.buyerID, res.Placement.ID)
	s.ErrorIs(err, domain.ErrInvalidState)

	_, err = s.f.svc.ToggleAutoRenewal(ctx, s.f.buyerID, res.Placement.ID, true)
	s.Require().NoError(err)
	p, _ := s.f.store.Placement(res.Placement.ID)
	s.True(p.AutoRenewal)
}

func (s *ServiceSuite) TestAutoRenewalAndExpiry() {
	ctx := context.Background()
	renewing := s.placeLink(s.f.adminID, s.f.store.AddProject(domain.Project{UserID: s.f.adminID}), true)

	poorProject := s.f.store.AddProject(domain.Project{UserID: s.f.buyerID})
	lapsing := s.placeLink(s.f.buyerID, poorProject, true)
	s.True(dec("5").Equal(s.f.store.User(s.f.buyerID).Balance))

	s.f.clock = lapsing.ExpiresAt.Add(-time.Hour)
	tick, err := s.f.svc.Tick(ctx, 10)
	s.Require().NoError(err)
	s.Equal(1, tick.Renewed)
	s.Equal(1, tick.Failed)
	s.Equal(0, tick.Expired)

	renewed, _ := s.f.store.Placement(renewing.ID)
	s.Equal(renewing.ExpiresAt.Add(365*24*time.Hour), *renewed.ExpiresAt)
	txs := s.f.store.Transactions(s.f.adminID)
	s.Equal(domain.TransactionAutoRenewal, txs[len(txs)-1].Kind)

	var failedNote bool
	for _, n := range s.f.store.Notifications() {
		if n.Type == "auto_renewal_failed" && n.UserID != nil && *n.UserID == s.f.buyerID {
			failedNote = true
		}
	}
	s.True(failedNote)

	usedBefore := s.f.store.Site(s.f.siteID).UsedLinks
	s.f.clock = lapsing.ExpiresAt.Add(time.Hour)
	tick, err = s.f.svc.Tick(ctx, 10)
	s.Require().NoError(err)
	s.Equal(1, tick.Expired)

	expired, _ := s.f.store.Placement(lapsing.ID)
	s.Equal(domain.StatusExpired, expired.Status)
	s.Equal(usedBefore-1, s.f.store.Site(s.f.siteID).UsedLinks)
	s.True(dec("5").Equal(s.f.store.User(s.f.buyerID).Balance))
	s.Contains(s.f.dispatcher.Jobs(), unpublishJob(lapsing.ID, s.f.siteID, 77))

	_, err = s.f.svc.Refund(ctx, s.f.buyerID, lapsing.ID)
	s.ErrorIs(err, domain.ErrInvalidState)
	s.assertLedgerConsistent(s.f.buyerID, s.f.adminID)
}

func (s *ServiceSuite) TestFailedAutoRenewalNotifiesOnce() {
	ctx := context.Background()
	poorProject := s.f.store.AddProject(domain.Project{UserID: s.f.buyerID})
	lapsing := s.placeLink(s.f.buyerID, poorProject, true)

	start := lapsing.ExpiresAt.Add(-2 * time.Hour)
	for i := 0; i < 60; i++ {
		s.f.clock = start.Add(time.Duration(i) * time.Minute)
		tick, err := s.f.svc.Tick(ctx, 10)
		s.Require().NoError(err)
		s.Equal(1, tick.Failed)
	}

	var notes int
	for _, n := range s.f.store.Notifications() {
		if n.Type == "auto_renewal_failed" && n.UserID != nil && *n.UserID == s.f.buyerID {
			notes++
		}
	}
	s.Equal(1, notes)

	stored, _ := s.f.store.Placement(lapsing.ID)
	s.Require().NotNil(stored.RenewalFailedFor)
	s.True(stored.RenewalFailedFor.Equal(*lapsing.ExpiresAt))
	s.True(stored.AutoRenewal)
	s.True(dec("5").Equal(s.f.store.User(s.f.buyerID).Balance))
}

func (s *ServiceSuite) TestUnpublishFailedNotifiesAdmins() {
	s.Require().NoError(s.f.svc.UnpublishFailed(context.Background(), 12, s.f.siteID, 77, "connection refused"))

	var found bool
	for _, n := range s.f.store.Notifications() {
		if n.Type == "unpublish_failed" {
			found = true
			s.Nil(n.UserID)
			s.Equal(77, n.Metadata["post_id"])
		}
	}
	s.True(found)
}

func (s *ServiceSuite) TestDeletePlacedUnpublishes() {
	ctx := context.Background()
	p := s.placeLink(s.f.buyerID, s.f.projectID, false)

	res, err := s.f.svc.DeleteAndRefund(ctx, s.f.adminID, p.ID)
	s.Require().NoError(err)
	s.True(res.Refunded)
	s.Contains(s.f.dispatcher.Jobs(), unpublishJob(p.ID, s.f.siteID, 77))

	placed, err := s.f.svc.CompletePublication(ctx, p.ID, nil)
	s.Require().NoError(err)
	s.False(placed)
}

func (s *ServiceSuite) TestMoneyIsConserved() {
	ctx := context.Background()
	users := []int{s.f.adminID, s.f.buyerID, s.f.ownerID}
	total := func() decimal.Decimal {
		sum := decimal.Zero
		for _, id := range users {
			sum = sum.Add(s.f.store.User(id).Balance)
		}
		for _, p := range s.f.store.Placements() {
			if p.Status.Refundable() {
				sum = sum.Add(p.FinalPrice)
			}
		}
		return sum
	}
	start := total()

	a := s.placeLink(s.f.adminID, s.f.store.AddProject(domain.Project{UserID: s.f.adminID}), false)
	s.True(start.Equal(total()))

	b, err := s.f.svc.Purchase(ctx, s.f.buyerID, s.f.linkRequest())
	s.Require().NoError(err)
	s.True(start.Equal(total()))

	_, err = s.f.svc.Reject(ctx, s.f.adminID, b.Placement.ID, "spam")
	s.Require().NoError(err)
	s.True(start.Equal(total()))

	_, err = s.f.svc.Refund(ctx, s.f.adminID, a.ID)
	s.Require().NoError(err)
	s.True(start.Equal(total()))
	s.assertLedgerConsistent(users...)
}
