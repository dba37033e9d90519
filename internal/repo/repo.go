package repo

import (
	"github.com/GlebRadaev/linkmarket/internal/pg"
	auditrepo "github.com/GlebRadaev/linkmarket/internal/repo/audit-repo"
	contentrepo "github.com/GlebRadaev/linkmarket/internal/repo/content-repo"
	invoicerepo "github.com/GlebRadaev/linkmarket/internal/repo/invoice-repo"
	notificationrepo "github.com/GlebRadaev/linkmarket/internal/repo/notification-repo"
	placementrepo "github.com/GlebRadaev/linkmarket/internal/repo/placement-repo"
	siterepo "github.com/GlebRadaev/linkmarket/internal/repo/site-repo"
	transactionrepo "github.com/GlebRadaev/linkmarket/internal/repo/transaction-repo"
	userrepo "github.com/GlebRadaev/linkmarket/internal/repo/user-repo"
)

type Repositories struct {
	UserRepo         *userrepo.Repository
	TransactionRepo  *transactionrepo.Repository
	InvoiceRepo      *invoicerepo.Repository
	SiteRepo         *siterepo.Repository
	ContentRepo      *contentrepo.Repository
	PlacementRepo    *placementrepo.Repository
	AuditRepo        *auditrepo.Repository
	NotificationRepo *notificationrepo.Repository
}

func New(conn pg.Database) *Repositories {
	return &Repositories{
		UserRepo:         userrepo.New(conn),
		TransactionRepo:  transactionrepo.New(conn),
		InvoiceRepo:      invoicerepo.New(conn),
		SiteRepo:         siterepo.New(conn),
		ContentRepo:      contentrepo.New(conn),
		PlacementRepo:    placementrepo.New(conn),
		AuditRepo:        auditrepo.New(conn),
		NotificationRepo: notificationrepo.New(conn),
	}
}
