package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	userRepo := newPgxUserRepository(dbPool)
	requestRepo := newPgxRequestRepository(dbPool, userRepo)
	eventRepo := newPgxEventRepository(dbPool)
	cashbookRepo := newPgxCashbookRepository(dbPool, requestRepo)

	return portsrepo.RepositoryProvider{
		UserRepo:     userRepo,
		RequestRepo:  requestRepo,
		EventRepo:    eventRepo,
		CashbookRepo: cashbookRepo,
	}
}
