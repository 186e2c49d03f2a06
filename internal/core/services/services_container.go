package services

import (
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// User service first since the other services consult it for the
	// capability checks.
	container.User = NewUserService(repos.UserRepo)

	userReader := container.User.(portssvc.UserReaderSvc)

	container.Request = NewRequestService(repos.RequestRepo, repos.EventRepo, userReader)
	container.Event = NewEventService(repos.EventRepo, userReader)
	container.Cashbook = NewCashbookService(repos.CashbookRepo, repos.RequestRepo, repos.EventRepo, userReader)
	container.Reporting = NewReportingService(repos.EventRepo, repos.RequestRepo, userReader)

	container.TokenService = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
