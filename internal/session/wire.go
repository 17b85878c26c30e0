//go:build wireinject
// +build wireinject

package session

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/storefront/internal/session/delivery/http"
	"github.com/tair/storefront/internal/session/domain"
	"github.com/tair/storefront/internal/session/repository"
	"github.com/tair/storefront/internal/session/usecase/command"
	"github.com/tair/storefront/internal/session/usecase/query"
)

// ProvideAccountRepository provides the account repository
func ProvideAccountRepository(db *gorm.DB) domain.AccountRepository {
	return repository.NewGormAccountRepository(db)
}

// ProvideSessionManager provides the manager behind its domain interface
func ProvideSessionManager(manager *Manager) domain.SessionManager {
	return manager
}

// Command Handlers Providers
func ProvideSignInHandler(accounts domain.AccountRepository, manager domain.SessionManager) *command.SignInHandler {
	return command.NewSignInHandler(accounts, manager)
}

func ProvideSignOutHandler(manager domain.SessionManager) *command.SignOutHandler {
	return command.NewSignOutHandler(manager)
}

func ProvideRegisterAccountHandler(accounts domain.AccountRepository) *command.RegisterAccountHandler {
	return command.NewRegisterAccountHandler(accounts)
}

// Query Handlers Providers
func ProvideGetSessionHandler(manager domain.SessionManager) *query.GetSessionHandler {
	return query.NewGetSessionHandler(manager)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideAccountRepository,
	ProvideSessionManager,
)

var CommandHandlerSet = wire.NewSet(
	ProvideSignInHandler,
	ProvideSignOutHandler,
	ProvideRegisterAccountHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetSessionHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeSessionHandler initializes the HTTP handler with all dependencies
func InitializeSessionHandler(db *gorm.DB, manager *Manager) (*httpDelivery.SessionHandler, error) {
	wire.Build(
		AllHandlersSet,
		httpDelivery.NewSessionHandler,
	)
	return nil, nil
}
