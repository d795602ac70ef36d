package trade

import (
	"context"

	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/trade"
)

// TransactionScope runs order workflows in a single database transaction.
// Every repository handed to fn shares that transaction, so reads and writes
// inside fn see one consistent connection and commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a transaction. A non-nil error from fn rolls back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories an order workflow touches
type TransactionalRepositories interface {
	Products() catalog.ProductRepository
	Orders() trade.OrderRepository
	Customizations() trade.CustomizationRepository
}

// NoOpTransactionScope calls fn directly with fixed repositories.
// It is meant for unit tests that mock the repositories.
type NoOpTransactionScope struct {
	products       catalog.ProductRepository
	orders         trade.OrderRepository
	customizations trade.CustomizationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	products catalog.ProductRepository,
	orders trade.OrderRepository,
	customizations trade.CustomizationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{products: products, orders: orders, customizations: customizations}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.products }

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() trade.OrderRepository { return s.orders }

// Customizations returns the customization repository
func (s *NoOpTransactionScope) Customizations() trade.CustomizationRepository {
	return s.customizations
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
