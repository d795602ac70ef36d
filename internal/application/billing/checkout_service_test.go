package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/billing"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	catalog.ProductRepository
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	identity.UserRepository
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

// MockCheckoutGateway is a mock implementation of CheckoutGateway
type MockCheckoutGateway struct {
	mock.Mock
}

func (m *MockCheckoutGateway) CreateSession(ctx context.Context, input billing.CheckoutSessionInput) (*billing.CheckoutSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CheckoutSession), args.Error(1)
}

func testUser() *identity.User {
	u := &identity.User{Name: "Sita", Email: "sita@example.com", Role: identity.RoleCustomer}
	u.ID = 7
	u.CreatedAt = time.Now()
	return u
}

func testProduct(id int64, name, price, image string) *catalog.Product {
	p := &catalog.Product{Name: name, Price: decimal.RequireFromString(price), ImageURL: image, Stock: 10}
	p.ID = id
	return p
}

func TestCheckoutService_CreateCheckoutSession(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	users := new(MockUserRepository)
	gateway := new(MockCheckoutGateway)
	svc := NewCheckoutService(products, users, gateway, zap.NewNop())

	users.On("FindByID", ctx, int64(7)).Return(testUser(), nil)
	products.On("FindByID", ctx, int64(1)).Return(testProduct(1, "Rose Bouquet", "1500.50", "https://cdn.example.com/rose.jpg"), nil)
	products.On("FindByID", ctx, int64(2)).Return(testProduct(2, "Tulip Stem", "80.005", ""), nil)
	gateway.On("CreateSession", ctx, billing.CheckoutSessionInput{
		UserID:        7,
		CustomerEmail: "sita@example.com",
		Lines: []billing.CheckoutLine{
			{Name: "Rose Bouquet", ImageURL: "https://cdn.example.com/rose.jpg", UnitAmount: 150050, Quantity: 3},
			{Name: "Tulip Stem", UnitAmount: 8001, Quantity: 1},
		},
	}).Return(&billing.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil)

	resp, err := svc.CreateCheckoutSession(ctx, 7, CreateCheckoutSessionRequest{Items: []CheckoutItemRequest{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 1},
	}})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", resp.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", resp.URL)
	gateway.AssertExpectations(t)
}

func TestCheckoutService_Disabled(t *testing.T) {
	svc := NewCheckoutService(new(MockProductRepository), new(MockUserRepository), nil, nil)

	assert.False(t, svc.Enabled())
	_, err := svc.CreateCheckoutSession(context.Background(), 7, CreateCheckoutSessionRequest{
		Items: []CheckoutItemRequest{{ProductID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrPaymentUnavailable)
}

func TestCheckoutService_MissingProduct(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	users := new(MockUserRepository)
	gateway := new(MockCheckoutGateway)
	svc := NewCheckoutService(products, users, gateway, zap.NewNop())

	users.On("FindByID", ctx, int64(7)).Return(testUser(), nil)
	products.On("FindByID", ctx, int64(5)).Return(nil, shared.ErrNotFound)

	_, err := svc.CreateCheckoutSession(ctx, 7, CreateCheckoutSessionRequest{
		Items: []CheckoutItemRequest{{ProductID: 5, Quantity: 1}},
	})

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "Product with ID 5 not found", err.Error())
	gateway.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestCheckoutService_GatewayError(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	users := new(MockUserRepository)
	gateway := new(MockCheckoutGateway)
	svc := NewCheckoutService(products, users, gateway, zap.NewNop())

	users.On("FindByID", ctx, int64(7)).Return(testUser(), nil)
	products.On("FindByID", ctx, int64(1)).Return(testProduct(1, "Rose Bouquet", "100", ""), nil)
	gateway.On("CreateSession", ctx, mock.Anything).Return(nil, errors.New("stripe down"))

	_, err := svc.CreateCheckoutSession(ctx, 7, CreateCheckoutSessionRequest{
		Items: []CheckoutItemRequest{{ProductID: 1, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe down")
}
