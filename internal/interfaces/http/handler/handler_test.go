package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/buneko/backend/internal/application/background"
	catalogapp "github.com/buneko/backend/internal/application/catalog"
	marketingapp "github.com/buneko/backend/internal/application/marketing"
	"github.com/buneko/backend/internal/application/report"
	apptrade "github.com/buneko/backend/internal/application/trade"
	"github.com/buneko/backend/internal/domain/catalog"
	"github.com/buneko/backend/internal/domain/identity"
	"github.com/buneko/backend/internal/infrastructure/persistence"
	"github.com/buneko/backend/internal/infrastructure/storage"
	"github.com/buneko/backend/internal/interfaces/http/middleware"
	"github.com/buneko/backend/tests/testutil"
)

const (
	testUserHeader = "X-Test-User"
	testRoleHeader = "X-Test-Role"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// storeEnv serves the storefront handlers over an in-memory database
type storeEnv struct {
	db       *gorm.DB
	engine   *gin.Engine
	customer *identity.User
	other    *identity.User
	admin    *identity.User
	category *catalog.Category
}

// impersonate stands in for JWT auth, reading the caller from test headers
func impersonate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			c.Set(middleware.UserIDKey, id)
			c.Set(middleware.UserRoleKey, identity.Role(c.GetHeader(testRoleHeader)))
		}
		c.Next()
	}
}

func newStoreEnv(t *testing.T) *storeEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t, persistence.Models()...)
	tasks := background.NewRunner(zap.NewNop(), background.Synchronous())
	media := storage.NewDisabledMediaStore()

	categories := persistence.NewGormCategoryRepository(db)
	products := persistence.NewGormProductRepository(db)
	orders := persistence.NewGormOrderRepository(db)
	customizations := persistence.NewGormCustomizationRepository(db)
	users := persistence.NewGormUserRepository(db)
	wishlist := persistence.NewGormWishlistRepository(db)
	scope := persistence.NewGormTransactionScope(db)

	orderHandler := NewOrderHandler(apptrade.NewOrderService(orders, scope, tasks, nil))
	customizationHandler := NewCustomizationHandler(apptrade.NewCustomizationService(customizations, scope, tasks, nil))
	productHandler := NewProductHandler(catalogapp.NewProductService(products, categories, media, tasks, nil))
	categoryHandler := NewCategoryHandler(catalogapp.NewCategoryService(categories, media, tasks, nil))
	wishlistHandler := NewWishlistHandler(catalogapp.NewWishlistService(wishlist, products))
	contentHandler := NewContentHandler(marketingapp.NewContentService(persistence.NewGormContentRepository(db), nil))
	dashboardHandler := NewDashboardHandler(report.NewDashboardService(products, orders, users, wishlist))

	engine := gin.New()
	engine.Use(impersonate())
	admin := middleware.RequireAdmin()

	engine.GET("/categories", categoryHandler.List)
	engine.GET("/categories/:id", categoryHandler.Get)
	engine.POST("/categories", admin, categoryHandler.Create)
	engine.DELETE("/categories/:id", admin, categoryHandler.Delete)

	engine.GET("/products", productHandler.List)
	engine.GET("/products/category/:categoryId", productHandler.ListByCategory)
	engine.GET("/products/:id", productHandler.Get)
	engine.POST("/products", admin, productHandler.Create)
	engine.PUT("/products/:id", admin, productHandler.Update)
	engine.DELETE("/products/:id", admin, productHandler.Delete)

	engine.GET("/wishlist", wishlistHandler.List)
	engine.POST("/wishlist", wishlistHandler.Add)
	engine.DELETE("/wishlist/:productId", wishlistHandler.Remove)

	engine.GET("/orders", admin, orderHandler.List)
	engine.GET("/orders/my-orders", orderHandler.MyOrders)
	engine.GET("/orders/:id", orderHandler.Get)
	engine.POST("/orders", orderHandler.Create)
	engine.PATCH("/orders/:id/status", admin, orderHandler.UpdateStatus)
	engine.PATCH("/orders/:id/cancel", orderHandler.Cancel)

	engine.GET("/customizations/my-customizations", customizationHandler.Mine)
	engine.GET("/customizations", admin, customizationHandler.List)
	engine.GET("/customizations/:id", customizationHandler.Get)
	engine.POST("/customizations", customizationHandler.Create)
	engine.PATCH("/customizations/:id/status", admin, customizationHandler.UpdateStatus)
	engine.POST("/customizations/:id/create-order", admin, customizationHandler.CreateOrder)
	engine.POST("/customizations/:id/complete-order", customizationHandler.CompleteOrder)

	engine.GET("/contents", contentHandler.List)
	engine.GET("/contents/:id", contentHandler.Get)
	engine.POST("/contents", admin, contentHandler.Create)
	engine.PUT("/contents/:id", admin, contentHandler.Update)
	engine.DELETE("/contents/:id", admin, contentHandler.Delete)

	engine.GET("/dashboard/admin", admin, dashboardHandler.Admin)
	engine.GET("/dashboard/customer", dashboardHandler.Customer)

	env := &storeEnv{db: db, engine: engine}
	env.customer = env.user(t, "Sita", "sita@example.com", identity.RoleCustomer)
	env.other = env.user(t, "Ram", "ram@example.com", identity.RoleCustomer)
	env.admin = env.user(t, "Admin", "admin@example.com", identity.RoleAdmin)
	env.category = &catalog.Category{Name: "Bouquets"}
	require.NoError(t, db.Create(env.category).Error)
	return env
}

func (e *storeEnv) user(t *testing.T, name, email string, role identity.Role) *identity.User {
	t.Helper()
	u := &identity.User{Name: name, Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *storeEnv) product(t *testing.T, name string, price int64, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:       name,
		Price:      decimal.NewFromInt(price),
		CategoryID: e.category.ID,
		Stock:      stock,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *storeEnv) stockOf(t *testing.T, id int64) int {
	t.Helper()
	p, err := persistence.NewGormProductRepository(e.db).FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

// do sends a JSON request as user (nil for anonymous)
func (e *storeEnv) do(t *testing.T, method, path string, user *identity.User, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, testutil.ToJSONReader(t, body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != nil {
		req.Header.Set(testUserHeader, strconv.FormatInt(user.ID, 10))
		req.Header.Set(testRoleHeader, string(user.Role))
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &out), w.Body.String())
	return out
}

func resource(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}

func orderBody(items ...apptrade.OrderLineRequest) apptrade.CreateOrderRequest {
	return apptrade.CreateOrderRequest{
		Items: items,
		ShippingRequest: apptrade.ShippingRequest{
			ShippingAddress: "Thamel, Kathmandu",
			Phone:           "+977 9800000000",
		},
	}
}

func line(productID int64, qty int) apptrade.OrderLineRequest {
	return apptrade.OrderLineRequest{ProductID: productID, Quantity: qty}
}

func (e *storeEnv) placeOrder(t *testing.T, user *identity.User, items ...apptrade.OrderLineRequest) apptrade.OrderResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/orders", user, orderBody(items...))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[apptrade.OrderResponse](t, w)
}
