package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/infrastructure/cache"
)

func idempotentRouter(store shared.IdempotencyStore, userID int64, handler gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(UserIDKey, userID)
		c.Next()
	})
	router.POST("/orders", Idempotency(IdempotencyConfig{Store: store, Scope: "orders"}), handler)
	return router
}

func postOrder(router http.Handler, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	calls := 0
	router := idempotentRouter(store, 7, func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"order_id": calls})
	})

	first := postOrder(router, "key-1")
	second := postOrder(router, "key-1")

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(IdempotencyReplayedHeader))
	assert.Contains(t, second.Header().Get("Content-Type"), "application/json")
}

func TestIdempotency_KeysAreScopedPerUser(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	calls := 0
	handler := func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	}

	postOrder(idempotentRouter(store, 1, handler), "shared-key")
	postOrder(idempotentRouter(store, 2, handler), "shared-key")

	assert.Equal(t, 2, calls)
}

func TestIdempotency_FailureReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	calls := 0
	router := idempotentRouter(store, 7, func(c *gin.Context) {
		calls++
		if calls == 1 {
			c.JSON(http.StatusBadRequest, gin.H{"code": "INSUFFICIENT_STOCK"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusBadRequest, postOrder(router, "retry").Code)
	assert.Equal(t, http.StatusCreated, postOrder(router, "retry").Code)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_InFlightConflict(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	_, err := store.Reserve(context.Background(), "orders:7:busy", time.Minute)
	require.NoError(t, err)

	router := idempotentRouter(store, 7, func(c *gin.Context) {
		t.Fatal("handler must not run while the key is in flight")
	})

	w := postOrder(router, "busy")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_IN_PROGRESS")
}

func TestIdempotency_NoHeaderPassesThrough(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	calls := 0
	router := idempotentRouter(store, 7, func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	postOrder(router, "")
	postOrder(router, "")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_OversizedKey(t *testing.T) {
	router := idempotentRouter(cache.NewInMemoryIdempotencyStore(), 7, func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := postOrder(router, strings.Repeat("k", maxIdempotencyKeyLength+1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type failingStore struct{ shared.IdempotencyStore }

func (failingStore) Reserve(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func TestIdempotency_StoreErrorFailsOpen(t *testing.T) {
	calls := 0
	router := idempotentRouter(failingStore{}, 7, func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})

	w := postOrder(router, "k")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, calls)
}
