package middleware

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/buneko/backend/internal/domain/shared"
	"github.com/buneko/backend/internal/interfaces/http/dto"
)

// Idempotency headers
const (
	IdempotencyKeyHeader      = "Idempotency-Key"
	IdempotencyReplayedHeader = "Idempotent-Replayed"
	maxIdempotencyKeyLength   = 255
	defaultIdempotencyTTL     = 24 * time.Hour
)

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store shared.IdempotencyStore
	// Scope namespaces keys, e.g. "orders"
	Scope  string
	TTL    time.Duration
	Logger *zap.Logger
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key the same user already sent. Only 2xx outcomes are kept;
// a failed attempt releases the key so the client can retry. Requests
// without the header pass through. It must run after JWTAuth.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg.Store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInvalidInput, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		userID, _ := GetUserID(c)
		storeKey := cfg.Scope + ":" + strconv.FormatInt(userID, 10) + ":" + key
		ctx := c.Request.Context()

		reserved, err := cfg.Store.Reserve(ctx, storeKey, ttl)
		if err != nil {
			log.Error("Idempotency reserve failed, processing without key", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !reserved {
			stored, err := cfg.Store.Lookup(ctx, storeKey)
			if err != nil {
				log.Error("Idempotency lookup failed", zap.String("key", key), zap.Error(err))
			}
			if stored != nil {
				c.Header(IdempotencyReplayedHeader, "true")
				c.Data(stored.Status, stored.ContentType, stored.Body)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRequestInFlight, "A request with this Idempotency-Key is still being processed", GetRequestID(c)))
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// The request context may already be cancelled when the client hangs up.
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		status := w.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			resp := shared.StoredResponse{
				Status:      status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.body.Bytes(),
			}
			if err := cfg.Store.Complete(storeCtx, storeKey, resp, ttl); err != nil {
				log.Error("Failed to store idempotent response", zap.String("key", key), zap.Error(err))
			}
			return
		}
		if err := cfg.Store.Release(storeCtx, storeKey); err != nil {
			log.Error("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
		}
	}
}
