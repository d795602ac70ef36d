package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/buneko/backend/tests/testutil"
)

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name   string
		db     Pinger
		status int
		code   string
	}{
		{name: "no database configured", status: http.StatusOK},
		{name: "database up", db: PingerFunc(func(context.Context) error { return nil }), status: http.StatusOK},
		{
			name:   "database down",
			db:     PingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			status: http.StatusServiceUnavailable,
			code:   "UNAVAILABLE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, "1.2.3")
			testutil.RunHTTPTestCase(t, h.Check, testutil.HTTPTestCase{
				Method:         http.MethodGet,
				Path:           "/health",
				ExpectedStatus: tt.status,
				ExpectedCode:   tt.code,
				Validate: func(t *testing.T, tc *testutil.TestContext) {
					if tt.code != "" {
						return
					}
					resp := testutil.JSONResponseAs[struct {
						Data struct {
							Status  string `json:"status"`
							Version string `json:"version"`
						} `json:"data"`
					}](t, tc)
					assert.Equal(t, "ok", resp.Data.Status)
					assert.Equal(t, "1.2.3", resp.Data.Version)
				},
			})
		})
	}
}

func TestHealthHandler_PingHasDeadline(t *testing.T) {
	var hasDeadline bool
	h := NewHealthHandler(PingerFunc(func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	}), "")
	testutil.RunHTTPTestCase(t, h.Check, testutil.HTTPTestCase{Path: "/health", ExpectedStatus: http.StatusOK})
	assert.True(t, hasDeadline)
}
