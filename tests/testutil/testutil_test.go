package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buneko/backend/internal/domain/identity"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

func TestNewSQLiteDB(t *testing.T) {
	type widget struct {
		ID   int64
		Name string
	}
	db := NewSQLiteDB(t, &widget{})

	require.NoError(t, db.Create(&widget{Name: "rose"}).Error)
	var n int64
	require.NoError(t, db.Model(&widget{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestTestContext_SetUser(t *testing.T) {
	tc := NewTestContext(t)
	tc.SetUser(7, "admin")
	tc.SetRequestID("req-1")

	assert.Equal(t, int64(7), tc.Context.GetInt64("user_id"))
	role, _ := tc.Context.Get("user_role")
	assert.Equal(t, identity.RoleAdmin, role)
	assert.Equal(t, "req-1", tc.Context.GetString("request_id"))
}

func TestRunHTTPTestCase(t *testing.T) {
	handler := func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"id": 1}})
	}
	RunHTTPTestCase(t, handler, HTTPTestCase{
		Method:         http.MethodPost,
		Body:           map[string]any{"name": "Lily"},
		ExpectedStatus: http.StatusCreated,
		ExpectedBody:   map[string]interface{}{"success": true},
		Validate: func(t *testing.T, tc *TestContext) {
			AssertSuccessResponse(t, tc)
		},
	})
}

func TestAssertEventually(t *testing.T) {
	start := time.Now()
	AssertEventually(t, func() bool { return time.Since(start) > 20*time.Millisecond }, time.Second, 5*time.Millisecond)
}
