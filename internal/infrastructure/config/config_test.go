package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "buneko-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "5000", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
		assert.Equal(t, "npr", cfg.Stripe.Currency)
		assert.Equal(t, "http://localhost:5173/cart?payment=success", cfg.Stripe.SuccessURL)
		assert.Equal(t, "http://localhost:5173/cart?payment=cancelled", cfg.Stripe.CancelURL)
		assert.Equal(t, "smtp.gmail.com", cfg.Mail.Host)
		assert.Equal(t, 587, cfg.Mail.Port)
		assert.Equal(t, "Buneko Blooms", cfg.Mail.FromName)
		assert.Equal(t, "superadmin@buneko.com", cfg.Bootstrap.SuperAdminEmail)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.AccessTokenExpiration)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("BUNEKO_APP_PORT", "9090")
		t.Setenv("BUNEKO_DATABASE_DRIVER", "mysql")
		t.Setenv("BUNEKO_APP_FRONTEND_URL", "https://shop.buneko.com/")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.App.Port)
		assert.Equal(t, DriverMySQL, cfg.Database.Driver)
		assert.Equal(t, 3306, cfg.Database.Port)
		assert.Equal(t, "https://shop.buneko.com/cart?payment=success", cfg.Stripe.SuccessURL)
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		t.Setenv("BUNEKO_DATABASE_DRIVER", "oracle")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("production requires a long jwt secret", func(t *testing.T) {
		t.Setenv("BUNEKO_APP_ENV", "production")
		t.Setenv("BUNEKO_JWT_SECRET", "short")
		t.Setenv("BUNEKO_DATABASE_PASSWORD", "pw")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("postgres escapes credentials", func(t *testing.T) {
		d := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: 5432, User: "shop", Password: "p@ss word", DBName: "buneko", SSLMode: "disable"}
		assert.Equal(t, "postgres://shop:p%40ss%20word@db:5432/buneko?sslmode=disable", d.DSN())
	})

	t.Run("mysql uses tcp form", func(t *testing.T) {
		d := DatabaseConfig{Driver: DriverMySQL, Host: "db", Port: 3306, User: "root", Password: "pw", DBName: "buneko"}
		assert.Equal(t, "root:pw@tcp(db:3306)/buneko?charset=utf8mb4&parseTime=True&loc=UTC", d.DSN())
		assert.Equal(t, "mysql://root:pw@tcp(db:3306)/buneko?multiStatements=true", d.MigrationURL())
	})

	t.Run("sqlite uses path", func(t *testing.T) {
		d := DatabaseConfig{Driver: DriverSQLite, Path: ":memory:"}
		assert.Equal(t, ":memory:", d.DSN())
	})
}
