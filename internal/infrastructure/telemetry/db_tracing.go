package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type contextKey string

const queryStartTimeKey contextKey = "otel_query_start_time"

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	DBName          string
	SlowQueryThresh time.Duration
}

// RegisterDBTracing installs the otelgorm plugin, which opens a span per
// statement, and marks statements slower than the threshold. Query
// variables are never attached to spans.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQueryThreshold
	}

	opts := []otelgorm.Option{otelgorm.WithoutQueryVariables(), otelgorm.WithoutMetrics()}
	if cfg.DBName != "" {
		opts = append(opts, otelgorm.WithDBName(cfg.DBName))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	marker := slowQueryMarker{thresh: cfg.SlowQueryThresh}
	cb := db.Callback()
	// The after hooks must run while the otelgorm span is still open.
	hooks := []struct {
		callback callbackRegistrar
		hook     func(*gorm.DB)
		name     string
	}{
		{cb.Create().Before("gorm:create"), marker.start, "before_create"},
		{cb.Create().After("gorm:create").Before("otel:after:create"), marker.finish, "after_create"},
		{cb.Query().Before("gorm:query"), marker.start, "before_query"},
		{cb.Query().After("gorm:query").Before("otel:after:select"), marker.finish, "after_query"},
		{cb.Update().Before("gorm:update"), marker.start, "before_update"},
		{cb.Update().After("gorm:update").Before("otel:after:update"), marker.finish, "after_update"},
		{cb.Delete().Before("gorm:delete"), marker.start, "before_delete"},
		{cb.Delete().After("gorm:delete").Before("otel:after:delete"), marker.finish, "after_delete"},
		{cb.Row().Before("gorm:row"), marker.start, "before_row"},
		{cb.Row().After("gorm:row").Before("otel:after:row"), marker.finish, "after_row"},
		{cb.Raw().Before("gorm:raw"), marker.start, "before_raw"},
		{cb.Raw().After("gorm:raw").Before("otel:after:raw"), marker.finish, "after_raw"},
	}
	for _, h := range hooks {
		if err := h.callback.Register("otel_timing:"+h.name, h.hook); err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_name", cfg.DBName),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

type slowQueryMarker struct {
	thresh time.Duration
}

func (m slowQueryMarker) start(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
	}
}

func (m slowQueryMarker) finish(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	started, ok := ctx.Value(queryStartTimeKey).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(started); elapsed > m.thresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", m.thresh.Milliseconds()),
		))
	}
}
