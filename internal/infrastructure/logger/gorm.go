package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowAfter = 200 * time.Millisecond

// GormLogger adapts a zap logger to gorm's logger interface so query
// traces land in the same stream as the rest of the pipeline logs.
type GormLogger struct {
	base         *zap.Logger
	level        gormlogger.LogLevel
	slowAfter    time.Duration
	skipNotFound bool
}

var _ gormlogger.Interface = (*GormLogger)(nil)

// GormOption adjusts a GormLogger
type GormOption func(*GormLogger)

// GormSlowAfter sets the duration past which a query is logged as slow.
// Zero disables slow query logging.
func GormSlowAfter(d time.Duration) GormOption {
	return func(l *GormLogger) {
		l.slowAfter = d
	}
}

// GormLogNotFound makes record-not-found errors log as query errors
// instead of being dropped
func GormLogNotFound() GormOption {
	return func(l *GormLogger) {
		l.skipNotFound = false
	}
}

// NewGormLogger builds a gorm logger on top of zap. Not-found errors are
// dropped and queries over 200ms log as slow unless options say otherwise.
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormOption) *GormLogger {
	l := &GormLogger{
		base:         base.Named("gorm"),
		level:        level,
		slowAfter:    defaultSlowAfter,
		skipNotFound: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogMode returns a copy at the given level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.base.Sugar().Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.base.Sugar().Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.base.Sugar().Errorf(msg, args...)
	}
}

// Trace logs one executed statement with its duration and row count
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error:
		if l.skipNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		sql, rows := fc()
		l.base.Error("Query failed", traceFields(sql, rows, elapsed, zap.Error(err))...)

	case l.slowAfter > 0 && elapsed > l.slowAfter && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.base.Warn("Slow query", traceFields(sql, rows, elapsed, zap.Duration("threshold", l.slowAfter))...)

	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.base.Debug("Query", traceFields(sql, rows, elapsed)...)
	}
}

func traceFields(sql string, rows int64, elapsed time.Duration, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	return append(fields, extra...)
}
