package sqlite

import (
	"context"
	"fmt"
	"time"

	logSDK "github.com/Laisky/go-utils/v6/log"
	gormLogger "gorm.io/gorm/logger"
)

const defaultMaxLoggedParamLength = 256

// truncatingParamsLogger filters oversized SQL parameters before GORM prints SQL logs.
//
// Scratchpad contents reach 1 MiB, so they must never be echoed verbatim.
type truncatingParamsLogger struct {
	gormLogger.Interface
	maxLoggedParamLength int
}

// ParamsFilter truncates oversized parameter values to keep SQL logs concise.
func (l *truncatingParamsLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if len(params) == 0 {
		return sql, params
	}
	return sql, sanitizeLoggedSQLParams(l.maxLoggedParamLength, params...)
}

// newTruncatingParamsLogger wraps a GORM logger with parameter truncation.
func newTruncatingParamsLogger(base gormLogger.Interface) gormLogger.Interface {
	return &truncatingParamsLogger{
		Interface:            base,
		maxLoggedParamLength: defaultMaxLoggedParamLength,
	}
}

// zapWriter routes gorm's printf-style output into the structured logger.
type zapWriter struct {
	logger logSDK.Logger
}

// Printf implements gorm's logger.Writer.
func (w zapWriter) Printf(format string, args ...any) {
	w.logger.Info(fmt.Sprintf(format, args...))
}

// NewGormLogger builds the gorm logger used for the store.
//
// Only slow queries and errors are logged unless debug is set.
func NewGormLogger(logger logSDK.Logger, debug bool) gormLogger.Interface {
	level := gormLogger.Warn
	if debug {
		level = gormLogger.Info
	}

	base := gormLogger.New(zapWriter{logger: logger.Named("gorm")}, gormLogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      false,
	})
	return newTruncatingParamsLogger(base)
}

// sanitizeLoggedSQLParams applies sanitizeLoggedSQLParam to every parameter.
func sanitizeLoggedSQLParams(maxLoggedParamLength int, params ...any) []any {
	filtered := make([]any, len(params))
	for idx, param := range params {
		filtered[idx] = sanitizeLoggedSQLParam(param, maxLoggedParamLength)
	}
	return filtered
}

// sanitizeLoggedSQLParam converts oversized parameter values into compact log-safe summaries.
func sanitizeLoggedSQLParam(param any, maxLoggedParamLength int) any {
	switch value := param.(type) {
	case string:
		if len(value) > maxLoggedParamLength {
			return fmt.Sprintf("<string:len=%d,truncated>", len(value))
		}
		return value
	case []byte:
		if len(value) > maxLoggedParamLength {
			return fmt.Sprintf("<bytes:len=%d,truncated>", len(value))
		}
		return value
	default:
		return param
	}
}
