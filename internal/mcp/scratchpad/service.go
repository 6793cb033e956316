// Package scratchpad implements the workflow and scratchpad storage-and-search engine.
//
// Workflows and scratchpads live in a single SQLite file managed through gorm.
// A derived FTS5 index mirrors scratchpad text and is written in the same
// transaction as every row change, so readers never see the two disagree.
package scratchpad

import (
	"context"
	"strings"
	"sync"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

// Clock returns the current time in UTC.
type Clock func() time.Time

// Service coordinates workflow and scratchpad storage, indexing, search and editing.
type Service struct {
	db        *gorm.DB
	settings  Settings
	logger    logSDK.Logger
	clock     Clock
	index     *IndexSynchronizer
	segmenter *lazySegmenter
	writeMu   sync.Mutex
}

// NewService constructs a Service, runs migrations and checks index health
// unless settings.Index.SkipStartupCheck is set.
//
// A nil segmenter loads the embedded gse dictionary on first use when
// settings.Search.SegmenterEnabled is set.
func NewService(ctx context.Context, db *gorm.DB, settings Settings, segmenter Segmenter, logger logSDK.Logger, clock Clock) (*Service, error) {
	if db == nil {
		return nil, errors.New("gorm db is required")
	}
	if logger == nil {
		logger = log.Logger.Named("scratchpad_service")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	settings = settings.withDefaults()

	if err := RunMigrations(ctx, db, logger, clock); err != nil {
		return nil, errors.WithStack(err)
	}

	svc := &Service{
		db:       db,
		settings: settings,
		logger:   logger,
		clock:    clock,
	}

	switch {
	case segmenter != nil:
		svc.segmenter = newLazySegmenter(func() (Segmenter, error) { return segmenter, nil })
	case settings.Search.SegmenterEnabled:
		svc.segmenter = newLazySegmenter(NewGseSegmenter)
	default:
		svc.segmenter = newLazySegmenter(func() (Segmenter, error) {
			return nil, NewError(ErrCodeIndexUnavailable, "segmenter disabled", false)
		})
	}

	svc.index = newIndexSynchronizer(ctx, db, logger.Named("index"), svc.withWriteTx)
	if settings.Index.SkipStartupCheck {
		logger.Info("scratchpad service ready, index check skipped",
			zap.Bool("index_available", svc.index.Available()))
		return svc, nil
	}

	health := svc.index.EnsureHealthy(ctx, settings.Index.RebuildOnDrift)
	logger.Info("scratchpad service ready",
		zap.Bool("index_available", health.Available),
		zap.Bool("index_healthy", health.Healthy),
		zap.Int64("scratchpads", health.ScratchpadCount),
	)

	return svc, nil
}

// Index returns the full-text index synchronizer.
func (s *Service) Index() *IndexSynchronizer {
	return s.index
}

// Settings returns the effective settings.
func (s *Service) Settings() Settings {
	return s.settings
}

// LoggerFromContext returns the request-scoped logger when available.
func (s *Service) LoggerFromContext(ctx context.Context) logSDK.Logger {
	if ctx != nil {
		if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
			return ctxLogger
		}
		if ctxLogger, ok := ctx.Value(ctxkeys.Logger).(logSDK.Logger); ok && ctxLogger != nil {
			return ctxLogger
		}
	}
	if s != nil && s.logger != nil {
		return s.logger
	}
	return log.Logger.Named("scratchpad_fallback")
}

// now returns the current time in epoch seconds.
func (s *Service) now() int64 {
	return s.clock().Unix()
}

// bumpTime keeps timestamps monotonic when the clock lags a stored value.
func bumpTime(now, previous int64) int64 {
	return max(now, previous)
}

// newID returns a time-ordered opaque identifier.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// normalizeOptional trims an optional string and maps blank values to nil.
func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// checkContentSize enforces the content ceiling on a would-be stored value.
func (s *Service) checkContentSize(content string) error {
	size := int64(len(content))
	if size > s.settings.MaxContentBytes {
		return newSizeLimitError(size, s.settings.MaxContentBytes)
	}
	return nil
}

// isRecordNotFound reports whether err is gorm's not-found sentinel.
func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
