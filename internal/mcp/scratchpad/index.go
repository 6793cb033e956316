package scratchpad

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

const (
	ftsTable = "scratchpads_fts"

	createFTSTableSQL = `CREATE VIRTUAL TABLE IF NOT EXISTS scratchpads_fts USING fts5(
	scratchpad_id UNINDEXED,
	workflow_id UNINDEXED,
	title,
	content,
	tokenize = 'unicode61 remove_diacritics 0'
)`

	rebuildBatchSize = 100
)

// writeTxFunc runs fn inside the service's serialized write transaction.
type writeTxFunc func(ctx context.Context, fn func(tx *gorm.DB) error) error

// IndexSynchronizer keeps the FTS5 table in step with the scratchpads table.
//
// Row writers call the *Tx methods inside their own transaction. Validate,
// Rebuild and EnsureHealthy are maintenance operations.
type IndexSynchronizer struct {
	db      *gorm.DB
	logger  logSDK.Logger
	writeTx writeTxFunc

	available       bool
	degraded        atomic.Bool
	repairAttempted atomic.Bool
	rebuilds        singleflight.Group

	mu       sync.RWMutex
	warnings []string
}

// newIndexSynchronizer probes FTS5 support by creating the index table.
func newIndexSynchronizer(ctx context.Context, db *gorm.DB, logger logSDK.Logger, writeTx writeTxFunc) *IndexSynchronizer {
	idx := &IndexSynchronizer{
		db:      db,
		logger:  logger,
		writeTx: writeTx,
	}

	if err := db.WithContext(ctx).Exec(createFTSTableSQL).Error; err != nil {
		logger.Warn("full-text index unavailable, search falls back to substring matching", zap.Error(err))
		idx.addWarning("full-text index unavailable: " + err.Error())
		return idx
	}

	idx.available = true
	return idx
}

// Available reports whether index tiers may be queried.
func (x *IndexSynchronizer) Available() bool {
	return x != nil && x.available && !x.degraded.Load()
}

// Warnings returns index warnings accumulated since startup.
func (x *IndexSynchronizer) Warnings() []string {
	if x == nil {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]string(nil), x.warnings...)
}

func (x *IndexSynchronizer) addWarning(msg string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, existing := range x.warnings {
		if existing == msg {
			return
		}
	}
	x.warnings = append(x.warnings, msg)
}

// writable reports whether row writers should touch the index.
func (x *IndexSynchronizer) writable() bool {
	return x != nil && x.available && !x.degraded.Load()
}

// upsertTx replaces the index entry of sp within tx.
func (x *IndexSynchronizer) upsertTx(tx *gorm.DB, sp Scratchpad) error {
	if !x.writable() {
		return nil
	}
	if err := tx.Exec("DELETE FROM "+ftsTable+" WHERE scratchpad_id = ?", sp.ID).Error; err != nil {
		return errors.Wrapf(err, "delete index entry for scratchpad %s", sp.ID)
	}
	return insertIndexRow(tx, sp)
}

// deleteTx removes the index entry of one scratchpad within tx.
func (x *IndexSynchronizer) deleteTx(tx *gorm.DB, scratchpadID string) error {
	if !x.writable() {
		return nil
	}
	if err := tx.Exec("DELETE FROM "+ftsTable+" WHERE scratchpad_id = ?", scratchpadID).Error; err != nil {
		return errors.Wrapf(err, "delete index entry for scratchpad %s", scratchpadID)
	}
	return nil
}

// deleteByWorkflowTx removes every index entry owned by a workflow within tx.
func (x *IndexSynchronizer) deleteByWorkflowTx(tx *gorm.DB, workflowID string) error {
	if !x.writable() {
		return nil
	}
	if err := tx.Exec("DELETE FROM "+ftsTable+" WHERE workflow_id = ?", workflowID).Error; err != nil {
		return errors.Wrapf(err, "delete index entries for workflow %s", workflowID)
	}
	return nil
}

func insertIndexRow(tx *gorm.DB, sp Scratchpad) error {
	err := tx.Exec(
		"INSERT INTO "+ftsTable+" (scratchpad_id, workflow_id, title, content) VALUES (?, ?, ?, ?)",
		sp.ID, sp.WorkflowID, indexProjection(sp.Title), indexProjection(sp.Content),
	).Error
	if err != nil {
		return errors.Wrapf(err, "insert index entry for scratchpad %s", sp.ID)
	}
	return nil
}

// Validate compares the number of index entries with the number of scratchpads.
func (x *IndexSynchronizer) Validate(ctx context.Context) (IndexHealth, error) {
	health := IndexHealth{
		Available: x.available,
		Degraded:  x.degraded.Load(),
		Warnings:  x.Warnings(),
	}

	if err := x.db.WithContext(ctx).Model(&Scratchpad{}).Count(&health.ScratchpadCount).Error; err != nil {
		return health, errors.Wrap(err, "count scratchpads")
	}
	if !x.available {
		return health, nil
	}

	if err := x.db.WithContext(ctx).Raw("SELECT COUNT(*) FROM " + ftsTable).Scan(&health.IndexCount).Error; err != nil {
		return health, errors.Wrap(err, "count index entries")
	}

	health.Healthy = health.IndexCount == health.ScratchpadCount && !health.Degraded
	return health, nil
}

// Rebuild regenerates the whole index from the scratchpads table in one transaction.
//
// Concurrent callers share a single rebuild.
func (x *IndexSynchronizer) Rebuild(ctx context.Context) (RebuildResult, error) {
	if !x.available {
		return RebuildResult{}, NewError(ErrCodeIndexUnavailable, "full-text index is not available in this build", false)
	}

	value, err, _ := x.rebuilds.Do("rebuild", func() (any, error) {
		return x.rebuild(ctx)
	})
	if err != nil {
		return RebuildResult{}, err
	}
	return value.(RebuildResult), nil
}

func (x *IndexSynchronizer) rebuild(ctx context.Context) (RebuildResult, error) {
	startAt := time.Now()
	var indexed int64

	err := x.writeTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM " + ftsTable).Error; err != nil {
			return errors.Wrap(err, "clear index")
		}

		var batch []Scratchpad
		result := tx.Model(&Scratchpad{}).
			FindInBatches(&batch, rebuildBatchSize, func(_ *gorm.DB, _ int) error {
				for _, sp := range batch {
					if err := insertIndexRow(tx, sp); err != nil {
						return err
					}
				}
				indexed += int64(len(batch))
				return nil
			})
		if result.Error != nil {
			return errors.Wrap(result.Error, "reindex scratchpads")
		}
		return nil
	})
	if err != nil {
		x.logger.Error("rebuild full-text index", zap.Error(err))
		return RebuildResult{}, errors.Wrap(err, "rebuild full-text index")
	}

	x.degraded.Store(false)
	cost := time.Since(startAt)
	x.logger.Info("full-text index rebuilt",
		zap.Int64("indexed", indexed),
		zap.Duration("cost", cost),
	)
	return RebuildResult{Indexed: indexed, Duration: cost}, nil
}

// EnsureHealthy validates the index and repairs drift once.
//
// A failed repair leaves the index degraded; search then skips the index tiers.
func (x *IndexSynchronizer) EnsureHealthy(ctx context.Context, rebuildOnDrift bool) IndexHealth {
	health, err := x.Validate(ctx)
	if err != nil {
		x.logger.Warn("validate full-text index", zap.Error(err))
		x.markDegraded("index validation failed: " + err.Error())
		health.Degraded = true
		health.Warnings = x.Warnings()
		return health
	}
	if !health.Available || health.Healthy {
		return health
	}

	x.logger.Warn("full-text index drift detected",
		zap.Int64("scratchpads", health.ScratchpadCount),
		zap.Int64("index_entries", health.IndexCount),
	)
	if !rebuildOnDrift {
		x.addWarning("full-text index drift detected; rebuild disabled")
		health.Warnings = x.Warnings()
		return health
	}

	x.repairAttempted.Store(true)
	if _, err := x.Rebuild(ctx); err != nil {
		x.markDegraded("index rebuild failed: " + err.Error())
		health.Degraded = true
		health.Warnings = x.Warnings()
		return health
	}

	repaired, err := x.Validate(ctx)
	if err != nil {
		x.markDegraded("index validation failed after rebuild: " + err.Error())
		repaired.Degraded = true
		repaired.Warnings = x.Warnings()
	}
	return repaired
}

// noteQueryError inspects an index query failure and repairs corruption at most once per process.
func (x *IndexSynchronizer) noteQueryError(ctx context.Context, err error) {
	if err == nil || !isCorruptionError(err) {
		return
	}
	if !x.repairAttempted.CompareAndSwap(false, true) {
		x.markDegraded("full-text index corrupted: " + err.Error())
		return
	}

	x.logger.Warn("full-text index corruption detected, rebuilding", zap.Error(err))
	if _, rerr := x.Rebuild(ctx); rerr != nil {
		x.markDegraded("index repair failed: " + rerr.Error())
	}
}

func (x *IndexSynchronizer) markDegraded(msg string) {
	x.degraded.Store(true)
	x.addWarning(msg)
	x.logger.Warn("full-text index degraded", zap.String("reason", msg))
}

// isCorruptionError reports whether err indicates a damaged index.
//
// Both supported drivers are recognized.
func isCorruptionError(err error) bool {
	if isCgoCorruptionError(err) {
		return true
	}
	var pureErr *moderncsqlite.Error
	if errors.As(err, &pureErr) && pureErr.Code()&0xff == sqlitelib.SQLITE_CORRUPT {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "malformed") ||
		strings.Contains(msg, "fts5: corrupt") ||
		strings.Contains(msg, "no such table: "+ftsTable)
}
