package scratchpad

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Laisky/scratchpad-mcp/library/log"
)

// SchemaVersionCurrent is the schema version written by RunMigrations.
const SchemaVersionCurrent = 1

// RunMigrations ensures the relational tables exist and records the schema version.
//
// The full-text index table is created by the index synchronizer, which owns
// the decision of whether FTS5 is available.
func RunMigrations(ctx context.Context, db *gorm.DB, logger logSDK.Logger, clock Clock) error {
	if db == nil {
		return errors.New("gorm db is required")
	}
	if logger == nil {
		logger = log.Logger.Named("scratchpad_migration")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Workflow{}, &Scratchpad{}, &SchemaVersion{}); err != nil {
		return errors.Wrap(err, "auto migrate scratchpad tables")
	}

	if clock == nil {
		clock = time.Now
	}
	appliedAt := clock().Unix()
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&SchemaVersion{Version: SchemaVersionCurrent, AppliedAt: appliedAt}).Error; err != nil {
		return errors.Wrap(err, "record schema version")
	}

	logger.Debug("scratchpad migrations completed", zap.Int("schema_version", SchemaVersionCurrent))
	return nil
}

// CurrentSchemaVersion returns the highest recorded schema version.
func CurrentSchemaVersion(ctx context.Context, db *gorm.DB) (int, error) {
	var version int
	if err := db.WithContext(ctx).Model(&SchemaVersion{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&version).Error; err != nil {
		return 0, errors.Wrap(err, "query schema version")
	}
	return version, nil
}
