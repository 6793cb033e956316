package cmd

import (
	"context"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"gorm.io/gorm"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
	"github.com/Laisky/scratchpad-mcp/library/db/sqlite"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

// openStore opens the database file named by the configuration and builds the service.
// The returned close function releases the database handle.
func openStore(ctx context.Context) (*scratchpad.Service, func(), error) {
	return openStoreWith(ctx, scratchpad.LoadSettingsFromConfig())
}

// openStoreForInspection opens the store without the startup index repair,
// so drift is reported as found.
func openStoreForInspection(ctx context.Context) (*scratchpad.Service, func(), error) {
	settings := scratchpad.LoadSettingsFromConfig()
	settings.Index.SkipStartupCheck = true
	return openStoreWith(ctx, settings)
}

func openStoreWith(ctx context.Context, settings scratchpad.Settings) (*scratchpad.Service, func(), error) {
	db, err := openDB(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := sqlite.Close(db); err != nil {
			log.Logger.Warn("close database", zap.Error(err))
		}
	}

	svc, err := scratchpad.NewService(ctx, db, settings, nil, log.Logger.Named("scratchpad"), nil)
	if err != nil {
		closeDB()
		return nil, nil, errors.Wrap(err, "new scratchpad service")
	}
	return svc, closeDB, nil
}

func openDB(ctx context.Context, settings scratchpad.Settings) (*gorm.DB, error) {
	db, err := sqlite.Open(ctx, sqlite.DialInfo{
		Path:   settings.DBPath,
		Driver: settings.DBDriver,
		Debug:  gconfig.Shared.GetBool("debug"),
	}, log.Logger.Named("db"))
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", settings.DBPath)
	}
	return db, nil
}
