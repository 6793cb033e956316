package cmd

import (
	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
	"github.com/Laisky/scratchpad-mcp/library/db/sqlite"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long:  `create or upgrade the database schema`,
	Args:  gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.Context(), cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		settings := scratchpad.LoadSettingsFromConfig()
		db, err := openDB(ctx, settings)
		if err != nil {
			return err
		}
		defer func() {
			if err := sqlite.Close(db); err != nil {
				log.Logger.Warn("close database", zap.Error(err))
			}
		}()

		if err := scratchpad.RunMigrations(ctx, db, log.Logger.Named("migrate"), nil); err != nil {
			return errors.Wrap(err, "migrate")
		}
		version, err := scratchpad.CurrentSchemaVersion(ctx, db)
		if err != nil {
			return errors.WithStack(err)
		}

		log.Logger.Info("schema migrated",
			zap.String("db", settings.DBPath),
			zap.Int("schema_version", version),
		)
		return nil
	},
}

func init() {
	rootCMD.AddCommand(migrateCMD)
}
