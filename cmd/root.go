package cmd

import (
	"context"
	"fmt"
	"os"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/scratchpad-mcp/library/config"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

var rootCMD = &cobra.Command{
	Use:   "scratchpad-mcp",
	Short: "scratchpad-mcp",
	Long:  `workflow and scratchpad store with full-text search, served as MCP tools`,
	Args:  gcmd.NoExtraArgs,
}

// initialize binds flags, loads configuration and configures logging.
func initialize(_ context.Context, cmd *cobra.Command) error {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind pflags")
	}

	if err := setupSettings(); err != nil {
		return errors.WithStack(err)
	}
	if err := setupLogger(); err != nil {
		return errors.WithStack(err)
	}
	if err := validateStartupConfig(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func setupSettings() error {
	// stdout belongs to the protocol when serving over stdio
	if gconfig.Shared.GetBool("debug") {
		fmt.Fprintln(os.Stderr, "run in debug mode")
		gconfig.Shared.Set("log-level", "debug")
	}

	return config.LoadFromFile(gconfig.Shared.GetString("config"))
}

func setupLogger() error {
	lvl := gconfig.Shared.GetString("log-level")
	if err := log.Logger.ChangeLevel(glog.Level(lvl)); err != nil {
		return errors.Wrapf(err, "change log level to %q", lvl)
	}
	return nil
}

func init() {
	rootCMD.PersistentFlags().Bool("debug", false, "run in debug mode")
	rootCMD.PersistentFlags().StringP("config", "c", "", "config file path, defaults are used when empty")
	rootCMD.PersistentFlags().String("log-level", "info", "`debug/info/error`")
}

// Execute execute root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		log.Logger.Panic("start", zap.Error(err))
	}
}
