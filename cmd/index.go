package cmd

import (
	"encoding/json"
	"fmt"

	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/scratchpad-mcp/library/log"
)

var indexCMD = &cobra.Command{
	Use:   "index",
	Short: "inspect or rebuild the full-text index",
	Args:  gcmd.NoExtraArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.Context(), cmd)
	},
}

var indexValidateCMD = &cobra.Command{
	Use:   "validate",
	Short: "compare index entries with stored scratchpads",
	Args:  gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, closeStore, err := openStoreForInspection(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		health, err := svc.Index().Validate(ctx)
		if err != nil {
			return errors.Wrap(err, "validate index")
		}
		if err := printJSON(cmd, health); err != nil {
			return err
		}
		if health.Available && !health.Healthy {
			return errors.Errorf("index has %d entries for %d scratchpads",
				health.IndexCount, health.ScratchpadCount)
		}
		return nil
	},
}

var indexRebuildCMD = &cobra.Command{
	Use:   "rebuild",
	Short: "regenerate the full-text index from stored scratchpads",
	Args:  gcmd.NoExtraArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		result, err := svc.Index().Rebuild(ctx)
		if err != nil {
			return errors.Wrap(err, "rebuild index")
		}
		log.Logger.Info("index rebuilt",
			zap.Int64("indexed", result.Indexed),
			zap.Duration("cost", result.Duration),
		)
		return printJSON(cmd, result)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal output")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return errors.WithStack(err)
}

func init() {
	indexCMD.AddCommand(indexValidateCMD, indexRebuildCMD)
	rootCMD.AddCommand(indexCMD)
}
