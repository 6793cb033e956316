package cmd

import (
	errors "github.com/Laisky/errors/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Laisky/scratchpad-mcp/cmd/tui"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

var tuiCMD = &cobra.Command{
	Use:   "tui",
	Short: "browse workflows and scratchpads in the terminal",
	Long: `Open a read-only terminal browser over the configured database.

Keyboard shortcuts:
  ↑/↓ or j/k  Navigate
  Enter       Open workflow or scratchpad
  /           Search scratchpads
  Esc         Go back
  r           Reload workflows
  q           Quit`,
	Args: gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.Context(), cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// log lines would tear the alternate screen
		if err := log.Logger.ChangeLevel(glog.LevelError); err != nil {
			return errors.Wrap(err, "quiet logger")
		}
		return runTUI(cmd)
	},
}

func init() {
	rootCMD.AddCommand(tuiCMD)
}

func runTUI(cmd *cobra.Command) error {
	ctx := cmd.Context()
	svc, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	p := tea.NewProgram(
		tui.NewModel(ctx, svc),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return errors.WithStack(err)
}
