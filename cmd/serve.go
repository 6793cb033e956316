package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/spf13/cobra"

	"github.com/Laisky/scratchpad-mcp/internal/mcp"
	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
	"github.com/Laisky/scratchpad-mcp/internal/web"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

const (
	transportHTTP  = "http"
	transportStdio = "stdio"
)

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "serve the MCP tools",
	Long:  `serve the workflow and scratchpad MCP tools over streamable HTTP or stdio`,
	Args:  gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		if strings.TrimSpace(transport) == transportStdio {
			if err := log.RedirectToStderr(); err != nil {
				return errors.WithStack(err)
			}
		}
		return initialize(cmd.Context(), cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runServe(ctx)
	},
}

func runServe(ctx context.Context) error {
	transport := strings.TrimSpace(gconfig.Shared.GetString("transport"))
	if transport != transportHTTP && transport != transportStdio {
		return errors.Errorf("unknown transport %q, want %s or %s", transport, transportHTTP, transportStdio)
	}

	svc, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	server, err := mcp.NewServer(svc, mcp.LoadToolsSettingsFromConfig(), log.Logger.Named("mcp"))
	if err != nil {
		return errors.Wrap(err, "new mcp server")
	}

	if transport == transportStdio {
		log.Logger.Info("serving mcp over stdio")
		return server.ServeStdio(ctx, os.Stdin, os.Stdout)
	}

	engine, err := web.NewEngine(web.Options{
		MCPHandler:       server.Handler(),
		Health:           indexHealth(svc),
		CORSAllowedHosts: gconfig.Shared.GetStringSlice("settings.web.cors.allowed_hosts"),
		Debug:            gconfig.Shared.GetBool("debug"),
		Logger:           log.Logger,
	})
	if err != nil {
		return errors.Wrap(err, "new web engine")
	}
	return web.Run(ctx, gconfig.Shared.GetString("listen"), engine, log.Logger.Named("web"))
}

// indexHealth reports the full-text index state on /health.
func indexHealth(svc *scratchpad.Service) web.HealthFunc {
	return func(ctx context.Context) (map[string]any, error) {
		health, err := svc.Index().Validate(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return map[string]any{
			"index_available": health.Available,
			"index_healthy":   health.Healthy,
			"index_degraded":  health.Degraded,
			"scratchpads":     health.ScratchpadCount,
			"warnings":        health.Warnings,
		}, nil
	}
}

func init() {
	serveCMD.Flags().String("listen", "localhost:8080", "http listen address, like `localhost:8080`")
	serveCMD.Flags().String("transport", transportHTTP, "`http` or `stdio`")
	rootCMD.AddCommand(serveCMD)
}
