// Package web hosts the MCP endpoint on a gin engine.
package web

import (
	"context"
	"net/http"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// HealthFunc reports component health for /health. A non-nil error turns the response into 503.
type HealthFunc func(ctx context.Context) (map[string]any, error)

// Options configures the gin engine.
type Options struct {
	// MCPHandler serves the streamable MCP endpoint.
	MCPHandler http.Handler
	// Health adds component details to /health; optional.
	Health HealthFunc
	// CORSAllowedHosts lists browser origins allowed to call /mcp.
	CORSAllowedHosts []string
	Debug            bool
	Logger           logSDK.Logger
}

// NewEngine builds the gin engine with /mcp and /health routes.
func NewEngine(opt Options) (*gin.Engine, error) {
	if opt.MCPHandler == nil {
		return nil, errors.New("mcp handler is required")
	}
	if opt.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if !opt.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(opt.Logger.Level().String()),
			gmw.WithLogger(opt.Logger.Named("gin")),
		),
		newCORSMiddleware(opt.CORSAllowedHosts),
	)

	engine.GET("/health", healthHandler(opt.Health))
	engine.Any("/mcp", gin.WrapH(opt.MCPHandler))
	engine.Any("/mcp/*path", gin.WrapH(opt.MCPHandler))

	return engine, nil
}

func healthHandler(health HealthFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		body := gin.H{"status": "ok"}
		if health == nil {
			ctx.JSON(http.StatusOK, body)
			return
		}

		details, err := health(ctx.Request.Context())
		for k, v := range details {
			body[k] = v
		}
		if err != nil {
			gmw.GetLogger(ctx).Warn("health check failed", zap.Error(err))
			body["status"] = "unavailable"
			body["error"] = err.Error()
			ctx.JSON(http.StatusServiceUnavailable, body)
			return
		}
		ctx.JSON(http.StatusOK, body)
	}
}

// Run serves engine on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, engine http.Handler, logger logSDK.Logger) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on http", zap.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", addr)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown http server")
	}
	return nil
}
