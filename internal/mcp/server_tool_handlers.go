package mcp

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/scratchpad-mcp/internal/mcp/tools"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

// callTool runs a tool with a per-call logger and records its outcome.
func (s *Server) callTool(ctx context.Context, name string, tool tools.Tool, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := LoggerFromContext(ctx).With(zap.String("tool", name))
	ctx = context.WithValue(ctx, ctxkeys.Logger, logger)

	start := time.Now()
	result, err := tool.Handle(ctx, req)
	cost := time.Since(start)
	if err != nil {
		logger.Error("mcp tool failed", zap.Error(err), zap.Duration("cost", cost))
		return result, errors.WithStack(err)
	}

	fields := []zap.Field{zap.Duration("cost", cost), zap.Int("args", len(argumentsMap(req.Params.Arguments)))}
	if result != nil && result.IsError {
		logger.Info("mcp tool returned error result", fields...)
		return result, nil
	}
	logger.Debug("mcp tool succeeded", fields...)
	return result, nil
}

// argumentsMap returns the call arguments as a map, or nil for other shapes.
func argumentsMap(args any) map[string]any {
	if m, ok := args.(map[string]any); ok {
		return m
	}
	return nil
}

// LoggerFromContext retrieves the per-request logger from the MCP context.
// Falls back to a shared logger if none is present in context.
func LoggerFromContext(ctx context.Context) logSDK.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxkeys.Logger).(logSDK.Logger); ok && logger != nil {
			return logger
		}
	}
	return log.Logger.Named("mcp")
}
