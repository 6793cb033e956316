package mcp

import (
	"context"
	"strings"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"
)

// newMCPHooks logs protocol requests and session lifecycle events.
// Payloads pass through redactHookPayload so scratchpad text never reaches the log.
func newMCPHooks(logger logSDK.Logger) *srv.Hooks {
	if logger == nil {
		return nil
	}

	hooks := &srv.Hooks{}

	hooks.AddBeforeAny(func(ctx context.Context, id any, method mcp.MCPMethod, message any) {
		fields := requestFields(ctx, id, method, message)
		if message != nil {
			fields = append(fields, zap.String("request", redactHookPayload(message)))
		}
		logger.Debug("mcp request", fields...)
	})

	hooks.AddOnSuccess(func(ctx context.Context, id any, method mcp.MCPMethod, message any, result any) {
		fields := requestFields(ctx, id, method, message)
		if method != mcp.MethodToolsCall {
			logger.Debug("mcp request done", fields...)
			return
		}
		if result != nil {
			fields = append(fields, zap.String("response", redactHookPayload(result)))
		}
		logger.Info("mcp tool call done", fields...)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		fields := append(requestFields(ctx, id, method, message), zap.Error(err))
		if isResourceProbeError(method, err) {
			logger.Debug("mcp resource probe rejected", fields...)
			return
		}
		logger.Error("mcp request failed", fields...)
	})

	hooks.AddOnRegisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session opened", zap.String("session_id", session.SessionID()))
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session srv.ClientSession) {
		logger.Info("mcp session closed", zap.String("session_id", session.SessionID()))
	})

	return hooks
}

// isResourceProbeError reports a client listing resources on a server that only offers tools.
func isResourceProbeError(method mcp.MCPMethod, err error) bool {
	if err == nil {
		return false
	}
	switch method {
	case mcp.MethodResourcesList, mcp.MethodResourcesTemplatesList:
		return strings.Contains(strings.ToLower(err.Error()), "resources not supported")
	default:
		return false
	}
}

func requestFields(ctx context.Context, id any, method mcp.MCPMethod, message any) []zap.Field {
	fields := []zap.Field{
		zap.Any("request_id", id),
		zap.String("method", string(method)),
	}
	if req, ok := message.(*mcp.CallToolRequest); ok && req != nil {
		fields = append(fields, zap.String("tool", req.Params.Name))
	}
	if session := srv.ClientSessionFromContext(ctx); session != nil {
		fields = append(fields, zap.String("session_id", session.SessionID()))
	}
	return fields
}
