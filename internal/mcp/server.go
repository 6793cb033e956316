package mcp

import (
	"context"
	"io"
	"net/http"
	"sort"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/scratchpad-mcp/internal/mcp/tools"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

const (
	serverName    = "scratchpad-mcp"
	serverVersion = "1.0.0"

	serverInstructions = "Workflows group scratchpads (text notes). Create a workflow, add scratchpads, " +
		"append or edit them line by line, and use search-scratchpads or search-workflows to find earlier notes. " +
		"Pass project_scope to keep workflows of different projects apart."
)

// toolFactory builds one tool over the scratchpad service.
type toolFactory struct {
	name  string
	build func(tools.ScratchpadService) (tools.Tool, error)
}

// toolFactories lists every tool the server can expose, in registration order.
var toolFactories = []toolFactory{
	{"create-workflow", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewCreateWorkflowTool(s) }},
	{"get-workflow", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewGetWorkflowTool(s) }},
	{"list-workflows", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewListWorkflowsTool(s) }},
	{"get-latest-active-workflow", func(s tools.ScratchpadService) (tools.Tool, error) {
		return tools.NewGetLatestActiveWorkflowTool(s)
	}},
	{"update-workflow-status", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewUpdateWorkflowStatusTool(s) }},
	{"update-workflow-scope", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewUpdateWorkflowScopeTool(s) }},
	{"delete-workflow", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewDeleteWorkflowTool(s) }},
	{"create-scratchpad", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewCreateScratchpadTool(s) }},
	{"get-scratchpad", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewGetScratchpadTool(s) }},
	{"append-scratchpad", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewAppendScratchpadTool(s) }},
	{"edit-scratchpad", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewEditScratchpadTool(s) }},
	{"list-scratchpads", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewListScratchpadsTool(s) }},
	{"delete-scratchpad", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewDeleteScratchpadTool(s) }},
	{"search-scratchpads", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewSearchScratchpadsTool(s) }},
	{"search-workflows", func(s tools.ScratchpadService) (tools.Tool, error) { return tools.NewSearchWorkflowsTool(s) }},
}

// ToolNames returns the names of every tool the server knows about.
func ToolNames() []string {
	names := make([]string, 0, len(toolFactories))
	for _, f := range toolFactories {
		names = append(names, f.name)
	}
	return names
}

// Server wraps the MCP server state for the HTTP and stdio transports.
type Server struct {
	mcpServer *srv.MCPServer
	handler   http.Handler
	logger    logSDK.Logger
	tools     map[string]tools.Tool
}

// NewServer constructs an MCP server exposing the enabled scratchpad tools.
func NewServer(svc tools.ScratchpadService, settings ToolsSettings, logger logSDK.Logger) (*Server, error) {
	if svc == nil {
		return nil, errors.New("scratchpad service is required")
	}
	if logger == nil {
		logger = log.Logger.Named("mcp")
	}

	mcpServer := srv.NewMCPServer(
		serverName,
		serverVersion,
		srv.WithToolCapabilities(true),
		srv.WithInstructions(serverInstructions),
		srv.WithRecovery(),
		srv.WithHooks(newMCPHooks(logger.Named("mcp_hooks"))),
	)

	s := &Server{
		mcpServer: mcpServer,
		logger:    logger,
		tools:     make(map[string]tools.Tool, len(toolFactories)),
	}

	for _, f := range toolFactories {
		if !settings.Enabled(f.name) {
			logger.Info("mcp tool disabled by configuration", zap.String("tool", f.name))
			continue
		}
		tool, err := f.build(svc)
		if err != nil {
			return nil, errors.Wrapf(err, "build tool %s", f.name)
		}
		s.tools[f.name] = tool
		mcpServer.AddTool(tool.Definition(), s.toolHandler(f.name, tool))
	}
	if len(s.tools) == 0 {
		return nil, errors.New("at least one mcp tool must be enabled")
	}

	streamable := srv.NewStreamableHTTPServer(
		mcpServer,
		srv.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return context.WithValue(ctx, ctxkeys.Logger, logger.Named("mcp_request"))
		}),
	)
	s.handler = withHTTPLogging(streamable, logger.Named("mcp_http"))

	logger.Info("mcp server ready", zap.Strings("tools", s.AvailableToolNames()))
	return s, nil
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ServeStdio serves MCP over the given reader and writer until ctx is done or input ends.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := srv.NewStdioServer(s.mcpServer)
	stdio.SetContextFunc(func(ctx context.Context) context.Context {
		return context.WithValue(ctx, ctxkeys.Logger, s.logger.Named("mcp_stdio"))
	})
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "serve mcp over stdio")
	}
	return nil
}

// AvailableToolNames lists the registered tools in sorted order.
func (s *Server) AvailableToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// toolHandler wraps a tool so every call runs with a request logger and is logged once.
func (s *Server) toolHandler(name string, tool tools.Tool) srv.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.callTool(ctx, name, tool, req)
	}
}
