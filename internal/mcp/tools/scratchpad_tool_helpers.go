package tools

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/jinzhu/copier"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/ctxkeys"
	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
	"github.com/Laisky/scratchpad-mcp/library/log"
)

// errServiceRequired is returned by tool constructors given a nil service.
var errServiceRequired = scratchpad.NewError(scratchpad.ErrCodeInternal, "scratchpad service is required", false)

// toolLoggerFromContext returns a request-scoped logger when available.
func toolLoggerFromContext(ctx context.Context) logSDK.Logger {
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		return ctxLogger
	}
	if ctxLogger, ok := ctx.Value(ctxkeys.Logger).(logSDK.Logger); ok && ctxLogger != nil {
		return ctxLogger
	}

	return log.Logger.Named("mcp_scratchpad_tools")
}

// toolErrorResult builds a structured MCP error response.
func toolErrorResult(code scratchpad.ErrorCode, message string, retryable bool, details map[string]any) *mcp.CallToolResult {
	payload := map[string]any{
		"code":      string(code),
		"message":   message,
		"retryable": retryable,
	}
	if len(details) > 0 {
		payload["details"] = details
	}
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return mcp.NewToolResultError(message)
	}
	result.IsError = true
	return result
}

// toolErrorFromErr converts service errors into tool responses.
//
// Untyped errors are logged and reported as INTERNAL without leaking details.
func toolErrorFromErr(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	if err == nil {
		return nil
	}
	if typed, ok := scratchpad.AsError(err); ok {
		return toolErrorResult(typed.Code, typed.Message, typed.Retryable, typed.Details)
	}

	toolLoggerFromContext(ctx).Error("scratchpad tool failed", zap.String("tool", tool), zap.Error(err))
	return toolErrorResult(scratchpad.ErrCodeInternal, "internal error", true, nil)
}

// validationErrorResult reports a malformed tool argument.
func validationErrorResult(err error) *mcp.CallToolResult {
	return toolErrorResult(scratchpad.ErrCodeValidation, err.Error(), false, nil)
}

// jsonResult encodes a successful payload.
func jsonResult(payload map[string]any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return toolErrorResult(scratchpad.ErrCodeInternal, "failed to encode response", true, nil), nil
	}
	return result, nil
}

// readStringArg extracts an optional string argument from the request.
func readStringArg(req mcp.CallToolRequest, key string) string {
	if value := readOptionalStringArg(req, key); value != nil {
		return *value
	}
	return ""
}

// readOptionalStringArg returns nil when the argument is absent or not a string.
func readOptionalStringArg(req mcp.CallToolRequest, key string) *string {
	raw, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	if value, ok := raw[key].(string); ok {
		return &value
	}
	return nil
}

// readIntArgWithDefault extracts an optional int argument with a default fallback.
func readIntArgWithDefault(req mcp.CallToolRequest, key string, def int) int {
	raw, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	switch value := raw[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return def
	}
}

// readBoolArgWithDefault extracts an optional bool argument with a default fallback.
func readBoolArgWithDefault(req mcp.CallToolRequest, key string, def bool) bool {
	raw, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if value, ok := raw[key].(bool); ok {
		return value
	}
	return def
}

// formatTimestamp renders epoch seconds as RFC 3339 in UTC.
func formatTimestamp(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}

var timestampCopyOption = copier.Option{
	Converters: []copier.TypeConverter{{
		SrcType: int64(0),
		DstType: copier.String,
		Fn: func(src any) (any, error) {
			epoch, ok := src.(int64)
			if !ok {
				return nil, errors.New("timestamp must be int64")
			}
			return formatTimestamp(epoch), nil
		},
	}},
}

// workflowView is the wire shape of a workflow.
type workflowView struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description"`
	ProjectScope    *string `json:"project_scope"`
	IsActive        bool    `json:"is_active"`
	ScratchpadCount int     `json:"scratchpad_count"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// scratchpadView is the wire shape of a scratchpad. Content is omitted unless requested.
type scratchpadView struct {
	ID         string  `json:"id"`
	WorkflowID string  `json:"workflow_id"`
	Title      string  `json:"title"`
	Content    *string `json:"content,omitempty" copier:"-"`
	SizeBytes  int64   `json:"size_bytes"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func newWorkflowView(wf scratchpad.Workflow) (workflowView, error) {
	var view workflowView
	if err := copier.CopyWithOption(&view, &wf, timestampCopyOption); err != nil {
		return workflowView{}, errors.Wrap(err, "copy workflow view")
	}
	return view, nil
}

func newWorkflowViews(workflows []scratchpad.Workflow) ([]workflowView, error) {
	views := make([]workflowView, 0, len(workflows))
	for _, wf := range workflows {
		view, err := newWorkflowView(wf)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func newScratchpadView(sp scratchpad.Scratchpad, includeContent bool) (scratchpadView, error) {
	var view scratchpadView
	if err := copier.CopyWithOption(&view, &sp, timestampCopyOption); err != nil {
		return scratchpadView{}, errors.Wrap(err, "copy scratchpad view")
	}
	if includeContent {
		content := sp.Content
		view.Content = &content
	}
	return view, nil
}
