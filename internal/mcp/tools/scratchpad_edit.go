package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Laisky/scratchpad-mcp/internal/mcp/scratchpad"
)

// EditScratchpadTool implements the edit-scratchpad MCP tool.
type EditScratchpadTool struct {
	svc ScratchpadService
}

// NewEditScratchpadTool constructs an EditScratchpadTool.
func NewEditScratchpadTool(svc ScratchpadService) (*EditScratchpadTool, error) {
	if svc == nil {
		return nil, errServiceRequired
	}
	return &EditScratchpadTool{svc: svc}, nil
}

// Definition returns the MCP metadata for edit-scratchpad.
func (t *EditScratchpadTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"edit-scratchpad",
		mcp.WithDescription("Edit scratchpad content by line. Modes: replace (whole content), "+
			"insert_at_line (before line_number; line_count+1 appends), replace_lines (start_line..end_line inclusive), "+
			"append_section (after the body of the section starting at section_marker; the marker is created when missing)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Scratchpad id.")),
		mcp.WithString("mode", mcp.Required(), mcp.Description("Edit mode."),
			mcp.Enum(
				string(scratchpad.EditModeReplace),
				string(scratchpad.EditModeInsertAtLine),
				string(scratchpad.EditModeReplaceLines),
				string(scratchpad.EditModeAppendSection),
			)),
		mcp.WithString("content", mcp.Description("New text, required except for append_section. "+
			"Pass an empty string to clear. Lines follow the document's line delimiter.")),
		mcp.WithNumber("line_number", mcp.Description("1-based line for insert_at_line.")),
		mcp.WithNumber("start_line", mcp.Description("1-based first line for replace_lines.")),
		mcp.WithNumber("end_line", mcp.Description("1-based last line for replace_lines, inclusive.")),
		mcp.WithString("section_marker", mcp.Description("Exact line that starts the section for append_section.")),
		mcp.WithBoolean("include_content", mcp.Description("Return the full content after editing.")),
		mcp.WithIdempotentHintAnnotation(false),
	)
}

// Handle executes the edit-scratchpad tool logic.
func (t *EditScratchpadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return validationErrorResult(err), nil
	}
	rawMode, err := req.RequireString("mode")
	if err != nil {
		return validationErrorResult(err), nil
	}
	mode, err := scratchpad.ParseEditMode(rawMode)
	if err != nil {
		return toolErrorFromErr(ctx, "edit-scratchpad", err), nil
	}
	content := readStringArg(req, "content")
	if mode != scratchpad.EditModeAppendSection {
		// a missing content must not silently empty the target lines
		if content, err = req.RequireString("content"); err != nil {
			return validationErrorResult(err), nil
		}
	}

	res, err := t.svc.EditScratchpad(ctx, scratchpad.EditParams{
		ScratchpadID:  id,
		Mode:          mode,
		Content:       content,
		LineNumber:    readIntArgWithDefault(req, "line_number", 0),
		StartLine:     readIntArgWithDefault(req, "start_line", 0),
		EndLine:       readIntArgWithDefault(req, "end_line", 0),
		SectionMarker: readStringArg(req, "section_marker"),
	})
	if err != nil {
		return toolErrorFromErr(ctx, "edit-scratchpad", err), nil
	}

	view, err := newScratchpadView(res.Scratchpad, readBoolArgWithDefault(req, "include_content", false))
	if err != nil {
		return toolErrorFromErr(ctx, "edit-scratchpad", err), nil
	}
	payload := map[string]any{
		"message": fmt.Sprintf("Applied %s to %q: %d lines affected, size %+d bytes",
			res.Mode, res.Scratchpad.Title, res.LinesAffected, res.SizeChangeBytes),
		"scratchpad":          view,
		"mode":                string(res.Mode),
		"lines_affected":      res.LinesAffected,
		"size_change_bytes":   res.SizeChangeBytes,
		"previous_size_bytes": res.PreviousSizeBytes,
		"new_size_bytes":      res.NewSizeBytes,
		"line_count":          res.LineCount,
	}
	if res.InsertionPoint != nil {
		payload["insertion_point"] = *res.InsertionPoint
	}
	if res.ReplacedRange != nil {
		payload["replaced_range"] = map[string]int{"start": res.ReplacedRange.Start, "end": res.ReplacedRange.End}
	}
	if res.Mode == scratchpad.EditModeAppendSection {
		payload["section_created"] = res.SectionCreated
	}
	return jsonResult(payload)
}
