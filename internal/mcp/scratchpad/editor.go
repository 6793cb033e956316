package scratchpad

import (
	"strings"
)

// EditMode selects how EditScratchpad rewrites content.
type EditMode string

const (
	// EditModeReplace replaces the whole content.
	EditModeReplace EditMode = "replace"
	// EditModeInsertAtLine inserts lines before a 1-based line number.
	EditModeInsertAtLine EditMode = "insert_at_line"
	// EditModeReplaceLines replaces an inclusive 1-based line range.
	EditModeReplaceLines EditMode = "replace_lines"
	// EditModeAppendSection appends to the end of a marked section.
	EditModeAppendSection EditMode = "append_section"
)

// ParseEditMode validates a mode name.
func ParseEditMode(raw string) (EditMode, error) {
	switch mode := EditMode(strings.TrimSpace(raw)); mode {
	case EditModeReplace, EditModeInsertAtLine, EditModeReplaceLines, EditModeAppendSection:
		return mode, nil
	default:
		return "", newValidationError("unsupported edit mode %q", raw)
	}
}

// EditParams describes one edit.
type EditParams struct {
	ScratchpadID  string
	Mode          EditMode
	Content       string
	LineNumber    int
	StartLine     int
	EndLine       int
	SectionMarker string
}

// LineRange is an inclusive 1-based line range.
type LineRange struct {
	Start int
	End   int
}

// EditResult reports what an edit changed. It is never persisted.
type EditResult struct {
	Scratchpad        Scratchpad
	Mode              EditMode
	LinesAffected     int
	SizeChangeBytes   int64
	PreviousSizeBytes int64
	NewSizeBytes      int64
	LineCount         int
	InsertionPoint    *int
	ReplacedRange     *LineRange
	SectionCreated    bool
}

// lineDocument is content split on its own line delimiter.
type lineDocument struct {
	lines     []string
	delimiter string
}

// parseLines splits content on "\n". The delimiter is CRLF only when every
// line break is CRLF; otherwise a stray "\r" stays part of its line.
func parseLines(content string) lineDocument {
	doc := lineDocument{delimiter: "\n"}
	if content == "" {
		return doc
	}

	doc.lines = strings.Split(content, "\n")
	breaks := doc.lines[:len(doc.lines)-1]
	if len(breaks) == 0 {
		return doc
	}
	for _, line := range breaks {
		if !strings.HasSuffix(line, "\r") {
			return doc
		}
	}
	doc.delimiter = "\r\n"
	for i := range breaks {
		doc.lines[i] = strings.TrimSuffix(doc.lines[i], "\r")
	}
	return doc
}

func (d lineDocument) render() string {
	return strings.Join(d.lines, d.delimiter)
}

// suppliedLines splits caller text into lines, dropping one trailing delimiter.
func suppliedLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// splice returns lines with lines[from:to] replaced by insert.
func splice(lines []string, from, to int, insert []string) []string {
	out := make([]string, 0, len(lines)-(to-from)+len(insert))
	out = append(out, lines[:from]...)
	out = append(out, insert...)
	out = append(out, lines[to:]...)
	return out
}

// editOutcome is the pure result of applying an edit to content.
type editOutcome struct {
	content        string
	linesAffected  int
	lineCount      int
	insertionPoint *int
	replacedRange  *LineRange
	sectionCreated bool
}

// applyEdit rewrites content according to params without touching storage.
func applyEdit(content string, params EditParams) (editOutcome, error) {
	switch params.Mode {
	case EditModeReplace:
		lines := len(parseLines(params.Content).lines)
		return editOutcome{content: params.Content, linesAffected: lines, lineCount: lines}, nil
	case EditModeInsertAtLine:
		return insertAtLine(parseLines(content), params.LineNumber, params.Content)
	case EditModeReplaceLines:
		return replaceLines(parseLines(content), params.StartLine, params.EndLine, params.Content)
	case EditModeAppendSection:
		return appendSection(parseLines(content), params.SectionMarker, params.Content)
	default:
		return editOutcome{}, newValidationError("unsupported edit mode %q", params.Mode)
	}
}

func insertAtLine(doc lineDocument, lineNumber int, text string) (editOutcome, error) {
	count := len(doc.lines)
	if lineNumber < 1 || lineNumber > count+1 {
		return editOutcome{}, newValidationError("line_number must be between 1 and %d, got %d", count+1, lineNumber)
	}

	inserted := suppliedLines(text)
	if len(inserted) == 0 {
		inserted = []string{""}
	}
	doc.lines = splice(doc.lines, lineNumber-1, lineNumber-1, inserted)

	point := lineNumber
	return editOutcome{
		content:        doc.render(),
		linesAffected:  len(inserted),
		lineCount:      len(doc.lines),
		insertionPoint: &point,
	}, nil
}

func replaceLines(doc lineDocument, start, end int, text string) (editOutcome, error) {
	count := len(doc.lines)
	if count == 0 {
		return editOutcome{}, newValidationError("cannot replace lines of empty content")
	}
	if start < 1 || end < start || end > count {
		return editOutcome{}, newValidationError(
			"line range must satisfy 1 <= start_line <= end_line <= %d, got %d..%d", count, start, end)
	}

	replacement := suppliedLines(text)
	doc.lines = splice(doc.lines, start-1, end, replacement)

	return editOutcome{
		content:       doc.render(),
		linesAffected: max(end-start+1, len(replacement)),
		lineCount:     len(doc.lines),
		replacedRange: &LineRange{Start: start, End: end},
	}, nil
}

func appendSection(doc lineDocument, marker, text string) (editOutcome, error) {
	marker = strings.TrimRight(marker, "\r\n")
	if strings.TrimSpace(marker) == "" {
		return editOutcome{}, newValidationError("section_marker is required for append_section")
	}
	inserted := suppliedLines(text)
	if len(inserted) == 0 {
		return editOutcome{}, newValidationError("content is required for append_section")
	}

	markerAt := -1
	for i, line := range doc.lines {
		if strings.TrimSuffix(line, "\r") == marker {
			markerAt = i
			break
		}
	}

	if markerAt < 0 {
		point := len(doc.lines) + 1
		doc.lines = append(doc.lines, marker)
		doc.lines = append(doc.lines, inserted...)
		return editOutcome{
			content:        doc.render(),
			linesAffected:  len(inserted) + 1,
			lineCount:      len(doc.lines),
			insertionPoint: &point,
			sectionCreated: true,
		}, nil
	}

	end := markerAt + 1
	for end < len(doc.lines) && !isSectionBoundary(doc.lines[end], marker) {
		end++
	}
	// keep blank lines that separate this section from the next one after the insert
	for end > markerAt+1 && strings.TrimSpace(doc.lines[end-1]) == "" {
		end--
	}
	doc.lines = splice(doc.lines, end, end, inserted)

	point := end + 1
	return editOutcome{
		content:        doc.render(),
		linesAffected:  len(inserted),
		lineCount:      len(doc.lines),
		insertionPoint: &point,
	}, nil
}

// isSectionBoundary reports whether line starts a new section.
func isSectionBoundary(line, marker string) bool {
	if strings.TrimSuffix(line, "\r") == marker {
		return true
	}
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "#")
}
