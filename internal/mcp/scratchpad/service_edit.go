package scratchpad

import (
	"context"

	"github.com/Laisky/zap"
)

// EditScratchpad applies one line-accurate edit inside a single write transaction.
//
// When the edited content would exceed the size ceiling the stored row is left unchanged.
func (s *Service) EditScratchpad(ctx context.Context, params EditParams) (EditResult, error) {
	if _, err := ParseEditMode(string(params.Mode)); err != nil {
		return EditResult{}, err
	}

	var (
		outcome      editOutcome
		previousSize int64
	)
	updated, err := s.rewriteScratchpad(ctx, params.ScratchpadID, func(sp Scratchpad) (string, error) {
		var err error
		previousSize = sp.SizeBytes
		outcome, err = applyEdit(sp.Content, params)
		if err != nil {
			return "", err
		}
		return outcome.content, nil
	})
	if err != nil {
		return EditResult{}, err
	}

	result := EditResult{
		Scratchpad:        updated,
		Mode:              params.Mode,
		LinesAffected:     outcome.linesAffected,
		SizeChangeBytes:   updated.SizeBytes - previousSize,
		PreviousSizeBytes: previousSize,
		NewSizeBytes:      updated.SizeBytes,
		LineCount:         outcome.lineCount,
		InsertionPoint:    outcome.insertionPoint,
		ReplacedRange:     outcome.replacedRange,
		SectionCreated:    outcome.sectionCreated,
	}

	s.LoggerFromContext(ctx).Debug("scratchpad edited",
		zap.String("scratchpad_id", updated.ID),
		zap.String("mode", string(params.Mode)),
		zap.Int("lines_affected", result.LinesAffected),
		zap.Int64("size_change_bytes", result.SizeChangeBytes),
	)
	return result, nil
}
