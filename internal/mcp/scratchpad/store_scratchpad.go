package scratchpad

import (
	"context"
	"fmt"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"gorm.io/gorm"
)

// CreateScratchpad stores a new scratchpad under an existing workflow.
func (s *Service) CreateScratchpad(ctx context.Context, workflowID, title, content string) (Scratchpad, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Scratchpad{}, newValidationError("title is required")
	}
	if err := s.checkContentSize(content); err != nil {
		return Scratchpad{}, err
	}

	var created Scratchpad
	err := s.withWriteTx(ctx, func(tx *gorm.DB) error {
		wf, err := s.getWorkflow(ctx, tx, workflowID)
		if err != nil {
			return err
		}
		if !wf.IsActive {
			return &Error{
				Code:    ErrCodeNotFound,
				Message: fmt.Sprintf("workflow %q is not active", wf.ID),
				Details: map[string]any{"entity": "workflow", "id": wf.ID, "is_active": false},
			}
		}

		now := s.now()
		created = Scratchpad{
			ID:         newID(),
			WorkflowID: wf.ID,
			Title:      title,
			Content:    content,
			SizeBytes:  int64(len(content)),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return errors.Wrap(err, "insert scratchpad")
		}
		if err := s.index.upsertTx(tx, created); err != nil {
			return err
		}
		return touchWorkflowTx(tx, wf.ID, now, 1)
	})
	if err != nil {
		return Scratchpad{}, err
	}

	s.LoggerFromContext(ctx).Debug("scratchpad created",
		zap.String("scratchpad_id", created.ID),
		zap.String("workflow_id", created.WorkflowID),
		zap.Int64("size_bytes", created.SizeBytes),
	)
	return created, nil
}

// GetScratchpad loads one scratchpad by id.
func (s *Service) GetScratchpad(ctx context.Context, id string) (Scratchpad, error) {
	return s.getScratchpad(s.db.WithContext(ctx), id)
}

func (s *Service) getScratchpad(db *gorm.DB, id string) (Scratchpad, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Scratchpad{}, newValidationError("scratchpad_id is required")
	}

	var sp Scratchpad
	if err := db.Where("id = ?", id).Take(&sp).Error; err != nil {
		if isRecordNotFound(err) {
			return Scratchpad{}, newNotFoundError("scratchpad", id)
		}
		return Scratchpad{}, errors.Wrapf(err, "load scratchpad %s", id)
	}
	return sp, nil
}

// AppendScratchpad appends content to the end of a scratchpad verbatim.
func (s *Service) AppendScratchpad(ctx context.Context, id, content string) (Scratchpad, error) {
	if content == "" {
		return Scratchpad{}, newValidationError("content is required")
	}

	return s.rewriteScratchpad(ctx, id, func(sp Scratchpad) (string, error) {
		return sp.Content + content, nil
	})
}

// rewriteScratchpad replaces a scratchpad's content with the output of produce.
//
// The size ceiling is checked before anything is written.
func (s *Service) rewriteScratchpad(ctx context.Context, id string, produce func(Scratchpad) (string, error)) (Scratchpad, error) {
	var updated Scratchpad
	err := s.withWriteTx(ctx, func(tx *gorm.DB) error {
		sp, err := s.getScratchpad(tx, id)
		if err != nil {
			return err
		}

		content, err := produce(sp)
		if err != nil {
			return err
		}
		if err := s.checkContentSize(content); err != nil {
			return err
		}

		now := s.now()
		sp.Content = content
		sp.SizeBytes = int64(len(content))
		sp.UpdatedAt = bumpTime(now, sp.UpdatedAt)
		if err := tx.Model(&Scratchpad{}).Where("id = ?", sp.ID).Updates(map[string]any{
			"content":    sp.Content,
			"size_bytes": sp.SizeBytes,
			"updated_at": sp.UpdatedAt,
		}).Error; err != nil {
			return errors.Wrapf(err, "update scratchpad %s", sp.ID)
		}
		if err := s.index.upsertTx(tx, sp); err != nil {
			return err
		}
		if err := touchWorkflowTx(tx, sp.WorkflowID, sp.UpdatedAt, 0); err != nil {
			return err
		}

		updated = sp
		return nil
	})
	if err != nil {
		return Scratchpad{}, err
	}
	return updated, nil
}

// ListScratchpads pages through a workflow's scratchpads, newest first.
func (s *Service) ListScratchpads(ctx context.Context, workflowID string, limit, offset int) (ListScratchpadsResult, error) {
	if offset < 0 {
		return ListScratchpadsResult{}, newValidationError("offset must be >= 0")
	}
	limit = clampLimit(limit, s.settings.List.LimitDefault, s.settings.List.LimitMax)

	db := s.db.WithContext(ctx)
	wf, err := s.getWorkflow(ctx, db, workflowID)
	if err != nil {
		return ListScratchpadsResult{}, err
	}

	var total int64
	if err := db.Model(&Scratchpad{}).Where("workflow_id = ?", wf.ID).Count(&total).Error; err != nil {
		return ListScratchpadsResult{}, errors.Wrap(err, "count scratchpads")
	}

	var scratchpads []Scratchpad
	if err := db.Where("workflow_id = ?", wf.ID).
		Order("updated_at DESC").Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&scratchpads).Error; err != nil {
		return ListScratchpadsResult{}, errors.Wrap(err, "list scratchpads")
	}

	return ListScratchpadsResult{
		Scratchpads: scratchpads,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
		HasMore:     int64(offset+len(scratchpads)) < total,
	}, nil
}

// DeleteScratchpad removes one scratchpad and its index entry.
func (s *Service) DeleteScratchpad(ctx context.Context, id string) error {
	return s.withWriteTx(ctx, func(tx *gorm.DB) error {
		sp, err := s.getScratchpad(tx, id)
		if err != nil {
			return err
		}

		if err := s.index.deleteTx(tx, sp.ID); err != nil {
			return err
		}
		if err := tx.Where("id = ?", sp.ID).Delete(&Scratchpad{}).Error; err != nil {
			return errors.Wrapf(err, "delete scratchpad %s", sp.ID)
		}
		return touchWorkflowTx(tx, sp.WorkflowID, s.now(), -1)
	})
}

// clampLimit applies the default when limit is unset and caps it at max.
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
