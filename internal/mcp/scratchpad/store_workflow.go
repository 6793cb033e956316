package scratchpad

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"gorm.io/gorm"
)

// CreateWorkflow stores a new active workflow.
func (s *Service) CreateWorkflow(ctx context.Context, name string, description, projectScope *string) (Workflow, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Workflow{}, newValidationError("name is required")
	}

	now := s.now()
	wf := Workflow{
		ID:           newID(),
		Name:         name,
		Description:  normalizeOptional(description),
		ProjectScope: normalizeOptional(projectScope),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.withWriteTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&wf).Error
	}); err != nil {
		return Workflow{}, errors.Wrap(err, "create workflow")
	}

	s.LoggerFromContext(ctx).Debug("workflow created",
		zap.String("workflow_id", wf.ID),
		zap.Bool("scoped", wf.ProjectScope != nil),
	)
	return wf, nil
}

// GetWorkflow loads one workflow by id.
func (s *Service) GetWorkflow(ctx context.Context, id string) (Workflow, error) {
	return s.getWorkflow(ctx, s.db.WithContext(ctx), id)
}

func (s *Service) getWorkflow(_ context.Context, db *gorm.DB, id string) (Workflow, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Workflow{}, newValidationError("workflow_id is required")
	}

	var wf Workflow
	if err := db.Where("id = ?", id).Take(&wf).Error; err != nil {
		if isRecordNotFound(err) {
			return Workflow{}, newNotFoundError("workflow", id)
		}
		return Workflow{}, errors.Wrapf(err, "load workflow %s", id)
	}
	return wf, nil
}

// scopedWorkflows applies the optional project scope filter.
func scopedWorkflows(db *gorm.DB, projectScope *string) *gorm.DB {
	query := db.Model(&Workflow{})
	if scope := normalizeOptional(projectScope); scope != nil {
		query = query.Where("project_scope = ?", *scope)
	}
	return query
}

// ListWorkflows returns workflows newest first, optionally filtered by project scope.
func (s *Service) ListWorkflows(ctx context.Context, projectScope *string) ([]Workflow, error) {
	var workflows []Workflow
	if err := scopedWorkflows(s.db.WithContext(ctx), projectScope).
		Order("updated_at DESC").Order("id DESC").
		Find(&workflows).Error; err != nil {
		return nil, errors.Wrap(err, "list workflows")
	}
	return workflows, nil
}

// GetLatestActiveWorkflow returns the most recently updated active workflow.
func (s *Service) GetLatestActiveWorkflow(ctx context.Context, projectScope *string) (Workflow, error) {
	var workflows []Workflow
	if err := scopedWorkflows(s.db.WithContext(ctx), projectScope).
		Where("is_active = ?", true).
		Order("updated_at DESC").Order("id DESC").
		Limit(1).
		Find(&workflows).Error; err != nil {
		return Workflow{}, errors.Wrap(err, "load latest active workflow")
	}
	if len(workflows) == 0 {
		return Workflow{}, &Error{
			Code:    ErrCodeNotFound,
			Message: "no active workflow found",
			Details: map[string]any{"entity": "workflow"},
		}
	}
	return workflows[0], nil
}

// UpdateWorkflowStatus activates or deactivates a workflow.
func (s *Service) UpdateWorkflowStatus(ctx context.Context, id string, isActive bool) (Workflow, error) {
	return s.updateWorkflow(ctx, id, func(wf *Workflow) {
		wf.IsActive = isActive
	})
}

// UpdateWorkflowScope sets or clears the project scope of a workflow.
func (s *Service) UpdateWorkflowScope(ctx context.Context, id string, projectScope *string) (Workflow, error) {
	scope := normalizeOptional(projectScope)
	return s.updateWorkflow(ctx, id, func(wf *Workflow) {
		wf.ProjectScope = scope
	})
}

func (s *Service) updateWorkflow(ctx context.Context, id string, mutate func(*Workflow)) (Workflow, error) {
	var updated Workflow
	err := s.withWriteTx(ctx, func(tx *gorm.DB) error {
		wf, err := s.getWorkflow(ctx, tx, id)
		if err != nil {
			return err
		}

		mutate(&wf)
		wf.UpdatedAt = bumpTime(s.now(), wf.UpdatedAt)
		if err := tx.Model(&Workflow{}).Where("id = ?", wf.ID).Updates(map[string]any{
			"is_active":     wf.IsActive,
			"project_scope": wf.ProjectScope,
			"updated_at":    wf.UpdatedAt,
		}).Error; err != nil {
			return errors.Wrapf(err, "update workflow %s", wf.ID)
		}

		updated = wf
		return nil
	})
	if err != nil {
		return Workflow{}, err
	}
	return updated, nil
}

// DeleteWorkflow removes a workflow together with its scratchpads and their index entries.
//
// It returns the number of scratchpads removed.
func (s *Service) DeleteWorkflow(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := s.withWriteTx(ctx, func(tx *gorm.DB) error {
		wf, err := s.getWorkflow(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := s.index.deleteByWorkflowTx(tx, wf.ID); err != nil {
			return err
		}

		result := tx.Where("workflow_id = ?", wf.ID).Delete(&Scratchpad{})
		if result.Error != nil {
			return errors.Wrapf(result.Error, "delete scratchpads of workflow %s", wf.ID)
		}
		removed = result.RowsAffected

		if err := tx.Where("id = ?", wf.ID).Delete(&Workflow{}).Error; err != nil {
			return errors.Wrapf(err, "delete workflow %s", wf.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.LoggerFromContext(ctx).Info("workflow deleted",
		zap.String("workflow_id", id),
		zap.Int64("scratchpads_removed", removed),
	)
	return removed, nil
}

// touchWorkflowTx advances a workflow's updated_at and adjusts its scratchpad count.
func touchWorkflowTx(tx *gorm.DB, workflowID string, now int64, countDelta int) error {
	err := tx.Exec(
		"UPDATE workflows SET updated_at = MAX(updated_at, ?), scratchpad_count = scratchpad_count + ? WHERE id = ?",
		now, countDelta, workflowID,
	).Error
	if err != nil {
		return errors.Wrapf(err, "touch workflow %s", workflowID)
	}
	return nil
}
