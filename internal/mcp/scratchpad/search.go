package scratchpad

import (
	"context"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
)

// searchStrategies returns the tiers to try, best first.
func (s *Service) searchStrategies(forceSubstring bool) []searchStrategy {
	if forceSubstring {
		return []searchStrategy{substringTier{}}
	}
	return []searchStrategy{
		segmentedTier{index: s.index, segmenter: s.segmenter},
		simplifiedTier{index: s.index},
		ftsTier{index: s.index},
		substringTier{},
	}
}

// SearchScratchpads runs the query down the tier ladder and returns the first successful result.
//
// An empty result from a tier counts as success. Only a substring tier failure
// reaches the caller.
func (s *Service) SearchScratchpads(ctx context.Context, params SearchParams) (SearchResult, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return SearchResult{}, newValidationError("query is required")
	}

	limit := clampLimit(params.Limit, s.settings.Search.LimitDefault, s.settings.Search.LimitMax)
	workflowID := strings.TrimSpace(params.WorkflowID)
	if workflowID != "" {
		if _, err := s.GetWorkflow(ctx, workflowID); err != nil {
			return SearchResult{}, err
		}
	}

	logger := s.LoggerFromContext(ctx)
	q := searchQuery{text: query, workflowID: workflowID, limit: limit}
	db := s.db.WithContext(ctx)

	var lastErr error
	for _, strategy := range s.searchStrategies(params.ForceSubstring) {
		hits, err := strategy.attempt(ctx, db, q)
		if err != nil {
			lastErr = err
			s.noteTierFailure(ctx, strategy.tier(), err)
			continue
		}
		if len(hits) == 0 && strategy.tier() != SearchTierSubstring {
			// text glued to CJK runes is one index token, so an empty
			// index result is not conclusive
			logger.Debug("index tier found nothing, trying next tier",
				zap.String("tier", string(strategy.tier())))
			continue
		}

		loaded, err := s.loadSearchHits(ctx, query, hits)
		if err != nil {
			return SearchResult{}, err
		}

		logger.Debug("scratchpad search served",
			zap.String("tier", string(strategy.tier())),
			zap.Int("hits", len(loaded)),
		)
		return SearchResult{
			Hits:     loaded,
			Tier:     strategy.tier(),
			Warnings: s.index.Warnings(),
		}, nil
	}

	return SearchResult{}, errors.Wrap(lastErr, "search scratchpads")
}

// noteTierFailure logs a tier fall-through and hands query errors to the index for repair.
func (s *Service) noteTierFailure(ctx context.Context, tier SearchTier, err error) {
	logger := s.LoggerFromContext(ctx)
	if errors.Is(err, errTierNotApplicable) {
		logger.Debug("search tier skipped", zap.String("tier", string(tier)))
		return
	}
	if IsCode(err, ErrCodeIndexUnavailable) {
		logger.Debug("search tier unavailable", zap.String("tier", string(tier)), zap.Error(err))
		return
	}

	logger.Warn("search tier failed, falling back", zap.String("tier", string(tier)), zap.Error(err))
	s.index.noteQueryError(ctx, err)
}

// loadSearchHits resolves hit ids into rows in hit order, adding snippets.
//
// Rows deleted between the match and the load are skipped.
func (s *Service) loadSearchHits(ctx context.Context, query string, hits []scratchpadHit) ([]SearchHit, error) {
	if len(hits) == 0 {
		return []SearchHit{}, nil
	}

	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		ids = append(ids, hit.ScratchpadID)
	}

	db := s.db.WithContext(ctx)
	var scratchpads []Scratchpad
	if err := db.Where("id IN ?", ids).Find(&scratchpads).Error; err != nil {
		return nil, errors.Wrap(err, "load search hits")
	}
	byID := make(map[string]Scratchpad, len(scratchpads))
	workflowIDs := make([]string, 0, len(scratchpads))
	seenWorkflow := make(map[string]struct{})
	for _, sp := range scratchpads {
		byID[sp.ID] = sp
		if _, ok := seenWorkflow[sp.WorkflowID]; !ok {
			seenWorkflow[sp.WorkflowID] = struct{}{}
			workflowIDs = append(workflowIDs, sp.WorkflowID)
		}
	}

	var workflows []Workflow
	if err := db.Where("id IN ?", workflowIDs).Find(&workflows).Error; err != nil {
		return nil, errors.Wrap(err, "load workflows of search hits")
	}
	workflowByID := make(map[string]Workflow, len(workflows))
	for _, wf := range workflows {
		workflowByID[wf.ID] = wf
	}

	results := make([]SearchHit, 0, len(hits))
	for _, hit := range hits {
		sp, ok := byID[hit.ScratchpadID]
		if !ok {
			continue
		}
		wf, ok := workflowByID[sp.WorkflowID]
		if !ok {
			continue
		}
		results = append(results, SearchHit{
			Scratchpad: sp,
			Workflow:   wf,
			Rank:       hit.Score,
			Snippet:    buildSnippet(sp.Content, query, s.settings.Search.SnippetLength),
		})
	}
	return results, nil
}
