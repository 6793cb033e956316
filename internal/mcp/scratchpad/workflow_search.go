package scratchpad

import (
	"context"
	"sort"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"gorm.io/gorm"
)

const (
	matchedByLatin    = "latin"
	matchedByResidual = "residual"

	weightWorkflowName        = 5
	weightWorkflowDescription = 3
	weightScratchpadTitle     = 3
	weightScratchpadContent   = 1

	scoringBatchSize = 500
)

// searchTerm is one scored unit of a workflow query.
type searchTerm struct {
	text   string
	tokens []string
	// byTokens scores workflow fields by token sequence instead of substring.
	byTokens bool
}

// scoredPad holds one scratchpad's text as index tokens.
type scoredPad struct {
	title   []string
	content []string
}

// SearchWorkflows ranks workflows by weighted term occurrences in their own
// fields and in every scratchpad they own.
//
// Latin words and the non-Latin residual are searched separately and the two
// candidate sets are merged by workflow, so no workflow is counted twice.
func (s *Service) SearchWorkflows(ctx context.Context, params WorkflowSearchParams) (WorkflowSearchResult, error) {
	if params.Page < 1 {
		return WorkflowSearchResult{}, newValidationError("page must be >= 1")
	}

	split := splitWorkflowQuery(params.Query)
	residualTokens := indexTokens(split.residual)
	if len(split.latin) == 0 && len(residualTokens) == 0 {
		return WorkflowSearchResult{}, newValidationError("query must contain searchable text")
	}

	db := s.db.WithContext(ctx)
	var scoped []Workflow
	if err := scopedWorkflows(db, params.ProjectScope).Find(&scoped).Error; err != nil {
		return WorkflowSearchResult{}, errors.Wrap(err, "load scoped workflows")
	}
	inScope := make(map[string]Workflow, len(scoped))
	for _, wf := range scoped {
		inScope[wf.ID] = wf
	}

	latinTerms := make([]searchTerm, 0, len(split.latin))
	for _, token := range split.latin {
		latinTerms = append(latinTerms, searchTerm{text: token, tokens: []string{token}})
	}
	var residualTerm *searchTerm
	if len(residualTokens) > 0 {
		residualTerm = &searchTerm{text: split.residual, tokens: residualTokens, byTokens: true}
	}

	found := make(map[string]map[string]bool)
	mark := func(workflowID, side string) {
		if _, ok := inScope[workflowID]; !ok {
			return
		}
		if found[workflowID] == nil {
			found[workflowID] = make(map[string]bool, 2)
		}
		found[workflowID][side] = true
	}

	if len(latinTerms) > 0 {
		for _, wf := range scoped {
			for _, term := range latinTerms {
				if workflowFieldScore(wf, term) > 0 {
					mark(wf.ID, matchedByLatin)
					break
				}
			}
		}
		owners, err := s.latinScratchpadOwners(ctx, db, split.latin)
		if err != nil {
			return WorkflowSearchResult{}, err
		}
		for _, id := range owners {
			mark(id, matchedByLatin)
		}
	}

	if residualTerm != nil {
		for _, wf := range scoped {
			if workflowFieldScore(wf, *residualTerm) > 0 {
				mark(wf.ID, matchedByResidual)
			}
		}
		owners, err := s.residualScratchpadOwners(ctx, db, split.residual)
		if err != nil {
			return WorkflowSearchResult{}, err
		}
		for _, id := range owners {
			mark(id, matchedByResidual)
		}
	}

	candidateIDs := make([]string, 0, len(found))
	for id := range found {
		candidateIDs = append(candidateIDs, id)
	}
	pads, err := loadScoredPads(db, candidateIDs)
	if err != nil {
		return WorkflowSearchResult{}, err
	}

	matches := make([]WorkflowMatch, 0, len(found))
	for id, sides := range found {
		wf := inScope[id]
		latinScore := 0
		for _, term := range latinTerms {
			latinScore += workflowTermScore(wf, pads[id], term)
		}
		residualScore := 0
		if residualTerm != nil {
			residualScore = workflowTermScore(wf, pads[id], *residualTerm)
		}

		total := latinScore + residualScore
		if total == 0 {
			continue
		}

		matchedBy := matchedByLatin
		switch {
		case sides[matchedByLatin] && sides[matchedByResidual]:
			if residualScore > latinScore {
				matchedBy = matchedByResidual
			}
		case sides[matchedByResidual]:
			matchedBy = matchedByResidual
		}
		matches = append(matches, WorkflowMatch{Workflow: wf, Score: total, MatchedBy: matchedBy})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Workflow.UpdatedAt != matches[j].Workflow.UpdatedAt {
			return matches[i].Workflow.UpdatedAt > matches[j].Workflow.UpdatedAt
		}
		return matches[i].Workflow.ID > matches[j].Workflow.ID
	})

	result := WorkflowSearchResult{
		Page:         params.Page,
		PageSize:     WorkflowPageSize,
		TotalMatches: len(matches),
		TotalPages:   (len(matches) + WorkflowPageSize - 1) / WorkflowPageSize,
		LatinTokens:  split.latin,
		Residual:     split.residual,
		Warnings:     s.index.Warnings(),
		Matches:      []WorkflowMatch{},
	}
	start := (params.Page - 1) * WorkflowPageSize
	if start < len(matches) {
		end := min(start+WorkflowPageSize, len(matches))
		result.Matches = matches[start:end]
	}

	s.LoggerFromContext(ctx).Debug("workflow search served",
		zap.Int("latin_tokens", len(split.latin)),
		zap.Bool("has_residual", residualTerm != nil),
		zap.Int("total_matches", result.TotalMatches),
	)
	return result, nil
}

// latinScratchpadOwners returns workflows owning a scratchpad that matches any Latin word.
func (s *Service) latinScratchpadOwners(ctx context.Context, db *gorm.DB, words []string) ([]string, error) {
	if s.index.Available() {
		match := strings.Join(quotedWords(words), " OR ")
		if match != "" {
			hits, err := runFTSMatch(ctx, db, match, searchQuery{})
			switch {
			case err != nil:
				s.noteTierFailure(ctx, SearchTierFTS, err)
			case len(hits) > 0:
				return hitOwners(hits), nil
			}
		}
	}

	hits, err := runSubstringMatch(ctx, db, words, "", 0)
	if err != nil {
		return nil, err
	}
	return hitOwners(hits), nil
}

// residualScratchpadOwners returns workflows owning a scratchpad that matches the residual term.
func (s *Service) residualScratchpadOwners(ctx context.Context, db *gorm.DB, residual string) ([]string, error) {
	q := searchQuery{text: residual}
	strategies := []searchStrategy{
		segmentedTier{index: s.index, segmenter: s.segmenter},
		simplifiedTier{index: s.index},
		substringTier{},
	}

	var lastErr error
	for _, strategy := range strategies {
		hits, err := strategy.attempt(ctx, db, q)
		if err != nil {
			lastErr = err
			s.noteTierFailure(ctx, strategy.tier(), err)
			continue
		}
		if len(hits) == 0 && strategy.tier() != SearchTierSubstring {
			continue
		}
		return hitOwners(hits), nil
	}
	return nil, errors.Wrap(lastErr, "match residual query")
}

func hitOwners(hits []scratchpadHit) []string {
	owners := make([]string, 0, len(hits))
	for _, hit := range hits {
		owners = append(owners, hit.WorkflowID)
	}
	return owners
}

// loadScoredPads tokenizes every scratchpad owned by the given workflows.
func loadScoredPads(db *gorm.DB, workflowIDs []string) (map[string][]scoredPad, error) {
	pads := make(map[string][]scoredPad, len(workflowIDs))
	for start := 0; start < len(workflowIDs); start += scoringBatchSize {
		end := min(start+scoringBatchSize, len(workflowIDs))

		var rows []Scratchpad
		if err := db.Select("workflow_id", "title", "content").
			Where("workflow_id IN ?", workflowIDs[start:end]).
			Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "load scratchpads for scoring")
		}
		for _, row := range rows {
			pads[row.WorkflowID] = append(pads[row.WorkflowID], scoredPad{
				title:   indexTokens(row.Title),
				content: indexTokens(row.Content),
			})
		}
	}
	return pads, nil
}

// workflowFieldScore scores a term against the workflow's own name and description.
// Latin words count as substrings; the residual counts as an index token sequence,
// which ignores punctuation the same way scratchpad scoring does.
func workflowFieldScore(wf Workflow, term searchTerm) int {
	count := func(field string) int {
		if term.byTokens {
			return countTokenSequence(indexTokens(field), term.tokens)
		}
		return countSubstring(field, term.text)
	}

	score := weightWorkflowName * count(wf.Name)
	if wf.Description != nil {
		score += weightWorkflowDescription * count(*wf.Description)
	}
	return score
}

// workflowTermScore scores a term against the workflow and every scratchpad it owns.
func workflowTermScore(wf Workflow, pads []scoredPad, term searchTerm) int {
	score := workflowFieldScore(wf, term)
	for _, pad := range pads {
		score += weightScratchpadTitle * countTokenSequence(pad.title, term.tokens)
		score += weightScratchpadContent * countTokenSequence(pad.content, term.tokens)
	}
	return score
}
