package scratchpad

import (
	"context"
	"sort"
	"strings"

	errors "github.com/Laisky/errors/v2"
	"gorm.io/gorm"
)

// errTierNotApplicable marks a tier that cannot serve the query shape.
var errTierNotApplicable = NewError(ErrCodeIndexUnavailable, "search tier not applicable to query", false)

// searchQuery is the normalized input handed to every tier.
type searchQuery struct {
	text       string
	workflowID string
	// limit caps the hit count; zero returns every match.
	limit int
}

// scratchpadHit is a tier result before rows are loaded.
type scratchpadHit struct {
	ScratchpadID string
	WorkflowID   string
	Score        float64
}

// searchStrategy is one rung of the search degradation ladder.
type searchStrategy interface {
	tier() SearchTier
	attempt(ctx context.Context, db *gorm.DB, q searchQuery) ([]scratchpadHit, error)
}

// segmentedTier matches dictionary segments of a CJK query as index phrases.
type segmentedTier struct {
	index     *IndexSynchronizer
	segmenter *lazySegmenter
}

func (t segmentedTier) tier() SearchTier { return SearchTierSegmented }

func (t segmentedTier) attempt(ctx context.Context, db *gorm.DB, q searchQuery) ([]scratchpadHit, error) {
	if !t.index.Available() {
		return nil, NewError(ErrCodeIndexUnavailable, "full-text index unavailable", false)
	}
	if !containsCJK(q.text) {
		return nil, errTierNotApplicable
	}
	seg, err := t.segmenter.get()
	if err != nil {
		return nil, errors.Wrap(err, "segmenter unavailable")
	}

	match := segmentedConjunction(seg, q.text)
	if match == "" {
		return nil, errTierNotApplicable
	}
	return runFTSMatch(ctx, db, match, q)
}

// simplifiedTier matches whitespace chunks of a CJK query as index phrases.
type simplifiedTier struct {
	index *IndexSynchronizer
}

func (t simplifiedTier) tier() SearchTier { return SearchTierSimplified }

func (t simplifiedTier) attempt(ctx context.Context, db *gorm.DB, q searchQuery) ([]scratchpadHit, error) {
	if !t.index.Available() {
		return nil, NewError(ErrCodeIndexUnavailable, "full-text index unavailable", false)
	}
	if !containsCJK(q.text) {
		return nil, errTierNotApplicable
	}

	match := phraseConjunction(strings.Fields(q.text))
	if match == "" {
		return nil, errTierNotApplicable
	}
	return runFTSMatch(ctx, db, match, q)
}

// ftsTier matches each query word verbatim against the index.
type ftsTier struct {
	index *IndexSynchronizer
}

func (t ftsTier) tier() SearchTier { return SearchTierFTS }

func (t ftsTier) attempt(ctx context.Context, db *gorm.DB, q searchQuery) ([]scratchpadHit, error) {
	if !t.index.Available() {
		return nil, NewError(ErrCodeIndexUnavailable, "full-text index unavailable", false)
	}

	match := strings.Join(quotedWords(strings.Fields(q.text)), " AND ")
	if match == "" {
		return nil, errTierNotApplicable
	}
	return runFTSMatch(ctx, db, match, q)
}

// substringTier scans titles and contents with LIKE. It never needs the index.
type substringTier struct{}

func (substringTier) tier() SearchTier { return SearchTierSubstring }

func (substringTier) attempt(ctx context.Context, db *gorm.DB, q searchQuery) ([]scratchpadHit, error) {
	return runSubstringMatch(ctx, db, []string{q.text}, q.workflowID, q.limit)
}

// segmentedConjunction cuts pure-CJK runs into dictionary words and keeps every
// other run whole, so no phrase splits a token the index stores as one.
func segmentedConjunction(seg Segmenter, text string) string {
	var phrases []string
	for _, run := range textRuns(text) {
		if !isPureCJK(run) {
			phrases = append(phrases, ftsPhrase([]string{run}))
			continue
		}
		for _, word := range seg.Cut(run) {
			if tokens := indexTokens(word); len(tokens) > 0 {
				phrases = append(phrases, ftsPhrase(tokens))
			}
		}
	}
	return strings.Join(phrases, " AND ")
}

// phraseConjunction turns each piece into an index phrase and AND-s them.
func phraseConjunction(pieces []string) string {
	var phrases []string
	for _, piece := range pieces {
		tokens := indexTokens(piece)
		if len(tokens) == 0 {
			continue
		}
		phrases = append(phrases, ftsPhrase(tokens))
	}
	return strings.Join(phrases, " AND ")
}

// quotedWords quotes words for FTS5, dropping those without indexable characters.
func quotedWords(words []string) []string {
	var quoted []string
	for _, word := range words {
		if len(indexTokens(word)) == 0 {
			continue
		}
		quoted = append(quoted, ftsQuote(word))
	}
	return quoted
}

// runFTSMatch executes a MATCH expression and returns hits ordered by relevance.
func runFTSMatch(ctx context.Context, db *gorm.DB, match string, q searchQuery) ([]scratchpadHit, error) {
	var (
		sql  strings.Builder
		args = []any{match}
	)
	sql.WriteString(`SELECT scratchpads_fts.scratchpad_id AS scratchpad_id,
	scratchpads_fts.workflow_id AS workflow_id,
	-bm25(scratchpads_fts, 0.0, 0.0, 3.0, 1.0) AS score
FROM scratchpads_fts
JOIN scratchpads ON scratchpads.id = scratchpads_fts.scratchpad_id
WHERE scratchpads_fts MATCH ?`)
	if q.workflowID != "" {
		sql.WriteString(" AND scratchpads_fts.workflow_id = ?")
		args = append(args, q.workflowID)
	}
	sql.WriteString(" ORDER BY score DESC, scratchpads.updated_at DESC, scratchpads.id DESC")
	if q.limit > 0 {
		sql.WriteString(" LIMIT ?")
		args = append(args, q.limit)
	}

	var hits []scratchpadHit
	if err := db.WithContext(ctx).Raw(sql.String(), args...).Scan(&hits).Error; err != nil {
		return nil, errors.Wrapf(err, "fts match %q", match)
	}
	return hits, nil
}

type substringRow struct {
	ID         string
	WorkflowID string
	Title      string
	Content    string
	UpdatedAt  int64
}

// runSubstringMatch finds scratchpads whose title or content contains any needle.
//
// Score is 3 per title occurrence plus 1 per content occurrence, summed over needles.
func runSubstringMatch(ctx context.Context, db *gorm.DB, needles []string, workflowID string, limit int) ([]scratchpadHit, error) {
	var (
		conds []string
		args  []any
	)
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		pattern := "%" + escapeLike(needle) + "%"
		conds = append(conds, `(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if len(conds) == 0 {
		return nil, nil
	}

	query := db.WithContext(ctx).Model(&Scratchpad{}).
		Select("id, workflow_id, title, content, updated_at").
		Where("("+strings.Join(conds, " OR ")+")", args...)
	if workflowID != "" {
		query = query.Where("workflow_id = ?", workflowID)
	}

	var rows []substringRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "substring match")
	}

	type ranked struct {
		hit       scratchpadHit
		updatedAt int64
	}
	results := make([]ranked, 0, len(rows))
	for _, row := range rows {
		score := 0
		for _, needle := range needles {
			score += 3*countSubstring(row.Title, needle) + countSubstring(row.Content, needle)
		}
		results = append(results, ranked{
			hit:       scratchpadHit{ScratchpadID: row.ID, WorkflowID: row.WorkflowID, Score: float64(score)},
			updatedAt: row.UpdatedAt,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].hit.Score != results[j].hit.Score {
			return results[i].hit.Score > results[j].hit.Score
		}
		if results[i].updatedAt != results[j].updatedAt {
			return results[i].updatedAt > results[j].updatedAt
		}
		return results[i].hit.ScratchpadID > results[j].hit.ScratchpadID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	hits := make([]scratchpadHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, r.hit)
	}
	return hits, nil
}
