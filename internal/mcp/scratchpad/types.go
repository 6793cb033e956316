package scratchpad

import "time"

// SearchTier names the strategy in the search degradation ladder that serviced a query.
type SearchTier string

const (
	// SearchTierSegmented runs dictionary-segmented CJK phrases against the index.
	SearchTierSegmented SearchTier = "segmented"
	// SearchTierSimplified runs whole CJK chunks as index phrases.
	SearchTierSimplified SearchTier = "simplified"
	// SearchTierFTS runs quoted query words against the index without segmentation.
	SearchTierFTS SearchTier = "fts"
	// SearchTierSubstring matches title and content with case-insensitive LIKE.
	SearchTierSubstring SearchTier = "substring"
)

// SearchParams configures a scratchpad full-text search.
type SearchParams struct {
	Query      string
	WorkflowID string
	Limit      int
	// ForceSubstring skips every index tier.
	ForceSubstring bool
}

// SearchHit is one ranked scratchpad returned by SearchScratchpads.
type SearchHit struct {
	Scratchpad Scratchpad
	Workflow   Workflow
	Rank       float64
	Snippet    string
}

// SearchResult returns the search-scratchpads outcome.
type SearchResult struct {
	Hits     []SearchHit
	Tier     SearchTier
	Warnings []string
}

// WorkflowSearchParams configures a scoped workflow search.
type WorkflowSearchParams struct {
	Query        string
	ProjectScope *string
	Page         int
}

// WorkflowMatch is one ranked workflow returned by SearchWorkflows.
type WorkflowMatch struct {
	Workflow  Workflow
	Score     int
	MatchedBy string
}

// WorkflowSearchResult returns one page of the search-workflows outcome.
type WorkflowSearchResult struct {
	Matches      []WorkflowMatch
	Page         int
	PageSize     int
	TotalMatches int
	TotalPages   int
	LatinTokens  []string
	Residual     string
	Warnings     []string
}

// ListScratchpadsResult returns the list-scratchpads outcome.
type ListScratchpadsResult struct {
	Scratchpads []Scratchpad
	Total       int64
	Limit       int
	Offset      int
	HasMore     bool
}

// IndexHealth reports the state of the full-text index.
type IndexHealth struct {
	Available       bool
	Healthy         bool
	Degraded        bool
	ScratchpadCount int64
	IndexCount      int64
	Warnings        []string
}

// RebuildResult reports the outcome of an index rebuild.
type RebuildResult struct {
	Indexed  int64
	Duration time.Duration
}
