package scratchpad

import (
	"regexp"
	"strings"
)

var latinRunPattern = regexp.MustCompile(`[A-Za-z]+`)

// splitQuery is a workflow search query separated into its Latin and residual parts.
type splitQuery struct {
	// latin holds lowercase, de-duplicated Latin words in first-seen order.
	latin []string
	// residual is what remains once Latin words are removed, whitespace collapsed.
	// It is searched as a single term.
	residual string
}

// splitWorkflowQuery separates Latin words from the rest of the query.
func splitWorkflowQuery(query string) splitQuery {
	var (
		out  splitQuery
		seen = make(map[string]struct{})
	)
	for _, match := range latinRunPattern.FindAllString(query, -1) {
		token := strings.ToLower(match)
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out.latin = append(out.latin, token)
	}

	residual := latinRunPattern.ReplaceAllString(query, " ")
	out.residual = strings.Join(strings.Fields(residual), " ")
	return out
}
