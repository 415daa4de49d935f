package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/nextlevelbuilder/goclaw/internal/search"
)

// ProjectSearchTool queries the hybrid text+vector workspace index
// (internal/search, populated at startup by internal/indexer) so the
// agent can find relevant files without re-reading the whole tree.
type ProjectSearchTool struct {
	index *search.Index
}

func NewProjectSearchTool(index *search.Index) *ProjectSearchTool {
	return &ProjectSearchTool{index: index}
}

func (t *ProjectSearchTool) Name() string { return "project_search" }
func (t *ProjectSearchTool) Description() string {
	return "Search the indexed workspace (file paths, signatures, summaries) by keyword or meaning."
}

func (t *ProjectSearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query",
			},
		},
		"required": []string{"query"},
	}
}

func (t *ProjectSearchTool) Execute(ctx context.Context, args map[string]interface{}) *Result {
	if t.index == nil {
		return ErrorResult("project search index is not available")
	}
	query, _ := args["query"].(string)
	if query == "" {
		return ErrorResult("query is required")
	}

	results, err := t.index.Search(ctx, query)
	if err != nil {
		return ErrorResult(fmt.Sprintf("search failed: %v", err))
	}
	if len(results) == 0 {
		return SilentResult("no matches found")
	}

	var sb strings.Builder
	for _, r := range results {
		fmt.Fprintf(&sb, "%s (score %.3f)\n%s\n\n", r.FactID, r.Score, r.Content)
	}
	return SilentResult(sb.String())
}
