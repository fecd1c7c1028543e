package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/CarlosYazid/Ai-Data-Challenge/engine/domain"
	"github.com/CarlosYazid/Ai-Data-Challenge/engine/websearch"
)

// ToolKind enumerates the tools the model may invoke. Dispatch is a closed
// switch over this set; a name outside it fails the request instead of being
// looked up dynamically.
type ToolKind string

const (
	ToolRetrieval ToolKind = "retrieval_vector_db"
	ToolWebSearch ToolKind = "tavily_web_search"
)

// parseToolKind maps a model-supplied action name onto the closed tool set.
func parseToolKind(action string) (ToolKind, bool) {
	switch ToolKind(strings.ToLower(strings.TrimSpace(action))) {
	case ToolRetrieval:
		return ToolRetrieval, true
	case ToolWebSearch:
		return ToolWebSearch, true
	}
	return "", false
}

// Retriever is the vector retrieval tool.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.DocumentMatch, error)
}

// Searcher is the web search tool.
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.SearchResult, error)
}

// invokeTool runs the selected tool and renders its outcome as an observation
// string. Tool failure is an observation too, not a request failure; the model
// may retry within its step budget.
func (a *Agent) invokeTool(ctx context.Context, kind ToolKind, input string) string {
	switch kind {
	case ToolRetrieval:
		matches, err := a.retriever.Retrieve(ctx, input)
		if err != nil {
			return a.failureObservation(kind, err)
		}
		return renderMatches(matches)
	case ToolWebSearch:
		results, err := a.searcher.Search(ctx, input)
		if err != nil {
			return a.failureObservation(kind, err)
		}
		return renderSearchResults(results)
	}
	// Unreachable: kind comes from parseToolKind.
	return fmt.Sprintf("tool %s is not available", kind)
}

func (a *Agent) failureObservation(kind ToolKind, err error) string {
	invErr := &domain.ToolInvocationError{Tool: string(kind), Wrapped: err}
	a.logger.Warn("tool invocation failed", "tool", kind, "err", err)
	return fmt.Sprintf("The tool call failed: %v. You may retry or use the other tool.", invErr)
}

func renderMatches(matches []domain.DocumentMatch) string {
	if len(matches) == 0 {
		return "No similar papers found above the similarity threshold."
	}
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "%d. [%s] (score %.3f) %s: %s\n", i+1, m.Group, m.Score, m.Title, m.Abstract)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSearchResults(results []websearch.SearchResult) string {
	if len(results) == 0 {
		return "No web results found."
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s | %s | %s\n", i+1, strings.TrimSpace(r.Title), strings.TrimSpace(r.URL), strings.TrimSpace(r.Snippet))
	}
	return strings.TrimRight(b.String(), "\n")
}
