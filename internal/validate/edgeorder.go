package validate

import (
	"fmt"
	"sort"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

// EdgeOrderRule enforces spec §4.5's edge-ordering rules over each source
// step's outgoing edges: at most one may be unguarded, and an unguarded
// edge must be the last of its source's outgoing edges.
type EdgeOrderRule struct{}

// Name identifies the rule.
func (r *EdgeOrderRule) Name() string { return "edge-order" }

// Priority runs after cycle detection.
func (r *EdgeOrderRule) Priority() int { return 20 }

// FailFast stops the chain once an ordering violation is found.
func (r *EdgeOrderRule) FailFast() bool { return true }

// Describe returns a human-readable summary.
func (r *EdgeOrderRule) Describe() string {
	return "ensures at most one unguarded outgoing edge per step, and that it is declared last"
}

// Validate implements Rule.
func (r *EdgeOrderRule) Validate(doc *config.Document) Result {
	var result Result

	names := make([]string, 0, len(doc.Workflows))
	for name := range doc.Workflows {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		wf := doc.Workflows[name]
		result.merge(validateWorkflowEdgeOrder(name, wf))
	}

	return result
}

func validateWorkflowEdgeOrder(workflowName string, wf *config.Workflow) Result {
	var result Result

	bySource := map[string][]int{}
	for i, e := range wf.Edges {
		bySource[e.From] = append(bySource[e.From], i)
	}

	sources := make([]string, 0, len(bySource))
	for src := range bySource {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		indices := bySource[src]
		if len(indices) < 2 {
			continue
		}

		var unguardedIndices []int
		for _, idx := range indices {
			if wf.Edges[idx].Guard == "" {
				unguardedIndices = append(unguardedIndices, idx)
			}
		}

		if len(unguardedIndices) > 1 {
			var listed []string
			for _, idx := range unguardedIndices {
				listed = append(listed, fmt.Sprintf("%s → %s (index %d)", wf.Edges[idx].From, wf.Edges[idx].To, idx))
			}
			result.Errors = append(result.Errors, workflowerrors.NewValidationError(
				TypeMultipleUnguardedEdges,
				workflowName,
				fmt.Sprintf("step %q has %d unguarded outgoing edges", src, len(unguardedIndices)),
				map[string]any{"step": src, "unguardedEdges": listed},
			))
			continue
		}

		if len(unguardedIndices) == 1 {
			maxIndex := indices[len(indices)-1]
			unguardedIdx := unguardedIndices[0]
			if unguardedIdx != maxIndex {
				var followers []string
				for _, idx := range indices {
					if idx > unguardedIdx {
						followers = append(followers, fmt.Sprintf("%s → %s (index %d)", wf.Edges[idx].From, wf.Edges[idx].To, idx))
					}
				}
				result.Errors = append(result.Errors, workflowerrors.NewValidationError(
					TypeUnguardedEdgeNotLast,
					workflowName,
					fmt.Sprintf("step %q's unguarded edge %s → %s is not its last outgoing edge", src, wf.Edges[unguardedIdx].From, wf.Edges[unguardedIdx].To),
					map[string]any{
						"step":             src,
						"misplacedEdge":    fmt.Sprintf("%s → %s (index %d)", wf.Edges[unguardedIdx].From, wf.Edges[unguardedIdx].To, unguardedIdx),
						"followingGuarded": followers,
					},
				))
			}
		}
	}

	return result
}
