package validate

import (
	"fmt"
	"sort"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

// CycleRule is the built-in cycle detector (spec §4.5): classical DFS over
// each workflow's non-terminal edges, generalized from the teacher's
// step-dependency cycle detector (internal/config/cycle_detector.go) to
// guarded workflow-graph edges.
type CycleRule struct{}

// Name identifies the rule.
func (r *CycleRule) Name() string { return "cycle-detector" }

// Priority places cycle detection ahead of edge-ordering checks.
func (r *CycleRule) Priority() int { return 10 }

// FailFast stops the chain once a cycle is found.
func (r *CycleRule) FailFast() bool { return true }

// Describe returns a human-readable summary.
func (r *CycleRule) Describe() string {
	return "detects circular dependencies among workflow steps via DFS"
}

type edgeRef struct {
	to    string
	guard string
}

// Validate implements Rule.
func (r *CycleRule) Validate(doc *config.Document) Result {
	var result Result

	names := make([]string, 0, len(doc.Workflows))
	for name := range doc.Workflows {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		wf := doc.Workflows[name]
		if cyclePath, involvedEdges := detectCycle(wf); len(cyclePath) > 0 {
			result.Errors = append(result.Errors, workflowerrors.NewValidationError(
				TypeCycleDetected,
				name,
				fmt.Sprintf("circular dependency detected: %v", cyclePath),
				map[string]any{
					"cyclePath":     cyclePath,
					"involvedEdges": involvedEdges,
					"cycleLength":   len(cyclePath),
				},
			))
		}
	}

	return result
}

func detectCycle(wf *config.Workflow) (cyclePath []string, involvedEdges []string) {
	adjacency := make(map[string][]edgeRef)
	nodes := map[string]bool{}

	for _, e := range wf.Edges {
		if config.IsTerminal(e.To) {
			continue
		}
		adjacency[e.From] = append(adjacency[e.From], edgeRef{to: e.To, guard: e.Guard})
		nodes[e.From] = true
		nodes[e.To] = true
	}
	if wf.Root != "" {
		nodes[wf.Root] = true
	}

	ordered := make([]string, 0, len(nodes))
	for n := range nodes {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)

	visiting := map[string]bool{}
	visited := map[string]bool{}
	var stack []string
	var edgeStack []edgeRef

	var dfs func(node string) bool
	dfs = func(node string) bool {
		visiting[node] = true
		stack = append(stack, node)

		for _, next := range adjacency[node] {
			if visiting[next.to] {
				idx := indexOf(stack, next.to)
				if idx >= 0 {
					cyclePath = append([]string{}, stack[idx:]...)
					cyclePath = append(cyclePath, next.to)
					for i := idx; i < len(stack)-1; i++ {
						involvedEdges = append(involvedEdges, formatEdge(stack[i], edgeStack[i]))
					}
					involvedEdges = append(involvedEdges, formatEdge(stack[len(stack)-1], next))
				}
				return true
			}
			if !visited[next.to] {
				edgeStack = append(edgeStack, next)
				if dfs(next.to) {
					return true
				}
				edgeStack = edgeStack[:len(edgeStack)-1]
			}
		}

		visiting[node] = false
		visited[node] = true
		stack = stack[:len(stack)-1]
		return false
	}

	for _, n := range ordered {
		if visited[n] {
			continue
		}
		if dfs(n) {
			break
		}
	}

	return cyclePath, involvedEdges
}

func formatEdge(from string, e edgeRef) string {
	if e.guard != "" {
		return fmt.Sprintf("%s → %s [guard: %s]", from, e.to, e.guard)
	}
	return fmt.Sprintf("%s → %s", from, e.to)
}

func indexOf(s []string, target string) int {
	for i, v := range s {
		if v == target {
			return i
		}
	}
	return -1
}
