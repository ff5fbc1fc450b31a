// Package validate implements the pluggable, prioritized static validator
// of spec §4.5: a registry of Rules run in ascending priority order,
// accumulating structured errors and warnings.
package validate

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

// Error type constants, matching the enumerated (non-exhaustive) set in
// spec §4.5.
const (
	TypeCycleDetected          = "CYCLE_DETECTED"
	TypeMultipleUnguardedEdges = "MULTIPLE_UNGUARDED_EDGES"
	TypeUnguardedEdgeNotLast   = "UNGUARDED_EDGE_NOT_LAST"
	TypeUndefinedStep          = "UNDEFINED_STEP"
	TypeUndefinedGuard         = "UNDEFINED_GUARD"
	TypeMissingRoot            = "MISSING_ROOT"
	TypeDeadEnd                = "DEAD_END"
	TypeUnreachableStep        = "UNREACHABLE_STEP"
	TypeInvalidEdgeConfig      = "INVALID_EDGE_CONFIGURATION"
	TypeMalformedWorkflow      = "MALFORMED_WORKFLOW"
	TypeConfigSyntaxError      = "CONFIGURATION_SYNTAX_ERROR"
	TypeGeneric                = "GENERIC"
)

// Result is the outcome of running one Rule (or an accumulated Chain):
// valid iff Errors is empty.
type Result struct {
	Errors   []*workflowerrors.ValidationError
	Warnings []*workflowerrors.ValidationError
	Metadata map[string]any
}

// Valid reports whether the result carries no errors.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

func (r *Result) merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	for k, v := range other.Metadata {
		if r.Metadata == nil {
			r.Metadata = map[string]any{}
		}
		r.Metadata[k] = v
	}
}

// Rule is one pluggable static check over a configuration document.
type Rule interface {
	Name() string
	Priority() int
	FailFast() bool
	Describe() string
	Validate(doc *config.Document) Result
}

// Chain runs registered Rules in ascending priority order and aggregates
// their results, optionally caching by a stable hash of the document.
type Chain struct {
	rules   []Rule
	cache   sync.Map
	cacheOn bool
}

// NewChain builds a Chain from rules, sorted by ascending priority.
func NewChain(rules ...Rule) *Chain {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })
	return &Chain{rules: sorted}
}

// WithCaching enables result caching keyed by a hash of the document.
func (c *Chain) WithCaching(on bool) *Chain {
	c.cacheOn = on
	return c
}

// Default constructs the Chain with the built-in validators: CycleRule
// (priority 10, failFast) and EdgeOrderRule (priority 20, failFast).
func Default() *Chain {
	return NewChain(&CycleRule{}, &EdgeOrderRule{})
}

// Validate runs every rule against doc in priority order, accumulating
// errors/warnings. A rule marked FailFast that reports an error stops the
// chain. A rule that panics is converted into a GENERIC error and the
// chain continues with the remaining rules.
func (c *Chain) Validate(doc *config.Document) Result {
	if c.cacheOn {
		key := hashDocument(doc)
		if cached, ok := c.cache.Load(key); ok {
			return cached.(Result)
		}
		result := c.runAll(doc)
		c.cache.Store(key, result)
		return result
	}
	return c.runAll(doc)
}

func (c *Chain) runAll(doc *config.Document) Result {
	var merged Result

	for _, rule := range c.rules {
		res, panicked := runRuleSafely(rule, doc)
		merged.merge(res)

		if !panicked && rule.FailFast() && len(res.Errors) > 0 {
			break
		}
	}

	return merged
}

func runRuleSafely(rule Rule, doc *config.Document) (result Result, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{Errors: []*workflowerrors.ValidationError{
				workflowerrors.NewValidationError(TypeGeneric, "", fmt.Sprintf("validator %q panicked: %v", rule.Name(), r), nil),
			}}
			panicked = true
		}
	}()
	return rule.Validate(doc), false
}

func hashDocument(doc *config.Document) uint64 {
	h := fnv.New64a()
	names := make([]string, 0, len(doc.Workflows))
	for name := range doc.Workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		wf := doc.Workflows[name]
		_, _ = h.Write([]byte(name))
		_, _ = h.Write([]byte(wf.Root))
		for _, e := range wf.Edges {
			_, _ = h.Write([]byte(e.From + "->" + e.To + "|" + e.Guard))
		}
	}
	return h.Sum64()
}
