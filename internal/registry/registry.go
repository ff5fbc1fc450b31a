// Package registry implements the name -> factory lookup tables for Step
// and Guard components (spec §4.2), populated by explicit registration
// (package/JAR scanning is an out-of-scope external collaborator per
// spec §1/§6).
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unicode"

	"github.com/alexisbeaulieu97/workflowengine/internal/workflowcontext"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowmodel"
	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

// Step is the execution capability a registered component provides.
type Step interface {
	Execute(ctx context.Context, wc *workflowcontext.Context) (workflowmodel.StepResult, error)
}

// Guard is the boolean-predicate capability a registered component
// provides.
type Guard interface {
	Evaluate(ctx context.Context, wc *workflowcontext.Context) (bool, error)
}

// StepFactory constructs a fresh Step instance.
type StepFactory func() Step

// GuardFactory constructs a fresh Guard instance.
type GuardFactory func() Guard

// Registry holds the Step and Guard name->factory tables.
type Registry struct {
	mu     sync.RWMutex
	steps  map[string]StepFactory
	guards map[string]GuardFactory
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		steps:  make(map[string]StepFactory),
		guards: make(map[string]GuardFactory),
	}
}

// Alias bundles the optional identity the component declares beyond its
// primary registration name (spec §4.2 "If the component declares an
// annotation/tag with an explicit alias").
type Alias struct {
	FQN   string
	Alias string
}

func aliasKeys(name string, a Alias) []string {
	keys := []string{name, lowerCamel(name)}
	if a.FQN != "" {
		keys = append(keys, a.FQN)
	}
	if a.Alias != "" {
		keys = append(keys, a.Alias, lowerCamel(a.Alias))
	}
	return dedup(keys)
}

func dedup(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// RegisterStep registers factory under name's simple/lower-camel/FQN/alias
// keys (spec §4.2).
func (r *Registry) RegisterStep(name string, factory StepFactory, a Alias) error {
	if factory == nil {
		return workflowerrors.NewResolutionError("step", name, fmt.Errorf("factory is nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range aliasKeys(name, a) {
		if _, exists := r.steps[key]; exists {
			return workflowerrors.NewResolutionError("step", key, fmt.Errorf("already registered"))
		}
	}
	for _, key := range aliasKeys(name, a) {
		r.steps[key] = factory
	}
	return nil
}

// RegisterGuard registers factory under name's simple/lower-camel/FQN/alias
// keys (spec §4.2).
func (r *Registry) RegisterGuard(name string, factory GuardFactory, a Alias) error {
	if factory == nil {
		return workflowerrors.NewResolutionError("guard", name, fmt.Errorf("factory is nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range aliasKeys(name, a) {
		if _, exists := r.guards[key]; exists {
			return workflowerrors.NewResolutionError("guard", key, fmt.Errorf("already registered"))
		}
	}
	for _, key := range aliasKeys(name, a) {
		r.guards[key] = factory
	}
	return nil
}

// LookupStep resolves name to a StepFactory: exact match first, then the
// upper-camel variant of name (spec §4.2 lookup rule).
func (r *Registry) LookupStep(name string) (StepFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.steps[name]; ok {
		return f, true
	}
	if f, ok := r.steps[upperCamel(name)]; ok {
		return f, true
	}
	return nil, false
}

// LookupGuard resolves name to a GuardFactory: exact match first, then the
// upper-camel variant of name (spec §4.2 lookup rule).
func (r *Registry) LookupGuard(name string) (GuardFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if f, ok := r.guards[name]; ok {
		return f, true
	}
	if f, ok := r.guards[upperCamel(name)]; ok {
		return f, true
	}
	return nil, false
}

func lowerCamel(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func upperCamel(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Describe returns every registered step/guard key, sorted, for use by the
// analyzer (spec §6 CLI/analyzer contract).
func (r *Registry) Describe() (steps, guards []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for k := range r.steps {
		steps = append(steps, k)
	}
	for k := range r.guards {
		guards = append(guards, k)
	}
	sort.Strings(steps)
	sort.Strings(guards)
	return steps, guards
}
