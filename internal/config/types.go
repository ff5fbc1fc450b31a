// Package config implements the typed representation of a workflow
// configuration document: steps, edges, retry/failure policy, and the
// layered-defaults and global-settings merging rules of spec §3.
package config

import "strings"

// ReservedSuccess and ReservedFailure are the reserved terminal step
// names. Reaching either ends a workflow run.
const (
	ReservedSuccess = "SUCCESS"
	ReservedFailure = "FAILURE"
)

// FailureStrategy is the tagged enum governing what happens when an edge
// guard returns false (spec §3 OnFailure, §9 "Failure strategies as
// variants").
type FailureStrategy string

const (
	StrategyStop        FailureStrategy = "STOP"
	StrategySkip        FailureStrategy = "SKIP"
	StrategyAlternative FailureStrategy = "ALTERNATIVE"
	StrategyRetry       FailureStrategy = "RETRY"
	StrategyContinue    FailureStrategy = "CONTINUE"
)

// BackoffKind selects the retry delay growth function.
type BackoffKind string

const (
	BackoffNone        BackoffKind = ""
	BackoffExponential BackoffKind = "EXPONENTIAL"
)

// Document is the top-level decoded configuration: settings, defaults,
// steps and workflows (spec §6 canonical YAML shape).
type Document struct {
	Settings  map[string]any            `yaml:"settings,omitempty"`
	Defaults  map[string]map[string]any `yaml:"defaults,omitempty"`
	Steps     map[string]*StepDef       `yaml:"steps,omitempty" validate:"dive"`
	Workflows map[string]*Workflow      `yaml:"workflows,omitempty" validate:"dive"`
}

// OnFailure describes the strategy applied when a guarded edge's guard
// returns false.
type OnFailure struct {
	Strategy          FailureStrategy `yaml:"strategy,omitempty"`
	AlternativeTarget string          `yaml:"alternativeTarget,omitempty"`
	Attempts          int             `yaml:"attempts,omitempty" validate:"omitempty,gte=1"`
	DelayMillis       int64           `yaml:"delay,omitempty" validate:"omitempty,gte=0"`
}

// EffectiveStrategy returns the configured strategy, defaulting to STOP.
func (f *OnFailure) EffectiveStrategy() FailureStrategy {
	if f == nil || f.Strategy == "" {
		return StrategyStop
	}
	return FailureStrategy(strings.ToUpper(string(f.Strategy)))
}

// EffectiveAttempts returns the configured retry-edge attempt count,
// defaulting to 3.
func (f *OnFailure) EffectiveAttempts() int {
	if f == nil || f.Attempts <= 0 {
		return 3
	}
	return f.Attempts
}

// EffectiveDelayMillis returns the configured retry-edge delay, defaulting
// to 1000ms.
func (f *OnFailure) EffectiveDelayMillis() int64 {
	if f == nil || f.DelayMillis <= 0 {
		return 1000
	}
	return f.DelayMillis
}

// Edge is a declared transition from one step to another, optionally
// guarded (spec §3 Edge).
type Edge struct {
	From      string     `yaml:"from" validate:"required"`
	To        string     `yaml:"to" validate:"required"`
	Guard     string     `yaml:"guard,omitempty"`
	Condition string     `yaml:"condition,omitempty"` // informational only, never evaluated
	Kind      string     `yaml:"kind,omitempty"`      // opaque metadata, default "normal"
	OnFailure *OnFailure `yaml:"onFailure,omitempty"`
}

// EffectiveKind returns the edge kind, defaulting to "normal".
func (e *Edge) EffectiveKind() string {
	if e.Kind == "" {
		return "normal"
	}
	return e.Kind
}

// Workflow is a named directed graph: a root step name plus an ordered
// edge list (spec §3 Workflow).
type Workflow struct {
	Root  string `yaml:"root" validate:"required"`
	Edges []Edge `yaml:"edges,omitempty" validate:"dive"`
}

// OutgoingEdges returns, in declaration order, the edges whose From field
// equals stepName.
func (w *Workflow) OutgoingEdges(stepName string) []Edge {
	var out []Edge
	for _, e := range w.Edges {
		if e.From == stepName {
			out = append(out, e)
		}
	}
	return out
}

// RetryConfig describes the retry policy attached to a step or a guard
// (spec §3 RetryConfig).
type RetryConfig struct {
	MaxAttempts int         `yaml:"maxAttempts,omitempty" validate:"omitempty,gte=1"`
	Retries     *int        `yaml:"retries,omitempty" validate:"omitempty,gte=0"`
	DelayMillis *int64      `yaml:"delay,omitempty" validate:"omitempty,gte=0"`
	Guard       string      `yaml:"guard,omitempty"`
	Backoff     BackoffKind `yaml:"backoff,omitempty"`
	Multiplier  float64     `yaml:"multiplier,omitempty" validate:"omitempty,gt=0"`
	MaxDelay    int64       `yaml:"maxDelay,omitempty" validate:"omitempty,gte=0"`
}

// EffectiveAttempts implements spec §3's precedence: if Retries is present
// and >= 0, the attempt budget is Retries+1; otherwise max(1, MaxAttempts),
// defaulting MaxAttempts to 3 when unset.
func (r *RetryConfig) EffectiveAttempts() int {
	if r == nil {
		return 1
	}
	if r.Retries != nil && *r.Retries >= 0 {
		return *r.Retries + 1
	}
	maxAttempts := r.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 3
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return maxAttempts
}

// EffectiveDelayMillis returns the configured base delay (spec §4.4:
// base = max(0, retry.delay)), defaulting to 1000ms only when delay is
// unset. An explicit delay of 0 is honored rather than treated as unset.
func (r *RetryConfig) EffectiveDelayMillis() int64 {
	if r == nil || r.DelayMillis == nil {
		return 1000
	}
	if *r.DelayMillis < 0 {
		return 0
	}
	return *r.DelayMillis
}

// EffectiveMultiplier returns the configured backoff multiplier,
// defaulting to 2.0.
func (r *RetryConfig) EffectiveMultiplier() float64 {
	if r == nil || r.Multiplier == 0 {
		return 2.0
	}
	return r.Multiplier
}

// HasGuard reports whether a retry-guard is configured.
func (r *RetryConfig) HasGuard() bool {
	return r != nil && r.Guard != ""
}

// IsExponential reports whether Backoff selects exponential growth,
// case-insensitively.
func (r *RetryConfig) IsExponential() bool {
	return r != nil && strings.EqualFold(string(r.Backoff), string(BackoffExponential))
}

// StepDef is a named execution unit bound to a registered component via
// Type (spec §3 Step definition).
type StepDef struct {
	Type   string         `yaml:"type" validate:"required"`
	Config map[string]any `yaml:"config,omitempty"`
	Guards []string       `yaml:"guards,omitempty"`
	Retry  *RetryConfig   `yaml:"retry,omitempty"`
}

// IsTerminal reports whether name is one of the reserved terminal
// identifiers.
func IsTerminal(name string) bool {
	return name == ReservedSuccess || name == ReservedFailure
}
