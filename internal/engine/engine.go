// Package engine implements the workflow interpreter loop (spec §4.4):
// selecting edges, evaluating guards, executing steps, and applying the
// failure and retry strategies of the configuration model. Grounded on the
// teacher's internal/engine/executor.go execution loop, generalized from a
// leveled DAG executor to a single-threaded guarded-graph walker.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/internal/inject"
	"github.com/alexisbeaulieu97/workflowengine/internal/registry"
	"github.com/alexisbeaulieu97/workflowengine/internal/validate"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowcontext"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowmodel"
	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

// Engine interprets the workflows of a single config.Document against a
// shared, read-only Registry of Step/Guard implementations.
type Engine struct {
	doc      *config.Document
	registry *registry.Registry
	log      zerolog.Logger
}

// New constructs an Engine. Construction runs the default validator chain
// over doc and fails if it reports any error (spec §4.4 "pre-run
// validation"; spec §9 resolves the construction-vs-validator precedence
// question in the validator's favor).
func New(doc *config.Document, reg *registry.Registry, log zerolog.Logger) (*Engine, error) {
	if doc == nil {
		return nil, workflowerrors.NewConfigError("", "document is nil", nil)
	}
	if reg == nil {
		reg = registry.New()
	}

	result := validate.Default().Validate(doc)
	if !result.Valid() {
		return nil, workflowerrors.NewConfigError("", fmt.Sprintf("%d validation error(s), first: %s", len(result.Errors), result.Errors[0].Error()), result.Errors[0])
	}

	return &Engine{doc: doc, registry: reg, log: log}, nil
}

// Run walks workflowName from its root to a terminal marker, mutating wc
// with each step's context delta along the way (spec §4.4 main loop).
func (e *Engine) Run(ctx context.Context, workflowName string, wc *workflowcontext.Context) (workflowmodel.StepResult, error) {
	wf, ok := e.doc.Workflows[workflowName]
	if !ok {
		return workflowmodel.Failure(fmt.Sprintf("Workflow not found: %s", workflowName)), nil
	}

	runLog := e.log.With().Str("runId", uuid.NewString()).Str("workflow", workflowName).Logger()

	current := wf.Root
	visited := map[string]bool{}

	for current != "" && !config.IsTerminal(current) {
		if visited[current] {
			return workflowmodel.Failure(fmt.Sprintf("Circular dependency detected at: %s", current)), nil
		}
		visited[current] = true

		select {
		case <-ctx.Done():
			return workflowmodel.Failure("Step execution failed: interrupted"), nil
		default:
		}

		result, err := e.executeStep(ctx, current, wc, runLog)
		if err != nil {
			return workflowmodel.StepResult{}, err
		}
		if result.IsFailure() {
			runLog.Warn().Str("step", current).Str("message", result.Message).Msg("step failed")
			return result, nil
		}

		wc.PutAll(result.ContextDelta)

		sel := e.selectNextEdge(ctx, wf, current, wc, runLog)
		switch sel.kind {
		case selNext:
			runLog.Debug().Str("from", current).Str("to", sel.target).Msg("transition")
			current = sel.target
		case selFail:
			return workflowmodel.Failure(sel.message), nil
		case selNone:
			return workflowmodel.Failure(fmt.Sprintf("No eligible transition from step: %s", current)), nil
		}
	}

	return workflowmodel.Success(""), nil
}

// executeStep resolves, guards, constructs, injects, and runs (with
// optional retry) the step named stepName (spec §4.4 executeStep).
func (e *Engine) executeStep(ctx context.Context, stepName string, wc *workflowcontext.Context, log zerolog.Logger) (workflowmodel.StepResult, error) {
	def, ok := e.doc.Steps[stepName]
	if !ok {
		return workflowmodel.Failure(fmt.Sprintf("Step not found: %s", stepName)), nil
	}

	guardsOK, err := e.evaluateGuards(ctx, def.Guards, wc, log)
	if err != nil {
		return workflowmodel.StepResult{}, err
	}
	if !guardsOK {
		return workflowmodel.Success("Step skipped due to guard condition"), nil
	}

	factory, ok := e.registry.LookupStep(def.Type)
	if !ok {
		return workflowmodel.Failure(fmt.Sprintf("Step implementation not found: %s", def.Type)), nil
	}

	mergedConfig := e.doc.EffectiveConfig("step", stepName, def.Config)

	instance := factory()
	if err := inject.Bind(instance, wc, mergedConfig, e.doc, log); err != nil {
		return workflowmodel.Failure(err.Error()), nil
	}

	return e.executeWithOptionalRetry(ctx, instance, def.Retry, mergedConfig, wc, log)
}

// executeWithOptionalRetry implements spec §4.4's retry loop over an
// already-constructed, already-injected step instance.
func (e *Engine) executeWithOptionalRetry(ctx context.Context, instance registry.Step, retry *config.RetryConfig, mergedConfig map[string]any, wc *workflowcontext.Context, log zerolog.Logger) (workflowmodel.StepResult, error) {
	attempts := retry.EffectiveAttempts()
	hasGuard := retry.HasGuard()

	var last workflowmodel.StepResult
	haveResult := false

	for attemptIndex := 1; attemptIndex <= attempts; attemptIndex++ {
		result, err := instance.Execute(ctx, wc)
		if err != nil {
			result = workflowmodel.Failure(err.Error())
		} else if result.Status == "" {
			result = workflowmodel.Failure("Step returned null result")
		}

		if result.IsSuccess() {
			return result, nil
		}

		last = result
		haveResult = true

		if attemptIndex == attempts {
			break
		}

		if hasGuard {
			guardOK, guardErr := e.evaluateGuardByName(ctx, retry.Guard, wc, log)
			if guardErr != nil {
				return workflowmodel.StepResult{}, guardErr
			}
			if !guardOK {
				break
			}
		}

		if err := sleepOrCancel(ctx, computeRetryDelay(retry, attemptIndex)); err != nil {
			return workflowmodel.Failure("Step execution failed: interrupted"), nil
		}
	}

	if haveResult {
		return last, nil
	}
	return workflowmodel.Failure("Step failed after retries"), nil
}

// evaluateGuards AND-combines step-level guards left-to-right with
// short-circuit on the first false (spec §5 ordering guarantees).
func (e *Engine) evaluateGuards(ctx context.Context, names []string, wc *workflowcontext.Context, log zerolog.Logger) (bool, error) {
	for _, name := range names {
		ok, err := e.evaluateGuardByName(ctx, name, wc, log)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// evaluateGuardByName resolves guardName either through the step table
// (spec §4.4 "may resolve via the step table ... or fall back to direct
// registry lookup") or directly against the guard registry, then
// constructs, injects and evaluates it. Any resolution or evaluation
// failure is trapped and logged, yielding false.
func (e *Engine) evaluateGuardByName(ctx context.Context, name string, wc *workflowcontext.Context, log zerolog.Logger) (bool, error) {
	guardType := name
	var declaredConfig map[string]any
	if def, ok := e.doc.Steps[name]; ok {
		guardType = def.Type
		declaredConfig = def.Config
	}

	factory, ok := e.registry.LookupGuard(guardType)
	if !ok {
		log.Warn().Str("guard", name).Msg("guard component not found")
		return false, nil
	}

	instance := factory()
	mergedConfig := e.doc.EffectiveConfig("guard", name, declaredConfig)
	if err := inject.Bind(instance, wc, mergedConfig, e.doc, log); err != nil {
		log.Warn().Err(err).Str("guard", name).Msg("guard injection failed")
		return false, nil
	}

	result, err := instance.Evaluate(ctx, wc)
	if err != nil {
		log.Warn().Err(err).Str("guard", name).Msg("guard evaluation failed")
		return false, nil
	}
	return result, nil
}

// selectNextEdge walks current's outgoing edges in declaration order,
// applying the onFailure strategy table of spec §4.4.
func (e *Engine) selectNextEdge(ctx context.Context, wf *config.Workflow, current string, wc *workflowcontext.Context, log zerolog.Logger) selResult {
	for _, edge := range wf.OutgoingEdges(current) {
		if edge.Guard == "" {
			return selResult{kind: selNext, target: edge.To}
		}

		ok, err := e.evaluateGuardByName(ctx, edge.Guard, wc, log)
		if err != nil {
			return selResult{kind: selFail, message: err.Error()}
		}
		if ok {
			return selResult{kind: selNext, target: edge.To}
		}

		if sel, handled := e.applyOnFailure(ctx, edge, wc, log); handled {
			return sel
		}
	}

	return selResult{kind: selNone}
}

// applyOnFailure dispatches a failed guard's onFailure strategy. handled is
// false only for SKIP, which means "continue to the next outgoing edge" in
// selectNextEdge's caller.
func (e *Engine) applyOnFailure(ctx context.Context, edge config.Edge, wc *workflowcontext.Context, log zerolog.Logger) (selResult, bool) {
	switch edge.OnFailure.EffectiveStrategy() {
	case config.StrategySkip:
		return selResult{kind: selNone}, false

	case config.StrategyContinue:
		return selResult{kind: selNext, target: edge.To}, true

	case config.StrategyAlternative:
		if edge.OnFailure != nil && edge.OnFailure.AlternativeTarget != "" {
			return selResult{kind: selNext, target: edge.OnFailure.AlternativeTarget}, true
		}
		return selResult{kind: selFail, message: fmt.Sprintf("Edge guard failed with ALTERNATIVE for edge: %s → %s, no alternativeTarget configured", edge.From, edge.To)}, true

	case config.StrategyRetry:
		return e.retryEdgeGuard(ctx, edge, wc, log), true

	default: // StrategyStop
		return selResult{kind: selFail, message: fmt.Sprintf("Edge guard failed with STOP for edge: %s → %s", edge.From, edge.To)}, true
	}
}

func (e *Engine) retryEdgeGuard(ctx context.Context, edge config.Edge, wc *workflowcontext.Context, log zerolog.Logger) selResult {
	attempts := edge.OnFailure.EffectiveAttempts()
	delay := edge.OnFailure.EffectiveDelayMillis()

	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := sleepOrCancel(ctx, msToDuration(delay)); err != nil {
				return selResult{kind: selFail, message: "Step execution failed: interrupted"}
			}
		}
		ok, err := e.evaluateGuardByName(ctx, edge.Guard, wc, log)
		if err == nil && ok {
			return selResult{kind: selNext, target: edge.To}
		}
	}

	return selResult{kind: selFail, message: fmt.Sprintf("Edge guard failed after retry for edge: %s → %s", edge.From, edge.To)}
}
