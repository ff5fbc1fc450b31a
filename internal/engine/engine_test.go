package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/internal/registry"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowcontext"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowmodel"
)

func alwaysSuccess() registry.StepFactory {
	return stepFactory(func(ctx context.Context, wc *workflowcontext.Context) (workflowmodel.StepResult, error) {
		return workflowmodel.Success(""), nil
	})
}

func TestNew_RejectsCyclicDocument(t *testing.T) {
	doc := &config.Document{
		Workflows: map[string]*config.Workflow{
			"main": {Root: "a", Edges: []config.Edge{{From: "a", To: "b"}, {From: "b", To: "a"}}},
		},
	}

	_, err := New(doc, registry.New(), zerolog.Nop())
	require.Error(t, err)
}

func TestRun_UnknownWorkflowFails(t *testing.T) {
	e := newTestEngine(t, &config.Document{Workflows: map[string]*config.Workflow{}}, registry.New())

	result, err := e.Run(context.Background(), "missing", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsFailure())
	assert.Contains(t, result.Message, "Workflow not found")
}

func TestRun_UnknownStepFails(t *testing.T) {
	doc := &config.Document{
		Workflows: map[string]*config.Workflow{
			"main": {Root: "ghost", Edges: []config.Edge{{From: "ghost", To: "SUCCESS"}}},
		},
	}
	e := newTestEngine(t, doc, registry.New())

	result, err := e.Run(context.Background(), "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsFailure())
	assert.Contains(t, result.Message, "Step not found")
}

func TestRun_UnregisteredStepTypeFails(t *testing.T) {
	doc := &config.Document{
		Steps: map[string]*config.StepDef{"a": {Type: "nope"}},
		Workflows: map[string]*config.Workflow{
			"main": {Root: "a", Edges: []config.Edge{{From: "a", To: "SUCCESS"}}},
		},
	}
	e := newTestEngine(t, doc, registry.New())

	result, err := e.Run(context.Background(), "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsFailure())
	assert.Contains(t, result.Message, "Step implementation not found")
}

func TestRun_DeadEndYieldsNoEligibleTransition(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterStep("typeA", alwaysSuccess(), registry.Alias{}))

	doc := &config.Document{
		Steps: map[string]*config.StepDef{"a": {Type: "typeA"}},
		Workflows: map[string]*config.Workflow{
			"main": {Root: "a", Edges: nil},
		},
	}
	e := newTestEngine(t, doc, reg)

	result, err := e.Run(context.Background(), "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsFailure())
	assert.Contains(t, result.Message, "No eligible transition from step: a")
}

func TestNew_StaticCycleDetectionAppliesRegardlessOfGuards(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterStep("typeA", alwaysSuccess(), registry.Alias{}))
	require.NoError(t, reg.RegisterGuard("AlwaysTrue", guardFactory(func(ctx context.Context, wc *workflowcontext.Context) (bool, error) {
		return true, nil
	}), registry.Alias{}))

	// A guarded back-edge is still a structural cycle; the static
	// validator's cycle detector ignores guards (only terminal targets are
	// excluded), so this is rejected before the engine's runtime
	// visited-set safety net would ever need to fire.
	doc := &config.Document{
		Steps: map[string]*config.StepDef{"a": {Type: "typeA"}, "b": {Type: "typeA"}},
		Workflows: map[string]*config.Workflow{
			"main": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "b"},
					{From: "b", To: "a", Guard: "AlwaysTrue"},
				},
			},
		},
	}

	_, err := New(doc, reg, zerolog.Nop())
	require.Error(t, err, "static cycle detection should already reject this document")
}

func TestRun_AlternativeStrategyRoutesToAlternativeTarget(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterStep("typeA", alwaysSuccess(), registry.Alias{}))
	require.NoError(t, reg.RegisterGuard("G", guardFactory(func(ctx context.Context, wc *workflowcontext.Context) (bool, error) {
		return false, nil
	}), registry.Alias{}))

	doc := &config.Document{
		Steps: map[string]*config.StepDef{"a": {Type: "typeA"}, "fallback": {Type: "typeA"}},
		Workflows: map[string]*config.Workflow{
			"main": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "b", Guard: "G", OnFailure: &config.OnFailure{Strategy: config.StrategyAlternative, AlternativeTarget: "fallback"}},
					{From: "fallback", To: "SUCCESS"},
				},
			},
		},
	}
	e := newTestEngine(t, doc, reg)

	result, err := e.Run(context.Background(), "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
}

func TestRun_AlternativeStrategyWithoutTargetFails(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterStep("typeA", alwaysSuccess(), registry.Alias{}))
	require.NoError(t, reg.RegisterGuard("G", guardFactory(func(ctx context.Context, wc *workflowcontext.Context) (bool, error) {
		return false, nil
	}), registry.Alias{}))

	doc := &config.Document{
		Steps: map[string]*config.StepDef{"a": {Type: "typeA"}},
		Workflows: map[string]*config.Workflow{
			"main": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "b", Guard: "G", OnFailure: &config.OnFailure{Strategy: config.StrategyAlternative}},
				},
			},
		},
	}
	e := newTestEngine(t, doc, reg)

	result, err := e.Run(context.Background(), "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsFailure())
	assert.Contains(t, result.Message, "no alternativeTarget configured")
}

func TestRun_ContinueStrategyIgnoresGuardFailure(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterStep("typeA", alwaysSuccess(), registry.Alias{}))
	require.NoError(t, reg.RegisterGuard("G", guardFactory(func(ctx context.Context, wc *workflowcontext.Context) (bool, error) {
		return false, nil
	}), registry.Alias{}))

	doc := &config.Document{
		Steps: map[string]*config.StepDef{"a": {Type: "typeA"}, "b": {Type: "typeA"}},
		Workflows: map[string]*config.Workflow{
			"main": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "b", Guard: "G", OnFailure: &config.OnFailure{Strategy: config.StrategyContinue}},
					{From: "b", To: "SUCCESS"},
				},
			},
		},
	}
	e := newTestEngine(t, doc, reg)

	result, err := e.Run(context.Background(), "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
}

func TestRun_EdgeRetryStrategySucceedsOnSecondAttempt(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterStep("typeA", alwaysSuccess(), registry.Alias{}))

	calls := 0
	require.NoError(t, reg.RegisterGuard("G", guardFactory(func(ctx context.Context, wc *workflowcontext.Context) (bool, error) {
		calls++
		return calls >= 2, nil
	}), registry.Alias{}))

	doc := &config.Document{
		Steps: map[string]*config.StepDef{"a": {Type: "typeA"}, "b": {Type: "typeA"}},
		Workflows: map[string]*config.Workflow{
			"main": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "b", Guard: "G", OnFailure: &config.OnFailure{Strategy: config.StrategyRetry, Attempts: 3, DelayMillis: 1}},
					{From: "b", To: "SUCCESS"},
				},
			},
		},
	}
	e := newTestEngine(t, doc, reg)

	result, err := e.Run(context.Background(), "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, 2, calls)
}

func TestRun_RetryGuardStopsFurtherAttempts(t *testing.T) {
	reg := registry.New()
	stepCalls := 0
	require.NoError(t, reg.RegisterStep("typeA", stepFactory(func(ctx context.Context, wc *workflowcontext.Context) (workflowmodel.StepResult, error) {
		stepCalls++
		return workflowmodel.Failure("still broken"), nil
	}), registry.Alias{}))
	require.NoError(t, reg.RegisterGuard("RetryGuard", guardFactory(func(ctx context.Context, wc *workflowcontext.Context) (bool, error) {
		return false, nil
	}), registry.Alias{}))

	doc := &config.Document{
		Steps: map[string]*config.StepDef{
			"a": {Type: "typeA", Retry: &config.RetryConfig{MaxAttempts: 5, DelayMillis: int64Ptr(1), Guard: "RetryGuard"}},
		},
		Workflows: map[string]*config.Workflow{
			"main": {Root: "a", Edges: []config.Edge{{From: "a", To: "SUCCESS"}}},
		},
	}
	e := newTestEngine(t, doc, reg)

	result, err := e.Run(context.Background(), "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsFailure())
	assert.Equal(t, 1, stepCalls, "retry guard returning false should stop after the first attempt")
}

func TestRun_CancellationDuringRetrySleepInterruptsRun(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterStep("typeA", stepFactory(func(ctx context.Context, wc *workflowcontext.Context) (workflowmodel.StepResult, error) {
		return workflowmodel.Failure("broken"), nil
	}), registry.Alias{}))

	doc := &config.Document{
		Steps: map[string]*config.StepDef{
			"a": {Type: "typeA", Retry: &config.RetryConfig{MaxAttempts: 5, DelayMillis: int64Ptr(500)}},
		},
		Workflows: map[string]*config.Workflow{
			"main": {Root: "a", Edges: []config.Edge{{From: "a", To: "SUCCESS"}}},
		},
	}
	e := newTestEngine(t, doc, reg)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := e.Run(ctx, "main", workflowcontext.New())
	require.NoError(t, err)
	assert.True(t, result.IsFailure())
	assert.Contains(t, result.Message, "interrupted")
}

func TestAnalyzeWorkflow_ReportsDeadEndsAndUnreachableSteps(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterStep("typeA", alwaysSuccess(), registry.Alias{}))

	doc := &config.Document{
		Steps: map[string]*config.StepDef{
			"a":      {Type: "typeA"},
			"b":      {Type: "typeA"},
			"orphan": {Type: "typeA"},
		},
		Workflows: map[string]*config.Workflow{
			"main": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "b"},
				},
			},
		},
	}
	e := newTestEngine(t, doc, reg)

	report, err := e.AnalyzeWorkflow("main")
	require.NoError(t, err)
	assert.Equal(t, "main", report.WorkflowName)
	assert.Contains(t, report.DeadEnds, "b")
	assert.Contains(t, report.UnreachableSteps, "orphan")
	assert.Empty(t, report.Cycles)
}

func TestAnalyzeWorkflow_UnknownWorkflowErrors(t *testing.T) {
	e := newTestEngine(t, &config.Document{Workflows: map[string]*config.Workflow{}}, registry.New())

	_, err := e.AnalyzeWorkflow("missing")
	require.Error(t, err)
}
