package engine

import (
	"context"

	"github.com/alexisbeaulieu97/workflowengine/internal/registry"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowcontext"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowmodel"
)

// funcStep adapts a closure to registry.Step for test scenarios.
type funcStep struct {
	fn func(ctx context.Context, wc *workflowcontext.Context) (workflowmodel.StepResult, error)
}

func (s *funcStep) Execute(ctx context.Context, wc *workflowcontext.Context) (workflowmodel.StepResult, error) {
	return s.fn(ctx, wc)
}

// funcGuard adapts a closure to registry.Guard for test scenarios.
type funcGuard struct {
	fn func(ctx context.Context, wc *workflowcontext.Context) (bool, error)
}

func (g *funcGuard) Evaluate(ctx context.Context, wc *workflowcontext.Context) (bool, error) {
	return g.fn(ctx, wc)
}

func stepFactory(fn func(ctx context.Context, wc *workflowcontext.Context) (workflowmodel.StepResult, error)) registry.StepFactory {
	return func() registry.Step { return &funcStep{fn: fn} }
}

func guardFactory(fn func(ctx context.Context, wc *workflowcontext.Context) (bool, error)) registry.GuardFactory {
	return func() registry.Guard { return &funcGuard{fn: fn} }
}

func int64Ptr(v int64) *int64 { return &v }
