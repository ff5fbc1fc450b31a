package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/internal/validate"
	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

// StepInfo summarizes one defined step for a report (spec §6 CLI/analyzer
// contract: "a deterministic textual report of steps, guards, transitions").
type StepInfo struct {
	Name     string
	Type     string
	Guards   []string
	HasRetry bool
}

// TransitionInfo summarizes one declared edge.
type TransitionInfo struct {
	From              string
	To                string
	Guard             string
	OnFailureStrategy string
}

// AnalyzeReport is the structured, presentation-free output of
// Engine.AnalyzeWorkflow; rendering is the CLI/analyzer layer's job
// (spec §8.2).
type AnalyzeReport struct {
	WorkflowName     string
	RunID            string
	Root             string
	Steps            []StepInfo
	Transitions      []TransitionInfo
	DeadEnds         []string
	UnreachableSteps []string
	Cycles           [][]string
}

// AnalyzeWorkflow produces a structured report of workflowName: defined
// steps, transitions, dead-ends (reachable steps with no outgoing edges),
// unreachable defined steps, and any cycles the static validator's
// CycleRule detects in this workflow.
func (e *Engine) AnalyzeWorkflow(workflowName string) (AnalyzeReport, error) {
	wf, ok := e.doc.Workflows[workflowName]
	if !ok {
		return AnalyzeReport{}, workflowerrors.NewResolutionError("workflow", workflowName, fmt.Errorf("workflow not found"))
	}

	report := AnalyzeReport{WorkflowName: workflowName, RunID: uuid.NewString(), Root: wf.Root}

	stepNames := make([]string, 0, len(e.doc.Steps))
	for n := range e.doc.Steps {
		stepNames = append(stepNames, n)
	}
	sort.Strings(stepNames)

	for _, n := range stepNames {
		def := e.doc.Steps[n]
		report.Steps = append(report.Steps, StepInfo{Name: n, Type: def.Type, Guards: def.Guards, HasRetry: def.Retry != nil})
	}

	for _, edge := range wf.Edges {
		report.Transitions = append(report.Transitions, TransitionInfo{
			From:              edge.From,
			To:                edge.To,
			Guard:             edge.Guard,
			OnFailureStrategy: string(edge.OnFailure.EffectiveStrategy()),
		})
	}

	reachable := reachableSteps(wf)
	for _, n := range stepNames {
		if !reachable[n] {
			report.UnreachableSteps = append(report.UnreachableSteps, n)
			continue
		}
		if len(wf.OutgoingEdges(n)) == 0 {
			report.DeadEnds = append(report.DeadEnds, n)
		}
	}

	cycleResult := (&validate.CycleRule{}).Validate(e.doc)
	for _, verr := range cycleResult.Errors {
		if verr.WorkflowName != workflowName {
			continue
		}
		if cyclePath, ok := verr.Details["cyclePath"].([]string); ok {
			report.Cycles = append(report.Cycles, cyclePath)
		}
	}

	return report, nil
}

func reachableSteps(wf *config.Workflow) map[string]bool {
	reachable := map[string]bool{}
	var walk func(string)
	walk = func(node string) {
		if reachable[node] || config.IsTerminal(node) || node == "" {
			return
		}
		reachable[node] = true
		for _, edge := range wf.OutgoingEdges(node) {
			walk(edge.To)
		}
	}
	walk(wf.Root)
	return reachable
}
