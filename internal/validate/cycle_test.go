package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
)

func TestCycleRule_DetectsDirectCycle(t *testing.T) {
	doc := &config.Document{
		Workflows: map[string]*config.Workflow{
			"loopy": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "b"},
					{From: "b", To: "c"},
					{From: "c", To: "a"},
				},
			},
		},
	}

	result := (&CycleRule{}).Validate(doc)
	require.False(t, result.Valid())
	require.Len(t, result.Errors, 1)
	assert.Equal(t, TypeCycleDetected, result.Errors[0].Type)
	assert.Equal(t, "loopy", result.Errors[0].WorkflowName)
	assert.Equal(t, []string{"a", "b", "c", "a"}, result.Errors[0].Details["cyclePath"])
	assert.Equal(t, []string{"a → b", "b → c", "c → a"}, result.Errors[0].Details["involvedEdges"])
}

func TestCycleRule_TerminalEdgesNeverCycle(t *testing.T) {
	doc := &config.Document{
		Workflows: map[string]*config.Workflow{
			"straight": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "b"},
					{From: "b", To: "SUCCESS"},
				},
			},
		},
	}

	result := (&CycleRule{}).Validate(doc)
	assert.True(t, result.Valid())
}

func TestCycleRule_SelfLoop(t *testing.T) {
	doc := &config.Document{
		Workflows: map[string]*config.Workflow{
			"self": {
				Root: "a",
				Edges: []config.Edge{
					{From: "a", To: "a"},
				},
			},
		},
	}

	result := (&CycleRule{}).Validate(doc)
	require.False(t, result.Valid())
	assert.Equal(t, []string{"a", "a"}, result.Errors[0].Details["cyclePath"])
}
