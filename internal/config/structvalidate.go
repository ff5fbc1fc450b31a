package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

var structValidator = validator.New()

// Validate runs struct-tag validation over the decoded document: required
// fields (Edge.From/To, Workflow.Root, StepDef.Type) and bounded numerics
// (RetryConfig/OnFailure attempt counts and delays). It catches
// structurally invalid values before the static graph validator
// (internal/validate) ever runs.
func (d *Document) Validate() error {
	if err := structValidator.Struct(d); err != nil {
		return workflowerrors.NewConfigError("", fmt.Sprintf("schema validation failed: %v", err), err)
	}
	return nil
}
