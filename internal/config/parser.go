package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
)

// Decode parses a YAML document into a Document. Syntax errors are wrapped
// in a workflowerrors.ConfigError (type CONFIGURATION_SYNTAX_ERROR is the
// validator-level classification of the same failure mode; Decode itself
// reports plainly since no workflow context exists yet).
func Decode(r io.Reader) (*Document, error) {
	var raw struct {
		Settings  map[string]any            `yaml:"settings"`
		Defaults  map[string]map[string]any `yaml:"defaults"`
		Steps     map[string]*StepDef       `yaml:"steps"`
		Workflows map[string]*Workflow      `yaml:"workflows"`
	}

	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return &Document{
				Steps:     map[string]*StepDef{},
				Workflows: map[string]*Workflow{},
			}, nil
		}
		return nil, workflowerrors.NewConfigError("", fmt.Sprintf("malformed YAML document: %v", err), err)
	}

	doc := &Document{
		Settings:  raw.Settings,
		Defaults:  raw.Defaults,
		Steps:     raw.Steps,
		Workflows: raw.Workflows,
	}
	if doc.Steps == nil {
		doc.Steps = map[string]*StepDef{}
	}
	if doc.Workflows == nil {
		doc.Workflows = map[string]*Workflow{}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	return doc, nil
}

// DecodeBytes is a convenience wrapper around Decode for an in-memory
// document.
func DecodeBytes(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, workflowerrors.NewConfigError("", fmt.Sprintf("malformed YAML document: %v", err), err)
	}
	if doc.Steps == nil {
		doc.Steps = map[string]*StepDef{}
	}
	if doc.Workflows == nil {
		doc.Workflows = map[string]*Workflow{}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
