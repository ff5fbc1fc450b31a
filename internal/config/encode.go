package config

import (
	"bytes"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Encode re-emits the document to YAML deterministically (spec §6
// "Formatted output"): top-level keys ordered {settings, defaults, steps,
// workflows}, step and workflow names sorted lexicographically, missing
// optional fields omitted, block style, indent 2, LF line endings.
func (d *Document) Encode(w io.Writer) error {
	root := &yaml.Node{Kind: yaml.MappingNode}

	if len(d.Settings) > 0 {
		appendMapping(root, "settings", anyToNode(d.Settings))
	}
	if len(d.Defaults) > 0 {
		appendMapping(root, "defaults", defaultsNode(d.Defaults))
	}
	appendMapping(root, "steps", stepsNode(d.Steps))
	appendMapping(root, "workflows", workflowsNode(d.Workflows))

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	out := normalizeLineEndings(buf.Bytes())
	_, err := w.Write(out)
	return err
}

func normalizeLineEndings(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

func appendMapping(parent *yaml.Node, key string, value *yaml.Node) {
	parent.Content = append(parent.Content, scalarNode(key), value)
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stepsNode(steps map[string]*StepDef) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range sortedKeys(steps) {
		step := steps[name]
		node.Content = append(node.Content, scalarNode(name), stepNode(step))
	}
	return node
}

func stepNode(s *StepDef) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendMapping(node, "type", scalarNode(s.Type))
	if len(s.Config) > 0 {
		appendMapping(node, "config", anyToNode(s.Config))
	}
	if len(s.Guards) > 0 {
		appendMapping(node, "guards", stringSliceNode(s.Guards))
	}
	if s.Retry != nil {
		appendMapping(node, "retry", retryNode(s.Retry))
	}
	return node
}

func retryNode(r *RetryConfig) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if r.Retries != nil {
		appendMapping(node, "retries", intNode(int64(*r.Retries)))
	} else if r.MaxAttempts != 0 {
		appendMapping(node, "maxAttempts", intNode(int64(r.MaxAttempts)))
	}
	if r.DelayMillis != nil {
		appendMapping(node, "delay", intNode(*r.DelayMillis))
	}
	if r.Guard != "" {
		appendMapping(node, "guard", scalarNode(r.Guard))
	}
	if r.Backoff != "" {
		appendMapping(node, "backoff", scalarNode(string(r.Backoff)))
	}
	if r.Multiplier != 0 {
		appendMapping(node, "multiplier", floatNode(r.Multiplier))
	}
	if r.MaxDelay != 0 {
		appendMapping(node, "maxDelay", intNode(r.MaxDelay))
	}
	return node
}

func workflowsNode(workflows map[string]*Workflow) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range sortedKeys(workflows) {
		wf := workflows[name]
		node.Content = append(node.Content, scalarNode(name), workflowNode(wf))
	}
	return node
}

func workflowNode(w *Workflow) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendMapping(node, "root", scalarNode(w.Root))

	edges := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range w.Edges {
		edges.Content = append(edges.Content, edgeNode(e))
	}
	appendMapping(node, "edges", edges)
	return node
}

func edgeNode(e Edge) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendMapping(node, "from", scalarNode(e.From))
	appendMapping(node, "to", scalarNode(e.To))
	if e.Guard != "" {
		appendMapping(node, "guard", scalarNode(e.Guard))
	}
	if e.Condition != "" {
		appendMapping(node, "condition", scalarNode(e.Condition))
	}
	if e.Kind != "" {
		appendMapping(node, "kind", scalarNode(e.Kind))
	}
	if e.OnFailure != nil {
		appendMapping(node, "onFailure", onFailureNode(e.OnFailure))
	}
	return node
}

func onFailureNode(f *OnFailure) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	appendMapping(node, "strategy", scalarNode(string(f.Strategy)))
	if f.AlternativeTarget != "" {
		appendMapping(node, "alternativeTarget", scalarNode(f.AlternativeTarget))
	}
	if f.Attempts != 0 {
		appendMapping(node, "attempts", intNode(int64(f.Attempts)))
	}
	if f.DelayMillis != 0 {
		appendMapping(node, "delay", intNode(f.DelayMillis))
	}
	return node
}

func defaultsNode(defaults map[string]map[string]any) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range sortedKeys(defaults) {
		node.Content = append(node.Content, scalarNode(name), anyToNode(defaults[name]))
	}
	return node
}

func stringSliceNode(values []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		node.Content = append(node.Content, scalarNode(v))
	}
	return node
}

func intNode(v int64) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func floatNode(v float64) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func anyToNode(v any) *yaml.Node {
	switch t := v.(type) {
	case map[string]any:
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range sortedKeys(t) {
			node.Content = append(node.Content, scalarNode(k), anyToNode(t[k]))
		}
		return node
	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode}
		for _, elem := range t {
			node.Content = append(node.Content, anyToNode(elem))
		}
		return node
	default:
		n := &yaml.Node{}
		_ = n.Encode(t)
		return n
	}
}
