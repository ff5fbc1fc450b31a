package config

import (
	"strings"

	"dario.cat/mergo"
)

// EffectiveConfig builds the merged configuration for a named step or guard:
// defaults[category] ∪ defaults[name] ∪ declaredConfig, with later entries
// overriding earlier ones (spec §3 "Layered defaults").
//
// category is "step" or "guard". Reused via mergo instead of hand-rolled
// map copying, the layering is three mergo.Merge calls each applied with
// WithOverride so a later layer's keys win.
func (d *Document) EffectiveConfig(category, name string, declaredConfig map[string]any) map[string]any {
	out := map[string]any{}

	if categoryDefaults, ok := d.Defaults[category]; ok {
		_ = mergo.Merge(&out, categoryDefaults, mergo.WithOverride)
	}
	if nameDefaults, ok := d.Defaults[name]; ok {
		_ = mergo.Merge(&out, nameDefaults, mergo.WithOverride)
	}
	if declaredConfig != nil {
		_ = mergo.Merge(&out, declaredConfig, mergo.WithOverride)
	}

	return out
}

// GlobalSetting resolves a dotted path ("a.b.c") against Settings, walking
// nested map[string]any (and map[any]any, as some YAML decodes produce)
// levels. Returns (nil, false) if any segment is missing or not a map.
func (d *Document) GlobalSetting(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, ".")

	var current any = map[string]any(d.Settings)
	for _, seg := range segments {
		m, ok := asStringMap(current)
		if !ok {
			return nil, false
		}
		next, ok := m[seg]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func asStringMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}
