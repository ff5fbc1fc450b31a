// Package inject implements component dependency binding (spec §4.3),
// using the declarative-schema strategy spec §9 prescribes in place of
// reflective field writes: a component that wants bound fields implements
// Injectable and exposes a list of FieldDescriptors; Bind walks the four
// phases in order and calls the component's Set.
package inject

import (
	"github.com/alexisbeaulieu97/workflowengine/internal/coerce"
	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowcontext"
	"github.com/alexisbeaulieu97/workflowengine/pkg/workflowerrors"
	"github.com/rs/zerolog"
)

// Phase identifies which of the four injection passes a FieldDescriptor
// participates in.
type Phase int

const (
	// PhaseInject is phase 1: annotated context/config injection, with
	// context checked before config.
	PhaseInject Phase = iota
	// PhaseContextFill is phase 2: unannotated context fill by field-name
	// match, assigned without coercion.
	PhaseContextFill
	// PhaseConfigFill is phase 3: unannotated config fill by
	// property-name match.
	PhaseConfigFill
	// PhaseConfigValue is phase 4: annotated "configValue" injection,
	// merged config then dotted global settings path.
	PhaseConfigValue
)

// Kind names the declared Go type a field coerces to before assignment
// (spec §4.3 "coerce to the field's declared type"). KindAny skips
// coercion, used by the unannotated-fill phases which assign shallowly.
type Kind int

const (
	KindAny Kind = iota
	KindString
	KindInt
	KindInt64
	KindFloat64
	KindBool
	KindStringSlice
	KindStringMap
)

// FieldDescriptor describes one bindable field of an Injectable component
// (spec §9 "a small declarative schema").
type FieldDescriptor struct {
	Field      string // the component-facing key passed to Set
	Phase      Phase
	Key        string // explicit key; defaults to Field when empty
	Kind       Kind
	Required   bool
	Default    any
	GlobalPath string // dotted path into global settings, phase 4 only
}

func (d FieldDescriptor) effectiveKey() string {
	if d.Key != "" {
		return d.Key
	}
	return d.Field
}

// Injectable is implemented by Step/Guard components that want fields
// bound from context, merged config, or global settings.
type Injectable interface {
	InjectionSchema() []FieldDescriptor
	Set(field string, value any) error
}

// TypeName is implemented (optionally) by components to identify
// themselves in injection error messages; falls back to "component".
type TypeName interface {
	TypeName() string
}

// Bind runs the four-phase injection contract of spec §4.3 against
// instance, in order. Errors on a single field are logged and binding
// continues, except a required-missing field which is fatal.
func Bind(instance any, wc *workflowcontext.Context, mergedConfig map[string]any, doc *config.Document, log zerolog.Logger) error {
	injectable, ok := instance.(Injectable)
	if !ok {
		return nil
	}

	declaringType := "component"
	if tn, ok := instance.(TypeName); ok {
		declaringType = tn.TypeName()
	}

	schema := injectable.InjectionSchema()

	phases := []Phase{PhaseInject, PhaseContextFill, PhaseConfigFill, PhaseConfigValue}
	for _, phase := range phases {
		for _, fd := range schema {
			if fd.Phase != phase {
				continue
			}
			if err := bindField(injectable, fd, wc, mergedConfig, doc, declaringType, log); err != nil {
				return err
			}
		}
	}

	return nil
}

func bindField(injectable Injectable, fd FieldDescriptor, wc *workflowcontext.Context, mergedConfig map[string]any, doc *config.Document, declaringType string, log zerolog.Logger) error {
	key := fd.effectiveKey()

	switch fd.Phase {
	case PhaseInject:
		if wc != nil && wc.HasValue(key) {
			return setOrLog(injectable, fd, wc.Get(key), declaringType, log)
		}
		if v, ok := mergedConfig[key]; ok {
			return setOrLog(injectable, fd, v, declaringType, log)
		}
		return requiredOrDefault(injectable, fd, declaringType, key, log)

	case PhaseContextFill:
		if wc != nil && wc.HasValue(fd.Field) {
			// Unannotated context fill is a direct, uncoerced shallow
			// assignment (spec §4.3 phase 2).
			if err := injectable.Set(fd.Field, wc.Get(fd.Field)); err != nil {
				log.Warn().Err(err).Str("field", fd.Field).Str("type", declaringType).Msg("field injection failed, continuing")
			}
		}
		return nil

	case PhaseConfigFill:
		if v, ok := mergedConfig[key]; ok {
			if err := injectable.Set(fd.Field, v); err != nil {
				log.Warn().Err(err).Str("field", fd.Field).Str("type", declaringType).Msg("field injection failed, continuing")
			}
		}
		return nil

	case PhaseConfigValue:
		if v, ok := mergedConfig[key]; ok {
			return setOrLog(injectable, fd, v, declaringType, log)
		}
		if doc != nil && fd.GlobalPath != "" {
			if v, ok := doc.GlobalSetting(fd.GlobalPath); ok {
				return setOrLog(injectable, fd, v, declaringType, log)
			}
		}
		return requiredOrDefault(injectable, fd, declaringType, key, log)
	}

	return nil
}

func requiredOrDefault(injectable Injectable, fd FieldDescriptor, declaringType, key string, log zerolog.Logger) error {
	if fd.Required {
		err := workflowerrors.NewInjectionError(key, fd.Field, declaringType, "required value missing")
		log.Error().Err(err).Str("field", fd.Field).Str("key", key).Str("type", declaringType).Msg("required injection failed")
		return err
	}
	if fd.Default != nil {
		return setOrLog(injectable, fd, fd.Default, declaringType, log)
	}
	return nil
}

func setOrLog(injectable Injectable, fd FieldDescriptor, value any, declaringType string, log zerolog.Logger) error {
	coerced := coerceForKind(fd.Kind, value)
	if err := injectable.Set(fd.Field, coerced); err != nil {
		log.Warn().Err(err).Str("field", fd.Field).Str("type", declaringType).Msg("field injection failed, continuing")
	}
	return nil
}

// coerceForKind applies the shared coercion table (spec §9 "Coercion
// engine") keyed by the field's declared Kind.
func coerceForKind(kind Kind, v any) any {
	switch kind {
	case KindString:
		if s, ok := coerce.String(v); ok {
			return s
		}
	case KindInt:
		if n, ok := coerce.Int(v); ok {
			return n
		}
	case KindInt64:
		if n, ok := coerce.Int64(v); ok {
			return n
		}
	case KindFloat64:
		if f, ok := coerce.Float64(v); ok {
			return f
		}
	case KindBool:
		if b, ok := coerce.Bool(v); ok {
			return b
		}
	case KindStringSlice:
		if s, ok := coerce.StringSlice(v); ok {
			return s
		}
	case KindStringMap:
		if m, ok := coerce.StringMap(v); ok {
			return m
		}
	}
	return v
}
