package inject

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/workflowengine/internal/config"
	"github.com/alexisbeaulieu97/workflowengine/internal/workflowcontext"
)

type fakeComponent struct {
	Threshold int
	Name      string
	Region    string
	Extra     string
}

func (c *fakeComponent) TypeName() string { return "fakeComponent" }

func (c *fakeComponent) InjectionSchema() []FieldDescriptor {
	return []FieldDescriptor{
		{Field: "Threshold", Phase: PhaseInject, Key: "threshold", Kind: KindInt, Required: true},
		{Field: "Name", Phase: PhaseContextFill},
		{Field: "Extra", Phase: PhaseConfigFill, Key: "extra"},
		{Field: "Region", Phase: PhaseConfigValue, Key: "region", GlobalPath: "deploy.region", Kind: KindString, Default: "us-east-1"},
	}
}

func (c *fakeComponent) Set(field string, value any) error {
	switch field {
	case "Threshold":
		c.Threshold = value.(int)
	case "Name":
		c.Name = value.(string)
	case "Extra":
		c.Extra, _ = value.(string)
	case "Region":
		c.Region, _ = value.(string)
	}
	return nil
}

func TestBind_AllFourPhases(t *testing.T) {
	wc := workflowcontext.New()
	wc.Set("threshold", "42") // string coerced to int
	wc.Set("Name", "direct-fill")

	doc := &config.Document{Settings: map[string]any{"deploy": map[string]any{"region": "eu-west-1"}}}
	merged := map[string]any{"extra": "config-value"}

	c := &fakeComponent{}
	err := Bind(c, wc, merged, doc, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 42, c.Threshold)
	assert.Equal(t, "direct-fill", c.Name)
	assert.Equal(t, "config-value", c.Extra)
	assert.Equal(t, "eu-west-1", c.Region)
}

func TestBind_RequiredMissingFails(t *testing.T) {
	wc := workflowcontext.New()
	c := &fakeComponent{}

	err := Bind(c, wc, map[string]any{}, &config.Document{}, zerolog.Nop())
	require.Error(t, err)
}

func TestBind_DefaultAppliedWhenOptionalMissing(t *testing.T) {
	wc := workflowcontext.New()
	wc.Set("threshold", 1)
	c := &fakeComponent{}

	err := Bind(c, wc, map[string]any{}, &config.Document{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", c.Region)
}
