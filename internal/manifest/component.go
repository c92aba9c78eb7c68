package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ComponentSelector picks one weidu component to install, either as a bare
// integer index or an object carrying a human-readable label that is
// preserved for round-tripping but ignored at install time.
type ComponentSelector struct {
	Index         int
	ComponentName string
}

// UnmarshalYAML accepts either a scalar integer or a mapping with index
// and an optional component_name.
func (c *ComponentSelector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var idx int
		if err := node.Decode(&idx); err != nil {
			return fmt.Errorf("line %d: component selector must be an integer or object: %w", node.Line, err)
		}
		c.Index = idx
		return nil
	}

	if err := rejectUnknownKeys(node, "index", "component_name"); err != nil {
		return err
	}
	var obj struct {
		Index         int    `yaml:"index"`
		ComponentName string `yaml:"component_name"`
	}
	if err := node.Decode(&obj); err != nil {
		return fmt.Errorf("line %d: decoding component selector: %w", node.Line, err)
	}
	c.Index = obj.Index
	c.ComponentName = obj.ComponentName
	return nil
}

// MarshalYAML emits the compact scalar form when there is no label to
// preserve, otherwise the object form.
func (c ComponentSelector) MarshalYAML() (interface{}, error) {
	if c.ComponentName == "" {
		return c.Index, nil
	}
	return struct {
		Index         int    `yaml:"index"`
		ComponentName string `yaml:"component_name"`
	}{c.Index, c.ComponentName}, nil
}

// ComponentSelection is a module's components field: either the literal
// "ask" or an ordered list of ComponentSelector.
type ComponentSelection struct {
	Ask       bool
	Selectors []ComponentSelector
}

// UnmarshalYAML accepts the scalar "ask" or a sequence of selectors.
func (c *ComponentSelection) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return fmt.Errorf("line %d: decoding components: %w", node.Line, err)
		}
		if s != "ask" {
			return fmt.Errorf("line %d: components scalar must be \"ask\", got %q", node.Line, s)
		}
		c.Ask = true
		return nil
	}

	var sel []ComponentSelector
	if err := node.Decode(&sel); err != nil {
		return fmt.Errorf("line %d: decoding components list: %w", node.Line, err)
	}
	c.Selectors = sel
	return nil
}

// MarshalYAML re-emits "ask" or the selector list.
func (c ComponentSelection) MarshalYAML() (interface{}, error) {
	if c.Ask {
		return "ask", nil
	}
	return c.Selectors, nil
}

// IsEmpty reports whether this module has no components to install at all
// (neither "ask" nor any selector) — a no-op module.
func (c ComponentSelection) IsEmpty() bool {
	return !c.Ask && len(c.Selectors) == 0
}
