package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// rejectUnknownKeys walks a mapping node's keys directly, since yaml.v3's
// Node.Decode starts a fresh decoder that does not inherit the top-level
// decoder's KnownFields(true). Custom UnmarshalYAML implementations that
// decode a sub-node need this to keep the same strictness the rest of the
// manifest gets for free.
func rejectUnknownKeys(node *yaml.Node, allowed ...string) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		set[k] = true
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !set[key.Value] {
			return fmt.Errorf("line %d: unknown field %q", key.Line, key.Value)
		}
	}
	return nil
}
