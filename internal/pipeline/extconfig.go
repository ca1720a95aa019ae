package pipeline

import (
	"fmt"
	"sort"
)

// ExtensionConfig is one extension's configuration entry: the extension id
// it targets, an optional instance id distinguishing repeated
// configurations of the same extension, and the opaque configuration
// subtree.
type ExtensionConfig struct {
	Extension string
	ID        string
	Config    map[string]any
}

// Ref returns the name transform blocks and include/exclude lists resolve
// against: the instance id when set, the extension id otherwise.
func (e ExtensionConfig) Ref() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Extension
}

// ParseExtensionConfigs accepts both configuration shapes: an array of
// explicit entries with optional ids, and the legacy single object keyed by
// extension id. Entries of a legacy object come back sorted by extension
// id; callers needing another order use the array shape.
func ParseExtensionConfigs(node any) ([]ExtensionConfig, error) {
	switch v := node.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]ExtensionConfig, 0, len(v))
		for i, entry := range v {
			m, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: extension configuration entry %d is not an object", ErrConfigInvalid, i)
			}
			name, _ := m["extension"].(string)
			if name == "" {
				return nil, fmt.Errorf("%w: extension configuration entry %d has no extension name", ErrConfigInvalid, i)
			}
			id, _ := m["id"].(string)
			cfg, _ := m["configuration"].(map[string]any)
			out = append(out, ExtensionConfig{Extension: name, ID: id, Config: cfg})
		}
		return out, nil
	case map[string]any:
		// Legacy shape: one object keyed by extension id.
		out := make([]ExtensionConfig, 0, len(v))
		for _, name := range sortedKeys(v) {
			cfg, ok := v[name].(map[string]any)
			if !ok && v[name] != nil {
				return nil, fmt.Errorf("%w: configuration of extension %q is not an object", ErrConfigInvalid, name)
			}
			out = append(out, ExtensionConfig{Extension: name, Config: cfg})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: extension configuration must be an array or an object", ErrConfigInvalid)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
