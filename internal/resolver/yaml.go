package resolver

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// FlattenYAML loads a nested associative YAML document into dotted config
// keys. YAML has no env-lookup indirection, so entries are either Literal
// scalars or Indeterminate (anchors, tagged values, sequences of mappings).
func FlattenYAML(data []byte) (map[string]ConfigEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	entries := map[string]ConfigEntry{}
	if len(doc.Content) == 0 {
		return entries, nil
	}
	flattenYAMLNode(doc.Content[0], "", entries)
	return entries, nil
}

func flattenYAMLNode(n *yaml.Node, prefix string, entries map[string]ConfigEntry) {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if prefix != "" {
				key = prefix + "." + key
			}
			flattenYAMLNode(n.Content[i+1], key, entries)
		}
	case yaml.ScalarNode:
		if _, seen := entries[prefix]; seen {
			return
		}
		entries[prefix] = ConfigEntry{Resolution: Literal, Value: yamlScalar(n), SourceLine: n.Line}
	case yaml.AliasNode:
		if n.Alias != nil && n.Alias.Kind == yaml.ScalarNode {
			entries[prefix] = ConfigEntry{Resolution: Literal, Value: yamlScalar(n.Alias), SourceLine: n.Line}
			return
		}
		entries[prefix] = ConfigEntry{Resolution: Indeterminate, SourceLine: n.Line}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			flattenYAMLNode(item, prefix+"."+strconv.Itoa(i), entries)
		}
	}
}

func yamlScalar(n *yaml.Node) any {
	switch n.Tag {
	case "!!bool":
		return n.Value == "true" || n.Value == "True" || n.Value == "TRUE"
	case "!!int":
		if v, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
			return v
		}
	case "!!float":
		if v, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return v
		}
	case "!!null":
		return nil
	}
	return n.Value
}
