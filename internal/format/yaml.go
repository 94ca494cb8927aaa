// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package format

import (
	"errors"
	"fmt"
	"strings"

	"github.com/z5labs/container/merge"

	"gopkg.in/yaml.v3"
)

// Tags which turn a YAML value into a merge.Directive.
const (
	UnsetTag   = "!unset"
	ReplaceTag = "!replace"
)

const mergeTag = "!!merge"

var errNotAMapping = errors.New("document root must be a mapping")

func decodeYaml(b []byte) (map[string]any, error) {
	var doc yaml.Node
	err := yaml.Unmarshal(b, &doc)
	if err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return map[string]any{}, nil
	}

	v, err := nodeValue(&doc)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return map[string]any{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotAMapping
	}
	return m, nil
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Tag {
	case UnsetTag:
		return merge.Unset{}, nil
	case ReplaceTag:
		untagged := *n
		untagged.Tag = ""
		v, err := nodeValue(&untagged)
		if err != nil {
			return nil, err
		}
		return merge.Replace{Value: v}, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		return mappingValue(n)
	case yaml.SequenceNode:
		xs := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			xs = append(xs, v)
		}
		return xs, nil
	case yaml.ScalarNode:
		return scalarValue(n)
	default:
		return nil, fmt.Errorf("unexpected yaml node kind at line %d: %d", n.Line, n.Kind)
	}
}

func mappingValue(n *yaml.Node) (map[string]any, error) {
	m := make(map[string]any, len(n.Content)/2)

	// merge keys ("<<: *base") never override explicit keys
	// regardless of where they appear in the mapping.
	var merged []map[string]any
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if isMergeKey(k) {
			ms, err := mergeSources(v)
			if err != nil {
				return nil, err
			}
			merged = append(merged, ms...)
			continue
		}

		val, err := nodeValue(v)
		if err != nil {
			return nil, err
		}
		m[k.Value] = val
	}

	for _, src := range merged {
		for k, v := range src {
			if _, exists := m[k]; !exists {
				m[k] = v
			}
		}
	}
	return m, nil
}

func isMergeKey(n *yaml.Node) bool {
	if n.Kind != yaml.ScalarNode || n.Value != "<<" {
		return false
	}
	return n.Tag == "" || n.Tag == "!" || n.Tag == mergeTag
}

func mergeSources(n *yaml.Node) ([]map[string]any, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}

	var nodes []*yaml.Node
	switch n.Kind {
	case yaml.MappingNode:
		nodes = []*yaml.Node{n}
	case yaml.SequenceNode:
		nodes = n.Content
	default:
		return nil, fmt.Errorf("merge key at line %d must reference a mapping", n.Line)
	}

	ms := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		if node.Kind == yaml.AliasNode {
			node = node.Alias
		}
		if node.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("merge key at line %d must reference a mapping", node.Line)
		}
		m, err := mappingValue(node)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

func scalarValue(n *yaml.Node) (any, error) {
	c := *n
	if strings.HasPrefix(c.Tag, "!") && !strings.HasPrefix(c.Tag, "!!") {
		// unknown local tags are resolved like untagged scalars
		c.Tag = ""
	}

	var v any
	err := c.Decode(&v)
	if err != nil {
		return nil, err
	}
	return v, nil
}
