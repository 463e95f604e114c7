package document

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

const (
	// maxYAMLNesting bounds alias expansion while converting a node tree.
	maxYAMLNesting = 10000

	// A document may expand to at most yamlNodesPerByte nodes per input
	// byte, and never fewer than minYAMLNodeBudget. Without aliases a node
	// costs at least one byte, so only alias bombs reach the limit.
	yamlNodesPerByte  = 100
	minYAMLNodeBudget = 10000
)

var errAliasExpansion = errors.New("alias expansion exceeds node budget")

// YAML parses a single YAML document. Mapping order follows the node tree.
type YAML struct{}

func (YAML) Format() string { return "yaml" }

func (YAML) Parse(data []byte) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Format: "yaml", Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, &ParseError{Format: "yaml", Err: errEmpty}
	}
	b := &yamlBuilder{budget: max(len(data)*yamlNodesPerByte, minYAMLNodeBudget)}
	v, err := b.build(doc.Content[0], 0)
	if err != nil {
		return nil, &ParseError{Format: "yaml", Err: err}
	}
	return v, nil
}

// yamlBuilder converts a node tree, counting every node it produces so
// repeated aliases cannot grow the result without bound.
type yamlBuilder struct {
	budget int
	nodes  int
}

func (b *yamlBuilder) build(n *yaml.Node, depth int) (*Value, error) {
	if depth > maxYAMLNesting {
		return nil, errors.New("nesting too deep")
	}
	if n.Kind != yaml.DocumentNode && n.Kind != yaml.AliasNode {
		b.nodes++
		if b.nodes > b.budget {
			return nil, fmt.Errorf("line %d: %w (%d nodes)", n.Line, errAliasExpansion, b.budget)
		}
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull(), nil
		}
		return b.build(n.Content[0], depth)
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias", n.Line)
		}
		return b.build(n.Alias, depth+1)
	case yaml.SequenceNode:
		arr := NewArray()
		for _, item := range n.Content {
			v, err := b.build(item, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Append(v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := b.build(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.ScalarNode:
		return yamlScalar(n), nil
	}
	return nil, fmt.Errorf("line %d: unsupported node kind %d", n.Line, n.Kind)
}

func yamlScalar(n *yaml.Node) *Value {
	switch n.ShortTag() {
	case "!!null":
		return NewNull()
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err == nil {
			return NewBool(b)
		}
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return NewInt(i)
		}
		return NewNumberLiteral(n.Value)
	case "!!float":
		var f float64
		if err := n.Decode(&f); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return NewFloat(f)
		}
		return NewNumberLiteral(n.Value)
	}
	// !!str, !!timestamp, !!binary and custom tags keep their text.
	return NewString(n.Value)
}
