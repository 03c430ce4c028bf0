package yamlsource

import (
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/merlin/internal/model"
)

// Encode builds the YAML node tree for cs.
//
// Parameters are written in one of two forms. The scalar-collapsed form
// `name: default` is used when the parameter has no description and its
// per-environment values collapse onto the default. Otherwise the expanded
// form carries an optional description and a value that is either the bare
// default or a sequence of `{environment: value}` entries (sorted by
// environment name) closed by `{default: value}` when the default is known.
func Encode(cs *model.ConfigurationSet) *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}
	environments := cs.Environments()

	if len(environments) > 0 {
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, env := range environments {
			seq.Content = append(seq.Content, scalarNode(env.Name()))
		}
		root.Content = append(root.Content, scalarNode(sectionEnvironments), seq)
	}

	params := &yaml.Node{Kind: yaml.SequenceNode}
	for _, p := range cs.Parameters() {
		params.Content = append(params.Content, mappingNode(p.Name(), encodeParameter(p, environments)))
	}
	root.Content = append(root.Content, scalarNode(sectionParameters), params)

	return root
}

func encodeParameter(p *model.Parameter, environments []model.Environment) *yaml.Node {
	collapsed := valuesCollapse(p, environments)
	if collapsed && model.IsValueUnknown(p.Description()) {
		return scalarNode(p.DefaultValue())
	}

	properties := &yaml.Node{Kind: yaml.MappingNode}
	if !model.IsValueUnknown(p.Description()) {
		properties.Content = append(properties.Content, scalarNode(propertyDescription), scalarNode(p.Description()))
	}

	var value *yaml.Node
	if collapsed {
		value = scalarNode(p.DefaultValue())
	} else {
		value = encodeEnvironmentValues(p)
	}
	properties.Content = append(properties.Content, scalarNode(propertyValue), value)

	return properties
}

// encodeEnvironmentValues lists every recorded override that must be
// written explicitly, then the default when it is known.
func encodeEnvironmentValues(p *model.Parameter) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, env := range p.Environments() {
		if v, _ := p.Value(env); mustWriteValue(p, v) {
			seq.Content = append(seq.Content, mappingNode(env.Name(), scalarNode(v)))
		}
	}
	if !model.IsValueUnknown(p.DefaultValue()) {
		seq.Content = append(seq.Content, mappingNode(model.ReservedEnvironmentName, scalarNode(p.DefaultValue())))
	}
	return seq
}

// mustWriteValue decides whether a recorded override carries information
// beyond the default. Without a known default every recorded override is
// kept, so that `env: ''` markers are what makes the parameter readable.
func mustWriteValue(p *model.Parameter, value string) bool {
	return value != p.DefaultValue() || model.IsValueUnknown(p.DefaultValue())
}

// valuesCollapse reports whether nothing beyond the scalar default needs
// to be written: the default is known and every declared environment's
// value is absent or equal to it.
func valuesCollapse(p *model.Parameter, environments []model.Environment) bool {
	if model.IsValueUnknown(p.DefaultValue()) {
		return false
	}
	for _, env := range environments {
		if v, ok := p.Value(env); ok && v != p.DefaultValue() {
			return false
		}
	}
	return true
}

func mappingNode(key string, value *yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{scalarNode(key), value}}
}

// scalarNode creates an untagged scalar so that values such as `15` are
// written plain. Values that would read back as null are single-quoted.
func scalarNode(value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	switch value {
	case "", "~", "null", "Null", "NULL":
		n.Style = yaml.SingleQuotedStyle
	}
	return n
}
