package yamlsource

import (
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/merlin/internal/model"
	"github.com/shinji-kodama/merlin/internal/source"
)

// Section and property names of the format.
const (
	sectionEnvironments = "environments"
	sectionParameters   = "parameters"
	propertyDescription = "description"
	propertyValue       = "value"
)

// reader walks one document. It is created per Decode call and discarded
// once the ConfigurationSet has been built.
type reader struct {
	format string
}

// Decode builds a ConfigurationSet from a YAML node tree. doc may be a
// document node or its root node. format is reported in FormatError.Format,
// which lets formats sharing this layout (JSON) identify themselves.
func Decode(doc *yaml.Node, format string) (*model.ConfigurationSet, error) {
	r := &reader{format: format}
	return r.read(doc)
}

func (r *reader) read(doc *yaml.Node) (*model.ConfigurationSet, error) {
	root := resolve(doc)
	if root != nil && root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, r.errorf("No valid section provided.")
		}
		root = resolve(root.Content[0])
	}
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, r.errorf("No valid section provided.")
	}

	environments, err := r.readEnvironments(lookup(root, sectionEnvironments))
	if err != nil {
		return nil, err
	}

	parameters, err := r.readParameters(lookup(root, sectionParameters))
	if err != nil {
		return nil, err
	}

	if err := r.ensureNoUnknownSection(root); err != nil {
		return nil, err
	}

	return model.NewConfigurationSet(parameters, environments)
}

// readEnvironments folds the environments sequence into an ordered set.
// Repeated names keep the position of their first occurrence.
func (r *reader) readEnvironments(section *yaml.Node) ([]model.Environment, error) {
	if section == nil || isNull(section) {
		return nil, nil
	}
	if section.Kind != yaml.SequenceNode {
		return nil, r.errorf("Invalid `%s` section.", sectionEnvironments)
	}

	seen := make(map[model.Environment]struct{}, len(section.Content))
	environments := make([]model.Environment, 0, len(section.Content))
	for _, item := range section.Content {
		item = resolve(item)
		if item.Kind != yaml.ScalarNode || isNull(item) {
			return nil, r.errorf("Invalid environment definition.")
		}

		env := model.NewEnvironment(item.Value)
		if env.IsReserved() {
			return nil, r.errorf("`%s` name is prohibited for environment name.", model.ReservedEnvironmentName)
		}
		if _, dup := seen[env]; dup {
			continue
		}
		seen[env] = struct{}{}
		environments = append(environments, env)
	}
	return environments, nil
}

func (r *reader) readParameters(section *yaml.Node) ([]*model.Parameter, error) {
	if section == nil || section.Kind != yaml.SequenceNode {
		return nil, r.errorf("Missing `%s` section.", sectionParameters)
	}

	parameters := make([]*model.Parameter, 0, len(section.Content))
	for _, item := range section.Content {
		p, err := r.readParameter(resolve(item))
		if err != nil {
			return nil, err
		}
		parameters = append(parameters, p)
	}
	return parameters, nil
}

// readParameter reads one `{name: definition}` entry of the parameters
// sequence.
func (r *reader) readParameter(entry *yaml.Node) (*model.Parameter, error) {
	if entry.Kind != yaml.MappingNode || len(entry.Content) != 2 {
		return nil, r.errorf("Invalid parameter entry.")
	}
	key := resolve(entry.Content[0])
	if key.Kind != yaml.ScalarNode {
		return nil, r.errorf("Invalid parameter entry.")
	}
	name := scalarValue(key)
	definition := resolve(entry.Content[1])

	switch definition.Kind {
	case yaml.ScalarNode:
		return model.NewParameter(name, scalarValue(definition), nil)
	case yaml.MappingNode:
		return r.readParameterProperties(name, definition)
	default:
		return nil, r.errorf("Invalid `%s` parameter definition.", name)
	}
}

// readParameterProperties reads the expanded form:
//
//	name:
//	  description: text
//	  value: scalar | [{env: value}, ..., {default: value}]
func (r *reader) readParameterProperties(name string, definition *yaml.Node) (*model.Parameter, error) {
	var opts []model.ParameterOption
	if descriptionNode := lookup(definition, propertyDescription); descriptionNode != nil {
		if descriptionNode.Kind != yaml.ScalarNode {
			return nil, r.errorf("Invalid description definition for parameter `%s`.", name)
		}
		opts = append(opts, model.WithDescription(scalarValue(descriptionNode)))
	}

	valueNode := lookup(definition, propertyValue)
	if valueNode == nil {
		return nil, r.errorf("Invalid value definition for parameter `%s`.", name)
	}

	switch valueNode.Kind {
	case yaml.ScalarNode:
		return model.NewParameter(name, scalarValue(valueNode), nil, opts...)
	case yaml.SequenceNode:
		defaultValue, values, err := r.readEnvironmentValues(name, valueNode)
		if err != nil {
			return nil, err
		}
		return model.NewParameter(name, defaultValue, values, opts...)
	default:
		return nil, r.errorf("Invalid value definition for parameter `%s`.", name)
	}
}

// readEnvironmentValues reads a sequence of one-key mappings. The reserved
// `default` key sets the default value; any other key is an environment
// override. Repeated keys overwrite earlier ones (last write wins).
func (r *reader) readEnvironmentValues(name string, sequence *yaml.Node) (string, map[model.Environment]string, error) {
	var defaultValue string
	values := make(map[model.Environment]string)

	for _, item := range sequence.Content {
		item = resolve(item)
		if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
			return "", nil, r.errorf("Invalid value definition for parameter `%s`.", name)
		}
		key := resolve(item.Content[0])
		value := resolve(item.Content[1])
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return "", nil, r.errorf("Invalid value definition for parameter `%s`.", name)
		}

		envName := scalarValue(key)
		if envName == model.ReservedEnvironmentName {
			defaultValue = scalarValue(value)
			continue
		}
		values[model.NewEnvironment(envName)] = scalarValue(value)
	}
	return defaultValue, values, nil
}

func (r *reader) ensureNoUnknownSection(root *yaml.Node) error {
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := resolve(root.Content[i])
		name := scalarValue(key)
		if name != sectionEnvironments && name != sectionParameters {
			return r.errorf("Unknown section `%s`.", name)
		}
	}
	return nil
}

func (r *reader) errorf(format string, args ...interface{}) error {
	return source.NewFormatError(r.format, format, args...)
}

// lookup returns the value node stored under key in a mapping node, or nil.
// When a key is repeated the last occurrence wins.
func lookup(mapping *yaml.Node, key string) *yaml.Node {
	var found *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		k := resolve(mapping.Content[i])
		if k.Kind == yaml.ScalarNode && k.Value == key {
			found = resolve(mapping.Content[i+1])
		}
	}
	return found
}

// resolve follows alias nodes to the node they reference.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// scalarValue returns the text of a scalar node; null scalars (`~`, `null`
// or nothing at all) read as the empty string.
func scalarValue(n *yaml.Node) string {
	if isNull(n) {
		return ""
	}
	return n.Value
}
