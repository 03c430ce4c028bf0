package model

import (
	"fmt"
	"sort"
)

// ReservedEnvironmentName is the key used by the source formats to denote a
// parameter's default value. It can never name a real environment.
const ReservedEnvironmentName = "default"

// Environment is a named deployment context (e.g., "Local", "Test") in which
// a parameter may hold an overriding value.
//
// Two environments are equal iff their names are equal (case-sensitive).
// Environment is comparable, so it can be used directly as a map key.
type Environment struct {
	name string
}

// NewEnvironment creates an Environment with the given name.
func NewEnvironment(name string) Environment {
	return Environment{name: name}
}

// Name returns the environment name.
func (e Environment) Name() string {
	return e.name
}

// String satisfies fmt.Stringer.
func (e Environment) String() string {
	return e.name
}

// IsReserved reports whether the environment uses ReservedEnvironmentName.
func (e Environment) IsReserved() bool {
	return e.name == ReservedEnvironmentName
}

// IsValueUnknown reports whether a parameter value carries no information.
// Go strings cannot be null, so the empty string covers both the "absent"
// and the "empty" cases.
func IsValueUnknown(value string) bool {
	return value == ""
}

// Parameter is a named configuration entry with a default value and
// optional per-environment overrides.
type Parameter struct {
	name         string
	defaultValue string
	description  string

	// values holds only environments whose value differs in meaning from
	// the default entry.
	values map[Environment]string
}

// ParameterOption customizes a Parameter during construction.
type ParameterOption func(*Parameter)

// WithDescription sets the human-readable description of a parameter.
func WithDescription(description string) ParameterOption {
	return func(p *Parameter) {
		p.description = description
	}
}

// NewParameter creates a validated Parameter.
//
// The name must not be empty. A parameter must carry a default value or at
// least one environment-specific value. The values map is copied, so later
// changes to the caller's map do not affect the parameter.
func NewParameter(name, defaultValue string, values map[Environment]string, opts ...ParameterOption) (*Parameter, error) {
	if name == "" {
		return nil, &ArgumentError{Argument: "name", Message: "Parameter name must not be empty."}
	}
	if IsValueUnknown(defaultValue) && len(values) == 0 {
		return nil, &ArgumentError{
			Argument: "defaultValue",
			Message: fmt.Sprintf(
				"Parameter `%s` requires either a default value or at least one environment-specific value.", name),
		}
	}

	p := &Parameter{
		name:         name,
		defaultValue: defaultValue,
		values:       make(map[Environment]string, len(values)),
	}
	for env, v := range values {
		p.values[env] = v
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// DefaultValue returns the default value; empty means "no default".
func (p *Parameter) DefaultValue() string {
	return p.defaultValue
}

// Description returns the optional description.
func (p *Parameter) Description() string {
	return p.description
}

// Values returns a copy of the per-environment overrides.
func (p *Parameter) Values() map[Environment]string {
	out := make(map[Environment]string, len(p.values))
	for env, v := range p.values {
		out[env] = v
	}
	return out
}

// Value returns the override recorded for env, if any.
func (p *Parameter) Value(env Environment) (string, bool) {
	v, ok := p.values[env]
	return v, ok
}

// EffectiveValue returns the value that applies in env: the override when
// one is recorded, the default otherwise.
func (p *Parameter) EffectiveValue(env Environment) string {
	if v, ok := p.values[env]; ok {
		return v
	}
	return p.defaultValue
}

// Environments returns the environments this parameter has overrides for,
// sorted by name for deterministic iteration.
func (p *Parameter) Environments() []Environment {
	envs := make([]Environment, 0, len(p.values))
	for env := range p.values {
		envs = append(envs, env)
	}
	sort.Slice(envs, func(i, j int) bool {
		return envs[i].name < envs[j].name
	})
	return envs
}

// ConfigurationSet is the validated aggregate of all environments and
// parameters forming one configuration.
//
// Environment order defines column order on write, parameter order defines
// row order. Both are preserved exactly as given to NewConfigurationSet.
type ConfigurationSet struct {
	environments []Environment
	parameters   []*Parameter
	byName       map[string]*Parameter
}

// NewConfigurationSet creates a ConfigurationSet and validates it.
//
// Validation order:
//  1. No environment name is repeated
//  2. No parameter name is repeated
//  3. Every environment a parameter is configured for is declared
//
// The first violation is returned as an *InvalidConfigurationError.
func NewConfigurationSet(parameters []*Parameter, environments []Environment) (*ConfigurationSet, error) {
	cs := &ConfigurationSet{
		environments: append([]Environment(nil), environments...),
		parameters:   append([]*Parameter(nil), parameters...),
		byName:       make(map[string]*Parameter, len(parameters)),
	}

	declared := make(map[Environment]struct{}, len(environments))
	for _, env := range cs.environments {
		if _, dup := declared[env]; dup {
			return nil, &InvalidConfigurationError{
				Message: fmt.Sprintf("Environment `%s` cannot occur multiple times.", env.name),
			}
		}
		declared[env] = struct{}{}
	}

	for _, p := range cs.parameters {
		if p == nil {
			return nil, &ArgumentError{Argument: "parameters", Message: "Parameter must not be nil."}
		}
		if _, dup := cs.byName[p.name]; dup {
			return nil, &InvalidConfigurationError{
				Message: fmt.Sprintf("Parameter `%s` cannot occur multiple times.", p.name),
			}
		}
		cs.byName[p.name] = p
	}

	for _, p := range cs.parameters {
		for _, env := range p.Environments() {
			if _, ok := declared[env]; !ok {
				return nil, &InvalidConfigurationError{
					Message: fmt.Sprintf("Unknown environment `%s` for which parameter `%s` is configured.",
						env.name, p.name),
				}
			}
		}
	}

	return cs, nil
}

// Environments returns a copy of the declared environments in order.
func (cs *ConfigurationSet) Environments() []Environment {
	return append([]Environment(nil), cs.environments...)
}

// Parameters returns a copy of the parameter list in order.
func (cs *ConfigurationSet) Parameters() []*Parameter {
	return append([]*Parameter(nil), cs.parameters...)
}

// Parameter looks up a parameter by name.
func (cs *ConfigurationSet) Parameter(name string) (*Parameter, bool) {
	p, ok := cs.byName[name]
	return p, ok
}

// HasEnvironment reports whether env is declared on the set.
func (cs *ConfigurationSet) HasEnvironment(env Environment) bool {
	for _, e := range cs.environments {
		if e == env {
			return true
		}
	}
	return false
}
