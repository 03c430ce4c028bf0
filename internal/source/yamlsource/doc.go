// Package yamlsource reads and writes configuration sets in the YAML format:
//
//	environments:
//	- Local
//	- Test
//	parameters:
//	- maxThreads:
//	    description: Max number of threads
//	    value:
//	    - Local: 15
//	    - Test: 25
//	    - default: 5
//
// Parsing walks the gopkg.in/yaml.v3 node tree instead of unmarshalling into
// structs, because the format mixes shapes (a parameter definition is either
// a scalar or a mapping, a value either a scalar or a sequence) and every
// malformed shape needs its own diagnostic. Decode and Encode expose the
// node-level logic so that other tree-shaped formats can reuse it.
package yamlsource
