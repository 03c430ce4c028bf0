// Package jsonsource reads and writes configuration sets as JSON.
//
// The document layout is the YAML layout expressed in JSON:
//
//	{
//	  "environments": ["Local", "Test"],
//	  "parameters": [
//	    {"maxThreads": "5"},
//	    {"callTimeoutSeconds": {
//	      "description": "How long the system waits",
//	      "value": [{"Local": "30"}, {"default": "15"}]
//	    }}
//	  ]
//	}
//
// Sources may contain comments and trailing commas (JSONC); they are
// stripped with github.com/tidwall/jsonc before parsing. The document is
// converted into a yaml.v3 node tree and decoded by yamlsource, so both
// formats share the same layout rules and error messages.
package jsonsource
