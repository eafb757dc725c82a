package config

import (
	"bytes"
	"os"
	"strings"
	"text/template"
)

// ExpandEnv expands {{.VAR_NAME}} references in YAML content with values from
// the process environment. The template syntax leaves literal $ alone, which
// matters for shell snippets in stdio MCP server args.
//
// Missing variables expand to the empty string; validation catches required
// fields left empty. Content that fails to parse as a template is returned
// unchanged so the YAML parser can report a clearer error.
func ExpandEnv(data []byte) []byte {
	tmpl, err := template.New("config").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return data
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, environ()); err != nil {
		return data
	}
	return buf.Bytes()
}

// ExpandEnvString is ExpandEnv for a single value (built-in server env entries).
func ExpandEnvString(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return string(ExpandEnv([]byte(s)))
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}
