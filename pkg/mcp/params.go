package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// fallbackParam receives bare arguments of tools that do not have exactly
// one parameter.
const fallbackParam = "input"

var argKeyPattern = regexp.MustCompile(`^[A-Za-z_][\w-]*$`)

// ParseArguments turns a model's raw tool arguments into an MCP argument map.
//
// JSON objects pass through. Models occasionally send YAML ("topic: golang")
// or a bare value instead; a bare value is assigned to soleParam, or to
// "input" when soleParam is empty. Empty input means no arguments.
func ParseArguments(raw, soleParam string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}, nil
	}
	if soleParam == "" {
		soleParam = fallbackParam
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
		if m, ok := decoded.(map[string]any); ok {
			return m, nil
		}
		if decoded == nil {
			return map[string]any{}, nil
		}
		return map[string]any{soleParam: decoded}, nil
	} else if strings.HasPrefix(raw, "{") {
		return nil, fmt.Errorf("malformed JSON arguments: %w", err)
	}

	if m, ok := parseYAMLArguments(raw); ok {
		return m, nil
	}
	return map[string]any{soleParam: raw}, nil
}

// parseYAMLArguments accepts a YAML mapping whose keys all look like
// parameter names, so prose such as "Go 1.22: what changed" stays a string.
func parseYAMLArguments(raw string) (map[string]any, bool) {
	var m map[string]any
	if err := yaml.Unmarshal([]byte(raw), &m); err != nil || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if !argKeyPattern.MatchString(k) {
			return nil, false
		}
	}
	return m, true
}

// soleParameter returns the property name of a schema with exactly one
// property, or "".
func soleParameter(schema any) string {
	props, err := schemaProperties(schema)
	if err != nil || len(props) != 1 {
		return ""
	}
	for name := range props {
		return name
	}
	return ""
}

func schemaProperties(schema any) (map[string]json.RawMessage, error) {
	if schema == nil {
		return nil, errors.New("no schema")
	}
	data, ok := schema.(json.RawMessage)
	if !ok {
		var err error
		if data, err = json.Marshal(schema); err != nil {
			return nil, err
		}
	}
	var s struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return s.Properties, nil
}
