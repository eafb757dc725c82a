package prompt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/codeready-toolchain/scout/pkg/agent"
)

// serverOf returns the server part of a canonical "server.tool" name.
func serverOf(toolName string) string {
	if i := strings.Index(toolName, "."); i > 0 {
		return toolName[:i]
	}
	return ""
}

// toolServers returns the distinct servers of tools in first-seen order.
func toolServers(tools []agent.ToolDefinition) []string {
	seen := make(map[string]bool)
	var servers []string
	for _, t := range tools {
		s := serverOf(t.Name)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		servers = append(servers, s)
	}
	return servers
}

// FormatToolDescriptions renders tools as a numbered list with their
// parameters. Tools are also declared natively; the list gives the model a
// readable overview of what each one is for.
func FormatToolDescriptions(tools []agent.ToolDefinition) string {
	if len(tools) == 0 {
		return "No tools available."
	}

	var sb strings.Builder
	for i, tool := range tools {
		fmt.Fprintf(&sb, "%d. **%s**: %s\n", i+1, tool.Name, tool.Description)

		params := extractParameters(parseSchema(tool))
		if len(params) == 0 {
			sb.WriteString("    Parameters: none\n")
			continue
		}
		sb.WriteString("    Parameters: ")
		sb.WriteString(strings.Join(params, "; "))
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func parseSchema(tool agent.ToolDefinition) map[string]any {
	if tool.ParametersSchema == "" {
		return nil
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(tool.ParametersSchema), &schema); err != nil {
		slog.Debug("Failed to parse tool parameters schema", "tool", tool.Name, "error", err)
		return nil
	}
	return schema
}

// extractParameters summarizes the properties of a JSON Schema object,
// sorted by name: "name (required string): description".
func extractParameters(schema map[string]any) []string {
	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}

	required := make(map[string]bool)
	if reqList, ok := schema["required"].([]any); ok {
		for _, r := range reqList {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(properties))
	for k := range properties {
		names = append(names, k)
	}
	sort.Strings(names)

	params := make([]string, 0, len(names))
	for _, name := range names {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		qualifier := "optional"
		if required[name] {
			qualifier = "required"
		}
		if typ, ok := prop["type"].(string); ok {
			qualifier += " " + typ
		}
		param := fmt.Sprintf("%s (%s)", name, qualifier)
		if desc, ok := prop["description"].(string); ok && desc != "" {
			param += ": " + desc
		}
		if def, ok := prop["default"]; ok {
			param += fmt.Sprintf(" [default: %v]", def)
		}
		params = append(params, param)
	}
	return params
}
