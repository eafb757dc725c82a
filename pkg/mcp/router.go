package mcp

import (
	"fmt"
	"regexp"
	"strings"
)

// "server.tool": both parts start with a word character and may contain
// hyphens ("duckduckgo-search.search").
var toolNamePattern = regexp.MustCompile(`^(\w[\w-]*)\.(\w[\w-]*)$`)

// NormalizeToolName accepts the wire form "server__tool" as well as the
// canonical "server.tool" and returns the canonical form.
func NormalizeToolName(name string) string {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, ".") && strings.Contains(name, "__") {
		return strings.Replace(name, "__", ".", 1)
	}
	return name
}

// SplitToolName splits "server.tool".
func SplitToolName(name string) (serverID, toolName string, err error) {
	m := toolNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", fmt.Errorf("invalid tool name %q: expected \"server.tool\", e.g. \"duckduckgo-search.search\"", name)
	}
	return m[1], m[2], nil
}

// JoinToolName builds the canonical name of a server's tool.
func JoinToolName(serverID, toolName string) string {
	return serverID + "." + toolName
}
