package llm

import "strings"

// Function names on the wire may not contain dots, so the canonical
// "server.tool" form travels as "server__tool".
const wireSeparator = "__"

// EncodeToolName converts "server.tool" to its wire form.
func EncodeToolName(name string) string {
	return strings.Replace(name, ".", wireSeparator, 1)
}

// DecodeToolName converts a wire name back to "server.tool". Names without
// a separator are returned unchanged.
func DecodeToolName(name string) string {
	return strings.Replace(name, wireSeparator, ".", 1)
}

func isInvalidKeyMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "api key not valid") || strings.Contains(msg, "api_key_invalid")
}
