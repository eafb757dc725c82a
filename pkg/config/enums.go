package config

// TransportType defines MCP server transport types
type TransportType string

const (
	// TransportTypeStdio uses subprocess communication via stdin/stdout
	TransportTypeStdio TransportType = "stdio"
	// TransportTypeHTTP uses streamable HTTP JSON-RPC
	TransportTypeHTTP TransportType = "http"
	// TransportTypeSSE uses Server-Sent Events
	TransportTypeSSE TransportType = "sse"
)

// IsValid checks if the transport type is valid
func (t TransportType) IsValid() bool {
	return t == TransportTypeStdio || t == TransportTypeHTTP || t == TransportTypeSSE
}

// MergePolicy decides what generate_report does when one of the report and
// news agents fails.
type MergePolicy string

const (
	// MergePolicyRequireBoth fails the report unless both agents succeed.
	MergePolicyRequireBoth MergePolicy = "require_both"
	// MergePolicyLenient merges whatever succeeded and marks the artifact degraded.
	// The report still fails when both agents fail.
	MergePolicyLenient MergePolicy = "lenient"
)

// IsValid checks if the merge policy is valid
func (p MergePolicy) IsValid() bool {
	return p == MergePolicyRequireBoth || p == MergePolicyLenient
}
