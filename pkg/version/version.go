// Package version reports build metadata for the scout binaries.
//
// Values injected with -ldflags win over VCS stamps read from
// debug.BuildInfo; both fall back to "dev".
package version

import (
	"runtime"
	"runtime/debug"
)

// AppName identifies scout in MCP handshakes, user agents and logs.
const AppName = "scout"

// Set with -ldflags "-X github.com/codeready-toolchain/scout/pkg/version.releaseOverride=v0.3.0".
var (
	releaseOverride string
	commitOverride  string
)

// Info is the build metadata served by `scout version` and the health endpoints.
type Info struct {
	Release   string `json:"release"`
	GitCommit string `json:"git_commit"`
	Modified  bool   `json:"modified"`
	GoVersion string `json:"go_version"`
}

var current = readInfo()

// GitCommit is the short commit hash, or "dev".
var GitCommit = current.GitCommit

func readInfo() Info {
	info := Info{
		Release:   "dev",
		GitCommit: "dev",
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			info.Release = v
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.GitCommit = shortHash(s.Value)
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if releaseOverride != "" {
		info.Release = releaseOverride
	}
	if commitOverride != "" {
		info.GitCommit = shortHash(commitOverride)
	}
	return info
}

func shortHash(h string) string {
	if h == "" {
		return "dev"
	}
	if len(h) > 8 {
		return h[:8]
	}
	return h
}

// Get returns a copy of the build metadata.
func Get() Info {
	return current
}

// Full returns "scout/<commit>", with a "+dirty" suffix for modified trees.
func Full() string {
	s := AppName + "/" + current.GitCommit
	if current.Modified {
		s += "+dirty"
	}
	return s
}
