// Package buildinfo holds build-time metadata injected via -ldflags.
package buildinfo

import "runtime/debug"

// Version is the semantic version or tag for this build.
// Inject via: -X github.com/bansi-007/dialogflow-cx-usecase/internal/buildinfo.Version=...
var Version = ""

// Commit is the git commit SHA for this build.
// Inject via: -X github.com/bansi-007/dialogflow-cx-usecase/internal/buildinfo.Commit=...
var Commit = ""

// BuildDate is the RFC3339 build timestamp.
// Inject via: -X github.com/bansi-007/dialogflow-cx-usecase/internal/buildinfo.BuildDate=...
var BuildDate = ""

// Release returns the version used to tag error reports: Version when set,
// otherwise the VCS revision recorded by the toolchain, otherwise "dev".
func Release() string {
	if Version != "" {
		return Version
	}
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return "dev"
}

// String formats the build metadata for logs and probes.
func String() string {
	s := Release()
	if Commit != "" && Commit != s {
		s += " (" + Commit + ")"
	}
	if BuildDate != "" {
		s += " built " + BuildDate
	}
	return s
}
