// SPDX-License-Identifier: MIT
//
// Package build manages build metadata embedded into the binary at
// compile time via linker flags: application name, build timestamp,
// Git commit hash, and semantic version. Development builds without
// ldflags fall back to "unknown" values.
package build

type ldFlags struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// Package-level variables populated by -ldflags during compilation,
// for example:
//
//	go build -ldflags "-X specmon/pkg/build.buildName=specmon"
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:    "specmon",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "unknown",
	}
)

// Initialize copies build information from the ldflags variables into
// the buildFlags struct. Call early in program startup. Unset flags
// keep their development defaults.
func Initialize() {
	if buildName != "" {
		buildFlags.Name = buildName
	}
	if buildTime != "" {
		buildFlags.Time = buildTime
	}
	if buildCommit != "" {
		buildFlags.Commit = buildCommit
	}
	if buildVersion != "" {
		buildFlags.Version = buildVersion
	}
}

// GetBuildFlags returns the current build information. Safe to call
// before Initialize; development defaults are returned in that case.
func GetBuildFlags() *ldFlags {
	return buildFlags
}
