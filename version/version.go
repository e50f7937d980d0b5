// Package version holds build-time identification, injected via -ldflags.
package version

var (
	// GitRelease is the tagged release version, or "dev" for local builds.
	GitRelease = "dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the commit timestamp.
	GitCommitDate = "unknown"
	// GoInfo is the Go toolchain version used to build the binary.
	GoInfo = "unknown"
)
