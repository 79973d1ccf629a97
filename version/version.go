// Package version exposes build metadata set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/qpig0218/Rootplanner/version.GitRelease=v0.2.0"
package version

import "runtime"

var (
	// GitRelease is the release tag the binary was built from.
	GitRelease = "dev"
	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"
	// GitCommitDate is the commit date the binary was built from.
	GitCommitDate = "unknown"
	// GoInfo is the Go toolchain version.
	GoInfo = runtime.Version()
)
