// Package version holds build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Populated via -ldflags at release build time.
var (
	// GitRelease is the release tag, or "dev" for local builds.
	GitRelease = "dev"

	// GitCommit is the commit hash the binary was built from.
	GitCommit = "unknown"

	// GitCommitDate is the commit date of GitCommit.
	GitCommitDate = "unknown"
)

// GoInfo describes the toolchain and platform of the build.
var GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
