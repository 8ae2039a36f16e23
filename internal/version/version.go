// Package version holds build identification, overridden at link time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3"
package version

var (
	// Version is the release version.
	Version = "dev"
	// GitSHA is the git commit the binary was built from.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)
