// Package version exposes the build-time version string.
package version

// Version is the module's version string, normally overridden at build
// time via -ldflags "-X github.com/aurel42/sunviewfinder/pkg/version.Version=...".
var Version = "dev"
