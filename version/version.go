// Package version exposes build metadata, set at link time with -ldflags -X.
package version

//nolint:gochecknoglobals // set by the linker
var (
	name    = "diapason"
	version = "dev"
	commit  = "unknown"
)

// Name returns the binary name.
func Name() string {
	return name
}

// Version returns the release version, or "dev" for local builds.
func Version() string {
	return version
}

// Commit returns the git commit the binary was built from.
func Commit() string {
	return commit
}
