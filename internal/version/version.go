// internal/version/version.go
package version

// Version is stamped into builds and every .prj manifest.
const Version = "1.0.0"
