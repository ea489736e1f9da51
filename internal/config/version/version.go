// Package version defines the supported configuration schema version.
package version

// Version is the configuration schema version this build understands.
const Version = "v1"
