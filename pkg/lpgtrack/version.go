// Package lpgtrack carries module-level metadata shared by the CLI and server.
package lpgtrack

// Version is the module version reported by the version command and the
// cobra --version flag.
const Version = "0.1.0"
