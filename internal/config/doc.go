// Package config loads application configuration from environment
// variables and an optional YAML file. Environment variables take
// precedence; both are layered over built-in defaults.
//
// Variables use the GML prefix, e.g. GML_SERVER_PORT=8080 or
// GML_VALIDATION_TOLERANCE=0.05.
package config
