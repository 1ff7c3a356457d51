// Package config loads client configuration from defaults, an optional
// YAML file, and ECOACTION_* environment variables.
package config
