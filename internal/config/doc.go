// Package config loads application settings from environment variables and
// an optional config file, and validates them before anything else starts.
package config
