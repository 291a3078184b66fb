// Package config provides configuration structures and utilities for
// lookupreport: runtime options with their defaults, the .lookupreport
// YAML file that overrides lookup categories, and XDG directory helpers.
package config
