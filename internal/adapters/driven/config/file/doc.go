// Package file provides the TOML-backed ConfigStore.
package file
