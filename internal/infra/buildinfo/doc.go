// Package buildinfo provides build information for respkv binaries.
package buildinfo
