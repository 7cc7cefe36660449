// Package shutdown runs registered cleanup hooks when the process receives
// SIGINT or SIGTERM, or when shutdown is triggered programmatically.
package shutdown
