// Package command decodes RESP command arrays into typed commands.
//
// A command arrives as an Array frame whose elements are Bulk strings. Parse
// exposes those elements as a forward-only cursor; each command kind pulls
// its own arguments from it. The package has no knowledge of storage or of
// how commands are executed.
package command
