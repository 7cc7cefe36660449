// Package command provides CLI command definitions for respkv-cli.
//
// It uses urfave/cli/v2 for command parsing. Each command builds a request
// frame, sends it over one TCP connection and prints the reply.
package command
