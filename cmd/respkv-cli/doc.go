// Package main provides the entry point for respkv-cli.
//
// The CLI sends single commands to a respkv server and prints the reply:
//
//	respkv-cli get <key>
//	respkv-cli ping [message]
//	respkv-cli --server 10.0.0.5:6378 --output json get session:42
package main
