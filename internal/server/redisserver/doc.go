// Package redisserver serves the key-value store over the RESP protocol.
//
// Each accepted connection is handled by its own goroutine, which reads
// frames with internal/protocol/connection, decodes them with
// internal/command and replies with the frame produced by CommandHandler.
package redisserver
