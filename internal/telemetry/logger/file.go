package logger

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig describes a rotating log file.
type FileConfig struct {
	// Path of the active log file. Rotated files are kept alongside it.
	Path string
	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files to retain (0 keeps all).
	MaxBackups int
	// MaxAgeDays removes rotated files older than this (0 disables).
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// NewFileWriter returns a writer that appends to cfg.Path and rotates it.
// The caller closes it on shutdown.
func NewFileWriter(cfg FileConfig) io.WriteCloser {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}
