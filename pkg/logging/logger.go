// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for the siteupdate tool.
//
// The logger is built on the standard library slog package with two
// destinations: human-readable text on stderr (the Unix CLI convention),
// and an optional machine-parseable JSON file for post-run analysis of
// long ingests. File logs are always JSON regardless of the stderr format.
//
// Basic usage:
//
//	logger := logging.New(logging.Config{Service: "siteupdate"})
//	defer logger.Close()
//	slog.SetDefault(logger.Slog())
//
// Thread Safety: Logger is safe for concurrent use; the underlying slog
// handlers serialize their writes.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config configures the Logger. The zero value logs Info and above to
// stderr as text.
type Config struct {
	// Debug lowers the minimum level from Info to Debug.
	Debug bool

	// LogDir enables file logging to "{Service}_{date}.log" in the given
	// directory, created with 0750 permissions if needed. Empty disables
	// file logging.
	LogDir string

	// Service is attached to every record as the "service" attribute and
	// names the log file.
	Service string

	// JSON switches the stderr handler to JSON output. File output is
	// JSON regardless.
	JSON bool

	// Quiet disables the stderr handler.
	Quiet bool
}

// Logger wraps slog.Logger with file lifecycle management.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New builds a Logger from config. Always Close the returned logger so the
// log file is flushed.
func New(config Config) *Logger {
	level := slog.LevelInfo
	if config.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	service := config.Service
	if service == "" {
		service = "siteupdate"
	}

	var handlers []slog.Handler
	if !config.Quiet {
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	logger := &Logger{}
	if config.LogDir != "" {
		if err := os.MkdirAll(config.LogDir, 0750); err == nil {
			name := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
			file, err := os.OpenFile(filepath.Join(config.LogDir, name),
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
			if err == nil {
				logger.file = file
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}
	handler = handler.WithAttrs([]slog.Attr{slog.String("service", service)})

	logger.slog = slog.New(handler)
	return logger
}

// Slog returns the underlying slog.Logger, suitable for slog.SetDefault.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close syncs and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}
