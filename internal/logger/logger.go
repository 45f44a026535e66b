// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger prints diagnostics for the notesheet CLI. Nothing is
// printed unless verbose mode is enabled with --verbose. The conversion
// packages never log; only the command layer does.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the writer for verbose logs. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func printf(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, prefix+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { printf("[DEBUG] ", format, args...) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { printf("[INFO] ", format, args...) }

// Warn prints a warning if verbose mode is enabled.
func Warn(format string, args ...any) { printf("[WARN] ", format, args...) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) { printf("\n=== ", "%s ===", name) }

// Timed logs how long an operation took. Use it as
//
//	defer logger.Timed("converting %s", path)()
func Timed(format string, args ...any) func() {
	start := now()
	msg := fmt.Sprintf(format, args...)
	return func() {
		Debug("%s took %s", msg, now().Sub(start).Round(time.Millisecond))
	}
}
