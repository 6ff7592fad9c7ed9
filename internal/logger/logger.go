// Package logger provides process-wide logging for the sercha-rag pipeline.
// Debug, Info and Section messages are printed only in verbose mode
// (--verbose). Warnings and errors are always printed. Level prefixes are
// coloured when the output is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr

	debugPrefix   = color.New(color.FgHiBlack).SprintFunc()
	infoPrefix    = color.New(color.FgCyan).SprintFunc()
	warnPrefix    = color.New(color.FgYellow).SprintFunc()
	errorPrefix   = color.New(color.FgRed, color.Bold).SprintFunc()
	sectionHeader = color.New(color.Bold).SprintFunc()
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if always || verbose {
		fmt.Fprintf(output, prefix+" "+format+"\n", args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, debugPrefix("[DEBUG]"), format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n%s\n", sectionHeader("=== "+name+" ==="))
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, infoPrefix("[INFO]"), format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write(true, warnPrefix("[WARN]"), format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write(true, errorPrefix("[ERROR]"), format, args...)
}
