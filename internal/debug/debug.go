package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Build flag for debug mode - can be overridden at build time
// go build -ldflags "-X github.com/standardbeagle/dsrefs/internal/debug.EnableDebug=true"
var EnableDebug = "false"

// TraceEnv lists trace options to enable, comma separated ("all" enables every option)
const TraceEnv = "DSREFS_TRACE"

// debugOutput is the writer for debug output (defaults to nil, meaning no output)
var debugOutput io.Writer

// debugFile holds the open file handle if debug output goes to a file
var debugFile *os.File

// traceOptions holds options enabled through SetTraceOptions
var traceOptions map[string]bool

// debugMutex protects access to debug output and trace options
var debugMutex sync.Mutex

// SetDebugOutput sets a custom writer for debug output.
// Pass nil to disable debug output entirely.
func SetDebugOutput(w io.Writer) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	debugOutput = w
}

// SetTraceOptions replaces the set of enabled trace options.
// Options from the DSREFS_TRACE environment variable stay enabled.
func SetTraceOptions(options []string) {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	traceOptions = make(map[string]bool, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			traceOptions[o] = true
		}
	}
}

// InitDebugLogFile initializes debug logging to a file.
// Returns the path to the log file, or an error if initialization fails.
// Call CloseDebugLog when done to ensure the file is properly closed.
func InitDebugLogFile() (string, error) {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	logDir := filepath.Join(os.TempDir(), "dsrefs-debug-logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create debug log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02T150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("debug-%s.log", timestamp))

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create debug log file: %w", err)
	}

	debugFile = file
	debugOutput = file
	return logPath, nil
}

// CloseDebugLog closes the debug log file if one is open.
func CloseDebugLog() error {
	debugMutex.Lock()
	defer debugMutex.Unlock()

	if debugFile != nil {
		err := debugFile.Close()
		debugFile = nil
		debugOutput = nil
		return err
	}
	return nil
}

// IsDebugEnabled returns true if debug mode is enabled
func IsDebugEnabled() bool {
	// Check build flag first
	if EnableDebug == "true" {
		return true
	}

	// Allow runtime override via environment variable
	if os.Getenv("DEBUG") == "1" || os.Getenv("DEBUG") == "true" {
		return true
	}

	return false
}

// getDebugWriter returns the writer for debug output, or nil if none is configured
func getDebugWriter() io.Writer {
	debugMutex.Lock()
	defer debugMutex.Unlock()
	return debugOutput
}

// optionEnabled checks the configured options and the environment
func optionEnabled(name string) bool {
	debugMutex.Lock()
	enabled := traceOptions[name] || traceOptions["all"]
	debugMutex.Unlock()
	if enabled {
		return true
	}

	for _, o := range strings.Split(os.Getenv(TraceEnv), ",") {
		o = strings.TrimSpace(o)
		if o == name || o == "all" {
			return true
		}
	}
	return false
}

// Printf prints debug information only when debug mode is enabled and output is configured
func Printf(format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG] "+format, args...)
}

// Log provides structured debug logging with component names
func Log(component, format string, args ...interface{}) {
	if !IsDebugEnabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[DEBUG:%s] "+format, append([]interface{}{component}, args...)...)
}

// LogIndexing provides debug logging specifically for index builds
func LogIndexing(format string, args ...interface{}) {
	Log("INDEX", format, args...)
}

// LogSearch provides debug logging specifically for search operations
func LogSearch(format string, args ...interface{}) {
	Log("SEARCH", format, args...)
}

// Tracer writes messages for a single named trace option.
// A Tracer is only active when debug mode is on, an output is configured
// and its option is enabled.
type Tracer struct {
	option string
}

// Option returns the tracer for a named option such as "search" or "resolver".
func Option(name string) *Tracer {
	return &Tracer{option: strings.TrimPrefix(name, "/")}
}

// Name returns the option name
func (t *Tracer) Name() string {
	return t.option
}

// Enabled reports whether trace output would be written
func (t *Tracer) Enabled() bool {
	if !IsDebugEnabled() || getDebugWriter() == nil {
		return false
	}
	return optionEnabled(t.option)
}

// Tracef writes a trace line when the option is enabled
func (t *Tracer) Tracef(format string, args ...interface{}) {
	if !t.Enabled() {
		return
	}
	w := getDebugWriter()
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[TRACE:%s] %s\n", t.option, fmt.Sprintf(format, args...))
}

// TraceError writes a trace line with an attached error
func (t *Tracer) TraceError(msg string, err error) {
	if !t.Enabled() {
		return
	}
	t.Tracef("%s: %v", msg, err)
}
