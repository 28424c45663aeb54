package log

import (
	"io"
	stdlog "log"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	diagMu     sync.RWMutex
	diagLogger = stdlog.New(io.Discard, "", 0)
	diagWriter io.Closer
)

// SetupDiagnostics routes warnings to a size-rotated file inside dir. The
// terminal belongs to the UI so diagnostics never go to stdout or stderr.
func SetupDiagnostics(dir string) {
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "marquee.log"),
		MaxSize:    5, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	SetDiagnosticsOutput(w)

	diagMu.Lock()
	diagWriter = w
	diagMu.Unlock()
}

// SetDiagnosticsOutput sends diagnostics to w.
func SetDiagnosticsOutput(w io.Writer) {
	diagMu.Lock()
	defer diagMu.Unlock()
	diagLogger = stdlog.New(w, "marquee ", stdlog.LstdFlags|stdlog.Lmsgprefix)
}

// CloseDiagnostics flushes and closes the rotating file, if any.
func CloseDiagnostics() error {
	diagMu.Lock()
	defer diagMu.Unlock()
	diagLogger = stdlog.New(io.Discard, "", 0)
	if diagWriter == nil {
		return nil
	}
	err := diagWriter.Close()
	diagWriter = nil
	return err
}

// Warnf writes a warning line to the diagnostics log.
func Warnf(format string, args ...any) {
	diagMu.RLock()
	defer diagMu.RUnlock()
	diagLogger.Printf("WARN "+format, args...)
}

// Infof writes an informational line to the diagnostics log.
func Infof(format string, args ...any) {
	diagMu.RLock()
	defer diagMu.RUnlock()
	diagLogger.Printf("INFO "+format, args...)
}
