package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DebugLog is a no-op logger until InitDebugLog enables it. The TUI owns the
// terminal, so log output only ever goes to <data_dir>/debug.log.
var DebugLog = zerolog.Nop()

func InitDebugLog(dataDir string, enabled bool) {
	if !enabled {
		return
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// Create debug log with secure permissions (0600 - may contain prompts and API names)
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = zerolog.New(f).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Caller().
		Logger()
	DebugLog.Info().Str("path", logPath).Msg("debug logging started")
}
