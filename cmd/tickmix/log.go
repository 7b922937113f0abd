package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"

	"github.com/dgnsrekt/tickmix/internal/cache"
	"github.com/dgnsrekt/tickmix/internal/softmix"
	"github.com/dgnsrekt/tickmix/pkg/mixer"
)

// logOutput is where every logger writes; setupLog may add a file to it.
var logOutput io.Writer = os.Stderr

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "tickmix").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tickmix.log"), nil
}

// setupLog mirrors logs into TICKMIX_LOG_FILE, or into the user cache
// directory when TICKMIX_DEBUG is set.
func setupLog() (func() error, error) {
	log.SetOutput(logOutput)

	logFile := os.Getenv("TICKMIX_LOG_FILE")
	if logFile == "" && os.Getenv("TICKMIX_DEBUG") == "" {
		return func() error { return nil }, nil
	}
	if logFile == "" {
		path, err := getLogFilePath()
		if err != nil {
			return nil, fmt.Errorf("unable to locate log directory: %w", err)
		}
		logFile = path
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}

	logOutput = io.MultiWriter(os.Stderr, f)
	log.SetOutput(logOutput)
	log.SetLevel(log.DebugLevel)
	return f.Close, nil
}

// configureLogging sets the mixer's level and output, then gives the other
// packages loggers that match it.
func configureLogging(cfg mixer.Config) {
	mixer.InitializeLogging(cfg.Debug || os.Getenv("TICKMIX_DEBUG") != "", logOutput)
	cache.SetLogger(mixer.NewLogger("cache"))
	softmix.SetLogger(mixer.NewLogger("softmix"))
}
