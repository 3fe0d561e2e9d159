package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// LevelTrace sits below slog.LevelDebug for per-node evaluator chatter.
const LevelTrace = slog.Level(-8)

// ParseLevel maps the command line names onto slog levels. The second
// result is false for "none" and anything unrecognised, which disables logging.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelError, false
	}
}

// New builds a JSON logger writing to path, or to fallback when path is
// empty. The returned closer releases the log file and stops listening for
// SIGHUP; it is safe to call on a stderr or disabled logger.
func New(level string, path string, fallback io.Writer) (*slog.Logger, io.Closer, error) {
	lvl, enabled := ParseLevel(level)
	if !enabled {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}

	var out io.Writer = fallback
	var closer io.Closer = nopCloser{}
	if path != "" {
		fw, err := openFileWriter(path)
		if err != nil {
			return nil, nil, err
		}
		out, closer = fw, fw
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		AddSource: false,
		Level:     lvl,
	}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fileWriter reopens its file on SIGHUP so the log can be rotated:
//
//	mv aqua.log aqua.bak && kill -HUP <pid>
type fileWriter struct {
	path string
	mu   sync.Mutex
	fh   *os.File
	sigs chan os.Signal
	done chan struct{}
}

func openFileWriter(path string) (*fileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory for %s: %w", path, err)
	}
	fh, err := openLogFile(path)
	if err != nil {
		return nil, err
	}
	fw := &fileWriter{
		path: path,
		fh:   fh,
		sigs: make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
	signal.Notify(fw.sigs, syscall.SIGHUP)
	go fw.watch()
	return fw, nil
}

func openLogFile(path string) (*os.File, error) {
	fh, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return fh, nil
}

func (fw *fileWriter) watch() {
	for {
		select {
		case <-fw.sigs:
			if err := fw.Reopen(); err != nil {
				fmt.Fprintf(os.Stderr, "could not reopen log file: %v\n", err)
			}
		case <-fw.done:
			return
		}
	}
}

func (fw *fileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.fh == nil {
		return 0, os.ErrClosed
	}
	return fw.fh.Write(p)
}

// Reopen swaps the underlying file for a fresh handle on the same path.
func (fw *fileWriter) Reopen() error {
	fh, err := openLogFile(fw.path)
	if err != nil {
		return err
	}
	fw.mu.Lock()
	old := fw.fh
	fw.fh = fh
	fw.mu.Unlock()
	if old != nil {
		return old.Close()
	}
	return nil
}

func (fw *fileWriter) Close() error {
	signal.Stop(fw.sigs)
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.fh == nil {
		return nil
	}
	close(fw.done)
	err := fw.fh.Close()
	fw.fh = nil
	return err
}
