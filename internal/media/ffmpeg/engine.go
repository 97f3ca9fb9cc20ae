package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"sb3slim/internal/logging"
	"sb3slim/internal/services"
)

// CommandFactory builds the command for one ffmpeg invocation.
type CommandFactory func(ctx context.Context, name string, args ...string) *exec.Cmd

// Capture holds the diagnostic text ffmpeg emitted for a single invocation.
type Capture struct {
	Args   []string
	Output string
}

// Duration parses the media duration reported in the capture.
func (c Capture) Duration() (float64, bool) {
	return ParseDuration(c.Output)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger for engine lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithScratchRoot sets the parent directory for the engine scratch directory.
// The system temp directory is used when unset.
func WithScratchRoot(dir string) Option {
	return func(e *Engine) {
		e.scratchRoot = strings.TrimSpace(dir)
	}
}

// WithCommandFactory replaces exec.CommandContext, mainly so tests can
// substitute a fake binary.
func WithCommandFactory(factory CommandFactory) Option {
	return func(e *Engine) {
		if factory != nil {
			e.command = factory
		}
	}
}

// Engine is a once-initialized handle to the ffmpeg binary.
type Engine struct {
	binary      string
	scratchRoot string
	logger      *slog.Logger
	command     CommandFactory

	loadOnce sync.Once
	loadErr  error
	dir      string
	version  string

	// mu serializes sessions; ffmpeg calls share one scratch directory.
	mu sync.Mutex
}

// New constructs an unloaded engine for the given binary.
func New(binary string, opts ...Option) *Engine {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	e := &Engine{binary: binary, logger: logging.NewNop(), command: exec.CommandContext}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "ffmpeg")
	return e
}

// Binary returns the configured executable.
func (e *Engine) Binary() string {
	return e.binary
}

// Load verifies the binary and prepares the scratch directory. Only the first
// call does any work; concurrent callers block until it finishes and then
// share its result.
func (e *Engine) Load(ctx context.Context) error {
	e.loadOnce.Do(func() {
		e.loadErr = e.load(ctx)
	})
	return e.loadErr
}

func (e *Engine) load(ctx context.Context) error {
	cmd := e.command(ctx, e.binary, "-hide_banner", "-version") //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "load", fmt.Sprintf("run %q", e.binary), err)
	}
	e.version = parseVersion(string(output))

	dir, err := os.MkdirTemp(e.scratchRoot, "sb3slim-ffmpeg-")
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "load", "create scratch directory", err)
	}
	e.dir = dir
	e.logger.Debug("audio engine loaded",
		logging.String("binary", e.binary),
		logging.String("version", e.version),
		logging.String("scratch_dir", dir),
	)
	return nil
}

// Version returns the version string reported by the loaded binary.
func (e *Engine) Version() string {
	return e.version
}

// Close removes the scratch directory.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dir == "" {
		return nil
	}
	err := os.RemoveAll(e.dir)
	e.dir = ""
	return err
}

// Session runs fn with exclusive use of the scratch directory. The directory
// is emptied after fn returns, whether or not it succeeded.
func (e *Engine) Session(ctx context.Context, fn func(*Session) error) error {
	if err := e.Load(ctx); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dir == "" {
		return services.Wrap(services.ErrConfiguration, "ffmpeg", "session", "engine closed", nil)
	}

	s := &Session{engine: e}
	err := fn(s)
	if cleanupErr := e.clearScratch(); cleanupErr != nil {
		e.logger.Warn("scratch cleanup failed", logging.Error(cleanupErr))
		if err == nil {
			err = cleanupErr
		}
	}
	return err
}

func (e *Engine) clearScratch() error {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return fmt.Errorf("read scratch directory: %w", err)
	}
	var errs []error
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(e.dir, entry.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Session is a serialized view of the engine scratch directory. It is only
// valid inside the callback passed to Engine.Session.
type Session struct {
	engine *Engine
}

// WriteScratch stores data under name in the scratch directory.
func (s *Session) WriteScratch(name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write scratch %s: %w", name, err)
	}
	return nil
}

// ReadScratch returns the contents of a scratch file.
func (s *Session) ReadScratch(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scratch %s: %w", name, err)
	}
	return data, nil
}

// DeleteScratch removes a scratch file. Missing files are not an error.
func (s *Session) DeleteScratch(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete scratch %s: %w", name, err)
	}
	return nil
}

// Run invokes ffmpeg inside the scratch directory, so scratch names can be
// passed as relative arguments, and returns everything it printed.
func (s *Session) Run(ctx context.Context, args ...string) (Capture, error) {
	full := append([]string{"-hide_banner", "-nostdin"}, args...)
	cmd := s.engine.command(ctx, s.engine.binary, full...) //nolint:gosec
	cmd.Dir = s.engine.dir
	output, err := cmd.CombinedOutput()
	capture := Capture{Args: full, Output: string(output)}
	if err != nil {
		return capture, services.Wrap(services.ErrExternalTool, "ffmpeg", "run", lastLine(capture.Output), err)
	}
	return capture, nil
}

func (s *Session) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid scratch name %q", name)
	}
	return filepath.Join(s.engine.dir, name), nil
}

func parseVersion(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "ffmpeg version "); ok {
			if fields := strings.Fields(rest); len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
