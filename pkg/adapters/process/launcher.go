package process

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/aretw0/automate/internal/logging"
	"github.com/aretw0/automate/pkg/domain"
)

// ExitFunc observes a launched program once it has exited.
type ExitFunc func(path string, pid int, err error)

// Launcher starts local programs detached from the caller.
// Paths are first resolved against the application catalogue, then against PATH.
type Launcher struct {
	mu      sync.RWMutex
	apps    map[string]AppConfig
	baseDir string
	logger  *slog.Logger
	onExit  ExitFunc
}

// LauncherOption configures the launcher.
type LauncherOption func(*Launcher)

// WithApps populates the alias catalogue from a loaded config.
func WithApps(apps map[string]AppConfig) LauncherOption {
	return func(l *Launcher) {
		for name, app := range apps {
			l.apps[name] = app
		}
	}
}

// WithBaseDir sets the working directory for launched programs. Relative
// program paths such as "bin/tool" are also resolved against it.
func WithBaseDir(dir string) LauncherOption {
	return func(l *Launcher) {
		l.baseDir = dir
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) LauncherOption {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// WithExitFunc registers a callback run after each launched program exits.
func WithExitFunc(fn ExitFunc) LauncherOption {
	return func(l *Launcher) {
		l.onExit = fn
	}
}

// NewLauncher creates a new process launcher.
func NewLauncher(opts ...LauncherOption) *Launcher {
	l := &Launcher{
		apps:   make(map[string]AppConfig),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds an application alias.
func (l *Launcher) Register(name string, command string, args ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.apps[name] = AppConfig{Name: name, Command: command, Args: args}
}

// Apps returns a copy of the catalogue.
func (l *Launcher) Apps() map[string]AppConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]AppConfig, len(l.apps))
	for k, v := range l.apps {
		out[k] = v
	}
	return out
}

// Launch starts the program at path and returns once it has been spawned.
// Output is not captured and the program outlives ctx. Resolution and spawn
// failures are returned as *domain.LaunchError.
func (l *Launcher) Launch(ctx context.Context, path string) error {
	l.mu.RLock()
	app, isAlias := l.apps[path]
	l.mu.RUnlock()

	command := path
	var args []string
	if isAlias {
		command = app.Command
		args = app.Args
	}
	// LookPath checks relative paths against the process cwd while the child
	// starts in baseDir, so anchor them to an absolute path first.
	if l.baseDir != "" && !filepath.IsAbs(command) && filepath.Base(command) != command {
		abs, err := filepath.Abs(filepath.Join(l.baseDir, command))
		if err != nil {
			return &domain.LaunchError{Path: path, Err: err}
		}
		command = abs
	}

	resolved, err := exec.LookPath(command)
	if err != nil {
		return &domain.LaunchError{Path: path, Err: err}
	}

	// Not CommandContext: the application must keep running after the request ends.
	cmd := exec.Command(resolved, args...)
	cmd.Dir = l.baseDir
	if isAlias && len(app.Environment) > 0 {
		env := cmd.Environ()
		for k, v := range app.Environment {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}

	if err := cmd.Start(); err != nil {
		return &domain.LaunchError{Path: path, Err: err}
	}

	pid := cmd.Process.Pid
	l.logger.Info("application launched", "path", path, "command", resolved, "pid", pid)

	go func() {
		waitErr := cmd.Wait()
		if waitErr != nil {
			l.logger.Debug("application exited", "path", path, "pid", pid, "error", waitErr)
		} else {
			l.logger.Debug("application exited", "path", path, "pid", pid)
		}
		if l.onExit != nil {
			l.onExit(path, pid, waitErr)
		}
	}()

	return nil
}
