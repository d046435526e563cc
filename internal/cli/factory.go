package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/automate"
	"github.com/aretw0/automate/internal/config"
	"github.com/aretw0/automate/pkg/adapters/memory"
	"github.com/aretw0/automate/pkg/adapters/process"
	"github.com/aretw0/automate/pkg/adapters/redis"
	"github.com/aretw0/automate/pkg/adapters/script"
	"github.com/aretw0/automate/pkg/observability"
	"github.com/aretw0/automate/pkg/ports"
	"github.com/aretw0/automate/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
)

// Stack is an assistant built from configuration, with the resources it owns.
type Stack struct {
	Assistant *automate.Assistant
	Agent     *script.Agent
	Metrics   *prometheus.Registry
	Logger    *slog.Logger

	closers []func() error
}

// Close stops the assistant and releases the backends it opened.
func (s *Stack) Close() error {
	s.Assistant.Close()
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// buildStack wires an assistant from cfg. extra options are applied last.
func buildStack(ctx context.Context, cfg *config.Config, logger *slog.Logger, extra ...automate.Option) (*Stack, error) {
	s := &Stack{
		Metrics: prometheus.NewRegistry(),
		Logger:  logger,
	}

	policy, err := worker.ParsePolicy(cfg.Dispatch.Policy)
	if err != nil {
		return nil, err
	}

	outputs, err := s.openOutputs(ctx, cfg)
	if err != nil {
		return nil, err
	}

	apps, err := process.LoadApps(cfg.Apps)
	if err != nil {
		logger.Warn("Failed to load apps config", "path", cfg.Apps, "error", err)
		apps = nil
	}
	metrics := observability.NewMetrics(s.Metrics)
	launcher := process.NewLauncher(
		process.WithApps(apps),
		process.WithBaseDir(filepath.Dir(cfg.Apps)),
		process.WithLogger(logger),
		process.WithExitFunc(metrics.AppExited),
	)

	// Scripted steps may run registered actions; the assistant owning the
	// registry only exists once New returns.
	var assistant *automate.Assistant
	executor := script.ExecutorFunc(func(ctx context.Context, name string, inputs map[string]any) (any, error) {
		return assistant.Execute(ctx, name, inputs)
	})
	agent, err := script.Load(cfg.Agent.Script,
		script.WithStepDelay(cfg.Agent.StepDelay),
		script.WithExecutor(executor),
	)
	if err != nil {
		s.closeAll()
		return nil, err
	}
	s.Agent = agent

	hooks := observability.Combine(metrics.Hooks(), observability.LoggingHooks(logger))

	opts := []automate.Option{
		automate.WithAgent(agent),
		automate.WithOutputs(outputs),
		automate.WithLauncher(launcher),
		automate.WithLogger(logger),
		automate.WithLifecycleHooks(hooks),
		automate.WithDispatchPolicy(policy),
		automate.WithErrorPolicy(cfg.ErrorPolicy()),
		automate.WithMaxIterations(cfg.Loop.MaxIterations),
	}
	assistant, err = automate.New(append(opts, extra...)...)
	if err != nil {
		s.closeAll()
		return nil, fmt.Errorf("error initializing assistant: %w", err)
	}
	s.Assistant = assistant
	return s, nil
}

func (s *Stack) openOutputs(ctx context.Context, cfg *config.Config) (ports.OutputSource, error) {
	if cfg.Outputs.RedisAddr == "" {
		return memory.NewOutputs(nil), nil
	}

	store := redis.New(cfg.Outputs.RedisAddr, "", 0, redis.WithKey(cfg.Outputs.RedisKey))
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Outputs.RedisAddr, err)
	}
	s.closers = append(s.closers, store.Close)
	s.Logger.Debug("output mapping backed by redis", "addr", cfg.Outputs.RedisAddr, "key", store.Key())
	return store, nil
}

func (s *Stack) closeAll() {
	for _, c := range s.closers {
		_ = c()
	}
}
