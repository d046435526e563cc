package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/automate/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors of the assistant.
type Metrics struct {
	TasksStarted   prometheus.Counter
	TasksFinished  *prometheus.CounterVec
	TasksRunning   prometheus.Gauge
	Messages       *prometheus.CounterVec
	LoopIterations *prometheus.CounterVec
	AppsExited     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TasksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "automate_tasks_started_total",
			Help: "Total number of worker tasks started",
		}),
		TasksFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automate_tasks_finished_total",
				Help: "Total number of worker tasks finished, by final status",
			},
			[]string{"status"},
		),
		TasksRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "automate_tasks_running",
			Help: "Number of worker tasks currently running",
		}),
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automate_messages_total",
				Help: "Total number of messages posted to the conversation",
			},
			[]string{"role", "is_error"},
		),
		LoopIterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automate_loop_condition_checks_total",
				Help: "Total number of loop stop-condition evaluations, by outcome",
			},
			[]string{"stop"},
		),
		AppsExited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automate_apps_exited_total",
				Help: "Total number of launched applications that exited, by status",
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.TasksStarted, m.TasksFinished, m.TasksRunning, m.Messages, m.LoopIterations, m.AppsExited)
	return m
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTaskStart: func(ctx context.Context, e *domain.TaskEvent) {
			m.TasksStarted.Inc()
			m.TasksRunning.Inc()
		},
		OnTaskFinish: func(ctx context.Context, e *domain.TaskEvent) {
			m.TasksRunning.Dec()
			m.TasksFinished.WithLabelValues(e.Status).Inc()
		},
		OnMessage: func(ctx context.Context, e *domain.MessageEvent) {
			m.Messages.WithLabelValues(string(e.Role), strconv.FormatBool(e.IsError)).Inc()
		},
		OnLoopIteration: func(ctx context.Context, e *domain.LoopEvent) {
			m.LoopIterations.WithLabelValues(strconv.FormatBool(e.Stop)).Inc()
		},
	}
}

// AppExited counts one launched application exit. Its signature matches
// process.ExitFunc.
func (m *Metrics) AppExited(path string, pid int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.AppsExited.WithLabelValues(status).Inc()
}
