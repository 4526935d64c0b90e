package sqltx

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transaction outcome and command status label values.
const (
	TxCommitted  = "committed"
	TxRolledBack = "rolled_back"

	statusOK    = "ok"
	statusError = "error"

	opExec  = "exec"
	opQuery = "query"
)

// Metrics holds the Prometheus instruments for connection lifecycle and
// command execution. Build one with NewMetrics and share the same
// instance across every Conn registered against the same registry;
// registering twice would panic inside the Prometheus client.
//
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ConnectionsOpened prometheus.Counter
	Transactions      *prometheus.CounterVec
	Commands          *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
}

// NewMetrics registers the instruments with reg and returns them. A nil
// reg yields a nil Metrics, which disables recording.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	return &Metrics{
		ConnectionsOpened: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "sqltx_connections_opened_total",
				Help: "Total number of database connections opened",
			},
		),
		Transactions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqltx_transactions_total",
				Help: "Total number of transactions finished, by outcome",
			},
			[]string{"outcome"},
		),
		Commands: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sqltx_commands_total",
				Help: "Total number of commands executed, by operation and status",
			},
			[]string{"op", "status"},
		),
		CommandDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sqltx_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
			},
			[]string{"op"},
		),
	}
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.ConnectionsOpened.Inc()
}

func (m *Metrics) txFinished(outcome string) {
	if m == nil {
		return
	}
	m.Transactions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) command(op, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(op, status).Inc()
	m.CommandDuration.WithLabelValues(op).Observe(d.Seconds())
}
