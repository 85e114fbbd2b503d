package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/errors"
	"github.com/nully0x/bitcoin-regtest-tui/pkg/networks/types"
)

const namespace = "regtest"

var statuses = []types.NetworkStatus{
	types.NetworkStatusStopped,
	types.NetworkStatusStarting,
	types.NetworkStatusRunning,
	types.NetworkStatusStopping,
	types.NetworkStatusError,
}

// Collector records engine operations and network states
type Collector struct {
	registry      *prometheus.Registry
	operations    *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	networkStatus *prometheus.GaugeVec
	nodeUp        *prometheus.GaugeVec
}

// NewCollector registers the engine metrics on a fresh registry
func NewCollector() (*Collector, error) {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Number of engine operations by outcome",
		}, []string{"operation", "outcome", "error_type"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of engine operations",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 30, 60, 120},
		}, []string{"operation"}),
		networkStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "network_status",
			Help:      "1 for the current status of each network",
		}, []string{"network", "status"}),
		nodeUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "node_up",
			Help:      "1 if the node answered its last health check",
		}, []string{"network", "node"}),
	}

	for _, col := range []prometheus.Collector{
		c.operations,
		c.durations,
		c.networkStatus,
		c.nodeUp,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := c.registry.Register(col); err != nil {
			return nil, errors.NewInternalError("failed to register metrics", err, nil)
		}
	}
	return c, nil
}

// Registry exposes the registry for scraping
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveOperation(operation string, duration time.Duration, err error) {
	outcome, errType := "success", ""
	if err != nil {
		outcome, errType = "failure", string(errors.TypeOf(err))
	}
	c.operations.WithLabelValues(operation, outcome, errType).Inc()
	c.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) SetNetworkStatus(network string, status types.NetworkStatus) {
	for _, s := range statuses {
		v := 0.0
		if s == status {
			v = 1
		}
		c.networkStatus.WithLabelValues(network, string(s)).Set(v)
	}
}

func (c *Collector) ForgetNetwork(network string) {
	c.networkStatus.DeletePartialMatch(prometheus.Labels{"network": network})
	c.nodeUp.DeletePartialMatch(prometheus.Labels{"network": network})
}

func (c *Collector) SetNodeHealth(network, node string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	c.nodeUp.WithLabelValues(network, node).Set(v)
}

func (c *Collector) ForgetNode(network, node string) {
	c.nodeUp.DeleteLabelValues(network, node)
}
