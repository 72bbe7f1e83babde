package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimMetrics are the counters exposed by the simulation core.
type SimMetrics struct {
	TicksRun        prometheus.Counter
	PublishesSent   prometheus.Counter
	PublishesFailed prometheus.Counter
}

func NewSimMetrics() *SimMetrics {
	return &SimMetrics{
		TicksRun: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_sim_ticks_total",
			Help: "Simulation ticks executed.",
		}),
		PublishesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_sim_publishes_total",
			Help: "VehiclePosition records published to the bus.",
		}),
		PublishesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_sim_publish_failures_total",
			Help: "Bus publish attempts that failed or timed out.",
		}),
	}
}

// IngestMetrics are the counters exposed by the ingest core.
type IngestMetrics struct {
	BatchesFlushed  prometheus.Counter
	RowsInserted    prometheus.Counter
	HotPathFailures prometheus.Counter
	PoisonMessages  prometheus.Counter
}

func NewIngestMetrics() *IngestMetrics {
	return &IngestMetrics{
		BatchesFlushed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_ingest_batches_flushed_total",
			Help: "Cold-path batches committed to the time-series store.",
		}),
		RowsInserted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_ingest_rows_inserted_total",
			Help: "Rows appended to vehicle_positions.",
		}),
		HotPathFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_ingest_hotpath_failures_total",
			Help: "Hot-path (geo/meta/pubsub) step failures.",
		}),
		PoisonMessages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_ingest_poison_messages_total",
			Help: "Records dropped for failing to decode.",
		}),
	}
}

// FanoutMetrics are the counters exposed by the fan-out core.
type FanoutMetrics struct {
	ActiveSockets  prometheus.Gauge
	BroadcastDrops prometheus.Counter
	MessagesSent   prometheus.Counter
}

func NewFanoutMetrics() *FanoutMetrics {
	return &FanoutMetrics{
		ActiveSockets: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "citysim_fanout_active_sockets",
			Help: "Currently connected /ws viewer sockets.",
		}),
		BroadcastDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_fanout_broadcast_drops_total",
			Help: "Viewer sockets disconnected for lagging the broadcast buffer.",
		}),
		MessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "citysim_fanout_messages_sent_total",
			Help: "Frames written to viewer sockets.",
		}),
	}
}

// Handler returns the /metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
