package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oamour_events_received_total",
		Help: "Total number of events received by the ingestion endpoint, before validation.",
	})

	EventsInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oamour_events_inserted_total",
		Help: "Total number of events written to the analytics store.",
	})

	EventsDroppedInvalid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oamour_events_dropped_invalid_total",
		Help: "Total number of events discarded for an unrecognized event type.",
	})

	EventsFlaggedBot = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oamour_events_flagged_bot_total",
		Help: "Total number of stored events whose meta carries is_bot=true.",
	})

	InsertFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oamour_insert_failures_total",
		Help: "Total number of failed bulk writes to the analytics store.",
	})

	AlertEmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oamour_alert_emails_sent_total",
		Help: "Total number of visitor-load alert emails handed to the mail API.",
	})

	DashboardReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oamour_dashboard_reads_total",
		Help: "Total number of dashboard data reads, labelled by outcome.",
	}, []string{"status"})

	ClientQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "oamour_client_queue_depth",
		Help: "Events waiting in the embedded tracker's flush queue.",
	})

	ClientFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oamour_client_flushes_total",
		Help: "Total number of non-empty batch deliveries attempted by the tracker.",
	})

	ClientFlushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oamour_client_flush_failures_total",
		Help: "Total number of batch deliveries that failed and were requeued.",
	})
)
