package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Quest Metrics
var (
	QuestsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQuestsAccepted,
			Help: HelpTextQuestsAccepted,
		},
		[]string{LabelCategory},
	)

	QuestsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQuestsCompleted,
			Help: HelpTextQuestsCompleted,
		},
		[]string{LabelCategory},
	)

	QuestsClaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQuestsClaimed,
			Help: HelpTextQuestsClaimed,
		},
		[]string{LabelCategory},
	)

	QuestsExpired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQuestsExpired,
			Help: HelpTextQuestsExpired,
		},
		[]string{LabelCategory},
	)

	QuestResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameQuestResets,
			Help: HelpTextQuestResets,
		},
		[]string{LabelCategory},
	)

	ActionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameActionsProcessed,
			Help: HelpTextActionsProcessed,
		},
		[]string{LabelType},
	)

	ProfilesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameProfilesLoaded,
			Help: HelpTextProfilesLoaded,
		},
	)

	ProfilesFlushed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameProfilesFlushed,
			Help: HelpTextProfilesFlushed,
		},
	)
)

// Global Event Metrics
var (
	GlobalEventsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameGlobalEventsRun,
			Help: HelpTextGlobalEventsRun,
		},
		[]string{LabelEvent},
	)

	GlobalEventActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameGlobalEventLive,
			Help: HelpTextGlobalEventLive,
		},
	)
)
