package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmunity_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "farmunity_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// Conversation index
	ConversationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farmunity_conversations_created_total",
			Help: "Conversations created by find-or-create",
		},
	)

	ConversationCreateConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farmunity_conversation_create_conflicts_total",
			Help: "Concurrent creations resolved by re-fetching the winning conversation",
		},
	)

	// Message log
	MessagesAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmunity_messages_appended_total",
			Help: "Messages appended to conversation logs",
		},
		[]string{"kind"},
	)

	LastMessageRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmunity_last_message_repairs_total",
			Help: "Last-message cache repair runs",
		},
		[]string{"outcome"}, // "repaired", "clean" or "superseded"
	)

	InterestsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farmunity_interests_recorded_total",
			Help: "Listing interests recorded",
		},
	)

	NotificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmunity_notifications_emitted_total",
			Help: "Notifications handed to a sink",
		},
		[]string{"sink", "result"},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmunity_rate_limit_hits_total",
			Help: "Requests rejected by the per-user rate limiter",
		},
		[]string{"action"},
	)

	// Infrastructure
	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farmunity_profile_cache_lookups_total",
			Help: "Profile cache lookups",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)
)
