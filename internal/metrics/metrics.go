// Package metrics defines and registers the custom Prometheus metrics of the
// task manager API. It is the single source of truth for metric names, labels
// and help strings. HTTP request metrics come from echoprometheus; everything
// here is domain-level.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmanager"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts login and signup attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthFailuresTotal counts requests rejected by the auth middleware.
// Label:
//   - reason: "invalid_token" or "revoked"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of bearer tokens rejected, by reason.",
	},
	[]string{"reason"},
)

// SessionsRevokedTotal counts logout operations.
// Label:
//   - scope: "single" (logout) or "all" (logoutAll)
var SessionsRevokedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of session revocations, by scope.",
	},
	[]string{"scope"},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsCreatedTotal counts successful signups.
var AccountsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_created_total",
		Help:      "Total number of accounts created.",
	},
)

// AccountDeletionsTotal counts cascade deletions.
// Label:
//   - result: "success", "tasks_failed" or "user_failed"
var AccountDeletionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_deletions_total",
		Help:      "Total number of account deletions, by outcome.",
	},
	[]string{"result"},
)

// CascadeTasksDeletedTotal counts tasks removed as part of account deletion.
var CascadeTasksDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_tasks_deleted_total",
		Help:      "Total number of tasks removed by account deletion.",
	},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts outbound notifications.
// Label:
//   - result: "sent", "failed" or "dropped" (queue full)
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of outbound notifications, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks pending notifications per worker channel.
// Label:
//   - worker_id: numeric worker index
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each worker channel.",
	},
	[]string{"worker_id"},
)
