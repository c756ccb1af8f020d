// Package metrics defines and registers all custom Prometheus metrics for the
// account service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authsec"

// ── Account metrics ───────────────────────────────────────────────────────────

// AccountsRegisteredTotal counts successful registrations.
// Label:
//   - role: the role granted at registration ("ROLE_USER" or "ROLE_ADMIN")
var AccountsRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_registered_total",
		Help:      "Total number of accounts registered, by granted role.",
	},
	[]string{"role"},
)

// AccountsPromotedTotal counts successful promotions to ROLE_ADMIN.
var AccountsPromotedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_promoted_total",
		Help:      "Total number of accounts promoted to administrator.",
	},
)

// AccountsDeletedTotal counts successful deletions.
var AccountsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_deleted_total",
		Help:      "Total number of accounts deleted by administrators.",
	},
)

// AccountErrorsTotal counts failed account operations.
// Labels:
//   - operation: "register", "promote", "delete", "list"
//   - kind: short error kind (e.g. "user_already_exists", "invalid_account_state")
var AccountErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_errors_total",
		Help:      "Total number of failed account operations, by operation and error kind.",
	},
	[]string{"operation", "kind"},
)

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - method: "form", "oauth2", "remember_me"
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// AuthorizationDenialsTotal counts requests stopped by the route policy.
// Labels:
//   - requirement: the requirement of the matched route (e.g. "admin_only")
//   - decision: "redirect_login", "redirect_home" or "forbid"
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of requests denied by the route-permission policy.",
	},
	[]string{"requirement", "decision"},
)

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestDuration measures request latency.
// Labels:
//   - method: HTTP method
//   - route: the registered route pattern (not the raw path)
//   - status: response status code
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests, by method, route and status.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"method", "route", "status"},
)
