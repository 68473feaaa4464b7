// Package metrics defines and registers all custom Prometheus metrics for the
// ClarityKit backend. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "claritykit"

// SignupsTotal counts registration attempts.
// Label:
//   - result: "created" or "conflict"
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of signup attempts, by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// VerificationsTotal counts account verification attempts across both the
// link and OTP paths.
// Labels:
//   - method: "link" or "otp"
//   - result: "verified", "expired", "invalid", "already_verified"
var VerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of account verification attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// PasswordResetsTotal counts forget-password requests that generated an OTP.
var PasswordResetsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset OTPs issued.",
	},
)

// EmailsTotal counts notification dispatch outcomes.
// Labels:
//   - template: "verify_account" or "password_reset"
//   - result: "sent" or "error"
var EmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Total number of notification emails, by template and result.",
	},
	[]string{"template", "result"},
)
