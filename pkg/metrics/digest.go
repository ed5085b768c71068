package metrics

import "github.com/prometheus/client_golang/prometheus"

// DigestMetrics tracks digest delivery outcomes per frequency.
type DigestMetrics struct {
	emailsSent   *prometheus.CounterVec
	emailsFailed *prometheus.CounterVec
	alertsMarked *prometheus.CounterVec
	tenantErrors *prometheus.CounterVec
}

// NewDigestMetrics registers digest counters on the provided registerer.
func NewDigestMetrics(reg prometheus.Registerer) *DigestMetrics {
	if reg == nil {
		return &DigestMetrics{}
	}
	emailsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_emails_sent_total",
		Help: "Digest emails accepted by the mail provider.",
	}, []string{"frequency"})
	emailsFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_emails_failed_total",
		Help: "Digest emails rejected or failed to send.",
	}, []string{"frequency"})
	alertsMarked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_alerts_marked_sent_total",
		Help: "Alerts marked sent after successful digest delivery.",
	}, []string{"frequency"})
	tenantErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_tenant_errors_total",
		Help: "Tenant-scoped errors recorded during digest runs.",
	}, []string{"frequency"})
	reg.MustRegister(emailsSent, emailsFailed, alertsMarked, tenantErrors)
	return &DigestMetrics{
		emailsSent:   emailsSent,
		emailsFailed: emailsFailed,
		alertsMarked: alertsMarked,
		tenantErrors: tenantErrors,
	}
}

// ObserveRun folds one digest run's counters into the registry.
func (d *DigestMetrics) ObserveRun(frequency string, emailsSent, emailsFailed, alertsMarked, tenantErrors int) {
	if d == nil || d.emailsSent == nil {
		return
	}
	label := normalizeLabel(frequency)
	d.emailsSent.WithLabelValues(label).Add(float64(emailsSent))
	d.emailsFailed.WithLabelValues(label).Add(float64(emailsFailed))
	d.alertsMarked.WithLabelValues(label).Add(float64(alertsMarked))
	d.tenantErrors.WithLabelValues(label).Add(float64(tenantErrors))
}
