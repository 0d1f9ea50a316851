package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the record module.
type Metrics struct {
	ChildrenRegistered   prometheus.Counter
	VaccinationsRecorded prometheus.Counter
	QRCodesGenerated     prometheus.Counter
	RemindersScheduled   prometheus.Counter
}

// New creates a new Metrics instance with all record module metrics registered.
func New() *Metrics {
	return &Metrics{
		ChildrenRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_children_registered_total",
			Help: "Total number of child records created",
		}),
		VaccinationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_vaccinations_recorded_total",
			Help: "Total number of vaccination entries appended",
		}),
		QRCodesGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_qr_codes_generated_total",
			Help: "Total number of QR summaries derived (per-dose and verification)",
		}),
		RemindersScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vaxledger_reminders_scheduled_total",
			Help: "Total number of follow-up reminders appended",
		}),
	}
}

// IncrementChildrenRegistered records a created child record.
func (m *Metrics) IncrementChildrenRegistered() {
	m.ChildrenRegistered.Inc()
}

// IncrementVaccinationsRecorded records an appended vaccination entry.
func (m *Metrics) IncrementVaccinationsRecorded() {
	m.VaccinationsRecorded.Inc()
}

// IncrementQRCodesGenerated records a derived QR summary.
func (m *Metrics) IncrementQRCodesGenerated() {
	m.QRCodesGenerated.Inc()
}

// IncrementRemindersScheduled records a scheduled reminder.
func (m *Metrics) IncrementRemindersScheduled() {
	m.RemindersScheduled.Inc()
}
