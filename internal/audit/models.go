package audit

import (
	"time"

	id "vaxledger/pkg/domain"
)

// Action names one kind of ledger state change.
type Action string

// One event per state change. The ledger writes these and never reads them
// back for its own decisions; dashboards and notification services subscribe
// downstream.
const (
	ActionHospitalRegistered   Action = "hospital_registered"
	ActionAuthorizationChanged Action = "hospital_authorization_changed"
	ActionChildRegistered      Action = "child_registered"
	ActionVaccinationRecorded  Action = "vaccination_recorded"
	ActionQRGenerated          Action = "qr_generated"
	ActionReminderScheduled    Action = "reminder_scheduled"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    Action      `json:"action"`
	Actor     id.Identity `json:"actor"`

	// Identifiers relevant to the action; zero values mean "not applicable".
	HospitalID id.Identity `json:"hospital_id,omitempty"`
	ChildID    id.ChildID  `json:"child_id,omitempty"`
	ParentID   id.Identity `json:"parent_id,omitempty"`

	// Action-specific values.
	ChildName  string    `json:"child_name,omitempty"`
	Vaccine    string    `json:"vaccine,omitempty"`
	Authorized bool      `json:"authorized,omitempty"`
	Position   int       `json:"position"`         // history index for qr_generated
	DueAt      time.Time `json:"due_at,omitzero"`  // reminder_scheduled
	QRData     string    `json:"qr_data,omitempty"`
}
