package domain

import "time"

// DeviceState constants
const (
	DeviceOK       = "ok"
	DeviceError    = "error"
	DeviceDisabled = "disabled"
	DeviceUnknown  = "unknown"
)

// Alert severity constants
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeveritySuccess = "success"
)

// ErrorEvent is an error reported by the simulation platform for a device.
// Timestamp is kept in the platform's wire form (RFC 3339); use OccurredAt
// to get the parsed time.
type ErrorEvent struct {
	DeviceID  string `json:"device_id"`
	Message   string `json:"error_message"`
	Timestamp string `json:"timestamp"`
}

// OccurredAt parses the source timestamp. A parse error means the event
// cannot be placed in time and callers must treat it as not recent.
func (e ErrorEvent) OccurredAt() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}, ErrMalformedTimestamp
	}
	return ts, nil
}

// DeviceStatus is the per-device state inside a project snapshot
type DeviceStatus struct {
	DeviceID  string      `json:"device_id"`
	Status    string      `json:"status"` // ok, error, disabled, unknown
	LastError *ErrorEvent `json:"last_error,omitempty"`
}

// ProjectSimulationStatus is the authoritative snapshot of one project's
// simulation as delivered by the status source. Snapshots replace previous
// state wholesale; they are never merged (see StatusStore.Patch for the
// explicit merge operation).
type ProjectSimulationStatus struct {
	ProjectID     string         `json:"project_id"`
	IsRunning     bool           `json:"is_running"`
	ActiveDevices int            `json:"active_devices"`
	MessagesSent  int64          `json:"messages_sent"`
	Devices       []DeviceStatus `json:"devices,omitempty"`
	Errors        []ErrorEvent   `json:"errors,omitempty"`
}

// StatusPatch carries the optional fields for a partial status update
type StatusPatch struct {
	IsRunning     *bool
	ActiveDevices *int
	MessagesSent  *int64
	Devices       []DeviceStatus
	Errors        []ErrorEvent
}

// LogEntry is a notification/audit record kept in the bounded simulation log
type LogEntry struct {
	ProjectID string    `json:"project_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Severity  string    `json:"severity"`
}

// AlertRecord is the persisted form of an emitted alert
type AlertRecord struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"project_id"`
	DeviceID   string    `json:"device_id"`
	Severity   string    `json:"severity"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
