package audit

import (
	"time"
)

// Outcome is the result category of an audited operation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeDenied  Outcome = "denied"
	OutcomeError   Outcome = "error"
)

// Event is one audit record. Events are write-once: emitted synchronously at
// the point of decision, never mutated or queried back.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	Workspace string `json:"workspace"`
	Namespace string `json:"namespace,omitempty"`

	Actor string `json:"actor"`
	Role  string `json:"role,omitempty"`

	ResourceKind string `json:"resource_kind"`
	ResourceName string `json:"resource_name,omitempty"`
	Action       string `json:"action"`

	Outcome    Outcome `json:"outcome"`
	StatusCode int     `json:"status_code,omitempty"`
	Detail     string  `json:"detail,omitempty"`
	Error      string  `json:"error,omitempty"`
}
