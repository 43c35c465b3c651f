// package services defines outbound collaborator ports for the submission lifecycle
package services

import (
	"context"
	"time"

	"github.com/iamankun/studio-sub000/internal/models"
)

// Event describes a lifecycle decision that outside systems may react to.
type Event struct {
	Kind         string        `json:"kind"`
	SubmissionID string        `json:"submission_id"`
	OwnerID      string        `json:"owner_id"`
	Title        string        `json:"title"`
	From         models.Status `json:"from,omitempty"`
	To           models.Status `json:"to,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	At           time.Time     `json:"at"`
}

// Event kinds emitted by the lifecycle service.
const (
	EventStatusChanged = "status_changed"
	EventCreated       = "submission_created"
	EventDeleted       = "submission_deleted"
)

// Notifier is the outbound side channel the orchestrator calls after a
// decision has been made and persisted. Implementations must not influence
// the operation result: delivery failures are reported back for logging only.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NoopNotifier discards every event. Used when no webhook is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(ctx context.Context, event Event) error { return nil }
