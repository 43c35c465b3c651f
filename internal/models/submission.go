package models

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a submission.
type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusProcessing Status = "processing"
	StatusPublished  Status = "published"
	StatusCancelled  Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusApproved,
	StatusRejected,
	StatusProcessing,
	StatusPublished,
	StatusCancelled,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid reports whether the status is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusPublished || s == StatusCancelled
}

// ParseStatus converts a stored or user-supplied status string into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status: %q", raw)
	}
	return s, nil
}

// Submission is a release request moving through the review lifecycle.
//
// The owner never changes after creation, and status only changes through the
// lifecycle state machine. The version field backs optimistic concurrency
// control: every successful update increments it, and stale writers lose.
type Submission struct {
	id                   string
	sequence             int
	ownerID              string
	title                string
	artistName           string
	genre                string
	status               Status
	submittedAt          time.Time
	requestedReleaseDate time.Time
	rejectionReason      string
	hasRejectionReason   bool
	upc                  string
	coverArtRef          string
	audioRefs            []string
	version              int
	createdAt            time.Time
	updatedAt            time.Time
	deletedAt            *time.Time
}

// NewSubmission creates a Submission owned by ownerID with version 1.
func NewSubmission(sequence int, ownerID, title, artistName string) *Submission {
	now := time.Now()
	return &Submission{
		sequence:   sequence,
		ownerID:    ownerID,
		title:      title,
		artistName: artistName,
		status:     StatusPending,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (s *Submission) ID() string                      { return s.id }
func (s *Submission) SetID(id string)                 { s.id = id }
func (s *Submission) Sequence() int                   { return s.sequence }
func (s *Submission) OwnerID() string                 { return s.ownerID }
func (s *Submission) Title() string                   { return s.title }
func (s *Submission) SetTitle(t string)               { s.title = t }
func (s *Submission) ArtistName() string              { return s.artistName }
func (s *Submission) SetArtistName(n string)          { s.artistName = n }
func (s *Submission) Genre() string                   { return s.genre }
func (s *Submission) SetGenre(g string)               { s.genre = g }
func (s *Submission) Status() Status                  { return s.status }
func (s *Submission) SetStatus(st Status)             { s.status = st }
func (s *Submission) SubmittedAt() time.Time          { return s.submittedAt }
func (s *Submission) SetSubmittedAt(t time.Time)      { s.submittedAt = t }
func (s *Submission) RequestedReleaseDate() time.Time { return s.requestedReleaseDate }
func (s *Submission) SetRequestedReleaseDate(t time.Time) {
	s.requestedReleaseDate = t
}
func (s *Submission) UPC() string               { return s.upc }
func (s *Submission) SetUPC(u string)           { s.upc = u }
func (s *Submission) CoverArtRef() string       { return s.coverArtRef }
func (s *Submission) SetCoverArtRef(r string)   { s.coverArtRef = r }
func (s *Submission) AudioRefs() []string       { return s.audioRefs }
func (s *Submission) SetAudioRefs(r []string)   { s.audioRefs = r }
func (s *Submission) Version() int              { return s.version }
func (s *Submission) SetVersion(v int)          { s.version = v }
func (s *Submission) CreatedAt() time.Time      { return s.createdAt }
func (s *Submission) UpdatedAt() time.Time      { return s.updatedAt }
func (s *Submission) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Submission) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Submission) DeletedAt() *time.Time     { return s.deletedAt }
func (s *Submission) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// RejectionReason returns the stored reason and whether one was supplied.
// A rejection without a reason stores nothing; reasons are never invented.
func (s *Submission) RejectionReason() (string, bool) {
	return s.rejectionReason, s.hasRejectionReason
}

// SetRejectionReason records a supplied rejection reason.
func (s *Submission) SetRejectionReason(reason string) {
	s.rejectionReason = reason
	s.hasRejectionReason = true
}

// ClearRejectionReason removes any stored rejection reason.
func (s *Submission) ClearRejectionReason() {
	s.rejectionReason = ""
	s.hasRejectionReason = false
}

// Validate checks required fields and status membership.
func (s *Submission) Validate() error {
	if s.ownerID == "" {
		return fmt.Errorf("submission owner is required")
	}
	if s.title == "" {
		return fmt.Errorf("submission title is required")
	}
	if !s.status.Valid() {
		return fmt.Errorf("invalid status: %q", s.status)
	}
	return nil
}

// StatusChange is one audit row recording an applied status transition.
type StatusChange struct {
	id           string
	submissionID string
	from         Status
	to           Status
	actorID      string
	reason       string
	changedAt    time.Time
}

// NewStatusChange records a transition applied by actorID at changedAt.
func NewStatusChange(submissionID string, from, to Status, actorID, reason string, changedAt time.Time) *StatusChange {
	return &StatusChange{
		submissionID: submissionID,
		from:         from,
		to:           to,
		actorID:      actorID,
		reason:       reason,
		changedAt:    changedAt,
	}
}

func (c *StatusChange) ID() string           { return c.id }
func (c *StatusChange) SetID(id string)      { c.id = id }
func (c *StatusChange) SubmissionID() string { return c.submissionID }
func (c *StatusChange) From() Status         { return c.from }
func (c *StatusChange) To() Status           { return c.to }
func (c *StatusChange) ActorID() string      { return c.actorID }
func (c *StatusChange) Reason() string       { return c.reason }
func (c *StatusChange) ChangedAt() time.Time { return c.changedAt }
