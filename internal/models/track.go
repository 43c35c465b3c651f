package models

import (
	"fmt"
	"time"
)

// Track is one audio item belonging to a submission.
//
// The ISRC is empty until allocated. Once allocated it is globally unique and
// never reassigned, even if the track or its submission is later deleted.
type Track struct {
	id              string
	sequence        int
	submissionID    string
	title           string
	artistCredit    string
	isrc            string
	fileRef         string
	durationSeconds int
	createdAt       time.Time
	updatedAt       time.Time
	deletedAt       *time.Time
}

// NewTrack creates a Track belonging to submissionID.
func NewTrack(sequence int, submissionID, title, artistCredit, fileRef string, durationSeconds int) *Track {
	now := time.Now()
	return &Track{
		sequence:        sequence,
		submissionID:    submissionID,
		title:           title,
		artistCredit:    artistCredit,
		fileRef:         fileRef,
		durationSeconds: durationSeconds,
		createdAt:       now,
		updatedAt:       now,
	}
}

func (t *Track) ID() string                 { return t.id }
func (t *Track) SetID(id string)            { t.id = id }
func (t *Track) Sequence() int              { return t.sequence }
func (t *Track) SubmissionID() string       { return t.submissionID }
func (t *Track) Title() string              { return t.title }
func (t *Track) SetTitle(title string)      { t.title = title }
func (t *Track) ArtistCredit() string       { return t.artistCredit }
func (t *Track) SetArtistCredit(c string)   { t.artistCredit = c }
func (t *Track) ISRC() string               { return t.isrc }
func (t *Track) FileRef() string            { return t.fileRef }
func (t *Track) SetFileRef(r string)        { t.fileRef = r }
func (t *Track) DurationSeconds() int       { return t.durationSeconds }
func (t *Track) SetDurationSeconds(d int)   { t.durationSeconds = d }
func (t *Track) CreatedAt() time.Time       { return t.createdAt }
func (t *Track) UpdatedAt() time.Time       { return t.updatedAt }
func (t *Track) SetCreatedAt(ts time.Time)  { t.createdAt = ts }
func (t *Track) SetUpdatedAt(ts time.Time)  { t.updatedAt = ts }
func (t *Track) DeletedAt() *time.Time      { return t.deletedAt }
func (t *Track) SetDeletedAt(ts *time.Time) { t.deletedAt = ts }

// SetISRC assigns the allocated code. Assigning over an existing code is an
// error; codes are issued exactly once.
func (t *Track) SetISRC(code string) error {
	if t.isrc != "" && t.isrc != code {
		return fmt.Errorf("track %s already has ISRC %s", t.id, t.isrc)
	}
	t.isrc = code
	return nil
}

// Validate checks required fields.
func (t *Track) Validate() error {
	if t.submissionID == "" {
		return fmt.Errorf("track submission is required")
	}
	if t.title == "" {
		return fmt.Errorf("track title is required")
	}
	if t.durationSeconds < 0 {
		return fmt.Errorf("track duration cannot be negative")
	}
	return nil
}
