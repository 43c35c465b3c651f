package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
)

var (
	_ list.Item = submissionItem{}
	_ list.Item = trackItem{}
)

// submissionItem wraps [models.Submission] to implement [list.Item].
type submissionItem struct {
	submission *models.Submission
}

func (i submissionItem) FilterValue() string { return i.submission.Title() }
func (i submissionItem) Title() string       { return i.submission.Title() }
func (i submissionItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.submission.ArtistName(), i.submission.Status())
	if i.submission.Genre() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.submission.Genre())
	}
	return desc
}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track *models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title() }
func (i trackItem) Title() string       { return i.track.Title() }
func (i trackItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.track.ArtistCredit(), shared.FormatDuration(i.track.DurationSeconds()))
	if i.track.ISRC() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.ISRC())
	}
	return desc
}
