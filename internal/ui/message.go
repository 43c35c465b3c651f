package ui

import (
	"github.com/iamankun/studio-sub000/internal/models"
)

// queueFetchedMsg carries the review queue (or the fetch error).
type queueFetchedMsg struct {
	submissions []*models.Submission
	err         error
}

// tracksFetchedMsg carries the track listing of a selected submission.
type tracksFetchedMsg struct {
	submission *models.Submission
	tracks     []*models.Track
	err        error
}

// decisionAppliedMsg carries the outcome of an approve or reject decision.
type decisionAppliedMsg struct {
	submission *models.Submission
	err        error
}
