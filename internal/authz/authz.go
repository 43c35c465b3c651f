// Package authz provides the pure authorization decisions for submission operations.
//
// Every function is side-effect free and returns a [Decision]; callers log or
// persist after the decision is made, never in here. Role switches are
// exhaustive: an unrecognized role is denied explicitly rather than falling
// through a boolean default.
package authz

import (
	"fmt"
	"sort"
	"time"

	"github.com/iamankun/studio-sub000/internal/models"
)

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns a positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with the rule that was violated.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Denial reasons, one per rule. The strings are part of the service contract:
// they surface unchanged through the lifecycle boundary and the HTTP API.
const (
	ReasonOwnerOnlyView = "owner-only view"
	ReasonNotOwner      = "Artists can only edit their own submissions"
	ReasonNotPending    = "submissions can only be edited while pending"
	ReasonManagerOnly   = "only label managers may perform this operation"
	ReasonNotRejected   = "only rejected submissions can be resubmitted"
	ReasonArtistOnly    = "only the submitting artist may resubmit"
	ReasonUnknownRole   = "unknown role"
)

// ReleaseDateWindow is how far past submission a requested release date may
// fall. The window is inclusive on both ends and is a hard business rule.
const ReleaseDateWindow = 48 * time.Hour

// CanView reports whether user may read the submission.
//
// Label managers see everything; artists see only their own.
func CanView(user *models.User, sub *models.Submission) Decision {
	switch user.Role() {
	case models.RoleLabelManager:
		return Allow()
	case models.RoleArtist:
		if sub.OwnerID() == user.ID() {
			return Allow()
		}
		return Deny(ReasonOwnerOnlyView)
	default:
		return Deny(ReasonUnknownRole)
	}
}

// CanEdit reports whether user may modify the submission's fields.
//
// Label managers always may; artists only while owning a still-pending
// submission, with distinct denials for the two failure modes.
func CanEdit(user *models.User, sub *models.Submission) Decision {
	switch user.Role() {
	case models.RoleLabelManager:
		return Allow()
	case models.RoleArtist:
		if sub.OwnerID() != user.ID() {
			return Deny(ReasonNotOwner)
		}
		if sub.Status() != models.StatusPending {
			return Deny(ReasonNotPending)
		}
		return Allow()
	default:
		return Deny(ReasonUnknownRole)
	}
}

// CanDelete reports whether user may delete submissions.
func CanDelete(user *models.User) Decision {
	switch user.Role() {
	case models.RoleLabelManager:
		return Allow()
	case models.RoleArtist:
		return Deny(ReasonManagerOnly)
	default:
		return Deny(ReasonUnknownRole)
	}
}

// CanApproveOrReject reports whether user may decide on pending submissions.
func CanApproveOrReject(user *models.User) Decision {
	switch user.Role() {
	case models.RoleLabelManager:
		return Allow()
	case models.RoleArtist:
		return Deny(ReasonManagerOnly)
	default:
		return Deny(ReasonUnknownRole)
	}
}

// CanResubmit reports whether user may move a rejected submission back to
// pending. Only the owning artist may, and only from Rejected.
func CanResubmit(user *models.User, sub *models.Submission) Decision {
	switch user.Role() {
	case models.RoleArtist:
		if sub.OwnerID() != user.ID() {
			return Deny(ReasonNotOwner)
		}
		if sub.Status() != models.StatusRejected {
			return Deny(ReasonNotRejected)
		}
		return Allow()
	case models.RoleLabelManager:
		return Deny(ReasonArtistOnly)
	default:
		return Deny(ReasonUnknownRole)
	}
}

// ValidateReleaseDate checks a requested release date against the submission
// window.
//
// Published submissions are exempt: their dates are historical and any value,
// past dates included, is accepted. For everything else the requested date must
// fall within [submittedAt, submittedAt+2 days], inclusive of both boundary
// days; denials name both boundaries.
func ValidateReleaseDate(user *models.User, sub *models.Submission, requested time.Time) Decision {
	if !user.Role().Valid() {
		return Deny(ReasonUnknownRole)
	}
	if sub.Status() == models.StatusPublished {
		return Allow()
	}

	start := dateOnly(sub.SubmittedAt())
	end := dateOnly(sub.SubmittedAt().Add(ReleaseDateWindow))
	day := dateOnly(requested)

	if day.Before(start) || day.After(end) {
		return Deny(fmt.Sprintf(
			"release date must fall between %s and %s",
			start.Format("2006-01-02"), end.Format("2006-01-02"),
		))
	}
	return Allow()
}

// dateOnly truncates a timestamp to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterVisible returns the subset of submissions user may view, preserving
// input order. Label managers get the identity; artists their own records.
func FilterVisible(user *models.User, subs []*models.Submission) []*models.Submission {
	switch user.Role() {
	case models.RoleLabelManager:
		return subs
	case models.RoleArtist:
		visible := make([]*models.Submission, 0, len(subs))
		for _, sub := range subs {
			if sub.OwnerID() == user.ID() {
				visible = append(visible, sub)
			}
		}
		return visible
	default:
		return nil
	}
}

// RecentLimit caps the recent-submission list in manager summaries.
const RecentLimit = 10

// Summary aggregates the submissions visible to a user.
//
// DistinctOwners and Recent are populated for label managers only.
type Summary struct {
	Total          int
	StatusCounts   map[models.Status]int
	DistinctOwners int
	Recent         []*models.Submission
}

// Summarize builds per-status counts over the visible subset. Label managers
// additionally receive a distinct-owner count and the ten most recent
// submissions across all owners, newest first.
func Summarize(user *models.User, subs []*models.Submission) Summary {
	visible := FilterVisible(user, subs)

	summary := Summary{
		Total:        len(visible),
		StatusCounts: make(map[models.Status]int),
	}
	for _, sub := range visible {
		summary.StatusCounts[sub.Status()]++
	}

	if user.Role() != models.RoleLabelManager {
		return summary
	}

	owners := make(map[string]struct{})
	for _, sub := range visible {
		owners[sub.OwnerID()] = struct{}{}
	}
	summary.DistinctOwners = len(owners)

	recent := make([]*models.Submission, len(visible))
	copy(recent, visible)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].SubmittedAt().After(recent[j].SubmittedAt())
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	summary.Recent = recent

	return summary
}
