package lifecycle

import (
	"github.com/iamankun/studio-sub000/internal/models"
)

// statusTransition is one directed edge in the submission lifecycle.
type statusTransition struct {
	from models.Status
	to   models.Status
}

// legalTransitions maps each edge to the role that may trigger it. The
// resubmit edge (Rejected -> Pending) additionally requires ownership, which
// [Service.ChangeStatus] checks against the acting user.
var legalTransitions = map[statusTransition]models.Role{
	{from: models.StatusPending, to: models.StatusApproved}:     models.RoleLabelManager,
	{from: models.StatusPending, to: models.StatusRejected}:     models.RoleLabelManager,
	{from: models.StatusRejected, to: models.StatusPending}:     models.RoleArtist,
	{from: models.StatusApproved, to: models.StatusProcessing}:  models.RoleLabelManager,
	{from: models.StatusProcessing, to: models.StatusPublished}: models.RoleLabelManager,
}

// CanTransition checks the edge table for (from, to) under the given actor
// role.
//
// A missing edge yields [InvalidTransitionError]; an existing edge triggered
// by the wrong role yields [AuthorizationDeniedError]. Terminal states have
// no outgoing edges, and any non-terminal state may be cancelled by a label
// manager.
func CanTransition(from, to models.Status, role models.Role) error {
	if !from.Valid() || !to.Valid() || from == to {
		return &InvalidTransitionError{From: from, To: to}
	}
	if from.Terminal() {
		return &InvalidTransitionError{From: from, To: to}
	}

	if to == models.StatusCancelled {
		if role != models.RoleLabelManager {
			return &AuthorizationDeniedError{Reason: "only label managers may cancel submissions"}
		}
		return nil
	}

	required, ok := legalTransitions[statusTransition{from: from, to: to}]
	if !ok {
		return &InvalidTransitionError{From: from, To: to}
	}
	if role != required {
		return &AuthorizationDeniedError{
			Reason: "transition " + string(from) + " -> " + string(to) + " requires role " + string(required),
		}
	}
	return nil
}

// NextStatuses returns the statuses reachable from the given state for a
// role, in lifecycle order. Used by the CLI and TUI to offer decisions.
func NextStatuses(from models.Status, role models.Role) []models.Status {
	var out []models.Status
	for _, to := range models.AllStatuses() {
		if CanTransition(from, to, role) == nil {
			out = append(out, to)
		}
	}
	return out
}
