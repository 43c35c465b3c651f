package lifecycle

import (
	"errors"
	"testing"

	"github.com/iamankun/studio-sub000/internal/models"
)

func TestCanTransition(t *testing.T) {
	t.Run("legal edges under the right role", func(t *testing.T) {
		cases := []struct {
			from models.Status
			to   models.Status
			role models.Role
		}{
			{models.StatusPending, models.StatusApproved, models.RoleLabelManager},
			{models.StatusPending, models.StatusRejected, models.RoleLabelManager},
			{models.StatusRejected, models.StatusPending, models.RoleArtist},
			{models.StatusApproved, models.StatusProcessing, models.RoleLabelManager},
			{models.StatusProcessing, models.StatusPublished, models.RoleLabelManager},
		}
		for _, tc := range cases {
			if err := CanTransition(tc.from, tc.to, tc.role); err != nil {
				t.Errorf("expected %s -> %s to be legal for %s, got %v", tc.from, tc.to, tc.role, err)
			}
		}
	})

	t.Run("missing edge is an invalid transition", func(t *testing.T) {
		err := CanTransition(models.StatusPending, models.StatusPublished, models.RoleLabelManager)
		var invalid *InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
		if invalid.From != models.StatusPending || invalid.To != models.StatusPublished {
			t.Errorf("expected edge to be recorded, got %s -> %s", invalid.From, invalid.To)
		}
	})

	t.Run("existing edge under the wrong role is a denial", func(t *testing.T) {
		err := CanTransition(models.StatusPending, models.StatusApproved, models.RoleArtist)
		var denied *AuthorizationDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("expected AuthorizationDeniedError, got %v", err)
		}
	})

	t.Run("terminal states have no exits", func(t *testing.T) {
		for _, from := range []models.Status{models.StatusPublished, models.StatusCancelled} {
			for _, to := range models.AllStatuses() {
				if to == from {
					continue
				}
				err := CanTransition(from, to, models.RoleLabelManager)
				var invalid *InvalidTransitionError
				if !errors.As(err, &invalid) {
					t.Errorf("expected %s -> %s to be invalid, got %v", from, to, err)
				}
			}
		}
	})

	t.Run("managers may cancel any non-terminal state", func(t *testing.T) {
		for _, from := range []models.Status{
			models.StatusPending, models.StatusApproved,
			models.StatusRejected, models.StatusProcessing,
		} {
			if err := CanTransition(from, models.StatusCancelled, models.RoleLabelManager); err != nil {
				t.Errorf("expected manager to cancel from %s, got %v", from, err)
			}
		}
	})

	t.Run("artists may not cancel", func(t *testing.T) {
		err := CanTransition(models.StatusPending, models.StatusCancelled, models.RoleArtist)
		var denied *AuthorizationDeniedError
		if !errors.As(err, &denied) {
			t.Fatalf("expected AuthorizationDeniedError, got %v", err)
		}
	})

	t.Run("self-transitions are invalid", func(t *testing.T) {
		err := CanTransition(models.StatusPending, models.StatusPending, models.RoleLabelManager)
		var invalid *InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("unknown statuses are invalid", func(t *testing.T) {
		err := CanTransition(models.Status("archived"), models.StatusPending, models.RoleLabelManager)
		var invalid *InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})
}

func TestNextStatuses(t *testing.T) {
	t.Run("manager options from pending", func(t *testing.T) {
		got := NextStatuses(models.StatusPending, models.RoleLabelManager)
		want := []models.Status{models.StatusApproved, models.StatusRejected, models.StatusCancelled}
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	})

	t.Run("artist options from rejected", func(t *testing.T) {
		got := NextStatuses(models.StatusRejected, models.RoleArtist)
		if len(got) != 1 || got[0] != models.StatusPending {
			t.Fatalf("expected [pending], got %v", got)
		}
	})

	t.Run("artist has no options from pending", func(t *testing.T) {
		if got := NextStatuses(models.StatusPending, models.RoleArtist); len(got) != 0 {
			t.Fatalf("expected no options, got %v", got)
		}
	})
}
