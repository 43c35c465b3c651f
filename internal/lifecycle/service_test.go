package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/iamankun/studio-sub000/internal/isrc"
	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/normalize"
	"github.com/iamankun/studio-sub000/internal/services"
	"github.com/iamankun/studio-sub000/internal/shared"
	tu "github.com/iamankun/studio-sub000/internal/testing"
	"github.com/iamankun/studio-sub000/internal/testing/recorder"
)

type fixture struct {
	service  *Service
	subs     *tu.MemorySubmissionStore
	tracks   *tu.MemoryTrackStore
	notifier *recorder.RecordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	alloc, err := isrc.NewAllocator("VN", "A0K", tu.NewMemoryCounter())
	if err != nil {
		t.Fatalf("failed to create allocator: %v", err)
	}
	alloc.WithClock(func() time.Time {
		return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	})

	subs := tu.NewMemorySubmissionStore()
	tracks := tu.NewMemoryTrackStore()
	notifier := &recorder.RecordingNotifier{}

	service := NewService(Stores{Submissions: subs, Tracks: tracks}, alloc, ServiceOpts{
		Notifier: notifier,
	})
	return &fixture{service: service, subs: subs, tracks: tracks, notifier: notifier}
}

func testUser(id string, role models.Role) *models.User {
	user := models.NewUser(0, id+"@sub000.local", id, role)
	user.SetID(id)
	return user
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	artist := testUser("artist-1", models.RoleArtist)

	t.Run("normalizes a sparse draft", func(t *testing.T) {
		f := newFixture(t)

		sub, err := f.service.Create(ctx, artist, Draft{
			Title:      "Night Drive",
			ArtistName: "A, B, C, D",
			Tracks: []TrackDraft{
				{Title: "Opener"},
			},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if sub.ArtistName() != normalize.VariousArtist {
			t.Errorf("expected artist collapse, got %q", sub.ArtistName())
		}
		if sub.Genre() != normalize.DefaultGenre {
			t.Errorf("expected default genre, got %q", sub.Genre())
		}
		if sub.Status() != models.StatusPending {
			t.Errorf("expected pending, got %s", sub.Status())
		}
		if sub.Version() != 1 {
			t.Errorf("expected version 1, got %d", sub.Version())
		}
		if sub.SubmittedAt().IsZero() {
			t.Error("expected submitted timestamp to be defaulted")
		}
		if sub.CoverArtRef() != normalize.DefaultCoverArtRef {
			t.Errorf("expected default cover, got %q", sub.CoverArtRef())
		}
		if len(sub.AudioRefs()) != 1 || sub.AudioRefs()[0] != normalize.DefaultAudioRef {
			t.Errorf("expected default audio ref, got %v", sub.AudioRefs())
		}

		tracks, err := f.tracks.ListBySubmission(ctx, sub.ID())
		if err != nil {
			t.Fatalf("expected tracks, got %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		if tracks[0].ArtistCredit() != normalize.VariousArtist {
			t.Errorf("expected track credit to default to release artist, got %q", tracks[0].ArtistCredit())
		}
		if tracks[0].ISRC() != "" {
			t.Errorf("expected no code before approval, got %q", tracks[0].ISRC())
		}

		kinds := f.notifier.Kinds()
		if len(kinds) != 1 || kinds[0] != services.EventCreated {
			t.Errorf("expected a created event, got %v", kinds)
		}
	})

	t.Run("keeps a short artist credit unchanged", func(t *testing.T) {
		f := newFixture(t)

		sub, err := f.service.Create(ctx, artist, Draft{Title: "Duet", ArtistName: "A & B"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sub.ArtistName() != "A & B" {
			t.Errorf("expected credit preserved, got %q", sub.ArtistName())
		}
	})

	t.Run("requires a title", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.Create(ctx, artist, Draft{ArtistName: "Aria Vo"})
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if validation.Field != "title" {
			t.Errorf("expected title field, got %q", validation.Field)
		}
	})

	t.Run("rejects a release date outside the window", func(t *testing.T) {
		f := newFixture(t)

		submittedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		_, err := f.service.Create(ctx, artist, Draft{
			Title:                "Late Release",
			SubmittedAt:          submittedAt,
			RequestedReleaseDate: time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
		})
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if !strings.Contains(validation.Detail, "2024-01-01") || !strings.Contains(validation.Detail, "2024-01-03") {
			t.Errorf("expected the window in the detail, got %q", validation.Detail)
		}
	})

	t.Run("accepts the last day of the window", func(t *testing.T) {
		f := newFixture(t)

		submittedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		sub, err := f.service.Create(ctx, artist, Draft{
			Title:                "On Time",
			SubmittedAt:          submittedAt,
			RequestedReleaseDate: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if sub.RequestedReleaseDate().IsZero() {
			t.Error("expected release date to be stored")
		}
	})
}

func TestServiceVisibility(t *testing.T) {
	ctx := context.Background()
	artistA := testUser("artist-a", models.RoleArtist)
	artistB := testUser("artist-b", models.RoleArtist)
	manager := testUser("manager-1", models.RoleLabelManager)

	f := newFixture(t)
	subA, err := f.service.Create(ctx, artistA, Draft{Title: "A Record"})
	if err != nil {
		t.Fatalf("failed to create: %v", err)
	}
	if _, err := f.service.Create(ctx, artistB, Draft{Title: "B Record"}); err != nil {
		t.Fatalf("failed to create: %v", err)
	}

	t.Run("owner reads own submission", func(t *testing.T) {
		if _, err := f.service.Get(ctx, artistA, subA.ID()); err != nil {
			t.Errorf("expected owner read to succeed, got %v", err)
		}
	})

	t.Run("foreign artist is denied", func(t *testing.T) {
		_, err := f.service.Get(ctx, artistB, subA.ID())
		if !IsDenied(err) {
			t.Fatalf("expected denial, got %v", err)
		}
	})

	t.Run("manager reads everything", func(t *testing.T) {
		if _, err := f.service.Get(ctx, manager, subA.ID()); err != nil {
			t.Errorf("expected manager read to succeed, got %v", err)
		}
		subs, err := f.service.List(ctx, manager)
		if err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}
		if len(subs) != 2 {
			t.Errorf("expected 2 visible, got %d", len(subs))
		}
	})

	t.Run("artist lists own catalog only", func(t *testing.T) {
		subs, err := f.service.List(ctx, artistA)
		if err != nil {
			t.Fatalf("expected list to succeed, got %v", err)
		}
		if len(subs) != 1 || subs[0].OwnerID() != artistA.ID() {
			t.Errorf("expected only owned submissions, got %d", len(subs))
		}
	})

	t.Run("summary splits by role", func(t *testing.T) {
		managerSummary, err := f.service.Summary(ctx, manager)
		if err != nil {
			t.Fatalf("expected summary, got %v", err)
		}
		if managerSummary.Total != 2 || managerSummary.DistinctOwners != 2 {
			t.Errorf("unexpected manager summary %+v", managerSummary)
		}

		artistSummary, err := f.service.Summary(ctx, artistA)
		if err != nil {
			t.Fatalf("expected summary, got %v", err)
		}
		if artistSummary.Total != 1 || artistSummary.DistinctOwners != 0 {
			t.Errorf("unexpected artist summary %+v", artistSummary)
		}
	})

	t.Run("missing submission maps to NotFoundError", func(t *testing.T) {
		_, err := f.service.Get(ctx, manager, "missing")
		if !IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}

func TestServiceEdit(t *testing.T) {
	ctx := context.Background()
	artist := testUser("artist-1", models.RoleArtist)
	manager := testUser("manager-1", models.RoleLabelManager)

	t.Run("owner edits a pending submission", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, Draft{Title: "Draft Title"})

		title := "Final Title"
		genre := "Pop"
		updated, err := f.service.Edit(ctx, artist, sub.ID(), Patch{Title: &title, Genre: &genre})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.Title() != "Final Title" || updated.Genre() != "Pop" {
			t.Errorf("expected fields applied, got %q %q", updated.Title(), updated.Genre())
		}
		if updated.Version() != 2 {
			t.Errorf("expected version bump, got %d", updated.Version())
		}
	})

	t.Run("patched artist credit is renormalized", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, Draft{Title: "Solo", ArtistName: "Aria Vo"})

		credit := "A, B, C, D"
		updated, err := f.service.Edit(ctx, artist, sub.ID(), Patch{ArtistName: &credit})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.ArtistName() != normalize.VariousArtist {
			t.Errorf("expected collapse on edit, got %q", updated.ArtistName())
		}
	})

	t.Run("blanked asset refs fall back to defaults", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, Draft{
			Title:       "Cover Me",
			CoverArtRef: "assets/custom.jpg",
			AudioRefs:   []string{"audio/a.wav"},
		})

		empty := ""
		updated, err := f.service.Edit(ctx, artist, sub.ID(), Patch{
			CoverArtRef: &empty,
			AudioRefs:   []string{},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.CoverArtRef() != normalize.DefaultCoverArtRef {
			t.Errorf("expected default cover art, got %q", updated.CoverArtRef())
		}
		if len(updated.AudioRefs()) != 1 || updated.AudioRefs()[0] != normalize.DefaultAudioRef {
			t.Errorf("expected default audio ref, got %v", updated.AudioRefs())
		}

		stored, err := f.subs.Get(ctx, sub.ID())
		if err != nil {
			t.Fatalf("expected stored record, got %v", err)
		}
		if stored.CoverArtRef() != normalize.DefaultCoverArtRef {
			t.Errorf("expected default cover art persisted, got %q", stored.CoverArtRef())
		}
	})

	t.Run("empty title patch is rejected", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, Draft{Title: "Keep Me"})

		empty := ""
		_, err := f.service.Edit(ctx, artist, sub.ID(), Patch{Title: &empty})
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("artist cannot edit after approval", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, Draft{Title: "Approved Record"})
		if _, err := f.service.ChangeStatus(ctx, manager, sub.ID(), models.StatusApproved, ""); err != nil {
			t.Fatalf("failed to approve: %v", err)
		}

		title := "Too Late"
		_, err := f.service.Edit(ctx, artist, sub.ID(), Patch{Title: &title})
		if !IsDenied(err) {
			t.Fatalf("expected denial, got %v", err)
		}
	})

	t.Run("only managers assign a UPC", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, Draft{Title: "Barcode"})

		upc := "885686932711"
		if _, err := f.service.Edit(ctx, artist, sub.ID(), Patch{UPC: &upc}); !IsDenied(err) {
			t.Fatalf("expected denial for artist, got %v", err)
		}

		updated, err := f.service.Edit(ctx, manager, sub.ID(), Patch{UPC: &upc})
		if err != nil {
			t.Fatalf("expected manager to assign UPC, got %v", err)
		}
		if updated.UPC() != upc {
			t.Errorf("expected UPC stored, got %q", updated.UPC())
		}
	})

	t.Run("stale writers lose", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, Draft{Title: "Contested"})

		stale, err := f.subs.Get(ctx, sub.ID())
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}

		title := "Winner"
		if _, err := f.service.Edit(ctx, artist, sub.ID(), Patch{Title: &title}); err != nil {
			t.Fatalf("first edit failed: %v", err)
		}

		stale.SetTitle("Loser")
		if err := f.subs.Update(ctx, stale); !errors.Is(err, shared.ErrConflict) {
			t.Fatalf("expected version conflict, got %v", err)
		}

		current, err := f.service.Get(ctx, artist, sub.ID())
		if err != nil {
			t.Fatalf("failed to re-read: %v", err)
		}
		if current.Title() != "Winner" {
			t.Errorf("expected first writer to win, got %q", current.Title())
		}
	})

	t.Run("store failures map to StoreUnavailableError", func(t *testing.T) {
		f := newFixture(t)
		f.subs.FailNext = errors.New("disk gone")

		_, err := f.service.Get(ctx, manager, "any")
		var unavailable *StoreUnavailableError
		if !errors.As(err, &unavailable) {
			t.Fatalf("expected StoreUnavailableError, got %v", err)
		}
	})
}

func TestServiceChangeStatus(t *testing.T) {
	ctx := context.Background()
	artist := testUser("artist-1", models.RoleArtist)
	other := testUser("artist-2", models.RoleArtist)
	manager := testUser("manager-1", models.RoleLabelManager)

	draft := Draft{
		Title: "Full Cycle",
		Tracks: []TrackDraft{
			{Title: "One", DurationSeconds: 180},
			{Title: "Two", DurationSeconds: 200},
		},
	}

	t.Run("approval allocates track codes", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, draft)

		approved, err := f.service.ChangeStatus(ctx, manager, sub.ID(), models.StatusApproved, "looks good")
		if err != nil {
			t.Fatalf("expected approval, got %v", err)
		}
		if approved.Status() != models.StatusApproved {
			t.Errorf("expected approved, got %s", approved.Status())
		}

		tracks, _ := f.tracks.ListBySubmission(ctx, sub.ID())
		seen := map[string]bool{}
		for _, track := range tracks {
			code := track.ISRC()
			if !strings.HasPrefix(code, "VNA0K26") {
				t.Errorf("unexpected code %q", code)
			}
			if seen[code] {
				t.Errorf("duplicate code %q", code)
			}
			seen[code] = true
		}
	})

	t.Run("pending cannot jump to published", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, draft)

		_, err := f.service.ChangeStatus(ctx, manager, sub.ID(), models.StatusPublished, "")
		var invalid *InvalidTransitionError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidTransitionError, got %v", err)
		}
	})

	t.Run("artists cannot approve", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, draft)

		if _, err := f.service.ChangeStatus(ctx, artist, sub.ID(), models.StatusApproved, ""); !IsDenied(err) {
			t.Fatalf("expected denial, got %v", err)
		}
	})

	t.Run("rejection stores the reason and resubmission clears it", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, draft)

		rejected, err := f.service.ChangeStatus(ctx, manager, sub.ID(), models.StatusRejected, "cover art is too small")
		if err != nil {
			t.Fatalf("expected rejection, got %v", err)
		}
		if reason, ok := rejected.RejectionReason(); !ok || reason != "cover art is too small" {
			t.Errorf("expected stored reason, got %q (%v)", reason, ok)
		}

		if _, err := f.service.Resubmit(ctx, other, sub.ID()); !IsDenied(err) {
			t.Fatalf("expected foreign artist to be denied, got %v", err)
		}
		if _, err := f.service.Resubmit(ctx, manager, sub.ID()); !IsDenied(err) {
			t.Fatalf("expected manager to be denied, got %v", err)
		}

		resubmitted, err := f.service.Resubmit(ctx, artist, sub.ID())
		if err != nil {
			t.Fatalf("expected owner resubmit, got %v", err)
		}
		if resubmitted.Status() != models.StatusPending {
			t.Errorf("expected pending, got %s", resubmitted.Status())
		}
		if reason, ok := resubmitted.RejectionReason(); ok {
			t.Errorf("expected reason cleared, got %q", reason)
		}
	})

	t.Run("full lifecycle with history and events", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, draft)

		steps := []models.Status{models.StatusApproved, models.StatusProcessing, models.StatusPublished}
		for _, target := range steps {
			if _, err := f.service.ChangeStatus(ctx, manager, sub.ID(), target, ""); err != nil {
				t.Fatalf("transition to %s failed: %v", target, err)
			}
		}

		history, err := f.service.History(ctx, artist, sub.ID())
		if err != nil {
			t.Fatalf("expected history, got %v", err)
		}
		if len(history) != 3 {
			t.Fatalf("expected 3 changes, got %d", len(history))
		}
		if history[0].From() != models.StatusPending || history[0].To() != models.StatusApproved {
			t.Errorf("expected oldest change first, got %s -> %s", history[0].From(), history[0].To())
		}
		if history[2].To() != models.StatusPublished {
			t.Errorf("expected published last, got %s", history[2].To())
		}
		for _, change := range history {
			if change.ActorID() != manager.ID() {
				t.Errorf("expected actor recorded, got %q", change.ActorID())
			}
		}

		kinds := f.notifier.Kinds()
		want := []string{
			services.EventCreated,
			services.EventStatusChanged,
			services.EventStatusChanged,
			services.EventStatusChanged,
		}
		if len(kinds) != len(want) {
			t.Fatalf("expected %v, got %v", want, kinds)
		}
		for i := range want {
			if kinds[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, kinds)
			}
		}
	})

	t.Run("published date changes bypass the window", func(t *testing.T) {
		f := newFixture(t)
		sub, _ := f.service.Create(ctx, artist, draft)
		for _, target := range []models.Status{models.StatusApproved, models.StatusProcessing, models.StatusPublished} {
			if _, err := f.service.ChangeStatus(ctx, manager, sub.ID(), target, ""); err != nil {
				t.Fatalf("transition to %s failed: %v", target, err)
			}
		}

		past := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
		updated, err := f.service.SetReleaseDate(ctx, manager, sub.ID(), past)
		if err != nil {
			t.Fatalf("expected published date change, got %v", err)
		}
		if !updated.RequestedReleaseDate().Equal(past) {
			t.Errorf("expected past date stored, got %v", updated.RequestedReleaseDate())
		}
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	artist := testUser("artist-1", models.RoleArtist)
	manager := testUser("manager-1", models.RoleLabelManager)

	f := newFixture(t)
	sub, _ := f.service.Create(ctx, artist, Draft{Title: "Short Lived"})

	t.Run("artists may not delete", func(t *testing.T) {
		if err := f.service.Delete(ctx, artist, sub.ID()); !IsDenied(err) {
			t.Fatalf("expected denial, got %v", err)
		}
	})

	t.Run("managers delete and the record disappears", func(t *testing.T) {
		if err := f.service.Delete(ctx, manager, sub.ID()); err != nil {
			t.Fatalf("expected delete, got %v", err)
		}
		if _, err := f.service.Get(ctx, manager, sub.ID()); !IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}

		kinds := f.notifier.Kinds()
		if kinds[len(kinds)-1] != services.EventDeleted {
			t.Errorf("expected a deleted event, got %v", kinds)
		}
	})
}

func TestServiceAllocateMissingCodes(t *testing.T) {
	ctx := context.Background()
	artist := testUser("artist-1", models.RoleArtist)
	manager := testUser("manager-1", models.RoleLabelManager)

	f := newFixture(t)
	sub, _ := f.service.Create(ctx, artist, Draft{
		Title: "Backfill",
		Tracks: []TrackDraft{
			{Title: "One"}, {Title: "Two"}, {Title: "Three"},
		},
	})

	t.Run("artists may not backfill", func(t *testing.T) {
		if _, err := f.service.AllocateMissingCodes(ctx, artist, sub.ID()); !IsDenied(err) {
			t.Fatalf("expected denial, got %v", err)
		}
	})

	t.Run("backfill issues codes once", func(t *testing.T) {
		issued, err := f.service.AllocateMissingCodes(ctx, manager, sub.ID())
		if err != nil {
			t.Fatalf("expected backfill, got %v", err)
		}
		if issued != 3 {
			t.Errorf("expected 3 codes, got %d", issued)
		}

		again, err := f.service.AllocateMissingCodes(ctx, manager, sub.ID())
		if err != nil {
			t.Fatalf("expected second call to succeed, got %v", err)
		}
		if again != 0 {
			t.Errorf("expected no further codes, got %d", again)
		}
	})

	t.Run("unknown submission maps to NotFoundError", func(t *testing.T) {
		if _, err := f.service.AllocateMissingCodes(ctx, manager, "missing"); !IsNotFound(err) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})
}
