package lifecycle

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/iamankun/studio-sub000/internal/authz"
	"github.com/iamankun/studio-sub000/internal/isrc"
	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/normalize"
	"github.com/iamankun/studio-sub000/internal/services"
	"github.com/iamankun/studio-sub000/internal/shared"
)

// SubmissionStore is the persistence port for submissions. Implementations
// signal a missing record with [shared.ErrNotFound], a version mismatch on
// Update with [shared.ErrConflict], and wrap everything else.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	Get(ctx context.Context, id string) (*models.Submission, error)
	Update(ctx context.Context, sub *models.Submission) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Submission, error)
	ListAll(ctx context.Context) ([]*models.Submission, error)
	AppendStatusChange(ctx context.Context, change *models.StatusChange) error
	ListStatusChanges(ctx context.Context, submissionID string) ([]*models.StatusChange, error)
}

// TrackStore is the persistence port for tracks.
type TrackStore interface {
	Create(ctx context.Context, track *models.Track) error
	Get(ctx context.Context, id string) (*models.Track, error)
	Update(ctx context.Context, track *models.Track) error
	Delete(ctx context.Context, id string) error
	ListBySubmission(ctx context.Context, submissionID string) ([]*models.Track, error)
}

// Stores groups the persistence ports the service depends on.
type Stores struct {
	Submissions SubmissionStore
	Tracks      TrackStore
}

// TrackDraft is one track of a new submission.
type TrackDraft struct {
	Title           string
	ArtistCredit    string
	FileRef         string
	DurationSeconds int
}

// Draft is the raw input for creating a submission. Asset references carry
// both the explicit reference and any already-uploaded alternate; the
// normalizer resolves each chain.
type Draft struct {
	Title                string
	ArtistName           string
	Genre                string
	SubmittedAt          time.Time
	RequestedReleaseDate time.Time
	CoverArtRef          string
	CoverArtUpload       string
	AudioRefs            []string
	AudioUpload          string
	Tracks               []TrackDraft
}

// Patch is a partial submission edit. Nil fields are left unchanged.
type Patch struct {
	Title                *string
	ArtistName           *string
	Genre                *string
	RequestedReleaseDate *time.Time
	CoverArtRef          *string
	AudioRefs            []string
	UPC                  *string
}

// Service orchestrates every submission operation: authorization check,
// state-machine legality, normalization, then delegation to the store ports.
// All public methods return a value or one of the tagged error kinds in this
// package, never a raw store error.
type Service struct {
	stores   Stores
	alloc    *isrc.Allocator
	notifier services.Notifier
	logger   *log.Logger
	clock    func() time.Time
}

// ServiceOpts carries optional Service dependencies.
type ServiceOpts struct {
	Notifier services.Notifier
	Logger   *log.Logger
	Clock    func() time.Time
}

// NewService creates a Service over the given stores and ISRC allocator.
func NewService(stores Stores, alloc *isrc.Allocator, opts ServiceOpts) *Service {
	if opts.Notifier == nil {
		opts.Notifier = services.NoopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		stores:   stores,
		alloc:    alloc,
		notifier: opts.Notifier,
		logger:   opts.Logger,
		clock:    opts.Clock,
	}
}

// Create normalizes the draft, persists it as a pending submission owned by
// the acting user, and persists its tracks.
func (s *Service) Create(ctx context.Context, user *models.User, draft Draft) (*models.Submission, error) {
	if draft.Title == "" {
		return nil, &ValidationError{Field: "title", Detail: "a submission title is required"}
	}

	now := s.clock()
	sub := models.NewSubmission(0, user.ID(), draft.Title, normalize.CollapseArtistName(draft.ArtistName))
	sub.SetGenre(normalize.Genre(draft.Genre))
	sub.SetSubmittedAt(normalize.SubmittedAt(draft.SubmittedAt, now))
	sub.SetCoverArtRef(normalize.ResolveCoverArt(draft.CoverArtRef, draft.CoverArtUpload))
	sub.SetAudioRefs(normalize.ResolveAudioRefs(draft.AudioRefs, draft.AudioUpload))

	if !draft.RequestedReleaseDate.IsZero() {
		if decision := authz.ValidateReleaseDate(user, sub, draft.RequestedReleaseDate); !decision.Allowed {
			return nil, &ValidationError{Field: "requested_release_date", Detail: decision.Reason}
		}
		sub.SetRequestedReleaseDate(draft.RequestedReleaseDate)
	}

	if err := s.stores.Submissions.Create(ctx, sub); err != nil {
		return nil, storeError("create submission", sub.ID(), err)
	}

	for _, td := range draft.Tracks {
		track := models.NewTrack(0, sub.ID(), td.Title, td.ArtistCredit, td.FileRef, td.DurationSeconds)
		if track.ArtistCredit() == "" {
			track.SetArtistCredit(sub.ArtistName())
		}
		if err := s.stores.Tracks.Create(ctx, track); err != nil {
			return nil, storeError("create track", sub.ID(), err)
		}
	}

	s.notify(ctx, services.Event{
		Kind:         services.EventCreated,
		SubmissionID: sub.ID(),
		OwnerID:      sub.OwnerID(),
		Title:        sub.Title(),
		To:           sub.Status(),
		At:           now,
	})

	return sub, nil
}

// Get loads a submission, subject to view authorization.
func (s *Service) Get(ctx context.Context, user *models.User, id string) (*models.Submission, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := authz.CanView(user, sub); !decision.Allowed {
		return nil, &AuthorizationDeniedError{Reason: decision.Reason}
	}
	return sub, nil
}

// List returns the submissions visible to the acting user.
func (s *Service) List(ctx context.Context, user *models.User) ([]*models.Submission, error) {
	switch user.Role() {
	case models.RoleLabelManager:
		subs, err := s.stores.Submissions.ListAll(ctx)
		if err != nil {
			return nil, storeError("list submissions", "", err)
		}
		return subs, nil
	case models.RoleArtist:
		subs, err := s.stores.Submissions.ListByOwner(ctx, user.ID())
		if err != nil {
			return nil, storeError("list submissions", "", err)
		}
		return subs, nil
	default:
		return nil, &AuthorizationDeniedError{Reason: authz.ReasonUnknownRole}
	}
}

// Summary aggregates the visible submissions for the acting user.
func (s *Service) Summary(ctx context.Context, user *models.User) (authz.Summary, error) {
	subs, err := s.List(ctx, user)
	if err != nil {
		return authz.Summary{}, err
	}
	return authz.Summarize(user, subs), nil
}

// Edit applies a partial update to a submission after the edit authorization
// check, re-normalizes the merged record, and persists it under optimistic
// concurrency.
func (s *Service) Edit(ctx context.Context, user *models.User, id string, patch Patch) (*models.Submission, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := authz.CanEdit(user, sub); !decision.Allowed {
		return nil, &AuthorizationDeniedError{Reason: decision.Reason}
	}
	if patch.UPC != nil && user.Role() != models.RoleLabelManager {
		return nil, &AuthorizationDeniedError{Reason: "only label managers may assign a UPC"}
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, &ValidationError{Field: "title", Detail: "a submission title is required"}
		}
		sub.SetTitle(*patch.Title)
	}
	if patch.ArtistName != nil {
		sub.SetArtistName(*patch.ArtistName)
	}
	if patch.Genre != nil {
		sub.SetGenre(*patch.Genre)
	}
	if patch.RequestedReleaseDate != nil {
		if decision := authz.ValidateReleaseDate(user, sub, *patch.RequestedReleaseDate); !decision.Allowed {
			return nil, &ValidationError{Field: "requested_release_date", Detail: decision.Reason}
		}
		sub.SetRequestedReleaseDate(*patch.RequestedReleaseDate)
	}
	if patch.CoverArtRef != nil {
		sub.SetCoverArtRef(*patch.CoverArtRef)
	}
	if patch.AudioRefs != nil {
		sub.SetAudioRefs(patch.AudioRefs)
	}
	if patch.UPC != nil {
		sub.SetUPC(*patch.UPC)
	}

	normalize.Submission(sub, s.clock())

	if err := s.stores.Submissions.Update(ctx, sub); err != nil {
		return nil, storeError("update submission", id, err)
	}
	return sub, nil
}

// Delete removes a submission. Label managers only.
func (s *Service) Delete(ctx context.Context, user *models.User, id string) error {
	if decision := authz.CanDelete(user); !decision.Allowed {
		return &AuthorizationDeniedError{Reason: decision.Reason}
	}
	sub, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.stores.Submissions.Delete(ctx, id); err != nil {
		return storeError("delete submission", id, err)
	}

	s.notify(ctx, services.Event{
		Kind:         services.EventDeleted,
		SubmissionID: id,
		OwnerID:      sub.OwnerID(),
		Title:        sub.Title(),
		From:         sub.Status(),
		At:           s.clock(),
	})
	return nil
}

// ChangeStatus applies one edge of the lifecycle state machine.
//
// The comment becomes the rejection reason on a transition into Rejected; an
// empty comment stores no reason. A transition out of Rejected clears the
// stored reason. Tracks receive their ISRC codes on the transition into
// Approved. The update is a compare-and-swap: a concurrent writer racing from
// the same source status loses with [ConflictError].
func (s *Service) ChangeStatus(ctx context.Context, user *models.User, id string, target models.Status, comment string) (*models.Submission, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := sub.Status()

	// The resubmit edge requires ownership on top of the role table.
	if from == models.StatusRejected && target == models.StatusPending {
		if decision := authz.CanResubmit(user, sub); !decision.Allowed {
			return nil, &AuthorizationDeniedError{Reason: decision.Reason}
		}
	}

	if err := CanTransition(from, target, user.Role()); err != nil {
		return nil, err
	}

	if target == models.StatusApproved {
		if err := s.allocateTrackCodes(ctx, sub.ID()); err != nil {
			return nil, err
		}
	}

	sub.SetStatus(target)
	switch {
	case target == models.StatusRejected:
		if comment != "" {
			sub.SetRejectionReason(comment)
		} else {
			sub.ClearRejectionReason()
		}
	case from == models.StatusRejected && target == models.StatusPending:
		sub.ClearRejectionReason()
	}

	if err := s.stores.Submissions.Update(ctx, sub); err != nil {
		return nil, storeError("update submission status", id, err)
	}

	now := s.clock()
	change := models.NewStatusChange(sub.ID(), from, target, user.ID(), comment, now)
	if err := s.stores.Submissions.AppendStatusChange(ctx, change); err != nil {
		return nil, storeError("record status change", id, err)
	}

	s.notify(ctx, services.Event{
		Kind:         services.EventStatusChanged,
		SubmissionID: sub.ID(),
		OwnerID:      sub.OwnerID(),
		Title:        sub.Title(),
		From:         from,
		To:           target,
		Reason:       comment,
		At:           now,
	})

	return sub, nil
}

// Resubmit moves a rejected submission back to pending on behalf of its
// owning artist.
func (s *Service) Resubmit(ctx context.Context, user *models.User, id string) (*models.Submission, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := authz.CanResubmit(user, sub); !decision.Allowed {
		return nil, &AuthorizationDeniedError{Reason: decision.Reason}
	}
	return s.ChangeStatus(ctx, user, id, models.StatusPending, "")
}

// SetReleaseDate updates the requested release date, subject to edit
// authorization and the release-date window.
func (s *Service) SetReleaseDate(ctx context.Context, user *models.User, id string, date time.Time) (*models.Submission, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := authz.CanEdit(user, sub); !decision.Allowed {
		return nil, &AuthorizationDeniedError{Reason: decision.Reason}
	}
	if decision := authz.ValidateReleaseDate(user, sub, date); !decision.Allowed {
		return nil, &ValidationError{Field: "requested_release_date", Detail: decision.Reason}
	}

	sub.SetRequestedReleaseDate(date)
	if err := s.stores.Submissions.Update(ctx, sub); err != nil {
		return nil, storeError("update release date", id, err)
	}
	return sub, nil
}

// ListTracks returns the tracks of a submission, subject to view
// authorization.
func (s *Service) ListTracks(ctx context.Context, user *models.User, id string) ([]*models.Track, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := authz.CanView(user, sub); !decision.Allowed {
		return nil, &AuthorizationDeniedError{Reason: decision.Reason}
	}
	tracks, err := s.stores.Tracks.ListBySubmission(ctx, sub.ID())
	if err != nil {
		return nil, storeError("list tracks", id, err)
	}
	return tracks, nil
}

// History returns the status-change audit trail of a submission, oldest
// first, subject to view authorization.
func (s *Service) History(ctx context.Context, user *models.User, id string) ([]*models.StatusChange, error) {
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if decision := authz.CanView(user, sub); !decision.Allowed {
		return nil, &AuthorizationDeniedError{Reason: decision.Reason}
	}
	changes, err := s.stores.Submissions.ListStatusChanges(ctx, sub.ID())
	if err != nil {
		return nil, storeError("list status changes", id, err)
	}
	return changes, nil
}

// AllocateMissingCodes assigns ISRC codes to every track of a submission
// that lacks one. Label managers only; backfills approvals whose allocation
// was interrupted. Returns the number of codes issued.
func (s *Service) AllocateMissingCodes(ctx context.Context, user *models.User, id string) (int, error) {
	if decision := authz.CanApproveOrReject(user); !decision.Allowed {
		return 0, &AuthorizationDeniedError{Reason: decision.Reason}
	}
	if _, err := s.load(ctx, id); err != nil {
		return 0, err
	}
	return s.allocateMissing(ctx, id)
}

// allocateTrackCodes issues codes for an approval. Allocation happens before
// the status flips so an approved submission never lacks codes; a code burnt
// on a lost concurrency race is never reissued, which the allocator permits.
func (s *Service) allocateTrackCodes(ctx context.Context, submissionID string) error {
	_, err := s.allocateMissing(ctx, submissionID)
	return err
}

func (s *Service) allocateMissing(ctx context.Context, submissionID string) (int, error) {
	tracks, err := s.stores.Tracks.ListBySubmission(ctx, submissionID)
	if err != nil {
		return 0, storeError("list tracks", submissionID, err)
	}

	issued := 0
	for _, track := range tracks {
		if track.ISRC() != "" {
			continue
		}
		code, err := s.alloc.Allocate(ctx)
		if err != nil {
			return issued, &StoreUnavailableError{Op: "allocate ISRC", Err: err}
		}
		if err := track.SetISRC(code); err != nil {
			return issued, &ConflictError{ID: track.ID()}
		}
		if err := s.stores.Tracks.Update(ctx, track); err != nil {
			return issued, storeError("update track", track.ID(), err)
		}
		issued++
	}
	return issued, nil
}

// load fetches a submission and maps store errors to boundary kinds.
func (s *Service) load(ctx context.Context, id string) (*models.Submission, error) {
	if id == "" {
		return nil, &ValidationError{Field: "id", Detail: "a submission id is required"}
	}
	sub, err := s.stores.Submissions.Get(ctx, id)
	if err != nil {
		return nil, storeError("get submission", id, err)
	}
	return sub, nil
}

// notify emits an event on the side channel. Delivery failures are logged
// and never affect the operation result.
func (s *Service) notify(ctx context.Context, event services.Event) {
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("notification failed", "kind", event.Kind, "submission", event.SubmissionID, "error", err)
	}
}

// storeError maps a store-port failure to the matching boundary error kind.
func storeError(op, id string, err error) error {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return &NotFoundError{ID: id}
	case errors.Is(err, shared.ErrConflict):
		return &ConflictError{ID: id}
	default:
		return &StoreUnavailableError{Op: op, Err: err}
	}
}
