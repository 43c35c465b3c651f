package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iamankun/studio-sub000/internal/lifecycle"
	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
	"github.com/urfave/cli/v3"
)

const dateLayout = "2006-01-02"

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", shared.ErrInvalidFlag, raw)
	}
	return date, nil
}

// parseTrackSpec parses a 'Title|ArtistCredit|Seconds|FileRef' track flag.
// Everything after the title is optional.
func parseTrackSpec(spec string) (lifecycle.TrackDraft, error) {
	parts := strings.Split(spec, "|")
	draft := lifecycle.TrackDraft{Title: strings.TrimSpace(parts[0])}
	if draft.Title == "" {
		return draft, fmt.Errorf("%w: track spec %q has no title", shared.ErrInvalidFlag, spec)
	}
	if len(parts) > 1 {
		draft.ArtistCredit = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 && strings.TrimSpace(parts[2]) != "" {
		seconds, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return draft, fmt.Errorf("%w: track spec %q has a non-numeric duration", shared.ErrInvalidFlag, spec)
		}
		draft.DurationSeconds = seconds
	}
	if len(parts) > 3 {
		draft.FileRef = strings.TrimSpace(parts[3])
	}
	return draft, nil
}

func submissionJSON(sub *models.Submission) map[string]any {
	payload := map[string]any{
		"id":           sub.ID(),
		"owner_id":     sub.OwnerID(),
		"title":        sub.Title(),
		"artist_name":  sub.ArtistName(),
		"genre":        sub.Genre(),
		"status":       sub.Status(),
		"submitted_at": sub.SubmittedAt().Format(time.RFC3339),
		"version":      sub.Version(),
	}
	if !sub.RequestedReleaseDate().IsZero() {
		payload["requested_release_date"] = sub.RequestedReleaseDate().Format(dateLayout)
	}
	if reason, ok := sub.RejectionReason(); ok {
		payload["rejection_reason"] = reason
	}
	if sub.UPC() != "" {
		payload["upc"] = sub.UPC()
	}
	return payload
}

func trackJSON(track *models.Track) map[string]any {
	return map[string]any{
		"id":            track.ID(),
		"title":         track.Title(),
		"artist_credit": track.ArtistCredit(),
		"isrc":          track.ISRC(),
		"duration":      shared.FormatDuration(track.DurationSeconds()),
	}
}

// SubmissionCreate submits a new release on behalf of the acting user.
func (r *Runner) SubmissionCreate(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	draft := lifecycle.Draft{
		Title:      cmd.String("title"),
		ArtistName: cmd.String("artist"),
		Genre:      cmd.String("genre"),
		CoverArtRef: func() string {
			if ref := cmd.String("cover"); ref != "" {
				return ref
			}
			return r.config.Label.DefaultCover
		}(),
		AudioRefs: cmd.StringSlice("audio"),
	}
	if raw := cmd.String("release-date"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return err
		}
		draft.RequestedReleaseDate = date
	}
	for _, spec := range cmd.StringSlice("track") {
		track, err := parseTrackSpec(spec)
		if err != nil {
			return err
		}
		draft.Tracks = append(draft.Tracks, track)
	}

	sub, err := env.service.Create(ctx, user, draft)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	r.logger.Info("submission created", "id", sub.ID(), "title", sub.Title())
	return r.writeJSON(submissionJSON(sub), true)
}

// SubmissionList lists the submissions visible to the acting user.
func (r *Runner) SubmissionList(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	subs, err := env.service.List(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to list submissions: %w", err)
	}

	if raw := cmd.String("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		filtered := subs[:0]
		for _, sub := range subs {
			if sub.Status() == status {
				filtered = append(filtered, sub)
			}
		}
		subs = filtered
	}

	if cmd.Bool("json") {
		payload := make([]map[string]any, len(subs))
		for i, sub := range subs {
			payload[i] = submissionJSON(sub)
		}
		return r.writeJSON(payload, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Submissions (%d)", len(subs)))
	for _, sub := range subs {
		r.writePlain("%s  %-10s %s - %s\n", sub.ID(), sub.Status(), sub.ArtistName(), sub.Title())
	}
	return nil
}

// SubmissionShow prints one submission.
func (r *Runner) SubmissionShow(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	sub, err := env.service.Get(ctx, user, cmd.StringArg("id"))
	if err != nil {
		return err
	}
	return r.writeJSON(submissionJSON(sub), true)
}

// SubmissionEdit applies a metadata patch built from the set flags.
func (r *Runner) SubmissionEdit(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	var patch lifecycle.Patch
	if cmd.IsSet("title") {
		title := cmd.String("title")
		patch.Title = &title
	}
	if cmd.IsSet("artist") {
		artist := cmd.String("artist")
		patch.ArtistName = &artist
	}
	if cmd.IsSet("genre") {
		genre := cmd.String("genre")
		patch.Genre = &genre
	}
	if cmd.IsSet("upc") {
		upc := cmd.String("upc")
		patch.UPC = &upc
	}
	if cmd.IsSet("cover") {
		cover := cmd.String("cover")
		patch.CoverArtRef = &cover
	}
	if cmd.IsSet("release-date") {
		date, err := parseDate(cmd.String("release-date"))
		if err != nil {
			return err
		}
		patch.RequestedReleaseDate = &date
	}
	if cmd.IsSet("audio") {
		patch.AudioRefs = cmd.StringSlice("audio")
	}

	sub, err := env.service.Edit(ctx, user, cmd.StringArg("id"), patch)
	if err != nil {
		return err
	}

	r.logger.Info("submission updated", "id", sub.ID(), "version", sub.Version())
	return r.writeJSON(submissionJSON(sub), true)
}

// SubmissionDelete deletes a submission.
func (r *Runner) SubmissionDelete(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if err := env.service.Delete(ctx, user, id); err != nil {
		return err
	}

	r.logger.Info("submission deleted", "id", id)
	return r.writePlain("✓ deleted %s\n", id)
}

// SubmissionStatus changes a submission's status.
func (r *Runner) SubmissionStatus(ctx context.Context, cmd *cli.Command) error {
	target, err := models.ParseStatus(cmd.String("to"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	sub, err := env.service.ChangeStatus(ctx, user, cmd.StringArg("id"), target, cmd.String("reason"))
	if err != nil {
		return err
	}

	r.logger.Info("status changed", "id", sub.ID(), "to", sub.Status())
	return r.writeJSON(submissionJSON(sub), true)
}

// SubmissionResubmit moves a rejected submission back to pending.
func (r *Runner) SubmissionResubmit(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	sub, err := env.service.Resubmit(ctx, user, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	r.logger.Info("submission resubmitted", "id", sub.ID())
	return r.writeJSON(submissionJSON(sub), true)
}

// SubmissionReleaseDate sets the requested release date.
func (r *Runner) SubmissionReleaseDate(ctx context.Context, cmd *cli.Command) error {
	date, err := parseDate(cmd.String("date"))
	if err != nil {
		return err
	}

	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	sub, err := env.service.SetReleaseDate(ctx, user, cmd.StringArg("id"), date)
	if err != nil {
		return err
	}
	return r.writeJSON(submissionJSON(sub), true)
}

// SubmissionTracks lists a submission's tracks.
func (r *Runner) SubmissionTracks(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	tracks, err := env.service.ListTracks(ctx, user, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	payload := make([]map[string]any, len(tracks))
	for i, track := range tracks {
		payload[i] = trackJSON(track)
	}
	return r.writeJSON(payload, true)
}

// SubmissionHistory shows a submission's status history, oldest first.
func (r *Runner) SubmissionHistory(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	changes, err := env.service.History(ctx, user, cmd.StringArg("id"))
	if err != nil {
		return err
	}

	payload := make([]map[string]any, len(changes))
	for i, change := range changes {
		entry := map[string]any{
			"from":       change.From(),
			"to":         change.To(),
			"actor_id":   change.ActorID(),
			"changed_at": change.ChangedAt().Format(time.RFC3339),
		}
		if change.Reason() != "" {
			entry["reason"] = change.Reason()
		}
		payload[i] = entry
	}
	return r.writeJSON(payload, true)
}
