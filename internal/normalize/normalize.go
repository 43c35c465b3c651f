// Package normalize fills missing or ambiguous submission fields with deterministic defaults.
//
// Each field has one named resolution function so the priority order is
// documented and testable in one place instead of repeated at call sites.
// No function ever overwrites a non-empty caller-supplied value.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/iamankun/studio-sub000/internal/models"
)

const (
	// VariousArtist replaces an artist credit that is missing or names more
	// than MaxArtistSegments contributors.
	VariousArtist = "Various Artist"

	// DefaultGenre is used when a submission names no genre.
	DefaultGenre = "Unknown"

	// MaxArtistSegments is the most contributors an artist credit may name
	// before it collapses to VariousArtist.
	MaxArtistSegments = 3
)

// System-default asset references, the final fallback of each chain.
const (
	DefaultCoverArtRef = "assets/default-cover.jpg"
	DefaultAudioRef    = "assets/default-audio.wav"
)

// artistSeparators matches the delimiters that split a raw artist credit into
// individual contributor segments: ",", "&", "feat.", "featuring", "ft.".
// Word delimiters only count when standing alone, so "Featherweight" is one name.
var artistSeparators = regexp.MustCompile(`(?i),|&|\bfeat\.|\bfeaturing\b|\bft\.`)

// CollapseArtistName normalizes a raw artist credit.
//
// An empty credit, or one naming more than three contributors, becomes
// VariousArtist. Anything else is returned byte-for-byte unchanged; this never
// reformats a valid credit.
func CollapseArtistName(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return VariousArtist
	}

	segments := 0
	for _, part := range artistSeparators.Split(raw, -1) {
		if strings.TrimSpace(part) != "" {
			segments++
		}
	}

	if segments == 0 || segments > MaxArtistSegments {
		return VariousArtist
	}
	return raw
}

// ResolveCoverArt picks the cover-art reference: the explicit reference first,
// then an uploaded asset already on the record, then the system default.
func ResolveCoverArt(ref, upload string) string {
	if strings.TrimSpace(ref) != "" {
		return ref
	}
	if strings.TrimSpace(upload) != "" {
		return upload
	}
	return DefaultCoverArtRef
}

// ResolveAudioRefs picks the audio references with the same three-way chain as
// cover art, applied independently: explicit references first, then an
// uploaded asset, then a single system-default reference.
func ResolveAudioRefs(refs []string, upload string) []string {
	present := make([]string, 0, len(refs))
	for _, ref := range refs {
		if strings.TrimSpace(ref) != "" {
			present = append(present, ref)
		}
	}
	if len(present) > 0 {
		return present
	}
	if strings.TrimSpace(upload) != "" {
		return []string{upload}
	}
	return []string{DefaultAudioRef}
}

// Genre defaults a missing genre to DefaultGenre.
func Genre(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return DefaultGenre
	}
	return raw
}

// SubmittedAt defaults a missing submission timestamp to now.
func SubmittedAt(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}

// Submission applies every field default to an existing record in place:
// artist-credit collapsing, genre, asset references, status, and submission
// timestamp. Uploads were consumed at draft time, so the asset chains here
// run ref-or-default; a persisted record always carries its references even
// after an edit blanks them.
func Submission(sub *models.Submission, now time.Time) {
	sub.SetArtistName(CollapseArtistName(sub.ArtistName()))
	sub.SetGenre(Genre(sub.Genre()))
	sub.SetCoverArtRef(ResolveCoverArt(sub.CoverArtRef(), ""))
	sub.SetAudioRefs(ResolveAudioRefs(sub.AudioRefs(), ""))
	if sub.Status() == "" {
		sub.SetStatus(models.StatusPending)
	}
	sub.SetSubmittedAt(SubmittedAt(sub.SubmittedAt(), now))
}
