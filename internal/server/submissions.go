package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iamankun/studio-sub000/internal/lifecycle"
	"github.com/iamankun/studio-sub000/internal/models"
)

// SubmissionHandler serves the submission REST API. Every route requires an
// authenticated principal; authorization beyond that is the service's job,
// and service error kinds map onto status codes in writeError.
type SubmissionHandler struct {
	service *lifecycle.Service
}

// NewSubmissionHandler creates a handler over the lifecycle service.
func NewSubmissionHandler(service *lifecycle.Service) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Routes returns the HTTP routes this handler serves.
func (h *SubmissionHandler) Routes() []string {
	return []string{
		"GET /api/submissions",
		"POST /api/submissions",
		"GET /api/submissions/summary",
		"GET /api/submissions/{id}",
		"PATCH /api/submissions/{id}",
		"DELETE /api/submissions/{id}",
		"POST /api/submissions/{id}/status",
		"POST /api/submissions/{id}/resubmit",
		"POST /api/submissions/{id}/allocate",
		"PUT /api/submissions/{id}/release-date",
		"GET /api/submissions/{id}/tracks",
		"GET /api/submissions/{id}/history",
	}
}

// ServeHTTP dispatches on method and the matched path segments.
func (h *SubmissionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := PrincipalFrom(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	id := r.PathValue("id")
	path := r.URL.Path

	switch r.Method {
	case http.MethodGet:
		switch {
		case strings.HasSuffix(path, "/summary"):
			h.summary(w, r, user)
		case id == "":
			h.list(w, r, user)
		case strings.HasSuffix(path, "/tracks"):
			h.tracks(w, r, user, id)
		case strings.HasSuffix(path, "/history"):
			h.history(w, r, user, id)
		default:
			h.get(w, r, user, id)
		}
	case http.MethodPost:
		switch {
		case id == "":
			h.create(w, r, user)
		case strings.HasSuffix(path, "/status"):
			h.changeStatus(w, r, user, id)
		case strings.HasSuffix(path, "/resubmit"):
			h.resubmit(w, r, user, id)
		case strings.HasSuffix(path, "/allocate"):
			h.allocate(w, r, user, id)
		default:
			http.NotFound(w, r)
		}
	case http.MethodPatch:
		h.edit(w, r, user, id)
	case http.MethodDelete:
		h.delete(w, r, user, id)
	case http.MethodPut:
		h.setReleaseDate(w, r, user, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type trackDraftRequest struct {
	Title           string `json:"title"`
	ArtistCredit    string `json:"artist_credit"`
	FileRef         string `json:"file_ref"`
	DurationSeconds int    `json:"duration_seconds"`
}

type createRequest struct {
	Title                string              `json:"title"`
	ArtistName           string              `json:"artist_name"`
	Genre                string              `json:"genre"`
	RequestedReleaseDate string              `json:"requested_release_date"`
	CoverArtRef          string              `json:"cover_art_ref"`
	CoverArtUpload       string              `json:"cover_art_upload"`
	AudioRefs            []string            `json:"audio_refs"`
	AudioUpload          string              `json:"audio_upload"`
	Tracks               []trackDraftRequest `json:"tracks"`
}

type patchRequest struct {
	Title                *string  `json:"title"`
	ArtistName           *string  `json:"artist_name"`
	Genre                *string  `json:"genre"`
	RequestedReleaseDate *string  `json:"requested_release_date"`
	CoverArtRef          *string  `json:"cover_art_ref"`
	AudioRefs            []string `json:"audio_refs"`
	UPC                  *string  `json:"upc"`
}

type statusRequest struct {
	Target  string `json:"target"`
	Comment string `json:"comment"`
}

type releaseDateRequest struct {
	Date string `json:"date"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *SubmissionHandler) create(w http.ResponseWriter, r *http.Request, user *models.User) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	draft := lifecycle.Draft{
		Title:          req.Title,
		ArtistName:     req.ArtistName,
		Genre:          req.Genre,
		CoverArtRef:    req.CoverArtRef,
		CoverArtUpload: req.CoverArtUpload,
		AudioRefs:      req.AudioRefs,
		AudioUpload:    req.AudioUpload,
	}
	if req.RequestedReleaseDate != "" {
		date, err := parseDate(req.RequestedReleaseDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		draft.RequestedReleaseDate = date
	}
	for _, track := range req.Tracks {
		draft.Tracks = append(draft.Tracks, lifecycle.TrackDraft{
			Title:           track.Title,
			ArtistCredit:    track.ArtistCredit,
			FileRef:         track.FileRef,
			DurationSeconds: track.DurationSeconds,
		})
	}

	sub, err := h.service.Create(r.Context(), user, draft)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, submissionPayload(sub))
}

func (h *SubmissionHandler) list(w http.ResponseWriter, r *http.Request, user *models.User) {
	subs, err := h.service.List(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]map[string]any, 0, len(subs))
	for _, sub := range subs {
		payload = append(payload, submissionPayload(sub))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *SubmissionHandler) summary(w http.ResponseWriter, r *http.Request, user *models.User) {
	summary, err := h.service.Summary(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	counts := make(map[string]int, len(summary.StatusCounts))
	for status, n := range summary.StatusCounts {
		counts[string(status)] = n
	}
	recent := make([]map[string]any, 0, len(summary.Recent))
	for _, sub := range summary.Recent {
		recent = append(recent, submissionPayload(sub))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":           summary.Total,
		"status_counts":   counts,
		"distinct_owners": summary.DistinctOwners,
		"recent":          recent,
	})
}

func (h *SubmissionHandler) get(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	sub, err := h.service.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissionPayload(sub))
}

func (h *SubmissionHandler) edit(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	patch := lifecycle.Patch{
		Title:       req.Title,
		ArtistName:  req.ArtistName,
		Genre:       req.Genre,
		CoverArtRef: req.CoverArtRef,
		AudioRefs:   req.AudioRefs,
		UPC:         req.UPC,
	}
	if req.RequestedReleaseDate != nil {
		date, err := parseDate(*req.RequestedReleaseDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		patch.RequestedReleaseDate = &date
	}

	sub, err := h.service.Edit(r.Context(), user, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissionPayload(sub))
}

func (h *SubmissionHandler) delete(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	if err := h.service.Delete(r.Context(), user, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SubmissionHandler) changeStatus(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	target, err := models.ParseStatus(req.Target)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sub, err := h.service.ChangeStatus(r.Context(), user, id, target, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissionPayload(sub))
}

func (h *SubmissionHandler) resubmit(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	sub, err := h.service.Resubmit(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissionPayload(sub))
}

func (h *SubmissionHandler) allocate(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	count, err := h.service.AllocateMissingCodes(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"allocated": count})
}

func (h *SubmissionHandler) setReleaseDate(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	var req releaseDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	sub, err := h.service.SetReleaseDate(r.Context(), user, id, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submissionPayload(sub))
}

func (h *SubmissionHandler) tracks(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	tracks, err := h.service.ListTracks(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]map[string]any, 0, len(tracks))
	for _, track := range tracks {
		payload = append(payload, map[string]any{
			"id":               track.ID(),
			"submission_id":    track.SubmissionID(),
			"title":            track.Title(),
			"artist_credit":    track.ArtistCredit(),
			"isrc":             track.ISRC(),
			"file_ref":         track.FileRef(),
			"duration_seconds": track.DurationSeconds(),
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *SubmissionHandler) history(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	history, err := h.service.History(r.Context(), user, id)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]map[string]any, 0, len(history))
	for _, change := range history {
		payload = append(payload, map[string]any{
			"from":       string(change.From()),
			"to":         string(change.To()),
			"actor_id":   change.ActorID(),
			"reason":     change.Reason(),
			"changed_at": change.ChangedAt().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

// submissionPayload builds the JSON representation of a submission.
func submissionPayload(sub *models.Submission) map[string]any {
	payload := map[string]any{
		"id":            sub.ID(),
		"owner_id":      sub.OwnerID(),
		"title":         sub.Title(),
		"artist_name":   sub.ArtistName(),
		"genre":         sub.Genre(),
		"status":        string(sub.Status()),
		"submitted_at":  sub.SubmittedAt().Format(time.RFC3339),
		"cover_art_ref": sub.CoverArtRef(),
		"audio_refs":    sub.AudioRefs(),
		"version":       sub.Version(),
	}
	if !sub.RequestedReleaseDate().IsZero() {
		payload["requested_release_date"] = sub.RequestedReleaseDate().Format("2006-01-02")
	}
	if reason, ok := sub.RejectionReason(); ok {
		payload["rejection_reason"] = reason
	}
	if sub.UPC() != "" {
		payload["upc"] = sub.UPC()
	}
	return payload
}

// parseDate accepts a date-only or RFC3339 timestamp string.
func parseDate(raw string) (time.Time, error) {
	if date, err := time.Parse("2006-01-02", raw); err == nil {
		return date, nil
	}
	if date, err := time.Parse(time.RFC3339, raw); err == nil {
		return date, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
}

// writeJSON serializes payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps lifecycle error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var (
		denied      *lifecycle.AuthorizationDeniedError
		transition  *lifecycle.InvalidTransitionError
		validation  *lifecycle.ValidationError
		notFound    *lifecycle.NotFoundError
		conflict    *lifecycle.ConflictError
		unavailable *lifecycle.StoreUnavailableError
	)

	switch {
	case errors.As(err, &denied):
		status = http.StatusForbidden
	case errors.As(err, &transition):
		status = http.StatusConflict
	case errors.As(err, &conflict):
		status = http.StatusConflict
	case errors.As(err, &validation):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &unavailable):
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}
