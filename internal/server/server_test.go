package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iamankun/studio-sub000/internal/isrc"
	"github.com/iamankun/studio-sub000/internal/lifecycle"
	"github.com/iamankun/studio-sub000/internal/models"
	internaltesting "github.com/iamankun/studio-sub000/internal/testing"
)

// newTestService builds a lifecycle service over in-memory stores.
func newTestService(t *testing.T) *lifecycle.Service {
	t.Helper()

	alloc, err := isrc.NewAllocator("VN", "A0K", internaltesting.NewMemoryCounter())
	if err != nil {
		t.Fatalf("failed to create allocator: %v", err)
	}

	stores := lifecycle.Stores{
		Submissions: internaltesting.NewMemorySubmissionStore(),
		Tracks:      internaltesting.NewMemoryTrackStore(),
	}
	return lifecycle.NewService(stores, alloc, lifecycle.ServiceOpts{})
}

func newTestUser(id string, role models.Role) *models.User {
	user := models.NewUser(0, id+"@example.com", "Test "+id, role)
	user.SetID(id)
	return user
}

// request performs an API call against the handler acting as user.
func request(t *testing.T, handler *SubmissionHandler, user *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	router := NewBasicRouter()
	router.Handler(handler)

	req := httptest.NewRequest(method, path, reader)
	if user != nil {
		req = req.WithContext(WithPrincipal(req.Context(), user))
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return payload
}

func TestSubmissionHandler(t *testing.T) {
	t.Run("RequiresPrincipal", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))

		recorder := request(t, handler, nil, http.MethodGet, "/api/submissions", nil)

		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))
		artist := newTestUser("artist-1", models.RoleArtist)

		recorder := request(t, handler, artist, http.MethodPost, "/api/submissions", createRequest{
			Title:      "First Light",
			ArtistName: "Aria Vo",
			Genre:      "Pop",
			Tracks:     []trackDraftRequest{{Title: "Opening", FileRef: "audio/opening.wav"}},
		})

		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
		}

		created := decodeBody(t, recorder)
		if created["status"] != "pending" {
			t.Errorf("expected pending status, got %v", created["status"])
		}

		id, _ := created["id"].(string)
		if id == "" {
			t.Fatal("expected submission ID in response")
		}

		recorder = request(t, handler, artist, http.MethodGet, "/api/submissions/"+id, nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}
		if got := decodeBody(t, recorder)["title"]; got != "First Light" {
			t.Errorf("expected title 'First Light', got %v", got)
		}
	})

	t.Run("CreateWithoutTitle", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))
		artist := newTestUser("artist-1", models.RoleArtist)

		recorder := request(t, handler, artist, http.MethodPost, "/api/submissions", createRequest{
			ArtistName: "Aria Vo",
		})

		if recorder.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422 for missing title, got %d", recorder.Code)
		}
	})

	t.Run("ForeignSubmissionIsForbidden", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))
		owner := newTestUser("artist-1", models.RoleArtist)
		other := newTestUser("artist-2", models.RoleArtist)

		recorder := request(t, handler, owner, http.MethodPost, "/api/submissions", createRequest{Title: "Mine", ArtistName: "Aria Vo"})
		id := decodeBody(t, recorder)["id"].(string)

		recorder = request(t, handler, other, http.MethodGet, "/api/submissions/"+id, nil)
		if recorder.Code != http.StatusForbidden {
			t.Errorf("expected 403 for foreign submission, got %d", recorder.Code)
		}
	})

	t.Run("IllegalTransitionConflicts", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))
		artist := newTestUser("artist-1", models.RoleArtist)
		manager := newTestUser("mgr-1", models.RoleLabelManager)

		recorder := request(t, handler, artist, http.MethodPost, "/api/submissions", createRequest{Title: "Mine", ArtistName: "Aria Vo"})
		id := decodeBody(t, recorder)["id"].(string)

		recorder = request(t, handler, manager, http.MethodPost, fmt.Sprintf("/api/submissions/%s/status", id), statusRequest{Target: "published"})
		if recorder.Code != http.StatusConflict {
			t.Errorf("expected 409 for pending->published, got %d", recorder.Code)
		}
	})

	t.Run("ApprovalFlow", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))
		artist := newTestUser("artist-1", models.RoleArtist)
		manager := newTestUser("mgr-1", models.RoleLabelManager)

		recorder := request(t, handler, artist, http.MethodPost, "/api/submissions", createRequest{
			Title:      "First Light",
			ArtistName: "Aria Vo",
			Tracks:     []trackDraftRequest{{Title: "Opening", FileRef: "audio/opening.wav"}},
		})
		id := decodeBody(t, recorder)["id"].(string)

		recorder = request(t, handler, manager, http.MethodPost, fmt.Sprintf("/api/submissions/%s/status", id), statusRequest{Target: "approved"})
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200 for approval, got %d: %s", recorder.Code, recorder.Body.String())
		}
		if got := decodeBody(t, recorder)["status"]; got != "approved" {
			t.Errorf("expected approved status, got %v", got)
		}

		recorder = request(t, handler, manager, http.MethodGet, fmt.Sprintf("/api/submissions/%s/tracks", id), nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200 for tracks, got %d", recorder.Code)
		}

		var tracks []map[string]any
		if err := json.Unmarshal(recorder.Body.Bytes(), &tracks); err != nil {
			t.Fatalf("failed to decode tracks: %v", err)
		}
		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}
		code, _ := tracks[0]["isrc"].(string)
		if !strings.HasPrefix(code, "VNA0K") {
			t.Errorf("expected allocated ISRC with prefix VNA0K, got %q", code)
		}
	})

	t.Run("RejectionRequiresManager", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))
		artist := newTestUser("artist-1", models.RoleArtist)

		recorder := request(t, handler, artist, http.MethodPost, "/api/submissions", createRequest{Title: "Mine", ArtistName: "Aria Vo"})
		id := decodeBody(t, recorder)["id"].(string)

		recorder = request(t, handler, artist, http.MethodPost, fmt.Sprintf("/api/submissions/%s/status", id), statusRequest{Target: "rejected", Comment: "no"})
		if recorder.Code != http.StatusForbidden {
			t.Errorf("expected 403 for artist rejecting, got %d", recorder.Code)
		}
	})

	t.Run("MissingSubmissionIs404", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))
		artist := newTestUser("artist-1", models.RoleArtist)

		recorder := request(t, handler, artist, http.MethodGet, "/api/submissions/nope", nil)
		if recorder.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", recorder.Code)
		}
	})

	t.Run("Summary", func(t *testing.T) {
		handler := NewSubmissionHandler(newTestService(t))
		artist := newTestUser("artist-1", models.RoleArtist)
		manager := newTestUser("mgr-1", models.RoleLabelManager)

		for _, title := range []string{"One", "Two"} {
			request(t, handler, artist, http.MethodPost, "/api/submissions", createRequest{Title: title, ArtistName: "Aria Vo"})
		}

		recorder := request(t, handler, manager, http.MethodGet, "/api/submissions/summary", nil)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", recorder.Code)
		}

		summary := decodeBody(t, recorder)
		if total, _ := summary["total"].(float64); total != 2 {
			t.Errorf("expected total 2, got %v", summary["total"])
		}
		if owners, _ := summary["distinct_owners"].(float64); owners != 1 {
			t.Errorf("expected 1 distinct owner, got %v", summary["distinct_owners"])
		}
	})
}

func TestIdentityMiddleware(t *testing.T) {
	resolver := &staticResolver{users: map[string]*models.User{
		"sub0_token": newTestUser("artist-1", models.RoleArtist),
	}}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user := PrincipalFrom(r.Context()); user != nil {
			fmt.Fprint(w, user.ID())
			return
		}
		fmt.Fprint(w, "anonymous")
	})
	handler := Identity(resolver)(next)

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer sub0_token")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Body.String() != "artist-1" {
			t.Errorf("expected principal artist-1, got %q", recorder.Body.String())
		}
	})

	t.Run("UnknownToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer wrong")

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for unknown token, got %d", recorder.Code)
		}
	})

	t.Run("NoToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Body.String() != "anonymous" {
			t.Errorf("expected anonymous passthrough, got %q", recorder.Body.String())
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimit(1, 2)(next)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, recorder.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected burst of 2 to pass, got %v", codes)
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Errorf("expected 429 once burst is spent, got %v", codes)
	}
}

// staticResolver resolves tokens from a fixed map.
type staticResolver struct {
	users map[string]*models.User
}

func (r *staticResolver) GetByToken(ctx context.Context, token string) (*models.User, error) {
	user, ok := r.users[token]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return user, nil
}
