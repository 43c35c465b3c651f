// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
)

// MemorySubmissionStore is an in-memory submission store with the same
// version semantics as the SQLite repository: updates compare-and-swap on the
// loaded version and bump it on success. It satisfies the lifecycle service's
// submission store port.
type MemorySubmissionStore struct {
	mu      sync.Mutex
	order   []string
	subs    map[string]*models.Submission
	history map[string][]*models.StatusChange

	// FailNext makes the next call return this error, then resets.
	FailNext error
}

func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{
		subs:    map[string]*models.Submission{},
		history: map[string][]*models.StatusChange{},
	}
}

func (s *MemorySubmissionStore) fail() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *MemorySubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return err
	}

	if sub.ID() == "" {
		sub.SetID(shared.GenerateID())
	}
	sub.SetVersion(1)
	s.order = append(s.order, sub.ID())
	s.subs[sub.ID()] = cloneSubmission(sub)
	return nil
}

func (s *MemorySubmissionStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return nil, err
	}

	sub, ok := s.subs[id]
	if !ok {
		return nil, fmt.Errorf("%w: submission %s", shared.ErrNotFound, id)
	}
	return cloneSubmission(sub), nil
}

func (s *MemorySubmissionStore) Update(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return err
	}

	current, ok := s.subs[sub.ID()]
	if !ok {
		return fmt.Errorf("%w: submission %s", shared.ErrNotFound, sub.ID())
	}
	if current.Version() != sub.Version() {
		return fmt.Errorf("%w: submission %s at version %d", shared.ErrConflict, sub.ID(), sub.Version())
	}
	sub.SetVersion(sub.Version() + 1)
	s.subs[sub.ID()] = cloneSubmission(sub)
	return nil
}

func (s *MemorySubmissionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return err
	}

	if _, ok := s.subs[id]; !ok {
		return fmt.Errorf("%w: submission %s", shared.ErrNotFound, id)
	}
	delete(s.subs, id)
	return nil
}

func (s *MemorySubmissionStore) ListByOwner(ctx context.Context, ownerID string) ([]*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return nil, err
	}

	var out []*models.Submission
	for _, id := range s.order {
		sub, ok := s.subs[id]
		if ok && sub.OwnerID() == ownerID {
			out = append(out, cloneSubmission(sub))
		}
	}
	return out, nil
}

func (s *MemorySubmissionStore) ListAll(ctx context.Context) ([]*models.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return nil, err
	}

	var out []*models.Submission
	for _, id := range s.order {
		if sub, ok := s.subs[id]; ok {
			out = append(out, cloneSubmission(sub))
		}
	}
	return out, nil
}

func (s *MemorySubmissionStore) AppendStatusChange(ctx context.Context, change *models.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return err
	}

	s.history[change.SubmissionID()] = append(s.history[change.SubmissionID()], change)
	return nil
}

func (s *MemorySubmissionStore) ListStatusChanges(ctx context.Context, submissionID string) ([]*models.StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fail(); err != nil {
		return nil, err
	}

	return append([]*models.StatusChange{}, s.history[submissionID]...), nil
}

// MemoryTrackStore is an in-memory track store satisfying the lifecycle
// service's track store port.
type MemoryTrackStore struct {
	mu     sync.Mutex
	order  []string
	tracks map[string]*models.Track
}

func NewMemoryTrackStore() *MemoryTrackStore {
	return &MemoryTrackStore{tracks: map[string]*models.Track{}}
}

func (s *MemoryTrackStore) Create(ctx context.Context, track *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if track.ID() == "" {
		track.SetID(shared.GenerateID())
	}
	s.order = append(s.order, track.ID())
	s.tracks[track.ID()] = track
	return nil
}

func (s *MemoryTrackStore) Get(ctx context.Context, id string) (*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.tracks[id]
	if !ok {
		return nil, fmt.Errorf("%w: track %s", shared.ErrNotFound, id)
	}
	return track, nil
}

func (s *MemoryTrackStore) Update(ctx context.Context, track *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tracks[track.ID()]; !ok {
		return fmt.Errorf("%w: track %s", shared.ErrNotFound, track.ID())
	}
	s.tracks[track.ID()] = track
	return nil
}

func (s *MemoryTrackStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tracks[id]; !ok {
		return fmt.Errorf("%w: track %s", shared.ErrNotFound, id)
	}
	delete(s.tracks, id)
	return nil
}

func (s *MemoryTrackStore) ListBySubmission(ctx context.Context, submissionID string) ([]*models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Track
	for _, id := range s.order {
		track, ok := s.tracks[id]
		if ok && track.SubmissionID() == submissionID {
			out = append(out, track)
		}
	}
	return out, nil
}

// MemoryCounter is an in-memory atomic counter store for ISRC allocation.
type MemoryCounter struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{values: map[string]int64{}}
}

func (c *MemoryCounter) AtomicIncrement(ctx context.Context, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[name]++
	return c.values[name], nil
}

func cloneSubmission(sub *models.Submission) *models.Submission {
	clone := *sub
	clone.SetAudioRefs(append([]string{}, sub.AudioRefs()...))
	return &clone
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
