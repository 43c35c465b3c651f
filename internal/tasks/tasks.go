// package tasks implements bulk review operations over the submission catalog.
//
// The core abstraction is ReviewEngine, which orchestrates ISRC backfills and
// digest reports on top of the lifecycle service. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iamankun/studio-sub000/internal/authz"
	"github.com/iamankun/studio-sub000/internal/lifecycle"
	"github.com/iamankun/studio-sub000/internal/models"
)

// AllocationResult represents the outcome of backfilling one submission.
type AllocationResult struct {
	SubmissionID string // Submission worked on
	Allocated    int    // Number of codes issued
	Success      bool   // Whether the backfill completed
	Error        error  // Error if the backfill failed
}

// BulkAllocateResult contains all data from a bulk ISRC backfill.
type BulkAllocateResult struct {
	TotalSubmissions int                // Submissions processed
	TotalAllocated   int                // Codes issued across all submissions
	Succeeded        int                // Submissions backfilled without error
	Failed           int                // Submissions that errored
	Results          []AllocationResult // Individual outcomes
}

// DigestResult is the label-wide reporting snapshot fed to the formatter.
type DigestResult struct {
	GeneratedAt time.Time
	ActorID     string
	Summary     authz.Summary
	Submissions []*models.Submission
}

// BulkAllocateOpts contains configuration for bulk ISRC backfills.
type BulkAllocateOpts struct {
	NumWorkers int     // Concurrent workers (default: 5, max: 10)
	RateLimit  float64 // Allocations per second (default: 5)
}

// ReviewEngine runs bulk operations on top of the lifecycle service. Every
// operation acts as a specific user, so service-level authorization applies
// per submission.
type ReviewEngine struct {
	service *lifecycle.Service
}

// NewReviewEngine creates a ReviewEngine over the lifecycle service.
func NewReviewEngine(service *lifecycle.Service) *ReviewEngine {
	return &ReviewEngine{service: service}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ReviewEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// BulkAllocate backfills missing ISRCs across the given submissions
// concurrently with rate limiting and progress tracking.
//
// A worker pool pulls submission IDs from a job channel; the feeder paces
// job production through the limiter. Per-submission failures are collected,
// not fatal.
func (e *ReviewEngine) BulkAllocate(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	user *models.User,
	ids []string,
	opts BulkAllocateOpts,
) (*BulkAllocateResult, error) {
	if user == nil {
		return nil, fmt.Errorf("an acting user is required")
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &BulkAllocateResult{
		TotalSubmissions: len(ids),
		Results:          make([]AllocationResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan string, len(ids))
	results := make(chan AllocationResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.allocateWorker(ctx, &wg, user, jobs, results)
	}

	go func() {
		for i, id := range ids {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			e.sendProgress(prog, allocatingUpdate(i+1, len(ids), id))
			jobs <- id
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.Succeeded++
			result.TotalAllocated += res.Allocated
			e.sendProgress(prog, allocatedUpdate(completed, len(ids), res.SubmissionID, res.Allocated))
		} else {
			result.Failed++
			e.sendProgress(prog, allocateFailedUpdate(completed, len(ids), res.SubmissionID, res.Error))
		}
	}

	return result, nil
}

// allocateWorker is a worker goroutine that backfills submissions from the jobs channel.
func (e *ReviewEngine) allocateWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	user *models.User,
	jobs <-chan string,
	results chan<- AllocationResult,
) {
	defer wg.Done()

	for id := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		count, err := e.service.AllocateMissingCodes(ctx, user, id)
		results <- AllocationResult{
			SubmissionID: id,
			Allocated:    count,
			Success:      err == nil,
			Error:        err,
		}
	}
}

// Digest builds the reporting snapshot over the submissions visible to the
// acting user. Artists see their own catalog; label managers see everything.
func (e *ReviewEngine) Digest(ctx context.Context, prog chan<- ProgressUpdate, user *models.User) (*DigestResult, error) {
	if user == nil {
		return nil, fmt.Errorf("an acting user is required")
	}

	e.sendProgress(prog, listSubmissionsUpdate(1, 2))
	subs, err := e.service.List(ctx, user)
	if err != nil {
		return nil, err
	}

	e.sendProgress(prog, digestUpdate(2, 2))
	summary, err := e.service.Summary(ctx, user)
	if err != nil {
		return nil, err
	}

	return &DigestResult{
		GeneratedAt: time.Now(),
		ActorID:     user.ID(),
		Summary:     summary,
		Submissions: subs,
	}, nil
}
