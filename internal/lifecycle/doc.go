// Package lifecycle implements the submission state machine and the service orchestrating every submission operation.
//
// # State Machine
//
// Submissions move through pending, approved, rejected, processing, published,
// and cancelled. [CanTransition] encodes the legal edges and the role each
// edge requires; published and cancelled are terminal. Rejected submissions
// return to pending only through the owning artist's resubmit.
//
// # Service
//
// [Service] is the single entry point for mutations and reads. Every
// operation follows the same shape: authorization check, state-machine
// legality where the mutation targets status, normalization of the resulting
// record, then delegation to the store ports. Results are a value or one of
// the tagged error kinds in errors.go; no raw store error and no panic
// crosses the boundary.
//
// # Concurrency
//
// The decision functions are pure and need no locking. Submission updates use
// optimistic concurrency: stores compare-and-swap on the record version, and
// a losing writer receives [ConflictError] to retry with a fresh read. ISRC
// allocation serializes through the durable counter behind
// [isrc.CounterStore]; nothing else serializes.
package lifecycle
