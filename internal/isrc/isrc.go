// Package isrc allocates unique per-track release identifiers.
//
// Codes follow the ISRC shape: a 2-letter country code, a 3-character
// registrant code, the 2-digit allocation year, and a 5-digit zero-padded
// sequence number (e.g. VNA0K2600042). The sequence comes from a durable
// counter behind the [CounterStore] port, never from process-local state, so
// concurrent allocations across requests or instances cannot collide.
package isrc

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// CounterName is the durable counter backing ISRC sequences.
const CounterName = "isrc"

// maxSequence is the largest value the 5-digit designation field can hold.
const maxSequence = 99999

// CounterStore is the durable counter port. AtomicIncrement must be a single
// linearizable read-modify-write: it returns the incremented value, and on
// failure must leave the counter unchanged so no code is half-issued.
type CounterStore interface {
	AtomicIncrement(ctx context.Context, name string) (int64, error)
}

var (
	countryPattern    = regexp.MustCompile(`^[A-Z]{2}$`)
	registrantPattern = regexp.MustCompile(`^[A-Z0-9]{3}$`)
)

// Allocator issues ISRC codes for the label's registrant assignment.
type Allocator struct {
	country    string
	registrant string
	counters   CounterStore
	clock      func() time.Time
}

// NewAllocator creates an Allocator for the given country and registrant
// codes backed by the durable counter store.
func NewAllocator(country, registrant string, counters CounterStore) (*Allocator, error) {
	if !countryPattern.MatchString(country) {
		return nil, fmt.Errorf("country code must be two uppercase letters, got %q", country)
	}
	if !registrantPattern.MatchString(registrant) {
		return nil, fmt.Errorf("registrant code must be three characters, got %q", registrant)
	}
	if counters == nil {
		return nil, fmt.Errorf("counter store is required")
	}
	return &Allocator{
		country:    country,
		registrant: registrant,
		counters:   counters,
		clock:      time.Now,
	}, nil
}

// WithClock overrides the allocator's time source. Used by tests to pin the
// year designation.
func (a *Allocator) WithClock(clock func() time.Time) *Allocator {
	a.clock = clock
	return a
}

// Allocate issues the next code.
//
// The counter increment is the atomic commit point: if it fails, no code is
// issued and the error propagates unchanged. Successive calls return strictly
// increasing sequence numbers; codes are never reused even when the owning
// track is later deleted.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	n, err := a.counters.AtomicIncrement(ctx, CounterName)
	if err != nil {
		return "", fmt.Errorf("failed to advance ISRC counter: %w", err)
	}
	if n > maxSequence {
		return "", fmt.Errorf("ISRC sequence space exhausted at %d", n)
	}
	return a.Format(a.clock().UTC().Year(), n), nil
}

// Format renders a code for the given allocation year and sequence number.
func (a *Allocator) Format(year int, sequence int64) string {
	return fmt.Sprintf("%s%s%02d%05d", a.country, a.registrant, year%100, sequence)
}
