// Package web implements an HTMX-based artist portal mirroring the TUI functionality.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The portal replicates the review workflow and adds an artist-facing
// submission form, using server-side rendering with HTMX for dynamic updates.
// Each view corresponds to a template and handler:
//
//  1. Queue: Server-rendered table of pending submissions with hx-get for detail
//  2. Detail: HTMX partial swap showing tracks + approve/reject buttons
//  3. Decision Confirm: Modal confirmation with hx-post trigger (reason input on reject)
//  4. Artist Dashboard: Own submissions with status badges and rejection reasons
//  5. Submission Form: Multi-track create form posting to the lifecycle service
//
// Core Components
//
//   - HTTP Server: reuses internal/server's router and middleware stack
//   - Service Integration: Uses the same lifecycle.Service and tasks.ReviewEngine as the TUI
//   - Session Management: Cookie-based sessions carrying the API token
//
// Routes
//
//	GET  /                       → Queue view (label managers) or dashboard (artists)
//	GET  /login                  → Token entry form
//	GET  /submissions/{id}       → HTMX partial: tracks + history
//	POST /submissions            → Create submission from form
//	POST /submissions/{id}/approve → Approve, swap row
//	POST /submissions/{id}/reject  → Reject with reason, swap row
//
// Templates
//
//   - base.html: Layout with navigation, acting-user badge
//   - queue.html: Table with hx-get on rows
//   - detail.html: Partial template for track listing and status history
//   - dashboard.html: Artist's own submissions with resubmit buttons
//   - submit.html: Create form with repeatable track rows
//
// # State Management
//
// All state lives in the existing SQLite store; the portal holds no
// in-memory state beyond session cookies, so every HTMX request re-renders
// from the lifecycle service and optimistic-concurrency conflicts surface
// as inline error partials.
//
// Status: planned.
package web
