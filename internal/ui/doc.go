// Package ui implements an interactive review terminal using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for working through the submission queue:
//  1. [QueueView] : Browse pending submissions
//  2. [DetailView] : Inspect the track listing of a submission
//  3. [ConfirmView] : Confirm an approve or reject decision (rejections take a reason)
//  4. [ApplyView] : Apply the decision through the lifecycle service
//  5. [ResultView] : Display the resulting status
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Decisions run through the same lifecycle service as the HTTP API, so role checks
// and transition rules apply identically.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, a/x, y/n, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
