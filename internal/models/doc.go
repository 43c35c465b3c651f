// Package models defines domain entities and persistence interfaces for the label submission service.
//
// The package contains the persistent entities backing the submission lifecycle:
//   - [User] : Principals issued by the identity layer, carrying a closed [Role]
//   - [Submission] : A release request moving through the [Status] state machine
//   - [Track] : One audio item of a submission, carrying its ISRC once allocated
//   - [StatusChange] : An audit row for every applied status transition
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
//
// Submissions additionally carry a version counter for optimistic concurrency control;
// two concurrent writers racing on the same record cannot both succeed from the same version.
package models
