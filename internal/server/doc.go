// Package server provides HTTP routing, middleware, and the submission REST API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Middleware
//
// [Identity] resolves the Authorization bearer token to a persisted user and
// stores it in the request context; handlers read it back with [PrincipalFrom].
// Requests without a token pass through unauthenticated, and the submission
// handler answers those with 401.
//
// [Logging] records method, path, status, and duration per request.
// [RateLimit] enforces a global sustained request rate with bursts.
//
// # Submission API
//
// [SubmissionHandler] serves the full submission lifecycle under
// /api/submissions: create, list, detail, edit, delete, status changes,
// resubmission, release date assignment, track listing, status history, and
// the label-wide summary. Authorization and state-machine legality live in the
// lifecycle service; this package only translates its error kinds to status
// codes: denial 403, invalid transition and version conflict 409, validation
// 422, missing record 404, storage failure 503.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
