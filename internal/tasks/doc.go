// Package tasks provides the bulk review engine.
//
// [ReviewEngine.BulkAllocate] backfills missing ISRCs across many submissions
// with a bounded worker pool, a token-bucket rate limit, and non-blocking
// progress reporting. [ReviewEngine.Digest] assembles the snapshot the
// formatter package renders to CSV, Markdown, or plain text.
//
// Authorization is delegated entirely to the lifecycle service: the engine
// carries the acting user through every call, so a non-manager attempting a
// backfill fails per submission with an authorization error in the result
// set rather than up front.
package tasks
