// Package asyncx provides the small set of concurrency helpers the queue
// relies on: a bounded, settling worker pool, a deadline wrapper and
// retry with exponential backoff.
//
// # Worker pool
//
// [Pool] runs fn over items with at most workers goroutines (an
// errgroup with a limit) and always returns one [Result] per item, in
// input order. Failures are isolated: one item's error never cancels its
// siblings.
//
//	results := asyncx.Pool(ctx, 3, jobs, func(ctx context.Context, j *Job) (Outcome, error) {
//	    return worker.run(ctx, j)
//	})
//
// When ctx is cancelled mid-way, items not yet started settle with
// ctx.Err() and Started=false.
//
// # Timeouts
//
// [WithTimeout] bounds a call that may block on an external service. The
// caller gets context.DeadlineExceeded even if the callee ignores ctx.
//
//	meta, err := asyncx.WithTimeout(ctx, 30*time.Second, func(ctx context.Context) (Metadata, error) {
//	    return gen.Generate(ctx, input)
//	})
//
// # Retry
//
// [RetryWithBackoff] retries fn with a doubling delay and stops early when
// ctx is done.
package asyncx
