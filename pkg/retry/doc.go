// Package retry wraps fallible operations with a bounded number of attempts.
//
// A Config (or a reusable Retrier built from one) is a policy value that can
// be composed around any operation:
//
//	records, err := retry.Attempt(ctx, retrier, func(ctx context.Context) ([]ingest.RawRecord, error) {
//		return ingester.Ingest(ctx, handle, window)
//	})
//
// Attempts are always bounded. When they are exhausted the last error is
// returned wrapped with %w, so callers can still inspect its type with
// errors.As. Typed errors from twharvest/pkg/errors decide retryability via
// DefaultRetryIf; context cancellation is never retried.
package retry
