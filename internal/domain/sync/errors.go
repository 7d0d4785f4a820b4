package sync

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies adapter and engine failures for the retry policy.
type FailureKind string

const (
	// KindValidation failures are rejected before any remote call and never
	// retried.
	KindValidation FailureKind = "validation"

	// KindTransient failures (timeout, 5xx, rate limit) are retried with
	// backoff up to the configured bound, then escalated.
	KindTransient FailureKind = "transient"

	// KindIdentityMismatch means the remote account semantically no longer
	// belongs to this user. Immediately unrecoverable, no retry.
	KindIdentityMismatch FailureKind = "identity_mismatch"

	// KindUnrecoverable triggers the escalation path: delete the local
	// link, notify the user, log for operators.
	KindUnrecoverable FailureKind = "unrecoverable"
)

type kindError struct {
	kind FailureKind
	err  error
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

func (e *kindError) Unwrap() error { return e.err }

// Transient tags err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: KindTransient, err: err}
}

// Transientf tags a formatted error as retryable.
func Transientf(format string, args ...any) error {
	return &kindError{kind: KindTransient, err: fmt.Errorf(format, args...)}
}

// IdentityMismatch tags err as an identity-mismatch failure.
func IdentityMismatch(err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: KindIdentityMismatch, err: err}
}

// Unrecoverable tags err as permanently failed.
func Unrecoverable(err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: KindUnrecoverable, err: err}
}

// Validation tags err as a pre-flight rejection.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: KindValidation, err: err}
}

// KindOf classifies an error chain. Deadline and cancellation errors are
// transient; untagged errors default to transient so a flaky adapter gets the
// bounded retry path rather than immediate account teardown.
func KindOf(err error) FailureKind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransient
	}
	return KindTransient
}

// IsRetryable reports whether the failure is subject to the retry policy.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}
