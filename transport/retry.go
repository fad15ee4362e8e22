package transport

import (
	"errors"

	"github.com/riverscale/cqldriver/frame"
	"github.com/riverscale/cqldriver/frame/response"
)

// RetryDecision is what a RetryDecider tells the caller to do after a
// failed request attempt (grounded on original_source's retry_policy.rs
// RetryDecision enum).
type RetryDecision int

const (
	DontRetry RetryDecision = iota
	RetrySameNode
	RetryNextNode
)

// RetryInfo is everything a RetryDecider needs to decide, gathered at the
// point of failure.
type RetryInfo struct {
	Error       error
	Idempotent  bool
	Consistency frame.Consistency
}

// RetryDecider holds the per-query "already retried" state that must
// never be shared across queries (spec: retry counters are per
// invocation, not per policy instance).
type RetryDecider interface {
	Decide(RetryInfo) RetryDecision
	Reset()
}

// RetryPolicy constructs a fresh RetryDecider for each query.
type RetryPolicy interface {
	NewRetryDecider() RetryDecider
}

// FallthroughRetryPolicy never retries; every failure is surfaced to the
// caller directly. Useful for callers who implement their own retry loop
// above the driver.
type FallthroughRetryPolicy struct{}

func (FallthroughRetryPolicy) NewRetryDecider() RetryDecider {
	return fallthroughDecider{}
}

type fallthroughDecider struct{}

func (fallthroughDecider) Decide(RetryInfo) RetryDecision { return DontRetry }
func (fallthroughDecider) Reset()                         {}

// DefaultRetryPolicy reproduces scylla's DefaultRetryPolicy decision
// table (retry_policy.rs) verbatim:
//   - Unavailable: retry on a different node, once.
//   - ReadTimeout: retry on the same node, once, only if a quorum of
//     replicas actually responded and data was present.
//   - WriteTimeout: retry once, only for idempotent BatchLog writes.
//   - IsBootstrapping: always retry on a different node (the contacted
//     node just isn't ready yet, not a quorum-affecting failure).
//   - Overloaded, ServerError, TruncateError, and errors that are not a
//     server ERROR response (I/O failures and the like): retry on a
//     different node once if the statement is idempotent, never otherwise.
//   - anything else, Unprepared included: no retry (Conn.Execute has
//     already re-prepared and retried once before the error gets here).
//
// The "once" cases share a single retry per query; IsBootstrapping does
// not use it up and is not limited by it.
type DefaultRetryPolicy struct{}

func (DefaultRetryPolicy) NewRetryDecider() RetryDecider {
	return &defaultDecider{}
}

type defaultDecider struct {
	retried bool
}

func (d *defaultDecider) Reset() {
	d.retried = false
}

func (d *defaultDecider) Decide(ri RetryInfo) RetryDecision {
	var coded response.CodedError
	isCoded := errors.As(ri.Error, &coded)
	if isCoded && coded.Code() == response.ErrIsBootstrapping {
		return RetryNextNode
	}

	if d.retried {
		return DontRetry
	}

	if !isCoded {
		if ri.Idempotent {
			d.retried = true
			return RetryNextNode
		}
		return DontRetry
	}

	switch coded.Code() {
	case response.ErrUnavailable:
		d.retried = true
		return RetryNextNode
	case response.ErrOverloaded, response.ErrServerError, response.ErrTruncateError:
		if ri.Idempotent {
			d.retried = true
			return RetryNextNode
		}
		return DontRetry
	case response.ErrReadTimeout:
		e, _ := coded.(*response.Error)
		if e != nil && e.ReadTimeout != nil &&
			e.ReadTimeout.Received >= e.ReadTimeout.Required && e.ReadTimeout.DataPresent {
			d.retried = true
			return RetrySameNode
		}
		return DontRetry
	case response.ErrWriteTimeout:
		e, _ := coded.(*response.Error)
		if ri.Idempotent && e != nil && e.WriteTimeout != nil && e.WriteTimeout.WriteType == "BATCH_LOG" {
			d.retried = true
			return RetrySameNode
		}
		return DontRetry
	default:
		return DontRetry
	}
}
