package transport

import (
	"errors"
	"testing"

	"github.com/riverscale/cqldriver/frame/response"
)

func TestFallthroughRetryPolicyNeverRetries(t *testing.T) {
	t.Parallel()
	d := FallthroughRetryPolicy{}.NewRetryDecider()

	ri := RetryInfo{Error: &response.Error{ErrorCode: response.ErrUnavailable}, Idempotent: true}
	if got := d.Decide(ri); got != DontRetry {
		t.Fatalf("got %v, want DontRetry", got)
	}
}

func TestDefaultRetryPolicyUnavailableRetriesNextNodeOnce(t *testing.T) {
	t.Parallel()
	d := DefaultRetryPolicy{}.NewRetryDecider()
	ri := RetryInfo{Error: &response.Error{ErrorCode: response.ErrUnavailable}}

	if got := d.Decide(ri); got != RetryNextNode {
		t.Fatalf("first attempt: got %v, want RetryNextNode", got)
	}
	if got := d.Decide(ri); got != DontRetry {
		t.Fatalf("second attempt: got %v, want DontRetry", got)
	}
}

func TestDefaultRetryPolicyResetAllowsRetryAgain(t *testing.T) {
	t.Parallel()
	d := DefaultRetryPolicy{}.NewRetryDecider()
	ri := RetryInfo{Error: &response.Error{ErrorCode: response.ErrUnavailable}}

	d.Decide(ri)
	d.Reset()
	if got := d.Decide(ri); got != RetryNextNode {
		t.Fatalf("got %v after Reset, want RetryNextNode", got)
	}
}

func TestDefaultRetryPolicyReadTimeoutOnlyRetriesWithQuorumAndData(t *testing.T) {
	t.Parallel()

	withData := &response.Error{
		ErrorCode:   response.ErrReadTimeout,
		ReadTimeout: &response.ReadTimeoutDetails{Received: 2, Required: 2, DataPresent: true},
	}
	d := DefaultRetryPolicy{}.NewRetryDecider()
	if got := d.Decide(RetryInfo{Error: withData}); got != RetrySameNode {
		t.Fatalf("got %v, want RetrySameNode", got)
	}

	noData := &response.Error{
		ErrorCode:   response.ErrReadTimeout,
		ReadTimeout: &response.ReadTimeoutDetails{Received: 2, Required: 2, DataPresent: false},
	}
	d2 := DefaultRetryPolicy{}.NewRetryDecider()
	if got := d2.Decide(RetryInfo{Error: noData}); got != DontRetry {
		t.Fatalf("got %v, want DontRetry (no data present)", got)
	}
}

func TestDefaultRetryPolicyWriteTimeoutOnlyRetriesIdempotentBatchLog(t *testing.T) {
	t.Parallel()

	batchLog := &response.Error{
		ErrorCode:    response.ErrWriteTimeout,
		WriteTimeout: &response.WriteTimeoutDetails{WriteType: "BATCH_LOG"},
	}

	d := DefaultRetryPolicy{}.NewRetryDecider()
	if got := d.Decide(RetryInfo{Error: batchLog, Idempotent: true}); got != RetrySameNode {
		t.Fatalf("idempotent batchlog: got %v, want RetrySameNode", got)
	}

	d2 := DefaultRetryPolicy{}.NewRetryDecider()
	if got := d2.Decide(RetryInfo{Error: batchLog, Idempotent: false}); got != DontRetry {
		t.Fatalf("non-idempotent batchlog: got %v, want DontRetry", got)
	}

	simple := &response.Error{
		ErrorCode:    response.ErrWriteTimeout,
		WriteTimeout: &response.WriteTimeoutDetails{WriteType: "SIMPLE"},
	}
	d3 := DefaultRetryPolicy{}.NewRetryDecider()
	if got := d3.Decide(RetryInfo{Error: simple, Idempotent: true}); got != DontRetry {
		t.Fatalf("idempotent simple write: got %v, want DontRetry", got)
	}
}

func TestDefaultRetryPolicyNonCodedErrorRetriesOnlyIfIdempotent(t *testing.T) {
	t.Parallel()
	plain := errors.New("connection reset")

	d := DefaultRetryPolicy{}.NewRetryDecider()
	if got := d.Decide(RetryInfo{Error: plain, Idempotent: true}); got != RetryNextNode {
		t.Fatalf("idempotent: got %v, want RetryNextNode", got)
	}

	d2 := DefaultRetryPolicy{}.NewRetryDecider()
	if got := d2.Decide(RetryInfo{Error: plain, Idempotent: false}); got != DontRetry {
		t.Fatalf("non-idempotent: got %v, want DontRetry", got)
	}
}
