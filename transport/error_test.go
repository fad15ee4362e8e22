package transport

import (
	"testing"

	"github.com/riverscale/cqldriver/frame/response"
)

type fakeResponse struct{}

func (fakeResponse) OpCode() byte { return 0x99 }

func TestResponseAsErrorPassesThroughCodedError(t *testing.T) {
	t.Parallel()

	e := &response.Error{ErrorCode: response.ErrSyntaxError, Message: "bad cql"}
	err := responseAsError(e)

	coded, ok := err.(response.CodedError)
	if !ok {
		t.Fatalf("got %T, want a response.CodedError", err)
	}
	if coded.Code() != response.ErrSyntaxError {
		t.Fatalf("got code %v, want ErrSyntaxError", coded.Code())
	}
}

func TestResponseAsErrorWrapsUnexpectedResponse(t *testing.T) {
	t.Parallel()

	err := responseAsError(fakeResponse{})
	if err == nil {
		t.Fatal("expected a non-nil error for an unexpected response")
	}
	if _, ok := err.(response.CodedError); ok {
		t.Fatal("a plain frame.Response must not satisfy CodedError")
	}
}
