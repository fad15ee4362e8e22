package transport

import (
	"fmt"

	"github.com/riverscale/cqldriver/frame"
	. "github.com/riverscale/cqldriver/frame/response"
)

// responseAsError turns an unexpected response into an error: a
// CodedError (ERROR frame) is returned as-is so callers can type-assert
// down to the DBError taxonomy; anything else is a protocol violation.
func responseAsError(res frame.Response) error {
	if v, ok := res.(CodedError); ok {
		return v
	}
	return fmt.Errorf("unexpected response %T, %+v", res, res)
}
