package response

import "github.com/riverscale/cqldriver/frame"

var _ frame.Response = (*Ready)(nil)

// Ready is the server's reply to STARTUP when no authentication is
// required (spec §4.3 handshake).
type Ready struct{}

func (*Ready) OpCode() frame.OpCode {
	return frame.OpReady
}

func ParseReady(_ *frame.Buffer) *Ready {
	return &Ready{}
}
