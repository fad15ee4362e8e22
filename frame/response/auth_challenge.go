package response

import "github.com/riverscale/cqldriver/frame"

var _ frame.Response = (*AuthChallenge)(nil)

// AuthChallenge carries the next SASL challenge token from the server.
type AuthChallenge struct {
	Token []byte
}

func (*AuthChallenge) OpCode() frame.OpCode {
	return frame.OpAuthChallenge
}

func ParseAuthChallenge(b *frame.Buffer) *AuthChallenge {
	return &AuthChallenge{Token: b.ReadBytes()}
}
