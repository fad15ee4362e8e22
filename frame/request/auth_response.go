package request

import "github.com/riverscale/cqldriver/frame"

var _ frame.Request = (*AuthResponse)(nil)

// AuthResponse carries a SASL token back to the server after an
// AUTHENTICATE challenge (spec §4.3: "authentication handling is an
// optional extension point, not detailed here" — the frame shape is
// still part of the wire protocol this codec must speak).
type AuthResponse struct {
	Token []byte
}

func (a *AuthResponse) WriteTo(b *frame.Buffer) {
	b.WriteBytes(a.Token)
}

func (*AuthResponse) OpCode() frame.OpCode {
	return frame.OpAuthResponse
}
