package response

import "github.com/riverscale/cqldriver/frame"

var _ frame.Response = (*AuthSuccess)(nil)

// AuthSuccess ends the SASL exchange successfully, optionally carrying a
// final token.
type AuthSuccess struct {
	Token []byte
}

func (*AuthSuccess) OpCode() frame.OpCode {
	return frame.OpAuthSuccess
}

func ParseAuthSuccess(b *frame.Buffer) *AuthSuccess {
	return &AuthSuccess{Token: b.ReadBytes()}
}
