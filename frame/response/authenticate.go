package response

import "github.com/riverscale/cqldriver/frame"

var _ frame.Response = (*Authenticate)(nil)

// Authenticate is the server's reply to STARTUP when the cluster requires
// authentication, naming the SASL authenticator class to use.
type Authenticate struct {
	Authenticator string
}

func (*Authenticate) OpCode() frame.OpCode {
	return frame.OpAuthenticate
}

// ParseAuthenticate decodes an AUTHENTICATE body. Never panics on
// malformed input — any short read is surfaced through b.Error() so the
// connection reader can close the connection per spec §4.1's framing rule.
func ParseAuthenticate(b *frame.Buffer) *Authenticate {
	return &Authenticate{Authenticator: b.ReadShortString()}
}
