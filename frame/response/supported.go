package response

import "github.com/riverscale/cqldriver/frame"

var _ frame.Response = (*Supported)(nil)

// Supported lists the protocol options the server accepts, in reply to
// OPTIONS (spec §4.1: "[string multimap]").
type Supported struct {
	Options map[string][]string
}

func (*Supported) OpCode() frame.OpCode {
	return frame.OpSupported
}

func ParseSupported(b *frame.Buffer) *Supported {
	return &Supported{Options: b.ReadStringMultiMap()}
}
