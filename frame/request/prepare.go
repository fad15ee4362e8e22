package request

import "github.com/riverscale/cqldriver/frame"

var _ frame.Request = (*Prepare)(nil)

// Prepare asks the server to parse content and return an opaque id plus
// bound-variable/result metadata (spec §3, "Prepared statement").
type Prepare struct {
	Content string
}

func (p *Prepare) WriteTo(b *frame.Buffer) {
	b.WriteLongString(p.Content)
}

func (*Prepare) OpCode() frame.OpCode {
	return frame.OpPrepare
}
