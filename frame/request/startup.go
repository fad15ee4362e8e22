package request

import "github.com/riverscale/cqldriver/frame"

var _ frame.Request = (*Startup)(nil)

// Startup is the first frame sent on every new connection.
type Startup struct {
	Options frame.StartupOptions
}

func (s *Startup) WriteTo(b *frame.Buffer) {
	b.WriteStringMap(s.Options)
}

func (*Startup) OpCode() frame.OpCode {
	return frame.OpStartup
}
