package request

import "github.com/riverscale/cqldriver/frame"

var _ frame.Request = (*Register)(nil)

// Register asks the server to push EVENT frames for the listed event
// types (spec §6's Events, TOPOLOGY_CHANGE/STATUS_CHANGE/SCHEMA_CHANGE).
type Register struct {
	EventTypes frame.StringList
}

func (r *Register) WriteTo(b *frame.Buffer) {
	b.WriteStringList(r.EventTypes)
}

func (*Register) OpCode() frame.OpCode {
	return frame.OpRegister
}
