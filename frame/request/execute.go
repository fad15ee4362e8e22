package request

import "github.com/riverscale/cqldriver/frame"

var _ frame.Request = (*Execute)(nil)

// Execute runs a previously PREPAREd statement by its server-assigned id
// (spec §3, §4.3: "a prepared statement id is valid only on nodes that
// have observed its PREPARE").
type Execute struct {
	ID         []byte
	Parameters QueryParameters
}

func (e *Execute) WriteTo(b *frame.Buffer) {
	b.WriteShortBytes(e.ID)
	e.Parameters.WriteTo(b)
}

func (*Execute) OpCode() frame.OpCode {
	return frame.OpExecute
}
