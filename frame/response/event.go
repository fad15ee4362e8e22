package response

import "github.com/riverscale/cqldriver/frame"

var _ frame.Response = (*Event)(nil)

// Event is a server-initiated push notification the client receives after
// REGISTERing for TOPOLOGY_CHANGE/STATUS_CHANGE/SCHEMA_CHANGE (spec §3,
// "EventType"). The topology-refresh consumer of these is out of scope
// (spec §1); the engine only needs to decode and hand them off.
type Event struct {
	Type string

	// Populated when Type == "TOPOLOGY_CHANGE" or "STATUS_CHANGE".
	ChangeType string
	Address    frame.CqlInet

	// Populated when Type == "SCHEMA_CHANGE".
	SchemaChangeType string
	Keyspace         string
	Target           string
	Name             string
	Arguments        []string
}

func (*Event) OpCode() frame.OpCode {
	return frame.OpEvent
}

func ParseEvent(b *frame.Buffer) *Event {
	e := &Event{Type: b.ReadShortString()}
	switch e.Type {
	case "TOPOLOGY_CHANGE", "STATUS_CHANGE":
		e.ChangeType = b.ReadShortString()
		e.Address = parseInetAddr(b)
	case "SCHEMA_CHANGE":
		e.SchemaChangeType = b.ReadShortString()
		e.Target = b.ReadShortString()
		switch e.Target {
		case "KEYSPACE":
			e.Keyspace = b.ReadShortString()
		case "TABLE", "TYPE":
			e.Keyspace = b.ReadShortString()
			e.Name = b.ReadShortString()
		case "FUNCTION", "AGGREGATE":
			e.Keyspace = b.ReadShortString()
			e.Name = b.ReadShortString()
			e.Arguments = b.ReadStringList()
		}
	}
	return e
}

// parseInetAddr decodes a `[inet]` value: a `[byte]` length (4 or 16)
// followed by the address bytes and a 4-byte port.
func parseInetAddr(b *frame.Buffer) frame.CqlInet {
	n := int(b.ReadByte())
	addr := make([]byte, n)
	for i := range addr {
		addr[i] = b.ReadByte()
	}
	_ = b.ReadInt() // port, unused by event consumers
	v, _ := frame.DecodeValue(frame.Option{ID: frame.InetID}, addr)
	inet, _ := v.(frame.CqlInet)
	return inet
}
