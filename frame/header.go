package frame

import "fmt"

// Primitive wire integer types (CQL v4 §3).
type (
	Short = uint16
	Int   = int32
	Long  = int64
	Byte  = byte

	Bytes      = []byte
	StringList = []string
)

// UUID is a 16-byte RFC 4122 identifier, used both for host ids and for the
// `uuid`/`timeuuid` CQL types.
type UUID [16]byte

func (u UUID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// ProtocolVersion identifies the CQL binary protocol revision in the frame
// header. This driver speaks v4 only (spec §4.1).
type ProtocolVersion = Byte

const (
	CQLv4          ProtocolVersion = 0x04
	CQLv4Response  ProtocolVersion = 0x84
	directionMask  Byte           = 0x80
)

// StreamID correlates a request to its response on one connection. Negative
// ids are reserved for server-initiated EVENT frames (spec §4.1).
type StreamID = int16

// HeaderFlags carries the compression/tracing/custom-payload/warning bits.
type HeaderFlags = Byte

const (
	FlagCompression HeaderFlags = 0x01
	FlagTracing      HeaderFlags = 0x02
	FlagCustomPayload HeaderFlags = 0x04
	FlagWarning      HeaderFlags = 0x08
)

// OpCode identifies the frame body kind.
type OpCode = Byte

const (
	OpError         OpCode = 0x00
	OpStartup       OpCode = 0x01
	OpReady         OpCode = 0x02
	OpAuthenticate  OpCode = 0x03
	OpOptions       OpCode = 0x05
	OpSupported     OpCode = 0x06
	OpQuery         OpCode = 0x07
	OpResult        OpCode = 0x08
	OpPrepare       OpCode = 0x09
	OpExecute       OpCode = 0x0A
	OpRegister      OpCode = 0x0B
	OpEvent         OpCode = 0x0C
	OpBatch         OpCode = 0x0D
	OpAuthChallenge OpCode = 0x0E
	OpAuthResponse  OpCode = 0x0F
	OpAuthSuccess   OpCode = 0x10
)

// StartupOptions is the `[string map]` STARTUP body: CQL_VERSION is
// mandatory, COMPRESSION is optional (spec §4.3 handshake).
type StartupOptions map[string]string

// HeaderSize is the fixed 9-byte CQL v4 frame header length.
const HeaderSize = 9

// Header is the fixed-size preamble of every CQL frame: version, flags,
// stream id, opcode and body length.
type Header struct {
	Version  ProtocolVersion
	Flags    HeaderFlags
	StreamID StreamID
	OpCode   OpCode
	Length   Int
}

func (h Header) WriteTo(b *Buffer) {
	version := h.Version
	if version == 0 {
		version = CQLv4
	}
	b.WriteByte(version)
	b.WriteByte(h.Flags)
	b.WriteShort(uint16(h.StreamID))
	b.WriteByte(h.OpCode)
	// Length is back-patched by the writer once the body is serialized.
	b.WriteInt(0)
}

// ParseHeader decodes a Header from the front of b. Too few bytes is
// recorded as a sticky Buffer error rather than panicking; the version
// byte (including its direction bit) is returned unchecked.
func ParseHeader(b *Buffer) Header {
	var h Header
	h.Version = b.ReadByte()
	h.Flags = b.ReadByte()
	h.StreamID = int16(b.ReadShort())
	h.OpCode = b.ReadByte()
	h.Length = b.ReadInt()
	return h
}

// Request is satisfied by every outbound frame body.
type Request interface {
	WriteTo(b *Buffer)
	OpCode() OpCode
}

// Response is satisfied by every decoded inbound frame body.
type Response interface {
	OpCode() OpCode
}
