// Package frame implements the CQL binary protocol v4 wire format: frame
// headers, the request/response body primitives, type tags and the values
// they describe.
package frame

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Buffer is an append-only write cursor paired with a read cursor over the
// same backing slice. Requests are built by writing into it; responses are
// decoded by reading out of it. A single sticky error short-circuits every
// further read so callers can check it once at the end of a decode.
type Buffer struct {
	buf []byte
	pos int
	err error
}

func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.pos = 0
	b.err = nil
}

func (b *Buffer) Bytes() []byte {
	return b.buf
}

func (b *Buffer) Len() int {
	return len(b.buf)
}

func (b *Buffer) Error() error {
	return b.err
}

func (b *Buffer) recordErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Write implements io.Writer so Buffer can be the target of io.CopyN.
func (b *Buffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *Buffer) WriteByte(v byte) {
	b.buf = append(b.buf, v)
}

func (b *Buffer) WriteShort(v Short) {
	b.buf = append(b.buf, byte(v>>8), byte(v))
}

func (b *Buffer) WriteInt(v Int) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Buffer) WriteLong(v Long) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Buffer) WriteByteMask(v byte) {
	b.WriteByte(v)
}

func (b *Buffer) WriteShortString(s string) {
	if len(s) > math.MaxUint16 {
		b.recordErr(fmt.Errorf("frame: short string too long: %d bytes", len(s)))
		return
	}
	b.WriteShort(Short(len(s)))
	b.buf = append(b.buf, s...)
}

func (b *Buffer) WriteLongString(s string) {
	b.WriteInt(Int(len(s)))
	b.buf = append(b.buf, s...)
}

func (b *Buffer) WriteStringList(l StringList) {
	b.WriteShort(Short(len(l)))
	for _, s := range l {
		b.WriteShortString(s)
	}
}

func (b *Buffer) WriteBytes(v Bytes) {
	if v == nil {
		b.WriteInt(-1)
		return
	}
	b.WriteInt(Int(len(v)))
	b.buf = append(b.buf, v...)
}

// WriteShortBytes writes a [bytes] value with a 2-byte length prefix, used
// for the compound partition-key serialization (spec §4.8).
func (b *Buffer) WriteShortBytes(v []byte) {
	b.WriteShort(Short(len(v)))
	b.buf = append(b.buf, v...)
}

func (b *Buffer) WriteStringMap(m map[string]string) {
	b.WriteShort(Short(len(m)))
	for k, v := range m {
		b.WriteShortString(k)
		b.WriteShortString(v)
	}
}

func (b *Buffer) WriteConsistency(c Consistency) {
	b.WriteShort(Short(c))
}

func (b *Buffer) WriteUUID(u UUID) {
	b.buf = append(b.buf, u[:]...)
}

// Read primitives. Each records a sticky error and returns the zero value
// on short input, so callers can chain reads without checking every call.

func (b *Buffer) readN(n int) []byte {
	if b.err != nil {
		return nil
	}
	if b.pos+n > len(b.buf) {
		b.recordErr(fmt.Errorf("frame: %w: need %d bytes, have %d", io.ErrUnexpectedEOF, n, len(b.buf)-b.pos))
		return nil
	}
	out := b.buf[b.pos : b.pos+n]
	b.pos += n
	return out
}

func (b *Buffer) ReadByte() byte {
	v := b.readN(1)
	if v == nil {
		return 0
	}
	return v[0]
}

func (b *Buffer) ReadShort() Short {
	v := b.readN(2)
	if v == nil {
		return 0
	}
	return Short(binary.BigEndian.Uint16(v))
}

func (b *Buffer) ReadInt() Int {
	v := b.readN(4)
	if v == nil {
		return 0
	}
	return Int(binary.BigEndian.Uint32(v))
}

func (b *Buffer) ReadLong() Long {
	v := b.readN(8)
	if v == nil {
		return 0
	}
	return Long(binary.BigEndian.Uint64(v))
}

func (b *Buffer) ReadShortString() string {
	n := int(b.ReadShort())
	v := b.readN(n)
	return string(v)
}

func (b *Buffer) ReadLongString() string {
	n := int(b.ReadInt())
	if n < 0 {
		b.recordErr(fmt.Errorf("frame: negative long string length %d", n))
		return ""
	}
	v := b.readN(n)
	return string(v)
}

func (b *Buffer) ReadStringList() StringList {
	n := int(b.ReadShort())
	out := make(StringList, n)
	for i := range out {
		out[i] = b.ReadShortString()
	}
	return out
}

// ReadBytes reads an [bytes] value. A length of -1 means NULL, reported as
// a nil slice distinct from a present zero-length slice.
func (b *Buffer) ReadBytes() Bytes {
	n := b.ReadInt()
	if n < 0 {
		return nil
	}
	v := b.readN(int(n))
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// ReadShortBytes reads a [short bytes] value (2-byte length prefix, no
// NULL encoding) as used by compound partition keys and SUPPORTED options.
func (b *Buffer) ReadShortBytes() []byte {
	n := int(b.ReadShort())
	v := b.readN(n)
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

func (b *Buffer) ReadStringMap() map[string]string {
	n := int(b.ReadShort())
	out := make(map[string]string, n)
	for i := 0; i < n; i++ {
		k := b.ReadShortString()
		v := b.ReadShortString()
		out[k] = v
	}
	return out
}

func (b *Buffer) ReadStringMultiMap() map[string][]string {
	n := int(b.ReadShort())
	out := make(map[string][]string, n)
	for i := 0; i < n; i++ {
		k := b.ReadShortString()
		out[k] = b.ReadStringList()
	}
	return out
}

func (b *Buffer) ReadConsistency() Consistency {
	return Consistency(b.ReadShort())
}

func (b *Buffer) ReadUUID() UUID {
	var u UUID
	v := b.readN(16)
	if v == nil {
		return u
	}
	copy(u[:], v)
	return u
}

// CopyBuffer writes a whole Buffer's bytes to w, for use as the final
// flush of an outbound frame.
func CopyBuffer(b *Buffer, w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// BufferWriter exposes a Buffer as an io.Writer for use with io.CopyN when
// reading frame bytes directly off the wire into the buffer.
func BufferWriter(b *Buffer) io.Writer {
	return b
}
