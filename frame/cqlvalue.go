package frame

import (
	"fmt"
	"math"
	"math/big"
	"net"

	"gopkg.in/inf.v0"
)

// CqlValue is the tagged variant tree spec §3 describes: a sum type, not a
// class hierarchy. Concrete variants below satisfy it with a marker method.
// The interface has no conversion methods: callers convert to host types
// with a type switch on the concrete variant.
type CqlValue interface {
	isCqlValue()
	Type() Option
}

type CqlInt int32

func (CqlInt) isCqlValue()    {}
func (CqlInt) Type() Option   { return Option{ID: IntID} }

type CqlBigInt int64

func (CqlBigInt) isCqlValue()  {}
func (CqlBigInt) Type() Option { return Option{ID: BigIntID} }

type CqlSmallInt int16

func (CqlSmallInt) isCqlValue()  {}
func (CqlSmallInt) Type() Option { return Option{ID: SmallIntID} }

type CqlTinyInt int8

func (CqlTinyInt) isCqlValue()  {}
func (CqlTinyInt) Type() Option { return Option{ID: TinyIntID} }

type CqlVarint []byte // big-endian two's complement, arbitrary precision

func (CqlVarint) isCqlValue()  {}
func (CqlVarint) Type() Option { return Option{ID: VarintID} }

type CqlDecimal struct {
	Unscaled *inf.Dec
}

func (CqlDecimal) isCqlValue()  {}
func (CqlDecimal) Type() Option { return Option{ID: DecimalID} }

type CqlBoolean bool

func (CqlBoolean) isCqlValue()  {}
func (CqlBoolean) Type() Option { return Option{ID: BooleanID} }

type CqlFloat float32

func (CqlFloat) isCqlValue()  {}
func (CqlFloat) Type() Option { return Option{ID: FloatID} }

type CqlDouble float64

func (CqlDouble) isCqlValue()  {}
func (CqlDouble) Type() Option { return Option{ID: DoubleID} }

// CqlAscii is US-ASCII text (the `ascii` CQL type).
type CqlAscii string

func (CqlAscii) isCqlValue()  {}
func (CqlAscii) Type() Option { return Option{ID: AsciiID} }

// CqlText is UTF-8 text (the `text`/`varchar` CQL type).
type CqlText string

func (CqlText) isCqlValue()  {}
func (CqlText) Type() Option { return Option{ID: VarcharID} }

type CqlBlob []byte

func (CqlBlob) isCqlValue()  {}
func (CqlBlob) Type() Option { return Option{ID: BlobID} }

type CqlCounter int64

func (CqlCounter) isCqlValue()  {}
func (CqlCounter) Type() Option { return Option{ID: CounterID} }

// CqlTimestamp is milliseconds since the Unix epoch.
type CqlTimestamp int64

func (CqlTimestamp) isCqlValue()  {}
func (CqlTimestamp) Type() Option { return Option{ID: TimestampID} }

type CqlUUID UUID

func (CqlUUID) isCqlValue()  {}
func (CqlUUID) Type() Option { return Option{ID: UUIDID} }

type CqlTimeUUID UUID

func (CqlTimeUUID) isCqlValue()  {}
func (CqlTimeUUID) Type() Option { return Option{ID: TimeUUIDID} }

// CqlInet is a 4- or 16-byte address with no port (spec §4.2).
type CqlInet struct {
	IP net.IP
}

func (CqlInet) isCqlValue()  {}
func (CqlInet) Type() Option { return Option{ID: InetID} }

type CqlSet struct {
	Elem     Option
	Elements []CqlValue
}

func (CqlSet) isCqlValue()  {}
func (s CqlSet) Type() Option { return Option{ID: SetID, Set: &SetOption{Element: s.Elem}} }

type CqlList struct {
	Elem     Option
	Elements []CqlValue
}

func (CqlList) isCqlValue()  {}
func (l CqlList) Type() Option { return Option{ID: ListID, List: &ListOption{Element: l.Elem}} }

type CqlMapEntry struct {
	Key   CqlValue
	Value CqlValue
}

type CqlMap struct {
	KeyType   Option
	ValueType Option
	Entries   []CqlMapEntry
}

func (CqlMap) isCqlValue() {}
func (m CqlMap) Type() Option {
	return Option{ID: MapID, Map: &MapOption{Key: m.KeyType, Value: m.ValueType}}
}

type CqlTuple struct {
	ElemTypes []Option
	Elements  []*CqlValue // nil entry == NULL component
}

func (CqlTuple) isCqlValue() {}
func (t CqlTuple) Type() Option {
	return Option{ID: TupleID, Tuple: &TupleOption{Elements: t.ElemTypes}}
}

type CqlUDTField struct {
	Name  string
	Value *CqlValue // nil == NULL field
}

type CqlUDT struct {
	Keyspace string
	Name     string
	Fields   []CqlUDTField
}

func (CqlUDT) isCqlValue() {}
func (u CqlUDT) Type() Option {
	names := make([]string, len(u.Fields))
	types := make([]Option, len(u.Fields))
	for i, f := range u.Fields {
		names[i] = f.Name
		if f.Value != nil {
			types[i] = (*f.Value).Type()
		}
	}
	return Option{ID: UDTID, UDT: &UDTOption{Keyspace: u.Keyspace, Name: u.Name, FieldNames: names, FieldTypes: types}}
}

// DecodeValue decodes raw (already length-stripped) bytes per the wire
// layout CQL v4 specifies for typ (spec §4.2). Nested composites recurse.
func DecodeValue(typ Option, raw []byte) (CqlValue, error) {
	switch typ.ID {
	case CustomID:
		return CqlBlob(raw), nil
	case AsciiID:
		return CqlAscii(raw), nil
	case VarcharID:
		return CqlText(raw), nil
	case BlobID:
		return CqlBlob(raw), nil
	case BooleanID:
		if len(raw) < 1 {
			return nil, fmt.Errorf("frame: boolean: empty value")
		}
		return CqlBoolean(raw[0] != 0), nil
	case IntID:
		if len(raw) != 4 {
			return nil, fmt.Errorf("frame: int: expected 4 bytes, got %d", len(raw))
		}
		return CqlInt(beInt32(raw)), nil
	case BigIntID:
		if len(raw) != 8 {
			return nil, fmt.Errorf("frame: bigint: expected 8 bytes, got %d", len(raw))
		}
		return CqlBigInt(beInt64(raw)), nil
	case CounterID:
		if len(raw) != 8 {
			return nil, fmt.Errorf("frame: counter: expected 8 bytes, got %d", len(raw))
		}
		return CqlCounter(beInt64(raw)), nil
	case SmallIntID:
		if len(raw) != 2 {
			return nil, fmt.Errorf("frame: smallint: expected 2 bytes, got %d", len(raw))
		}
		return CqlSmallInt(int16(raw[0])<<8 | int16(raw[1])), nil
	case TinyIntID:
		if len(raw) != 1 {
			return nil, fmt.Errorf("frame: tinyint: expected 1 byte, got %d", len(raw))
		}
		return CqlTinyInt(int8(raw[0])), nil
	case FloatID:
		if len(raw) != 4 {
			return nil, fmt.Errorf("frame: float: expected 4 bytes, got %d", len(raw))
		}
		return CqlFloat(math.Float32frombits(uint32(beInt32(raw)))), nil
	case DoubleID:
		if len(raw) != 8 {
			return nil, fmt.Errorf("frame: double: expected 8 bytes, got %d", len(raw))
		}
		return CqlDouble(math.Float64frombits(uint64(beInt64(raw)))), nil
	case TimestampID:
		if len(raw) != 8 {
			return nil, fmt.Errorf("frame: timestamp: expected 8 bytes, got %d", len(raw))
		}
		return CqlTimestamp(beInt64(raw)), nil
	case VarintID:
		return CqlVarint(append([]byte(nil), raw...)), nil
	case DecimalID:
		return decodeDecimal(raw)
	case UUIDID:
		return CqlUUID(decodeUUIDBytes(raw)), nil
	case TimeUUIDID:
		return CqlTimeUUID(decodeUUIDBytes(raw)), nil
	case InetID:
		switch len(raw) {
		case 4, 16:
			ip := make(net.IP, len(raw))
			copy(ip, raw)
			return CqlInet{IP: ip}, nil
		default:
			return nil, fmt.Errorf("frame: inet: expected 4 or 16 bytes, got %d", len(raw))
		}
	case ListID:
		return decodeList(typ, raw)
	case SetID:
		return decodeSet(typ, raw)
	case MapID:
		return decodeMap(typ, raw)
	case TupleID:
		return decodeTuple(typ, raw)
	case UDTID:
		return decodeUDT(typ, raw)
	default:
		return CqlBlob(raw), nil
	}
}

func beInt32(b []byte) int32 {
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

func beInt64(b []byte) int64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return int64(v)
}

func decodeUUIDBytes(raw []byte) UUID {
	var u UUID
	copy(u[:], raw)
	return u
}

func decodeDecimal(raw []byte) (CqlValue, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("frame: decimal: expected at least 4 bytes, got %d", len(raw))
	}
	scale := beInt32(raw[:4])
	unscaled := new(big.Int).SetBytes(raw[4:])
	// CQL decimal unscaled is a signed two's-complement varint; big.Int.SetBytes
	// treats it as unsigned magnitude, so negative values need the high bit check.
	if len(raw) > 4 && raw[4]&0x80 != 0 {
		unscaled.Sub(unscaled, new(big.Int).Lsh(big.NewInt(1), uint(8*(len(raw)-4))))
	}
	d := inf.NewDecBig(unscaled, inf.Scale(scale))
	return CqlDecimal{Unscaled: d}, nil
}

func decodeList(typ Option, raw []byte) (CqlValue, error) {
	elems, err := decodeCollectionElements(typ.List.Element, raw)
	if err != nil {
		return nil, err
	}
	return CqlList{Elem: typ.List.Element, Elements: elems}, nil
}

func decodeSet(typ Option, raw []byte) (CqlValue, error) {
	elems, err := decodeCollectionElements(typ.Set.Element, raw)
	if err != nil {
		return nil, err
	}
	return CqlSet{Elem: typ.Set.Element, Elements: elems}, nil
}

// decodeCollectionElements reads `[int n][ [int len][bytes] ]×n`. A -1
// child length is rejected for set elements per the Open Question decision
// in SPEC_FULL.md §8.1 (NULL is not a valid set/list element).
func decodeCollectionElements(elemType Option, raw []byte) ([]CqlValue, error) {
	b := &Buffer{buf: raw}
	n := b.ReadInt()
	if b.Error() != nil {
		return nil, b.Error()
	}
	out := make([]CqlValue, 0, n)
	for i := Int(0); i < n; i++ {
		data := b.ReadBytes()
		if b.Error() != nil {
			return nil, b.Error()
		}
		if data == nil {
			return nil, fmt.Errorf("frame: NULL not allowed as a collection element")
		}
		v, err := DecodeValue(elemType, data)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeMap(typ Option, raw []byte) (CqlValue, error) {
	b := &Buffer{buf: raw}
	n := b.ReadInt()
	if b.Error() != nil {
		return nil, b.Error()
	}
	entries := make([]CqlMapEntry, 0, n)
	for i := Int(0); i < n; i++ {
		kRaw := b.ReadBytes()
		vRaw := b.ReadBytes()
		if b.Error() != nil {
			return nil, b.Error()
		}
		if kRaw == nil {
			return nil, fmt.Errorf("frame: NULL not allowed as a map key")
		}
		k, err := DecodeValue(typ.Map.Key, kRaw)
		if err != nil {
			return nil, err
		}
		var v CqlValue
		if vRaw != nil {
			v, err = DecodeValue(typ.Map.Value, vRaw)
			if err != nil {
				return nil, err
			}
		}
		entries = append(entries, CqlMapEntry{Key: k, Value: v})
	}
	return CqlMap{KeyType: typ.Map.Key, ValueType: typ.Map.Value, Entries: entries}, nil
}

func decodeTuple(typ Option, raw []byte) (CqlValue, error) {
	b := &Buffer{buf: raw}
	elems := make([]*CqlValue, len(typ.Tuple.Elements))
	for i, et := range typ.Tuple.Elements {
		data := b.ReadBytes()
		if b.Error() != nil {
			return nil, b.Error()
		}
		if data == nil {
			continue
		}
		v, err := DecodeValue(et, data)
		if err != nil {
			return nil, err
		}
		elems[i] = &v
	}
	return CqlTuple{ElemTypes: typ.Tuple.Elements, Elements: elems}, nil
}

func decodeUDT(typ Option, raw []byte) (CqlValue, error) {
	b := &Buffer{buf: raw}
	fields := make([]CqlUDTField, len(typ.UDT.FieldNames))
	for i, name := range typ.UDT.FieldNames {
		fields[i].Name = name
		if b.pos >= len(b.buf) {
			continue // trailing fields omitted on the wire default to NULL
		}
		data := b.ReadBytes()
		if b.Error() != nil {
			return nil, b.Error()
		}
		if data == nil {
			continue
		}
		v, err := DecodeValue(typ.UDT.FieldTypes[i], data)
		if err != nil {
			return nil, err
		}
		fields[i].Value = &v
	}
	return CqlUDT{Keyspace: typ.UDT.Keyspace, Name: typ.UDT.Name, Fields: fields}, nil
}
