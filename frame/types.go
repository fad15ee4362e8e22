package frame

import "fmt"

// OptionID is the wire tag identifying a column's CQL type (spec §4.2,
// "ColumnType descriptor"). Grounded on result.rs's ColumnType enum and the
// teacher's gocql/types.go (WrapOption, frame.ListID/SetID/MapID/UDTID).
type OptionID = Short

const (
	CustomID    OptionID = 0x0000
	AsciiID     OptionID = 0x0001
	BigIntID    OptionID = 0x0002
	BlobID      OptionID = 0x0003
	BooleanID   OptionID = 0x0004
	CounterID   OptionID = 0x0005
	DecimalID   OptionID = 0x0006
	DoubleID    OptionID = 0x0007
	FloatID     OptionID = 0x0008
	IntID       OptionID = 0x0009
	TimestampID OptionID = 0x000B
	UUIDID      OptionID = 0x000C
	VarcharID   OptionID = 0x000D
	VarintID    OptionID = 0x000E
	TimeUUIDID  OptionID = 0x000F
	InetID      OptionID = 0x0010
	DateID      OptionID = 0x0011
	TimeID      OptionID = 0x0012
	SmallIntID  OptionID = 0x0013
	TinyIntID   OptionID = 0x0014
	DurationID  OptionID = 0x0015
	ListID      OptionID = 0x0020
	MapID       OptionID = 0x0021
	SetID       OptionID = 0x0022
	UDTID       OptionID = 0x0030
	TupleID     OptionID = 0x0031
)

// ListOption describes a `list<T>` element type.
type ListOption struct {
	Element Option
}

// SetOption describes a `set<T>` element type.
type SetOption struct {
	Element Option
}

// MapOption describes a `map<K, V>` key/value type pair.
type MapOption struct {
	Key   Option
	Value Option
}

// UDTOption describes a user-defined type: its keyspace/name and the
// ordered field names/types.
type UDTOption struct {
	Keyspace   string
	Name       string
	FieldNames []string
	FieldTypes []Option
}

// TupleOption describes a `tuple<...>` element type sequence.
type TupleOption struct {
	Elements []Option
}

// Option is the self-describing ColumnType tag tree CqlValue decoding
// requires (spec §3, "CqlValue ... Decoding from bytes requires a
// ColumnType descriptor"). Composite kinds carry their nested Option(s) in
// the matching field; primitives only set ID.
type Option struct {
	ID     OptionID
	Custom string
	List   *ListOption
	Set    *SetOption
	Map    *MapOption
	UDT    *UDTOption
	Tuple  *TupleOption
}

func (o Option) WriteTo(b *Buffer) {
	b.WriteShort(o.ID)
	switch o.ID {
	case CustomID:
		b.WriteShortString(o.Custom)
	case ListID:
		o.List.Element.WriteTo(b)
	case SetID:
		o.Set.Element.WriteTo(b)
	case MapID:
		o.Map.Key.WriteTo(b)
		o.Map.Value.WriteTo(b)
	case UDTID:
		b.WriteShortString(o.UDT.Keyspace)
		b.WriteShortString(o.UDT.Name)
		b.WriteShort(Short(len(o.UDT.FieldNames)))
		for i, name := range o.UDT.FieldNames {
			b.WriteShortString(name)
			o.UDT.FieldTypes[i].WriteTo(b)
		}
	case TupleID:
		b.WriteShort(Short(len(o.Tuple.Elements)))
		for i := range o.Tuple.Elements {
			o.Tuple.Elements[i].WriteTo(b)
		}
	}
}

// ParseOption decodes a single [option] value (CQL v4 §3.2.5).
func ParseOption(b *Buffer) Option {
	var o Option
	o.ID = b.ReadShort()
	switch o.ID {
	case CustomID:
		o.Custom = b.ReadShortString()
	case ListID:
		elem := ParseOption(b)
		o.List = &ListOption{Element: elem}
	case SetID:
		elem := ParseOption(b)
		o.Set = &SetOption{Element: elem}
	case MapID:
		key := ParseOption(b)
		val := ParseOption(b)
		o.Map = &MapOption{Key: key, Value: val}
	case UDTID:
		u := &UDTOption{
			Keyspace: b.ReadShortString(),
			Name:     b.ReadShortString(),
		}
		n := int(b.ReadShort())
		u.FieldNames = make([]string, n)
		u.FieldTypes = make([]Option, n)
		for i := 0; i < n; i++ {
			u.FieldNames[i] = b.ReadShortString()
			u.FieldTypes[i] = ParseOption(b)
		}
		o.UDT = u
	case TupleID:
		n := int(b.ReadShort())
		t := &TupleOption{Elements: make([]Option, n)}
		for i := 0; i < n; i++ {
			t.Elements[i] = ParseOption(b)
		}
		o.Tuple = t
	}
	return o
}

func (o Option) String() string {
	switch o.ID {
	case ListID:
		return fmt.Sprintf("list<%s>", o.List.Element)
	case SetID:
		return fmt.Sprintf("set<%s>", o.Set.Element)
	case MapID:
		return fmt.Sprintf("map<%s, %s>", o.Map.Key, o.Map.Value)
	case UDTID:
		return fmt.Sprintf("%s.%s", o.UDT.Keyspace, o.UDT.Name)
	case TupleID:
		return "tuple"
	case CustomID:
		return fmt.Sprintf("custom(%s)", o.Custom)
	default:
		return optionIDName(o.ID)
	}
}

func optionIDName(id OptionID) string {
	switch id {
	case AsciiID:
		return "ascii"
	case BigIntID:
		return "bigint"
	case BlobID:
		return "blob"
	case BooleanID:
		return "boolean"
	case CounterID:
		return "counter"
	case DecimalID:
		return "decimal"
	case DoubleID:
		return "double"
	case FloatID:
		return "float"
	case IntID:
		return "int"
	case TimestampID:
		return "timestamp"
	case UUIDID:
		return "uuid"
	case VarcharID:
		return "varchar"
	case VarintID:
		return "varint"
	case TimeUUIDID:
		return "timeuuid"
	case InetID:
		return "inet"
	case DateID:
		return "date"
	case TimeID:
		return "time"
	case SmallIntID:
		return "smallint"
	case TinyIntID:
		return "tinyint"
	case DurationID:
		return "duration"
	default:
		return fmt.Sprintf("unknown(0x%04x)", id)
	}
}
