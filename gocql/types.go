// Package gocql is a compatibility shim exposing a subset of the
// popular github.com/gocql/gocql API on top of this driver's engine,
// for callers migrating an existing codebase. It delegates composite
// value marshaling (collections, tuples, UDTs) to the real gocql
// package's codec instead of reimplementing a second one.
package gocql

import (
	realgocql "github.com/gocql/gocql"

	"github.com/riverscale/cqldriver/frame"
)

// TypeInfo, Type and the composite type descriptors are re-exported from
// the real gocql package so WrapOption can hand its result straight to
// gocql.Marshal/gocql.Unmarshal.
type (
	TypeInfo       = realgocql.TypeInfo
	Type           = realgocql.Type
	NativeType     = realgocql.NativeType
	CollectionType = realgocql.CollectionType
	TupleTypeInfo  = realgocql.TupleTypeInfo
	UDTTypeInfo    = realgocql.UDTTypeInfo
	UDTField       = realgocql.UDTField
)

// WrapOption converts a decoded frame.Option column type into the
// gocql.TypeInfo shape gocql.Marshal/gocql.Unmarshal expect. Cassandra's
// wire type ids (frame.OptionID) and gocql.Type share the same numeric
// space (CQL v4 §4.2.5.2), so the conversion is a direct reinterpretation.
func WrapOption(o *frame.Option) TypeInfo {
	nt := realgocql.NewNativeType(4, Type(o.ID), o.Custom)

	switch o.ID {
	case frame.ListID:
		return CollectionType{NativeType: nt, Elem: WrapOption(&o.List.Element)}
	case frame.SetID:
		return CollectionType{NativeType: nt, Elem: WrapOption(&o.Set.Element)}
	case frame.MapID:
		return CollectionType{NativeType: nt, Key: WrapOption(&o.Map.Key), Elem: WrapOption(&o.Map.Value)}
	case frame.TupleID:
		elems := make([]TypeInfo, len(o.Tuple.Elements))
		for i := range o.Tuple.Elements {
			elems[i] = WrapOption(&o.Tuple.Elements[i])
		}
		return TupleTypeInfo{NativeType: nt, Elems: elems}
	case frame.UDTID:
		return UDTTypeInfo{
			NativeType: nt,
			KeySpace:   o.UDT.Keyspace,
			Name:       o.UDT.Name,
			Elements:   udtFields(o.UDT),
		}
	default:
		return nt
	}
}

func udtFields(udt *frame.UDTOption) []UDTField {
	fields := make([]UDTField, len(udt.FieldNames))
	for i := range fields {
		fields[i] = UDTField{Name: udt.FieldNames[i], Type: WrapOption(&udt.FieldTypes[i])}
	}
	return fields
}

// ColumnInfo mirrors gocql's ColumnInfo: a result column's name plus its
// resolved TypeInfo, as returned by Iter.Columns.
type ColumnInfo struct {
	Keyspace string
	Table    string
	Name     string
	TypeInfo TypeInfo
}

// unsetColumn marks a bind value as CQL "unset" (distinct from NULL: the
// server leaves the existing value alone instead of overwriting it).
type unsetColumn struct{}

var UnsetValue = unsetColumn{}

// Consistency mirrors gocql's exported Consistency enum, convertible to
// and from this driver's frame.Consistency.
type Consistency = frame.Consistency

const (
	Any         Consistency = frame.ANY
	One         Consistency = frame.ONE
	Two         Consistency = frame.TWO
	Three       Consistency = frame.THREE
	Quorum      Consistency = frame.QUORUM
	All         Consistency = frame.ALL
	LocalQuorum Consistency = frame.LOCALQUORUM
	EachQuorum  Consistency = frame.EACHQUORUM
	Serial      Consistency = frame.SERIAL
	LocalSerial Consistency = frame.LOCALSERIAL
	LocalOne    Consistency = frame.LOCALONE
)
