// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package strictypes

import (
	"fmt"
	"math/big"
)

// StrictNum does not carry a NumClass: its IsFloat/IsSigned/IsBig flags
// say which representation the number is held in.

// StrictNum is a loosely-typed numeric value: typify narrows it against a
// target Primitive, rejecting values the primitive's class or width cannot
// hold. Values up to 8 bytes wide live in the small fields; wider ones
// (U128, U256, ...) are carried in Big.
type StrictNum struct {
	IsFloat  bool
	IsSigned bool
	IsBig    bool

	Unsigned uint64
	Signed   int64
	Float    float64
	Big      *big.Int
}

// NumFromUint64 builds a small unsigned StrictNum.
func NumFromUint64(u uint64) StrictNum { return StrictNum{Unsigned: u} }

// NumFromInt64 builds a small signed StrictNum.
func NumFromInt64(i int64) StrictNum { return StrictNum{IsSigned: true, Signed: i} }

// NumFromFloat64 builds a floating-point StrictNum.
func NumFromFloat64(f float64) StrictNum { return StrictNum{IsFloat: true, Float: f} }

// NumFromBigInt builds a big-integer StrictNum, for primitives wider than
// 8 bytes.
func NumFromBigInt(v *big.Int, signed bool) StrictNum {
	return StrictNum{IsBig: true, IsSigned: signed, Big: v}
}

func (n StrictNum) String() string {
	switch {
	case n.IsFloat:
		return fmt.Sprintf("%g", n.Float)
	case n.IsBig:
		return n.Big.String()
	case n.IsSigned:
		return fmt.Sprintf("%d", n.Signed)
	default:
		return fmt.Sprintf("%d", n.Unsigned)
	}
}

// EnumTag selects an enum or union variant by name, by ordinal, or both (in
// which case typify checks they agree).
type EnumTag struct {
	Name           VariantName
	HasName        bool
	Ordinal        byte
	HasOrdinal     bool
}

// TagByName selects a variant by name.
func TagByName(name VariantName) EnumTag { return EnumTag{Name: name, HasName: true} }

// TagByOrdinal selects a variant by its tag byte.
func TagByOrdinal(tag byte) EnumTag { return EnumTag{Ordinal: tag, HasOrdinal: true} }

func (t EnumTag) String() string {
	if t.HasName {
		return string(t.Name)
	}
	return fmt.Sprintf("#%d", t.Ordinal)
}

// ValKind discriminates a StrictVal's payload, mirroring Ty's Class but for
// values instead of type declarations.
type ValKind byte

const (
	ValUnit ValKind = iota
	ValNumber
	ValBytes
	ValString
	ValTuple
	ValStruct
	ValEnum
	ValUnion
	ValList
	ValSet
	ValMap
)

// StrictValField is one named field of a ValStruct value.
type StrictValField struct {
	Name FieldName
	Val  StrictVal
}

// StrictMapEntry is one key/value pair of a ValMap value.
type StrictMapEntry struct {
	Key StrictVal
	Val StrictVal
}

// StrictVal is a loosely-typed value tree: the input to typify, before it
// has been checked or coerced against any particular type (spec.md §5.1).
// As with Ty, exactly one payload group is populated, selected by Kind.
type StrictVal struct {
	Kind ValKind

	Number StrictNum // ValNumber

	Bytes []byte // ValBytes: fixed/variable-length byte arrays

	Str string // ValString: ascii or unicode text, UTF-8 in memory either way

	Tuple []StrictVal // ValTuple

	StructFields []StrictValField // ValStruct

	EnumTag EnumTag // ValEnum

	UnionTag EnumTag    // ValUnion
	UnionVal *StrictVal // ValUnion

	List []StrictVal // ValList

	Set []StrictVal // ValSet

	MapEntries []StrictMapEntry // ValMap
}

// VUnit returns the unit value.
func VUnit() StrictVal { return StrictVal{Kind: ValUnit} }

// VNumber wraps a number.
func VNumber(n StrictNum) StrictVal { return StrictVal{Kind: ValNumber, Number: n} }

// VBytes wraps a byte string.
func VBytes(b []byte) StrictVal { return StrictVal{Kind: ValBytes, Bytes: b} }

// VString wraps ascii or unicode text.
func VString(s string) StrictVal { return StrictVal{Kind: ValString, Str: s} }

// VTuple wraps positional fields.
func VTuple(fields ...StrictVal) StrictVal { return StrictVal{Kind: ValTuple, Tuple: fields} }

// VStruct wraps named fields.
func VStruct(fields ...StrictValField) StrictVal {
	return StrictVal{Kind: ValStruct, StructFields: fields}
}

// VEnum selects an enum variant.
func VEnum(tag EnumTag) StrictVal { return StrictVal{Kind: ValEnum, EnumTag: tag} }

// VUnion selects a union variant with its payload.
func VUnion(tag EnumTag, inner StrictVal) StrictVal {
	return StrictVal{Kind: ValUnion, UnionTag: tag, UnionVal: &inner}
}

// VList wraps an ordered collection.
func VList(items ...StrictVal) StrictVal { return StrictVal{Kind: ValList, List: items} }

// VSet wraps an unordered, unique collection (as declared; typify checks
// uniqueness, the codec checks ordering on decode).
func VSet(items ...StrictVal) StrictVal { return StrictVal{Kind: ValSet, Set: items} }

// VMap wraps key/value pairs.
func VMap(entries ...StrictMapEntry) StrictVal { return StrictVal{Kind: ValMap, MapEntries: entries} }

// Field looks up a VStruct's field by name.
func (v StrictVal) Field(name FieldName) (StrictVal, bool) {
	for _, f := range v.StructFields {
		if f.Name == name {
			return f.Val, true
		}
	}
	return StrictVal{}, false
}

// TypedVal is a StrictVal that has been validated (and, where the rules
// allow, coerced) against a specific type: the result of a successful
// typify call, and the form ValueText renders. Encode and Armor take the
// Id and Val separately and assume Val already passed Typify.
type TypedVal struct {
	Id  SemId
	Val StrictVal
}
