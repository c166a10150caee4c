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

import "fmt"

// Ref is implemented by every reference-node flavor a Ty[R] can be
// parameterized over (SemId post-compile, TranspileRef pre-compile, and the
// bounded-inlining-depth LibRef/InlineRef/InlineRef1/InlineRef2 family used
// by the compile pipeline). It exposes just enough to let generic AST code
// answer "is this sub-reference a byte / a unicode char" without knowing
// the concrete flavor.
type Ref interface {
	IsByte() bool
	IsUnicodeChar() bool
}

// EnumVariant is one (tag, name) pair of an Enum type.
type EnumVariant struct {
	Tag  byte
	Name VariantName
}

// UnionVariant is one (tag, name) -> R mapping of a Union type.
type UnionVariant[R Ref] struct {
	Tag  byte
	Name VariantName
	Ty   R
}

// StructField is one (name, R) pair of a Struct type.
type StructField[R Ref] struct {
	Name FieldName
	Ty   R
}

// Ty is the type-expression AST, parameterized by the reference node R used
// for its sub-types (spec.md §3.4). Exactly one of the payload groups below
// is populated, selected by Class.
type Ty[R Ref] struct {
	Class Cls

	Primitive Primitive // ClsPrimitive

	AsciiSizing Sizing // ClsAsciiStr

	EnumVariants []EnumVariant // ClsEnum, ordered, tag-unique

	UnionVariants []UnionVariant[R] // ClsUnion, ordered, tag- and name-unique

	TupleFields []R // ClsTuple, 1..=255

	StructFields []StructField[R] // ClsStruct, 1..=255, name-unique

	ArrayElem R // ClsArray
	ArrayLen  uint16

	CollElem   R // ClsList, ClsSet
	CollSizing Sizing

	MapKey    R // ClsMap
	MapVal    R
	MapSizing Sizing
}

// NewPrimitive builds a Primitive type.
func NewPrimitive[R Ref](p Primitive) Ty[R] { return Ty[R]{Class: ClsPrimitive, Primitive: p} }

// NewUnicodeChar builds the UnicodeChar singleton type.
func NewUnicodeChar[R Ref]() Ty[R] { return Ty[R]{Class: ClsUnicode} }

// NewAsciiStr builds a bounded ASCII-string type.
func NewAsciiStr[R Ref](sizing Sizing) Ty[R] {
	return Ty[R]{Class: ClsAsciiStr, AsciiSizing: sizing}
}

// NewEnum builds an Enum type. Variants must be non-empty with unique tags.
func NewEnum[R Ref](variants []EnumVariant) (Ty[R], error) {
	if len(variants) == 0 {
		return Ty[R]{}, fmt.Errorf("enum must have at least one variant")
	}
	seen := make(map[byte]struct{}, len(variants))
	for _, v := range variants {
		if _, dup := seen[v.Tag]; dup {
			return Ty[R]{}, fmt.Errorf("duplicate enum tag %d", v.Tag)
		}
		seen[v.Tag] = struct{}{}
	}
	return Ty[R]{Class: ClsEnum, EnumVariants: variants}, nil
}

// NewUnion builds a Union type. Variants must be non-empty with unique tags
// and unique names.
func NewUnion[R Ref](variants []UnionVariant[R]) (Ty[R], error) {
	if len(variants) == 0 {
		return Ty[R]{}, fmt.Errorf("union must have at least one variant")
	}
	tags := make(map[byte]struct{}, len(variants))
	names := make(map[VariantName]struct{}, len(variants))
	for _, v := range variants {
		if _, dup := tags[v.Tag]; dup {
			return Ty[R]{}, fmt.Errorf("duplicate union tag %d", v.Tag)
		}
		tags[v.Tag] = struct{}{}
		if _, dup := names[v.Name]; dup {
			return Ty[R]{}, fmt.Errorf("duplicate union variant name %q", v.Name)
		}
		names[v.Name] = struct{}{}
	}
	return Ty[R]{Class: ClsUnion, UnionVariants: variants}, nil
}

// NewOption builds the canonical option encoding: a 2-variant union
// {0: none=unit, 1: some=T}.
func NewOption[R Ref](some R, unit R) (Ty[R], error) {
	return NewUnion([]UnionVariant[R]{
		{Tag: 0, Name: "none", Ty: unit},
		{Tag: 1, Name: "some", Ty: some},
	})
}

// NewTuple builds a Tuple type. Fields must be non-empty, at most 255.
func NewTuple[R Ref](fields []R) (Ty[R], error) {
	if len(fields) == 0 {
		return Ty[R]{}, fmt.Errorf("tuple must have at least one field")
	}
	if len(fields) > 255 {
		return Ty[R]{}, fmt.Errorf("tuple has too many fields (%d > 255)", len(fields))
	}
	return Ty[R]{Class: ClsTuple, TupleFields: fields}, nil
}

// NewStruct builds a Struct type. Fields must be non-empty, at most 255,
// with unique names.
func NewStruct[R Ref](fields []StructField[R]) (Ty[R], error) {
	if len(fields) == 0 {
		return Ty[R]{}, fmt.Errorf("struct must have at least one field")
	}
	if len(fields) > 255 {
		return Ty[R]{}, fmt.Errorf("struct has too many fields (%d > 255)", len(fields))
	}
	seen := make(map[FieldName]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return Ty[R]{}, fmt.Errorf("duplicate struct field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return Ty[R]{Class: ClsStruct, StructFields: fields}, nil
}

// NewArray builds a fixed-length Array type.
func NewArray[R Ref](elem R, length uint16) Ty[R] {
	return Ty[R]{Class: ClsArray, ArrayElem: elem, ArrayLen: length}
}

// NewList builds a variable-length List type.
func NewList[R Ref](elem R, sizing Sizing) Ty[R] {
	return Ty[R]{Class: ClsList, CollElem: elem, CollSizing: sizing}
}

// NewSet builds a variable-length Set type.
func NewSet[R Ref](elem R, sizing Sizing) Ty[R] {
	return Ty[R]{Class: ClsSet, CollElem: elem, CollSizing: sizing}
}

// NewMap builds a Map type. The caller is responsible for checking the key
// type is a valid map-key type (§4.3 register_map validation); Ty itself
// does not have enough context (it doesn't know the full type system) to
// check that.
func NewMap[R Ref](key, val R, sizing Sizing) Ty[R] {
	return Ty[R]{Class: ClsMap, MapKey: key, MapVal: val, MapSizing: sizing}
}

// Cls returns the type's class discriminant.
func (t Ty[R]) Cls() Cls { return t.Class }

// IsPrimitive reports whether t is a Primitive type.
func (t Ty[R]) IsPrimitive() bool { return t.Class == ClsPrimitive }

// IsCollection reports whether t is a List, Set or Map.
func (t Ty[R]) IsCollection() bool {
	return t.Class == ClsList || t.Class == ClsSet || t.Class == ClsMap
}

// IsCompound reports whether t is a non-singleton tuple/struct, or any
// enum/union (spec.md §4.1).
func (t Ty[R]) IsCompound() bool {
	switch t.Class {
	case ClsEnum, ClsUnion:
		return true
	case ClsTuple:
		return len(t.TupleFields) > 1
	case ClsStruct:
		return len(t.StructFields) > 1
	default:
		return false
	}
}

// IsNewtype reports whether t is a single-field tuple.
func (t Ty[R]) IsNewtype() bool { return t.Class == ClsTuple && len(t.TupleFields) == 1 }

// IsOption reports whether t is the canonical 2-variant {0:none=unit,
// 1:some=T} union.
func (t Ty[R]) IsOption() bool {
	if t.Class != ClsUnion || len(t.UnionVariants) != 2 {
		return false
	}
	a, b := t.UnionVariants[0], t.UnionVariants[1]
	return a.Tag == 0 && a.Name == "none" && b.Tag == 1 && b.Name == "some"
}

// IsByteArray reports whether t is a fixed-length array of bytes.
func (t Ty[R]) IsByteArray() bool {
	return t.Class == ClsArray && t.ArrayElem.IsByte()
}

// IsCharEnum reports whether t is an enum whose tags double as ASCII
// character codes (used by the old List<CharEnum> ascii-string encoding and
// by typify's single-character matching).
func (t Ty[R]) IsCharEnum() bool {
	if t.Class != ClsEnum {
		return false
	}
	for _, v := range t.EnumVariants {
		if v.Tag > 0x7F {
			return false
		}
	}
	return true
}

// HasTag reports whether an Enum has a variant with the given tag.
func (t Ty[R]) HasTag(tag byte) bool {
	for _, v := range t.EnumVariants {
		if v.Tag == tag {
			return true
		}
	}
	return false
}

// NameByTag returns an Enum variant's name given its tag.
func (t Ty[R]) NameByTag(tag byte) (VariantName, bool) {
	for _, v := range t.EnumVariants {
		if v.Tag == tag {
			return v.Name, true
		}
	}
	return "", false
}

// TagByName returns an Enum variant's tag given its name.
func (t Ty[R]) TagByName(name VariantName) (byte, bool) {
	for _, v := range t.EnumVariants {
		if v.Name == name {
			return v.Tag, true
		}
	}
	return 0, false
}

// UnionByTag returns a Union variant's (name, ref) given its tag.
func (t Ty[R]) UnionByTag(tag byte) (VariantName, R, bool) {
	for _, v := range t.UnionVariants {
		if v.Tag == tag {
			return v.Name, v.Ty, true
		}
	}
	var zero R
	return "", zero, false
}

// UnionByName returns a Union variant's (tag, ref) given its name.
func (t Ty[R]) UnionByName(name VariantName) (byte, R, bool) {
	for _, v := range t.UnionVariants {
		if v.Name == name {
			return v.Tag, v.Ty, true
		}
	}
	var zero R
	return 0, zero, false
}

// FieldByName returns a Struct field's ref given its name.
func (t Ty[R]) FieldByName(name FieldName) (R, bool) {
	for _, f := range t.StructFields {
		if f.Name == name {
			return f.Ty, true
		}
	}
	var zero R
	return zero, false
}

// AsWrappedTy returns the element of a single-field tuple and true, or the
// zero value and false if t is not a newtype.
func (t Ty[R]) AsWrappedTy() (R, bool) {
	if t.IsNewtype() {
		return t.TupleFields[0], true
	}
	var zero R
	return zero, false
}

// ItemKind identifies the structural role of a sub-reference yielded by
// Iter, mirroring the reference implementation's ItemCase.
type ItemKind byte

const (
	ItemUnnamedField ItemKind = iota // tuple field, Pos set
	ItemNamedField                   // struct field, Name set
	ItemVariant                      // union variant, Tag/Name set
	ItemArrayItem
	ItemListItem
	ItemSetItem
	ItemMapKey
	ItemMapValue
)

// ItemCase describes the structural role of one child reference.
type ItemCase struct {
	Kind ItemKind
	Pos  int
	Name string
	Tag  byte
}

// Item pairs a sub-reference with its structural role.
type Item[R Ref] struct {
	Ref  R
	Case ItemCase
}

// Iter yields every direct sub-reference of t together with its structural
// role. Primitive, UnicodeChar and AsciiStr types have no sub-references and
// yield nothing.
func (t Ty[R]) Iter() []Item[R] {
	switch t.Class {
	case ClsTuple:
		items := make([]Item[R], len(t.TupleFields))
		for i, f := range t.TupleFields {
			items[i] = Item[R]{Ref: f, Case: ItemCase{Kind: ItemUnnamedField, Pos: i}}
		}
		return items
	case ClsStruct:
		items := make([]Item[R], len(t.StructFields))
		for i, f := range t.StructFields {
			items[i] = Item[R]{Ref: f.Ty, Case: ItemCase{Kind: ItemNamedField, Name: string(f.Name)}}
		}
		return items
	case ClsUnion:
		items := make([]Item[R], len(t.UnionVariants))
		for i, v := range t.UnionVariants {
			items[i] = Item[R]{Ref: v.Ty, Case: ItemCase{Kind: ItemVariant, Tag: v.Tag, Name: string(v.Name)}}
		}
		return items
	case ClsArray:
		return []Item[R]{{Ref: t.ArrayElem, Case: ItemCase{Kind: ItemArrayItem}}}
	case ClsList:
		return []Item[R]{{Ref: t.CollElem, Case: ItemCase{Kind: ItemListItem}}}
	case ClsSet:
		return []Item[R]{{Ref: t.CollElem, Case: ItemCase{Kind: ItemSetItem}}}
	case ClsMap:
		return []Item[R]{
			{Ref: t.MapKey, Case: ItemCase{Kind: ItemMapKey}},
			{Ref: t.MapVal, Case: ItemCase{Kind: ItemMapValue}},
		}
	default:
		return nil
	}
}

// TyAt returns the sub-reference at positional index pos, used by path
// resolution. Named containers (struct, union) are addressed by their
// declaration order.
func (t Ty[R]) TyAt(pos int) (R, bool) {
	items := t.Iter()
	if pos < 0 || pos >= len(items) {
		var zero R
		return zero, false
	}
	return items[pos].Ref, true
}
