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
	"bytes"
	"fmt"
	"math/big"
	"sort"
)

// Typify validates val against the type named by id within sys, coercing it
// into canonical form (newtype unwrapping reversed, enum/union tags
// resolved to both name and ordinal, collections sorted into canonical
// order) and returns the result bound to id.
func Typify(sys *TypeSystem, id SemId, val StrictVal) (TypedVal, error) {
	ty, ok := sys.Types[id]
	if !ok {
		return TypedVal{}, &TypifyError{Reason: fmt.Sprintf("type %s is not present in the type system", id)}
	}
	out, err := typifyAt(sys, ty, val, "")
	if err != nil {
		return TypedVal{}, err
	}
	return TypedVal{Id: id, Val: out}, nil
}

func typifyAt(sys *TypeSystem, ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	switch ty.Class {
	case ClsPrimitive:
		return typifyPrimitive(ty.Primitive, val, path)
	case ClsUnicode:
		return typifyUnicode(val, path)
	case ClsAsciiStr:
		return typifyAsciiStr(ty.AsciiSizing, val, path)
	case ClsEnum:
		return typifyEnum(ty, val, path)
	case ClsUnion:
		return typifyUnion(sys, ty, val, path)
	case ClsTuple:
		return typifyTuple(sys, ty, val, path)
	case ClsStruct:
		return typifyStruct(sys, ty, val, path)
	case ClsArray:
		return typifyArray(sys, ty, val, path)
	case ClsList:
		return typifyList(sys, ty, val, path)
	case ClsSet:
		return typifySet(sys, ty, val, path)
	case ClsMap:
		return typifyMap(sys, ty, val, path)
	default:
		return StrictVal{}, &TypifyError{Path: path, Reason: "unknown type class"}
	}
}

func typifyPrimitive(p Primitive, val StrictVal, path string) (StrictVal, error) {
	if p == Unit {
		if val.Kind != ValUnit {
			return StrictVal{}, &TypifyError{Path: path, Reason: "expected the unit value"}
		}
		return VUnit(), nil
	}
	if p == AsciiChar {
		if val.Kind == ValString && len(val.Str) == 1 && val.Str[0] <= 0x7F {
			return val, nil
		}
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected a single ASCII character"}
	}
	if val.Kind != ValNumber {
		return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("expected a number for %s", p)}
	}
	n := val.Number
	switch p.Class() {
	case ClassFloat:
		if !n.IsFloat {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("%s expects a floating-point value", p)}
		}
		return val, nil
	case ClassUnsigned, ClassNonZero:
		if n.IsFloat || n.IsSigned {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("%s expects an unsigned integer", p)}
		}
		if p.ByteSize() <= 8 {
			if n.IsBig {
				return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("value too wide for %s", p)}
			}
			if bitLen := bitLenUint64(n.Unsigned); bitLen > int(p.ByteSize())*8 {
				return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("value overflows %s", p)}
			}
			if p.Class() == ClassNonZero && n.Unsigned == 0 {
				return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("%s must be non-zero", p)}
			}
			return val, nil
		}
		bi := n.Big
		if bi == nil {
			bi = newBigFromUint64(n.Unsigned)
		}
		if bi.Sign() < 0 || bi.BitLen() > int(p.ByteSize())*8 {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("value does not fit %s", p)}
		}
		if p.Class() == ClassNonZero && bi.Sign() == 0 {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("%s must be non-zero", p)}
		}
		return VNumber(NumFromBigInt(bi, false)), nil
	case ClassSigned:
		if n.IsFloat {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("%s expects a signed integer", p)}
		}
		if p.ByteSize() <= 8 {
			if n.IsBig || !n.IsSigned {
				return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("%s expects a native signed integer", p)}
			}
			if bitLen := signedBitLen(n.Signed); bitLen > int(p.ByteSize())*8 {
				return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("value overflows %s", p)}
			}
			return val, nil
		}
		bi := n.Big
		if bi == nil {
			bi = big.NewInt(n.Signed)
		}
		if bi.BitLen()+1 > int(p.ByteSize())*8 {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("value does not fit %s", p)}
		}
		return VNumber(NumFromBigInt(bi, true)), nil
	default:
		return StrictVal{}, &TypifyError{Path: path, Reason: "unrecognized primitive class"}
	}
}

func newBigFromUint64(u uint64) *big.Int { return new(big.Int).SetUint64(u) }

func bitLenUint64(u uint64) int { return new(big.Int).SetUint64(u).BitLen() }

func signedBitLen(i int64) int {
	if i < 0 {
		i = -i - 1
	}
	return new(big.Int).SetInt64(i).BitLen() + 1
}

func typifyUnicode(val StrictVal, path string) (StrictVal, error) {
	if val.Kind != ValString {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected a unicode character"}
	}
	runes := []rune(val.Str)
	if len(runes) != 1 {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected exactly one unicode character"}
	}
	return val, nil
}

func typifyAsciiStr(sizing Sizing, val StrictVal, path string) (StrictVal, error) {
	if val.Kind != ValString {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected an ASCII string"}
	}
	for i := 0; i < len(val.Str); i++ {
		if val.Str[i] > 0x7F {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("byte %d is not ASCII", i)}
		}
	}
	if !sizing.Check(uint64(len(val.Str))) {
		return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("length %d out of bounds %s", len(val.Str), sizing)}
	}
	return val, nil
}

func resolveTag(variants []EnumVariant, tag EnumTag, path string) (EnumVariant, error) {
	if tag.HasName {
		for _, v := range variants {
			if v.Name == tag.Name {
				if tag.HasOrdinal && tag.Ordinal != v.Tag {
					return EnumVariant{}, &TypifyError{Path: path, Reason: fmt.Sprintf("tag %d does not match name %q", tag.Ordinal, tag.Name)}
				}
				return v, nil
			}
		}
		return EnumVariant{}, &TypifyError{Path: path, Reason: fmt.Sprintf("no variant named %q", tag.Name)}
	}
	if tag.HasOrdinal {
		for _, v := range variants {
			if v.Tag == tag.Ordinal {
				return v, nil
			}
		}
		return EnumVariant{}, &TypifyError{Path: path, Reason: fmt.Sprintf("no variant with tag %d", tag.Ordinal)}
	}
	return EnumVariant{}, &TypifyError{Path: path, Reason: "enum value has neither a name nor a tag"}
}

func typifyEnum(ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	if val.Kind != ValEnum {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected an enum value"}
	}
	v, err := resolveTag(ty.EnumVariants, val.EnumTag, path)
	if err != nil {
		return StrictVal{}, err
	}
	return VEnum(EnumTag{Name: v.Name, HasName: true, Ordinal: v.Tag, HasOrdinal: true}), nil
}

func typifyUnion(sys *TypeSystem, ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	if val.Kind != ValUnion {
		if !ty.IsOption() {
			return StrictVal{}, &TypifyError{Path: path, Reason: "expected a union value"}
		}
		// Option canonicalization (spec.md §4.7): a loose, non-union value
		// against an Option<T> is never required to spell out the tag. The
		// unit sentinel means None; anything else is the wrapped Some value.
		if val.Kind == ValUnit {
			val = VUnion(EnumTag{Name: "none", HasName: true, Ordinal: 0, HasOrdinal: true}, VUnit())
		} else {
			val = VUnion(EnumTag{Name: "some", HasName: true, Ordinal: 1, HasOrdinal: true}, val)
		}
	}
	var asEnum []EnumVariant
	for _, v := range ty.UnionVariants {
		asEnum = append(asEnum, EnumVariant{Tag: v.Tag, Name: v.Name})
	}
	v, err := resolveTag(asEnum, val.UnionTag, path)
	if err != nil {
		return StrictVal{}, err
	}
	_, innerRef, _ := ty.UnionByTag(v.Tag)
	innerTy, ok := sys.Types[innerRef]
	if !ok {
		return StrictVal{}, &TypifyError{Path: path, Reason: "union variant's payload type is absent from the type system"}
	}
	if val.UnionVal == nil {
		return StrictVal{}, &TypifyError{Path: path, Reason: "union value is missing its payload"}
	}
	inner, err := typifyAt(sys, innerTy, *val.UnionVal, path+"."+string(v.Name))
	if err != nil {
		return StrictVal{}, err
	}
	return VUnion(EnumTag{Name: v.Name, HasName: true, Ordinal: v.Tag, HasOrdinal: true}, inner), nil
}

func typifyTuple(sys *TypeSystem, ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	// Newtype transparency: a single-field tuple also accepts the bare
	// inner value, not just an explicit one-element VTuple.
	if len(ty.TupleFields) == 1 && val.Kind != ValTuple {
		innerTy, ok := sys.Types[ty.TupleFields[0]]
		if !ok {
			return StrictVal{}, &TypifyError{Path: path, Reason: "newtype's wrapped type is absent from the type system"}
		}
		inner, err := typifyAt(sys, innerTy, val, path)
		if err != nil {
			return StrictVal{}, err
		}
		return VTuple(inner), nil
	}
	if val.Kind != ValTuple {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected a tuple value"}
	}
	if len(val.Tuple) != len(ty.TupleFields) {
		return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("tuple has %d fields, type declares %d", len(val.Tuple), len(ty.TupleFields))}
	}
	out := make([]StrictVal, len(ty.TupleFields))
	for i, ref := range ty.TupleFields {
		fieldTy, ok := sys.Types[ref]
		if !ok {
			return StrictVal{}, &TypifyError{Path: path, Reason: "tuple field's type is absent from the type system"}
		}
		v, err := typifyAt(sys, fieldTy, val.Tuple[i], fmt.Sprintf("%s.%d", path, i))
		if err != nil {
			return StrictVal{}, err
		}
		out[i] = v
	}
	return VTuple(out...), nil
}

func typifyStruct(sys *TypeSystem, ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	if val.Kind != ValStruct {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected a struct value"}
	}
	if len(val.StructFields) != len(ty.StructFields) {
		return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("struct has %d fields, type declares %d", len(val.StructFields), len(ty.StructFields))}
	}
	out := make([]StrictValField, len(ty.StructFields))
	for i, f := range ty.StructFields {
		fv, ok := val.Field(f.Name)
		if !ok {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("missing field %q", f.Name)}
		}
		fieldTy, ok := sys.Types[f.Ty]
		if !ok {
			return StrictVal{}, &TypifyError{Path: path, Reason: "struct field's type is absent from the type system"}
		}
		typed, err := typifyAt(sys, fieldTy, fv, path+"."+string(f.Name))
		if err != nil {
			return StrictVal{}, err
		}
		out[i] = StrictValField{Name: f.Name, Val: typed}
	}
	return VStruct(out...), nil
}

func typifyArray(sys *TypeSystem, ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	if ty.IsByteArray() && val.Kind == ValBytes {
		if len(val.Bytes) != int(ty.ArrayLen) {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("array has length %d, type declares %d", len(val.Bytes), ty.ArrayLen)}
		}
		return val, nil
	}
	if val.Kind != ValList {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected an array value"}
	}
	if len(val.List) != int(ty.ArrayLen) {
		return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("array has length %d, type declares %d", len(val.List), ty.ArrayLen)}
	}
	elemTy, ok := sys.Types[ty.ArrayElem]
	if !ok {
		return StrictVal{}, &TypifyError{Path: path, Reason: "array element type is absent from the type system"}
	}
	out := make([]StrictVal, len(val.List))
	for i, item := range val.List {
		v, err := typifyAt(sys, elemTy, item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return StrictVal{}, err
		}
		out[i] = v
	}
	return VList(out...), nil
}

func typifyList(sys *TypeSystem, ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	if ty.CollElem.IsByte() && val.Kind == ValBytes {
		if !ty.CollSizing.Check(uint64(len(val.Bytes))) {
			return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("length %d out of bounds %s", len(val.Bytes), ty.CollSizing)}
		}
		return val, nil
	}
	if val.Kind != ValList {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected a list value"}
	}
	if !ty.CollSizing.Check(uint64(len(val.List))) {
		return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("length %d out of bounds %s", len(val.List), ty.CollSizing)}
	}
	elemTy, ok := sys.Types[ty.CollElem]
	if !ok {
		return StrictVal{}, &TypifyError{Path: path, Reason: "list element type is absent from the type system"}
	}
	out := make([]StrictVal, len(val.List))
	for i, item := range val.List {
		v, err := typifyAt(sys, elemTy, item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return StrictVal{}, err
		}
		out[i] = v
	}
	return VList(out...), nil
}

func typifySet(sys *TypeSystem, ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	if val.Kind != ValSet {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected a set value"}
	}
	if !ty.CollSizing.Check(uint64(len(val.Set))) {
		return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("length %d out of bounds %s", len(val.Set), ty.CollSizing)}
	}
	elemTy, ok := sys.Types[ty.CollElem]
	if !ok {
		return StrictVal{}, &TypifyError{Path: path, Reason: "set element type is absent from the type system"}
	}
	typed := make([]StrictVal, len(val.Set))
	keys := make([][]byte, len(val.Set))
	for i, item := range val.Set {
		v, err := typifyAt(sys, elemTy, item, fmt.Sprintf("%s{%d}", path, i))
		if err != nil {
			return StrictVal{}, err
		}
		typed[i] = v
		keys[i] = encodeValue(sys, elemTy, v)
	}
	order := make([]int, len(typed))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return bytes.Compare(keys[order[i]], keys[order[j]]) < 0 })
	out := make([]StrictVal, len(typed))
	for i, idx := range order {
		if i > 0 && bytes.Equal(keys[order[i-1]], keys[idx]) {
			return StrictVal{}, &TypifyError{Path: path, Reason: "set contains duplicate elements"}
		}
		out[i] = typed[idx]
	}
	return VSet(out...), nil
}

func typifyMap(sys *TypeSystem, ty Ty[SemId], val StrictVal, path string) (StrictVal, error) {
	if val.Kind != ValMap {
		return StrictVal{}, &TypifyError{Path: path, Reason: "expected a map value"}
	}
	if !ty.MapSizing.Check(uint64(len(val.MapEntries))) {
		return StrictVal{}, &TypifyError{Path: path, Reason: fmt.Sprintf("length %d out of bounds %s", len(val.MapEntries), ty.MapSizing)}
	}
	keyTy, ok := sys.Types[ty.MapKey]
	if !ok {
		return StrictVal{}, &TypifyError{Path: path, Reason: "map key type is absent from the type system"}
	}
	valTy, ok := sys.Types[ty.MapVal]
	if !ok {
		return StrictVal{}, &TypifyError{Path: path, Reason: "map value type is absent from the type system"}
	}
	typed := make([]StrictMapEntry, len(val.MapEntries))
	keys := make([][]byte, len(val.MapEntries))
	for i, e := range val.MapEntries {
		k, err := typifyAt(sys, keyTy, e.Key, fmt.Sprintf("%s{%d}.key", path, i))
		if err != nil {
			return StrictVal{}, err
		}
		v, err := typifyAt(sys, valTy, e.Val, fmt.Sprintf("%s{%d}.value", path, i))
		if err != nil {
			return StrictVal{}, err
		}
		typed[i] = StrictMapEntry{Key: k, Val: v}
		keys[i] = encodeValue(sys, keyTy, k)
	}
	order := make([]int, len(typed))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return bytes.Compare(keys[order[i]], keys[order[j]]) < 0 })
	out := make([]StrictMapEntry, len(typed))
	for i, idx := range order {
		if i > 0 && bytes.Equal(keys[order[i-1]], keys[idx]) {
			return StrictVal{}, &TypifyError{Path: path, Reason: "map contains duplicate keys"}
		}
		out[i] = typed[idx]
	}
	return VMap(out...), nil
}
