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
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"unicode/utf8"
)

// Encode renders a typified value as its canonical binary form (spec.md
// §4.8): fixed-width little-endian primitives, length-prefixed variable
// collections, and newtype-transparent tuples (a single-field tuple takes
// up no extra wire bytes beyond its one field).
func Encode(sys *TypeSystem, id SemId, val StrictVal) ([]byte, error) {
	ty, ok := sys.Types[id]
	if !ok {
		return nil, &CodecError{Reason: fmt.Sprintf("type %s is not present in the type system", id)}
	}
	return encodeValue(sys, ty, val), nil
}

// encodeValue encodes an already-typified value. val is assumed to already
// conform to ty (as produced by Typify), so the only failure mode left is a
// programmer error - an inconsistency between val and ty - which panics
// rather than threading an error return through every recursive call and
// every sort comparator that uses this for canonical ordering.
func encodeValue(sys *TypeSystem, ty Ty[SemId], val StrictVal) []byte {
	switch ty.Class {
	case ClsPrimitive:
		return encodePrimitive(ty.Primitive, val)
	case ClsUnicode:
		r := []rune(val.Str)[0]
		buf := make([]byte, utf8.UTFMax)
		n := utf8.EncodeRune(buf, r)
		return append([]byte{byte(n)}, buf[:n]...)
	case ClsAsciiStr:
		return encodeLenPrefixed(ty.AsciiSizing, []byte(val.Str))
	case ClsEnum:
		return []byte{val.EnumTag.Ordinal}
	case ClsUnion:
		_, innerRef, _ := ty.UnionByTag(val.UnionTag.Ordinal)
		innerTy := sys.Types[innerRef]
		out := []byte{val.UnionTag.Ordinal}
		return append(out, encodeValue(sys, innerTy, *val.UnionVal)...)
	case ClsTuple:
		if len(ty.TupleFields) == 1 {
			fieldTy := sys.Types[ty.TupleFields[0]]
			return encodeValue(sys, fieldTy, val.Tuple[0])
		}
		var out []byte
		for i, ref := range ty.TupleFields {
			out = append(out, encodeValue(sys, sys.Types[ref], val.Tuple[i])...)
		}
		return out
	case ClsStruct:
		var out []byte
		for _, f := range ty.StructFields {
			fv, _ := val.Field(f.Name)
			out = append(out, encodeValue(sys, sys.Types[f.Ty], fv)...)
		}
		return out
	case ClsArray:
		if ty.ArrayElem.IsByte() && val.Kind == ValBytes {
			return append([]byte(nil), val.Bytes...)
		}
		elemTy := sys.Types[ty.ArrayElem]
		var out []byte
		for _, item := range val.List {
			out = append(out, encodeValue(sys, elemTy, item)...)
		}
		return out
	case ClsList:
		if ty.CollElem.IsByte() && val.Kind == ValBytes {
			return encodeLenPrefixed(ty.CollSizing, val.Bytes)
		}
		elemTy := sys.Types[ty.CollElem]
		var body []byte
		for _, item := range val.List {
			body = append(body, encodeValue(sys, elemTy, item)...)
		}
		return encodeLenPrefixedCount(ty.CollSizing, len(val.List), body)
	case ClsSet:
		elemTy := sys.Types[ty.CollElem]
		var body []byte
		for _, item := range val.Set {
			body = append(body, encodeValue(sys, elemTy, item)...)
		}
		return encodeLenPrefixedCount(ty.CollSizing, len(val.Set), body)
	case ClsMap:
		keyTy := sys.Types[ty.MapKey]
		valTy := sys.Types[ty.MapVal]
		var body []byte
		for _, e := range val.MapEntries {
			body = append(body, encodeValue(sys, keyTy, e.Key)...)
			body = append(body, encodeValue(sys, valTy, e.Val)...)
		}
		return encodeLenPrefixedCount(ty.MapSizing, len(val.MapEntries), body)
	default:
		panic("strictypes: encodeValue: unreachable type class")
	}
}

func encodeLenPrefixed(sizing Sizing, data []byte) []byte {
	return encodeLenPrefixedCount(sizing, len(data), data)
}

func encodeLenPrefixedCount(sizing Sizing, count int, body []byte) []byte {
	n := sizing.ByteSize()
	prefix := make([]byte, n)
	u := uint64(count)
	for i := 0; i < n; i++ {
		prefix[i] = byte(u >> (8 * i))
	}
	return append(prefix, body...)
}

func encodePrimitive(p Primitive, val StrictVal) []byte {
	width := int(p.ByteSize())
	switch {
	case p == Unit:
		return nil
	case p == AsciiChar:
		return []byte{val.Str[0]}
	case p == BFloat16:
		bits := math.Float32bits(float32(val.Number.Float))
		top := uint16(bits >> 16)
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, top)
		return buf
	case p.Class() == ClassFloat && width == 4:
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(val.Number.Float)))
		return buf
	case p.Class() == ClassFloat && width == 8:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(val.Number.Float))
		return buf
	case width <= 8:
		buf := make([]byte, width)
		var u uint64
		if p.Class() == ClassSigned {
			u = uint64(val.Number.Signed)
		} else {
			u = val.Number.Unsigned
		}
		for i := 0; i < width; i++ {
			buf[i] = byte(u >> (8 * i))
		}
		return buf
	default:
		buf := make([]byte, width)
		bi := val.Number.Big
		if bi == nil {
			bi = new(big.Int)
		}
		littleEndianFill(buf, bi, p.Class() == ClassSigned)
		return buf
	}
}

// littleEndianFill writes v's two's-complement (if signed) little-endian
// representation into buf, which is exactly the primitive's declared width.
func littleEndianFill(buf []byte, v *big.Int, signed bool) {
	mag := new(big.Int).Set(v)
	negative := signed && v.Sign() < 0
	if negative {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(buf)*8))
		mag.Add(mod, v)
	}
	be := mag.Bytes()
	for i := 0; i < len(be) && i < len(buf); i++ {
		buf[i] = be[len(be)-1-i]
	}
}

// Decode parses data as a value of the type named by id, enforcing strict
// canonical form: exact byte consumption, in-bounds enum/union tags, and
// strictly ascending, duplicate-free Set/Map ordering (spec.md §4.8).
func Decode(sys *TypeSystem, id SemId, data []byte) (StrictVal, error) {
	ty, ok := sys.Types[id]
	if !ok {
		return StrictVal{}, &CodecError{Reason: fmt.Sprintf("type %s is not present in the type system", id)}
	}
	d := &decoder{sys: sys, buf: data}
	val, err := d.decodeValue(ty)
	if err != nil {
		return StrictVal{}, err
	}
	if d.pos != len(d.buf) {
		return StrictVal{}, &CodecError{Reason: fmt.Sprintf("%d trailing byte(s) after decoded value", len(d.buf)-d.pos)}
	}
	return val, nil
}

type decoder struct {
	sys *TypeSystem
	buf []byte
	pos int
}

func (d *decoder) take(n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		return nil, &CodecError{Reason: "unexpected end of input"}
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) readLen(sizing Sizing) (uint64, error) {
	n := sizing.ByteSize()
	b, err := d.take(n)
	if err != nil {
		return 0, err
	}
	var u uint64
	for i := 0; i < n; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	if !sizing.Check(u) {
		return 0, &CodecError{Reason: fmt.Sprintf("length %d out of bounds %s", u, sizing)}
	}
	return u, nil
}

func (d *decoder) decodeValue(ty Ty[SemId]) (StrictVal, error) {
	switch ty.Class {
	case ClsPrimitive:
		return d.decodePrimitive(ty.Primitive)
	case ClsUnicode:
		n, err := d.take(1)
		if err != nil {
			return StrictVal{}, err
		}
		size := int(n[0])
		if size < 1 || size > utf8.UTFMax {
			return StrictVal{}, &CodecError{Reason: "invalid unicode character length"}
		}
		b, err := d.take(size)
		if err != nil {
			return StrictVal{}, err
		}
		r, sz := utf8.DecodeRune(b)
		if r == utf8.RuneError || sz != size {
			return StrictVal{}, &CodecError{Reason: "invalid UTF-8 in unicode character"}
		}
		return VString(string(r)), nil
	case ClsAsciiStr:
		n, err := d.readLen(ty.AsciiSizing)
		if err != nil {
			return StrictVal{}, err
		}
		b, err := d.take(int(n))
		if err != nil {
			return StrictVal{}, err
		}
		for i, c := range b {
			if c > 0x7F {
				return StrictVal{}, &CodecError{Reason: fmt.Sprintf("byte %d is not ASCII", i)}
			}
		}
		return VString(string(b)), nil
	case ClsEnum:
		b, err := d.take(1)
		if err != nil {
			return StrictVal{}, err
		}
		name, ok := ty.NameByTag(b[0])
		if !ok {
			return StrictVal{}, &CodecError{Reason: fmt.Sprintf("tag %d is not a valid enum variant", b[0])}
		}
		return VEnum(EnumTag{Name: name, HasName: true, Ordinal: b[0], HasOrdinal: true}), nil
	case ClsUnion:
		b, err := d.take(1)
		if err != nil {
			return StrictVal{}, err
		}
		name, innerRef, ok := ty.UnionByTag(b[0])
		if !ok {
			return StrictVal{}, &CodecError{Reason: fmt.Sprintf("tag %d is not a valid union variant", b[0])}
		}
		inner, err := d.decodeValue(d.sys.Types[innerRef])
		if err != nil {
			return StrictVal{}, err
		}
		return VUnion(EnumTag{Name: name, HasName: true, Ordinal: b[0], HasOrdinal: true}, inner), nil
	case ClsTuple:
		if len(ty.TupleFields) == 1 {
			inner, err := d.decodeValue(d.sys.Types[ty.TupleFields[0]])
			if err != nil {
				return StrictVal{}, err
			}
			return VTuple(inner), nil
		}
		out := make([]StrictVal, len(ty.TupleFields))
		for i, ref := range ty.TupleFields {
			v, err := d.decodeValue(d.sys.Types[ref])
			if err != nil {
				return StrictVal{}, err
			}
			out[i] = v
		}
		return VTuple(out...), nil
	case ClsStruct:
		out := make([]StrictValField, len(ty.StructFields))
		for i, f := range ty.StructFields {
			v, err := d.decodeValue(d.sys.Types[f.Ty])
			if err != nil {
				return StrictVal{}, err
			}
			out[i] = StrictValField{Name: f.Name, Val: v}
		}
		return VStruct(out...), nil
	case ClsArray:
		if ty.ArrayElem.IsByte() {
			b, err := d.take(int(ty.ArrayLen))
			if err != nil {
				return StrictVal{}, err
			}
			return VBytes(append([]byte(nil), b...)), nil
		}
		elemTy := d.sys.Types[ty.ArrayElem]
		out := make([]StrictVal, ty.ArrayLen)
		for i := range out {
			v, err := d.decodeValue(elemTy)
			if err != nil {
				return StrictVal{}, err
			}
			out[i] = v
		}
		return VList(out...), nil
	case ClsList:
		if ty.CollElem.IsByte() {
			n, err := d.readLen(ty.CollSizing)
			if err != nil {
				return StrictVal{}, err
			}
			b, err := d.take(int(n))
			if err != nil {
				return StrictVal{}, err
			}
			return VBytes(append([]byte(nil), b...)), nil
		}
		n, err := d.readLen(ty.CollSizing)
		if err != nil {
			return StrictVal{}, err
		}
		elemTy := d.sys.Types[ty.CollElem]
		out := make([]StrictVal, n)
		for i := range out {
			v, err := d.decodeValue(elemTy)
			if err != nil {
				return StrictVal{}, err
			}
			out[i] = v
		}
		return VList(out...), nil
	case ClsSet:
		n, err := d.readLen(ty.CollSizing)
		if err != nil {
			return StrictVal{}, err
		}
		elemTy := d.sys.Types[ty.CollElem]
		out := make([]StrictVal, n)
		var prevKey []byte
		for i := range out {
			v, err := d.decodeValue(elemTy)
			if err != nil {
				return StrictVal{}, err
			}
			key := encodeValue(d.sys, elemTy, v)
			if i > 0 && bytes.Compare(key, prevKey) <= 0 {
				return StrictVal{}, &WrongTypeOrderingError{Cls: ClsSet, At: i}
			}
			prevKey = key
			out[i] = v
		}
		return VSet(out...), nil
	case ClsMap:
		n, err := d.readLen(ty.MapSizing)
		if err != nil {
			return StrictVal{}, err
		}
		keyTy := d.sys.Types[ty.MapKey]
		valTy := d.sys.Types[ty.MapVal]
		out := make([]StrictMapEntry, n)
		var prevKey []byte
		for i := range out {
			k, err := d.decodeValue(keyTy)
			if err != nil {
				return StrictVal{}, err
			}
			v, err := d.decodeValue(valTy)
			if err != nil {
				return StrictVal{}, err
			}
			key := encodeValue(d.sys, keyTy, k)
			if i > 0 && bytes.Compare(key, prevKey) <= 0 {
				return StrictVal{}, &WrongTypeOrderingError{Cls: ClsMap, At: i}
			}
			prevKey = key
			out[i] = StrictMapEntry{Key: k, Val: v}
		}
		return VMap(out...), nil
	default:
		return StrictVal{}, &CodecError{Reason: "unknown type class"}
	}
}

func (d *decoder) decodePrimitive(p Primitive) (StrictVal, error) {
	if p == Unit {
		return VUnit(), nil
	}
	if p == AsciiChar {
		b, err := d.take(1)
		if err != nil {
			return StrictVal{}, err
		}
		if b[0] > 0x7F {
			return StrictVal{}, &CodecError{Reason: "byte is not ASCII"}
		}
		return VString(string(b)), nil
	}
	width := int(p.ByteSize())
	if p == BFloat16 {
		b, err := d.take(2)
		if err != nil {
			return StrictVal{}, err
		}
		bits := uint32(binary.LittleEndian.Uint16(b)) << 16
		return VNumber(NumFromFloat64(float64(math.Float32frombits(bits)))), nil
	}
	if p.Class() == ClassFloat && width == 4 {
		b, err := d.take(4)
		if err != nil {
			return StrictVal{}, err
		}
		return VNumber(NumFromFloat64(float64(math.Float32frombits(binary.LittleEndian.Uint32(b))))), nil
	}
	if p.Class() == ClassFloat && width == 8 {
		b, err := d.take(8)
		if err != nil {
			return StrictVal{}, err
		}
		return VNumber(NumFromFloat64(math.Float64frombits(binary.LittleEndian.Uint64(b)))), nil
	}
	b, err := d.take(width)
	if err != nil {
		return StrictVal{}, err
	}
	if width <= 8 {
		var u uint64
		for i := 0; i < width; i++ {
			u |= uint64(b[i]) << (8 * i)
		}
		if p.Class() == ClassSigned {
			shift := 64 - width*8
			s := int64(u<<shift) >> shift
			return VNumber(NumFromInt64(s)), nil
		}
		if p.Class() == ClassNonZero && u == 0 {
			return StrictVal{}, &CodecError{Reason: fmt.Sprintf("%s must be non-zero", p)}
		}
		return VNumber(NumFromUint64(u)), nil
	}
	be := make([]byte, width)
	for i := 0; i < width; i++ {
		be[i] = b[width-1-i]
	}
	bi := new(big.Int).SetBytes(be)
	if p.Class() == ClassSigned {
		half := new(big.Int).Lsh(big.NewInt(1), uint(width*8-1))
		if bi.Cmp(half) >= 0 {
			mod := new(big.Int).Lsh(big.NewInt(1), uint(width*8))
			bi.Sub(bi, mod)
		}
		return VNumber(NumFromBigInt(bi, true)), nil
	}
	if p.Class() == ClassNonZero && bi.Sign() == 0 {
		return StrictVal{}, &CodecError{Reason: fmt.Sprintf("%s must be non-zero", p)}
	}
	return VNumber(NumFromBigInt(bi, false)), nil
}
