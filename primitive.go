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

// Primitive is a single byte encoding a numeric class and a bit width. It is
// both the in-memory and the on-wire/in-hash representation (spec.md §3.1).
type Primitive byte

// Numeric classes, held in the top two bits of the primitive code.
const (
	classUnsigned byte = 0x00
	classSigned   byte = 0x40
	classNonZero  byte = 0x80
	classFloat    byte = 0xC0
	classMask     byte = 0xC0
	widthMask     byte = 0x1F
	factorBit     byte = 0x20
)

// Reserved singleton codes.
const (
	Unit       Primitive = 0x00
	Byte       Primitive = 0x40
	AsciiChar  Primitive = 0x80
	BFloat16   Primitive = 0xC0
)

// NumClass classifies the numeric family of a Primitive.
type NumClass byte

const (
	ClassUnsigned NumClass = NumClass(classUnsigned)
	ClassSigned   NumClass = NumClass(classSigned)
	ClassNonZero  NumClass = NumClass(classNonZero)
	ClassFloat    NumClass = NumClass(classFloat)
)

// Class returns the numeric class of p.
func (p Primitive) Class() NumClass { return NumClass(byte(p) & classMask) }

// ByteSize returns the width of p, in bytes, per the direct/factored
// encoding of spec.md §3.1: the low 5 bits are either a direct byte count
// (0..31) or, when bit 5 is set, a factor f with width = 16*(f+2). The
// reserved Byte and AsciiChar singletons are one byte wide and BFloat16 two.
func (p Primitive) ByteSize() uint16 {
	switch p {
	case Byte, AsciiChar:
		return 1
	case BFloat16:
		return 2
	}
	code := byte(p)
	low := code & widthMask
	if code&factorBit == 0 {
		return uint16(low)
	}
	return 16 * (uint16(low) + 2)
}

// makePrimitive builds the Primitive code for a number of the given class
// and byte width, choosing direct encoding when possible and factored
// encoding otherwise.
func makePrimitive(class byte, width uint16) Primitive {
	if width <= 31 {
		return Primitive(class | byte(width))
	}
	if width%16 != 0 || width/16 < 2 {
		panic(fmt.Sprintf("width %d is not representable by a strict-types primitive code", width))
	}
	f := width/16 - 2
	if f > 31 {
		panic(fmt.Sprintf("width %d exceeds the maximum representable primitive width", width))
	}
	return Primitive(class | factorBit | byte(f))
}

// Unsigned returns the Primitive code for an unsigned integer of the given
// byte width (e.g. Unsigned(8) is U64).
func Unsigned(widthBytes uint16) Primitive { return makePrimitive(classUnsigned, widthBytes) }

// Signed returns the Primitive code for a two's-complement signed integer.
func Signed(widthBytes uint16) Primitive { return makePrimitive(classSigned, widthBytes) }

// NonZero returns the Primitive code for a non-zero unsigned integer.
func NonZero(widthBytes uint16) Primitive { return makePrimitive(classNonZero, widthBytes) }

// Float returns the Primitive code for an IEEE-754 float of the given width.
func Float(widthBytes uint16) Primitive { return makePrimitive(classFloat, widthBytes) }

// Conventional widths exercised by the codec, typify and text-form tests.
var (
	U8   = Unsigned(1)
	U16  = Unsigned(2)
	U24  = Unsigned(3)
	U32  = Unsigned(4)
	U48  = Unsigned(6)
	U64  = Unsigned(8)
	U128 = Unsigned(16)
	U256 = Unsigned(32)

	I8   = Signed(1)
	I16  = Signed(2)
	I32  = Signed(4)
	I64  = Signed(8)
	I128 = Signed(16)

	F32 = Float(4)
	F64 = Float(8)
)

// IsSmallUnsigned reports whether p is an unsigned integer narrow enough to
// fit a Go uint64 directly (width <= 8 bytes, matching the reference
// distinction between "small" and "big" unsigned primitives).
func (p Primitive) IsSmallUnsigned() bool {
	return p.Class() == ClassUnsigned && p.ByteSize() <= 8
}

// IsLargeUnsigned reports whether p is an unsigned integer too wide for a
// native machine word and thus backed by a big integer.
func (p Primitive) IsLargeUnsigned() bool {
	return p.Class() == ClassUnsigned && p.ByteSize() > 8
}

// IsSmallSigned reports whether p is a signed integer narrow enough to fit a
// Go int64.
func (p Primitive) IsSmallSigned() bool {
	return p.Class() == ClassSigned && p.ByteSize() <= 8
}

// IsLargeSigned reports whether p is a signed integer requiring a big
// integer representation.
func (p Primitive) IsLargeSigned() bool {
	return p.Class() == ClassSigned && p.ByteSize() > 8
}

// conventionalName renders p using the short names used by the canonical
// text form (spec.md §4.9): U8, I64, N32, F64, and so on, with the reserved
// singletons spelled out.
func (p Primitive) conventionalName() string {
	switch p {
	case Unit:
		return "Unit"
	case Byte:
		return "Byte"
	case AsciiChar:
		return "Ascii"
	case BFloat16:
		return "BFloat16"
	}
	var prefix string
	switch p.Class() {
	case ClassUnsigned:
		prefix = "U"
	case ClassSigned:
		prefix = "I"
	case ClassNonZero:
		prefix = "N"
	case ClassFloat:
		prefix = "F"
	}
	return fmt.Sprintf("%s%d", prefix, p.ByteSize()*8)
}

func (p Primitive) String() string { return p.conventionalName() }
