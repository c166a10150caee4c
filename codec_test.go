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
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTestSystem assembles a small type system exercising a struct, a
// union, a list, a set, a map, an ascii string, a unicode char and a
// wide (>8 byte) unsigned integer, reused across the codec/typify/text/armor
// tests.
func buildTestSystem(t *testing.T) (*TypeSystem, map[string]SemId) {
	t.Helper()

	u32 := NewPrimitive[TranspileRef](U32)

	fields, err := NewStructBuilder().
		Field(MustFieldName("x"), NewEmbeddedRef(&u32)).
		Field(MustFieldName("label"), NewNamedRef(MustTypeName("Name"))).
		Build()
	require.NoError(t, err)

	variants, err := NewUnionBuilder().
		Tagged(0, MustVariantName("red"), NewEmbeddedRef(&u32)).
		Tagged(1, MustVariantName("blue"), NewEmbeddedRef(&u32)).
		Build()
	require.NoError(t, err)

	sym, err := NewLibBuilder(MustLibName("t")).
		RegisterAsciiStr(MustTypeName("Name"), Sizing{Min: 0, Max: 32}).
		RegisterStruct(MustTypeName("Point"), fields).
		RegisterUnion(MustTypeName("Color"), variants).
		RegisterPrimitive(MustTypeName("Big"), U256).
		RegisterUnicode(MustTypeName("Letter")).
		RegisterList(MustTypeName("Points"), NewNamedRef(MustTypeName("Point")), Sizing{Min: 0, Max: 16}).
		RegisterSet(MustTypeName("Tags"), NewNamedRef(MustTypeName("Name")), Sizing{Min: 0, Max: 16}).
		RegisterMap(MustTypeName("ByTag"), NewNamedRef(MustTypeName("Name")), NewNamedRef(MustTypeName("Point")), Sizing{Min: 0, Max: 16}).
		Build()
	require.NoError(t, err)

	compiled, err := CompileLib(sym)
	require.NoError(t, err)

	sys, err := NewSystemBuilder().Import(compiled).Finalize()
	require.NoError(t, err)

	names := map[string]SemId{}
	ssys := NewSymbolicSys(sys)
	for _, n := range []string{"Name", "Point", "Color", "Big", "Letter", "Points", "Tags", "ByTag"} {
		id, ok := ssys.IdByName("t." + n)
		require.True(t, ok, n)
		names[n] = id
	}
	return sys, names
}

func TestCodecRoundTripStruct(t *testing.T) {
	sys, ids := buildTestSystem(t)
	val := VStruct(
		StrictValField{Name: MustFieldName("x"), Val: VNumber(NumFromUint64(7))},
		StrictValField{Name: MustFieldName("label"), Val: VString("hello")},
	)
	typed, err := Typify(sys, ids["Point"], val)
	require.NoError(t, err)

	data, err := Encode(sys, typed.Id, typed.Val)
	require.NoError(t, err)

	decoded, err := Decode(sys, ids["Point"], data)
	require.NoError(t, err)
	require.Equal(t, typed.Val, decoded)
}

func TestCodecRoundTripUnion(t *testing.T) {
	sys, ids := buildTestSystem(t)
	val := VUnion(TagByName(MustVariantName("blue")), VNumber(NumFromUint64(42)))
	typed, err := Typify(sys, ids["Color"], val)
	require.NoError(t, err)

	data, err := Encode(sys, typed.Id, typed.Val)
	require.NoError(t, err)
	require.Equal(t, byte(1), data[0])

	decoded, err := Decode(sys, ids["Color"], data)
	require.NoError(t, err)
	require.Equal(t, typed.Val, decoded)
}

func TestCodecRoundTripWideUnsignedPrimitive(t *testing.T) {
	sys, ids := buildTestSystem(t)
	big1 := new(big.Int).Lsh(big.NewInt(1), 200)
	val := VNumber(NumFromBigInt(big1, false))
	typed, err := Typify(sys, ids["Big"], val)
	require.NoError(t, err)

	data, err := Encode(sys, typed.Id, typed.Val)
	require.NoError(t, err)
	require.Len(t, data, 32)

	decoded, err := Decode(sys, ids["Big"], data)
	require.NoError(t, err)
	require.Equal(t, 0, big1.Cmp(decoded.Number.Big))
}

func TestCodecRoundTripUnicodeChar(t *testing.T) {
	sys, ids := buildTestSystem(t)
	typed, err := Typify(sys, ids["Letter"], VString("é"))
	require.NoError(t, err)

	data, err := Encode(sys, typed.Id, typed.Val)
	require.NoError(t, err)

	decoded, err := Decode(sys, ids["Letter"], data)
	require.NoError(t, err)
	require.Equal(t, "é", decoded.Str)
}

func TestCodecRoundTripSetCanonicalOrder(t *testing.T) {
	sys, ids := buildTestSystem(t)
	// Equal-length strings so canonical order (by encoded byte key, which
	// includes the ascii string's own length prefix) reduces to plain
	// lexicographic content order.
	typed, err := Typify(sys, ids["Tags"], VSet(VString("ccc"), VString("aaa"), VString("bbb")))
	require.NoError(t, err)
	require.Equal(t, "aaa", typed.Val.Set[0].Str)
	require.Equal(t, "ccc", typed.Val.Set[len(typed.Val.Set)-1].Str)

	data, err := Encode(sys, typed.Id, typed.Val)
	require.NoError(t, err)
	decoded, err := Decode(sys, ids["Tags"], data)
	require.NoError(t, err)
	require.Equal(t, typed.Val, decoded)
}

func TestTypifyRejectsDuplicateSetElements(t *testing.T) {
	sys, ids := buildTestSystem(t)
	_, err := Typify(sys, ids["Tags"], VSet(VString("a"), VString("a")))
	require.Error(t, err)
}

func TestDecodeRejectsOutOfOrderSet(t *testing.T) {
	sys, ids := buildTestSystem(t)
	// "aaa" and "bbb" share a length, so their relative order in the
	// encoded bytes is determined purely by content, making the swap below
	// unambiguous.
	typed, err := Typify(sys, ids["Tags"], VSet(VString("aaa"), VString("bbb")))
	require.NoError(t, err)
	data, err := Encode(sys, typed.Id, typed.Val)
	require.NoError(t, err)

	// Swap the two entries to break ascending order and confirm Decode
	// catches it: set-count prefix is 1 byte, then each entry is a 1-byte
	// ascii length prefix followed by 3 content bytes.
	const countPrefix = 1
	const entryLen = 1 + 3
	require.Equal(t, countPrefix+2*entryLen, len(data))
	first := data[countPrefix : countPrefix+entryLen]
	second := data[countPrefix+entryLen:]
	reordered := append([]byte{}, data[:countPrefix]...)
	reordered = append(reordered, second...)
	reordered = append(reordered, first...)

	_, err = Decode(sys, ids["Tags"], reordered)
	require.Error(t, err)
	var order *WrongTypeOrderingError
	require.ErrorAs(t, err, &order)
}

func TestCodecRoundTripMap(t *testing.T) {
	sys, ids := buildTestSystem(t)
	p1 := VStruct(StrictValField{Name: MustFieldName("x"), Val: VNumber(NumFromUint64(1))}, StrictValField{Name: MustFieldName("label"), Val: VString("a")})
	p2 := VStruct(StrictValField{Name: MustFieldName("x"), Val: VNumber(NumFromUint64(2))}, StrictValField{Name: MustFieldName("label"), Val: VString("b")})
	typed, err := Typify(sys, ids["ByTag"], VMap(
		StrictMapEntry{Key: VString("k2"), Val: p2},
		StrictMapEntry{Key: VString("k1"), Val: p1},
	))
	require.NoError(t, err)
	require.Equal(t, "k1", typed.Val.MapEntries[0].Key.Str)

	data, err := Encode(sys, typed.Id, typed.Val)
	require.NoError(t, err)
	decoded, err := Decode(sys, ids["ByTag"], data)
	require.NoError(t, err)
	require.Equal(t, typed.Val, decoded)
}
