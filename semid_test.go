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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeSemIdDeterministic(t *testing.T) {
	ty := NewPrimitive[SemId](U32)
	require.Equal(t, ComputeSemId(ty), ComputeSemId(ty))
}

func TestComputeSemIdDiffersByPayload(t *testing.T) {
	require.NotEqual(t, ComputeSemId(NewPrimitive[SemId](U32)), ComputeSemId(NewPrimitive[SemId](U64)))
}

func TestComputeSemIdAnonymousTypesShareIdByShape(t *testing.T) {
	a, err := NewStruct([]StructField[SemId]{
		{Name: MustFieldName("x"), Ty: ComputeSemId(NewPrimitive[SemId](U32))},
	})
	require.NoError(t, err)
	b, err := NewStruct([]StructField[SemId]{
		{Name: MustFieldName("x"), Ty: ComputeSemId(NewPrimitive[SemId](U32))},
	})
	require.NoError(t, err)
	// Two independently built, structurally identical ANONYMOUS types (no
	// library-declared name involved) share a SemId: ComputeSemId commits
	// only to shape. This does not hold for named top-level declarations -
	// see TestComputeNamedSemIdDependsOnName below.
	require.Equal(t, ComputeSemId(a), ComputeSemId(b))
}

func TestComputeNamedSemIdDependsOnName(t *testing.T) {
	// Meters and Seconds both wrap U32, but as distinct named declarations
	// they must not collapse to the same id.
	meters := NewPrimitive[SemId](U32)
	seconds := NewPrimitive[SemId](U32)
	metersId := ComputeNamedSemId(meters, MustTypeName("Meters"))
	secondsId := ComputeNamedSemId(seconds, MustTypeName("Seconds"))
	require.NotEqual(t, metersId, secondsId)

	// Same name, same body: deterministic and equal.
	require.Equal(t, metersId, ComputeNamedSemId(meters, MustTypeName("Meters")))
}

func TestComputeNamedSemIdNotNewtypeTransparent(t *testing.T) {
	// A named declaration over a single-field tuple must keep its own
	// identity, unlike an anonymous newtype use of the same shape.
	wrapped := ComputeSemId(NewPrimitive[SemId](U32))
	newtype, err := NewTuple([]SemId{wrapped})
	require.NoError(t, err)
	named := ComputeNamedSemId(newtype, MustTypeName("Wrapper"))
	require.NotEqual(t, wrapped, named)
}

func TestComputeSemIdFieldOrderMatters(t *testing.T) {
	xTy := ComputeSemId(NewPrimitive[SemId](U32))
	yTy := ComputeSemId(NewPrimitive[SemId](U64))
	a, _ := NewStruct([]StructField[SemId]{
		{Name: MustFieldName("x"), Ty: xTy},
		{Name: MustFieldName("y"), Ty: yTy},
	})
	b, _ := NewStruct([]StructField[SemId]{
		{Name: MustFieldName("y"), Ty: yTy},
		{Name: MustFieldName("x"), Ty: xTy},
	})
	require.NotEqual(t, ComputeSemId(a), ComputeSemId(b))
}

func TestComputeSemIdNewtypeTransparency(t *testing.T) {
	wrapped := ComputeSemId(NewPrimitive[SemId](U32))
	newtype, err := NewTuple([]SemId{wrapped})
	require.NoError(t, err)
	require.Equal(t, wrapped, ComputeSemId(newtype))
}

func TestSemIdIsByteAndIsUnicodeChar(t *testing.T) {
	require.True(t, ComputeSemId(NewPrimitive[SemId](Byte)).IsByte())
	require.False(t, ComputeSemId(NewPrimitive[SemId](U8)).IsByte())
	require.True(t, ComputeSemId(NewUnicodeChar[SemId]()).IsUnicodeChar())
	require.False(t, ComputeSemId(NewPrimitive[SemId](Byte)).IsUnicodeChar())
}

func TestComputeSemIdCommitsEnumVariantTagsAndNames(t *testing.T) {
	a, err := NewEnum[SemId]([]EnumVariant{{Tag: 0, Name: MustVariantName("red")}, {Tag: 1, Name: MustVariantName("blue")}})
	require.NoError(t, err)
	b, err := NewEnum[SemId]([]EnumVariant{{Tag: 0, Name: MustVariantName("red")}, {Tag: 1, Name: MustVariantName("green")}})
	require.NoError(t, err)
	require.NotEqual(t, ComputeSemId(a), ComputeSemId(b))
}
