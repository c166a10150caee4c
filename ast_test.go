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

func TestNewEnumRejectsEmptyAndDuplicateTags(t *testing.T) {
	_, err := NewEnum[SemId](nil)
	require.Error(t, err)

	_, err = NewEnum[SemId]([]EnumVariant{
		{Tag: 0, Name: MustVariantName("a")},
		{Tag: 0, Name: MustVariantName("b")},
	})
	require.Error(t, err)
}

func TestNewUnionRejectsDuplicateTagsAndNames(t *testing.T) {
	leaf := ComputeSemId(NewPrimitive[SemId](U8))
	_, err := NewUnion([]UnionVariant[SemId]{
		{Tag: 0, Name: MustVariantName("a"), Ty: leaf},
		{Tag: 0, Name: MustVariantName("b"), Ty: leaf},
	})
	require.Error(t, err)

	_, err = NewUnion([]UnionVariant[SemId]{
		{Tag: 0, Name: MustVariantName("a"), Ty: leaf},
		{Tag: 1, Name: MustVariantName("a"), Ty: leaf},
	})
	require.Error(t, err)
}

func TestNewOptionIsRecognizedByIsOption(t *testing.T) {
	some := ComputeSemId(NewPrimitive[SemId](U32))
	unit := ComputeSemId(NewPrimitive[SemId](Unit))
	opt, err := NewOption(some, unit)
	require.NoError(t, err)
	require.True(t, opt.IsOption())
}

func TestNewTupleRejectsEmptyAndOversized(t *testing.T) {
	_, err := NewTuple[SemId](nil)
	require.Error(t, err)

	fields := make([]SemId, 256)
	leaf := ComputeSemId(NewPrimitive[SemId](U8))
	for i := range fields {
		fields[i] = leaf
	}
	_, err = NewTuple(fields)
	require.Error(t, err)
}

func TestNewTupleSingleFieldIsNewtype(t *testing.T) {
	leaf := ComputeSemId(NewPrimitive[SemId](U32))
	ty, err := NewTuple([]SemId{leaf})
	require.NoError(t, err)
	require.True(t, ty.IsNewtype())
	wrapped, ok := ty.AsWrappedTy()
	require.True(t, ok)
	require.Equal(t, leaf, wrapped)
}

func TestNewStructRejectsEmptyOversizedAndDuplicateNames(t *testing.T) {
	_, err := NewStruct[SemId](nil)
	require.Error(t, err)

	leaf := ComputeSemId(NewPrimitive[SemId](U8))
	_, err = NewStruct([]StructField[SemId]{
		{Name: MustFieldName("a"), Ty: leaf},
		{Name: MustFieldName("a"), Ty: leaf},
	})
	require.Error(t, err)
}

func TestIsCompoundClassification(t *testing.T) {
	leaf := ComputeSemId(NewPrimitive[SemId](U8))
	newtype, _ := NewTuple([]SemId{leaf})
	require.False(t, newtype.IsCompound())

	pair, _ := NewTuple([]SemId{leaf, leaf})
	require.True(t, pair.IsCompound())

	single, _ := NewStruct([]StructField[SemId]{{Name: MustFieldName("a"), Ty: leaf}})
	require.False(t, single.IsCompound())

	multi, _ := NewStruct([]StructField[SemId]{
		{Name: MustFieldName("a"), Ty: leaf},
		{Name: MustFieldName("b"), Ty: leaf},
	})
	require.True(t, multi.IsCompound())
}

func TestIterAndTyAtForStruct(t *testing.T) {
	leafA := ComputeSemId(NewPrimitive[SemId](U8))
	leafB := ComputeSemId(NewPrimitive[SemId](U16))
	ty, err := NewStruct([]StructField[SemId]{
		{Name: MustFieldName("a"), Ty: leafA},
		{Name: MustFieldName("b"), Ty: leafB},
	})
	require.NoError(t, err)

	items := ty.Iter()
	require.Len(t, items, 2)
	require.Equal(t, ItemNamedField, items[0].Case.Kind)
	require.Equal(t, "a", items[0].Case.Name)

	at1, ok := ty.TyAt(1)
	require.True(t, ok)
	require.Equal(t, leafB, at1)

	_, ok = ty.TyAt(2)
	require.False(t, ok)
}

func TestIterForMapYieldsKeyThenValue(t *testing.T) {
	key := ComputeSemId(NewPrimitive[SemId](U8))
	val := ComputeSemId(NewPrimitive[SemId](U32))
	ty := NewMap(key, val, Sizing{Min: 0, Max: 4})
	items := ty.Iter()
	require.Len(t, items, 2)
	require.Equal(t, ItemMapKey, items[0].Case.Kind)
	require.Equal(t, ItemMapValue, items[1].Case.Kind)
	require.Equal(t, key, items[0].Ref)
	require.Equal(t, val, items[1].Ref)
}

func TestIsByteArrayAndIsCharEnum(t *testing.T) {
	byteId := ComputeSemId(NewPrimitive[SemId](Byte))
	arr := NewArray(byteId, 4)
	require.True(t, arr.IsByteArray())

	chars, err := NewEnum[SemId]([]EnumVariant{
		{Tag: 'a', Name: MustVariantName("a")},
		{Tag: 'b', Name: MustVariantName("b")},
	})
	require.NoError(t, err)
	require.True(t, chars.IsCharEnum())

	nonAscii, err := NewEnum[SemId]([]EnumVariant{{Tag: 0xFF, Name: MustVariantName("hi")}})
	require.NoError(t, err)
	require.False(t, nonAscii.IsCharEnum())
}
