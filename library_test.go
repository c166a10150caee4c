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

func TestLibBuilderRejectsUnknownNamedRef(t *testing.T) {
	_, err := NewLibBuilder(MustLibName("lib")).
		RegisterStruct(MustTypeName("Point"), []StructField[TranspileRef]{
			{Name: MustFieldName("x"), Ty: NewNamedRef(MustTypeName("Missing"))},
		}).
		Build()
	require.Error(t, err)
	var unknown *UnknownTypeError
	require.ErrorAs(t, err, &unknown)
}

func TestLibBuilderRejectsUnknownExternLib(t *testing.T) {
	_, err := NewLibBuilder(MustLibName("lib")).
		RegisterStruct(MustTypeName("Point"), []StructField[TranspileRef]{
			{Name: MustFieldName("x"), Ty: NewExternRef(MustLibName("other"), MustTypeName("T"))},
		}).
		Build()
	require.Error(t, err)
	var unknownLib *UnknownLibError
	require.ErrorAs(t, err, &unknownLib)
}

func TestLibBuilderRejectsDependencyMissingType(t *testing.T) {
	_, err := NewLibBuilder(MustLibName("lib")).
		AddDependency(Dependency{Lib: MustLibName("other"), Types: ExternTypes{}}).
		RegisterStruct(MustTypeName("Point"), []StructField[TranspileRef]{
			{Name: MustFieldName("x"), Ty: NewExternRef(MustLibName("other"), MustTypeName("T"))},
		}).
		Build()
	require.Error(t, err)
	var missing *DependencyMissesTypeError
	require.ErrorAs(t, err, &missing)
}

func TestLibBuilderRejectsDuplicateTypeName(t *testing.T) {
	_, err := NewLibBuilder(MustLibName("lib")).
		RegisterPrimitive(MustTypeName("T"), U8).
		RegisterPrimitive(MustTypeName("T"), U16).
		Build()
	require.Error(t, err)
}

func TestLibBuilderAcceptsForwardAndSelfConsistentRefs(t *testing.T) {
	sym, err := NewLibBuilder(MustLibName("lib")).
		RegisterStruct(MustTypeName("Point"), []StructField[TranspileRef]{
			{Name: MustFieldName("next"), Ty: NewNamedRef(MustTypeName("Point2"))},
		}).
		RegisterPrimitive(MustTypeName("Point2"), U8).
		Build()
	require.NoError(t, err)
	require.Len(t, sym.Types, 2)
}

func TestStructBuilderRejectsDuplicateFieldName(t *testing.T) {
	_, err := NewStructBuilder().
		Field(MustFieldName("x"), NewNamedRef(MustTypeName("T"))).
		Field(MustFieldName("x"), NewNamedRef(MustTypeName("T"))).
		Build()
	require.Error(t, err)
}

func TestLibBuilderRejectsInvalidMapSizing(t *testing.T) {
	_, err := NewLibBuilder(MustLibName("lib")).
		RegisterPrimitive(MustTypeName("K"), U8).
		RegisterPrimitive(MustTypeName("V"), U8).
		RegisterMap(MustTypeName("M"), NewNamedRef(MustTypeName("K")), NewNamedRef(MustTypeName("V")), Sizing{Min: 5, Max: 1}).
		Build()
	require.Error(t, err)
	var invalid *InvalidSizingError
	require.ErrorAs(t, err, &invalid)
}

func TestLibBuilderRejectsInvalidListSizing(t *testing.T) {
	_, err := NewLibBuilder(MustLibName("lib")).
		RegisterPrimitive(MustTypeName("V"), U8).
		RegisterList(MustTypeName("L"), NewNamedRef(MustTypeName("V")), Sizing{Min: 5, Max: 1}).
		Build()
	require.Error(t, err)
	var invalid *InvalidSizingError
	require.ErrorAs(t, err, &invalid)
}

func TestUnionBuilderAutoTagsAndRejectsDuplicates(t *testing.T) {
	variants, err := NewUnionBuilder().
		Variant(MustVariantName("a"), NewNamedRef(MustTypeName("T"))).
		Variant(MustVariantName("b"), NewNamedRef(MustTypeName("T"))).
		Build()
	require.NoError(t, err)
	require.Equal(t, byte(0), variants[0].Tag)
	require.Equal(t, byte(1), variants[1].Tag)

	_, err = NewUnionBuilder().
		Tagged(5, MustVariantName("a"), NewNamedRef(MustTypeName("T"))).
		Tagged(5, MustVariantName("b"), NewNamedRef(MustTypeName("T"))).
		Build()
	require.Error(t, err)
}
