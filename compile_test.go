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

func buildForwardRefLib(t *testing.T) *SymbolicLib {
	t.Helper()
	sym, err := NewLibBuilder(MustLibName("lib")).
		RegisterStruct(MustTypeName("A"), []StructField[TranspileRef]{
			{Name: MustFieldName("b"), Ty: NewNamedRef(MustTypeName("B"))},
		}).
		RegisterPrimitive(MustTypeName("B"), U32).
		Build()
	require.NoError(t, err)
	return sym
}

func TestCompileLibResolvesForwardReferences(t *testing.T) {
	sym := buildForwardRefLib(t)
	compiled, err := CompileLib(sym)
	require.NoError(t, err)
	require.Len(t, compiled.Types, 2)

	a := compiled.Types[MustTypeName("A")]
	require.Equal(t, ClsStruct, a.Class)
	id, name, ok := a.StructFields[0].Ty.Resolved()
	require.True(t, ok)
	require.Equal(t, MustTypeName("B"), name)
	require.NotEqual(t, SemId{}, id)
}

// embedChain wraps leaf in levels nested Embedded(struct{v: ...}) layers, to
// probe the compile pipeline's bounded inlining depth: the LibRef -> InlineRef
// -> InlineRef1 -> InlineRef2 chain has exactly three embedding transitions,
// so levels == 3 must still resolve (InlineRef2 receives leaf directly) while
// levels == 4 must fail (InlineRef2 would have to receive a further Embedded
// ref, which it has no case for).
func embedChain(levels int, leaf TranspileRef) TranspileRef {
	cur := leaf
	for i := 0; i < levels; i++ {
		s := Ty[TranspileRef]{Class: ClsStruct, StructFields: []StructField[TranspileRef]{
			{Name: MustFieldName("v"), Ty: cur},
		}}
		cur = NewEmbeddedRef(&s)
	}
	return cur
}

func TestCompileLibAllowsThreeInlineLevels(t *testing.T) {
	ref := embedChain(3, NewNamedRef(MustTypeName("Leaf")))
	sym, err := NewLibBuilder(MustLibName("lib")).
		RegisterPrimitive(MustTypeName("Leaf"), U8).
		RegisterStruct(MustTypeName("Outer"), []StructField[TranspileRef]{
			{Name: MustFieldName("v"), Ty: ref},
		}).
		Build()
	require.NoError(t, err)
	_, err = CompileLib(sym)
	require.NoError(t, err)
}

func TestCompileLibRejectsFourthInlineLevel(t *testing.T) {
	ref := embedChain(4, NewNamedRef(MustTypeName("Leaf")))
	sym, err := NewLibBuilder(MustLibName("lib")).
		RegisterPrimitive(MustTypeName("Leaf"), U8).
		RegisterStruct(MustTypeName("Outer"), []StructField[TranspileRef]{
			{Name: MustFieldName("v"), Ty: ref},
		}).
		Build()
	require.NoError(t, err)
	_, err = CompileLib(sym)
	require.Error(t, err)
	var nested *NestedInlineError
	require.ErrorAs(t, err, &nested)
}

func TestCompileLibReportsUnresolvableCircularReference(t *testing.T) {
	sym, err := NewLibBuilder(MustLibName("lib")).
		RegisterStruct(MustTypeName("A"), []StructField[TranspileRef]{
			{Name: MustFieldName("b"), Ty: NewNamedRef(MustTypeName("B"))},
		}).
		RegisterStruct(MustTypeName("B"), []StructField[TranspileRef]{
			{Name: MustFieldName("a"), Ty: NewNamedRef(MustTypeName("A"))},
		}).
		Build()
	require.NoError(t, err)
	_, err = CompileLib(sym)
	require.Error(t, err)
}
