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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeTextPrintsRegisteredSymbol(t *testing.T) {
	sys, ids := buildTestSystem(t)
	require.Equal(t, "t.Name", TypeText(sys, ids["Name"]))
	require.Equal(t, "t.Point", TypeText(sys, ids["Point"]))
}

func TestTypeTextPrintsNamedListAndElementBySymbol(t *testing.T) {
	sys, ids := buildTestSystem(t)
	listText := TypeText(sys, ids["Points"])
	require.Equal(t, "t.Points", listText)

	ty := sys.Types[ids["Points"]]
	require.Equal(t, ClsList, ty.Class)
	elemText := TypeText(sys, ty.CollElem)
	require.Equal(t, "t.Point", elemText)
}

func TestDumpLibSortedAndDiffable(t *testing.T) {
	sys, _ := buildTestSystem(t)
	_ = sys
	lib := compileSingleTypeLib(t, "dumpable", "A", U32)
	dump := DumpLib(lib)
	require.True(t, strings.HasPrefix(dump, "typelib dumpable\n\n"))
	require.Contains(t, dump, "data A :: ")
}

func TestValueTextRendersStructAndUnion(t *testing.T) {
	sys, ids := buildTestSystem(t)
	val := VStruct(
		StrictValField{Name: MustFieldName("x"), Val: VNumber(NumFromUint64(3))},
		StrictValField{Name: MustFieldName("label"), Val: VString("hi")},
	)
	typed, err := Typify(sys, ids["Point"], val)
	require.NoError(t, err)
	text := ValueText(sys, typed)
	require.Contains(t, text, "x:")
	require.Contains(t, text, `"hi"`)

	union, err := Typify(sys, ids["Color"], VUnion(TagByName(MustVariantName("red")), VNumber(NumFromUint64(1))))
	require.NoError(t, err)
	unionText := ValueText(sys, union)
	require.Equal(t, "red(1)", unionText)
}
