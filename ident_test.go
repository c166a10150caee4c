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

func TestNewIdentValid(t *testing.T) {
	for _, s := range []string{"a", "Point", "_private", "x1", strings.Repeat("a", MaxIdentLen)} {
		id, err := NewIdent(s)
		require.NoError(t, err, s)
		require.Equal(t, s, string(id))
	}
}

func TestNewIdentRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("a", MaxIdentLen+1)},
		{"starts with digit", "1abc"},
		{"contains space", "a b"},
		{"non-ascii", "caf\xc3\xa9"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewIdent(c.in)
			require.Error(t, err)
			var invalid *InvalidIdentError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestMustIdentPanicsOnInvalid(t *testing.T) {
	require.Panics(t, func() { MustIdent("1bad") })
	require.NotPanics(t, func() { MustIdent("good") })
}

func TestNamedConstructorsShareGrammar(t *testing.T) {
	tn, err := NewTypeName("Point")
	require.NoError(t, err)
	require.Equal(t, TypeName("Point"), tn)

	_, err = NewFieldName("")
	require.Error(t, err)

	vn := MustVariantName("red")
	require.Equal(t, VariantName("red"), vn)

	ln := MustLibName("sample")
	require.Equal(t, LibName("sample"), ln)
}
