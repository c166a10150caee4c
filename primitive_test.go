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

func TestPrimitiveConventionalWidths(t *testing.T) {
	cases := []struct {
		p        Primitive
		wantSize uint16
		wantName string
	}{
		{U8, 1, "U8"},
		{U16, 2, "U16"},
		{U32, 4, "U32"},
		{U64, 8, "U64"},
		{U128, 16, "U128"},
		{U256, 32, "U256"},
		{I8, 1, "I8"},
		{I64, 8, "I64"},
		{F32, 4, "F32"},
		{F64, 8, "F64"},
		{Unit, 0, "Unit"},
		{Byte, 1, "Byte"},
		{AsciiChar, 1, "Ascii"},
		{BFloat16, 2, "BFloat16"},
	}
	for _, c := range cases {
		require.Equal(t, c.wantSize, c.p.ByteSize(), c.wantName)
		require.Equal(t, c.wantName, c.p.String())
	}
}

func TestPrimitiveClass(t *testing.T) {
	require.Equal(t, ClassUnsigned, U32.Class())
	require.Equal(t, ClassSigned, I32.Class())
	require.Equal(t, ClassFloat, F64.Class())
	require.Equal(t, ClassNonZero, NonZero(4).Class())
}

func TestPrimitiveSmallVsLarge(t *testing.T) {
	require.True(t, U64.IsSmallUnsigned())
	require.False(t, U64.IsLargeUnsigned())
	require.True(t, U128.IsLargeUnsigned())
	require.False(t, U128.IsSmallUnsigned())

	require.True(t, I64.IsSmallSigned())
	require.True(t, I128.IsLargeSigned())
}

func TestMakePrimitiveFactoredWidth(t *testing.T) {
	p := Unsigned(256)
	require.Equal(t, uint16(256), p.ByteSize())
	require.True(t, p.IsLargeUnsigned())
}

func TestMakePrimitivePanicsOnUnrepresentableWidth(t *testing.T) {
	require.Panics(t, func() { Unsigned(33) })
}
