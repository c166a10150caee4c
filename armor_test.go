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

func TestArmorDearmorRoundTrip(t *testing.T) {
	sys, ids := buildTestSystem(t)
	val := VStruct(
		StrictValField{Name: MustFieldName("x"), Val: VNumber(NumFromUint64(9))},
		StrictValField{Name: MustFieldName("label"), Val: VString("hi")},
	)
	typed, err := Typify(sys, ids["Point"], val)
	require.NoError(t, err)

	armored, err := Armor(sys, typed.Id, typed.Val)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(armored, "-----BEGIN STRICT TYPE VALUE-----\n"))
	require.True(t, strings.HasSuffix(armored, "-----END STRICT TYPE VALUE-----\n"))
	require.Contains(t, armored, "Id: "+typed.Id.String())

	back, err := Dearmor(sys, armored)
	require.NoError(t, err)
	require.Equal(t, typed.Id, back.Id)
	require.Equal(t, typed.Val, back.Val)
}

func TestDearmorRejectsDigestMismatch(t *testing.T) {
	sys, ids := buildTestSystem(t)
	typed, err := Typify(sys, ids["Big"], VNumber(NumFromUint64(5)))
	require.NoError(t, err)
	armored, err := Armor(sys, typed.Id, typed.Val)
	require.NoError(t, err)

	tampered := strings.Replace(armored, "Digest: ", "Digest: ff", 1)
	_, err = Dearmor(sys, tampered)
	require.Error(t, err)
	var armorErr *ArmorError
	require.ErrorAs(t, err, &armorErr)
}

func TestDearmorRejectsMissingPlates(t *testing.T) {
	sys, _ := buildTestSystem(t)
	_, err := Dearmor(sys, "Id: deadbeef\nDigest: deadbeef\n")
	require.Error(t, err)
	var armorErr *ArmorError
	require.ErrorAs(t, err, &armorErr)
}

func TestDearmorRejectsMissingHeaders(t *testing.T) {
	sys, _ := buildTestSystem(t)
	malformed := "-----BEGIN STRICT TYPE VALUE-----\n\nABCD\n-----END STRICT TYPE VALUE-----\n"
	_, err := Dearmor(sys, malformed)
	require.Error(t, err)
	var armorErr *ArmorError
	require.ErrorAs(t, err, &armorErr)
}
