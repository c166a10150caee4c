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
	"bytes"
	"crypto/sha256"
	"encoding/ascii85"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	armorBegin = "-----BEGIN STRICT TYPE VALUE-----"
	armorEnd   = "-----END STRICT TYPE VALUE-----"
	armorWrap  = 64
)

// Armor renders a typified value as an ASCII-armored transport envelope: a
// base85-encoded, 64-column-wrapped payload framed by BEGIN/END plates and
// an Id/Digest header, suitable for pasting through text-only channels
// (email, chat, terminals) that a raw binary encoding would not survive.
func Armor(sys *TypeSystem, id SemId, val StrictVal) (string, error) {
	payload, err := Encode(sys, id, val)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(payload)

	var encoded bytes.Buffer
	enc := ascii85.NewEncoder(&encoded)
	if _, err := enc.Write(payload); err != nil {
		return "", &ArmorError{Reason: err.Error()}
	}
	if err := enc.Close(); err != nil {
		return "", &ArmorError{Reason: err.Error()}
	}

	var b strings.Builder
	b.WriteString(armorBegin)
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Id: %s\n", id)
	fmt.Fprintf(&b, "Digest: %s\n", hex.EncodeToString(digest[:]))
	b.WriteByte('\n')
	b.WriteString(wrapColumns(encoded.String(), armorWrap))
	b.WriteByte('\n')
	b.WriteString(armorEnd)
	b.WriteByte('\n')
	return b.String(), nil
}

func wrapColumns(s string, width int) string {
	var b strings.Builder
	for i := 0; i < len(s); i += width {
		end := i + width
		if end > len(s) {
			end = len(s)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s[i:end])
	}
	return b.String()
}

// Dearmor parses an ASCII-armored envelope produced by Armor, verifies its
// digest, and decodes the payload against sys.
func Dearmor(sys *TypeSystem, armored string) (TypedVal, error) {
	lines := strings.Split(strings.TrimRight(armored, "\n"), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != armorBegin {
		return TypedVal{}, &ArmorError{Reason: "missing BEGIN plate"}
	}
	if strings.TrimSpace(lines[len(lines)-1]) != armorEnd {
		return TypedVal{}, &ArmorError{Reason: "missing END plate"}
	}
	body := lines[1 : len(lines)-1]

	var idHex, digestHex string
	i := 0
	for ; i < len(body); i++ {
		line := body[i]
		if line == "" {
			i++
			break
		}
		switch {
		case strings.HasPrefix(line, "Id: "):
			idHex = strings.TrimPrefix(line, "Id: ")
		case strings.HasPrefix(line, "Digest: "):
			digestHex = strings.TrimPrefix(line, "Digest: ")
		default:
			return TypedVal{}, &ArmorError{Reason: fmt.Sprintf("unrecognized header line %q", line)}
		}
	}
	if idHex == "" || digestHex == "" {
		return TypedVal{}, &ArmorError{Reason: "missing Id or Digest header"}
	}

	idBytes, err := hex.DecodeString(idHex)
	if err != nil || len(idBytes) != 32 {
		return TypedVal{}, &ArmorError{Reason: "malformed Id header"}
	}
	var id SemId
	copy(id[:], idBytes)

	wantDigest, err := hex.DecodeString(digestHex)
	if err != nil || len(wantDigest) != 32 {
		return TypedVal{}, &ArmorError{Reason: "malformed Digest header"}
	}

	encoded := strings.Join(body[i:], "")
	// A single 'z' expands to four zero bytes, so size for the worst case.
	payload := make([]byte, 4*len(encoded))
	n, _, err := ascii85.Decode(payload, []byte(encoded), true)
	if err != nil {
		return TypedVal{}, &ArmorError{Reason: "invalid base85 payload: " + err.Error()}
	}
	payload = payload[:n]

	gotDigest := sha256.Sum256(payload)
	if !bytes.Equal(gotDigest[:], wantDigest) {
		return TypedVal{}, &ArmorError{Reason: "digest mismatch"}
	}

	val, err := Decode(sys, id, payload)
	if err != nil {
		return TypedVal{}, err
	}
	return TypedVal{Id: id, Val: val}, nil
}
