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
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// semIdTag is the domain-separation tag committed into every SemId, keeping
// strict-types hashes from colliding with unrelated SHA-256 commitments
// using the same payload bytes (spec.md §3.6).
const semIdTag = "urn:ubideco:strict-types:typ:v01"

// semIdTagHash is SHA-256(semIdTag), computed once and prefixed twice at the
// start of every commitment, matching the tagged-hash construction the
// original implementation uses to bind the tag into the digest twice before
// any payload byte is absorbed.
var semIdTagHash = sha256.Sum256([]byte(semIdTag))

// SemId is the 32-byte semantic identifier of a type: a cryptographic
// commitment to its full memory layout (shape, field/variant names, order).
// An anonymous type's SemId (ComputeSemId) commits only that layout, so two
// structurally identical anonymous sub-expressions always share an id. A
// library's named top-level declaration additionally commits its own bare
// name ahead of the body (ComputeNamedSemId): two distinctly named
// declarations over the same shape are distinct types with distinct ids.
type SemId [32]byte

// String renders id as a lowercase hex string.
func (id SemId) String() string { return hex.EncodeToString(id[:]) }

// IsByte reports whether id names the reserved Byte primitive. SemId
// implements Ref directly: once a type system is fully compiled, every
// sub-reference is just the SemId of the referenced type, and the codec and
// typify layers only ever need to ask "is the referenced type exactly Byte /
// exactly UnicodeChar", which the compiled TypeSystem can answer by identity
// comparison against the well-known ids of those two singleton types.
func (id SemId) IsByte() bool { return id == byteSemId }

// IsUnicodeChar reports whether id names the reserved UnicodeChar type.
func (id SemId) IsUnicodeChar() bool { return id == unicodeCharSemId }

// byteSemId and unicodeCharSemId are computed once from the corresponding
// Ty[SemId] definitions so IsByte/IsUnicodeChar can compare by value instead
// of needing a live TypeSystem.
var (
	byteSemId        = ComputeSemId(NewPrimitive[SemId](Byte))
	unicodeCharSemId = ComputeSemId(NewUnicodeChar[SemId]())
)

// semHasher accumulates a type's canonical payload bytes behind the tagged
// SHA-256 prefix and produces the final SemId.
type semHasher struct {
	h []byte
}

func newSemHasher() *semHasher {
	h := &semHasher{h: make([]byte, 0, 256)}
	h.h = append(h.h, semIdTagHash[:]...)
	h.h = append(h.h, semIdTagHash[:]...)
	return h
}

func (h *semHasher) writeByte(b byte) { h.h = append(h.h, b) }

func (h *semHasher) writeBytes(b []byte) { h.h = append(h.h, b...) }

func (h *semHasher) writeU16LE(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	h.writeBytes(buf[:])
}

func (h *semHasher) writeU64LE(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.writeBytes(buf[:])
}

// writeIdent commits a length-prefixed identifier: a single byte count
// followed by its ASCII bytes. MaxIdentLen guarantees the count fits a byte.
func (h *semHasher) writeIdent(s string) {
	h.writeByte(byte(len(s)))
	h.h = append(h.h, s...)
}

func (h *semHasher) writeSemId(id SemId) { h.writeBytes(id[:]) }

func (h *semHasher) sum() SemId {
	digest := sha256.Sum256(h.h)
	return SemId(digest)
}

// semCommit writes t's canonical payload into h: the class byte, then a
// class-specific body covering everything that distinguishes t's memory
// layout from any other type of the same class (spec.md §4.2).
func (t Ty[R]) semCommit(h *semHasher) {
	h.writeByte(byte(t.Class))
	switch t.Class {
	case ClsPrimitive:
		h.writeByte(byte(t.Primitive))
	case ClsUnicode:
		// singleton, no payload
	case ClsAsciiStr:
		t.AsciiSizing.semCommit(h)
	case ClsEnum:
		h.writeByte(byte(len(t.EnumVariants)))
		for _, v := range t.EnumVariants {
			h.writeByte(v.Tag)
			h.writeIdent(string(v.Name))
		}
	case ClsUnion:
		h.writeByte(byte(len(t.UnionVariants)))
		for _, v := range t.UnionVariants {
			h.writeByte(v.Tag)
			h.writeIdent(string(v.Name))
			commitRef(h, v.Ty)
		}
	case ClsTuple:
		h.writeByte(byte(len(t.TupleFields)))
		for _, f := range t.TupleFields {
			commitRef(h, f)
		}
	case ClsStruct:
		h.writeByte(byte(len(t.StructFields)))
		for _, f := range t.StructFields {
			h.writeIdent(string(f.Name))
			commitRef(h, f.Ty)
		}
	case ClsArray:
		commitRef(h, t.ArrayElem)
		h.writeU16LE(t.ArrayLen)
	case ClsList, ClsSet:
		commitRef(h, t.CollElem)
		t.CollSizing.semCommit(h)
	case ClsMap:
		commitRef(h, t.MapKey)
		commitRef(h, t.MapVal)
		t.MapSizing.semCommit(h)
	}
}

// refSemId is implemented only by SemId, letting commitRef commit a
// sub-reference's 32 bytes directly when R is fully resolved, while still
// type-checking generically over Ref for every other reference flavor (for
// which committing is meaningless: only a compiled Ty[SemId] is ever
// hashed).
type refSemId interface {
	Ref
	semIdBytes() SemId
}

func (id SemId) semIdBytes() SemId { return id }

// commitRef writes r's contribution to a parent commitment. Only SemId
// sub-references can be committed, since hashing requires every nested type
// to already be resolved to its final identity; calling semCommit on a
// Ty[R] for any other R is a programmer error and panics.
func commitRef[R Ref](h *semHasher, r R) {
	rs, ok := any(r).(refSemId)
	if !ok {
		panic("semCommit: cannot hash a type tree that is not fully resolved to SemId references")
	}
	h.writeSemId(rs.semIdBytes())
}

// ComputeSemId computes the semantic id of an anonymous type: one reached
// only by structural position (an inline/embedded sub-expression), never by
// a library-declared name. Newtypes (single-field tuples) are transparent
// here: a newtype's SemId is defined to be its wrapped type's SemId, since
// the two are indistinguishable on the wire and in canonical text form.
//
// A library's own top-level declarations must use ComputeNamedSemId instead
// (spec.md §3.6): only anonymous sub-expressions get their id from shape
// alone.
func ComputeSemId(ty Ty[SemId]) SemId {
	if wrapped, ok := ty.AsWrappedTy(); ok {
		return wrapped
	}
	h := newSemHasher()
	ty.semCommit(h)
	return h.sum()
}

// ComputeNamedSemId computes the semantic id of a library-declared top-level
// type, committing its name ahead of its body (spec.md §3.6, §4.2:
// sem_id_named). Unlike ComputeSemId, this is never newtype-transparent: two
// distinctly named declarations that happen to wrap the same type are
// distinct types and must get distinct ids, even though an anonymous inline
// use of that same wrapped shape would not.
func ComputeNamedSemId(ty Ty[SemId], name TypeName) SemId {
	h := newSemHasher()
	h.writeIdent(string(name))
	ty.semCommit(h)
	return h.sum()
}
