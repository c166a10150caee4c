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
	"encoding/hex"
	"sort"
)

// TypeLibId is the content id of one compiled library: a commitment to its
// name and the (name, SemId) pairs of every type it declares, so importing
// two different versions of "the same" library name is detectable.
type TypeLibId [32]byte

func (id TypeLibId) String() string { return hex.EncodeToString(id[:]) }

const libIdTag = "urn:ubideco:strict-types:lib:v01"

var libIdTagHash = sha256.Sum256([]byte(libIdTag))

// ComputeTypeLibId hashes a compiled library's name and exported symbol
// table. Types are hashed in name-sorted order so the result does not
// depend on map iteration order.
func ComputeTypeLibId(lib *CompiledLib) TypeLibId {
	h := &semHasher{h: make([]byte, 0, 256)}
	h.h = append(h.h, libIdTagHash[:]...)
	h.h = append(h.h, libIdTagHash[:]...)
	h.writeIdent(string(lib.Name))

	names := make([]TypeName, 0, len(lib.Types))
	for name := range lib.Types {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	h.writeByte(0) // placeholder, always replaced below by a 4-byte count
	count := len(names)
	var cbuf [4]byte
	cbuf[0] = byte(count)
	cbuf[1] = byte(count >> 8)
	cbuf[2] = byte(count >> 16)
	cbuf[3] = byte(count >> 24)
	h.h = h.h[:len(h.h)-1]
	h.writeBytes(cbuf[:])

	for _, name := range names {
		ty := lib.Types[name]
		flat, _, err := FlattenLibType(ty)
		if err != nil {
			// Unreachable for a library that already passed CompileLib;
			// fall back to hashing the name alone rather than panicking on
			// a hypothetical caller error.
			h.writeIdent(string(name))
			continue
		}
		h.writeIdent(string(name))
		h.writeSemId(ComputeNamedSemId(flat, name))
	}
	return TypeLibId(h.sum())
}

// TypeSysId is the content id of a fully assembled TypeSystem: a
// commitment to every named (fqn, SemId) pair it contains.
type TypeSysId [32]byte

func (id TypeSysId) String() string { return hex.EncodeToString(id[:]) }

const sysIdTag = "urn:ubideco:strict-types:sys:v01"

var sysIdTagHash = sha256.Sum256([]byte(sysIdTag))

func computeTypeSysId(byName map[string]SemId) TypeSysId {
	h := &semHasher{h: make([]byte, 0, 256)}
	h.h = append(h.h, sysIdTagHash[:]...)
	h.h = append(h.h, sysIdTagHash[:]...)

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		h.writeIdent(n)
		h.writeSemId(byName[n])
	}
	return TypeSysId(h.sum())
}

// TypeSystem is a closed, self-contained collection of compiled types: every
// sub-reference appearing anywhere in it resolves to another entry of the
// system itself (spec.md §3.7). It is the unit typify and the codec operate
// against.
type TypeSystem struct {
	Id SysId

	// Types holds every type reachable in the system, keyed by semantic id:
	// both the named top-level declarations and the anonymous types
	// synthesized for inline/embedded sub-expressions.
	Types map[SemId]Ty[SemId]

	// Symbols maps a fully-qualified "library.TypeName" to its semantic id,
	// for every named declaration. Anonymous types have no entry here.
	Symbols map[string]SemId

	// Libraries records the content id each imported library had at import
	// time.
	Libraries map[LibName]TypeLibId
}

// SysId is an alias kept for readability at call sites; identical to
// TypeSysId.
type SysId = TypeSysId

// SymbolicSys is a thin, human-facing view over a TypeSystem's symbol
// table: name <-> id lookups, without exposing the full type graph.
type SymbolicSys struct {
	sys *TypeSystem
}

// NewSymbolicSys wraps sys for name-oriented lookups.
func NewSymbolicSys(sys *TypeSystem) SymbolicSys { return SymbolicSys{sys: sys} }

// IdByName resolves a fully-qualified "library.TypeName" to its id.
func (s SymbolicSys) IdByName(fqn string) (SemId, bool) {
	id, ok := s.sys.Symbols[fqn]
	return id, ok
}

// NameById returns the fully-qualified name registered for id, if any
// (anonymous types have none).
func (s SymbolicSys) NameById(id SemId) (string, bool) {
	for name, candidate := range s.sys.Symbols {
		if candidate == id {
			return name, true
		}
	}
	return "", false
}

// SystemBuilder assembles a closed TypeSystem out of one or more compiled
// libraries, checking the cross-library invariants spec.md §3.7 requires:
// every dependency a library declares must actually be imported
// (AbsentImport), every sub-reference anywhere in the system must resolve
// to a present type (InnerTypeAbsent), and no semantic id may be registered
// under two different names (RepeatedType).
type SystemBuilder struct {
	types      map[SemId]Ty[SemId]
	byId       map[SemId]string
	libs       map[LibName]TypeLibId
	requires   map[LibName]struct{}
	err        error
}

// NewSystemBuilder starts an empty system builder.
func NewSystemBuilder() *SystemBuilder {
	return &SystemBuilder{
		types:    make(map[SemId]Ty[SemId]),
		byId:     make(map[SemId]string),
		libs:     make(map[LibName]TypeLibId),
		requires: make(map[LibName]struct{}),
	}
}

func (b *SystemBuilder) registerAnon(id SemId, ty Ty[SemId]) {
	if _, known := b.types[id]; known {
		return
	}
	b.types[id] = ty
}

func (b *SystemBuilder) registerNamed(fqn string, id SemId, ty Ty[SemId]) error {
	b.registerAnon(id, ty)
	if existing, known := b.byId[id]; known {
		if existing != fqn {
			return &RepeatedTypeError{Id: id, First: existing, Again: fqn}
		}
		return nil
	}
	b.byId[id] = fqn
	return nil
}

// resolveMapKeyClass follows a map key's newtype chain (spec.md §4.3:
// register_map "resolves any wrapper chains") down to the first non-newtype
// type, returning it alongside its class for error reporting. It reports ok
// = false if a link in the chain isn't registered, which Finalize's
// InnerTypeAbsent pass already rules out for any system that gets this far.
func resolveMapKeyClass(id SemId, types map[SemId]Ty[SemId]) (Ty[SemId], Cls, bool) {
	ty, ok := types[id]
	if !ok {
		return Ty[SemId]{}, 0, false
	}
	for ty.IsNewtype() {
		inner, ok := types[ty.TupleFields[0]]
		if !ok {
			return Ty[SemId]{}, ty.Class, false
		}
		ty = inner
	}
	return ty, ty.Class, true
}

// isValidMapKeyClass reports whether ty's class can be canonically ordered
// on the wire as a map key (spec.md §4.3): primitive, enum, array, or a
// bounded byte/ascii/unicode string.
func isValidMapKeyClass(ty Ty[SemId]) bool {
	switch ty.Class {
	case ClsPrimitive, ClsEnum, ClsArray, ClsAsciiStr:
		return true
	case ClsList:
		return ty.CollElem.IsByte() || ty.CollElem.IsUnicodeChar()
	default:
		return false
	}
}

// Import flattens and registers every type lib declares.
func (b *SystemBuilder) Import(lib *CompiledLib) *SystemBuilder {
	if b.err != nil {
		return b
	}
	for depName := range lib.Dependencies {
		b.requires[depName] = struct{}{}
	}
	for name, ty := range lib.Types {
		flat, anon, err := FlattenLibType(ty)
		if err != nil {
			b.err = err
			return b
		}
		for id, t := range anon {
			b.registerAnon(id, t)
		}
		id := ComputeNamedSemId(flat, name)
		fqn := string(lib.Name) + "." + string(name)
		if err := b.registerNamed(fqn, id, flat); err != nil {
			b.err = err
			return b
		}
	}
	b.libs[lib.Name] = ComputeTypeLibId(lib)
	return b
}

// Finalize validates the accumulated system and returns it.
func (b *SystemBuilder) Finalize() (*TypeSystem, error) {
	if b.err != nil {
		return nil, b.err
	}
	for dep := range b.requires {
		if _, ok := b.libs[dep]; !ok {
			return nil, &AbsentImportError{Lib: dep}
		}
	}
	for _, ty := range b.types {
		for _, item := range ty.Iter() {
			if _, ok := b.types[item.Ref]; !ok {
				return nil, &InnerTypeAbsentError{Id: item.Ref}
			}
		}
	}
	for _, ty := range b.types {
		if ty.Class != ClsMap {
			continue
		}
		keyTy, keyCls, ok := resolveMapKeyClass(ty.MapKey, b.types)
		if !ok || !isValidMapKeyClass(keyTy) {
			return nil, &InvalidMapKeyError{KeyCls: keyCls}
		}
	}
	sysId := computeTypeSysId(b.byId)
	return &TypeSystem{
		Id:        sysId,
		Types:     b.types,
		Symbols:   b.byId,
		Libraries: b.libs,
	}, nil
}
