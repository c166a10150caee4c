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

// This file defines the family of reference-node flavors a Ty[R] can carry
// as its sub-type R, across the compile pipeline's stages:
//
//	TranspileRef  symbolic: Named(local) | Extern(lib, name) | Embedded(Ty)
//	LibRef        compiled, three inlining levels still allowed
//	InlineRef     compiled, two inlining levels still allowed
//	InlineRef1    compiled, one inlining level still allowed
//	InlineRef2    compiled, fully resolved: no further embedding permitted
//
// Each step down the chain removes one more "this type may still be an
// inline Embedded(Ty[...]) rather than a plain resolved id" possibility.
// InlineRef2 is resolved-only, which is what enforces the maximum inlining
// depth the compile pipeline allows: the chain has three embedding
// transitions (LibRef->InlineRef, InlineRef->InlineRef1,
// InlineRef1->InlineRef2), so a reference may be embedded three times over,
// but the fourth level has no Embedded case left to recurse into and
// compilation must have replaced it with a plain library reference instead.

func isByteTy[R Ref](ty Ty[R]) bool { return ty.Class == ClsPrimitive && ty.Primitive == Byte }

func isUnicodeCharTy[R Ref](ty Ty[R]) bool { return ty.Class == ClsUnicode }

// resolvedRef is a plain, library-scoped reference to an already-compiled
// type: its semantic id plus the name it was declared under (kept around
// for symbol-table and text-form rendering, even though SemId itself never
// depends on it).
type resolvedRef struct {
	Id   SemId
	Name TypeName
}

func (r resolvedRef) IsByte() bool         { return r.Id.IsByte() }
func (r resolvedRef) IsUnicodeChar() bool { return r.Id.IsUnicodeChar() }

// InlineRef2 is the terminal reference flavor: always fully resolved.
type InlineRef2 struct{ resolvedRef }

// NewInlineRef2 builds a resolved terminal reference.
func NewInlineRef2(id SemId, name TypeName) InlineRef2 {
	return InlineRef2{resolvedRef{Id: id, Name: name}}
}

func (r InlineRef2) Resolved() (SemId, TypeName) { return r.Id, r.Name }

// InlineRef1 is either resolved or an embedded Ty whose own sub-references
// are InlineRef2 (one inlining level below it).
type InlineRef1 struct {
	resolved *resolvedRef
	embedded *Ty[InlineRef2]
}

// NewInlineRef1 builds a resolved InlineRef1.
func NewInlineRef1(id SemId, name TypeName) InlineRef1 {
	return InlineRef1{resolved: &resolvedRef{Id: id, Name: name}}
}

// NewEmbeddedInlineRef1 builds an InlineRef1 that inlines ty rather than
// pointing at a separately compiled type.
func NewEmbeddedInlineRef1(ty *Ty[InlineRef2]) InlineRef1 { return InlineRef1{embedded: ty} }

func (r InlineRef1) IsByte() bool {
	if r.resolved != nil {
		return r.resolved.IsByte()
	}
	return isByteTy(*r.embedded)
}

func (r InlineRef1) IsUnicodeChar() bool {
	if r.resolved != nil {
		return r.resolved.IsUnicodeChar()
	}
	return isUnicodeCharTy(*r.embedded)
}

// Resolved returns the (id, name) pair and true if r is a plain reference.
func (r InlineRef1) Resolved() (SemId, TypeName, bool) {
	if r.resolved == nil {
		return SemId{}, "", false
	}
	return r.resolved.Id, r.resolved.Name, true
}

// Embedded returns the inlined type and true if r embeds rather than
// references.
func (r InlineRef1) Embedded() (*Ty[InlineRef2], bool) { return r.embedded, r.embedded != nil }

// InlineRef is either resolved or an embedded Ty of InlineRef1s.
type InlineRef struct {
	resolved *resolvedRef
	embedded *Ty[InlineRef1]
}

func NewInlineRef(id SemId, name TypeName) InlineRef {
	return InlineRef{resolved: &resolvedRef{Id: id, Name: name}}
}

func NewEmbeddedInlineRef(ty *Ty[InlineRef1]) InlineRef { return InlineRef{embedded: ty} }

func (r InlineRef) IsByte() bool {
	if r.resolved != nil {
		return r.resolved.IsByte()
	}
	return isByteTy(*r.embedded)
}

func (r InlineRef) IsUnicodeChar() bool {
	if r.resolved != nil {
		return r.resolved.IsUnicodeChar()
	}
	return isUnicodeCharTy(*r.embedded)
}

func (r InlineRef) Resolved() (SemId, TypeName, bool) {
	if r.resolved == nil {
		return SemId{}, "", false
	}
	return r.resolved.Id, r.resolved.Name, true
}

func (r InlineRef) Embedded() (*Ty[InlineRef1], bool) { return r.embedded, r.embedded != nil }

// LibRef is either resolved or an embedded Ty of InlineRefs: the widest
// reference flavor, used by a freshly compiled (but not yet depth-flattened)
// library.
type LibRef struct {
	resolved *resolvedRef
	embedded *Ty[InlineRef]
}

func NewLibRef(id SemId, name TypeName) LibRef {
	return LibRef{resolved: &resolvedRef{Id: id, Name: name}}
}

func NewEmbeddedLibRef(ty *Ty[InlineRef]) LibRef { return LibRef{embedded: ty} }

func (r LibRef) IsByte() bool {
	if r.resolved != nil {
		return r.resolved.IsByte()
	}
	return isByteTy(*r.embedded)
}

func (r LibRef) IsUnicodeChar() bool {
	if r.resolved != nil {
		return r.resolved.IsUnicodeChar()
	}
	return isUnicodeCharTy(*r.embedded)
}

func (r LibRef) Resolved() (SemId, TypeName, bool) {
	if r.resolved == nil {
		return SemId{}, "", false
	}
	return r.resolved.Id, r.resolved.Name, true
}

func (r LibRef) Embedded() (*Ty[InlineRef], bool) { return r.embedded, r.embedded != nil }

// externRef names a type declared in a dependency library.
type externRef struct {
	Lib  LibName
	Name TypeName
}

// TranspileRef is the symbolic, pre-compile reference flavor: a name local
// to the library being built, a name qualified by a dependency library, or
// an inline type expression with no name at all.
type TranspileRef struct {
	named    *TypeName
	extern   *externRef
	embedded *Ty[TranspileRef]
}

// NewNamedRef references a type declared elsewhere in the same library.
func NewNamedRef(name TypeName) TranspileRef { return TranspileRef{named: &name} }

// NewExternRef references a type declared in a dependency library.
func NewExternRef(lib LibName, name TypeName) TranspileRef {
	return TranspileRef{extern: &externRef{Lib: lib, Name: name}}
}

// NewEmbeddedRef inlines ty directly, with no separate declaration.
func NewEmbeddedRef(ty *Ty[TranspileRef]) TranspileRef { return TranspileRef{embedded: ty} }

// IsByte is conservative for Named/Extern: whether such a reference
// resolves to the reserved Byte type can only be known once the symbolic
// library is compiled, so this only ever answers true for an inline
// Embedded(Byte).
func (r TranspileRef) IsByte() bool {
	if r.embedded != nil {
		return isByteTy(*r.embedded)
	}
	return false
}

func (r TranspileRef) IsUnicodeChar() bool {
	if r.embedded != nil {
		return isUnicodeCharTy(*r.embedded)
	}
	return false
}

// AsNamed returns the referenced local type name, if any.
func (r TranspileRef) AsNamed() (TypeName, bool) {
	if r.named == nil {
		return "", false
	}
	return *r.named, true
}

// AsExtern returns the referenced dependency library and type name, if any.
func (r TranspileRef) AsExtern() (LibName, TypeName, bool) {
	if r.extern == nil {
		return "", "", false
	}
	return r.extern.Lib, r.extern.Name, true
}

// AsEmbedded returns the inlined type expression, if any.
func (r TranspileRef) AsEmbedded() (*Ty[TranspileRef], bool) {
	return r.embedded, r.embedded != nil
}
