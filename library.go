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

import "fmt"

// ExternTypes is a dependency library's exported symbol table as seen at
// the moment it was imported: the set of type names available to qualify
// with that library's name, each already resolved to its semantic id.
type ExternTypes map[TypeName]SemId

// Dependency records one imported library: its declared name within the
// importing library, the content id of the exact library version imported,
// and the symbols it exports.
type Dependency struct {
	Lib   LibName
	Id    TypeLibId
	Types ExternTypes
}

// SymbolicLib is a library of type declarations before compilation: its
// types may still reference each other by name, reference a dependency's
// types by (lib, name), or embed an anonymous type expression inline.
type SymbolicLib struct {
	Name         LibName
	Dependencies map[LibName]Dependency
	Types        map[TypeName]Ty[TranspileRef]
}

// CompiledLib is a library whose types have been resolved: every named and
// extern reference has become a LibRef carrying the referenced type's
// semantic id (and, for small inline expressions, may still embed a nested
// Ty up to the 4-level inlining bound).
type CompiledLib struct {
	Name         LibName
	Dependencies map[LibName]Dependency
	Types        map[TypeName]Ty[LibRef]
}

// LibBuilder incrementally constructs a SymbolicLib, accumulating the first
// error encountered and surfacing it from Build.
type LibBuilder struct {
	name  LibName
	deps  map[LibName]Dependency
	types map[TypeName]Ty[TranspileRef]
	order []TypeName
	err   error
}

// NewLibBuilder starts a library builder for the named library.
func NewLibBuilder(name LibName) *LibBuilder {
	return &LibBuilder{
		name:  name,
		deps:  make(map[LibName]Dependency),
		types: make(map[TypeName]Ty[TranspileRef]),
	}
}

// AddDependency registers an imported library's exported symbol table.
func (b *LibBuilder) AddDependency(dep Dependency) *LibBuilder {
	if b.err != nil {
		return b
	}
	if _, dup := b.deps[dep.Lib]; dup {
		b.err = fmt.Errorf("strictypes: dependency %q already registered", dep.Lib)
		return b
	}
	b.deps[dep.Lib] = dep
	return b
}

func (b *LibBuilder) register(name TypeName, ty Ty[TranspileRef]) *LibBuilder {
	if b.err != nil {
		return b
	}
	if _, dup := b.types[name]; dup {
		b.err = fmt.Errorf("strictypes: type %q already registered in library %q", name, b.name)
		return b
	}
	b.types[name] = ty
	b.order = append(b.order, name)
	return b
}

// RegisterPrimitive declares name as a Primitive type.
func (b *LibBuilder) RegisterPrimitive(name TypeName, p Primitive) *LibBuilder {
	return b.register(name, NewPrimitive[TranspileRef](p))
}

// RegisterUnicode declares name as the UnicodeChar type.
func (b *LibBuilder) RegisterUnicode(name TypeName) *LibBuilder {
	return b.register(name, NewUnicodeChar[TranspileRef]())
}

// RegisterAsciiStr declares name as a bounded ASCII string type.
func (b *LibBuilder) RegisterAsciiStr(name TypeName, sizing Sizing) *LibBuilder {
	if b.err != nil {
		return b
	}
	if err := sizing.Validate(); err != nil {
		b.err = err
		return b
	}
	return b.register(name, NewAsciiStr[TranspileRef](sizing))
}

// RegisterArray declares name as a fixed-length array type.
func (b *LibBuilder) RegisterArray(name TypeName, elem TranspileRef, length uint16) *LibBuilder {
	return b.register(name, NewArray(elem, length))
}

// RegisterList declares name as a variable-length list type.
func (b *LibBuilder) RegisterList(name TypeName, elem TranspileRef, sizing Sizing) *LibBuilder {
	if b.err != nil {
		return b
	}
	if err := sizing.Validate(); err != nil {
		b.err = err
		return b
	}
	return b.register(name, NewList(elem, sizing))
}

// RegisterSet declares name as a variable-length set type.
func (b *LibBuilder) RegisterSet(name TypeName, elem TranspileRef, sizing Sizing) *LibBuilder {
	if b.err != nil {
		return b
	}
	if err := sizing.Validate(); err != nil {
		b.err = err
		return b
	}
	return b.register(name, NewSet(elem, sizing))
}

// RegisterMap declares name as a map type. Whether key is actually a valid
// map-key type (spec.md §4.3) can only be checked once key is fully
// resolved to its shape, which for an extern or deeply nested reference
// isn't known until system assembly; SystemBuilder.Finalize re-validates it
// there and fails with InvalidMapKeyError. sizing's own Min<=Max consistency
// is checked here since that never depends on key/val resolution.
func (b *LibBuilder) RegisterMap(name TypeName, key, val TranspileRef, sizing Sizing) *LibBuilder {
	if b.err != nil {
		return b
	}
	if err := sizing.Validate(); err != nil {
		b.err = err
		return b
	}
	return b.register(name, NewMap(key, val, sizing))
}

// RegisterEnum declares name as an enum type.
func (b *LibBuilder) RegisterEnum(name TypeName, variants []EnumVariant) *LibBuilder {
	ty, err := NewEnum[TranspileRef](variants)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	return b.register(name, ty)
}

// RegisterUnion declares name as a union type.
func (b *LibBuilder) RegisterUnion(name TypeName, variants []UnionVariant[TranspileRef]) *LibBuilder {
	ty, err := NewUnion(variants)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	return b.register(name, ty)
}

// RegisterTuple declares name as a tuple type.
func (b *LibBuilder) RegisterTuple(name TypeName, fields []TranspileRef) *LibBuilder {
	ty, err := NewTuple(fields)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	return b.register(name, ty)
}

// RegisterStruct declares name as a struct type.
func (b *LibBuilder) RegisterStruct(name TypeName, fields []StructField[TranspileRef]) *LibBuilder {
	ty, err := NewStruct(fields)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	return b.register(name, ty)
}

// Build finalizes the library, validating that every Named and Extern
// reference used anywhere in it resolves to a real declaration.
func (b *LibBuilder) Build() (*SymbolicLib, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, name := range b.order {
		if err := b.validateRefs(b.types[name]); err != nil {
			return nil, fmt.Errorf("strictypes: library %q, type %q: %w", b.name, name, err)
		}
	}
	return &SymbolicLib{Name: b.name, Dependencies: b.deps, Types: b.types}, nil
}

func (b *LibBuilder) validateRefs(ty Ty[TranspileRef]) error {
	for _, item := range ty.Iter() {
		if err := b.validateRef(item.Ref); err != nil {
			return err
		}
	}
	return nil
}

func (b *LibBuilder) validateRef(r TranspileRef) error {
	if name, ok := r.AsNamed(); ok {
		if _, known := b.types[name]; !known {
			return &UnknownTypeError{Lib: b.name, Type: name}
		}
		return nil
	}
	if lib, name, ok := r.AsExtern(); ok {
		dep, known := b.deps[lib]
		if !known {
			return &UnknownLibError{Lib: lib}
		}
		if _, known := dep.Types[name]; !known {
			return &DependencyMissesTypeError{Lib: lib, Type: name}
		}
		return nil
	}
	if embedded, ok := r.AsEmbedded(); ok {
		return b.validateRefs(*embedded)
	}
	return nil
}

// StructBuilder accumulates fields for a struct or tuple declaration.
type StructBuilder struct {
	fields []StructField[TranspileRef]
	seen   map[FieldName]struct{}
	err    error
}

// NewStructBuilder starts a struct field builder.
func NewStructBuilder() *StructBuilder {
	return &StructBuilder{seen: make(map[FieldName]struct{})}
}

// Field appends a named field.
func (b *StructBuilder) Field(name FieldName, ty TranspileRef) *StructBuilder {
	if b.err != nil {
		return b
	}
	if _, dup := b.seen[name]; dup {
		b.err = fmt.Errorf("strictypes: duplicate field name %q", name)
		return b
	}
	b.seen[name] = struct{}{}
	b.fields = append(b.fields, StructField[TranspileRef]{Name: name, Ty: ty})
	return b
}

// Build returns the accumulated fields.
func (b *StructBuilder) Build() ([]StructField[TranspileRef], error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.fields, nil
}

// UnionBuilder accumulates variants for a union or enum-with-payload
// declaration.
type UnionBuilder struct {
	variants []UnionVariant[TranspileRef]
	tags     map[byte]struct{}
	names    map[VariantName]struct{}
	nextTag  byte
	err      error
}

// NewUnionBuilder starts a union variant builder, auto-numbering tags from
// 0 unless Tagged is used.
func NewUnionBuilder() *UnionBuilder {
	return &UnionBuilder{tags: make(map[byte]struct{}), names: make(map[VariantName]struct{})}
}

// Variant appends a variant with the next auto-assigned tag.
func (b *UnionBuilder) Variant(name VariantName, ty TranspileRef) *UnionBuilder {
	return b.Tagged(b.nextTag, name, ty)
}

// Tagged appends a variant with an explicit tag.
func (b *UnionBuilder) Tagged(tag byte, name VariantName, ty TranspileRef) *UnionBuilder {
	if b.err != nil {
		return b
	}
	if _, dup := b.tags[tag]; dup {
		b.err = fmt.Errorf("strictypes: duplicate union tag %d", tag)
		return b
	}
	if _, dup := b.names[name]; dup {
		b.err = fmt.Errorf("strictypes: duplicate union variant name %q", name)
		return b
	}
	b.tags[tag] = struct{}{}
	b.names[name] = struct{}{}
	b.variants = append(b.variants, UnionVariant[TranspileRef]{Tag: tag, Name: name, Ty: ty})
	if tag >= b.nextTag {
		b.nextTag = tag + 1
	}
	return b
}

// Build returns the accumulated variants.
func (b *UnionBuilder) Build() ([]UnionVariant[TranspileRef], error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.variants, nil
}
