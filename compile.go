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

// mapTy rebuilds ty with every direct and nested sub-reference replaced by
// f's result, preserving Class and every other field untouched. It is the
// one place that knows how to reconstruct each Ty variant, so every
// reference-flavor conversion in the compile pipeline (TranspileRef ->
// LibRef -> ... -> SemId) shares this instead of re-deriving it per stage.
func mapTy[R1 Ref, R2 Ref](ty Ty[R1], f func(R1) (R2, error)) (Ty[R2], error) {
	switch ty.Class {
	case ClsPrimitive:
		return Ty[R2]{Class: ClsPrimitive, Primitive: ty.Primitive}, nil
	case ClsUnicode:
		return Ty[R2]{Class: ClsUnicode}, nil
	case ClsAsciiStr:
		return Ty[R2]{Class: ClsAsciiStr, AsciiSizing: ty.AsciiSizing}, nil
	case ClsEnum:
		return Ty[R2]{Class: ClsEnum, EnumVariants: ty.EnumVariants}, nil
	case ClsUnion:
		variants := make([]UnionVariant[R2], len(ty.UnionVariants))
		for i, v := range ty.UnionVariants {
			r2, err := f(v.Ty)
			if err != nil {
				return Ty[R2]{}, err
			}
			variants[i] = UnionVariant[R2]{Tag: v.Tag, Name: v.Name, Ty: r2}
		}
		return Ty[R2]{Class: ClsUnion, UnionVariants: variants}, nil
	case ClsTuple:
		fields := make([]R2, len(ty.TupleFields))
		for i, fld := range ty.TupleFields {
			r2, err := f(fld)
			if err != nil {
				return Ty[R2]{}, err
			}
			fields[i] = r2
		}
		return Ty[R2]{Class: ClsTuple, TupleFields: fields}, nil
	case ClsStruct:
		fields := make([]StructField[R2], len(ty.StructFields))
		for i, fld := range ty.StructFields {
			r2, err := f(fld.Ty)
			if err != nil {
				return Ty[R2]{}, err
			}
			fields[i] = StructField[R2]{Name: fld.Name, Ty: r2}
		}
		return Ty[R2]{Class: ClsStruct, StructFields: fields}, nil
	case ClsArray:
		r2, err := f(ty.ArrayElem)
		if err != nil {
			return Ty[R2]{}, err
		}
		return Ty[R2]{Class: ClsArray, ArrayElem: r2, ArrayLen: ty.ArrayLen}, nil
	case ClsList:
		r2, err := f(ty.CollElem)
		if err != nil {
			return Ty[R2]{}, err
		}
		return Ty[R2]{Class: ClsList, CollElem: r2, CollSizing: ty.CollSizing}, nil
	case ClsSet:
		r2, err := f(ty.CollElem)
		if err != nil {
			return Ty[R2]{}, err
		}
		return Ty[R2]{Class: ClsSet, CollElem: r2, CollSizing: ty.CollSizing}, nil
	case ClsMap:
		k, err := f(ty.MapKey)
		if err != nil {
			return Ty[R2]{}, err
		}
		v, err := f(ty.MapVal)
		if err != nil {
			return Ty[R2]{}, err
		}
		return Ty[R2]{Class: ClsMap, MapKey: k, MapVal: v, MapSizing: ty.MapSizing}, nil
	default:
		panic("strictypes: unreachable type class in mapTy")
	}
}

// toLibRef resolves a single symbolic reference to a LibRef: a plain
// reference if it names an already-resolved local or dependency type, an
// embedded LibRef if it's an inline expression (recursively bounding the
// embed depth through InlineRef/InlineRef1/InlineRef2), or errContinue if it
// names a local type not yet resolved in this fixed-point pass.
func toLibRef(r TranspileRef, lib LibName, resolved map[TypeName]SemId, deps map[LibName]Dependency) (LibRef, error) {
	if n, ok := r.AsNamed(); ok {
		id, ok := resolved[n]
		if !ok {
			return LibRef{}, errContinue
		}
		return NewLibRef(id, n), nil
	}
	if depLib, n, ok := r.AsExtern(); ok {
		dep, ok := deps[depLib]
		if !ok {
			return LibRef{}, &UnknownLibError{Lib: depLib}
		}
		id, ok := dep.Types[n]
		if !ok {
			return LibRef{}, &DependencyMissesTypeError{Lib: depLib, Type: n}
		}
		return NewLibRef(id, n), nil
	}
	embedded, _ := r.AsEmbedded()
	inner, err := mapTy(*embedded, func(r TranspileRef) (InlineRef, error) {
		return toInlineRef(r, lib, resolved, deps)
	})
	if err != nil {
		return LibRef{}, err
	}
	return NewEmbeddedLibRef(&inner), nil
}

func toInlineRef(r TranspileRef, lib LibName, resolved map[TypeName]SemId, deps map[LibName]Dependency) (InlineRef, error) {
	if n, ok := r.AsNamed(); ok {
		id, ok := resolved[n]
		if !ok {
			return InlineRef{}, errContinue
		}
		return NewInlineRef(id, n), nil
	}
	if depLib, n, ok := r.AsExtern(); ok {
		dep, ok := deps[depLib]
		if !ok {
			return InlineRef{}, &UnknownLibError{Lib: depLib}
		}
		id, ok := dep.Types[n]
		if !ok {
			return InlineRef{}, &DependencyMissesTypeError{Lib: depLib, Type: n}
		}
		return NewInlineRef(id, n), nil
	}
	embedded, _ := r.AsEmbedded()
	inner, err := mapTy(*embedded, func(r TranspileRef) (InlineRef1, error) {
		return toInlineRef1(r, lib, resolved, deps)
	})
	if err != nil {
		return InlineRef{}, err
	}
	return NewEmbeddedInlineRef(&inner), nil
}

func toInlineRef1(r TranspileRef, lib LibName, resolved map[TypeName]SemId, deps map[LibName]Dependency) (InlineRef1, error) {
	if n, ok := r.AsNamed(); ok {
		id, ok := resolved[n]
		if !ok {
			return InlineRef1{}, errContinue
		}
		return NewInlineRef1(id, n), nil
	}
	if depLib, n, ok := r.AsExtern(); ok {
		dep, ok := deps[depLib]
		if !ok {
			return InlineRef1{}, &UnknownLibError{Lib: depLib}
		}
		id, ok := dep.Types[n]
		if !ok {
			return InlineRef1{}, &DependencyMissesTypeError{Lib: depLib, Type: n}
		}
		return NewInlineRef1(id, n), nil
	}
	embedded, _ := r.AsEmbedded()
	inner, err := mapTy(*embedded, func(r TranspileRef) (InlineRef2, error) {
		return toInlineRef2(r, lib, resolved, deps)
	})
	if err != nil {
		return InlineRef1{}, err
	}
	return NewEmbeddedInlineRef1(&inner), nil
}

// toInlineRef2 is the terminal conversion: InlineRef2 has no Embedded case,
// so a fourth level of inline nesting is rejected outright rather than
// silently truncated.
func toInlineRef2(r TranspileRef, lib LibName, resolved map[TypeName]SemId, deps map[LibName]Dependency) (InlineRef2, error) {
	if n, ok := r.AsNamed(); ok {
		id, ok := resolved[n]
		if !ok {
			return InlineRef2{}, errContinue
		}
		return NewInlineRef2(id, n), nil
	}
	if depLib, n, ok := r.AsExtern(); ok {
		dep, ok := deps[depLib]
		if !ok {
			return InlineRef2{}, &UnknownLibError{Lib: depLib}
		}
		id, ok := dep.Types[n]
		if !ok {
			return InlineRef2{}, &DependencyMissesTypeError{Lib: depLib, Type: n}
		}
		return NewInlineRef2(id, n), nil
	}
	return InlineRef2{}, &NestedInlineError{Lib: lib, Type: ""}
}

// CompileLib resolves every type in sym, running a fixed-point loop so
// types may reference each other in any declaration order: each pass
// compiles whatever it can and retries the rest, until a pass makes no
// progress, at which point anything left is an unresolvable (usually
// circular, non-newtype) reference.
func CompileLib(sym *SymbolicLib) (*CompiledLib, error) {
	resolved := make(map[TypeName]SemId, len(sym.Types))
	compiledTy := make(map[TypeName]Ty[LibRef], len(sym.Types))
	pending := make(map[TypeName]struct{}, len(sym.Types))
	for name := range sym.Types {
		pending[name] = struct{}{}
	}

	for len(pending) > 0 {
		progressed := false
		for name := range pending {
			ty := sym.Types[name]
			compiled, err := mapTy(ty, func(r TranspileRef) (LibRef, error) {
				return toLibRef(r, sym.Name, resolved, sym.Dependencies)
			})
			if err != nil {
				if isContinue(err) {
					continue
				}
				if ne, ok := err.(*NestedInlineError); ok {
					ne.Type = name
				}
				return nil, fmt.Errorf("strictypes: compiling %q in library %q: %w", name, sym.Name, err)
			}
			flattened, anon, err := FlattenLibType(compiled)
			if err != nil {
				return nil, fmt.Errorf("strictypes: compiling %q in library %q: %w", name, sym.Name, err)
			}
			_ = anon // anonymous sub-types are re-derived by the system builder from flattened's structure
			id := ComputeNamedSemId(flattened, name)
			resolved[name] = id
			compiledTy[name] = compiled
			delete(pending, name)
			progressed = true
		}
		if !progressed {
			names := make([]TypeName, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			return nil, fmt.Errorf("strictypes: library %q has unresolvable type reference(s) among %v (unknown or circular non-newtype reference)", sym.Name, names)
		}
	}

	return &CompiledLib{Name: sym.Name, Dependencies: sym.Dependencies, Types: compiledTy}, nil
}

// FlattenLibType converts a Ty[LibRef] (which may still embed inline
// sub-expressions up to 3 levels deep) into a fully flat Ty[SemId],
// computing and returning the semantic id of every anonymous embedded
// sub-type encountered along the way so a system builder can register them
// too.
func FlattenLibType(ty Ty[LibRef]) (Ty[SemId], map[SemId]Ty[SemId], error) {
	anon := make(map[SemId]Ty[SemId])
	flat, err := flattenLibRef(ty, anon)
	return flat, anon, err
}

func flattenLibRef(ty Ty[LibRef], anon map[SemId]Ty[SemId]) (Ty[SemId], error) {
	return mapTy(ty, func(r LibRef) (SemId, error) {
		if id, _, ok := r.Resolved(); ok {
			return id, nil
		}
		embedded, _ := r.Embedded()
		inner, err := flattenInlineRef(*embedded, anon)
		if err != nil {
			return SemId{}, err
		}
		id := ComputeSemId(inner)
		anon[id] = inner
		return id, nil
	})
}

func flattenInlineRef(ty Ty[InlineRef], anon map[SemId]Ty[SemId]) (Ty[SemId], error) {
	return mapTy(ty, func(r InlineRef) (SemId, error) {
		if id, _, ok := r.Resolved(); ok {
			return id, nil
		}
		embedded, _ := r.Embedded()
		inner, err := flattenInlineRef1(*embedded, anon)
		if err != nil {
			return SemId{}, err
		}
		id := ComputeSemId(inner)
		anon[id] = inner
		return id, nil
	})
}

func flattenInlineRef1(ty Ty[InlineRef1], anon map[SemId]Ty[SemId]) (Ty[SemId], error) {
	return mapTy(ty, func(r InlineRef1) (SemId, error) {
		if id, _, ok := r.Resolved(); ok {
			return id, nil
		}
		embedded, _ := r.Embedded()
		inner, err := flattenInlineRef2(*embedded, anon)
		if err != nil {
			return SemId{}, err
		}
		id := ComputeSemId(inner)
		anon[id] = inner
		return id, nil
	})
}

func flattenInlineRef2(ty Ty[InlineRef2], anon map[SemId]Ty[SemId]) (Ty[SemId], error) {
	return mapTy(ty, func(r InlineRef2) (SemId, error) {
		id, _ := r.Resolved()
		return id, nil
	})
}
