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
	"reflect"
	"sort"

	lru "github.com/hashicorp/golang-lru"
	"github.com/spaolacci/murmur3"
)

// CompileCache memoizes SymbolicLib -> CompiledLib compilation behind a
// fast, non-cryptographic shape hash. Recompiling the same library
// declaration repeatedly (a CLI driver re-running across many invocations
// against an unchanged .sty source, or a system builder importing a
// dependency that several other libraries also depend on) would otherwise
// pay the full fixed-point compile and SHA-256 SemId commitment again for
// structurally identical input; the cache lets that be a single map lookup
// instead.
//
// The murmur3 hash is deliberately not the cache key on its own: a 64-bit
// non-cryptographic hash can collide, so every candidate hit is confirmed
// against the stored symbolic library before being trusted.
type CompileCache struct {
	lru *lru.Cache
}

type cacheEntry struct {
	sym      *SymbolicLib
	compiled *CompiledLib
}

// NewCompileCache creates a compile cache holding at most size entries.
func NewCompileCache(size int) (*CompileCache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &CompileCache{lru: l}, nil
}

// CompileLib returns sym's compiled form, compiling and caching it on a
// miss.
func (c *CompileCache) CompileLib(sym *SymbolicLib) (*CompiledLib, error) {
	key := shapeHashLib(sym)
	if cached, ok := c.lru.Get(key); ok {
		entry := cached.(cacheEntry)
		if symbolicLibsEqual(entry.sym, sym) {
			return entry.compiled, nil
		}
	}
	compiled, err := CompileLib(sym)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, cacheEntry{sym: sym, compiled: compiled})
	return compiled, nil
}

// shapeHashLib computes a fast, order-independent hash of a symbolic
// library's declarations, used purely as an LRU key.
func shapeHashLib(sym *SymbolicLib) uint64 {
	names := make([]TypeName, 0, len(sym.Types))
	for name := range sym.Types {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	buf := make([]byte, 0, 512)
	buf = append(buf, []byte(sym.Name)...)
	for _, name := range names {
		buf = append(buf, []byte(name)...)
		buf = appendShape(buf, sym.Types[name])
	}
	return murmur3.Sum64(buf)
}

// appendShape appends a cheap structural fingerprint of ty to buf: enough
// to distinguish shapes for hashing purposes, not a canonical encoding.
func appendShape(buf []byte, ty Ty[TranspileRef]) []byte {
	buf = append(buf, byte(ty.Class))
	switch ty.Class {
	case ClsPrimitive:
		buf = append(buf, byte(ty.Primitive))
	case ClsAsciiStr:
		buf = append(buf, byte(ty.AsciiSizing.Min), byte(ty.AsciiSizing.Max))
	case ClsEnum:
		for _, v := range ty.EnumVariants {
			buf = append(buf, v.Tag)
			buf = append(buf, []byte(v.Name)...)
		}
	case ClsUnion:
		for _, v := range ty.UnionVariants {
			buf = append(buf, v.Tag)
			buf = append(buf, []byte(v.Name)...)
			buf = appendShapeRef(buf, v.Ty)
		}
	case ClsTuple:
		for _, f := range ty.TupleFields {
			buf = appendShapeRef(buf, f)
		}
	case ClsStruct:
		for _, f := range ty.StructFields {
			buf = append(buf, []byte(f.Name)...)
			buf = appendShapeRef(buf, f.Ty)
		}
	case ClsArray:
		buf = appendShapeRef(buf, ty.ArrayElem)
		buf = append(buf, byte(ty.ArrayLen), byte(ty.ArrayLen>>8))
	case ClsList, ClsSet:
		buf = appendShapeRef(buf, ty.CollElem)
	case ClsMap:
		buf = appendShapeRef(buf, ty.MapKey)
		buf = appendShapeRef(buf, ty.MapVal)
	}
	return buf
}

func appendShapeRef(buf []byte, r TranspileRef) []byte {
	if n, ok := r.AsNamed(); ok {
		return append(append(buf, 'N'), []byte(n)...)
	}
	if lib, n, ok := r.AsExtern(); ok {
		buf = append(buf, 'X')
		buf = append(buf, []byte(lib)...)
		return append(buf, []byte(n)...)
	}
	if embedded, ok := r.AsEmbedded(); ok {
		buf = append(buf, 'E')
		return appendShape(buf, *embedded)
	}
	return buf
}

// symbolicLibsEqual confirms a murmur3 hash hit against the actual
// declarations, guarding against hash collisions.
func symbolicLibsEqual(a, b *SymbolicLib) bool {
	if a.Name != b.Name || len(a.Types) != len(b.Types) {
		return false
	}
	return reflect.DeepEqual(a.Types, b.Types) && reflect.DeepEqual(a.Dependencies, b.Dependencies)
}
