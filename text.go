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
	"fmt"
	"sort"
	"strings"
)

// renderTy renders a type expression to its canonical text form (spec.md
// §4.9), deferring to leaf for how a sub-reference is rendered: a library
// dump prints a resolved sub-reference's declared name, while a
// TypeSystem-bound render prints the registered fully-qualified symbol.
func renderTy[R Ref](ty Ty[R], leaf func(R) string) string {
	switch ty.Class {
	case ClsPrimitive:
		return ty.Primitive.String()
	case ClsUnicode:
		return "Unicode"
	case ClsAsciiStr:
		return fmt.Sprintf("Ascii(%s)", ty.AsciiSizing)
	case ClsEnum:
		parts := make([]string, len(ty.EnumVariants))
		for i, v := range ty.EnumVariants {
			parts[i] = fmt.Sprintf("%s=%d", v.Name, v.Tag)
		}
		return fmt.Sprintf("enum(%s)", strings.Join(parts, ", "))
	case ClsUnion:
		if ty.IsOption() {
			_, some, _ := ty.UnionByName("some")
			return fmt.Sprintf("%s?", leaf(some))
		}
		parts := make([]string, len(ty.UnionVariants))
		for i, v := range ty.UnionVariants {
			parts[i] = fmt.Sprintf("%s(%d) %s", v.Name, v.Tag, leaf(v.Ty))
		}
		return fmt.Sprintf("union(%s)", strings.Join(parts, ", "))
	case ClsTuple:
		if len(ty.TupleFields) == 1 {
			return leaf(ty.TupleFields[0])
		}
		parts := make([]string, len(ty.TupleFields))
		for i, f := range ty.TupleFields {
			parts[i] = leaf(f)
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	case ClsStruct:
		parts := make([]string, len(ty.StructFields))
		for i, f := range ty.StructFields {
			parts[i] = fmt.Sprintf("%s %s", f.Name, leaf(f.Ty))
		}
		return fmt.Sprintf("{ %s }", strings.Join(parts, ", "))
	case ClsArray:
		return fmt.Sprintf("[%s; %d]", leaf(ty.ArrayElem), ty.ArrayLen)
	case ClsList:
		return fmt.Sprintf("[%s ^ %s]", leaf(ty.CollElem), ty.CollSizing)
	case ClsSet:
		return fmt.Sprintf("{%s ^ %s}", leaf(ty.CollElem), ty.CollSizing)
	case ClsMap:
		return fmt.Sprintf("{%s -> %s ^ %s}", leaf(ty.MapKey), leaf(ty.MapVal), ty.MapSizing)
	default:
		return "?"
	}
}

// TypeText renders a type registered in sys, printing named sub-references
// by their fully-qualified symbol and expanding anonymous ones inline.
func TypeText(sys *TypeSystem, id SemId) string {
	if name, ok := nameFor(sys, id); ok {
		return name
	}
	ty, ok := sys.Types[id]
	if !ok {
		return id.String()
	}
	return renderTy(ty, func(r SemId) string { return TypeText(sys, r) })
}

func nameFor(sys *TypeSystem, id SemId) (string, bool) {
	for name, candidate := range sys.Symbols {
		if candidate == id {
			return name, true
		}
	}
	return "", false
}

// DumpLib renders a compiled library's declarations to canonical text form,
// one type per line, sorted by name for a stable, diffable dump.
func DumpLib(lib *CompiledLib) string {
	names := make([]TypeName, 0, len(lib.Types))
	for name := range lib.Types {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var b strings.Builder
	fmt.Fprintf(&b, "typelib %s\n\n", lib.Name)
	for _, name := range names {
		fmt.Fprintf(&b, "data %s :: %s\n", name, renderTy(lib.Types[name], libRefText))
	}
	return b.String()
}

func libRefText(r LibRef) string {
	if _, name, ok := r.Resolved(); ok {
		return string(name)
	}
	embedded, _ := r.Embedded()
	return renderTy(*embedded, inlineRefText)
}

func inlineRefText(r InlineRef) string {
	if _, name, ok := r.Resolved(); ok {
		return string(name)
	}
	embedded, _ := r.Embedded()
	return renderTy(*embedded, inlineRef1Text)
}

func inlineRef1Text(r InlineRef1) string {
	if _, name, ok := r.Resolved(); ok {
		return string(name)
	}
	embedded, _ := r.Embedded()
	return renderTy(*embedded, inlineRef2Text)
}

func inlineRef2Text(r InlineRef2) string {
	_, name := r.Resolved()
	return string(name)
}

// ValueText renders a typified value to a human-readable debugging form. It
// is not part of the canonical wire or text-library format; it exists for
// CLI diagnostics and test failure messages.
func ValueText(sys *TypeSystem, tv TypedVal) string {
	ty, ok := sys.Types[tv.Id]
	if !ok {
		return "<unknown type>"
	}
	return renderVal(sys, ty, tv.Val)
}

func renderVal(sys *TypeSystem, ty Ty[SemId], v StrictVal) string {
	switch ty.Class {
	case ClsPrimitive:
		if ty.Primitive == Unit {
			return "()"
		}
		if v.Kind == ValString {
			return fmt.Sprintf("%q", v.Str)
		}
		return v.Number.String()
	case ClsUnicode, ClsAsciiStr:
		return fmt.Sprintf("%q", v.Str)
	case ClsEnum:
		return string(v.EnumTag.Name)
	case ClsUnion:
		innerTy := sys.Types[mustUnionRef(ty, v.UnionTag.Ordinal)]
		return fmt.Sprintf("%s(%s)", v.UnionTag.Name, renderVal(sys, innerTy, *v.UnionVal))
	case ClsTuple:
		if len(ty.TupleFields) == 1 {
			return renderVal(sys, sys.Types[ty.TupleFields[0]], v.Tuple[0])
		}
		parts := make([]string, len(v.Tuple))
		for i, f := range v.Tuple {
			parts[i] = renderVal(sys, sys.Types[ty.TupleFields[i]], f)
		}
		return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
	case ClsStruct:
		parts := make([]string, len(v.StructFields))
		for i, f := range v.StructFields {
			fieldTy, _ := ty.FieldByName(f.Name)
			parts[i] = fmt.Sprintf("%s: %s", f.Name, renderVal(sys, sys.Types[fieldTy], f.Val))
		}
		return fmt.Sprintf("{ %s }", strings.Join(parts, ", "))
	case ClsArray:
		if v.Kind == ValBytes {
			return fmt.Sprintf("%x", v.Bytes)
		}
		return renderSeq(sys, sys.Types[ty.ArrayElem], v.List, "[", "]")
	case ClsList:
		if v.Kind == ValBytes {
			return fmt.Sprintf("%x", v.Bytes)
		}
		return renderSeq(sys, sys.Types[ty.CollElem], v.List, "[", "]")
	case ClsSet:
		return renderSeq(sys, sys.Types[ty.CollElem], v.Set, "{", "}")
	case ClsMap:
		parts := make([]string, len(v.MapEntries))
		keyTy, valTy := sys.Types[ty.MapKey], sys.Types[ty.MapVal]
		for i, e := range v.MapEntries {
			parts[i] = fmt.Sprintf("%s: %s", renderVal(sys, keyTy, e.Key), renderVal(sys, valTy, e.Val))
		}
		return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
	default:
		return "?"
	}
}

func renderSeq(sys *TypeSystem, elemTy Ty[SemId], items []StrictVal, open, close string) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = renderVal(sys, elemTy, item)
	}
	return open + strings.Join(parts, ", ") + close
}

func mustUnionRef(ty Ty[SemId], tag byte) SemId {
	_, ref, _ := ty.UnionByTag(tag)
	return ref
}
