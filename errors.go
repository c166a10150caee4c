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
	"errors"
	"fmt"
)

// errContinue is an internal sentinel the compile pipeline's fixed-point
// loop uses to signal "this type cannot be resolved yet, try again after
// the rest of the batch makes progress". It is never returned across the
// CompileLib boundary: a fixed point that still has unresolved types left
// over is reported as an ordinary wrapped error naming them instead.
var errContinue = errors.New("strictypes: type not ready to compile yet")

func isContinue(err error) bool { return errors.Is(err, errContinue) }

// UnknownTypeError reports a reference to a local type the symbolic library
// never declared.
type UnknownTypeError struct {
	Lib  LibName
	Type TypeName
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("strictypes: library %q has no type named %q", e.Lib, e.Type)
}

// UnknownLibError reports a reference to a dependency library the builder
// never registered.
type UnknownLibError struct {
	Lib LibName
}

func (e *UnknownLibError) Error() string {
	return fmt.Sprintf("strictypes: no dependency library named %q was registered", e.Lib)
}

// DependencyMissesTypeError reports that a dependency library exists but
// does not declare the specific type referenced from it.
type DependencyMissesTypeError struct {
	Lib  LibName
	Type TypeName
}

func (e *DependencyMissesTypeError) Error() string {
	return fmt.Sprintf("strictypes: dependency library %q has no type named %q", e.Lib, e.Type)
}

// NestedInlineError reports that resolving a type required inlining more
// than the four permitted levels deep (LibRef -> InlineRef -> InlineRef1 ->
// InlineRef2).
type NestedInlineError struct {
	Lib  LibName
	Type TypeName
}

func (e *NestedInlineError) Error() string {
	return fmt.Sprintf("strictypes: type %q in library %q nests more than 4 levels of inline type expressions", e.Type, e.Lib)
}

// AbsentImportError reports that a compiled library imports a dependency
// that the system builder was never given.
type AbsentImportError struct {
	Lib LibName
	Id  SemId
}

func (e *AbsentImportError) Error() string {
	return fmt.Sprintf("strictypes: type system is missing dependency library %q (%s)", e.Lib, e.Id)
}

// InnerTypeAbsentError reports that a compiled type's semantic id does not
// resolve to any type known to the system being assembled: a dangling
// sub-reference escaped compilation.
type InnerTypeAbsentError struct {
	Id SemId
}

func (e *InnerTypeAbsentError) Error() string {
	return fmt.Sprintf("strictypes: type system is missing a type referenced by %s", e.Id)
}

// RepeatedTypeError reports that two distinct fully-qualified names in the
// system being assembled resolve to the same semantic id.
type RepeatedTypeError struct {
	Id    SemId
	First string
	Again string
}

func (e *RepeatedTypeError) Error() string {
	return fmt.Sprintf("strictypes: %s (%s) is already known as %s", e.Again, e.Id, e.First)
}

// InvalidSizingError reports a collection size bound that is internally
// inconsistent (Min > Max).
type InvalidSizingError struct {
	Sizing Sizing
	Reason string
}

func (e *InvalidSizingError) Error() string {
	return fmt.Sprintf("strictypes: invalid sizing %s: %s", e.Sizing, e.Reason)
}

// InvalidMapKeyError reports a map declared with a key type unsuitable for
// canonical ordering on the wire (spec.md §4.3): only primitives, enums,
// arrays, ascii strings, byte or unicode-char lists, and newtypes over
// those are permitted.
type InvalidMapKeyError struct {
	KeyCls Cls
}

func (e *InvalidMapKeyError) Error() string {
	return fmt.Sprintf("strictypes: map key type of class %s cannot be canonically ordered", e.KeyCls)
}

// TypifyError reports that a StrictVal could not be coerced to a target
// type. Path records the dotted/indexed location within the value tree
// where the mismatch was found.
type TypifyError struct {
	Path   string
	Reason string
}

func (e *TypifyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("strictypes: typify failed: %s", e.Reason)
	}
	return fmt.Sprintf("strictypes: typify failed at %s: %s", e.Path, e.Reason)
}

// WrongTypeOrderingError reports a decoded Set or Map whose elements are
// not in strict canonical (ascending, unique-key) order.
type WrongTypeOrderingError struct {
	Cls Cls
	At  int
}

func (e *WrongTypeOrderingError) Error() string {
	return fmt.Sprintf("strictypes: decoded %s is not in strict canonical order at index %d", e.Cls, e.At)
}

// CodecError reports a binary decode failure: truncated input, a tag byte
// with no matching enum/union variant, an out-of-bounds length prefix, and
// so on.
type CodecError struct {
	Reason string
}

func (e *CodecError) Error() string { return fmt.Sprintf("strictypes: decode failed: %s", e.Reason) }

// ArmorError reports a malformed ASCII-armored transport envelope.
type ArmorError struct {
	Reason string
}

func (e *ArmorError) Error() string { return fmt.Sprintf("strictypes: armor: %s", e.Reason) }
