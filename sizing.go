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

// Sizing bounds the element count of a variable-length collection
// (list, set, map, unicode string, ascii string).
type Sizing struct {
	Min uint64
	Max uint64
}

// FixedSizing returns a Sizing with Min == Max == n.
func FixedSizing(n uint64) Sizing { return Sizing{Min: n, Max: n} }

// Check reports whether length n satisfies the bounds.
func (s Sizing) Check(n uint64) bool { return n >= s.Min && n <= s.Max }

// Validate reports whether s is internally consistent, per spec.md §4.3's
// requirement that a Sizing with Min > Max is rejected rather than silently
// accepted as an unsatisfiable bound.
func (s Sizing) Validate() error {
	if s.Min > s.Max {
		return &InvalidSizingError{Sizing: s, Reason: "min exceeds max"}
	}
	return nil
}

// ByteSize returns the number of bytes the canonical length prefix for a
// collection bounded by s occupies on the wire: 1/2/3/4/8 depending on Max,
// per spec.md §4.8.
func (s Sizing) ByteSize() int {
	switch {
	case s.Max <= 0xFF:
		return 1
	case s.Max <= 0xFFFF:
		return 2
	case s.Max <= 0xFFFFFF:
		return 3
	case s.Max <= 0xFFFFFFFF:
		return 4
	default:
		return 8
	}
}

func (s Sizing) String() string {
	if s.Min == s.Max {
		return fmt.Sprintf("%d", s.Min)
	}
	return fmt.Sprintf("%d..%d", s.Min, s.Max)
}

func (s Sizing) semCommit(h *semHasher) {
	h.writeU64LE(s.Min)
	h.writeU64LE(s.Max)
}
