// Copyright 2025 The Own-co-slam Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/Pallab007Saha/Own-co-slam/internal/backend/cpu"
	"github.com/Pallab007Saha/Own-co-slam/tensor"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend provides pure Go implementations of the tensor and
// activation kernels the decoders need, splitting row-parallel work across
// goroutines.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/Pallab007Saha/Own-co-slam/backend/cpu"
//	    "github.com/Pallab007Saha/Own-co-slam/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    x := tensor.Zeros[float32](tensor.Shape{4, 3}, backend)
//	}
func New() *Backend {
	return internalcpu.New()
}
