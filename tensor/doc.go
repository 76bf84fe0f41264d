// Copyright 2025 The Own-co-slam Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor types used by the scene
// decoders.
//
// # Overview
//
// Tensors are dense, row-major and backed by a RawTensor byte buffer. This
// package provides:
//   - Generic type-safe tensors (Tensor[T, B]) over float32 and float64
//   - The Backend interface implemented by compute backends
//   - Shape helpers and the ErrShapeMismatch sentinel
//
// # Basic Usage
//
//	import (
//	    "github.com/Pallab007Saha/Own-co-slam/backend/cpu"
//	    "github.com/Pallab007Saha/Own-co-slam/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    embed, _ := tensor.FromSlice([]float32{0.1, 0.2, 0.3}, tensor.Shape{1, 3}, backend)
//	    pos := tensor.Zeros[float32](tensor.Shape{1, 12}, backend)
//
//	    x, err := tensor.Cat(-1, embed, pos) // [1, 15]
//	}
//
// # Errors
//
// Shape-dependent operations return errors instead of panicking. Compare
// them with errors.Is against ErrShapeMismatch. At and Set panic on out of
// range indices.
package tensor
