// Copyright 2025 The Own-co-slam Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 support
//   - Row-parallel matrix multiplication
//   - Numerically stable Swish, Mish and SELU kernels
//
// # Basic Usage
//
//	import (
//	    "github.com/Pallab007Saha/Own-co-slam/backend/cpu"
//	    "github.com/Pallab007Saha/Own-co-slam/decoder"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    net, err := decoder.NewColorSDFNet(decoder.DefaultConfig(), 3, 12, backend)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
