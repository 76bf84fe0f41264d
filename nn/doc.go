// Copyright 2025 The Own-co-slam Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network layers the scene decoders are
// built from.
//
// # Overview
//
// This package contains:
//   - Layers: Linear (optionally bias-free), FusedMLP
//   - Activations: ReLU, Swish, Mish, SELU
//   - Utilities: Sequential, Module interface, Parameter
//   - Encodings: OneBlob and Frequency positional encodings
//   - Initialization: Uniform, KaimingUniform, Zeros
//
// # Basic Usage
//
//	import (
//	    "github.com/Pallab007Saha/Own-co-slam/backend/cpu"
//	    "github.com/Pallab007Saha/Own-co-slam/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    model := nn.NewSequential[*cpu.Backend](
//	        nn.NewLinear(3, 64, backend, nn.WithBias(false)),
//	        nn.NewSwish[*cpu.Backend](),
//	        nn.NewLinear(64, 16, backend, nn.WithBias(false)),
//	    )
//	    h, err := model.Forward(x)
//	}
//
// # Errors
//
// Forward returns an error wrapping tensor.ErrShapeMismatch for inputs of
// the wrong width. Activation modules return ErrUnsupported on backends
// without the kernel; the *Func forms panic instead.
package nn
