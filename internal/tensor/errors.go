package tensor

import "errors"

// ErrShapeMismatch is returned by operations whose operand shapes are
// incompatible (matmul inner dimensions, concatenation axes, slice bounds).
// Callers compare with errors.Is; the message carries the offending shapes.
var ErrShapeMismatch = errors.New("shape mismatch")

// ErrDTypeMismatch is returned when operands of one operation carry
// different element types.
var ErrDTypeMismatch = errors.New("dtype mismatch")
