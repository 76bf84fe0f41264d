package decoder

import "errors"

// ErrInvalidConfig is returned when a network cannot be built from the
// given configuration: a missing or mistyped key, a non-positive depth or
// width, or an unknown fused engine.
var ErrInvalidConfig = errors.New("decoder: invalid config")
