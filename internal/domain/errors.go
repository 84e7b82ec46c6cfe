package domain

import "errors"

// ErrValidation is the root of all input-validation failures: malformed
// candle sequences, out-of-range market state, unknown enum values.
// A combination hitting ErrValidation is skipped and recorded; it never
// aborts sibling work.
var ErrValidation = errors.New("validation error")
