package curve

import "errors"

// ErrOverflow covers every checked-arithmetic failure in the pricing engine:
// zero reserves, products that do not fit, underflowing subtractions and
// degenerate results that would drain a pool. Callers treat all of them as a
// total rejection of the request.
var ErrOverflow = errors.New("curve: arithmetic overflow or undefined result")
