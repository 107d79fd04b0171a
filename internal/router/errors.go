package router

import "errors"

// ErrUnmatchedPrimaryMints is returned when two pools do not share a primary
// mint: routing through mismatched intermediaries is meaningless and is
// rejected before any funds move.
var ErrUnmatchedPrimaryMints = errors.New("router: pools do not share a primary mint")
