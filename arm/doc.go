// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package arm lifts ARM32 instructions into expression-tree IL programs.
//
// Unlike the avr package, arm does not decode raw bytes itself: it
// consumes structured instructions from an external decoder (operands
// already classified as register, immediate, or memory, with shift and
// condition fields attached) and produces il.Effect trees. Conditional
// instructions come out wrapped in a branch whose else arm is a no-op.
//
// Lifting never fails with an error: an instruction the handler set
// cannot model yields an inert trapping record, the same convention the
// byte-stream decoders use.
package arm
