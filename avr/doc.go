// Package avr lifts AVR machine code to flat stack programs.
//
// Decoding matches the 16-bit instruction word against an ordered
// mask/selector descriptor table; more specific encodings precede broader
// ones, and the first match dispatches to its semantic handler. A handler
// emits a complete effect program plus metadata (size, cycle estimate,
// control-flow targets, instruction class). Unknown or malformed input
// never fails: it yields an inert record of minimum size whose program is
// a single trap, so batch analysis advances past garbage.
//
// Behavior outside the base IL (SPM self-programming, the XMEGA DES round
// instruction) is emitted as call-by-name custom intrinsics; see Register.
package avr
