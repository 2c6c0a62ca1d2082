// Package il defines the intermediate language emitted by instruction
// lifters: immutable pure-expression trees, ordered effects, and a flat
// stack-program form.
//
// A lifter produces one Program per decoded instruction. Tree programs
// (Effect) describe semantics as structured nodes; stack programs (Script)
// describe them as a comma-separated token stream evaluated left to right
// against an operand stack:
//
//   - numeric literals and register names push values
//   - binary operators (+ - * & | ^ << >>) pop two operands and push the
//     result; the token before the operator is the left-hand side
//   - assignment forms (= := += -= &= |= ^= >>=) pop a register name and a
//     value; ":=" skips the flag bookkeeping that "=" and the compound
//     forms perform
//   - "[n]" pops an address and pushes an n-byte memory load; "=[n]" pops
//     an address and a value and stores n bytes
//   - "$z", "N,$c", "N,$b" and "N,$o" push the zero, carry-at-bit-N,
//     borrow-at-bit-N and overflow-at-bit-N flags of the last operation
//   - "?{" pops a condition and skips to the matching "}" when it is zero
//   - "DUP" duplicates the top of the stack, "TRAP" halts with a trap, and
//     any other bare name invokes a registered custom intrinsic (Ops)
//
// Both forms are consumed by a downstream interpreter holding named
// register and flag state plus byte-addressable memory.
package il
