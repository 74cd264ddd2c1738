// Package cpu implements the MSP430X core of the emulator.
//
// The core has sixteen registers. R0 is the program counter, R1 the stack
// pointer, R2 the status register, and R3 a constant generator; R4 to R15
// are general purpose. Registers hold up to 20 significant bits.
//
// Each Step fetches an instruction through the Bus, decodes it into an
// Instruction, resolves its source and destination operands (fetching any
// extension words), and executes it. Instructions with an extension prefix
// may repeat; the repetition count is captured when the instruction is first
// decoded.
//
// A failing step leaves registers and memory as they were: bus writes are
// staged during execution and only committed once every one of them has been
// checked.
package cpu
