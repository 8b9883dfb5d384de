// Package vm implements the Vortex stack machine and its assembler.
//
// A program is an ordered sequence of instructions; the Nth instruction
// occupies address N. The machine executes a program against a LIFO stack
// of 32-bit signed values and a fixed 2048-cell linear memory, collecting
// any PRINT output in a byte buffer.
//
// The assembler translates line-oriented `.asv` source into a program,
// resolving symbolic jump labels to instruction addresses. It supports
// `;` comments, `.equ` constants, and compile-time `$( ... )` expression
// evaluation. The codec serializes a program to the compact `.vvm`
// bytecode form and back.
package vm
