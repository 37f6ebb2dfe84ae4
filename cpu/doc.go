// Package cpu implements the LC-3 processor and assembler.
//
// The processor consists of eight 16-bit general-purpose registers (r0-r7),
// a program counter, and a condition flag register holding exactly one of
// the n/z/p flags. Memory is a flat 65536-word array with a memory-mapped
// keyboard status/data register pair at 0xFE00/0xFE02. The TRAP instruction
// dispatches to six built-in I/O service routines.
//
// The assembler provides the classic LC-3 assembly syntax (.orig, .fill,
// .blkw, .stringz directives, brnzp condition suffixes, trap aliases),
// extended with macros, equates, and compile-time expression evaluation.
package cpu
