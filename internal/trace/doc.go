// Package trace reads, writes and synthesizes worker traces.
//
// # Text format
//
// One operation per line:
//
//	read <slot>
//	write <slot> <value>
//	string
//
// "string" renders the whole store and maps to ir.OpSnapshot. Blank lines
// and lines starting with '#' are ignored. Any other line that does not
// match one of the three shapes exactly (unknown command, missing field,
// non-integer field, extra fields) is dropped by the loader and counted in
// Stats.Dropped; it is never an error. Only I/O failures are reported.
//
// # Synthesis
//
// A Mix is a discrete distribution over operation shapes. A Generator draws
// sequences from a Mix using a PCG stream seeded by (seed, worker), so the
// same seed always produces the same traces and workers never share a
// stream.
package trace
