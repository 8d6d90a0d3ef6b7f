// Package id provides a 128-bit, lexicographically sortable stamp.
//
// # Format
//
// The ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes sequence].
// Byte-wise (and hex-string) comparison preserves chronological order, and
// IDs generated within the same millisecond remain strictly increasing by
// sequence. Queue keys embed the hex form so age-based sweeps can work from
// key enumeration alone.
//
// # Monotonicity
//
// The Generator ensures per-process monotonicity:
//   - If the system clock regresses, it pins to the last seen millisecond
//     and increments the sequence to avoid going backwards.
//   - If the sequence would overflow within a millisecond, it waits for the
//     next millisecond before emitting the next ID.
package id
