// Package audio classifies raw audio buffers by container format using
// magic-byte signatures. Detection is pure: no I/O, no state, never panics.
package audio
