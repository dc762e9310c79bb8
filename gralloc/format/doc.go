// Package format holds the pixel format and usage-flag vocabulary shared by
// the allocator, its backends and the CLI, together with the alignment
// helpers used by the layout calculator. Nothing here touches the OS.
package format
