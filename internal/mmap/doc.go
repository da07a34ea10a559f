// Package mmap provides read-only memory-mapped file access.
//
// The graph and metadata files are opened once at startup and mapped for the
// process lifetime. Search traversals read adjacency blocks directly out of
// the mapping with zero copies, so the only blocking operations on the hot
// path are page faults.
//
// Graph traversal touches blocks in effectively random order; callers should
// advise the kernel accordingly:
//
//	m, err := mmap.Open("graph.bin")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessRandom)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (advice is a no-op)
//
// # Thread Safety
//
// A Mapping is safe for concurrent read access. Close is idempotent, but
// callers must ensure no goroutine touches Bytes() after Close returns; the
// engine guarantees this by draining searches before shutdown.
package mmap
