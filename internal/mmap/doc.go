// Package mmap provides read-only memory-mapped file access.
//
// Large dictionary resources (ispell root lists, thesaurus rule files)
// are mapped instead of read into the heap, so repeated configuration
// loads share the page cache.
//
//	m, err := mmap.Open("english.dict")
//	if err != nil { ... }
//	defer m.Close()
//	data := m.Bytes()
//
// Unix platforms use mmap(2) with madvise(2) hints; Windows uses
// CreateFileMapping/MapViewOfFile and treats the hints as no-ops.
// Mapping and Region are safe for concurrent reads; Close is idempotent,
// but callers must not touch Bytes() after Close returns.
package mmap
