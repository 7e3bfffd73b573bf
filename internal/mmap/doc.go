// Package mmap provides anonymous, off-heap memory mappings.
//
// Mappings are page aligned and invisible to the Go garbage collector, which
// makes them suitable as arena backing storage for pointer-free data.
package mmap
