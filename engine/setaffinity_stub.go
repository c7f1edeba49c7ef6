//go:build !linux || tinygo

// setaffinity_stub.go
//
// Portable no-op so the driver compiles on platforms without
// sched_setaffinity. The loop still locks its OS thread; it just floats
// across cores at the scheduler's discretion.

package engine

func setAffinity(int) {}
