// Package testutil provides testing utilities for the artistpath engine.
//
// This package is intended for use in tests and benchmarks only. It builds
// real on-disk stores in temporary directories, including the canonical
// six-artist fixture used by the search scenarios:
//
//	A→B(0.9), A→C(0.4), B→D(0.8), C→D(0.5),
//	D→E(0.9), E→F(0.1), F→A(0.2)
//
// and a seeded random-graph generator for larger property tests.
package testutil
