// Package digest implements the run-level hash capability: algorithm
// selection by name and streaming file digests formatted as
// "<algorithm>:<lowercase hex>".
//
// Only sha256 and blake3 are supported. The algorithm is chosen once per run;
// an unknown name must be rejected before any record is processed.
package digest
