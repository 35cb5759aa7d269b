// Package pipeline runs the hashing stage over a manifest stream.
//
// Lines are read and parsed sequentially, hashed by a bounded worker pool,
// and re-sequenced by a Reassembler so that output order always equals input
// order regardless of how many workers run. A single collector goroutine owns
// the reassembler and the output writer.
package pipeline
