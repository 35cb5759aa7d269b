// Package hashcache persists file digests in SQLite so that repeated runs over
// unchanged files skip re-reading them.
//
// An entry is valid only while the file's size and modification time match
// what was recorded alongside the digest; anything else is a miss and the
// entry is replaced on the next store.
package hashcache
