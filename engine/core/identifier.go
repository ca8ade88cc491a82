package core

import "sync/atomic"

// InvalidID is never handed out; caches use it as their "nothing bound" sentinel.
const InvalidID uint64 = 0

var lastID atomic.Uint64

// IdentifierAcquireNewID returns a process-unique, non-zero identifier.
func IdentifierAcquireNewID() uint64 {
	return lastID.Add(1)
}
