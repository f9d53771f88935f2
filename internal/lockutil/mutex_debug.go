//go:build debug_locks

package lockutil

import "github.com/sasha-s/go-deadlock"

// Mutex is go-deadlock's Mutex under -tags debug_locks: same API as
// sync.Mutex, but panics with a stack dump if a lock is held longer than
// deadlock.Opts.DeadlockTimeout or a lock-order cycle is detected.
// internal/specstore and internal/orchestrate are the two places this
// module takes locks across goroutines, so they're the two places worth
// the import's cost.
type Mutex = deadlock.Mutex
