//go:build !debug_locks

package lockutil

import "sync"

// Mutex is sync.Mutex in ordinary builds; build with -tags debug_locks to
// swap in go-deadlock's drop-in replacement (see mutex_debug.go) for the
// two places this module takes locks across goroutines: internal/
// specstore and internal/orchestrate's Registry.
type Mutex = sync.Mutex
