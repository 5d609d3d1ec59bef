package ident

import "sync/atomic"

// ActorID is a process-unique actor identity. IDs start at 1, increase
// monotonically and are never handed out twice while the process runs.
type ActorID uint64

func (id ActorID) IsZero() bool { return id == 0 }

var counter atomic.Uint64

// Next returns a fresh ActorID.
func Next() ActorID {
	return ActorID(counter.Add(1))
}
