package service

import "sync"

// lockTable hands out one mutex per entity id so operations on the same
// entity serialize while unrelated entities proceed in parallel.
//
// Entries are never evicted; the table grows with the set of ids seen by this
// process, which is bounded by the working set of active entities.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for the given id, creating it on first use.
func (t *lockTable) get(id string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	return l
}

// Locks owns the process-wide per-entity lock tables. There is one critical
// section per ride id, per passenger wallet, and per driver, shared by every
// service that mutates them: a settlement debit and a wallet top-up contend
// on the same mutex, as do the lifecycle engine's driver flips and a direct
// availability change. Construct one set per process and inject it into each
// service.
type Locks struct {
	rides   *lockTable
	wallets *lockTable
	drivers *lockTable
}

// NewLocks creates an empty lock set.
func NewLocks() *Locks {
	return &Locks{
		rides:   newLockTable(),
		wallets: newLockTable(),
		drivers: newLockTable(),
	}
}
