package engine

import "sync"

// EmployeeLocks serializes mutating operations per employee. Two
// concurrent writes for the same employee take turns; writes for
// distinct employees proceed in parallel. The ledger and the workflow
// share one instance so a balance-checking approval cannot interleave
// with another mutation for the same employee.
//
// Mutexes are created on first use and kept for the process lifetime;
// the map is bounded by the number of distinct employees seen.
type EmployeeLocks struct {
	mu    sync.Mutex
	locks map[EmployeeID]*sync.Mutex
}

func NewEmployeeLocks() *EmployeeLocks {
	return &EmployeeLocks{locks: make(map[EmployeeID]*sync.Mutex)}
}

// Acquire locks the employee's region and returns the release function.
//
//	defer locks.Acquire(employeeID)()
func (l *EmployeeLocks) Acquire(id EmployeeID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
