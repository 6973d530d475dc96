// Package store provides engine.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tempus/worktime-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	intervals map[engine.IntervalID]engine.Interval
	requests  map[engine.RequestID]engine.LeaveRequest
	employees map[engine.EmployeeID]engine.Employee

	// failNextReads makes the next n read calls fail with a transient
	// error. Test hook for the read-side retry policy.
	failNextReads int
}

func NewMemory() *Memory {
	return &Memory{
		intervals: make(map[engine.IntervalID]engine.Interval),
		requests:  make(map[engine.RequestID]engine.LeaveRequest),
		employees: make(map[engine.EmployeeID]engine.Employee),
	}
}

// FailNextReads arms the store to fail the next n reads with
// engine.ErrStoreUnavailable.
func (m *Memory) FailNextReads(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNextReads = n
}

func (m *Memory) consumeFailure() error {
	if m.failNextReads > 0 {
		m.failNextReads--
		return engine.ErrStoreUnavailable
	}
	return nil
}

// =============================================================================
// INTERVALS
// =============================================================================

func (m *Memory) CreateInterval(_ context.Context, iv engine.Interval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intervals[iv.ID] = iv
	return nil
}

func (m *Memory) GetInterval(_ context.Context, id engine.IntervalID) (*engine.Interval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	iv, ok := m.intervals[id]
	if !ok {
		return nil, nil
	}
	out := iv
	return &out, nil
}

func (m *Memory) UpdateInterval(_ context.Context, iv engine.Interval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.intervals[iv.ID]; !ok {
		return &engine.NotFoundError{Kind: "interval", ID: string(iv.ID)}
	}
	m.intervals[iv.ID] = iv
	return nil
}

func (m *Memory) DeleteInterval(_ context.Context, id engine.IntervalID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.intervals[id]; !ok {
		return &engine.NotFoundError{Kind: "interval", ID: string(id)}
	}
	delete(m.intervals, id)
	return nil
}

func (m *Memory) ListIntervals(_ context.Context, employeeID engine.EmployeeID, from, to time.Time) ([]engine.Interval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.consumeFailure(); err != nil {
		return nil, err
	}

	var out []engine.Interval
	for _, iv := range m.intervals {
		if iv.EmployeeID != employeeID {
			continue
		}
		// Intersects [from, to); open intervals extend to +inf.
		if !to.IsZero() && !iv.Start.Before(to) {
			continue
		}
		if iv.End != nil && !iv.End.After(from) {
			continue
		}
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Equal(out[j].Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Start.Before(out[j].Start)
	})
	return out, nil
}

func (m *Memory) OpenInterval(_ context.Context, employeeID engine.EmployeeID) (*engine.Interval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, iv := range m.intervals {
		if iv.EmployeeID == employeeID && iv.End == nil {
			out := iv
			return &out, nil
		}
	}
	return nil, nil
}

func (m *Memory) PendingIntervals(_ context.Context) ([]engine.Interval, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.consumeFailure(); err != nil {
		return nil, err
	}

	var out []engine.Interval
	for _, iv := range m.intervals {
		if iv.Manual && !iv.Approved {
			out = append(out, iv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (m *Memory) CreateLeaveRequest(_ context.Context, lr engine.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[lr.ID] = lr
	return nil
}

func (m *Memory) GetLeaveRequest(_ context.Context, id engine.RequestID) (*engine.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lr, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	out := lr
	return &out, nil
}

func (m *Memory) UpdateLeaveRequest(_ context.Context, lr engine.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[lr.ID]; !ok {
		return &engine.NotFoundError{Kind: "leave request", ID: string(lr.ID)}
	}
	m.requests[lr.ID] = lr
	return nil
}

func (m *Memory) ListLeaveRequests(_ context.Context, employeeID engine.EmployeeID) ([]engine.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.consumeFailure(); err != nil {
		return nil, err
	}

	var out []engine.LeaveRequest
	for _, lr := range m.requests {
		if lr.EmployeeID == employeeID {
			out = append(out, lr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) PendingLeaveRequests(_ context.Context) ([]engine.LeaveRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.consumeFailure(); err != nil {
		return nil, err
	}

	var out []engine.LeaveRequest
	for _, lr := range m.requests {
		if lr.Status == engine.StatusPending {
			out = append(out, lr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (m *Memory) PutEmployee(_ context.Context, e engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	out := e
	return &out, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
