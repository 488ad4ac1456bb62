// Package pool implements the scheduler's ready pool as a single abstraction
// backed by either a binary min-heap (SJF) or a FIFO (RR), selected once per
// run.
package pool

import (
	"github.com/arctir/schedsim/internal/process"
	"github.com/arctir/schedsim/internal/seq"
)

// ReadyPool holds processes that have been granted memory but are not yet
// running. Extract returns nil when the pool is empty.
type ReadyPool interface {
	Insert(p *process.Process)
	Extract() *process.Process
	Empty() bool
	Len() int
}

// heapPool is the SJF ready pool: a min-heap keyed by (service time, name).
type heapPool struct {
	h *seq.Heap[*process.Process]
}

// NewSJF returns a ReadyPool that extracts the process with the smallest
// service time, breaking ties lexicographically by name.
func NewSJF() ReadyPool {
	less := func(a, b *process.Process) bool {
		if a.Service != b.Service {
			return a.Service < b.Service
		}
		return a.Name < b.Name
	}
	return &heapPool{h: seq.NewHeap[*process.Process](less)}
}

func (p *heapPool) Insert(proc *process.Process) {
	p.h.Push(proc)
}

func (p *heapPool) Extract() *process.Process {
	v, ok := p.h.ExtractMin()
	if !ok {
		return nil
	}
	return v
}

func (p *heapPool) Empty() bool {
	return p.h.Empty()
}

func (p *heapPool) Len() int {
	return p.h.Len()
}

// fifoPool is the RR ready pool: arrival-into-ready order, rotated by the
// scheduler re-inserting the preempted process at the tail.
type fifoPool struct {
	l *seq.List[*process.Process]
}

// NewRR returns a FIFO ReadyPool.
func NewRR() ReadyPool {
	return &fifoPool{l: seq.New[*process.Process]()}
}

func (p *fifoPool) Insert(proc *process.Process) {
	p.l.PushBack(proc)
}

func (p *fifoPool) Extract() *process.Process {
	v, ok := p.l.PopFront()
	if !ok {
		return nil
	}
	return v
}

func (p *fifoPool) Empty() bool {
	return p.l.Empty()
}

func (p *fifoPool) Len() int {
	return p.l.Len()
}
