// Package process defines the scheduler's process record and its lifecycle
// mutators. Values are created IDLE by the scheduler as each workload job
// arrives, and are mutated only by the scheduler loop.
package process

import (
	"github.com/arctir/schedsim/internal/memory"
	"github.com/arctir/schedsim/internal/realproc"
)

// State is a position in the process lifecycle:
// IDLE -> READY -> RUNNING -> FINISHED, each transition occurring exactly
// once.
type State int

const (
	Idle State = iota
	Ready
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Ready:
		return "READY"
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Process is a single job from the workload: its identity, service
// accounting, memory handle, and real-process handle.
type Process struct {
	Name   string
	Arrival int
	Service int

	// Remaining is the mutable service-time-left counter, decremented once
	// per tick while the process is RUNNING.
	Remaining int
	// Memory is the byte requirement recorded at load time; immutable.
	Memory int

	State State

	FinishTime int
	// Turnaround and Overhead are populated by Finish.
	Turnaround int
	Overhead   float64

	// Block is the process's memory handle, set by the scheduler from the
	// allocator's Admit result on admission and released (logically, by the
	// allocator's Free) at
	// completion. nil until admitted.
	Block memory.Handle

	// Child is the real operating-system process backing this job once it
	// first reaches RUNNING. nil until first dispatch.
	Child *realproc.Child
}

// New creates an IDLE process record for the given workload row.
func New(name string, arrival, service, mem int) *Process {
	return &Process{
		Name:      name,
		Arrival:   arrival,
		Service:   service,
		Remaining: service,
		Memory:    mem,
		State:     Idle,
	}
}

// Tick decrements Remaining by quantum, clamping at zero, and reports
// whether the process has just expired. A process that is already FINISHED
// should never be ticked again.
func (p *Process) Tick(quantum int) (expired bool) {
	p.Remaining -= quantum
	if p.Remaining <= 0 {
		p.Remaining = 0
		return true
	}
	return false
}

// Finish transitions p to FINISHED at simulation time t and computes its
// turnaround and overhead statistics.
func (p *Process) Finish(t int) {
	p.State = Finished
	p.FinishTime = t
	p.Turnaround = t - p.Arrival
	if p.Service > 0 {
		p.Overhead = float64(p.Turnaround) / float64(p.Service)
	}
}
