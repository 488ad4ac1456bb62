// Package scheduler drives the tick-based simulation loop: it advances a
// fixed-quantum clock, admits arrivals, grants memory, and dispatches jobs
// under either Shortest Job First (non-preemptive) or Round Robin
// (preemptive), emitting the mandated event lines and driving each
// dispatched job as a real child process via internal/realproc.
package scheduler

import (
	"fmt"
	"io"

	"github.com/arctir/schedsim/internal/memory"
	"github.com/arctir/schedsim/internal/pool"
	"github.com/arctir/schedsim/internal/process"
	"github.com/arctir/schedsim/internal/realproc"
	"github.com/arctir/schedsim/internal/seq"
	"github.com/arctir/schedsim/internal/stats"
	"github.com/arctir/schedsim/internal/workload"
)

// Policy selects the dispatch discipline.
type Policy int

const (
	SJF Policy = iota
	RR
)

func (p Policy) String() string {
	if p == RR {
		return "RR"
	}
	return "SJF"
}

// MemStrategy selects the allocator behind the ready pool's admission gate.
type MemStrategy int

const (
	Infinite MemStrategy = iota
	BestFit
)

func (m MemStrategy) String() string {
	if m == BestFit {
		return "best-fit"
	}
	return "infinite"
}

// ChildController is the subset of *realproc.Controller's API the loop
// depends on. Tests substitute a fake that skips spawning a real binary;
// production callers pass a *realproc.Controller, which satisfies this
// interface structurally.
type ChildController interface {
	Start(name string, simTime uint32) (*realproc.Child, error)
	Continue(ch *realproc.Child, simTime uint32) error
	Suspend(ch *realproc.Child, simTime uint32) error
	Terminate(ch *realproc.Child, simTime uint32) (hash string, err error)
}

// Config configures a Scheduler.
type Config struct {
	Quantum     int
	Policy      Policy
	MemStrategy MemStrategy
	Controller  ChildController
	// Out receives the simulation's event lines, one per line.
	Out io.Writer
}

// Scheduler is a single simulation run's mutable state: the tick clock, the
// three process queues, the memory arena, and the child controller. It is
// not safe for concurrent use — the loop itself is single-threaded and
// cooperative.
type Scheduler struct {
	quantum     int
	policy      Policy
	memStrategy MemStrategy

	arena   *memory.Arena
	input   *seq.List[*process.Process]
	ready   pool.ReadyPool
	finished []*process.Process

	ctrl ChildController
	out  io.Writer

	clock   int
	current *process.Process
}

// New returns a Scheduler ready to Run a workload.
func New(cfg Config) *Scheduler {
	var ready pool.ReadyPool
	if cfg.Policy == RR {
		ready = pool.NewRR()
	} else {
		ready = pool.NewSJF()
	}

	return &Scheduler{
		quantum:     cfg.Quantum,
		policy:      cfg.Policy,
		memStrategy: cfg.MemStrategy,
		arena:       memory.New(cfg.MemStrategy == Infinite),
		input:       seq.New[*process.Process](),
		ready:       ready,
		ctrl:        cfg.Controller,
		out:         cfg.Out,
	}
}

// Finished returns the processes that completed, in completion order.
func (s *Scheduler) Finished() []*process.Process {
	return s.finished
}

// Run executes the tick loop to completion and returns the final
// statistics. jobs must already be sorted by arrival time.
func (s *Scheduler) Run(jobs []workload.Job) (stats.Stats, error) {
	if s.policy == RR {
		return s.runRR(jobs)
	}
	return s.runSJF(jobs)
}

// runSJF implements the non-preemptive SJF loop: the current process, once
// dispatched, holds the CPU until it expires.
func (s *Scheduler) runSJF(jobs []workload.Job) (stats.Stats, error) {
	pendingIdx := 0
	numProcesses := len(jobs)

	for cycle := 0; ; cycle++ {
		var expired bool

		if cycle > 0 {
			if s.current != nil {
				expired = s.current.Tick(s.quantum)
			}
			if expired {
				remaining := s.input.Len() + s.ready.Len()
				if err := s.finishCurrent(remaining); err != nil {
					return stats.Stats{}, err
				}
				if len(s.finished) == numProcesses {
					break
				}
			}
		}

		s.admitArrivals(jobs, &pendingIdx)

		if cycle > 0 && !expired && s.current != nil {
			if err := s.ctrl.Continue(s.current.Child, uint32(s.clock)); err != nil {
				return stats.Stats{}, fmt.Errorf("failed continuing %s at t=%d: %w", s.current.Name, s.clock, err)
			}
		}

		s.admitMemory()

		if expired || (s.current == nil && !s.ready.Empty()) {
			if next := s.ready.Extract(); next != nil {
				if err := s.dispatch(next); err != nil {
					return stats.Stats{}, err
				}
				s.current = next
			}
		}

		s.clock += s.quantum
	}

	return stats.Compute(s.finished, s.clock), nil
}

// runRR implements the preemptive Round Robin loop: the current process is
// rotated to the ready FIFO's tail and suspended whenever another process
// is waiting.
func (s *Scheduler) runRR(jobs []workload.Job) (stats.Stats, error) {
	pendingIdx := 0
	numProcesses := len(jobs)

	for cycle := 0; ; cycle++ {
		var expired bool

		if cycle > 0 {
			if s.current != nil {
				expired = s.current.Tick(s.quantum)
			}
			if expired {
				remaining := s.input.Len() + s.ready.Len()
				if err := s.finishCurrent(remaining); err != nil {
					return stats.Stats{}, err
				}
				if len(s.finished) == numProcesses {
					break
				}
			}
		}

		s.admitArrivals(jobs, &pendingIdx)
		s.admitMemory()

		switch {
		case cycle == 0:
			if next := s.ready.Extract(); next != nil {
				if err := s.dispatch(next); err != nil {
					return stats.Stats{}, err
				}
				s.current = next
			}
		case expired:
			if next := s.ready.Extract(); next != nil {
				if err := s.dispatch(next); err != nil {
					return stats.Stats{}, err
				}
				s.current = next
			} else {
				s.current = nil
			}
		case s.current == nil && !s.ready.Empty():
			// Nothing was running going into this tick (e.g. the previous
			// occupant expired into an empty ready pool on an earlier tick)
			// but an arrival or memory admission has since filled it.
			next := s.ready.Extract()
			if err := s.dispatch(next); err != nil {
				return stats.Stats{}, err
			}
			s.current = next
		case !s.ready.Empty():
			s.ready.Insert(s.current)
			if err := s.ctrl.Suspend(s.current.Child, uint32(s.clock)); err != nil {
				return stats.Stats{}, fmt.Errorf("failed suspending %s at t=%d: %w", s.current.Name, s.clock, err)
			}
			next := s.ready.Extract()
			if err := s.dispatch(next); err != nil {
				return stats.Stats{}, err
			}
			s.current = next
		case s.current != nil:
			if err := s.ctrl.Continue(s.current.Child, uint32(s.clock)); err != nil {
				return stats.Stats{}, fmt.Errorf("failed continuing %s at t=%d: %w", s.current.Name, s.clock, err)
			}
		default:
			// Nothing running, nothing ready, nothing expired: an idle tick.
			// Underspecified in the source; the clock simply advances.
		}

		s.clock += s.quantum
	}

	return stats.Compute(s.finished, s.clock), nil
}

// admitArrivals drains every job whose arrival time has reached the clock
// into the input queue, in workload order.
func (s *Scheduler) admitArrivals(jobs []workload.Job, idx *int) {
	for *idx < len(jobs) && jobs[*idx].Arrival <= s.clock {
		j := jobs[*idx]
		s.input.PushBack(process.New(j.Name, j.Arrival, j.Service, j.Memory))
		*idx++
	}
}

// admitMemory attempts to admit every process currently in the input
// queue, in order, leaving behind any that don't fit. Under the infinite
// strategy every admission succeeds and the READY line is suppressed.
func (s *Scheduler) admitMemory() {
	for n := s.input.Front(); n != nil; {
		next := n.Next()
		p := n.Value

		handle, addr, ok := s.arena.Admit(p.Memory)
		if ok {
			p.Block = handle
			p.State = process.Ready
			s.input.Remove(n)
			s.ready.Insert(p)
			if s.memStrategy == BestFit {
				fmt.Fprintf(s.out, "%d,READY,process_name=%s,assigned_at=%d\n", s.clock, p.Name, addr)
			}
		}
		n = next
	}
}

// dispatch makes p the running process: it starts p's child on first
// dispatch or continues an already-spawned one, then emits the RUNNING
// event.
func (s *Scheduler) dispatch(p *process.Process) error {
	if p.Child == nil {
		child, err := s.ctrl.Start(p.Name, uint32(s.clock))
		if err != nil {
			return fmt.Errorf("failed starting %s at t=%d: %w", p.Name, s.clock, err)
		}
		p.Child = child
	} else if err := s.ctrl.Continue(p.Child, uint32(s.clock)); err != nil {
		return fmt.Errorf("failed continuing %s at t=%d: %w", p.Name, s.clock, err)
	}

	p.State = process.Running
	fmt.Fprintf(s.out, "%d,RUNNING,process_name=%s,remaining_time=%d\n", s.clock, p.Name, p.Remaining)
	return nil
}

// finishCurrent completes the current process: it emits FINISHED and
// FINISHED-PROCESS, terminates the child, frees the process's memory, and
// appends it to the finished list.
func (s *Scheduler) finishCurrent(procRemaining int) error {
	p := s.current
	fmt.Fprintf(s.out, "%d,FINISHED,process_name=%s,proc_remaining=%d\n", s.clock, p.Name, procRemaining)

	hash, err := s.ctrl.Terminate(p.Child, uint32(s.clock))
	if err != nil {
		return fmt.Errorf("failed terminating %s at t=%d: %w", p.Name, s.clock, err)
	}
	fmt.Fprintf(s.out, "%d,FINISHED-PROCESS,process_name=%s,sha=%s\n", s.clock, p.Name, hash)

	p.Finish(s.clock)
	s.arena.Free(p.Block)
	s.finished = append(s.finished, p)
	s.current = nil
	return nil
}
