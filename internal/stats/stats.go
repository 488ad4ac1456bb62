// Package stats computes and prints the end-of-run statistics block: mean
// turnaround, mean and max overhead, and the run's makespan.
package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/arctir/schedsim/internal/process"
)

// Stats holds the aggregate statistics computed over a finished list.
type Stats struct {
	AvgTurnaround int
	MaxOverhead   float64
	AvgOverhead   float64
	Makespan      int
}

// Compute derives Stats from the finished processes and the final
// simulation clock value (the makespan): ceil for the mean turnaround,
// round(x*100)/100 for the two 2-decimal fields.
func Compute(finished []*process.Process, makespan int) Stats {
	var turnaroundSum float64
	var overheadSum float64
	maxOverhead := math.Inf(-1)

	for _, p := range finished {
		turnaroundSum += float64(p.Turnaround)
		overheadSum += p.Overhead
		if p.Overhead > maxOverhead {
			maxOverhead = p.Overhead
		}
	}

	n := float64(len(finished))
	return Stats{
		AvgTurnaround: int(math.Ceil(turnaroundSum / n)),
		MaxOverhead:   round2(maxOverhead),
		AvgOverhead:   round2(overheadSum / n),
		Makespan:      makespan,
	}
}

// round2 matches the source's round(x*100)/100, preserving its
// floating-point tie-break behaviour rather than using a decimal-aware
// rounding library.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Print writes the exact-format statistics block.
func (s Stats) Print(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Turnaround time %d\n", s.AvgTurnaround); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time overhead %.2f %.2f\n", s.MaxOverhead, s.AvgOverhead); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Makespan %d\n", s.Makespan); err != nil {
		return err
	}
	return nil
}
