// Package cmd wires the schedsim root command: the four required flags,
// workload loading, scheduler construction, and the fail-fast
// configuration-error path.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arctir/schedsim/internal/process"
	"github.com/arctir/schedsim/internal/realproc"
	"github.com/arctir/schedsim/internal/scheduler"
	"github.com/arctir/schedsim/internal/workload"
)

var (
	workloadPath string
	policyFlag   string
	memFlag      string
	quantum      int
	binaryPath   string
	debug        bool
	showTable    bool
)

var rootCmd = &cobra.Command{
	Use:   "schedsim",
	Short: "Simulates a tick-driven process scheduler and contiguous memory allocator.",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&workloadPath, "file", "f", "", "workload file (required)")
	flags.StringVarP(&policyFlag, "scheduler", "s", "", "scheduling discipline: SJF or RR (required)")
	flags.StringVarP(&memFlag, "memory", "m", "", "memory strategy: infinite or best-fit (required)")
	flags.IntVarP(&quantum, "quantum", "q", 0, "tick quantum, in simulated time units (required)")
	flags.StringVar(&binaryPath, "binary", "process", "path to the worker binary spawned for each job")
	flags.BoolVar(&debug, "debug", false, "log child-controller failure diagnostics to stderr")
	flags.BoolVar(&showTable, "table", false, "print a supplementary per-process table to stderr")
}

// Execute runs the root command, exiting non-zero on any configuration or
// simulation error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	policy, err := parsePolicy(policyFlag)
	if err != nil {
		return err
	}
	strategy, err := parseMemStrategy(memFlag)
	if err != nil {
		return err
	}
	if workloadPath == "" {
		return fmt.Errorf("-f <workload-file> is required")
	}
	if quantum <= 0 {
		return fmt.Errorf("-q <quantum> must be a positive integer, got %d", quantum)
	}

	jobs, err := workload.Load(workloadPath)
	if err != nil {
		return err
	}

	var debugLog *log.Logger
	if debug {
		debugLog = log.New(os.Stderr, "schedsim: ", log.LstdFlags)
	}

	out := cmd.OutOrStdout()
	sched := scheduler.New(scheduler.Config{
		Quantum:     quantum,
		Policy:      policy,
		MemStrategy: strategy,
		Controller:  realproc.NewController(binaryPath, debugLog),
		Out:         out,
	})

	result, err := sched.Run(jobs)
	if err != nil {
		return err
	}
	if err := result.Print(out); err != nil {
		return fmt.Errorf("failed writing statistics: %w", err)
	}

	if showTable {
		printTable(os.Stderr, sched.Finished())
	}
	return nil
}

func parsePolicy(s string) (scheduler.Policy, error) {
	switch s {
	case "SJF":
		return scheduler.SJF, nil
	case "RR":
		return scheduler.RR, nil
	default:
		return 0, fmt.Errorf("-s must be SJF or RR, got %q", s)
	}
}

func parseMemStrategy(s string) (scheduler.MemStrategy, error) {
	switch s {
	case "infinite":
		return scheduler.Infinite, nil
	case "best-fit":
		return scheduler.BestFit, nil
	default:
		return 0, fmt.Errorf("-m must be infinite or best-fit, got %q", s)
	}
}

// printTable renders a supplementary turnaround/overhead table to w. It is
// never part of the mandated stdout stream — callers route it to stderr,
// gated behind --table.
func printTable(w io.Writer, finished []*process.Process) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"Process", "Arrival", "Service", "Finish", "Turnaround", "Overhead"})
	for _, p := range finished {
		t.Append([]string{
			p.Name,
			fmt.Sprintf("%d", p.Arrival),
			fmt.Sprintf("%d", p.Service),
			fmt.Sprintf("%d", p.FinishTime),
			fmt.Sprintf("%d", p.Turnaround),
			fmt.Sprintf("%.2f", p.Overhead),
		})
	}
	t.Render()
}
