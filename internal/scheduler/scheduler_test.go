package scheduler

import (
	"bytes"
	"testing"

	"github.com/arctir/schedsim/internal/realproc"
	"github.com/arctir/schedsim/internal/workload"
)

// fakeController stands in for a real child controller: it never spawns a
// binary, so these tests exercise the tick loop's bookkeeping and event
// emission without forking any processes.
type fakeController struct {
	starts int
}

func (f *fakeController) Start(name string, simTime uint32) (*realproc.Child, error) {
	f.starts++
	return realproc.NewChildForTesting(name, 1000+f.starts), nil
}

func (f *fakeController) Continue(ch *realproc.Child, simTime uint32) error { return nil }

func (f *fakeController) Suspend(ch *realproc.Child, simTime uint32) error { return nil }

func (f *fakeController) Terminate(ch *realproc.Child, simTime uint32) (string, error) {
	return "deadbeef", nil
}

func TestSJFSingleJobInfiniteMemory(t *testing.T) {
	var buf bytes.Buffer
	jobs := []workload.Job{{Arrival: 0, Name: "P1", Service: 3, Memory: 100}}

	s := New(Config{Quantum: 1, Policy: SJF, MemStrategy: Infinite, Controller: &fakeController{}, Out: &buf})
	stat, err := s.Run(jobs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := "0,RUNNING,process_name=P1,remaining_time=3\n" +
		"3,FINISHED,process_name=P1,proc_remaining=0\n" +
		"3,FINISHED-PROCESS,process_name=P1,sha=deadbeef\n"
	if buf.String() != want {
		t.Fatalf("events =\n%s\nwant\n%s", buf.String(), want)
	}
	if stat.AvgTurnaround != 3 || stat.MaxOverhead != 1.0 || stat.AvgOverhead != 1.0 || stat.Makespan != 3 {
		t.Fatalf("stats = %+v", stat)
	}
}

func TestSJFDispatchesShortestJobFirst(t *testing.T) {
	var buf bytes.Buffer
	jobs := []workload.Job{
		{Arrival: 0, Name: "P1", Service: 5, Memory: 100},
		{Arrival: 0, Name: "P2", Service: 2, Memory: 100},
	}

	s := New(Config{Quantum: 1, Policy: SJF, MemStrategy: Infinite, Controller: &fakeController{}, Out: &buf})
	stat, err := s.Run(jobs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := "0,RUNNING,process_name=P2,remaining_time=2\n" +
		"2,FINISHED,process_name=P2,proc_remaining=1\n" +
		"2,FINISHED-PROCESS,process_name=P2,sha=deadbeef\n" +
		"2,RUNNING,process_name=P1,remaining_time=5\n" +
		"7,FINISHED,process_name=P1,proc_remaining=0\n" +
		"7,FINISHED-PROCESS,process_name=P1,sha=deadbeef\n"
	if buf.String() != want {
		t.Fatalf("events =\n%s\nwant\n%s", buf.String(), want)
	}
	if stat.Makespan != 7 {
		t.Fatalf("Makespan = %d; want 7", stat.Makespan)
	}
	if stat.AvgTurnaround != 5 {
		t.Fatalf("AvgTurnaround = %d; want 5", stat.AvgTurnaround)
	}
	if stat.MaxOverhead != 1.4 {
		t.Fatalf("MaxOverhead = %v; want 1.4", stat.MaxOverhead)
	}
}

func TestRoundRobinRotatesBetweenEqualJobs(t *testing.T) {
	var buf bytes.Buffer
	jobs := []workload.Job{
		{Arrival: 0, Name: "P1", Service: 4, Memory: 100},
		{Arrival: 0, Name: "P2", Service: 4, Memory: 100},
	}

	s := New(Config{Quantum: 2, Policy: RR, MemStrategy: Infinite, Controller: &fakeController{}, Out: &buf})
	stat, err := s.Run(jobs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := "0,RUNNING,process_name=P1,remaining_time=4\n" +
		"2,RUNNING,process_name=P2,remaining_time=4\n" +
		"4,RUNNING,process_name=P1,remaining_time=2\n" +
		"6,FINISHED,process_name=P1,proc_remaining=1\n" +
		"6,FINISHED-PROCESS,process_name=P1,sha=deadbeef\n" +
		"6,RUNNING,process_name=P2,remaining_time=2\n" +
		"8,FINISHED,process_name=P2,proc_remaining=0\n" +
		"8,FINISHED-PROCESS,process_name=P2,sha=deadbeef\n"
	if buf.String() != want {
		t.Fatalf("events =\n%s\nwant\n%s", buf.String(), want)
	}
	if stat.Makespan != 8 {
		t.Fatalf("Makespan = %d; want 8", stat.Makespan)
	}
	if stat.AvgOverhead != 1.75 || stat.MaxOverhead != 2.0 {
		t.Fatalf("overhead = %v/%v; want 1.75/2.0", stat.AvgOverhead, stat.MaxOverhead)
	}
}

func TestRoundRobinDispatchesArrivalAfterReadyPoolWentIdle(t *testing.T) {
	var buf bytes.Buffer
	jobs := []workload.Job{
		{Arrival: 0, Name: "P1", Service: 3, Memory: 100},
		{Arrival: 5, Name: "P2", Service: 3, Memory: 100},
	}

	s := New(Config{Quantum: 3, Policy: RR, MemStrategy: Infinite, Controller: &fakeController{}, Out: &buf})
	stat, err := s.Run(jobs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := "0,RUNNING,process_name=P1,remaining_time=3\n" +
		"3,FINISHED,process_name=P1,proc_remaining=0\n" +
		"3,FINISHED-PROCESS,process_name=P1,sha=deadbeef\n" +
		"6,RUNNING,process_name=P2,remaining_time=3\n" +
		"9,FINISHED,process_name=P2,proc_remaining=0\n" +
		"9,FINISHED-PROCESS,process_name=P2,sha=deadbeef\n"
	if buf.String() != want {
		t.Fatalf("events =\n%s\nwant\n%s", buf.String(), want)
	}
	if stat.Makespan != 9 {
		t.Fatalf("Makespan = %d; want 9", stat.Makespan)
	}
}

func TestBestFitDefersAdmissionUntilMemoryIsFreed(t *testing.T) {
	var buf bytes.Buffer
	jobs := []workload.Job{
		{Arrival: 0, Name: "P1", Service: 2, Memory: 2048},
		{Arrival: 0, Name: "P2", Service: 1, Memory: 100},
	}

	s := New(Config{Quantum: 1, Policy: SJF, MemStrategy: BestFit, Controller: &fakeController{}, Out: &buf})
	stat, err := s.Run(jobs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := "0,READY,process_name=P1,assigned_at=0\n" +
		"0,RUNNING,process_name=P1,remaining_time=2\n" +
		"2,FINISHED,process_name=P1,proc_remaining=1\n" +
		"2,FINISHED-PROCESS,process_name=P1,sha=deadbeef\n" +
		"2,READY,process_name=P2,assigned_at=0\n" +
		"2,RUNNING,process_name=P2,remaining_time=1\n" +
		"3,FINISHED,process_name=P2,proc_remaining=0\n" +
		"3,FINISHED-PROCESS,process_name=P2,sha=deadbeef\n"
	if buf.String() != want {
		t.Fatalf("events =\n%s\nwant\n%s", buf.String(), want)
	}
	if stat.Makespan != 3 {
		t.Fatalf("Makespan = %d; want 3", stat.Makespan)
	}
}

func TestArrivalsAreNotAdmittedBeforeTheirTime(t *testing.T) {
	var buf bytes.Buffer
	jobs := []workload.Job{
		{Arrival: 0, Name: "P1", Service: 2, Memory: 10},
		{Arrival: 3, Name: "P2", Service: 1, Memory: 10},
	}

	s := New(Config{Quantum: 1, Policy: SJF, MemStrategy: Infinite, Controller: &fakeController{}, Out: &buf})
	stat, err := s.Run(jobs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	want := "0,RUNNING,process_name=P1,remaining_time=2\n" +
		"2,FINISHED,process_name=P1,proc_remaining=0\n" +
		"2,FINISHED-PROCESS,process_name=P1,sha=deadbeef\n" +
		"3,RUNNING,process_name=P2,remaining_time=1\n" +
		"4,FINISHED,process_name=P2,proc_remaining=0\n" +
		"4,FINISHED-PROCESS,process_name=P2,sha=deadbeef\n"
	if buf.String() != want {
		t.Fatalf("events =\n%s\nwant\n%s", buf.String(), want)
	}
	if stat.Makespan != 4 {
		t.Fatalf("Makespan = %d; want 4", stat.Makespan)
	}
}
