// Package realproc drives each scheduled job as a real operating-system
// child process: it spawns the opaque `process` binary, exchanges the
// big-endian time-byte handshake over two pipes, and signals the child to
// continue, suspend, or terminate in step with the simulation clock.
// golang.org/x/sys/unix supplies the signal and wait primitives.
package realproc

import (
	"fmt"
	"log"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// state is a child's position in the UNSPAWNED -> RUNNING <-> SUSPENDED ->
// TERMINATED machine.
type state int

const (
	unspawned state = iota
	running
	suspended
	terminated
)

// Child is the parent-side handle to a spawned worker: its pid and the two
// pipe descriptors retained after the child-side ends were closed.
//
// A nil *Child on a process record means "not yet spawned".
type Child struct {
	name string
	pid  int
	cmd  *exec.Cmd

	toChild   *os.File // parent's write end of the parent->child pipe
	fromChild *os.File // parent's read end of the child->parent pipe

	state state
}

// PID returns the child's operating-system process ID.
func (c *Child) PID() int {
	return c.pid
}

// NewChildForTesting constructs a Child with no live pipes or OS process
// behind it, for other packages' tests that exercise dispatch logic
// against a fake ChildController instead of spawning a real binary.
func NewChildForTesting(name string, pid int) *Child {
	return &Child{name: name, pid: pid, state: running}
}

// Controller spawns and drives worker children against a single binary.
type Controller struct {
	binaryPath string
	debug      *log.Logger
}

// NewController returns a Controller that spawns binaryPath for each job.
// debug may be nil to disable diagnostic logging.
func NewController(binaryPath string, debug *log.Logger) *Controller {
	return &Controller{binaryPath: binaryPath, debug: debug}
}

func (c *Controller) logf(format string, args ...any) {
	if c.debug != nil {
		c.debug.Printf(format, args...)
	}
}

// Start spawns a new child for the given job name, sends the current
// simulation time, and verifies the one-byte echo.
func (c *Controller) Start(name string, simTime uint32) (*Child, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed creating parent->child pipe for %s: %w", name, err)
	}
	inR, inW, err := os.Pipe()
	if err != nil {
		outR.Close()
		outW.Close()
		return nil, fmt.Errorf("failed creating child->parent pipe for %s: %w", name, err)
	}

	cmd := exec.Command(c.binaryPath, name)
	cmd.Stdin = outR
	cmd.Stdout = inW

	if err := cmd.Start(); err != nil {
		outR.Close()
		outW.Close()
		inR.Close()
		inW.Close()
		return nil, fmt.Errorf("failed starting real process for %s: %w", name, err)
	}

	// the child has its own copy of these fds now; drop the parent's.
	outR.Close()
	inW.Close()

	ch := &Child{
		name:      name,
		pid:       cmd.Process.Pid,
		cmd:       cmd,
		toChild:   outW,
		fromChild: inR,
		state:     running,
	}

	lsb, err := sendTime(ch.toChild, simTime)
	if err != nil {
		c.logf("start: %s (pid %d) failed sending initial time byte at t=%d: %v", name, ch.pid, simTime, err)
		return nil, err
	}
	if err := readAndVerify(ch.fromChild, lsb); err != nil {
		c.logf("start: %s (pid %d) failed echo verification at t=%d: %v", name, ch.pid, simTime, err)
		return nil, err
	}

	return ch, nil
}

// Continue sends the current time and resumes a suspended (or freshly
// re-scheduled) child, verifying the echo byte.
func (c *Controller) Continue(ch *Child, simTime uint32) error {
	lsb, err := sendTime(ch.toChild, simTime)
	if err != nil {
		return err
	}
	if err := unix.Kill(ch.pid, unix.SIGCONT); err != nil {
		c.logf("continue: %s (pid %d) SIGCONT failed at t=%d: %v", ch.name, ch.pid, simTime, err)
		return fmt.Errorf("failed continuing %s (pid %d): %w", ch.name, ch.pid, err)
	}
	if err := readAndVerify(ch.fromChild, lsb); err != nil {
		c.logf("continue: %s (pid %d) failed echo verification at t=%d: %v", ch.name, ch.pid, simTime, err)
		return err
	}
	ch.state = running
	return nil
}

// Suspend sends the current time, stops the child, and blocks until the
// kernel confirms it is stopped.
func (c *Controller) Suspend(ch *Child, simTime uint32) error {
	if _, err := sendTime(ch.toChild, simTime); err != nil {
		return err
	}
	if err := unix.Kill(ch.pid, unix.SIGTSTP); err != nil {
		c.logf("suspend: %s (pid %d) SIGTSTP failed at t=%d: %v", ch.name, ch.pid, simTime, err)
		return fmt.Errorf("failed suspending %s (pid %d): %w", ch.name, ch.pid, err)
	}

	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(ch.pid, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			c.logf("suspend: %s (pid %d) waitpid failed at t=%d: %v", ch.name, ch.pid, simTime, err)
			return fmt.Errorf("failed waiting for %s (pid %d) to stop: %w", ch.name, ch.pid, err)
		}
		if ws.Stopped() {
			break
		}
	}
	ch.state = suspended
	return nil
}

// Terminate sends the current time, signals the child to exit, reads its
// final hash, and reaps it.
func (c *Controller) Terminate(ch *Child, simTime uint32) (hash string, err error) {
	if _, err := sendTime(ch.toChild, simTime); err != nil {
		return "", err
	}
	if err := unix.Kill(ch.pid, unix.SIGTERM); err != nil {
		c.logf("terminate: %s (pid %d) SIGTERM failed at t=%d: %v", ch.name, ch.pid, simTime, err)
		return "", fmt.Errorf("failed terminating %s (pid %d): %w", ch.name, ch.pid, err)
	}

	hash, err = readHash(ch.fromChild)
	if err != nil {
		c.logf("terminate: %s (pid %d) failed reading completion hash at t=%d: %v", ch.name, ch.pid, simTime, err)
		return "", err
	}

	ch.state = terminated
	ch.close()
	return hash, nil
}

// close releases the parent-side pipe descriptors and reaps the child. The
// child is expected to have already exited in response to Terminate's
// SIGTERM; Wait blocks only long enough to clear the zombie.
func (c *Child) close() {
	c.toChild.Close()
	c.fromChild.Close()
	c.cmd.Wait()
}
