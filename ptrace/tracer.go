// Package ptrace drives a single traced child process (and any threads
// it spawns) through the host kernel's ptrace facility: process launch
// under trace, thread-clone following, signal demultiplexing, software
// breakpoint installation/removal by in-memory byte patching, and
// single-breakpoint restart after a trap.
//
// The Tracer is strictly single-threaded and blocking: it never resumes
// more than one tracee thread's worth of state between two stops, so its
// own bookkeeping needs no locking (spec.md §5).
package ptrace

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/tsirakis/bcov/arch"
	"github.com/tsirakis/bcov/internal/xerrors"
)

// Event is the outcome of a call to Tracer.Run.
type Event int

const (
	// EventError indicates a fatal tracing failure: wait4 failed, or an
	// unrecognized wait status was reported.
	EventError Event = iota
	// EventExit indicates the root tracee terminated (exited or was killed).
	EventExit
	// EventTrap indicates some thread of the tracee stopped on SIGTRAP.
	EventTrap
)

func (e Event) String() string {
	switch e {
	case EventExit:
		return "exit"
	case EventTrap:
		return "trap"
	default:
		return "error"
	}
}

// Tracer owns one traced process tree from Load to Close or tracee exit.
// There is no process-wide tracing singleton: each Tracer is an
// independently owned object, constructed with New.
type Tracer struct {
	log logrus.FieldLogger

	cmd       *exec.Cmd
	rootPID   pid // fixed after Load
	activePID pid // updated on each reported stop
}

// New returns a Tracer that logs through log. A nil log is replaced by a
// fresh logrus logger with its default settings.
func New(log logrus.FieldLogger) *Tracer {
	if log == nil {
		log = logrus.New()
	}
	return &Tracer{log: log}
}

// Load launches executable under trace with the given arguments appended
// to argv[0], and blocks until the kernel delivers the initial
// post-exec stop. Fails if the file is not executable, the process could
// not be started, or the initial stop is not observed.
func (t *Tracer) Load(executable string, argv []string) error {
	info, err := os.Stat(executable)
	if err != nil {
		return xerrors.Errorf("target not launchable: %w", err)
	}
	if info.Mode()&0o111 == 0 {
		return xerrors.Errorf("target not launchable: %s is not executable", executable)
	}

	cmd := exec.Command(executable, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Ptrace:    true,
		Pdeathsig: syscall.SIGKILL,
	}

	if err := cmd.Start(); err != nil {
		return xerrors.Errorf("target not launchable: %w", err)
	}

	root := pid(cmd.Process.Pid)

	var ws unix.WaitStatus
	wpid, err := unix.Wait4(int(root), &ws, 0, nil)
	if err != nil || wpid != int(root) || !ws.Stopped() {
		_ = unix.Kill(int(root), unix.SIGKILL)
		return xerrors.Errorf("target not launchable: did not observe initial stop")
	}

	if err := root.setOptions(unix.PTRACE_O_TRACECLONE); err != nil {
		_ = unix.Kill(int(root), unix.SIGKILL)
		return xerrors.Wrap(err)
	}

	t.cmd = cmd
	t.rootPID = root
	t.activePID = root
	return nil
}

// Close kills the tracee, if one exists, and forgets it. Idempotent.
func (t *Tracer) Close() error {
	if t.rootPID == 0 {
		return nil
	}
	err := unix.Kill(int(t.rootPID), unix.SIGKILL)
	t.rootPID = 0
	t.activePID = 0
	return xerrors.Wrap(err)
}

// SetBreakpoints installs a software breakpoint at every address: the
// current byte is saved and the architecture trap opcode is written in
// its place. Requires a tracee to be loaded.
func (t *Tracer) SetBreakpoints(addresses []uintptr) (map[uintptr]*BreakpointState, error) {
	if t.rootPID == 0 {
		return nil, xerrors.Errorf("no tracee loaded")
	}

	states := make(map[uintptr]*BreakpointState, len(addresses))
	for _, addr := range addresses {
		old, err := t.rootPID.peekByte(addr)
		if err != nil {
			return states, xerrors.Wrap(err)
		}
		if err := t.rootPID.pokeByte(addr, arch.TrapInstruction); err != nil {
			return states, xerrors.Wrap(err)
		}
		states[addr] = &BreakpointState{oldCode: old}
	}
	return states, nil
}

// RemoveBreakpoints restores the original byte at every given address.
// Used on clean shutdown paths.
func (t *Tracer) RemoveBreakpoints(states map[uintptr]*BreakpointState) error {
	for addr, st := range states {
		if err := t.rootPID.pokeByte(addr, st.oldCode); err != nil {
			return xerrors.Wrap(err)
		}
	}
	return nil
}

// EliminateHitBreakpoint restores the original instruction byte at addr
// and rewinds the active thread's instruction pointer back onto it, so
// the next resume re-executes the original instruction as if the
// breakpoint had never been installed.
func (t *Tracer) EliminateHitBreakpoint(addr uintptr, state *BreakpointState) error {
	regs, err := t.activePID.getRegs()
	if err != nil {
		return xerrors.Wrap(err)
	}

	arch.SetPC(&regs, addr)
	if err := t.activePID.setRegs(&regs); err != nil {
		return xerrors.Wrap(err)
	}

	return xerrors.Wrap(t.activePID.pokeByte(addr, state.oldCode))
}

// Run resumes the currently active thread and waits for the next
// interesting event, transparently forwarding non-trap signals and
// resuming past clone-event stops without surfacing them to the caller.
//
// Clone events are recognized via the ptrace-event bits before the
// generic stop-signal check, so a cloned thread's stop is never
// misclassified as a plain signal delivery.
func (t *Tracer) Run() (Event, error) {
	if err := t.activePID.cont(0); err != nil {
		return EventError, xerrors.Wrap(err)
	}

	for {
		var ws unix.WaitStatus
		wpid, err := unix.Wait4(-1, &ws, unix.WALL, nil)
		if err != nil {
			return EventError, xerrors.Wrap(err)
		}

		switch {
		case ws.Exited(), ws.Signaled():
			if pid(wpid) == t.rootPID {
				return EventExit, nil
			}
			continue

		case ws.Stopped():
			sig := ws.StopSignal()
			cause := ws.TrapCause()

			if cause == unix.PTRACE_EVENT_CLONE || cause == unix.PTRACE_EVENT_FORK {
				if err := pid(wpid).cont(0); err != nil {
					return EventError, xerrors.Wrap(err)
				}
				continue
			}

			if sig == unix.SIGTRAP {
				t.activePID = pid(wpid)
				return EventTrap, nil
			}

			t.log.WithFields(logrus.Fields{"pid": wpid, "signal": sig}).
				Debug("forwarding non-trap signal to tracee")
			if err := pid(wpid).cont(sig); err != nil {
				return EventError, xerrors.Wrap(err)
			}
			continue

		default:
			return EventError, xerrors.Errorf("unrecognized wait status: %#x", uint32(ws))
		}
	}
}

// GetIP returns the active thread's current instruction pointer.
func (t *Tracer) GetIP() (uintptr, error) {
	regs, err := t.activePID.getRegs()
	if err != nil {
		return 0, xerrors.Wrap(err)
	}
	return arch.PC(&regs), nil
}

// GetIPBeforeTrap returns the address of the trap instruction that just
// fired, accounting for the architecture's post-trap IP convention.
func (t *Tracer) GetIPBeforeTrap() (uintptr, error) {
	ip, err := t.GetIP()
	if err != nil {
		return 0, err
	}
	return arch.RewindPC(ip), nil
}
