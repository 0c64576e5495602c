package ptrace

import (
	"golang.org/x/sys/unix"

	"github.com/tsirakis/bcov/internal/xerrors"
)

// pid is a thin wrapper around the raw process id of a tracee thread,
// carrying the ptrace operations the Tracer needs. It is never
// dereferenced as a pointer in this process's own address space: every
// address it reads or writes belongs to the tracee.
type pid int32

// cont resumes the thread, optionally delivering a pending signal.
func (p pid) cont(sig unix.Signal) error {
	return xerrors.Wrap(unix.PtraceCont(int(p), int(sig)))
}

// singleStep resumes the thread for exactly one instruction.
func (p pid) singleStep() error {
	return xerrors.Wrap(unix.PtraceSingleStep(int(p)))
}

// getRegs reads the thread's full register set.
func (p pid) getRegs() (unix.PtraceRegs, error) {
	var regs unix.PtraceRegs
	err := unix.PtraceGetRegs(int(p), &regs)
	return regs, xerrors.Wrap(err)
}

// setRegs writes the thread's full register set.
func (p pid) setRegs(regs *unix.PtraceRegs) error {
	return xerrors.Wrap(unix.PtraceSetRegs(int(p), regs))
}

// setOptions configures ptrace event delivery, in particular
// PTRACE_O_TRACECLONE so spawned threads are auto-attached.
func (p pid) setOptions(options int) error {
	return xerrors.Wrap(unix.PtraceSetOptions(int(p), options))
}

// peekByte reads a single byte out of the tracee's address space.
//
// The kernel's peek interface is word-granular, so a whole machine word
// containing addr is read and the requested byte extracted from it.
func (p pid) peekByte(addr uintptr) (byte, error) {
	word, err := p.peekWord(wordAddr(addr))
	if err != nil {
		return 0, xerrors.Wrap(err)
	}
	return wordByte(word, addr), nil
}

// pokeByte writes a single byte into the tracee's address space,
// preserving the other bytes of the containing machine word.
func (p pid) pokeByte(addr uintptr, b byte) error {
	aligned := wordAddr(addr)
	word, err := p.peekWord(aligned)
	if err != nil {
		return xerrors.Wrap(err)
	}
	setWordByte(&word, addr, b)
	return xerrors.Wrap(p.pokeWord(aligned, word))
}

func (p pid) peekWord(addr uintptr) ([wordSize]byte, error) {
	var word [wordSize]byte
	n, err := unix.PtracePeekData(int(p), addr, word[:])
	if err != nil {
		return word, xerrors.Wrap(err)
	}
	if n != wordSize {
		return word, xerrors.Errorf("short peek at %#x: got %d bytes", addr, n)
	}
	return word, nil
}

func (p pid) pokeWord(addr uintptr, word [wordSize]byte) error {
	_, err := unix.PtracePokeData(int(p), addr, word[:])
	return xerrors.Wrap(err)
}
