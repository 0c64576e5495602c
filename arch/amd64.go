//go:build amd64

// Package arch isolates the handful of facts that change when porting
// the tracer to a different instruction set architecture: the trap
// opcode, the post-trap instruction-pointer rewind amount, and how the
// program counter is read out of the architecture's ptrace register set.
package arch

import "golang.org/x/sys/unix"

// TrapInstruction is the single-byte int3 trap used to implement
// software breakpoints on x86-64.
const TrapInstruction byte = 0xCC

// TrapSize is the number of bytes TrapInstruction occupies in the
// tracee's code.
const TrapSize = 1

// RewindPC adjusts a program counter sampled right after a trap fired
// back to the address of the trap instruction itself. On x86 the CPU
// reports the IP one byte past the executed int3.
func RewindPC(pc uintptr) uintptr {
	return pc - TrapSize
}

// PC reads the program counter out of a ptrace register dump.
func PC(regs *unix.PtraceRegs) uintptr {
	return uintptr(regs.Rip)
}

// SetPC writes the program counter into a ptrace register dump.
func SetPC(regs *unix.PtraceRegs, pc uintptr) {
	regs.Rip = uint64(pc)
}
