//go:build 386

package arch

import "golang.org/x/sys/unix"

// TrapInstruction is the single-byte int3 trap used to implement
// software breakpoints on x86.
const TrapInstruction byte = 0xCC

// TrapSize is the number of bytes TrapInstruction occupies in the
// tracee's code.
const TrapSize = 1

// RewindPC adjusts a program counter sampled right after a trap fired
// back to the address of the trap instruction itself.
func RewindPC(pc uintptr) uintptr {
	return pc - TrapSize
}

// PC reads the program counter out of a ptrace register dump.
func PC(regs *unix.PtraceRegs) uintptr {
	return uintptr(regs.Eip)
}

// SetPC writes the program counter into a ptrace register dump.
func SetPC(regs *unix.PtraceRegs, pc uintptr) {
	regs.Eip = int32(pc)
}
