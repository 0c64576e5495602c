package ptrace

import "unsafe"

// wordSize is the size in bytes of a machine word on the host, which is
// also the granularity at which PTRACE_PEEKTEXT/PTRACE_POKETEXT operate.
const wordSize = int(unsafe.Sizeof(uintptr(0)))

// wordAddr rounds addr down to the start of the machine word containing it.
func wordAddr(addr uintptr) uintptr {
	return (addr / uintptr(wordSize)) * uintptr(wordSize)
}

// wordByte extracts the byte at addr from a word read starting at
// wordAddr(addr).
func wordByte(word [wordSize]byte, addr uintptr) byte {
	return word[addr-wordAddr(addr)]
}

// setWordByte overwrites the byte at addr within a word read starting at
// wordAddr(addr).
func setWordByte(word *[wordSize]byte, addr uintptr, b byte) {
	word[addr-wordAddr(addr)] = b
}
