package ptrace

import "testing"

func TestWordAddrAlignsDown(t *testing.T) {
	base := uintptr(0x1000)
	for off := uintptr(0); off < uintptr(wordSize*3); off++ {
		addr := base + off
		aligned := wordAddr(addr)
		if aligned%uintptr(wordSize) != 0 {
			t.Fatalf("wordAddr(%#x) = %#x is not word-aligned", addr, aligned)
		}
		if addr-aligned >= uintptr(wordSize) {
			t.Fatalf("wordAddr(%#x) = %#x leaves offset %d out of range", addr, aligned, addr-aligned)
		}
	}
}

func TestWordByteRoundTrip(t *testing.T) {
	addr := uintptr(0x2004)
	aligned := wordAddr(addr)

	var word [wordSize]byte
	for i := range word {
		word[i] = byte(0x10 + i)
	}

	setWordByte(&word, addr, 0xCC)
	if got := wordByte(word, addr); got != 0xCC {
		t.Fatalf("wordByte after setWordByte = %#x, want 0xCC", got)
	}

	for a := aligned; a < aligned+uintptr(wordSize); a++ {
		if a == addr {
			continue
		}
		if wordByte(word, a) == 0xCC {
			t.Fatalf("setWordByte(%#x) leaked into neighboring byte at %#x", addr, a)
		}
	}
}
