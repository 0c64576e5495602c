package linetable

import "testing"

func TestNormalizeWorkedExamples(t *testing.T) {
	cases := map[string]string{
		"/a//b/./c/../d": "/a/b/d",
		"a/../../b":      "../b",
		"./x":            "x",
		"/":              "/",
	}

	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"/a//b/./c/../d",
		"a/../../b",
		"./x",
		"/",
		"",
		"../../../x",
		"/usr/include/../lib/./foo.h",
		"a/b/c",
		"../a/../b",
	}

	for _, p := range inputs {
		once := Normalize(p)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: Normalize(p)=%q, Normalize(Normalize(p))=%q", p, once, twice)
		}
	}
}

func TestNormalizePreservesRelativeVsAbsolute(t *testing.T) {
	if got := Normalize("a/b"); got == "/a/b" {
		t.Errorf("Normalize(%q) incorrectly became absolute: %q", "a/b", got)
	}
	if got := Normalize("/a/b"); got != "/a/b" {
		t.Errorf("Normalize(%q) = %q, want unchanged absolute path", "/a/b", got)
	}
}
