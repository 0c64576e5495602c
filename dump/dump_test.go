package dump

import (
	"strings"
	"testing"
)

func TestEscapeUnescapeRoundTrip(t *testing.T) {
	cases := []string{
		"plain",
		"has space",
		`back\slash`,
		"line\nbreak",
		`mix \ of "em all` + "\n",
	}

	for _, s := range cases {
		got := unescape(escape(s))
		if got != s {
			t.Errorf("unescape(escape(%q)) = %q, want %q", s, got, s)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	d := &Dump{
		Command: "/bin/echo",
		Args:    []string{"hello", "world"},
		Date:    "Fri Jul 31 00:00:00 2026",
		Files: []FileCoverage{
			{
				Path: "/src/main.c",
				Lines: []LineCoverage{
					{Line: 1, Possible: 1, Hit: 1},
					{Line: 3, Possible: 2, Hit: 0},
				},
			},
		},
	}

	var buf strings.Builder
	if err := Write(&buf, d); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Command != d.Command {
		t.Errorf("Command = %q, want %q", got.Command, d.Command)
	}
	if len(got.Files) != 1 || got.Files[0].Path != "/src/main.c" {
		t.Fatalf("Files = %+v", got.Files)
	}
	if len(got.Files[0].Lines) != 2 {
		t.Fatalf("Lines = %+v", got.Files[0].Lines)
	}
	if got.Files[0].Lines[0] != d.Files[0].Lines[0] {
		t.Errorf("Lines[0] = %+v, want %+v", got.Files[0].Lines[0], d.Files[0].Lines[0])
	}
}

func TestDumpParseRoundTrip(t *testing.T) {
	src := "command /bin/echo\n" +
		"args hello world\n" +
		"date now\n" +
		"file /a.c\n" +
		"1 1 1\n" +
		"2 3 2\n"

	d1, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var buf strings.Builder
	if err := Write(&buf, d1); err != nil {
		t.Fatalf("Write: %v", err)
	}

	d2, err := Read(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Read (2nd pass): %v", err)
	}

	if d1.Command != d2.Command || d1.Date != d2.Date {
		t.Fatalf("re-parse mismatch: %+v vs %+v", d1, d2)
	}
	if len(d1.Files) != len(d2.Files) {
		t.Fatalf("file count mismatch: %d vs %d", len(d1.Files), len(d2.Files))
	}
}

func TestBlankLinesIgnored(t *testing.T) {
	src := "command /bin/echo\n\nargs\n\ndate now\n\nfile /a.c\n\n1 1 1\n\n"
	d, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(d.Files) != 1 || len(d.Files[0].Lines) != 1 {
		t.Fatalf("unexpected parse: %+v", d)
	}
}

func TestLineCoverageClassification(t *testing.T) {
	covered := LineCoverage{Line: 1, Possible: 2, Hit: 1}
	if !covered.Covered() {
		t.Error("expected Covered() true")
	}
	if covered.FullyCovered() {
		t.Error("expected FullyCovered() false")
	}

	full := LineCoverage{Line: 1, Possible: 2, Hit: 2}
	if !full.FullyCovered() {
		t.Error("expected FullyCovered() true")
	}

	none := LineCoverage{Line: 1, Possible: 1, Hit: 0}
	if none.Covered() {
		t.Error("expected Covered() false")
	}
}
