package report

import (
	"testing"

	"github.com/tsirakis/bcov/dump"
)

func TestSummarizeComputesPercentages(t *testing.T) {
	d := &dump.Dump{
		Command: "/bin/target",
		Files: []dump.FileCoverage{
			{
				Path: "/b.c",
				Lines: []dump.LineCoverage{
					{Line: 1, Possible: 1, Hit: 1},
					{Line: 2, Possible: 1, Hit: 0},
				},
			},
			{
				Path: "/a.c",
				Lines: []dump.LineCoverage{
					{Line: 1, Possible: 2, Hit: 2},
				},
			},
		},
	}

	s := Summarize(d)

	if len(s.Files) != 2 || s.Files[0].Path != "/a.c" || s.Files[1].Path != "/b.c" {
		t.Fatalf("Files not sorted by path: %+v", s.Files)
	}

	if s.Files[0].Hit != 1 || s.Files[0].Possible != 1 || s.Files[0].Percentage != 100 {
		t.Errorf("/a.c summary = %+v, want Hit=1 Possible=1 Percentage=100", s.Files[0])
	}
	if s.Files[1].Hit != 1 || s.Files[1].Possible != 2 || s.Files[1].Percentage != 50 {
		t.Errorf("/b.c summary = %+v, want Hit=1 Possible=2 Percentage=50", s.Files[1])
	}

	if s.Possible != 3 || s.Hit != 2 {
		t.Errorf("overall = Possible=%d Hit=%d, want 3 and 2", s.Possible, s.Hit)
	}
}

func TestPercentageHandlesEmptyFile(t *testing.T) {
	d := &dump.Dump{Files: []dump.FileCoverage{{Path: "/empty.c"}}}

	s := Summarize(d)
	if len(s.Files) != 1 || s.Files[0].Percentage != 0 {
		t.Fatalf("empty file summary = %+v, want Percentage=0", s.Files[0])
	}
	if s.Percentage != 0 {
		t.Errorf("overall Percentage = %v, want 0", s.Percentage)
	}
}
