package main

import (
	"reflect"
	"testing"
)

func TestParseArgsRecognizesSeparateFlag(t *testing.T) {
	p, err := parseArgs([]string{"-o", "/tmp/out.cov", "/bin/echo", "hi"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if p.dumpPath != "/tmp/out.cov" || p.executable != "/bin/echo" || !reflect.DeepEqual(p.targetArgv, []string{"hi"}) {
		t.Errorf("parseArgs = %+v, want dumpPath=/tmp/out.cov executable=/bin/echo argv=[hi]", p)
	}
}

func TestParseArgsRecognizesGluedFlag(t *testing.T) {
	p, err := parseArgs([]string{"-o/tmp/out.cov", "/bin/echo"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if p.dumpPath != "/tmp/out.cov" || p.executable != "/bin/echo" {
		t.Errorf("parseArgs = %+v, want dumpPath=/tmp/out.cov executable=/bin/echo", p)
	}
}

func TestParseArgsHelp(t *testing.T) {
	p, err := parseArgs([]string{"--help"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if !p.help {
		t.Errorf("parseArgs(--help).help = false, want true")
	}
}

func TestParseArgsUnknownFlagStartsExecutable(t *testing.T) {
	p, err := parseArgs([]string{"-x", "weird", "arg"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if p.executable != "-x" || !reflect.DeepEqual(p.targetArgv, []string{"weird", "arg"}) {
		t.Errorf("parseArgs = %+v, want executable=-x argv=[weird arg]", p)
	}
}

func TestParseArgsMissingExecutable(t *testing.T) {
	if _, err := parseArgs([]string{"-o", "/tmp/out.cov"}); err == nil {
		t.Error("parseArgs([-o, path]) = nil error, want error for missing executable")
	}
}

func TestParseArgsNoFlags(t *testing.T) {
	p, err := parseArgs([]string{"/bin/ls", "-la"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if p.dumpPath != "" || p.executable != "/bin/ls" || !reflect.DeepEqual(p.targetArgv, []string{"-la"}) {
		t.Errorf("parseArgs = %+v, want default dumpPath, executable=/bin/ls argv=[-la]", p)
	}
}
