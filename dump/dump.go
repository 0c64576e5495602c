// Package dump encodes and decodes the line-oriented text format that
// bridges the collector and the reporter (spec.md §6.2): a UTF-8, LF-
// terminated file recording the traced command, its arguments, a
// timestamp, and per-source-file line hit/possible counts.
package dump

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tsirakis/bcov/internal/xerrors"
)

// LineCoverage is one instrumented source line's hit/possible counts.
type LineCoverage struct {
	Line     int
	Possible int
	Hit      int
}

// Covered reports whether at least one address attributed to the line
// was reached.
func (l LineCoverage) Covered() bool { return l.Hit > 0 }

// FullyCovered reports whether every address attributed to the line was
// reached.
func (l LineCoverage) FullyCovered() bool { return l.Hit == l.Possible }

// FileCoverage is the ascending-by-line coverage rows for one source file.
type FileCoverage struct {
	Path  string
	Lines []LineCoverage
}

// Dump is the parsed contents of a coverage dump file.
type Dump struct {
	Command string
	Args    []string
	Date    string
	Files   []FileCoverage
}

// TotalLines returns the number of instrumented lines and how many of
// them were covered, across every file in the dump.
func (d *Dump) TotalLines() (possible, hit int) {
	for _, f := range d.Files {
		for _, l := range f.Lines {
			possible++
			if l.Covered() {
				hit++
			}
		}
	}
	return possible, hit
}

// Write serializes a dump to w. files must already be in ascending-line
// order per file; the collector builds that order when it groups each
// file's addresses by line (see collector.coverageForFile).
func Write(w io.Writer, d *Dump) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "command %s\n", escape(d.Command))

	argv := make([]string, len(d.Args))
	for i, a := range d.Args {
		argv[i] = escape(a)
	}
	fmt.Fprintf(bw, "args %s\n", strings.Join(argv, " "))

	fmt.Fprintf(bw, "date %s\n", d.Date)

	paths := make([]string, 0, len(d.Files))
	byPath := make(map[string]FileCoverage, len(d.Files))
	for _, f := range d.Files {
		paths = append(paths, f.Path)
		byPath[f.Path] = f
	}
	sort.Strings(paths)

	for _, path := range paths {
		f := byPath[path]
		fmt.Fprintf(bw, "file %s\n", path)
		for _, l := range f.Lines {
			fmt.Fprintf(bw, "%d %d %d\n", l.Line, l.Possible, l.Hit)
		}
	}

	return xerrors.Wrap(bw.Flush())
}

// WriteFile is a convenience wrapper that creates (or truncates) path and
// writes the dump to it.
func WriteFile(path string, d *Dump) error {
	f, err := os.Create(path)
	if err != nil {
		return xerrors.Errorf("dump I/O failure: %w", err)
	}
	defer f.Close()
	return Write(f, d)
}

// Read parses a coverage dump. Blank lines are ignored; unrecognized line
// prefixes are treated as malformed and reported.
func Read(r io.Reader) (*Dump, error) {
	d := &Dump{}
	var current *FileCoverage

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		keyword, rest, _ := strings.Cut(line, " ")
		switch keyword {
		case "command":
			d.Command = unescape(rest)

		case "args":
			if rest == "" {
				d.Args = nil
			} else {
				d.Args = splitArgsNaively(rest)
			}

		case "date":
			d.Date = rest

		case "file":
			d.Files = append(d.Files, FileCoverage{Path: rest})
			current = &d.Files[len(d.Files)-1]

		default:
			if current == nil {
				return nil, xerrors.Errorf("malformed dump: data line before any file section: %q", line)
			}
			lc, err := parseLineCoverage(line)
			if err != nil {
				return nil, xerrors.Wrap(err)
			}
			current.Lines = append(current.Lines, lc)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, xerrors.Wrap(err)
	}

	return d, nil
}

// ReadFile is a convenience wrapper that opens path and parses its dump.
func ReadFile(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("dump I/O failure: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func parseLineCoverage(line string) (LineCoverage, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return LineCoverage{}, xerrors.Errorf("malformed dump line: %q", line)
	}

	n, err1 := strconv.Atoi(fields[0])
	possible, err2 := strconv.Atoi(fields[1])
	hit, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return LineCoverage{}, xerrors.Errorf("malformed dump line: %q", line)
	}

	return LineCoverage{Line: n, Possible: possible, Hit: hit}, nil
}

// escape applies the dump format's three escape rules: backslash,
// newline, and space.
func escape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case ' ':
			b.WriteString(`\ `)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unescape inverts escape.
func unescape(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			switch runes[i+1] {
			case '\\':
				b.WriteRune('\\')
				i++
				continue
			case 'n':
				b.WriteRune('\n')
				i++
				continue
			case ' ':
				b.WriteRune(' ')
				i++
				continue
			}
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// splitArgsNaively splits the args header on every literal space,
// without regard for whether that space is itself an escaped argument
// space. This deliberately preserves the format's documented lossy
// behavior (spec.md §9): an argument written with an escaped space
// inside it (e.g. "a b" -> "a\ b") is split apart into two tokens on
// read instead of being reassembled, because the split happens before
// any unescaping. See DESIGN.md's Open Question decision.
func splitArgsNaively(s string) []string {
	raw := strings.Split(s, " ")
	fields := make([]string, len(raw))
	for i, r := range raw {
		fields[i] = unescape(r)
	}
	return fields
}
