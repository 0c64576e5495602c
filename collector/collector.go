// Package collector orchestrates a complete coverage run end to end: it
// starts the tracer, extracts the line table, installs one breakpoint
// per distinct instrumented address, drives the trap/exit/error event
// loop, and hands the result to the dump package.
package collector

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tsirakis/bcov/dump"
	"github.com/tsirakis/bcov/internal/xerrors"
	"github.com/tsirakis/bcov/linetable"
	"github.com/tsirakis/bcov/ptrace"
)

// ProgressSink receives a notification each time a breakpoint fires,
// for a live view of the run (see package covui). Implementations must
// not block the collector for long; Report is called from the run loop.
type ProgressSink interface {
	Report(file string, line int)
}

// Options configures a single Collect call.
type Options struct {
	Executable string
	Args       []string

	// Date is the timestamp recorded in the dump header (spec.md §4.3
	// step 7, §6.2's `date` line). The caller supplies it rather than
	// Collect calling time.Now() itself, so a run's dump and its
	// invocation time stay attributable to the same clock read.
	Date string

	// Progress, if non-nil, is notified each time one of the collector's
	// breakpoints fires: once per hit address, so a line with several
	// addresses can be reported more than once.
	Progress ProgressSink

	Log logrus.FieldLogger
}

// Collect runs executable to completion under trace and returns its
// line coverage. Partial progress is still returned alongside a non-nil
// error when the run ends abnormally (spec.md §7: "current progress is
// still dumped" for a tracing failure).
func Collect(ctx context.Context, opts Options) (*dump.Dump, error) {
	log := opts.Log
	if log == nil {
		log = logrus.New()
	}

	tracer := ptrace.New(log)
	if err := tracer.Load(opts.Executable, opts.Args); err != nil {
		return nil, xerrors.Errorf("target not launchable: %w", err)
	}

	lines, err := linetable.ReadLines(opts.Executable, log)
	if err != nil {
		_ = tracer.Close()
		return nil, xerrors.Errorf("debug info unreadable: %w", err)
	}
	log.WithField("files", len(lines)).Info("probed debug information")

	addresses := flattenAddresses(lines)

	states, err := tracer.SetBreakpoints(addresses)
	if err != nil {
		_ = tracer.Close()
		return nil, xerrors.Errorf("breakpoint setup failure: %w", err)
	}
	log.WithField("breakpoints", len(states)).Info("installed breakpoints")

	runErr := runLoop(ctx, tracer, states, lines, opts.Progress, log)

	if err := tracer.Close(); err != nil {
		log.WithError(err).Warn("failed to close tracer")
	}

	result := buildDump(opts.Executable, opts.Args, opts.Date, lines, states)
	return result, runErr
}

func runLoop(ctx context.Context, tracer *ptrace.Tracer, states map[uintptr]*ptrace.BreakpointState, lines map[string][]linetable.LineEntry, progress ProgressSink, log logrus.FieldLogger) error {
	lineOf := addressToLine(lines)

	for {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return xerrors.Wrap(ctx.Err())
			default:
			}
		}

		event, err := tracer.Run()
		switch event {
		case ptrace.EventExit:
			return nil

		case ptrace.EventTrap:
			addr, err := tracer.GetIPBeforeTrap()
			if err != nil {
				return xerrors.Errorf("tracing failure: %w", err)
			}

			state, known := states[addr]
			if !known {
				// Not one of ours: a hard-coded trap in the target, or
				// noise from some other source. Ignore and keep going.
				continue
			}

			if err := tracer.EliminateHitBreakpoint(addr, state); err != nil {
				return xerrors.Errorf("tracing failure: %w", err)
			}
			state.Hit = true

			if progress != nil {
				if loc, ok := lineOf[addr]; ok {
					progress.Report(loc.file, loc.line)
				}
			}

		default:
			if err != nil {
				log.WithError(err).Error("tracing failure")
			}
			return xerrors.Errorf("tracing failure: %w", err)
		}
	}
}

type fileLine struct {
	file string
	line int
}

func addressToLine(lines map[string][]linetable.LineEntry) map[uintptr]fileLine {
	out := make(map[uintptr]fileLine)
	for file, entries := range lines {
		for _, e := range entries {
			out[e.Address] = fileLine{file: file, line: e.Line}
		}
	}
	return out
}

// PreflightLineCounts reads executable's line table and reduces it to
// the distinct-address count per file, without launching a tracee. A
// caller wiring an optional progress sink (see package covui) uses this
// to seed per-file totals before Collect starts reporting hits.
func PreflightLineCounts(executable string, log logrus.FieldLogger) (map[string]int, error) {
	lines, err := linetable.ReadLines(executable, log)
	if err != nil {
		return nil, xerrors.Errorf("debug info unreadable: %w", err)
	}

	counts := make(map[string]int, len(lines))
	for path, entries := range lines {
		seen := make(map[uintptr]struct{})
		for _, e := range entries {
			seen[e.Address] = struct{}{}
		}
		counts[path] = len(seen)
	}
	return counts, nil
}

func flattenAddresses(lines map[string][]linetable.LineEntry) []uintptr {
	seen := make(map[uintptr]struct{})
	for _, entries := range lines {
		for _, e := range entries {
			seen[e.Address] = struct{}{}
		}
	}

	addrs := make([]uintptr, 0, len(seen))
	for a := range seen {
		addrs = append(addrs, a)
	}
	return addrs
}

func buildDump(executable string, args []string, date string, lines map[string][]linetable.LineEntry, states map[uintptr]*ptrace.BreakpointState) *dump.Dump {
	paths := make([]string, 0, len(lines))
	for path := range lines {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	files := make([]dump.FileCoverage, 0, len(paths))
	for _, path := range paths {
		files = append(files, dump.FileCoverage{
			Path:  path,
			Lines: coverageForFile(lines[path], states),
		})
	}

	return &dump.Dump{
		Command: executable,
		Args:    args,
		Date:    date,
		Files:   files,
	}
}

func coverageForFile(entries []linetable.LineEntry, states map[uintptr]*ptrace.BreakpointState) []dump.LineCoverage {
	addrsPerLine := make(map[int]map[uintptr]struct{})
	for _, e := range entries {
		m, ok := addrsPerLine[e.Line]
		if !ok {
			m = make(map[uintptr]struct{})
			addrsPerLine[e.Line] = m
		}
		m[e.Address] = struct{}{}
	}

	lineNums := make([]int, 0, len(addrsPerLine))
	for ln := range addrsPerLine {
		lineNums = append(lineNums, ln)
	}
	sort.Ints(lineNums)

	coverage := make([]dump.LineCoverage, 0, len(lineNums))
	for _, ln := range lineNums {
		addrs := addrsPerLine[ln]
		hit := 0
		for addr := range addrs {
			if st, ok := states[addr]; ok && st.Hit {
				hit++
			}
		}
		coverage = append(coverage, dump.LineCoverage{
			Line:     ln,
			Possible: len(addrs),
			Hit:      hit,
		})
	}

	return coverage
}
