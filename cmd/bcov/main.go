// Command bcov runs an executable to completion under trace and writes
// its line coverage to a dump file (spec.md §6.1).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tsirakis/bcov/collector"
	"github.com/tsirakis/bcov/config"
	"github.com/tsirakis/bcov/covui"
	"github.com/tsirakis/bcov/dump"
)

const usage = `usage: bcov [-o <dump_path>] <executable> [<arg>...]

  -o <path>   write the coverage dump to path (may also be written -o<path>)
  --help      print this message
`

// parsedArgs is the result of hand-parsing argv per spec.md §6.1's
// grammar: -o/-o<path> is recognized up to the first token that either
// isn't a flag, or is a flag bcov doesn't know about (which starts the
// target's own argv instead of an error).
type parsedArgs struct {
	dumpPath   string
	executable string
	targetArgv []string
	help       bool
}

func parseArgs(argv []string) (parsedArgs, error) {
	var p parsedArgs

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch {
		case arg == "--help":
			p.help = true
			return p, nil

		case arg == "-o":
			if i+1 >= len(argv) {
				return p, fmt.Errorf("-o requires a path")
			}
			p.dumpPath = argv[i+1]
			i += 2

		case len(arg) > 2 && arg[0] == '-' && arg[1] == 'o':
			p.dumpPath = arg[2:]
			i++

		default:
			// Any other token, flag-shaped or not, is the executable:
			// option parsing stops here per spec.md §6.1.
			p.executable = arg
			p.targetArgv = argv[i+1:]
			return p, nil
		}
	}

	return p, fmt.Errorf("missing executable")
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	parsed, err := parseArgs(argv)
	if parsed.help {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	dumpPath := parsed.dumpPath
	if dumpPath == "" {
		dumpPath = cfg.DumpPath
	}

	log := logrus.New()
	if cfg.LogLevel != "" {
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			log.SetLevel(lvl)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var dash *covui.Dashboard
	opts := collector.Options{
		Executable: parsed.executable,
		Args:       parsed.targetArgv,
		Date:       time.Now().String(),
		Log:        log,
	}

	if cfg.EnableUI {
		if counts, err := collector.PreflightLineCounts(parsed.executable, log); err == nil {
			dash = covui.New(covui.LightTheme)
			dash.Seed(counts)
			opts.Progress = dash
			covui.SetConsoleTitle("bcov")
			go func() {
				if err := dash.Run(); err != nil {
					log.WithError(err).Warn("dashboard exited")
				}
			}()
		}
	}

	result, collectErr := collector.Collect(ctx, opts)
	if dash != nil {
		dash.Stop()
	}

	if result == nil {
		fmt.Fprintln(os.Stderr, collectErr)
		return 1
	}

	if err := dump.WriteFile(dumpPath, result); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if collectErr != nil {
		// Tracing-failure: progress is already dumped above (spec.md §7).
		fmt.Fprintln(os.Stderr, collectErr)
	}

	return 0
}
