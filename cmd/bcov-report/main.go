// Command bcov-report renders a coverage dump produced by bcov as a
// static HTML report (spec.md §6.3).
package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/tsirakis/bcov/report"
)

const usage = `usage: bcov-report [<dump_path> [<output_dir>]]`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	if len(argv) > 2 {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}

	dumpPath := ".bcovdump"
	if len(argv) >= 1 {
		dumpPath = argv[0]
	}

	var outputDir string
	ephemeral := len(argv) < 2
	if !ephemeral {
		outputDir = argv[1]
	}

	dir, err := report.Render(dumpPath, outputDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	indexPath := dir + string(os.PathSeparator) + "index.html"

	if ephemeral {
		openBrowser(indexPath)
		defer report.Remove(dir)
	} else {
		fmt.Println(indexPath)
	}

	return 0
}

// openBrowser launches the platform default browser on path. Thin,
// untested I/O per spec.md §1's "straightforward I/O" framing for the
// Reporter's outer surface.
func openBrowser(path string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	_ = cmd.Run()
}
