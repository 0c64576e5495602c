// Package report renders a coverage dump (see package dump) as a static
// HTML report, mirroring original_source/src/report.cpp's percentage
// computation while leaving the actual HTML/CSS out of the specified
// core (spec.md §1, §6.3).
package report

import (
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/tsirakis/bcov/dump"
	"github.com/tsirakis/bcov/internal/xerrors"
)

// FileSummary is one source file's rolled-up coverage, ready for display.
type FileSummary struct {
	Path       string
	Lines      []dump.LineCoverage
	Possible   int
	Hit        int
	Percentage float64 // 0 when Possible == 0
}

// Summary is the whole report: totals plus a file breakdown sorted by path.
type Summary struct {
	Command    string
	Args       []string
	Date       string
	Files      []FileSummary
	Possible   int
	Hit        int
	Percentage float64
}

// Summarize reduces a parsed dump to the numbers index.html renders,
// restoring the per-file (possible, hit) rollup that
// original_source/src/report.cpp computes from raw line rows.
func Summarize(d *dump.Dump) Summary {
	s := Summary{Command: d.Command, Args: d.Args, Date: d.Date}

	files := make([]FileSummary, 0, len(d.Files))
	for _, f := range d.Files {
		fs := FileSummary{
			Path:     f.Path,
			Lines:    f.Lines,
			Possible: len(f.Lines),
			Hit:      summarizeHit(f.Lines),
		}
		fs.Percentage = percentage(fs.Hit, fs.Possible)
		files = append(files, fs)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	s.Files = files

	totalLines := 0
	for _, f := range d.Files {
		totalLines += len(f.Lines)
		s.Hit += summarizeHit(f.Lines)
	}
	s.Possible = totalLines
	s.Percentage = percentage(s.Hit, totalLines)

	return s
}

func summarizeHit(lines []dump.LineCoverage) int {
	hit := 0
	for _, l := range lines {
		if l.Covered() {
			hit++
		}
	}
	return hit
}

func percentage(hit, possible int) float64 {
	if possible == 0 {
		return 0
	}
	return 100 * float64(hit) / float64(possible)
}

// Render reads dumpPath, computes its summary, and writes a static
// index.html into outputDir (created if necessary). outputDir is
// returned so a caller (cmd/bcov-report) can point a browser at it and
// clean it up afterward.
func Render(dumpPath, outputDir string) (string, error) {
	d, err := dump.ReadFile(dumpPath)
	if err != nil {
		return "", xerrors.Errorf("dump I/O failure: %w", err)
	}

	if outputDir == "" {
		dir, err := os.MkdirTemp("", "bcov-report-")
		if err != nil {
			return "", xerrors.Errorf("dump I/O failure: %w", err)
		}
		outputDir = dir
	} else if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", xerrors.Errorf("dump I/O failure: %w", err)
	}

	summary := Summarize(d)

	out, err := os.Create(filepath.Join(outputDir, "index.html"))
	if err != nil {
		return "", xerrors.Errorf("dump I/O failure: %w", err)
	}
	defer out.Close()

	if err := indexTemplate.Execute(out, summary); err != nil {
		return "", xerrors.Errorf("dump I/O failure: %w", err)
	}

	return outputDir, nil
}

// Remove deletes a directory previously returned by Render.
func Remove(outputDir string) error {
	return xerrors.Wrap(os.RemoveAll(outputDir))
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>coverage: {{.Command}}</title></head>
<body>
<h1>{{.Command}}{{range .Args}} {{.}}{{end}}</h1>
<p>{{.Date}} &mdash; {{.Hit}}/{{.Possible}} lines ({{printf "%.1f" .Percentage}}%)</p>
<table border="1" cellpadding="4">
<tr><th>file</th><th>hit</th><th>possible</th><th>%</th></tr>
{{range .Files}}<tr><td>{{.Path}}</td><td>{{.Hit}}</td><td>{{.Possible}}</td><td>{{printf "%.1f" .Percentage}}</td></tr>
{{end}}</table>
</body>
</html>
`))
