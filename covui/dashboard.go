// Package covui is an optional live read-only view of an in-progress
// coverage run: one row per source file, repainted as breakpoints fire.
// It has no interactive stepping model (spec.md §5: the tracee always
// runs to completion under a fixed, pre-installed breakpoint set), so
// unlike the teacher's debugger UI it carries no breakpoint editor,
// register/backtrace/variable views, or command prompt.
package covui

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/rivo/tview"
)

type fileStats struct {
	possible int
	hit      int
}

// Dashboard drives a single tview.Table of file/possible/hit/percentage,
// updated from the collector's run loop via Report. It implements
// collector.ProgressSink without importing package collector, so the
// dependency runs the other way (collector depends on nothing in covui).
type Dashboard struct {
	app   *tview.Application
	table *tview.Table

	mu     sync.Mutex
	rows   map[string]int // file path -> table row index
	totals map[string]*fileStats
}

// New builds a Dashboard with theme applied and its table constructed,
// but does not start the event loop; call Run for that.
func New(theme Theme) *Dashboard {
	theme.Apply()

	table := tview.NewTable().SetBorders(false).SetFixed(1, 0)
	table.SetTitle(" bcov: live coverage ").SetBorder(true)
	for col, header := range []string{"file", "hit", "possible", "%"} {
		table.SetCell(0, col, tview.NewTableCell(header).
			SetSelectable(false).
			SetTextColor(theme.HighlightTextColor).
			SetAttributes(0))
	}

	d := &Dashboard{
		app:    tview.NewApplication(),
		table:  table,
		rows:   make(map[string]int),
		totals: make(map[string]*fileStats),
	}
	d.app.SetRoot(table, true)
	return d
}

// Seed pre-populates every known file and its count of distinct
// instrumented addresses before the run starts, so the table shows 0% rows immediately rather
// than growing rows as each file's first breakpoint fires.
func (d *Dashboard) Seed(possibleByFile map[string]int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	paths := make([]string, 0, len(possibleByFile))
	for path := range possibleByFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		d.totals[path] = &fileStats{possible: possibleByFile[path]}
		d.addRowLocked(path)
	}
}

// Report implements collector.ProgressSink: it records one more hit for
// file and queues a redraw. Safe to call from the collector's run loop,
// a different goroutine than the one running the tview event loop.
func (d *Dashboard) Report(file string, line int) {
	_ = line // aggregated per file; the dashboard shows no per-line detail

	d.mu.Lock()
	stats, ok := d.totals[file]
	if !ok {
		stats = &fileStats{}
		d.totals[file] = stats
		d.addRowLocked(file)
	}
	stats.hit++
	d.mu.Unlock()

	d.app.QueueUpdateDraw(func() {
		d.redrawRow(file)
	})
}

// addRowLocked must be called with d.mu held.
func (d *Dashboard) addRowLocked(file string) {
	if _, exists := d.rows[file]; exists {
		return
	}
	row := len(d.rows) + 1 // row 0 is the header
	d.rows[file] = row
	d.table.SetCell(row, 0, tview.NewTableCell(file))
	d.table.SetCell(row, 1, tview.NewTableCell("0"))
	d.table.SetCell(row, 2, tview.NewTableCell("0"))
	d.table.SetCell(row, 3, tview.NewTableCell("0.0"))
}

func (d *Dashboard) redrawRow(file string) {
	d.mu.Lock()
	row, ok := d.rows[file]
	stats := d.totals[file]
	d.mu.Unlock()
	if !ok {
		return
	}

	pct := 0.0
	if stats.possible > 0 {
		pct = 100 * float64(stats.hit) / float64(stats.possible)
	}

	d.table.SetCell(row, 1, tview.NewTableCell(strconv.Itoa(stats.hit)))
	d.table.SetCell(row, 2, tview.NewTableCell(strconv.Itoa(stats.possible)))
	d.table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%.1f", pct)))
}

// Run blocks running the dashboard's event loop until Stop is called,
// which may happen from any other goroutine.
func (d *Dashboard) Run() error {
	return d.app.Run()
}

// Stop ends the dashboard's event loop. Safe to call once the run
// completes, whether or not Run has returned yet.
func (d *Dashboard) Stop() {
	d.app.Stop()
}
