package covui

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Theme is a light/dark color scheme applied to the shared tview style
// table, the same pattern the teacher's ui.LightTheme/DarkTheme apply
// before constructing any page.
type Theme struct {
	Background         tcell.Color
	TextColor          tcell.Color
	HighlightTextColor tcell.Color
	BorderColor        tcell.Color
}

// LightTheme and DarkTheme mirror the two presets the teacher's console
// debugger offers; all four colors of a theme are used by Apply and by
// the dashboard's header row, and both presets are kept for parity.
var (
	LightTheme = Theme{
		Background:         tcell.ColorWhite,
		TextColor:          tcell.ColorBlack,
		HighlightTextColor: tcell.ColorDarkGreen,
		BorderColor:        tcell.ColorGray,
	}
	DarkTheme = Theme{
		Background:         tcell.ColorBlack,
		TextColor:          tcell.ColorWhite,
		HighlightTextColor: tcell.ColorGreen,
		BorderColor:        tcell.ColorGray,
	}
)

// Apply installs the theme into tview's global style table. Must be
// called before any primitive is constructed, since tview reads these
// styles at construction time, not at draw time.
func (t Theme) Apply() {
	tview.Styles.PrimitiveBackgroundColor = t.Background
	tview.Styles.PrimaryTextColor = t.TextColor
	tview.Styles.BorderColor = t.BorderColor
	tview.Styles.TitleColor = t.HighlightTextColor
}

// SetConsoleTitle sets the terminal window title via the standard xterm
// escape sequence. Best-effort: a terminal that ignores it is unaffected.
func SetConsoleTitle(title string) {
	fmt.Fprintf(os.Stdout, "\x1b]0;%s\x07", title)
}
