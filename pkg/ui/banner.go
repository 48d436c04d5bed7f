package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/shieldscan/shieldscan/pkg/defaults"
)

// Global UI state
var (
	noColorMode bool
	uiMu        sync.RWMutex
)

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		// Use ASCII profile to disable colors
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

// ConfigureColor turns colors off unless w is a terminal and NO_COLOR is
// unset.
func ConfigureColor(w io.Writer) {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		SetNoColor(true)
		return
	}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		SetNoColor(true)
	}
}

const bannerArt = `
     _     _      _     _
 ___| |__ (_) ___| | __| |___  ___ __ _ _ __
/ __| '_ \| |/ _ \ |/ _' / __|/ __/ _' | '_ \
\__ \ | | | |  __/ | (_| \__ \ (_| (_| | | | |
|___/_| |_|_|\___|_|\__,_|___/\___\__,_|_| |_|
`

const bannerSeparator = "________________________________________________"

// PrintBanner writes the banner and version line to w.
func PrintBanner(w io.Writer) {
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "                    v%s\n\n", VersionStyle.Render(defaults.Version))
}

// PrintOption writes one ":: Name : Value" line.
func PrintOption(w io.Writer, name, value string) {
	fmt.Fprintf(w, " :: %s : %s\n", LabelStyle.Render(name), ValueStyle.Render(value))
}

// PrintDivider writes the separator line.
func PrintDivider(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", DividerStyle.Render(bannerSeparator))
}
