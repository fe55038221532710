package prompt

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/term"
)

func init() {
	err := message.Set(language.English, "%d nodes",
		plural.Selectf(1, "%d",
			"=1", "%[1]d node",
			"other", "%[1]d nodes",
		))
	if err != nil {
		panic(err)
	}
}

// styles renders operator text, in color only when writing to a terminal.
type styles struct {
	color   bool
	header  lipgloss.Style
	version lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
	}
	return styles{
		color:   color,
		header:  lipgloss.NewStyle().Bold(true),
		version: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		err:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}
