package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Astemirdum/bookhub/gateway/internal/notify"
	"github.com/charmbracelet/lipgloss"
)

var (
	successColor = lipgloss.Color("#10b981")
	infoColor    = lipgloss.Color("#3b82f6")
	warningColor = lipgloss.Color("#f59e0b")
	errorColor   = lipgloss.Color("#ef4444")
	mutedColor   = lipgloss.Color("#6b7280")
)

type styles struct {
	levels  map[notify.Level]lipgloss.Style
	message lipgloss.Style
	header  lipgloss.Style
	muted   lipgloss.Style
}

// newStyles binds the styles to the renderer of the output, so pipes and
// files get plain text.
func newStyles(r *lipgloss.Renderer) styles {
	badge := func(c lipgloss.Color) lipgloss.Style {
		return r.NewStyle().
			Foreground(c).
			Bold(true)
	}
	s := styles{
		levels: map[notify.Level]lipgloss.Style{
			notify.LevelSuccess: badge(successColor),
			notify.LevelInfo:    badge(infoColor),
			notify.LevelWarning: badge(warningColor),
			notify.LevelError:   badge(errorColor),
		},
	}
	s.message = r.NewStyle()
	s.header = r.NewStyle().Bold(true).Underline(true)
	s.muted = r.NewStyle().Foreground(mutedColor).Italic(true)
	return s
}

var badges = map[notify.Level]string{
	notify.LevelSuccess: "✓",
	notify.LevelInfo:    "i",
	notify.LevelWarning: "!",
	notify.LevelError:   "✗",
}

// Terminal prints notifications as one coloured line each. It is the
// terminal's toast.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	styles styles
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, styles: newStyles(lipgloss.NewRenderer(w))}
}

func (t *Terminal) Notify(_ context.Context, n notify.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, t.Render(n))
}

func (t *Terminal) Render(n notify.Notification) string {
	style, ok := t.styles.levels[n.Level]
	if !ok {
		style = t.styles.levels[notify.LevelInfo]
	}
	badge := badges[n.Level]
	if badge == "" {
		badge = badges[notify.LevelInfo]
	}
	return style.Render(badge+" "+strings.ToUpper(string(n.Level))) + " " + t.styles.message.Render(n.Message)
}

func (t *Terminal) Heading(text string) string {
	return t.styles.header.Render(text)
}

func (t *Terminal) Muted(text string) string {
	return t.styles.muted.Render(text)
}
