package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"finboard/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, keys KeyMap, filterKeys FilterKeyMap, width int) string {
	if mode == model.ModeFilter {
		return renderHelpLine([]string{
			bindingHelp(filterKeys.Apply),
			bindingHelp(filterKeys.Cancel),
			bindingHelp(filterKeys.Clear),
			bindingHelp(filterKeys.Complete),
		}, width)
	}

	if screen == model.ScreenDetail {
		return renderHelpLine([]string{
			bindingHelp(keys.Back),
			bindingHelp(keys.Quit),
		}, width)
	}

	bindings := []key.Binding{
		keys.Down, keys.NextColumn, keys.Sort, keys.EditFilter,
		keys.FilterValue, keys.ClearFilter, keys.HideColumn, keys.ColumnJump,
	}
	if screen == model.ScreenTransactions {
		bindings = append(bindings, keys.Select)
	}
	bindings = append(bindings, keys.NextTable, keys.Help)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, bindingHelp(b))
	}
	return renderHelpLine(parts, width)
}

func bindingHelp(b key.Binding) string {
	h := b.Help()
	return helpKey(h.Key, h.Desc)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// helpScreen is the full help, markdown rendered into a scrollable
// viewport.
type helpScreen struct {
	body     string
	rendered string
	width    int
	vp       viewport.Model
}

func newHelpScreen(body string) *helpScreen {
	return &helpScreen{body: body, vp: viewport.New(0, 0)}
}

// SetBody replaces the markdown, e.g. after a language change.
func (h *helpScreen) SetBody(body string) {
	h.body = body
	h.width = 0
}

func (h *helpScreen) resize(width, height int) {
	h.vp.Width = max(0, width-4)
	h.vp.Height = max(0, height-4)
	if width == h.width && h.rendered != "" {
		return
	}
	h.width = width
	out, err := renderMarkdown(h.body, max(20, width-8))
	if err != nil {
		out = h.body
	}
	h.rendered = out
	h.vp.SetContent(out)
	h.vp.GotoTop()
}

func renderMarkdown(body string, wrap int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(body)
	if err != nil {
		return "", fmt.Errorf("failed to render help: %w", err)
	}
	return out, nil
}

// View renders the full help screen.
func (h *helpScreen) View(width, height int) string {
	h.resize(width, height)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		h.vp.View(),
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

func (h *helpScreen) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	h.vp, cmd = h.vp.Update(msg)
	return cmd
}
