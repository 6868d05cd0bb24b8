package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"finboard/internal/i18n"
)

func shouldRunOnboarding() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepSource onboardingStep = iota
	stepLanguage
	stepDone
)

type onboardingModel struct {
	step        onboardingStep
	sourceInput textinput.Model
	langIndex   int
	sources     []string
	language    string
	canceled    bool
	status      string
	width       int
	height      int
}

var (
	obColorMuted  = lipgloss.Color("#7A8499")
	obColorText   = lipgloss.Color("#D8DEE9")
	obColorAccent = lipgloss.Color("#88C0D0")
	obColorDanger = lipgloss.Color("#BF616A")

	obTitleStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obHeaderStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabsStyle = lipgloss.NewStyle().
			Padding(0, 2).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(obColorMuted)

	obTabInactive = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 2)

	obTabActive = lipgloss.NewStyle().
			Foreground(obColorText).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	obPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorMuted).
			Padding(1, 2)

	obInputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(obColorAccent).
			Padding(0, 1)

	obLabelStyle = lipgloss.NewStyle().
			Foreground(obColorAccent).
			Bold(true)

	obMutedStyle = lipgloss.NewStyle().
			Foreground(obColorMuted)

	obOptionStyle = lipgloss.NewStyle().
			Foreground(obColorText)

	obOptionSelected = lipgloss.NewStyle().
				Foreground(obColorAccent).
				Bold(true)

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

var languageNames = map[string]string{
	"en": "English",
	"de": "Deutsch",
}

func newOnboardingModel(lang string) onboardingModel {
	in := textinput.New()
	in.Placeholder = "https://… or /path/to/export.tsv"
	in.CharLimit = 500
	in.Prompt = "source> "
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
	in.Focus()

	m := onboardingModel{
		step:        stepSource,
		sourceInput: in,
	}
	lang = i18n.Normalize(lang)
	for i, l := range i18n.Supported {
		if l == lang {
			m.langIndex = i
		}
	}
	return m
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.canceled = true
			m.status = "Setup canceled."
			m.step = stepDone
			return m, tea.Quit
		}
		switch m.step {
		case stepSource:
			switch msg.String() {
			case "enter":
				m.sources = splitSources(m.sourceInput.Value())
				if len(m.sources) == 0 {
					m.status = "No source entered. Add one later with --source."
				}
				m.step = stepLanguage
				return m, nil
			case "esc":
				m.status = "Skipped source setup. Add one later with --source."
				m.step = stepLanguage
				return m, nil
			}
			var cmd tea.Cmd
			m.sourceInput, cmd = m.sourceInput.Update(msg)
			return m, cmd
		case stepLanguage:
			switch msg.String() {
			case "up", "k", "left", "h":
				if m.langIndex > 0 {
					m.langIndex--
				}
				return m, nil
			case "down", "j", "right", "l":
				if m.langIndex < len(i18n.Supported)-1 {
					m.langIndex++
				}
				return m, nil
			case "enter":
				m.language = i18n.Supported[m.langIndex]
				m.step = stepDone
				return m, tea.Quit
			case "q", "esc":
				m.canceled = true
				m.status = "Setup canceled."
				m.step = stepDone
				return m, tea.Quit
			}
			// Swallow any other keys silently (no error flash)
			return m, nil
		}
	}
	return m, nil
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	header := m.renderHeader(width)
	tabs := m.renderTabs(width)
	footer := m.renderFooter(width)

	contentHeight := max(8, height-6)
	content := m.renderContent(width, contentHeight)
	ui := lipgloss.JoinVertical(lipgloss.Left, header, tabs, content, footer)

	return lipgloss.NewStyle().
		Foreground(obColorText).
		Width(width).
		Height(height).
		Render(ui)
}

func (m onboardingModel) renderHeader(width int) string {
	left := "  " + obTitleStyle.Render("finboard") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	sourceTab := obTabInactive.Render("Data Source")
	langTab := obTabInactive.Render("Language")
	if m.step == stepSource {
		sourceTab = obTabActive.Render("Data Source")
	}
	if m.step == stepLanguage {
		langTab = obTabActive.Render("Language")
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, "  ", sourceTab, langTab))
}

func (m onboardingModel) renderFooter(width int) string {
	switch m.step {
	case stepSource:
		return obFooterStyle.Width(width).Render("enter next  esc skip  ctrl+c cancel")
	case stepLanguage:
		return obFooterStyle.Width(width).Render("↑↓/jk to navigate  enter to confirm  q cancel")
	default:
		return obFooterStyle.Width(width).Render("Setup complete")
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepSource:
		input := obInputStyle.Width(max(30, cardWidth-14)).Render(m.sourceInput.View())
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			obLabelStyle.Render("Where is your finance export?"),
			"",
			obMutedStyle.Render("A tab-separated export with a header line, e.g. a published"),
			obMutedStyle.Render("spreadsheet (…/pub?output=tsv) or a local file."),
			obMutedStyle.Render("Separate several sources with commas."),
			"",
			obLabelStyle.Render("Source"),
			input,
		)
	case stepLanguage:
		lines := []string{obLabelStyle.Render("Which language should finboard use?"), ""}
		for i, lang := range i18n.Supported {
			name := languageNames[lang]
			if i == m.langIndex {
				lines = append(lines, "  "+obOptionSelected.Render("→ "+name))
			} else {
				lines = append(lines, "    "+obOptionStyle.Render(name))
			}
		}
		lines = append(lines, "", obMutedStyle.Render("Press L inside finboard to switch later."))
		if m.status != "" {
			lines = append(lines, "", obWarnStyle.Render(m.status))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	default:
		msg := obMutedStyle.Render(m.status)
		if m.canceled {
			msg = obWarnStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, obLabelStyle.Render("Onboarding Complete"), "", msg)
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

// apply copies the answers into cfg.
func (m onboardingModel) apply(cfg Config) Config {
	if len(m.sources) > 0 {
		cfg.Sources = m.sources
	}
	if m.language != "" {
		cfg.Language = m.language
	}
	return cfg
}

// runOnboarding asks for a source and language and writes them to the
// config file at path. A canceled setup leaves cfg and the file untouched.
func runOnboarding(path string, cfg Config) (Config, error) {
	prog := tea.NewProgram(newOnboardingModel(systemLanguage()), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return cfg, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return cfg, fmt.Errorf("unexpected onboarding model type")
	}
	if m.canceled {
		return cfg, nil
	}
	cfg = m.apply(cfg)
	if err := SaveConfig(path, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
