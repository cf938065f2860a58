package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"upsend/internal/campaign"
)

// OnboardingSettings is what the first-run setup remembers.
type OnboardingSettings struct {
	Completed   bool   `yaml:"completed"`
	SenderEmail string `yaml:"sender_email,omitempty"`
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.yaml")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(configDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, fmt.Errorf("failed to parse %s: %w", onboardingPath(configDir), err)
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0644)
}

func shouldRunOnboarding(settings OnboardingSettings) bool {
	if settings.Completed {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepSender onboardingStep = iota
	stepDone
)

type onboardingModel struct {
	step        onboardingStep
	senderInput textinput.Model
	settings    OnboardingSettings
	status      string
	invalid     bool
	width       int
	height      int
}

var (
	obColorMuted  = lipgloss.Color("#6C7086")
	obColorText   = lipgloss.Color("#CDD6F4")
	obColorAccent = lipgloss.Color("#89B4FA")
	obColorDanger = lipgloss.Color("#F38BA8")

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

	obWarnStyle = lipgloss.NewStyle().
			Foreground(obColorDanger)

	obFooterStyle = lipgloss.NewStyle().
			Foreground(obColorMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(obColorMuted)
)

func newOnboardingModel(existingSender string) onboardingModel {
	in := textinput.New()
	in.Placeholder = "you@example.com"
	in.CharLimit = 254
	in.Prompt = "from> "
	in.TextStyle = lipgloss.NewStyle().Foreground(obColorText)
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(obColorMuted)
	in.Cursor.Style = lipgloss.NewStyle().Foreground(obColorText).Background(obColorAccent)
	in.SetValue(strings.TrimSpace(existingSender))
	in.Focus()

	return onboardingModel{
		step:        stepSender,
		senderInput: in,
		settings:    OnboardingSettings{Completed: true},
	}
}

func (m onboardingModel) Init() tea.Cmd { return textinput.Blink }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.step != stepSender {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			sender := strings.TrimSpace(m.senderInput.Value())
			if !campaign.IsValidEmail(sender) {
				m.invalid = true
				m.status = "Please enter a valid email address"
				return m, nil
			}
			m.settings.SenderEmail = sender
			m.status = "Sender saved. New campaigns will be sent from " + sender + "."
			m.step = stepDone
			return m, tea.Quit
		case "esc":
			m.status = "Skipped. Set sender_email in ~/.upsend/config.yaml later."
			m.step = stepDone
			return m, tea.Quit
		case "ctrl+c":
			m.status = "Setup canceled."
			m.step = stepDone
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.senderInput, cmd = m.senderInput.Update(msg)
		if m.invalid && campaign.IsValidEmail(strings.TrimSpace(m.senderInput.Value())) {
			m.invalid = false
			m.status = ""
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.senderInput, cmd = m.senderInput.Update(msg)
	return m, cmd
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
	left := "  " + obTitleStyle.Render("upsend") + " " + obMutedStyle.Render("› Setup")
	right := obMutedStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return obHeaderStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

func (m onboardingModel) renderTabs(width int) string {
	senderTab := obTabInactive.Render("Sender")
	doneTab := obTabInactive.Render("Done")
	if m.step == stepSender {
		senderTab = obTabActive.Render("Sender")
	} else {
		doneTab = obTabActive.Render("Done")
	}
	return obTabsStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Left, "  ", senderTab, doneTab))
}

func (m onboardingModel) renderFooter(width int) string {
	if m.step == stepSender {
		return obFooterStyle.Width(width).Render("enter save  esc skip  ctrl+c cancel")
	}
	return obFooterStyle.Width(width).Render("Setup complete")
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := min(92, width-6)
	if cardWidth < 40 {
		cardWidth = width - 2
	}

	var body string
	switch m.step {
	case stepSender:
		input := obInputStyle.Width(max(30, cardWidth-14))
		if m.invalid {
			input = input.BorderForeground(obColorDanger)
		}
		lines := []string{
			obLabelStyle.Render("Which address do your campaigns come from?"),
			"",
			obMutedStyle.Render("It is prefilled in the new campaign form and stored in"),
			obMutedStyle.Render("~/.upsend/onboarding.yaml."),
			"",
			obLabelStyle.Render("Sender email"),
			input.Render(m.senderInput.View()),
		}
		if m.status != "" {
			lines = append(lines, obWarnStyle.Render(m.status))
		}
		lines = append(lines, "", obMutedStyle.Render("Press Enter to save, Esc to skip."))
		body = lipgloss.JoinVertical(lipgloss.Left, lines...)
	default:
		body = lipgloss.JoinVertical(lipgloss.Left,
			obLabelStyle.Render("Onboarding Complete"), "", obMutedStyle.Render(m.status))
	}

	card := obPanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir, existingSender string) (OnboardingSettings, error) {
	prog := tea.NewProgram(newOnboardingModel(existingSender), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if err := saveOnboardingSettings(configDir, m.settings); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}
