package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// WizardResult holds answers collected by the setup wizard.
type WizardResult struct {
	DefaultNetwork  string
	NetworkMode     string
	PlatformAddress string
	Cancelled       bool
}

type wizardStep int

const (
	stepNetwork wizardStep = iota
	stepMode
	stepPlatform
	stepDone
)

type wizardModel struct {
	step      wizardStep
	result    WizardResult
	networks  []string
	cursor    int
	choices   []string
	input     string
	inputMode bool
}

var modes = []string{"testnet", "mainnet"}

func initialWizard(networks []string) wizardModel {
	return wizardModel{
		step:     stepNetwork,
		networks: networks,
		choices:  networks,
	}
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.result.Cancelled = true
		return m, tea.Quit

	case "up", "k":
		if !m.inputMode && m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if !m.inputMode && m.cursor < len(m.choices)-1 {
			m.cursor++
		}

	case "enter":
		if m.inputMode {
			m.result.PlatformAddress = strings.Trim(strings.TrimSpace(m.input), "[]\"'")
		} else if m.cursor < len(m.choices) {
			switch m.step {
			case stepNetwork:
				m.result.DefaultNetwork = m.choices[m.cursor]
			case stepMode:
				m.result.NetworkMode = m.choices[m.cursor]
			}
		}
		m.cursor = 0
		m.advance()

	case "backspace":
		if m.inputMode && len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}

	default:
		if m.inputMode && key.Type == tea.KeyRunes {
			m.input += string(key.Runes)
		}
	}

	if m.step == stepDone {
		return m, tea.Quit
	}
	return m, nil
}

func (m *wizardModel) advance() {
	m.step++
	switch m.step {
	case stepMode:
		m.choices = modes
	case stepPlatform:
		m.choices = nil
		m.inputMode = true
		m.input = ""
	default:
		m.inputMode = false
	}
}

func (m wizardModel) View() string {
	var s string

	switch m.step {
	case stepNetwork:
		s = renderMenu("Select default network:", m.choices, m.cursor)
	case stepMode:
		s = renderMenu("Select network mode:", m.choices, m.cursor)
	case stepPlatform:
		s = StyleTitle.Render("Crowdfunding platform contract") + "\n\n"
		s += StyleMeta.Render("Enter the deployed platform address (Enter to skip):") + "\n"
		s += "> " + StyleAddress.Render(m.input) + "█\n"
	case stepDone:
		s = Success("Setup complete!") + "\n"
	}

	return StyleBorder.Render(s) + "\n"
}

func renderMenu(title string, items []string, cursor int) string {
	s := StyleTitle.Render(title) + "\n\n"
	for i, item := range items {
		icon := "  "
		style := lipgloss.NewStyle().Foreground(ColorValue)
		if i == cursor {
			icon = "▸ "
			style = StyleSelected
		}
		s += icon + style.Render(item) + "\n"
	}
	s += "\n" + StyleMeta.Render("↑/↓ navigate · Enter select · Esc cancel")
	return s
}

// RunWizard launches the interactive setup wizard over the given network
// names and returns the answers.
func RunWizard(networks []string) (*WizardResult, error) {
	if len(networks) == 0 {
		return nil, fmt.Errorf("wizard: no networks to choose from")
	}
	final, err := tea.NewProgram(initialWizard(networks)).Run()
	if err != nil {
		return nil, fmt.Errorf("wizard error: %w", err)
	}
	result := final.(wizardModel).result
	return &result, nil
}
