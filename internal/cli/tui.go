package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/photogrid/pkg/grid"
)

var (
	promptLabelStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	promptInputStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBright)
	promptPreviewStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(colorFaint).
				PaddingLeft(1).
				Foreground(colorMuted)
	promptCursor = lipgloss.NewStyle().Foreground(colorAccent).Render("▏")
)

// =============================================================================
// CaptionPromptModel - Interactive caption entry
// =============================================================================

// CaptionPromptModel asks for one caption per image and previews the lines
// that will actually be drawn under the cell.
type CaptionPromptModel struct {
	Names    []string
	Captions []string
	Index    int
	Done     bool
	Aborted  bool

	input []rune
}

// NewCaptionPromptModel creates a prompt for the given image names. initial
// pre-fills captions by position and may be shorter than names.
func NewCaptionPromptModel(names, initial []string) CaptionPromptModel {
	captions := make([]string, len(names))
	copy(captions, initial)
	m := CaptionPromptModel{Names: names, Captions: captions}
	if len(names) > 0 {
		m.input = []rune(captions[0])
	}
	return m
}

func (m CaptionPromptModel) Init() tea.Cmd {
	if len(m.Names) == 0 {
		return tea.Quit
	}
	return nil
}

func (m CaptionPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Aborted = true
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyTab, tea.KeyDown:
		m.Captions[m.Index] = string(m.input)
		if m.Index == len(m.Names)-1 {
			if key.Type != tea.KeyEnter {
				return m, nil
			}
			m.Done = true
			return m, tea.Quit
		}
		m.Index++
		m.input = []rune(m.Captions[m.Index])
	case tea.KeyShiftTab, tea.KeyUp:
		m.Captions[m.Index] = string(m.input)
		if m.Index > 0 {
			m.Index--
			m.input = []rune(m.Captions[m.Index])
		}
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = m.input[:0]
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, key.Runes...)
	}
	return m, nil
}

func (m CaptionPromptModel) View() string {
	if m.Done || m.Aborted || len(m.Names) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Caption images"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("⏎ next  ⇧⇥ back  ctrl+u clear  esc abort"))
	b.WriteString("\n\n")

	b.WriteString(promptLabelStyle.Render(fmt.Sprintf("[%d/%d] %s", m.Index+1, len(m.Names), m.Names[m.Index])))
	b.WriteString("\n")
	b.WriteString(promptInputStyle.Render(string(m.input)) + promptCursor)
	b.WriteString("\n\n")

	lines := grid.CaptionLines(string(m.input))
	if len(lines) == 0 {
		lines = []string{StyleDim.Render("(no caption)")}
	}
	b.WriteString(promptPreviewStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
	return b.String()
}

// promptCaptions runs the caption prompt on the terminal.
func promptCaptions(names, initial []string) ([]string, error) {
	final, err := tea.NewProgram(NewCaptionPromptModel(names, initial)).Run()
	if err != nil {
		return nil, err
	}
	m := final.(CaptionPromptModel)
	if m.Aborted {
		return nil, errAborted
	}
	return m.Captions, nil
}
