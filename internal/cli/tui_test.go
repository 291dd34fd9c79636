package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m CaptionPromptModel, s string) CaptionPromptModel {
	for _, r := range s {
		var msg tea.KeyMsg
		if r == ' ' {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		}
		next, _ := m.Update(msg)
		m = next.(CaptionPromptModel)
	}
	return m
}

func press(m CaptionPromptModel, t tea.KeyType) (CaptionPromptModel, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: t})
	return next.(CaptionPromptModel), cmd
}

func TestCaptionPromptCollectsCaptions(t *testing.T) {
	m := NewCaptionPromptModel([]string{"a.png", "b.jpg"}, []string{"pre"})
	if string(m.input) != "pre" {
		t.Fatalf("input = %q, want prefilled %q", string(m.input), "pre")
	}

	m, _ = press(m, tea.KeyCtrlU)
	m = typeText(m, "Beach day")
	m, cmd := press(m, tea.KeyEnter)
	if cmd != nil || m.Index != 1 {
		t.Fatalf("after first enter: index = %d, cmd = %v", m.Index, cmd)
	}

	m = typeText(m, "Hikx")
	m, _ = press(m, tea.KeyBackspace)
	m = typeText(m, "e")
	m, cmd = press(m, tea.KeyEnter)
	if cmd == nil || !m.Done {
		t.Fatal("enter on the last image should finish the prompt")
	}

	want := []string{"Beach day", "Hike"}
	for i := range want {
		if m.Captions[i] != want[i] {
			t.Errorf("Captions[%d] = %q, want %q", i, m.Captions[i], want[i])
		}
	}
}

func TestCaptionPromptNavigateBack(t *testing.T) {
	m := NewCaptionPromptModel([]string{"a.png", "b.png"}, nil)
	m = typeText(m, "first")
	m, _ = press(m, tea.KeyTab)
	m = typeText(m, "second")
	m, _ = press(m, tea.KeyShiftTab)

	if m.Index != 0 || string(m.input) != "first" {
		t.Errorf("back: index = %d input = %q", m.Index, string(m.input))
	}
	if m.Captions[1] != "second" {
		t.Errorf("going back must keep the edited caption, got %q", m.Captions[1])
	}

	// Tab on the last image does not finish.
	m, _ = press(m, tea.KeyTab)
	m, cmd := press(m, tea.KeyTab)
	if cmd != nil || m.Done {
		t.Error("tab on the last image should not finish the prompt")
	}
}

func TestCaptionPromptAbort(t *testing.T) {
	m := NewCaptionPromptModel([]string{"a.png"}, nil)
	m, cmd := press(m, tea.KeyEsc)
	if !m.Aborted || cmd == nil {
		t.Error("esc should abort and quit")
	}
	if m.View() != "" {
		t.Error("aborted prompt should render nothing")
	}
}

func TestCaptionPromptViewShowsDrawnLines(t *testing.T) {
	m := NewCaptionPromptModel([]string{"a.png"}, []string{"The quick brown fox jumps over the lazy dog again and again"})
	view := m.View()

	for _, want := range []string{"[1/1] a.png", "The quick brown fox jumps", "over the lazy dog again"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if n := strings.Count(view, "and again"); n != 1 {
		t.Errorf("\"and again\" appears %d times; only the input line should show it", n)
	}
}
