// Package tui is the terminal view of a translation session.
//
// The model is thin: keystrokes become coordinator calls and every
// coordinator snapshot replaces what is drawn. The source editor is the only
// local state; it is overwritten only when the session itself replaces the
// source text (swap).
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nadzzz/parley/internal/coordinator"
	"github.com/nadzzz/parley/internal/language"
)

// Session is the slice of the coordinator the view drives.
type Session interface {
	coordinator.Capabilities
	SetSourceText(text string)
	SetTarget(code string)
	SpeakSource()
	SpeakTarget()
	StopAudio()
	Catalog() *language.Catalog
	Initial() coordinator.Snapshot
	Updates() <-chan coordinator.Snapshot
}

type snapshotMsg coordinator.Snapshot

type copiedMsg struct{ err error }

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	targetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
	audioStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	helpKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
)

// Model is the bubbletea model for one session.
type Model struct {
	session  Session
	version  string
	source   textarea.Model
	snap     coordinator.Snapshot
	revision uint64
	copied   string
	width    int
	height   int
}

// NewModel creates the view for session.
func NewModel(session Session, version string) Model {
	ta := textarea.New()
	ta.Placeholder = "Type text to translate..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 5000
	ta.SetHeight(8)
	ta.Focus()

	return Model{
		session: session,
		version: version,
		source:  ta,
		snap:    session.Initial(),
	}
}

// Run shows the view until the user quits or ctx is cancelled.
func Run(ctx context.Context, session Session, version string) error {
	p := tea.NewProgram(NewModel(session, version), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running terminal view: %w", err)
	}
	return nil
}

func waitForSnapshot(ch <-chan coordinator.Snapshot) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

// Init starts the cursor blink and the snapshot subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForSnapshot(m.session.Updates()))
}

// Update handles keys, window size and session snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.source.SetWidth(max(msg.Width-4, 20))
		return m, nil

	case snapshotMsg:
		s := coordinator.Snapshot(msg)
		m.snap = s
		if s.SourceRevision > m.revision {
			m.revision = s.SourceRevision
			m.source.SetValue(s.SourceText)
		}
		return m, waitForSnapshot(m.session.Updates())

	case copiedMsg:
		if msg.err != nil {
			m.copied = "copy failed: " + msg.err.Error()
		} else {
			m.copied = "copied"
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+n":
			m.cycleTarget(1)
			return m, nil
		case "ctrl+p":
			m.cycleTarget(-1)
			return m, nil
		case "ctrl+s":
			m.session.Swap()
			return m, nil
		case "ctrl+r":
			m.session.Translate()
			return m, nil
		case "ctrl+l":
			m.session.SpeakSource()
			return m, nil
		case "ctrl+o":
			m.session.SpeakTarget()
			return m, nil
		case "ctrl+x":
			m.session.StopAudio()
			return m, nil
		case "ctrl+y":
			if strings.TrimSpace(m.snap.TargetText) == "" {
				return m, nil
			}
			return m, copyToClipboard(m.snap.TargetText)
		}
	}

	before := m.source.Value()
	var cmd tea.Cmd
	m.source, cmd = m.source.Update(msg)
	if after := m.source.Value(); after != before {
		m.copied = ""
		m.session.SetSourceText(after)
	}
	return m, cmd
}

func (m *Model) cycleTarget(delta int) {
	cat := m.session.Catalog()
	n := cat.Len()
	if n == 0 {
		return
	}
	i := m.snap.TargetIndex
	if i < 0 {
		i = 0
	}
	i = ((i+delta)%n + n) % n
	// Show the choice before the session confirms it.
	m.snap.TargetIndex = i
	m.snap.TargetCode = cat.At(i).Code
	m.session.SetTarget(cat.At(i).Code)
}

// View renders the session.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("parley") + helpStyle.Render(" "+m.version) + "\n\n")

	b.WriteString(labelStyle.Render("Source: ") + valueStyle.Render(m.snap.DetectedLabel) + "\n")
	b.WriteString(boxStyle.Render(m.source.View()) + "\n")

	targetName := m.snap.TargetCode
	if name, ok := m.session.Catalog().Name(m.snap.TargetCode); ok {
		targetName = name
	}
	b.WriteString(labelStyle.Render("Target: ") + valueStyle.Render(targetName) + labelStyle.Render(" ("+m.snap.TargetCode+")"))
	if m.copied != "" {
		b.WriteString("  " + audioStyle.Render("["+m.copied+"]"))
	}
	b.WriteString("\n")

	width := m.width - 4
	if width < 20 {
		width = 60
	}
	style := targetStyle
	if strings.HasPrefix(m.snap.TargetText, "Error: ") {
		style = errorStyle
	}
	target := m.snap.TargetText
	if target == "" {
		target = helpStyle.Render("Translation appears here")
	} else {
		target = style.Render(target)
	}
	b.WriteString(boxStyle.Width(width).Render(target) + "\n")

	status := m.snap.Status
	if m.snap.IsAudioPlaying {
		status += "  " + audioStyle.Render("♪")
	}
	b.WriteString(statusStyle.Render(status) + "\n\n")

	b.WriteString(help())
	return b.String()
}

func help() string {
	keys := []struct{ key, desc string }{
		{"ctrl+n/p", "target"},
		{"ctrl+s", "swap"},
		{"ctrl+r", "translate"},
		{"ctrl+l", "listen source"},
		{"ctrl+o", "listen target"},
		{"ctrl+x", "stop audio"},
		{"ctrl+y", "copy"},
		{"esc", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = helpKeyStyle.Render(k.key) + helpStyle.Render(" "+k.desc)
	}
	return strings.Join(parts, helpStyle.Render("  •  "))
}
