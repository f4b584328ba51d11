package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/0xlukav/larascan/internal/model"
)

type modelT struct {
	runs     []model.DetectorRun
	findings []model.Finding
	cursor   int
}

func initialModel(result *model.ScanResult) modelT {
	return modelT{runs: result.Runs, findings: result.Findings()}
}

func (m modelT) Init() tea.Cmd { return nil }

func (m modelT) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.findings)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

func (m modelT) View() string {
	var b strings.Builder
	for _, run := range m.runs {
		fmt.Fprintf(&b, "%-7s %s\n", strings.ToUpper(string(run.Result.Status)), run.Detector.Name)
	}
	fmt.Fprintf(&b, "\nFindings (%d)  [j/k move, q quit]\n\n", len(m.findings))
	for i, f := range m.findings {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		loc := f.Location.Path
		if f.Location.Line > 0 {
			loc = fmt.Sprintf("%s:%d", f.Location.Path, f.Location.Line)
		}
		fmt.Fprintf(&b, "%s[%s] %s  %s\n", marker, f.Severity, loc, f.Message)
	}
	if len(m.findings) > 0 && m.cursor < len(m.findings) {
		f := m.findings[m.cursor]
		b.WriteString("\n")
		if f.Code != "" {
			fmt.Fprintf(&b, "  %s\n", strings.TrimSpace(f.Code))
		}
		if f.Recommendation != "" {
			fmt.Fprintf(&b, "  fix: %s\n", f.Recommendation)
		}
	}
	return b.String()
}

// Run launches a minimal findings browser.
func Run(result *model.ScanResult) error {
	p := tea.NewProgram(initialModel(result))
	_, err := p.Run()
	return err
}
