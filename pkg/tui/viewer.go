package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/afd-framework/afd-go/pkg/pipeline"
)

// LoadResult reads a saved pipeline result JSON file.
func LoadResult(path string) (*pipeline.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parse result file: %w", err)
	}
	return &res, nil
}

// model is the bubbletea model for the result viewer. cursor -1 shows
// the pipeline summary; 0..n-1 a step detail.
type model struct {
	res    *pipeline.Result
	cursor int
	detail viewport.Model
	width  int
	height int
	ready  bool
}

// NewModel builds a viewer model for a result.
func NewModel(res *pipeline.Result) tea.Model {
	return &model{res: res, cursor: -1}
}

// Run opens the interactive viewer.
func Run(res *pipeline.Result) error {
	_, err := tea.NewProgram(NewModel(res), tea.WithAltScreen()).Run()
	return err
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.ready = true
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > -1 {
				m.cursor--
				m.refresh()
			}
		case "down", "j":
			if m.cursor < len(m.res.Steps)-1 {
				m.cursor++
				m.refresh()
			}
		case "home", "g":
			m.cursor = -1
			m.refresh()
		case "pgup":
			m.detail.HalfPageUp()
		case "pgdown", " ":
			m.detail.HalfPageDown()
		}
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *model) layout() {
	detailWidth := m.width - m.listWidth() - 4
	if detailWidth < 20 {
		detailWidth = 20
	}
	detailHeight := m.height - 4
	if detailHeight < 3 {
		detailHeight = 3
	}
	m.detail = viewport.New(detailWidth, detailHeight)
	m.refresh()
}

func (m *model) refresh() {
	var md string
	if m.cursor < 0 {
		md = resultMarkdown(m.res)
	} else {
		md = stepMarkdown(&m.res.Steps[m.cursor])
	}
	m.detail.SetContent(RenderMarkdown(md))
	m.detail.GotoTop()
}

func (m *model) listWidth() int {
	w := m.width / 3
	if w < 24 {
		w = 24
	}
	return w
}

func (m *model) View() string {
	if !m.ready {
		return "loading…"
	}

	header := headerStyle.Render(fmt.Sprintf("afd result — %d/%d steps, %dms",
		m.res.Metadata.CompletedSteps, m.res.Metadata.TotalSteps, m.res.Metadata.ExecutionTimeMs))

	left := m.stepList()
	right := panelBorder.Width(m.detail.Width).Height(m.detail.Height + 2).
		Render(panelTitle.Render("Detail") + "\n" + m.detail.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	keys := keyBarStyle.Render(strings.Join([]string{
		keyStyle.Render("↑/↓") + keyDescStyle.Render(" select"),
		keyStyle.Render("g") + keyDescStyle.Render(" summary"),
		keyStyle.Render("pgup/pgdn") + keyDescStyle.Render(" scroll"),
		keyStyle.Render("q") + keyDescStyle.Render(" quit"),
	}, "  "))

	return header + "\n" + body + "\n" + keys
}

func (m *model) stepList() string {
	width := m.listWidth()
	var lines []string

	summary := " Σ summary"
	if m.cursor == -1 {
		summary = lipgloss.NewStyle().Reverse(true).Render(summary)
	} else {
		summary = plainStyle.Render(summary)
	}
	lines = append(lines, summary)

	for i := range m.res.Steps {
		sr := &m.res.Steps[i]
		var glyph string
		var style lipgloss.Style
		switch sr.Status {
		case pipeline.StatusSuccess:
			glyph, style = GlyphSuccess, stepSuccess
		case pipeline.StatusFailure:
			glyph, style = GlyphFailed, stepFailed
		default:
			glyph, style = GlyphSkipped, stepSkipped
		}

		label := sr.Command
		if sr.Alias != "" {
			label += " (" + sr.Alias + ")"
		}
		line := fmt.Sprintf(" %s %d. %s", glyph, i, runewidth.Truncate(label, width-8, "…"))
		if i == m.cursor {
			line = style.Reverse(true).Render(line)
		} else {
			line = style.Render(line)
		}
		lines = append(lines, line)
	}

	height := m.detail.Height
	for len(lines) < height {
		lines = append(lines, "")
	}
	return panelBorder.Width(width).Height(height + 2).
		Render(panelTitle.Render("Steps") + "\n" + strings.Join(lines, "\n"))
}

// Summary renders a one-line, non-interactive wrap-up used by the CLI
// after a run.
func Summary(res *pipeline.Result) string {
	m := res.Metadata
	badge := summaryGoodStyle.Render(GlyphSuccess)
	if m.CompletedSteps < m.TotalSteps {
		badge = summaryBadStyle.Render(GlyphFailed)
	}
	line := fmt.Sprintf("%s %d/%d steps in %dms", badge, m.CompletedSteps, m.TotalSteps, m.ExecutionTimeMs)
	if m.Confidence != nil {
		line += warnStyle.Render(fmt.Sprintf("  confidence %.2f", *m.Confidence))
	}
	return line
}
