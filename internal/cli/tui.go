package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/obj2acf/pkg/errors"
	"github.com/matzehuels/obj2acf/pkg/mesh"
)

// List styles
var (
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// GroupListModel - Interactive mesh group selection
// =============================================================================

// GroupListModel is the bubbletea model for picking the group to convert.
// Only groups classified as bodies can be selected.
type GroupListModel struct {
	Groups   []*mesh.Group
	Cursor   int
	Selected *mesh.Group
	Height   int
	Offset   int
}

// NewGroupListModel creates a group list with the cursor on preferred.
func NewGroupListModel(groups []*mesh.Group, preferred *mesh.Group) GroupListModel {
	m := GroupListModel{Groups: groups, Height: 15}
	for i, g := range groups {
		if g == preferred {
			m.Cursor = i
		}
	}
	m.scroll()
	return m
}

func (m GroupListModel) Init() tea.Cmd {
	return nil
}

func (m GroupListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Groups)-1 {
				m.Cursor++
			}
		case "enter":
			g := m.Groups[m.Cursor]
			if mesh.Classify(g) != mesh.KindBody {
				return m, nil
			}
			m.Selected = g
			return m, tea.Quit
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.scroll()
	}
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *GroupListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m GroupListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Mesh Group"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Groups))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		g := m.Groups[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			g.Name,
			fmt.Sprint(g.Len()),
			fmt.Sprintf("%.3f", g.SpanZ()),
			mesh.Classify(g).String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Group", "Vertices", "Z span", "Kind").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return listHeaderStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Groups) {
				return lipgloss.NewStyle()
			}
			body := mesh.Classify(m.Groups[idx]) == mesh.KindBody
			base := lipgloss.NewStyle().Foreground(colorDim)
			if body {
				base = base.Foreground(colorGreen)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Groups))))

	return b.String()
}

// pickGroup runs the group picker and returns the chosen group name.
func pickGroup(mf *mesh.File) (string, error) {
	preferred, _ := mesh.Select(mf, "")
	final, err := tea.NewProgram(NewGroupListModel(mf.Groups, preferred)).Run()
	if err != nil {
		return "", fmt.Errorf("group picker: %w", err)
	}
	m, ok := final.(GroupListModel)
	if !ok || m.Selected == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "no group selected")
	}
	return m.Selected.Name, nil
}
