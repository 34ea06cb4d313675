package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/marketbrief/internal/model"
)

// Lines per role in the list (title + subtitle + blank separator).
const roleItemHeight = 3

var (
	listBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	detailBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	roleTitleStyle = lipgloss.NewStyle().
			Bold(true)

	roleSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(18)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208"))
)

type rolesModel struct {
	function  model.Function
	roles     []Role
	staleDays int
	cursor    int

	list   viewport.Model
	detail viewport.Model
	width  int
	height int
	ready  bool

	wantQuit bool
}

func newRolesModel(fn model.Function, roles []Role, staleDays int) rolesModel {
	return rolesModel{function: fn, roles: roles, staleDays: staleDays}
}

func (m rolesModel) Init() tea.Cmd {
	return nil
}

func (m rolesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.wantQuit = true
			return m, tea.Quit
		case "esc", "b":
			m.wantQuit = false
			return m, tea.Quit
		case "up", "k":
			m.moveCursor(-1)
			return m, nil
		case "down", "j":
			m.moveCursor(1)
			return m, nil
		case "home", "g":
			m.moveCursor(-len(m.roles))
			return m, nil
		case "end", "G":
			m.moveCursor(len(m.roles))
			return m, nil
		}
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *rolesModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.roles)-1, 0))
	if !m.ready {
		return
	}
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *rolesModel) ensureCursorVisible() {
	top := m.cursor * roleItemHeight
	bottom := top + roleItemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m *rolesModel) recalcLayout() {
	// List takes 3/5 of the width; borders cost 2 columns per pane plus a gap.
	listWidth := max((m.width-5)*3/5, 24)
	detailWidth := max(m.width-5-listWidth, 24)
	// Header + borders + status bar.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(listWidth, paneHeight)
		m.detail = viewport.New(detailWidth, paneHeight)
		m.ready = true
	} else {
		m.list.Width, m.list.Height = listWidth, paneHeight
		m.detail.Width, m.detail.Height = detailWidth, paneHeight
	}
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *rolesModel) recalcContent() {
	m.list.SetContent(renderRoles(m.roles, m.cursor, m.staleDays))
	m.detail.SetContent(m.renderDetail())
	m.detail.SetYOffset(0)
}

func (m rolesModel) selected() (Role, bool) {
	if len(m.roles) == 0 {
		return Role{}, false
	}
	return m.roles[m.cursor], true
}

func (m rolesModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := headerStyle.Render(fmt.Sprintf("%s roles by scope (%d)", titleCase(string(m.function)), len(m.roles)))
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorderStyle.Width(m.list.Width).Render(m.list.View()),
		" ",
		detailBorderStyle.Width(m.detail.Width).Render(m.detail.View()),
	)
	status := statusBarStyle.Width(m.width).Render(fmt.Sprintf(" %d/%d    ↑/↓ move  pgup/pgdn scroll detail  esc back  q quit",
		min(m.cursor+1, len(m.roles)), len(m.roles)))

	return header + "\n" + panes + "\n" + status
}

func (m rolesModel) renderDetail() string {
	r, ok := m.selected()
	if !ok {
		return "  (no roles)"
	}

	var b strings.Builder
	addField := func(label, value string) {
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	b.WriteString(detailTitleStyle.Render(r.Title))
	b.WriteByte('\n')
	addField("Company", r.Company)
	addField("Function", string(r.Function))
	addField("Level", levelLabel(r.Level))
	addField("First seen", r.FirstSeen.Format("2006-01-02"))
	age := fmt.Sprintf("%d days", r.AgeDays)
	if m.staleDays > 0 && r.AgeDays >= m.staleDays {
		age += " " + staleStyle.Render("(stale)")
	}
	addField("Age", age)

	b.WriteByte('\n')
	addField("Scope score", fmt.Sprintf("%d", r.Score))
	addField("  strategy", fmt.Sprintf("%d", r.StrategyScore))
	addField("  execution", fmt.Sprintf("%d", r.ExecutionScore))
	addField("  cross-functional", fmt.Sprintf("%d", r.CrossFunctionalScore))
	addField("  leadership", fmt.Sprintf("%d", r.LeadershipScore))
	mgmt := "no"
	if r.PeopleMgmt {
		mgmt = "yes"
	}
	addField("  people mgmt", mgmt)

	return b.String()
}

func renderRoles(roles []Role, cursor, staleDays int) string {
	if len(roles) == 0 {
		return "  (no roles)"
	}

	var b strings.Builder
	for i, r := range roles {
		titleSt, subtitleSt, prefix := roleTitleStyle, roleSubtitleStyle, "  "
		if i == cursor {
			titleSt, subtitleSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(fmt.Sprintf("[%d] %s", r.Score, r.Title)))
		b.WriteByte('\n')

		sub := fmt.Sprintf("%s · %s · %dd", r.Company, levelLabel(r.Level), r.AgeDays)
		if staleDays > 0 && r.AgeDays >= staleDays {
			sub += " · stale"
		}
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(sub))
		b.WriteByte('\n')

		if i < len(roles)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunRolesTUI shows the ranked roles of one function with a detail pane.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to return to the picker.
func RunRolesTUI(fn model.Function, roles []Role, staleDays int) (bool, error) {
	p := tea.NewProgram(newRolesModel(fn, roles, staleDays), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	return result.(rolesModel).wantQuit, nil
}
