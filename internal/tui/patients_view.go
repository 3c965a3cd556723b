package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// View renders the current view (Bubble Tea interface).
func (m PatientsModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateDetail:
		return m.zones.Scan(m.renderDetailView())
	case ViewStateList:
		return m.zones.Scan(m.renderListView())
	default:
		return ""
	}
}

func (m PatientsModel) renderListView() string {
	sections := []string{m.renderHeader()}
	if alert := m.renderAlert(); alert != "" {
		sections = append(sections, alert)
	}
	sections = append(sections, m.list.View(), m.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader shows the title and how much of the list is loaded.
func (m PatientsModel) renderHeader() string {
	meta := m.pager.Meta()

	var status string
	switch {
	case meta.HasNext && meta.TotalItems <= meta.LoadedItems:
		status = m.printer.Sprintf("%d loaded", meta.LoadedItems)
	default:
		status = m.printer.Sprintf("%d of %d loaded", meta.LoadedItems, meta.TotalItems)
	}
	if m.pager.IsNextPageLoading() {
		status += " " + m.spinner.View()
	}

	return HeaderStyle.Render(m.title) + "  " + LabelStyle.Render(status)
}

// renderAlert reports the last fetch failure with a Retry button.
func (m PatientsModel) renderAlert() string {
	err := m.pager.Err()
	if err == nil {
		return ""
	}
	msg := AlertStyle.Render("Could not load patients: " + firstLine(err.Error()))
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(
		msg + " " + m.zones.Mark(zoneRetry, ButtonStyle.Render("Retry")),
	)
}

func (m PatientsModel) renderFooter() string {
	bindings := m.list.KeyMap().ShortHelp()
	if m.pager.Err() != nil {
		bindings = append(bindings, m.keys.Retry)
	}
	bindings = append(bindings, m.keys.Quit)
	return m.help.ShortHelpView(bindings)
}

// renderDetailView renders the selected patient and their pickup hold.
func (m PatientsModel) renderDetailView() string {
	if m.detail == nil {
		return ""
	}
	p := m.detail.Patient
	now := m.now()

	field := func(label, value string) string {
		return LabelStyle.Render(fmt.Sprintf("%-14s", label)) + ValueStyle.Render(value)
	}

	lines := []string{
		HeaderStyle.Render(p.DisplayName()),
		"",
		field("MRN", p.MRN),
		field("Born", birthText(p)+" ("+ageText(p, now)+")"),
		field("Pharmacy", orDash(p.Pharmacy)),
		field("Active Rx", m.printer.Sprintf("%d", p.ActivePrescriptions)),
		field("Next pickup", pickupText(p)),
	}
	for _, alert := range p.Alerts {
		lines = append(lines, WarningStyle.Render("! "+alert))
	}
	lines = append(lines, "", m.renderHold())

	body := DetailBoxStyle.Render(strings.Join(lines, "\n"))
	closeButton := m.zones.Mark(zoneClose, ButtonStyle.Render("Close"))

	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		closeButton,
		m.help.ShortHelpView([]key.Binding{m.keys.Close, m.keys.Quit}),
	)
}

func (m PatientsModel) renderHold() string {
	if m.timer == nil {
		return MutedStyle.Render("No pickup slot reserved")
	}
	if m.holdExpired || m.timer.Hold.Expired(m.now()) {
		return AlertStyle.Render("Pickup hold expired")
	}
	return LabelStyle.Render("Pickup slot held for ") + OKStyle.Render(m.timer.View(m.now()))
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
