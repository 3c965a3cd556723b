package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rshade/carelist/internal/binder"
	"github.com/rshade/carelist/internal/patient"
)

// Column widths of an interactive row.
const (
	nameWidth  = 24
	mrnWidth   = 11
	tabPadding = 2
	dateLayout = "2006-01-02"
	noValue    = "-"
)

// RowHeight is the height of a patient row: one line, plus one for alerts.
func RowHeight(_ int, p patient.Summary, _ int) int {
	if p.HasAlerts() {
		return 2 //nolint:mnd // Summary line plus alert line.
	}
	return 1
}

// PatientRow returns the row renderer for the list. now dates the age column.
func PatientRow(now func() time.Time) binder.ItemFunc[patient.Summary] {
	return func(p patient.Summary, _ int, selected bool, _ int) string {
		marker := "  "
		nameStyle := ValueStyle
		if selected {
			marker = SelectedStyle.Render("▸ ")
			nameStyle = SelectedStyle
		}

		line := marker +
			nameStyle.Render(pad(p.DisplayName(), nameWidth)) + " " +
			MutedStyle.Render(pad(p.MRN, mrnWidth)) + " " +
			LabelStyle.Render(fmt.Sprintf("%3s", ageText(p, now()))) + "  " +
			ValueStyle.Render(fmt.Sprintf("%2d Rx", p.ActivePrescriptions)) + "  " +
			LabelStyle.Render("next ") + ValueStyle.Render(pickupText(p))

		if !p.HasAlerts() {
			return line
		}
		return line + "\n" + "    " + WarningStyle.Render("! "+strings.Join(p.Alerts, ", "))
	}
}

// pad truncates or right-pads s to exactly width cells.
func pad(s string, width int) string {
	s = lipgloss.NewStyle().MaxWidth(width).Render(s)
	if gap := width - lipgloss.Width(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}

func ageText(p patient.Summary, now time.Time) string {
	age := p.Age(now)
	if age < 0 {
		return noValue
	}
	return strconv.Itoa(age)
}

func pickupText(p patient.Summary) string {
	if p.NextPickup == nil {
		return noValue
	}
	return p.NextPickup.Format(dateLayout)
}

func birthText(p patient.Summary) string {
	if p.BirthDate.IsZero() {
		return noValue
	}
	return p.BirthDate.Format(dateLayout)
}

// RenderPlain writes patients as an aligned text table.
func RenderPlain(w io.Writer, patients []patient.Summary, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, "MRN\tName\tAge\tRx\tNext Pickup\tPharmacy\tAlerts")
	fmt.Fprintln(tw, "---\t----\t---\t--\t-----------\t--------\t------")
	for _, p := range patients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			p.MRN,
			p.DisplayName(),
			ageText(p, now),
			p.ActivePrescriptions,
			pickupText(p),
			orDash(p.Pharmacy),
			orDash(strings.Join(p.Alerts, "; ")),
		)
	}
	return tw.Flush()
}

// RenderStyled writes patients as a bordered lipgloss table sized to width.
func RenderStyled(w io.Writer, patients []patient.Summary, now time.Time, width int) error {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Width(width).
		Headers("MRN", "Name", "Age", "Rx", "Next Pickup", "Alerts").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle.Padding(0, 1)
			}
			return ValueStyle.Padding(0, 1)
		})

	for _, p := range patients {
		t.Row(
			p.MRN,
			p.DisplayName(),
			ageText(p, now),
			strconv.Itoa(p.ActivePrescriptions),
			pickupText(p),
			orDash(strings.Join(p.Alerts, "; ")),
		)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func orDash(s string) string {
	if s == "" {
		return noValue
	}
	return s
}
