package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/veldrane/dealdeck/internal/models"
)

const detailWidth = 64

// renderDealNotes renders the deal's markdown notes for the detail view.
// Rendering happens once when the view opens, not per frame.
func renderDealNotes(deal models.Deal) string {
	if strings.TrimSpace(deal.Notes) == "" {
		return subtleStyle.Render("No notes.")
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(detailWidth-4),
	)
	if err != nil {
		return deal.Notes
	}
	out, err := r.Render(deal.Notes)
	if err != nil {
		return deal.Notes
	}
	return strings.TrimRight(out, "\n")
}

// renderDetail draws the full-screen deal detail: fields, rendered notes and
// the activity timeline.
func (m Model) renderDetail() string {
	if m.detailDeal == nil {
		return ""
	}
	deal := *m.detailDeal

	var b strings.Builder
	b.WriteString(titleStyle.Render(deal.Name))
	b.WriteString("\n\n")

	writeField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(fmt.Sprintf("%s %s\n", subtleStyle.Render(label+":"), value))
	}
	writeField("Stage", m.detailStageName(deal.StageID))
	writeField("Amount", formatAmount(deal.Amount))
	writeField("Probability", fmt.Sprintf("%d%%", deal.Probability))
	writeField("Status", string(deal.Status))
	if !deal.CloseDate.IsZero() {
		writeField("Close date", deal.CloseDate.Format("2006-01-02"))
	}
	writeField("Company", m.companyName(deal.CompanyID))
	writeField("Contact", m.contactName(deal.ContactID))

	b.WriteString("\n")
	b.WriteString(m.detailRendered)
	b.WriteString("\n\n")
	b.WriteString(stageHeaderStyle.Render("Activity"))
	b.WriteString("\n")
	if len(m.detailActivities) == 0 {
		b.WriteString(subtleStyle.Render("No activity recorded."))
	} else {
		for _, a := range m.detailActivities {
			mark := "[ ]"
			if a.Done {
				mark = "[x]"
			}
			due := ""
			if !a.DueDate.IsZero() {
				due = "  " + subtleStyle.Render(a.DueDate.Format("Jan 2"))
			}
			line := fmt.Sprintf("%s %s  %s%s",
				mark,
				subtleStyle.Render(string(a.Kind)),
				truncate(a.Summary, detailWidth-20),
				due,
			)
			b.WriteString(line + "\n")
		}
	}
	b.WriteString("\n" + subtleStyle.Render("esc to close"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorBorder)).
		Padding(1, 2).
		Width(detailWidth).
		Render(b.String())
	return m.centered(box)
}

func (m Model) detailStageName(stageID string) string {
	if m.visible == nil {
		return stageID
	}
	for _, s := range m.visible.Stages() {
		if s.ID == stageID {
			return s.Name
		}
	}
	return stageID
}

func (m Model) companyName(id string) string {
	for _, c := range m.companies {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (m Model) contactName(id string) string {
	for _, c := range m.contacts {
		if c.ID == id {
			return c.FullName()
		}
	}
	return ""
}
