package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	boardmodel "github.com/veldrane/dealdeck/internal/board"
	"github.com/veldrane/dealdeck/internal/models"
)

// View renders the current mode. The board view draws with the exact
// dimensions in layout.go so pointer coordinates map onto the regions the
// interpreter holds.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.mode {
	case modeForm:
		if m.form != nil {
			return m.centered(m.form.View())
		}
	case modeDetail:
		return m.renderDetail()
	case modeHelp:
		return m.centered(m.renderHelp())
	case modeConfirmDelete:
		return m.centered(m.renderConfirmDelete())
	}
	return m.renderBoard()
}

func (m Model) centered(content string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderBoard() string {
	if m.loadErr != nil && m.visible == nil {
		return m.centered(subtleStyle.Render("Could not load board: " + m.loadErr.Error() + "\n\nPress r to retry, q to quit"))
	}
	if m.visible == nil {
		return m.centered(m.spin.View() + " Loading pipeline...")
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderColumns())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	p, _ := m.currentPipeline()
	title := titleStyle.Render(p.Name)
	if len(m.pipelines) > 1 {
		title += subtleStyle.Render(fmt.Sprintf("  (%d/%d)", m.pipelineIdx+1, len(m.pipelines)))
	}
	return title
}

func (m Model) renderColumns() string {
	stages := m.visible.Stages()
	statsByStage := make(map[string]boardmodel.StageStats)
	for _, s := range m.rec.Stats() {
		statsByStage[s.StageID] = s
	}

	var cols []string
	for i := m.stageOffset; i < len(stages) && i-m.stageOffset < m.visibleStageCount(); i++ {
		cols = append(cols, m.renderColumn(i, stages[i], statsByStage[stages[i].ID]))
		if i < len(stages)-1 {
			cols = append(cols, strings.Repeat(" ", columnGap))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderColumn(idx int, stage models.Stage, stats boardmodel.StageStats) string {
	interior := columnWidth - 2
	ids := m.visible.DealIDs(stage.ID)

	// Truncate before styling; styled text carries escape sequences that a
	// rune cut would corrupt.
	statsText := fmt.Sprintf(" %d · %s", stats.Deals, formatAmount(stats.Amount))
	nameWidth := interior - len([]rune(statsText))
	header := stageHeaderStyle.Render(truncate(stage.Name, nameWidth)) +
		subtleStyle.Render(statsText)

	var rows []string
	rows = append(rows, header)

	scroll := m.cardScroll[stage.ID]
	maxCards := m.maxVisibleCards()
	for j := scroll; j < len(ids) && j-scroll < maxCards; j++ {
		deal, ok := m.visible.Deal(ids[j])
		if !ok {
			continue
		}
		selected := idx == m.selStage && j == m.selDeal
		rows = append(rows, m.renderCard(deal, selected))
	}
	if len(ids) > scroll+maxCards {
		rows = append(rows, subtleStyle.Render(fmt.Sprintf("  +%d more", len(ids)-scroll-maxCards)))
	}

	style := columnStyle
	switch {
	case m.isDropTarget(stage.ID):
		style = dropTargetColumnStyle
	case idx == m.selStage:
		style = selectedColumnStyle
	}
	return style.
		Width(interior).
		Height(m.columnHeight() - 2).
		Render(strings.Join(rows, "\n"))
}

// isDropTarget reports whether the stage should be highlighted as the current
// drop destination, for either gesture path.
func (m Model) isDropTarget(stageID string) bool {
	if m.hoverStage == stageID {
		return true
	}
	if _, target, ok := m.interp.Grabbed(); ok && target == stageID {
		return true
	}
	return false
}

func (m Model) renderCard(deal models.Deal, selected bool) string {
	interior := columnWidth - 6

	grabbedID, _, grabbed := m.interp.Grabbed()
	draggedID, dragging := m.interp.Dragging()
	pending := m.rec.PendingFor(deal.ID)

	name := truncate(deal.Name, interior)
	meta := truncate(fmt.Sprintf("%s · %d%%", formatAmount(deal.Amount), deal.Probability), interior)
	var third string
	if pending {
		third = m.spin.View() + subtleStyle.Render(" saving")
	} else {
		text := string(deal.Status)
		if !deal.CloseDate.IsZero() {
			text = deal.CloseDate.Format("Jan 2")
		}
		third = subtleStyle.Render(truncate(text, interior))
	}
	body := name + "\n" + meta + "\n" + third

	style := cardStyle
	switch {
	case pending:
		style = pendingCardStyle
	case selected, grabbed && grabbedID == deal.ID, dragging && draggedID == deal.ID:
		style = selectedCardStyle
	}
	return style.
		Width(columnWidth - 4).
		Height(cardHeight - 2).
		Render(body)
}

func (m Model) renderFooter() string {
	if len(m.notifications) > 0 {
		return renderNotification(m.notifications[0])
	}

	keys := m.cfg.KeyMappings
	var parts []string
	if m.mode == modeGrabbed {
		parts = append(parts,
			keys.PrevStage+"/"+keys.NextStage+" target",
			keys.DropDeal+" drop",
			keys.CancelGrab+" cancel",
		)
	} else {
		parts = append(parts,
			keys.AddDeal+" add",
			keys.GrabDeal+" move",
			"space view",
			keys.ShowHelp+" help",
			keys.Quit+" quit",
		)
		if n := m.rec.PendingCount(); n > 0 {
			parts = append(parts, fmt.Sprintf("%s %d saving", m.spin.View(), n))
		}
	}
	return statusBarStyle.MaxWidth(m.width).Render(strings.Join(parts, "  •  "))
}

func (m Model) renderConfirmDelete() string {
	deal, ok := m.selectedDeal()
	if !ok {
		return ""
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorErrorFg)).
		Padding(1, 2).
		Render(fmt.Sprintf("Delete %q?\n\n", deal.Name) +
			subtleStyle.Render("y/enter to delete, any other key to cancel"))
}

func (m Model) renderHelp() string {
	keys := m.cfg.KeyMappings
	rows := [][2]string{
		{keys.PrevStage + "/" + keys.NextStage, "previous / next stage"},
		{keys.PrevDeal + "/" + keys.NextDeal, "previous / next deal"},
		{keys.PrevPipeline + "/" + keys.NextPipeline, "switch pipeline"},
		{keys.GrabDeal, "grab deal for keyboard move"},
		{keys.DropDeal, "drop grabbed deal"},
		{keys.CancelGrab, "cancel grab"},
		{keys.AddDeal, "add deal"},
		{keys.EditDeal, "edit deal"},
		{keys.DeleteDeal, "delete deal"},
		{"space", "view deal details"},
		{keys.Refresh, "refresh board"},
		{keys.Quit, "quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %-8s %s\n", r[0], subtleStyle.Render(r[1])))
	}
	b.WriteString("\n" + subtleStyle.Render("Drag cards with the mouse to move them between stages."))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(colorBorder)).
		Padding(1, 2).
		Render(b.String())
}

// truncate cuts a string to at most n runes, with an ellipsis when cut.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
