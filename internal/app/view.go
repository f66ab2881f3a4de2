package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/coach"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/session"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/ui"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	if m.quitting {
		return ""
	}

	snap := m.ctrl.Snapshot()
	var sections []string

	// Header
	sections = append(sections, m.renderHeader(snap))

	// Stage strip
	sections = append(sections, m.renderStageStrip(snap))

	// Divider
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch m.mode {
	case ViewMap:
		sections = append(sections, m.renderMap(snap))
	case ViewHistory:
		sections = append(sections, m.renderHistory())
	default:
		sections = append(sections, m.renderMainContent(snap))
	}

	// Divider
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch {
	case m.confirming:
		sections = append(sections, m.renderConfirm())
	case m.errorMessage != "":
		sections = append(sections, m.renderErrorBar())
	case m.infoMessage != "":
		sections = append(sections, ui.InfoTextStyle.Render(m.infoMessage))
	}

	// Footer
	sections = append(sections, m.help.View(m.keys))

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader(snap session.Snapshot) string {
	title := ui.TitleStyle.Render(tr(m.lang, "app.title"))
	badge := ui.BadgeStyle.Render(" [" + strings.ToUpper(string(m.lang)) + "]")
	timer := ui.StatusStyle.Render("  " + tr(m.lang, "call.timer") + " " + formatClock(snap.CallElapsed))

	backend := tr(m.lang, "coach.off")
	if m.coach.Configured() {
		backend = m.coach.Backend()
	}
	coachInfo := ui.DimStyle.Render("  · " + backend)

	return title + badge + timer + coachInfo
}

func (m Model) renderStageStrip(snap session.Snapshot) string {
	done := make(map[string]bool, len(snap.Completed))
	for _, id := range snap.Completed {
		done[id] = true
	}

	var parts []string
	for i, st := range m.catalog.Stages() {
		label := fmt.Sprintf("%d %s", i+1, st.Title.Get(m.lang))
		if d, ok := st.Target(); ok {
			label += " " + formatClock(d)
		}
		switch {
		case i == snap.Index:
			parts = append(parts, ui.StageActiveStyle.Render(label))
		case done[st.ID]:
			parts = append(parts, ui.StageDoneStyle.Render("✓ "+label))
		default:
			parts = append(parts, ui.StagePendingStyle.Render(label))
		}
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(strings.Join(parts, ui.DimStyle.Render("›")))
}

func (m Model) renderMainContent(snap session.Snapshot) string {
	scriptW := m.scriptPanelWidth()
	sideW := m.sidePanelWidth()
	contentH := m.contentHeight()

	scriptPanel := m.renderScriptPanel(snap, scriptW, contentH)

	notesH := contentH / 2
	sidePanel := m.renderNotesPanel(snap, sideW, notesH) + "\n" +
		m.renderCoachPanel(sideW, contentH-notesH)

	return joinColumns(scriptPanel, sidePanel, scriptW, contentH)
}

// joinColumns places two rendered panels side by side.
func joinColumns(left, right string, leftW, height int) string {
	divider := ui.DividerStyle.Render("│")

	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")

	// Pad to same height
	for len(leftLines) < height {
		leftLines = append(leftLines, strings.Repeat(" ", leftW))
	}
	for len(rightLines) < height {
		rightLines = append(rightLines, "")
	}

	rows := make([]string, 0, height)
	for i := 0; i < height; i++ {
		rows = append(rows, padRight(leftLines[i], leftW)+divider+rightLines[i])
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderScriptPanel(snap session.Snapshot, width, height int) string {
	st := snap.Stage

	header := fmt.Sprintf("%s · "+tr(m.lang, "script.stageOf"), tr(m.lang, "script.title"), snap.Index+1, m.catalog.Len())
	if m.focus == FocusScript {
		header = ui.PanelTitleActiveStyle.Render(header)
	} else {
		header = ui.PanelTitleStyle.Render(header)
	}

	var lines []string
	lines = append(lines, header, "")
	lines = append(lines, ui.SelectedStyle.Render(truncateToWidth(st.Title.Get(m.lang), width-2)))
	for _, wl := range wrapText(st.Description.Get(m.lang), max(10, width-2)) {
		if wl != "" {
			lines = append(lines, ui.DimStyle.Render(wl))
		}
	}
	lines = append(lines, "")

	// Stage timer
	elapsed := ui.TimerStyle.Render(formatClock(snap.Elapsed))
	if snap.OverTarget {
		elapsed = ui.TimerOverStyle.Render(formatClock(snap.Elapsed))
	}
	target := tr(m.lang, "script.noTarget")
	if d, ok := st.Target(); ok {
		target = formatClock(d)
	}
	lines = append(lines, elapsed+ui.DimStyle.Render(" / "+tr(m.lang, "script.target")+": "+target), "")

	// Points
	checked := make(map[string]bool, len(snap.Checked))
	for _, id := range snap.Checked {
		checked[id] = true
	}
	textW := max(10, width-8)
	for i, p := range st.Points {
		box := "[ ]"
		if checked[p.ID] {
			box = ui.CheckedStyle.Render("[x]")
		}
		cursor := "  "
		if m.focus == FocusScript && i == m.cursor {
			cursor = ui.SelectedStyle.Render("> ")
		}
		mark := " "
		if p.Checklist {
			mark = ui.ChecklistMarkStyle.Render("!")
		}

		wrapped := wrapText(p.Text.Get(m.lang), textW)
		first := wrapped[0]
		if checked[p.ID] {
			first = ui.CheckedStyle.Render(first)
		}
		lines = append(lines, cursor+box+mark+" "+first)
		for _, wl := range wrapped[1:] {
			if checked[p.ID] {
				wl = ui.CheckedStyle.Render(wl)
			}
			lines = append(lines, strings.Repeat(" ", 7)+wl)
		}
	}

	// Navigation hints pinned to the bottom
	prev := "← " + tr(m.lang, "script.prev")
	if m.ctrl.IsFirst() {
		prev = ui.DividerStyle.Render(prev)
	} else {
		prev = ui.DimStyle.Render(prev)
	}
	next := ui.SelectedStyle.Render(tr(m.lang, "script.next") + " →")
	if m.ctrl.IsLast() {
		next = ui.CheckedStyle.Render(tr(m.lang, "script.finish") + " ✓")
	}
	nav := prev + "   " + next

	if len(lines) > height-1 {
		lines = lines[:height-1]
	}
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, nav)

	for i, l := range lines {
		lines[i] = padRight(l, width)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderNotesPanel(snap session.Snapshot, width, height int) string {
	title := tr(m.lang, "notes.title")
	if m.focus == FocusNotes {
		title = ui.PanelTitleActiveStyle.Render(title)
	} else {
		title = ui.PanelTitleStyle.Render(title)
	}

	var status string
	switch ns := snap.NoteStatus; {
	case ns.Saving:
		status = ui.SpinnerStyle.Render(tr(m.lang, "notes.saving"))
	case ns.Err != nil:
		status = ui.ErrorTextStyle.Render(tr(m.lang, "notes.failed"))
	case ns.Dirty:
		status = ui.DimStyle.Render(tr(m.lang, "notes.unsaved"))
	default:
		status = ui.CheckedStyle.Render(tr(m.lang, "notes.saved"))
	}

	lines := []string{title + "  " + status}
	if snap.LoadErr != nil {
		lines = append(lines, ui.ErrorTextStyle.Render(truncateToWidth(tr(m.lang, "notes.loadFailed"), width)))
	}
	lines = append(lines, strings.Split(m.notes.View(), "\n")...)

	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCoachPanel(width, height int) string {
	title := tr(m.lang, "coach.title")
	if m.focus == FocusCoach {
		title = ui.PanelTitleActiveStyle.Render(title)
	} else {
		title = ui.PanelTitleStyle.Render(title)
	}

	textW := max(10, width-2)
	var logLines []string
	for _, e := range m.coachLog {
		var label, text string
		switch e.role {
		case roleWelcome:
			label = ui.CoachLabelStyle.Render(tr(m.lang, "coach.coach") + ": ")
			text = m.welcomeText()
		case roleUser:
			label = ui.UserLabelStyle.Render(tr(m.lang, "coach.you") + ": ")
			text = e.text
		default:
			label = ui.CoachLabelStyle.Render(tr(m.lang, "coach.coach") + ": ")
			text = e.text
		}
		wrapped := wrapText(text, textW-lipgloss.Width(label))
		logLines = append(logLines, label+wrapped[0])
		for _, wl := range wrapped[1:] {
			logLines = append(logLines, "  "+wl)
		}
	}
	if m.coachPending {
		logLines = append(logLines, ui.SpinnerStyle.Render(tr(m.lang, "coach.thinking")))
	}

	// Keep the most recent exchange in view.
	logH := max(1, height-2)
	if len(logLines) > logH {
		logLines = logLines[len(logLines)-logH:]
	}

	lines := []string{title}
	lines = append(lines, logLines...)
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, m.input.View())
	return strings.Join(lines, "\n")
}

func (m Model) renderMap(snap session.Snapshot) string {
	contentH := m.contentHeight()
	done := make(map[string]bool, len(snap.Completed))
	for _, id := range snap.Completed {
		done[id] = true
	}

	lines := []string{ui.PanelTitleActiveStyle.Render(tr(m.lang, "map.title")), ""}
	for i, st := range m.catalog.Stages() {
		marker := ui.StagePendingStyle.Render("○")
		switch {
		case i == snap.Index:
			marker = ui.TimerStyle.Render("●")
		case done[st.ID]:
			marker = ui.CheckedStyle.Render("✓")
		}

		line := fmt.Sprintf("%d. %s", i+1, st.Title.Get(m.lang))
		if i == m.mapCursor {
			line = ui.SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		target := tr(m.lang, "script.noTarget")
		if d, ok := st.Target(); ok {
			target = formatClock(d)
		}
		lines = append(lines, marker+" "+line+ui.DimStyle.Render("  ("+target+")"))
		if desc := st.Description.Get(m.lang); desc != "" {
			lines = append(lines, ui.DimStyle.Render("      "+truncateToWidth(desc, max(10, m.width-8))))
		}
	}
	lines = append(lines, "", ui.DimStyle.Render(tr(m.lang, "map.hint")))

	if len(lines) > contentH {
		lines = lines[:contentH]
	}
	for len(lines) < contentH {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHistory() string {
	contentH := m.contentHeight()
	leftW := max(20, m.width/2)

	var left string
	switch {
	case m.historyLoading && m.historyRecords == nil:
		left = ui.PanelTitleActiveStyle.Render(tr(m.lang, "history.title")) + "\n\n" +
			ui.DimStyle.Render("  "+tr(m.lang, "history.loading"))
	case len(m.historyRecords) == 0:
		left = ui.PanelTitleActiveStyle.Render(tr(m.lang, "history.title")) + "\n\n" +
			ui.DimStyle.Render("  "+tr(m.lang, "history.empty"))
	default:
		left = m.historyList.View()
	}

	return joinColumns(left, m.renderHistoryDetail(max(10, m.width-leftW-1), contentH), leftW, contentH)
}

func (m Model) renderHistoryDetail(width, height int) string {
	item, ok := m.historyList.SelectedItem().(historyItem)
	if !ok {
		return ""
	}
	rec := item.rec

	lines := []string{
		ui.PanelTitleStyle.Render(rec.Date.Local().Format("Mon 2006-01-02 15:04")),
		ui.TimerStyle.Render(formatClock(time.Duration(rec.Duration) * time.Second)),
		"",
	}
	for _, id := range rec.CompletedStages {
		title := id
		if st, err := m.catalog.Stage(id); err == nil {
			title = st.Title.Get(m.lang)
		}
		lines = append(lines, ui.CheckedStyle.Render("✓ ")+title)
	}
	lines = append(lines, "")

	if strings.TrimSpace(rec.Notes) == "" {
		lines = append(lines, ui.DimStyle.Render(tr(m.lang, "history.noNotes")))
	} else {
		lines = append(lines, wrapText(rec.Notes, max(10, width-2))...)
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderConfirm() string {
	return ui.ConfirmStyle.Render(tr(m.lang, "confirm.newCall")) + "  " +
		ui.DimStyle.Render(tr(m.lang, "confirm.keys"))
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render(tr(m.lang, "error.prefix")) + ui.ErrorTextStyle.Render(m.errorMessage)
}

// welcomeText is the coach's greeting in the current language.
func (m Model) welcomeText() string {
	return coach.WelcomeMessage(m.lang)
}

// Helpers

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	// Simple truncation for non-styled strings
	runes := []rune(s)
	if len(runes) > width-1 && width > 1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
