package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mharris/quotly/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.state {
	case StateEvidence, StateConfirmReopen, StateTemplateForm:
		return docStyle.Render(m.form.View())
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	switch m.state {
	case StateDay:
		b.WriteString(m.renderDay())
	case StateCalendar:
		b.WriteString(m.renderCalendar())
	case StateTemplate:
		b.WriteString(m.renderTemplate())
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errStyle.Render(m.errMsg))
	} else if m.statusMsg != "" {
		b.WriteString("\n" + statusStyle.Render(m.statusMsg))
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return docStyle.Render(b.String())
}

func (m Model) renderTabs() string {
	labels := []string{"Day", "Calendar", "Template"}
	tabs := make([]string, tabCount)
	for i, label := range labels {
		if int(m.state) == i {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = inactiveTabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderDay() string {
	var b strings.Builder

	title := m.date
	if m.day.Closed() {
		title += " " + closedBadgeStyle.Render("CLOSED")
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	if len(m.day.Items) == 0 {
		b.WriteString(dimStyle.Render("No items recorded for this day.") + "\n")
		return b.String()
	}

	done := 0
	for i, item := range m.day.Items {
		mark := "[ ]"
		if item.Completed {
			mark = "[x]"
			done++
		}
		line := fmt.Sprintf("%s %s", mark, item.Label)

		switch {
		case i == m.cursor:
			line = selectedStyle.Render("> " + line)
		case item.Completed:
			line = doneStyle.Render("  " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line + "\n")

		if item.Completed && item.Evidence != "" {
			b.WriteString(dimStyle.Render("      "+item.Evidence) + "\n")
		}
		if i == m.cursor && item.Why != "" {
			b.WriteString(dimStyle.Render("      why: "+item.Why) + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("\n%d/%d done\n", done, len(m.day.Items)))
	return b.String()
}

func (m Model) renderCalendar() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.month.Format("January 2006")) + "\n\n")
	b.WriteString(dimStyle.Render("Mo Tu We Th Fr Sa Su") + "\n")

	// Monday-first offset for the 1st of the month.
	offset := (int(m.month.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("   ", offset))

	today := time.Now().Format(constants.DateFormat)
	daysInMonth := m.month.AddDate(0, 1, -1).Day()

	col := offset
	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(m.month.Year(), m.month.Month(), d, 0, 0, 0, 0, time.Local)
		key := date.Format(constants.DateFormat)
		cell := fmt.Sprintf("%2d", d)

		if s, ok := m.summaries[key]; ok {
			switch {
			case s.ItemCount > 0 && s.DoneCount == s.ItemCount:
				cell = doneStyle.Render(cell)
			case s.DoneCount > 0:
				cell = statusStyle.Render(cell)
			}
		} else {
			cell = dimStyle.Render(cell)
		}
		if key == today {
			cell = calendarTodayStyle.Render(fmt.Sprintf("%2d", d))
		}
		if date.Equal(m.calCursor) {
			cell = selectedStyle.Render(fmt.Sprintf("%2d", d))
		}

		b.WriteString(cell)
		col++
		if col%7 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	if col%7 != 0 {
		b.WriteString("\n")
	}

	if s, ok := m.summaries[m.calCursor.Format(constants.DateFormat)]; ok {
		b.WriteString(fmt.Sprintf("\n%s: %d/%d done (%s)\n",
			s.Date, s.DoneCount, s.ItemCount, s.Status))
	} else {
		b.WriteString("\n" + dimStyle.Render(m.calCursor.Format(constants.DateFormat)+": no record") + "\n")
	}
	return b.String()
}

func (m Model) renderTemplate() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Template v%d", m.tmpl.Version)) + "\n\n")

	if len(m.tmpl.Items) == 0 {
		b.WriteString(dimStyle.Render("Template is empty. Press 'a' to add an item.") + "\n")
		return b.String()
	}

	for i, item := range m.tmpl.Items {
		line := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == m.tmplCursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		if i == m.tmplCursor && item.DefaultWhy != "" {
			b.WriteString(dimStyle.Render("      why: "+item.DefaultWhy) + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("Changes apply to future days only; existing days keep their snapshots.") + "\n")
	return b.String()
}
