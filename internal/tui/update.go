package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/mharris/quotly/internal/constants"
	"github.com/mharris/quotly/internal/storage"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateDay:
			return m.updateDay(msg)
		case StateCalendar:
			return m.updateCalendar(msg)
		case StateTemplate:
			return m.updateTemplate(msg)
		}
	}

	switch m.state {
	case StateEvidence:
		return m.updateEvidenceForm(msg)
	case StateConfirmReopen:
		return m.updateReopenConfirm(msg)
	case StateTemplateForm:
		return m.updateTemplateForm(msg)
	}
	return m, nil
}

func (m Model) updateDay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		m.state = StateCalendar
		m.loadSummaries()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.day.Items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.PrevDay):
		m.shiftDay(-1)

	case key.Matches(msg, m.keys.NextDay):
		m.shiftDay(1)

	case key.Matches(msg, m.keys.Enter):
		if len(m.day.Items) == 0 {
			break
		}
		item := m.day.Items[m.cursor]
		if m.day.Closed() {
			m.errMsg = storage.ErrDayClosed.Error()
			break
		}
		if item.Completed {
			if _, err := m.service.UncheckItem(m.day.ID, item.ID); err != nil {
				m.errMsg = err.Error()
			} else {
				m.loadDay(m.date)
			}
		} else {
			m.startEvidenceForm(item)
			return m, m.form.Init()
		}

	case key.Matches(msg, m.keys.CloseDay):
		day, err := m.service.CloseDay(m.date)
		if err != nil {
			m.errMsg = err.Error()
			break
		}
		m.day = day
		m.statusMsg = "Day closed"

	case key.Matches(msg, m.keys.Reopen):
		if !m.day.Closed() {
			break
		}
		m.startReopenConfirm()
		return m, m.form.Init()
	}

	return m, nil
}

func (m *Model) shiftDay(delta int) {
	t, err := time.Parse(constants.DateFormat, m.date)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	next := t.AddDate(0, 0, delta).Format(constants.DateFormat)
	if next > time.Now().Format(constants.DateFormat) {
		// Future days are not snapshotted ahead of time.
		return
	}
	if next == time.Now().Format(constants.DateFormat) {
		m.loadDay(next)
	} else {
		m.viewDate(next)
	}
}

func (m Model) updateCalendar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		m.state = StateTemplate
		m.loadTemplate()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.PrevDay):
		m.moveCalCursor(-1)

	case key.Matches(msg, m.keys.NextDay):
		m.moveCalCursor(1)

	case key.Matches(msg, m.keys.Up):
		m.moveCalCursor(-7)

	case key.Matches(msg, m.keys.Down):
		m.moveCalCursor(7)

	case msg.String() == "pgup":
		m.setMonth(m.month.AddDate(0, -1, 0))

	case msg.String() == "pgdown":
		m.setMonth(m.month.AddDate(0, 1, 0))

	case key.Matches(msg, m.keys.Enter):
		date := m.calCursor.Format(constants.DateFormat)
		if date > time.Now().Format(constants.DateFormat) {
			break
		}
		if date == time.Now().Format(constants.DateFormat) {
			m.loadDay(date)
		} else {
			m.viewDate(date)
		}
		m.state = StateDay
	}

	return m, nil
}

func (m *Model) moveCalCursor(days int) {
	next := m.calCursor.AddDate(0, 0, days)
	if next.Month() != m.month.Month() || next.Year() != m.month.Year() {
		m.setMonth(next)
	}
	m.calCursor = next
}

func (m Model) updateTemplate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMsg = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Tab):
		m.state = StateDay
		m.loadDay(m.date)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		if m.tmplCursor > 0 {
			m.tmplCursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.tmplCursor < len(m.tmpl.Items)-1 {
			m.tmplCursor++
		}

	case key.Matches(msg, m.keys.Add):
		m.startTemplateForm(nil)
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.tmpl.Items) == 0 {
			break
		}
		item := m.tmpl.Items[m.tmplCursor]
		m.startTemplateForm(&item)
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.tmpl.Items) == 0 {
			break
		}
		if _, err := m.templates.RemoveItem(m.tmpl.Items[m.tmplCursor].Label); err != nil {
			m.errMsg = err.Error()
		} else {
			m.statusMsg = "Item removed; existing days keep their snapshots"
			m.loadTemplate()
		}

	case key.Matches(msg, m.keys.MoveUp):
		m.swapTemplateItems(m.tmplCursor, m.tmplCursor-1)

	case key.Matches(msg, m.keys.MoveDown):
		m.swapTemplateItems(m.tmplCursor, m.tmplCursor+1)
	}

	return m, nil
}

func (m *Model) swapTemplateItems(i, j int) {
	if i < 0 || j < 0 || i >= len(m.tmpl.Items) || j >= len(m.tmpl.Items) {
		return
	}
	labels := make([]string, len(m.tmpl.Items))
	for k, item := range m.tmpl.Items {
		labels[k] = item.Label
	}
	labels[i], labels[j] = labels[j], labels[i]

	if _, err := m.templates.ReorderItems(labels); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.tmplCursor = j
	m.loadTemplate()
}

func (m Model) updateEvidenceForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = StateDay
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		item := m.day.Items[m.cursor]
		_, err := m.service.ToggleItem(m.day.ID, item.ID, m.evidenceForm.Evidence, m.evidenceForm.Why)
		if err != nil {
			m.errMsg = err.Error()
		} else {
			m.statusMsg = "Completed " + item.Label
			m.loadDay(m.date)
		}
		m.state = StateDay
	case huh.StateAborted:
		m.state = StateDay
	}
	return m, cmd
}

func (m Model) updateReopenConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = StateDay
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		day, err := m.service.ReopenDay(m.date, m.confirmReopen)
		if err != nil {
			m.errMsg = err.Error()
		} else {
			m.day = day
			if m.confirmReopen {
				m.statusMsg = "Day reopened"
			}
		}
		m.state = StateDay
	case huh.StateAborted:
		m.state = StateDay
	}
	return m, cmd
}

func (m Model) updateTemplateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = StateTemplate
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var err error
		if m.editingLabel != "" {
			err = m.applyTemplateEdit()
		} else {
			_, err = m.templates.AddItem(m.templateForm.Label, m.templateForm.Why)
		}
		if err != nil {
			m.errMsg = err.Error()
		} else {
			m.statusMsg = "Template updated"
			m.loadTemplate()
		}
		m.state = StateTemplate
	case huh.StateAborted:
		m.state = StateTemplate
	}
	return m, cmd
}

func (m *Model) applyTemplateEdit() error {
	newLabel := m.templateForm.Label
	newWhy := m.templateForm.Why
	_, err := m.templates.EditItem(m.editingLabel, &newLabel, &newWhy)
	return err
}
