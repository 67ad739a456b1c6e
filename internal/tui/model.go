package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/mharris/quotly/internal/constants"
	"github.com/mharris/quotly/internal/models"
	"github.com/mharris/quotly/internal/quota"
	"github.com/mharris/quotly/internal/template"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateCalendar
	StateTemplate
	StateEvidence
	StateConfirmReopen
	StateTemplateForm
)

// tabCount covers the three navigable tabs; the form states overlay them.
const tabCount = 3

type EvidenceForm struct {
	Evidence string
	Why      string
}

type TemplateForm struct {
	Label string
	Why   string
}

type Model struct {
	service   *quota.Service
	templates *template.Manager

	state SessionState
	keys  KeyMap
	help  help.Model

	// Day tab
	date   string
	day    models.Day
	cursor int

	// Calendar tab
	month     time.Time // first of the displayed month
	calCursor time.Time
	summaries map[string]models.DaySummary

	// Template tab
	tmpl       models.Template
	tmplCursor int

	// Overlay forms
	form          *huh.Form
	evidenceForm  *EvidenceForm
	templateForm  *TemplateForm
	editingLabel  string // set when templateForm edits instead of adds
	confirmReopen bool

	statusMsg string
	errMsg    string

	width    int
	height   int
	quitting bool
}

func NewModel(service *quota.Service, templates *template.Manager) Model {
	today := time.Now().Format(constants.DateFormat)

	m := Model{
		service:   service,
		templates: templates,
		state:     StateDay,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		date:      today,
	}
	m.loadDay(today)
	m.loadTemplate()
	m.setMonth(time.Now())
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m *Model) loadDay(date string) {
	day, err := m.service.EnsureDay(date)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.date = date
	m.day = day
	if m.cursor >= len(day.Items) {
		m.cursor = 0
	}
	m.errMsg = ""
}

// viewDay reads without creating, for browsing past dates from the
// calendar. Dates without a day row show as empty.
func (m *Model) viewDate(date string) {
	day, err := m.service.GetDay(date)
	if err != nil {
		// No day recorded yet; EnsureDay would snapshot it, which browsing
		// should not do. Show it empty instead.
		m.date = date
		m.day = models.Day{Date: date, Status: models.DayStatusOpen}
		m.cursor = 0
		m.errMsg = ""
		return
	}
	m.date = date
	m.day = day
	m.cursor = 0
	m.errMsg = ""
}

func (m *Model) loadTemplate() {
	tmpl, err := m.templates.Current()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.tmpl = tmpl
	if m.tmplCursor >= len(tmpl.Items) {
		m.tmplCursor = 0
	}
}

func (m *Model) setMonth(t time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.Local)
	m.month = first
	m.calCursor = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
	m.loadSummaries()
}

func (m *Model) loadSummaries() {
	start := m.month.Format(constants.DateFormat)
	end := m.month.AddDate(0, 1, -1).Format(constants.DateFormat)

	summaries, err := m.service.ListDays(start, end)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.summaries = make(map[string]models.DaySummary, len(summaries))
	for _, s := range summaries {
		m.summaries[s.Date] = s
	}
}

func (m *Model) startEvidenceForm(item models.QuotaItem) {
	m.evidenceForm = &EvidenceForm{Why: item.Why}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Evidence for "+item.Label).
				Description("What did you actually do?").
				Value(&m.evidenceForm.Evidence),
			huh.NewInput().
				Title("Why (optional)").
				Value(&m.evidenceForm.Why),
		),
	)
	m.state = StateEvidence
}

func (m *Model) startReopenConfirm() {
	m.confirmReopen = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reopen " + m.date + "?").
				Description("The day will become editable again.").
				Value(&m.confirmReopen),
		),
	)
	m.state = StateConfirmReopen
}

func (m *Model) startTemplateForm(edit *models.TemplateItem) {
	m.templateForm = &TemplateForm{}
	m.editingLabel = ""
	title := "New template item"
	if edit != nil {
		m.templateForm.Label = edit.Label
		m.templateForm.Why = edit.DefaultWhy
		m.editingLabel = edit.Label
		title = "Edit " + edit.Label
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Label").
				Value(&m.templateForm.Label),
			huh.NewInput().
				Title("Default why (optional)").
				Value(&m.templateForm.Why),
		),
	)
	m.state = StateTemplateForm
}
