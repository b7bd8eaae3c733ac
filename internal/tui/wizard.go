package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reslab-bio/omics-console/internal/models"
	"github.com/reslab-bio/omics-console/internal/notify"
	"github.com/reslab-bio/omics-console/internal/wizard"
)

type searchResultsMsg []models.Organism

type tissuesLoadedMsg struct{ err error }

type opDoneMsg struct{ err error }

type notifMsg notify.Notification

// WizardModel drives the six-step registration flow in the terminal. All
// flow rules live in the wizard package; this model only collects input and
// renders state.
type WizardModel struct {
	wiz      *wizard.Wizard
	searcher *wizard.Searcher

	searchInput   textinput.Model
	codeInput     textinput.Model
	dateInput     textinput.Model
	fileInput     textinput.Model
	spin          spinner.Model
	cursor        int
	focusIndex    int
	dataTypeIdx   int
	fileTypeIdx   int
	results       []models.Organism
	resultCh      chan []models.Organism
	notifications <-chan notify.Notification
	lastNotif     *notify.Notification
	busy          bool
	quitting      bool
}

// WizardModelParams groups constructor dependencies.
type WizardModelParams struct {
	Wizard        *wizard.Wizard
	Searcher      *wizard.Searcher
	ResultCh      chan []models.Organism
	Notifications <-chan notify.Notification
}

// NewWizardModel builds the terminal model around a prepared wizard.
func NewWizardModel(params WizardModelParams) *WizardModel {
	search := textinput.New()
	search.Placeholder = "type at least 2 characters"
	search.CharLimit = 80

	code := textinput.New()
	code.Placeholder = "e.g. OS-001"
	code.CharLimit = 64

	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD (optional)"
	date.CharLimit = 10

	file := textinput.New()
	file.Placeholder = "path to data file"
	file.CharLimit = 255

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	defaultIdx := 0
	for i, dt := range models.DataTypes {
		if dt == models.DataTypeRNA {
			defaultIdx = i
		}
	}

	return &WizardModel{
		wiz:           params.Wizard,
		searcher:      params.Searcher,
		searchInput:   search,
		codeInput:     code,
		dateInput:     date,
		fileInput:     file,
		spin:          spin,
		dataTypeIdx:   defaultIdx,
		resultCh:      params.ResultCh,
		notifications: params.Notifications,
	}
}

// Init implements tea.Model.
func (m *WizardModel) Init() tea.Cmd {
	return tea.Batch(m.awaitResults(), m.awaitNotification())
}

func (m *WizardModel) awaitResults() tea.Cmd {
	if m.resultCh == nil {
		return nil
	}
	return func() tea.Msg {
		organisms, ok := <-m.resultCh
		if !ok {
			return nil
		}
		return searchResultsMsg(organisms)
	}
}

func (m *WizardModel) awaitNotification() tea.Cmd {
	if m.notifications == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-m.notifications
		if !ok {
			return nil
		}
		return notifMsg(n)
	}
}

// Update implements tea.Model.
func (m *WizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		m.results = msg
		if m.cursor >= len(m.results) {
			m.cursor = 0
		}
		return m, m.awaitResults()

	case notifMsg:
		n := notify.Notification(msg)
		m.lastNotif = &n
		return m, m.awaitNotification()

	case tissuesLoadedMsg:
		m.busy = false
		return m, nil

	case opDoneMsg:
		m.busy = false
		m.syncInputs()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *WizardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.wiz.Step() {
	case wizard.StepKingdom:
		return m.updateKingdom(msg)
	case wizard.StepOrganism:
		return m.updateOrganism(msg)
	case wizard.StepTissue:
		return m.updateTissue(msg)
	case wizard.StepMetadata:
		return m.updateMetadata(msg)
	case wizard.StepUpload:
		return m.updateUpload(msg)
	default:
		return m.updateDone(msg)
	}
}

func (m *WizardModel) updateKingdom(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(models.Kingdoms)-1 {
			m.cursor++
		}
	case "enter":
		if err := m.wiz.SelectKingdom(models.Kingdoms[m.cursor]); err == nil {
			_ = m.wiz.Next()
			m.cursor = 0
			m.results = nil
			m.searchInput.SetValue("")
			m.searchInput.Focus()
		}
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *WizardModel) updateOrganism(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.wiz.Back()
		m.cursor = 0
		return m, nil
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down":
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if m.cursor < len(m.results) {
			if err := m.wiz.SelectOrganism(m.results[m.cursor]); err == nil {
				_ = m.wiz.Next()
				m.cursor = 0
				m.busy = true
				return m, tea.Batch(m.spin.Tick, m.loadTissues())
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searcher.Input(context.Background(), m.searchInput.Value(), m.wiz.Kingdom())
	return m, cmd
}

func (m *WizardModel) loadTissues() tea.Cmd {
	return func() tea.Msg {
		return tissuesLoadedMsg{err: m.wiz.LoadTissues(context.Background())}
	}
}

func (m *WizardModel) updateTissue(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tissues := m.wiz.Tissues()
	switch msg.String() {
	case "esc":
		m.wiz.Back()
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(tissues)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(tissues) {
			if err := m.wiz.SelectTissue(tissues[m.cursor].ID); err == nil {
				_ = m.wiz.Next()
				m.focusIndex = 0
				m.codeInput.Focus()
			}
		}
	}
	return m, nil
}

func (m *WizardModel) updateMetadata(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.wiz.Back()
		return m, nil
	case "tab", "shift+tab":
		if msg.String() == "tab" {
			m.focusIndex = (m.focusIndex + 1) % 3
		} else {
			m.focusIndex = (m.focusIndex + 2) % 3
		}
		m.codeInput.Blur()
		m.dateInput.Blur()
		switch m.focusIndex {
		case 0:
			m.codeInput.Focus()
		case 2:
			m.dateInput.Focus()
		}
		return m, nil
	case "left", "right":
		if m.focusIndex == 1 {
			if msg.String() == "right" {
				m.dataTypeIdx = (m.dataTypeIdx + 1) % len(models.DataTypes)
			} else {
				m.dataTypeIdx = (m.dataTypeIdx + len(models.DataTypes) - 1) % len(models.DataTypes)
			}
		}
		return m, nil
	case "enter":
		m.wiz.SetForm(wizard.MetadataForm{
			SampleCode:  m.codeInput.Value(),
			DataType:    models.DataTypes[m.dataTypeIdx],
			CollectedOn: m.dateInput.Value(),
		})
		m.busy = true
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			return opDoneMsg{err: m.wiz.SaveSample(context.Background())}
		})
	}

	var cmd tea.Cmd
	switch m.focusIndex {
	case 0:
		m.codeInput, cmd = m.codeInput.Update(msg)
	case 2:
		m.dateInput, cmd = m.dateInput.Update(msg)
	}
	return m, cmd
}

func (m *WizardModel) updateUpload(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.fileTypeIdx = (m.fileTypeIdx + 1) % len(models.FileTypes)
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.fileInput.Value())
		m.busy = true
		return m, tea.Batch(m.spin.Tick, m.uploadCmd(path, models.FileTypes[m.fileTypeIdx]))
	}

	if !m.fileInput.Focused() {
		m.fileInput.Focus()
	}
	var cmd tea.Cmd
	m.fileInput, cmd = m.fileInput.Update(msg)
	return m, cmd
}

func (m *WizardModel) uploadCmd(path string, fileType models.FileType) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return opDoneMsg{err: m.wiz.UploadFile(context.Background(), fileType, "", nil)}
		}
		f, err := os.Open(path)
		if err != nil {
			return opDoneMsg{err: m.wiz.UploadFile(context.Background(), fileType, "", nil)}
		}
		defer f.Close() //nolint:errcheck
		return opDoneMsg{err: m.wiz.UploadFile(context.Background(), fileType, filepathBase(path), f)}
	}
}

func (m *WizardModel) updateDone(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "f":
		m.busy = true
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			m.wiz.RunFastQC(context.Background())
			return opDoneMsg{}
		})
	case "r":
		m.wiz.Reset()
		m.syncInputs()
		return m, nil
	case "q", "enter":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *WizardModel) syncInputs() {
	if m.wiz.Step() == wizard.StepKingdom {
		m.cursor = 0
		m.results = nil
		m.searchInput.SetValue("")
		m.codeInput.SetValue("")
		m.dateInput.SetValue("")
		m.fileInput.SetValue("")
	}
}

// View implements tea.Model.
func (m *WizardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Register sample") + "\n")
	b.WriteString(stepStyle.Render(fmt.Sprintf("step %d of 6", m.wiz.Step())) + "\n\n")

	switch m.wiz.Step() {
	case wizard.StepKingdom:
		b.WriteString("Select a kingdom:\n\n")
		for i, kingdom := range models.Kingdoms {
			line := "  " + string(kingdom)
			if i == m.cursor {
				line = selectedStyle.Render("> " + string(kingdom))
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(helpStyle.Render("enter select · q quit"))

	case wizard.StepOrganism:
		b.WriteString(fmt.Sprintf("Search %s organisms:\n\n", strings.ToLower(string(m.wiz.Kingdom()))))
		b.WriteString(m.searchInput.View() + "\n\n")
		if len(m.results) == 0 {
			b.WriteString(dimStyle.Render("  no matches yet") + "\n")
		}
		for i, organism := range m.results {
			label := organism.ScientificName
			if organism.CommonName != "" {
				label += " (" + organism.CommonName + ")"
			}
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> "+label) + "\n")
			} else {
				b.WriteString("  " + label + "\n")
			}
		}
		b.WriteString(helpStyle.Render("type to search · enter select · esc back"))

	case wizard.StepTissue:
		if m.busy {
			b.WriteString(m.spin.View() + " loading tissue types...\n")
			break
		}
		b.WriteString("Select a tissue type:\n\n")
		for i, tissue := range m.wiz.Tissues() {
			line := "  " + tissue.Name
			if i == m.cursor {
				line = selectedStyle.Render("> " + tissue.Name)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(helpStyle.Render("enter select · esc back"))

	case wizard.StepMetadata:
		b.WriteString("Sample details:\n\n")
		b.WriteString("  Sample code:  " + m.codeInput.View() + "\n")
		dataType := models.DataTypes[m.dataTypeIdx].Label()
		if m.focusIndex == 1 {
			dataType = selectedStyle.Render("< " + dataType + " >")
		}
		b.WriteString("  Data type:    " + dataType + "\n")
		b.WriteString("  Collected on: " + m.dateInput.View() + "\n")
		if m.busy {
			b.WriteString("\n" + m.spin.View() + " saving...\n")
		}
		b.WriteString(helpStyle.Render("tab next field · enter save · esc back"))

	case wizard.StepUpload:
		b.WriteString("Upload a data file:\n\n")
		b.WriteString("  File:      " + m.fileInput.View() + "\n")
		b.WriteString("  File type: " + selectedStyle.Render(string(models.FileTypes[m.fileTypeIdx])) + "\n")
		if m.busy {
			b.WriteString("\n" + m.spin.View() + " uploading...\n")
		}
		b.WriteString(helpStyle.Render("tab cycle file type · enter upload"))

	default:
		b.WriteString(successStyle.Render("Sample registered.") + "\n\n")
		if created := m.wiz.CreatedSample(); created != nil {
			b.WriteString(fmt.Sprintf("  %s (id %d)\n\n", created.SampleID, created.ID))
		}
		b.WriteString(helpStyle.Render("f run FastQC · r register another · q quit"))
	}

	if m.lastNotif != nil {
		b.WriteString("\n\n" + renderNotification(*m.lastNotif))
	}
	return b.String()
}

func renderNotification(n notify.Notification) string {
	switch n.Level {
	case notify.LevelSuccess:
		return successStyle.Render("✓ " + n.Message)
	case notify.LevelError:
		return errorStyle.Render("✗ " + n.Message)
	default:
		return infoStyle.Render("· " + n.Message)
	}
}

func filepathBase(path string) string {
	if idx := strings.LastIndexAny(path, "/\\"); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
