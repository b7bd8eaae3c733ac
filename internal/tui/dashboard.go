package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reslab-bio/omics-console/internal/dashboard"
	"github.com/reslab-bio/omics-console/internal/notify"
)

type dashView int

const (
	viewProjects dashView = iota
	viewSamples
	viewDetail
	viewTrash
)

type refreshDoneMsg struct{ err error }

type pollTickMsg time.Time

// DashboardModel renders the project dashboard. The session owns all data;
// the model owns cursors and the active pane.
type DashboardModel struct {
	session *dashboard.Session
	poller  *dashboard.Poller

	view          dashView
	projectCursor int
	sampleCursor  int
	spin          spinner.Model
	busy          bool
	quitting      bool
	notifications <-chan notify.Notification
	lastNotif     *notify.Notification

	// Pending sample delete awaiting a y/n answer. Zero means none.
	confirmDeleteID   int64
	confirmDeleteCode string
}

// DashboardModelParams groups constructor dependencies.
type DashboardModelParams struct {
	Session       *dashboard.Session
	Poller        *dashboard.Poller
	Notifications <-chan notify.Notification
}

// NewDashboardModel builds the dashboard terminal model.
func NewDashboardModel(params DashboardModelParams) *DashboardModel {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return &DashboardModel{
		session:       params.Session,
		poller:        params.Poller,
		spin:          spin,
		notifications: params.Notifications,
		busy:          true,
	}
}

// Init implements tea.Model.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.awaitNotification(),
		func() tea.Msg {
			return refreshDoneMsg{err: m.session.RefreshProjects(context.Background())}
		},
	)
}

func (m *DashboardModel) awaitNotification() tea.Cmd {
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

func pollTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

// Update implements tea.Model.
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshDoneMsg:
		m.busy = false
		m.clampCursors()
		return m, nil

	case notifMsg:
		n := notify.Notification(msg)
		m.lastNotif = &n
		return m, m.awaitNotification()

	case pollTickMsg:
		// Re-render while jobs run; stop ticking once the set drains.
		if m.poller != nil && len(m.session.RunningSamples()) > 0 {
			return m, pollTick()
		}
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

func (m *DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || (key == "q" && m.view == viewProjects) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}

	switch m.view {
	case viewProjects:
		return m.updateProjects(key)
	case viewSamples:
		return m.updateSamples(key)
	case viewDetail:
		if key == "esc" || key == "q" {
			m.session.CloseQCDetail()
			m.view = viewSamples
		}
		return m, nil
	default:
		if key == "esc" || key == "q" {
			m.view = viewProjects
		}
		return m, nil
	}
}

func (m *DashboardModel) updateProjects(key string) (tea.Model, tea.Cmd) {
	projects := m.session.Projects()
	switch key {
	case "up", "k":
		if m.projectCursor > 0 {
			m.projectCursor--
		}
	case "down", "j":
		if m.projectCursor < len(projects)-1 {
			m.projectCursor++
		}
	case "r":
		m.busy = true
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			return refreshDoneMsg{err: m.session.RefreshProjects(context.Background())}
		})
	case "t":
		m.busy = true
		m.view = viewTrash
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			return refreshDoneMsg{err: m.session.RefreshTrash(context.Background())}
		})
	case "enter":
		if m.projectCursor < len(projects) {
			id := projects[m.projectCursor].ID
			m.busy = true
			m.view = viewSamples
			m.sampleCursor = 0
			return m, tea.Batch(m.spin.Tick, func() tea.Msg {
				return refreshDoneMsg{err: m.session.SelectProject(context.Background(), id)}
			})
		}
	}
	return m, nil
}

func (m *DashboardModel) updateSamples(key string) (tea.Model, tea.Cmd) {
	samples := m.session.Samples()

	// A pending delete swallows every key: y commits, anything else cancels.
	if m.confirmDeleteID != 0 {
		id := m.confirmDeleteID
		m.confirmDeleteID = 0
		m.confirmDeleteCode = ""
		if key != "y" {
			return m, nil
		}
		m.busy = true
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			return refreshDoneMsg{err: m.session.DeleteSample(context.Background(), id)}
		})
	}

	switch key {
	case "esc", "q":
		m.view = viewProjects
		return m, nil
	case "up", "k":
		if m.sampleCursor > 0 {
			m.sampleCursor--
		}
	case "down", "j":
		if m.sampleCursor < len(samples)-1 {
			m.sampleCursor++
		}
	case "r":
		m.busy = true
		return m, tea.Batch(m.spin.Tick, func() tea.Msg {
			return refreshDoneMsg{err: m.session.RefreshSamples(context.Background())}
		})
	case "f":
		if m.sampleCursor < len(samples) {
			id := samples[m.sampleCursor].ID
			m.busy = true
			return m, tea.Batch(m.spin.Tick, func() tea.Msg {
				err := m.session.RunFastQC(context.Background(), id)
				if err == nil && m.poller != nil {
					m.poller.Sync(context.Background())
				}
				return refreshDoneMsg{err: err}
			}, pollTick())
		}
	case "v", "enter":
		if m.sampleCursor < len(samples) {
			id := samples[m.sampleCursor].ID
			m.busy = true
			return m, tea.Batch(m.spin.Tick, func() tea.Msg {
				err := m.session.ShowQCDetail(context.Background(), id)
				return refreshDoneMsg{err: err}
			})
		}
	case "x":
		if m.sampleCursor < len(samples) {
			m.confirmDeleteID = samples[m.sampleCursor].ID
			m.confirmDeleteCode = samples[m.sampleCursor].SampleID
		}
	}
	return m, nil
}

func (m *DashboardModel) clampCursors() {
	if n := len(m.session.Projects()); m.projectCursor >= n && n > 0 {
		m.projectCursor = n - 1
	}
	if n := len(m.session.Samples()); m.sampleCursor >= n && n > 0 {
		m.sampleCursor = n - 1
	}
	if m.view == viewSamples && m.session.Detail() != nil {
		m.view = viewDetail
	}
}

// View implements tea.Model.
func (m *DashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ResLab dashboard") + "\n\n")

	if m.busy {
		b.WriteString(m.spin.View() + " loading...\n")
		return b.String()
	}

	switch m.view {
	case viewProjects:
		m.viewProjectsPane(&b)
	case viewSamples:
		m.viewSamplesPane(&b)
	case viewDetail:
		m.viewDetailPane(&b)
	case viewTrash:
		m.viewTrashPane(&b)
	}

	if m.lastNotif != nil {
		b.WriteString("\n" + renderNotification(*m.lastNotif))
	}
	return b.String()
}

func (m *DashboardModel) viewProjectsPane(b *strings.Builder) {
	b.WriteString("Projects:\n\n")
	projects := m.session.Projects()
	if len(projects) == 0 {
		b.WriteString(dimStyle.Render("  no projects yet") + "\n")
	}
	for i, project := range projects {
		line := fmt.Sprintf("  %s", project.Name)
		if i == m.projectCursor {
			line = selectedStyle.Render("> " + project.Name)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString(helpStyle.Render("enter open · r refresh · t trash · q quit"))
}

func (m *DashboardModel) viewSamplesPane(b *strings.Builder) {
	selected := m.session.Selected()
	if selected == nil {
		b.WriteString(dimStyle.Render("no project selected") + "\n")
		return
	}

	summary := m.session.Summarize()
	b.WriteString(selectedStyle.Render(selected.Name) + "\n")
	b.WriteString(stepStyle.Render(fmt.Sprintf(
		"%d samples · %d pass · %d warn · %d fail · %d pending",
		summary.TotalSamples, summary.QCPassed, summary.QCWarned, summary.QCFailed, summary.QCPending)) + "\n\n")

	samples := m.session.Samples()
	if len(samples) == 0 {
		b.WriteString(dimStyle.Render("  no samples in this project") + "\n")
	}
	for i, sample := range samples {
		status := "—"
		if s, known := m.session.QCOutcome(sample.ID).Status(); known {
			status = string(s)
		}
		if jobStatus, ok := m.session.JobStatus(sample.ID); ok && !jobStatus.Terminal() {
			status = string(jobStatus)
		}
		line := fmt.Sprintf("%-16s %-14s %s", sample.SampleID, sample.DataType.Label(), statusStyle(status).Render(status))
		if i == m.sampleCursor {
			b.WriteString(selectedStyle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	if m.confirmDeleteID != 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Move sample %s to trash? (y/n)", m.confirmDeleteCode)) + "\n")
		return
	}
	b.WriteString(helpStyle.Render("enter QC detail · f run FastQC · x delete · r refresh · esc back"))
}

func (m *DashboardModel) viewDetailPane(b *strings.Builder) {
	report := m.session.Detail()
	if report == nil {
		b.WriteString(dimStyle.Render("no report loaded") + "\n")
		return
	}

	var pane strings.Builder
	pane.WriteString(selectedStyle.Render("FastQC · "+report.SampleName) + "\n")
	if report.GeneratedOn != nil {
		pane.WriteString(stepStyle.Render("generated "+report.GeneratedOn.Format("2006-01-02 15:04")) + "\n")
	}
	pane.WriteString("\n")
	for _, row := range report.Summary {
		pane.WriteString(fmt.Sprintf("%-8s %s\n", statusStyle(string(row.Status)).Render(string(row.Status)), row.Module))
	}
	b.WriteString(paneStyle.Render(pane.String()))
	b.WriteString("\n" + helpStyle.Render("esc close"))
}

func (m *DashboardModel) viewTrashPane(b *strings.Builder) {
	b.WriteString("Trash:\n\n")
	for _, project := range m.session.ProjectTrash() {
		b.WriteString(dimStyle.Render("  project  "+project.Name) + "\n")
	}
	for _, sample := range m.session.SampleTrash() {
		b.WriteString(dimStyle.Render("  sample   "+sample.SampleID) + "\n")
	}
	if len(m.session.ProjectTrash()) == 0 && len(m.session.SampleTrash()) == 0 {
		b.WriteString(dimStyle.Render("  empty") + "\n")
	}
	b.WriteString(helpStyle.Render("esc back"))
}
