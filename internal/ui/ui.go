package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/iamankun/studio-sub000/internal/lifecycle"
	"github.com/iamankun/studio-sub000/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	QueueView ViewState = iota
	DetailView
	ConfirmView
	ApplyView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	service  *lifecycle.Service
	reviewer *models.User
	width    int
	height   int

	queueList   list.Model
	submissions []*models.Submission
	trackList   list.Model
	selected    *models.Submission
	tracks      []*models.Track
	decision    models.Status
	reason      textinput.Model
	result      *models.Submission
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a review TUI over the submission service. The reviewer
// is the user decisions are applied as, normally a label manager.
func NewModel(ctx context.Context, service *lifecycle.Service, reviewer *models.User) *Model {
	reason := textinput.New()
	reason.Placeholder = "rejection reason"
	reason.CharLimit = 200
	return &Model{
		ctx:      ctx,
		view:     QueueView,
		service:  service,
		reviewer: reviewer,
		reason:   reason,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by fetching the review queue.
func (m *Model) Init() tea.Cmd {
	return m.fetchQueue()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.queueList.Width() == 0 {
			m.queueList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.trackList.Width() == 0 {
			m.trackList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case QueueView:
			return m.handleQueueKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case queueFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.submissions = msg.submissions
		items := make([]list.Item, len(msg.submissions))
		for i, sub := range msg.submissions {
			items[i] = submissionItem{submission: sub}
		}
		m.queueList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.queueList.Title = "Review Queue"
		m.queueList.SetSize(m.width-4, m.height-8)
		m.view = QueueView
		return m, nil

	case tracksFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = QueueView
			return m, nil
		}
		m.selected = msg.submission
		m.tracks = msg.tracks
		items := make([]list.Item, len(msg.tracks))
		for i, track := range msg.tracks {
			items[i] = trackItem{track: track}
		}
		m.trackList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.trackList.Title = fmt.Sprintf("Tracks in '%s'", msg.submission.Title())
		m.trackList.SetSize(m.width-4, m.height-8)
		m.view = DetailView
		return m, nil

	case decisionAppliedMsg:
		m.result = msg.submission
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case QueueView:
		return m.renderQueue()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	case ApplyView:
		return m.renderApply()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleQueueKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.queueList.SelectedItem()
		if selected != nil {
			if item, ok := selected.(submissionItem); ok {
				return m, m.fetchDetail(item.submission.ID())
			}
		}
	}

	var cmd tea.Cmd
	m.queueList, cmd = m.queueList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = QueueView
		return m, nil
	case "a":
		m.decision = models.StatusApproved
		m.view = ConfirmView
		return m, nil
	case "x":
		m.decision = models.StatusRejected
		m.reason.SetValue("")
		m.view = ConfirmView
		return m, m.reason.Focus()
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.decision == models.StatusRejected {
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.reason.Blur()
			m.view = DetailView
			return m, nil
		case "enter":
			m.reason.Blur()
			m.view = ApplyView
			return m, m.applyDecision()
		}
		var cmd tea.Cmd
		m.reason, cmd = m.reason.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = DetailView
		return m, nil
	case "y":
		m.view = ApplyView
		return m, m.applyDecision()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.selected = nil
		m.tracks = nil
		m.result = nil
		m.err = nil
		return m, m.fetchQueue()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case QueueView:
		m.queueList, cmd = m.queueList.Update(msg)
	case DetailView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchQueue() tea.Cmd {
	return func() tea.Msg {
		submissions, err := m.service.List(m.ctx, m.reviewer)
		if err != nil {
			return queueFetchedMsg{err: err}
		}
		pending := make([]*models.Submission, 0, len(submissions))
		for _, sub := range submissions {
			if sub.Status() == models.StatusPending {
				pending = append(pending, sub)
			}
		}
		return queueFetchedMsg{submissions: pending}
	}
}

func (m *Model) fetchDetail(id string) tea.Cmd {
	return func() tea.Msg {
		sub, err := m.service.Get(m.ctx, m.reviewer, id)
		if err != nil {
			return tracksFetchedMsg{err: err}
		}
		tracks, err := m.service.ListTracks(m.ctx, m.reviewer, id)
		return tracksFetchedMsg{submission: sub, tracks: tracks, err: err}
	}
}

func (m *Model) applyDecision() tea.Cmd {
	id := m.selected.ID()
	target := m.decision
	comment := strings.TrimSpace(m.reason.Value())
	return func() tea.Msg {
		sub, err := m.service.ChangeStatus(m.ctx, m.reviewer, id, target, comment)
		return decisionAppliedMsg{submission: sub, err: err}
	}
}

func (m *Model) renderQueue() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.queueList.View(), helpView)
}

func (m *Model) renderDetail() string {
	helpKeys := []key.Binding{m.keys.approve, m.keys.reject, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	if m.decision == models.StatusRejected {
		title := styles.title.Render(fmt.Sprintf("Reject '%s'?", m.selected.Title()))
		prompt := fmt.Sprintf("\n%s\n", m.reason.View())
		hint := styles.help.Render("enter confirm • esc cancel")
		return fmt.Sprintf("%s%s\n%s", title, prompt, hint)
	}

	title := styles.title.Render(fmt.Sprintf("Approve '%s'?", m.selected.Title()))
	info := fmt.Sprintf("\nArtist: %s\nTracks: %d\n", m.selected.ArtistName(), len(m.tracks))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderApply() string {
	title := styles.title.Render("Applying Decision")
	return fmt.Sprintf("%s\n\n%s '%s'...", title, m.decision, m.selected.Title())
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Decision failed: %v\n\nPress r to return to the queue, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress r to return to the queue, q to quit")
	}

	title := styles.ok.Render(fmt.Sprintf("✓ '%s' is now %s", m.result.Title(), m.result.Status()))
	var extra string
	if reason, ok := m.result.RejectionReason(); ok {
		extra = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Reason: %s", reason)))
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s%s\n\n%s", title, extra, helpView)
}
