package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/songsnap/songsnap/internal/engine"
	"github.com/songsnap/songsnap/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	QueueListView ViewState = iota
	SongDetailView
	ConfirmSyncView
	SyncView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	queue        engine.QueueStore
	engine       *engine.Engine
	width        int
	height       int
	songList     list.Model
	songs        []*models.QueuedSong
	selectedSong *models.QueuedSong
	progressChan chan engine.ProgressUpdate
	progress     engine.ProgressUpdate
	result       *engine.BatchResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, queue engine.QueueStore, eng *engine.Engine) *Model {
	return &Model{
		ctx:    ctx,
		view:   QueueListView,
		queue:  queue,
		engine: eng,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by loading the song queue.
func (m *Model) Init() tea.Cmd {
	return m.loadQueue()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.songList.Width() == 0 {
			m.songList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case QueueListView:
			return m.handleQueueListKeys(msg)
		case SongDetailView:
			return m.handleDetailKeys(msg)
		case ConfirmSyncView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case queueLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.songs = msg.songs
		items := make([]list.Item, len(msg.songs))
		for i, song := range msg.songs {
			items[i] = songItem{song: song}
		}
		m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.songList.Title = fmt.Sprintf("Song Queue (%d)", len(msg.songs))
		m.songList.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressMsg:
		m.progress = engine.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case syncCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		if m.progressChan != nil {
			m.progressChan = nil
		}
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case QueueListView:
		return m.renderQueueList()
	case SongDetailView:
		return m.renderSongDetail()
	case ConfirmSyncView:
		return m.renderConfirm()
	case SyncView:
		return m.renderSync()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleQueueListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.loadQueue()
	case "s":
		if len(m.songs) > 0 {
			m.view = ConfirmSyncView
		}
		return m, nil
	case "enter":
		selected := m.songList.SelectedItem()
		if selected != nil {
			if it, ok := selected.(songItem); ok {
				m.selectedSong = it.song
				m.view = SongDetailView
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = QueueListView
		m.selectedSong = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = QueueListView
		return m, nil
	case "y":
		m.view = SyncView
		return m, m.startSync()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "r":
		m.view = QueueListView
		m.result = nil
		m.err = nil
		return m, m.loadQueue()
	}
	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.view == QueueListView {
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadQueue() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.queue.List()
		return queueLoadedMsg{songs: songs, err: err}
	}
}

func (m *Model) startSync() tea.Cmd {
	m.progressChan = make(chan engine.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		result, err := m.engine.SyncAll(m.ctx, progress)
		m.result = result
		m.err = err
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return syncCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return syncCompleteMsg{result: m.result, err: m.err}
		}
		return progressMsg(update)
	}
}

func (m *Model) renderQueueList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.sync, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.songList.View(), helpView)
}

func (m *Model) renderSongDetail() string {
	song := m.selectedSong
	if song == nil {
		return ""
	}

	title := styles.title.Render(fmt.Sprintf("%s - %s", song.Title, song.Artist))

	info := fmt.Sprintf("Album: %s\nDetected: %s\nSource image: %s\n",
		orDash(song.Album),
		song.DetectedAt.Local().Format("2006-01-02 15:04"),
		orDash(song.SourceImageURI),
	)

	var statusLines string
	for _, platform := range models.Platforms() {
		status, ok := song.StatusFor(platform)
		if !ok {
			continue
		}
		line := styles.err.Render("not synced")
		if status.Synced {
			line = styles.ok.Render("synced")
			if status.RemoteID != "" {
				line += styles.help.Render(" (" + status.RemoteID + ")")
			}
		} else if status.Error != "" {
			line += styles.warn.Render(": " + status.Error)
		}
		statusLines += fmt.Sprintf("  %-14s %s\n", platform.DisplayName(), line)
	}
	if statusLines == "" {
		statusLines = styles.help.Render("  no sync attempts recorded\n")
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\nPlatforms:\n%s\n%s", title, info, statusLines, helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Sync %d queued songs to connected platforms?", len(m.songs)))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n\n%s", title, helpView)
}

func (m *Model) renderSync() string {
	title := styles.title.Render("Syncing Queue")

	var phase string
	switch m.progress.Phase {
	case engine.SyncSong:
		phase = fmt.Sprintf("Syncing song (%d/%d)", m.progress.Step, m.progress.Total)
	case engine.SearchCatalog:
		phase = "Searching catalog..."
	case engine.CheckMembership:
		phase = "Checking playlist membership..."
	case engine.AddToPlaylist:
		phase = "Adding to playlist..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Sync failed: %v\n\nPress esc to go back, q to quit", m.err))
	}

	if m.result == nil {
		return styles.err.Render("No result available\n\nPress esc to go back, q to quit")
	}

	var title string
	switch m.result.Status {
	case engine.StatusComplete:
		title = styles.ok.Render("✓ Sync Complete")
	case engine.StatusPartial:
		title = styles.warn.Render("Sync Partially Complete")
	default:
		title = styles.err.Render("✗ Sync Failed")
	}

	info := fmt.Sprintf("\nAdded: %d\nAlready present: %d\nFailed: %d\nSkipped: %d\n",
		m.result.Added, m.result.Duplicates, m.result.Failed, m.result.Skipped)

	var failed string
	if m.result.Failed > 0 {
		failed = "\n" + styles.warn.Render("Unresolved:")
		for _, pair := range m.result.Pairs {
			if pair.Outcome == engine.OutcomeNotFound || pair.Outcome == engine.OutcomeFailed {
				failed += fmt.Sprintf("\n  • %s - %s [%s] %s", pair.Artist, pair.Title, pair.Platform, pair.Error)
			}
		}
		failed += "\n"
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n%s", title, info, failed, helpView)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
