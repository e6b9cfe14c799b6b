package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ArtistListView ViewState = iota
	TrackListView
	ConfirmView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	coord    *tasks.Coordinator
	playback services.Playback
	width    int
	height   int

	artistList list.Model
	trackList  list.Model

	artist   string
	albums   models.ArtistAlbums
	selected *models.Track

	// pending deletion awaiting confirmation
	pendingArtist string
	pendingIDs    []models.TrackID

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model over the coordinator. Playback is used for the now-playing line and may be nil.
func NewModel(ctx context.Context, coord *tasks.Coordinator, playback services.Playback) *Model {
	artistList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	artistList.Title = "Artists"
	trackList := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	return &Model{
		ctx:        ctx,
		view:       ArtistListView,
		coord:      coord,
		playback:   playback,
		artistList: artistList,
		trackList:  trackList,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// State returns the current view state
func (m *Model) State() ViewState { return m.view }

// Status returns the last status line
func (m *Model) Status() string { return m.status }

// Init loads the artist list from the published view.
func (m *Model) Init() tea.Cmd {
	return m.loadArtists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.artistList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ArtistListView:
			return m.handleArtistListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgArtistsLoaded:
		cmd := m.artistList.SetItems(artistItems(msg.data.([]artistSummary)))
		return m, cmd

	case MsgArtistReady:
		ready := msg.data.(artistReady)
		m.artist = ready.artist
		m.albums = ready.albums
		m.selected = ready.selected
		m.trackList.Title = fmt.Sprintf("%s (%d tracks)", ready.artist, ready.albums.Len())
		cmd := m.trackList.SetItems(trackItems(ready.albums, ready.selected))
		m.trackList.ResetSelected()
		m.view = TrackListView
		return m, cmd

	case MsgDeletionComplete:
		m.status = fmt.Sprintf("Deleted %d track(s)", msg.data.(int))
		m.err = nil
		return m, m.refresh()

	case MsgLibraryCleared:
		m.status = "Library cleared"
		m.err = nil
		m.artist, m.albums, m.selected = "", nil, nil
		m.view = ArtistListView
		return m, m.loadArtists()

	case MsgImportComplete:
		m.status = fmt.Sprintf("Imported %d track(s)", msg.data.(int))
		return m, m.refresh()

	case MsgStatus:
		st := msg.data.(status)
		m.status, m.err = st.text, st.err
		return m, nil
	}
	return m, nil
}

// refresh reloads the artist list and, when an artist is open, its albums
func (m *Model) refresh() tea.Cmd {
	cmds := []tea.Cmd{m.loadArtists()}
	if m.view == TrackListView && m.artist != "" {
		artist := m.artist
		cmds = append(cmds, func() tea.Msg {
			m.coord.ShowArtist(artist)
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func (m *Model) selectedArtist() (string, bool) {
	item, ok := m.artistList.SelectedItem().(artistItem)
	if !ok {
		return "", false
	}
	return item.artist.name, true
}

func (m *Model) handleArtistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.artistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.artistList, cmd = m.artistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if name, ok := m.selectedArtist(); ok {
			return m, m.showArtist(name)
		}
		return m, nil
	case key.Matches(msg, m.keys.shuffle):
		if name, ok := m.selectedArtist(); ok {
			return m, m.shuffle(name)
		}
		return m, nil
	case key.Matches(msg, m.keys.delete):
		if name, ok := m.selectedArtist(); ok {
			m.confirmDelete(name, m.coord.ArtistTracksByAlbum(name).TrackIDs())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.artistList, cmd = m.artistList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ArtistListView
		return m, nil
	case key.Matches(msg, m.keys.shuffle):
		return m, m.shuffle(m.artist)
	case key.Matches(msg, m.keys.delete):
		m.confirmDelete(m.artist, m.albums.TrackIDs())
		return m, nil
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) confirmDelete(artist string, ids []models.TrackID) {
	if len(ids) == 0 {
		m.status = fmt.Sprintf("%s has no tracks", artist)
		return
	}
	m.pendingArtist = artist
	m.pendingIDs = ids
	m.view = ConfirmView
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	back := ArtistListView
	if m.artist != "" && m.artist == m.pendingArtist {
		back = TrackListView
	}

	switch {
	case key.Matches(msg, m.keys.yes):
		ids := m.pendingIDs
		m.pendingArtist, m.pendingIDs = "", nil
		m.view = back
		if err := m.coord.SubmitDelete(ids); err != nil {
			if errors.Is(err, shared.ErrMutationInFlight) {
				m.status = "Another change is still running, try again"
			}
			m.err = err
			return m, nil
		}
		m.status = fmt.Sprintf("Deleting %d track(s)…", len(ids))
		return m, nil
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.pendingArtist, m.pendingIDs = "", nil
		m.view = back
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ArtistListView:
		m.artistList, cmd = m.artistList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) loadArtists() tea.Cmd {
	return func() tea.Msg {
		view := m.coord.View()
		names := view.Artists.Artists()
		artists := make([]artistSummary, len(names))
		for i, name := range names {
			artists[i] = artistSummary{name: name, albums: view.Artists.AlbumCount(name)}
		}
		return artistsLoadedMsg(artists)
	}
}

// showArtist runs the query on a coordinator worker; the result arrives through the notifier.
func (m *Model) showArtist(name string) tea.Cmd {
	return func() tea.Msg {
		m.coord.ShowArtist(name)
		return nil
	}
}

func (m *Model) shuffle(name string) tea.Cmd {
	return func() tea.Msg {
		m.coord.PlayRandomArtist(name)
		m.coord.Wait()
		if m.playback != nil {
			if t, ok := m.playback.CurrentTrack(); ok {
				return statusMsg(fmt.Sprintf("Playing %s - %s", t.Artist, t.Title), nil)
			}
		}
		return statusMsg(fmt.Sprintf("Shuffled %s", name), nil)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case ArtistListView:
		body = m.renderArtistList()
	case TrackListView:
		body = m.renderTrackList()
	case ConfirmView:
		body = m.renderConfirm()
	}
	return body + m.renderStatus()
}

func (m *Model) renderArtistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.shuffle, m.keys.delete, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.artistList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderTrackList() string {
	helpKeys := []key.Binding{m.keys.shuffle, m.keys.delete, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.trackList.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Delete every track by '%s'?", m.pendingArtist))
	info := styles.warn.Render(fmt.Sprintf("\n%d track(s) will be removed from the library and all playlists.\n", len(m.pendingIDs)))
	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n%s", title, info, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderStatus() string {
	line := ""
	if m.playback != nil {
		if t, ok := m.playback.CurrentTrack(); ok {
			line += "\n" + styles.playing.Render(fmt.Sprintf("▶ %s - %s", t.Artist, t.Title))
		}
	}
	if m.err != nil {
		line += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	} else if m.status != "" {
		line += "\n" + styles.ok.Render(m.status)
	}
	return line
}
