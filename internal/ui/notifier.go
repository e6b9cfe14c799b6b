package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
)

var _ services.Presenter = (*Notifier)(nil)

// Notifier implements [services.Presenter] by forwarding each notification to the running program as a [Msg].
//
// Notifications that arrive before [Notifier.Attach] are dropped.
type Notifier struct {
	mu     sync.Mutex
	send   func(tea.Msg)
	logger *log.Logger
}

func NewNotifier(logger *log.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Attach routes notifications to p
func (n *Notifier) Attach(p *tea.Program) {
	n.AttachFunc(p.Send)
}

// AttachFunc routes notifications to send
func (n *Notifier) AttachFunc(send func(tea.Msg)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = send
}

func (n *Notifier) forward(msg Msg) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()

	if send == nil {
		if n.logger != nil {
			n.logger.Debug("notification dropped, no program attached", "kind", msg.kind)
		}
		return
	}
	send(msg)
}

func (n *Notifier) OnArtistTracksReady(artist string, albums models.ArtistAlbums, selected *models.Track) {
	n.forward(artistReadyMsg(artist, albums, selected))
}

func (n *Notifier) OnDeletionComplete(count int) { n.forward(deletionCompleteMsg(count)) }
func (n *Notifier) OnLibraryCleared()            { n.forward(libraryClearedMsg()) }
func (n *Notifier) OnImportComplete(count int)   { n.forward(importCompleteMsg(count)) }
