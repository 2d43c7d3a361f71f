// Package ui owns everything that runs on the UI loop: the view widgets and
// the session writes made on behalf of the local operator.
package ui

import (
	"log/slog"

	"github.com/Flakebi/FileSender/internal/filesender/bridge"
	"github.com/Flakebi/FileSender/internal/filesender/session"
	"github.com/Flakebi/FileSender/internal/models"
)

// View displays session state. All methods are called on the UI loop only.
type View interface {
	ShowAddress(urls []string)
	ShowReceivedNote(text string)
	ShowLastUpload(outcome models.UploadOutcome)
	ShowDownloads(entries []models.DownloadEntry)
}

// Controller connects the session, the bridge and one View.
//
// NoteReceived and UploadFinished may be called from any goroutine; they only
// schedule work on the bridge. Every other method must run on the UI loop.
type Controller struct {
	session *session.Session
	bridge  *bridge.Bridge
	view    View
}

func NewController(sess *session.Session, br *bridge.Bridge) *Controller {
	return &Controller{session: sess, bridge: br}
}

// Attach sets the view and paints the current session into it.
func (c *Controller) Attach(v View) {
	c.view = v

	snap := c.session.Snapshot()
	v.ShowReceivedNote(snap.ReceivedNote)
	v.ShowDownloads(snap.Downloads)
	if snap.LastUpload != nil {
		v.ShowLastUpload(*snap.LastUpload)
	}
}

func (c *Controller) NoteReceived(text string) {
	c.bridge.Schedule(func() {
		c.session.SetReceivedNote(text)
		if c.view != nil {
			c.view.ShowReceivedNote(text)
		}
	})
}

func (c *Controller) UploadFinished(outcome models.UploadOutcome) {
	c.bridge.Schedule(func() {
		c.session.SetLastUpload(outcome)
		if c.view != nil {
			c.view.ShowLastUpload(outcome)
		}
	})
}

func (c *Controller) SetOfferedNote(text string) {
	c.session.SetOfferedNote(text)
}

// SetReceivedNote records an operator edit of the received note field.
func (c *Controller) SetReceivedNote(text string) {
	c.session.SetReceivedNote(text)
}

func (c *Controller) AddDownloads(paths ...string) {
	if len(paths) == 0 {
		return
	}
	c.session.AppendDownloads(paths...)
	slog.Info("Offering files", "count", len(paths))
	c.refreshDownloads()
}

func (c *Controller) RemoveDownload(index int) error {
	removed, err := c.session.RemoveDownload(index)
	if err != nil {
		return err
	}
	slog.Info("Stop offering file", "file", session.DisplayName(removed))
	c.refreshDownloads()
	return nil
}

func (c *Controller) Downloads() []models.DownloadEntry {
	return c.session.Downloads()
}

func (c *Controller) refreshDownloads() {
	if c.view != nil {
		c.view.ShowDownloads(c.session.Downloads())
	}
}
