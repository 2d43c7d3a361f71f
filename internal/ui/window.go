package ui

import (
	"context"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Flakebi/FileSender/internal/filesender/bridge"
	"github.com/Flakebi/FileSender/internal/models"
	"github.com/Flakebi/FileSender/internal/utils"
)

// Window is the desktop front end. Widgets are only touched on the fyne
// main goroutine: either from widget callbacks or through the bridge, whose
// executor is fyne.Do.
type Window struct {
	ctrl  *Controller
	title string

	app fyne.App
	win fyne.Window

	address    *widget.Entry
	qr         *canvas.Image
	offered    *widget.Entry
	received   *widget.Entry
	lastUpload *widget.Label
	list       *widget.List

	entries  []models.DownloadEntry
	selected int
}

func NewWindow(ctrl *Controller, title string) *Window {
	return &Window{ctrl: ctrl, title: title, selected: -1}
}

// Run builds the window and blocks until it is closed. The bridge is drained
// onto the fyne main goroutine for as long as the window lives.
func (w *Window) Run(ctx context.Context, br *bridge.Bridge, urls []string) {
	w.app = app.NewWithID("org.filesender.station")
	w.win = w.app.NewWindow("FileSender · " + w.title)
	w.win.SetContent(w.build())
	w.win.Resize(fyne.NewSize(820, 560))
	w.win.SetMaster()

	w.ctrl.Attach(w)
	w.ShowAddress(urls)

	// a signal closes the window
	stop := context.AfterFunc(ctx, func() { fyne.Do(w.app.Quit) })
	defer stop()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := br.Run(runCtx, fyne.Do)
		if err != nil && err != context.Canceled {
			slog.Error("UI loop stopped", "error", err)
		}
	}()

	w.win.ShowAndRun()
	br.Close()
}

func (w *Window) build() fyne.CanvasObject {
	w.address = widget.NewEntry()
	w.qr = canvas.NewImageFromResource(nil)
	w.qr.FillMode = canvas.ImageFillContain
	w.qr.SetMinSize(fyne.NewSize(120, 120))

	w.offered = widget.NewMultiLineEntry()
	w.offered.SetPlaceHolder("Note shown to peers on the page")
	w.offered.Wrapping = fyne.TextWrapWord
	w.offered.OnChanged = w.ctrl.SetOfferedNote

	w.received = widget.NewMultiLineEntry()
	w.received.SetPlaceHolder("Notes sent by peers appear here")
	w.received.Wrapping = fyne.TextWrapWord
	w.received.OnChanged = w.ctrl.SetReceivedNote

	w.lastUpload = widget.NewLabel("No upload yet")
	w.lastUpload.Truncation = fyne.TextTruncateEllipsis

	w.list = widget.NewList(
		func() int { return len(w.entries) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			if i < 0 || i >= len(w.entries) {
				return
			}
			obj.(*widget.Label).SetText(w.entries[i].Name)
		},
	)
	w.list.OnSelected = func(id widget.ListItemID) { w.selected = id }
	w.list.OnUnselected = func(widget.ListItemID) { w.selected = -1 }

	addBtn := widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), w.pickFile)
	removeBtn := widget.NewButtonWithIcon("Remove", theme.ContentRemoveIcon(), w.removeSelected)
	quitBtn := widget.NewButtonWithIcon("Quit", theme.CancelIcon(), func() { w.app.Quit() })

	// the open dialog picks one file, dropping adds several
	w.win.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		w.ctrl.AddDownloads(localFiles(uris)...)
	})
	w.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyDelete {
			w.removeSelected()
		}
	})

	top := container.NewBorder(nil, nil, widget.NewLabel("Address"), w.qr, w.address)
	downloads := container.NewBorder(nil, container.NewHBox(addBtn, removeBtn), nil, nil, w.list)
	left := container.NewVSplit(
		widget.NewCard("Download note", "", w.offered),
		widget.NewCard("Download files", "", downloads),
	)
	right := container.NewBorder(nil, widget.NewCard("Uploaded file", "", w.lastUpload), nil, nil,
		widget.NewCard("Upload note", "", w.received))

	return container.NewBorder(top, container.NewHBox(quitBtn), nil, nil, container.NewHSplit(left, right))
}

func (w *Window) pickFile() {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.win)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		w.ctrl.AddDownloads(path)
	}, w.win)
}

func (w *Window) removeSelected() {
	if w.selected < 0 {
		return
	}
	if err := w.ctrl.RemoveDownload(w.selected); err != nil {
		slog.Warn("Fail to remove file", "index", w.selected, "error", err)
	}
	w.list.UnselectAll()
	w.selected = -1
}

func (w *Window) ShowAddress(urls []string) {
	w.address.SetText(strings.Join(urls, "  "))
	if len(urls) == 0 {
		return
	}
	png, err := utils.QRCodePNG(urls[0], 256)
	if err != nil {
		slog.Warn("Fail to render address QR code", "error", err)
		return
	}
	w.qr.Resource = fyne.NewStaticResource("address.png", png)
	w.qr.Refresh()
}

func (w *Window) ShowReceivedNote(text string) {
	if w.received.Text != text {
		w.received.SetText(text)
	}
}

func (w *Window) ShowLastUpload(outcome models.UploadOutcome) {
	w.lastUpload.SetText(outcome.String())
}

func (w *Window) ShowDownloads(entries []models.DownloadEntry) {
	w.entries = entries
	w.list.Refresh()
}
