package session

import (
	"sync"

	"github.com/Flakebi/FileSender/internal/models"
)

// Session is the single record shared by the HTTP handlers and the UI loop.
//
// The UI writes offeredNote and the catalog, the server side writes
// receivedNote and lastUpload (through the bridge). Every method holds the
// lock only long enough to copy values in or out, never across I/O.
type Session struct {
	mu sync.Mutex

	uploadFileName  string
	uploadSizeLimit int64

	offeredNote  string
	receivedNote string
	downloads    Catalog
	lastUpload   *models.UploadOutcome
}

func New(uploadFileName string, uploadSizeLimit int64) *Session {
	return &Session{
		uploadFileName:  uploadFileName,
		uploadSizeLimit: uploadSizeLimit,
	}
}

// UploadPolicy returns the write-once fallback name and size limit.
func (s *Session) UploadPolicy() (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.uploadFileName, s.uploadSizeLimit
}

func (s *Session) SetOfferedNote(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offeredNote = text
}

func (s *Session) SetReceivedNote(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receivedNote = text
}

func (s *Session) SetLastUpload(outcome models.UploadOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUpload = &outcome
}

func (s *Session) AppendDownloads(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.downloads.Append(paths...)
}

func (s *Session) RemoveDownload(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.downloads.RemoveAt(index)
}

// Download copies out the entry at index so the caller can stream it unlocked.
func (s *Session) Download(index int) (models.DownloadEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.downloads.Get(index)
}

func (s *Session) Downloads() []models.DownloadEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.downloads.Entries()
}

func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.Snapshot{
		UploadFileName:  s.uploadFileName,
		UploadSizeLimit: s.uploadSizeLimit,
		OfferedNote:     s.offeredNote,
		ReceivedNote:    s.receivedNote,
		Downloads:       s.downloads.Entries(),
	}
	if s.lastUpload != nil {
		outcome := *s.lastUpload
		snap.LastUpload = &outcome
	}
	return snap
}
