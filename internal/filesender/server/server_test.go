package server

import (
	"bytes"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/Flakebi/FileSender/internal/filesender/session"
	"github.com/Flakebi/FileSender/internal/filesender/upload"
	"github.com/Flakebi/FileSender/internal/models"
	"github.com/Flakebi/FileSender/web"
)

type fakeNotifier struct {
	mu      sync.Mutex
	notes   []string
	uploads []models.UploadOutcome
}

func (n *fakeNotifier) NoteReceived(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, text)
}

func (n *fakeNotifier) UploadFinished(o models.UploadOutcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.uploads = append(n.uploads, o)
}

type fixture struct {
	srv       *Server
	sess      *session.Session
	notifier  *fakeNotifier
	uploadDir string
}

func newFixture(t *testing.T, limit int64) *fixture {
	t.Helper()

	assets, err := web.Open("")
	if err != nil {
		t.Fatal(err)
	}
	return newFixtureWithAssets(t, limit, assets)
}

func newFixtureWithAssets(t *testing.T, limit int64, assets fs.FS) *fixture {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "uploads")
	acceptor, err := upload.NewAcceptor(dir)
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		sess:      session.New("Upload.file", limit),
		notifier:  &fakeNotifier{},
		uploadDir: dir,
	}
	f.srv = New(Options{
		Name:     "Test Station",
		Session:  f.sess,
		Acceptor: acceptor,
		Notifier: f.notifier,
		Assets:   assets,
	})
	return f
}

func (f *fixture) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	resp, err := f.srv.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("File", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/data/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func textRequest(text string) *http.Request {
	form := url.Values{"text": {text}}
	req := httptest.NewRequest(http.MethodPost, "/data/text", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestIndexShowsOfferedNoteAndFiles(t *testing.T) {
	f := newFixture(t, 100)
	f.sess.SetOfferedNote("offered text")
	f.sess.SetReceivedNote("received secret")
	f.sess.AppendDownloads("/srv/share/foo.txt", "/srv/share/bar.pdf")

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / = %d", resp.StatusCode)
	}
	for _, want := range []string{"offered text", "Test Station", `href="data/download/1"`, "bar.pdf"} {
		if !strings.Contains(body, want) {
			t.Errorf("index lacks %q", want)
		}
	}
	if strings.Contains(body, "received secret") {
		t.Errorf("index leaks the received note")
	}
	if strings.Contains(body, "/srv/share") {
		t.Errorf("index leaks full paths")
	}
}

func TestIndexIsIdempotent(t *testing.T) {
	f := newFixture(t, 100)
	f.sess.SetOfferedNote("same")
	f.sess.AppendDownloads("/tmp/x")

	_, first := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	_, second := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if first != second {
		t.Errorf("two renders of an unchanged session differ")
	}
}

func TestIndexTemplateMissing(t *testing.T) {
	f := newFixtureWithAssets(t, 100, fstest.MapFS{
		"static/style.css": {Data: []byte("body{}")},
	})

	resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET / without template = %d; want 404", resp.StatusCode)
	}
}

func TestStatic(t *testing.T) {
	f := newFixture(t, 100)

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	if resp.StatusCode != http.StatusOK || body == "" {
		t.Fatalf("GET style.css = %d, %d bytes", resp.StatusCode, len(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
		t.Errorf("style.css Content-Type = %q", ct)
	}

	for _, p := range []string{"/static/nope.js", "/static/", "/static/../index.html"} {
		resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, p, nil))
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s = %d; want 404", p, resp.StatusCode)
		}
	}
}

func TestTextUpdatesOnlyReceivedNote(t *testing.T) {
	f := newFixture(t, 100)
	f.sess.SetOfferedNote("offered")

	resp, _ := f.do(t, textRequest("hello <peer>"))
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("POST text = %d, Location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	if len(f.notifier.notes) != 1 || f.notifier.notes[0] != "hello <peer>" {
		t.Errorf("notes = %q", f.notifier.notes)
	}

	// the page keeps showing the offered note only
	_, body := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(body, "offered") || strings.Contains(body, "hello") {
		t.Errorf("page after text post shows the wrong note")
	}
	if f.sess.Snapshot().OfferedNote != "offered" {
		t.Errorf("OfferedNote() changed to %q", f.sess.Snapshot().OfferedNote)
	}
}

func TestTextRequiresField(t *testing.T) {
	f := newFixture(t, 100)
	f.sess.SetReceivedNote("keep me")

	req := httptest.NewRequest(http.MethodPost, "/data/text", strings.NewReader("other=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, _ := f.do(t, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("text post without field = %d; want 400", resp.StatusCode)
	}
	if len(f.notifier.notes) != 0 {
		t.Errorf("note delivered without field: %q", f.notifier.notes)
	}

	// present but empty is a valid way to clear the note
	resp, _ = f.do(t, textRequest(""))
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("empty text post = %d; want 303", resp.StatusCode)
	}
	if len(f.notifier.notes) != 1 || f.notifier.notes[0] != "" {
		t.Errorf("notes = %q; want one empty note", f.notifier.notes)
	}
}

func TestTextRejectsMultipart(t *testing.T) {
	f := newFixture(t, 100)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	w.WriteField("text", "hi")
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/data/text", body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, _ := f.do(t, req)
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("multipart text = %d; want 415", resp.StatusCode)
	}
	if len(f.notifier.notes) != 0 {
		t.Errorf("multipart text was delivered: %q", f.notifier.notes)
	}
}

func TestUploadStoresFile(t *testing.T) {
	f := newFixture(t, 100)

	resp, _ := f.do(t, uploadRequest(t, "notes.txt", []byte("0123456789")))
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("upload = %d, Location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
	got, err := os.ReadFile(filepath.Join(f.uploadDir, "notes.txt"))
	if err != nil || string(got) != "0123456789" {
		t.Errorf("stored file = %q, %v", got, err)
	}
	if len(f.notifier.uploads) != 1 || f.notifier.uploads[0] != (models.UploadOutcome{Filename: "notes.txt"}) {
		t.Errorf("uploads = %+v", f.notifier.uploads)
	}
}

func TestUploadTooLarge(t *testing.T) {
	f := newFixture(t, 10)

	resp, _ := f.do(t, uploadRequest(t, "big.bin", bytes.Repeat([]byte("x"), 11)))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized upload = %d; want 413", resp.StatusCode)
	}
	if len(f.notifier.uploads) != 1 || !f.notifier.uploads[0].Truncated {
		t.Errorf("uploads = %+v; want one truncated outcome", f.notifier.uploads)
	}
	if _, err := os.Stat(filepath.Join(f.uploadDir, "big.bin")); !os.IsNotExist(err) {
		t.Errorf("oversized file left on disk: %v", err)
	}

	// exactly at the limit is fine
	resp, _ = f.do(t, uploadRequest(t, "fits.bin", bytes.Repeat([]byte("x"), 10)))
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("upload at the limit = %d; want 303", resp.StatusCode)
	}
}

func TestUploadMissingFile(t *testing.T) {
	f := newFixture(t, 100)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	w.WriteField("comment", "no file here")
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/data/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, _ := f.do(t, req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("upload without file = %d; want 400", resp.StatusCode)
	}
	if len(f.notifier.uploads) != 0 {
		t.Errorf("missing upload notified: %+v", f.notifier.uploads)
	}
}

func TestDownloadAttachmentName(t *testing.T) {
	f := newFixture(t, 100)
	dir := filepath.Join(t.TempDir(), "foo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "bar.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	f.sess.AppendDownloads(path)

	resp, body := f.do(t, httptest.NewRequest(http.MethodGet, "/data/download/0", nil))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download = %d", resp.StatusCode)
	}
	if body != "%PDF-1.4" {
		t.Errorf("download body = %q", body)
	}
	disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil || disposition != "attachment" || params["filename"] != "bar.pdf" {
		t.Errorf("Content-Disposition = %q (%v)", resp.Header.Get("Content-Disposition"), err)
	}
}

func TestDownloadBadIndex(t *testing.T) {
	f := newFixture(t, 100)
	f.sess.AppendDownloads("/tmp/a", "/tmp/b")

	for _, idx := range []string{"-1", "abc", "2", "99"} {
		resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/data/download/"+idx, nil))
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET /data/download/%s = %d; want 404", idx, resp.StatusCode)
		}
	}
}

func TestDownloadVanishedFile(t *testing.T) {
	f := newFixture(t, 100)
	path := filepath.Join(t.TempDir(), "gone.txt")
	f.sess.AppendDownloads(path)

	resp, _ := f.do(t, httptest.NewRequest(http.MethodGet, "/data/download/0", nil))
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("download of a missing file = %d; want 500", resp.StatusCode)
	}
}
