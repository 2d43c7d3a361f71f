package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Flakebi/FileSender/internal/filesender/constants"
	fserrors "github.com/Flakebi/FileSender/internal/filesender/errors"
	"github.com/Flakebi/FileSender/internal/filesender/session"
	"github.com/Flakebi/FileSender/internal/filesender/upload"
	"github.com/Flakebi/FileSender/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
)

// Notifier receives outcomes that must reach the UI. Implementations hand
// them to the UI loop and return without blocking.
type Notifier interface {
	NoteReceived(text string)
	UploadFinished(outcome models.UploadOutcome)
}

type Options struct {
	Name     string
	Session  *session.Session
	Acceptor *upload.Acceptor
	Notifier Notifier
	Assets   fs.FS
}

type Server struct {
	name      string
	session   *session.Session
	acceptor  *upload.Acceptor
	notifier  Notifier
	assets    fs.FS
	webServer *fiber.App
}

func New(opts Options) *Server {
	s := &Server{
		name:     opts.Name,
		session:  opts.Session,
		acceptor: opts.Acceptor,
		notifier: opts.Notifier,
		assets:   opts.Assets,
	}
	s.webServer = newWebServer(opts.Assets)
	s.routes()

	return s
}

func newWebServer(assets fs.FS) *fiber.App {
	engine := html.NewFileSystem(http.FS(assets), ".html")

	app := fiber.New(fiber.Config{
		AppName:               "FileSender",
		DisableStartupMessage: true,
		// uploads are read as a stream and capped by the acceptor
		StreamRequestBody: true,
		Views:             engine,
		ErrorHandler:      errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestLogger)

	return app
}

func (s *Server) routes() {
	server := s.webServer
	server.Get(constants.IndexPath, s.indexHandler)
	server.Get(constants.StaticPath+"/*", s.staticHandler)
	server.Post(constants.TextPath, s.textHandler)
	server.Post(constants.UploadPath, s.uploadHandler)
	server.Get(constants.DownloadPathPart, s.downloadHandler)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.webServer
}

func (s *Server) Serve(ln net.Listener) error {
	slog.Info("Waiting for peers", "addr", ln.Addr().String())
	return s.webServer.Listener(ln)
}

// Shutdown stops accepting peers and gives running transfers a moment to end.
func (s *Server) Shutdown() error {
	return s.webServer.ShutdownWithTimeout(3 * time.Second)
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	slog.Debug("Request", "method", c.Method(), "path", c.Path(), "remote", c.IP(), "took", time.Since(start))
	return err
}

// errorHandler is the single place where handler errors become HTTP statuses.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fserrors.Status(err)
	msg := err.Error()

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		slog.Error("Request failed", "method", c.Method(), "path", c.Path(), "remote", c.IP(), "error", err)
		msg = http.StatusText(code)
	} else {
		slog.Info("Request rejected", "method", c.Method(), "path", c.Path(), "remote", c.IP(), "status", code, "error", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(msg)
}
