package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Flakebi/FileSender/internal/filesender/constants"
	fserrors "github.com/Flakebi/FileSender/internal/filesender/errors"
	"github.com/Flakebi/FileSender/internal/filesender/upload"
	"github.com/Flakebi/FileSender/internal/models"
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

type textForm struct {
	Text string `form:"text"`
}

func (s *Server) indexHandler(c *fiber.Ctx) error {
	// one lock acquisition for everything the page shows
	snap := s.session.Snapshot()

	err := c.Render("index", fiber.Map{
		"Name":        s.name,
		"OfferedNote": snap.OfferedNote,
		"Files":       snap.Downloads,
	})
	if err != nil {
		return fmt.Errorf("%w: index template: %v", fserrors.ErrAssetNotFound, err)
	}
	return nil
}

func (s *Server) staticHandler(c *fiber.Ctx) error {
	name := c.Params("*")
	if !fs.ValidPath(name) || name == "." {
		return fmt.Errorf("%w: %q", fserrors.ErrAssetNotFound, name)
	}

	b, err := fs.ReadFile(s.assets, path.Join("static", name))
	if err != nil {
		return fmt.Errorf("%w: %q", fserrors.ErrAssetNotFound, name)
	}

	if ext := filepath.Ext(name); ext != "" {
		c.Type(ext[1:])
	} else {
		c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	}
	return c.Send(b)
}

func (s *Server) textHandler(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return fmt.Errorf("%w: multipart text", fserrors.ErrUnsupportedEncoding)
	}

	// an absent field is an error, an empty one clears the note
	if !c.Request().PostArgs().Has(constants.TextField) {
		return fiber.NewError(fiber.StatusBadRequest, "Missing text field")
	}

	var form textForm
	err := c.BodyParser(&form)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid text form")
	}

	// strings in fiber are unsafe due to zero allocation
	text := fiberutils.CopyString(form.Text)
	slog.Info("Recv text", "remote", c.IP(), "len", len(text))
	s.notifier.NoteReceived(text)

	return c.Redirect(constants.IndexPath, fiber.StatusSeeOther)
}

func (s *Server) uploadHandler(c *fiber.Ctx) error {
	fallback, limit := s.session.UploadPolicy()
	policy := upload.Policy{FallbackName: fallback, SizeLimit: limit}

	res, err := s.acceptor.Accept(requestBody(c), c.Get(fiber.HeaderContentType), policy)
	if errors.Is(err, fserrors.ErrUploadTooLarge) {
		slog.Warn("The file was truncated", "remote", c.IP(), "file", res.Name, "limit", limit)
		s.notifier.UploadFinished(models.UploadOutcome{Filename: res.Name, Truncated: true})
		return err
	}
	if err != nil {
		return err
	}

	slog.Info("Recv file", "file", res.Name, "size", res.Size, "sha256", res.SHA256, "remote", c.IP())
	s.notifier.UploadFinished(models.UploadOutcome{Filename: res.Name})

	return c.Redirect(constants.IndexPath, fiber.StatusSeeOther)
}

func (s *Server) downloadHandler(c *fiber.Ctx) error {
	raw := c.Params("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %q", fserrors.ErrDownloadIndexInvalid, raw)
	}

	// copy the entry out; the lock is not held while streaming
	entry, err := s.session.Download(index)
	if err != nil {
		return err
	}

	fd, err := os.Open(entry.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", fserrors.ErrStorageIO, err)
	}
	info, err := fd.Stat()
	if err != nil || info.IsDir() {
		fd.Close()
		if err == nil {
			err = fmt.Errorf("%s is a directory", entry.Path)
		}
		return fmt.Errorf("%w: %v", fserrors.ErrStorageIO, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	c.Set(fiber.HeaderContentDisposition, attachment(entry.Name))

	slog.Info("File sent", "file", entry.Name, "recv", c.IP())
	// fasthttp closes fd once the body is written
	return c.SendStream(fd, int(info.Size()))
}

// attachment builds the Content-Disposition value carrying only the display name.
func attachment(name string) string {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if v == "" {
		return "attachment"
	}
	return v
}

// requestBody returns the upload body without buffering it when fasthttp
// streams it.
func requestBody(c *fiber.Ctx) io.Reader {
	if stream := c.Context().RequestBodyStream(); stream != nil {
		return stream
	}
	return bytes.NewReader(c.Body())
}
