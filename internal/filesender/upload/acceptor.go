package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/Flakebi/FileSender/internal/filesender/constants"
	fserrors "github.com/Flakebi/FileSender/internal/filesender/errors"
	"github.com/google/uuid"
)

// envelopeAllowance bounds the multipart framing (boundaries, part headers,
// non-file fields) read on top of the file bytes themselves.
const envelopeAllowance = 64 << 10

// MaxSizeLimit is the largest size limit the body budget can represent.
const MaxSizeLimit = math.MaxInt64 - 1 - envelopeAllowance

// Policy is the write-once upload configuration copied out of the session.
type Policy struct {
	FallbackName string
	SizeLimit    int64
}

type Result struct {
	Name   string
	Path   string
	Size   int64
	SHA256 string
}

// Acceptor stores uploaded files in one destination directory.
type Acceptor struct {
	dir string
}

func NewAcceptor(dir string) (*Acceptor, error) {
	// ensure destination dir exists
	err := os.MkdirAll(dir, fs.ModePerm)
	if err != nil {
		return nil, err
	}

	return &Acceptor{dir: dir}, nil
}

func (a *Acceptor) Dir() string {
	return a.dir
}

// Accept reads a multipart body and stores its first file part.
//
// On ErrUploadTooLarge the returned Result still carries the sanitized name
// the file would have been stored under, so the operator can be told what
// was cut off.
func (a *Acceptor) Accept(body io.Reader, contentType string, policy Policy) (Result, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return Result{}, fmt.Errorf("%w: content type %q", fserrors.ErrUploadMissing, contentType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return Result{}, fmt.Errorf("%w: no multipart boundary", fserrors.ErrUploadMissing)
	}

	if policy.SizeLimit > MaxSizeLimit {
		policy.SizeLimit = MaxSizeLimit
	}
	capped := &io.LimitedReader{R: body, N: policy.SizeLimit + 1 + envelopeAllowance}
	mr := multipart.NewReader(capped, boundary)

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return Result{}, fserrors.ErrUploadMissing
		}
		if err != nil {
			if capped.N <= 0 {
				return Result{}, fserrors.ErrUploadTooLarge
			}
			return Result{}, fmt.Errorf("%w: %v", fserrors.ErrUploadMissing, err)
		}

		if !isFilePart(part) {
			part.Close()
			continue
		}

		res, err := a.store(part, capped, policy)
		part.Close()
		return res, err
	}
}

func (a *Acceptor) store(part *multipart.Part, capped *io.LimitedReader, policy Policy) (Result, error) {
	res := Result{Name: SanitizeName(rawFileName(part), policy.FallbackName)}

	// stage next to the destination so the final move is a rename
	stagingPath := filepath.Join(a.dir, "."+uuid.NewString()+".upload")
	staging, err := os.OpenFile(stagingPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return res, fmt.Errorf("%w: %v", fserrors.ErrStorageIO, err)
	}

	hasher := sha256.New()
	dst := &trackingWriter{w: io.MultiWriter(staging, hasher)}
	n, copyErr := io.Copy(dst, io.LimitReader(part, policy.SizeLimit+1))
	closeErr := staging.Close()

	switch {
	case n > policy.SizeLimit, copyErr != nil && capped.N <= 0:
		os.Remove(stagingPath)
		return res, fserrors.ErrUploadTooLarge
	case dst.err != nil:
		os.Remove(stagingPath)
		return res, fmt.Errorf("%w: %v", fserrors.ErrStorageIO, dst.err)
	case copyErr != nil:
		// body ended inside the part: peer went away or sent a broken form
		os.Remove(stagingPath)
		return res, fmt.Errorf("%w: %v", fserrors.ErrUploadMissing, copyErr)
	case closeErr != nil:
		os.Remove(stagingPath)
		return res, fmt.Errorf("%w: %v", fserrors.ErrStorageIO, closeErr)
	}

	dest, err := freePath(a.dir, res.Name)
	if err != nil {
		os.Remove(stagingPath)
		return res, fmt.Errorf("%w: %v", fserrors.ErrStorageIO, err)
	}

	slog.Debug("Moving uploaded file", "from", stagingPath, "to", dest)
	err = os.Rename(stagingPath, dest)
	if err != nil {
		os.Remove(stagingPath)
		return res, fmt.Errorf("%w: %v", fserrors.ErrStorageIO, err)
	}

	res.Name = filepath.Base(dest)
	res.Path = dest
	res.Size = n
	res.SHA256 = hex.EncodeToString(hasher.Sum(nil))

	return res, nil
}

// trackingWriter remembers write failures so they can be told apart from
// failures reading the request body.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

// isFilePart accepts any part that declares a filename, plus the page's own
// "File" field even if the browser sent no filename.
func isFilePart(part *multipart.Part) bool {
	if part.FormName() == constants.UploadFileField {
		return true
	}
	return rawFileName(part) != ""
}

// rawFileName returns the filename parameter exactly as sent. Part.FileName
// strips directories, which would hide names that must be rejected.
func rawFileName(part *multipart.Part) string {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return ""
	}
	return params["filename"]
}
