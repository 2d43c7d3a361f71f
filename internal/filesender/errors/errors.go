package errors

import (
	"errors"
)

var (
	ErrConfigInvalid        = errors.New("Invalid configuration")
	ErrUploadTooLarge       = errors.New("Upload too large")
	ErrUploadMissing        = errors.New("Uploaded file not found")
	ErrAssetNotFound        = errors.New("Asset not found")
	ErrStorageIO            = errors.New("Storage IO")
	ErrDownloadIndexInvalid = errors.New("Invalid download index")
	ErrUnsupportedEncoding  = errors.New("Unsupported encoding")
)

// Status maps an error of the taxonomy above to the HTTP status answered to the peer.
func Status(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrUploadMissing):
		return 400
	case errors.Is(err, ErrAssetNotFound), errors.Is(err, ErrDownloadIndexInvalid):
		return 404
	case errors.Is(err, ErrUploadTooLarge):
		return 413
	case errors.Is(err, ErrUnsupportedEncoding):
		return 415
	default:
		return 500
	}
}
