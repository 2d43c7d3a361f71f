// Package config holds the startup settings of the station.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Flakebi/FileSender/internal/filesender/constants"
	fserrors "github.com/Flakebi/FileSender/internal/filesender/errors"
	"github.com/Flakebi/FileSender/internal/filesender/upload"
)

const EnvPrefix = "FILESENDER_"

type Config struct {
	Address        string
	Port           uint16
	UploadFileName string
	UploadSize     int64
	UploadDir      string
	WebDir         string
	Name           string
	Headless       bool
	ShowQR         bool
	Verbose        bool
}

func Default() *Config {
	return &Config{
		Address:        constants.DefaultAddress,
		Port:           constants.DefaultPort,
		UploadFileName: constants.DefaultUploadFileName,
		UploadSize:     constants.DefaultUploadSize,
		UploadDir:      ".",
	}
}

// BindFlags registers every setting on fs, using the current values as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Address, "address", "a", c.Address, "IP address to listen on")
	fs.Uint16VarP(&c.Port, "port", "p", c.Port, "TCP port to listen on")
	fs.StringVarP(&c.UploadFileName, "upload-filename", "u", c.UploadFileName, "name used when an uploaded file has no usable name")
	fs.Int64VarP(&c.UploadSize, "upload-size", "s", c.UploadSize, "maximum upload size in bytes")
	fs.StringVarP(&c.UploadDir, "dir", "d", c.UploadDir, "directory uploads are saved to")
	fs.StringVar(&c.WebDir, "web-dir", c.WebDir, "serve the page from this directory instead of the bundled one")
	fs.StringVarP(&c.Name, "name", "n", c.Name, "station name shown to peers (random if empty)")
	fs.BoolVar(&c.Headless, "headless", c.Headless, "use the console instead of a window")
	fs.BoolVar(&c.ShowQR, "qr", c.ShowQR, "print a QR code of the address")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "log every request")
}

// EnvName maps a flag name to its environment variable, upload-size -> FILESENDER_UPLOAD_SIZE.
func EnvName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// ApplyEnv sets every flag not given on the command line from its
// environment variable, so env values go through the same parsing as flags.
func ApplyEnv(fs *pflag.FlagSet, lookup func(string) (string, bool)) error {
	var firstErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if firstErr != nil || f.Changed {
			return
		}
		val, ok := lookup(EnvName(f.Name))
		if !ok {
			return
		}
		if err := fs.Set(f.Name, val); err != nil {
			firstErr = fmt.Errorf("%w: %s=%q: %v", fserrors.ErrConfigInvalid, EnvName(f.Name), val, err)
		}
	})
	return firstErr
}

func (c *Config) Validate() error {
	if net.ParseIP(c.Address) == nil {
		return fmt.Errorf("%w: address %q is not an IP address", fserrors.ErrConfigInvalid, c.Address)
	}
	if c.Port == 0 {
		return fmt.Errorf("%w: port must be between 1 and 65535", fserrors.ErrConfigInvalid)
	}
	if c.UploadSize <= 0 || c.UploadSize > upload.MaxSizeLimit {
		return fmt.Errorf("%w: upload size must be between 1 and %d, got %d", fserrors.ErrConfigInvalid, int64(upload.MaxSizeLimit), c.UploadSize)
	}
	if !upload.ValidName(c.UploadFileName) {
		return fmt.Errorf("%w: upload filename %q may only contain A-Z a-z 0-9 . _ -", fserrors.ErrConfigInvalid, c.UploadFileName)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("%w: upload directory is empty", fserrors.ErrConfigInvalid)
	}
	return nil
}

func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, strconv.Itoa(int(c.Port)))
}
