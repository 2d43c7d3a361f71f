package utils

import (
	"io"

	"github.com/mdp/qrterminal/v3"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	halfBlackWhite = "\u2584"
	halfBlackBlack = " "
	halfWhiteBlack = "\u2580"
	halfWhiteWhite = "\u2588"
)

// PrintQR draws content as a half-block QR code for terminals.
func PrintQR(w io.Writer, content string) {
	qrterminal.GenerateWithConfig(content, qrterminal.Config{
		Level:          qrterminal.L,
		Writer:         w,
		HalfBlocks:     true,
		BlackChar:      halfBlackBlack,
		WhiteBlackChar: halfWhiteBlack,
		WhiteChar:      halfWhiteWhite,
		BlackWhiteChar: halfBlackWhite,
		QuietZone:      1,
	})
}

// QRCodePNG renders content as a square PNG of size pixels.
func QRCodePNG(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
