package qr

import (
	"errors"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels for roster codes.
const DefaultSize = 256

// PNG encodes the given student id as a QR code PNG. The scanner reads the
// id straight out of the code, so the payload is the bare id string.
func PNG(studentID string, size int) ([]byte, error) {
	if studentID == "" {
		return nil, errors.New("student id required")
	}
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(studentID, qrcode.Medium, size)
}
