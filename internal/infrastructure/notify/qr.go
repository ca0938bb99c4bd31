package notify

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/infrastructure/config"
	qrcode "github.com/skip2/go-qrcode"
)

const defaultQRSize = 300

// QRRenderer encodes ticket payloads as base64 PNG QR codes. High error
// correction keeps codes scannable on cracked phone screens.
type QRRenderer struct {
	size int
}

var _ registration.QRCodeRenderer = (*QRRenderer)(nil)

// NewQRRenderer creates a renderer from QR config
func NewQRRenderer(cfg config.QRConfig) *QRRenderer {
	size := cfg.Size
	if size <= 0 {
		size = defaultQRSize
	}
	return &QRRenderer{size: size}
}

// Render encodes the payload JSON into a PNG and returns it base64 encoded
func (r *QRRenderer) Render(payload registration.QRPayload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR payload: %w", err)
	}

	png, err := qrcode.Encode(string(data), qrcode.High, r.size)
	if err != nil {
		return "", fmt.Errorf("failed to render QR code: %w", err)
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
