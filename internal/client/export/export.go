// Package export writes plaque QR images out of the client, either into a
// local directory or into an S3-compatible bucket.
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/qr"
)

var (
	ErrNoQRImage   = errors.New("plaque has no qr image")
	ErrInvalidName = errors.New("invalid export name")
)

// Exporter stores a PNG under name and returns where it landed.
type Exporter interface {
	Export(ctx context.Context, name string, png []byte) (string, error)
	// Backend names the exporter for logs and metrics ("file", "s3").
	Backend() string
}

// Plaque exports the QR image of p as plaque-<numero>.png.
func Plaque(ctx context.Context, ex Exporter, p models.Plaque) (string, error) {
	if p.QRCode == "" {
		return "", fmt.Errorf("%s: %w", p.Numero, ErrNoQRImage)
	}
	png, err := qr.DecodeDataURL(p.QRCode)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Numero, err)
	}
	return ex.Export(ctx, p.QRFileName(), png)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
