// Package qr turns plate numbers into PNG QR images carried as data URLs.
package qr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const (
	dataURLPrefix = "data:image/png;base64,"

	DefaultSize = 256
)

var (
	ErrEmptyText  = errors.New("nothing to encode")
	ErrNotDataURL = errors.New("not a png data url")
)

// Encoder renders text as an image data URL.
type Encoder interface {
	Encode(ctx context.Context, text string) (string, error)
}

// Result is the outcome of one encode attempt. Exactly one of Image and Err
// is set.
type Result struct {
	Image string
	Err   error
}

// OK reports whether the encode produced an image.
func (r Result) OK() bool {
	return r.Err == nil
}

// Run calls enc and packs its return values into a Result.
func Run(ctx context.Context, enc Encoder, text string) Result {
	img, err := enc.Encode(ctx, text)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Image: img}
}

// PNGEncoder encodes with skip2/go-qrcode.
type PNGEncoder struct {
	Size  int
	Level qrcode.RecoveryLevel
}

// NewPNGEncoder returns an encoder producing size x size images at medium
// error correction. A non-positive size means DefaultSize.
func NewPNGEncoder(size int) *PNGEncoder {
	if size <= 0 {
		size = DefaultSize
	}
	return &PNGEncoder{Size: size, Level: qrcode.Medium}
}

func (e *PNGEncoder) Encode(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyText
	}

	png, err := qrcode.Encode(text, e.Level, e.Size)
	if err != nil {
		return "", fmt.Errorf("encode %q: %w", text, err)
	}
	return DataURL(png), nil
}

// DataURL wraps PNG bytes in a data URL.
func DataURL(png []byte) string {
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png)
}

// DecodeDataURL returns the PNG bytes behind a data URL made by DataURL.
func DecodeDataURL(s string) ([]byte, error) {
	payload, ok := strings.CutPrefix(s, dataURLPrefix)
	if !ok {
		return nil, ErrNotDataURL
	}
	png, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return png, nil
}
