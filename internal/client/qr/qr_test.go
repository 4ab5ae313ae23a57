package qr

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGEncoder_Encode_ProducesDecodablePNG(t *testing.T) {
	enc := NewPNGEncoder(128)

	url, err := enc.Encode(context.Background(), "0042/26/K")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := DecodeDataURL(url)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}

func TestPNGEncoder_Encode_IsDeterministic(t *testing.T) {
	enc := NewPNGEncoder(0)

	a, err := enc.Encode(context.Background(), "0001/26/A")
	require.NoError(t, err)
	b, err := enc.Encode(context.Background(), "0001/26/A")
	require.NoError(t, err)
	c, err := enc.Encode(context.Background(), "0002/26/A")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestPNGEncoder_Encode_Errors(t *testing.T) {
	enc := NewPNGEncoder(64)

	_, err := enc.Encode(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = enc.Encode(ctx, "0001/26/A")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeDataURL_Rejects(t *testing.T) {
	_, err := DecodeDataURL("data:image/jpeg;base64,AAAA")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, err = DecodeDataURL("data:image/png;base64,!!!")
	assert.Error(t, err)
}

func TestDataURL_RoundTrip(t *testing.T) {
	got, err := DecodeDataURL(DataURL([]byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

type failingEncoder struct{ err error }

func (f failingEncoder) Encode(context.Context, string) (string, error) { return "", f.err }

func TestRun(t *testing.T) {
	r := Run(context.Background(), NewPNGEncoder(64), "0001/26/A")
	assert.True(t, r.OK())
	assert.NotEmpty(t, r.Image)

	boom := errors.New("boom")
	r = Run(context.Background(), failingEncoder{err: boom}, "x")
	assert.False(t, r.OK())
	assert.Empty(t, r.Image)
	assert.ErrorIs(t, r.Err, boom)
}
