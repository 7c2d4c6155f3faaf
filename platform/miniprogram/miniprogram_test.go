package miniprogram

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/renderer"
	"github.com/ByLCY/poster/renderer/rendertest"
)

func TestHostQuery(t *testing.T) {
	h := NewHost(HostOptions{})
	page := h.Register("", "poster")
	card := h.Register("share-card", "poster")

	got, err := h.Query("", "#poster")
	require.NoError(t, err)
	assert.Same(t, page, got)

	got, err = h.Query("share-card", "#poster")
	require.NoError(t, err)
	assert.Same(t, card, got)

	_, err = h.Query("other", "#poster")
	assert.ErrorIs(t, err, ErrCanvasNotFound)
	_, err = h.Query("", "poster")
	assert.ErrorIs(t, err, ErrCanvasNotFound)

	h.Unregister("", "poster")
	_, err = h.Query("", "#poster")
	assert.ErrorIs(t, err, ErrCanvasNotFound)
}

func TestAcquireCanvas(t *testing.T) {
	p := New(Options{})
	node := p.Host().Register("card", "poster")

	c, err := p.AcquireCanvas(context.Background(), renderer.Target{CanvasID: "poster", Scope: "card"}, 30, 20)
	require.NoError(t, err)
	assert.Same(t, node, c)
	w, h := c.Size()
	assert.Equal(t, 30.0, w)
	assert.Equal(t, 20.0, h)

	_, err = p.AcquireCanvas(context.Background(), renderer.Target{CanvasID: "poster"}, 30, 20)
	assert.ErrorIs(t, err, ErrCanvasNotFound)
	_, err = p.AcquireCanvas(context.Background(), renderer.Target{}, 30, 20)
	assert.ErrorIs(t, err, ErrCanvasNotFound)
}

func TestLoadImageThroughNode(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	p := New(Options{})
	node := p.Host().Register("", "poster")
	got, err := p.LoadImage(context.Background(), src, node)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Bounds().Dx())

	_, err = p.LoadImage(context.Background(), "data:text/plain,hello", node)
	assert.Error(t, err)

	_, err = p.LoadImage(context.Background(), src, rendertest.New(1, 1))
	assert.Error(t, err)
}

func TestExportWritesTempFile(t *testing.T) {
	dir := t.TempDir()
	p := New(Options{TempDir: dir})
	p.Host().Register("", "poster")
	c, err := p.AcquireCanvas(context.Background(), renderer.Target{CanvasID: "poster"}, 12.5, 8)
	require.NoError(t, err)
	c.Context().SetFillStyle("#00f")
	c.Context().FillRect(0, 0, 12.5, 8)

	out, err := p.Export(context.Background(), c, renderer.ExportOptions{ImageType: "png", Width: 12.5, Height: 8})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(out.ExportSrc))
	assert.Equal(t, ".png", filepath.Ext(out.ExportSrc))
	assert.Equal(t, 12.5, out.CanvasWidth)
	assert.Equal(t, 8.0, out.CanvasHeight)

	f, err := os.Open(out.ExportSrc)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, image.Rect(0, 0, 13, 8), img.Bounds())

	out, err = p.Export(context.Background(), c, renderer.ExportOptions{ImageType: "jpg", Quality: 0.8, Width: 12.5, Height: 8})
	require.NoError(t, err)
	assert.Equal(t, ".jpg", filepath.Ext(out.ExportSrc))
}

func TestExportZeroAreaFails(t *testing.T) {
	p := New(Options{TempDir: t.TempDir()})
	p.Host().Register("", "poster")
	c, err := p.AcquireCanvas(context.Background(), renderer.Target{CanvasID: "poster"}, 0, 10)
	require.NoError(t, err)

	out, err := p.Export(context.Background(), c, renderer.ExportOptions{ImageType: "png"})
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrExportFailed)
	assert.Equal(t, "生成失败", ErrExportFailed.Error())
}

func TestPlatformDefaults(t *testing.T) {
	p := New(Options{Metrics: layout.Metrics{WindowWidth: 375, DevicePixelRatio: 3}})
	assert.Equal(t, "miniprogram", p.Name())
	assert.Equal(t, "png", p.DefaultImageType())
	assert.Equal(t, 3.0, p.DeviceMetrics().DevicePixelRatio)
}
