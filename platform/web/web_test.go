package web

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/renderer"
	"github.com/ByLCY/poster/renderer/rendertest"
)

func TestShouldCrossOrigin(t *testing.T) {
	origin := "https://poster.example"
	cases := map[string]bool{
		"https://poster.example/a.png":      false,
		"https://POSTER.example:443/a.png":  false,
		"http://poster.example/a.png":       true,
		"https://poster.example:8443/a.png": true,
		"https://cdn.example/a.png":         true,
		"/static/a.png":                     false,
		"data:image/png;base64,AAAA":        false,
		"qrcode:hello":                      false,
	}
	for src, want := range cases {
		assert.Equal(t, want, ShouldCrossOrigin(src, origin), src)
	}
	assert.True(t, ShouldCrossOrigin("https://cdn.example/a.png", ""))
}

func pngServer(t *testing.T, seen func(r *http.Request)) *httptest.Server {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	data := buf.Bytes()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen(r)
		_, _ = w.Write(data)
	}))
}

func TestLoadImageSameOriginSendsCookies(t *testing.T) {
	var cookie, origin string
	srv := pngServer(t, func(r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			cookie = c.Value
		}
		origin = r.Header.Get("Origin")
	})
	defer srv.Close()

	p, err := New(Options{Origin: srv.URL})
	require.NoError(t, err)
	u, _ := url.Parse(srv.URL)
	p.credentialed.Jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc"}})

	img, err := p.LoadImage(context.Background(), "/img/a.png", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	assert.Equal(t, "abc", cookie)
	assert.Empty(t, origin)
}

func TestLoadImageCrossOriginIsAnonymous(t *testing.T) {
	var hadCookie bool
	var origin string
	srv := pngServer(t, func(r *http.Request) {
		_, err := r.Cookie("session")
		hadCookie = err == nil
		origin = r.Header.Get("Origin")
	})
	defer srv.Close()

	p, err := New(Options{Origin: "https://poster.example"})
	require.NoError(t, err)
	u, _ := url.Parse(srv.URL)
	p.credentialed.Jar.SetCookies(u, []*http.Cookie{{Name: "session", Value: "abc"}})

	_, err = p.LoadImage(context.Background(), srv.URL+"/a.png", nil)
	require.NoError(t, err)
	assert.False(t, hadCookie)
	assert.Equal(t, "https://poster.example", origin)
}

func TestLoadImageFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	p, err := New(Options{})
	require.NoError(t, err)
	_, err = p.LoadImage(context.Background(), srv.URL+"/missing.png", nil)
	assert.Error(t, err)
}

func TestNewRejectsBadOrigin(t *testing.T) {
	_, err := New(Options{Origin: "not a url"})
	assert.Error(t, err)
}

func decodeDataURL(t *testing.T, dataURL, mime string) image.Image {
	t.Helper()
	prefix := "data:" + mime + ";base64,"
	require.True(t, strings.HasPrefix(dataURL, prefix), dataURL[:min(len(dataURL), 40)])
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, prefix))
	require.NoError(t, err)
	img, _, err := image.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestExport(t *testing.T) {
	p, err := New(Options{})
	require.NoError(t, err)

	c, err := p.AcquireCanvas(context.Background(), renderer.Target{}, 8, 4)
	require.NoError(t, err)
	c.Context().SetFillStyle("#f00")
	c.Context().FillRect(0, 0, 8, 4)

	out, err := p.Export(context.Background(), c, renderer.ExportOptions{ImageType: "image/png"})
	require.NoError(t, err)
	img := decodeDataURL(t, out.DataURL, MimePNG)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	r, _, _, _ := img.At(4, 2).RGBA()
	assert.Greater(t, r, uint32(0xf000))

	out, err = p.Export(context.Background(), c, renderer.ExportOptions{ImageType: "image/jpeg", Quality: 0.5})
	require.NoError(t, err)
	decodeDataURL(t, out.DataURL, MimeJPEG)

	// 不支持的类型回退为 PNG
	out, err = p.Export(context.Background(), c, renderer.ExportOptions{ImageType: "image/webp"})
	require.NoError(t, err)
	decodeDataURL(t, out.DataURL, MimePNG)
}

func TestExportZeroArea(t *testing.T) {
	p, err := New(Options{})
	require.NoError(t, err)
	out, err := p.Export(context.Background(), rendertest.New(0, 10), renderer.ExportOptions{})
	require.NoError(t, err)
	assert.Equal(t, &layout.Output{DataURL: "data:,"}, out)
}
