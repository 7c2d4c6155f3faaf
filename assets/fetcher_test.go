package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadHTTP(t *testing.T) {
	data := pngBytes(t, 3, 2)
	var gotOrigin string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOrigin = r.Header.Get("Origin")
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := NewFetcher(Options{})
	img, err := f.Load(context.Background(), srv.URL+"/a.png", WithHeader("Origin", "https://poster.example"))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, "https://poster.example", gotOrigin)

	_, err = f.Load(context.Background(), srv.URL+"/missing.png")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestLoadHTTPHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := NewFetcher(Options{Timeout: 20 * time.Millisecond})
	_, err := f.Load(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestLoadRejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	defer srv.Close()

	_, err := NewFetcher(Options{}).Load(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestLoadDataURL(t *testing.T) {
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 4, 4))
	img, err := NewFetcher(Options{}).Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	_, err = NewFetcher(Options{}).Load(context.Background(), "data:image/png;base64")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestLoadQRCode(t *testing.T) {
	img, err := NewFetcher(Options{QRSize: 128}).Load(context.Background(), "qrcode:https://example.com/share")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 128, 128), img.Bounds())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.png"), pngBytes(t, 5, 6), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "logo.png"), pngBytes(t, 2, 2), 0o644))

	f := NewFetcher(Options{BaseDir: dir})
	img, err := f.Load(context.Background(), "cover.png")
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dy())

	img, err = f.Load(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "cover.png")))
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())

	// 目录内的绝对路径与回到目录内的 ".." 都允许
	img, err = f.Load(context.Background(), filepath.Join(dir, "img", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, 2, img.Bounds().Dx())
	_, err = f.Load(context.Background(), "img/../cover.png")
	require.NoError(t, err)
}

func TestLoadFileConfinedToBaseDir(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "static")
	require.NoError(t, os.MkdirAll(base, 0o755))
	secret := filepath.Join(parent, "secret.png")
	require.NoError(t, os.WriteFile(secret, pngBytes(t, 3, 3), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "cover.png"), pngBytes(t, 3, 3), 0o644))

	f := NewFetcher(Options{BaseDir: base})
	for _, src := range []string{
		"../secret.png",
		"img/../../secret.png",
		secret,
		"file://" + filepath.ToSlash(secret),
		"/etc/passwd",
		"file:///etc/passwd",
	} {
		_, err := f.Fetch(context.Background(), src)
		assert.ErrorIs(t, err, ErrOutsideBaseDir, src)
	}

	// 指向目录外的符号链接同样被拒绝
	if err := os.Symlink(secret, filepath.Join(base, "link.png")); err == nil {
		_, err = f.Fetch(context.Background(), "link.png")
		assert.Error(t, err)
	}

	// 未配置资源目录时不读取任何本地文件
	none := NewFetcher(Options{})
	for _, src := range []string{"cover.png", filepath.Join(base, "cover.png"), "file://" + filepath.ToSlash(secret), "/etc/passwd"} {
		_, err := none.Fetch(context.Background(), src)
		assert.ErrorIs(t, err, ErrOutsideBaseDir, src)
	}
}

func TestFetchUnsupported(t *testing.T) {
	f := NewFetcher(Options{})
	_, err := f.Fetch(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
	_, err = f.Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestDecodeDataURL(t *testing.T) {
	mime, data, err := DecodeDataURL("data:image/jpeg;base64,AAEC")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, []byte{0, 1, 2}, data)

	mime, data, err = DecodeDataURL("data:,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
	assert.Equal(t, "hello world", string(data))

	mime, _, err = DecodeDataURL("data:text/svg+xml;charset=utf-8,%3Csvg%3E")
	require.NoError(t, err)
	assert.Equal(t, "text/svg+xml", mime)

	_, _, err = DecodeDataURL("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}
