package platform

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/poster/config"
	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/platform/miniprogram"
	"github.com/ByLCY/poster/poster"
)

func TestEnvWeb(t *testing.T) {
	env, err := NewEnv(nil, nil)
	require.NoError(t, err)

	p, err := env.New(Web, nil)
	require.NoError(t, err)
	assert.Equal(t, "web", p.Name())
	assert.Equal(t, layout.Metrics{WindowWidth: 375, DevicePixelRatio: 2, Scale: 1}, p.DeviceMetrics())

	req := &layout.Request{CanvasWidth: 10, CanvasHeight: 10, DrawArray: layout.Items{layout.NewTextItem("hi")}}
	out, err := poster.Create(context.Background(), p, req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.DataURL, "data:image/png;base64,"))
}

func TestEnvMiniProgram(t *testing.T) {
	cfg := config.Default()
	cfg.MiniProgram.TempDir = t.TempDir()
	env, err := NewEnv(cfg, nil)
	require.NoError(t, err)

	req := &layout.Request{CanvasWidth: 10, CanvasHeight: 20, CanvasID: "poster", That: "card", ImageType: "jpg"}
	p, err := env.New(MiniProgram, req)
	require.NoError(t, err)

	out, err := poster.Create(context.Background(), p, req)
	require.NoError(t, err)
	assert.Equal(t, 75.0, out.CanvasWidth)
	assert.Equal(t, 150.0, out.CanvasHeight)
	assert.True(t, strings.HasSuffix(out.ExportSrc, ".jpg"))
	_, err = os.Stat(out.ExportSrc)
	assert.NoError(t, err)

	// 没有 canvasId 时找不到节点
	req.CanvasID = ""
	p, err = env.New(MiniProgram, req)
	require.NoError(t, err)
	_, err = poster.Create(context.Background(), p, req)
	assert.ErrorIs(t, err, miniprogram.ErrCanvasNotFound)
}

func TestEnvUnknownPlatform(t *testing.T) {
	env, err := NewEnv(config.Default(), nil)
	require.NoError(t, err)
	_, err = env.New("desktop", nil)
	assert.ErrorContains(t, err, "desktop")
}
