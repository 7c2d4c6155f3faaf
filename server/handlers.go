package server

import (
	"context"
	"errors"
	"image"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/poster/assets"
	"github.com/ByLCY/poster/binding"
	"github.com/ByLCY/poster/config"
	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/platform"
	"github.com/ByLCY/poster/poster"
)

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// posterHandler 按 ?platform= 绘制并返回导出结果。
func (s *Server) posterHandler(c *gin.Context) {
	out, ok := s.render(c, c.DefaultQuery("platform", platform.Web))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, out)
}

// posterImageHandler 以浏览器方式绘制并直接返回图片字节。
func (s *Server) posterImageHandler(c *gin.Context) {
	out, ok := s.render(c, platform.Web)
	if !ok {
		return
	}
	mime, data, err := assets.DecodeDataURL(out.DataURL)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "画布为空"})
		return
	}
	c.Data(http.StatusOK, mime, data)
}

func (s *Server) render(c *gin.Context, name string) (*layout.Output, bool) {
	var body config.RequestFile
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	req := &body.Request
	binding.Apply(req, body.Data)

	p, err := s.env.New(name, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	out, err := poster.Create(c.Request.Context(), p, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return out, true
}

type preloadRequest struct {
	Sources map[string]string `json:"sources" binding:"required"`
}

type imageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// preloadHandler 预先获取一组图片，返回各自尺寸；任一失败则整体失败。
func (s *Server) preloadHandler(c *gin.Context) {
	var req preloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loaded, err := poster.LoadAll(c.Request.Context(), req.Sources, func(ctx context.Context, src string) (image.Image, error) {
		return s.env.Fetcher.Load(ctx, src)
	})
	if errors.Is(err, assets.ErrOutsideBaseDir) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	images := make(map[string]imageInfo, len(loaded))
	for key, img := range loaded {
		b := img.Bounds()
		images[key] = imageInfo{Width: b.Dx(), Height: b.Dy()}
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}
