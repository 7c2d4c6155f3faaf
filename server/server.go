// Package server 通过 HTTP 提供海报绘制服务。
package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/poster/platform"
)

// Server 持有绘制所需的共享资源。
type Server struct {
	env    *platform.Env
	logger *slog.Logger
}

// New creates a Server.
func New(env *platform.Env) *Server {
	return &Server{env: env, logger: env.Logger}
}

// Handler 返回注册好路由的 gin 引擎。
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes 挂载 /api 路由。
func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.POST("/poster", s.posterHandler)
		api.POST("/poster.png", s.posterImageHandler)
		api.POST("/preload", s.preloadHandler)
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("请求",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
