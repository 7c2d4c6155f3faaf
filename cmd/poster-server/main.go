package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/poster/config"
	"github.com/ByLCY/poster/platform"
	"github.com/ByLCY/poster/poster"
	"github.com/ByLCY/poster/server"
)

func main() {
	configPath := flag.String("config", "", "TOML 配置文件路径")
	listen := flag.String("listen", "", "监听地址，覆盖配置中的 server.listen")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	poster.SetLogger(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	addr := cfg.Server.Listen
	if *listen != "" {
		addr = *listen
	} else if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	env, err := platform.NewEnv(cfg, logger)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{Addr: addr, Handler: server.New(env).Handler()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			logger.Error("关闭服务失败", "err", err)
		}
	}()

	logger.Info("海报服务已启动", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
