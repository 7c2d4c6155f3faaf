package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ByLCY/poster/assets"
	"github.com/ByLCY/poster/binding"
	"github.com/ByLCY/poster/config"
	"github.com/ByLCY/poster/layout"
	"github.com/ByLCY/poster/platform"
	"github.com/ByLCY/poster/poster"
)

func main() {
	input := flag.String("in", "examples/share.poster", "请求文件路径（.json/.yaml/.toml/.poster）")
	output := flag.String("out", "output/share.png", "海报输出路径")
	name := flag.String("platform", platform.Web, "宿主平台：web 或 miniprogram")
	dataJSON := flag.String("data", "", "绑定到请求的 JSON 数据，覆盖请求文件中的 data")
	configPath := flag.String("config", "", "TOML 配置文件路径")
	debug := flag.String("debug", "", "绘制计划调试 JSON 输出路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	poster.SetLogger(logger)

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	if cfg.Assets.BaseDir == "" {
		cfg.Assets.BaseDir = filepath.Dir(*input)
	}
	env, err := platform.NewEnv(cfg, logger)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, env, *name, *input, *output, *debug, inputData); err != nil {
		log.Fatalf("生成海报失败: %v", err)
	}
	fmt.Printf("已生成海报：%s\n", *output)
}

// run 串联读取请求、数据绑定、绘制与写出。
func run(ctx context.Context, env *platform.Env, name, inputPath, outputPath, debugPath string, data any) error {
	file, err := config.LoadRequest(inputPath)
	if err != nil {
		return err
	}
	req := &file.Request
	if data == nil {
		data = file.Data
	}
	binding.Apply(req, data)

	p, err := env.New(name, req)
	if err != nil {
		return err
	}

	if debugPath != "" {
		cfg := layout.NewConfig(p.DeviceMetrics())
		if err := writeDebug(layout.NewPlan(req, req.Resolve(cfg, p.DefaultImageType())), debugPath); err != nil {
			return err
		}
	}

	out, err := poster.Create(ctx, p, req)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return writeOutput(out, outputPath)
}

// writeOutput 写出结果：data URL 解码为图片（.txt 输出保留原文），临时文件复制到目标路径。
func writeOutput(out *layout.Output, outputPath string) error {
	if out.DataURL != "" {
		if strings.EqualFold(filepath.Ext(outputPath), ".txt") {
			return os.WriteFile(outputPath, []byte(out.DataURL), 0o644)
		}
		_, data, err := assets.DecodeDataURL(out.DataURL)
		if err != nil {
			return fmt.Errorf("解析导出结果失败: %w", err)
		}
		if len(data) == 0 {
			return fmt.Errorf("画布为空，没有可写出的内容")
		}
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("写入海报失败: %w", err)
		}
		return nil
	}
	return copyFile(out.ExportSrc, outputPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("打开临时文件失败: %w", err)
	}
	defer in.Close()
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("创建输出文件失败: %w", err)
	}
	if _, err := io.Copy(f, in); err != nil {
		f.Close()
		return fmt.Errorf("写入海报失败: %w", err)
	}
	return f.Close()
}

func writeDebug(plan *layout.Plan, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(plan, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
