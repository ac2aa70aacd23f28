package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// 环境变量中的 GA_ 配置作为命令行参数的默认值
	ga, err := config.LoadGAConfig()
	if err != nil {
		logger.Error("无法加载配置", "error", err)
		os.Exit(1)
	}

	// 收到中断信号后在两代之间停止
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(ga).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
