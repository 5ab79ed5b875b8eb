package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/command"
	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/config"
	"github.com/lwmacct/251207-go-pkg-cfgvars/internal/version"
	"github.com/lwmacct/251207-go-pkg-cfgvars/pkg/cfgm"
)

func action(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newMux(cfg),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  cfg.Server.Idletime,
	}

	// 启动服务器（非阻塞）
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待中断信号
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		slog.Error("Server error", "error", err)

		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
	}

	slog.Info("Shutting down")

	// 使用 WithoutCancel 保持 context 链，同时防止父 context 取消影响 shutdown
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.Timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)

		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("Server stopped gracefully")

	return nil
}

// loadConfig 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags，最后替换 ${NAME}。
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	src, err := command.Source(cmd)
	if err != nil {
		return nil, err
	}

	opts := []cfgm.Option{
		cfgm.WithSource(src),
		cfgm.WithDecodeOptions(command.DecodeOptions(cmd)...),
		cfgm.WithEnvPrefix("CFGVARS_"),
	}
	if paths := cmd.StringSlice("config"); len(paths) > 0 {
		opts = append(opts, cfgm.WithConfigPaths(paths...))
	}

	return cfgm.LoadCmd(cmd, command.Defaults, version.AppRawName, opts...)
}

func newMux(cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// 健康检查端点
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// 生效配置，密码已遮盖
	mux.HandleFunc("GET /config", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, cfg.Redacted())
	})

	// VitePress 文档静态文件服务
	docsFS := http.FileServer(http.Dir(cfg.Server.Docs))
	mux.Handle("/docs/", http.StripPrefix("/docs/", docsFS))

	// 默认首页（{$} 精确匹配根路径）
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"name":    version.AppRawName,
			"version": version.GetVersion(),
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
