package app

import (
	"errors"
	"fmt"

	"github.com/orderflow-next/internal/config"
	"github.com/orderflow-next/internal/provider"
	"github.com/orderflow-next/internal/router"
	"github.com/orderflow-next/internal/worker"
)

// BuildRunner 按启动模式组装服务，返回的容器需在退出时 Close
func BuildRunner(opts Options) (*Runner, *provider.Container, error) {
	opts = normalizeOptions(opts)
	cfg := opts.Config
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}
	if !ValidMode(opts.Mode) {
		return nil, nil, fmt.Errorf("unknown mode %q (all, api, worker)", opts.Mode)
	}

	container := provider.NewContainer(cfg)
	runner, err := buildRunner(opts, cfg, container)
	if err != nil {
		_ = container.Close()
		return nil, nil, err
	}
	return runner, container, nil
}

func buildRunner(opts Options, cfg *config.Config, container *provider.Container) (*Runner, error) {
	var services []Service
	if opts.runsHTTP() {
		services = append(services, NewHTTPService(cfg.Server, router.SetupRouter(cfg, container)))
	}
	if opts.runsWorker() {
		// 队列关闭时 worker 模式没有可消费的任务
		if !cfg.Queue.Enabled && opts.Mode == ModeWorker {
			return nil, errors.New("worker mode requires queue.enabled")
		}
		if cfg.Queue.Enabled {
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		}
	}
	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(opts.Logger, services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	runner, container, err := BuildRunner(opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := container.Close(); closeErr != nil {
			opts.Logger.Warnw("app_close_resources_failed", "error", closeErr)
		}
	}()
	opts.Logger.Infow("app_start",
		"addr", opts.Config.Server.Host+":"+opts.Config.Server.Port,
		"mode", opts.Mode,
		"services", len(runner.services),
	)
	return RunWithOptions(runner, opts)
}
