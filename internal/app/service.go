package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Service 可被 Runner 管理的后台服务（HTTP、队列消费者）
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并行启动服务，任一服务退出或收到信号时统一停止
type Runner struct {
	services []Service
	log      *zap.SugaredLogger
}

// NewRunner 创建服务运行器，忽略 nil 服务
func NewRunner(log *zap.SugaredLogger, services ...Service) *Runner {
	r := &Runner{log: log}
	for _, svc := range services {
		if svc != nil {
			r.services = append(r.services, svc)
		}
	}
	return r
}

// RunWithOptions 绑定系统信号后运行
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = normalizeOptions(opts)
	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var cancel context.CancelFunc
		ctx, cancel = signal.NotifyContext(ctx, opts.Signals...)
		defer cancel()
	}
	return runner.Run(ctx, opts.ShutdownTimeout)
}

// Run 启动全部服务并阻塞，直到 ctx 结束或某个服务返回
// 返回值：首个服务错误与各服务停止错误的合并；正常信号退出返回 nil。
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	exited := make(chan error, len(r.services))
	for _, svc := range r.services {
		wg.Add(1)
		go func(svc Service) {
			defer wg.Done()
			r.infow("service_start", "service", svc.Name())
			err := svc.Start(runCtx)
			if err != nil {
				err = fmt.Errorf("%s: %w", svc.Name(), err)
			}
			r.infow("service_exit", "service", svc.Name(), "error", err)
			exited <- err
		}(svc)
	}

	var runErr error
	select {
	case <-runCtx.Done():
	case runErr = <-exited:
	}
	cancel()

	if stopTimeout <= 0 {
		stopTimeout = defaultShutdownTimeout
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()

	stopErrs := []error{runErr}
	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		started := time.Now()
		if err := svc.Stop(stopCtx); err != nil {
			if r.log != nil {
				r.log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
			}
			stopErrs = append(stopErrs, fmt.Errorf("stop %s: %w", svc.Name(), err))
			continue
		}
		r.infow("service_stopped", "service", svc.Name(), "elapsed_ms", time.Since(started).Milliseconds())
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-stopCtx.Done():
		stopErrs = append(stopErrs, errors.New("services did not exit before shutdown timeout"))
	}
	return errors.Join(stopErrs...)
}

func (r *Runner) infow(message string, kv ...interface{}) {
	if r.log != nil {
		r.log.Infow(message, kv...)
	}
}
