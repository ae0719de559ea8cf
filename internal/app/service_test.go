package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orderflow-next/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	stopErr  error
	stopped  atomic.Bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)
	return f.stopErr
}

func TestRunnerStopsAllServicesOnCancel(t *testing.T) {
	a := &fakeService{name: "a"}
	b := &fakeService{name: "b"}
	runner := NewRunner(nil, a, nil, b)
	if len(runner.services) != 2 {
		t.Fatalf("nil service should be skipped, got %d", len(runner.services))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := runner.Run(ctx, time.Second); err != nil {
		t.Fatalf("signal shutdown should return nil, got %v", err)
	}
	if !a.stopped.Load() || !b.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerReturnsStartAndStopErrors(t *testing.T) {
	failing := &fakeService{name: "http", startErr: errors.New("bind failed")}
	other := &fakeService{name: "worker", stopErr: errors.New("drain failed")}

	err := NewRunner(nil, failing, other).Run(context.Background(), time.Second)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, failing.startErr) || !errors.Is(err, other.stopErr) {
		t.Fatalf("expected joined start and stop errors, got %v", err)
	}
	if !other.stopped.Load() {
		t.Fatalf("remaining service should be stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner(nil).Run(context.Background(), time.Second); err == nil {
		t.Fatalf("expected error for empty runner")
	}
}

func TestNormalizeOptions(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.ShutdownTimeoutSeconds = 3
	opts := normalizeOptions(Options{Config: cfg, Mode: " API "})
	if opts.Mode != ModeAPI {
		t.Fatalf("mode not normalized: %q", opts.Mode)
	}
	if opts.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected shutdown timeout: %v", opts.ShutdownTimeout)
	}
	if opts.Logger == nil {
		t.Fatalf("logger should default")
	}
	if !opts.runsHTTP() || opts.runsWorker() {
		t.Fatalf("api mode should only run http")
	}

	opts = normalizeOptions(Options{})
	if opts.Mode != ModeAll || opts.ShutdownTimeout != defaultShutdownTimeout {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	if _, _, err := BuildRunner(Options{Config: &config.Config{}, Mode: "cron"}); err == nil {
		t.Fatalf("expected unknown mode error")
	}
	if _, _, err := BuildRunner(Options{Mode: ModeAll}); err == nil {
		t.Fatalf("expected nil config error")
	}
}

func TestBuildRunnerWorkerModeNeedsQueue(t *testing.T) {
	cfg := &config.Config{}
	_, err := buildRunner(normalizeOptions(Options{Config: cfg, Mode: ModeWorker}), cfg, nil)
	if err == nil {
		t.Fatalf("expected queue disabled error")
	}
}

func TestNewHTTPServiceUsesServerConfig(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "8088", WriteTimeoutSeconds: 5}, nil)
	if svc.Addr() != "127.0.0.1:8088" {
		t.Fatalf("unexpected addr: %s", svc.Addr())
	}
	if svc.server.WriteTimeout != 5*time.Second || svc.server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts: read=%v write=%v", svc.server.ReadTimeout, svc.server.WriteTimeout)
	}
	if err := svc.Stop(context.Background()); err != nil {
		t.Fatalf("stop before start should succeed: %v", err)
	}
}
