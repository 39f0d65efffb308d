// Pulse - Urban Events Discovery and Personalized Recommendations
// Copyright 2026 Pifoux (pifoux64)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pifoux64/pulse-montreal-events-sub002

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// blockingService runs until its context is canceled and counts starts.
type blockingService struct {
	name   string
	starts atomic.Int32
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return s.name }

func TestTreeConstruction(t *testing.T) {
	t.Run("creates hierarchical supervisor tree", func(t *testing.T) {
		tree, err := NewTree(testLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  10 * time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.Root() == nil {
			t.Error("root supervisor should not be nil")
		}
	})

	t.Run("applies default values for zero config", func(t *testing.T) {
		tree, err := NewTree(testLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}
		if tree.config.FailureThreshold != 5.0 {
			t.Errorf("expected default FailureThreshold 5.0, got %f", tree.config.FailureThreshold)
		}
		if tree.config.FailureDecay != 30.0 {
			t.Errorf("expected default FailureDecay 30.0, got %f", tree.config.FailureDecay)
		}
		if tree.config.FailureBackoff != 15*time.Second {
			t.Errorf("expected default FailureBackoff 15s, got %v", tree.config.FailureBackoff)
		}
		if tree.config.ShutdownTimeout != 10*time.Second {
			t.Errorf("expected default ShutdownTimeout 10s, got %v", tree.config.ShutdownTimeout)
		}
	})
}

func TestTreeLifecycle(t *testing.T) {
	t.Run("starts and stops services in both layers", func(t *testing.T) {
		tree, err := NewTree(testLogger(), DefaultTreeConfig())
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		dataSvc := &blockingService{name: "data-worker"}
		apiSvc := &blockingService{name: "api-worker"}
		tree.AddDataService(dataSvc)
		tree.AddAPIService(apiSvc)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := tree.ServeBackground(ctx)

		deadline := time.After(2 * time.Second)
		for dataSvc.starts.Load() == 0 || apiSvc.starts.Load() == 0 {
			select {
			case <-deadline:
				t.Fatal("services did not start in time")
			case <-time.After(10 * time.Millisecond):
			}
		}

		cancel()
		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("expected clean shutdown, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("supervisor did not stop in time")
		}
	})

	t.Run("restarts a crashing service", func(t *testing.T) {
		tree, err := NewTree(testLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		var starts atomic.Int32
		crashing := serviceFunc(func(ctx context.Context) error {
			if starts.Add(1) < 3 {
				return errors.New("simulated crash")
			}
			<-ctx.Done()
			return ctx.Err()
		})
		tree.AddDataService(crashing)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		tree.ServeBackground(ctx)

		deadline := time.After(2 * time.Second)
		for starts.Load() < 3 {
			select {
			case <-deadline:
				t.Fatalf("service restarted %d times, want at least 3", starts.Load())
			case <-time.After(10 * time.Millisecond):
			}
		}
	})
}

type serviceFunc func(ctx context.Context) error

func (f serviceFunc) Serve(ctx context.Context) error { return f(ctx) }
func (f serviceFunc) String() string                  { return "service-func" }
