package signals

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNotifyContextCancelsOnSignal(t *testing.T) {
	exited := make(chan struct{}, 1)
	ctx, stop := NotifyContext(context.Background(), func() { exited <- struct{}{} })
	defer stop()

	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}

	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("exit not called after second SIGTERM")
	}
}

func TestNotifyContextStopReleasesGoroutine(t *testing.T) {
	ctx, stop := NotifyContext(context.Background(), func() {})
	stop()
	stop()
	assert.Error(t, ctx.Err())
}
