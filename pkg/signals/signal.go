package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

var onlyOneSignalHandler = make(chan struct{})

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// SetupSignalHandler 返回一个在收到 SIGINT/SIGTERM 时取消的 context，
// 第二次收到信号时直接退出进程。只能调用一次。
func SetupSignalHandler() context.Context {
	close(onlyOneSignalHandler) // panics when called twice

	ctx, _ := NotifyContext(context.Background(), func() { os.Exit(1) })
	return ctx
}

// NotifyContext cancels the returned context on the first shutdown signal and
// calls exit on the second. stop releases the handler.
func NotifyContext(parent context.Context, exit func()) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	c := make(chan os.Signal, 2)
	signal.Notify(c, shutdownSignals...)
	done := make(chan struct{})
	go func() {
		defer signal.Stop(c)
		select {
		case s := <-c:
			zap.S().Warnf("received %s, shutting down", s)
			cancel()
		case <-done:
			return
		}
		select {
		case <-c:
			exit()
		case <-done:
		}
	}()
	var once sync.Once
	stop := func() {
		once.Do(func() { close(done) })
		cancel()
	}
	return ctx, stop
}
