// Package signals provides OS signal utilities for commands that must outlive
// an interrupt long enough to clean up. This is a leaf package: stdlib only,
// no internal imports, no logging.
package signals

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Watch calls onSignal for every sigs delivered to the process until stop is
// called. With no sigs it watches SIGINT and SIGTERM. While watched, those
// signals no longer terminate the process.
//
// stop is idempotent; after it returns onSignal is not called again.
func Watch(onSignal func(os.Signal), sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})
	exited := make(chan struct{})
	signal.Notify(sigChan, sigs...)

	go func() {
		defer close(exited)
		for {
			select {
			case sig := <-sigChan:
				onSignal(sig)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(done)
			<-exited
		})
	}
}
